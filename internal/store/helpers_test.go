package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/erazemk/tcgpocket/internal/model"
)

func mustCollection(t *testing.T, database *sql.DB, name string, total int) *model.Collection {
	t.Helper()
	c, err := CreateCollection(context.Background(), database, model.Collection{
		Name:            name,
		Description:     name + " set",
		TotalCardsInSet: total,
	})
	if err != nil {
		t.Fatalf("CreateCollection: %v", err)
	}
	return c
}

func mustCard(t *testing.T, database *sql.DB, collectionID string, number int, name, rarity, cardType string) *model.Card {
	t.Helper()
	c, err := CreateCard(context.Background(), database, model.Card{
		CollectionID: collectionID,
		CardNumber:   number,
		Name:         name,
		Rarity:       rarity,
		CardType:     cardType,
		ImageURL:     "https://img.example/" + name + ".png",
	}, nil)
	if err != nil {
		t.Fatalf("CreateCard(%s): %v", name, err)
	}
	return c
}
