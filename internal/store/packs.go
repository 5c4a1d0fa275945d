package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/tcgpocket/internal/model"
)

// RecordPackOpening stores an opened pack and one owned instance per pulled
// card in a single transaction.
func RecordPackOpening(ctx context.Context, db *sql.DB, userID int64, collection model.Collection, cards []model.Card) (*model.PackOpening, error) {
	if len(cards) == 0 {
		return nil, invalid("a pack must contain at least one card")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	openedAt := time.Now().UTC()
	result, err := tx.ExecContext(ctx,
		`INSERT INTO pack_openings (user_id, collection_id, opened_at) VALUES (?, ?, ?)`,
		userID, collection.ID, openedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("recording pack opening: %w", err)
	}
	packID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting pack id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO collected_cards (user_id, pack_id, card_id, collection_id, card_number,
		                              name, rarity, card_type, image_url, collected_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return nil, fmt.Errorf("preparing card insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range cards {
		if _, err := stmt.ExecContext(ctx,
			userID, packID, c.ID, c.CollectionID, c.CardNumber,
			c.Name, c.Rarity, c.CardType, c.ImageURL, openedAt,
		); err != nil {
			return nil, fmt.Errorf("recording pulled card: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing pack opening: %w", err)
	}

	return &model.PackOpening{
		ID:             packID,
		UserID:         userID,
		CollectionID:   collection.ID,
		CollectionName: collection.Name,
		Cards:          cards,
		OpenedAt:       openedAt,
	}, nil
}

// ListCardInstances returns a user's owned instances in pull order. An empty
// collectionID returns instances from every collection.
func ListCardInstances(ctx context.Context, db *sql.DB, userID int64, collectionID string) ([]model.CardInstance, error) {
	query := `SELECT id, user_id, pack_id, card_id, collection_id, card_number,
	                 name, rarity, card_type, image_url, collected_at
	          FROM collected_cards WHERE user_id = ?`
	args := []any{userID}
	if collectionID != "" {
		query += ` AND collection_id = ?`
		args = append(args, collectionID)
	}
	query += ` ORDER BY id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing card instances: %w", err)
	}
	defer rows.Close()

	var instances []model.CardInstance
	for rows.Next() {
		var ci model.CardInstance
		if err := rows.Scan(&ci.ID, &ci.UserID, &ci.PackID, &ci.CardID, &ci.CollectionID, &ci.CardNumber,
			&ci.Name, &ci.Rarity, &ci.CardType, &ci.ImageURL, &ci.CollectedAt); err != nil {
			return nil, fmt.Errorf("scanning card instance: %w", err)
		}
		instances = append(instances, ci)
	}
	return instances, rows.Err()
}

// CountPackOpenings returns how many packs a user has opened.
func CountPackOpenings(ctx context.Context, db *sql.DB, userID int64) (int, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pack_openings WHERE user_id = ?`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting pack openings: %w", err)
	}
	return count, nil
}

// GetUserCollection returns a user's instances with summary statistics. A
// user with nothing pulled gets the zero summary.
func GetUserCollection(ctx context.Context, db *sql.DB, userID int64) (*model.UserCollection, error) {
	instances, err := ListCardInstances(ctx, db, userID, "")
	if err != nil {
		return nil, err
	}
	packs, err := CountPackOpenings(ctx, db, userID)
	if err != nil {
		return nil, err
	}
	return model.NewUserCollection(userID, instances, packs), nil
}
