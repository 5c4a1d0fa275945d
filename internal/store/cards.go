package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/erazemk/tcgpocket/internal/model"
)

const cardColumns = `id, collection_id, card_number, name, rarity, card_type, hp,
	attack_1, attack_2, weakness, resistance, description, set_name, image_url, created_at`

// CardImage is an uploaded, already processed card image.
type CardImage struct {
	Data []byte
	MIME string
}

// CreateCard adds a card definition to a collection slot. If image is
// non-nil it is stored with the card and image_url points at it; otherwise
// the card's ImageURL is kept as given.
func CreateCard(ctx context.Context, db *sql.DB, card model.Card, image *CardImage) (*model.Card, error) {
	card.Name = strings.TrimSpace(card.Name)
	if card.Name == "" {
		return nil, invalid("name required")
	}
	if !model.ValidRarity(card.Rarity) {
		return nil, invalid("invalid rarity %q", card.Rarity)
	}
	if !model.ValidCardType(card.CardType) {
		return nil, invalid("invalid card type %q", card.CardType)
	}
	if image == nil && card.ImageURL == "" {
		return nil, invalid("image or image_url required")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var total int
	err = tx.QueryRowContext(ctx,
		`SELECT total_cards_in_set FROM card_collections WHERE id = ?`, card.CollectionID,
	).Scan(&total)
	if err == sql.ErrNoRows {
		return nil, notFound("collection not found")
	}
	if err != nil {
		return nil, fmt.Errorf("checking collection: %w", err)
	}
	if card.CardNumber < 1 || card.CardNumber > total {
		return nil, invalid("card_number must be between 1 and %d", total)
	}

	var taken int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cards WHERE collection_id = ? AND card_number = ?`,
		card.CollectionID, card.CardNumber,
	).Scan(&taken)
	if err != nil {
		return nil, fmt.Errorf("checking card number: %w", err)
	}
	if taken > 0 {
		return nil, conflict("Card number %d already exists in this collection", card.CardNumber)
	}

	card.ID = uuid.NewString()
	var imageData []byte
	var imageMIME sql.NullString
	if image != nil {
		card.ImageURL = "/api/card-images/" + card.ID
		imageData = image.Data
		imageMIME = nullString(image.MIME)
	}

	var hp sql.NullInt64
	if card.HP != nil {
		hp = sql.NullInt64{Int64: int64(*card.HP), Valid: true}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO cards (id, collection_id, card_number, name, rarity, card_type, hp,
		                    attack_1, attack_2, weakness, resistance, description, set_name,
		                    image_url, image, image_mime)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		card.ID, card.CollectionID, card.CardNumber, card.Name, card.Rarity, card.CardType, hp,
		nullString(card.Attack1), nullString(card.Attack2), nullString(card.Weakness),
		nullString(card.Resistance), nullString(card.Description), nullString(card.SetName),
		card.ImageURL, imageData, imageMIME,
	)
	if err != nil {
		return nil, fmt.Errorf("creating card: %w", err)
	}
	if err := bumpRevision(ctx, tx, card.CollectionID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing card: %w", err)
	}

	return GetCard(ctx, db, card.ID)
}

// GetCard returns a card by ID.
func GetCard(ctx context.Context, db *sql.DB, id string) (*model.Card, error) {
	card, err := scanCard(db.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting card: %w", err)
	}
	return card, nil
}

// ListCards returns every card, grouped by collection and ordered by number.
func ListCards(ctx context.Context, db *sql.DB) ([]model.Card, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+cardColumns+` FROM cards ORDER BY collection_id, card_number`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing cards: %w", err)
	}
	defer rows.Close()

	return scanCards(rows)
}

// ListCardsByCollection returns the cards of one collection ordered by number.
func ListCardsByCollection(ctx context.Context, db *sql.DB, collectionID string) ([]model.Card, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE collection_id = ? ORDER BY card_number`, collectionID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing collection cards: %w", err)
	}
	defer rows.Close()

	return scanCards(rows)
}

// DeleteCard deletes a card definition together with its stored image and
// returns the collection it belonged to. Owned instances are kept.
func DeleteCard(ctx context.Context, db *sql.DB, id string) (string, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var collectionID string
	err = tx.QueryRowContext(ctx,
		`DELETE FROM cards WHERE id = ? RETURNING collection_id`, id,
	).Scan(&collectionID)
	if err == sql.ErrNoRows {
		return "", notFound("card not found")
	}
	if err != nil {
		return "", fmt.Errorf("deleting card: %w", err)
	}
	if err := bumpRevision(ctx, tx, collectionID); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing card deletion: %w", err)
	}
	return collectionID, nil
}

// GetCardImage returns a card's stored image data and MIME type.
func GetCardImage(ctx context.Context, db *sql.DB, id string) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM cards WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting card image: %w", err)
	}
	return image, mime.String, nil
}

func scanCard(row rowScanner) (*model.Card, error) {
	c := &model.Card{}
	var hp sql.NullInt64
	var attack1, attack2, weakness, resistance, description, setName sql.NullString
	err := row.Scan(&c.ID, &c.CollectionID, &c.CardNumber, &c.Name, &c.Rarity, &c.CardType, &hp,
		&attack1, &attack2, &weakness, &resistance, &description, &setName, &c.ImageURL, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	if hp.Valid {
		v := int(hp.Int64)
		c.HP = &v
	}
	c.Attack1 = attack1.String
	c.Attack2 = attack2.String
	c.Weakness = weakness.String
	c.Resistance = resistance.String
	c.Description = description.String
	c.SetName = setName.String
	return c, nil
}

func scanCards(rows *sql.Rows) ([]model.Card, error) {
	var cards []model.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning card: %w", err)
		}
		cards = append(cards, *c)
	}
	return cards, rows.Err()
}
