package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/erazemk/tcgpocket/internal/model"
)

const collectionColumns = `c.id, c.name, c.description, c.total_cards_in_set, c.release_date, c.image_url, c.created_at, c.revision,
	(SELECT COUNT(*) FROM cards WHERE cards.collection_id = c.id) AS actual_cards`

// CreateCollection creates a new collection with a generated ID.
func CreateCollection(ctx context.Context, db *sql.DB, c model.Collection) (*model.Collection, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return nil, invalid("name required")
	}
	if c.TotalCardsInSet <= 0 {
		return nil, invalid("total_cards_in_set must be positive")
	}

	id := uuid.NewString()
	_, err := db.ExecContext(ctx,
		`INSERT INTO card_collections (id, name, description, total_cards_in_set, release_date, image_url)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, c.Name, c.Description, c.TotalCardsInSet, nullString(c.ReleaseDate), nullString(c.ImageURL),
	)
	if err != nil {
		return nil, fmt.Errorf("creating collection: %w", err)
	}

	return GetCollection(ctx, db, id)
}

// GetCollection returns a collection by ID, with its authored card count.
func GetCollection(ctx context.Context, db *sql.DB, id string) (*model.Collection, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+collectionColumns+` FROM card_collections c WHERE c.id = ?`, id,
	)
	c, err := scanCollection(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting collection: %w", err)
	}
	return c, nil
}

// ListCollections returns all collections, oldest first.
func ListCollections(ctx context.Context, db *sql.DB) ([]model.Collection, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+collectionColumns+` FROM card_collections c ORDER BY c.created_at, c.name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	defer rows.Close()

	var collections []model.Collection
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning collection: %w", err)
		}
		collections = append(collections, *c)
	}
	return collections, rows.Err()
}

// DeleteCollection deletes an empty collection. Collections that still hold
// cards cannot be deleted.
func DeleteCollection(ctx context.Context, db *sql.DB, id string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM card_collections WHERE id = ?`, id,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking collection: %w", err)
	}
	if exists == 0 {
		return notFound("collection not found")
	}

	var cardCount int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cards WHERE collection_id = ?`, id,
	).Scan(&cardCount)
	if err != nil {
		return fmt.Errorf("counting collection cards: %w", err)
	}
	if cardCount > 0 {
		return invalid("Cannot delete collection with %d cards. Delete cards first.", cardCount)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM card_collections WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing collection deletion: %w", err)
	}
	return nil
}

// CollectionRevision returns the current revision of a collection. The
// boolean is false if the collection does not exist.
func CollectionRevision(ctx context.Context, db *sql.DB, id string) (int64, bool, error) {
	var revision int64
	err := db.QueryRowContext(ctx,
		`SELECT revision FROM card_collections WHERE id = ?`, id,
	).Scan(&revision)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("getting collection revision: %w", err)
	}
	return revision, true, nil
}

func bumpRevision(ctx context.Context, tx *sql.Tx, collectionID string) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE card_collections SET revision = revision + 1 WHERE id = ?`, collectionID,
	); err != nil {
		return fmt.Errorf("bumping collection revision: %w", err)
	}
	return nil
}

// GetOverview returns the complete numbered manifest of a collection, or nil
// if the collection does not exist. The collection row is read before its
// cards, so the cards are never older than the reported revision.
func GetOverview(ctx context.Context, db *sql.DB, id string) (*model.Overview, error) {
	c, err := GetCollection(ctx, db, id)
	if err != nil || c == nil {
		return nil, err
	}

	cards, err := ListCardsByCollection(ctx, db, id)
	if err != nil {
		return nil, err
	}

	return model.NewOverview(*c, cards), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCollection(row rowScanner) (*model.Collection, error) {
	c := &model.Collection{}
	var releaseDate, imageURL sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.TotalCardsInSet, &releaseDate, &imageURL, &c.CreatedAt, &c.Revision, &c.ActualCards); err != nil {
		return nil, err
	}
	c.ReleaseDate = releaseDate.String
	c.ImageURL = imageURL.String
	return c, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
