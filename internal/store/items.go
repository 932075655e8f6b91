package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/gildedrose/internal/model"
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const itemColumns = `id, name, sell_in, quality, type, image_mime, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (model.Item, error) {
	var item model.Item
	var typ string
	var imageMime sql.NullString
	err := row.Scan(&item.ID, &item.Name, &item.SellIn, &item.Quality, &typ, &imageMime, &item.CreatedAt, &item.UpdatedAt)
	item.Type = model.ItemType(typ)
	item.ImageMime = imageMime.String
	return item, err
}

// CreateItem inserts a new item. The item's ID is ignored and assigned by the database.
func CreateItem(ctx context.Context, db *sql.DB, item model.Item) (*model.Item, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO items (name, sell_in, quality, type) VALUES (?, ?, ?, ?)`,
		item.Name, item.SellIn, item.Quality, string(item.Type),
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID, or nil if it does not exist.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	item, err := scanItem(db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return &item, nil
}

// ListItems returns all items ordered by ID, optionally filtered by type.
func ListItems(ctx context.Context, db *sql.DB, typ model.ItemType) ([]model.Item, error) {
	return listItems(ctx, db, typ)
}

func listItems(ctx context.Context, q queryer, typ model.ItemType) ([]model.Item, error) {
	var rows *sql.Rows
	var err error

	if typ != "" {
		rows, err = q.QueryContext(ctx,
			`SELECT `+itemColumns+` FROM items WHERE type = ? ORDER BY id`, string(typ),
		)
	} else {
		rows, err = q.QueryContext(ctx,
			`SELECT `+itemColumns+` FROM items ORDER BY id`,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ReplaceItem overwrites every attribute of an existing item.
// It reports whether an item with that ID existed.
func ReplaceItem(ctx context.Context, db *sql.DB, item model.Item) (bool, error) {
	return replaceItem(ctx, db, item)
}

func replaceItem(ctx context.Context, q queryer, item model.Item) (bool, error) {
	result, err := q.ExecContext(ctx,
		`UPDATE items SET name = ?, sell_in = ?, quality = ?, type = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		item.Name, item.SellIn, item.Quality, string(item.Type), item.ID,
	)
	if err != nil {
		return false, fmt.Errorf("updating item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking updated item: %w", err)
	}
	return n > 0, nil
}

// DeleteItem permanently removes an item. It reports whether the item existed.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) (bool, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking deleted item: %w", err)
	}
	return n > 0, nil
}

// AdvanceItems loads every item, passes them through advance, and writes the
// results back in a single transaction. It returns the stored items.
func AdvanceItems(ctx context.Context, db *sql.DB, advance func([]model.Item) []model.Item) ([]model.Item, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Take the write lock before reading. A deferred transaction that reads
	// first fails with SQLITE_BUSY_SNAPSHOT if another connection commits in
	// between, and busy_timeout does not retry that.
	if _, err := tx.ExecContext(ctx, `UPDATE items SET id = id WHERE 0`); err != nil {
		return nil, fmt.Errorf("locking items: %w", err)
	}

	items, err := listItems(ctx, tx, "")
	if err != nil {
		return nil, err
	}

	items = advance(items)

	for _, item := range items {
		if _, err := replaceItem(ctx, tx, item); err != nil {
			return nil, fmt.Errorf("saving item %d: %w", item.ID, err)
		}
	}

	// Read back so timestamps reflect the update.
	items, err = listItems(ctx, tx, "")
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing item update: %w", err)
	}
	return items, nil
}

// SetItemImage sets an item's image data.
func SetItemImage(ctx context.Context, db *sql.DB, id int64, image []byte, mime string) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET image = ?, image_mime = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		image, mime, id,
	)
	if err != nil {
		return false, fmt.Errorf("setting item image: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking item image: %w", err)
	}
	return n > 0, nil
}

// GetItemImage returns an item's image data and MIME type.
// Both are empty when the item has no image or does not exist.
func GetItemImage(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM items WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item image: %w", err)
	}
	return image, mime.String, nil
}
