package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
)

const settingJWTSecret = "jwt_secret"

// GetOrCreateSetting returns the value stored under key. If the key is unset,
// the value produced by generate is stored first. INSERT OR IGNORE followed by
// a read keeps concurrent callers on the same value.
func GetOrCreateSetting(ctx context.Context, db *sql.DB, key string, generate func() (string, error)) (string, error) {
	candidate, err := generate()
	if err != nil {
		return "", fmt.Errorf("generating %s: %w", key, err)
	}

	_, err = db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`,
		key, candidate,
	)
	if err != nil {
		return "", fmt.Errorf("storing %s: %w", key, err)
	}

	var value string
	err = db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key,
	).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("querying %s: %w", key, err)
	}

	return value, nil
}

// GetJWTSecret returns the token signing secret, generating one on first use.
func GetJWTSecret(ctx context.Context, db *sql.DB) (string, error) {
	return GetOrCreateSetting(ctx, db, settingJWTSecret, func() (string, error) {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		return hex.EncodeToString(buf), nil
	})
}
