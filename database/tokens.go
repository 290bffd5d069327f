package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

func (s *Storage) StoreToken(ctx context.Context, username, tokenID, refreshTokenID string, expiration time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO token (username, token_id, refresh_token_id, expiration)
		VALUES (?, ?, ?, ?)`,
		username,
		tokenID,
		refreshTokenID,
		expiration,
	)
	return errors.Wrap(err, "insert token")
}

// ConsumeToken deletes a stored token pair and returns its expiration.
// A pair can be consumed once.
func (s *Storage) ConsumeToken(ctx context.Context, username, tokenID, refreshTokenID string) (expiration time.Time, err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return expiration, errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	const where = `
		WHERE username = ?
			AND token_id = ?
			AND refresh_token_id = ?`

	err = tx.GetContext(ctx, &expiration, "SELECT expiration FROM token"+where, username, tokenID, refreshTokenID)
	if errors.Is(err, sql.ErrNoRows) {
		return expiration, errors.Wrap(ErrNotFound, "token")
	}
	if err != nil {
		return expiration, errors.Wrap(err, "select token")
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM token"+where, username, tokenID, refreshTokenID)
	if err != nil {
		return expiration, errors.Wrap(err, "delete token")
	}

	return expiration, errors.Wrap(tx.Commit(), "commit")
}
