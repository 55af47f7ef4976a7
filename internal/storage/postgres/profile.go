package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const botDisplayName = "Event Bot"

type ProfileStore struct {
	db *sqlx.DB
	tm *TransactionManager
}

func NewProfileStore(db *sqlx.DB, tm *TransactionManager) *ProfileStore {
	return &ProfileStore{db: db, tm: tm}
}

// GetOrCreate idempotently resolves the authoring profile for the given
// email. Lookup and create run in one transaction, and the insert carries
// ON CONFLICT so two overlapping runs cannot create two bot rows.
func (s *ProfileStore) GetOrCreate(ctx context.Context, email string) (int64, error) {
	var id int64

	err := s.tm.WithTransaction(ctx, func(txCtx context.Context) error {
		exec := GetExecutor(txCtx, s.db)

		err := sqlx.GetContext(txCtx, exec, &id,
			"SELECT id FROM profiles WHERE auth_user_email = $1", email)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("lookup profile: %w", err)
		}

		query := `
			INSERT INTO profiles (auth_user_email, display_name)
			VALUES ($1, $2)
			ON CONFLICT (auth_user_email) DO UPDATE SET display_name = EXCLUDED.display_name
			RETURNING id`

		if err := sqlx.GetContext(txCtx, exec, &id, query, email, botDisplayName); err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return id, nil
}
