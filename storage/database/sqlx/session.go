package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/classroom/core/session"
	"github.com/trezcool/classroom/core/user"
)

type sessionRow struct {
	ID        string         `db:"id"`
	Token     string         `db:"token"`
	UserData  sql.NullString `db:"user_data"`
	CreatedAt time.Time      `db:"created_at"`
	ExpiresAt time.Time      `db:"expires_at"`
}

func toRow(rec session.Record) (sessionRow, error) {
	row := sessionRow{ID: rec.ID, Token: rec.Token, CreatedAt: rec.CreatedAt.UTC(), ExpiresAt: rec.ExpiresAt.UTC()}
	if rec.User != nil {
		data, err := json.Marshal(rec.User)
		if err != nil {
			return sessionRow{}, errors.Wrap(err, "encoding cached user")
		}
		row.UserData = sql.NullString{String: string(data), Valid: true}
	}
	return row, nil
}

func (row sessionRow) record() (session.Record, error) {
	rec := session.Record{ID: row.ID, Token: row.Token, CreatedAt: row.CreatedAt, ExpiresAt: row.ExpiresAt}
	if row.UserData.Valid && row.UserData.String != "" {
		var usr user.User
		if err := json.Unmarshal([]byte(row.UserData.String), &usr); err != nil {
			return session.Record{}, errors.Wrap(err, "decoding cached user")
		}
		rec.User = &usr
	}
	return rec, nil
}

type sessionRepository struct {
	db *sqlx.DB
}

var (
	_ session.Repository = (*sessionRepository)(nil)
	_ session.Purger     = (*sessionRepository)(nil)
)

func NewSessionRepository(db *sqlx.DB) *sessionRepository {
	return &sessionRepository{db: db}
}

func (repo *sessionRepository) Get(ctx context.Context, id string) (session.Record, error) {
	var row sessionRow
	const q = `SELECT id, token, user_data, created_at, expires_at FROM sessions WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return session.Record{}, session.ErrNotFound
		}
		return session.Record{}, errors.Wrap(err, "selecting session")
	}
	return row.record()
}

func (repo *sessionRepository) Save(ctx context.Context, rec session.Record) error {
	row, err := toRow(rec)
	if err != nil {
		return err
	}
	const q = `
		INSERT INTO sessions (id, token, user_data, created_at, expires_at)
		VALUES (:id, :token, :user_data, :created_at, :expires_at)
		ON CONFLICT (id) DO UPDATE
		SET token = EXCLUDED.token, user_data = EXCLUDED.user_data, expires_at = EXCLUDED.expires_at`
	if _, err = repo.db.NamedExecContext(ctx, q, row); err != nil {
		return errors.Wrap(err, "upserting session")
	}
	return nil
}

func (repo *sessionRepository) Delete(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting session")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return session.ErrNotFound
	}
	return nil
}

func (repo *sessionRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now.UTC())
	if err != nil {
		return 0, errors.Wrap(err, "purging sessions")
	}
	n, err := res.RowsAffected()
	return n, errors.Wrap(err, "purging sessions")
}
