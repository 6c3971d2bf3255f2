package session

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PG implements Store on Postgres. One row per UI session.
type PG struct {
	db *sql.DB
}

var _ Store = (*PG)(nil)

// OpenPG opens a pooled connection for the session store.
func OpenPG(dsn string) (*PG, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &PG{db: db}, nil
}

// NewPG wraps an existing handle (used by tests).
func NewPG(db *sql.DB) *PG { return &PG{db: db} }

func (p *PG) Close() error { return p.db.Close() }

func (p *PG) DB() *sql.DB { return p.db }

// EnsureSchema creates the session table when it does not exist yet.
func (p *PG) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		create table if not exists ui_sessions (
			sid text primary key,
			token text not null default '',
			profile jsonb,
			requires_password_change boolean not null default false,
			redirect_path text not null default '',
			updated_at timestamptz not null default now()
		)
	`)
	return err
}

func (p *PG) Get(ctx context.Context, sid string) (Record, error) {
	var (
		rec     Record
		profile sql.NullString
	)
	err := p.db.QueryRowContext(ctx, `
		select token, profile, requires_password_change, updated_at
		from ui_sessions where sid = $1
	`, sid).Scan(&rec.Token, &profile, &rec.RequiresPasswordChange, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNoSession
	}
	if err != nil {
		return Record{}, err
	}
	if profile.Valid && profile.String != "" {
		rec.ProfileJSON = []byte(profile.String)
	}
	return rec, nil
}

func (p *PG) Put(ctx context.Context, sid string, rec Record) error {
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}
	var profile any
	if len(rec.ProfileJSON) > 0 {
		profile = string(rec.ProfileJSON)
	}
	_, err := p.db.ExecContext(ctx, `
		insert into ui_sessions (sid, token, profile, requires_password_change, updated_at)
		values ($1, $2, $3, $4, $5)
		on conflict (sid) do update
		set token = excluded.token,
		    profile = excluded.profile,
		    requires_password_change = excluded.requires_password_change,
		    updated_at = excluded.updated_at
	`, sid, rec.Token, profile, rec.RequiresPasswordChange, rec.UpdatedAt)
	return err
}

func (p *PG) Delete(ctx context.Context, sid string) error {
	_, err := p.db.ExecContext(ctx, `delete from ui_sessions where sid = $1`, sid)
	return err
}

func (p *PG) SetRedirect(ctx context.Context, sid, path string) error {
	_, err := p.db.ExecContext(ctx, `
		insert into ui_sessions (sid, redirect_path)
		values ($1, $2)
		on conflict (sid) do update set redirect_path = excluded.redirect_path
	`, sid, path)
	return err
}

func (p *PG) TakeRedirect(ctx context.Context, sid string) (string, error) {
	var path string
	err := p.db.QueryRowContext(ctx, `
		update ui_sessions u set redirect_path = ''
		from (select sid, redirect_path from ui_sessions where sid = $1 for update) prev
		where u.sid = prev.sid and prev.redirect_path <> ''
		returning prev.redirect_path
	`, sid).Scan(&path)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return path, nil
}
