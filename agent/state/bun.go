package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

var _ Store = (*BunStore)(nil)

// SQLConfig is shared by the postgres and sqlite drivers.
type SQLConfig struct {
	DSN string `envconfig:"DSN" split_words:"true" required:"true"`
}

type sessionRow struct {
	bun.BaseModel `bun:"table:chat_sessions"`

	ID        string    `bun:"id,pk"`
	Payload   string    `bun:"payload,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// BunStore keeps one row per session with the encoded session as its payload.
// It works with any bun dialect; OpenPostgresStore and OpenSQLiteStore cover
// the two drivers shipped with the demo.
type BunStore struct {
	db *bun.DB
}

func OpenPostgresStore(ctx context.Context, cfg SQLConfig) (*BunStore, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return NewBunStore(ctx, bun.NewDB(sqldb, pgdialect.New()))
}

func OpenSQLiteStore(ctx context.Context, cfg SQLConfig) (*BunStore, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("sqlite dsn is required")
	}
	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// in-memory databases live only as long as their connection
	sqldb.SetMaxOpenConns(1)
	return NewBunStore(ctx, bun.NewDB(sqldb, sqlitedialect.New()))
}

// NewBunStore creates the sessions table when missing.
func NewBunStore(ctx context.Context, db *bun.DB) (*BunStore, error) {
	if db == nil {
		return nil, errors.New("bun db is required")
	}
	_, err := db.NewCreateTable().
		Model((*sessionRow)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sessions table: %w", err)
	}
	return &BunStore{db: db}, nil
}

func (s *BunStore) Load(ctx context.Context, sessionID string) (*Session, error) {
	if err := checkSessionID(sessionID); err != nil {
		return nil, err
	}

	row := new(sessionRow)
	err := s.db.NewSelect().
		Model(row).
		Where("id = ?", sessionID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select session: %w", err)
	}
	return decodeSession([]byte(row.Payload))
}

func (s *BunStore) Save(ctx context.Context, sess *Session) error {
	if err := prepareSave(sess); err != nil {
		return err
	}
	payload, err := encodeSession(sess)
	if err != nil {
		return err
	}

	row := &sessionRow{
		ID:        sess.ID,
		Payload:   string(payload),
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt,
	}
	_, err = s.db.NewInsert().
		Model(row).
		On("CONFLICT (id) DO UPDATE").
		Set("payload = EXCLUDED.payload").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

func (s *BunStore) Delete(ctx context.Context, sessionID string) error {
	if err := checkSessionID(sessionID); err != nil {
		return err
	}
	_, err := s.db.NewDelete().
		Model((*sessionRow)(nil)).
		Where("id = ?", sessionID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *BunStore) Close() error {
	return s.db.Close()
}
