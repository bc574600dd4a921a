package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/workflow"
)

// Pool is the subset of pgxpool.Pool the store uses. Tests substitute a
// pgxmock pool.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	stage      INTEGER NOT NULL DEFAULT 1,
	data       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS outcomes (
	seq          BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	session_id   TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	property_id  TEXT NOT NULL,
	owner_name   TEXT NOT NULL,
	contact      TEXT NOT NULL,
	contact_type TEXT NOT NULL,
	sent_at      TEXT NOT NULL,
	status       TEXT NOT NULL,
	response     TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_sessions_stage ON sessions(stage);
CREATE INDEX IF NOT EXISTS idx_outcomes_session_id ON outcomes(session_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveSession(ctx context.Context, sess *workflow.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal session")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO sessions (id, stage, data, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET stage = EXCLUDED.stage, data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		sess.ID, int(sess.Stage), data, sess.CreatedAt, sess.UpdatedAt,
	)
	return eris.Wrapf(err, "postgres: save session %s", sess.ID)
}

func (s *PostgresStore) GetSession(ctx context.Context, id string) (*workflow.Session, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM sessions WHERE id = $1`, id,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("session not found: %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get session %s", id)
	}

	var sess workflow.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal session")
	}
	return &sess, nil
}

func (s *PostgresStore) ListSessions(ctx context.Context, filter SessionFilter) ([]SessionSummary, error) {
	query := `SELECT id, stage, created_at, updated_at FROM sessions WHERE 1=1`
	var args []any

	if filter.Stage != 0 {
		args = append(args, int(filter.Stage))
		query += ` AND stage = $1`
	}
	query += ` ORDER BY updated_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += ` LIMIT $` + strconv.Itoa(len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list sessions")
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var sum SessionSummary
		var stage int
		if err := rows.Scan(&sum.ID, &stage, &sum.CreatedAt, &sum.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan session summary")
		}
		sum.Stage = workflow.Stage(stage)
		out = append(out, sum)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list sessions iterate")
}

func (s *PostgresStore) DeleteSession(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete session %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("session not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) AppendOutcomes(ctx context.Context, sessionID string, rows []model.NotificationOutcome) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin outcomes tx")
	}
	defer tx.Rollback(ctx)

	for _, row := range rows {
		if _, err := tx.Exec(ctx,
			`INSERT INTO outcomes (session_id, property_id, owner_name, contact, contact_type, sent_at, status, response)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			sessionID, row.ID, row.Name, row.Contact, string(row.Channel), row.Timestamp, string(row.Status), row.Response,
		); err != nil {
			return eris.Wrapf(err, "postgres: insert outcome for session %s", sessionID)
		}
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit outcomes")
}

func (s *PostgresStore) ListOutcomes(ctx context.Context, sessionID string) ([]model.NotificationOutcome, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT property_id, owner_name, contact, contact_type, sent_at, status, response
		 FROM outcomes WHERE session_id = $1 ORDER BY seq`,
		sessionID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list outcomes for session %s", sessionID)
	}
	defer rows.Close()

	var out []model.NotificationOutcome
	for rows.Next() {
		var o model.NotificationOutcome
		var channel, status string
		if err := rows.Scan(&o.ID, &o.Name, &o.Contact, &channel, &o.Timestamp, &status, &o.Response); err != nil {
			return nil, eris.Wrap(err, "postgres: scan outcome")
		}
		o.Channel = model.Channel(channel)
		o.Status = model.SendStatus(status)
		out = append(out, o)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list outcomes iterate")
}
