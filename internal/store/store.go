// Package store keeps the mock backend's signals in SQLite.
//
// The app opens it as ":memory:": nothing survives the process, the SQL
// layer only gives the mock API real queries and ordering to work with.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/abelbrown/spotlight/internal/signal"
)

// ErrNotFound is returned when no signal has the requested ID.
var ErrNotFound = errors.New("store: signal not found")

// Store handles SQLite access. NOT an interface - concrete type.
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open creates a Store. ":memory:" opens a private in-memory database;
// anything else is a file path.
func Open(dsn string) (*Store, error) {
	connStr := dsn
	memory := dsn == ":memory:"
	if memory {
		// Named so that the pool's connections share one database and two
		// Stores in the same process do not.
		connStr = fmt.Sprintf("file:spotlight-%s?mode=memory&cache=shared", uuid.NewString())
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if memory {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS signals (
		id TEXT PRIMARY KEY,
		seq INTEGER NOT NULL,
		type TEXT NOT NULL,
		status TEXT NOT NULL,
		title TEXT NOT NULL,
		category_icon TEXT NOT NULL DEFAULT '',
		category_text TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		users TEXT NOT NULL DEFAULT '[]',
		height INTEGER NOT NULL,
		status_color TEXT NOT NULL DEFAULT '',
		background TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		options TEXT NOT NULL DEFAULT '[]',
		location TEXT NOT NULL DEFAULT '',
		date TEXT NOT NULL DEFAULT '',
		time TEXT NOT NULL DEFAULT '',
		initiator_id TEXT NOT NULL DEFAULT '',
		receiver_id TEXT NOT NULL DEFAULT '',
		remark TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_signals_seq ON signals(seq);
	CREATE INDEX IF NOT EXISTS idx_signals_initiator ON signals(initiator_id);
	CREATE INDEX IF NOT EXISTS idx_signals_receiver ON signals(receiver_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Append inserts signals after the existing ones, in order. It returns the
// number inserted; IDs that already exist are skipped.
func (s *Store) Append(ctx context.Context, sigs []signal.Signal) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(sigs) == 0 {
		return 0, nil
	}

	var last int64
	if err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(seq), 0) FROM signals").Scan(&last); err != nil {
		return 0, fmt.Errorf("max seq: %w", err)
	}

	inserted := 0
	for _, sig := range sigs {
		last++
		ok, err := s.insert(ctx, sig, last)
		if err != nil {
			return inserted, err
		}
		if ok {
			inserted++
		}
	}
	return inserted, nil
}

// Prepend inserts sig before every existing signal.
func (s *Store) Prepend(ctx context.Context, sig signal.Signal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var first int64
	if err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MIN(seq), 1) FROM signals").Scan(&first); err != nil {
		return fmt.Errorf("min seq: %w", err)
	}
	ok, err := s.insert(ctx, sig, first-1)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("insert %s: duplicate id", sig.ID)
	}
	return nil
}

// insert writes one row. Caller must hold s.mu.
func (s *Store) insert(ctx context.Context, sig signal.Signal, seq int64) (bool, error) {
	users, err := json.Marshal(nonNil(sig.Users))
	if err != nil {
		return false, fmt.Errorf("encode users: %w", err)
	}
	options, err := json.Marshal(nonNil(sig.Options))
	if err != nil {
		return false, fmt.Errorf("encode options: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO signals (
			id, seq, type, status, title, category_icon, category_text,
			created_at, users, height, status_color, background, description,
			options, location, date, time, initiator_id, receiver_id, remark
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		sig.ID, seq, string(sig.Type), string(sig.Status), sig.Title,
		sig.Category.Icon, sig.Category.Text, sig.Created.UnixMilli(),
		string(users), sig.Height, sig.StatusColor, sig.Background,
		sig.Description, string(options), sig.Location, sig.Date, sig.Time,
		sig.InitiatorID, sig.ReceiverID, sig.Remark,
	)
	if err != nil {
		return false, fmt.Errorf("insert %s: %w", sig.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

const selectColumns = `
	SELECT id, type, status, title, category_icon, category_text, created_at,
		users, height, status_color, background, description, options,
		location, date, time, initiator_id, receiver_id, remark
	FROM signals`

// List returns every signal in feed order (newest prepended first).
func (s *Store) List(ctx context.Context) ([]signal.Signal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.querySignals(ctx, selectColumns+" ORDER BY seq ASC")
}

// Get returns the signal with id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (signal.Signal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sigs, err := s.querySignals(ctx, selectColumns+" WHERE id = ?", id)
	if err != nil {
		return signal.Signal{}, err
	}
	if len(sigs) == 0 {
		return signal.Signal{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sigs[0], nil
}

// SetOutcome records a response: new status, indicator colour and remark.
// It returns the updated signal.
func (s *Store) SetOutcome(ctx context.Context, id string, status signal.Status, color, remark string) (signal.Signal, error) {
	s.mu.Lock()
	res, err := s.db.ExecContext(ctx,
		"UPDATE signals SET status = ?, status_color = ?, remark = ? WHERE id = ?",
		string(status), color, remark, id)
	s.mu.Unlock()
	if err != nil {
		return signal.Signal{}, fmt.Errorf("update %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return signal.Signal{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.Get(ctx, id)
}

// Counts is how many signals a user sent and received.
type Counts struct {
	Initiated int
	Received  int
	Pending   int // received and still waiting for this user
}

// CountsFor tallies signals for userID.
func (s *Store) CountsFor(ctx context.Context, userID string) (Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var c Counts
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN initiator_id = ?1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN receiver_id = ?1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN receiver_id = ?1 AND initiator_id != ?1 AND status = ?2 THEN 1 ELSE 0 END), 0)
		FROM signals
	`, userID, string(signal.StatusPending)).Scan(&c.Initiated, &c.Received, &c.Pending)
	if err != nil {
		return Counts{}, fmt.Errorf("count signals: %w", err)
	}
	return c, nil
}

// Len returns the number of stored signals.
func (s *Store) Len(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM signals").Scan(&n)
	return n, err
}

// querySignals executes a query and scans the rows.
// Caller must hold s.mu (read lock is sufficient).
func (s *Store) querySignals(ctx context.Context, query string, args ...any) ([]signal.Signal, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sigs []signal.Signal
	for rows.Next() {
		var (
			sig            signal.Signal
			typ, status    string
			created        int64
			users, options string
		)
		err := rows.Scan(
			&sig.ID, &typ, &status, &sig.Title,
			&sig.Category.Icon, &sig.Category.Text, &created,
			&users, &sig.Height, &sig.StatusColor, &sig.Background,
			&sig.Description, &options, &sig.Location, &sig.Date, &sig.Time,
			&sig.InitiatorID, &sig.ReceiverID, &sig.Remark,
		)
		if err != nil {
			return nil, err
		}
		sig.Type = signal.Type(typ)
		sig.Status = signal.Status(status)
		sig.Created = time.UnixMilli(created)
		if err := json.Unmarshal([]byte(users), &sig.Users); err != nil {
			return nil, fmt.Errorf("decode users of %s: %w", sig.ID, err)
		}
		if err := json.Unmarshal([]byte(options), &sig.Options); err != nil {
			return nil, fmt.Errorf("decode options of %s: %w", sig.ID, err)
		}
		if len(sig.Options) == 0 {
			sig.Options = nil
		}
		sigs = append(sigs, sig)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sigs, nil
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
