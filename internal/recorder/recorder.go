package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/enginewatch/enginewatch/internal/alerts"
)

const (
	backoffInitial    = 1 * time.Second
	backoffMax        = 30 * time.Second
	backoffMultiplier = 2.0
	writeTimeout      = 5 * time.Second
	defaultQueueSize  = 256
)

// Recorder is the SQLite-backed alert log. It implements the alert
// engine's Recorder sink.
type Recorder struct {
	db      *sql.DB
	session string
	queue   chan alerts.Alert
}

// Open creates (or reuses) the database at path, runs migrations and
// starts a new session. queueSize <= 0 selects the default depth.
func Open(path string, queueSize int) (*Recorder, error) {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir data dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA synchronous=NORMAL; PRAGMA temp_store=MEMORY;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	r := &Recorder{
		db:      db,
		session: uuid.NewString(),
		queue:   make(chan alerts.Alert, queueSize),
	}
	if _, err := db.Exec(`INSERT INTO sessions (id, started_at) VALUES (?, ?)`,
		r.session, time.Now().UTC()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open session: %w", err)
	}
	slog.Info("recorder: session opened", "path", path, "session", r.session)
	return r, nil
}

func migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS alerts (
			session_id TEXT NOT NULL,
			alert_id INTEGER NOT NULL,
			engine INTEGER NOT NULL,
			param TEXT NOT NULL,
			level TEXT NOT NULL,
			code INTEGER NOT NULL,
			message TEXT NOT NULL,
			value REAL NOT NULL,
			onset DATETIME NOT NULL,
			cleared DATETIME,
			latched INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY(session_id, alert_id),
			FOREIGN KEY(session_id) REFERENCES sessions(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_onset ON alerts(onset DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate failed: %w", err)
		}
	}
	return nil
}

// Session returns this run's session id.
func (r *Recorder) Session() string { return r.session }

// Record enqueues one alert event. If the queue is full the oldest entry
// is evicted to make room; Record never blocks the caller.
func (r *Recorder) Record(a alerts.Alert) error {
	select {
	case r.queue <- a:
	default:
		// Queue full: drop the oldest event, keep the newest.
		select {
		case <-r.queue:
			slog.Warn("recorder: queue full, evicted oldest event", "queue_cap", cap(r.queue))
		default:
		}
		r.queue <- a
	}
	return nil
}

// Run drains the queue, writing events to the database. Failed writes are
// retried with exponential backoff. Run blocks until ctx is cancelled,
// then flushes whatever is still queued.
func (r *Recorder) Run(ctx context.Context) {
	bo := newBackoff()

	for {
		select {
		case <-ctx.Done():
			r.flush()
			return

		case a := <-r.queue:
			for {
				err := r.write(ctx, a)
				if err == nil {
					bo.reset()
					break
				}
				if ctx.Err() != nil {
					return
				}
				wait := bo.next()
				slog.Error("recorder: write failed, will retry",
					"alert", a.ID, "err", err, "retry_in", wait)
				select {
				case <-ctx.Done():
					return
				case <-time.After(wait):
				}
			}
		}
	}
}

// flush makes one best-effort pass over the remaining queue at shutdown.
func (r *Recorder) flush() {
	for {
		select {
		case a := <-r.queue:
			if err := r.write(context.Background(), a); err != nil {
				slog.Warn("recorder: dropped event at shutdown", "alert", a.ID, "err", err)
				return
			}
		default:
			return
		}
	}
}

// write upserts one alert event. Clears arrive as the same alert id with
// Cleared set and only update the cleared column.
func (r *Recorder) write(ctx context.Context, a alerts.Alert) error {
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	var cleared interface{}
	if !a.Cleared.IsZero() {
		cleared = a.Cleared.UTC()
	}
	_, err := r.db.ExecContext(wctx, `INSERT INTO alerts
		(session_id,alert_id,engine,param,level,code,message,value,onset,cleared,latched)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(session_id, alert_id) DO UPDATE SET cleared=excluded.cleared`,
		r.session, a.ID, a.Engine.Number(), a.Param.String(), a.Level.String(),
		a.Code, a.Message, a.Value, a.Onset.UTC(), cleared, boolInt(a.Latched))
	return err
}

// Entry is one persisted alert event.
type Entry struct {
	Session string
	AlertID uint32
	Engine  int
	Param   string
	Level   string
	Code    uint16
	Message string
	Value   float64
	Onset   time.Time
	Cleared time.Time // zero when still active
	Latched bool
}

// RecentAlerts returns up to n events across all sessions, newest first.
func (r *Recorder) RecentAlerts(ctx context.Context, n int) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT
		session_id,alert_id,engine,param,level,code,message,value,onset,cleared,latched
		FROM alerts ORDER BY onset DESC, alert_id DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Entry, 0, n)
	for rows.Next() {
		var e Entry
		var cleared sql.NullTime
		var latched int
		if err := rows.Scan(&e.Session, &e.AlertID, &e.Engine, &e.Param, &e.Level,
			&e.Code, &e.Message, &e.Value, &e.Onset, &cleared, &latched); err != nil {
			return nil, err
		}
		if cleared.Valid {
			e.Cleared = cleared.Time
		}
		e.Latched = latched != 0
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close closes the database.
func (r *Recorder) Close() error {
	return r.db.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// backoff implements truncated exponential backoff with jitter.
type backoff struct {
	current time.Duration
}

func newBackoff() *backoff {
	return &backoff{current: backoffInitial}
}

// next returns the current backoff duration and advances the internal state.
func (b *backoff) next() time.Duration {
	d := b.current
	// Apply ±25 % jitter.
	jitter := time.Duration(float64(b.current) * 0.25 * (rand.Float64()*2 - 1)) //nolint:gosec // not crypto
	d += jitter
	if d < 0 {
		d = 0
	}

	b.current = time.Duration(float64(b.current) * backoffMultiplier)
	if b.current > backoffMax {
		b.current = backoffMax
	}
	return d
}

func (b *backoff) reset() {
	b.current = backoffInitial
}
