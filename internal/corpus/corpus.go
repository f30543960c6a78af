// Package corpus is the campaign corpus/crash store used by peacock-fuzz, a
// SQLite-backed repository shaped like the teacher's server/dao/sqlite
// package: a store struct wrapping *sql.DB, per-table init() migrations, and
// repository structs with rezi-encoded BLOB payloads.
package corpus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dekarrin/rezi"
	"github.com/google/uuid"
	"modernc.org/sqlite"
)

// ErrNotFound is returned when a walk or crash ID has no matching row.
var ErrNotFound = errors.New("no such corpus entry")

// Walk is one interesting input discovered during a campaign: the raw
// alternative-index sequence plus when it was recorded.
type Walk struct {
	ID       uuid.UUID
	Sequence []uint64
	Created  time.Time
}

// Crash is a walk that, when serialized and fed to the target, produced a
// reported failure.
type Crash struct {
	ID       uuid.UUID
	WalkID   uuid.UUID
	Signal   int
	Output   string
	Created  time.Time
}

// Store is the corpus/crash persistence surface peacock-fuzz drives a
// campaign against.
type Store struct {
	dbFilename string
	db         *sql.DB

	walks   *WalksDB
	crashes *CrashesDB
}

// Open creates (if absent) and opens the campaign's SQLite database under
// dir, running schema migrations for every table.
func Open(dir string) (*Store, error) {
	st := &Store{dbFilename: "corpus.db"}

	fileName := filepath.Join(dir, st.dbFilename)
	var err error
	st.db, err = sql.Open("sqlite", fileName)
	if err != nil {
		return nil, wrapDBError(err)
	}

	st.walks = &WalksDB{db: st.db}
	if err := st.walks.init(); err != nil {
		return nil, err
	}

	st.crashes = &CrashesDB{db: st.db}
	if err := st.crashes.init(); err != nil {
		return nil, err
	}

	return st, nil
}

// Walks returns the walk repository.
func (s *Store) Walks() *WalksDB {
	return s.walks
}

// Crashes returns the crash repository.
func (s *Store) Crashes() *CrashesDB {
	return s.crashes
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// WalksDB is the repository of interesting walks recorded during a campaign.
type WalksDB struct {
	db *sql.DB
}

func (repo *WalksDB) init() error {
	stmt := `CREATE TABLE IF NOT EXISTS walks (
		id TEXT NOT NULL PRIMARY KEY,
		sequence BLOB NOT NULL,
		created INTEGER NOT NULL
	);`
	if _, err := repo.db.Exec(stmt); err != nil {
		return wrapDBError(err)
	}
	return nil
}

// Add records a newly discovered walk and returns it with its assigned ID.
func (repo *WalksDB) Add(ctx context.Context, seq []uint64) (Walk, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return Walk{}, fmt.Errorf("could not generate ID: %w", err)
	}

	encoded, err := rezi.Enc(seq)
	if err != nil {
		return Walk{}, fmt.Errorf("encode walk: %w", err)
	}

	now := time.Now()
	stmt, err := repo.db.Prepare(`INSERT INTO walks (id, sequence, created) VALUES (?, ?, ?)`)
	if err != nil {
		return Walk{}, wrapDBError(err)
	}
	if _, err := stmt.ExecContext(ctx, newUUID.String(), encoded, now.Unix()); err != nil {
		return Walk{}, wrapDBError(err)
	}

	return Walk{ID: newUUID, Sequence: seq, Created: now}, nil
}

// Count returns the number of walks currently recorded.
func (repo *WalksDB) Count(ctx context.Context) (int, error) {
	var n int
	row := repo.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM walks;`)
	if err := row.Scan(&n); err != nil {
		return 0, wrapDBError(err)
	}
	return n, nil
}

// GetByID retrieves a single recorded walk.
func (repo *WalksDB) GetByID(ctx context.Context, id uuid.UUID) (Walk, error) {
	row := repo.db.QueryRowContext(ctx, `SELECT sequence, created FROM walks WHERE id=?;`, id.String())

	var encoded []byte
	var created int64
	if err := row.Scan(&encoded, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Walk{}, ErrNotFound
		}
		return Walk{}, wrapDBError(err)
	}

	var seq []uint64
	if _, err := rezi.Dec(encoded, &seq); err != nil {
		return Walk{}, fmt.Errorf("decode walk %s: %w", id, err)
	}

	return Walk{ID: id, Sequence: seq, Created: time.Unix(created, 0)}, nil
}

// CrashesDB is the repository of crash reports recorded during a campaign.
type CrashesDB struct {
	db *sql.DB
}

func (repo *CrashesDB) init() error {
	stmt := `CREATE TABLE IF NOT EXISTS crashes (
		id TEXT NOT NULL PRIMARY KEY,
		walk_id TEXT NOT NULL REFERENCES walks(id),
		signal INTEGER NOT NULL,
		output TEXT NOT NULL,
		created INTEGER NOT NULL
	);`
	if _, err := repo.db.Exec(stmt); err != nil {
		return wrapDBError(err)
	}
	return nil
}

// Add records a crash tied to a previously-stored walk.
func (repo *CrashesDB) Add(ctx context.Context, walkID uuid.UUID, signal int, output string) (Crash, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return Crash{}, fmt.Errorf("could not generate ID: %w", err)
	}

	now := time.Now()
	stmt, err := repo.db.Prepare(`INSERT INTO crashes (id, walk_id, signal, output, created) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return Crash{}, wrapDBError(err)
	}
	if _, err := stmt.ExecContext(ctx, newUUID.String(), walkID.String(), signal, output, now.Unix()); err != nil {
		return Crash{}, wrapDBError(err)
	}

	return Crash{ID: newUUID, WalkID: walkID, Signal: signal, Output: output, Created: now}, nil
}

// Count returns the number of crashes currently recorded.
func (repo *CrashesDB) Count(ctx context.Context) (int, error) {
	var n int
	row := repo.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM crashes;`)
	if err := row.Scan(&n); err != nil {
		return 0, wrapDBError(err)
	}
	return n, nil
}

func wrapDBError(err error) error {
	if err == nil {
		return nil
	}
	sqliteErr := &sqlite.Error{}
	if errors.As(err, &sqliteErr) {
		return fmt.Errorf("%s", sqlite.ErrorCodeString[sqliteErr.Code()])
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
