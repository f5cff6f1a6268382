package assets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/scenewire/scenewire/internal/core/observability/log"
	"github.com/scenewire/scenewire/pkg/concurrent"
)

const indexSchema = `
CREATE TABLE IF NOT EXISTS assets (
	path       TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	kind       TEXT NOT NULL,
	hash       INTEGER NOT NULL,
	indexed_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS assets_name_idx ON assets(name);
`

// Entry is one indexed asset row.
type Entry struct {
	Path      string
	Name      string
	Kind      Kind
	Hash      uint64
	IndexedAt time.Time
}

// Index is the sqlite-backed search index over the vault. Search results
// order by path, so the first match under a name/kind filter is stable.
type Index struct {
	db     *sql.DB
	lib    *Library
	logger log.Log
}

// OpenIndex opens (creating if needed) the index database at dbPath. WAL
// keeps reads available during reindex writes; a single connection fits
// sqlite's one-writer model.
func OpenIndex(dbPath string, lib *Library, logger log.Log) (*Index, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_synchronous=NORMAL", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening asset index: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("verifying asset index: %w", err)
	}
	if _, err := db.ExecContext(ctx, indexSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrapping asset index schema: %w", err)
	}
	return &Index{db: db, lib: lib, logger: logger}, nil
}

func (ix *Index) Close() error {
	if err := ix.db.Close(); err != nil {
		return fmt.Errorf("closing asset index: %w", err)
	}
	return nil
}

// Rebuild drops and re-creates every row from the vault's current contents.
// Definition files are parsed concurrently; files that fail to parse are
// logged and skipped rather than failing the rebuild. Returns the number of
// indexed assets.
func (ix *Index) Rebuild(ctx context.Context) (int, error) {
	paths, err := ix.definitionPaths()
	if err != nil {
		return 0, err
	}

	parsed, err := concurrent.Map(ctx, paths, runtime.NumCPU(), func(_ context.Context, rel string) (*Entry, error) {
		a, err := ix.lib.Load(rel)
		if err != nil {
			ix.logger.Warn("skipping unparseable asset", log.String("path", rel), log.Error(err))
			return nil, nil
		}
		return &Entry{Path: a.Path, Name: a.Def.Name, Kind: a.Def.Kind, Hash: a.Hash}, nil
	})
	if err != nil {
		return 0, err
	}

	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting reindex transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM assets`); err != nil {
		return 0, fmt.Errorf("clearing asset index: %w", err)
	}
	now := time.Now().UTC()
	count := 0
	for _, e := range parsed {
		if e == nil {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO assets (path, name, kind, hash, indexed_at) VALUES (?, ?, ?, ?, ?)`,
			e.Path, e.Name, string(e.Kind), int64(e.Hash), now,
		); err != nil {
			return 0, fmt.Errorf("indexing %s: %w", e.Path, err)
		}
		count++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing reindex: %w", err)
	}
	ix.logger.Info("asset index rebuilt", log.Int("assets", count), log.Int("files", len(paths)))
	return count, nil
}

func (ix *Index) definitionPaths() ([]string, error) {
	var paths []string
	root := ix.lib.Root()
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(p)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking vault: %w", err)
	}
	return paths, nil
}

// Upsert indexes or refreshes a single vault-relative path.
func (ix *Index) Upsert(ctx context.Context, rel string) error {
	a, err := ix.lib.Load(rel)
	if err != nil {
		return err
	}
	_, err = ix.db.ExecContext(ctx,
		`INSERT INTO assets (path, name, kind, hash, indexed_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET name=excluded.name, kind=excluded.kind,
		 hash=excluded.hash, indexed_at=excluded.indexed_at`,
		a.Path, a.Def.Name, string(a.Def.Kind), int64(a.Hash), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upserting %s: %w", a.Path, err)
	}
	return nil
}

// Remove drops a path from the index. Removing an unindexed path is a no-op.
func (ix *Index) Remove(ctx context.Context, rel string) error {
	if _, err := ix.db.ExecContext(ctx, `DELETE FROM assets WHERE path = ?`, rel); err != nil {
		return fmt.Errorf("removing %s from index: %w", rel, err)
	}
	return nil
}

// Lookup returns the entry indexed at exactly rel.
func (ix *Index) Lookup(ctx context.Context, rel string) (Entry, error) {
	row := ix.db.QueryRowContext(ctx,
		`SELECT path, name, kind, hash, indexed_at FROM assets WHERE path = ?`, rel)
	return scanEntry(row, rel)
}

// Search returns entries whose name contains the query, case-insensitive,
// optionally narrowed by kind, ordered by path.
func (ix *Index) Search(ctx context.Context, name string, kind Kind) ([]Entry, error) {
	query := `SELECT path, name, kind, hash, indexed_at FROM assets
		WHERE name LIKE '%' || ? || '%' COLLATE NOCASE`
	args := []any{strings.TrimSpace(name)}
	if kind != KindAny {
		query += ` AND kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY path`

	rows, err := ix.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching asset index: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var kindStr string
		var hash int64
		if err := rows.Scan(&e.Path, &e.Name, &kindStr, &hash, &e.IndexedAt); err != nil {
			return nil, fmt.Errorf("scanning asset row: %w", err)
		}
		e.Kind = Kind(kindStr)
		e.Hash = uint64(hash)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading asset rows: %w", err)
	}
	return out, nil
}

// Count returns the number of indexed assets.
func (ix *Index) Count(ctx context.Context) (int, error) {
	var n int
	if err := ix.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM assets`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting assets: %w", err)
	}
	return n, nil
}

func scanEntry(row *sql.Row, rel string) (Entry, error) {
	var e Entry
	var kindStr string
	var hash int64
	err := row.Scan(&e.Path, &e.Name, &kindStr, &hash, &e.IndexedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s", ErrAssetNotFound, rel)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("reading asset row: %w", err)
	}
	e.Kind = Kind(kindStr)
	e.Hash = uint64(hash)
	return e, nil
}
