package geocode

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// Cache persists resolution results across runs. Only successful lookups are
// stored; failures always go back to the provider.
type Cache interface {
	GetResolve(ctx context.Context, key string) (*Result, bool, error)
	PutResolve(ctx context.Context, key string, r *Result) error
	GetReverse(ctx context.Context, placeKey string) (*Address, bool, error)
	PutReverse(ctx context.Context, placeKey string, a *Address) error
	Close() error
}

// cacheKey returns SHA-256 hex of the normalized address line.
func cacheKey(address string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(address), " "))
	h := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%x", h)
}

// SQLiteCache implements Cache on modernc.org/sqlite.
type SQLiteCache struct {
	db *sql.DB
}

const cacheMigration = `
CREATE TABLE IF NOT EXISTS resolve_cache (
	address_hash  TEXT PRIMARY KEY,
	place_key     TEXT NOT NULL,
	location_type TEXT NOT NULL,
	confidence    REAL NOT NULL,
	formatted     TEXT NOT NULL,
	cached_at     DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS reverse_cache (
	place_key    TEXT PRIMARY KEY,
	house_number TEXT NOT NULL,
	street_name  TEXT NOT NULL,
	city         TEXT NOT NULL,
	state        TEXT NOT NULL,
	zip_code     TEXT NOT NULL,
	cached_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_resolve_cache_place_key ON resolve_cache(place_key);
`

// NewSQLiteCache opens (or creates) a cache database at the given path and
// configures WAL mode.
func NewSQLiteCache(dsn string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "cache: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "cache: exec %s", pragma)
		}
	}
	if _, err := db.Exec(cacheMigration); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "cache: migrate")
	}
	return &SQLiteCache{db: db}, nil
}

func (s *SQLiteCache) GetResolve(ctx context.Context, key string) (*Result, bool, error) {
	var r Result
	row := s.db.QueryRowContext(ctx,
		"SELECT place_key, location_type, confidence, formatted FROM resolve_cache WHERE address_hash = ?", key)
	if err := row.Scan(&r.PlaceKey, &r.LocationType, &r.Confidence, &r.FormattedAddress); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, eris.Wrap(err, "cache: read resolve")
	}
	return &r, true, nil
}

func (s *SQLiteCache) PutResolve(ctx context.Context, key string, r *Result) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO resolve_cache (address_hash, place_key, location_type, confidence, formatted)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (address_hash) DO UPDATE SET
			place_key = excluded.place_key,
			location_type = excluded.location_type,
			confidence = excluded.confidence,
			formatted = excluded.formatted,
			cached_at = datetime('now')`,
		key, r.PlaceKey, r.LocationType, r.Confidence, r.FormattedAddress)
	return eris.Wrap(err, "cache: store resolve")
}

func (s *SQLiteCache) GetReverse(ctx context.Context, placeKey string) (*Address, bool, error) {
	var a Address
	row := s.db.QueryRowContext(ctx,
		"SELECT house_number, street_name, city, state, zip_code FROM reverse_cache WHERE place_key = ?", placeKey)
	if err := row.Scan(&a.HouseNumber, &a.StreetName, &a.City, &a.State, &a.ZipCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, eris.Wrap(err, "cache: read reverse")
	}
	return &a, true, nil
}

func (s *SQLiteCache) PutReverse(ctx context.Context, placeKey string, a *Address) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reverse_cache (place_key, house_number, street_name, city, state, zip_code)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (place_key) DO UPDATE SET
			house_number = excluded.house_number,
			street_name = excluded.street_name,
			city = excluded.city,
			state = excluded.state,
			zip_code = excluded.zip_code,
			cached_at = datetime('now')`,
		placeKey, a.HouseNumber, a.StreetName, a.City, a.State, a.ZipCode)
	return eris.Wrap(err, "cache: store reverse")
}

func (s *SQLiteCache) Close() error {
	return s.db.Close()
}
