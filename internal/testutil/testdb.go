package testutil

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"connect4/internal/config"
	"connect4/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TestDB is a throwaway Postgres schema with the migrations applied.
type TestDB struct {
	Store  *store.Store
	DSN    string
	Schema string
}

// OpenTestDB skips the test unless TEST_POSTGRES_DSN is set.
func OpenTestDB(t *testing.T) *TestDB {
	t.Helper()
	cfg, err := config.LoadTest()
	if err != nil {
		t.Skipf("skip test db: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	schema := fmt.Sprintf("c4_test_%d", time.Now().UnixNano())
	if err := execOnBase(ctx, cfg.TestPostgresDSN, "CREATE SCHEMA %s", schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	db := &TestDB{DSN: withSearchPath(cfg.TestPostgresDSN, schema), Schema: schema}
	t.Cleanup(func() {
		if db.Store != nil {
			db.Store.Close()
		}
		_ = execOnBase(context.Background(), cfg.TestPostgresDSN, "DROP SCHEMA %s CASCADE", schema)
	})

	st, err := store.New(db.DSN)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	db.Store = st
	if err := ApplyMigrations(ctx, st); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return db
}

// ApplyMigrations runs every *.up.sql under migrations/ in name order.
func ApplyMigrations(ctx context.Context, st *store.Store) error {
	dir, err := findMigrationsDir()
	if err != nil {
		return err
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	if err != nil {
		return err
	}
	sort.Strings(files)
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return err
		}
		if _, err := st.Pool.Exec(ctx, string(b)); err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(f), err)
		}
	}
	return nil
}

func execOnBase(ctx context.Context, dsn, format, schema string) error {
	base, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return err
	}
	defer base.Close()
	_, err = base.Exec(ctx, fmt.Sprintf(format, pgx.Identifier{schema}.Sanitize()))
	return err
}

func findMigrationsDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	start := dir
	for {
		p := filepath.Join(dir, "migrations")
		if fi, err := os.Stat(p); err == nil && fi.IsDir() {
			return p, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("migrations dir not found from %s", start)
		}
		dir = parent
	}
}

func withSearchPath(dsn, schema string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "search_path=" + url.QueryEscape(schema)
}
