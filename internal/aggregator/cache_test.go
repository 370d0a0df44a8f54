package aggregator

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ddonindia/lodestarr/internal/result"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	_, err = db.Exec(`CREATE TABLE search_cache (
		key TEXT PRIMARY KEY,
		results BLOB NOT NULL,
		expires_at INTEGER NOT NULL
	)`)
	if err != nil {
		t.Fatalf("create search_cache table: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCache_NilDBAlwaysMisses(t *testing.T) {
	c := NewCache(nil, time.Minute)
	if _, ok := c.Get("anything"); ok {
		t.Error("expected a nil-backed cache to always miss")
	}
}

func TestCache_SetThenGet(t *testing.T) {
	c := NewCache(openTestDB(t), time.Minute)
	want := []result.TorrentResult{{Title: "Example", Seeders: 5}}

	c.Set("key1", want)

	got, ok := c.Get("key1")
	if !ok {
		t.Fatal("expected a hit for a freshly set key")
	}
	if len(got) != 1 || got[0].Title != "Example" {
		t.Errorf("unexpected cached results: %+v", got)
	}
}

func TestCache_MissOnUnknownKey(t *testing.T) {
	c := NewCache(openTestDB(t), time.Minute)
	if _, ok := c.Get("missing"); ok {
		t.Error("expected a miss for a key never set")
	}
}

func TestCache_ExpiredEntryIsAMiss(t *testing.T) {
	c := NewCache(openTestDB(t), -time.Minute)
	c.Set("stale", []result.TorrentResult{{Title: "Old"}})

	if _, ok := c.Get("stale"); ok {
		t.Error("expected an already-expired entry to be reported as a miss")
	}
}

func TestCache_SweepRemovesExpiredEntries(t *testing.T) {
	db := openTestDB(t)
	c := NewCache(db, -time.Minute)
	c.Set("stale", []result.TorrentResult{{Title: "Old"}})

	c.Sweep()

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM search_cache`).Scan(&count); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 0 {
		t.Errorf("expected sweep to remove the expired row, %d rows remain", count)
	}
}
