package database

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.RunMigrations(); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}
	return db
}

func TestNew_CreatesConnection(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")

	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() error = %v, want nil", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
	if err := db.Ping(); err != nil {
		t.Errorf("Ping() error = %v, want nil", err)
	}
}

func TestNew_InvalidPath_ReturnsError(t *testing.T) {
	// a regular file where a parent directory should be fails even as root
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, nil, 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	_, err := New(filepath.Join(blocker, "nested", "test.db"))
	if err == nil {
		t.Error("New() with invalid path should return error")
	}
}

func TestRunMigrations_CreatesAllTables(t *testing.T) {
	db := newTestDB(t)

	expectedTables := []string{
		"equities",
		"bullion",
		"cash",
		"api",
		"preferences",
		"views",
		"symbol_names",
		"symbol_meta",
		"fetch_history",
	}
	for _, table := range expectedTables {
		var exists int
		query := `SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`
		if err := db.QueryRow(query, table).Scan(&exists); err != nil {
			t.Errorf("checking table %s: %v", table, err)
			continue
		}
		if exists != 1 {
			t.Errorf("table %s does not exist", table)
		}
	}
}

func TestRunMigrations_SeedsDefaults(t *testing.T) {
	db := newTestDB(t)

	counts := map[string]int{
		"cash":        1,
		"bullion":     4,
		"views":       3,
		"preferences": 6,
		"api":         4,
	}
	for table, want := range counts {
		var got int
		if err := db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&got); err != nil {
			t.Fatalf("counting %s: %v", table, err)
		}
		if got != want {
			t.Errorf("%s rows = %d, want %d", table, got, want)
		}
	}
}

func TestRunMigrations_Idempotent(t *testing.T) {
	db := newTestDB(t)

	if _, err := db.Exec(`UPDATE cash SET value = 42 WHERE id = 1`); err != nil {
		t.Fatalf("updating cash: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := db.RunMigrations(); err != nil {
			t.Fatalf("RunMigrations() iteration %d error = %v, want nil", i+1, err)
		}
	}

	var tableCount int
	query := `SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'`
	if err := db.QueryRow(query).Scan(&tableCount); err != nil {
		t.Fatalf("counting tables: %v", err)
	}
	if tableCount != 9 {
		t.Errorf("table count = %d, want 9", tableCount)
	}

	var cash float64
	if err := db.QueryRow(`SELECT value FROM cash WHERE id = 1`).Scan(&cash); err != nil {
		t.Fatalf("reading cash: %v", err)
	}
	if cash != 42 {
		t.Errorf("cash = %v after re-running migrations, want 42", cash)
	}
}

func TestRunMigrations_RejectsUnknownMetal(t *testing.T) {
	db := newTestDB(t)

	if _, err := db.Exec(`INSERT INTO bullion (metal, ounces) VALUES ('copper', 1)`); err == nil {
		t.Error("inserting unknown metal should fail the check constraint")
	}
}

func TestDB_InTx(t *testing.T) {
	db := newTestDB(t)

	boom := errors.New("boom")
	err := db.InTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO equities (symbol, shares) VALUES ('AAPL', 10)`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx() error = %v, want %v", err, boom)
	}

	var n int
	db.QueryRow(`SELECT COUNT(*) FROM equities`).Scan(&n)
	if n != 0 {
		t.Errorf("equities rows = %d after rollback, want 0", n)
	}

	err = db.InTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO equities (symbol, shares) VALUES ('AAPL', 10)`)
		return err
	})
	if err != nil {
		t.Fatalf("InTx() error = %v", err)
	}
	db.QueryRow(`SELECT COUNT(*) FROM equities`).Scan(&n)
	if n != 1 {
		t.Errorf("equities rows = %d after commit, want 1", n)
	}
}

func TestDB_Close(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Errorf("Close() error = %v, want nil", err)
	}
	if err := db.Ping(); err == nil {
		t.Error("Ping() after Close() should return error")
	}
}
