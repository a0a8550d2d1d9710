// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// store_test.go holds the Postgres helpers shared by the ledger tests.
// Every test that needs the database is skipped when it is unreachable.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"testing"

	"blogdesk/internal/database"
)

// ledgerDSN builds the test DSN from the same POSTGRES_* variables the
// server reads, defaulting to a local development instance.
func ledgerDSN() string {
	get := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable&connect_timeout=2",
		get("POSTGRES_USER", "blogdesk"),
		get("POSTGRES_PASSWORD", "changeme"),
		get("POSTGRES_HOST", "localhost"),
		get("POSTGRES_PORT", "5432"),
		get("POSTGRES_DB", "blogdesk"),
	)
}

// testDB connects through database.Connect, migrates the ledger schema and
// closes the pool when the test ends.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Connect(ledgerDSN())
	if err != nil {
		t.Skipf("skipping: ledger database unavailable: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate ledger: %v", err)
	}
	return db
}

// cleanOrphans deletes the rows a test recorded for its post ids.
func cleanOrphans(t *testing.T, db *sql.DB, postIDs ...string) {
	t.Helper()
	for _, id := range postIDs {
		if _, err := db.Exec(`DELETE FROM asset_orphans WHERE post_id = $1`, id); err != nil {
			t.Logf("clean orphans for %s: %v", id, err)
		}
	}
}
