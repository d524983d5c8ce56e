package dbinspect

import (
	"context"
	"strings"
	"testing"
)

func TestValidateIdentifierRejectsUnsafeNames(t *testing.T) {
	cases := []struct {
		name string
		ok   bool
	}{
		{"users", true},
		{"_private", true},
		{"user-name", false},
		{"users; DROP TABLE x", false},
		{strings.Repeat("a", 129), false},
	}
	for _, c := range cases {
		err := ValidateIdentifier(c.name)
		if (err == nil) != c.ok {
			t.Errorf("ValidateIdentifier(%q) err=%v, want ok=%v", c.name, err, c.ok)
		}
	}
}

func TestQuoteIsEngineSpecific(t *testing.T) {
	q, err := Quote(EngineMySQL, "users")
	if err != nil || q != "`users`" {
		t.Errorf("mysql quote = %q, %v", q, err)
	}
	q, err = Quote(EnginePostgres, "users")
	if err != nil || q != `"users"` {
		t.Errorf("postgres quote = %q, %v", q, err)
	}
	if _, err := Quote(EngineMySQL, "bad;name"); err == nil {
		t.Errorf("expected rejection of unsafe identifier")
	}
}

func TestConnectAndFetchSQLiteSchema(t *testing.T) {
	insp, err := Connect(Config{Engine: EngineSQLite, DSN: ":memory:"})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer insp.Disconnect()

	ctx := context.Background()
	if _, err := insp.db.ExecContext(ctx, `CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := insp.db.ExecContext(ctx, `INSERT INTO users (name) VALUES ('a'), ('b')`); err != nil {
		t.Fatalf("insert: %v", err)
	}

	schema, fromCache, err := insp.GetSchema(ctx, false)
	if err != nil {
		t.Fatalf("GetSchema: %v", err)
	}
	if fromCache {
		t.Errorf("expected first fetch to not be from cache")
	}
	if len(schema.Tables) != 1 || schema.Tables[0].Name != "users" {
		t.Fatalf("got tables %+v", schema.Tables)
	}
	if schema.Tables[0].RowEstimate != 2 {
		t.Errorf("RowEstimate = %d, want 2", schema.Tables[0].RowEstimate)
	}

	_, fromCache, err = insp.GetSchema(ctx, false)
	if err != nil || !fromCache {
		t.Errorf("expected second fetch to be served from cache, fromCache=%v err=%v", fromCache, err)
	}
}

func TestDSNBuildsPerEngine(t *testing.T) {
	if got := DSN(EngineSQLite, "", 0, "", "", "/tmp/app.db"); got != "/tmp/app.db" {
		t.Errorf("sqlite DSN = %q, want the bare path", got)
	}
	if got := DSN(EngineMySQL, "localhost", 3306, "root", "secret", "app"); got != "root:secret@tcp(localhost:3306)/app?parseTime=true" {
		t.Errorf("mysql DSN = %q", got)
	}
	if got := DSN(EnginePostgres, "localhost", 5432, "root", "secret", "app"); !strings.Contains(got, "dbname=app") || !strings.Contains(got, "port=5432") {
		t.Errorf("postgres DSN = %q", got)
	}
}

func TestDefaultPort(t *testing.T) {
	if DefaultPort(EngineMySQL) != 3306 {
		t.Errorf("mysql default port != 3306")
	}
	if DefaultPort(EnginePostgres) != 5432 {
		t.Errorf("postgres default port != 5432")
	}
	if DefaultPort(EngineSQLite) != 0 {
		t.Errorf("sqlite default port != 0")
	}
}

func TestPasswordObfuscationRoundTrips(t *testing.T) {
	got := ObfuscatePassword("hunter2")
	if got == "hunter2" {
		t.Errorf("ObfuscatePassword returned the password unchanged")
	}
	back, err := DeobfuscatePassword(got)
	if err != nil {
		t.Fatalf("DeobfuscatePassword: %v", err)
	}
	if back != "hunter2" {
		t.Errorf("round-trip = %q, want %q", back, "hunter2")
	}
	if empty, err := DeobfuscatePassword(""); err != nil || empty != "" {
		t.Errorf("empty round-trip = %q, %v", empty, err)
	}
}

func TestFormatTreeIncludesAnnotations(t *testing.T) {
	tbl := Table{
		Name:        "posts",
		RowEstimate: 3,
		Columns: []Column{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "author_id", Type: "INTEGER", ForeignKey: "users.id"},
		},
	}
	out := FormatTree(tbl)
	if !strings.Contains(out, "posts (2 cols, ~3 rows)") {
		t.Errorf("missing header, got %q", out)
	}
	if !strings.Contains(out, "[PK]") || !strings.Contains(out, "[FK->users.id]") {
		t.Errorf("missing annotations, got %q", out)
	}
}
