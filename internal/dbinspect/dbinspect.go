// Package dbinspect implements the multi-engine database schema
// inspector (§4.9): connect, fetch and TTL-cache a schema, render it as
// a compact tree, and run identifier-safety checks before any
// identifier is interpolated into SQL. Grounded on the teacher's
// internal/memory/store.go for database/sql + PRAGMA/driver wiring,
// generalized here across modernc.org/sqlite, go-sql-driver/mysql, and
// lib/pq.
package dbinspect

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/kodestack/chainguard/internal/cache"
	"github.com/kodestack/chainguard/internal/config"
)

// Engine names the supported database backends.
type Engine string

const (
	EngineMySQL    Engine = "mysql"
	EnginePostgres Engine = "postgres"
	EngineSQLite   Engine = "sqlite"
)

// Config is the connection parameters stored by db_connect.
type Config struct {
	Engine Engine
	DSN    string
}

var identifierPattern = regexp.MustCompile(config.IdentifierPatternSource)

// ErrUnsafeIdentifier is returned when a table or column name fails the
// identifier-safety check.
var ErrUnsafeIdentifier = fmt.Errorf("identifier fails safety check")

// ValidateIdentifier rejects any identifier outside
// ^[A-Za-z_][A-Za-z0-9_]{0,127}$.
func ValidateIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrUnsafeIdentifier, name)
	}
	return nil
}

// Quote applies the engine-specific identifier quoting after validating
// the identifier.
func Quote(engine Engine, name string) (string, error) {
	if err := ValidateIdentifier(name); err != nil {
		return "", err
	}
	switch engine {
	case EngineMySQL, EngineSQLite:
		return "`" + name + "`", nil
	case EnginePostgres:
		return `"` + name + `"`, nil
	default:
		return "", fmt.Errorf("dbinspect: unknown engine %q", engine)
	}
}

// Column describes one table column.
type Column struct {
	Name       string
	Type       string
	PrimaryKey bool
	Unique     bool
	ForeignKey string // "table.column" when this column is an FK, else "".
}

// Table is one inspected table's schema.
type Table struct {
	Name        string
	Columns     []Column
	RowEstimate int64
}

// Schema is the full fetched schema for a connection.
type Schema struct {
	Tables []Table
}

// Inspector owns at most one active connection and schema cache per
// session (§4.1 ownership rule).
type Inspector struct {
	cfg    Config
	db     *sql.DB
	schema *cache.TTLLRU[*Schema]
}

const schemaCacheKey = "schema"

// Connect opens the configured engine's connection and stores cfg.
func Connect(cfg Config) (*Inspector, error) {
	driver := driverName(cfg.Engine)
	if driver == "" {
		return nil, fmt.Errorf("dbinspect: unsupported engine %q", cfg.Engine)
	}
	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("dbinspect: open %s: %w", cfg.Engine, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("dbinspect: ping %s: %w", cfg.Engine, err)
	}
	return &Inspector{
		cfg:    cfg,
		db:     db,
		schema: cache.NewTTLLRU[*Schema](1, config.DBSchemaCheckTTL),
	}, nil
}

// DSN builds the driver-specific data source name from discrete
// connection fields, so db_connect can accept host/port/user/password/
// database the way the tool's callers do rather than a raw DSN string.
// SQLite ignores everything but database, which is the file path.
func DSN(engine Engine, host string, port int, user, password, database string) string {
	switch engine {
	case EngineSQLite:
		return database
	case EngineMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", user, password, host, port, database)
	case EnginePostgres:
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable", host, port, user, password, database)
	default:
		return ""
	}
}

// DefaultPort returns the engine's conventional port, used when db_connect
// is not given one explicitly.
func DefaultPort(engine Engine) int {
	switch engine {
	case EnginePostgres:
		return 5432
	case EngineMySQL:
		return 3306
	default:
		return 0
	}
}

// ObfuscatePassword lightly encodes a password before db_connect persists
// it to a project's db_config so a later call can reconnect without the
// caller repeating it. This is obfuscation, not encryption — it keeps a
// casual read of state.json from showing the password in the clear but is
// not a secrets vault.
func ObfuscatePassword(password string) string {
	return base64.StdEncoding.EncodeToString([]byte(password))
}

// DeobfuscatePassword reverses ObfuscatePassword.
func DeobfuscatePassword(encoded string) (string, error) {
	if encoded == "" {
		return "", nil
	}
	b, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("dbinspect: decode saved password: %w", err)
	}
	return string(b), nil
}

func driverName(e Engine) string {
	switch e {
	case EngineMySQL:
		return "mysql"
	case EnginePostgres:
		return "postgres"
	case EngineSQLite:
		return "sqlite"
	default:
		return ""
	}
}

// Disconnect closes the underlying connection.
func (insp *Inspector) Disconnect() error {
	if insp.db == nil {
		return nil
	}
	return insp.db.Close()
}

// GetSchema returns the cached schema if younger than the TTL, unless
// forceRefresh is set, in which case it always re-fetches.
func (insp *Inspector) GetSchema(ctx context.Context, forceRefresh bool) (*Schema, bool, error) {
	if !forceRefresh {
		if s, ok := insp.schema.Get(schemaCacheKey); ok {
			return s, true, nil
		}
	}
	s, err := insp.fetchSchema(ctx)
	if err != nil {
		return nil, false, err
	}
	insp.schema.Put(schemaCacheKey, s)
	return s, false, nil
}

// SchemaAge reports how long ago the cached schema was fetched.
func (insp *Inspector) SchemaAge() (time.Duration, bool) {
	return insp.schema.Age(schemaCacheKey)
}

func (insp *Inspector) fetchSchema(ctx context.Context) (*Schema, error) {
	switch insp.cfg.Engine {
	case EngineSQLite:
		return fetchSQLiteSchema(ctx, insp.db)
	case EngineMySQL:
		return fetchMySQLSchema(ctx, insp.db)
	case EnginePostgres:
		return fetchPostgresSchema(ctx, insp.db)
	default:
		return nil, fmt.Errorf("dbinspect: unsupported engine %q", insp.cfg.Engine)
	}
}

// Table returns one table's schema from the cached (or freshly fetched)
// schema, for the db_table tool.
func (insp *Inspector) Table(ctx context.Context, name string) (*Table, error) {
	if err := ValidateIdentifier(name); err != nil {
		return nil, err
	}
	schema, _, err := insp.GetSchema(ctx, false)
	if err != nil {
		return nil, err
	}
	for i := range schema.Tables {
		if schema.Tables[i].Name == name {
			return &schema.Tables[i], nil
		}
	}
	return nil, fmt.Errorf("dbinspect: table %q not found", name)
}

// FormatTree renders the §4.9 compact tree: "table (N cols, ~R rows)"
// followed by per-column lines with PK/UNIQUE/FK annotations.
func FormatTree(t Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d cols, ~%d rows)\n", t.Name, len(t.Columns), t.RowEstimate)
	for _, c := range t.Columns {
		var tags []string
		if c.PrimaryKey {
			tags = append(tags, "PK")
		}
		if c.Unique {
			tags = append(tags, "UNIQUE")
		}
		if c.ForeignKey != "" {
			tags = append(tags, "FK->"+c.ForeignKey)
		}
		line := fmt.Sprintf("  %s %s", c.Name, c.Type)
		if len(tags) > 0 {
			line += " [" + strings.Join(tags, ",") + "]"
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// FormatSchema renders every table's tree in order.
func FormatSchema(s *Schema) string {
	var b strings.Builder
	for _, t := range s.Tables {
		b.WriteString(FormatTree(t))
	}
	return b.String()
}
