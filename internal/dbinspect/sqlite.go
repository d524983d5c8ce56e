package dbinspect

import (
	"context"
	"database/sql"
)

func fetchSQLiteSchema(ctx context.Context, db *sql.DB) (*Schema, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}

	schema := &Schema{}
	for _, name := range names {
		t, err := sqliteTable(ctx, db, name)
		if err != nil {
			return nil, err
		}
		schema.Tables = append(schema.Tables, t)
	}
	return schema, nil
}

func sqliteTable(ctx context.Context, db *sql.DB, name string) (Table, error) {
	t := Table{Name: name}

	colRows, err := db.QueryContext(ctx, "PRAGMA table_info(`"+name+"`)")
	if err != nil {
		return t, err
	}
	defer colRows.Close()

	fks := sqliteForeignKeys(ctx, db, name)

	for colRows.Next() {
		var cid int
		var cname, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := colRows.Scan(&cid, &cname, &ctype, &notnull, &dflt, &pk); err != nil {
			return t, err
		}
		col := Column{Name: cname, Type: ctype, PrimaryKey: pk > 0}
		if fk, ok := fks[cname]; ok {
			col.ForeignKey = fk
		}
		t.Columns = append(t.Columns, col)
	}

	row := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM `"+name+"`")
	row.Scan(&t.RowEstimate)

	return t, nil
}

func sqliteForeignKeys(ctx context.Context, db *sql.DB, name string) map[string]string {
	fks := map[string]string{}
	rows, err := db.QueryContext(ctx, "PRAGMA foreign_key_list(`"+name+"`)")
	if err != nil {
		return fks
	}
	defer rows.Close()
	for rows.Next() {
		var id, seq int
		var table, from, to, onUpdate, onDelete, match string
		if err := rows.Scan(&id, &seq, &table, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			continue
		}
		fks[from] = table + "." + to
	}
	return fks
}
