package dbinspect

import (
	"context"
	"database/sql"
)

func fetchMySQLSchema(ctx context.Context, db *sql.DB) (*Schema, error) {
	rows, err := db.QueryContext(ctx, `SELECT table_name FROM information_schema.tables WHERE table_schema = database()`)
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
		t, err := mysqlTable(ctx, db, name)
		if err != nil {
			return nil, err
		}
		schema.Tables = append(schema.Tables, t)
	}
	return schema, nil
}

func mysqlTable(ctx context.Context, db *sql.DB, name string) (Table, error) {
	t := Table{Name: name}

	colRows, err := db.QueryContext(ctx, `
		SELECT column_name, column_type, column_key
		FROM information_schema.columns
		WHERE table_schema = database() AND table_name = ?
		ORDER BY ordinal_position`, name)
	if err != nil {
		return t, err
	}
	defer colRows.Close()

	fks := mysqlForeignKeys(ctx, db, name)

	for colRows.Next() {
		var cname, ctype, key string
		if err := colRows.Scan(&cname, &ctype, &key); err != nil {
			return t, err
		}
		col := Column{Name: cname, Type: ctype, PrimaryKey: key == "PRI", Unique: key == "UNI"}
		if fk, ok := fks[cname]; ok {
			col.ForeignKey = fk
		}
		t.Columns = append(t.Columns, col)
	}

	row := db.QueryRowContext(ctx, "SELECT table_rows FROM information_schema.tables WHERE table_schema = database() AND table_name = ?", name)
	row.Scan(&t.RowEstimate)

	return t, nil
}

func mysqlForeignKeys(ctx context.Context, db *sql.DB, name string) map[string]string {
	fks := map[string]string{}
	rows, err := db.QueryContext(ctx, `
		SELECT column_name, referenced_table_name, referenced_column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = database() AND table_name = ? AND referenced_table_name IS NOT NULL`, name)
	if err != nil {
		return fks
	}
	defer rows.Close()
	for rows.Next() {
		var col, refTable, refCol string
		if err := rows.Scan(&col, &refTable, &refCol); err != nil {
			continue
		}
		fks[col] = refTable + "." + refCol
	}
	return fks
}
