package dbinspect

import (
	"context"
	"database/sql"
)

func fetchPostgresSchema(ctx context.Context, db *sql.DB) (*Schema, error) {
	rows, err := db.QueryContext(ctx, `SELECT tablename FROM pg_tables WHERE schemaname = 'public'`)
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
		t, err := postgresTable(ctx, db, name)
		if err != nil {
			return nil, err
		}
		schema.Tables = append(schema.Tables, t)
	}
	return schema, nil
}

func postgresTable(ctx context.Context, db *sql.DB, name string) (Table, error) {
	t := Table{Name: name}

	colRows, err := db.QueryContext(ctx, `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1
		ORDER BY ordinal_position`, name)
	if err != nil {
		return t, err
	}
	defer colRows.Close()

	pks := postgresPrimaryKeys(ctx, db, name)
	fks := postgresForeignKeys(ctx, db, name)

	for colRows.Next() {
		var cname, ctype string
		if err := colRows.Scan(&cname, &ctype); err != nil {
			return t, err
		}
		col := Column{Name: cname, Type: ctype, PrimaryKey: pks[cname]}
		if fk, ok := fks[cname]; ok {
			col.ForeignKey = fk
		}
		t.Columns = append(t.Columns, col)
	}

	row := db.QueryRowContext(ctx, "SELECT reltuples::bigint FROM pg_class WHERE relname = $1", name)
	row.Scan(&t.RowEstimate)

	return t, nil
}

func postgresPrimaryKeys(ctx context.Context, db *sql.DB, name string) map[string]bool {
	pks := map[string]bool{}
	rows, err := db.QueryContext(ctx, `
		SELECT a.attname
		FROM pg_index i
		JOIN pg_attribute a ON a.attrelid = i.indrelid AND a.attnum = ANY(i.indkey)
		WHERE i.indrelid = $1::regclass AND i.indisprimary`, name)
	if err != nil {
		return pks
	}
	defer rows.Close()
	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			continue
		}
		pks[col] = true
	}
	return pks
}

func postgresForeignKeys(ctx context.Context, db *sql.DB, name string) map[string]string {
	fks := map[string]string{}
	rows, err := db.QueryContext(ctx, `
		SELECT kcu.column_name, ccu.table_name, ccu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu ON tc.constraint_name = kcu.constraint_name
		JOIN information_schema.constraint_column_usage ccu ON tc.constraint_name = ccu.constraint_name
		WHERE tc.constraint_type = 'FOREIGN KEY' AND tc.table_name = $1`, name)
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
