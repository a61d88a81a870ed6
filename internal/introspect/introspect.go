// Package introspect builds a schema snapshot from a live PostgreSQL
// database through information_schema.
//
// Basic usage:
//
//	db, err := introspect.Open(ctx, "postgres://localhost/app", 10*time.Second)
//	snap, err := introspect.Snapshot(ctx, db,
//	    introspect.WithSchemas("public"),
//	    introspect.WithExcludeTables("schema_migrations"),
//	)
package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/damoonrashidi/peek/internal/schema"
	"github.com/lib/pq"
)

// Querier is the subset of *sql.DB introspection needs.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

const columnsQuery = `
	SELECT table_name, column_name
	FROM information_schema.columns
	WHERE table_schema = ANY($1)
	ORDER BY table_name, ordinal_position
`

const foreignKeysQuery = `
	SELECT
		tc.table_name AS referencing_table,
		kcu.column_name AS referencing_column,
		ccu.table_name AS referenced_table,
		ccu.column_name AS referenced_column
	FROM information_schema.table_constraints AS tc
	JOIN information_schema.key_column_usage AS kcu
		ON tc.constraint_name = kcu.constraint_name
		AND tc.table_schema = kcu.table_schema
	JOIN information_schema.constraint_column_usage AS ccu
		ON ccu.constraint_name = tc.constraint_name
		AND ccu.table_schema = tc.table_schema
	WHERE tc.constraint_type = 'FOREIGN KEY'
		AND tc.table_schema = ANY($1)
	ORDER BY referenced_table, referenced_column, referencing_table, referencing_column
`

// Open connects to a PostgreSQL database and checks it is reachable within
// timeout. A zero timeout waits on ctx alone.
func Open(ctx context.Context, url string, timeout time.Duration) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Snapshot reads tables, columns and foreign keys. References are keyed by
// the referenced "table.column" and list the columns that point at it.
func Snapshot(ctx context.Context, db Querier, opts ...Option) (*schema.Snapshot, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	tables, err := getColumns(ctx, db, o.schemas)
	if err != nil {
		return nil, &IntrospectionError{Stage: "columns", Err: err}
	}
	references, err := getForeignKeys(ctx, db, o.schemas)
	if err != nil {
		return nil, &IntrospectionError{Stage: "foreign keys", Err: err}
	}

	if len(o.excludeTables) > 0 {
		excludeTables(tables, references, o.excludeTables)
	}
	return schema.New(tables, references), nil
}

func getColumns(ctx context.Context, db Querier, schemas []string) (map[string][]string, error) {
	rows, err := db.QueryContext(ctx, columnsQuery, pq.Array(schemas))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tables := make(map[string][]string)
	for rows.Next() {
		var table, column string
		if err := rows.Scan(&table, &column); err != nil {
			return nil, err
		}
		tables[table] = append(tables[table], column)
	}
	return tables, rows.Err()
}

func getForeignKeys(ctx context.Context, db Querier, schemas []string) (map[string][]string, error) {
	rows, err := db.QueryContext(ctx, foreignKeysQuery, pq.Array(schemas))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	references := make(map[string][]string)
	for rows.Next() {
		var referencingTable, referencingColumn, referencedTable, referencedColumn string
		if err := rows.Scan(&referencingTable, &referencingColumn, &referencedTable, &referencedColumn); err != nil {
			return nil, err
		}
		key := referencedTable + "." + referencedColumn
		references[key] = append(references[key], referencingTable+"."+referencingColumn)
	}
	return references, rows.Err()
}

// excludeTables drops the named tables and every reference touching them.
func excludeTables(tables, references map[string][]string, names []string) {
	excluded := make(map[string]bool, len(names))
	for _, name := range names {
		excluded[name] = true
		delete(tables, name)
	}

	for key, refs := range references {
		if table, _ := schema.SplitColumnRef(key); excluded[table] {
			delete(references, key)
			continue
		}
		kept := refs[:0]
		for _, ref := range refs {
			if table, _ := schema.SplitColumnRef(ref); !excluded[table] {
				kept = append(kept, ref)
			}
		}
		if len(kept) == 0 {
			delete(references, key)
		} else {
			references[key] = kept
		}
	}
}
