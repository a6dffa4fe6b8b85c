package postgres

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

func checkIdent(names ...string) error {
	for _, n := range names {
		if !identRe.MatchString(n) {
			return fmt.Errorf("invalid identifier %q", n)
		}
	}
	return nil
}

type filterOp int

const (
	opEq filterOp = iota
	opContains
	opIn
	opIs
	opIsNull
)

// Filter is one column predicate.
type Filter struct {
	column string
	op     filterOp
	value  any
}

func Eq(column string, value any) Filter { return Filter{column: column, op: opEq, value: value} }

// Contains matches a case-insensitive substring; LIKE wildcards in substr are literal.
func Contains(column, substr string) Filter {
	return Filter{column: column, op: opContains, value: "%" + escapeLike(substr) + "%"}
}

// In matches any element of values, which must be a slice.
func In(column string, values any) Filter { return Filter{column: column, op: opIn, value: values} }

func Is(column string, b bool) Filter { return Filter{column: column, op: opIs, value: b} }

func IsNull(column string) Filter { return Filter{column: column, op: opIsNull} }

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

type Order struct {
	Column string
	Desc   bool
}

func Asc(column string) Order  { return Order{Column: column} }
func Desc(column string) Order { return Order{Column: column, Desc: true} }

// Query selects rows matching every Filter and, when AnyOf is set, at least one of AnyOf.
type Query struct {
	Filters []Filter
	AnyOf   []Filter
	Order   []Order
	Limit   int
}

type argList struct{ values []any }

func (a *argList) add(v any) string {
	a.values = append(a.values, v)
	return "$" + strconv.Itoa(len(a.values))
}

func (f Filter) sql(args *argList) (string, error) {
	if err := checkIdent(f.column); err != nil {
		return "", err
	}
	switch f.op {
	case opEq:
		return f.column + " = " + args.add(f.value), nil
	case opContains:
		return f.column + " ILIKE " + args.add(f.value), nil
	case opIn:
		return f.column + " = ANY(" + args.add(f.value) + ")", nil
	case opIs:
		if f.value.(bool) {
			return f.column + " IS TRUE", nil
		}
		return f.column + " IS FALSE", nil
	case opIsNull:
		return f.column + " IS NULL", nil
	}
	return "", fmt.Errorf("unknown filter on %q", f.column)
}

func whereClause(q Query, args *argList) (string, error) {
	var parts []string
	for _, f := range q.Filters {
		s, err := f.sql(args)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	if len(q.AnyOf) > 0 {
		var alts []string
		for _, f := range q.AnyOf {
			s, err := f.sql(args)
			if err != nil {
				return "", err
			}
			alts = append(alts, s)
		}
		parts = append(parts, "("+strings.Join(alts, " OR ")+")")
	}
	if len(parts) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(parts, " AND "), nil
}

func orderClause(orders []Order) (string, error) {
	if len(orders) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(orders))
	for _, o := range orders {
		if err := checkIdent(o.Column); err != nil {
			return "", err
		}
		dir := " ASC"
		if o.Desc {
			dir = " DESC"
		}
		parts = append(parts, o.Column+dir)
	}
	return " ORDER BY " + strings.Join(parts, ", "), nil
}

func buildSelect(table string, q Query) (string, []any, error) {
	if err := checkIdent(table); err != nil {
		return "", nil, err
	}
	args := &argList{}
	where, err := whereClause(q, args)
	if err != nil {
		return "", nil, err
	}
	order, err := orderClause(q.Order)
	if err != nil {
		return "", nil, err
	}
	sql := "SELECT * FROM " + table + where + order
	if q.Limit > 0 {
		sql += " LIMIT " + strconv.Itoa(q.Limit)
	}
	return sql, args.values, nil
}

func sortedColumns(values map[string]any) []string {
	cols := make([]string, 0, len(values))
	for c := range values {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

func buildInsert(table string, values map[string]any) (string, []any, error) {
	if len(values) == 0 {
		return "", nil, fmt.Errorf("insert into %s: no values", table)
	}
	cols := sortedColumns(values)
	if err := checkIdent(append([]string{table}, cols...)...); err != nil {
		return "", nil, err
	}
	args := &argList{}
	placeholders := make([]string, len(cols))
	for i, c := range cols {
		placeholders[i] = args.add(values[c])
	}
	sql := "INSERT INTO " + table + " (" + strings.Join(cols, ", ") + ") VALUES (" + strings.Join(placeholders, ", ") + ") RETURNING *"
	return sql, args.values, nil
}

func buildUpdate(table string, set map[string]any, filters []Filter) (string, []any, error) {
	if len(set) == 0 {
		return "", nil, fmt.Errorf("update %s: nothing to set", table)
	}
	if len(filters) == 0 {
		return "", nil, fmt.Errorf("update %s: refusing unfiltered update", table)
	}
	cols := sortedColumns(set)
	if err := checkIdent(append([]string{table}, cols...)...); err != nil {
		return "", nil, err
	}
	args := &argList{}
	assigns := make([]string, len(cols))
	for i, c := range cols {
		assigns[i] = c + " = " + args.add(set[c])
	}
	where, err := whereClause(Query{Filters: filters}, args)
	if err != nil {
		return "", nil, err
	}
	return "UPDATE " + table + " SET " + strings.Join(assigns, ", ") + where + " RETURNING *", args.values, nil
}

func buildDelete(table string, filters []Filter) (string, []any, error) {
	if len(filters) == 0 {
		return "", nil, fmt.Errorf("delete from %s: refusing unfiltered delete", table)
	}
	if err := checkIdent(table); err != nil {
		return "", nil, err
	}
	args := &argList{}
	where, err := whereClause(Query{Filters: filters}, args)
	if err != nil {
		return "", nil, err
	}
	return "DELETE FROM " + table + where, args.values, nil
}

// SelectAll returns every row of table matching q.
func SelectAll[T any](ctx context.Context, db DBTX, table string, q Query) ([]T, error) {
	sql, args, err := buildSelect(table, q)
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(err, table)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[T])
	if err != nil {
		return nil, mapError(err, table)
	}
	return out, nil
}

// SelectOne returns the first row matching q or a NotFound error.
func SelectOne[T any](ctx context.Context, db DBTX, table string, q Query) (*T, error) {
	q.Limit = 1
	sql, args, err := buildSelect(table, q)
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(err, table)
	}
	out, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByNameLax[T])
	if err != nil {
		return nil, mapError(err, table)
	}
	return out, nil
}

// InsertOne inserts values and returns the stored row.
func InsertOne[T any](ctx context.Context, db DBTX, table string, values map[string]any) (*T, error) {
	sql, args, err := buildInsert(table, values)
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(err, table)
	}
	out, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByNameLax[T])
	if err != nil {
		return nil, mapError(err, table)
	}
	return out, nil
}

// UpdateReturning applies set to the row matching filters and returns it.
// No matching row yields a NotFound error.
func UpdateReturning[T any](ctx context.Context, db DBTX, table string, set map[string]any, filters ...Filter) (*T, error) {
	sql, args, err := buildUpdate(table, set, filters)
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(err, table)
	}
	out, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByNameLax[T])
	if err != nil {
		return nil, mapError(err, table)
	}
	return out, nil
}

// Delete removes the rows matching filters and reports how many went.
func Delete(ctx context.Context, db DBTX, table string, filters ...Filter) (int64, error) {
	sql, args, err := buildDelete(table, filters)
	if err != nil {
		return 0, err
	}
	tag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, mapError(err, table)
	}
	return tag.RowsAffected(), nil
}

// Count returns the number of rows matching q.
func Count(ctx context.Context, db DBTX, table string, q Query) (int, error) {
	if err := checkIdent(table); err != nil {
		return 0, err
	}
	args := &argList{}
	where, err := whereClause(q, args)
	if err != nil {
		return 0, err
	}
	var n int
	if err := db.QueryRow(ctx, "SELECT count(*) FROM "+table+where, args.values...).Scan(&n); err != nil {
		return 0, mapError(err, table)
	}
	return n, nil
}

// CountBy groups the rows matching q by column and counts each group.
func CountBy(ctx context.Context, db DBTX, table, column string, q Query) (map[string]int, error) {
	if err := checkIdent(table, column); err != nil {
		return nil, err
	}
	args := &argList{}
	where, err := whereClause(q, args)
	if err != nil {
		return nil, err
	}
	sql := "SELECT " + column + "::text, count(*) FROM " + table + where + " GROUP BY " + column
	rows, err := db.Query(ctx, sql, args.values...)
	if err != nil {
		return nil, mapError(err, table)
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, mapError(err, table)
		}
		out[key] = n
	}
	return out, mapError(rows.Err(), table)
}
