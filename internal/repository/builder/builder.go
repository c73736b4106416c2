package builder

import (
	"fmt"
	"strconv"
	"strings"
)

// SQLBuilder helps construct SELECT and INSERT statements for PostgreSQL.
// Conditions are written with "?" placeholders, Build renumbers them to $1..$n.
type SQLBuilder struct {
	table    string
	columns  []string
	where    []condition
	orderBy  []string
	rows     [][]interface{}
	conflict string
	isInsert bool
}

type condition struct {
	sql  string
	args []interface{}
}

// NewSQLBuilder creates a new instance of SQLBuilder.
func NewSQLBuilder() *SQLBuilder {
	return &SQLBuilder{}
}

// Select specifies the columns to retrieve.
func (b *SQLBuilder) Select(cols ...string) *SQLBuilder {
	b.columns = cols
	return b
}

// Insert specifies the table and columns for insertion.
func (b *SQLBuilder) Insert(table string, cols ...string) *SQLBuilder {
	b.isInsert = true
	b.table = table
	b.columns = cols
	return b
}

// From specifies the table to select from.
func (b *SQLBuilder) From(table string) *SQLBuilder {
	b.table = table
	return b
}

// Values appends one row of values to an INSERT. Call it once per row.
func (b *SQLBuilder) Values(vals ...interface{}) *SQLBuilder {
	b.rows = append(b.rows, vals)
	return b
}

// OnConflict appends an ON CONFLICT clause to an INSERT,
// e.g. "(id) DO NOTHING".
func (b *SQLBuilder) OnConflict(clause string) *SQLBuilder {
	b.conflict = clause
	return b
}

// Where adds a condition joined with AND.
func (b *SQLBuilder) Where(cond string, args ...interface{}) *SQLBuilder {
	b.where = append(b.where, condition{sql: cond, args: args})
	return b
}

// OrderBy adds an ORDER BY clause.
func (b *SQLBuilder) OrderBy(order ...string) *SQLBuilder {
	b.orderBy = append(b.orderBy, order...)
	return b
}

// BuildSafe is like Build but fails when the placeholder count does not match
// the number of arguments.
func (b *SQLBuilder) BuildSafe() (string, []interface{}, error) {
	raw, args := b.build()
	if n := strings.Count(raw, "?"); n != len(args) {
		return "", nil, fmt.Errorf("placeholder count (%d) does not match argument count (%d)", n, len(args))
	}
	return numberPlaceholders(raw), args, nil
}

// Build constructs the final SQL string and arguments.
func (b *SQLBuilder) Build() (string, []interface{}) {
	raw, args := b.build()
	return numberPlaceholders(raw), args
}

func (b *SQLBuilder) build() (string, []interface{}) {
	var sb strings.Builder
	var args []interface{}

	if b.isInsert {
		sb.WriteString("INSERT INTO ")
		sb.WriteString(b.table)
		sb.WriteString(" (")
		sb.WriteString(strings.Join(b.columns, ", "))
		sb.WriteString(") VALUES ")
		for i, row := range b.rows {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("(" + placeholders(len(row)) + ")")
			args = append(args, row...)
		}
		if b.conflict != "" {
			sb.WriteString(" ON CONFLICT ")
			sb.WriteString(b.conflict)
		}
		return sb.String(), args
	}

	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(b.columns, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(b.table)

	for i, c := range b.where {
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		sb.WriteString(c.sql)
		args = append(args, c.args...)
	}

	if len(b.orderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(b.orderBy, ", "))
	}
	return sb.String(), args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// numberPlaceholders rewrites every "?" into $1, $2, ... in order.
func numberPlaceholders(query string) string {
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r != '?' {
			sb.WriteRune(r)
			continue
		}
		n++
		sb.WriteString("$" + strconv.Itoa(n))
	}
	return sb.String()
}
