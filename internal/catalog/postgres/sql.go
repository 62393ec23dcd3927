package postgres

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/prodex-cloud/prodex/internal/catalog"
	"github.com/prodex-cloud/prodex/internal/domain/intent"
)

// buildSelect compiles a catalog query into parameterized SQL. Column and
// table identifiers are quoted via pgx; every value travels as a bind
// parameter, never inlined.
func buildSelect(table string, q catalog.Query) (string, []any) {
	var (
		sb   strings.Builder
		args []any
	)

	sb.WriteString("SELECT * FROM ")
	sb.WriteString(pgx.Identifier{table}.Sanitize())

	var conds []string
	for _, c := range q.Must {
		cond, arg := compileClause(c, len(args)+1)
		conds = append(conds, cond)
		args = append(args, arg)
	}
	if len(q.Should) > 0 {
		var ors []string
		for _, c := range q.Should {
			cond, arg := compileClause(c, len(args)+1)
			ors = append(ors, cond)
			args = append(args, arg)
		}
		conds = append(conds, "("+strings.Join(ors, " OR ")+")")
	}
	if len(conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}

	if q.Order != nil {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(pgx.Identifier{q.Order.Column}.Sanitize())
		if q.Order.Desc {
			sb.WriteString(" DESC")
		} else {
			sb.WriteString(" ASC")
		}
	}

	if q.Limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT %d", q.Limit))
	}

	return sb.String(), args
}

// compileClause renders one predicate. Text operators cast the column to
// text so the same clause works on any column type; ordering comparisons
// cast both sides to numeric.
func compileClause(c intent.Clause, placeholder int) (string, any) {
	col := pgx.Identifier{c.Column}.Sanitize()

	switch c.Operator {
	case intent.OpEq:
		return fmt.Sprintf("%s::text = $%d", col, placeholder), c.Value
	case intent.OpNeq:
		return fmt.Sprintf("%s::text <> $%d", col, placeholder), c.Value
	case intent.OpGt:
		return fmt.Sprintf("(%s)::numeric > $%d::numeric", col, placeholder), c.Value
	case intent.OpGte:
		return fmt.Sprintf("(%s)::numeric >= $%d::numeric", col, placeholder), c.Value
	case intent.OpLt:
		return fmt.Sprintf("(%s)::numeric < $%d::numeric", col, placeholder), c.Value
	case intent.OpLte:
		return fmt.Sprintf("(%s)::numeric <= $%d::numeric", col, placeholder), c.Value
	default: // contains
		return fmt.Sprintf("%s::text ILIKE $%d", col, placeholder), "%" + c.Value + "%"
	}
}
