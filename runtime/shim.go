package runtime

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/syssam/sqlgen/dialect"
)

// ExpandLimit writes the dialect-appropriate LIMIT fragment into sb for a
// resolved limit value. A nil value means "omit the clause" (§4.5
// null-limit omission) and writes nothing.
func ExpandLimit(sb *strings.Builder, d *dialect.Descriptor, value *int) {
	if value == nil {
		return
	}
	switch d.LimitSyntax {
	case dialect.TopN:
		// TOP (x) belongs right after SELECT; callers using TopN dialects
		// must call ExpandTopN instead before the column list.
		return
	default:
		if sb.Len() > 0 && sb.String()[sb.Len()-1] != ' ' {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(sb, "LIMIT %d", *value)
	}
}

// ExpandTopN writes "TOP (x) " for SqlServer-style legacy pagination;
// callers insert the result immediately after "SELECT ".
func ExpandTopN(d *dialect.Descriptor, value *int) string {
	if value == nil || d.LimitSyntax != dialect.TopN {
		return ""
	}
	return fmt.Sprintf("TOP (%d) ", *value)
}

// SpliceTopN inserts frag (as returned by ExpandTopN) immediately after the
// query's leading "SELECT " keyword. Used when the limit op's usual
// template position (typically near ORDER BY) can't be where TOP (x)
// belongs in the rendered SQL.
func SpliceTopN(query, frag string) string {
	if frag == "" {
		return query
	}
	upper := strings.ToUpper(query)
	idx := strings.Index(upper, "SELECT ")
	if idx < 0 {
		return query
	}
	at := idx + len("SELECT ")
	return query[:at] + frag + query[at:]
}

// ExpandOffset writes the dialect-appropriate OFFSET fragment into sb.
func ExpandOffset(sb *strings.Builder, d *dialect.Descriptor, value *int) {
	if value == nil {
		return
	}
	if d.LimitSyntax == dialect.TopN {
		return // TopN has no OFFSET; dialect.RenderLimitOffset reports it as an error
	}
	if sb.Len() > 0 && sb.String()[sb.Len()-1] != ' ' {
		sb.WriteByte(' ')
	}
	fmt.Fprintf(sb, "OFFSET %d", *value)
}

// ExpandBool writes the dialect's boolean literal into sb.
func ExpandBool(sb *strings.Builder, d *dialect.Descriptor, v bool) {
	sb.WriteString(d.RenderBool(v))
}

// ExpandCurrentTimestamp writes the dialect's CURRENT_TIMESTAMP expression.
func ExpandCurrentTimestamp(sb *strings.Builder, d *dialect.Descriptor) {
	sb.WriteString(d.CurrentTimestampExpr())
}

// ExpandReturningID writes the dialect's same-statement insert-id suffix,
// if any; callers needing a follow-up statement instead should consult
// d.InsertIDSuffix() directly (the follow-up-statement case does not
// belong inline in the builder).
func ExpandReturningID(sb *strings.Builder, d *dialect.Descriptor, column string) {
	frag, same := d.InsertIDSuffix()
	if !same {
		return
	}
	sb.WriteString(frag)
	if d.ReturningMode == dialect.OutputInserted {
		sb.WriteString(d.QuoteIdent(column))
	}
}

// AddParameter appends value to args in slot order. declaredType and
// nullable are accepted for symmetry with the ABI described in §6 but are
// advisory only: database/sql already dispatches on the concrete Go type
// of value via driver.Valuer/convertAssign.
func AddParameter(args *[]any, value any, declaredType string, nullable bool) {
	*args = append(*args, value)
}

// ExpandCollectionParameter appends one driver arg per item and returns the
// dialect-rendered, comma-separated placeholder list to splice into an IN
// clause — the "parameter-count hole" the shim fills at bind time (§4.3,
// §9 Design Notes "Collections in IN clauses").
func ExpandCollectionParameter[T any](d *dialect.Descriptor, args *[]any, baseName string, items []T) string {
	if len(items) == 0 {
		return ""
	}
	refs := make([]string, len(items))
	for i, item := range items {
		refs[i] = d.ParamRef(baseName+"_"+strconv.Itoa(i), len(*args))
		*args = append(*args, item)
	}
	return strings.Join(refs, ", ")
}

// classifyDriverError maps a database/sql error into the run-time error
// tiers of §7: cancellation, connection loss ("transient"), or pass-through.
func classifyDriverError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return &CancelledError{Err: ctx.Err()}
	}
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, context.Canceled) {
		return &TransientDatabaseError{Err: err}
	}
	return err
}

// Scanner is implemented by generated per-entity row mappers; it is
// reflection-free (§1 Non-goals: "no dynamic runtime expression
// compilation").
type Scanner[T any] func(*sql.Rows) (T, error)

// MaterializeScalar runs query, scans exactly one column into a T via
// (*sql.Rows).Scan, and enforces the scalar null policy (§4.6): a driver
// NULL-conversion failure against a non-nullable T becomes NullScalarError
// when raiseOnNull is set, otherwise the zero value is returned.
func MaterializeScalar[T any](ctx context.Context, conn ExecQuerier, query string, args []any, column string, raiseOnNull bool) (T, error) {
	var zero T
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return zero, classifyDriverError(ctx, err)
	}
	defer rows.Close()
	if !rows.Next() {
		return zero, rows.Err()
	}
	var dest T
	if err := rows.Scan(&dest); err != nil {
		if isNullConversionError(err) {
			if raiseOnNull {
				return zero, &NullScalarError{Column: column}
			}
			return zero, nil
		}
		return zero, classifyDriverError(ctx, err)
	}
	return dest, nil
}

// isNullConversionError reports whether err is database/sql's standard
// "converting NULL to <type> is unsupported" Scan failure.
func isNullConversionError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "converting NULL")
}

// MaterializeOptional scans zero-or-more rows with scan, returning (nil,
// nil) for zero rows, the mapped pointer for one row, and — per §4.6's
// default policy — the first row (with a caller-supplied warnFn invoked)
// when more than one row is returned. Set strict to true to instead
// surface NotSingularError (§7's stricter reading); generated methods
// pass false.
func MaterializeOptional[T any](ctx context.Context, conn ExecQuerier, query string, args []any, scan Scanner[T], strict bool, warnFn func(count int)) (*T, error) {
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classifyDriverError(ctx, err)
	}
	defer rows.Close()
	var results []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, classifyDriverError(ctx, err)
		}
		results = append(results, v)
		if len(results) > 1 && !strict {
			break // no need to keep scanning once we know to warn-and-take-first
		}
	}
	if err := rows.Err(); err != nil {
		return nil, classifyDriverError(ctx, err)
	}
	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return &results[0], nil
	default:
		if strict {
			return nil, &NotSingularError{Count: len(results)}
		}
		if warnFn != nil {
			warnFn(len(results))
		}
		return &results[0], nil
	}
}

// MaterializeList scans every row with scan.
func MaterializeList[T any](ctx context.Context, conn ExecQuerier, query string, args []any, scan Scanner[T]) ([]T, error) {
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classifyDriverError(ctx, err)
	}
	defer rows.Close()
	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, classifyDriverError(ctx, err)
		}
		out = append(out, v)
	}
	return out, classifyDriverError(ctx, rows.Err())
}

// Page is the paged-result shape (§3 ResultRecipe Page).
type Page[T any] struct {
	Items      []T
	TotalCount int
	PageNumber int
	PageSize   int
	TotalPages int
}

// MaterializePage runs countQuery then listQuery sequentially on the same
// connection (§5: "not wrapped in a transaction by default"), computing
// total_pages = ceil(total_count / page_size) (§4.6, §8 property 6).
func MaterializePage[T any](ctx context.Context, conn ExecQuerier, countQuery string, countArgs []any, listQuery string, listArgs []any, scan Scanner[T], pageNumber, pageSize int) (*Page[T], error) {
	var total int
	rows, err := conn.QueryContext(ctx, countQuery, countArgs...)
	if err != nil {
		return nil, classifyDriverError(ctx, err)
	}
	if rows.Next() {
		if err := rows.Scan(&total); err != nil {
			rows.Close()
			return nil, classifyDriverError(ctx, err)
		}
	}
	if err := rows.Close(); err != nil {
		return nil, classifyDriverError(ctx, err)
	}

	items, err := MaterializeList(ctx, conn, listQuery, listArgs, scan)
	if err != nil {
		return nil, err
	}
	pages := 0
	if pageSize > 0 {
		pages = total / pageSize
		if total%pageSize != 0 {
			pages++
		}
	}
	return &Page[T]{Items: items, TotalCount: total, PageNumber: pageNumber, PageSize: pageSize, TotalPages: pages}, nil
}

// MaterializeDictRows maps every row to an ordered column→value map using
// the driver-reported column names (§4.6).
func MaterializeDictRows(ctx context.Context, conn ExecQuerier, query string, args []any) ([]map[string]any, error) {
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classifyDriverError(ctx, err)
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []map[string]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, classifyDriverError(ctx, err)
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			row[c] = vals[i]
		}
		out = append(out, row)
	}
	return out, classifyDriverError(ctx, rows.Err())
}

// MaterializeGeneratedID executes insertQuery, then retrieves the inserted
// id per the dialect's returning mode (§4.6). sameStatementScan is called
// when the dialect appended the id to the INSERT's own result set (e.g.
// RETURNING/OUTPUT); followUpQuery is run instead for LastInsertRowID/
// ScopeIdentity dialects.
func MaterializeGeneratedID[ID any](ctx context.Context, conn ExecQuerier, d *dialect.Descriptor, insertQuery string, insertArgs []any, followUpQuery string) (ID, error) {
	var zero ID
	frag, sameStatement := d.InsertIDSuffix()
	if sameStatement && frag != "" {
		rows, err := conn.QueryContext(ctx, insertQuery, insertArgs...)
		if err != nil {
			return zero, classifyDriverError(ctx, err)
		}
		defer rows.Close()
		if !rows.Next() {
			return zero, fmt.Errorf("sqlgen: INSERT ... RETURNING produced no row")
		}
		var id ID
		if err := rows.Scan(&id); err != nil {
			return zero, classifyDriverError(ctx, err)
		}
		return id, nil
	}

	res, err := conn.ExecContext(ctx, insertQuery, insertArgs...)
	if err != nil {
		return zero, classifyDriverError(ctx, err)
	}
	if d.ReturningMode == dialect.LastInsertRowID {
		id, err := res.LastInsertId()
		if err != nil {
			return zero, classifyDriverError(ctx, err)
		}
		if v, ok := any(id).(ID); ok {
			return v, nil
		}
		return zero, fmt.Errorf("sqlgen: cannot convert last-insert-id to %T", zero)
	}

	rows, err := conn.QueryContext(ctx, followUpQuery)
	if err != nil {
		return zero, classifyDriverError(ctx, err)
	}
	defer rows.Close()
	if !rows.Next() {
		return zero, fmt.Errorf("sqlgen: %s id follow-up query produced no row", d.ID)
	}
	var id ID
	if err := rows.Scan(&id); err != nil {
		return zero, classifyDriverError(ctx, err)
	}
	return id, nil
}

// ExecQuerier is the standard database-driver interface surface generated
// methods are handed (§6 "only uses ... the standard database-driver
// interface of the host environment").
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// EscapeLike escapes '\', '%' and '_' in a user-supplied LIKE operand so
// Contains/StartsWith/EndsWith behave as literal substring/prefix/suffix
// matches rather than SQL wildcards (§4.3: "the SQL uses @param
// unchanged" — escaping the *value* happens here, at bind time).
func EscapeLike(v string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(v)
}
