package querysql

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/precompute/internal/ir"
)

// Dialect selects the placeholder style of the generated SQL.
type Dialect int

const (
	// DialectSQLite uses "?" placeholders.
	DialectSQLite Dialect = iota
	// DialectPostgres uses "$1", "$2", ... placeholders.
	DialectPostgres
)

func (d Dialect) String() string {
	switch d {
	case DialectSQLite:
		return "sqlite"
	case DialectPostgres:
		return "postgres"
	default:
		return fmt.Sprintf("Dialect(%d)", int(d))
	}
}

// Hierarchy supplies the subclass closure used to widen class slots.
// *ir.Model implements it.
type Hierarchy interface {
	Subclasses(name string) []string
}

// SQLCompiler compiles query plans to parameterized SQL over the object
// tables:
//
//	objects(id, class)
//	refs(source_id, field, target_id)
//
// A class slot matches objects of that class or any subclass. Each join
// constraint becomes one refs row linking the two slots; references and
// collections are stored the same way.
//
// Every row query has an ORDER BY over the plan's order-by slots, then
// any remaining from slots, so results are deterministic.
// Class names and relation names are always parameters, never interpolated.
type SQLCompiler struct {
	Dialect Dialect
	Model   Hierarchy
}

// NewSQLCompiler creates a compiler for the given dialect and model.
func NewSQLCompiler(dialect Dialect, model Hierarchy) *SQLCompiler {
	return &SQLCompiler{Dialect: dialect, Model: model}
}

// Compile converts a plan to a row query selecting one id column per
// select slot, named after the slot alias.
func (c *SQLCompiler) Compile(plan *ir.QueryPlan) (string, []any, error) {
	b, err := c.body(plan)
	if err != nil {
		return "", nil, err
	}

	cols := make([]string, len(plan.Select))
	for i, s := range plan.Select {
		cols[i] = idColumn(s.Alias) + " AS " + quoteIdent(s.Alias)
	}

	order, err := c.orderKey(plan, plan.OrderBy)
	if err != nil {
		return "", nil, err
	}

	sql := "SELECT " + strings.Join(cols, ", ") + b.sql + " ORDER BY " + order
	return sql, b.params, nil
}

// CompileCount converts a plan to a single-row COUNT(*) query.
func (c *SQLCompiler) CompileCount(plan *ir.QueryPlan) (string, []any, error) {
	b, err := c.body(plan)
	if err != nil {
		return "", nil, err
	}
	return "SELECT COUNT(*)" + b.sql, b.params, nil
}

// CompileRow compiles the query for the i-th row of Compile's result.
func (c *SQLCompiler) CompileRow(plan *ir.QueryPlan, i int) (string, []any, error) {
	sql, params, err := c.Compile(plan)
	if err != nil {
		return "", nil, err
	}
	b := &builder{dialect: c.Dialect, params: params}
	sql += " LIMIT 1 OFFSET " + b.param(int64(i))
	return sql, b.params, nil
}

// Materialization is the statement set that realizes a plan as a table.
type Materialization struct {
	Table string

	// Create makes the empty table, one BIGINT column per from slot.
	Create string

	// Insert fills it, ordered by the hints.
	Insert string
	Params []any

	// Index covers the hint columns in hint order.
	Index string

	// OrderBy lists the hint aliases as applied.
	OrderBy []string
}

// CompileMaterialize builds the statements that store plan's full join
// (every from slot, not only the select list) in table, ordered and
// indexed by orderBy. An empty orderBy falls back to the plan's own
// order-by list.
func (c *SQLCompiler) CompileMaterialize(plan *ir.QueryPlan, table string, orderBy []ir.ClassSlot) (*Materialization, error) {
	if !identPattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	if len(orderBy) == 0 {
		orderBy = plan.OrderBy
	}

	b, err := c.body(plan)
	if err != nil {
		return nil, err
	}
	order, err := c.orderKey(plan, orderBy)
	if err != nil {
		return nil, err
	}

	defs := make([]string, len(plan.From))
	cols := make([]string, len(plan.From))
	sel := make([]string, len(plan.From))
	for i, s := range plan.From {
		defs[i] = quoteIdent(s.Alias) + " BIGINT NOT NULL"
		cols[i] = quoteIdent(s.Alias)
		sel[i] = idColumn(s.Alias)
	}

	hints := make([]string, len(orderBy))
	hintCols := make([]string, len(orderBy))
	for i, s := range orderBy {
		hints[i] = s.Alias
		hintCols[i] = quoteIdent(s.Alias)
	}

	qt := quoteIdent(table)
	return &Materialization{
		Table:  table,
		Create: fmt.Sprintf("CREATE TABLE %s (%s)", qt, strings.Join(defs, ", ")),
		Insert: fmt.Sprintf("INSERT INTO %s (%s) SELECT %s%s ORDER BY %s",
			qt, strings.Join(cols, ", "), strings.Join(sel, ", "), b.sql, order),
		Params:  b.params,
		Index:   fmt.Sprintf("CREATE INDEX %s ON %s (%s)", quoteIdent(table+"_order"), qt, strings.Join(hintCols, ", ")),
		OrderBy: hints,
	}, nil
}

// builder accumulates parameters and renders placeholders.
type builder struct {
	dialect Dialect
	sql     string
	params  []any
}

func (b *builder) param(v any) string {
	b.params = append(b.params, v)
	if b.dialect == DialectPostgres {
		return fmt.Sprintf("$%d", len(b.params))
	}
	return "?"
}

// body renders " FROM ... WHERE ..." shared by all query forms.
func (c *SQLCompiler) body(plan *ir.QueryPlan) (*builder, error) {
	if plan == nil {
		return nil, fmt.Errorf("cannot compile nil plan")
	}
	if len(plan.From) == 0 {
		return nil, fmt.Errorf("plan has an empty from list")
	}

	b := &builder{dialect: c.Dialect}
	declared := make(map[string]bool, len(plan.From))

	var from, where []string
	for _, s := range plan.From {
		if !identPattern.MatchString(s.Alias) {
			return nil, fmt.Errorf("invalid alias %q", s.Alias)
		}
		if declared[s.Alias] {
			return nil, fmt.Errorf("alias %q declared twice", s.Alias)
		}
		declared[s.Alias] = true

		from = append(from, "objects AS "+quoteIdent(s.Alias))
		where = append(where, c.classFilter(b, s))
	}

	for _, s := range plan.Select {
		if !declared[s.Alias] {
			return nil, fmt.Errorf("select alias %q not in from list", s.Alias)
		}
	}

	for i, jc := range plan.Constraints {
		if !declared[jc.Source] || !declared[jc.Target] {
			return nil, fmt.Errorf("constraint %s.%s references an undeclared alias", jc.Source, jc.Relation)
		}
		r := quoteIdent(fmt.Sprintf("r%d", i))
		from = append(from, "refs AS "+r)
		where = append(where,
			fmt.Sprintf("%s.source_id = %s", r, idColumn(jc.Source)),
			fmt.Sprintf("%s.field = %s", r, b.param(jc.Relation)),
			fmt.Sprintf("%s.target_id = %s", r, idColumn(jc.Target)),
		)
	}

	b.sql = " FROM " + strings.Join(from, ", ") + " WHERE " + strings.Join(where, " AND ")
	return b, nil
}

// classFilter matches a slot's class and its subclasses.
func (c *SQLCompiler) classFilter(b *builder, s ir.ClassSlot) string {
	classes := []string{s.Class}
	if c.Model != nil {
		classes = append(classes, c.Model.Subclasses(s.Class)...)
	}
	if len(classes) == 1 {
		return fmt.Sprintf("%s.class = %s", quoteIdent(s.Alias), b.param(s.Class))
	}

	ph := make([]string, len(classes))
	for i, cls := range classes {
		ph[i] = b.param(cls)
	}
	return fmt.Sprintf("%s.class IN (%s)", quoteIdent(s.Alias), strings.Join(ph, ", "))
}

// orderKey returns the ORDER BY list: the given slots first, then any
// from slot not yet listed, so every row query has a total order.
func (c *SQLCompiler) orderKey(plan *ir.QueryPlan, order []ir.ClassSlot) (string, error) {
	declared := make(map[string]bool, len(plan.From))
	for _, s := range plan.From {
		declared[s.Alias] = true
	}

	listed := make(map[string]bool, len(plan.From))
	var keys []string
	for _, s := range order {
		if !declared[s.Alias] {
			return "", fmt.Errorf("order-by alias %q not in from list", s.Alias)
		}
		if listed[s.Alias] {
			continue
		}
		listed[s.Alias] = true
		keys = append(keys, idColumn(s.Alias)+" ASC")
	}
	for _, s := range plan.From {
		if !listed[s.Alias] {
			keys = append(keys, idColumn(s.Alias)+" ASC")
		}
	}
	return strings.Join(keys, ", "), nil
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func idColumn(alias string) string {
	return quoteIdent(alias) + ".id"
}
