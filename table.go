package cafplot

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/sirupsen/logrus"
	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rtree"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrLeaf is returned when a requested leaf is missing or has a type
	// that cannot be held in a Column.
	ErrLeaf = errors.New("cafplot: missing or unsupported leaf")

	// ErrShape is returned when count arrays disagree with the arrays
	// they describe.
	ErrShape = errors.New("cafplot: count and array lengths disagree")
)

// Column is a jagged column of values.
// Row i holds Values[Offsets[i]:Offsets[i+1]].
type Column struct {
	Values  []float64
	Offsets []int
}

func newColumn() *Column {
	return &Column{Offsets: []int{0}}
}

// Rows returns the number of rows in the column.
func (c *Column) Rows() int { return len(c.Offsets) - 1 }

// Row returns the values of row i.
func (c *Column) Row(i int) []float64 {
	return c.Values[c.Offsets[i]:c.Offsets[i+1]]
}

// RowLen returns the number of values in row i.
func (c *Column) RowLen(i int) int {
	return c.Offsets[i+1] - c.Offsets[i]
}

// appendRow appends the value pointed to by ptr as a new row.
// Slices and arrays make a row of their length, scalars a row of one.
func (c *Column) appendRow(ptr any) error {
	v := reflect.ValueOf(ptr).Elem()
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			x, err := toFloat(v.Index(i))
			if err != nil {
				return err
			}
			c.Values = append(c.Values, x)
		}
	default:
		x, err := toFloat(v)
		if err != nil {
			return err
		}
		c.Values = append(c.Values, x)
	}
	c.Offsets = append(c.Offsets, len(c.Values))
	return nil
}

func (c *Column) concat(o *Column) {
	base := len(c.Values)
	c.Values = append(c.Values, o.Values...)
	for _, off := range o.Offsets[1:] {
		c.Offsets = append(c.Offsets, base+off)
	}
}

func toFloat(v reflect.Value) (float64, error) {
	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			return 1, nil
		}
		return 0, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	}
	return 0, fmt.Errorf("%w: unsupported type %s", ErrLeaf, v.Type())
}

// ColumnName turns a dotted field path into a flat identifier.
func ColumnName(field string) string {
	return strings.ReplaceAll(field, ".", "_")
}

// TableSpec selects the leaves <Prefix>.<Field> of a tree.
type TableSpec struct {
	Prefix string
	Fields []string
}

// Table holds one jagged column per requested field, one row per tree
// entry. Columns are keyed by ColumnName(field).
type Table struct {
	Prefix  string
	Entries int
	Fields  []string // column names, in request order
	Columns map[string]*Column
}

func newTable(spec TableSpec) *Table {
	t := &Table{
		Prefix:  spec.Prefix,
		Columns: make(map[string]*Column, len(spec.Fields)),
	}
	for _, field := range spec.Fields {
		name := ColumnName(field)
		if _, dup := t.Columns[name]; !dup {
			t.Fields = append(t.Fields, name)
		}
		t.Columns[name] = newColumn()
	}
	return t
}

// Column returns the column with the given flat name.
func (t *Table) Column(name string) (*Column, error) {
	c, ok := t.Columns[name]
	if !ok {
		return nil, fmt.Errorf("%w: no column %q in table %q", ErrLeaf, name, t.Prefix)
	}
	return c, nil
}

func (t *Table) concat(o *Table) {
	t.Entries += o.Entries
	for name, c := range t.Columns {
		c.concat(o.Columns[name])
	}
}

type readConfig struct {
	tree string
	jobs int
	log  *logrus.Entry
}

// ReadOption configures ReadTable and ReadTables.
type ReadOption func(*readConfig)

// WithTree sets the name of the tree to read. The default is "cafTree".
func WithTree(name string) ReadOption {
	return func(cfg *readConfig) { cfg.tree = name }
}

// WithJobs sets the number of files read concurrently.
func WithJobs(n int) ReadOption {
	return func(cfg *readConfig) {
		if n > 0 {
			cfg.jobs = n
		}
	}
}

// WithLogger sets the logger receiving one debug line per file read.
func WithLogger(log *logrus.Entry) ReadOption {
	return func(cfg *readConfig) { cfg.log = log }
}

// ReadTable reads the leaves <prefix>.<field> of every file and
// concatenates them in file order.
func ReadTable(files []string, prefix string, fields []string, opts ...ReadOption) (*Table, error) {
	tables, err := ReadTables(files, []TableSpec{{Prefix: prefix, Fields: fields}}, opts...)
	if err != nil {
		return nil, err
	}
	return tables[0], nil
}

// ReadTables reads every spec from each file in a single pass and returns
// one table per spec, concatenated in file order.
func ReadTables(files []string, specs []TableSpec, opts ...ReadOption) ([]*Table, error) {
	cfg := readConfig{
		tree: "cafTree",
		jobs: 1,
		log:  logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	parts := make([][]*Table, len(files))
	grp, ctx := errgroup.WithContext(context.Background())
	grp.SetLimit(cfg.jobs)
	for i, fname := range files {
		grp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tables, err := readFile(fname, cfg.tree, specs)
			if err != nil {
				return err
			}
			cfg.log.WithFields(logrus.Fields{
				"file":    fname,
				"entries": tables[0].Entries,
			}).Debugf("read file %d/%d", i+1, len(files))
			parts[i] = tables
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	out := make([]*Table, len(specs))
	for j, spec := range specs {
		out[j] = newTable(spec)
	}
	for _, tables := range parts {
		for j := range out {
			out[j].concat(tables[j])
		}
	}
	return out, nil
}

func readFile(fname, tname string, specs []TableSpec) ([]*Table, error) {
	f, err := groot.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("could not open %q: %w", fname, err)
	}
	defer f.Close()

	obj, err := f.Get(tname)
	if err != nil {
		return nil, fmt.Errorf("could not retrieve tree %q from %q: %w", tname, fname, err)
	}
	tree, ok := obj.(rtree.Tree)
	if !ok {
		return nil, fmt.Errorf("object %q in %q is not a tree (%T)", tname, fname, obj)
	}

	avail := make(map[string]rtree.ReadVar)
	for _, rv := range rtree.NewReadVars(tree) {
		avail[rv.Name] = rv
	}

	var (
		tables = make([]*Table, len(specs))
		rvars  []rtree.ReadVar
		dsts   [][]*Column
		index  = make(map[string]int)
	)
	for j, spec := range specs {
		tables[j] = newTable(spec)
		tables[j].Entries = int(tree.Entries())
		seen := make(map[string]bool, len(spec.Fields))
		for _, field := range spec.Fields {
			// repeated fields share one column
			if seen[ColumnName(field)] {
				continue
			}
			seen[ColumnName(field)] = true
			name := spec.Prefix + "." + field
			k, ok := index[name]
			if !ok {
				rv, ok := avail[name]
				if !ok {
					return nil, fmt.Errorf("%w: no leaf %q in tree %q of %q", ErrLeaf, name, tname, fname)
				}
				k = len(rvars)
				index[name] = k
				rvars = append(rvars, rv)
				dsts = append(dsts, nil)
			}
			dsts[k] = append(dsts[k], tables[j].Columns[ColumnName(field)])
		}
	}
	if len(rvars) == 0 {
		return tables, nil
	}

	r, err := rtree.NewReader(tree, rvars)
	if err != nil {
		return nil, fmt.Errorf("could not create reader for %q: %w", fname, err)
	}
	defer r.Close()

	err = r.Read(func(ctx rtree.RCtx) error {
		for k, rv := range rvars {
			for _, col := range dsts[k] {
				if err := col.appendRow(rv.Value); err != nil {
					return fmt.Errorf("entry %d, leaf %q: %w", ctx.Entry, rv.Name, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not read tree %q from %q: %w", tname, fname, err)
	}
	return tables, nil
}
