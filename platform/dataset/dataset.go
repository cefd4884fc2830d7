package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindString
)

type fillRule int

const (
	fillNone fillRule = iota
	fillMedian
	fillMode
)

type ColumnSpec struct {
	Name string
	Kind Kind
	Desc string
	fill fillRule
}

// titanicSchema is the fixed manifest layout. Cabin is intentionally absent:
// it is too sparse to be useful and is dropped at load time.
var titanicSchema = []ColumnSpec{
	{Name: "PassengerId", Kind: KindInt, Desc: "unique passenger ID"},
	{Name: "Survived", Kind: KindInt, Desc: "0 = did not survive, 1 = survived"},
	{Name: "Pclass", Kind: KindInt, Desc: "ticket class: 1 = 1st, 2 = 2nd, 3 = 3rd"},
	{Name: "Name", Kind: KindString, Desc: "full passenger name"},
	{Name: "Sex", Kind: KindString, Desc: "'male' or 'female'"},
	{Name: "Age", Kind: KindFloat, Desc: "age in years", fill: fillMedian},
	{Name: "SibSp", Kind: KindInt, Desc: "number of siblings/spouses aboard"},
	{Name: "Parch", Kind: KindInt, Desc: "number of parents/children aboard"},
	{Name: "Ticket", Kind: KindString, Desc: "ticket number"},
	{Name: "Fare", Kind: KindFloat, Desc: "passenger fare paid"},
	{Name: "Embarked", Kind: KindString, Desc: "port of embarkation: C = Cherbourg, Q = Queenstown, S = Southampton", fill: fillMode},
}

type column struct {
	spec    ColumnSpec
	ints    []int
	floats  []float64
	strings []string
}

// Table is the passenger manifest loaded once at startup. It is never
// mutated afterwards; every accessor returns a copy.
type Table struct {
	cols  map[string]*column
	order []string
	rows  int
}

func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return Read(f)
}

func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read dataset csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("dataset has no data rows")
	}

	header := records[0]
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	rows := records[1:]
	t := &Table{cols: make(map[string]*column, len(titanicSchema)), rows: len(rows)}

	for _, spec := range titanicSchema {
		idx, ok := index[spec.Name]
		if !ok {
			return nil, fmt.Errorf("dataset missing column %q", spec.Name)
		}
		col, err := parseColumn(spec, rows, idx)
		if err != nil {
			return nil, err
		}
		t.cols[spec.Name] = col
		t.order = append(t.order, spec.Name)
	}
	return t, nil
}

func parseColumn(spec ColumnSpec, rows [][]string, idx int) (*column, error) {
	col := &column{spec: spec}
	switch spec.Kind {
	case KindInt:
		col.ints = make([]int, len(rows))
		for i, row := range rows {
			cell := strings.TrimSpace(row[idx])
			if cell == "" {
				return nil, fmt.Errorf("row %d: empty %s", i+1, spec.Name)
			}
			n, err := strconv.Atoi(cell)
			if err != nil {
				return nil, fmt.Errorf("row %d: bad %s %q: %w", i+1, spec.Name, cell, err)
			}
			col.ints[i] = n
		}
	case KindFloat:
		col.floats = make([]float64, len(rows))
		for i, row := range rows {
			cell := strings.TrimSpace(row[idx])
			if cell == "" {
				col.floats[i] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: bad %s %q: %w", i+1, spec.Name, cell, err)
			}
			col.floats[i] = v
		}
		if spec.fill == fillMedian {
			fillFloatMedian(col.floats)
		}
	case KindString:
		col.strings = make([]string, len(rows))
		for i, row := range rows {
			col.strings[i] = strings.TrimSpace(row[idx])
		}
		if spec.fill == fillMode {
			fillStringMode(col.strings)
		}
	}
	return col, nil
}

// fillFloatMedian replaces NaN cells with the median of the present values.
func fillFloatMedian(vals []float64) {
	present := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 || len(present) == len(vals) {
		return
	}
	sort.Float64s(present)
	var median float64
	mid := len(present) / 2
	if len(present)%2 == 0 {
		median = (present[mid-1] + present[mid]) / 2
	} else {
		median = present[mid]
	}
	for i, v := range vals {
		if math.IsNaN(v) {
			vals[i] = median
		}
	}
}

// fillStringMode replaces empty cells with the most frequent value.
func fillStringMode(vals []string) {
	counts := make(map[string]int)
	for _, v := range vals {
		if v != "" {
			counts[v]++
		}
	}
	mode, best := "", 0
	for v, n := range counts {
		if n > best || (n == best && v < mode) {
			mode, best = v, n
		}
	}
	if mode == "" {
		return
	}
	for i, v := range vals {
		if v == "" {
			vals[i] = mode
		}
	}
}

func (t *Table) NumRows() int {
	return t.rows
}

func (t *Table) ColumnNames() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Ints returns a copy of an integer column, or nil for other columns.
func (t *Table) Ints(name string) []int {
	col, ok := t.cols[name]
	if !ok || col.spec.Kind != KindInt {
		return nil
	}
	out := make([]int, len(col.ints))
	copy(out, col.ints)
	return out
}

// Floats returns a copy of a numeric column as float64. Integer columns are
// promoted so generated code can treat every numeric column uniformly.
func (t *Table) Floats(name string) []float64 {
	col, ok := t.cols[name]
	if !ok {
		return nil
	}
	switch col.spec.Kind {
	case KindFloat:
		out := make([]float64, len(col.floats))
		copy(out, col.floats)
		return out
	case KindInt:
		out := make([]float64, len(col.ints))
		for i, v := range col.ints {
			out[i] = float64(v)
		}
		return out
	default:
		return nil
	}
}

// Strings returns a copy of a string column, or nil for other columns.
func (t *Table) Strings(name string) []string {
	col, ok := t.cols[name]
	if !ok || col.spec.Kind != KindString {
		return nil
	}
	out := make([]string, len(col.strings))
	copy(out, col.strings)
	return out
}

// Schema describes the columns for prompt assembly.
func (t *Table) Schema() []ColumnSpec {
	out := make([]ColumnSpec, len(titanicSchema))
	copy(out, titanicSchema)
	return out
}

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "string"
	}
}

// Checksum digests every cell in column order. Two calls must agree unless
// the table was mutated, which never happens after load.
func (t *Table) Checksum() uint64 {
	h := xxhash.New()
	for _, name := range t.order {
		col := t.cols[name]
		_, _ = h.WriteString(name)
		_, _ = h.WriteString("\x1f")
		switch col.spec.Kind {
		case KindInt:
			for _, v := range col.ints {
				_, _ = h.WriteString(strconv.Itoa(v))
				_, _ = h.WriteString("\x1e")
			}
		case KindFloat:
			for _, v := range col.floats {
				_, _ = h.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
				_, _ = h.WriteString("\x1e")
			}
		case KindString:
			for _, v := range col.strings {
				_, _ = h.WriteString(v)
				_, _ = h.WriteString("\x1e")
			}
		}
	}
	return h.Sum64()
}
