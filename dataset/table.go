// Package dataset builds the labeled, feature-engineered training
// table from fire-detection dates and weather observations.
package dataset

import (
	"fmt"
	"time"
)

// Table is a small column-oriented frame: one row per calendar day,
// numeric and categorical columns tracked in insertion order. Column
// order matters because the trained model records it.
type Table struct {
	dates []time.Time

	numericOrder []string
	numeric      map[string][]float64

	catOrder []string
	cats     map[string][]string
}

// New creates a table over the given chronological row dates.
func New(dates []time.Time) *Table {
	copied := make([]time.Time, len(dates))
	copy(copied, dates)
	return &Table{
		dates:   copied,
		numeric: make(map[string][]float64),
		cats:    make(map[string][]string),
	}
}

// Len returns the row count.
func (t *Table) Len() int {
	return len(t.dates)
}

// Dates returns the row dates in order.
func (t *Table) Dates() []time.Time {
	copied := make([]time.Time, len(t.dates))
	copy(copied, t.dates)
	return copied
}

// SetNumeric adds or replaces a numeric column.
func (t *Table) SetNumeric(name string, values []float64) error {
	if len(values) != len(t.dates) {
		return fmt.Errorf("column %s has %d values, table has %d rows", name, len(values), len(t.dates))
	}
	if _, exists := t.numeric[name]; !exists {
		t.numericOrder = append(t.numericOrder, name)
	}
	copied := make([]float64, len(values))
	copy(copied, values)
	t.numeric[name] = copied
	return nil
}

// Numeric returns a numeric column by name.
func (t *Table) Numeric(name string) ([]float64, bool) {
	values, ok := t.numeric[name]
	return values, ok
}

// SetCategorical adds or replaces a categorical column.
func (t *Table) SetCategorical(name string, values []string) error {
	if len(values) != len(t.dates) {
		return fmt.Errorf("column %s has %d values, table has %d rows", name, len(values), len(t.dates))
	}
	if _, exists := t.cats[name]; !exists {
		t.catOrder = append(t.catOrder, name)
	}
	copied := make([]string, len(values))
	copy(copied, values)
	t.cats[name] = copied
	return nil
}

// Categorical returns a categorical column by name.
func (t *Table) Categorical(name string) ([]string, bool) {
	values, ok := t.cats[name]
	return values, ok
}

// NumericColumns returns numeric column names in insertion order.
func (t *Table) NumericColumns() []string {
	copied := make([]string, len(t.numericOrder))
	copy(copied, t.numericOrder)
	return copied
}

// CategoricalColumns returns categorical column names in insertion order.
func (t *Table) CategoricalColumns() []string {
	copied := make([]string, len(t.catOrder))
	copy(copied, t.catOrder)
	return copied
}

// dropCategorical removes a categorical column after encoding.
func (t *Table) dropCategorical(name string) {
	if _, ok := t.cats[name]; !ok {
		return
	}
	delete(t.cats, name)
	order := t.catOrder[:0]
	for _, col := range t.catOrder {
		if col != name {
			order = append(order, col)
		}
	}
	t.catOrder = order
}

// Matrix extracts the feature matrix and its ordered column names,
// excluding the named columns (typically the target). The returned
// column order is the contract the fitted model persists.
func (t *Table) Matrix(exclude ...string) ([][]float64, []string) {
	skip := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		skip[name] = true
	}

	columns := make([]string, 0, len(t.numericOrder))
	for _, name := range t.numericOrder {
		if !skip[name] {
			columns = append(columns, name)
		}
	}

	rows := make([][]float64, t.Len())
	for i := range rows {
		row := make([]float64, len(columns))
		for j, name := range columns {
			row[j] = t.numeric[name][i]
		}
		rows[i] = row
	}
	return rows, columns
}
