// Package pidstat reads the columnar output of `pidstat -h` into aligned
// per-column time series.
package pidstat

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"math"
	"slices"
	"strconv"

	"github.com/pkg/errors"
)

// TimeColumn is the sampler column holding the sample timestamp.
const TimeColumn = "Time"

var (
	ErrMissingColumn = errors.New("column not sampled")
	ErrNotNumeric    = errors.New("column is not numeric")
)

// Value is a single sampled field. Fields that are not numbers, e.g. the
// command name, are kept as text.
type Value struct {
	Num    float64
	Text   string
	IsText bool
}

func number(f float64) Value {
	return Value{Num: f}
}

func text(s string) Value {
	return Value{Text: s, IsText: true}
}

// missing marks a column that was absent from the header of a given row
var missing = Value{Num: math.NaN()}

func (v Value) String() string {
	if v.IsText {
		return v.Text
	}
	return strconv.FormatFloat(v.Num, 'f', -1, 64)
}

// Samples holds every column seen in a sampler file. All columns have the
// same length; column order is the order in which columns first appeared.
type Samples struct {
	columns []string
	data    map[string][]Value
}

// Columns returns the column names in first-seen order.
func (s *Samples) Columns() []string {
	return slices.Clone(s.columns)
}

// Len returns the number of samples.
func (s *Samples) Len() int {
	if len(s.columns) == 0 {
		return 0
	}
	return len(s.data[s.columns[0]])
}

// Has reports whether the column was sampled.
func (s *Samples) Has(name string) bool {
	_, ok := s.data[name]
	return ok
}

// Values returns the raw values of a column.
func (s *Samples) Values(name string) ([]Value, error) {
	values, ok := s.data[name]
	if !ok {
		return nil, errors.Wrapf(ErrMissingColumn, "%s", name)
	}
	return values, nil
}

// Float returns a numeric column. Padding for rows that did not carry the
// column is NaN.
func (s *Samples) Float(name string) ([]float64, error) {
	values, err := s.Values(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(values))
	for i, v := range values {
		if v.IsText {
			return nil, errors.Wrapf(ErrNotNumeric, "%s: row %d holds %q", name, i, v.Text)
		}
		out[i] = v.Num
	}
	return out, nil
}

// Stats summarizes a numeric column, ignoring NaN padding.
type Stats struct {
	Min  float64
	Mean float64
	Max  float64
}

// Stats returns min/mean/max of a numeric column.
func (s *Samples) Stats(name string) (Stats, error) {
	values, err := s.Float(name)
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{Min: math.Inf(1), Max: math.Inf(-1)}
	var sum float64
	var n int
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		stats.Min = min(stats.Min, v)
		stats.Max = max(stats.Max, v)
		sum += v
		n++
	}
	if n == 0 {
		return Stats{}, errors.Errorf("%s: no numeric samples", name)
	}
	stats.Mean = sum / float64(n)
	return stats, nil
}

func (s *Samples) setColumn(name string, values []Value) {
	if _, ok := s.data[name]; !ok {
		s.columns = append(s.columns, name)
	}
	s.data[name] = values
}
