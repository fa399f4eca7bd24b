package pidstat

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"math"

	"github.com/casbin/govaluate"
	"github.com/pkg/errors"
)

// Derivation adds a column computed from other columns. Column names that
// are not plain identifiers are written in brackets, e.g. [%CPU].
type Derivation struct {
	Name       string
	Expression string
}

// DefaultDerivations turns %CPU into the number of busy cores.
var DefaultDerivations = []Derivation{
	{Name: "CPU", Expression: "[%CPU] / 100 * ncores"},
}

// Derive evaluates d for every sample and stores the result as a new column.
// Variables are looked up in params first, then among the numeric columns.
// Rows where an input is NaN produce NaN.
func (s *Samples) Derive(d Derivation, params map[string]any) error {
	expression, err := govaluate.NewEvaluableExpression(d.Expression)
	if err != nil {
		return errors.Wrapf(err, "derived column %s", d.Name)
	}
	columns := map[string][]float64{}
	for _, name := range expression.Vars() {
		if _, ok := params[name]; ok {
			continue
		}
		values, err := s.Float(name)
		if err != nil {
			return errors.Wrapf(err, "derived column %s", d.Name)
		}
		columns[name] = values
	}
	out := make([]Value, s.Len())
	vars := make(map[string]any, len(params)+len(columns))
	for k, v := range params {
		vars[k] = v
	}
	for i := range out {
		nan := false
		for name, values := range columns {
			vars[name] = values[i]
			nan = nan || math.IsNaN(values[i])
		}
		if nan {
			out[i] = missing
			continue
		}
		result, err := expression.Evaluate(vars)
		if err != nil {
			return errors.Wrapf(err, "derived column %s, row %d", d.Name, i)
		}
		f, ok := result.(float64)
		if !ok {
			return errors.Errorf("derived column %s: expression yields %T, not a number", d.Name, result)
		}
		out[i] = number(f)
	}
	s.setColumn(d.Name, out)
	return nil
}
