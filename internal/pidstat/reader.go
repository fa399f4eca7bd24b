package pidstat

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bufio"
	"io"
	"log/slog"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"sxprof/internal/timeparse"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
)

const secondsPerDay = 86400

// Options configures Read.
type Options struct {
	// NCores scales %CPU into a number of busy cores.
	NCores float64
	// Derivations are evaluated after parsing; nil means DefaultDerivations.
	Derivations []Derivation
	// Logger receives warnings about skipped rows; nil discards them.
	Logger *slog.Logger
}

// Read parses the sampler file at path.
func Read(path string, opts Options) (*Samples, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return nil, errors.Wrap(err, "failed to open sampler output")
	}
	defer f.Close()
	samples, err := ReadFrom(f, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return samples, nil
}

// ReadFrom parses sampler output. Header lines start with '#'; a repeated
// header adds any new columns and parsing continues with the rows that follow.
func ReadFrom(r io.Reader, opts Options) (*Samples, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	known := mapset.NewThreadUnsafeSet[string]()
	var order []string
	var rows []map[string]Value
	var times []float64

	var parser LineParser
	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		row, kind, err := parser.Parse(scanner.Text())
		if err != nil {
			logger.Warn("dropping sample with unparsable time", slog.Int("line", lineNumber), slog.String("error", err.Error()))
			continue
		}
		switch kind {
		case LineHeader:
			for _, name := range parser.Header() {
				if known.Add(name) {
					order = append(order, name)
				}
			}
		case LineSample:
			rows = append(rows, row.Values)
			times = append(times, row.Time)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if !known.Contains(TimeColumn) {
		return nil, errors.Wrapf(ErrMissingColumn, "%s", TimeColumn)
	}

	samples := &Samples{data: make(map[string][]Value, len(order))}
	for _, name := range order {
		values := make([]Value, len(rows))
		if name == TimeColumn {
			for i, t := range unwrapTimes(times) {
				values[i] = number(t)
			}
		} else {
			for i, row := range rows {
				if v, ok := row[name]; ok {
					values[i] = v
				} else {
					values[i] = missing
				}
			}
		}
		samples.setColumn(name, values)
	}

	derivations := opts.Derivations
	if derivations == nil {
		derivations = DefaultDerivations
	}
	params := map[string]any{"ncores": opts.NCores}
	for _, d := range derivations {
		err := samples.Derive(d, params)
		if errors.Is(err, ErrMissingColumn) || errors.Is(err, ErrNotNumeric) {
			logger.Warn("skipping derived column", slog.String("column", d.Name), slog.String("error", err.Error()))
			continue
		}
		if err != nil {
			return nil, err
		}
	}
	return samples, nil
}

// LineKind tells what LineParser found on a line.
type LineKind int

const (
	LineIgnored LineKind = iota
	LineHeader
	LineSample
)

// Row is one sample. Time is the raw clock value in seconds, before any
// midnight wraparound is corrected.
type Row struct {
	Time   float64
	Values map[string]Value
}

// LineParser parses sampler output one line at a time. Header lines start
// with '#' and name the columns of the rows that follow them.
type LineParser struct {
	header []string
}

// Header returns the columns of the most recent header line.
func (p *LineParser) Header() []string {
	return p.header
}

// Parse parses one line. Banner lines before the first header and blank
// lines are ignored. A row whose time cannot be parsed is an error.
func (p *LineParser) Parse(line string) (Row, LineKind, error) {
	if strings.HasPrefix(line, "#") {
		p.header = strings.Fields(line[1:])
		return Row{}, LineHeader, nil
	}
	if p.header == nil {
		return Row{}, LineIgnored, nil
	}
	tokens := rejoinMeridiem(strings.Fields(line), slices.Index(p.header, TimeColumn))
	if len(tokens) == 0 {
		return Row{}, LineIgnored, nil
	}
	row := Row{Values: make(map[string]Value, len(p.header))}
	timeOK := false
	for i, name := range p.header {
		if i >= len(tokens) {
			break
		}
		token := tokens[i]
		if name == TimeColumn {
			t, err := timeparse.Seconds(token)
			if err != nil {
				return Row{}, LineIgnored, errors.Wrapf(err, "time %q", token)
			}
			if math.IsNaN(t) || math.IsInf(t, 0) {
				return Row{}, LineIgnored, errors.Errorf("time %q is not finite", token)
			}
			row.Time = t
			timeOK = true
			continue
		}
		if f, err := strconv.ParseFloat(token, 64); err == nil {
			row.Values[name] = number(f)
		} else {
			row.Values[name] = text(token)
		}
	}
	if !timeOK {
		// rows without a Time column never contribute a sample
		return Row{}, LineIgnored, nil
	}
	return row, LineSample, nil
}

// rejoinMeridiem merges an AM/PM token back into the time field it belongs to.
func rejoinMeridiem(tokens []string, timeIdx int) []string {
	if timeIdx < 0 || timeIdx+1 >= len(tokens) || !timeparse.IsMeridiem(tokens[timeIdx+1]) {
		return tokens
	}
	joined := make([]string, 0, len(tokens)-1)
	joined = append(joined, tokens[:timeIdx]...)
	joined = append(joined, tokens[timeIdx]+" "+tokens[timeIdx+1])
	return append(joined, tokens[timeIdx+2:]...)
}

// unwrapTimes converts wall-clock times into seconds since the first
// sample. A step backwards is a pass through midnight.
func unwrapTimes(raw []float64) []float64 {
	out := make([]float64, len(raw))
	for i := 1; i < len(raw); i++ {
		d := raw[i] - raw[i-1]
		if math.IsNaN(d) || math.IsInf(d, 0) {
			d = 0
		}
		if d < 0 {
			d = math.Mod(d, secondsPerDay)
			if d < 0 {
				d += secondsPerDay
			}
		}
		out[i] = out[i-1] + d
	}
	return out
}
