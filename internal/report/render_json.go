package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"encoding/json"

	"sxprof/internal/chart"
	"sxprof/internal/eventlog"
)

func createJsonReport(data Data) (out []byte, err error) {
	type outRecord map[string]string
	type outTable []outRecord
	oTables := make(map[string]outTable)
	for _, tableValues := range Tables(data) {
		var oTable outTable
		if len(tableValues.Fields) == 0 {
			oTables[tableValues.Name] = oTable
			continue
		}
		numRecords := len(tableValues.Fields[0].Values)
		for recordIdx := range numRecords {
			oRecord := make(outRecord)
			for _, field := range tableValues.Fields {
				oRecord[field.Name] = field.Values[recordIdx]
			}
			oTable = append(oTable, oRecord)
		}
		oTables[tableValues.Name] = oTable
	}
	// json has no NaN, padded samples are dropped
	var figure *chart.Figure
	if data.Figure != nil {
		figure = data.Figure.Finite()
	}
	oReport := struct {
		Title   string              `json:"title"`
		Summary *eventlog.Summary   `json:"summary"`
		Figure  *chart.Figure       `json:"figure,omitempty"`
		Tables  map[string]outTable `json:"tables"`
	}{
		Title:   data.Title,
		Summary: data.Summary,
		Figure:  figure,
		Tables:  oTables,
	}
	return json.MarshalIndent(oReport, "", " ")
}
