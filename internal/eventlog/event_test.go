package eventlog

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineParser(t *testing.T) {
	var p LineParser
	ev, err := p.Parse("10:00:00 SourceXtractor INFO : Background for image  'a.fits'")
	require.NoError(t, err)
	assert.Equal(t, LogEvent{Elapsed: 0, Logger: "SourceXtractor", Level: "INFO", Message: "Background for image  'a.fits'"}, ev)

	ev, err = p.Parse("10:00:02.5\tSourceXtractor\tDEBUG\t[t1]\tDeblended 4  ")
	require.NoError(t, err)
	assert.Equal(t, 2.5, ev.Elapsed)
	assert.Equal(t, "DEBUG", ev.Level)
	assert.Equal(t, "Deblended 4", ev.Message)

	_, err = p.Parse("10:00:03 SourceXtractor INFO :")
	assert.True(t, errors.Is(err, ErrMalformedLine))
}

func TestReadEvents(t *testing.T) {
	events, err := ReadEvents(strings.NewReader("00:00:01 a INFO t one\nbad\n00:00:03 b ERROR t two three\n"), nil)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, 2.0, events[1].Elapsed)
	assert.Equal(t, "two three", events[1].Message)
}
