package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "rcm-benchmark/internal/common/errors"
)

func defaultFlags() computeFlags {
	return computeFlags{
		Name:       "General Hospital",
		Beds:       250,
		Investment: 450000,
		AnnualCost: 400000,
	}
}

func TestBuildDocument(t *testing.T) {
	_, doc, err := buildDocument(context.Background(), defaultFlags())
	require.NoError(t, err)

	assert.Equal(t, "US", doc.Metrics.State)
	assert.Equal(t, 195216, doc.Metrics.PotentialSavings)
	assert.Equal(t, 27, doc.Metrics.BreakEvenMonths)
	assert.Len(t, doc.ROISchedule, 4)
}

func TestBuildDocument_RejectsBadState(t *testing.T) {
	f := defaultFlags()
	f.State = "Texas"
	_, _, err := buildDocument(context.Background(), f)
	assert.Error(t, err)
}

func TestBuildDocument_RejectsNegativeCosts(t *testing.T) {
	f := defaultFlags()
	f.Investment = -450000
	_, _, err := buildDocument(context.Background(), f)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidInput))

	f = defaultFlags()
	f.AnnualCost = -1
	_, _, err = buildDocument(context.Background(), f)
	assert.Error(t, err)
}

func TestWriteSummary(t *testing.T) {
	_, doc, err := buildDocument(context.Background(), defaultFlags())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeSummary(&buf, doc))

	out := buf.String()
	assert.Contains(t, out, "General Hospital (250 beds, US, static data)")
	assert.Contains(t, out, "Staff Turnover Rate")
	assert.Contains(t, out, "Potential savings:     $195,216")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, map[string]int{"break_even_months": 27}))

	var decoded map[string]int
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 27, decoded["break_even_months"])
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"compute", "roi", "migrate"} {
		assert.True(t, names[want], want)
	}
}
