package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStage(t *testing.T) {
	tests := []struct {
		status CaseStatus
		stage  int
		ok     bool
	}{
		{"In Progress Stage 1", 1, true},
		{"In Progress Stage 3", 3, true},
		{"In Progress Stage 5", 5, true},
		{"In Progress Stage 6", 0, false},
		{"In Progress Stage 0", 0, false},
		{"On Hold", 0, false},
		{"Closed", 0, false},
		{"", 0, false},
		{"In Progress Stage x", 0, false},
	}

	for _, tt := range tests {
		stage, ok := ParseStage(tt.status)
		assert.Equal(t, tt.ok, ok, "status %q", tt.status)
		if tt.ok {
			assert.Equal(t, tt.stage, stage, "status %q", tt.status)
		}
	}
}

func TestStageStatusRoundTrip(t *testing.T) {
	for stage := 1; stage <= MaxProgressStage; stage++ {
		parsed, ok := ParseStage(StageStatus(stage))
		require.True(t, ok)
		assert.Equal(t, stage, parsed)
	}
}

func TestProgressFor(t *testing.T) {
	assert.Equal(t, 20.0, ProgressFor("In Progress Stage 1", 1, 0))
	assert.Equal(t, 60.0, ProgressFor("In Progress Stage 3", 3, 40))
	assert.Equal(t, 100.0, ProgressFor("In Progress Stage 5", 5, 80))

	// Closed always reads 100 regardless of the stage reached
	assert.Equal(t, 100.0, ProgressFor(CaseClosed, 2, 40))

	// On Hold and Dismissed freeze the last derived value
	assert.Equal(t, 40.0, ProgressFor(CaseStatusOnHold, 2, 40))
	assert.Equal(t, 60.0, ProgressFor(CaseDismissed, 3, 60))
}

func TestIsTerminalCase(t *testing.T) {
	assert.True(t, IsTerminalCase(CaseClosed))
	assert.True(t, IsTerminalCase(CaseDismissed))
	assert.False(t, IsTerminalCase(CaseStatusOnHold))
	assert.False(t, IsTerminalCase("In Progress Stage 5"))
	assert.False(t, IsTerminalCase(CaseStatusNone))
}

func TestAppendStageEntry(t *testing.T) {
	r := &Referral{}

	entries, err := r.StageEntries()
	require.NoError(t, err)
	assert.Empty(t, entries)

	first := StageEntry{Status: "In Progress Stage 1", Note: "intake done", Date: time.Now()}
	require.NoError(t, r.AppendStageEntry(first))

	second := StageEntry{Status: "On Hold", Note: "client unreachable", Date: time.Now()}
	require.NoError(t, r.AppendStageEntry(second))

	entries, err = r.StageEntries()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// earlier entries survive later appends unchanged
	assert.Equal(t, CaseStatus("In Progress Stage 1"), entries[0].Status)
	assert.Equal(t, "intake done", entries[0].Note)
	assert.Equal(t, CaseStatus("On Hold"), entries[1].Status)
}

func TestValidColorCode(t *testing.T) {
	assert.True(t, ValidColorCode(ColorRed))
	assert.True(t, ValidColorCode(ColorYellow))
	assert.False(t, ValidColorCode("Green"))
	assert.False(t, ValidColorCode(""))
	assert.False(t, ValidColorCode("red"))
}
