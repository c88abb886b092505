package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	cases := []struct {
		in   string
		want Status
	}{
		{"READY", StatusReady},
		{"NEW", StatusReady},
		{"IN_PROGRESS", StatusInProgress},
		{"COMPLETED", StatusCompleted},
		{"FAILED", StatusFailed},
		{"", StatusReady},
		{"garbage", StatusReady},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, ParseStatus(tc.in), "input %q", tc.in)
	}
}

func TestStatus_CanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusReady, StatusInProgress, true},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusFailed, true},
		{StatusReady, StatusCompleted, true},     // hangup before answer
		{StatusFailed, StatusCompleted, true},    // hangup after failure
		{StatusCompleted, StatusCompleted, true}, // idempotent hangup
		{StatusCompleted, StatusInProgress, false},
		{StatusCompleted, StatusFailed, false},
		{StatusReady, StatusFailed, false},
		{StatusInProgress, StatusInProgress, false},
		{StatusFailed, StatusInProgress, false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}
