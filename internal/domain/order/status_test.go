package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"new", "in_progress", "completed", "canceled"} {
		got, err := ParseStatus(s)
		require.NoError(t, err)
		assert.Equal(t, Status(s), got)
	}
}

func TestParseStatus_Unknown(t *testing.T) {
	_, err := ParseStatus("shipped")

	var unknownErr *UnknownStatusError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "shipped", unknownErr.Value)
}

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusNew, StatusInProgress, true},
		{StatusNew, StatusCanceled, true},
		{StatusNew, StatusCompleted, false},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusCanceled, true},
		{StatusInProgress, StatusNew, false},
		{StatusCompleted, StatusNew, false},
		{StatusCompleted, StatusInProgress, false},
		{StatusCompleted, StatusCanceled, false},
		{StatusCanceled, StatusNew, false},
		{StatusCanceled, StatusInProgress, false},
		{StatusCanceled, StatusCompleted, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestCanTransitionTo_SelfIsIdempotent(t *testing.T) {
	for _, s := range []Status{StatusNew, StatusInProgress, StatusCompleted, StatusCanceled} {
		assert.True(t, s.CanTransitionTo(s), "%s -> %s", s, s)
	}
}

func TestCanTransitionTo_UnknownStatus(t *testing.T) {
	assert.False(t, Status("shipped").CanTransitionTo(StatusNew))
	assert.False(t, StatusNew.CanTransitionTo(Status("shipped")))
}

func TestTerminal(t *testing.T) {
	assert.False(t, StatusNew.Terminal())
	assert.False(t, StatusInProgress.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusCanceled.Terminal())
}
