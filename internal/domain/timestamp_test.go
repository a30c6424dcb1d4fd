package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{
			name: "gitlab millis with zone",
			in:   "2019-05-01T10:20:30.456Z",
			want: time.Date(2019, 5, 1, 10, 20, 30, 456_000_000, time.UTC),
		},
		{
			name: "offset beyond 23 chars is ignored",
			in:   "2019-05-01T10:20:30.456+02:00",
			want: time.Date(2019, 5, 1, 10, 20, 30, 456_000_000, time.UTC),
		},
		{
			name: "no fraction",
			in:   "2019-05-01T10:20:30Z",
			want: time.Date(2019, 5, 1, 10, 20, 30, 0, time.UTC),
		},
		{
			name: "rfc3339 fallback with offset",
			in:   "2019-05-01T10:20:30+02:00",
			want: time.Date(2019, 5, 1, 8, 20, 30, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestParseTimestamp_Invalid(t *testing.T) {
	_, err := ParseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestLatestOnRef(t *testing.T) {
	pipes := []Pipeline{
		{ID: 3, Ref: "feature"},
		{ID: 2, Ref: "main"},
		{ID: 1, Ref: "main"},
	}

	p, ok := LatestOnRef(pipes, "main")
	require.True(t, ok)
	assert.Equal(t, int64(2), p.ID)

	_, ok = LatestOnRef(pipes, "develop")
	assert.False(t, ok)
}

func TestNotFoundError_Is(t *testing.T) {
	var err error = &NotFoundError{Kind: "group", Name: "Team"}
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualError(t, err, `group "Team" not found`)
}
