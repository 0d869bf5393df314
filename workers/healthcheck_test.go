package workers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEventDate(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2026-09-15", time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), true},
		{"9/15/2026", time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), true},
		{"09/15/2026", time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), true},
		{"September 15, 2026", time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), true},
		{"TBD", time.Time{}, false},
		{"", time.Time{}, false},
	}

	for _, c := range cases {
		got, ok := parseEventDate(c.in)
		require.Equal(t, c.ok, ok, "input %q", c.in)
		if c.ok {
			assert.True(t, got.Equal(c.want), "input %q: got %v", c.in, got)
		}
	}
}
