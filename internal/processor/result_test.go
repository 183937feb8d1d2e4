package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResult(t *testing.T) {
	cases := []struct {
		result   string
		homeWins bool
	}{
		{"3:1", true},
		{"1:3", false},
		{"3:0", true},
		{"10:9", true},
		{"9:10", false},
		{" 2 : 3 ", false},
	}
	for _, tc := range cases {
		t.Run(tc.result, func(t *testing.T) {
			homeWins, err := ParseResult(tc.result)
			require.NoError(t, err)
			assert.Equal(t, tc.homeWins, homeWins)
		})
	}

	for _, bad := range []string{"", "-:-", "3", "3-1", "a:1", "1:b", "2:2", "-1:3", "3:1:0"} {
		t.Run("rejects "+bad, func(t *testing.T) {
			_, err := ParseResult(bad)
			assert.ErrorIs(t, err, ErrUnparsableResult)
		})
	}
}
