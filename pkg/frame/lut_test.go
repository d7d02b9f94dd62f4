package frame

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewTable(t *testing.T) {
	testCases := []struct {
		name       string
		brightness float64
		top        uint16
	}{
		{"full", 1, 0xffff},
		{"off", 0, 0},
		{"negative clamped", -3, 0},
		{"above one clamped", 7, 0xffff},
		{"nan", math.NaN(), 0},
		{"half", 0.5, uint16(math.Round(255 * 257 * 0.5))},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			table := NewTable(tc.brightness)
			require.Equal(t, tc.top, table[255])
			require.Zero(t, table[0])
			for i := 1; i < len(table); i++ {
				require.Truef(t, table[i] >= table[i-1], "table[%d] decreases", i)
			}
		})
	}
}

func TestTableFollowsGamma(t *testing.T) {
	table := NewTable(1)
	for i, g := range gamma8 {
		require.Equal(t, uint16(g)*257, table[i])
		require.Equal(t, g, uint8(table[i]>>8))
	}
}
