package shared

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"12", 12},
		{" 1.5 ", 1.5},
		{"-3", -3},
		{"", 0},
		{"abc", 0},
		{"NaN", 0},
		{"+Inf", 0},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseQuantity(tt.input))
		})
	}
}

func TestParseMinorUnits(t *testing.T) {
	assert.Equal(t, int64(1299), ParseMinorUnits("1299"))
	assert.Equal(t, int64(0), ParseMinorUnits("12.99"))
	assert.Equal(t, int64(0), ParseMinorUnits(""))
}

func TestSanitizeNumber(t *testing.T) {
	assert.Equal(t, 0.0, SanitizeNumber(math.Inf(-1)))
	assert.Equal(t, 0.0, SanitizeNumber(math.NaN()))
	assert.Equal(t, 2.0, SanitizeNumber(2))
}
