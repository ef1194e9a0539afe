package decimalx

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMustFromString(t *testing.T) {
	assert.True(t, MustFromString("1.5").Equal(decimal.NewFromFloat(1.5)))
	assert.Panics(t, func() {
		MustFromString("not a number")
	})
}

func TestAvg(t *testing.T) {
	testCases := []struct {
		name string
		ds   []decimal.Decimal
		want decimal.Decimal
	}{
		{
			name: "simple",
			ds: []decimal.Decimal{
				decimal.NewFromInt(1),
				decimal.NewFromInt(2),
				decimal.NewFromInt(3),
			},
			want: decimal.NewFromInt(2),
		},
		{
			name: "single",
			ds:   []decimal.Decimal{decimal.NewFromInt(7)},
			want: decimal.NewFromInt(7),
		},
		{
			name: "empty",
			ds:   nil,
			want: decimal.Zero,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, Avg(tc.ds).Equal(tc.want))
		})
	}
}
