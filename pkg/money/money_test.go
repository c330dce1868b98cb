package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	assert.Equal(t, 10.13, Round2(10.128))
	assert.Equal(t, 10.12, Round2(10.124))
	assert.Equal(t, 30.0, Round2(20.55+9.45)) // 浮点累加误差被吸收
	assert.Equal(t, 0.0, Round2(0))
	assert.Equal(t, -5.13, Round2(-5.128))
}

func TestAmountsRoundTrip(t *testing.T) {
	s := JoinAmounts([]float64{0.25, 1, 5})
	assert.Equal(t, "0.25,1,5", s)
	assert.Equal(t, []float64{0.25, 1, 5}, SplitAmounts(s))

	assert.Equal(t, "", JoinAmounts(nil))
	assert.Empty(t, SplitAmounts(""))
}

func TestColorsRoundTrip(t *testing.T) {
	s := JoinColors([]string{"red", "green", "black"})
	assert.Equal(t, []string{"red", "green", "black"}, SplitColors(s))
	assert.Empty(t, SplitColors(""))
}
