package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSum(t *testing.T) {
	got := Sum(MustMoney("1000"), MustMoney("250.50"), MustMoney("0.25"))
	assert.True(t, got.Equal(MustMoney("1250.75")), got.String())
	assert.True(t, Sum().IsZero())
}

func TestPercentage(t *testing.T) {
	assert.True(t, Percentage(MustMoney("50"), MustMoney("200")).Equal(MustMoney("25")))
	assert.True(t, Percentage(MustMoney("1"), MustMoney("3")).Equal(MustMoney("33.33")))
	assert.True(t, Percentage(MustMoney("10"), Zero()).IsZero())
}

func TestAverage(t *testing.T) {
	assert.True(t, Average(MustMoney("100"), 3).Equal(MustMoney("33.33")))
	assert.True(t, Average(MustMoney("100"), 0).IsZero())
}

func TestNewMoneyRounds(t *testing.T) {
	assert.Equal(t, "10.13", NewMoney(10.125).StringFixed(2))
	assert.Equal(t, "1000.00", NewMoney(1000).StringFixed(2))
}
