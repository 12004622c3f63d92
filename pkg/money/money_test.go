package money_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symbolic-labs-pub/freedom-that-lasts/pkg/money"
)

func TestSumZero(t *testing.T) {
	a, err := money.Parse("-25000")
	require.NoError(t, err)
	b, err := money.Parse("25000")
	require.NoError(t, err)

	assert.True(t, money.SumZero([]money.Amount{a, b}))

	c, err := money.Parse("25001")
	require.NoError(t, err)
	assert.False(t, money.SumZero([]money.Amount{a, c}))
}

func TestStepRatio(t *testing.T) {
	delta, err := money.Parse("-25000")
	require.NoError(t, err)
	base := money.NewFromInt(500000)

	ratio := money.StepRatio(delta, base)
	expected, err := money.Parse("0.05")
	require.NoError(t, err)
	assert.True(t, ratio.Equal(expected))
}

func TestIsNegative(t *testing.T) {
	neg, err := money.Parse("-1")
	require.NoError(t, err)
	assert.True(t, money.IsNegative(neg))
	assert.False(t, money.IsNegative(money.Zero))
}
