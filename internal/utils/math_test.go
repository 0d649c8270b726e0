package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddUint64(t *testing.T) {
	sum, err := AddUint64(40, 2)
	require.NoError(t, err)
	require.Equal(t, uint64(42), sum)

	sum, err = AddUint64(math.MaxUint64, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(math.MaxUint64), sum)

	_, err = AddUint64(math.MaxUint64, 1)
	require.ErrorIs(t, err, ErrOverflow)
}

func TestSubUint64(t *testing.T) {
	diff, err := SubUint64(100, 40)
	require.NoError(t, err)
	require.Equal(t, uint64(60), diff)

	_, err = SubUint64(40, 100)
	require.ErrorIs(t, err, ErrOverflow)
}

func TestMulUint64(t *testing.T) {
	product, err := MulUint64(3, 1000)
	require.NoError(t, err)
	require.Equal(t, uint64(3000), product)

	_, err = MulUint64(math.MaxUint64, 2)
	require.ErrorIs(t, err, ErrOverflow)
}

func TestAddInt64(t *testing.T) {
	sum, err := AddInt64(1000, -500)
	require.NoError(t, err)
	require.Equal(t, int64(500), sum)

	sum, err = AddInt64(-300, -200)
	require.NoError(t, err)
	require.Equal(t, int64(-500), sum)

	_, err = AddInt64(math.MaxInt64, 1)
	require.ErrorIs(t, err, ErrOverflow)

	_, err = AddInt64(math.MinInt64, -1)
	require.ErrorIs(t, err, ErrOverflow)
}

func TestMulThenUint64(t *testing.T) {
	product, err := MulThenUint64(1, 10, 100)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), product)

	// Each pair fits, the three-way product does not.
	_, err = MulThenUint64(math.MaxUint32, math.MaxUint32, math.MaxUint32)
	require.ErrorIs(t, err, ErrOverflow)
}
