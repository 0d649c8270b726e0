package simulations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunScenario(t *testing.T) {
	report, err := RunScenario(context.Background())
	require.NoError(t, err)

	require.EqualValues(t, 100_000, report.Deposited)
	require.EqualValues(t, 38_000, report.WithdrawnNet)
	require.EqualValues(t, 2_000, report.WithdrawalFee)
	require.EqualValues(t, 2, report.StrategyRuns)
	require.EqualValues(t, 500, report.TotalProfit)

	// Thirty boosted days at rate 10: 2 * 10 * 2_592_000.
	require.EqualValues(t, 51_840_000_000, report.RewardsCompounded)
	require.EqualValues(t, 60_000+51_840_000_000-10_000, report.FinalPool)
}

func TestRunScenarioIsDeterministic(t *testing.T) {
	first, err := RunScenario(context.Background())
	require.NoError(t, err)

	second, err := RunScenario(context.Background())
	require.NoError(t, err)

	require.Equal(t, first, second)
}
