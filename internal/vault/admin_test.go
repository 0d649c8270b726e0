package vault

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAdmin_AuthorityGate(t *testing.T) {
	f := newFixture(t)

	require.ErrorIs(t, f.service.SetRewardRate("mallory", 99), ErrUnauthorized)
	require.ErrorIs(t, f.service.SetStrategyThreshold("mallory", 99), ErrUnauthorized)
	require.ErrorIs(t, f.service.Pause("mallory"), ErrUnauthorized)
	require.ErrorIs(t, f.service.Unpause("mallory"), ErrUnauthorized)

	require.Equal(t, uint64(10), f.vault.RewardRate)
	require.Equal(t, uint64(50_000), f.vault.PriceThreshold)
	require.False(t, f.vault.Paused)
}

func TestAdmin_Setters(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.service.SetRewardRate(testAuthority, 25))
	require.Equal(t, uint64(25), f.vault.RewardRate)

	require.NoError(t, f.service.SetStrategyThreshold(testAuthority, 75_000))
	require.Equal(t, uint64(75_000), f.vault.PriceThreshold)
}

func TestPauseGate(t *testing.T) {
	f := newFixture(t)
	f.fund("alice", 1_000)
	ctx := context.Background()
	require.NoError(t, f.service.Deposit(ctx, "alice", 100))

	require.NoError(t, f.service.Pause(testAuthority))

	// Every gated operation rejects while paused.
	require.ErrorIs(t, f.service.Deposit(ctx, "alice", 1), ErrVaultPaused)
	_, _, err := f.service.Withdraw(ctx, "alice", 1)
	require.ErrorIs(t, err, ErrVaultPaused)
	_, err = f.service.ExecuteStrategy(60_000)
	require.ErrorIs(t, err, ErrVaultPaused)
	_, err = f.service.AuthorizeBorrow(1)
	require.ErrorIs(t, err, ErrVaultPaused)

	// Admin operations remain callable while paused.
	require.NoError(t, f.service.SetRewardRate(testAuthority, 11))
	require.NoError(t, f.service.SetStrategyThreshold(testAuthority, 1))

	require.NoError(t, f.service.Unpause(testAuthority))
	require.NoError(t, f.service.Deposit(ctx, "alice", 1))
}
