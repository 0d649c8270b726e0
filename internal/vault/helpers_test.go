package vault

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/optionsvault/ovm/internal/config"
	"github.com/optionsvault/ovm/internal/custody"
	"github.com/optionsvault/ovm/internal/types"
)

const (
	testAuthority    = types.Identity("admin")
	testVaultAccount = types.AccountRef("vault/1")
	testFeeAccount   = types.AccountRef("fees/1")
)

// manualClock is a settable ClockSource for deterministic tests.
type manualClock struct {
	now int64
}

func (c *manualClock) Now() int64 { return c.now }

func (c *manualClock) advance(seconds int64) { c.now += seconds }

// captureSink records every emitted event in order.
type captureSink struct {
	mu     sync.Mutex
	events []types.DomainEvent
}

func (s *captureSink) Emit(event types.DomainEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *captureSink) all() []types.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.DomainEvent(nil), s.events...)
}

func (s *captureSink) last() types.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) == 0 {
		return nil
	}
	return s.events[len(s.events)-1]
}

type fixture struct {
	service *Service
	vault   *types.Vault
	ledger  *custody.MemoryLedger
	clock   *manualClock
	sink    *captureSink
}

type fixtureOption func(*Config)

func withPositions(positions ...types.UserPosition) fixtureOption {
	return func(cfg *Config) { cfg.Positions = positions }
}

func withVault(v *types.Vault) fixtureOption {
	return func(cfg *Config) { cfg.Vault = v }
}

// newFixture assembles a service over the in-memory ledger with the default
// parameters and a clock starting at epoch second 1_700_000_000.
func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	ledger := custody.NewMemoryLedger()
	clock := &manualClock{now: 1_700_000_000}
	sink := &captureSink{}

	cfg := Config{
		Vault:        InitializeVault(1, testAuthority, 10, 50_000),
		Params:       config.DefaultVaultParameters,
		Transfer:     ledger,
		Clock:        clock,
		Events:       sink,
		VaultAccount: testVaultAccount,
		FeeAccount:   testFeeAccount,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	service, err := NewService(cfg)
	require.NoError(t, err)

	return &fixture{
		service: service,
		vault:   cfg.Vault,
		ledger:  ledger,
		clock:   clock,
		sink:    sink,
	}
}

// fund credits a user's holding account for deposit tests.
func (f *fixture) fund(user types.Identity, amount uint64) {
	f.ledger.Credit(types.UserHoldingAccount(user), amount)
}
