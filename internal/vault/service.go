package vault

import (
	"errors"
	"sync"
	"time"

	"github.com/optionsvault/ovm/internal/logger"
	"github.com/optionsvault/ovm/internal/types"
)

var serviceLogger = logger.GetForComponent("vault_service")

// Error definitions for service construction validation.
var (
	ErrNilVault        = errors.New("vault record is nil")
	ErrNilTransferPort = errors.New("asset transfer port is nil")
	ErrNilClock        = errors.New("clock source is nil")
	ErrInvalidParams   = errors.New("vault parameters are invalid")
)

// Config carries the dependencies and initial state for a vault Service.
type Config struct {
	Vault     *types.Vault
	Positions []types.UserPosition
	Params    types.VaultParameters

	Transfer AssetTransferPort
	Clock    ClockSource
	Events   EventSink
	Recorder Recorder

	// VaultAccount and FeeAccount are the holding accounts funds move
	// through. The fee account receives the withdrawal fee slice.
	VaultAccount types.AccountRef
	FeeAccount   types.AccountRef
}

// Service is the vault accounting state machine. Every mutating operation is
// applied as an atomic read-modify-write under a single per-vault lock, so
// concurrent callers can never interleave at field granularity.
type Service struct {
	mu        sync.Mutex
	vault     *types.Vault
	positions map[types.Identity]*types.UserPosition
	params    types.VaultParameters

	transfer AssetTransferPort
	clock    ClockSource
	events   EventSink
	recorder Recorder

	vaultAccount types.AccountRef
	feeAccount   types.AccountRef
}

// NewService validates the configuration and assembles a vault service
// around the given vault record. The record may come from InitializeVault
// or from the persistence layer on restart.
func NewService(cfg Config) (*Service, error) {
	if cfg.Vault == nil {
		return nil, ErrNilVault
	}
	if cfg.Transfer == nil {
		return nil, ErrNilTransferPort
	}
	if cfg.Clock == nil {
		return nil, ErrNilClock
	}
	if err := validateParams(cfg.Params); err != nil {
		return nil, err
	}

	if cfg.Events == nil {
		cfg.Events = nopSink{}
	}
	if cfg.Recorder == nil {
		cfg.Recorder = NopRecorder{}
	}

	positions := make(map[types.Identity]*types.UserPosition, len(cfg.Positions))
	for i := range cfg.Positions {
		p := cfg.Positions[i]
		positions[p.User] = &p
	}

	return &Service{
		vault:        cfg.Vault,
		positions:    positions,
		params:       cfg.Params,
		transfer:     cfg.Transfer,
		clock:        cfg.Clock,
		events:       cfg.Events,
		recorder:     cfg.Recorder,
		vaultAccount: cfg.VaultAccount,
		feeAccount:   cfg.FeeAccount,
	}, nil
}

// InitializeVault produces a fresh vault record with zeroed counters, the
// given admin authority, and the default reward rate. The zero value of
// LastStrategyExecutionTime means "never executed".
func InitializeVault(vaultID uint64, authority types.Identity, rewardRate, priceThreshold uint64) *types.Vault {
	return &types.Vault{
		VaultID:        vaultID,
		RewardRate:     rewardRate,
		PriceThreshold: priceThreshold,
		Authority:      authority,
	}
}

func validateParams(p types.VaultParameters) error {
	if p.FeePercentage > 100 {
		return errors.Join(ErrInvalidParams, errors.New("fee percentage above 100"))
	}
	if p.LeverageCap == 0 {
		return errors.Join(ErrInvalidParams, errors.New("leverage cap is zero"))
	}
	if p.CooldownSeconds < 0 || p.RewardBoostSeconds < 0 {
		return errors.Join(ErrInvalidParams, errors.New("negative duration"))
	}
	if p.RewardBoostMultiplier == 0 {
		return errors.Join(ErrInvalidParams, errors.New("reward boost multiplier is zero"))
	}
	return nil
}

// Snapshot returns a read-only copy of the current vault state.
func (s *Service) Snapshot() types.VaultSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return types.VaultSnapshot{
		Vault:     *s.vault,
		Positions: len(s.positions),
		UpdatedAt: time.Now().UTC(),
	}
}

// Position returns a copy of the user's staking position, if one exists.
func (s *Service) Position(user types.Identity) (types.UserPosition, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.positions[user]
	if !ok {
		return types.UserPosition{}, false
	}
	return *p, true
}

// Params returns the tunable constants the service was assembled with.
func (s *Service) Params() types.VaultParameters {
	return s.params
}

// positionFor returns the user's position, creating it lazily on first
// reward-bearing interaction. A fresh position starts its staking clock at
// now so no back-dated rewards accrue.
func (s *Service) positionFor(user types.Identity, now int64) *types.UserPosition {
	if p, ok := s.positions[user]; ok {
		return p
	}
	p := &types.UserPosition{User: user, LastStakedTimestamp: now}
	s.positions[user] = p
	return p
}

// persistVault writes the committed vault state through the recorder.
// Durability lags the in-memory ledger; a write failure is logged, never
// rolled back.
func (s *Service) persistVault() {
	if err := s.recorder.SaveVault(*s.vault); err != nil {
		serviceLogger.Error().Err(err).Uint64("vault_id", s.vault.VaultID).Msg("Failed to persist vault state")
	}
}

func (s *Service) persistPosition(p types.UserPosition) {
	if err := s.recorder.SaveUserPosition(p); err != nil {
		serviceLogger.Error().Err(err).Str("user", string(p.User)).Msg("Failed to persist user position")
	}
}

type nopSink struct{}

func (nopSink) Emit(types.DomainEvent) {}
