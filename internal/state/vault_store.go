// ./internal/state/vault_store.go
package state

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/optionsvault/ovm/internal/types"
)

// SaveVault upserts the vault row with the committed ledger state.
func SaveVault(v types.Vault) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	stmt := `
		INSERT INTO vaults (
			vault_id, total_deposits, reward_rate, price_threshold, authority,
			paused, total_profit, total_trades, last_strategy_execution_time, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, CURRENT_TIMESTAMP)
		ON CONFLICT (vault_id) DO UPDATE SET
			total_deposits = EXCLUDED.total_deposits,
			reward_rate = EXCLUDED.reward_rate,
			price_threshold = EXCLUDED.price_threshold,
			authority = EXCLUDED.authority,
			paused = EXCLUDED.paused,
			total_profit = EXCLUDED.total_profit,
			total_trades = EXCLUDED.total_trades,
			last_strategy_execution_time = EXCLUDED.last_strategy_execution_time,
			updated_at = CURRENT_TIMESTAMP;`

	_, err := DB.Exec(stmt,
		strconv.FormatUint(v.VaultID, 10),
		strconv.FormatUint(v.TotalDeposits, 10),
		strconv.FormatUint(v.RewardRate, 10),
		strconv.FormatUint(v.PriceThreshold, 10),
		string(v.Authority),
		v.Paused,
		v.TotalProfit,
		strconv.FormatUint(v.TotalTrades, 10),
		v.LastStrategyExecutionTime,
	)
	if err != nil {
		return fmt.Errorf("failed to save vault %d: %w", v.VaultID, err)
	}

	log.Debug().Uint64("vault_id", v.VaultID).Msg("Saved vault state")
	return nil
}

// LoadVault loads the vault row. Returns (nil, nil) when the vault has not
// been initialized yet.
func LoadVault(vaultID uint64) (*types.Vault, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT total_deposits, reward_rate, price_threshold, authority,
		       paused, total_profit, total_trades, last_strategy_execution_time
		FROM vaults
		WHERE vault_id = $1;`

	var (
		totalDeposits, rewardRate, priceThreshold, totalTrades string
		authority                                              string
		v                                                      types.Vault
	)
	row := DB.QueryRow(query, strconv.FormatUint(vaultID, 10))
	err := row.Scan(
		&totalDeposits, &rewardRate, &priceThreshold, &authority,
		&v.Paused, &v.TotalProfit, &totalTrades, &v.LastStrategyExecutionTime,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Debug().Uint64("vault_id", vaultID).Msg("No vault row found")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load vault %d: %w", vaultID, err)
	}

	v.VaultID = vaultID
	v.Authority = types.Identity(authority)
	if v.TotalDeposits, err = strconv.ParseUint(totalDeposits, 10, 64); err != nil {
		return nil, fmt.Errorf("failed to parse total_deposits for vault %d: %w", vaultID, err)
	}
	if v.RewardRate, err = strconv.ParseUint(rewardRate, 10, 64); err != nil {
		return nil, fmt.Errorf("failed to parse reward_rate for vault %d: %w", vaultID, err)
	}
	if v.PriceThreshold, err = strconv.ParseUint(priceThreshold, 10, 64); err != nil {
		return nil, fmt.Errorf("failed to parse price_threshold for vault %d: %w", vaultID, err)
	}
	if v.TotalTrades, err = strconv.ParseUint(totalTrades, 10, 64); err != nil {
		return nil, fmt.Errorf("failed to parse total_trades for vault %d: %w", vaultID, err)
	}

	log.Info().Uint64("vault_id", vaultID).Msg("Loaded vault state")
	return &v, nil
}

// SaveUserPosition upserts a depositor's staking record.
func SaveUserPosition(p types.UserPosition) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	stmt := `
		INSERT INTO user_positions (user_identity, reward_balance, last_staked_timestamp, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		ON CONFLICT (user_identity) DO UPDATE SET
			reward_balance = EXCLUDED.reward_balance,
			last_staked_timestamp = EXCLUDED.last_staked_timestamp,
			updated_at = CURRENT_TIMESTAMP;`

	_, err := DB.Exec(stmt,
		string(p.User),
		strconv.FormatUint(p.RewardBalance, 10),
		p.LastStakedTimestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to save user position for %s: %w", p.User, err)
	}

	log.Debug().Str("user", string(p.User)).Msg("Saved user position")
	return nil
}

// ListUserPositions loads every persisted staking record.
func ListUserPositions() ([]types.UserPosition, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	rows, err := DB.Query(`SELECT user_identity, reward_balance, last_staked_timestamp FROM user_positions;`)
	if err != nil {
		return nil, fmt.Errorf("failed to query user positions: %w", err)
	}
	defer rows.Close()

	var positions []types.UserPosition
	for rows.Next() {
		var (
			user          string
			rewardBalance string
			p             types.UserPosition
		)
		if err := rows.Scan(&user, &rewardBalance, &p.LastStakedTimestamp); err != nil {
			log.Error().Err(err).Msg("Failed to scan user position row")
			continue // Skip this row and continue with others
		}
		p.User = types.Identity(user)
		if p.RewardBalance, err = strconv.ParseUint(rewardBalance, 10, 64); err != nil {
			log.Error().Err(err).Str("user", user).Msg("Failed to parse reward balance")
			continue
		}
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	log.Info().Int("count", len(positions)).Msg("Loaded user positions")
	return positions, nil
}

// StoreRecorder adapts the package-level store functions to the vault
// service's Recorder port.
type StoreRecorder struct{}

func (StoreRecorder) SaveVault(v types.Vault) error               { return SaveVault(v) }
func (StoreRecorder) SaveUserPosition(p types.UserPosition) error { return SaveUserPosition(p) }
