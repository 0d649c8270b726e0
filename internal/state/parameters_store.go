// ./internal/state/parameters_store.go
package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/optionsvault/ovm/internal/types"
)

// SaveVaultParameters saves a new version of the vault's tunable constants.
func SaveVaultParameters(params types.VaultParameters, configName string, version int, makeActive bool) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	tx, err := DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p) // Re-panic after rollback
		} else if err != nil {
			tx.Rollback() // Rollback if error occurred
		}
	}()

	if makeActive {
		stmtDeactivate := `UPDATE vault_parameters SET is_active = FALSE WHERE config_name = $1 AND is_active = TRUE;`
		_, err = tx.Exec(stmtDeactivate, configName)
		if err != nil {
			return 0, fmt.Errorf("failed to deactivate existing active parameters for %s: %w", configName, err)
		}
	}

	stmt := `
        INSERT INTO vault_parameters (
            version, config_name, is_active, activated_at, created_at,
            fee_percentage, leverage_cap,
            covered_call_payout, cash_secured_put_payout,
            cooldown_seconds, reward_boost_seconds, reward_boost_multiplier
        ) VALUES (
            $1, $2, $3, $4, $5,
            $6, $7,
            $8, $9,
            $10, $11, $12
        ) RETURNING params_id;`

	var paramsID int64
	currentTime := time.Now()
	err = tx.QueryRow(
		stmt,
		version, configName, makeActive, currentTime, currentTime,
		params.FeePercentage, params.LeverageCap,
		params.CoveredCallPayout, params.CashSecuredPutPayout,
		params.CooldownSeconds, params.RewardBoostSeconds, params.RewardBoostMultiplier,
	).Scan(&paramsID)

	if err != nil {
		return 0, fmt.Errorf("failed to insert vault parameters: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Info().
		Int("version", version).
		Str("config", configName).
		Int64("params_id", paramsID).
		Bool("active", makeActive).
		Msg("Saved vault parameters")
	return paramsID, nil
}

// LoadActiveVaultParameters loads the currently active vault parameters.
func LoadActiveVaultParameters(configName string) (*types.VaultParameters, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
        SELECT
            fee_percentage, leverage_cap,
            covered_call_payout, cash_secured_put_payout,
            cooldown_seconds, reward_boost_seconds, reward_boost_multiplier
        FROM vault_parameters
        WHERE config_name = $1 AND is_active = TRUE
        ORDER BY activated_at DESC
        LIMIT 1;`

	p := &types.VaultParameters{}
	row := DB.QueryRow(query, configName)
	err := row.Scan(
		&p.FeePercentage, &p.LeverageCap,
		&p.CoveredCallPayout, &p.CashSecuredPutPayout,
		&p.CooldownSeconds, &p.RewardBoostSeconds, &p.RewardBoostMultiplier,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no active vault parameters found for config '%s'", configName)
		}
		return nil, fmt.Errorf("failed to scan active vault parameters for config '%s': %w", configName, err)
	}
	log.Info().Str("config", configName).Msg("Loaded active vault parameters")
	return p, nil
}
