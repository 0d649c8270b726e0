package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

// AppConfig holds all application configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// VaultID is the ID of the vault this OVM instance manages.
	VaultID uint64

	// Authority is the admin identity allowed to perform administrative
	// operations on the vault.
	Authority string

	// VaultAccount is the custody holding account pooled principal sits in.
	VaultAccount string
	// FeeAccount is the custody holding account withdrawal fees are routed to.
	FeeAccount string

	// APITokenSpec maps API bearer tokens to identities, in
	// "token:identity,token:identity" form.
	APITokenSpec string

	// InitialRewardRate seeds the reward rate when the vault is first created.
	InitialRewardRate uint64
	// InitialPriceThreshold seeds the strategy threshold when the vault is
	// first created. Zero means every execution takes the covered-call branch
	// until the admin sets a threshold.
	InitialPriceThreshold uint64
)

// LoadConfig loads configuration from environment variables and sets the global config vars.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	var err error

	VaultID, err = getEnvAsUint64("OVM_VAULT_ID")
	if err != nil {
		return err
	}

	Authority, err = getEnv("OVM_AUTHORITY")
	if err != nil {
		return err
	}

	VaultAccount, err = getEnv("OVM_VAULT_ACCOUNT")
	if err != nil {
		return err
	}

	FeeAccount, err = getEnv("OVM_FEE_ACCOUNT")
	if err != nil {
		return err
	}

	APITokenSpec, err = getEnv("OVM_API_TOKENS")
	if err != nil {
		return err
	}

	InitialRewardRate = getEnvAsUint64OrDefault("OVM_INITIAL_REWARD_RATE", 10)
	InitialPriceThreshold = getEnvAsUint64OrDefault("OVM_INITIAL_PRICE_THRESHOLD", 0)

	log.Debug().
		Uint64("VaultID", VaultID).
		Str("Authority", Authority).
		Str("VaultAccount", VaultAccount).
		Msg("Configuration loaded successfully.")

	return nil
}

// getEnv retrieves a string environment variable. Returns error if not set.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

// getEnvAsUint64 retrieves an environment variable as a uint64. Returns error if not set or invalid.
func getEnvAsUint64(key string) (uint64, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid uint64, got: " + valueStr)
	}
	return value, nil
}

// getEnvAsUint64OrDefault retrieves an optional uint64 environment variable.
func getEnvAsUint64OrDefault(key string, defaultValue uint64) uint64 {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		log.Warn().Str("key", key).Str("value", valueStr).Msg("Invalid uint64 environment variable, using default")
		return defaultValue
	}
	return value
}
