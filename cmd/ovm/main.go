package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/optionsvault/ovm/internal/config"
	"github.com/optionsvault/ovm/internal/custody"
	"github.com/optionsvault/ovm/internal/events"
	"github.com/optionsvault/ovm/internal/identity"
	"github.com/optionsvault/ovm/internal/logger"
	"github.com/optionsvault/ovm/internal/simulations"
	"github.com/optionsvault/ovm/internal/state"
	"github.com/optionsvault/ovm/internal/types"
	"github.com/optionsvault/ovm/internal/vault"
	"github.com/optionsvault/ovm/internal/web"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	DEFAULT_PARAMS_CONFIG_NAME    = "default_ovm_vault"
	DEFAULT_PARAMS_CONFIG_VERSION = 1
)

// systemClock is the production clock source.
type systemClock struct{}

func (systemClock) Now() int64 { return time.Now().Unix() }

// main is the entry point for the OVM system.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))
	log.Info().Msg("OVM Options Vault Manager Starting...")

	// --- Safety Switch ---
	// Anything other than explicit live mode runs the dry-run scenario
	// against an in-memory ledger, so a misconfigured deployment can never
	// touch real holding accounts.
	ovmMode := os.Getenv("OVM_MODE")
	if ovmMode != "live" {
		log.Warn().Str("mode", ovmMode).Msg("OVM_MODE is not set to 'live'. Running dry-run simulation scenario instead.")
		if _, err := simulations.RunScenario(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("Simulation scenario failed")
		}
		return
	}
	log.Warn().Msg("Initializing OVM in LIVE mode. Real holding accounts will move.")

	// Load configuration from environment variables
	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize Database Connection
	dbCfg := state.DBConfig{
		Host: os.Getenv("DB_HOST"), Port: mustAtoi(os.Getenv("DB_PORT"), 5432),
		User: os.Getenv("DB_USER"), Password: os.Getenv("DB_PASSWORD"),
		DBName: os.Getenv("DB_NAME"), SSLMode: os.Getenv("DB_SSLMODE"),
	}
	if err := state.InitDB(dbCfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer state.CloseDB()
	if err := state.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	// Load Vault Parameters
	vaultParams, err := state.LoadActiveVaultParameters(DEFAULT_PARAMS_CONFIG_NAME)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load active vault parameters, using defaults and saving.")
		defaultParams := config.DefaultVaultParameters
		if _, err := state.SaveVaultParameters(defaultParams, DEFAULT_PARAMS_CONFIG_NAME, DEFAULT_PARAMS_CONFIG_VERSION, true); err != nil {
			log.Fatal().Err(err).Msg("Failed to save initial default vault parameters.")
		}
		vaultParams = &defaultParams
	}
	log.Info().Msg("Vault parameters loaded successfully.")

	// Load or create the vault record
	vaultRecord, err := state.LoadVault(config.VaultID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load vault record")
	}
	if vaultRecord == nil {
		log.Info().Uint64("vaultId", config.VaultID).Msg("No vault record found, initializing a fresh vault")
		vaultRecord = vault.InitializeVault(
			config.VaultID,
			types.Identity(config.Authority),
			config.InitialRewardRate,
			config.InitialPriceThreshold,
		)
		if err := state.SaveVault(*vaultRecord); err != nil {
			log.Fatal().Err(err).Msg("Failed to save initial vault record")
		}
	}

	positions, err := state.ListUserPositions()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load user positions")
	}
	log.Info().Int("positions", len(positions)).Msg("Vault state loaded")

	// Custody ledger over the same database
	ledger, err := custody.NewPostgresLedger(state.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize custody ledger")
	}
	if err := ledger.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure custody schema")
	}

	// Event sinks: structured log, audit table, optional NATS fan-out
	sinks := []vault.EventSink{events.NewLogSink(), events.NewStoreSink()}
	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		natsSink, err := events.NewNATSSink(natsURL)
		if err != nil {
			log.Fatal().Err(err).Str("url", natsURL).Msg("Failed to connect to NATS")
		}
		defer natsSink.Close()
		sinks = append(sinks, natsSink)
		log.Info().Str("url", natsURL).Msg("NATS event sink connected")
	}

	// API authentication
	verifier, err := identity.ParseTokenSpec(config.APITokenSpec)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse API token spec")
	}

	// --- 2. Assemble the Vault Service ---
	service, err := vault.NewService(vault.Config{
		Vault:        vaultRecord,
		Positions:    positions,
		Params:       *vaultParams,
		Transfer:     ledger,
		Clock:        systemClock{},
		Events:       events.NewMultiSink(sinks...),
		Recorder:     state.StoreRecorder{},
		VaultAccount: types.AccountRef(config.VaultAccount),
		FeeAccount:   types.AccountRef(config.FeeAccount),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to assemble vault service")
	}
	log.Info().
		Uint64("vaultId", config.VaultID).
		Uint64("totalDeposits", vaultRecord.TotalDeposits).
		Bool("paused", vaultRecord.Paused).
		Msg("Vault service assembled")

	// --- 3. Start Web Server ---
	webPort := os.Getenv("WEB_PORT")
	if webPort == "" {
		webPort = "8080"
	}

	webServer := web.NewWebServer(webPort, service, verifier)
	go func() {
		log.Info().Str("port", webPort).Str("url", "http://localhost:"+webPort).Msg("Starting OVM API server")
		if err := webServer.Start(); err != nil {
			log.Fatal().Err(err).Msg("Web server failed")
		}
	}()

	// --- 4. Wait for Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("Shutdown signal received, exiting")
}

// Helper to convert string to int with a default value
func mustAtoi(s string, defaultValue int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return i
}
