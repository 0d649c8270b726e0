package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/optionsvault/ovm/internal/identity"
	"github.com/optionsvault/ovm/internal/logger"
	"github.com/optionsvault/ovm/internal/state"
	"github.com/optionsvault/ovm/internal/types"
	"github.com/optionsvault/ovm/internal/vault"
)

var webLogger = logger.GetForComponent("web_server")

// WebServer exposes the vault ledger over a JSON HTTP API
type WebServer struct {
	router   *mux.Router
	port     string
	service  *vault.Service
	verifier vault.IdentityVerifier
}

// NewWebServer creates a new web server instance
func NewWebServer(port string, service *vault.Service, verifier vault.IdentityVerifier) *WebServer {
	if port == "" {
		port = "8080"
	}

	server := &WebServer{
		router:   mux.NewRouter(),
		port:     port,
		service:  service,
		verifier: verifier,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes
func (ws *WebServer) setupRoutes() {
	// Health endpoint (direct route)
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")

	// API endpoints
	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET")
	api.HandleFunc("/vault/summary", ws.handleGetVaultSummary).Methods("GET")
	api.HandleFunc("/vault/positions/{user}", ws.handleGetPosition).Methods("GET")
	api.HandleFunc("/vault/parameters", ws.handleGetParameters).Methods("GET")
	api.HandleFunc("/events", ws.handleGetEvents).Methods("GET")

	// Depositor operations (bearer-token authenticated)
	api.HandleFunc("/vault/deposit", ws.handleDeposit).Methods("POST")
	api.HandleFunc("/vault/withdraw", ws.handleWithdraw).Methods("POST")
	api.HandleFunc("/vault/emergency-withdraw", ws.handleEmergencyWithdraw).Methods("POST")
	api.HandleFunc("/vault/borrow", ws.handleAuthorizeBorrow).Methods("POST")
	api.HandleFunc("/rewards/claim", ws.handleClaimRewards).Methods("POST")

	// Strategy and admin operations
	api.HandleFunc("/strategy/execute", ws.handleExecuteStrategy).Methods("POST")
	api.HandleFunc("/admin/reward-rate", ws.handleSetRewardRate).Methods("POST")
	api.HandleFunc("/admin/threshold", ws.handleSetThreshold).Methods("POST")
	api.HandleFunc("/admin/pause", ws.handlePause).Methods("POST")
	api.HandleFunc("/admin/unpause", ws.handleUnpause).Methods("POST")

	// Add CORS middleware
	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
}

// Start starts the web server
func (ws *WebServer) Start() error {
	webLogger.Info().Str("port", ws.port).Msg("Starting web server")

	server := &http.Server{
		Addr:         ":" + ws.port,
		Handler:      ws.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

// Handler exposes the configured router, mainly for tests.
func (ws *WebServer) Handler() http.Handler {
	return ws.router
}

// handleHealth returns server health status
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	dbHealthy := true
	if state.DB != nil {
		if err := state.TestDBConnection(); err != nil {
			dbHealthy = false
		}
	}

	snapshot := ws.service.Snapshot()

	overallStatus := "OK"
	statusCode := http.StatusOK
	if !dbHealthy {
		overallStatus = "DEGRADED"
		statusCode = http.StatusServiceUnavailable
	}

	response := map[string]interface{}{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"system": map[string]interface{}{
			"version":          runtime.Version(),
			"goroutines_count": runtime.NumGoroutine(),
			"alloc_bytes":      memStats.Alloc,
			"gc_cycles":        memStats.NumGC,
		},
		"component": map[string]interface{}{
			"name":    "ovm-options-vault-manager",
			"version": "1.0.0",
		},
		"vault_status": map[string]interface{}{
			"database_healthy": dbHealthy,
			"paused":           snapshot.Vault.Paused,
			"total_deposits":   snapshot.Vault.TotalDeposits,
			"total_trades":     snapshot.Vault.TotalTrades,
		},
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// authenticate resolves the bearer token on the request to an identity.
func (ws *WebServer) authenticate(r *http.Request) (types.Identity, error) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return "", identity.ErrEmptyCredential
	}
	return ws.verifier.Identify(r.Context(), strings.TrimSpace(token))
}

// statusForError maps ledger errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, identity.ErrEmptyCredential), errors.Is(err, identity.ErrUnknownCredential):
		return http.StatusUnauthorized
	case errors.Is(err, vault.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, vault.ErrVaultPaused):
		return http.StatusConflict
	case errors.Is(err, vault.ErrInsufficientFunds),
		errors.Is(err, vault.ErrExcessiveLeverage),
		errors.Is(err, vault.ErrArithmeticOverflow):
		return http.StatusBadRequest
	case errors.Is(err, vault.ErrStrategyExecutionTooSoon):
		return http.StatusTooManyRequests
	case errors.Is(err, vault.ErrTransferFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeJSONResponse writes a JSON response
func (ws *WebServer) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		webLogger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeErrorResponse writes an error response
func (ws *WebServer) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := map[string]interface{}{
		"error":     true,
		"message":   message,
		"timestamp": time.Now().UTC(),
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// writeLedgerError maps a ledger error and writes it out.
func (ws *WebServer) writeLedgerError(w http.ResponseWriter, err error) {
	ws.writeErrorResponse(w, statusForError(err), err.Error())
}

// corsMiddleware adds CORS headers
func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer wrapper to capture status code
		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		duration := time.Since(start)

		webLogger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Int("status", wrapper.statusCode).
			Dur("duration", duration).
			Msg("HTTP request")
	})
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
