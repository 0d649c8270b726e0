package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/optionsvault/ovm/internal/state"
	"github.com/optionsvault/ovm/internal/types"
)

type amountRequest struct {
	Amount uint64 `json:"amount"`
}

type priceRequest struct {
	MarketPrice uint64 `json:"market_price"`
}

type rateRequest struct {
	RewardRate uint64 `json:"reward_rate"`
}

type thresholdRequest struct {
	PriceThreshold uint64 `json:"price_threshold"`
}

// decodeJSONBody parses the request body into dst, rejecting unknown fields.
func (ws *WebServer) decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// handleGetVaultSummary returns the vault snapshot
func (ws *WebServer) handleGetVaultSummary(w http.ResponseWriter, r *http.Request) {
	ws.writeJSONResponse(w, http.StatusOK, ws.service.Snapshot())
}

// handleGetParameters returns the active vault parameters
func (ws *WebServer) handleGetParameters(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"parameters": ws.service.Params(),
		"timestamp":  time.Now().UTC(),
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetPosition returns one depositor's staking record
func (ws *WebServer) handleGetPosition(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	user := types.Identity(vars["user"])

	position, found := ws.service.Position(user)
	if !found {
		ws.writeErrorResponse(w, http.StatusNotFound, "No position for user")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, position)
}

// handleGetEvents returns recent persisted domain events
func (ws *WebServer) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 100 {
			limit = parsedLimit
		}
	}

	var (
		events []state.StoredEvent
		err    error
	)
	if eventType := r.URL.Query().Get("type"); eventType != "" {
		events, err = state.GetEventsByType(eventType, limit)
	} else {
		events, err = state.GetRecentEvents(limit)
	}
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get recent events")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve events")
		return
	}

	response := map[string]interface{}{
		"events": events,
		"count":  len(events),
		"limit":  limit,
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleDeposit moves funds from the caller's holding account into the pool
func (ws *WebServer) handleDeposit(w http.ResponseWriter, r *http.Request) {
	user, err := ws.authenticate(r)
	if err != nil {
		ws.writeLedgerError(w, err)
		return
	}

	var req amountRequest
	if !ws.decodeJSONBody(w, r, &req) {
		return
	}

	if err := ws.service.Deposit(r.Context(), user, req.Amount); err != nil {
		ws.writeLedgerError(w, err)
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"user":           user,
		"amount":         req.Amount,
		"total_deposits": ws.service.Snapshot().Vault.TotalDeposits,
	})
}

// handleWithdraw pays out a fee-adjusted withdrawal to the caller
func (ws *WebServer) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	user, err := ws.authenticate(r)
	if err != nil {
		ws.writeLedgerError(w, err)
		return
	}

	var req amountRequest
	if !ws.decodeJSONBody(w, r, &req) {
		return
	}

	net, fee, err := ws.service.Withdraw(r.Context(), user, req.Amount)
	if err != nil {
		ws.writeLedgerError(w, err)
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"user":           user,
		"amount":         req.Amount,
		"net":            net,
		"fee":            fee,
		"total_deposits": ws.service.Snapshot().Vault.TotalDeposits,
	})
}

// handleEmergencyWithdraw pays out the full amount, bypassing the pause gate
func (ws *WebServer) handleEmergencyWithdraw(w http.ResponseWriter, r *http.Request) {
	user, err := ws.authenticate(r)
	if err != nil {
		ws.writeLedgerError(w, err)
		return
	}

	var req amountRequest
	if !ws.decodeJSONBody(w, r, &req) {
		return
	}

	if err := ws.service.EmergencyWithdraw(r.Context(), user, req.Amount); err != nil {
		ws.writeLedgerError(w, err)
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"user":           user,
		"amount":         req.Amount,
		"total_deposits": ws.service.Snapshot().Vault.TotalDeposits,
	})
}

// handleAuthorizeBorrow checks a requested borrow against the leverage cap
func (ws *WebServer) handleAuthorizeBorrow(w http.ResponseWriter, r *http.Request) {
	if _, err := ws.authenticate(r); err != nil {
		ws.writeLedgerError(w, err)
		return
	}

	var req amountRequest
	if !ws.decodeJSONBody(w, r, &req) {
		return
	}

	maxBorrow, err := ws.service.AuthorizeBorrow(req.Amount)
	if err != nil {
		ws.writeLedgerError(w, err)
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"requested":  req.Amount,
		"max_borrow": maxBorrow,
		"authorized": true,
	})
}

// handleClaimRewards accrues and compounds the caller's rewards
func (ws *WebServer) handleClaimRewards(w http.ResponseWriter, r *http.Request) {
	user, err := ws.authenticate(r)
	if err != nil {
		ws.writeLedgerError(w, err)
		return
	}

	event, err := ws.service.ClaimAndCompound(user)
	if err != nil {
		ws.writeLedgerError(w, err)
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, event)
}

// handleExecuteStrategy runs one strategy cycle at the given market price
func (ws *WebServer) handleExecuteStrategy(w http.ResponseWriter, r *http.Request) {
	if _, err := ws.authenticate(r); err != nil {
		ws.writeLedgerError(w, err)
		return
	}

	var req priceRequest
	if !ws.decodeJSONBody(w, r, &req) {
		return
	}

	event, err := ws.service.ExecuteStrategy(req.MarketPrice)
	if err != nil {
		ws.writeLedgerError(w, err)
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, event)
}

// handleSetRewardRate updates the reward accrual rate (authority only)
func (ws *WebServer) handleSetRewardRate(w http.ResponseWriter, r *http.Request) {
	caller, err := ws.authenticate(r)
	if err != nil {
		ws.writeLedgerError(w, err)
		return
	}

	var req rateRequest
	if !ws.decodeJSONBody(w, r, &req) {
		return
	}

	if err := ws.service.SetRewardRate(caller, req.RewardRate); err != nil {
		ws.writeLedgerError(w, err)
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"reward_rate": req.RewardRate,
	})
}

// handleSetThreshold updates the strategy price threshold (authority only)
func (ws *WebServer) handleSetThreshold(w http.ResponseWriter, r *http.Request) {
	caller, err := ws.authenticate(r)
	if err != nil {
		ws.writeLedgerError(w, err)
		return
	}

	var req thresholdRequest
	if !ws.decodeJSONBody(w, r, &req) {
		return
	}

	if err := ws.service.SetStrategyThreshold(caller, req.PriceThreshold); err != nil {
		ws.writeLedgerError(w, err)
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"price_threshold": req.PriceThreshold,
	})
}

// handlePause halts deposits, withdrawals, borrows and strategy execution
func (ws *WebServer) handlePause(w http.ResponseWriter, r *http.Request) {
	caller, err := ws.authenticate(r)
	if err != nil {
		ws.writeLedgerError(w, err)
		return
	}

	if err := ws.service.Pause(caller); err != nil {
		ws.writeLedgerError(w, err)
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"paused": true})
}

// handleUnpause resumes normal operation
func (ws *WebServer) handleUnpause(w http.ResponseWriter, r *http.Request) {
	caller, err := ws.authenticate(r)
	if err != nil {
		ws.writeLedgerError(w, err)
		return
	}

	if err := ws.service.Unpause(caller); err != nil {
		ws.writeLedgerError(w, err)
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"paused": false})
}
