package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hdgold/core"
	"hdgold/crypto"
	"hdgold/native/kyc"
	"hdgold/native/oracle"
	"hdgold/native/staking"
	"hdgold/native/token"
	"hdgold/native/vault"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeUnauthorized   = -32001
	codeServerError    = -32000
	codePrecondition   = -32021
	codeRateLimited    = -32020
)

// Server exposes every ledger operation over JSON-RPC 2.0 plus the event
// stream, metrics, and health endpoints.
type Server struct {
	node     *core.Node
	logger   *slog.Logger
	auth     *authenticator
	limiter  *clientLimiter
	hub      *wsHub
	registry *prometheus.Registry
}

// Options configures the RPC surface.
type Options struct {
	Logger *slog.Logger
	// StaticToken guards privileged methods when JWTSecret is empty.
	StaticToken string
	// JWTSecret enables HS256 bearer tokens with a "role" claim.
	JWTSecret []byte
	// Requests per minute and burst per client IP.
	RatePerMinute float64
	RateBurst     int
	// Registry for the /metrics endpoint; nil disables it.
	Registry *prometheus.Registry
}

// NewServer constructs the RPC server around the node.
func NewServer(node *core.Node, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		node:     node,
		logger:   logger,
		auth:     newAuthenticator(opts.StaticToken, opts.JWTSecret),
		limiter:  newClientLimiter(opts.RatePerMinute, opts.RateBurst),
		hub:      newWSHub(logger),
		registry: opts.Registry,
	}
	return s
}

// EventSink returns the sink broadcasting committed events to websocket
// subscribers.
func (s *Server) EventSink() *wsHub { return s.hub }

// Router assembles the HTTP surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.limiter.middleware)
	r.Post("/", s.handle)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/ws", s.hub.serve)
	if s.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	return r
}

// Start serves the router on addr and blocks.
func (s *Server) Start(addr string) error {
	s.logger.Info("starting JSON-RPC server", "addr", addr)
	return http.ListenAndServe(addr, s.Router())
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "unable to read request body", nil)
		return
	}
	var req RPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "invalid JSON payload", err.Error())
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "unsupported JSON-RPC version", nil)
		return
	}
	method := strings.TrimSpace(req.Method)
	handler, ok := s.methods()[method]
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, fmt.Sprintf("unknown method %q", method), nil)
		return
	}
	handler(w, r, &req)
}

type methodHandler func(http.ResponseWriter, *http.Request, *RPCRequest)

func (s *Server) methods() map[string]methodHandler {
	return map[string]methodHandler{
		"hdgold_mint":           s.handleVaultMint,
		"hdgold_redeemUSDT":     s.handleVaultRedeemUSDT,
		"hdgold_redeemPhysical": s.handleVaultRedeemPhysical,
		"hdgold_quoteChi":       s.handleVaultQuoteChi,
		"hdgold_quoteRedeem":    s.handleVaultQuoteRedeem,
		"hdgold_mintForOwner":   s.handleVaultMintForOwner,

		"staking_stake":         s.handleStakingStake,
		"staking_unstake":       s.handleStakingUnstake,
		"staking_claim":         s.handleStakingClaim,
		"staking_pending":       s.handleStakingPending,
		"staking_position":      s.handleStakingPosition,
		"staking_totalStaked":   s.handleStakingTotalStaked,
		"staking_fund":          s.handleStakingFund,
		"staking_setRates":      s.handleStakingSetRates,
		"staking_redeemVoucher": s.handleStakingRedeemVoucher,

		"oracle_update": s.handleOracleUpdate,
		"oracle_quote":  s.handleOracleQuote,

		"kyc_issue":  s.handleKYCIssue,
		"kyc_revoke": s.handleKYCRevoke,
		"kyc_status": s.handleKYCStatus,

		"token_balance":  s.handleTokenBalance,
		"token_approve":  s.handleTokenApprove,
		"token_transfer": s.handleTokenTransfer,
		"token_mint":     s.handleTokenMint,
	}
}

func writeResult(w http.ResponseWriter, id json.RawMessage, result interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result})
}

func writeError(w http.ResponseWriter, status int, id json.RawMessage, code int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(RPCResponse{
		JSONRPC: jsonRPCVersion,
		ID:      id,
		Error:   &RPCError{Code: code, Message: message, Data: data},
	})
}

// writeLedgerError maps engine sentinels onto stable RPC error codes so
// clients can branch on failures without string matching.
func writeLedgerError(w http.ResponseWriter, id json.RawMessage, err error) {
	switch {
	case errors.Is(err, vault.ErrCredentialRequired),
		errors.Is(err, staking.ErrCredentialRequired):
		writeError(w, http.StatusForbidden, id, codePrecondition, "KYC required", err.Error())
	case errors.Is(err, vault.ErrUnauthorized),
		errors.Is(err, staking.ErrUnauthorized),
		errors.Is(err, oracle.ErrUnauthorized),
		errors.Is(err, kyc.ErrUnauthorized),
		errors.Is(err, token.ErrNotMintAuthority):
		writeError(w, http.StatusForbidden, id, codeUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, vault.ErrStalePrice):
		writeError(w, http.StatusConflict, id, codePrecondition, "stale price", err.Error())
	case errors.Is(err, oracle.ErrNoQuote):
		writeError(w, http.StatusConflict, id, codePrecondition, "no price observation", err.Error())
	case errors.Is(err, vault.ErrInvalidAmount),
		errors.Is(err, staking.ErrInvalidAmount),
		errors.Is(err, token.ErrInvalidAmount),
		errors.Is(err, oracle.ErrInvalidPrice):
		writeError(w, http.StatusBadRequest, id, codeInvalidParams, "invalid amount", err.Error())
	case errors.Is(err, vault.ErrSlippageExceeded):
		writeError(w, http.StatusConflict, id, codePrecondition, "slippage exceeded", err.Error())
	case errors.Is(err, vault.ErrMustBeWholeUnit):
		writeError(w, http.StatusBadRequest, id, codePrecondition, "must be whole chi", err.Error())
	case errors.Is(err, vault.ErrInsufficientBalance),
		errors.Is(err, token.ErrInsufficientBalance),
		errors.Is(err, token.ErrInsufficientAllowance):
		writeError(w, http.StatusConflict, id, codePrecondition, "insufficient balance", err.Error())
	case errors.Is(err, staking.ErrInsufficientStake):
		writeError(w, http.StatusConflict, id, codePrecondition, "insufficient stake", err.Error())
	case errors.Is(err, staking.ErrInsufficientPoints):
		writeError(w, http.StatusConflict, id, codePrecondition, "not enough points", err.Error())
	case errors.Is(err, kyc.ErrAlreadyVerified):
		writeError(w, http.StatusConflict, id, codePrecondition, "already verified", err.Error())
	case errors.Is(err, kyc.ErrNotVerified):
		writeError(w, http.StatusConflict, id, codePrecondition, "not verified", err.Error())
	case errors.Is(err, staking.ErrNoRewards):
		writeError(w, http.StatusConflict, id, codePrecondition, "no rewards", err.Error())
	case errors.Is(err, token.ErrUnknownToken):
		writeError(w, http.StatusNotFound, id, codeInvalidParams, "unknown token", err.Error())
	case errors.Is(err, token.ErrNonTransferable):
		writeError(w, http.StatusForbidden, id, codePrecondition, "non-transferable token", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, id, codeServerError, "operation failed", err.Error())
	}
}

func decodeParams(req *RPCRequest, out interface{}) error {
	if len(req.Params) != 1 {
		return fmt.Errorf("exactly one parameter object expected")
	}
	return json.Unmarshal(req.Params[0], out)
}

func decodeBech32(value string) ([20]byte, error) {
	var out [20]byte
	addr, err := crypto.DecodeAddress(strings.TrimSpace(value))
	if err != nil {
		return out, err
	}
	return addr.Array(), nil
}

func parseAmount(amount string) (*big.Int, error) {
	trimmed := strings.TrimSpace(amount)
	if trimmed == "" {
		return nil, fmt.Errorf("amount is required")
	}
	value, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount")
	}
	if value.Sign() < 0 {
		return nil, fmt.Errorf("amount must not be negative")
	}
	return value, nil
}

func parseOptionalAmount(amount string) (*big.Int, error) {
	if strings.TrimSpace(amount) == "" {
		return big.NewInt(0), nil
	}
	return parseAmount(amount)
}

func formatAddr(addr [20]byte) string {
	return crypto.MustNewAddress(crypto.HDGPrefix, addr[:]).String()
}
