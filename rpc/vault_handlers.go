package rpc

import (
	"net/http"

	"github.com/google/uuid"
)

type vaultMintParams struct {
	Caller string `json:"caller"`
	Amount string `json:"amount"`
}

type vaultRedeemParams struct {
	Caller     string `json:"caller"`
	Amount     string `json:"amount"`
	MinUSDTOut string `json:"minUsdtOut,omitempty"`
}

type vaultQuoteParams struct {
	Amount string `json:"amount"`
}

func (s *Server) handleVaultMint(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params vaultMintParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	chiOut, err := s.node.MintByUSDT(caller, amount)
	if err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, balanceResult{Address: params.Caller, Token: "HDG", Amount: chiOut.String()})
}

func (s *Server) handleVaultRedeemUSDT(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params vaultRedeemParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	minUSDTOut, err := parseOptionalAmount(params.MinUSDTOut)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	usdtOut, err := s.node.RedeemToUSDT(caller, amount, minUSDTOut)
	if err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, balanceResult{Address: params.Caller, Token: "USDT", Amount: usdtOut.String()})
}

func (s *Server) handleVaultRedeemPhysical(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params vaultMintParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.RedeemPhysical(caller, amount); err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	// The ticket is a convenience reference for the fulfilment desk; the
	// durable claim is the emitted event.
	writeResult(w, req.ID, redeemPhysicalResult{Ticket: uuid.NewString(), Chi: amount.String()})
}

func (s *Server) handleVaultQuoteChi(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params vaultQuoteParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	chiOut, chiUSD, err := s.node.QuoteChiFromUSDT(amount)
	if err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, quoteResult{Amount: chiOut.String(), ChiUSD: chiUSD.String()})
}

func (s *Server) handleVaultQuoteRedeem(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params vaultQuoteParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	usdtOut, chiUSD, err := s.node.QuoteRedeemUSDT(amount)
	if err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, quoteResult{Amount: usdtOut.String(), ChiUSD: chiUSD.String()})
}

func (s *Server) handleVaultMintForOwner(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.auth.requireRole(r, "owner"); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, nil)
		return
	}
	var params vaultMintParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.MintForOwner(caller, amount); err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, balanceResult{Address: params.Caller, Token: "HDG", Amount: amount.String()})
}
