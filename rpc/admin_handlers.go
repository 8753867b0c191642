package rpc

import (
	"net/http"
	"time"
)

type oracleUpdateParams struct {
	Caller string `json:"caller"`
	XAUUSD string `json:"xauUsd"`
	USDVND string `json:"usdVnd"`
}

type kycIssueParams struct {
	Caller  string `json:"caller"`
	Address string `json:"address"`
	URI     string `json:"uri"`
}

type kycTargetParams struct {
	Caller  string `json:"caller"`
	Address string `json:"address"`
}

type kycStatusParams struct {
	Address string `json:"address"`
}

type tokenBalanceParams struct {
	Token   string `json:"token"`
	Address string `json:"address"`
}

type tokenApproveParams struct {
	Token   string `json:"token"`
	Owner   string `json:"owner"`
	Spender string `json:"spender"`
	Amount  string `json:"amount"`
}

type tokenTransferParams struct {
	Token  string `json:"token"`
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type tokenMintParams struct {
	Token  string `json:"token"`
	Caller string `json:"caller"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

func (s *Server) handleOracleUpdate(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.auth.requireRole(r, "feeder"); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, nil)
		return
	}
	var params oracleUpdateParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	xauUSD, err := parseAmount(params.XAUUSD)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	usdVND, err := parseAmount(params.USDVND)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.UpdatePrice(caller, xauUSD, usdVND); err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	s.writeOracleQuote(w, req)
}

func (s *Server) handleOracleQuote(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	s.writeOracleQuote(w, req)
}

func (s *Server) writeOracleQuote(w http.ResponseWriter, req *RPCRequest) {
	quote, err := s.node.LatestQuote()
	if err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, oracleQuoteResult{
		XAUUSD:      quote.XAUUSD.String(),
		USDVND:      quote.USDVND.String(),
		ChiUSD:      quote.ChiUSD().String(),
		ChiVND:      quote.ChiVND().String(),
		LastUpdated: quote.LastUpdated,
		Fresh:       quote.Fresh(time.Now()),
	})
}

func (s *Server) handleKYCIssue(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.auth.requireRole(r, "owner"); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, nil)
		return
	}
	var params kycIssueParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	addr, err := decodeBech32(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid address", err.Error())
		return
	}
	if err := s.node.KYCIssue(caller, addr, params.URI); err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, kycStatusResult{Address: formatAddr(addr), Verified: true})
}

func (s *Server) handleKYCRevoke(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.auth.requireRole(r, "owner"); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, nil)
		return
	}
	var params kycTargetParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	addr, err := decodeBech32(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid address", err.Error())
		return
	}
	if err := s.node.KYCRevoke(caller, addr); err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, kycStatusResult{Address: formatAddr(addr), Verified: false})
}

func (s *Server) handleKYCStatus(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params kycStatusParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	addr, err := decodeBech32(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid address", err.Error())
		return
	}
	verified, err := s.node.KYCStatus(addr)
	if err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, kycStatusResult{Address: formatAddr(addr), Verified: verified})
}

func (s *Server) handleTokenBalance(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params tokenBalanceParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	addr, err := decodeBech32(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid address", err.Error())
		return
	}
	balance, err := s.node.TokenBalance(params.Token, addr)
	if err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, balanceResult{Address: formatAddr(addr), Token: params.Token, Amount: balance.String()})
}

func (s *Server) handleTokenApprove(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params tokenApproveParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	owner, err := decodeBech32(params.Owner)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid owner address", err.Error())
		return
	}
	spender, err := decodeBech32(params.Spender)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid spender address", err.Error())
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.TokenApprove(params.Token, owner, spender, amount); err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"token": params.Token, "allowance": amount.String()})
}

func (s *Server) handleTokenTransfer(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params tokenTransferParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	from, err := decodeBech32(params.From)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid from address", err.Error())
		return
	}
	to, err := decodeBech32(params.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid to address", err.Error())
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.TokenTransfer(params.Token, from, to, amount); err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	balance, err := s.node.TokenBalance(params.Token, from)
	if err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, balanceResult{Address: formatAddr(from), Token: params.Token, Amount: balance.String()})
}

func (s *Server) handleTokenMint(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.auth.requireRole(r, "owner"); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, nil)
		return
	}
	var params tokenMintParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	to, err := decodeBech32(params.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid to address", err.Error())
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.TokenMint(params.Token, caller, to, amount); err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, balanceResult{Address: formatAddr(to), Token: params.Token, Amount: amount.String()})
}
