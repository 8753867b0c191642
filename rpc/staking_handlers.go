package rpc

import (
	"net/http"
)

type stakingAmountParams struct {
	Caller string `json:"caller"`
	Amount string `json:"amount"`
}

type stakingCallerParams struct {
	Caller string `json:"caller"`
}

type stakingAddressParams struct {
	Address string `json:"address"`
}

type stakingRatesParams struct {
	Caller   string `json:"caller"`
	USDTRate string `json:"usdtRate"`
	SOVIRate string `json:"soviRate"`
}

type stakingVoucherParams struct {
	Caller    string `json:"caller"`
	VoucherID uint64 `json:"voucherId"`
	PointCost string `json:"pointCost"`
}

func (s *Server) handleStakingStake(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params stakingAmountParams
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
	if err := s.node.Stake(caller, amount); err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	position, err := s.node.StakePosition(caller)
	if err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, stakePositionResult{
		Amount:     position.Amount.String(),
		LastUpdate: position.LastUpdate,
		RewardUSDT: position.RewardUSDT.String(),
		RewardSOVI: position.RewardSOVI.String(),
	})
}

func (s *Server) handleStakingUnstake(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params stakingAmountParams
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
	if err := s.node.Unstake(caller, amount); err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	position, err := s.node.StakePosition(caller)
	if err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, stakePositionResult{
		Amount:     position.Amount.String(),
		LastUpdate: position.LastUpdate,
		RewardUSDT: position.RewardUSDT.String(),
		RewardSOVI: position.RewardSOVI.String(),
	})
}

func (s *Server) handleStakingClaim(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params stakingCallerParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	usdtPaid, soviPaid, err := s.node.ClaimReward(caller)
	if err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, claimResult{USDTPaid: usdtPaid.String(), SOVIPaid: soviPaid.String()})
}

func (s *Server) handleStakingPending(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params stakingAddressParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	addr, err := decodeBech32(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid address", err.Error())
		return
	}
	usdt, sovi, err := s.node.PendingRewards(addr)
	if err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, pendingRewardsResult{USDT: usdt.String(), SOVI: sovi.String()})
}

func (s *Server) handleStakingPosition(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params stakingAddressParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	addr, err := decodeBech32(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid address", err.Error())
		return
	}
	position, err := s.node.StakePosition(addr)
	if err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, stakePositionResult{
		Amount:     position.Amount.String(),
		LastUpdate: position.LastUpdate,
		RewardUSDT: position.RewardUSDT.String(),
		RewardSOVI: position.RewardSOVI.String(),
	})
}

func (s *Server) handleStakingTotalStaked(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	total, err := s.node.TotalStaked()
	if err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"totalStaked": total.String()})
}

func (s *Server) handleStakingFund(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.auth.requireRole(r, "owner"); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, nil)
		return
	}
	var params stakingAmountParams
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
	if err := s.node.FundRewards(caller, amount); err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	reserve, err := s.node.Reserve()
	if err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"reserve": reserve.String()})
}

func (s *Server) handleStakingSetRates(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.auth.requireRole(r, "owner"); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, nil)
		return
	}
	var params stakingRatesParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	usdtRate, err := parseAmount(params.USDTRate)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	soviRate, err := parseAmount(params.SOVIRate)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.SetRates(caller, usdtRate, soviRate); err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"usdtRate": usdtRate.String(), "soviRate": soviRate.String()})
}

func (s *Server) handleStakingRedeemVoucher(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params stakingVoucherParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	points, err := parseAmount(params.PointCost)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.RedeemVoucher(caller, params.VoucherID, points); err != nil {
		writeLedgerError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]interface{}{"voucherId": params.VoucherID, "points": points.String()})
}
