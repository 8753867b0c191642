package rpc

import "encoding/json"

// RPCRequest is a JSON-RPC 2.0 request envelope.
type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      json.RawMessage   `json:"id"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
}

// RPCError is a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// RPCResponse is a JSON-RPC 2.0 response envelope.
type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

type balanceResult struct {
	Address string `json:"address"`
	Token   string `json:"token"`
	Amount  string `json:"amount"`
}

type quoteResult struct {
	Amount string `json:"amount"`
	ChiUSD string `json:"chiUsd"`
}

type pendingRewardsResult struct {
	USDT string `json:"usdt"`
	SOVI string `json:"sovi"`
}

type stakePositionResult struct {
	Amount     string `json:"amount"`
	LastUpdate uint64 `json:"lastUpdate"`
	RewardUSDT string `json:"rewardUsdt"`
	RewardSOVI string `json:"rewardSovi"`
}

type claimResult struct {
	USDTPaid string `json:"usdtPaid"`
	SOVIPaid string `json:"soviPaid"`
}

type oracleQuoteResult struct {
	XAUUSD      string `json:"xauUsd"`
	USDVND      string `json:"usdVnd"`
	ChiUSD      string `json:"chiUsd"`
	ChiVND      string `json:"chiVnd"`
	LastUpdated uint64 `json:"lastUpdated"`
	Fresh       bool   `json:"fresh"`
}

type kycStatusResult struct {
	Address  string `json:"address"`
	Verified bool   `json:"verified"`
}

type redeemPhysicalResult struct {
	Ticket string `json:"ticket"`
	Chi    string `json:"chi"`
}
