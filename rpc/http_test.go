package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hdgold/core"
	"hdgold/crypto"
	"hdgold/native/token"
	"hdgold/storage"
)

const testToken = "test-secret"

type rpcHarness struct {
	server *Server
	node   *core.Node
	ts     *httptest.Server

	owner  [20]byte
	feeder [20]byte
	user   [20]byte
	now    time.Time
}

func newRPCHarness(t *testing.T) *rpcHarness {
	t.Helper()
	h := &rpcHarness{
		owner:  addrWithSuffix(1),
		feeder: addrWithSuffix(2),
		user:   addrWithSuffix(3),
		now:    time.Unix(1_700_000_000, 0).UTC(),
	}
	xau, _ := new(big.Int).SetString("3110347700000000000000", 10)
	vnd, _ := new(big.Int).SetString("24000000000000000000000", 10)
	node, err := core.NewNode(storage.NewMemDB(), core.Genesis{
		Owner:         h.owner,
		Feeder:        h.feeder,
		InitialXAUUSD: xau,
		InitialUSDVND: vnd,
	})
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	node.SetClock(func() time.Time { return h.now })
	h.node = node
	h.server = NewServer(node, Options{StaticToken: testToken, RatePerMinute: 6000, RateBurst: 1000})
	h.ts = httptest.NewServer(h.server.Router())
	t.Cleanup(h.ts.Close)

	if err := node.KYCIssue(h.owner, h.user, ""); err != nil {
		t.Fatalf("issue credential: %v", err)
	}
	return h
}

func addrWithSuffix(b byte) [20]byte {
	var a [20]byte
	a[19] = b
	return a
}

func bech(addr [20]byte) string {
	return crypto.MustNewAddress(crypto.HDGPrefix, addr[:]).String()
}

func (h *rpcHarness) call(t *testing.T, method string, params interface{}, authed bool) RPCResponse {
	t.Helper()
	body := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
	}
	if params != nil {
		body["params"] = []interface{}{params}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, h.ts.URL+"/", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()
	var decoded RPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return decoded
}

func (h *rpcHarness) mustResult(t *testing.T, method string, params interface{}, authed bool, out interface{}) {
	t.Helper()
	resp := h.call(t, method, params, authed)
	if resp.Error != nil {
		t.Fatalf("%s failed: %d %s", method, resp.Error.Code, resp.Error.Message)
	}
	raw, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatalf("re-marshal result: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
}

func TestUnknownMethod(t *testing.T) {
	h := newRPCHarness(t)
	resp := h.call(t, "hdgold_unknown", nil, false)
	if resp.Error == nil || resp.Error.Code != codeMethodNotFound {
		t.Fatalf("expected method-not-found, got %+v", resp.Error)
	}
}

func TestKYCStatusOverRPC(t *testing.T) {
	h := newRPCHarness(t)
	var status kycStatusResult
	h.mustResult(t, "kyc_status", map[string]string{"address": bech(h.user)}, false, &status)
	if !status.Verified {
		t.Fatalf("user not verified: %+v", status)
	}
	h.mustResult(t, "kyc_status", map[string]string{"address": bech(addrWithSuffix(9))}, false, &status)
	if status.Verified {
		t.Fatalf("stranger verified: %+v", status)
	}
}

func TestMintFlowOverRPC(t *testing.T) {
	h := newRPCHarness(t)

	// Owner faucets USDT to the user; privileged, so it needs the token.
	var minted balanceResult
	h.mustResult(t, "token_mint", map[string]string{
		"token":  token.SymbolUSDT,
		"caller": bech(h.owner),
		"to":     bech(h.user),
		"amount": "750000000000000000000",
	}, true, &minted)

	var approved map[string]string
	h.mustResult(t, "token_approve", map[string]string{
		"token":   token.SymbolUSDT,
		"owner":   bech(h.user),
		"spender": bech(h.node.VaultModule()),
		"amount":  "750000000000000000000",
	}, false, &approved)

	var quote quoteResult
	h.mustResult(t, "hdgold_quoteChi", map[string]string{"amount": "750000000000000000000"}, false, &quote)
	if quote.Amount != "2000000000000000000" {
		t.Fatalf("quoted chi = %s, want 2e18", quote.Amount)
	}

	var result map[string]string
	h.mustResult(t, "hdgold_mint", map[string]string{
		"caller": bech(h.user),
		"amount": "750000000000000000000",
	}, false, &result)

	var balance balanceResult
	h.mustResult(t, "token_balance", map[string]string{
		"token":   token.SymbolHDG,
		"address": bech(h.user),
	}, false, &balance)
	if balance.Amount != "2000000000000000000" {
		t.Fatalf("balance = %s, want 2e18", balance.Amount)
	}
}

func TestPrivilegedMethodRequiresToken(t *testing.T) {
	h := newRPCHarness(t)
	resp := h.call(t, "token_mint", map[string]string{
		"token":  token.SymbolUSDT,
		"caller": bech(h.owner),
		"to":     bech(h.user),
		"amount": "1",
	}, false)
	if resp.Error == nil || resp.Error.Code != codeUnauthorized {
		t.Fatalf("expected unauthorized, got %+v", resp.Error)
	}
}

func TestStalePriceMapsToPreconditionCode(t *testing.T) {
	h := newRPCHarness(t)
	h.now = h.now.Add(2 * time.Hour)
	resp := h.call(t, "hdgold_quoteChi", map[string]string{"amount": "1000000000000000000"}, false)
	if resp.Error == nil || resp.Error.Code != codePrecondition {
		t.Fatalf("expected precondition code, got %+v", resp.Error)
	}
	if resp.Error.Message != "stale price" {
		t.Fatalf("message = %q, want stale price", resp.Error.Message)
	}
}

func TestInvalidAddressRejected(t *testing.T) {
	h := newRPCHarness(t)
	resp := h.call(t, "kyc_status", map[string]string{"address": "garbage"}, false)
	if resp.Error == nil || resp.Error.Code != codeInvalidParams {
		t.Fatalf("expected invalid params, got %+v", resp.Error)
	}
}

func TestOracleUpdateOverRPC(t *testing.T) {
	h := newRPCHarness(t)
	var quote oracleQuoteResult
	h.mustResult(t, "oracle_update", map[string]string{
		"caller": bech(h.feeder),
		"xauUsd": "4000000000000000000000",
		"usdVnd": "25000000000000000000000",
	}, true, &quote)
	if quote.XAUUSD != "4000000000000000000000" {
		t.Fatalf("xauUsd = %s, want 4000e18", quote.XAUUSD)
	}

	// A non-feeder caller is rejected by the ledger even with a valid token.
	resp := h.call(t, "oracle_update", map[string]string{
		"caller": bech(h.user),
		"xauUsd": "1000000000000000000",
		"usdVnd": "1000000000000000000",
	}, true)
	if resp.Error == nil || resp.Error.Code != codeUnauthorized {
		t.Fatalf("expected unauthorized, got %+v", resp.Error)
	}
}

func TestHealthz(t *testing.T) {
	h := newRPCHarness(t)
	resp, err := http.Get(h.ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestRateLimit(t *testing.T) {
	node, err := core.NewNode(storage.NewMemDB(), core.Genesis{Owner: addrWithSuffix(1), Feeder: addrWithSuffix(2)})
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	server := NewServer(node, Options{RatePerMinute: 60, RateBurst: 2})
	ts := httptest.NewServer(server.Router())
	defer ts.Close()

	var limited bool
	for i := 0; i < 5; i++ {
		resp, err := http.Post(ts.URL+"/", "application/json", bytes.NewReader([]byte(fmt.Sprintf(`{"jsonrpc":"2.0","id":%d,"method":"staking_totalStaked"}`, i))))
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			limited = true
		}
		resp.Body.Close()
	}
	if !limited {
		t.Fatalf("burst of 5 never rate limited with burst 2")
	}
}
