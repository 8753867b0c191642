package vault

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"hdgold/core/state"
	"hdgold/crypto"
	"hdgold/native/kyc"
	"hdgold/native/oracle"
	"hdgold/native/token"
	"hdgold/storage"
)

// $3110.3477 per troy ounce makes the chi price land on an exact $375.
var (
	testXAUUSD = mustBig("3110347700000000000000")
	testUSDVND = mustBig("24000000000000000000000")
	chiUSD375  = mustBig("375000000000000000000")
)

func mustBig(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("invalid big integer literal: " + s)
	}
	return v
}

func testAddr(b byte) [20]byte {
	var a [20]byte
	a[19] = b
	return a
}

type vaultHarness struct {
	st       *state.Manager
	tokens   *token.Ledger
	registry *kyc.Registry
	feeder   *oracle.Feeder
	vault    *Vault

	owner      [20]byte
	feederAddr [20]byte
	user       [20]byte
	now        time.Time
}

func newVaultHarness(t *testing.T) *vaultHarness {
	t.Helper()
	h := &vaultHarness{
		st:         state.NewManager(storage.NewMemDB()),
		owner:      testAddr(1),
		feederAddr: testAddr(2),
		user:       testAddr(3),
		now:        time.Unix(1_700_000_000, 0).UTC(),
	}
	h.tokens = token.NewLedger(h.st)
	module := crypto.ModuleAddress(ModuleName)
	if err := h.tokens.Register(token.SymbolHDG, "HD Gold", module, true); err != nil {
		t.Fatalf("register HDG: %v", err)
	}
	if err := h.tokens.Register(token.SymbolUSDT, "Tether USD", h.owner, true); err != nil {
		t.Fatalf("register USDT: %v", err)
	}
	h.registry = kyc.NewRegistry(h.st, h.owner)
	h.feeder = oracle.NewFeeder(h.st, h.feederAddr)
	h.vault = NewVault(h.tokens, h.registry, h.feeder, h.owner)

	clock := func() time.Time { return h.now }
	h.feeder.SetClock(clock)
	h.vault.SetClock(clock)

	if err := h.registry.Issue(h.owner, h.user, ""); err != nil {
		t.Fatalf("issue credential: %v", err)
	}
	if err := h.feeder.UpdatePrice(h.feederAddr, testXAUUSD, testUSDVND); err != nil {
		t.Fatalf("seed price: %v", err)
	}
	return h
}

func (h *vaultHarness) fundUSDT(t *testing.T, to [20]byte, amount *big.Int) {
	t.Helper()
	if err := h.tokens.Mint(token.SymbolUSDT, h.owner, to, amount); err != nil {
		t.Fatalf("mint USDT: %v", err)
	}
	if err := h.tokens.Approve(token.SymbolUSDT, to, h.vault.ModuleAccount(), amount); err != nil {
		t.Fatalf("approve USDT: %v", err)
	}
}

func (h *vaultHarness) balance(t *testing.T, symbol string, addr [20]byte) *big.Int {
	t.Helper()
	bal, err := h.tokens.BalanceOf(symbol, addr)
	if err != nil {
		t.Fatalf("balance %s: %v", symbol, err)
	}
	return bal
}

func chi(amount int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(amount), OneChi)
}

func TestMintByUSDT(t *testing.T) {
	h := newVaultHarness(t)
	deposit := chi(750) // $750 at $375/chi buys exactly 2 chi
	h.fundUSDT(t, h.user, deposit)

	minted, err := h.vault.MintByUSDT(h.user, deposit)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if minted.Cmp(chi(2)) != 0 {
		t.Fatalf("minted = %s, want %s", minted, chi(2))
	}
	if got := h.balance(t, token.SymbolHDG, h.user); got.Cmp(chi(2)) != 0 {
		t.Fatalf("user HDG = %s, want %s", got, chi(2))
	}
	if got := h.balance(t, token.SymbolUSDT, h.user); got.Sign() != 0 {
		t.Fatalf("user USDT = %s, want 0", got)
	}
	if got := h.balance(t, token.SymbolUSDT, h.vault.ModuleAccount()); got.Cmp(deposit) != 0 {
		t.Fatalf("vault USDT = %s, want %s", got, deposit)
	}
	supply, err := h.tokens.TotalSupply(token.SymbolHDG)
	if err != nil {
		t.Fatalf("supply: %v", err)
	}
	if supply.Cmp(chi(2)) != 0 {
		t.Fatalf("HDG supply = %s, want %s", supply, chi(2))
	}
}

func TestMintTruncates(t *testing.T) {
	h := newVaultHarness(t)
	deposit := chi(100) // 100/375 chi does not divide evenly
	h.fundUSDT(t, h.user, deposit)

	minted, err := h.vault.MintByUSDT(h.user, deposit)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	want := mustBig("266666666666666666")
	if minted.Cmp(want) != 0 {
		t.Fatalf("minted = %s, want %s", minted, want)
	}
}

func TestMintQuoteConsistency(t *testing.T) {
	h := newVaultHarness(t)
	deposit := mustBig("123456789012345678901")
	h.fundUSDT(t, h.user, deposit)

	quoted, chiUSD, err := h.vault.QuoteChiFromUSDT(deposit)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if chiUSD.Cmp(chiUSD375) != 0 {
		t.Fatalf("chiUSD = %s, want %s", chiUSD, chiUSD375)
	}
	minted, err := h.vault.MintByUSDT(h.user, deposit)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if minted.Cmp(quoted) != 0 {
		t.Fatalf("minted %s differs from quote %s", minted, quoted)
	}
}

func TestMintRejectsDust(t *testing.T) {
	h := newVaultHarness(t)
	h.fundUSDT(t, h.user, big.NewInt(100))

	// 100 wei of USDT converts to zero chi at $375, which must not mint.
	if _, err := h.vault.MintByUSDT(h.user, big.NewInt(100)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("err = %v, want ErrInvalidAmount", err)
	}
	if got := h.balance(t, token.SymbolUSDT, h.user); got.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("user USDT = %s, deposit must not move on failure", got)
	}
}

func TestMintRequiresCredential(t *testing.T) {
	h := newVaultHarness(t)
	stranger := testAddr(9)
	if _, err := h.vault.MintByUSDT(stranger, chi(1)); !errors.Is(err, ErrCredentialRequired) {
		t.Fatalf("err = %v, want ErrCredentialRequired", err)
	}
}

func TestMintStalePrice(t *testing.T) {
	h := newVaultHarness(t)
	h.fundUSDT(t, h.user, chi(750))

	h.now = h.now.Add(oracle.StalenessWindow + time.Second)
	if _, err := h.vault.MintByUSDT(h.user, chi(750)); !errors.Is(err, ErrStalePrice) {
		t.Fatalf("err = %v, want ErrStalePrice", err)
	}

	// A quote exactly at the window boundary is still accepted.
	h.now = h.now.Add(-time.Second)
	if _, err := h.vault.MintByUSDT(h.user, chi(750)); err != nil {
		t.Fatalf("mint at boundary: %v", err)
	}
}

func TestMintWithoutQuote(t *testing.T) {
	h := newVaultHarness(t)
	// A second harness account with no quote recorded at all.
	st := state.NewManager(storage.NewMemDB())
	tokens := token.NewLedger(st)
	if err := tokens.Register(token.SymbolHDG, "HD Gold", crypto.ModuleAddress(ModuleName), true); err != nil {
		t.Fatalf("register HDG: %v", err)
	}
	if err := tokens.Register(token.SymbolUSDT, "Tether USD", h.owner, true); err != nil {
		t.Fatalf("register USDT: %v", err)
	}
	registry := kyc.NewRegistry(st, h.owner)
	if err := registry.Issue(h.owner, h.user, ""); err != nil {
		t.Fatalf("issue credential: %v", err)
	}
	v := NewVault(tokens, registry, oracle.NewFeeder(st, h.feederAddr), h.owner)
	if _, err := v.MintByUSDT(h.user, chi(750)); !errors.Is(err, ErrStalePrice) {
		t.Fatalf("err = %v, want ErrStalePrice", err)
	}
}

func TestRedeemToUSDT(t *testing.T) {
	h := newVaultHarness(t)
	deposit := chi(750)
	h.fundUSDT(t, h.user, deposit)
	if _, err := h.vault.MintByUSDT(h.user, deposit); err != nil {
		t.Fatalf("mint: %v", err)
	}

	paid, err := h.vault.RedeemToUSDT(h.user, chi(2), nil)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if paid.Cmp(deposit) != 0 {
		t.Fatalf("paid = %s, want %s", paid, deposit)
	}
	if got := h.balance(t, token.SymbolHDG, h.user); got.Sign() != 0 {
		t.Fatalf("user HDG = %s, want 0", got)
	}
	if got := h.balance(t, token.SymbolUSDT, h.user); got.Cmp(deposit) != 0 {
		t.Fatalf("user USDT = %s, want %s", got, deposit)
	}
	supply, err := h.tokens.TotalSupply(token.SymbolHDG)
	if err != nil {
		t.Fatalf("supply: %v", err)
	}
	if supply.Sign() != 0 {
		t.Fatalf("HDG supply = %s, want 0", supply)
	}
}

func TestRedeemTruncationFavoursVault(t *testing.T) {
	h := newVaultHarness(t)
	deposit := chi(100)
	h.fundUSDT(t, h.user, deposit)
	minted, err := h.vault.MintByUSDT(h.user, deposit)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	paid, err := h.vault.RedeemToUSDT(h.user, minted, nil)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	want := mustBig("99999999999999999750")
	if paid.Cmp(want) != 0 {
		t.Fatalf("paid = %s, want %s", paid, want)
	}
	// The 250 wei lost to truncation stays in custody.
	residue := h.balance(t, token.SymbolUSDT, h.vault.ModuleAccount())
	if residue.Cmp(big.NewInt(250)) != 0 {
		t.Fatalf("vault residue = %s, want 250", residue)
	}
}

func TestRedeemSlippageGuard(t *testing.T) {
	h := newVaultHarness(t)
	deposit := chi(750)
	h.fundUSDT(t, h.user, deposit)
	if _, err := h.vault.MintByUSDT(h.user, deposit); err != nil {
		t.Fatalf("mint: %v", err)
	}

	tooHigh := new(big.Int).Add(deposit, big.NewInt(1))
	if _, err := h.vault.RedeemToUSDT(h.user, chi(2), tooHigh); !errors.Is(err, ErrSlippageExceeded) {
		t.Fatalf("err = %v, want ErrSlippageExceeded", err)
	}
	if got := h.balance(t, token.SymbolHDG, h.user); got.Cmp(chi(2)) != 0 {
		t.Fatalf("user HDG = %s, balance must not move on rejection", got)
	}
	if _, err := h.vault.RedeemToUSDT(h.user, chi(2), deposit); err != nil {
		t.Fatalf("redeem at exact minimum: %v", err)
	}
}

func TestRedeemInsufficientBalance(t *testing.T) {
	h := newVaultHarness(t)
	if _, err := h.vault.RedeemToUSDT(h.user, chi(1), nil); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}
}

func TestRedeemPhysical(t *testing.T) {
	h := newVaultHarness(t)
	deposit := chi(750)
	h.fundUSDT(t, h.user, deposit)
	if _, err := h.vault.MintByUSDT(h.user, deposit); err != nil {
		t.Fatalf("mint: %v", err)
	}

	fractional := new(big.Int).Div(OneChi, big.NewInt(2))
	if err := h.vault.RedeemPhysical(h.user, fractional); !errors.Is(err, ErrMustBeWholeUnit) {
		t.Fatalf("err = %v, want ErrMustBeWholeUnit", err)
	}
	if err := h.vault.RedeemPhysical(h.user, chi(2)); err != nil {
		t.Fatalf("redeem physical: %v", err)
	}
	if got := h.balance(t, token.SymbolHDG, h.user); got.Sign() != 0 {
		t.Fatalf("user HDG = %s, want 0", got)
	}
	// Physical delivery burns without paying stablecoin back.
	if got := h.balance(t, token.SymbolUSDT, h.vault.ModuleAccount()); got.Cmp(deposit) != 0 {
		t.Fatalf("vault USDT = %s, want %s", got, deposit)
	}
}

func TestMintForOwner(t *testing.T) {
	h := newVaultHarness(t)
	if err := h.vault.MintForOwner(h.user, chi(5)); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if err := h.vault.MintForOwner(h.owner, chi(5)); err != nil {
		t.Fatalf("owner mint: %v", err)
	}
	if got := h.balance(t, token.SymbolHDG, h.owner); got.Cmp(chi(5)) != 0 {
		t.Fatalf("owner HDG = %s, want %s", got, chi(5))
	}
	// Unbacked supply: no stablecoin entered custody.
	if got := h.balance(t, token.SymbolUSDT, h.vault.ModuleAccount()); got.Sign() != 0 {
		t.Fatalf("vault USDT = %s, want 0", got)
	}
}

func TestQuoteRedeemConsistency(t *testing.T) {
	h := newVaultHarness(t)
	deposit := chi(750)
	h.fundUSDT(t, h.user, deposit)
	if _, err := h.vault.MintByUSDT(h.user, deposit); err != nil {
		t.Fatalf("mint: %v", err)
	}
	quoted, _, err := h.vault.QuoteRedeemUSDT(chi(2))
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	paid, err := h.vault.RedeemToUSDT(h.user, chi(2), nil)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if paid.Cmp(quoted) != 0 {
		t.Fatalf("paid %s differs from quote %s", paid, quoted)
	}
}
