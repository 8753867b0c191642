package vault

import (
	"math/big"
	"time"

	"hdgold/core/events"
	"hdgold/crypto"
	"hdgold/native/kyc"
	"hdgold/native/oracle"
	"hdgold/native/token"
)

// OneChi is one whole display unit of the pegged balance. Physical
// redemptions must be exact multiples of it.
var OneChi = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// ModuleName identifies the vault's custody account.
const ModuleName = "vault"

// Vault converts stablecoin deposits into the gold-pegged balance and back.
// Every division in the conversion math truncates, and the pure quote
// functions share the exact code path of the mutating operations.
type Vault struct {
	tokens  *token.Ledger
	gate    kyc.Gate
	prices  oracle.Source
	owner   [20]byte
	module  [20]byte
	emitter events.Emitter
	now     func() time.Time
}

// NewVault constructs the ledger engine. owner holds the treasury-mint
// capability.
func NewVault(tokens *token.Ledger, gate kyc.Gate, prices oracle.Source, owner [20]byte) *Vault {
	return &Vault{
		tokens:  tokens,
		gate:    gate,
		prices:  prices,
		owner:   owner,
		module:  crypto.ModuleAddress(ModuleName),
		emitter: events.NoopEmitter{},
		now:     time.Now,
	}
}

// SetEmitter wires the downstream event emitter.
func (v *Vault) SetEmitter(emitter events.Emitter) {
	if v == nil || emitter == nil {
		return
	}
	v.emitter = emitter
}

// SetClock overrides the time source, primarily for deterministic testing.
func (v *Vault) SetClock(clock func() time.Time) {
	if v == nil || clock == nil {
		return
	}
	v.now = clock
}

// ModuleAccount returns the custody address holding deposited stablecoin.
func (v *Vault) ModuleAccount() [20]byte {
	return v.module
}

// BalanceOf returns the caller's chi balance.
func (v *Vault) BalanceOf(addr [20]byte) (*big.Int, error) {
	return v.tokens.BalanceOf(token.SymbolHDG, addr)
}

func (v *Vault) requireCredential(addr [20]byte) error {
	ok, err := v.gate.Has(addr)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCredentialRequired
	}
	return nil
}

func (v *Vault) freshQuote() (oracle.Quote, error) {
	quote, err := v.prices.Quote()
	if err != nil {
		return oracle.Quote{}, ErrStalePrice
	}
	if !quote.Fresh(v.now()) {
		return oracle.Quote{}, ErrStalePrice
	}
	return quote, nil
}

func chiFromUSDT(usdtIn, chiUSD *big.Int) *big.Int {
	out := new(big.Int).Mul(usdtIn, OneChi)
	return out.Quo(out, chiUSD)
}

func usdtFromChi(chiAmount, chiUSD *big.Int) *big.Int {
	out := new(big.Int).Mul(chiAmount, chiUSD)
	return out.Quo(out, OneChi)
}

// QuoteChiFromUSDT previews the chi credited for a stablecoin deposit. It is
// pure and uses the same truncating math as MintByUSDT.
func (v *Vault) QuoteChiFromUSDT(usdtIn *big.Int) (*big.Int, *big.Int, error) {
	if usdtIn == nil || usdtIn.Sign() <= 0 {
		return nil, nil, ErrInvalidAmount
	}
	quote, err := v.freshQuote()
	if err != nil {
		return nil, nil, err
	}
	chiUSD := quote.ChiUSD()
	return chiFromUSDT(usdtIn, chiUSD), chiUSD, nil
}

// QuoteRedeemUSDT previews the stablecoin payout for a chi burn. It is pure
// and uses the same truncating math as RedeemToUSDT.
func (v *Vault) QuoteRedeemUSDT(chiAmount *big.Int) (*big.Int, *big.Int, error) {
	if chiAmount == nil || chiAmount.Sign() <= 0 {
		return nil, nil, ErrInvalidAmount
	}
	quote, err := v.freshQuote()
	if err != nil {
		return nil, nil, err
	}
	chiUSD := quote.ChiUSD()
	return usdtFromChi(chiAmount, chiUSD), chiUSD, nil
}

// MintByUSDT pulls usdtIn from the caller and credits the converted chi.
func (v *Vault) MintByUSDT(caller [20]byte, usdtIn *big.Int) (*big.Int, error) {
	if err := v.requireCredential(caller); err != nil {
		return nil, err
	}
	if usdtIn == nil || usdtIn.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	quote, err := v.freshQuote()
	if err != nil {
		return nil, err
	}
	chiOut := chiFromUSDT(usdtIn, quote.ChiUSD())
	if chiOut.Sign() == 0 {
		return nil, ErrInvalidAmount
	}
	if err := v.tokens.TransferFrom(token.SymbolUSDT, v.module, caller, v.module, usdtIn); err != nil {
		return nil, err
	}
	if err := v.tokens.Mint(token.SymbolHDG, v.module, caller, chiOut); err != nil {
		return nil, err
	}
	v.emitter.Emit(events.VaultMinted{Account: caller, Chi: new(big.Int).Set(chiOut), USDT: new(big.Int).Set(usdtIn)})
	return chiOut, nil
}

// RedeemToUSDT burns chiAmount and pays out the converted stablecoin,
// guarded by the caller's minimum acceptable payout.
func (v *Vault) RedeemToUSDT(caller [20]byte, chiAmount, minUSDTOut *big.Int) (*big.Int, error) {
	if err := v.requireCredential(caller); err != nil {
		return nil, err
	}
	if chiAmount == nil || chiAmount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	quote, err := v.freshQuote()
	if err != nil {
		return nil, err
	}
	usdtOut := usdtFromChi(chiAmount, quote.ChiUSD())
	if minUSDTOut != nil && usdtOut.Cmp(minUSDTOut) < 0 {
		return nil, ErrSlippageExceeded
	}
	balance, err := v.tokens.BalanceOf(token.SymbolHDG, caller)
	if err != nil {
		return nil, err
	}
	if balance.Cmp(chiAmount) < 0 {
		return nil, ErrInsufficientBalance
	}
	if err := v.tokens.Burn(token.SymbolHDG, v.module, caller, chiAmount); err != nil {
		return nil, err
	}
	if usdtOut.Sign() > 0 {
		if err := v.tokens.Transfer(token.SymbolUSDT, v.module, caller, usdtOut); err != nil {
			return nil, err
		}
	}
	v.emitter.Emit(events.VaultRedeemedUSDT{Account: caller, Chi: new(big.Int).Set(chiAmount), USDT: new(big.Int).Set(usdtOut)})
	return usdtOut, nil
}

// RedeemPhysical burns a whole-chi amount and emits the delivery claim.
// Fulfilment happens off-ledger, keyed by the emitted event.
func (v *Vault) RedeemPhysical(caller [20]byte, chiAmount *big.Int) error {
	if err := v.requireCredential(caller); err != nil {
		return err
	}
	if chiAmount == nil || chiAmount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if new(big.Int).Mod(chiAmount, OneChi).Sign() != 0 {
		return ErrMustBeWholeUnit
	}
	balance, err := v.tokens.BalanceOf(token.SymbolHDG, caller)
	if err != nil {
		return err
	}
	if balance.Cmp(chiAmount) < 0 {
		return ErrInsufficientBalance
	}
	if err := v.tokens.Burn(token.SymbolHDG, v.module, caller, chiAmount); err != nil {
		return err
	}
	v.emitter.Emit(events.VaultRedeemedPhysical{Account: caller, Chi: new(big.Int).Set(chiAmount)})
	return nil
}

// MintForOwner creates unbacked chi for the owner treasury. Used to seed
// programmes (e.g. staking incentives) ahead of user deposits.
func (v *Vault) MintForOwner(caller [20]byte, chiAmount *big.Int) error {
	if caller != v.owner {
		return ErrUnauthorized
	}
	if chiAmount == nil || chiAmount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if err := v.tokens.Mint(token.SymbolHDG, v.module, caller, chiAmount); err != nil {
		return err
	}
	v.emitter.Emit(events.VaultOwnerMinted{Account: caller, Chi: new(big.Int).Set(chiAmount)})
	return nil
}
