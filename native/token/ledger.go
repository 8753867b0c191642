package token

import (
	"fmt"
	"math/big"

	"hdgold/core/events"
	"hdgold/core/state"
)

// Registered asset symbols. HDG is the gold-pegged balance, USDT the quote
// currency, SOVI the loyalty point.
const (
	SymbolHDG  = "HDG"
	SymbolUSDT = "USDT"
	SymbolSOVI = "SOVI"
)

// Ledger implements fungible balance accounting over the state manager.
// Transfers are exact integer moves; mint and burn are restricted to each
// token's registered authority.
type Ledger struct {
	st      *state.Manager
	emitter events.Emitter
}

// NewLedger constructs a ledger bound to the provided state manager.
func NewLedger(st *state.Manager) *Ledger {
	return &Ledger{st: st, emitter: events.NoopEmitter{}}
}

// SetEmitter wires the downstream event emitter.
func (l *Ledger) SetEmitter(emitter events.Emitter) {
	if l == nil || emitter == nil {
		return
	}
	l.emitter = emitter
}

// Register records token metadata. Re-registering an existing symbol is a
// no-op so genesis can run idempotently across restarts.
func (l *Ledger) Register(symbol, name string, authority [20]byte, transferable bool) error {
	if _, ok, err := l.st.Token(symbol); err != nil {
		return err
	} else if ok {
		return nil
	}
	return l.st.SetToken(&state.TokenMetadata{
		Symbol:        symbol,
		Name:          name,
		Decimals:      18,
		MintAuthority: authority,
		Transferable:  transferable,
	})
}

func (l *Ledger) metadata(symbol string) (*state.TokenMetadata, error) {
	meta, ok, err := l.st.Token(symbol)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownToken, symbol)
	}
	return meta, nil
}

// BalanceOf returns the current balance for addr.
func (l *Ledger) BalanceOf(symbol string, addr [20]byte) (*big.Int, error) {
	return l.st.Balance(symbol, addr)
}

// TotalSupply returns the outstanding supply for symbol.
func (l *Ledger) TotalSupply(symbol string) (*big.Int, error) {
	return l.st.Supply(symbol)
}

// Allowance returns the remaining approval from owner to spender.
func (l *Ledger) Allowance(symbol string, owner, spender [20]byte) (*big.Int, error) {
	return l.st.Allowance(symbol, owner, spender)
}

// Approve sets the spend allowance from owner to spender.
func (l *Ledger) Approve(symbol string, owner, spender [20]byte, amount *big.Int) error {
	if _, err := l.metadata(symbol); err != nil {
		return err
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	return l.st.SetAllowance(symbol, owner, spender, amount)
}

func (l *Ledger) move(symbol string, from, to [20]byte, amount *big.Int) error {
	fromBal, err := l.st.Balance(symbol, from)
	if err != nil {
		return err
	}
	if fromBal.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s", ErrInsufficientBalance, symbol)
	}
	toBal, err := l.st.Balance(symbol, to)
	if err != nil {
		return err
	}
	if err := l.st.SetBalance(symbol, from, new(big.Int).Sub(fromBal, amount)); err != nil {
		return err
	}
	if err := l.st.SetBalance(symbol, to, new(big.Int).Add(toBal, amount)); err != nil {
		return err
	}
	l.emitter.Emit(events.TokenTransfer{Token: symbol, From: from, To: to, Amount: new(big.Int).Set(amount)})
	return nil
}

// Transfer moves amount from the caller to the recipient. Non-transferable
// assets can only move through their authority (stake custody, reward mint).
func (l *Ledger) Transfer(symbol string, from, to [20]byte, amount *big.Int) error {
	meta, err := l.metadata(symbol)
	if err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if !meta.Transferable && from != meta.MintAuthority && to != meta.MintAuthority {
		return fmt.Errorf("%w: %s", ErrNonTransferable, symbol)
	}
	return l.move(symbol, from, to, amount)
}

// TransferFrom moves amount from owner to recipient on behalf of spender,
// consuming the matching allowance.
func (l *Ledger) TransferFrom(symbol string, spender, owner, to [20]byte, amount *big.Int) error {
	meta, err := l.metadata(symbol)
	if err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if !meta.Transferable && spender != meta.MintAuthority && to != meta.MintAuthority {
		return fmt.Errorf("%w: %s", ErrNonTransferable, symbol)
	}
	allowance, err := l.st.Allowance(symbol, owner, spender)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s", ErrInsufficientAllowance, symbol)
	}
	if err := l.st.SetAllowance(symbol, owner, spender, new(big.Int).Sub(allowance, amount)); err != nil {
		return err
	}
	return l.move(symbol, owner, to, amount)
}

// Mint creates amount for the recipient. Only the registered authority may
// mint.
func (l *Ledger) Mint(symbol string, caller, to [20]byte, amount *big.Int) error {
	meta, err := l.metadata(symbol)
	if err != nil {
		return err
	}
	if caller != meta.MintAuthority {
		return fmt.Errorf("%w: %s", ErrNotMintAuthority, symbol)
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	supply, err := l.st.Supply(symbol)
	if err != nil {
		return err
	}
	bal, err := l.st.Balance(symbol, to)
	if err != nil {
		return err
	}
	if err := l.st.SetSupply(symbol, new(big.Int).Add(supply, amount)); err != nil {
		return err
	}
	if err := l.st.SetBalance(symbol, to, new(big.Int).Add(bal, amount)); err != nil {
		return err
	}
	l.emitter.Emit(events.TokenTransfer{Token: symbol, To: to, Amount: new(big.Int).Set(amount)})
	return nil
}

// Burn destroys amount held by from. Only the registered authority may burn.
func (l *Ledger) Burn(symbol string, caller, from [20]byte, amount *big.Int) error {
	meta, err := l.metadata(symbol)
	if err != nil {
		return err
	}
	if caller != meta.MintAuthority {
		return fmt.Errorf("%w: %s", ErrNotMintAuthority, symbol)
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	bal, err := l.st.Balance(symbol, from)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s", ErrInsufficientBalance, symbol)
	}
	supply, err := l.st.Supply(symbol)
	if err != nil {
		return err
	}
	if err := l.st.SetBalance(symbol, from, new(big.Int).Sub(bal, amount)); err != nil {
		return err
	}
	if err := l.st.SetSupply(symbol, new(big.Int).Sub(supply, amount)); err != nil {
		return err
	}
	l.emitter.Emit(events.TokenTransfer{Token: symbol, From: from, Amount: new(big.Int).Set(amount)})
	return nil
}
