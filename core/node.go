package core

import (
	"fmt"
	"math/big"
	"sync"
	"time"

	"hdgold/core/events"
	"hdgold/core/state"
	"hdgold/native/kyc"
	"hdgold/native/oracle"
	"hdgold/native/staking"
	"hdgold/native/token"
	"hdgold/native/vault"
	"hdgold/storage"
)

// Genesis carries the privileged identities and optional initial price seeded
// on first start.
type Genesis struct {
	Owner         [20]byte
	Feeder        [20]byte
	InitialXAUUSD *big.Int
	InitialUSDVND *big.Int
}

// Node wires the state manager and the native engines behind a single mutex:
// every public operation is strictly sequential and atomic. Writes buffered
// by the state overlay are committed only when the operation succeeds, and
// the events it emitted are published to the sinks only after that commit.
type Node struct {
	mu       sync.Mutex
	db       storage.Database
	st       *state.Manager
	recorder *events.Recorder
	sinks    []events.Sink

	tokens  *token.Ledger
	kyc     *kyc.Registry
	oracle  *oracle.Feeder
	vault   *vault.Vault
	staking *staking.Engine
}

// NewNode opens the ledger over db and runs genesis initialisation. Genesis
// is idempotent, so restarting against an existing database is safe.
func NewNode(db storage.Database, genesis Genesis) (*Node, error) {
	st := state.NewManager(db)
	recorder := &events.Recorder{}

	tokens := token.NewLedger(st)
	tokens.SetEmitter(recorder)

	registry := kyc.NewRegistry(st, genesis.Owner)
	registry.SetEmitter(recorder)

	feeder := oracle.NewFeeder(st, genesis.Feeder)
	feeder.SetEmitter(recorder)

	vaultEng := vault.NewVault(tokens, registry, feeder, genesis.Owner)
	vaultEng.SetEmitter(recorder)

	stakingEng := staking.NewEngine(st, tokens, registry, genesis.Owner)
	stakingEng.SetEmitter(recorder)

	n := &Node{
		db:       db,
		st:       st,
		recorder: recorder,
		tokens:   tokens,
		kyc:      registry,
		oracle:   feeder,
		vault:    vaultEng,
		staking:  stakingEng,
	}
	if err := n.initGenesis(genesis); err != nil {
		return nil, fmt.Errorf("node: genesis: %w", err)
	}
	return n, nil
}

func (n *Node) initGenesis(genesis Genesis) error {
	err := func() error {
		if err := n.tokens.Register(token.SymbolHDG, "HD Gold", n.vault.ModuleAccount(), true); err != nil {
			return err
		}
		if err := n.tokens.Register(token.SymbolUSDT, "Tether USD", genesis.Owner, true); err != nil {
			return err
		}
		if err := n.tokens.Register(token.SymbolSOVI, "Sovico Point", n.staking.ModuleAccount(), false); err != nil {
			return err
		}
		if err := n.staking.EnsureRates(); err != nil {
			return err
		}
		n.st.SetRole("owner", genesis.Owner)
		n.st.SetRole("feeder", genesis.Feeder)
		if genesis.InitialXAUUSD != nil && genesis.InitialUSDVND != nil {
			if _, ok, err := n.st.PriceQuote(); err != nil {
				return err
			} else if !ok {
				if err := n.oracle.UpdatePrice(genesis.Feeder, genesis.InitialXAUUSD, genesis.InitialUSDVND); err != nil {
					return err
				}
			}
		}
		return nil
	}()
	if err != nil {
		n.st.Reset()
		n.recorder.Discard()
		return err
	}
	// Genesis events predate any subscriber; drop them rather than replaying
	// them into the audit log on every restart.
	n.recorder.Discard()
	return n.st.Commit()
}

// AddSink registers a downstream event consumer. Sinks receive events only
// for operations that committed.
func (n *Node) AddSink(sink events.Sink) {
	if sink == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sinks = append(n.sinks, sink)
}

// SetClock overrides the time source of every engine, for deterministic
// testing.
func (n *Node) SetClock(clock func() time.Time) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.kyc.SetClock(clock)
	n.oracle.SetClock(clock)
	n.vault.SetClock(clock)
	n.staking.SetClock(clock)
}

// withWrite runs fn under the node lock with all-or-nothing semantics: on
// error the state overlay and buffered events are discarded; on success the
// overlay commits and the events fan out.
func (n *Node) withWrite(fn func() error) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := fn(); err != nil {
		n.st.Reset()
		n.recorder.Discard()
		return err
	}
	if err := n.st.Commit(); err != nil {
		n.recorder.Discard()
		return err
	}
	for _, evt := range n.recorder.Drain() {
		for _, sink := range n.sinks {
			sink.Publish(evt.Copy())
		}
	}
	return nil
}

// --- vault operations ---

// MintByUSDT converts a stablecoin deposit into chi for caller.
func (n *Node) MintByUSDT(caller [20]byte, usdtIn *big.Int) (*big.Int, error) {
	var chiOut *big.Int
	err := n.withWrite(func() error {
		var err error
		chiOut, err = n.vault.MintByUSDT(caller, usdtIn)
		return err
	})
	return chiOut, err
}

// RedeemToUSDT burns chi and pays out stablecoin.
func (n *Node) RedeemToUSDT(caller [20]byte, chiAmount, minUSDTOut *big.Int) (*big.Int, error) {
	var usdtOut *big.Int
	err := n.withWrite(func() error {
		var err error
		usdtOut, err = n.vault.RedeemToUSDT(caller, chiAmount, minUSDTOut)
		return err
	})
	return usdtOut, err
}

// RedeemPhysical burns whole chi units and emits the delivery claim.
func (n *Node) RedeemPhysical(caller [20]byte, chiAmount *big.Int) error {
	return n.withWrite(func() error {
		return n.vault.RedeemPhysical(caller, chiAmount)
	})
}

// MintForOwner creates unbacked chi for the owner treasury.
func (n *Node) MintForOwner(caller [20]byte, chiAmount *big.Int) error {
	return n.withWrite(func() error {
		return n.vault.MintForOwner(caller, chiAmount)
	})
}

// QuoteChiFromUSDT previews a mint without mutating state.
func (n *Node) QuoteChiFromUSDT(usdtIn *big.Int) (*big.Int, *big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.vault.QuoteChiFromUSDT(usdtIn)
}

// QuoteRedeemUSDT previews a redemption without mutating state.
func (n *Node) QuoteRedeemUSDT(chiAmount *big.Int) (*big.Int, *big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.vault.QuoteRedeemUSDT(chiAmount)
}

// --- staking operations ---

// Stake moves chi into staking custody.
func (n *Node) Stake(caller [20]byte, amount *big.Int) error {
	return n.withWrite(func() error {
		return n.staking.Stake(caller, amount)
	})
}

// Unstake returns chi to the caller and attempts a reward payout.
func (n *Node) Unstake(caller [20]byte, amount *big.Int) error {
	return n.withWrite(func() error {
		return n.staking.Unstake(caller, amount)
	})
}

// ClaimReward pays out accrued rewards.
func (n *Node) ClaimReward(caller [20]byte) (*big.Int, *big.Int, error) {
	var usdtPaid, soviPaid *big.Int
	err := n.withWrite(func() error {
		var err error
		usdtPaid, soviPaid, err = n.staking.ClaimReward(caller)
		return err
	})
	return usdtPaid, soviPaid, err
}

// FundRewards tops up the stable-asset reserve.
func (n *Node) FundRewards(caller [20]byte, amount *big.Int) error {
	return n.withWrite(func() error {
		return n.staking.FundRewards(caller, amount)
	})
}

// SetRates replaces both reward rates.
func (n *Node) SetRates(caller [20]byte, usdtRate, soviRate *big.Int) error {
	return n.withWrite(func() error {
		return n.staking.SetRates(caller, usdtRate, soviRate)
	})
}

// RedeemVoucher burns loyalty points against a voucher.
func (n *Node) RedeemVoucher(caller [20]byte, voucherID uint64, pointCost *big.Int) error {
	return n.withWrite(func() error {
		return n.staking.RedeemVoucher(caller, voucherID, pointCost)
	})
}

// PendingRewards projects both reward accumulators to now.
func (n *Node) PendingRewards(addr [20]byte) (*big.Int, *big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.staking.PendingRewards(addr)
}

// StakePosition returns the stored staking record for addr.
func (n *Node) StakePosition(addr [20]byte) (*state.StakePosition, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.staking.Position(addr)
}

// TotalStaked returns the engine-wide staked amount.
func (n *Node) TotalStaked() (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.staking.TotalStaked()
}

// Reserve returns the reward reserve balance.
func (n *Node) Reserve() (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.staking.Reserve()
}

// --- oracle operations ---

// UpdatePrice records a fresh price observation.
func (n *Node) UpdatePrice(caller [20]byte, xauUSD, usdVND *big.Int) error {
	return n.withWrite(func() error {
		return n.oracle.UpdatePrice(caller, xauUSD, usdVND)
	})
}

// LatestQuote returns the stored observation.
func (n *Node) LatestQuote() (oracle.Quote, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.oracle.Quote()
}

// --- identity operations ---

// KYCIssue grants a credential.
func (n *Node) KYCIssue(caller, addr [20]byte, uri string) error {
	return n.withWrite(func() error {
		return n.kyc.Issue(caller, addr, uri)
	})
}

// KYCRevoke withdraws a credential.
func (n *Node) KYCRevoke(caller, addr [20]byte) error {
	return n.withWrite(func() error {
		return n.kyc.Revoke(caller, addr)
	})
}

// KYCStatus reports whether addr holds a credential.
func (n *Node) KYCStatus(addr [20]byte) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.kyc.Has(addr)
}

// --- token operations ---

// TokenBalance returns addr's balance of symbol.
func (n *Node) TokenBalance(symbol string, addr [20]byte) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tokens.BalanceOf(symbol, addr)
}

// TokenSupply returns the outstanding supply of symbol.
func (n *Node) TokenSupply(symbol string) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tokens.TotalSupply(symbol)
}

// TokenTransfer moves balance between accounts.
func (n *Node) TokenTransfer(symbol string, from, to [20]byte, amount *big.Int) error {
	return n.withWrite(func() error {
		return n.tokens.Transfer(symbol, from, to, amount)
	})
}

// TokenApprove grants a spend allowance. Users approve the vault and staking
// custody accounts before depositing.
func (n *Node) TokenApprove(symbol string, owner, spender [20]byte, amount *big.Int) error {
	return n.withWrite(func() error {
		return n.tokens.Approve(symbol, owner, spender, amount)
	})
}

// TokenMint creates supply through the symbol's registered authority (the
// USDT authority acts as the bridge/faucet).
func (n *Node) TokenMint(symbol string, caller, to [20]byte, amount *big.Int) error {
	return n.withWrite(func() error {
		return n.tokens.Mint(symbol, caller, to, amount)
	})
}

// VaultModule returns the vault custody address.
func (n *Node) VaultModule() [20]byte { return n.vault.ModuleAccount() }

// StakingModule returns the staking custody address.
func (n *Node) StakingModule() [20]byte { return n.staking.ModuleAccount() }
