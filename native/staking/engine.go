package staking

import (
	"math/big"
	"time"

	"hdgold/core/events"
	"hdgold/core/state"
	"hdgold/crypto"
	"hdgold/native/kyc"
	"hdgold/native/token"
)

// ModuleName identifies the staking custody account. The module's USDT
// balance is the reward reserve; its HDG balance must always equal the
// recorded total stake.
const ModuleName = "staking"

var oneE18 = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// Default per-second, per-staked-unit reward rates (1e18 scaled): roughly 5%
// of stake per year in USDT and 10 SOVI per staked unit per year.
var (
	DefaultRewardRateUSDT = big.NewInt(1_585_489_599)
	DefaultRewardRateSOVI = big.NewInt(3_170_979_198)
)

// Engine owns stake custody, the two parallel reward accumulators, and the
// reserve-aware payout. Every state-changing call checkpoints accrual before
// applying its own effect, so stake changes never double-count or skip a
// reward period.
type Engine struct {
	st      *state.Manager
	tokens  *token.Ledger
	gate    kyc.Gate
	owner   [20]byte
	module  [20]byte
	emitter events.Emitter
	now     func() time.Time
}

// NewEngine constructs the reward engine. owner holds the rate-setting and
// funding capability.
func NewEngine(st *state.Manager, tokens *token.Ledger, gate kyc.Gate, owner [20]byte) *Engine {
	return &Engine{
		st:      st,
		tokens:  tokens,
		gate:    gate,
		owner:   owner,
		module:  crypto.ModuleAddress(ModuleName),
		emitter: events.NoopEmitter{},
		now:     time.Now,
	}
}

// SetEmitter wires the downstream event emitter.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if e == nil || emitter == nil {
		return
	}
	e.emitter = emitter
}

// SetClock overrides the time source, primarily for deterministic testing.
func (e *Engine) SetClock(clock func() time.Time) {
	if e == nil || clock == nil {
		return
	}
	e.now = clock
}

// ModuleAccount returns the custody address holding staked chi and the
// reward reserve.
func (e *Engine) ModuleAccount() [20]byte {
	return e.module
}

// EnsureRates seeds the default reward rates when none are stored yet.
func (e *Engine) EnsureRates() error {
	global, err := e.st.StakingGlobal()
	if err != nil {
		return err
	}
	if global.RewardRateUSDT.Sign() > 0 || global.RewardRateSOVI.Sign() > 0 {
		return nil
	}
	global.RewardRateUSDT = new(big.Int).Set(DefaultRewardRateUSDT)
	global.RewardRateSOVI = new(big.Int).Set(DefaultRewardRateSOVI)
	return e.st.SetStakingGlobal(global)
}

func (e *Engine) requireCredential(addr [20]byte) error {
	ok, err := e.gate.Has(addr)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCredentialRequired
	}
	return nil
}

// accrualDelta computes amount * rate * elapsed / 1e18 with truncation.
func accrualDelta(amount, rate *big.Int, elapsed uint64) *big.Int {
	out := new(big.Int).Mul(amount, rate)
	out.Mul(out, new(big.Int).SetUint64(elapsed))
	return out.Quo(out, oneE18)
}

// checkpoint folds the reward earned since the position's last update into
// its accumulators and stamps the position with now. It is called at the top
// of every state-changing operation, before the operation's own effect.
func checkpoint(pos *state.StakePosition, global *state.StakingGlobal, nowUnix uint64) {
	if nowUnix > pos.LastUpdate && pos.Amount.Sign() > 0 {
		elapsed := nowUnix - pos.LastUpdate
		pos.RewardUSDT = new(big.Int).Add(pos.RewardUSDT, accrualDelta(pos.Amount, global.RewardRateUSDT, elapsed))
		pos.RewardSOVI = new(big.Int).Add(pos.RewardSOVI, accrualDelta(pos.Amount, global.RewardRateSOVI, elapsed))
	}
	pos.LastUpdate = nowUnix
}

func (e *Engine) unixNow() uint64 {
	now := e.now().UTC().Unix()
	if now < 0 {
		return 0
	}
	return uint64(now)
}

// Stake moves amount of chi from the caller into custody.
func (e *Engine) Stake(caller [20]byte, amount *big.Int) error {
	if err := e.requireCredential(caller); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	pos, err := e.st.StakePosition(caller)
	if err != nil {
		return err
	}
	global, err := e.st.StakingGlobal()
	if err != nil {
		return err
	}
	checkpoint(pos, global, e.unixNow())
	if err := e.tokens.TransferFrom(token.SymbolHDG, e.module, caller, e.module, amount); err != nil {
		return err
	}
	pos.Amount = new(big.Int).Add(pos.Amount, amount)
	global.TotalStaked = new(big.Int).Add(global.TotalStaked, amount)
	if err := e.st.SetStakePosition(caller, pos); err != nil {
		return err
	}
	if err := e.st.SetStakingGlobal(global); err != nil {
		return err
	}
	e.emitter.Emit(events.StakingStaked{Account: caller, Amount: new(big.Int).Set(amount)})
	return nil
}

// Unstake returns amount of chi to the caller and folds a payout attempt
// into the same invocation. The emitted amounts reflect what was actually
// paid, which can be less than what accrued when the reserve is short.
func (e *Engine) Unstake(caller [20]byte, amount *big.Int) error {
	if err := e.requireCredential(caller); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	pos, err := e.st.StakePosition(caller)
	if err != nil {
		return err
	}
	if pos.Amount.Cmp(amount) < 0 {
		return ErrInsufficientStake
	}
	global, err := e.st.StakingGlobal()
	if err != nil {
		return err
	}
	checkpoint(pos, global, e.unixNow())
	pos.Amount = new(big.Int).Sub(pos.Amount, amount)
	global.TotalStaked = new(big.Int).Sub(global.TotalStaked, amount)
	if err := e.tokens.Transfer(token.SymbolHDG, e.module, caller, amount); err != nil {
		return err
	}
	usdtPaid, soviPaid, err := e.payout(caller, pos)
	if err != nil {
		return err
	}
	if err := e.st.SetStakePosition(caller, pos); err != nil {
		return err
	}
	if err := e.st.SetStakingGlobal(global); err != nil {
		return err
	}
	e.emitter.Emit(events.StakingUnstaked{
		Account:  caller,
		Amount:   new(big.Int).Set(amount),
		USDTPaid: usdtPaid,
		SOVIPaid: soviPaid,
	})
	return nil
}

// ClaimReward pays out both accrued streams. The loyalty stream always pays
// in full; the stable stream pays in full or not at all, leaving the accrual
// intact for a later retry when the reserve is short.
func (e *Engine) ClaimReward(caller [20]byte) (*big.Int, *big.Int, error) {
	if err := e.requireCredential(caller); err != nil {
		return nil, nil, err
	}
	pos, err := e.st.StakePosition(caller)
	if err != nil {
		return nil, nil, err
	}
	global, err := e.st.StakingGlobal()
	if err != nil {
		return nil, nil, err
	}
	checkpoint(pos, global, e.unixNow())
	if pos.RewardUSDT.Sign() == 0 && pos.RewardSOVI.Sign() == 0 {
		return nil, nil, ErrNoRewards
	}
	usdtPaid, soviPaid, err := e.payout(caller, pos)
	if err != nil {
		return nil, nil, err
	}
	if err := e.st.SetStakePosition(caller, pos); err != nil {
		return nil, nil, err
	}
	e.emitter.Emit(events.StakingRewardClaimed{Account: caller, USDTPaid: usdtPaid, SOVIPaid: soviPaid})
	return usdtPaid, soviPaid, nil
}

// payout attempts both reward streams independently and mutates the position
// accumulators to reflect what was paid.
func (e *Engine) payout(caller [20]byte, pos *state.StakePosition) (*big.Int, *big.Int, error) {
	usdtPaid := big.NewInt(0)
	soviPaid := big.NewInt(0)
	if pos.RewardSOVI.Sign() > 0 {
		soviPaid = new(big.Int).Set(pos.RewardSOVI)
		if err := e.tokens.Mint(token.SymbolSOVI, e.module, caller, soviPaid); err != nil {
			return nil, nil, err
		}
		pos.RewardSOVI = big.NewInt(0)
	}
	if pos.RewardUSDT.Sign() > 0 {
		reserve, err := e.tokens.BalanceOf(token.SymbolUSDT, e.module)
		if err != nil {
			return nil, nil, err
		}
		if reserve.Cmp(pos.RewardUSDT) >= 0 {
			usdtPaid = new(big.Int).Set(pos.RewardUSDT)
			if err := e.tokens.Transfer(token.SymbolUSDT, e.module, caller, usdtPaid); err != nil {
				return nil, nil, err
			}
			pos.RewardUSDT = big.NewInt(0)
		} else {
			e.emitter.Emit(events.StakingInsufficientReserve{
				Account:   caller,
				Shortfall: new(big.Int).Set(pos.RewardUSDT),
			})
		}
	}
	return usdtPaid, soviPaid, nil
}

// PendingRewards projects both accumulators to now without mutating state.
// The result matches exactly what a state-changing call at the same instant
// would checkpoint.
func (e *Engine) PendingRewards(addr [20]byte) (*big.Int, *big.Int, error) {
	pos, err := e.st.StakePosition(addr)
	if err != nil {
		return nil, nil, err
	}
	global, err := e.st.StakingGlobal()
	if err != nil {
		return nil, nil, err
	}
	checkpoint(pos, global, e.unixNow())
	return pos.RewardUSDT, pos.RewardSOVI, nil
}

// Position returns the stored position for addr (zeroed when dormant).
func (e *Engine) Position(addr [20]byte) (*state.StakePosition, error) {
	return e.st.StakePosition(addr)
}

// TotalStaked returns the engine-wide staked amount.
func (e *Engine) TotalStaked() (*big.Int, error) {
	global, err := e.st.StakingGlobal()
	if err != nil {
		return nil, err
	}
	return global.TotalStaked, nil
}

// Rates returns the current per-second reward rates.
func (e *Engine) Rates() (*big.Int, *big.Int, error) {
	global, err := e.st.StakingGlobal()
	if err != nil {
		return nil, nil, err
	}
	return global.RewardRateUSDT, global.RewardRateSOVI, nil
}

// Reserve returns the stable-asset balance earmarked for reward payouts.
func (e *Engine) Reserve() (*big.Int, error) {
	return e.tokens.BalanceOf(token.SymbolUSDT, e.module)
}

// FundRewards pulls amount of stablecoin from the owner into the reserve.
func (e *Engine) FundRewards(caller [20]byte, amount *big.Int) error {
	if caller != e.owner {
		return ErrUnauthorized
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if err := e.tokens.TransferFrom(token.SymbolUSDT, e.module, caller, e.module, amount); err != nil {
		return err
	}
	e.emitter.Emit(events.StakingFunded{Amount: new(big.Int).Set(amount)})
	return nil
}

// SetRates replaces both per-second rates. The change takes effect for time
// elapsed after each account's next checkpoint; already-checkpointed history
// is never rewritten.
func (e *Engine) SetRates(caller [20]byte, usdtRate, soviRate *big.Int) error {
	if caller != e.owner {
		return ErrUnauthorized
	}
	if usdtRate == nil || soviRate == nil || usdtRate.Sign() < 0 || soviRate.Sign() < 0 {
		return ErrInvalidAmount
	}
	global, err := e.st.StakingGlobal()
	if err != nil {
		return err
	}
	global.RewardRateUSDT = new(big.Int).Set(usdtRate)
	global.RewardRateSOVI = new(big.Int).Set(soviRate)
	if err := e.st.SetStakingGlobal(global); err != nil {
		return err
	}
	e.emitter.Emit(events.StakingRatesUpdated{
		USDTRate: new(big.Int).Set(usdtRate),
		SOVIRate: new(big.Int).Set(soviRate),
	})
	return nil
}

// RedeemVoucher burns pointCost loyalty points against a voucher. Catalog
// and fulfilment live off-core; the burn plus the emitted event are the
// engine's whole responsibility.
func (e *Engine) RedeemVoucher(caller [20]byte, voucherID uint64, pointCost *big.Int) error {
	if err := e.requireCredential(caller); err != nil {
		return err
	}
	if pointCost == nil || pointCost.Sign() <= 0 {
		return ErrInvalidAmount
	}
	balance, err := e.tokens.BalanceOf(token.SymbolSOVI, caller)
	if err != nil {
		return err
	}
	if balance.Cmp(pointCost) < 0 {
		return ErrInsufficientPoints
	}
	if err := e.tokens.Burn(token.SymbolSOVI, e.module, caller, pointCost); err != nil {
		return err
	}
	e.emitter.Emit(events.StakingVoucherRedeemed{
		Account:   caller,
		VoucherID: voucherID,
		Points:    new(big.Int).Set(pointCost),
	})
	return nil
}
