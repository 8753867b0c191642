package events

import (
	"math/big"
	"strconv"

	"hdgold/core/types"
)

const (
	// TypeStakingStaked captures chi moved into staking custody.
	TypeStakingStaked = "staking.staked"
	// TypeStakingUnstaked captures chi returned to the staker plus the reward
	// amounts actually paid in the same invocation.
	TypeStakingUnstaked = "staking.unstaked"
	// TypeStakingRewardClaimed captures a reward payout; the amounts reflect
	// what was transferred, not what was accrued.
	TypeStakingRewardClaimed = "staking.rewardClaimed"
	// TypeStakingInsufficientReserve is the diagnostic emitted when the
	// stable-asset reserve could not cover an accrued reward in full.
	TypeStakingInsufficientReserve = "staking.insufficientReserve"
	// TypeStakingFunded captures a reserve top-up by the owner.
	TypeStakingFunded = "staking.funded"
	// TypeStakingRatesUpdated captures a reward-rate change.
	TypeStakingRatesUpdated = "staking.ratesUpdated"
	// TypeStakingVoucherRedeemed captures a loyalty-point burn against a
	// voucher; catalog fulfilment is handled off-core from this event.
	TypeStakingVoucherRedeemed = "staking.voucherRedeemed"
)

// StakingStaked records a stake deposit.
type StakingStaked struct {
	Account [20]byte
	Amount  *big.Int
}

// EventType satisfies the Event interface.
func (StakingStaked) EventType() string { return TypeStakingStaked }

// Event converts the structured payload into a broadcastable event.
func (e StakingStaked) Event() *types.Event {
	return &types.Event{Type: TypeStakingStaked, Attributes: map[string]string{
		"addr":   formatAddress(e.Account),
		"amount": formatAmount(e.Amount),
	}}
}

// StakingUnstaked records a withdrawal and the folded-in payout attempt.
type StakingUnstaked struct {
	Account  [20]byte
	Amount   *big.Int
	USDTPaid *big.Int
	SOVIPaid *big.Int
}

// EventType satisfies the Event interface.
func (StakingUnstaked) EventType() string { return TypeStakingUnstaked }

// Event converts the structured payload into a broadcastable event.
func (e StakingUnstaked) Event() *types.Event {
	return &types.Event{Type: TypeStakingUnstaked, Attributes: map[string]string{
		"addr":     formatAddress(e.Account),
		"amount":   formatAmount(e.Amount),
		"usdtPaid": formatAmount(e.USDTPaid),
		"soviPaid": formatAmount(e.SOVIPaid),
	}}
}

// StakingRewardClaimed records the amounts actually transferred by a claim.
type StakingRewardClaimed struct {
	Account  [20]byte
	USDTPaid *big.Int
	SOVIPaid *big.Int
}

// EventType satisfies the Event interface.
func (StakingRewardClaimed) EventType() string { return TypeStakingRewardClaimed }

// Event converts the structured payload into a broadcastable event.
func (e StakingRewardClaimed) Event() *types.Event {
	return &types.Event{Type: TypeStakingRewardClaimed, Attributes: map[string]string{
		"addr":     formatAddress(e.Account),
		"usdtPaid": formatAmount(e.USDTPaid),
		"soviPaid": formatAmount(e.SOVIPaid),
	}}
}

// StakingInsufficientReserve records the exact accrued amount left unpaid.
type StakingInsufficientReserve struct {
	Account   [20]byte
	Shortfall *big.Int
}

// EventType satisfies the Event interface.
func (StakingInsufficientReserve) EventType() string { return TypeStakingInsufficientReserve }

// Event converts the structured payload into a broadcastable event.
func (e StakingInsufficientReserve) Event() *types.Event {
	return &types.Event{Type: TypeStakingInsufficientReserve, Attributes: map[string]string{
		"addr":      formatAddress(e.Account),
		"shortfall": formatAmount(e.Shortfall),
	}}
}

// StakingFunded records a reserve top-up.
type StakingFunded struct {
	Amount *big.Int
}

// EventType satisfies the Event interface.
func (StakingFunded) EventType() string { return TypeStakingFunded }

// Event converts the structured payload into a broadcastable event.
func (e StakingFunded) Event() *types.Event {
	return &types.Event{Type: TypeStakingFunded, Attributes: map[string]string{
		"amount": formatAmount(e.Amount),
	}}
}

// StakingRatesUpdated records the replacement per-second reward rates.
type StakingRatesUpdated struct {
	USDTRate *big.Int
	SOVIRate *big.Int
}

// EventType satisfies the Event interface.
func (StakingRatesUpdated) EventType() string { return TypeStakingRatesUpdated }

// Event converts the structured payload into a broadcastable event.
func (e StakingRatesUpdated) Event() *types.Event {
	return &types.Event{Type: TypeStakingRatesUpdated, Attributes: map[string]string{
		"usdtRate": formatAmount(e.USDTRate),
		"soviRate": formatAmount(e.SOVIRate),
	}}
}

// StakingVoucherRedeemed records a loyalty-point burn against a voucher.
type StakingVoucherRedeemed struct {
	Account   [20]byte
	VoucherID uint64
	Points    *big.Int
}

// EventType satisfies the Event interface.
func (StakingVoucherRedeemed) EventType() string { return TypeStakingVoucherRedeemed }

// Event converts the structured payload into a broadcastable event.
func (e StakingVoucherRedeemed) Event() *types.Event {
	return &types.Event{Type: TypeStakingVoucherRedeemed, Attributes: map[string]string{
		"addr":      formatAddress(e.Account),
		"voucherId": strconv.FormatUint(e.VoucherID, 10),
		"points":    formatAmount(e.Points),
	}}
}
