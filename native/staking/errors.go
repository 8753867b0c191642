package staking

import "errors"

var (
	// ErrCredentialRequired indicates the caller holds no identity credential.
	ErrCredentialRequired = errors.New("staking: KYC credential required")
	// ErrInvalidAmount indicates a zero or malformed amount.
	ErrInvalidAmount = errors.New("staking: invalid amount")
	// ErrInsufficientStake indicates an unstake larger than the position.
	ErrInsufficientStake = errors.New("staking: insufficient stake")
	// ErrNoRewards indicates a claim with nothing accrued on either stream.
	ErrNoRewards = errors.New("staking: no rewards")
	// ErrInsufficientPoints indicates a voucher burn exceeding the caller's
	// loyalty-point balance.
	ErrInsufficientPoints = errors.New("staking: not enough points")
	// ErrUnauthorized indicates a non-owner calling an owner operation.
	ErrUnauthorized = errors.New("staking: caller is not the owner")
)
