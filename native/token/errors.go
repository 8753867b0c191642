package token

import "errors"

var (
	// ErrUnknownToken indicates the symbol has not been registered.
	ErrUnknownToken = errors.New("token: unknown token")
	// ErrInvalidAmount indicates a zero, negative, or missing amount.
	ErrInvalidAmount = errors.New("token: invalid amount")
	// ErrInsufficientBalance indicates the debited account is short.
	ErrInsufficientBalance = errors.New("token: insufficient balance")
	// ErrInsufficientAllowance indicates the spender's approval is short.
	ErrInsufficientAllowance = errors.New("token: insufficient allowance")
	// ErrNonTransferable indicates a transfer of a soulbound asset.
	ErrNonTransferable = errors.New("token: non-transferable")
	// ErrNotMintAuthority indicates a mint or burn by anyone other than the
	// token's registered authority.
	ErrNotMintAuthority = errors.New("token: caller is not the mint authority")
)
