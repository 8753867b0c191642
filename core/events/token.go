package events

import (
	"math/big"
	"strings"

	"hdgold/core/types"
)

// TypeTokenTransfer covers every balance movement in the token ledger. Mints
// and burns use the zero address on the matching side, mirroring the ERC-20
// Transfer shape indexers already understand.
const TypeTokenTransfer = "token.transfer"

// TokenTransfer records a single balance movement.
type TokenTransfer struct {
	Token  string
	From   [20]byte
	To     [20]byte
	Amount *big.Int
}

// EventType satisfies the Event interface.
func (TokenTransfer) EventType() string { return TypeTokenTransfer }

// Event converts the structured payload into a broadcastable event.
func (e TokenTransfer) Event() *types.Event {
	attrs := map[string]string{
		"token":  normalizeAsset(e.Token),
		"amount": formatAmount(e.Amount),
	}
	if !zeroAddress(e.From) {
		attrs["from"] = formatAddress(e.From)
	}
	if !zeroAddress(e.To) {
		attrs["to"] = formatAddress(e.To)
	}
	return &types.Event{Type: TypeTokenTransfer, Attributes: attrs}
}

func normalizeAsset(asset string) string {
	trimmed := strings.TrimSpace(asset)
	if trimmed == "" {
		return ""
	}
	return strings.ToUpper(trimmed)
}
