package events

import (
	"math/big"
	"strconv"

	"hdgold/core/types"
)

// TypePriceUpdated captures a feeder pushing a fresh price observation.
const TypePriceUpdated = "oracle.priceUpdated"

// PriceUpdated records both quoted prices and the observation timestamp.
type PriceUpdated struct {
	XAUUSD      *big.Int
	USDVND      *big.Int
	LastUpdated uint64
}

// EventType satisfies the Event interface.
func (PriceUpdated) EventType() string { return TypePriceUpdated }

// Event converts the structured payload into a broadcastable event.
func (e PriceUpdated) Event() *types.Event {
	return &types.Event{Type: TypePriceUpdated, Attributes: map[string]string{
		"xauUsd": formatAmount(e.XAUUSD),
		"usdVnd": formatAmount(e.USDVND),
		"at":     strconv.FormatUint(e.LastUpdated, 10),
	}}
}
