package events

import (
	"math/big"

	"hdgold/core/types"
)

const (
	// TypeVaultMinted captures a stablecoin deposit converted into chi.
	TypeVaultMinted = "vault.minted"
	// TypeVaultRedeemedUSDT captures chi burned back into stablecoin.
	TypeVaultRedeemedUSDT = "vault.redeemedUSDT"
	// TypeVaultRedeemedPhysical captures a physical-delivery claim. Fulfilment
	// is an out-of-band process keyed by this event.
	TypeVaultRedeemedPhysical = "vault.redeemedPhysical"
	// TypeVaultOwnerMinted captures an unbacked treasury mint by the owner.
	TypeVaultOwnerMinted = "vault.ownerMinted"
)

// VaultMinted records the exact (chi, usdt) pair applied by a mint.
type VaultMinted struct {
	Account [20]byte
	Chi     *big.Int
	USDT    *big.Int
}

// EventType satisfies the Event interface.
func (VaultMinted) EventType() string { return TypeVaultMinted }

// Event converts the structured payload into a broadcastable event.
func (e VaultMinted) Event() *types.Event {
	return &types.Event{Type: TypeVaultMinted, Attributes: map[string]string{
		"addr": formatAddress(e.Account),
		"chi":  formatAmount(e.Chi),
		"usdt": formatAmount(e.USDT),
	}}
}

// VaultRedeemedUSDT records a chi burn paid out in stablecoin.
type VaultRedeemedUSDT struct {
	Account [20]byte
	Chi     *big.Int
	USDT    *big.Int
}

// EventType satisfies the Event interface.
func (VaultRedeemedUSDT) EventType() string { return TypeVaultRedeemedUSDT }

// Event converts the structured payload into a broadcastable event.
func (e VaultRedeemedUSDT) Event() *types.Event {
	return &types.Event{Type: TypeVaultRedeemedUSDT, Attributes: map[string]string{
		"addr": formatAddress(e.Account),
		"chi":  formatAmount(e.Chi),
		"usdt": formatAmount(e.USDT),
	}}
}

// VaultRedeemedPhysical records a whole-unit burn claiming physical delivery.
type VaultRedeemedPhysical struct {
	Account [20]byte
	Chi     *big.Int
}

// EventType satisfies the Event interface.
func (VaultRedeemedPhysical) EventType() string { return TypeVaultRedeemedPhysical }

// Event converts the structured payload into a broadcastable event.
func (e VaultRedeemedPhysical) Event() *types.Event {
	return &types.Event{Type: TypeVaultRedeemedPhysical, Attributes: map[string]string{
		"addr": formatAddress(e.Account),
		"chi":  formatAmount(e.Chi),
	}}
}

// VaultOwnerMinted records an owner treasury mint.
type VaultOwnerMinted struct {
	Account [20]byte
	Chi     *big.Int
}

// EventType satisfies the Event interface.
func (VaultOwnerMinted) EventType() string { return TypeVaultOwnerMinted }

// Event converts the structured payload into a broadcastable event.
func (e VaultOwnerMinted) Event() *types.Event {
	return &types.Event{Type: TypeVaultOwnerMinted, Attributes: map[string]string{
		"addr": formatAddress(e.Account),
		"chi":  formatAmount(e.Chi),
	}}
}
