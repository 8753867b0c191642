package events

import (
	"strings"

	"hdgold/core/types"
)

const (
	// TypeKYCIssued captures a credential granted to an account.
	TypeKYCIssued = "kyc.issued"
	// TypeKYCRevoked captures a credential withdrawn from an account.
	TypeKYCRevoked = "kyc.revoked"
)

// KYCIssued records a credential grant and its metadata pointer.
type KYCIssued struct {
	Account [20]byte
	URI     string
}

// EventType satisfies the Event interface.
func (KYCIssued) EventType() string { return TypeKYCIssued }

// Event converts the structured payload into a broadcastable event.
func (e KYCIssued) Event() *types.Event {
	attrs := map[string]string{"addr": formatAddress(e.Account)}
	if uri := strings.TrimSpace(e.URI); uri != "" {
		attrs["uri"] = uri
	}
	return &types.Event{Type: TypeKYCIssued, Attributes: attrs}
}

// KYCRevoked records a credential withdrawal.
type KYCRevoked struct {
	Account [20]byte
}

// EventType satisfies the Event interface.
func (KYCRevoked) EventType() string { return TypeKYCRevoked }

// Event converts the structured payload into a broadcastable event.
func (e KYCRevoked) Event() *types.Event {
	return &types.Event{Type: TypeKYCRevoked, Attributes: map[string]string{
		"addr": formatAddress(e.Account),
	}}
}
