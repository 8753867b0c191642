package kyc

import (
	"errors"
	"strings"
	"time"

	"hdgold/core/events"
	"hdgold/core/state"
)

var (
	// ErrUnauthorized indicates a non-issuer calling an issuer operation.
	ErrUnauthorized = errors.New("kyc: caller is not the issuer")
	// ErrAlreadyVerified indicates an issue call for a current holder.
	ErrAlreadyVerified = errors.New("kyc: credential already issued")
	// ErrNotVerified indicates a revoke call for a non-holder.
	ErrNotVerified = errors.New("kyc: credential not issued")
)

// Gate answers the credential precondition consulted by every monetary
// operation.
type Gate interface {
	Has(addr [20]byte) (bool, error)
}

// Registry manages non-transferable identity credentials. Credentials are
// externally issued facts; the registry only records who currently holds one.
type Registry struct {
	st      *state.Manager
	issuer  [20]byte
	emitter events.Emitter
	now     func() time.Time
}

// NewRegistry constructs a registry whose issue/revoke capability is held by
// issuer.
func NewRegistry(st *state.Manager, issuer [20]byte) *Registry {
	return &Registry{st: st, issuer: issuer, emitter: events.NoopEmitter{}, now: time.Now}
}

// SetEmitter wires the downstream event emitter.
func (r *Registry) SetEmitter(emitter events.Emitter) {
	if r == nil || emitter == nil {
		return
	}
	r.emitter = emitter
}

// SetClock overrides the time source, primarily for deterministic testing.
func (r *Registry) SetClock(clock func() time.Time) {
	if r == nil || clock == nil {
		return
	}
	r.now = clock
}

// Has reports whether addr currently holds a credential.
func (r *Registry) Has(addr [20]byte) (bool, error) {
	_, ok, err := r.st.Credential(addr)
	return ok, err
}

// Profile returns the stored credential record for addr.
func (r *Registry) Profile(addr [20]byte) (*state.Credential, bool, error) {
	return r.st.Credential(addr)
}

// Issue grants a credential to addr with an optional metadata URI.
func (r *Registry) Issue(caller, addr [20]byte, uri string) error {
	if caller != r.issuer {
		return ErrUnauthorized
	}
	if _, ok, err := r.st.Credential(addr); err != nil {
		return err
	} else if ok {
		return ErrAlreadyVerified
	}
	cred := &state.Credential{
		IssuedAt: uint64(r.now().UTC().Unix()),
		URI:      strings.TrimSpace(uri),
	}
	if err := r.st.SetCredential(addr, cred); err != nil {
		return err
	}
	r.emitter.Emit(events.KYCIssued{Account: addr, URI: cred.URI})
	return nil
}

// Revoke withdraws the credential from addr.
func (r *Registry) Revoke(caller, addr [20]byte) error {
	if caller != r.issuer {
		return ErrUnauthorized
	}
	if _, ok, err := r.st.Credential(addr); err != nil {
		return err
	} else if !ok {
		return ErrNotVerified
	}
	r.st.DeleteCredential(addr)
	r.emitter.Emit(events.KYCRevoked{Account: addr})
	return nil
}
