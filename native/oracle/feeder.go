package oracle

import (
	"errors"
	"math/big"
	"time"

	"hdgold/core/events"
	"hdgold/core/state"
)

var (
	// ErrUnauthorized indicates a price push from a non-feeder account.
	ErrUnauthorized = errors.New("oracle: caller is not the price feeder")
	// ErrInvalidPrice indicates a zero or negative quoted value.
	ErrInvalidPrice = errors.New("oracle: invalid price")
	// ErrNoQuote indicates no observation has been recorded yet.
	ErrNoQuote = errors.New("oracle: no price observation recorded")
)

// StalenessWindow is the maximum age of an observation consumers accept. The
// window belongs to the consuming side of the contract; the feeder itself
// never refuses to serve an old quote.
const StalenessWindow = 3600 * time.Second

// Gold mass constants in integer micrograms. One chi is 3.75 g; one troy
// ounce is 31.103477 g.
const (
	chiMicrograms       = 3_750_000
	troyOunceMicrograms = 31_103_477
)

var oneE18 = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// Quote is a point-in-time price observation with 1e18-scaled values.
type Quote struct {
	XAUUSD      *big.Int
	USDVND      *big.Int
	LastUpdated uint64
}

// Fresh reports whether the observation is inside the staleness window at
// the given instant.
func (q Quote) Fresh(now time.Time) bool {
	if q.XAUUSD == nil || q.USDVND == nil || q.XAUUSD.Sign() <= 0 || q.USDVND.Sign() <= 0 {
		return false
	}
	age := now.UTC().Unix() - int64(q.LastUpdated)
	return age >= 0 && time.Duration(age)*time.Second <= StalenessWindow
}

// ChiUSD converts the per-ounce gold price into USD per chi, 1e18 scaled,
// truncating the division.
func (q Quote) ChiUSD() *big.Int {
	if q.XAUUSD == nil {
		return big.NewInt(0)
	}
	out := new(big.Int).Mul(q.XAUUSD, big.NewInt(chiMicrograms))
	return out.Quo(out, big.NewInt(troyOunceMicrograms))
}

// ChiVND converts the chi price into VND, 1e18 scaled, truncating.
func (q Quote) ChiVND() *big.Int {
	if q.USDVND == nil {
		return big.NewInt(0)
	}
	out := new(big.Int).Mul(q.ChiUSD(), q.USDVND)
	return out.Quo(out, oneE18)
}

// Source yields the latest observation for consumers of the price feed.
type Source interface {
	Quote() (Quote, error)
}

// Feeder stores pushed price observations and serves them to the ledger.
type Feeder struct {
	st      *state.Manager
	feeder  [20]byte
	emitter events.Emitter
	now     func() time.Time
}

// NewFeeder constructs a feeder whose update capability is held by feeder.
func NewFeeder(st *state.Manager, feeder [20]byte) *Feeder {
	return &Feeder{st: st, feeder: feeder, emitter: events.NoopEmitter{}, now: time.Now}
}

// SetEmitter wires the downstream event emitter.
func (f *Feeder) SetEmitter(emitter events.Emitter) {
	if f == nil || emitter == nil {
		return
	}
	f.emitter = emitter
}

// SetClock overrides the time source, primarily for deterministic testing.
func (f *Feeder) SetClock(clock func() time.Time) {
	if f == nil || clock == nil {
		return
	}
	f.now = clock
}

// UpdatePrice records a new observation. Both values must be strictly
// positive.
func (f *Feeder) UpdatePrice(caller [20]byte, xauUSD, usdVND *big.Int) error {
	if caller != f.feeder {
		return ErrUnauthorized
	}
	if xauUSD == nil || usdVND == nil || xauUSD.Sign() <= 0 || usdVND.Sign() <= 0 {
		return ErrInvalidPrice
	}
	quote := &state.PriceQuote{
		XAUUSD:      new(big.Int).Set(xauUSD),
		USDVND:      new(big.Int).Set(usdVND),
		LastUpdated: uint64(f.now().UTC().Unix()),
	}
	if err := f.st.SetPriceQuote(quote); err != nil {
		return err
	}
	f.emitter.Emit(events.PriceUpdated{
		XAUUSD:      new(big.Int).Set(quote.XAUUSD),
		USDVND:      new(big.Int).Set(quote.USDVND),
		LastUpdated: quote.LastUpdated,
	})
	return nil
}

// Quote returns the latest stored observation.
func (f *Feeder) Quote() (Quote, error) {
	stored, ok, err := f.st.PriceQuote()
	if err != nil {
		return Quote{}, err
	}
	if !ok {
		return Quote{}, ErrNoQuote
	}
	return Quote{
		XAUUSD:      new(big.Int).Set(stored.XAUUSD),
		USDVND:      new(big.Int).Set(stored.USDVND),
		LastUpdated: stored.LastUpdated,
	}, nil
}
