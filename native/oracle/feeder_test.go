package oracle

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"hdgold/core/state"
	"hdgold/storage"
)

func mustBig(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		t.Fatalf("invalid big integer literal %q", s)
	}
	return v
}

func testAddr(b byte) [20]byte {
	var a [20]byte
	a[19] = b
	return a
}

func newTestFeeder(t *testing.T) (*Feeder, [20]byte, *time.Time) {
	t.Helper()
	feederAddr := testAddr(1)
	f := NewFeeder(state.NewManager(storage.NewMemDB()), feederAddr)
	now := time.Unix(1_700_000_000, 0).UTC()
	f.SetClock(func() time.Time { return now })
	return f, feederAddr, &now
}

func TestUpdatePriceAuthorization(t *testing.T) {
	f, feederAddr, _ := newTestFeeder(t)
	xau := mustBig(t, "3110347700000000000000")
	vnd := mustBig(t, "24000000000000000000000")

	if err := f.UpdatePrice(testAddr(9), xau, vnd); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if err := f.UpdatePrice(feederAddr, big.NewInt(0), vnd); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("err = %v, want ErrInvalidPrice", err)
	}
	if err := f.UpdatePrice(feederAddr, xau, big.NewInt(-1)); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("err = %v, want ErrInvalidPrice", err)
	}
	if err := f.UpdatePrice(feederAddr, xau, vnd); err != nil {
		t.Fatalf("update: %v", err)
	}
}

func TestQuoteRoundTrip(t *testing.T) {
	f, feederAddr, now := newTestFeeder(t)
	if _, err := f.Quote(); !errors.Is(err, ErrNoQuote) {
		t.Fatalf("err = %v, want ErrNoQuote", err)
	}

	xau := mustBig(t, "3110347700000000000000")
	vnd := mustBig(t, "24000000000000000000000")
	if err := f.UpdatePrice(feederAddr, xau, vnd); err != nil {
		t.Fatalf("update: %v", err)
	}
	quote, err := f.Quote()
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if quote.XAUUSD.Cmp(xau) != 0 || quote.USDVND.Cmp(vnd) != 0 {
		t.Fatalf("quote %s/%s, want %s/%s", quote.XAUUSD, quote.USDVND, xau, vnd)
	}
	if quote.LastUpdated != uint64(now.Unix()) {
		t.Fatalf("lastUpdated = %d, want %d", quote.LastUpdated, now.Unix())
	}
}

func TestChiConversions(t *testing.T) {
	quote := Quote{
		XAUUSD: mustBig(t, "3110347700000000000000"),
		USDVND: mustBig(t, "24000000000000000000000"),
	}
	// 3.75 g of 31.103477 g/oz gold at $3110.3477/oz is exactly $375.
	if got, want := quote.ChiUSD(), mustBig(t, "375000000000000000000"); got.Cmp(want) != 0 {
		t.Fatalf("chiUSD = %s, want %s", got, want)
	}
	if got, want := quote.ChiVND(), mustBig(t, "9000000000000000000000000"); got.Cmp(want) != 0 {
		t.Fatalf("chiVND = %s, want %s", got, want)
	}
}

func TestChiConversionTruncates(t *testing.T) {
	quote := Quote{XAUUSD: mustBig(t, "2000000000000000000000")}
	// 2000 * 3750000 / 31103477 does not divide evenly.
	want := mustBig(t, "241130597714204106505")
	if got := quote.ChiUSD(); got.Cmp(want) != 0 {
		t.Fatalf("chiUSD = %s, want %s", got, want)
	}
}

func TestFreshness(t *testing.T) {
	base := time.Unix(1_700_000_000, 0).UTC()
	quote := Quote{
		XAUUSD:      big.NewInt(1),
		USDVND:      big.NewInt(1),
		LastUpdated: uint64(base.Unix()),
	}
	if !quote.Fresh(base) {
		t.Fatalf("quote stale at its own timestamp")
	}
	if !quote.Fresh(base.Add(StalenessWindow)) {
		t.Fatalf("quote stale exactly at the window boundary")
	}
	if quote.Fresh(base.Add(StalenessWindow + time.Second)) {
		t.Fatalf("quote fresh past the window")
	}
	if quote.Fresh(base.Add(-time.Second)) {
		t.Fatalf("future-dated quote reported fresh")
	}
	if (Quote{LastUpdated: quote.LastUpdated}).Fresh(base) {
		t.Fatalf("quote with no prices reported fresh")
	}
}
