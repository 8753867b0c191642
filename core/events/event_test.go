package events

import (
	"math/big"
	"testing"
)

func testAddr(b byte) [20]byte {
	var a [20]byte
	a[19] = b
	return a
}

func TestVaultMintedRendering(t *testing.T) {
	evt := VaultMinted{
		Account: testAddr(1),
		Chi:     big.NewInt(2_000_000),
		USDT:    big.NewInt(750_000_000),
	}.Event()
	if evt.Type != TypeVaultMinted {
		t.Fatalf("type = %s, want %s", evt.Type, TypeVaultMinted)
	}
	if evt.Attributes["chi"] != "2000000" || evt.Attributes["usdt"] != "750000000" {
		t.Fatalf("attributes = %v", evt.Attributes)
	}
	if evt.Attributes["addr"] == "" {
		t.Fatalf("missing addr attribute")
	}
}

func TestTokenTransferOmitsZeroSides(t *testing.T) {
	mint := TokenTransfer{Token: "usdt", To: testAddr(1), Amount: big.NewInt(5)}.Event()
	if _, ok := mint.Attributes["from"]; ok {
		t.Fatalf("mint carries from attribute: %v", mint.Attributes)
	}
	if mint.Attributes["token"] != "USDT" {
		t.Fatalf("token = %q, want USDT", mint.Attributes["token"])
	}

	burn := TokenTransfer{Token: "SOVI", From: testAddr(1), Amount: big.NewInt(5)}.Event()
	if _, ok := burn.Attributes["to"]; ok {
		t.Fatalf("burn carries to attribute: %v", burn.Attributes)
	}
}

func TestRecorderBuffersUntilDrain(t *testing.T) {
	r := &Recorder{}
	r.Emit(StakingStaked{Account: testAddr(1), Amount: big.NewInt(10)})
	r.Emit(StakingStaked{Account: testAddr(2), Amount: big.NewInt(20)})

	drained := r.Drain()
	if len(drained) != 2 {
		t.Fatalf("drained %d events, want 2", len(drained))
	}
	if got := r.Drain(); len(got) != 0 {
		t.Fatalf("second drain returned %d events, want 0", len(got))
	}

	r.Emit(StakingStaked{Account: testAddr(3), Amount: big.NewInt(30)})
	r.Discard()
	if got := r.Drain(); len(got) != 0 {
		t.Fatalf("drain after discard returned %d events", len(got))
	}
}

func TestNilAmountRendersZero(t *testing.T) {
	evt := StakingUnstaked{Account: testAddr(1), Amount: big.NewInt(1)}.Event()
	if evt.Attributes["usdtPaid"] != "0" || evt.Attributes["soviPaid"] != "0" {
		t.Fatalf("nil payouts rendered as %v", evt.Attributes)
	}
}
