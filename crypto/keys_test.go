package crypto

import (
	"strings"
	"testing"
)

func TestAddressRoundTrip(t *testing.T) {
	raw := make([]byte, 20)
	for i := range raw {
		raw[i] = byte(i + 1)
	}
	addr, err := NewAddress(HDGPrefix, raw)
	if err != nil {
		t.Fatalf("new address: %v", err)
	}
	encoded := addr.String()
	if !strings.HasPrefix(encoded, "hdg1") {
		t.Fatalf("encoded = %q, want hdg1 prefix", encoded)
	}

	decoded, err := DecodeAddress(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Array() != addr.Array() {
		t.Fatalf("round trip mismatch: %x != %x", decoded.Array(), addr.Array())
	}
}

func TestNewAddressRejectsBadLength(t *testing.T) {
	if _, err := NewAddress(HDGPrefix, make([]byte, 19)); err == nil {
		t.Fatalf("expected error for short payload")
	}
	if _, err := NewAddress(HDGPrefix, make([]byte, 32)); err == nil {
		t.Fatalf("expected error for long payload")
	}
}

func TestDecodeAddressRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "hdg1", "not-bech32", "hdg1qqqqqx"} {
		if _, err := DecodeAddress(input); err == nil {
			t.Fatalf("decode %q succeeded, want error", input)
		}
	}
}

func TestModuleAddressIsStable(t *testing.T) {
	vault := ModuleAddress("vault")
	staking := ModuleAddress("staking")
	if vault == staking {
		t.Fatalf("distinct module names map to the same address")
	}
	if vault != ModuleAddress("vault") {
		t.Fatalf("module address not deterministic")
	}
}

func TestKeyDerivesAddress(t *testing.T) {
	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	addr := key.PubKey().Address()
	if _, err := DecodeAddress(addr.String()); err != nil {
		t.Fatalf("derived address does not decode: %v", err)
	}
}
