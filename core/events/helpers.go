package events

import (
	"math/big"

	"hdgold/crypto"
)

func formatAmount(amount *big.Int) string {
	if amount == nil {
		return "0"
	}
	return amount.String()
}

func formatAddress(addr [20]byte) string {
	return crypto.MustNewAddress(crypto.HDGPrefix, addr[:]).String()
}

func zeroAddress(addr [20]byte) bool {
	for _, b := range addr {
		if b != 0 {
			return false
		}
	}
	return true
}
