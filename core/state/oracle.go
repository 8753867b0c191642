package state

import "math/big"

// PriceQuote is the stored oracle observation: gold in USD per troy ounce and
// VND per USD, both 1e18 scaled, plus the unix time of the observation.
type PriceQuote struct {
	XAUUSD      *big.Int
	USDVND      *big.Int
	LastUpdated uint64
}

// PriceQuote loads the latest stored observation.
func (m *Manager) PriceQuote() (*PriceQuote, bool, error) {
	quote := new(PriceQuote)
	ok, err := m.KVGet(oracleQuoteKey, quote)
	if err != nil || !ok {
		return nil, false, err
	}
	return quote, true, nil
}

// SetPriceQuote stores the observation.
func (m *Manager) SetPriceQuote(quote *PriceQuote) error {
	return m.KVPut(oracleQuoteKey, quote)
}
