package state

import (
	"errors"
	"fmt"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"hdgold/storage"
)

// Manager provides typed access to ledger state stored in a key-value
// database. Writes land in a pending overlay first; Commit flushes the
// overlay while Reset discards it, which gives every public operation
// all-or-nothing semantics without the backend needing transactions.
type Manager struct {
	db      storage.Database
	pending map[string]pendingWrite
}

type pendingWrite struct {
	value   []byte
	deleted bool
}

// NewManager creates a state manager operating on the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db, pending: make(map[string]pendingWrite)}
}

var (
	tokenPrefix      = []byte("token:")
	balancePrefix    = []byte("balance:")
	supplyPrefix     = []byte("supply:")
	allowancePrefix  = []byte("allowance:")
	rolePrefix       = []byte("role:")
	credentialPrefix = []byte("kyc:")
	stakePrefix      = []byte("stake:")
	stakeGlobalKey   = []byte("stake-global")
	oracleQuoteKey   = []byte("oracle-quote")
)

func hashKey(parts ...[]byte) []byte {
	size := 0
	for _, part := range parts {
		size += len(part)
	}
	buf := make([]byte, 0, size)
	for _, part := range parts {
		buf = append(buf, part...)
	}
	return ethcrypto.Keccak256(buf)
}

func balanceKey(symbol string, addr [20]byte) []byte {
	return hashKey(balancePrefix, []byte(symbol), []byte{':'}, addr[:])
}

func allowanceKey(symbol string, owner, spender [20]byte) []byte {
	return hashKey(allowancePrefix, []byte(symbol), []byte{':'}, owner[:], spender[:])
}

// --- raw overlay access ---

func (m *Manager) rawGet(key []byte) ([]byte, bool, error) {
	if entry, ok := m.pending[string(key)]; ok {
		if entry.deleted {
			return nil, false, nil
		}
		return entry.value, true, nil
	}
	value, err := m.db.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (m *Manager) rawPut(key, value []byte) {
	m.pending[string(key)] = pendingWrite{value: value}
}

func (m *Manager) rawDelete(key []byte) {
	m.pending[string(key)] = pendingWrite{deleted: true}
}

// Commit flushes the pending overlay to the backing database.
func (m *Manager) Commit() error {
	for key, entry := range m.pending {
		if entry.deleted {
			if err := m.db.Delete([]byte(key)); err != nil {
				return err
			}
			continue
		}
		if err := m.db.Put([]byte(key), entry.value); err != nil {
			return err
		}
	}
	m.pending = make(map[string]pendingWrite)
	return nil
}

// Reset discards the pending overlay, undoing every write since the last
// Commit.
func (m *Manager) Reset() {
	m.pending = make(map[string]pendingWrite)
}

// Dirty reports whether uncommitted writes exist.
func (m *Manager) Dirty() bool {
	return len(m.pending) > 0
}

// --- generic RLP records ---

// KVGet decodes the record stored under key into out, reporting whether the
// record exists.
func (m *Manager) KVGet(key []byte, out interface{}) (bool, error) {
	data, ok, err := m.rawGet(hashKey(key))
	if err != nil || !ok {
		return false, err
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, fmt.Errorf("state: decode %q: %w", key, err)
	}
	return true, nil
}

// KVPut stores value under key in RLP encoding.
func (m *Manager) KVPut(key []byte, value interface{}) error {
	data, err := rlp.EncodeToBytes(value)
	if err != nil {
		return fmt.Errorf("state: encode %q: %w", key, err)
	}
	m.rawPut(hashKey(key), data)
	return nil
}

// KVDelete removes the record stored under key.
func (m *Manager) KVDelete(key []byte) {
	m.rawDelete(hashKey(key))
}

// --- token records ---

// TokenMetadata describes a registered fungible asset.
type TokenMetadata struct {
	Symbol        string
	Name          string
	Decimals      uint8
	MintAuthority [20]byte
	Transferable  bool
}

func tokenKey(symbol string) []byte {
	return append(append([]byte{}, tokenPrefix...), symbol...)
}

// Token loads the metadata registered for symbol.
func (m *Manager) Token(symbol string) (*TokenMetadata, bool, error) {
	meta := new(TokenMetadata)
	ok, err := m.KVGet(tokenKey(symbol), meta)
	if err != nil || !ok {
		return nil, false, err
	}
	return meta, true, nil
}

// SetToken registers or replaces token metadata.
func (m *Manager) SetToken(meta *TokenMetadata) error {
	if meta == nil || meta.Symbol == "" {
		return fmt.Errorf("state: token metadata requires a symbol")
	}
	return m.KVPut(tokenKey(meta.Symbol), meta)
}

// Balance returns the stored balance, zero when absent.
func (m *Manager) Balance(symbol string, addr [20]byte) (*big.Int, error) {
	data, ok, err := m.rawGet(balanceKey(symbol, addr))
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return new(big.Int).SetBytes(data), nil
}

// SetBalance stores the balance, deleting the record when it reaches zero.
func (m *Manager) SetBalance(symbol string, addr [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("state: balance must be non-negative")
	}
	key := balanceKey(symbol, addr)
	if amount.Sign() == 0 {
		m.rawDelete(key)
		return nil
	}
	m.rawPut(key, amount.Bytes())
	return nil
}

// Supply returns the recorded total supply for symbol, zero when absent.
func (m *Manager) Supply(symbol string) (*big.Int, error) {
	data, ok, err := m.rawGet(hashKey(supplyPrefix, []byte(symbol)))
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return new(big.Int).SetBytes(data), nil
}

// SetSupply stores the total supply for symbol.
func (m *Manager) SetSupply(symbol string, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("state: supply must be non-negative")
	}
	m.rawPut(hashKey(supplyPrefix, []byte(symbol)), amount.Bytes())
	return nil
}

// Allowance returns the spend allowance granted by owner to spender.
func (m *Manager) Allowance(symbol string, owner, spender [20]byte) (*big.Int, error) {
	data, ok, err := m.rawGet(allowanceKey(symbol, owner, spender))
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return new(big.Int).SetBytes(data), nil
}

// SetAllowance stores the allowance, deleting the record at zero.
func (m *Manager) SetAllowance(symbol string, owner, spender [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("state: allowance must be non-negative")
	}
	key := allowanceKey(symbol, owner, spender)
	if amount.Sign() == 0 {
		m.rawDelete(key)
		return nil
	}
	m.rawPut(key, amount.Bytes())
	return nil
}

// --- roles ---

// Role resolves the single address holding the named capability.
func (m *Manager) Role(name string) ([20]byte, bool, error) {
	var addr [20]byte
	data, ok, err := m.rawGet(hashKey(rolePrefix, []byte(name)))
	if err != nil || !ok {
		return addr, false, err
	}
	copy(addr[:], data)
	return addr, true, nil
}

// SetRole records the address holding the named capability.
func (m *Manager) SetRole(name string, addr [20]byte) {
	m.rawPut(hashKey(rolePrefix, []byte(name)), append([]byte(nil), addr[:]...))
}
