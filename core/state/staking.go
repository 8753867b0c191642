package state

import "math/big"

// StakePosition is the per-account staking record. A position with zero
// amount and drained accumulators is dormant and removed from storage.
type StakePosition struct {
	Amount     *big.Int
	LastUpdate uint64
	RewardUSDT *big.Int
	RewardSOVI *big.Int
}

func (p *StakePosition) normalize() {
	if p.Amount == nil {
		p.Amount = big.NewInt(0)
	}
	if p.RewardUSDT == nil {
		p.RewardUSDT = big.NewInt(0)
	}
	if p.RewardSOVI == nil {
		p.RewardSOVI = big.NewInt(0)
	}
}

// Dormant reports whether the position carries no stake and no unpaid reward.
func (p *StakePosition) Dormant() bool {
	p.normalize()
	return p.Amount.Sign() == 0 && p.RewardUSDT.Sign() == 0 && p.RewardSOVI.Sign() == 0
}

// StakingGlobal carries the engine-wide counters and rates.
type StakingGlobal struct {
	TotalStaked    *big.Int
	RewardRateUSDT *big.Int
	RewardRateSOVI *big.Int
}

func (g *StakingGlobal) normalize() {
	if g.TotalStaked == nil {
		g.TotalStaked = big.NewInt(0)
	}
	if g.RewardRateUSDT == nil {
		g.RewardRateUSDT = big.NewInt(0)
	}
	if g.RewardRateSOVI == nil {
		g.RewardRateSOVI = big.NewInt(0)
	}
}

func stakeKey(addr [20]byte) []byte {
	return append(append([]byte{}, stakePrefix...), addr[:]...)
}

// StakePosition loads the staking record for addr, returning a zeroed
// position when none is stored.
func (m *Manager) StakePosition(addr [20]byte) (*StakePosition, error) {
	pos := new(StakePosition)
	ok, err := m.KVGet(stakeKey(addr), pos)
	if err != nil {
		return nil, err
	}
	if !ok {
		pos = &StakePosition{}
	}
	pos.normalize()
	return pos, nil
}

// SetStakePosition stores the position, pruning dormant records.
func (m *Manager) SetStakePosition(addr [20]byte, pos *StakePosition) error {
	if pos == nil || pos.Dormant() {
		m.KVDelete(stakeKey(addr))
		return nil
	}
	pos.normalize()
	return m.KVPut(stakeKey(addr), pos)
}

// StakingGlobal loads the engine-wide counters, zeroed when unset.
func (m *Manager) StakingGlobal() (*StakingGlobal, error) {
	global := new(StakingGlobal)
	ok, err := m.KVGet(stakeGlobalKey, global)
	if err != nil {
		return nil, err
	}
	if !ok {
		global = &StakingGlobal{}
	}
	global.normalize()
	return global, nil
}

// SetStakingGlobal stores the engine-wide counters.
func (m *Manager) SetStakingGlobal(global *StakingGlobal) error {
	if global == nil {
		global = &StakingGlobal{}
	}
	global.normalize()
	return m.KVPut(stakeGlobalKey, global)
}
