package state

// Credential is the stored identity marker for a verified account.
type Credential struct {
	IssuedAt uint64
	URI      string
}

func credentialKey(addr [20]byte) []byte {
	return append(append([]byte{}, credentialPrefix...), addr[:]...)
}

// Credential loads the identity record for addr.
func (m *Manager) Credential(addr [20]byte) (*Credential, bool, error) {
	cred := new(Credential)
	ok, err := m.KVGet(credentialKey(addr), cred)
	if err != nil || !ok {
		return nil, false, err
	}
	return cred, true, nil
}

// SetCredential stores the identity record for addr.
func (m *Manager) SetCredential(addr [20]byte, cred *Credential) error {
	return m.KVPut(credentialKey(addr), cred)
}

// DeleteCredential removes the identity record for addr.
func (m *Manager) DeleteCredential(addr [20]byte) {
	m.KVDelete(credentialKey(addr))
}
