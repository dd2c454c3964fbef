package provider

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type memoryProvider struct {
	mu      sync.RWMutex
	tokens  map[string]Identity
	byPhone map[string]Account
	byUID   map[string]Account
}

// NewMemory builds an in-memory provider for development and testing.
// Accounts and tokens are registered through the Memory handle.
func NewMemory() *Memory {
	return &Memory{inner: &memoryProvider{
		tokens:  make(map[string]Identity),
		byPhone: make(map[string]Account),
		byUID:   make(map[string]Account),
	}}
}

// Memory wraps the in-memory provider with seeding helpers.
type Memory struct {
	inner *memoryProvider
}

// RegisterAccount adds or replaces an account in the fake provider.
func (m *Memory) RegisterAccount(acc Account) {
	m.inner.mu.Lock()
	defer m.inner.mu.Unlock()
	if acc.PhoneNumber != "" {
		m.inner.byPhone[acc.PhoneNumber] = acc
	}
	m.inner.byUID[acc.UID] = acc
}

// RegisterToken makes token verify to the given identity.
func (m *Memory) RegisterToken(token string, id Identity) {
	m.inner.mu.Lock()
	defer m.inner.mu.Unlock()
	m.inner.tokens[token] = id
}

// RemoveAccount deletes an account, leaving any issued tokens dangling.
func (m *Memory) RemoveAccount(uid string) {
	m.inner.mu.Lock()
	defer m.inner.mu.Unlock()
	if acc, ok := m.inner.byUID[uid]; ok {
		delete(m.inner.byPhone, acc.PhoneNumber)
		delete(m.inner.byUID, uid)
	}
}

func (m *Memory) VerifyToken(_ context.Context, token string) (Identity, error) {
	m.inner.mu.RLock()
	defer m.inner.mu.RUnlock()
	id, ok := m.inner.tokens[token]
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	return id, nil
}

func (m *Memory) LookupByPhone(_ context.Context, phoneNumber string) (Account, error) {
	m.inner.mu.RLock()
	defer m.inner.mu.RUnlock()
	acc, ok := m.inner.byPhone[phoneNumber]
	if !ok {
		return Account{}, ErrNotFound
	}
	return acc, nil
}

func (m *Memory) LookupByUID(_ context.Context, uid string) (Account, error) {
	m.inner.mu.RLock()
	defer m.inner.mu.RUnlock()
	acc, ok := m.inner.byUID[uid]
	if !ok {
		return Account{}, ErrNotFound
	}
	return acc, nil
}

func (m *Memory) MintCredential(_ context.Context, uid string) (string, error) {
	m.inner.mu.RLock()
	defer m.inner.mu.RUnlock()
	if _, ok := m.inner.byUID[uid]; !ok {
		return "", ErrNotFound
	}
	return "cred-" + uuid.NewString(), nil
}
