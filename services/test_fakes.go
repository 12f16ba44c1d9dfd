package services

import (
	"sync"
	"time"

	"github.com/kelsara/sigil/core"
)

// FakeAccountStore is a test-only fake implementing core.AccountStore.
// It stores accounts in maps under one mutex, mirroring the atomicity
// the real adapter gets from the database, and exposes error fields
// for behavior injection.
type FakeAccountStore struct {
	mu        sync.Mutex
	byID      map[string]*core.Account
	byEmail   map[string]string // email -> id
	bySocial  map[string]string // social key -> id
	createErr error
	findErr   error
	updateErr error

	// degenerate forces FindOrCreateBySocialKey to report neither a
	// found nor a created row.
	degenerate bool
}

func NewFakeAccountStore() *FakeAccountStore {
	return &FakeAccountStore{
		byID:     make(map[string]*core.Account),
		byEmail:  make(map[string]string),
		bySocial: make(map[string]string),
	}
}

func (f *FakeAccountStore) CreateIfAbsent(a *core.Account) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return false, f.createErr
	}
	if _, taken := f.byEmail[a.Email]; taken {
		return false, nil
	}

	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now
	stored := *a
	f.byID[a.ID] = &stored
	f.byEmail[a.Email] = a.ID
	if a.SocialKey != "" {
		f.bySocial[a.SocialKey] = a.ID
	}
	return true, nil
}

func (f *FakeAccountStore) FindOrCreateBySocialKey(key string, defaults *core.Account) (*core.Account, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return nil, false, f.createErr
	}
	if f.degenerate {
		return nil, false, nil
	}

	if id, ok := f.bySocial[key]; ok {
		return f.copyLocked(id), false, nil
	}

	now := time.Now()
	defaults.CreatedAt = now
	defaults.UpdatedAt = now
	stored := *defaults
	f.byID[defaults.ID] = &stored
	f.bySocial[key] = defaults.ID
	if defaults.Email != "" {
		f.byEmail[defaults.Email] = defaults.ID
	}
	return f.copyLocked(defaults.ID), true, nil
}

func (f *FakeAccountStore) FindByID(id string) (*core.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	if _, ok := f.byID[id]; !ok {
		return nil, core.ErrAccountNotFound
	}
	return f.copyLocked(id), nil
}

func (f *FakeAccountStore) FindByEmail(email string) (*core.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	id, ok := f.byEmail[email]
	if !ok {
		return nil, core.ErrAccountNotFound
	}
	return f.copyLocked(id), nil
}

func (f *FakeAccountStore) FindBySocialKey(key string) (*core.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	id, ok := f.bySocial[key]
	if !ok {
		return nil, core.ErrAccountNotFound
	}
	return f.copyLocked(id), nil
}

func (f *FakeAccountStore) Update(id string, patch core.ProfilePatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	a, ok := f.byID[id]
	if !ok {
		return core.ErrAccountNotFound
	}
	if patch.Name != nil {
		a.Name = *patch.Name
	}
	if patch.Nickname != nil {
		a.Nickname = *patch.Nickname
	}
	if patch.Photo != nil {
		a.Photo = *patch.Photo
	}
	if patch.Birthday != nil {
		a.Birthday = *patch.Birthday
	}
	if patch.Gender != nil {
		a.Gender = *patch.Gender
	}
	if patch.Phone != nil {
		a.Phone = *patch.Phone
	}
	a.UpdatedAt = time.Now()
	return nil
}

// copyLocked returns a copy of the stored account; callers must hold
// f.mu.
func (f *FakeAccountStore) copyLocked(id string) *core.Account {
	stored := *f.byID[id]
	return &stored
}
