package services

import (
	"errors"
	"fmt"

	"github.com/kelsara/sigil/core"
	"github.com/kelsara/sigil/pubsub"
)

// ProfileService authorizes and applies profile mutations, then
// notifies live subscribers. Persistence completes before publication;
// a dropped delivery never rolls the write back.
type ProfileService struct {
	store  core.AccountStore
	broker *pubsub.Broker
	cache  core.Cache // optional, can be nil if caching is disabled
}

func NewProfileService(store core.AccountStore, broker *pubsub.Broker, cache core.Cache) *ProfileService {
	return &ProfileService{store: store, broker: broker, cache: cache}
}

// Get returns the account with the given id.
func (s *ProfileService) Get(id string) (*core.Account, error) {
	account, err := s.store.FindByID(id)
	if err != nil {
		if errors.Is(err, core.ErrAccountNotFound) {
			return nil, core.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return account, nil
}

// Update applies patch to the target account. Self-service only: the
// requester must be the account holder. Returns the re-read account
// and publishes an account-updated event carrying it.
func (s *ProfileService) Update(requester *core.Identity, targetID string, patch core.ProfilePatch) (*core.Account, error) {
	if requester == nil || requester.AccountID != targetID {
		return nil, core.ErrForbidden
	}
	if patch.Empty() {
		return nil, core.ErrEmptyPatch
	}

	if err := s.store.Update(targetID, patch); err != nil {
		if errors.Is(err, core.ErrAccountNotFound) {
			return nil, core.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	account, err := s.store.FindByID(targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload account: %w", err)
	}

	// The resolver cache still holds the pre-update row.
	if s.cache != nil {
		_ = s.cache.Delete(targetID)
	}

	s.broker.Publish(pubsub.Event{
		Topic:   pubsub.TopicAccountUpdated,
		Account: account.Public(),
	})

	return account, nil
}
