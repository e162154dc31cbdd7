package onboarding

import (
	"context"
	"fmt"
)

// CompletedKey is the preference key holding the onboarding flag.
const CompletedKey = "onboarding_completed"

// Store is the slice of the preference repository the tracker needs.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Tracker remembers whether this device finished onboarding.
type Tracker struct {
	store Store
}

func NewTracker(store Store) *Tracker {
	return &Tracker{store: store}
}

func (t *Tracker) IsOnboardingCompleted(ctx context.Context) (bool, error) {
	v, ok, err := t.store.Get(ctx, CompletedKey)
	if err != nil {
		return false, fmt.Errorf("read onboarding flag: %w", err)
	}
	return ok && v == "true", nil
}

func (t *Tracker) CompleteOnboarding(ctx context.Context) error {
	if err := t.store.Set(ctx, CompletedKey, "true"); err != nil {
		return fmt.Errorf("save onboarding flag: %w", err)
	}
	return nil
}

// Reset makes the next launch show onboarding again.
func (t *Tracker) Reset(ctx context.Context) error {
	if err := t.store.Delete(ctx, CompletedKey); err != nil {
		return fmt.Errorf("reset onboarding flag: %w", err)
	}
	return nil
}
