package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"homeboard/internal/errs"
	"homeboard/internal/models"
	"homeboard/internal/providers"
	"homeboard/internal/storage"
)

// StateCacheKey holds the encoded GET /api/state payload.
const StateCacheKey = "state:response"

// Notifier receives documents and events after they are persisted.
type Notifier interface {
	BroadcastState(deviceID string, doc models.SharedState)
	BroadcastEvent(deviceID, name string, payload any)
	BroadcastAll(doc models.SharedState)
}

// DeviceIdentity resolves the server's device id.
type DeviceIdentity interface {
	DeviceID(ctx context.Context) (string, error)
}

// MutateFunc derives a patch from the current document. Returning an error
// aborts the mutation and leaves the stored document untouched.
type MutateFunc func(current models.SharedState) (models.StatePatch, error)

type StateServiceInterface interface {
	Current(ctx context.Context) (models.SharedState, error)
	Encoded(ctx context.Context, encode func(models.SharedState) ([]byte, error)) ([]byte, error)
	Update(ctx context.Context, patch models.StatePatch) (models.SharedState, error)
	ToggleModule(ctx context.Context, module string, enabled bool) (models.SharedState, error)
	UpdateLayout(ctx context.Context, layout models.LayoutPatch) (models.SharedState, error)
	Mutate(ctx context.Context, fn MutateFunc) (models.SharedState, error)
	Restore(ctx context.Context, doc models.SharedState) (bool, error)
}

// StateService serializes every load, merge and save of the shared document.
type StateService struct {
	mu       sync.Mutex
	store    storage.Store
	notifier Notifier
	identity DeviceIdentity
	cache    providers.CacheProviderInterface
	metrics  providers.MetricsProviderInterface
	logger   providers.Logger
	clock    models.Clock
}

func NewStateService(
	store storage.Store,
	notifier Notifier,
	identity DeviceIdentity,
	cache providers.CacheProviderInterface,
	metrics providers.MetricsProviderInterface,
	logger providers.Logger,
	clock models.Clock,
) *StateService {
	return &StateService{
		store:    store,
		notifier: notifier,
		identity: identity,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		clock:    clock,
	}
}

// Current returns the stored document, seeding defaults when none exists.
func (s *StateService) Current(ctx context.Context) (models.SharedState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked(ctx)
}

// Encoded returns the cached read payload, building it with encode from the
// current document on a miss. Saves drop the entry under the same lock, so a
// cached payload never predates the stored document.
func (s *StateService) Encoded(ctx context.Context, encode func(models.SharedState) ([]byte, error)) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if data, ok := s.cache.Get(StateCacheKey); ok {
		return data, nil
	}
	doc, err := s.currentLocked(ctx)
	if err != nil {
		return nil, err
	}
	data, err := encode(doc)
	if err != nil {
		return nil, err
	}
	s.cache.Set(StateCacheKey, data)
	return data, nil
}

func (s *StateService) currentLocked(ctx context.Context) (models.SharedState, error) {
	doc, err := s.store.LoadState(ctx)
	if err != nil {
		return models.SharedState{}, fmt.Errorf("load state: %w", err)
	}
	if doc != nil {
		return *doc, nil
	}

	seeded := models.DefaultState(s.clock())
	if err := s.save(ctx, seeded); err != nil {
		return models.SharedState{}, err
	}
	s.logger.Infof(providers.TypeApp, "Seeded default state document")
	return seeded, nil
}

// Update merges patch into the stored document and pushes the result to the
// device's displays. The broadcast runs under the same lock as the save so
// displays receive snapshots in save order.
func (s *StateService) Update(ctx context.Context, patch models.StatePatch) (models.SharedState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.applyLocked(ctx, func(models.SharedState) (models.StatePatch, error) {
		return patch, nil
	})
	if err != nil {
		return next, err
	}
	s.notifyDevice(ctx, next)
	return next, nil
}

func (s *StateService) ToggleModule(ctx context.Context, module string, enabled bool) (models.SharedState, error) {
	if !models.IsKnownModule(module) {
		return models.SharedState{}, fmt.Errorf("%w: unknown module %q", errs.ErrValidation, module)
	}
	return s.Update(ctx, models.StatePatch{Modules: map[string]bool{module: enabled}})
}

func (s *StateService) UpdateLayout(ctx context.Context, layout models.LayoutPatch) (models.SharedState, error) {
	return s.Update(ctx, models.StatePatch{Layout: &layout})
}

// Mutate applies a patch computed from the current document and pushes the
// result to every connected identity. Used by background sync.
func (s *StateService) Mutate(ctx context.Context, fn MutateFunc) (models.SharedState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.applyLocked(ctx, fn)
	if err != nil {
		return next, err
	}
	s.notifier.BroadcastAll(next)
	return next, nil
}

// Restore saves doc only when the store has no document yet. It reports
// whether doc was written.
func (s *StateService) Restore(ctx context.Context, doc models.SharedState) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.store.LoadState(ctx)
	if err != nil {
		return false, fmt.Errorf("load state: %w", err)
	}
	if current != nil {
		return false, nil
	}
	if err := s.save(ctx, models.EnsureDefaults(doc)); err != nil {
		return false, err
	}
	return true, nil
}

func (s *StateService) applyLocked(ctx context.Context, fn MutateFunc) (models.SharedState, error) {
	current, err := s.store.LoadState(ctx)
	if err != nil {
		return models.SharedState{}, fmt.Errorf("load state: %w", err)
	}
	if current == nil {
		return models.SharedState{}, errs.ErrStateMissing
	}

	patch, err := fn(*current)
	if err != nil {
		return models.SharedState{}, err
	}

	next := models.Merge(*current, patch, s.clock())
	if err := s.save(ctx, next); err != nil {
		return models.SharedState{}, err
	}
	return next, nil
}

func (s *StateService) save(ctx context.Context, doc models.SharedState) error {
	start := time.Now()
	err := s.store.SaveState(ctx, doc)
	s.metrics.ObservePersistenceDuration(time.Since(start))
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	s.cache.Delete(StateCacheKey)
	return nil
}

// notifyDevice runs after the save with s.mu held; failures are logged, never returned.
func (s *StateService) notifyDevice(ctx context.Context, doc models.SharedState) {
	id, err := s.identity.DeviceID(ctx)
	if err != nil {
		s.logger.Errorf(providers.TypePush, "skip state broadcast: %v", err)
		return
	}
	s.notifier.BroadcastState(id, doc)
}
