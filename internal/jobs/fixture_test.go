package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"homeboard/internal/models"
	"homeboard/internal/services"
	"homeboard/internal/storage"
	"homeboard/internal/structures"
	"homeboard/internal/testutil"
)

var testNow = time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC)

type fixture struct {
	store    *storage.MemoryStore
	state    *services.StateService
	settings *services.SettingsService
	notifier *testutil.MockNotifier
	logger   *testutil.MockLogger
	metrics  *testutil.MockMetrics
	clock    *testutil.FixedClock
}

func newFixture() *fixture {
	f := &fixture{
		store:    storage.NewMemoryStore(),
		notifier: &testutil.MockNotifier{},
		logger:   &testutil.MockLogger{},
		metrics:  testutil.NewMockMetrics(),
		clock:    testutil.NewFixedClock(testNow),
	}
	f.state = services.NewStateService(f.store, f.notifier, testutil.StaticIdentity("device-1"),
		testutil.NewMockCache(), f.metrics, f.logger, f.clock.Clock())
	f.settings = services.NewSettingsService(f.store, &structures.Config{}, f.logger)
	return f
}

// seed stores the default document and returns it.
func (f *fixture) seed(t *testing.T) models.SharedState {
	t.Helper()
	doc, err := f.state.Current(context.Background())
	require.NoError(t, err)
	return doc
}
