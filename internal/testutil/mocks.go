package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"homeboard/internal/models"
	"homeboard/internal/providers"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (e LogEntry) Message() string {
	return fmt.Sprintf(e.Format, e.Args...)
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Has reports whether a message at level containing substr was logged.
func (m *MockLogger) Has(level, substr string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Logs {
		if e.Level == level && strings.Contains(e.Message(), substr) {
			return true
		}
	}
	return false
}

// MockMetrics implements providers.MetricsProviderInterface.
type MockMetrics struct {
	mu          sync.Mutex
	Subscribers int
	Delivered   map[string]int
	Evicted     map[string]int
	SyncRuns    map[string]int // key: "job:result"
	CacheHits   int
	CacheMisses int
	Persisted   int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		Delivered: make(map[string]int),
		Evicted:   make(map[string]int),
		SyncRuns:  make(map[string]int),
	}
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Persisted++
}

func (m *MockMetrics) SetSubscribers(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Subscribers = count
}

func (m *MockMetrics) AddBroadcasts(event string, delivered, evicted int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Delivered[event] += delivered
	m.Evicted[event] += evicted
}

func (m *MockMetrics) IncSyncRuns(job, result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SyncRuns[job+":"+result]++
}

func (m *MockMetrics) Runs(job, result string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.SyncRuns[job+":"+result]
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu      sync.Mutex
	Data    map[string][]byte
	Deletes int
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockCache) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Data, key)
	m.Deletes++
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

// NotifierCall is one recorded broadcast.
type NotifierCall struct {
	Kind     string // "state", "event" or "all"
	DeviceID string
	Name     string
	Payload  any
	State    models.SharedState
}

// MockNotifier records broadcasts instead of sending them.
type MockNotifier struct {
	mu    sync.Mutex
	Calls []NotifierCall
}

func (m *MockNotifier) BroadcastState(deviceID string, doc models.SharedState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, NotifierCall{Kind: "state", DeviceID: deviceID, Name: "state", State: doc.Clone()})
}

func (m *MockNotifier) BroadcastEvent(deviceID, name string, payload any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, NotifierCall{Kind: "event", DeviceID: deviceID, Name: name, Payload: payload})
}

func (m *MockNotifier) BroadcastAll(doc models.SharedState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, NotifierCall{Kind: "all", Name: "state", State: doc.Clone()})
}

func (m *MockNotifier) Snapshot() []NotifierCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]NotifierCall, len(m.Calls))
	copy(out, m.Calls)
	return out
}

// StaticIdentity resolves to a fixed device id.
type StaticIdentity string

func (s StaticIdentity) DeviceID(context.Context) (string, error) {
	return string(s), nil
}

// FixedClock returns a models.Clock pinned to t; Advance moves it.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{now: t}
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *FixedClock) Clock() models.Clock {
	return c.Now
}
