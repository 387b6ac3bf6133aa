package jobs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homeboard/internal/models"
	"homeboard/internal/testutil"
)

func noteOf(s string) models.StatePatch { return models.StatePatch{Note: &s} }

func TestFileManager_SaveToFile_WritesEnvelope(t *testing.T) {
	f := newFixture()
	f.seed(t)
	_, err := f.state.Update(context.Background(), noteOf("Dinner at 6"))
	require.NoError(t, err)

	comp, err := NewZstdCompressor()
	require.NoError(t, err)
	fm := NewFileManager(comp, f.state, f.logger, f.clock.Clock())

	path := filepath.Join(t.TempDir(), "nested", "state.bak")
	require.NoError(t, fm.SaveToFile(context.Background(), path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	plain, err := comp.Decompress(raw)
	require.NoError(t, err)

	var b Backup
	require.NoError(t, json.Unmarshal(plain, &b))
	assert.Equal(t, backupVersion, b.Version)
	assert.True(t, b.SavedAt.Equal(testNow))
	assert.Equal(t, "Dinner at 6", b.State.Note)
}

func TestFileManager_SaveToFile_NoTmpLeft(t *testing.T) {
	f := newFixture()
	f.seed(t)
	fm := NewFileManager(&testutil.MockCompressor{}, f.state, f.logger, f.clock.Clock())

	path := filepath.Join(t.TempDir(), "state.bak")
	require.NoError(t, fm.SaveToFile(context.Background(), path))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestFileManager_SaveToFile_CompressError(t *testing.T) {
	f := newFixture()
	f.seed(t)
	comp := &testutil.MockCompressor{CompressFn: func([]byte) ([]byte, error) {
		return nil, errors.New("boom")
	}}
	fm := NewFileManager(comp, f.state, f.logger, f.clock.Clock())

	path := filepath.Join(t.TempDir(), "state.bak")
	assert.Error(t, fm.SaveToFile(context.Background(), path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFileManager_LoadFromFile_Missing(t *testing.T) {
	f := newFixture()
	fm := NewFileManager(&testutil.MockCompressor{}, f.state, f.logger, f.clock.Clock())

	restored, err := fm.LoadFromFile(context.Background(), filepath.Join(t.TempDir(), "absent.bak"))
	assert.NoError(t, err)
	assert.False(t, restored)
}

func TestFileManager_RoundTripIntoEmptyStore(t *testing.T) {
	src := newFixture()
	src.seed(t)
	_, err := src.state.Update(context.Background(), noteOf("from backup"))
	require.NoError(t, err)

	comp, err := NewZstdCompressor()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "state.bak")
	require.NoError(t, NewFileManager(comp, src.state, src.logger, src.clock.Clock()).SaveToFile(context.Background(), path))

	dst := newFixture()
	restored, err := NewFileManager(comp, dst.state, dst.logger, dst.clock.Clock()).LoadFromFile(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, restored)

	doc, err := dst.store.LoadState(context.Background())
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "from backup", doc.Note)
}

func TestFileManager_LoadFromFile_DoesNotOverwrite(t *testing.T) {
	f := newFixture()
	f.seed(t)
	_, err := f.state.Update(context.Background(), noteOf("live"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "state.bak")
	data, err := json.Marshal(Backup{Version: 1, State: models.DefaultState(testNow)})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	fm := NewFileManager(&testutil.MockCompressor{}, f.state, f.logger, f.clock.Clock())
	restored, err := fm.LoadFromFile(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, restored)

	doc, err := f.state.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "live", doc.Note)
}

func TestFileManager_LoadFromFile_BareDocument(t *testing.T) {
	f := newFixture()
	path := filepath.Join(t.TempDir(), "legacy.bak")
	require.NoError(t, os.WriteFile(path, []byte(`{"note":"legacy","modules":{"calendar":true}}`), 0o644))

	fm := NewFileManager(&testutil.MockCompressor{}, f.state, f.logger, f.clock.Clock())
	restored, err := fm.LoadFromFile(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, restored)
	assert.True(t, f.logger.Has("warn", "no envelope"))

	doc, err := f.state.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "legacy", doc.Note)
	assert.True(t, doc.Modules[models.ModuleCalendar])
	assert.Equal(t, models.DefaultTheme, doc.Theme)
}

func TestFileManager_LoadFromFile_Corrupted(t *testing.T) {
	f := newFixture()
	path := filepath.Join(t.TempDir(), "corrupt.bak")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	fm := NewFileManager(&testutil.MockCompressor{}, f.state, f.logger, f.clock.Clock())
	_, err := fm.LoadFromFile(context.Background(), path)
	assert.Error(t, err)

	stored, err := f.store.LoadState(context.Background())
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestFileManager_LoadFromFile_NewerVersion(t *testing.T) {
	f := newFixture()
	path := filepath.Join(t.TempDir(), "future.bak")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":99,"state":{"note":"x"}}`), 0o644))

	fm := NewFileManager(&testutil.MockCompressor{}, f.state, f.logger, f.clock.Clock())
	_, err := fm.LoadFromFile(context.Background(), path)
	assert.ErrorContains(t, err, "newer")
}

func TestFileManager_LoadFromFile_DecompressError(t *testing.T) {
	f := newFixture()
	path := filepath.Join(t.TempDir(), "state.bak")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	comp := &testutil.MockCompressor{DecompressFn: func([]byte) ([]byte, error) {
		return nil, errors.New("bad frame")
	}}
	fm := NewFileManager(comp, f.state, f.logger, f.clock.Clock())
	_, err := fm.LoadFromFile(context.Background(), path)
	assert.ErrorContains(t, err, "bad frame")
}
