package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"

	"homeboard/internal/jobs/interfaces"
	"homeboard/internal/models"
	"homeboard/internal/providers"
	"homeboard/internal/services"
)

const backupVersion = 1

// Backup is the decompressed content of a backup file.
type Backup struct {
	Version int                `json:"version"`
	SavedAt time.Time          `json:"savedAt"`
	State   models.SharedState `json:"state"`
}

type FileManager struct {
	state      services.StateServiceInterface
	compressor interfaces.CompressorInterface
	logger     providers.Logger
	clock      models.Clock
}

func NewFileManager(compressor interfaces.CompressorInterface, state services.StateServiceInterface, logger providers.Logger, clock models.Clock) *FileManager {
	return &FileManager{
		compressor: compressor,
		state:      state,
		logger:     logger,
		clock:      clock,
	}
}

// Snapshot returns the current document as a compressed backup.
func (f *FileManager) Snapshot(ctx context.Context) ([]byte, error) {
	doc, err := f.state.Current(ctx)
	if err != nil {
		return nil, err
	}
	jsonData, err := json.Marshal(Backup{Version: backupVersion, SavedAt: f.clock().UTC(), State: doc})
	if err != nil {
		return nil, err
	}
	return f.compressor.Compress(jsonData)
}

func (f *FileManager) SaveToFile(ctx context.Context, fileName string) error {
	data, err := f.Snapshot(ctx)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fileName), 0o755); err != nil {
		return err
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

// LoadFromFile seeds the store from fileName when the store has no document.
// A missing file is not an error. It reports whether the backup was applied.
func (f *FileManager) LoadFromFile(ctx context.Context, fileName string) (bool, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	decompressedData, err := f.compressor.Decompress(data)
	if err != nil {
		return false, err
	}

	doc, err := f.decode(decompressedData)
	if err != nil {
		return false, err
	}
	return f.state.Restore(ctx, doc)
}

func (f *FileManager) decode(data []byte) (models.SharedState, error) {
	var envelope struct {
		Version int             `json:"version"`
		State   json.RawMessage `json:"state"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Version > 0 && len(envelope.State) > 0 {
		if envelope.Version > backupVersion {
			return models.SharedState{}, fmt.Errorf("backup version %d is newer than supported %d", envelope.Version, backupVersion)
		}
		return models.DecodeState(envelope.State)
	}

	// Plain document without envelope
	f.logger.Warnf(providers.TypeApp, "Backup has no envelope, reading it as a bare state document")
	return models.DecodeState(data)
}
