package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/gofrs/uuid/v5"

	"homeboard/internal/models"
	"homeboard/internal/providers"
	"homeboard/internal/storage"
	"homeboard/internal/structures"
)

const (
	pairingCodeLength = 6
	// 32 symbols, no 0/O or 1/I, so a random byte maps onto it without bias.
	pairingAlphabet   = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	tokenSecretLength = 32
)

type SettingsServiceInterface interface {
	PairingCode(ctx context.Context) (string, error)
	DeviceID(ctx context.Context) (string, error)
	TokenSecret(ctx context.Context) ([]byte, error)
	Get(ctx context.Context, key string) (string, error)
	Integrations(ctx context.Context) (models.IntegrationSettings, error)
	SetCalendarURL(ctx context.Context, url string) error
	SetWeatherQuery(ctx context.Context, query string) error
}

// SettingsService owns the generate-once settings (pairing code, device
// identity, signing secret) and the integration source settings.
type SettingsService struct {
	store  storage.Store
	conf   *structures.Config
	logger providers.Logger

	mu     sync.Mutex
	cached map[string]string
}

func NewSettingsService(store storage.Store, conf *structures.Config, logger providers.Logger) *SettingsService {
	return &SettingsService{
		store:  store,
		conf:   conf,
		logger: logger,
		cached: make(map[string]string),
	}
}

// Bootstrap makes sure the pairing code, device id and token secret exist.
func (s *SettingsService) Bootstrap(ctx context.Context) error {
	code, err := s.PairingCode(ctx)
	if err != nil {
		return err
	}
	id, err := s.DeviceID(ctx)
	if err != nil {
		return err
	}
	if _, err := s.TokenSecret(ctx); err != nil {
		return err
	}
	s.logger.Infof(providers.TypeApp, "Pairing code: %s, device id: %s", code, id)
	return nil
}

func (s *SettingsService) PairingCode(ctx context.Context) (string, error) {
	return s.readOrGenerate(ctx, models.SettingPairingCode, newPairingCode)
}

func (s *SettingsService) DeviceID(ctx context.Context) (string, error) {
	return s.readOrGenerate(ctx, models.SettingDeviceID, newDeviceID)
}

// TokenSecret prefers the operator supplied secret over the generated one.
func (s *SettingsService) TokenSecret(ctx context.Context) ([]byte, error) {
	if s.conf.Auth.TokenSecret != "" {
		return []byte(s.conf.Auth.TokenSecret), nil
	}
	secret, err := s.readOrGenerate(ctx, models.SettingTokenSecret, newTokenSecret)
	if err != nil {
		return nil, err
	}
	return []byte(secret), nil
}

// Get returns the value for key or "" when unset.
func (s *SettingsService) Get(ctx context.Context, key string) (string, error) {
	v, _, err := s.store.GetSetting(ctx, key)
	if err != nil {
		return "", fmt.Errorf("get setting %s: %w", key, err)
	}
	return v, nil
}

func (s *SettingsService) Integrations(ctx context.Context) (models.IntegrationSettings, error) {
	var out models.IntegrationSettings
	var err error
	if out.CalendarICSURL, err = s.Get(ctx, models.SettingCalendarICSURL); err != nil {
		return out, err
	}
	if out.WeatherQuery, err = s.Get(ctx, models.SettingWeatherQuery); err != nil {
		return out, err
	}
	if out.LocalPhotoDir, err = s.Get(ctx, models.SettingLocalPhotoDir); err != nil {
		return out, err
	}
	refresh, err := s.Get(ctx, models.SettingGoogleRefreshToken)
	if err != nil {
		return out, err
	}
	out.GooglePhotos = refresh != ""
	return out, nil
}

func (s *SettingsService) SetCalendarURL(ctx context.Context, url string) error {
	return s.set(ctx, models.SettingCalendarICSURL, url)
}

func (s *SettingsService) SetWeatherQuery(ctx context.Context, query string) error {
	return s.set(ctx, models.SettingWeatherQuery, query)
}

func (s *SettingsService) set(ctx context.Context, key, value string) error {
	if err := s.store.SetSetting(ctx, key, value); err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

func (s *SettingsService) readOrGenerate(ctx context.Context, key string, gen func() (string, error)) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.cached[key]; ok {
		return v, nil
	}
	v, found, err := s.store.GetSetting(ctx, key)
	if err != nil {
		return "", fmt.Errorf("get setting %s: %w", key, err)
	}
	if !found || v == "" {
		if v, err = gen(); err != nil {
			return "", fmt.Errorf("generate %s: %w", key, err)
		}
		if err := s.store.SetSetting(ctx, key, v); err != nil {
			return "", fmt.Errorf("set setting %s: %w", key, err)
		}
		s.logger.Infof(providers.TypeApp, "Generated setting %s", key)
	}
	s.cached[key] = v
	return v, nil
}

func newPairingCode() (string, error) {
	buf := make([]byte, pairingCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = pairingAlphabet[int(b)%len(pairingAlphabet)]
	}
	return string(buf), nil
}

func newDeviceID() (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func newTokenSecret() (string, error) {
	buf := make([]byte, tokenSecretLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
