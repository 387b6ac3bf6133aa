package providers

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"homeboard/internal/structures"
)

const AppName = "Homeboard"

func setDefaults(v *viper.Viper) {
	v.SetDefault("webServer.host", "0.0.0.0")
	v.SetDefault("webServer.port", 8787)
	v.SetDefault("storage.path", "data/homeboard.db")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", 0o644)
	v.SetDefault("logger.dir", "logs")
	v.SetDefault("auth.tokenTTL", 30*24*time.Hour)
	v.SetDefault("push.heartbeat", 25*time.Second)
	v.SetDefault("push.bufferSize", 32)
	v.SetDefault("sync.interval", 15*time.Minute)
	v.SetDefault("sync.fetchTimeout", 20*time.Second)
	v.SetDefault("sync.weatherURL", "https://wttr.in")
	v.SetDefault("sync.units", "imperial")
	v.SetDefault("backup.enabled", true)
	v.SetDefault("backup.filePath", "data/state.backup.zst")
	v.SetDefault("backup.saveInterval", time.Hour)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.size", 4)
	v.SetDefault("cache.ttl", 60)
	v.SetDefault("metrics.enabled", false)
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	setDefaults(v)

	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	_ = v.BindEnv("logger.level", "HOMEBOARD_LOG_LEVEL")
	_ = v.BindEnv("webServer.port", "HOMEBOARD_PORT")
	_ = v.BindEnv("storage.path", "HOMEBOARD_DB_PATH")
	_ = v.BindEnv("auth.tokenSecret", "HOMEBOARD_TOKEN_SECRET")
	_ = v.BindEnv("sync.interval", "HOMEBOARD_SYNC_INTERVAL")
	_ = v.BindEnv("cache.enabled", "HOMEBOARD_CACHE_ENABLED")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	if err := v.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	conf.AppName = AppName
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	if err := NewCnfValidator(&conf).Validate(); err != nil {
		return nil, err
	}

	return &conf, nil
}
