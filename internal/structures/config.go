package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type Storage struct {
	Path string `yaml:"path" validate:"required"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type AuthConfig struct {
	// TokenSecret overrides the generated signing secret when set.
	TokenSecret string        `yaml:"tokenSecret"`
	TokenTTL    time.Duration `yaml:"tokenTTL" validate:"required|min:1"`
}

type PushConfig struct {
	Heartbeat  time.Duration `yaml:"heartbeat" validate:"required|min:1"`
	BufferSize int           `yaml:"bufferSize" validate:"required|uint|min:1"`
}

type SyncConfig struct {
	Interval     time.Duration `yaml:"interval" validate:"required|min:1"`
	FetchTimeout time.Duration `yaml:"fetchTimeout" validate:"required|min:1"`
	WeatherURL   string        `yaml:"weatherURL" validate:"required|fullUrl"`
	Units        string        `yaml:"units" validate:"required|in:imperial,metric"`
}

type BackupConfig struct {
	Enabled      bool          `yaml:"enabled"`
	FilePath     string        `yaml:"filePath" validate:"required|unixPath"`
	SaveInterval time.Duration `yaml:"saveInterval" validate:"required|min:1"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
	TTL     int  `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	WebServer Server        `yaml:"webServer"`
	Storage   Storage       `yaml:"storage"`
	Logger    LoggerConfig  `yaml:"logger"`
	Auth      AuthConfig    `yaml:"auth"`
	Push      PushConfig    `yaml:"push"`
	Sync      SyncConfig    `yaml:"sync"`
	Backup    BackupConfig  `yaml:"backup"`
	Cache     CacheConfig   `yaml:"cache"`
	Metrics   MetricsConfig `yaml:"metrics"`
}
