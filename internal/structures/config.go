package structures

import "time"

type Server struct {
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"required|uint|min:1"`
	BasePath string `yaml:"basePath"`
}

type StoreConfig struct {
	Driver     string `yaml:"driver" validate:"required|in:memory,sqlite"`
	SQLitePath string `yaml:"sqlitePath"`
}

type Persistence struct {
	Enabled      bool          `yaml:"enabled"`
	FilePath     string        `yaml:"filePath" validate:"unixPath"`
	SaveInterval time.Duration `yaml:"saveInterval" validate:"min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type ScoutingConfig struct {
	Timezone         string `yaml:"timezone" validate:"required"`
	ClaimMaxAttempts int    `yaml:"claimMaxAttempts"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	WebServer   Server         `yaml:"webServer"`
	Store       StoreConfig    `yaml:"store"`
	Persistence Persistence    `yaml:"persistence"`
	Logger      LoggerConfig   `yaml:"logger"`
	Scouting    ScoutingConfig `yaml:"scouting"`
	Cache       CacheConfig    `yaml:"cache"`
	Metrics     MetricsConfig  `yaml:"metrics"`
}

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
}
