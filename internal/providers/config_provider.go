package providers

import (
	"fmt"
	"path/filepath"
	"scoutd/internal/structures"
	"strings"
	"time"

	"github.com/spf13/viper"
)

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("webServer.basePath", "/api")
	v.SetDefault("store.driver", "memory")
	v.SetDefault("persistence.saveInterval", 30*time.Second)
	v.SetDefault("scouting.timezone", "America/Los_Angeles")
	v.SetDefault("scouting.claimMaxAttempts", 5)
	v.SetDefault("cache.ttl", 5*time.Second)
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")
	setConfigDefaults(v)

	_ = v.BindEnv("logger.level", "SCOUTD_LOG_LEVEL")
	_ = v.BindEnv("webServer.port", "SCOUTD_PORT")
	_ = v.BindEnv("store.driver", "SCOUTD_STORE_DRIVER")
	_ = v.BindEnv("store.sqlitePath", "SCOUTD_SQLITE_PATH")
	_ = v.BindEnv("cache.enabled", "SCOUTD_CACHE_ENABLED")
	_ = v.BindEnv("cache.size", "SCOUTD_CACHE_SIZE")
	_ = v.BindEnv("scouting.timezone", "SCOUTD_TIMEZONE")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "ScoutingDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
