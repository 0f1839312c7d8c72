package providers

import (
	"errors"
	"scoutd/internal/structures"
	"time"

	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (c *CnfValidator) Validate() error {
	v := validate.Struct(c.conf)
	if !v.Validate() {
		return v.Errors
	}

	if c.conf.Store.Driver == "sqlite" && c.conf.Store.SQLitePath == "" {
		return errors.New("store.sqlitePath is required for the sqlite driver")
	}
	if c.conf.Persistence.Enabled {
		if c.conf.Persistence.FilePath == "" {
			return errors.New("persistence.filePath is required when persistence is enabled")
		}
		if c.conf.Persistence.SaveInterval <= 0 {
			return errors.New("persistence.saveInterval must be positive")
		}
	}
	if _, err := time.LoadLocation(c.conf.Scouting.Timezone); err != nil {
		return err
	}
	return nil
}
