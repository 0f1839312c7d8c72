package snapshot

import (
	"scoutd/internal/providers"
	"scoutd/internal/snapshot/interfaces"
	"scoutd/internal/structures"
	"sync"
	"time"

	"github.com/roylee0704/gron"
)

type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	metrics     providers.MetricsProviderInterface
	fileManager *FileManager
	cron        *gron.Cron
	opsMu       sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gron.New()
	s.cron.AddFunc(gron.Every(s.config.Persistence.SaveInterval), func() {
		if err := s.save(); err != nil {
			s.logger.Errorf(providers.TypeApp, "Error while persisting snapshot: %s", err)
			return
		}
		s.logger.Debugf(providers.TypeApp, "Persisted snapshot to file %s", s.config.Persistence.FilePath)
	})
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) Restore() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()
	return s.fileManager.LoadFromFile(s.config.Persistence.FilePath)
}

func (s *Scheduler) Persist() error {
	s.logger.Infof(providers.TypeApp, "Persisting snapshot to file...")
	if err := s.save(); err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting snapshot: %s", err)
		return err
	}
	return nil
}

func (s *Scheduler) save() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	start := time.Now()
	err := s.fileManager.SaveToFile(s.config.Persistence.FilePath)
	s.metrics.ObservePersistenceDuration(time.Since(start))
	return err
}

// noopScheduler stands in when persistence is off or the store persists
// on its own.
type noopScheduler struct{}

func (n *noopScheduler) Init()          {}
func (n *noopScheduler) Stop()          {}
func (n *noopScheduler) Restore() error { return nil }
func (n *noopScheduler) Persist() error { return nil }

func NewScheduler(config *structures.Config, logger providers.Logger, fileManager *FileManager, metrics providers.MetricsProviderInterface) interfaces.SchedulerInterface {
	if !config.Persistence.Enabled {
		logger.Infof(providers.TypeApp, "Snapshot persistence disabled")
		return &noopScheduler{}
	}
	if !fileManager.Supported() {
		logger.Infof(providers.TypeApp, "Store driver %q persists on its own, snapshots skipped", config.Store.Driver)
		return &noopScheduler{}
	}
	return &Scheduler{
		config:      config,
		logger:      logger,
		metrics:     metrics,
		fileManager: fileManager,
	}
}
