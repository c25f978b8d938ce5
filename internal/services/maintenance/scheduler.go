package maintenance

import (
	"errors"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/kyamadi/ai-chat-service/internal/common"
	"github.com/kyamadi/ai-chat-service/internal/interfaces"
)

// Scheduler runs periodic Badger value-log garbage collection. Badger
// never reclaims value-log space on its own, so long-running instances
// need this or the data directory grows without bound.
type Scheduler struct {
	config  *common.MaintConfig
	storage interfaces.StorageManager
	cron    *cron.Cron
	logger  arbor.ILogger
}

// NewScheduler creates the maintenance scheduler
func NewScheduler(config *common.MaintConfig, storage interfaces.StorageManager, logger arbor.ILogger) *Scheduler {
	return &Scheduler{
		config:  config,
		storage: storage,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger,
	}
}

// Start registers the GC job and starts the cron loop
func (s *Scheduler) Start() error {
	if !s.config.Enabled {
		s.logger.Info().Msg("Maintenance scheduler disabled")
		return nil
	}

	schedule := s.config.GCSchedule
	if schedule == "" {
		schedule = "0 0 3 * * *"
	}

	_, err := s.cron.AddFunc(schedule, func() {
		s.runValueLogGC()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule value-log GC: %w", err)
	}

	s.cron.Start()
	s.logger.Info().
		Str("schedule", schedule).
		Msg("Maintenance scheduler started")

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info().Msg("Maintenance scheduler stopped")
}

// runValueLogGC calls Badger's value-log GC repeatedly until it reports
// nothing left to rewrite
func (s *Scheduler) runValueLogGC() {
	store, ok := s.storage.DB().(*badgerhold.Store)
	if !ok || store == nil {
		s.logger.Warn().Msg("Storage backend does not expose a Badger store, skipping GC")
		return
	}

	db := store.Badger()
	rewritten := 0
	for {
		err := db.RunValueLogGC(0.5)
		if err != nil {
			if errors.Is(err, badgerdb.ErrNoRewrite) {
				break
			}
			s.logger.Warn().Err(err).Msg("Value-log GC failed")
			return
		}
		rewritten++
	}

	s.logger.Info().
		Int("files_rewritten", rewritten).
		Msg("Badger value-log GC completed")
}
