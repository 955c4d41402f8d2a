package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"github.com/nzvengeance/gw2style/internal/config"
	"github.com/nzvengeance/gw2style/internal/models"
	"github.com/nzvengeance/gw2style/internal/skins"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const (
	EndpointSkins = "skins"
	syncTimeout   = 30 * time.Minute

	// SettingSnapshotVersion holds the version of the last synced snapshot.
	SettingSnapshotVersion = "skin_snapshot_version"
)

// ErrSyncInProgress is returned when a skin sync is requested while one runs.
var ErrSyncInProgress = errors.New("skin sync already in progress")

// History records sync runs and the settings they leave behind.
type History interface {
	InsertSyncHistory(ctx context.Context, endpoint, status string) (int, error)
	UpdateSyncHistory(ctx context.Context, id int, status string, count int, errMsg string) error
	GetLastSuccessfulSync(ctx context.Context, endpoint string) (*time.Time, error)
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// Cache is the skin cache the scheduler keeps current.
type Cache interface {
	IsValid() bool
	Replace(ctx context.Context, snap *models.SkinSnapshot) error
}

// Status describes the scheduler's most recent run.
type Status struct {
	Running      bool       `json:"running"`
	Schedule     string     `json:"schedule"`
	LastRunAt    *time.Time `json:"last_run_at,omitempty"`
	LastCount    int        `json:"last_count"`
	LastError    string     `json:"last_error,omitempty"`
	LastSuccess  *time.Time `json:"last_success_at,omitempty"`
	Version      string     `json:"synced_version,omitempty"`
	NextRunAt    *time.Time `json:"next_run_at,omitempty"`
	SnapshotFile string     `json:"snapshot_file,omitempty"`
}

type Scheduler struct {
	source  skins.Source
	cache   Cache
	history History
	export  *skins.FileStore
	cfg     *config.Config
	cron    *cron.Cron
	entry   cron.EntryID

	mu      gosync.Mutex
	running bool
	lastRun *time.Time
	lastN   int
	lastErr string
}

// NewScheduler wires a skin sync. export may be nil; when set, every fetched
// snapshot is also written there for offline use.
func NewScheduler(source skins.Source, cache Cache, history History, export *skins.FileStore, cfg *config.Config) *Scheduler {
	return &Scheduler{
		source:  source,
		cache:   cache,
		history: history,
		export:  export,
		cfg:     cfg,
		cron:    cron.New(),
	}
}

// Start begins the scheduled sync jobs
func (s *Scheduler) Start() error {
	entry, err := s.cron.AddFunc(s.cfg.SyncSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()

		log.Info().Msg("scheduled skin sync starting")
		if err := s.SyncSkins(ctx); err != nil {
			log.Error().Err(err).Msg("scheduled skin sync failed")
		}
	})
	if err != nil {
		return fmt.Errorf("adding cron job: %w", err)
	}
	s.entry = entry

	s.cron.Start()
	log.Info().Str("schedule", s.cfg.SyncSchedule).Msg("sync scheduler started")

	if s.cfg.SyncOnStartup {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
			defer cancel()
			s.syncIfStale(ctx)
		}()
	}

	return nil
}

func (s *Scheduler) syncIfStale(ctx context.Context) {
	if s.cache.IsValid() {
		log.Info().Msg("skin snapshot is fresh, skipping startup sync")
		return
	}
	log.Info().Msg("skin snapshot missing or stale, running startup sync")
	if err := s.SyncSkins(ctx); err != nil {
		log.Error().Err(err).Msg("startup skin sync failed")
	}
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info().Msg("sync scheduler stopped")
}

// SyncSkins fetches a new snapshot, stores it in the cache and records the run.
func (s *Scheduler) SyncSkins(ctx context.Context) error {
	if !s.begin() {
		return ErrSyncInProgress
	}

	count, err := s.syncSkins(ctx)
	s.finish(count, err)
	return err
}

func (s *Scheduler) syncSkins(ctx context.Context) (int, error) {
	syncID, herr := s.history.InsertSyncHistory(ctx, EndpointSkins, "running")
	if herr != nil {
		log.Warn().Err(herr).Msg("failed to record sync start")
	}
	fail := func(err error) (int, error) {
		if herr == nil {
			if uerr := s.history.UpdateSyncHistory(ctx, syncID, "error", 0, err.Error()); uerr != nil {
				log.Warn().Err(uerr).Msg("failed to record sync failure")
			}
		}
		return 0, err
	}

	snap, err := s.source.Fetch(ctx)
	if err != nil {
		return fail(fmt.Errorf("fetching skins: %w", err))
	}

	if err := s.cache.Replace(ctx, snap); err != nil {
		return fail(fmt.Errorf("storing skins: %w", err))
	}

	if s.export != nil {
		if err := s.export.Save(ctx, snap); err != nil {
			log.Warn().Err(err).Str("path", s.export.Path()).Msg("failed to write snapshot file")
		}
	}

	if herr == nil {
		if err := s.history.UpdateSyncHistory(ctx, syncID, "success", snap.Count, ""); err != nil {
			log.Warn().Err(err).Msg("failed to record sync success")
		}
	}
	if err := s.history.SetSetting(ctx, SettingSnapshotVersion, snap.Version); err != nil {
		log.Warn().Err(err).Msg("failed to record snapshot version")
	}
	log.Info().Int("synced", snap.Count).Str("version", snap.Version).Msg("skin sync complete")
	return snap.Count, nil
}

func (s *Scheduler) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

func (s *Scheduler) finish(count int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	s.running = false
	s.lastRun = &now
	s.lastN = count
	s.lastErr = ""
	if err != nil {
		s.lastErr = err.Error()
	}
}

// Status reports the current state of the scheduler, including the last
// successful run on record.
func (s *Scheduler) Status(ctx context.Context) Status {
	st := s.runState()

	last, err := s.history.GetLastSuccessfulSync(ctx, EndpointSkins)
	if err != nil {
		log.Warn().Err(err).Msg("failed to read last successful sync")
	}
	st.LastSuccess = last

	version, err := s.history.GetSetting(ctx, SettingSnapshotVersion)
	if err != nil {
		log.Warn().Err(err).Msg("failed to read snapshot version")
	}
	st.Version = version

	return st
}

func (s *Scheduler) runState() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		Running:   s.running,
		Schedule:  s.cfg.SyncSchedule,
		LastRunAt: s.lastRun,
		LastCount: s.lastN,
		LastError: s.lastErr,
	}
	if s.entry != 0 {
		if next := s.cron.Entry(s.entry).Next; !next.IsZero() {
			st.NextRunAt = &next
		}
	}
	if s.export != nil {
		st.SnapshotFile = s.export.Path()
	}
	return st
}
