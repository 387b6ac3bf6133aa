package jobs

import (
	"context"
	"sync"

	"github.com/roylee0704/gron"
	"go.uber.org/atomic"

	"homeboard/internal/jobs/interfaces"
	"homeboard/internal/providers"
	"homeboard/internal/structures"
)

const (
	JobCalendar = "calendar"
	JobWeather  = "weather"
	JobBackup   = "backup"
)

// Job is one unit of background work. Errors are logged by the scheduler.
type Job interface {
	Run(ctx context.Context) error
}

type task struct {
	name    string
	job     Job
	running atomic.Bool
}

type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	metrics     providers.MetricsProviderInterface
	fileManager *FileManager
	cron        *gron.Cron
	opsMu       sync.Mutex
	tasks       map[string]*task
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	stopMu      sync.Mutex
	stopped     bool
}

func (s *Scheduler) Init() {
	s.cron = gron.New()
	interval := s.config.Sync.Interval

	for _, name := range []string{JobCalendar, JobWeather} {
		t := s.tasks[name]
		s.cron.AddFunc(gron.Every(interval), func() { s.tick(t) })
	}

	if s.config.Backup.Enabled {
		t := s.tasks[JobBackup]
		s.cron.AddFunc(gron.Every(s.config.Backup.SaveInterval), func() { s.tick(t) })
	}

	s.cron.Start()
	s.logger.Infof(providers.TypeSync, "Scheduler started: sync every %s", interval)

	s.RunNow(JobCalendar)
	s.RunNow(JobWeather)
}

// Stop halts the ticks, cancels running jobs and waits for them to return.
// No run starts after Stop.
func (s *Scheduler) Stop() {
	s.stopMu.Lock()
	s.stopped = true
	s.stopMu.Unlock()

	if s.cron != nil {
		s.cron.Stop()
	}
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) RunNow(name string) bool {
	t, ok := s.tasks[name]
	if !ok || t.running.Load() {
		return false
	}
	if !s.track() {
		return false
	}
	go func() {
		defer s.wg.Done()
		s.run(t)
	}()
	return true
}

// tick is the cron entry point for t.
func (s *Scheduler) tick(t *task) {
	if !s.track() {
		return
	}
	defer s.wg.Done()
	s.run(t)
}

// track registers a run with the wait group unless the scheduler is stopped.
func (s *Scheduler) track() bool {
	s.stopMu.Lock()
	defer s.stopMu.Unlock()
	if s.stopped {
		return false
	}
	s.wg.Add(1)
	return true
}

// run executes t unless a previous run of t is still in flight.
func (s *Scheduler) run(t *task) {
	if !t.running.CompareAndSwap(false, true) {
		s.logger.Warnf(providers.TypeSync, "Skip %s: previous run still in progress", t.name)
		s.metrics.IncSyncRuns(t.name, "skipped")
		return
	}
	defer t.running.Store(false)

	if err := t.job.Run(s.ctx); err != nil {
		s.logger.Errorf(providers.TypeSync, "%s sync failed: %v", t.name, err)
		s.metrics.IncSyncRuns(t.name, "error")
		return
	}
	s.metrics.IncSyncRuns(t.name, "ok")
}

func (s *Scheduler) Restore() error {
	restored, err := s.fileManager.LoadFromFile(s.ctx, s.config.Backup.FilePath)
	if err != nil {
		return err
	}
	if restored {
		s.logger.Infof(providers.TypeApp, "Restored state from backup %s", s.config.Backup.FilePath)
	}
	return nil
}

func (s *Scheduler) Persist() error {
	if !s.config.Backup.Enabled {
		return nil
	}
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	// detached from s.ctx so the final backup still runs after Stop
	err := s.fileManager.SaveToFile(context.Background(), s.config.Backup.FilePath)
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting data: %s", err)
		return err
	}
	s.logger.Infof(providers.TypeApp, "Persisted state to file %s", s.config.Backup.FilePath)
	return nil
}

type backupJob struct {
	s *Scheduler
}

func (b backupJob) Run(context.Context) error {
	return b.s.Persist()
}

func NewScheduler(config *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface, fileManager *FileManager, calendar *CalendarJob, weather *WeatherJob) interfaces.SchedulerInterface {
	return newScheduler(config, logger, metrics, fileManager, map[string]Job{
		JobCalendar: calendar,
		JobWeather:  weather,
	})
}

func newScheduler(config *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface, fileManager *FileManager, jobs map[string]Job) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		config:      config,
		logger:      logger,
		metrics:     metrics,
		fileManager: fileManager,
		tasks:       make(map[string]*task, len(jobs)+1),
		ctx:         ctx,
		cancel:      cancel,
	}
	for name, job := range jobs {
		s.tasks[name] = &task{name: name, job: job}
	}
	s.tasks[JobBackup] = &task{name: JobBackup, job: backupJob{s: s}}
	return s
}
