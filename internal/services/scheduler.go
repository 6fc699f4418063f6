package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/config"
)

// Scheduler drives the periodic pipeline runs: weekly full analysis, daily
// quick check, weekly snapshot cleanup. Overlapping runs are not locked
// against; runs are infrequent and every output file is uniquely
// timestamped.
type Scheduler struct {
	pipeline *Pipeline
	logger   *logrus.Logger
	cron     *cron.Cron
	cfg      config.PipelineConfig

	mu        sync.RWMutex
	jobs      map[string]JobInfo
	isRunning bool
}

// JobInfo tracks bookkeeping for one scheduled job.
type JobInfo struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Schedule   string        `json:"schedule"`
	LastRun    time.Time     `json:"last_run"`
	NextRun    time.Time     `json:"next_run"`
	Status     string        `json:"status"`
	RunCount   int           `json:"run_count"`
	ErrorCount int           `json:"error_count"`
	LastError  string        `json:"last_error,omitempty"`
	Duration   time.Duration `json:"duration"`
	IsEnabled  bool          `json:"is_enabled"`

	entryID cron.EntryID
}

// NewScheduler creates a scheduler around the pipeline.
func NewScheduler(pipeline *Pipeline, cfg config.PipelineConfig, logger *logrus.Logger) *Scheduler {
	cronLogger := cron.VerbosePrintfLogger(logger)
	return &Scheduler{
		pipeline: pipeline,
		logger:   logger,
		cron:     cron.New(cron.WithLogger(cronLogger)),
		cfg:      cfg,
		jobs:     make(map[string]JobInfo),
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	s.logger.WithField("component", "scheduler").Info("Starting pipeline scheduler")

	if err := s.scheduleJobs(); err != nil {
		return fmt.Errorf("failed to schedule jobs: %w", err)
	}

	s.cron.Start()
	s.isRunning = true

	// Activation times only exist once the cron loop is running.
	for id, job := range s.jobs {
		job.NextRun = s.cron.Entry(job.entryID).Next
		s.jobs[id] = job
	}

	s.logger.WithField("component", "scheduler").Info("Pipeline scheduler started")
	return nil
}

func (s *Scheduler) scheduleJobs() error {
	if err := s.addJob("full_analysis", s.cfg.FullAnalysisCron, "Full pipeline analysis", s.runFullAnalysis); err != nil {
		return err
	}
	if err := s.addJob("quick_check", s.cfg.QuickCheckCron, "Quick free-agent check", s.runQuickCheck); err != nil {
		return err
	}
	return s.addJob("snapshot_cleanup", s.cfg.CleanupCron, "Snapshot retention cleanup", s.runCleanup)
}

func (s *Scheduler) addJob(id, schedule, name string, jobFunc func()) error {
	entryID, err := s.cron.AddFunc(schedule, func() {
		s.runJob(id, name, jobFunc)
	})
	if err != nil {
		return fmt.Errorf("failed to add job %s: %w", id, err)
	}

	s.jobs[id] = JobInfo{
		ID:        id,
		Name:      name,
		Schedule:  schedule,
		Status:    "scheduled",
		IsEnabled: true,
		entryID:   entryID,
	}

	s.logger.WithFields(logrus.Fields{
		"component": "scheduler",
		"job_id":    id,
		"schedule":  schedule,
	}).Info("Scheduled job added")
	return nil
}

// runJob executes a job with bookkeeping and panic recovery.
func (s *Scheduler) runJob(id, name string, jobFunc func()) {
	s.mu.Lock()
	job, exists := s.jobs[id]
	if !exists || !job.IsEnabled {
		s.mu.Unlock()
		return
	}
	job.Status = "running"
	job.LastRun = time.Now()
	job.RunCount++
	s.jobs[id] = job
	s.mu.Unlock()

	logger := s.logger.WithFields(logrus.Fields{
		"component": "scheduler",
		"job_id":    id,
		"run_count": job.RunCount,
	})

	logger.Info("Starting scheduled job")
	startTime := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logger.WithField("panic", r).Error("Job panicked")
			s.updateJobStatus(id, "failed", fmt.Sprintf("panic: %v", r), time.Since(startTime))
		}
	}()

	jobFunc()

	duration := time.Since(startTime)
	logger.WithField("duration", duration).Info("Job completed")
	s.updateJobStatus(id, "completed", "", duration)
}

func (s *Scheduler) updateJobStatus(id, status, errorMsg string, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[id]
	if !exists {
		return
	}

	job.Status = status
	job.Duration = duration
	if errorMsg != "" {
		job.ErrorCount++
		job.LastError = errorMsg
	}

	// Refresh from this job's own cron entry, not whichever entry fires
	// soonest.
	if entry := s.cron.Entry(job.entryID); entry.ID == job.entryID {
		job.NextRun = entry.Next
	}

	s.jobs[id] = job
}

func (s *Scheduler) runFullAnalysis() {
	logger := s.logger.WithField("job", "full_analysis")

	result, err := s.pipeline.RunFullAnalysis(context.Background())
	if err != nil {
		logger.WithError(err).Error("Scheduled full analysis failed")
		return
	}

	logger.WithFields(logrus.Fields{
		"run_id":          result.RunID,
		"team":            result.TeamName,
		"recommendations": result.RecommendationsCount,
	}).Info("Scheduled full analysis completed")
}

func (s *Scheduler) runQuickCheck() {
	logger := s.logger.WithField("job", "quick_check")

	set, err := s.pipeline.QuickCheck(context.Background())
	if err != nil {
		logger.WithError(err).Error("Scheduled quick check failed")
		return
	}

	for i, rec := range set.Players {
		if i >= 3 {
			break
		}
		logger.WithFields(logrus.Fields{
			"player":      rec.Player.Name,
			"position":    rec.Player.Position,
			"value_score": rec.Analysis.ValueScore,
		}).Info("Quick check recommendation")
	}
}

func (s *Scheduler) runCleanup() {
	logger := s.logger.WithField("job", "snapshot_cleanup")

	if err := s.pipeline.Cleanup(); err != nil {
		logger.WithError(err).Error("Scheduled cleanup failed")
		return
	}
	logger.Info("Scheduled cleanup completed")
}

// TriggerJob manually runs a job by ID.
func (s *Scheduler) TriggerJob(id string) error {
	s.mu.RLock()
	job, exists := s.jobs[id]
	s.mu.RUnlock()
	if !exists {
		return fmt.Errorf("job %s not found", id)
	}

	jobFunctions := map[string]func(){
		"full_analysis":    s.runFullAnalysis,
		"quick_check":      s.runQuickCheck,
		"snapshot_cleanup": s.runCleanup,
	}
	jobFunc, ok := jobFunctions[id]
	if !ok {
		return fmt.Errorf("job function not found for %s", id)
	}

	s.logger.WithField("job_id", id).Info("Manually triggering job")
	go s.runJob(id, job.Name, jobFunc)
	return nil
}

// EnableJob enables a scheduled job.
func (s *Scheduler) EnableJob(id string) error {
	return s.setJobEnabled(id, true)
}

// DisableJob disables a scheduled job.
func (s *Scheduler) DisableJob(id string) error {
	return s.setJobEnabled(id, false)
}

func (s *Scheduler) setJobEnabled(id string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[id]
	if !exists {
		return fmt.Errorf("job %s not found", id)
	}
	job.IsEnabled = enabled
	s.jobs[id] = job

	s.logger.WithFields(logrus.Fields{
		"job_id":  id,
		"enabled": enabled,
	}).Info("Job toggled")
	return nil
}

// Jobs returns a copy of the job bookkeeping.
func (s *Scheduler) Jobs() map[string]JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make(map[string]JobInfo, len(s.jobs))
	for k, v := range s.jobs {
		jobs[k] = v
	}
	return jobs
}

// Stop stops the cron loop, waiting briefly for running jobs.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
		s.logger.Info("Scheduler stopped gracefully")
	case <-time.After(5 * time.Second):
		s.logger.Warn("Scheduler stop timed out")
	}
	s.isRunning = false
}
