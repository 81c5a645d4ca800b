package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sahilchouksey/mindmeld-api/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const jobTimeout = 10 * time.Minute

// Job is a scheduled maintenance task. Run reports how many rows it touched.
type Job struct {
	Name     string
	Schedule string // six-field cron expression, seconds first
	Run      func(ctx context.Context) (int64, error)
}

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron *cron.Cron
	db   *gorm.DB
	log  *zap.Logger
	jobs map[string]Job
}

// NewCronManager creates a new cron manager
func NewCronManager(db *gorm.DB, log *zap.Logger) *CronManager {
	// Create cron with seconds precision
	c := cron.New(cron.WithSeconds())

	return &CronManager{
		cron: c,
		db:   db,
		log:  log,
		jobs: map[string]Job{},
	}
}

// Register schedules jobs. It must be called before Start.
func (m *CronManager) Register(jobs ...Job) error {
	for _, job := range jobs {
		job := job
		if _, err := m.cron.AddFunc(job.Schedule, func() { m.RunJob(job.Name) }); err != nil {
			return fmt.Errorf("schedule %s: %w", job.Name, err)
		}
		m.jobs[job.Name] = job
	}
	return nil
}

// Start starts all cron jobs
func (m *CronManager) Start() {
	m.cron.Start()
	m.log.Info("Cron jobs started", zap.Int("jobs", len(m.jobs)))
}

// Stop stops all cron jobs and waits for running ones
func (m *CronManager) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
	m.log.Info("Cron jobs stopped")
}

// RunJob runs a registered job now and records the run in cron_job_logs
func (m *CronManager) RunJob(name string) error {
	job, ok := m.jobs[name]
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	entry := model.CronJobLog{
		JobName:   name,
		Status:    "started",
		StartedAt: time.Now(),
	}
	if err := m.db.WithContext(ctx).Create(&entry).Error; err != nil {
		m.log.Warn("Failed to record cron job start", zap.String("job", name), zap.Error(err))
	}

	affected, err := job.Run(ctx)

	completed := time.Now()
	updates := map[string]interface{}{
		"status":       "completed",
		"completed_at": completed,
		"duration":     int(completed.Sub(entry.StartedAt).Milliseconds()),
		"affected":     affected,
	}
	if err != nil {
		updates["status"] = "failed"
		updates["error_msg"] = err.Error()
		m.log.Error("Cron job failed", zap.String("job", name), zap.Error(err))
	} else {
		m.log.Info("Cron job completed", zap.String("job", name), zap.Int64("affected", affected))
	}

	if entry.ID != 0 {
		if uerr := m.db.WithContext(ctx).Model(&entry).Updates(updates).Error; uerr != nil {
			m.log.Warn("Failed to record cron job result", zap.String("job", name), zap.Error(uerr))
		}
	}

	return err
}
