// Package scheduler
package scheduler

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/Nastu94/gestionale-subnoleggio-sub002/config"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/repository"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/utils"
	"github.com/robfig/cron/v3"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"
)

// AssignmentScheduler closes vehicle assignments whose window has ended.
// Rentals created after the window belong to whichever organization holds the
// next active assignment, so expired rows must not linger as active.
type AssignmentScheduler struct {
	assignmentRepo repository.VehicleAssignmentRepository
	db             *gorm.DB
	cfg            config.SchedulerConfig
	logger         *log.Logger
	cron           *cron.Cron
}

// NewAssignmentScheduler creates a new assignment scheduler
func NewAssignmentScheduler(
	assignmentRepo repository.VehicleAssignmentRepository,
	db *gorm.DB,
	cfg config.SchedulerConfig,
) *AssignmentScheduler {
	s := &AssignmentScheduler{
		assignmentRepo: assignmentRepo,
		db:             db,
		cfg:            cfg,
	}
	s.logger = s.newSchedulerLogger()
	return s
}

// newSchedulerLogger writes to stdout and a rotated file when a path is set
func (s *AssignmentScheduler) newSchedulerLogger() *log.Logger {
	var w io.Writer = os.Stdout
	if s.cfg.LogPath != "" {
		rotated := &lumberjack.Logger{
			Filename:   s.cfg.LogPath,
			MaxSize:    s.cfg.LogMaxSize,
			MaxBackups: s.cfg.LogMaxBackups,
			MaxAge:     s.cfg.LogMaxAge,
			Compress:   true,
		}
		w = io.MultiWriter(os.Stdout, rotated)
	}
	return log.New(w, "scheduler ", log.LstdFlags|log.Lmicroseconds|log.LUTC)
}

// Start registers the cron entries and launches the scheduler. The returned
// function stops the cron loop and waits for running jobs to finish.
func (s *AssignmentScheduler) Start(parent context.Context) (func(), error) {
	spec := s.cfg.AssignmentCloseCron
	if spec == "" {
		spec = "*/15 * * * *"
	}

	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		s.runOnce(parent)
	}); err != nil {
		return nil, err
	}
	s.cron = c

	// Close anything already expired before the first tick
	s.runOnce(parent)
	c.Start()
	s.logger.Printf("scheduler: assignment close job registered with spec %q", spec)

	return func() {
		ctx := c.Stop()
		<-ctx.Done()
	}, nil
}

func (s *AssignmentScheduler) runOnce(ctx context.Context) {
	now := utils.UTCNow()

	expired, err := s.assignmentRepo.ListExpiredActive(ctx, now)
	if err != nil {
		s.logger.Printf("scheduler: list expired assignments failed: %v", err)
		return
	}
	if len(expired) == 0 {
		return
	}
	s.logger.Printf("scheduler: %d assignments past their end date", len(expired))

	closed := 0
	for _, assignment := range expired {
		err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
			return s.assignmentRepo.CloseAssignment(txCtx, assignment.ID, now)
		})
		if err != nil {
			s.logger.Printf("scheduler: close assignment id=%d failed: %v", assignment.ID, err)
			continue
		}
		closed++
	}
	s.logger.Printf("scheduler: closed %d of %d expired assignments", closed, len(expired))
}
