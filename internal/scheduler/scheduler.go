package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/toolwear/internal/domain/models"
	"github.com/mamadbah2/toolwear/pkg/clients/notify"
)

const jobTimeout = 2 * time.Minute

// Reporting is the reporting surface used by the scheduled jobs.
type Reporting interface {
	AlertDigest(ctx context.Context, ref time.Time) (string, error)
	ExportMonth(ctx context.Context, month models.MonthYear) (bool, error)
}

// Options configures which jobs run and when. An empty schedule disables its job.
type Options struct {
	AlertSchedule  string
	ExportSchedule string
	Location       *time.Location
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron         *cron.Cron
	reportingSvc Reporting
	notifier     notify.Client
	opts         Options
	now          func() time.Time
	logger       *zap.Logger
}

// NewScheduler creates a new scheduler instance. notifier may be nil, which
// disables the alert digest job.
func NewScheduler(opts Options, reportingSvc Reporting, notifier notify.Client, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}

	// Standard 5-field cron expressions, evaluated in the plant's timezone.
	c := cron.New(cron.WithLocation(opts.Location))

	return &Scheduler{
		cron:         c,
		reportingSvc: reportingSvc,
		notifier:     notifier,
		opts:         opts,
		now:          time.Now,
		logger:       logger,
	}
}

// Start registers the enabled jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler")

	if s.opts.AlertSchedule != "" && s.notifier != nil {
		if _, err := s.cron.AddFunc(s.opts.AlertSchedule, s.sendAlertDigest); err != nil {
			return err
		}
		s.logger.Info("alert digest scheduled", zap.String("schedule", s.opts.AlertSchedule))
	} else {
		s.logger.Info("alert digest disabled")
	}

	if s.opts.ExportSchedule != "" {
		if _, err := s.cron.AddFunc(s.opts.ExportSchedule, s.exportPreviousMonth); err != nil {
			return err
		}
		s.logger.Info("monthly export scheduled", zap.String("schedule", s.opts.ExportSchedule))
	} else {
		s.logger.Info("monthly export disabled")
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sendAlertDigest() {
	s.logger.Info("generating alert digest")
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	digest, err := s.reportingSvc.AlertDigest(ctx, s.now().In(s.opts.Location))
	if err != nil {
		s.logger.Error("failed to generate alert digest", zap.Error(err))
		return
	}

	msg := notify.Message{Title: "Desgaste de ferramentas", Text: digest}
	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logger.Error("failed to send alert digest", zap.Error(err))
	} else {
		s.logger.Info("alert digest sent successfully")
	}
}

func (s *Scheduler) exportPreviousMonth() {
	month := models.MonthOf(s.now().In(s.opts.Location)).Previous()
	s.logger.Info("exporting monthly kpis", zap.String("month", month.String()))

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	exported, err := s.reportingSvc.ExportMonth(ctx, month)
	switch {
	case err != nil:
		s.logger.Error("failed to export monthly kpis", zap.String("month", month.String()), zap.Error(err))
	case exported:
		s.logger.Info("monthly kpis exported", zap.String("month", month.String()))
	default:
		s.logger.Info("monthly kpis already exported", zap.String("month", month.String()))
	}
}
