package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang-filing-scryper/internal/entity"
	"golang-filing-scryper/internal/filings/config"
	"golang-filing-scryper/internal/filings/dto"
	"golang-filing-scryper/internal/filings/repository"
	"golang-filing-scryper/pkg/common"
	"golang-filing-scryper/pkg/logger"
	"golang-filing-scryper/pkg/telegram"
	"golang-filing-scryper/pkg/utils"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"gorm.io/datatypes"
)

// ErrNoEntities is returned when a refresh resolves to an empty ticker list.
var ErrNoEntities = errors.New("no tracked entities match the request")

// SchedulerService triggers ingestion runs on a cron schedule or on demand,
// and keeps their history.
type SchedulerService interface {
	// Start runs the cron loop until ctx is done.
	Start(ctx context.Context) error
	// Refresh runs one ingestion for the requested tickers (all when empty).
	Refresh(ctx context.Context, trigger string, req dto.IngestionRequest, observer dto.ProgressObserver) (*dto.RunReport, error)
	// History lists the most recent runs, newest first.
	History(ctx context.Context, limit int) ([]entity.IngestionRun, error)
}

type schedulerService struct {
	cfg         *config.Config
	logger      *logger.Logger
	ingestion   IngestionService
	entityRepo  repository.TrackedEntityRepository
	historyRepo repository.RunHistoryRepository
	notifier    telegram.Notifier
	cronParser  cron.Parser
	now         func() time.Time
}

// NewSchedulerService creates a new SchedulerService.
func NewSchedulerService(
	cfg *config.Config,
	log *logger.Logger,
	ingestion IngestionService,
	entityRepo repository.TrackedEntityRepository,
	historyRepo repository.RunHistoryRepository,
	notifier telegram.Notifier,
) SchedulerService {
	return &schedulerService{
		cfg:         cfg,
		logger:      log,
		ingestion:   ingestion,
		entityRepo:  entityRepo,
		historyRepo: historyRepo,
		notifier:    notifier,
		cronParser:  cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		now:         utils.TimeNowIST,
	}
}

func (s *schedulerService) Start(ctx context.Context) error {
	schedule, err := s.cronParser.Parse(s.cfg.Scheduler.Cron)
	if err != nil {
		return fmt.Errorf("failed to parse cron expression %q: %w", s.cfg.Scheduler.Cron, err)
	}

	for {
		now := s.now()
		next := schedule.Next(now)
		s.logger.Info("Next scheduled ingestion", logger.StringField("at", next.Format(time.RFC3339)))

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("Scheduler service stopping")
			return nil
		case <-timer.C:
			s.runScheduled(ctx)
		}
	}
}

func (s *schedulerService) runScheduled(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.cfg.Scheduler.Timeout)
	defer cancel()

	observer := dto.ProgressFunc(func(p dto.Progress) {
		s.logger.Debug("Ingestion progress", logger.Field("fraction", p.Fraction), logger.StringField("status", p.Status))
	})

	_, err := s.Refresh(runCtx, common.TriggerScheduled, dto.IngestionRequest{}, observer)
	switch {
	case errors.Is(err, ErrRunInProgress):
		s.logger.Info("Skipping scheduled ingestion, a run is already in progress")
	case err != nil:
		s.logger.Error("Scheduled ingestion failed", logger.ErrorField(err))
	}
}

func (s *schedulerService) Refresh(ctx context.Context, trigger string, req dto.IngestionRequest, observer dto.ProgressObserver) (*dto.RunReport, error) {
	entities, err := s.resolveEntities(ctx, req.Tickers)
	if err != nil {
		return nil, err
	}

	days := req.LookbackDays
	if days <= 0 {
		days = s.cfg.Ingestion.LookbackDays
	}
	window := dto.LookbackWindow(s.now(), days)
	startedAt := time.Now()

	report, err := s.ingestion.Execute(ctx, entities, window, observer)
	if errors.Is(err, ErrRunInProgress) {
		return nil, err
	}

	s.recordRun(ctx, trigger, entities, window, startedAt, report, err)
	if trigger == common.TriggerScheduled {
		s.notify(report, err)
	}
	return report, err
}

func (s *schedulerService) History(ctx context.Context, limit int) ([]entity.IngestionRun, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.historyRepo.FindRecent(ctx, limit)
}

// resolveEntities keeps the configured order and matches tickers by name or code, ignoring case.
func (s *schedulerService) resolveEntities(ctx context.Context, tickers []string) ([]entity.TrackedEntity, error) {
	all, err := s.entityRepo.GetTrackedEntities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tracked entities: %w", err)
	}
	if len(tickers) == 0 {
		if len(all) == 0 {
			return nil, ErrNoEntities
		}
		return all, nil
	}

	wanted := make(map[string]struct{}, len(tickers))
	for _, t := range tickers {
		wanted[strings.ToUpper(strings.TrimSpace(t))] = struct{}{}
	}

	var selected []entity.TrackedEntity
	for _, e := range all {
		_, byName := wanted[strings.ToUpper(e.Name)]
		_, byCode := wanted[strings.ToUpper(e.Code)]
		if byName || byCode {
			selected = append(selected, e)
		}
	}
	if len(selected) == 0 {
		return nil, ErrNoEntities
	}
	return selected, nil
}

func (s *schedulerService) recordRun(ctx context.Context, trigger string, entities []entity.TrackedEntity, window dto.Window, startedAt time.Time, report *dto.RunReport, runErr error) {
	names := make(pq.StringArray, 0, len(entities))
	for _, e := range entities {
		names = append(names, e.Name)
	}

	run := &entity.IngestionRun{
		Trigger:     trigger,
		Status:      common.StatusSuccess,
		Tickers:     names,
		WindowStart: window.Start,
		WindowEnd:   window.End,
		StartedAt:   startedAt,
		CompletedAt: sql.NullTime{Time: time.Now(), Valid: true},
		Failures:    datatypes.JSON("[]"),
	}

	if report != nil {
		run.ID = report.RunID
		run.NewRecords = report.NewRecords
		run.StartedAt = report.StartedAt
		run.CompletedAt = sql.NullTime{Time: report.CompletedAt, Valid: true}
		if failures := report.Failures(); len(failures) > 0 {
			if raw, err := json.Marshal(failures); err == nil {
				run.Failures = datatypes.JSON(raw)
			}
			run.Status = common.StatusPartial
		}
		if report.Cancelled {
			run.Status = common.StatusPartial
		}
	} else {
		run.ID = uuid.NewString()
	}

	if runErr != nil {
		run.ErrorMessage = sql.NullString{String: runErr.Error(), Valid: true}
		if report == nil {
			run.Status = common.StatusFailed
		} else {
			run.Status = common.StatusPartial
		}
	}

	if err := s.historyRepo.Create(context.WithoutCancel(ctx), run); err != nil {
		s.logger.Error("Failed to record ingestion run", logger.ErrorField(err), logger.StringField("run_id", run.ID))
	}
}

func (s *schedulerService) notify(report *dto.RunReport, runErr error) {
	if report == nil {
		msg := telegram.FormatErrorAlertMessage(time.Now(), "ingestion", runErr.Error())
		if err := s.notifier.SendMessage(msg); err != nil {
			s.logger.Error("Failed to send Telegram alert", logger.ErrorField(err))
		}
		return
	}

	for _, msg := range telegram.FormatRunReportForTelegram(report) {
		if err := s.notifier.SendMessage(msg); err != nil {
			s.logger.Error("Failed to send Telegram report", logger.ErrorField(err), logger.StringField("run_id", report.RunID))
			return
		}
	}
}
