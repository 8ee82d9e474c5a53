package service

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"golang-filing-scryper/internal/entity"
	"golang-filing-scryper/internal/filings/config"
	"golang-filing-scryper/internal/filings/dto"
	"golang-filing-scryper/internal/filings/repository"
	"golang-filing-scryper/pkg/common"
	"golang-filing-scryper/pkg/lock"
	"golang-filing-scryper/pkg/logger"
	"golang-filing-scryper/pkg/metrics"
	"golang-filing-scryper/pkg/textextract"
	"golang-filing-scryper/pkg/utils"

	"github.com/google/uuid"
)

// ErrRunInProgress is returned when another ingestion run holds the run lock.
var ErrRunInProgress = errors.New("an ingestion run is already in progress")

// IngestionService runs the incremental filing ingestion.
type IngestionService interface {
	// Run ingests new filings for entities within window and returns the number of appended records.
	Run(ctx context.Context, entities []entity.TrackedEntity, window dto.Window, observer dto.ProgressObserver) (int, error)
	// Execute is Run with the full per-entity report.
	Execute(ctx context.Context, entities []entity.TrackedEntity, window dto.Window, observer dto.ProgressObserver) (*dto.RunReport, error)
}

type ingestionService struct {
	cfg      *config.Config
	logger   *logger.Logger
	feedRepo repository.EventFeedRepository
	docRepo  repository.DocumentRepository
	aiRepo   repository.AIRepository
	store    repository.RecordStore
	locker   lock.Locker
	metrics  *metrics.Ingestion
	today    func() time.Time
}

// NewIngestionService creates a new IngestionService.
func NewIngestionService(
	cfg *config.Config,
	log *logger.Logger,
	feedRepo repository.EventFeedRepository,
	docRepo repository.DocumentRepository,
	aiRepo repository.AIRepository,
	store repository.RecordStore,
	locker lock.Locker,
	m *metrics.Ingestion,
) IngestionService {
	if m == nil {
		m = metrics.NewIngestion(nil)
	}
	return &ingestionService{
		cfg:      cfg,
		logger:   log,
		feedRepo: feedRepo,
		docRepo:  docRepo,
		aiRepo:   aiRepo,
		store:    store,
		locker:   locker,
		metrics:  m,
		today:    func() time.Time { return utils.TruncateToDate(utils.TimeNowIST()) },
	}
}

func (s *ingestionService) Run(ctx context.Context, entities []entity.TrackedEntity, window dto.Window, observer dto.ProgressObserver) (int, error) {
	report, err := s.Execute(ctx, entities, window, observer)
	if report == nil {
		return 0, err
	}
	return report.NewRecords, err
}

func (s *ingestionService) Execute(ctx context.Context, entities []entity.TrackedEntity, window dto.Window, observer dto.ProgressObserver) (*dto.RunReport, error) {
	if observer == nil {
		observer = dto.NopObserver{}
	}

	if err := s.store.Init(); err != nil {
		return nil, &dto.StageError{Stage: dto.StagePersist, Err: err}
	}

	release, err := s.locker.TryLock(ctx, common.LockKeyIngestionRun, s.cfg.Ingestion.LockTTL)
	if errors.Is(err, lock.ErrLockHeld) {
		return nil, ErrRunInProgress
	}
	if err != nil {
		return nil, &dto.StageError{Stage: dto.StageLock, Err: err}
	}
	defer release()

	report := &dto.RunReport{
		RunID:     uuid.NewString(),
		Window:    window,
		StartedAt: time.Now(),
	}
	log := s.logger.With(logger.StringField("run_id", report.RunID))
	log.Info("Starting ingestion run",
		logger.IntField("entities", len(entities)),
		logger.StringField("window_start", window.Start.Format(utils.DateLayout)),
		logger.StringField("window_end", window.End.Format(utils.DateLayout)),
	)

	results := make([]*dto.EntityReport, len(entities))
	var (
		mu          sync.Mutex
		wg          sync.WaitGroup
		completed   int
		persistErrs []error
	)
	total := len(entities)

	workers := s.cfg.Ingestion.MaxConcurrentEntities
	if workers <= 0 {
		workers = 1
	}
	if workers > total {
		workers = total
	}

	jobs := make(chan int)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		utils.GoSafe(func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					continue
				}
				rep, err := s.safeProcessEntity(ctx, log, entities[idx], window)

				mu.Lock()
				results[idx] = &rep
				completed++
				if err != nil {
					persistErrs = append(persistErrs, err)
				}
				observer.OnProgress(entityProgress(rep, completed, total))
				mu.Unlock()
			}
		})
	}

dispatch:
	for idx := range entities {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- idx:
		}
	}
	close(jobs)
	wg.Wait()

	for _, rep := range results {
		if rep == nil {
			continue
		}
		report.Entities = append(report.Entities, *rep)
		report.NewRecords += rep.Appended
	}
	report.Cancelled = ctx.Err() != nil
	report.CompletedAt = time.Now()

	s.metrics.RunDuration.Observe(report.CompletedAt.Sub(report.StartedAt).Seconds())
	if len(persistErrs) == 0 {
		s.metrics.LastRunSuccess.SetToCurrentTime()
	}

	fraction := 1.0
	if total > 0 {
		fraction = float64(completed) / float64(total)
	}
	observer.OnProgress(dto.Progress{
		Fraction: fraction,
		Status:   report.StatusMessage(),
		Done:     true,
	})

	log.Info("Ingestion run finished",
		logger.IntField("new_records", report.NewRecords),
		logger.IntField("entities_processed", len(report.Entities)),
		logger.IntField("failures", len(report.Failures())),
		logger.Field("cancelled", report.Cancelled),
	)

	return report, errors.Join(persistErrs...)
}

// entityProgress reports a finished entity. When events were skipped, Stage carries the
// stage of the last failure and the status lists the skip count per stage.
func entityProgress(rep dto.EntityReport, completed, total int) dto.Progress {
	p := dto.Progress{
		Fraction: float64(completed) / float64(total),
		Status:   fmt.Sprintf("Processed %s (%d/%d)", rep.Ticker, completed, total),
	}
	if n := len(rep.Failures); n > 0 {
		p.Stage = rep.Failures[n-1].Stage
		counts := make(map[dto.Stage]int)
		var order []string
		for _, f := range rep.Failures {
			if counts[f.Stage] == 0 {
				order = append(order, string(f.Stage))
			}
			counts[f.Stage]++
		}
		for i, stage := range order {
			order[i] = fmt.Sprintf("%s=%d", stage, counts[dto.Stage(stage)])
		}
		p.Status += ", skipped " + strings.Join(order, " ")
	}
	return p
}

// safeProcessEntity turns a panic while processing one entity into an internal failure,
// so the run still accounts for the entity and releases its locks.
func (s *ingestionService) safeProcessEntity(ctx context.Context, log *logger.Logger, ent entity.TrackedEntity, window dto.Window) (rep dto.EntityReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("Entity processing panicked",
				logger.StringField("ticker", ent.Name),
				logger.StringField("stack", string(debug.Stack())),
			)
			rep = dto.EntityReport{Ticker: ent.Name, Code: ent.Code}
			s.recordFailure(log, &rep, dto.StageFailure{Stage: dto.StageInternal, Error: fmt.Sprintf("panic: %v", r)})
			err = nil
		}
	}()
	return s.processEntity(ctx, log, ent, window)
}

// processEntity runs the pipeline for one entity. The returned error is only set when
// the entity's batch could not be persisted.
func (s *ingestionService) processEntity(ctx context.Context, log *logger.Logger, ent entity.TrackedEntity, window dto.Window) (dto.EntityReport, error) {
	rep := dto.EntityReport{Ticker: ent.Name, Code: ent.Code}
	log = log.With(logger.StringField("ticker", ent.Name), logger.StringField("code", ent.Code))

	release, err := s.locker.TryLock(ctx, common.LockKeyIngestionTickerPrefix+s.store.Key(ent), s.cfg.Ingestion.LockTTL)
	if err != nil {
		s.recordFailure(log, &rep, dto.StageFailure{Stage: dto.StageLock, Error: err.Error()})
		return rep, nil
	}
	defer release()

	known, err := s.store.LoadURLs(ent)
	if err != nil {
		s.recordFailure(log, &rep, dto.StageFailure{Stage: dto.StageLoad, Error: err.Error()})
		return rep, nil
	}

	events, err := s.feedRepo.ListEvents(ctx, ent.Code, window)
	if err != nil {
		s.recordFailure(log, &rep, dto.StageFailure{Stage: dto.StageFeed, Error: err.Error()})
	}
	rep.Events = len(events)

	var batch []entity.FilingRecord
	for _, ev := range events {
		if !utils.ShouldContinue(ctx, log) {
			break
		}

		rec, duplicate, failure := s.processEvent(ctx, ent, ev, known)
		switch {
		case failure != nil:
			s.recordFailure(log, &rep, *failure)
		case duplicate:
			rep.Duplicates++
			s.metrics.Duplicates.WithLabelValues(ent.Name).Inc()
		case rec != nil:
			batch = append(batch, *rec)
		}
	}

	if len(batch) == 0 {
		log.Info("No new filings", logger.IntField("events", rep.Events), logger.IntField("duplicates", rep.Duplicates))
		return rep, nil
	}

	if err := s.store.Append(ent, batch); err != nil {
		s.recordFailure(log, &rep, dto.StageFailure{Stage: dto.StagePersist, Error: err.Error()})
		return rep, fmt.Errorf("%s: %w", ent.Name, err)
	}
	rep.Appended = len(batch)
	rep.Records = batch
	s.metrics.RecordsAppended.WithLabelValues(ent.Name).Add(float64(len(batch)))

	log.Info("Appended new filings",
		logger.IntField("appended", rep.Appended),
		logger.IntField("events", rep.Events),
		logger.IntField("duplicates", rep.Duplicates),
	)
	return rep, nil
}

// processEvent turns one disclosure event into a record. Events without an attachment
// yield neither a record nor a failure.
func (s *ingestionService) processEvent(ctx context.Context, ent entity.TrackedEntity, ev dto.DisclosureEvent, known map[string]struct{}) (*entity.FilingRecord, bool, *dto.StageFailure) {
	if ev.Attachment == "" {
		return nil, false, nil
	}

	date, ok := utils.ParseDate(ev.DisseminatedAt)
	if !ok {
		date = s.today()
	}
	fail := func(stage dto.Stage, url string, err error) *dto.StageFailure {
		return &dto.StageFailure{
			Stage: stage,
			Date:  date.Format(utils.DateLayout),
			URL:   url,
			Error: err.Error(),
		}
	}

	candidates := s.docRepo.CandidateURLs(ev.Attachment)
	if len(candidates) == 0 {
		return nil, false, fail(dto.StageResolve, ev.Attachment, errors.New("no candidate document URLs"))
	}
	for _, u := range candidates {
		if _, seen := known[u]; seen {
			return nil, true, nil
		}
	}

	doc, err := s.docRepo.Fetch(ctx, candidates)
	if err != nil {
		return nil, false, fail(dto.StageFetch, candidates[0], err)
	}

	text, err := textextract.Extract(textextract.DetectFormat(doc.URL, doc.ContentType, doc.Body), doc.Body)
	if err != nil {
		return nil, false, fail(dto.StageExtract, doc.URL, err)
	}
	text = utils.TruncateRunes(utils.SafeText(text), s.cfg.AI.MaxInputChars)

	result, err := s.aiRepo.Analyze(ctx, dto.KindCorporateFiling, text)
	if err != nil {
		return nil, false, fail(dto.StageAnalyze, doc.URL, err)
	}

	for _, u := range candidates {
		known[u] = struct{}{}
	}
	known[doc.URL] = struct{}{}

	return &entity.FilingRecord{
		TickerName:   ent.Name,
		TickerCode:   ent.Code,
		DateOfFiling: date,
		Summary:      result.Summary,
		Sentiment:    *result.Sentiment,
		Category:     result.Category,
		URL:          doc.URL,
	}, false, nil
}

func (s *ingestionService) recordFailure(log *logger.Logger, rep *dto.EntityReport, f dto.StageFailure) {
	f.Ticker = rep.Ticker
	rep.Failures = append(rep.Failures, f)
	s.metrics.EventsSkipped.WithLabelValues(string(f.Stage)).Inc()

	log.Warn("Skipped ingestion item",
		logger.StringField("stage", string(f.Stage)),
		logger.StringField("date", f.Date),
		logger.StringField("url", f.URL),
		logger.StringField("error", f.Error),
	)
}
