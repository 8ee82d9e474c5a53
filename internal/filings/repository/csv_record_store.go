package repository

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang-filing-scryper/internal/entity"
	"golang-filing-scryper/pkg/logger"
	"golang-filing-scryper/pkg/utils"
)

// Canonical column names written to new ticker files.
const (
	colTicker    = "ticker"
	colCode      = "code"
	colDate      = "date"
	colSummary   = "summary"
	colSentiment = "sentiment"
	colCategory  = "category"
	colURL       = "url"
)

var csvHeader = []string{colTicker, colCode, colDate, colSummary, colSentiment, colCategory, colURL}

// columnAliases maps every accepted column name to its canonical field, in lookup priority.
// Older pipeline versions wrote ticker_name/ticker_bse/date_of_filing, and the model-era
// files carried per-model summary and sentiment columns.
var columnAliases = map[string][]string{
	colTicker:    {"ticker", "ticker_name"},
	colCode:      {"code", "ticker_bse", "bse_code"},
	colDate:      {"date", "date_of_filing"},
	colSummary:   {"summary", "sum_peg", "sum_bart", "sum_t5"},
	colSentiment: {"sentiment", "vader"},
	colCategory:  {"category", "finbert"},
	colURL:       {"url"},
}

// RecordStore persists FilingRecords as one append-only CSV per ticker.
type RecordStore interface {
	// Init makes sure the store location exists.
	Init() error
	// Key identifies the file a ticker's records go to. Writers of the same key must be serialised.
	Key(ticker entity.TrackedEntity) string
	// LoadURLs returns the document URLs already stored for the ticker.
	LoadURLs(ticker entity.TrackedEntity) (map[string]struct{}, error)
	// Append writes records to the ticker's file in a single write.
	Append(ticker entity.TrackedEntity, records []entity.FilingRecord) error
	// LoadAll reads every ticker file. Unreadable files are skipped.
	LoadAll(ctx context.Context) ([]entity.FilingRecord, error)
}

type csvRecordStore struct {
	dir    string
	logger *logger.Logger
}

// NewCSVRecordStore creates a RecordStore rooted at dir.
func NewCSVRecordStore(dir string, log *logger.Logger) RecordStore {
	return &csvRecordStore{dir: dir, logger: log}
}

func (s *csvRecordStore) Init() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir %s: %w", s.dir, err)
	}
	return nil
}

func (s *csvRecordStore) Key(ticker entity.TrackedEntity) string {
	return fileNameFor(ticker.Name)
}

func (s *csvRecordStore) path(ticker entity.TrackedEntity) string {
	return filepath.Join(s.dir, s.Key(ticker)+".csv")
}

func fileNameFor(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', 0:
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
}

func (s *csvRecordStore) LoadURLs(ticker entity.TrackedEntity) (map[string]struct{}, error) {
	urls := make(map[string]struct{})

	f, err := os.Open(s.path(ticker))
	if errors.Is(err, os.ErrNotExist) {
		return urls, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open store for %s: %w", ticker.Name, err)
	}
	defer f.Close()

	r := newCSVReader(f)
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return urls, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header for %s: %w", ticker.Name, err)
	}
	idx := indexColumns(header)
	urlIdx, ok := idx[colURL]
	if !ok {
		return nil, fmt.Errorf("store for %s has no url column", ticker.Name)
	}

	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read store for %s: %w", ticker.Name, err)
		}
		if u := cell(row, urlIdx); u != "" {
			urls[u] = struct{}{}
		}
	}
	return urls, nil
}

func (s *csvRecordStore) Append(ticker entity.TrackedEntity, records []entity.FilingRecord) error {
	if len(records) == 0 {
		return nil
	}

	path := s.path(ticker)
	header, needsHeader, needsNewline, err := s.existingLayout(path)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if needsNewline {
		buf.WriteByte('\n')
	}
	w := csv.NewWriter(&buf)
	if needsHeader {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("failed to encode header: %w", err)
		}
	}
	for _, rec := range records {
		if err := w.Write(rowFor(header, rec)); err != nil {
			return fmt.Errorf("failed to encode record %s: %w", rec.URL, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open store for %s: %w", ticker.Name, err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to append to store for %s: %w", ticker.Name, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to sync store for %s: %w", ticker.Name, err)
	}
	return f.Close()
}

// existingLayout returns the header to write rows against. New or empty files get the
// canonical header; existing files keep theirs so legacy layouts stay aligned.
func (s *csvRecordStore) existingLayout(path string) (header []string, needsHeader, needsNewline bool, err error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return csvHeader, true, false, nil
	}
	if err != nil {
		return nil, false, false, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, false, false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.Size() == 0 {
		return csvHeader, true, false, nil
	}

	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return nil, false, false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	header, err = newCSVReader(f).Read()
	if err != nil {
		return nil, false, false, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	if _, ok := indexColumns(header)[colURL]; !ok {
		return nil, false, false, fmt.Errorf("store %s has no url column", path)
	}
	return header, false, last[0] != '\n', nil
}

func rowFor(header []string, rec entity.FilingRecord) []string {
	row := make([]string, len(header))
	for i, name := range header {
		switch canonicalColumn(name) {
		case colTicker:
			row[i] = rec.TickerName
		case colCode:
			row[i] = rec.TickerCode
		case colDate:
			row[i] = rec.DateOfFiling.Format(utils.DateLayout)
		case colSummary:
			row[i] = rec.Summary
		case colSentiment:
			row[i] = strconv.FormatFloat(rec.Sentiment, 'f', -1, 64)
		case colCategory:
			row[i] = rec.Category
		case colURL:
			row[i] = rec.URL
		}
	}
	return row
}

func (s *csvRecordStore) LoadAll(ctx context.Context) ([]entity.FilingRecord, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list data dir %s: %w", s.dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var all []entity.FilingRecord
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records, dropped, err := s.readFile(filepath.Join(s.dir, name))
		if err != nil {
			s.logger.Warn("Skipping unreadable filing store", logger.StringField("file", name), logger.ErrorField(err))
			continue
		}
		if dropped > 0 {
			s.logger.Debug("Dropped rows without a parseable date", logger.StringField("file", name), logger.IntField("dropped", dropped))
		}
		all = append(all, records...)
	}
	return all, nil
}

func (s *csvRecordStore) readFile(path string) ([]entity.FilingRecord, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	rows, err := newCSVReader(f).ReadAll()
	if err != nil {
		return nil, 0, err
	}
	if len(rows) == 0 {
		return nil, 0, nil
	}

	idx := indexColumns(rows[0])
	dateIdx, ok := idx[colDate]
	if !ok {
		return nil, 0, errors.New("no date column")
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	records := make([]entity.FilingRecord, 0, len(rows)-1)
	dropped := 0
	for _, row := range rows[1:] {
		date, ok := utils.ParseDate(cell(row, dateIdx))
		if !ok {
			dropped++
			continue
		}
		rec := entity.FilingRecord{
			TickerName:   stem,
			DateOfFiling: date,
		}
		if i, ok := idx[colTicker]; ok {
			rec.TickerName = cell(row, i)
		}
		if i, ok := idx[colCode]; ok {
			rec.TickerCode = cell(row, i)
		}
		if i, ok := idx[colSummary]; ok {
			rec.Summary = cell(row, i)
		}
		if i, ok := idx[colSentiment]; ok {
			if v, err := strconv.ParseFloat(cell(row, i), 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
				rec.Sentiment = v
			}
		}
		if i, ok := idx[colCategory]; ok {
			rec.Category = cell(row, i)
		}
		if i, ok := idx[colURL]; ok {
			rec.URL = cell(row, i)
		}
		records = append(records, rec)
	}
	return records, dropped, nil
}

func newCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

func normalizeColumn(name string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
}

func canonicalColumn(name string) string {
	name = normalizeColumn(name)
	for canonical, aliases := range columnAliases {
		for _, a := range aliases {
			if a == name {
				return canonical
			}
		}
	}
	return ""
}

// indexColumns maps each canonical field to the position of its highest-priority alias.
func indexColumns(header []string) map[string]int {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		if _, seen := positions[normalizeColumn(h)]; !seen {
			positions[normalizeColumn(h)] = i
		}
	}

	idx := make(map[string]int, len(columnAliases))
	for canonical, aliases := range columnAliases {
		for _, a := range aliases {
			if i, ok := positions[a]; ok {
				idx[canonical] = i
				break
			}
		}
	}
	return idx
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
