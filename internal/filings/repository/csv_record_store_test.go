package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang-filing-scryper/internal/entity"
	"golang-filing-scryper/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func newTestStore(t *testing.T) (RecordStore, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "stocks")
	store := NewCSVRecordStore(dir, logger.NewNop())
	require.NoError(t, store.Init())
	return store, dir
}

var ncc = entity.TrackedEntity{Name: "NCC", Code: "500294"}

func TestCSVRecordStore_AppendWritesHeaderOnce(t *testing.T) {
	store, dir := newTestStore(t)

	first := []entity.FilingRecord{{
		TickerName: "NCC", TickerCode: "500294", DateOfFiling: date("2024-05-02"),
		Summary: "- Order win\n- Rs 500 cr", Sentiment: 42, Category: "order win", URL: "https://x/A.pdf",
	}}
	second := []entity.FilingRecord{{
		TickerName: "NCC", TickerCode: "500294", DateOfFiling: date("2024-05-03"),
		Summary: "Capex, \"phase 2\"", Sentiment: -12.5, Category: "capex", URL: "https://x/B.pdf",
	}}
	require.NoError(t, store.Append(ncc, first))
	require.NoError(t, store.Append(ncc, second))

	raw, err := os.ReadFile(filepath.Join(dir, "NCC.csv"))
	require.NoError(t, err)
	assert.Equal(t, "ticker,code,date,summary,sentiment,category,url\n"+
		"NCC,500294,2024-05-02,\"- Order win\n- Rs 500 cr\",42,order win,https://x/A.pdf\n"+
		"NCC,500294,2024-05-03,\"Capex, \"\"phase 2\"\"\",-12.5,capex,https://x/B.pdf\n", string(raw))

	urls, err := store.LoadURLs(ncc)
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"https://x/A.pdf": {}, "https://x/B.pdf": {}}, urls)
}

func TestCSVRecordStore_AppendEmptyBatchCreatesNothing(t *testing.T) {
	store, dir := newTestStore(t)

	require.NoError(t, store.Append(ncc, nil))

	_, err := os.Stat(filepath.Join(dir, "NCC.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestCSVRecordStore_LoadURLsMissingFile(t *testing.T) {
	store, _ := newTestStore(t)

	urls, err := store.LoadURLs(ncc)
	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestCSVRecordStore_LoadURLsWithoutURLColumn(t *testing.T) {
	store, dir := newTestStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "NCC.csv"), []byte("date,summary\n2024-01-01,x\n"), 0o644))

	_, err := store.LoadURLs(ncc)
	assert.Error(t, err)
}

func TestCSVRecordStore_AppendKeepsLegacyLayout(t *testing.T) {
	store, dir := newTestStore(t)
	path := filepath.Join(dir, "NCC.csv")
	legacy := "date_of_filing,ticker_name,ticker_bse,url,summary,sentiment,category\n" +
		"2023-12-01,NCC,500294,https://x/old.pdf,Old,10,results"
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	require.NoError(t, store.Append(ncc, []entity.FilingRecord{{
		TickerName: "NCC", TickerCode: "500294", DateOfFiling: date("2024-05-02"),
		Summary: "New", Sentiment: 5, Category: "capex", URL: "https://x/new.pdf",
	}}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, legacy+"\n2024-05-02,NCC,500294,https://x/new.pdf,New,5,capex\n", string(raw))

	records, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "https://x/new.pdf", records[1].URL)
	assert.Equal(t, "capex", records[1].Category)
}

func TestCSVRecordStore_LoadAllNormalizesLegacyColumns(t *testing.T) {
	store, dir := newTestStore(t)

	current := "ticker,code,date,summary,sentiment,category,url\n" +
		"TCS,532540,2024-05-02,Deal,30,order win,https://x/t.pdf\n"
	legacy := "ticker_name,ticker_bse,date_of_filing,summary,sentiment,category,url\n" +
		"TCS,532540,2024-05-02,Deal,30,order win,https://x/t.pdf\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a_current.csv"), []byte(current), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b_legacy.csv"), []byte(legacy), 0o644))

	records, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, records[0], records[1])
	assert.Equal(t, entity.FilingRecord{
		TickerName: "TCS", TickerCode: "532540", DateOfFiling: date("2024-05-02"),
		Summary: "Deal", Sentiment: 30, Category: "order win", URL: "https://x/t.pdf",
	}, records[0])
}

func TestCSVRecordStore_LoadAllModelEraColumns(t *testing.T) {
	store, dir := newTestStore(t)
	raw := "\ufeffdate,sum_bart,vader,finbert,url\n2024-02-10,Bart summary,0.8,positive,https://x/m.pdf\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "INFY.csv"), []byte(raw), 0o644))

	records, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "INFY", records[0].TickerName, "filename stem is the ticker fallback")
	assert.Equal(t, "Bart summary", records[0].Summary)
	assert.Equal(t, 0.8, records[0].Sentiment)
	assert.Equal(t, "positive", records[0].Category)
}

func TestCSVRecordStore_LoadAllSkipsBadFilesAndRows(t *testing.T) {
	store, dir := newTestStore(t)

	good := "ticker,date,url\nA,2024-01-01,u1\nA,not-a-date,u2\nA,2024-01-03,u3\n"
	noDate := "ticker,url\nB,u4\n"
	unterminated := "ticker,date,url\nC,\"2024-01-01,u5\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "A.csv"), []byte(good), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "B.csv"), []byte(noDate), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "C.csv"), []byte(unterminated), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	records, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "u1", records[0].URL)
	assert.Equal(t, "u3", records[1].URL)
}

func TestCSVRecordStore_LoadAllIgnoresNonFiniteSentiment(t *testing.T) {
	store, dir := newTestStore(t)
	raw := "ticker,date,sentiment,url\nA,2024-01-01,NaN,u1\nA,2024-01-02,Inf,u2\nA,2024-01-03,-7.5,u3\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "A.csv"), []byte(raw), 0o644))

	records, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []float64{0, 0, -7.5}, []float64{records[0].Sentiment, records[1].Sentiment, records[2].Sentiment})

	_, err = json.Marshal(records)
	assert.NoError(t, err)
}

func TestCSVRecordStore_Key(t *testing.T) {
	store, _ := newTestStore(t)

	assert.Equal(t, "ITC", store.Key(entity.TrackedEntity{Name: "ITC", Code: "500875"}))
	assert.Equal(t, "ITCHOTEL", store.Key(entity.TrackedEntity{Name: "ITCHOTEL", Code: "500875"}))
	assert.Equal(t, store.Key(entity.TrackedEntity{Name: "NCC", Code: "1"}), store.Key(entity.TrackedEntity{Name: "NCC", Code: "2"}))
	assert.Equal(t, "M_M", store.Key(entity.TrackedEntity{Name: "M/M"}))
}

func TestCSVRecordStore_LoadAllMissingDir(t *testing.T) {
	store := NewCSVRecordStore(filepath.Join(t.TempDir(), "absent"), logger.NewNop())

	records, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFileNameFor(t *testing.T) {
	assert.Equal(t, "M_M", fileNameFor("M/M"))
	assert.Equal(t, "BAJAJ-AUTO", fileNameFor(" BAJAJ-AUTO "))
}
