package service

import (
	"context"
	"errors"
	"testing"

	"golang-filing-scryper/internal/filings/config"
	"golang-filing-scryper/internal/filings/dto"
	"golang-filing-scryper/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingAI struct {
	kind dto.DocumentKind
	text string
	err  error
}

func (r *recordingAI) Analyze(_ context.Context, kind dto.DocumentKind, text string) (*dto.AnalysisResult, error) {
	r.kind, r.text = kind, text
	if r.err != nil {
		return nil, r.err
	}
	res := analysis("Summary", 12, "results")
	return &res, nil
}

func newSummaryFixture() (SummaryService, *fakeDocs, *recordingAI) {
	cfg := &config.Config{AI: config.AI{MaxInputChars: 4000}}
	docs := &fakeDocs{}
	ai := &recordingAI{}
	return NewSummaryService(cfg, logger.NewNop(), docs, ai), docs, ai
}

func TestSummaryService_Summarize(t *testing.T) {
	svc, docs, ai := newSummaryFixture()
	docs.add("https://example.com/q4", "Revenue grew 12 percent")

	res, err := svc.Summarize(context.Background(), "https://example.com/q4", dto.KindEarningsCall)
	require.NoError(t, err)
	assert.Equal(t, "Summary", res.Summary)
	assert.Equal(t, dto.KindEarningsCall, ai.kind)
	assert.Equal(t, "Revenue grew 12 percent", ai.text)
}

func TestSummaryService_StageErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(docs *fakeDocs, ai *recordingAI)
		stage dto.Stage
	}{
		{
			name:  "fetch",
			setup: func(*fakeDocs, *recordingAI) {},
			stage: dto.StageFetch,
		},
		{
			name:  "extract",
			setup: func(docs *fakeDocs, _ *recordingAI) { docs.add("https://example.com/doc", "") },
			stage: dto.StageExtract,
		},
		{
			name: "analyze",
			setup: func(docs *fakeDocs, ai *recordingAI) {
				docs.add("https://example.com/doc", "text")
				ai.err = errors.New("status code: 429")
			},
			stage: dto.StageAnalyze,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, docs, ai := newSummaryFixture()
			tt.setup(docs, ai)

			_, err := svc.Summarize(context.Background(), "https://example.com/doc", dto.KindGeneral)
			var stageErr *dto.StageError
			require.ErrorAs(t, err, &stageErr)
			assert.Equal(t, tt.stage, stageErr.Stage)
		})
	}
}

func TestSummaryService_UnsupportedFormat(t *testing.T) {
	svc, docs, _ := newSummaryFixture()
	docs.docs = map[string]*dto.Document{
		"https://example.com/a.bin": {URL: "https://example.com/a.bin", ContentType: "application/octet-stream", Body: []byte{0x01, 0x02}},
	}

	_, err := svc.Summarize(context.Background(), "https://example.com/a.bin", dto.KindGeneral)
	var stageErr *dto.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, dto.StageExtract, stageErr.Stage)
}
