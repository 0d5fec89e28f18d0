package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hydroatlas/internal/config"
	"hydroatlas/internal/models"
	"hydroatlas/pkg/logger"
)

type stubSearcher struct {
	result   *models.RagSearchResult
	count    int64
	countErr error
	queries  []string
	panics   bool
}

func (s *stubSearcher) Search(_ context.Context, query string, _ int) *models.RagSearchResult {
	if s.panics {
		panic("search backend exploded")
	}
	s.queries = append(s.queries, query)
	if s.result == nil {
		return &models.RagSearchResult{}
	}
	return s.result
}

func (s *stubSearcher) IndexedSourceCount(context.Context) (int64, error) {
	return s.count, s.countErr
}

type stubLLM struct {
	answer    string
	err       error
	available bool
	model     string
	prompts   []string
}

func (s *stubLLM) Generate(_ context.Context, _, userPrompt string) (string, error) {
	s.prompts = append(s.prompts, userPrompt)
	return s.answer, s.err
}

func (s *stubLLM) IsAvailable(context.Context) bool { return s.available }

func (s *stubLLM) ModelName() string { return s.model }

type stubAvailability struct{ available bool }

func (s *stubAvailability) IsAvailable(context.Context) bool { return s.available }

type stubIndexer struct {
	objectCount int
	objectErr   error
	objectCalls int
	pdfCalls    []string
	pdfNames    []string
	textCalls   []string
	clearCalls  []string
}

func (s *stubIndexer) IndexAllWaterObjects(context.Context) (int, error) {
	s.objectCalls++
	return s.objectCount, s.objectErr
}

func (s *stubIndexer) IndexPDF(_ context.Context, path, documentName string, _, _ int) (int, error) {
	s.pdfCalls = append(s.pdfCalls, path)
	s.pdfNames = append(s.pdfNames, documentName)
	return 1, nil
}

func (s *stubIndexer) IndexText(_ context.Context, _, documentName, _ string) (int, error) {
	s.textCalls = append(s.textCalls, documentName)
	return 1, nil
}

func (s *stubIndexer) ClearIndex(_ context.Context, contentType string) error {
	s.clearCalls = append(s.clearCalls, contentType)
	return nil
}

func chatConfig() config.ChatConfig {
	return config.ChatConfig{
		TopK:                   3,
		MinRelevance:           0.3,
		HighRelevanceThreshold: 0.6,
	}
}

func relevantResult(relevances ...float64) *models.RagSearchResult {
	result := &models.RagSearchResult{Context: "---\nСведения об объекте.\n\n"}
	for _, r := range relevances {
		result.Sources = append(result.Sources, models.ChatSource{
			ID:        uuid.New(),
			Name:      "Источник",
			Relevance: r,
		})
	}
	return result
}

func newTestService(searcher *stubSearcher, llm *stubLLM, embedder *stubAvailability, indexer *stubIndexer) *Service {
	return NewService(searcher, llm, embedder, indexer, chatConfig(), logger.New("test"))
}

func TestAskUsesContextWhenRelevanceHigh(t *testing.T) {
	searcher := &stubSearcher{result: relevantResult(0.9, 0.7)}
	llm := &stubLLM{answer: "Состояние объекта хорошее.", available: true}

	svc := newTestService(searcher, llm, &stubAvailability{}, &stubIndexer{})
	resp := svc.Ask(context.Background(), "Какое состояние?")

	assert.True(t, resp.UsedRag)
	assert.Equal(t, "Состояние объекта хорошее.", resp.Answer)
	assert.Len(t, resp.Sources, 2)
	assert.Empty(t, resp.Error)
	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "Сведения об объекте.")
}

func TestAskSkipsContextBelowThreshold(t *testing.T) {
	// Average relevance 0.45 is below the 0.6 gate: sources existed but the
	// model answers from general knowledge and the response reports none.
	searcher := &stubSearcher{result: relevantResult(0.5, 0.4)}
	llm := &stubLLM{answer: "Общий ответ без контекста.", available: true}

	svc := newTestService(searcher, llm, &stubAvailability{}, &stubIndexer{})
	resp := svc.Ask(context.Background(), "Общий вопрос")

	assert.False(t, resp.UsedRag)
	assert.Empty(t, resp.Sources)
	assert.Equal(t, "Общий ответ без контекста.", resp.Answer)
	require.Len(t, llm.prompts, 1)
	assert.NotContains(t, llm.prompts[0], "Сведения об объекте.")
	assert.Contains(t, llm.prompts[0], "не найдено релевантной информации")
}

func TestAskNoRetrievalMatches(t *testing.T) {
	searcher := &stubSearcher{result: &models.RagSearchResult{}}
	llm := &stubLLM{answer: "Ответ из общих знаний.", available: true}

	svc := newTestService(searcher, llm, &stubAvailability{}, &stubIndexer{})
	resp := svc.Ask(context.Background(), "Вопрос")

	assert.False(t, resp.UsedRag)
	assert.Empty(t, resp.Sources)
	assert.NotNil(t, resp.Sources)
}

func TestAskFallbackOnGenerationError(t *testing.T) {
	searcher := &stubSearcher{result: relevantResult(0.9)}
	llm := &stubLLM{err: errors.New("model offline")}

	svc := newTestService(searcher, llm, &stubAvailability{}, &stubIndexer{})
	resp := svc.Ask(context.Background(), "Вопрос")

	assert.Equal(t, fallbackMessage, resp.Answer)
	assert.False(t, resp.UsedRag)
	assert.Empty(t, resp.Sources)
	// Generation failure is a soft outcome, not an error.
	assert.Empty(t, resp.Error)
}

func TestAskFallbackOnEmptyAnswer(t *testing.T) {
	searcher := &stubSearcher{result: relevantResult(0.9)}
	llm := &stubLLM{answer: ""}

	svc := newTestService(searcher, llm, &stubAvailability{}, &stubIndexer{})
	resp := svc.Ask(context.Background(), "Вопрос")

	assert.Equal(t, fallbackMessage, resp.Answer)
	assert.False(t, resp.UsedRag)
	assert.Empty(t, resp.Sources)
}

func TestAskRecoversFromPanic(t *testing.T) {
	searcher := &stubSearcher{panics: true}
	llm := &stubLLM{answer: "never reached"}

	svc := newTestService(searcher, llm, &stubAvailability{}, &stubIndexer{})
	resp := svc.Ask(context.Background(), "Вопрос")

	require.NotNil(t, resp)
	assert.Equal(t, errorMessage, resp.Answer)
	assert.False(t, resp.UsedRag)
	assert.Empty(t, resp.Sources)
	assert.Contains(t, resp.Error, "search backend exploded")
	assert.GreaterOrEqual(t, resp.ProcessingTimeMs, int64(0))
}

func TestGetStatusAllHealthy(t *testing.T) {
	searcher := &stubSearcher{count: 42}
	llm := &stubLLM{available: true, model: "qwen3:4b"}

	svc := newTestService(searcher, llm, &stubAvailability{available: true}, &stubIndexer{})
	status := svc.GetStatus(context.Background())

	assert.True(t, status.IsAvailable)
	assert.True(t, status.EmbeddingsAvailable)
	assert.True(t, status.LlmAvailable)
	assert.Equal(t, int64(42), status.IndexedObjectsCount)
	assert.Equal(t, "qwen3:4b", status.ModelName)
	assert.Empty(t, status.Error)
}

func TestGetStatusEmbeddingsDown(t *testing.T) {
	searcher := &stubSearcher{count: 42}
	llm := &stubLLM{available: true, model: "qwen3:4b"}

	svc := newTestService(searcher, llm, &stubAvailability{available: false}, &stubIndexer{})
	status := svc.GetStatus(context.Background())

	assert.False(t, status.IsAvailable)
	assert.False(t, status.EmbeddingsAvailable)
	assert.True(t, status.LlmAvailable)
	assert.Equal(t, int64(42), status.IndexedObjectsCount)
}

func TestGetStatusCountError(t *testing.T) {
	searcher := &stubSearcher{countErr: errors.New("database unreachable")}
	llm := &stubLLM{available: true, model: "qwen3:4b"}

	svc := newTestService(searcher, llm, &stubAvailability{available: true}, &stubIndexer{})
	status := svc.GetStatus(context.Background())

	assert.False(t, status.IsAvailable)
	assert.Contains(t, status.Error, "database unreachable")
	assert.Equal(t, "qwen3:4b", status.ModelName)
}

func TestIndexAllWaterObjectsDelegates(t *testing.T) {
	indexer := &stubIndexer{objectCount: 7}
	svc := newTestService(&stubSearcher{}, &stubLLM{}, &stubAvailability{}, indexer)

	count, err := svc.IndexAllWaterObjects(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}

func TestFallbackMessagesAreRussian(t *testing.T) {
	assert.True(t, strings.HasPrefix(fallbackMessage, "Не удалось"))
	assert.True(t, strings.HasPrefix(errorMessage, "Произошла ошибка"))
}
