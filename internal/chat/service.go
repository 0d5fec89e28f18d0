package chat

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"hydroatlas/internal/config"
	"hydroatlas/internal/models"
	"hydroatlas/internal/rag"
	"hydroatlas/pkg/logger"
)

// User-facing messages for degraded outcomes. The chat endpoint always
// returns a well-formed response, never a transport-level failure.
const (
	fallbackMessage = "Не удалось сгенерировать ответ. Попробуйте переформулировать вопрос."
	errorMessage    = "Произошла ошибка при обработке запроса. Попробуйте позже."
)

// Searcher is the retrieval engine surface the orchestrator depends on.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) *models.RagSearchResult
	IndexedSourceCount(ctx context.Context) (int64, error)
}

// LLM is the generation backend surface the orchestrator depends on.
type LLM interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	IsAvailable(ctx context.Context) bool
	ModelName() string
}

// AvailabilityChecker reports whether an AI backend's model is loaded.
type AvailabilityChecker interface {
	IsAvailable(ctx context.Context) bool
}

// DocumentIndexer is the indexing surface the orchestrator delegates to.
type DocumentIndexer interface {
	IndexAllWaterObjects(ctx context.Context) (int, error)
	IndexPDF(ctx context.Context, path, documentName string, chunkSize, overlap int) (int, error)
	IndexText(ctx context.Context, content, documentName, contentType string) (int, error)
	ClearIndex(ctx context.Context, contentType string) error
}

// Service orchestrates retrieval, relevance gating, prompt construction and
// generation into one stateless request/response cycle.
type Service struct {
	searcher Searcher
	llm      LLM
	embedder AvailabilityChecker
	indexer  DocumentIndexer
	cfg      config.ChatConfig
	log      *logger.Logger
}

// NewService creates the chat orchestrator.
func NewService(searcher Searcher, llm LLM, embedder AvailabilityChecker, indexer DocumentIndexer, cfg config.ChatConfig, log *logger.Logger) *Service {
	return &Service{
		searcher: searcher,
		llm:      llm,
		embedder: embedder,
		indexer:  indexer,
		cfg:      cfg,
		log:      log,
	}
}

// Ask answers a question, injecting retrieved context only when the average
// relevance clears the high-relevance threshold. Retrieval below that bar
// sends the bare question and reports no sources, even when low-relevance
// matches existed.
func (s *Service) Ask(ctx context.Context, question string) (resp *models.ChatResponse) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic during chat request: %v", r)
			s.log.WithError(err).Error("chat request failed")
			resp = &models.ChatResponse{
				Answer:           errorMessage,
				Sources:          []models.ChatSource{},
				ProcessingTimeMs: time.Since(start).Milliseconds(),
				UsedRag:          false,
				Error:            err.Error(),
			}
		}
	}()

	ragResult := s.searcher.Search(ctx, question, s.cfg.TopK)

	usedRag := ragResult.HasRelevantContext() &&
		ragResult.AverageRelevance() >= s.cfg.HighRelevanceThreshold

	s.log.WithPayload(map[string]interface{}{
		"sources":       len(ragResult.Sources),
		"avg_relevance": ragResult.AverageRelevance(),
		"used_rag":      usedRag,
	}).Debug("RAG search completed")

	ragContext := ""
	if usedRag {
		ragContext = ragResult.Context
	}
	userPrompt := rag.BuildUserPrompt(question, ragContext)

	answer, err := s.llm.Generate(ctx, rag.WaterExpertSystemPrompt, userPrompt)
	if err != nil {
		s.log.WithError(err).Warn("LLM generation failed")
		answer = ""
	}

	if answer == "" {
		return &models.ChatResponse{
			Answer:           fallbackMessage,
			Sources:          []models.ChatSource{},
			ProcessingTimeMs: time.Since(start).Milliseconds(),
			UsedRag:          false,
		}
	}

	sources := []models.ChatSource{}
	if usedRag {
		sources = ragResult.Sources
	}

	return &models.ChatResponse{
		Answer:           answer,
		Sources:          sources,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		UsedRag:          usedRag,
	}
}

// GetStatus probes the embedding backend, the LLM backend and the indexed
// source count concurrently. Any probe error surfaces in the Error field and
// forces IsAvailable to false; the call itself never fails.
func (s *Service) GetStatus(ctx context.Context) *models.ChatStatus {
	status := &models.ChatStatus{
		ModelName: s.llm.ModelName(),
	}

	var (
		embeddingsAvailable bool
		llmAvailable        bool
		indexedCount        int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		embeddingsAvailable = s.embedder.IsAvailable(gctx)
		return nil
	})
	g.Go(func() error {
		llmAvailable = s.llm.IsAvailable(gctx)
		return nil
	})
	g.Go(func() error {
		var err error
		indexedCount, err = s.searcher.IndexedSourceCount(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		s.log.WithError(err).Error("chat status check failed")
		status.Error = err.Error()
		status.IsAvailable = false
		return status
	}

	status.EmbeddingsAvailable = embeddingsAvailable
	status.LlmAvailable = llmAvailable
	status.IndexedObjectsCount = indexedCount
	status.IsAvailable = embeddingsAvailable && llmAvailable

	return status
}

// IndexAllWaterObjects triggers bulk indexing of the structured corpus.
func (s *Service) IndexAllWaterObjects(ctx context.Context) (int, error) {
	return s.indexer.IndexAllWaterObjects(ctx)
}
