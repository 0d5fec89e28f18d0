package chat

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"hydroatlas/internal/config"
	"hydroatlas/pkg/logger"
)

// AutoIndexer is the startup supervisor that populates an empty index once
// the embedding backend comes up. It retries availability with a fixed
// backoff, gives up after a bounded number of attempts, and logs-and-continues
// on any indexing failure. Manual re-indexing through the API stays possible
// regardless of the outcome here.
type AutoIndexer struct {
	searcher Searcher
	embedder AvailabilityChecker
	indexer  DocumentIndexer
	cfg      config.IndexingConfig
	log      *logger.Logger
}

// NewAutoIndexer creates the startup indexing supervisor.
func NewAutoIndexer(searcher Searcher, embedder AvailabilityChecker, indexer DocumentIndexer, cfg config.IndexingConfig, log *logger.Logger) *AutoIndexer {
	return &AutoIndexer{
		searcher: searcher,
		embedder: embedder,
		indexer:  indexer,
		cfg:      cfg,
		log:      log,
	}
}

// Run executes the auto-indexing pass. It blocks until done or ctx is
// cancelled; callers normally run it in its own goroutine.
func (a *AutoIndexer) Run(ctx context.Context) {
	if !a.cfg.AutoIndex {
		a.log.Info("automatic indexing disabled")
		return
	}

	a.log.Info("auto-indexer started, waiting for embedding backend")

	if !a.waitForEmbeddings(ctx) {
		a.log.Warn("embedding backend did not become available, skipping automatic indexing")
		return
	}

	count, err := a.searcher.IndexedSourceCount(ctx)
	if err != nil {
		a.log.WithError(err).Error("failed to check index status")
		return
	}
	if count > 0 {
		a.log.WithPayload(map[string]interface{}{"indexed": count}).Info("index already populated, skipping automatic indexing")
		return
	}

	indexed, err := a.indexer.IndexAllWaterObjects(ctx)
	if err != nil {
		a.log.WithError(err).Error("automatic water object indexing failed")
	} else {
		a.log.WithPayload(map[string]interface{}{"count": indexed}).Info("automatically indexed water objects")
	}

	a.indexBundledPDFs(ctx)
}

func (a *AutoIndexer) waitForEmbeddings(ctx context.Context) bool {
	delay := time.Duration(a.cfg.WaitDelaySeconds) * time.Second

	for attempt := 1; attempt <= a.cfg.WaitRetries; attempt++ {
		if a.embedder.IsAvailable(ctx) {
			a.log.Info("embedding backend is ready")
			return true
		}

		a.log.WithPayload(map[string]interface{}{
			"attempt": attempt,
			"of":      a.cfg.WaitRetries,
		}).Info("waiting for embedding backend")

		select {
		case <-ctx.Done():
			return false
		case <-time.After(delay):
		}
	}

	return false
}

// cleanDocumentName turns a bundled PDF file name into a readable source
// name: an upload-id prefix (10+ alphanumerics before the first '_' or '-')
// is dropped, separators become spaces and the first letter is capitalized.
func cleanDocumentName(fileName string) string {
	name := fileName

	if len([]rune(name)) > 12 && nameLike(name) {
		if idx := strings.IndexAny(name, "_-"); idx >= 0 {
			prefix := name[:idx]
			if len([]rune(prefix)) >= 10 && alphanumeric(prefix) {
				name = name[idx+1:]
			}
		}
	}

	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)

	if runes := []rune(name); len(runes) > 0 {
		runes[0] = unicode.ToUpper(runes[0])
		name = string(runes)
	}

	return strings.TrimSpace(name)
}

func nameLike(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' {
			return false
		}
	}
	return true
}

func alphanumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func (a *AutoIndexer) indexBundledPDFs(ctx context.Context) {
	entries, err := os.ReadDir(a.cfg.DocsDir)
	if err != nil {
		a.log.WithPayload(map[string]interface{}{"dir": a.cfg.DocsDir}).Info("no bundled PDF directory, skipping")
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}

		path := filepath.Join(a.cfg.DocsDir, entry.Name())
		name := cleanDocumentName(strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())))

		count, err := a.indexer.IndexPDF(ctx, path, name, a.cfg.ChunkSize, a.cfg.ChunkOverlap)
		if err != nil {
			a.log.WithError(err).WithPayload(map[string]interface{}{"file": entry.Name()}).Error("failed to index bundled PDF")
			continue
		}
		a.log.WithPayload(map[string]interface{}{
			"file":   entry.Name(),
			"chunks": count,
		}).Info("indexed bundled PDF")
	}
}
