package rag

import (
	"context"
	"errors"
	"strings"

	"hydroatlas/internal/models"
)

// fakeEmbedder returns a fixed vector for every text unless the text contains
// one of the failOn markers.
type fakeEmbedder struct {
	vector    []float32
	failOn    []string
	failAll   bool
	available bool
	calls     []string
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{vector: []float32{0.1, 0.2, 0.3}, available: true}
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls = append(f.calls, text)
	if f.failAll {
		return nil, errors.New("embedding backend down")
	}
	for _, marker := range f.failOn {
		if strings.Contains(text, marker) {
			return nil, errors.New("embedding failed")
		}
	}
	return f.vector, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) [][]float32 {
	results := make([][]float32, 0, len(texts))
	for _, text := range texts {
		if v, err := f.Embed(ctx, text); err == nil {
			results = append(results, v)
		}
	}
	return results
}

func (f *fakeEmbedder) IsAvailable(context.Context) bool {
	return f.available
}

// fakeStore records every mutation and serves canned search results.
type fakeStore struct {
	waterResults []models.SearchResultItem
	docResults   []models.SearchResultItem
	count        int64

	replaced [][]models.WaterObjectEmbedding
	inserted [][]models.DocumentEmbedding
	cleared  []string

	searchWaterErr error
	searchDocErr   error
	replaceErr     error
	insertErr      error
}

func (f *fakeStore) ReplaceWaterObjectChunks(_ context.Context, chunks []models.WaterObjectEmbedding) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.replaced = append(f.replaced, chunks)
	return nil
}

func (f *fakeStore) InsertDocumentChunks(_ context.Context, chunks []models.DocumentEmbedding) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, chunks)
	return nil
}

func (f *fakeStore) SearchWaterObjects(_ context.Context, _ []float32, topK int) ([]models.SearchResultItem, error) {
	if f.searchWaterErr != nil {
		return nil, f.searchWaterErr
	}
	return capResults(f.waterResults, topK), nil
}

func (f *fakeStore) SearchDocuments(_ context.Context, _ []float32, topK int) ([]models.SearchResultItem, error) {
	if f.searchDocErr != nil {
		return nil, f.searchDocErr
	}
	return capResults(f.docResults, topK), nil
}

func (f *fakeStore) Clear(_ context.Context, contentType string) error {
	f.cleared = append(f.cleared, contentType)
	return nil
}

func (f *fakeStore) CountIndexedSources(context.Context) (int64, error) {
	return f.count, nil
}

func capResults(items []models.SearchResultItem, topK int) []models.SearchResultItem {
	if len(items) > topK {
		return items[:topK]
	}
	return items
}

// fakeProvider serves a static water-object list.
type fakeProvider struct {
	objects []models.WaterObject
	err     error
}

func (f *fakeProvider) List(context.Context) ([]models.WaterObject, error) {
	return f.objects, f.err
}

// fakeExtractor serves static text for any path.
type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) ExtractText(context.Context, string) (string, error) {
	return f.text, f.err
}
