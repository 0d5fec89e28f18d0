package rag

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"hydroatlas/internal/models"
	"hydroatlas/pkg/logger"
)

// PgStore is the pgvector-backed Store implementation. Nearest-neighbor
// queries use the cosine distance operator (<=>).
type PgStore struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewPgStore creates a Store over an initialized GORM connection.
func NewPgStore(db *gorm.DB, log *logger.Logger) *PgStore {
	return &PgStore{db: db, log: log}
}

func (s *PgStore) ReplaceWaterObjectChunks(ctx context.Context, chunks []models.WaterObjectEmbedding) error {
	if err := s.db.WithContext(ctx).Exec("DELETE FROM water_object_embeddings").Error; err != nil {
		return fmt.Errorf("clear water object embeddings: %w", err)
	}
	if len(chunks) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).CreateInBatches(chunks, 100).Error; err != nil {
		return fmt.Errorf("insert water object embeddings: %w", err)
	}
	return nil
}

func (s *PgStore) InsertDocumentChunks(ctx context.Context, chunks []models.DocumentEmbedding) error {
	if len(chunks) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).CreateInBatches(chunks, 100).Error; err != nil {
		return fmt.Errorf("insert document embeddings: %w", err)
	}
	return nil
}

func (s *PgStore) SearchWaterObjects(ctx context.Context, embedding []float32, topK int) ([]models.SearchResultItem, error) {
	vec := pgvector.NewVector(embedding)

	var rows []searchRow
	err := s.db.WithContext(ctx).Raw(`
		SELECT e.water_object_id AS source_id,
		       e.content,
		       e.content_type,
		       COALESCE(w.name, 'Unknown') AS source_name,
		       COALESCE(w.region, '') AS source_region,
		       e.embedding <=> ? AS distance
		FROM water_object_embeddings e
		LEFT JOIN water_objects w ON w.id = e.water_object_id
		ORDER BY e.embedding <=> ?
		LIMIT ?`, vec, vec, topK).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("search water object embeddings: %w", err)
	}

	return toSearchResults(rows, true), nil
}

func (s *PgStore) SearchDocuments(ctx context.Context, embedding []float32, topK int) ([]models.SearchResultItem, error) {
	vec := pgvector.NewVector(embedding)

	var rows []searchRow
	err := s.db.WithContext(ctx).Raw(`
		SELECT id AS source_id,
		       content,
		       content_type,
		       document_name AS source_name,
		       '' AS source_region,
		       embedding <=> ? AS distance
		FROM document_embeddings
		ORDER BY embedding <=> ?
		LIMIT ?`, vec, vec, topK).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("search document embeddings: %w", err)
	}

	return toSearchResults(rows, false), nil
}

func (s *PgStore) Clear(ctx context.Context, contentType string) error {
	switch contentType {
	case "":
		if err := s.db.WithContext(ctx).Exec("DELETE FROM water_object_embeddings").Error; err != nil {
			return fmt.Errorf("clear water object embeddings: %w", err)
		}
		if err := s.db.WithContext(ctx).Exec("DELETE FROM document_embeddings").Error; err != nil {
			return fmt.Errorf("clear document embeddings: %w", err)
		}
		s.log.Info("cleared all embeddings")
	case models.ContentTypeMain:
		if err := s.db.WithContext(ctx).Exec("DELETE FROM water_object_embeddings").Error; err != nil {
			return fmt.Errorf("clear water object embeddings: %w", err)
		}
		s.log.Info("cleared water object embeddings")
	default:
		res := s.db.WithContext(ctx).Exec("DELETE FROM document_embeddings WHERE content_type = ?", contentType)
		if res.Error != nil {
			return fmt.Errorf("clear document embeddings of type %q: %w", contentType, res.Error)
		}
		s.log.WithPayload(map[string]interface{}{
			"content_type": contentType,
			"deleted":      res.RowsAffected,
		}).Info("cleared document embeddings by type")
	}
	return nil
}

func (s *PgStore) CountIndexedSources(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Raw(`
		SELECT (SELECT COUNT(DISTINCT water_object_id) FROM water_object_embeddings)
		     + (SELECT COUNT(DISTINCT document_name) FROM document_embeddings)`).Scan(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count indexed sources: %w", err)
	}
	return count, nil
}

type searchRow struct {
	SourceID     string
	Content      string
	ContentType  string
	SourceName   string
	SourceRegion string
	Distance     float64
}

func toSearchResults(rows []searchRow, isWaterObject bool) []models.SearchResultItem {
	results := make([]models.SearchResultItem, 0, len(rows))
	for _, row := range rows {
		id, err := uuid.Parse(row.SourceID)
		if err != nil {
			continue
		}
		results = append(results, models.SearchResultItem{
			SourceID:      id,
			Content:       row.Content,
			ContentType:   row.ContentType,
			SourceName:    row.SourceName,
			SourceRegion:  row.SourceRegion,
			Distance:      row.Distance,
			IsWaterObject: isWaterObject,
		})
	}
	return results
}
