package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// EmbeddingDim is the dimensionality of all stored vectors. It matches the
// nomic-embed-text model and must stay constant across the whole store.
const EmbeddingDim = 768

// ContentTypeMain tags the summary chunk of a water object.
const ContentTypeMain = "main"

// WaterObjectEmbedding is an indexed chunk derived from a water object
// record. (WaterObjectID, ChunkIndex) uniquely identifies a chunk.
type WaterObjectEmbedding struct {
	WaterObjectID uuid.UUID       `gorm:"type:uuid;primaryKey" json:"waterObjectId"`
	ChunkIndex    int             `gorm:"primaryKey" json:"chunkIndex"`
	ContentType   string          `gorm:"not null;index" json:"contentType"`
	Content       string          `gorm:"type:text;not null" json:"content"`
	Embedding     pgvector.Vector `gorm:"type:vector(768)" json:"-"`
	CreatedAt     time.Time       `json:"createdAt"`

	WaterObject *WaterObject `gorm:"foreignKey:WaterObjectID" json:"-"`
}

func (WaterObjectEmbedding) TableName() string {
	return "water_object_embeddings"
}

// DocumentEmbedding is an indexed chunk of a standalone document (uploaded
// PDF or pasted text) independent of any water object.
type DocumentEmbedding struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	DocumentName string          `gorm:"not null;index" json:"documentName"`
	FileName     string          `json:"fileName,omitempty"`
	ChunkIndex   int             `json:"chunkIndex"`
	ContentType  string          `gorm:"not null;index" json:"contentType"`
	Content      string          `gorm:"type:text;not null" json:"content"`
	Embedding    pgvector.Vector `gorm:"type:vector(768)" json:"-"`
	CreatedAt    time.Time       `json:"createdAt"`
}

func (DocumentEmbedding) TableName() string {
	return "document_embeddings"
}
