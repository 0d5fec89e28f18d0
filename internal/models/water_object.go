package models

import (
	"time"

	"github.com/google/uuid"
)

// ResourceType classifies a water object by its kind.
type ResourceType int

const (
	ResourceTypeLake ResourceType = iota
	ResourceTypeCanal
	ResourceTypeReservoir
)

var resourceTypeNames = map[ResourceType]string{
	ResourceTypeLake:      "Озеро",
	ResourceTypeCanal:     "Канал",
	ResourceTypeReservoir: "Водохранилище",
}

// DisplayName returns the human-readable Russian label for the resource type.
func (t ResourceType) DisplayName() string {
	if name, ok := resourceTypeNames[t]; ok {
		return name
	}
	return "Неизвестно"
}

// WaterType distinguishes fresh from non-fresh water.
type WaterType int

const (
	WaterTypeFresh WaterType = iota
	WaterTypeNonFresh
)

var waterTypeNames = map[WaterType]string{
	WaterTypeFresh:    "Пресная",
	WaterTypeNonFresh: "Непресная",
}

// DisplayName returns the human-readable Russian label for the water type.
func (t WaterType) DisplayName() string {
	if name, ok := waterTypeNames[t]; ok {
		return name
	}
	return "Неизвестно"
}

// WaterObject is a registry record describing a water body or hydraulic
// structure. TechnicalCondition ranges 1 (critical) to 5 (excellent).
type WaterObject struct {
	ID                 uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Name               string       `gorm:"not null" json:"name"`
	Region             string       `gorm:"not null" json:"region"`
	ResourceType       ResourceType `json:"resourceType"`
	WaterType          WaterType    `json:"waterType"`
	HasFauna           bool         `json:"hasFauna"`
	TechnicalCondition int          `json:"technicalCondition"`
	PassportDate       time.Time    `json:"passportDate"`
	Latitude           float32      `json:"latitude"`
	Longitude          float32      `json:"longitude"`
	PdfURL             string       `json:"pdfUrl"`
}

// TableName keeps the table name in singular-free snake case.
func (WaterObject) TableName() string {
	return "water_objects"
}

// PassportAgeYears computes the age of the object's passport in whole years.
func (w WaterObject) PassportAgeYears(now time.Time) int {
	return int(now.Sub(w.PassportDate).Hours() / 24 / 365)
}

// PriorityScore computes the survey priority score: worse technical condition
// and older passports raise the priority.
func (w WaterObject) PriorityScore(now time.Time) int {
	return (6-w.TechnicalCondition)*3 + w.PassportAgeYears(now)
}
