package models

import (
	"encoding/json"
	"time"
)

// ContentKind tags what a section's payload holds.
type ContentKind string

const (
	KindText         ContentKind = "text"
	KindImage        ContentKind = "image"
	KindVideo        ContentKind = "video"
	KindTestimonials ContentKind = "testimonials"
	KindFeatures     ContentKind = "features"
	KindSteps        ContentKind = "steps"
)

func (k ContentKind) Valid() bool {
	switch k {
	case KindText, KindImage, KindVideo, KindTestimonials, KindFeatures, KindSteps:
		return true
	}
	return false
}

// ContentSection is an admin-editable chunk of marketing copy. ContentID is
// the stable key every lookup uses; ID is the storage identity and only
// matters when writing a section back. List kinds keep their entries under
// Metadata["items"].
type ContentSection struct {
	ID        string         `gorm:"primaryKey;size:36"          json:"_id,omitempty"    yaml:"-"`
	ContentID string         `gorm:"uniqueIndex;size:100;not null" json:"contentId"      yaml:"contentId"`
	Title     string         `gorm:"size:255"                    json:"title"            yaml:"title"`
	Content   string         `gorm:"type:text"                   json:"content"          yaml:"content"`
	Type      ContentKind    `gorm:"size:20;default:text"        json:"type"             yaml:"type"`
	Metadata  map[string]any `gorm:"serializer:json"             json:"metadata"         yaml:"metadata"`
	UpdatedAt time.Time      `json:"updatedAt,omitempty" yaml:"-"`
}

// Key returns ContentID, falling back to the storage id for sections saved
// without one.
func (s ContentSection) Key() string {
	if s.ContentID != "" {
		return s.ContentID
	}
	return s.ID
}

// Testimonial is one entry of a testimonials section.
type Testimonial struct {
	Name     string `json:"name"     yaml:"name"`
	Location string `json:"location" yaml:"location"`
	Rating   int    `json:"rating"   yaml:"rating"`
	Text     string `json:"text"     yaml:"text"`
}

// Feature is one entry of a features section.
type Feature struct {
	Title       string `json:"title"       yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Icon        string `json:"icon"        yaml:"icon"`
}

// Step is one entry of a steps section.
type Step struct {
	Title       string `json:"title"       yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

// Items decodes Metadata["items"] into dest (a pointer to a slice). A
// missing or malformed list leaves dest untouched and returns false.
func (s ContentSection) Items(dest any) bool {
	raw, ok := s.Metadata["items"]
	if !ok || raw == nil {
		return false
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return false
	}
	return json.Unmarshal(b, dest) == nil
}
