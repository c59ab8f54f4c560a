package domain

import "time"

// Status is the lifecycle state of a project. Stored as text in the database.
type Status string

const (
	StatusIdea     Status = "idea"
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusIdea, StatusActive, StatusArchived:
		return true
	}
	return false
}

// AssetType classifies a project asset.
type AssetType string

const (
	AssetImageReference AssetType = "image_reference"
	AssetFinalRender    AssetType = "final_render"
	AssetMoodboardImage AssetType = "moodboard_image"
	AssetGeneratedPDF   AssetType = "generated_pdf"
	AssetSocialText     AssetType = "social_text"
)

// SyncState tracks whether a project's workspace mirror is up to date.
type SyncState string

const (
	SyncPending SyncState = "pending"
	SyncDone    SyncState = "synced"
	SyncFailed  SyncState = "failed"
)

// Project is a creative project tracked through the idea -> active -> archived
// lifecycle. It is storage-agnostic and shared across repository, chat and
// scheduler layers.
type Project struct {
	ID                   int64      `json:"id"`
	Name                 string     `json:"name"`
	Description          *string    `json:"description,omitempty"`
	Status               Status     `json:"status"`
	NotionPageID         *string    `json:"notion_page_id,omitempty"`
	ReminderIntervalDays *int       `json:"reminder_interval_days,omitempty"`
	LastRemindedAt       *time.Time `json:"last_reminded_at,omitempty"`
	SyncState            SyncState  `json:"sync_state"`
	CreatedAt            time.Time  `json:"created_at"`
}

// DescriptionOrEmpty returns the description or "" when unset.
func (p *Project) DescriptionOrEmpty() string {
	if p.Description == nil {
		return ""
	}
	return *p.Description
}

// NotionURL builds the browser URL for the mirrored workspace page, or ""
// when the project has no mirror.
func (p *Project) NotionURL() string {
	if p.NotionPageID == nil || *p.NotionPageID == "" {
		return ""
	}
	id := ""
	for _, r := range *p.NotionPageID {
		if r != '-' {
			id += string(r)
		}
	}
	return "https://www.notion.so/" + id
}

// ReminderDue reports whether a reminder should be sent at the given time.
// The interval counts from the later of the last reminder and creation.
func (p *Project) ReminderDue(now time.Time) bool {
	if p.Status != StatusActive || p.ReminderIntervalDays == nil {
		return false
	}
	last := p.CreatedAt
	if p.LastRemindedAt != nil && p.LastRemindedAt.After(last) {
		last = *p.LastRemindedAt
	}
	return now.After(last.AddDate(0, 0, *p.ReminderIntervalDays))
}

// ProjectAsset is a media handle or text blob owned by a project. Assets are
// append-only and removed only when the owning project is deleted.
type ProjectAsset struct {
	ID          int64     `json:"id"`
	ProjectID   int64     `json:"project_id"`
	AssetType   AssetType `json:"asset_type"`
	FileID      string    `json:"file_id"`
	TextContent *string   `json:"text_content,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
