package domain

import (
	"errors"
	"time"
)

// ErrDuplicateName is returned when a template name is already taken.
var ErrDuplicateName = errors.New("template name already exists")

// PdfTemplate is an uploaded HTML (and optional CSS) body used to render
// project cards. Templates are immutable after creation.
type PdfTemplate struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	HTMLBody    string    `json:"html_template"`
	CSSBody     *string   `json:"css_template,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
