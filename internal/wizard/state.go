package wizard

import (
	"context"
	"strconv"
)

// Step names the position of a conversation inside a wizard. The empty step
// means no wizard is active for the chat.
type Step string

const (
	StepNone Step = ""

	// Add Idea
	StepIdeaName        Step = "add_idea:name"
	StepIdeaDescription Step = "add_idea:description"
	StepIdeaPhoto       Step = "add_idea:photo"
	StepIdeaMoodboard   Step = "add_idea:moodboard"

	// Activate Project
	StepActivateReminder Step = "activate:reminder"

	// Edit Project
	StepEditName        Step = "edit:name"
	StepEditDescription Step = "edit:description"

	// Add Template
	StepTemplateName Step = "template:name"
	StepTemplateHTML Step = "template:html"
	StepTemplateCSS  Step = "template:css"

	// Generate Content
	StepGenProject  Step = "gen:project"
	StepGenTemplate Step = "gen:template"
	StepGenImages   Step = "gen:images"
	StepGenDraft    Step = "gen:draft"
)

// State is the scratchpad of one in-flight wizard. It is owned by exactly one
// chat and never shared.
type State struct {
	Step   Step              `json:"step"`
	Data   map[string]string `json:"data,omitempty"`
	Images []string          `json:"images,omitempty"`
}

// NewState starts a fresh wizard at the given step.
func NewState(step Step) *State {
	return &State{Step: step, Data: map[string]string{}}
}

// Set stores a scratchpad value.
func (s *State) Set(key, value string) {
	if s.Data == nil {
		s.Data = map[string]string{}
	}
	s.Data[key] = value
}

// Get returns a scratchpad value or "".
func (s *State) Get(key string) string {
	return s.Data[key]
}

// GetInt64 parses a scratchpad value as int64, returning 0 on absence or
// malformed input.
func (s *State) GetInt64(key string) int64 {
	n, err := strconv.ParseInt(s.Data[key], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// SetInt64 stores an int64 scratchpad value.
func (s *State) SetInt64(key string, v int64) {
	s.Set(key, strconv.FormatInt(v, 10))
}

// Store keeps per-chat wizard state behind a narrow interface so the backing
// implementation (redis, in-memory) can be swapped without touching callers.
type Store interface {
	// Get returns the current state for a chat, or nil when no wizard is
	// active.
	Get(ctx context.Context, chatID int64) (*State, error)
	// Set replaces the state for a chat. Starting a new wizard overwrites
	// whatever was there before; wizards never stack.
	Set(ctx context.Context, chatID int64, state *State) error
	// Clear removes the state for a chat. Clearing an absent state is a
	// no-op.
	Clear(ctx context.Context, chatID int64) error
}
