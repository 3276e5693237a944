package dto

import (
	"time"

	"github.com/clinic-thoughts/models"
)

// InsertThought carries a new thought. Category defaults to models.DefaultCategory.
type InsertThought struct {
	ClinicID   uint
	Title      string
	Content    string
	Category   string
	Department *string
}

// ThoughtUpdate lists the thought fields that may be edited. Nil fields are
// left alone; a Department pointing at "" clears the department.
type ThoughtUpdate struct {
	Title      *string `json:"title,omitempty"`
	Content    *string `json:"content,omitempty"`
	Category   *string `json:"category,omitempty"`
	Department *string `json:"department,omitempty"`
}

// Apply merges the update onto t
func (p ThoughtUpdate) Apply(t *models.Thought) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Content != nil {
		t.Content = *p.Content
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Department != nil {
		if *p.Department == "" {
			t.Department = nil
		} else {
			dept := *p.Department
			t.Department = &dept
		}
	}
}

// ThoughtFilters narrows GetThoughtsByClinic. Every field is optional.
type ThoughtFilters struct {
	StartDate   *time.Time
	EndDate     *time.Time
	UserID      *uint
	Department  *string
	IncludeRead *bool
}

// Bounds returns the inclusive createdAt window. The end bound covers the
// whole calendar day of EndDate in its own location.
func (f ThoughtFilters) Bounds() (from, to *time.Time) {
	if f.StartDate != nil {
		start := *f.StartDate
		from = &start
	}
	if f.EndDate != nil {
		end := EndOfDay(*f.EndDate)
		to = &end
	}
	return from, to
}

// ExcludesRead reports whether read thoughts must be filtered out
func (f ThoughtFilters) ExcludesRead() bool {
	return f.IncludeRead != nil && !*f.IncludeRead
}

// EndOfDay returns 23:59:59.999 on t's calendar day
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// ThoughtWithAuthor joins a thought with the user who wrote it
type ThoughtWithAuthor struct {
	models.Thought
	Author models.User `json:"author"`
}

// HistoryEntry joins a history row with its editor. Editor is the
// models.UnknownUser placeholder when the editing user no longer exists.
// Synthesized entries (thoughts without any history rows) have ID 0.
type HistoryEntry struct {
	models.ThoughtHistory
	Editor models.User `json:"editor"`
}

// CreateThoughtRequest represents the request payload for submitting a thought
type CreateThoughtRequest struct {
	Title      string  `json:"title" binding:"required"`
	Content    string  `json:"content" binding:"required"`
	Category   string  `json:"category"`
	Department *string `json:"department,omitempty"`
}

// ThoughtListResponse wraps a filtered thought listing
type ThoughtListResponse struct {
	Thoughts    []ThoughtWithAuthor `json:"thoughts"`
	TotalCount  int                 `json:"totalCount"`
	UnreadCount int64               `json:"unreadCount"`
}
