package course

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/tkalearning/lms/core"
)

const DefaultCategory = "General"

// orderable maps API ordering fields to columns.
var orderable = map[string]string{
	"id":         "id",
	"title":      "title",
	"category":   "category",
	"created_at": "created_at",
}

type Course struct {
	ID          int         `json:"id" db:"id"`
	Title       string      `json:"title" db:"title"`
	Description string      `json:"description" db:"description"`
	VideoURL    null.String `json:"video_url" db:"video_url"`
	Category    string      `json:"category" db:"category"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"` // UTC
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
	VideoURL    string `json:"video_url" validate:"omitempty,url"`
	Category    string `json:"category" validate:"omitempty,max=50"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanText(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	nc.VideoURL = core.CleanString(nc.VideoURL)
	nc.Category = core.CleanText(nc.Category)
	if nc.Category == "" {
		nc.Category = DefaultCategory
	}
	return validate.Struct(nc)
}

// UpdateCourse defines what information may be provided to modify an existing Course.
// Empty fields keep their current value; VideoURL is cleared with ClearVideoURL.
type UpdateCourse struct {
	Title         string `json:"title" validate:"max=200"`
	Description   string `json:"description"`
	VideoURL      string `json:"video_url" validate:"omitempty,url"`
	ClearVideoURL bool   `json:"clear_video_url"`
	Category      string `json:"category" validate:"max=50"`
}

func (uc *UpdateCourse) Validate(validate *validator.Validate) error {
	uc.Title = core.CleanText(uc.Title)
	uc.Description = core.CleanString(uc.Description)
	uc.VideoURL = core.CleanString(uc.VideoURL)
	uc.Category = core.CleanText(uc.Category)
	return validate.Struct(uc)
}

func (uc UpdateCourse) apply(crs Course) Course {
	if uc.Title != "" {
		crs.Title = uc.Title
	}
	if uc.Description != "" {
		crs.Description = uc.Description
	}
	if uc.ClearVideoURL {
		crs.VideoURL = null.String{}
	} else if uc.VideoURL != "" {
		crs.VideoURL = null.StringFrom(uc.VideoURL)
	}
	if uc.Category != "" {
		crs.Category = uc.Category
	}
	return crs
}

type QueryFilter struct {
	Search   string `query:"search"`
	Category string `query:"category"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Category = core.CleanText(qf.Category)
}

// CleanOrdering drops unknown fields and maps the rest to their columns.
func CleanOrdering(ordering []core.DBOrdering) []core.DBOrdering {
	cleaned := make([]core.DBOrdering, 0, len(ordering))
	for _, ord := range ordering {
		if col, ok := orderable[ord.Field]; ok {
			cleaned = append(cleaned, core.DBOrdering{Field: col, Ascending: ord.Ascending})
		}
	}
	return cleaned
}
