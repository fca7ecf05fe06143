package models

// UpdateType selects the merge rule for a TemplateUpdate.
type UpdateType string

const (
	// UpdateAppend inserts the value at the end of the target section.
	UpdateAppend UpdateType = "append"
	// UpdateReplace is applied with append semantics. True in-place
	// replacement was deliberately not implemented upstream; destructive
	// overwrites driven by model output are avoided.
	UpdateReplace UpdateType = "replace"
	// UpdateMetric fills an empty "Field:" line with the value. A metric
	// that already holds a value is never overwritten.
	UpdateMetric UpdateType = "metric"
)

// TemplateUpdate is one extraction instruction targeting a field or section
// of a daily note. Values come from an external model and are untrusted:
// an empty or missing value means "no signal" and must not modify the note.
type TemplateUpdate struct {
	Field      string     `json:"field"`
	Value      string     `json:"value"`
	UpdateType UpdateType `json:"updateType"`
}

// HasValue reports whether the update carries any signal at all.
func (u TemplateUpdate) HasValue() bool {
	return u.Value != ""
}
