// Package merge applies extraction updates to a daily note using
// heading-scoped insert and fill rules. It only locates and edits lines that
// already exist in the document; it never fabricates sections or fields.
package merge

import (
	"strings"

	"github.com/psycho-baller/obsidian-journal/internal/models"
)

// Outcome tags the result of one update for logging and testing. Skipped
// updates are expected and frequent; "no relevant content for this section"
// is not an error.
type Outcome string

const (
	// Applied means the document was modified by the update.
	Applied Outcome = "applied"
	// SkippedNoSignal means the update carried an empty value.
	SkippedNoSignal Outcome = "skipped_no_signal"
	// SkippedNotFound means no matching line or section exists, or a metric
	// field already holds a user-entered value.
	SkippedNotFound Outcome = "skipped_not_found"
)

// Result pairs an update's field with its outcome.
type Result struct {
	Field   string
	Outcome Outcome
}

// Apply runs updates against doc strictly in list order. Each update
// re-scans the document as mutated by the ones before it, so an update may
// target a line inserted earlier in the same batch. The returned string is a
// complete new document; callers persist it in a single write.
func Apply(doc string, updates []models.TemplateUpdate) (string, []Result) {
	results := make([]Result, 0, len(updates))

	for _, u := range updates {
		if !u.HasValue() {
			results = append(results, Result{Field: u.Field, Outcome: SkippedNoSignal})
			continue
		}

		var outcome Outcome
		switch u.UpdateType {
		case models.UpdateMetric:
			doc, outcome = applyMetric(doc, u.Field, u.Value)
		case models.UpdateAppend, models.UpdateReplace:
			// Replace intentionally shares append semantics; in-place
			// replacement driven by model output is too destructive.
			doc, outcome = applyAppend(doc, u.Field, u.Value)
		default:
			outcome = SkippedNotFound
		}
		results = append(results, Result{Field: u.Field, Outcome: outcome})
	}

	return doc, results
}

// normalizeField strips leading/trailing '#', '-' and spaces so that a field
// given as "## Sleep Hours" or "- Sleep Hours" matches the bare label.
func normalizeField(field string) string {
	return strings.Trim(field, "#- ")
}

// applyMetric fills the first empty "<field>:" line with value. A line whose
// metric already holds text is left untouched.
func applyMetric(doc, field, value string) (string, Outcome) {
	lines := strings.Split(doc, "\n")
	needle := normalizeField(field) + ":"

	for i, line := range lines {
		if !strings.Contains(line, needle) {
			continue
		}
		colon := strings.Index(line, ":")
		if colon < 0 {
			return doc, SkippedNotFound
		}
		after := strings.TrimSpace(line[colon+1:])
		if after != "" {
			// Never overwrite a user-entered metric.
			return doc, SkippedNotFound
		}
		lines[i] = line[:colon+1] + " " + value
		return strings.Join(lines, "\n"), Applied
	}
	return doc, SkippedNotFound
}

// applyAppend inserts value as the last line of the section headed by field:
// after the heading line, before the next line starting with '#' or the end
// of the document. The value gets a "- " prefix unless it already has one.
func applyAppend(doc, field, value string) (string, Outcome) {
	lines := strings.Split(doc, "\n")

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != field && !strings.HasPrefix(trimmed, field) {
			continue
		}

		insertAt := i + 1
		for insertAt < len(lines) {
			next := strings.TrimSpace(lines[insertAt])
			if strings.HasPrefix(next, "#") {
				break
			}
			insertAt++
		}

		entry := value
		if !strings.HasPrefix(entry, "-") {
			entry = "- " + entry
		}

		out := make([]string, 0, len(lines)+1)
		out = append(out, lines[:insertAt]...)
		out = append(out, entry)
		out = append(out, lines[insertAt:]...)
		return strings.Join(out, "\n"), Applied
	}
	return doc, SkippedNotFound
}
