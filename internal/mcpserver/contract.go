package mcpserver

// DailyNoteContract describes the canonical daily-note format that LLM
// consumers should follow when reading or adding to journal days.
const DailyNoteContract = `# Daily Note Format Contract

Every journal day is a single Markdown file named after its calendar day
(` + "`" + `2026-01-08.md` + "`" + `). Days start at 4 AM: a capture written at 1 AM belongs to
the previous calendar day's note.

## Structure

` + "```" + `markdown
# Daily Note: 2026-01-08

## Metrics
- Mood: calm
- Energy: 7
- Sleep Hours: 7.5

## Morning Intentions

## Things I Learned

## Gratitude
- Morning walk before standup

## Tasks Completed

## Reflections
` + "```" + `

## Rules

1. **Sections are headings.** Content belongs under an existing ` + "`" + `##` + "`" + ` heading;
   never invent new sections — text with no matching section is dropped.
2. **Metrics are single lines** of the form ` + "`" + `- Field: value` + "`" + `. A metric is only
   filled when its value is empty; existing values are never overwritten.
3. **List sections** (Gratitude, Tasks Completed, ...) take ` + "`" + `- ` + "`" + ` bullet items
   appended at the end of the section.
4. **Wikilinks** use double brackets and reference adjacent days by date:
   ` + "`" + `[[2026-01-07]]` + "`" + `. The target is the day, no ` + "`" + `.md` + "`" + ` extension.
5. **Templates** may carry ` + "`" + `{{variable:format}}` + "`" + ` placeholders (for example
   ` + "`" + `{{date:yyyy-MM-dd}}` + "`" + `, ` + "`" + `{{weekday}}` + "`" + `, ` + "`" + `{{week_number}}` + "`" + `); they are rendered
   when a day's note is created, anchored to that day.
6. **Encoding** is UTF-8 with a trailing newline.

## Voice Recordings

- Upload recordings over the REST API (` + "`" + `POST /api/recordings` + "`" + `); they are
  stored in the vault's ` + "`" + `recordings/` + "`" + ` directory and never indexed.
- Embed in notes with ` + "`" + `![[recordings/memo.m4a]]` + "`" + `.
`
