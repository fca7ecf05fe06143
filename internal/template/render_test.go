package template

import (
	"strings"
	"testing"
	"time"
)

// anchor is Thursday, 2026-01-08 14:30 local.
var anchor = time.Date(2026, time.January, 8, 14, 30, 0, 0, time.Local)

func TestRender_NoPlaceholdersIdentity(t *testing.T) {
	inputs := []string{
		"",
		"plain text",
		"# Daily Note\n\n## Gratitude\n",
		"{single brace} and {{unclosed",
	}
	for _, in := range inputs {
		if got := Render(in, anchor); got != in {
			t.Errorf("Render(%q) = %q, want unchanged", in, got)
		}
	}
}

func TestRender_AllVariablesResolve(t *testing.T) {
	names := []string{
		"date", "weekday", "weekday_short", "yesterday", "tomorrow",
		"week_number", "year", "month", "month_short", "month_number",
		"day", "time",
	}
	for _, name := range names {
		got := Render("{{"+name+"}}", anchor)
		if strings.Contains(got, "{{") {
			t.Errorf("Render({{%s}}) = %q, placeholder not resolved", name, got)
		}
	}
}

func TestRender_UnknownVariablePreserved(t *testing.T) {
	if got := Render("{{bogus:x}}", anchor); got != "{{bogus:x}}" {
		t.Errorf("got %q, want {{bogus:x}} unchanged", got)
	}
	if got := Render("{{nope}}", anchor); got != "{{nope}}" {
		t.Errorf("got %q, want {{nope}} unchanged", got)
	}
}

func TestRender_RightToLeftSubstitution(t *testing.T) {
	got := Render("{{year}}-{{month_number}}-{{day}}", anchor)
	if got != "2026-1-8" {
		t.Errorf("got %q, want 2026-1-8", got)
	}
}

func TestRender_DateDefaultFormat(t *testing.T) {
	if got := Render("{{date}}", anchor); got != "2026-01-08" {
		t.Errorf("got %q, want 2026-01-08", got)
	}
}

func TestRender_DateCustomFormat(t *testing.T) {
	cases := []struct {
		tmpl string
		want string
	}{
		{"{{date:dd.MM.yyyy}}", "08.01.2026"},
		{"{{date:MMMM d, yyyy}}", "January 8, 2026"},
		{"{{date:YYYY-MM-DD}}", "2026-01-08"}, // uppercase tokens normalized
		{"{{date:yy/M/d}}", "26/1/8"},
	}
	for _, c := range cases {
		if got := Render(c.tmpl, anchor); got != c.want {
			t.Errorf("Render(%q) = %q, want %q", c.tmpl, got, c.want)
		}
	}
}

func TestRender_YesterdayTomorrow(t *testing.T) {
	got := Render("[[{{yesterday}}]] <- -> [[{{tomorrow}}]]", anchor)
	want := "[[2026-01-07]] <- -> [[2026-01-09]]"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRender_YesterdayCrossesMonthBoundary(t *testing.T) {
	first := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.Local)
	if got := Render("{{yesterday}}", first); got != "2026-02-28" {
		t.Errorf("got %q, want 2026-02-28", got)
	}
}

func TestRender_Weekday(t *testing.T) {
	if got := Render("{{weekday}}", anchor); got != "Thursday" {
		t.Errorf("weekday = %q, want Thursday", got)
	}
	if got := Render("{{weekday:short}}", anchor); got != "Thu" {
		t.Errorf("weekday:short = %q, want Thu", got)
	}
	if got := Render("{{weekday_short}}", anchor); got != "Thu" {
		t.Errorf("weekday_short = %q, want Thu", got)
	}
}

func TestRender_Month(t *testing.T) {
	if got := Render("{{month}}", anchor); got != "January" {
		t.Errorf("month = %q", got)
	}
	if got := Render("{{month_short}}", anchor); got != "Jan" {
		t.Errorf("month_short = %q", got)
	}
}

func TestRender_YearTwoDigit(t *testing.T) {
	if got := Render("{{year:yy}}", anchor); got != "26" {
		t.Errorf("year:yy = %q, want 26", got)
	}
	if got := Render("{{year}}", anchor); got != "2026" {
		t.Errorf("year = %q, want 2026", got)
	}
}

func TestRender_WeekNumber(t *testing.T) {
	// 2026-01-08 falls in ISO week 2.
	if got := Render("Week {{week_number}}", anchor); got != "Week 2" {
		t.Errorf("got %q, want Week 2", got)
	}
}

func TestRender_TimeDefaultFormat(t *testing.T) {
	if got := Render("{{time}}", anchor); got != "14:30" {
		t.Errorf("time = %q, want 14:30", got)
	}
}

func TestRender_CaseInsensitiveNames(t *testing.T) {
	if got := Render("{{DATE}}", anchor); got != "2026-01-08" {
		t.Errorf("got %q, want 2026-01-08", got)
	}
}

func TestRender_MixedKnownAndUnknown(t *testing.T) {
	got := Render("# {{date}} | {{mystery}} | {{weekday}}", anchor)
	want := "# 2026-01-08 | {{mystery}} | Thursday"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRender_FullDailyNoteTemplate(t *testing.T) {
	tmpl := "# {{date:yyyy-MM-dd}} | {{weekday}}\n\n" +
		"[[{{yesterday}}]] | Week {{week_number}} | [[{{tomorrow}}]]\n\n" +
		"## Gratitude\n\n## Tasks Completed\n"
	got := Render(tmpl, anchor)
	want := "# 2026-01-08 | Thursday\n\n" +
		"[[2026-01-07]] | Week 2 | [[2026-01-09]]\n\n" +
		"## Gratitude\n\n## Tasks Completed\n"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestGoLayout(t *testing.T) {
	cases := []struct {
		pattern string
		want    string
	}{
		{"yyyy-MM-dd", "2006-01-02"},
		{"YYYY-MM-DD", "2006-01-02"},
		{"HH:mm", "15:04"},
		{"EEEE, MMMM d", "Monday, January 2"},
		{"yy", "06"},
	}
	for _, c := range cases {
		if got := goLayout(c.pattern); got != c.want {
			t.Errorf("goLayout(%q) = %q, want %q", c.pattern, got, c.want)
		}
	}
}
