// Package template renders daily-note templates by substituting
// {{variable}} and {{variable:format}} placeholders against an anchor date.
package template

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var placeholderRe = regexp.MustCompile(`\{\{(\w+)(?::([^}]+))?\}\}`)

// Render substitutes every recognized placeholder in tmpl for the given
// anchor date. Placeholders are replaced in reverse match order so that
// earlier substitutions never shift the offsets of matches still pending.
// Unknown variables are left in place and logged; rendering never fails.
func Render(tmpl string, anchor time.Time) string {
	matches := placeholderRe.FindAllStringSubmatchIndex(tmpl, -1)
	if len(matches) == 0 {
		return tmpl
	}

	result := tmpl
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		name := tmpl[m[2]:m[3]]
		format := ""
		if m[4] >= 0 {
			format = tmpl[m[4]:m[5]]
		}
		replacement, ok := substitute(name, format, anchor)
		if !ok {
			slog.Warn("template: unknown variable", slog.String("name", name))
			continue
		}
		result = result[:m[0]] + replacement + result[m[1]:]
	}
	return result
}

// substitute resolves a single variable. Each variable is independent; there
// are no inter-variable dependencies. Returns false for unknown names.
func substitute(name, format string, anchor time.Time) (string, bool) {
	switch strings.ToLower(name) {
	case "date":
		return formatDate(anchor, defaultFormat(format, "yyyy-MM-dd")), true

	case "weekday":
		return weekdayName(anchor, format == "short"), true

	case "weekday_short":
		return weekdayName(anchor, true), true

	case "yesterday":
		return formatDate(anchor.AddDate(0, 0, -1), defaultFormat(format, "yyyy-MM-dd")), true

	case "tomorrow":
		return formatDate(anchor.AddDate(0, 0, 1), defaultFormat(format, "yyyy-MM-dd")), true

	case "week_number", "weeknumber":
		_, week := anchor.ISOWeek()
		return strconv.Itoa(week), true

	case "year":
		if strings.EqualFold(format, "yy") {
			return formatDate(anchor, "yy"), true
		}
		return strconv.Itoa(anchor.Year()), true

	case "month":
		return monthName(anchor, format == "short"), true

	case "month_short":
		return monthName(anchor, true), true

	case "month_number":
		return strconv.Itoa(int(anchor.Month())), true

	case "day":
		return strconv.Itoa(anchor.Day()), true

	case "time":
		return formatDate(anchor, defaultFormat(format, "HH:mm")), true
	}
	return "", false
}

func defaultFormat(format, fallback string) string {
	if format == "" {
		return fallback
	}
	return format
}

func formatDate(t time.Time, pattern string) string {
	return t.Format(goLayout(pattern))
}

func weekdayName(t time.Time, short bool) string {
	if short {
		return t.Format("Mon")
	}
	return t.Format("Monday")
}

func monthName(t time.Time, short bool) string {
	if short {
		return t.Format("Jan")
	}
	return t.Format("January")
}

// goLayout converts a conventional date-pattern string (yyyy-MM-dd style)
// into a Go reference layout. Uppercase year/day tokens are normalized first
// (YYYY→yyyy, YY→yy, DD→dd, D→d) since templates in the wild mix cases.
// Unrecognized runs pass through as literal text.
func goLayout(pattern string) string {
	p := normalizePattern(pattern)

	var b strings.Builder
	for i := 0; i < len(p); {
		j := i
		for j < len(p) && p[j] == p[i] {
			j++
		}
		b.WriteString(layoutToken(p[i:j]))
		i = j
	}
	return b.String()
}

func normalizePattern(pattern string) string {
	r := strings.NewReplacer("YYYY", "yyyy", "YY", "yy", "DD", "dd", "D", "d")
	return r.Replace(pattern)
}

func layoutToken(run string) string {
	switch run[0] {
	case 'y':
		if len(run) >= 3 {
			return "2006"
		}
		return "06"
	case 'M':
		switch {
		case len(run) >= 4:
			return "January"
		case len(run) == 3:
			return "Jan"
		case len(run) == 2:
			return "01"
		default:
			return "1"
		}
	case 'd':
		if len(run) >= 2 {
			return "02"
		}
		return "2"
	case 'E':
		if len(run) >= 4 {
			return "Monday"
		}
		return "Mon"
	case 'H':
		return "15"
	case 'h':
		if len(run) >= 2 {
			return "03"
		}
		return "3"
	case 'm':
		if len(run) >= 2 {
			return "04"
		}
		return "4"
	case 's':
		if len(run) >= 2 {
			return "05"
		}
		return "5"
	case 'a':
		return "PM"
	}
	return run
}
