package views

import (
	"html/template"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

func Funcs() template.FuncMap {
	return template.FuncMap{
		"upper":      strings.ToUpper,
		"join":       strings.Join,
		"since":      since,
		"stamp":      stamp,
		"tonerWidth": tonerWidth,
		"tonerClass": tonerClass,
		"orNA":       orNA,
		"plural":     plural,
	}
}

func since(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

// tonerWidth clamps a level to a CSS percentage.
func tonerWidth(level int) int {
	switch {
	case level < 0:
		return 0
	case level > 100:
		return 100
	}
	return level
}

func tonerClass(level, threshold int) string {
	switch {
	case level < threshold:
		return "low"
	case level < 50:
		return "mid"
	}
	return "ok"
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return humanize.Comma(int64(n)) + " " + word + "s"
}
