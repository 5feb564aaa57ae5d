package project

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TemplateContext is the snapshot every title placeholder resolves from.
// It is taken once per run so a title never mixes two clock readings.
type TemplateContext struct {
	Now              time.Time
	Today            time.Time
	Tomorrow         time.Time
	ThisWeek         string
	NextWeek         string
	ThisMonth        string
	NextMonth        string
	CurrentIteration Window
	NextIteration    Window
}

func NewTemplateContext(now time.Time, schedule Schedule) TemplateContext {
	now = now.UTC()
	today := civil(now)
	firstOfMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	return TemplateContext{
		Now:              now,
		Today:            today,
		Tomorrow:         today.AddDate(0, 0, 1),
		ThisWeek:         isoWeek(today),
		NextWeek:         isoWeek(today.AddDate(0, 0, 7)),
		ThisMonth:        firstOfMonth.Format("2006-01"),
		NextMonth:        firstOfMonth.AddDate(0, 1, 0).Format("2006-01"),
		CurrentIteration: schedule.Window(SelectCurrent, today),
		NextIteration:    schedule.Window(SelectNext, today),
	}
}

func isoWeek(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d/w%02d", year, week)
}

// Placeholders lists the names a title template may reference.
var Placeholders = []string{
	"current_iteration",
	"next_iteration",
	"now",
	"today",
	"tomorrow",
	"this_week",
	"next_week",
	"this_month",
	"next_month",
}

func (c TemplateContext) lookup(name string) (string, bool) {
	switch name {
	case "current_iteration":
		return strconv.Itoa(c.CurrentIteration.Index), true
	case "next_iteration":
		return strconv.Itoa(c.NextIteration.Index), true
	case "now":
		return c.Now.Format("2006-01-02T15:04:05Z"), true
	case "today":
		return c.Today.Format(DateLayout), true
	case "tomorrow":
		return c.Tomorrow.Format(DateLayout), true
	case "this_week":
		return c.ThisWeek, true
	case "next_week":
		return c.NextWeek, true
	case "this_month":
		return c.ThisMonth, true
	case "next_month":
		return c.NextMonth, true
	}
	return "", false
}

// Render substitutes {name} placeholders in a single pass. "{{" and "}}"
// produce literal braces.
func Render(tmpl string, ctx TemplateContext) (string, error) {
	var b strings.Builder
	b.Grow(len(tmpl))
	for i := 0; i < len(tmpl); {
		switch c := tmpl[i]; c {
		case '{':
			if i+1 < len(tmpl) && tmpl[i+1] == '{' {
				b.WriteByte('{')
				i += 2
				continue
			}
			end := strings.IndexByte(tmpl[i+1:], '}')
			if end < 0 {
				return "", &TemplateError{Template: tmpl, Reason: "unclosed '{'"}
			}
			name := tmpl[i+1 : i+1+end]
			value, ok := ctx.lookup(name)
			if !ok {
				return "", &TemplateError{Template: tmpl, Placeholder: name, Reason: "unknown placeholder"}
			}
			b.WriteString(value)
			i += end + 2
		case '}':
			if i+1 < len(tmpl) && tmpl[i+1] == '}' {
				b.WriteByte('}')
				i += 2
				continue
			}
			return "", &TemplateError{Template: tmpl, Reason: "single '}' outside a placeholder"}
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), nil
}
