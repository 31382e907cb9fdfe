package handler

import (
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"time"

	twmerge "github.com/Oudwins/tailwind-merge-go"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/joshacw/chf-enquiries-map/internal/domain"
)

// TemplateFuncs returns a FuncMap with custom template functions
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		// Math functions
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},

		// Date/Time functions
		"year": func() int {
			return time.Now().Year()
		},
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("Jan 2, 2006")
		},
		"formatDateISO": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2006-01-02")
		},

		// String functions
		"lower": func(s string) string {
			return strings.ToLower(s)
		},
		"upper": func(s string) string {
			return strings.ToUpper(s)
		},
		"title": func(v interface{}) string {
			s := fmt.Sprint(v)
			return cases.Title(language.English).String(s)
		},
		"truncate": func(s string, length int) string {
			if len(s) <= length {
				return s
			}
			return s[:length] + "..."
		},

		// JSON encoding for safe JavaScript embedding
		"json": func(v interface{}) template.JS {
			b, err := json.Marshal(v)
			if err != nil {
				return template.JS(`""`)
			}
			return template.JS(b)
		},

		// Conditional/Logic functions
		"ternary": func(condition bool, trueVal, falseVal interface{}) interface{} {
			if condition {
				return trueVal
			}
			return falseVal
		},
		"default": func(defaultVal, val interface{}) interface{} {
			if val == nil || val == "" || val == 0 {
				return defaultVal
			}
			return val
		},

		// Collection functions
		"dict": func(values ...interface{}) map[string]interface{} {
			if len(values)%2 != 0 {
				return nil
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil
				}
				dict[key] = values[i+1]
			}
			return dict
		},

		// HTML rendering functions
		"attr": func(s string) template.HTMLAttr {
			return template.HTMLAttr(s)
		},
		"safeURL": func(s string) template.URL {
			return template.URL(s)
		},

		// Tailwind class merging: later classes win conflicts, so tier
		// and state classes can override the base cell styling.
		"twmerge": func(classes ...string) string {
			return twmerge.Merge(classes...)
		},

		// Availability helpers. Tier colors come from the backend
		// classification; these map tiers and day state onto classes.
		"tierBadge": func(tier interface{}) string {
			if t, ok := tier.(domain.Tier); ok {
				return t.BadgeClasses()
			}
			return domain.Tier(fmt.Sprint(tier)).BadgeClasses()
		},
		"dayCell": func(day domain.DayEntry) string {
			base := "rounded-lg border p-2 text-center"
			if !day.Selectable() {
				return twmerge.Merge(base, "opacity-40 cursor-not-allowed bg-gray-50")
			}
			return twmerge.Merge(base, "cursor-pointer hover:border-gray-400")
		},
		"countColor": func(count int) string {
			switch {
			case count == 0:
				return "text-gray-400"
			case count <= 2:
				return "text-red-600"
			case count <= 5:
				return "text-amber-600"
			default:
				return "text-green-700"
			}
		},
		"meridiem": func(hour int) string {
			return domain.Meridiem(hour)
		},
	}
}
