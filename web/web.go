// Package web holds the server-rendered templates and the functions they use.
package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/template/html/v2"
	"github.com/shopspring/decimal"
)

//go:embed templates
var templates embed.FS

// NewEngine returns the html view engine over the embedded templates.
// Set reload to pick up template edits without restarting (development only).
func NewEngine(reload bool) *html.Engine {
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.Reload(reload)
	for name, fn := range Funcs() {
		engine.AddFunc(name, fn)
	}
	return engine
}

// Funcs are the helpers available to every template.
func Funcs() map[string]interface{} {
	return map[string]interface{}{
		"formatMoney":  FormatMoney,
		"formatDate":   FormatDate,
		"dateValue":    DateValue,
		"fieldError":   FieldError,
		"statusClass":  StatusClass,
		"add":          func(a, b int) int { return a + b },
		"hasPrivilege": HasPrivilege,
		"isSelected":   func(a, b interface{}) bool { return toString(a) == toString(b) },
	}
}

// FormatMoney renders d with two decimals and thousands separators, e.g. 1,234.50.
func FormatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "." + frac
}

// FormatDate renders t for display; the zero time renders as "".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

// DateValue renders an optional date for an <input type="date">.
func DateValue(t interface{}) string {
	switch v := t.(type) {
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Format("2006-01-02")
	case *time.Time:
		if v == nil || v.IsZero() {
			return ""
		}
		return v.Format("2006-01-02")
	case string:
		return v
	default:
		return ""
	}
}

// FieldError looks up the message for field in a map of form errors.
func FieldError(errors map[string]string, field string) string {
	return errors[field]
}

// StatusClass maps a delivery or supplier status to a badge css class.
func StatusClass(status interface{}) string {
	switch toString(status) {
	case "Delivered", "active":
		return "badge-success"
	case "Partially Delivered", "pending":
		return "badge-warning"
	case "Cancelled", "blacklisted":
		return "badge-danger"
	default:
		return "badge-neutral"
	}
}

// HasPrivilege reports whether code is among privileges.
func HasPrivilege(privileges []string, code string) bool {
	for _, p := range privileges {
		if p == code {
			return true
		}
	}
	return false
}

func toString(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
