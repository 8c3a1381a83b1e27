package printing

import (
	"bytes"
	"fmt"
	"html/template"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TemplateEngine renders named HTML templates with formatting helpers.
// Parsed templates are cached by name.
type TemplateEngine struct {
	funcMap  template.FuncMap
	currency string
	sources  map[string]string

	mu     sync.RWMutex
	parsed map[string]*template.Template
}

// TemplateEngineOption configures the template engine
type TemplateEngineOption func(*TemplateEngine)

// WithCurrency sets the prefix used by formatMoney
func WithCurrency(symbol string) TemplateEngineOption {
	return func(e *TemplateEngine) { e.currency = symbol }
}

// WithTemplate registers or replaces a template source
func WithTemplate(name, content string) TemplateEngineOption {
	return func(e *TemplateEngine) { e.sources[name] = content }
}

// NewTemplateEngine creates an engine preloaded with the bill and receipt
// templates
func NewTemplateEngine(opts ...TemplateEngineOption) *TemplateEngine {
	e := &TemplateEngine{
		currency: "KES ",
		sources: map[string]string{
			BillTemplate:    billTemplateHTML,
			ReceiptTemplate: receiptTemplateHTML,
		},
		parsed: make(map[string]*template.Template),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.funcMap = template.FuncMap{
		"formatMoney":    e.formatMoney,
		"formatMoneyRaw": formatMoneyRaw,
		"formatDate":     formatDate,
		"formatDateTime": formatDateTime,
		"monthName":      monthName,
		"title":          titleCase,
		"upper":          strings.ToUpper,
		"shortID":        shortID,
		"inc":            func(i int) int { return i + 1 },
	}
	return e
}

// Render executes the named template with data
func (e *TemplateEngine) Render(name string, data any) (string, error) {
	tmpl, err := e.lookup(name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute template "+name, err)
	}
	return buf.String(), nil
}

// FuncMap returns a copy of the helper functions
func (e *TemplateEngine) FuncMap() template.FuncMap {
	out := make(template.FuncMap, len(e.funcMap))
	maps.Copy(out, e.funcMap)
	return out
}

func (e *TemplateEngine) lookup(name string) (*template.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.parsed[name]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	src, ok := e.sources[name]
	if !ok {
		return nil, NewRenderError(ErrCodeUnknownTemplate, "unknown template: "+name, nil)
	}
	tmpl, err := template.New(name).Funcs(e.funcMap).Parse(src)
	if err != nil {
		return nil, NewRenderError(ErrCodeInvalidHTML, "failed to parse template "+name, err)
	}

	e.mu.Lock()
	e.parsed[name] = tmpl
	e.mu.Unlock()
	return tmpl, nil
}

func (e *TemplateEngine) formatMoney(v decimal.Decimal) string {
	return e.currency + formatMoneyRaw(v)
}

// formatMoneyRaw renders 1234.5 as "1,234.50"
func formatMoneyRaw(v decimal.Decimal) string {
	sign := ""
	if v.IsNegative() {
		sign = "-"
		v = v.Abs()
	}
	intPart, frac, _ := strings.Cut(v.StringFixed(2), ".")

	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteRune(',')
		}
		b.WriteRune(c)
	}
	return sign + b.String() + "." + frac
}

func formatDate(v any) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.Format("02 Jan 2006")
}

func formatDateTime(v any) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.Format("02 Jan 2006 15:04")
}

func monthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return time.Month(month).String()
}

func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

func shortID(id fmt.Stringer) string {
	s := id.String()
	if len(s) > 8 {
		return strings.ToUpper(s[:8])
	}
	return strings.ToUpper(s)
}

func toTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case *time.Time:
		if t == nil {
			return time.Time{}
		}
		return *t
	}
	return time.Time{}
}
