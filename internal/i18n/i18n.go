// Package i18n renders errors, statuses, money and dates for display.
// Vietnamese is the default language, English the alternative.
package i18n

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/attendflow/attendflow/internal/domain"
	"github.com/attendflow/attendflow/internal/normalize"
	"github.com/attendflow/attendflow/internal/transport"
)

// ErrUnsupportedLanguage is returned for languages without a catalog.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// DefaultLanguage is used when no language is configured.
const DefaultLanguage = "vi"

var supported = []language.Tag{language.Vietnamese, language.English}

var matcher = language.NewMatcher(supported)

// Translator formats display strings for one language.
type Translator struct {
	tag     language.Tag
	printer *message.Printer
}

// New creates a translator for lang ("vi", "en" or a regional variant).
// An empty lang selects DefaultLanguage.
func New(lang string) (*Translator, error) {
	if lang == "" {
		lang = DefaultLanguage
	}
	requested, err := language.Parse(lang)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}
	_, idx, conf := matcher.Match(requested)
	if conf == language.No {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}
	tag := supported[idx]
	return &Translator{tag: tag, printer: message.NewPrinter(tag, message.Catalog(messages))}, nil
}

// MustNew is New for known-good languages.
func MustNew(lang string) *Translator {
	t, err := New(lang)
	if err != nil {
		panic(err)
	}
	return t
}

// Supported reports whether lang has a catalog.
func Supported(lang string) bool {
	_, err := New(lang)
	return err == nil
}

// Language returns the base language code, "vi" or "en".
func (t *Translator) Language() string {
	base, _ := t.tag.Base()
	return base.String()
}

// T looks up key and formats it with args.
func (t *Translator) T(key string, args ...any) string {
	return t.printer.Sprintf(key, args...)
}

// Error renders err for display. Backend messages that carry more detail
// than the kind's fixed text are shown as received.
func (t *Translator) Error(err error) string {
	if err == nil {
		return ""
	}
	// Rate limiting is reported as a network error kind.
	if errors.Is(err, transport.ErrRateLimited) {
		return t.T("error.rate_limited")
	}

	var apiErr *transport.Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" && apiErr.Message != transport.DefaultMessage(apiErr.Kind) {
			return apiErr.Message
		}
		if key, ok := kindKeys[apiErr.Kind]; ok {
			return t.T(key)
		}
	}

	for _, m := range sentinelKeys {
		if errors.Is(err, m.err) {
			if m.err == domain.ErrRequestRejected {
				if _, detail, ok := strings.Cut(err.Error(), domain.ErrRequestRejected.Error()+": "); ok {
					return t.T(m.key) + ": " + detail
				}
			}
			return t.T(m.key)
		}
	}
	return err.Error()
}

// EmployeeStatus renders an employee status. Unknown statuses are shown as is.
func (t *Translator) EmployeeStatus(s domain.EmployeeStatus) string {
	key := "status." + strings.ToUpper(string(s))
	if !hasKey(key) {
		return string(s)
	}
	return t.T(key)
}

// ReportType renders an attendance report type.
func (t *Translator) ReportType(r domain.ReportType) string {
	key := "report." + string(r)
	if !hasKey(key) {
		return string(r)
	}
	return t.T(key)
}

// Salary formats an amount in Vietnamese dong with grouped digits.
func (t *Translator) Salary(amount *float64) string {
	if amount == nil || *amount == 0 {
		return t.T("salary.unset")
	}
	return t.T("salary.amount", int64(math.Round(*amount)))
}

// Date renders a YYYY-MM-DD date in the local convention. Other inputs are
// returned unchanged.
func (t *Translator) Date(s string) string {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return s
	}
	if t.tag == language.Vietnamese {
		return d.Format("02/01/2006")
	}
	return s
}

var kindKeys = map[transport.Kind]string{
	transport.KindNetwork:      "error.network",
	transport.KindTimeout:      "error.timeout",
	transport.KindUnauthorized: "error.unauthorized",
	transport.KindForbidden:    "error.forbidden",
	transport.KindNotFound:     "error.not_found",
	transport.KindServer:       "error.server",
	transport.KindValidation:   "error.validation",
}

// sentinelKeys is checked in order.
var sentinelKeys = []struct {
	err error
	key string
}{
	{domain.ErrTokenExpired, "error.token_expired"},
	{domain.ErrNotAuthenticated, "error.token_expired"},
	{domain.ErrNoRefreshToken, "error.token_expired"},
	{domain.ErrPlaceholderRefreshToken, "error.token_expired"},
	{domain.ErrInvalidRefreshResponse, "error.token_expired"},
	{domain.ErrInvalidReportFilter, "error.report_filter"},
	{domain.ErrMissingID, "error.missing_id"},
	{domain.ErrInvalidViewMode, "error.view_mode"},
	{domain.ErrPasswordMismatch, "error.password_mismatch"},
	{domain.ErrRequestRejected, "error.rejected"},
	{normalize.ErrUnrecognizedFormat, "error.format"},
}
