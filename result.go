package adscan

import (
	"strings"
	"time"
)

// TaskStatus is the outcome of processing a single URL.
type TaskStatus string

// Task outcome constants. Success and NoData are terminal; Error is not.
const (
	StatusSuccess TaskStatus = "success"
	StatusNoData  TaskStatus = "no_data"
	StatusError   TaskStatus = "error"
)

// Terminal reports whether the status represents a completed outcome that
// should not be reprocessed on subsequent runs.
func (s TaskStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusNoData
}

// TaskResult is the closed outcome type produced exactly once per URL per
// processing attempt. Exactly one of Data or Err is set, depending on Status:
// Data for StatusSuccess, Err for StatusError, neither for StatusNoData.
// A TaskResult is immutable once created.
type TaskResult struct {
	URL      string        `json:"url"`
	Status   TaskStatus    `json:"status"`
	Data     *PageData     `json:"data,omitempty"`
	Err      *TaskError    `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// SuccessResult creates a success result carrying extracted page data.
func SuccessResult(url string, data *PageData, d time.Duration) *TaskResult {
	return &TaskResult{URL: url, Status: StatusSuccess, Data: data, Duration: d}
}

// NoDataResult creates a result for a page that rendered but contained no
// detectable ad-tech integrations.
func NoDataResult(url string, d time.Duration) *TaskResult {
	return &TaskResult{URL: url, Status: StatusNoData, Duration: d}
}

// ErrorResult creates an error result from a classified task error.
func ErrorResult(url string, taskErr *TaskError, d time.Duration) *TaskResult {
	return &TaskResult{URL: url, Status: StatusError, Err: taskErr, Duration: d}
}

// PageData holds the ad-tech integrations extracted from a rendered page.
type PageData struct {
	URL        string      `json:"url"`
	Title      string      `json:"title"`
	Detections []Detection `json:"detections"`
}

// Detection identifies a single advertising-technology integration on a page.
type Detection struct {
	Vendor   string `json:"vendor"`
	Kind     string `json:"kind"` // "script", "inline", "iframe"
	Evidence string `json:"evidence"`
}

// ErrorCategory groups task errors for downstream analytics and retry
// eligibility decisions.
type ErrorCategory string

// Error categories.
const (
	CategoryNetwork        ErrorCategory = "network"
	CategorySSL            ErrorCategory = "ssl"
	CategoryNavigation     ErrorCategory = "navigation"
	CategoryExtraction     ErrorCategory = "extraction"
	CategoryInfrastructure ErrorCategory = "infrastructure"
)

// ErrorPhase narrows a category to the pipeline stage where the error arose.
type ErrorPhase string

// Error phases.
const (
	PhaseDNS        ErrorPhase = "dns"
	PhaseValidation ErrorPhase = "validation"
	PhaseTimeout    ErrorPhase = "timeout"
	PhasePermanent  ErrorPhase = "permanent"
	PhaseProcessing ErrorPhase = "processing"
	PhaseHealth     ErrorPhase = "health"
	PhaseDriver     ErrorPhase = "driver"
)

// Task error codes. These are stable identifiers consumed by error-log
// artifacts and reporting; free-text messages are supplementary.
const (
	CodeDNSResolutionFailed   = "DNS_RESOLUTION_FAILED"
	CodeSSLValidationFailed   = "SSL_VALIDATION_FAILED"
	CodeCertAuthorityInvalid  = "CERT_AUTHORITY_INVALID"
	CodeCertDateInvalid       = "CERT_DATE_INVALID"
	CodeCertCommonNameInvalid = "CERT_COMMON_NAME_INVALID"
	CodeNavigationTimeout     = "NAVIGATION_TIMEOUT"
	CodeNavigationFailed      = "NAVIGATION_FAILED"
	CodeNameNotResolved       = "NAME_NOT_RESOLVED"
	CodeConnectionRefused     = "CONNECTION_REFUSED"
	CodeDetachedFrame         = "DETACHED_FRAME"
	CodeUnknownProcessing     = "UNKNOWN_PROCESSING_ERROR"
	CodeDomainBlocked         = "DOMAIN_BLOCKED"
	CodeDriverFailure         = "DRIVER_FAILURE"
)

// TaskError describes a classified per-task failure. Code, Category, and
// Phase are machine-readable; Message is supplementary free text.
type TaskError struct {
	Code      string        `json:"code"`
	Category  ErrorCategory `json:"category"`
	Phase     ErrorPhase    `json:"phase"`
	Message   string        `json:"message"`
	Retryable bool          `json:"retryable"`
}

// Error implements the error interface.
func (e *TaskError) Error() string {
	return string(e.Category) + "/" + string(e.Phase) + " " + e.Code + ": " + e.Message
}

// classifierRule maps an error-message substring to a classification.
type classifierRule struct {
	substr    string
	code      string
	category  ErrorCategory
	phase     ErrorPhase
	retryable bool
}

// Classification is by substring because browser automation surfaces Chromium
// net error strings (net::ERR_*) rather than typed errors. Order matters:
// first match wins, so the more specific rules come first.
var classifierRules = []classifierRule{
	{"net::ERR_NAME_NOT_RESOLVED", CodeNameNotResolved, CategoryNavigation, PhasePermanent, false},
	{"net::ERR_CONNECTION_REFUSED", CodeConnectionRefused, CategoryNavigation, PhasePermanent, false},
	{"net::ERR_CERT_AUTHORITY_INVALID", CodeCertAuthorityInvalid, CategoryNavigation, PhasePermanent, false},
	{"net::ERR_CERT_DATE_INVALID", CodeCertDateInvalid, CategorySSL, PhaseValidation, false},
	{"net::ERR_CERT_COMMON_NAME_INVALID", CodeCertCommonNameInvalid, CategorySSL, PhaseValidation, false},
	{"net::ERR_CERT", CodeSSLValidationFailed, CategorySSL, PhaseValidation, false},
	{"net::ERR_SSL", CodeSSLValidationFailed, CategorySSL, PhaseValidation, false},
	{"x509:", CodeSSLValidationFailed, CategorySSL, PhaseValidation, false},
	{"no such host", CodeDNSResolutionFailed, CategoryNetwork, PhaseDNS, false},
	{"net::ERR_TIMED_OUT", CodeNavigationTimeout, CategoryNavigation, PhaseTimeout, true},
	{"context deadline exceeded", CodeNavigationTimeout, CategoryNavigation, PhaseTimeout, true},
	{"timeout", CodeNavigationTimeout, CategoryNavigation, PhaseTimeout, true},
	{"detached from frame", CodeDetachedFrame, CategoryExtraction, PhaseProcessing, false},
	{"frame detached", CodeDetachedFrame, CategoryExtraction, PhaseProcessing, false},
	{"net::ERR_", CodeNavigationFailed, CategoryNavigation, PhaseTimeout, true},
}

// ClassifyError converts an arbitrary task failure into a TaskError with a
// stable code, category, and phase. Unrecognized errors classify as
// extraction/processing and are not retryable.
func ClassifyError(err error) *TaskError {
	if err == nil {
		return nil
	}
	if taskErr, ok := err.(*TaskError); ok {
		return taskErr
	}
	msg := err.Error()
	for _, rule := range classifierRules {
		if strings.Contains(msg, rule.substr) {
			return &TaskError{
				Code:      rule.code,
				Category:  rule.category,
				Phase:     rule.phase,
				Message:   msg,
				Retryable: rule.retryable,
			}
		}
	}
	return &TaskError{
		Code:     CodeUnknownProcessing,
		Category: CategoryExtraction,
		Phase:    PhaseProcessing,
		Message:  msg,
	}
}

// IsTimeout reports whether the result is an error classified as a timeout,
// the only class eligible for the end-of-run retry pass.
func (r *TaskResult) IsTimeout() bool {
	return r.Status == StatusError && r.Err != nil && r.Err.Phase == PhaseTimeout
}
