// Package fs provides file-based persistence for scan artifacts: run result
// files and classified error logs.
package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fwojciec/adscan"
)

// Ensure ErrorLog implements adscan.ErrorLogger at compile time.
var _ adscan.ErrorLogger = (*ErrorLog)(nil)

// ErrorLog appends classified task failures to line-oriented log files, one
// file per failure category, so a dns_failures log can be fed back into a
// retry run without parsing the successes out of it.
type ErrorLog struct {
	dir string
	now func() time.Time

	mu    sync.Mutex
	files map[string]*os.File
}

// NewErrorLog creates an ErrorLog writing under dir. The directory is created
// on first write.
func NewErrorLog(dir string) *ErrorLog {
	return &ErrorLog{
		dir:   dir,
		now:   time.Now,
		files: make(map[string]*os.File),
	}
}

// LogError appends one pipe-delimited line describing the failure to the log
// file for its error category. Results that are not errors are ignored.
func (l *ErrorLog) LogError(result *adscan.TaskResult) error {
	if result == nil || result.Status != adscan.StatusError || result.Err == nil {
		return nil
	}

	name := categoryFile(result.Err.Category)
	line := fmt.Sprintf("[%s] | Category: %s | Phase: %s | Code: %s | URL: %s | Message: %s\n",
		l.now().UTC().Format(time.RFC3339),
		result.Err.Category,
		result.Err.Phase,
		result.Err.Code,
		result.URL,
		result.Err.Message,
	)

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := l.file(name)
	if err != nil {
		return err
	}
	_, err = f.WriteString(line)
	return err
}

// Close closes all open log files.
func (l *ErrorLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var firstErr error
	for name, f := range l.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(l.files, name)
	}
	return firstErr
}

func (l *ErrorLog) file(name string) (*os.File, error) {
	if f, ok := l.files[name]; ok {
		return f, nil
	}
	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(l.dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	l.files[name] = f
	return f, nil
}

func categoryFile(cat adscan.ErrorCategory) string {
	switch cat {
	case adscan.CategoryNetwork:
		return "network_failures.log"
	case adscan.CategorySSL:
		return "ssl_failures.log"
	case adscan.CategoryNavigation:
		return "navigation_failures.log"
	case adscan.CategoryExtraction:
		return "extraction_failures.log"
	case adscan.CategoryInfrastructure:
		return "infrastructure_failures.log"
	default:
		return "other_failures.log"
	}
}
