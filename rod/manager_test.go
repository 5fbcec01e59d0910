package rod

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"

	"github.com/go-rod/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowserManager_recycles_when_page_count_reaches_max(t *testing.T) {
	t.Parallel()

	bm := &BrowserManager{maxPages: 2, pageCount: 2}
	var launches int
	bm.launch = func() error {
		launches++
		bm.browser = &rod.Browser{}
		return nil
	}

	b := bm.Browser()

	require.NotNil(t, b)
	assert.Equal(t, 1, launches)
	assert.Equal(t, int64(1), bm.Recycles())

	// The page counter was reset, so the next call reuses the instance.
	assert.Same(t, b, bm.Browser())
	assert.Equal(t, 1, launches)
}

func TestBrowserManager_keeps_current_instance_when_recycle_launch_fails(t *testing.T) {
	t.Parallel()

	old := &rod.Browser{}
	bm := &BrowserManager{maxPages: 1, pageCount: 1, browser: old}
	bm.launch = func() error { return fmt.Errorf("launching browser: exec failed") }

	var buf bytes.Buffer
	WithManagerLogger(slog.New(slog.NewTextHandler(&buf, nil)))(bm)

	b := bm.Browser()

	assert.Same(t, old, b, "a failed relaunch must not leave the manager browserless")
	assert.Equal(t, int64(0), bm.Recycles())
	assert.Contains(t, buf.String(), "recycle failed")
}
