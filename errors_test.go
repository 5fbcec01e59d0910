package adscan_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/adscan"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := adscan.Errorf(adscan.ENOTFOUND, "record %q not found", "test")

	assert.Equal(t, adscan.ENOTFOUND, adscan.ErrorCode(err))
	assert.Equal(t, "record \"test\" not found", adscan.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, adscan.ErrorCode(nil))
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, adscan.EINTERNAL, adscan.ErrorCode(errors.New("boom")))
}

func TestErrorCode_WrappedError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("opening ledger: %w", adscan.Errorf(adscan.EUNAVAILABLE, "database locked"))

	assert.Equal(t, adscan.EUNAVAILABLE, adscan.ErrorCode(err))
	assert.Equal(t, "database locked", adscan.ErrorMessage(err))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, adscan.ErrorMessage(nil))
}

func TestErrorMessage_NonApplicationError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Internal error.", adscan.ErrorMessage(errors.New("boom")))
}
