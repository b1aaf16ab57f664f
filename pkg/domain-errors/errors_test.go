package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmgate/pkg/platform/sentinel"
)

func TestWrapPreservesCause(t *testing.T) {
	err := Wrap(sentinel.ErrNotFound, CodeSessionExpired, "registration session not found")

	assert.True(t, errors.Is(err, sentinel.ErrNotFound))
	assert.True(t, Is(err, CodeSessionExpired))
	assert.Equal(t, CodeSessionExpired, CodeOf(err))
	assert.Contains(t, err.Error(), "registration session not found")
}

func TestHasCodeWalksNestedDomainErrors(t *testing.T) {
	inner := New(CodeVendorUnavailable, "ocr vendor timed out")
	outer := Wrap(fmt.Errorf("extract: %w", inner), CodeInternal, "verification failed")

	assert.True(t, HasCode(outer, CodeVendorUnavailable))
	assert.True(t, HasCode(outer, CodeInternal))
	assert.False(t, Is(outer, CodeVendorUnavailable))
	assert.False(t, HasCode(outer, CodeNotFound))
}

func TestCodeOfPlainError(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	assert.False(t, HasCode(nil, CodeInternal))

	de, ok := As(New(CodeOTPInvalid, "code mismatch"))
	require.True(t, ok)
	assert.Equal(t, "code mismatch", de.Message)
}
