package docfed_test

import (
	"testing"

	"github.com/docfed/docfed"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := docfed.Errorf(docfed.ENOTFOUND, "entry %q not found", "abc123")

	assert.Equal(t, docfed.ENOTFOUND, docfed.ErrorCode(err))
	assert.Equal(t, "entry \"abc123\" not found", docfed.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, docfed.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, docfed.ErrorMessage(nil))
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, docfed.EINTERNAL, docfed.ErrorCode(assert.AnError))
}
