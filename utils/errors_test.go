package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationErrorListsMissingFields(t *testing.T) {
	err := &ValidationError{
		Message:       "application form is incomplete",
		MissingFields: []string{"full_name", "phone"},
	}
	assert.Contains(t, err.Error(), "full_name")
	assert.Contains(t, err.Error(), "phone")

	bare := &ValidationError{Message: "rejection reason is required"}
	assert.Equal(t, "rejection reason is required", bare.Error())
}

func TestStorageErrorUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("upload failed: %w", &StorageError{Op: "put", Err: cause})

	var serr *StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "put", serr.Op)
	assert.ErrorIs(t, err, cause)
}
