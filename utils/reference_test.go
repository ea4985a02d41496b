package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateApplicationNumber(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)

	n1 := GenerateApplicationNumber(now)
	n2 := GenerateApplicationNumber(now)

	assert.Regexp(t, `^APP-2026-[0-9A-F]{8}$`, n1)
	assert.NotEqual(t, n1, n2)
}
