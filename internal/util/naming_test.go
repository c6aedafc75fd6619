package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCollectionName(t *testing.T) {
	assert.Equal(t, "audit-acme-api-nomic-embed-text", GenerateCollectionName("Acme/API", "nomic-embed-text:latest"))
	assert.Equal(t, "audit-acmeco-web-x", GenerateCollectionName("acme.co/web!", "x"))

	long := GenerateCollectionName(strings.Repeat("a", 300)+"/b", "m")
	assert.Len(t, long, 255)
}

func TestLockKey(t *testing.T) {
	assert.Equal(t, "acme/api#7", LockKey("Acme/API", 7))
	assert.NotEqual(t, LockKey("acme/api", 7), LockKey("acme/web", 7))
}
