package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClickBeforeCreate(t *testing.T) {
	click := &Click{ShortCode: "abc123", OriginalURL: "https://example.com"}
	require.NoError(t, click.BeforeCreate(nil))
	assert.NotEqual(t, uuid.Nil, click.ID)

	// An explicit id survives
	fixed := uuid.New()
	click = &Click{ID: fixed, ShortCode: "abc123", OriginalURL: "https://example.com"}
	require.NoError(t, click.BeforeCreate(nil))
	assert.Equal(t, fixed, click.ID)
}

func TestClickTableName(t *testing.T) {
	assert.Equal(t, "clicks", Click{}.TableName())
}
