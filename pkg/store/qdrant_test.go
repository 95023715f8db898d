package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQdrantPointIDProducesValidUUID(t *testing.T) {
	// Qdrant rejects any string point ID that is not a UUID, so slug IDs
	// must be mapped before upsert.
	id := qdrantPointID("python_101_3")

	_, err := uuid.Parse(id)
	require.NoError(t, err)

	// Deterministic, so re-indexing a chunk replaces the same point.
	assert.Equal(t, id, qdrantPointID("python_101_3"))
	assert.NotEqual(t, id, qdrantPointID("python_101_4"))
}

func TestQdrantPointIDKeepsUUIDs(t *testing.T) {
	raw := "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
	assert.Equal(t, raw, qdrantPointID(raw))
}

func TestBuildQdrantFilterTypedConditions(t *testing.T) {
	filter := buildQdrantFilter(map[string]any{
		CourseTitleKey:  "Python 101",
		LessonNumberKey: 3,
	})
	require.Len(t, filter.Must, 2)

	matches := make(map[string]*qdrant.Match, len(filter.Must))
	for _, condition := range filter.Must {
		field := condition.GetField()
		require.NotNil(t, field)
		matches[field.Key] = field.GetMatch()
	}

	assert.Equal(t, "Python 101", matches[CourseTitleKey].GetKeyword())
	assert.Equal(t, int64(3), matches[LessonNumberKey].GetInteger())
}
