// internal/catalog/ingestor_test.go
package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yojana-engine/internal/common/logger"
	"yojana-engine/internal/models"
)

type stubSource struct {
	schemes []*models.Scheme
	err     error
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) FetchSchemes(ctx context.Context) ([]*models.Scheme, error) {
	return s.schemes, s.err
}

func TestIngestor_RefreshPublishes(t *testing.T) {
	store := NewStore()
	source := &stubSource{schemes: []*models.Scheme{validScheme("s1")}}
	ing := NewIngestor(source, testBuilder(t), store, logger.NewTestLogger(t))

	snap, err := ing.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, snap.Len())
	assert.Same(t, snap, store.Current())
}

func TestIngestor_FetchFailureKeepsOldSnapshot(t *testing.T) {
	store := NewStore()
	source := &stubSource{schemes: []*models.Scheme{validScheme("s1")}}
	ing := NewIngestor(source, testBuilder(t), store, logger.NewTestLogger(t))

	old, err := ing.Refresh(context.Background())
	require.NoError(t, err)

	source.err = errors.New("connection reset")
	_, err = ing.Refresh(context.Background())
	require.Error(t, err)

	assert.Same(t, old, store.Current())
}

func TestIngestor_ValidationFailureKeepsOldSnapshot(t *testing.T) {
	store := NewStore()
	source := &stubSource{schemes: []*models.Scheme{validScheme("s1")}}
	ing := NewIngestor(source, testBuilder(t), store, logger.NewTestLogger(t))

	old, err := ing.Refresh(context.Background())
	require.NoError(t, err)

	bad := validScheme("s2")
	bad.Category = ""
	source.schemes = []*models.Scheme{validScheme("s1"), bad}

	_, err = ing.Refresh(context.Background())
	require.Error(t, err)
	assert.Same(t, old, store.Current())
}
