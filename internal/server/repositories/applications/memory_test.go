package applications

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/borderease/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_CancelRemovesExactlyOne(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	for _, id := range []string{"a1", "a2", "a3"} {
		a := sampleApp(id)
		require.NoError(t, r.Create(ctx, &a))
	}
	other := sampleApp("b1")
	other.ApplicantEmail = "x@y.com"
	require.NoError(t, r.Create(ctx, &other))

	require.NoError(t, r.Delete(ctx, "a2"))
	require.ErrorIs(t, r.Delete(ctx, "a2"), common.ErrorNotFound)

	got, err := r.ListByApplicant(ctx, "a@b.com")
	require.NoError(t, err)
	var ids []string
	for _, a := range got {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"a3", "a1"}, ids)

	a, err := r.Get(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "x@y.com", a.ApplicantEmail)
	_, err = r.Get(ctx, "a2")
	require.ErrorIs(t, err, common.ErrorNotFound)
}
