package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adeelfeb/dmfiresafety-sub000/compliance"
	"github.com/adeelfeb/dmfiresafety-sub000/compliance/store"
)

func TestMemory_EmptyLoadReturnsNil(t *testing.T) {
	m := store.NewMemory()
	data, err := m.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, data, "an empty store yields nil state, not an error")
}

func TestMemory_SaveLoadRoundTrip(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	src := &compliance.AppData{
		Sites:  []*compliance.Site{{ID: "s1", Name: "Lakeside Diner", ServiceMonths: []int{3}}},
		Assets: []*compliance.Asset{{ID: "a1", SiteID: "s1", Kind: compliance.KindExtinguisher, Category: "ABC"}},
	}
	require.NoError(t, m.Save(ctx, src))

	// Mutating the saved-in value must not affect the store, and mutating the
	// loaded value must not affect later loads.
	src.Sites[0].Name = "changed"

	first, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Lakeside Diner", first.Sites[0].Name)

	first.Sites[0].ServiceMonths[0] = 12
	second, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, second.Sites[0].ServiceMonths)
}

func TestMemory_LastWriteWins(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Save(ctx, &compliance.AppData{Sites: []*compliance.Site{{ID: "s1"}, {ID: "s2"}}}))
	require.NoError(t, m.Save(ctx, &compliance.AppData{Sites: []*compliance.Site{{ID: "s3"}}}))

	data, err := m.Load(ctx)
	require.NoError(t, err)
	require.Len(t, data.Sites, 1)
	assert.Equal(t, "s3", data.Sites[0].ID)
}
