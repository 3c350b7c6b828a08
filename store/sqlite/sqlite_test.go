package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adeelfeb/dmfiresafety-sub000/compliance"
	"github.com/adeelfeb/dmfiresafety-sub000/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLite_EmptyLoadReturnsNil(t *testing.T) {
	s := newTestStore(t)
	data, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, data, "a fresh database yields nil state, not an error")
}

func TestSQLite_SaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	completed := time.Date(2025, time.March, 20, 12, 0, 0, 0, time.UTC)
	src := &compliance.AppData{
		Sites: []*compliance.Site{{
			ID:            "s1",
			Name:          "Lakeside Diner",
			Address:       "12 Shore Rd",
			Notes:         "gate code 4417",
			ServiceMonths: []int{1, 2, 3},
			SystemMonths:  []int{3, 9},
			ServiceTech:   "Maria Delgado",
			Appointment:   compliance.Appointment{Month: 3, Day: 20, Time: "08:45"},
			ExtinguishersOut: []compliance.OutEntry{
				{ID: "o1", Quantity: 2, Brand: "Amerex", Size: "5lb", Type: "ABC", Year: "2019"},
				{ID: "o2", Quantity: 1, Brand: "Badger", Size: "10lb", Type: "CO2", Year: "2025", SupersededKey: "badger|10lb|co2|2019"},
			},
			SystemTanks: []compliance.OutEntry{
				{ID: "o3", Quantity: 1, Brand: "Ansul", Size: "3 gal", Type: "Wet Chemical", Year: "2013"},
			},
			CompletedServices: []compliance.ServiceCompletion{{
				ID: "c1", Type: compliance.ServiceExtinguisher, Year: 2025, Month: 3,
				CompletedDate: completed, CompletedBy: "Maria Delgado",
				NotesSnapshot:            "gate code 4417",
				ExtinguishersOutSnapshot: []compliance.OutEntry{{ID: "o1", Quantity: 2, Brand: "Amerex", Size: "5lb", Type: "ABC", Year: "2019"}},
			}},
		}},
		Assets: []*compliance.Asset{
			{ID: "a1", SiteID: "s1", Kind: compliance.KindExtinguisher, Category: "ABC", Brand: "Amerex", Size: "5lb", LastServiceYear: "2018"},
			{ID: "a2", SiteID: "s1", Kind: compliance.KindLight, Category: "Exit Light", BatteryDue: true},
		},
	}

	require.NoError(t, s.Save(ctx, src))
	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Sites, 1)
	require.Len(t, got.Assets, 2)

	site := got.Sites[0]
	assert.Equal(t, "Lakeside Diner", site.Name)
	assert.Equal(t, "gate code 4417", site.Notes)
	assert.Equal(t, []int{1, 2, 3}, site.ServiceMonths)
	assert.Equal(t, []int{3, 9}, site.SystemMonths)
	assert.Equal(t, "Maria Delgado", site.ServiceTech)
	assert.Equal(t, compliance.Appointment{Month: 3, Day: 20, Time: "08:45"}, site.Appointment)

	// Out-list order and the superseded-by reference survive persistence.
	require.Len(t, site.ExtinguishersOut, 2)
	assert.Equal(t, "o1", site.ExtinguishersOut[0].ID)
	assert.Equal(t, "badger|10lb|co2|2019", site.ExtinguishersOut[1].SupersededKey)
	require.Len(t, site.SystemTanks, 1)
	assert.Equal(t, compliance.Category("Wet Chemical"), site.SystemTanks[0].Type)

	require.Len(t, site.CompletedServices, 1)
	c := site.CompletedServices[0]
	assert.True(t, c.CompletedDate.Equal(completed))
	assert.Equal(t, "Maria Delgado", c.CompletedBy)
	require.Len(t, c.ExtinguishersOutSnapshot, 1)
	assert.Equal(t, 2, c.ExtinguishersOutSnapshot[0].Quantity)
	assert.Empty(t, c.SystemTanksSnapshot)

	assert.True(t, got.Assets[1].BatteryDue)
}

func TestSQLite_SaveReplacesState(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, &compliance.AppData{
		Sites: []*compliance.Site{{ID: "s1", Name: "A"}, {ID: "s2", Name: "B"}},
	}))
	require.NoError(t, s.Save(ctx, &compliance.AppData{
		Sites: []*compliance.Site{{ID: "s3", Name: "C"}},
	}))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Sites, 1)
	assert.Equal(t, "s3", got.Sites[0].ID)
}

func TestSQLite_EmptyMonthsLoadAsEmpty(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, &compliance.AppData{Sites: []*compliance.Site{{ID: "s1", Name: "A"}}}))
	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got.Sites[0].ServiceMonths)
	assert.Empty(t, got.Sites[0].SystemMonths)
}
