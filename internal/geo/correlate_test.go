package geo

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/healthmap-cli/internal/model"
)

func ptr(f float64) *float64 { return &f }

func located(id int64, area string, lat, lon float64) model.HealthSignal {
	return model.HealthSignal{ID: id, AreaID: area, Latitude: ptr(lat), Longitude: ptr(lon)}
}

func TestMatchSignal_AreaIDBeatsProximity(t *testing.T) {
	t.Parallel()

	a := model.Assessment{ID: 5, Latitude: 31.5, Longitude: 34.46}
	signals := []model.HealthSignal{
		located(1, "gaza-city", 31.5, 34.46), // exact location, listed first
		located(2, "5", 40.0, 10.0),          // far away, id match
	}

	got, ok := MatchSignal(a, signals)
	require.True(t, ok)
	assert.Equal(t, int64(2), got.ID)
}

func TestMatchSignal_Proximity(t *testing.T) {
	t.Parallel()

	a := model.Assessment{ID: 9, Latitude: 31.5, Longitude: 34.46}
	signals := []model.HealthSignal{
		located(1, "x", 31.6, 34.46),
		located(2, "y", 31.505, 34.455),
		located(3, "z", 31.501, 34.461),
	}

	got, ok := MatchSignal(a, signals)
	require.True(t, ok)
	assert.Equal(t, int64(2), got.ID, "first in input order, not closest")
}

func TestMatchSignal_WindowIsExclusive(t *testing.T) {
	t.Parallel()

	a := model.Assessment{ID: 1, Latitude: 10, Longitude: 20}

	_, ok := MatchSignal(a, []model.HealthSignal{located(1, "x", 10.015, 20)})
	assert.False(t, ok, "0.015 degrees apart")

	_, ok = MatchSignal(a, []model.HealthSignal{located(1, "x", 10, 20.02)})
	assert.False(t, ok, "longitude outside window")

	_, ok = MatchSignal(a, []model.HealthSignal{located(1, "x", 10.009, 19.991)})
	assert.True(t, ok)
}

func TestMatchSignal_MissingCoordinates(t *testing.T) {
	t.Parallel()

	a := model.Assessment{ID: 1, Latitude: 10, Longitude: 20}
	signals := []model.HealthSignal{
		{ID: 1, AreaID: "x"},
		{ID: 2, AreaID: "y", Latitude: ptr(10)},
	}

	_, ok := MatchSignal(a, signals)
	assert.False(t, ok)
}

func TestMatchSignal_ZeroCoordinatesArePresent(t *testing.T) {
	t.Parallel()

	a := model.Assessment{ID: 1, Latitude: 0.004, Longitude: -0.003}
	got, ok := MatchSignal(a, []model.HealthSignal{located(7, "equator", 0, 0)})
	require.True(t, ok)
	assert.Equal(t, int64(7), got.ID)
}

func TestMatchSignal_Empty(t *testing.T) {
	t.Parallel()

	_, ok := MatchSignal(model.Assessment{ID: 1}, nil)
	assert.False(t, ok)
}

func TestMatchSignal_Deterministic(t *testing.T) {
	t.Parallel()

	a := model.Assessment{ID: 3, Latitude: 31.5, Longitude: 34.46}
	signals := []model.HealthSignal{
		located(1, "a", 31.501, 34.461),
		located(2, "b", 31.502, 34.462),
		located(3, "c", 31.503, 34.463),
	}

	first, _ := MatchSignal(a, signals)
	for range 20 {
		got, _ := MatchSignal(a, signals)
		assert.Equal(t, first.ID, got.ID)
	}
}

func TestCorrelate(t *testing.T) {
	t.Parallel()

	assessments := []model.Assessment{
		{ID: 1, Latitude: 31.5, Longitude: 34.46},
		{ID: 2, Latitude: 0, Longitude: 0},
		{ID: 3, Latitude: 31.3, Longitude: 34.25},
	}
	signals := []model.HealthSignal{
		located(10, "rafah", 31.301, 34.251),
		{ID: 11, AreaID: "1"},
	}

	got := Correlate(assessments, signals)
	require.Len(t, got, 3)

	assert.Equal(t, int64(1), got[0].Assessment.ID)
	require.True(t, got[0].Matched())
	assert.Equal(t, int64(11), got[0].Signal.ID)
	assert.Equal(t, MatchAreaID, got[0].Kind)

	assert.False(t, got[1].Matched())
	assert.Equal(t, MatchNone, got[1].Kind)

	require.True(t, got[2].Matched())
	assert.Equal(t, int64(10), got[2].Signal.ID)
	assert.Equal(t, MatchProximity, got[2].Kind)
}

func TestCorrelate_SignalOrderIsTieBreak(t *testing.T) {
	t.Parallel()

	a := []model.Assessment{{ID: 1, Latitude: 31.5, Longitude: 34.46}}
	s := []model.HealthSignal{
		located(1, "a", 31.501, 34.461),
		located(2, "b", 31.502, 34.462),
	}
	r := rand.New(rand.NewPCG(1, 2))
	r.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })

	got := Correlate(a, s)
	require.True(t, got[0].Matched())
	assert.Equal(t, s[0].ID, got[0].Signal.ID)
}

func TestMatchSignal_ExactIDOverCloserSignal(t *testing.T) {
	t.Parallel()

	a := model.Assessment{ID: 5, Latitude: 31.50, Longitude: 34.45}
	signals := []model.HealthSignal{
		located(1, "x", 31.5005, 34.4505),
		located(2, "5", 0, 0),
	}

	got, ok := MatchSignal(a, signals)
	require.True(t, ok)
	assert.Equal(t, "5", got.AreaID)
}

func TestMatchSignal_JustOutsideWindow(t *testing.T) {
	t.Parallel()

	a := model.Assessment{ID: 9, Latitude: 31.50, Longitude: 34.45}
	_, ok := MatchSignal(a, []model.HealthSignal{located(1, "other", 31.515, 34.45)})
	assert.False(t, ok)
}
