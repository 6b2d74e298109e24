package aggregate

import (
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/healthmap-cli/internal/model"
)

func signal(id int64, area, name string, t model.SignalType, l model.SignalLevel) model.HealthSignal {
	return model.HealthSignal{ID: id, AreaID: area, AreaName: name, SignalType: t, SignalLevel: l}
}

func sampleSignals() []model.HealthSignal {
	return []model.HealthSignal{
		signal(1, "gaza-city", "Gaza City", model.SignalRespiratory, model.LevelElevated),
		signal(2, "gaza-city", "Gaza City", model.SignalRespiratory, model.LevelNormal),
		signal(3, "gaza-city", "", model.SignalSkin, model.LevelNormal),
		signal(4, "rafah", "Rafah", model.SignalGastrointestinal, model.LevelNormal),
		signal(5, "rafah", "rafah (south)", model.SignalSkin, model.LevelNormal),
		signal(6, "khan-younis", "Khan Younis", model.SignalGastrointestinal, model.LevelElevated),
		signal(7, "khan-younis", "Khan Younis", model.SignalType("OTHER"), model.LevelElevated),
	}
}

func TestAreaSummaries(t *testing.T) {
	t.Parallel()

	got := AreaSummaries(sampleSignals())
	require.Len(t, got, 3)

	assert.Equal(t, []string{"gaza-city", "khan-younis", "rafah"}, []string{got[0].AreaID, got[1].AreaID, got[2].AreaID})

	gaza := got[0]
	assert.Equal(t, "Gaza City", gaza.AreaName)
	assert.Equal(t, model.TypeCounts{Elevated: 1, Normal: 1}, gaza.Respiratory)
	assert.Equal(t, model.TypeCounts{Normal: 1}, gaza.Skin)
	assert.Equal(t, 3, gaza.TotalSignals)
	assert.True(t, gaza.HasRisk)

	khan := got[1]
	assert.Equal(t, 2, khan.TotalSignals)
	assert.Equal(t, model.TypeCounts{Elevated: 1}, khan.Gastrointestinal)
	assert.True(t, khan.HasRisk)

	rafah := got[2]
	assert.Equal(t, "Rafah", rafah.AreaName)
	assert.False(t, rafah.HasRisk)
}

func TestAreaSummaries_UnknownTypeDoesNotRaiseRisk(t *testing.T) {
	t.Parallel()

	got := AreaSummaries([]model.HealthSignal{
		signal(1, "a", "A", model.SignalType("OTHER"), model.LevelElevated),
	})
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].TotalSignals)
	assert.False(t, got[0].HasRisk)
}

func TestAreaSummaries_OrderIndependent(t *testing.T) {
	t.Parallel()

	base := sampleSignals()
	want := AreaSummaries(base)

	r := rand.New(rand.NewPCG(42, 7))
	for range 50 {
		shuffled := slices.Clone(base)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		assert.Equal(t, want, AreaSummaries(shuffled))
	}
}

func TestAreaSummaries_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, AreaSummaries(nil))
}

func TestRiskAreas(t *testing.T) {
	t.Parallel()

	got := RiskAreas(AreaSummaries(sampleSignals()))
	require.Len(t, got, 2)
	assert.Equal(t, "gaza-city", got[0].AreaID)
	assert.Equal(t, "khan-younis", got[1].AreaID)
}

func TestSignalCounts(t *testing.T) {
	t.Parallel()

	got := SignalCounts(sampleSignals())
	assert.Equal(t, 7, got.Total)
	assert.Equal(t, 3, got.Elevated)
	assert.Equal(t, 4, got.Normal)
	assert.Equal(t, 2, got.ByType[model.SignalRespiratory])
	assert.Equal(t, 1, got.ElevatedByType[model.SignalGastrointestinal])
	assert.Equal(t, 0, got.ElevatedByType[model.SignalSkin])
}

func TestSignalCounts_UnknownLevel(t *testing.T) {
	t.Parallel()

	signals := append(sampleSignals(), signal(8, "rafah", "Rafah", model.SignalSkin, "PENDING"))
	got := SignalCounts(signals)
	assert.Equal(t, 8, got.Total)
	assert.Equal(t, 3, got.Elevated)
	assert.Equal(t, 4, got.Normal)
	assert.Len(t, FilterSignals(signals, LevelNormal), got.Normal)
	assert.Equal(t, 3, got.ByType[model.SignalSkin])

	for _, a := range AreaSummaries(signals) {
		if a.AreaID == "rafah" {
			assert.Equal(t, model.TypeCounts{Normal: 1}, a.Skin)
		}
	}
}

func TestSignalCounts_Empty(t *testing.T) {
	t.Parallel()

	got := SignalCounts(nil)
	assert.Equal(t, 0, got.Total)
	for _, st := range model.SignalTypes {
		v, ok := got.ByType[st]
		assert.True(t, ok)
		assert.Zero(t, v)
	}
}

func TestAssessmentStats_Scenario(t *testing.T) {
	t.Parallel()

	got := AssessmentStats([]model.Assessment{
		{Priority: model.PriorityCritical, OverallRisk: 85},
		{Priority: model.PriorityLow, OverallRisk: 10},
	})
	assert.InDelta(t, 47.5, got.AverageOverallRisk, 1e-9)
	assert.Equal(t, 1, got.Critical)
	assert.Equal(t, 1, got.Count(model.PriorityLow))
}

func TestAssessmentStats_Empty(t *testing.T) {
	t.Parallel()

	got := AssessmentStats(nil)
	assert.Equal(t, 0, got.Total)
	assert.Zero(t, got.AverageAsbestosRisk)
	assert.Zero(t, got.AverageWaterRisk)
	assert.Zero(t, got.AverageOverallRisk)
	assert.Empty(t, got.BySiteType)
}

func sampleAssessments() []model.Assessment {
	return []model.Assessment{
		{ID: 1, SiteType: model.SiteTypeDebris, AsbestosRisk: 90, WaterRisk: 10, OverallRisk: 75, Priority: model.PriorityCritical, CreatedAt: "2024-03-01T10:00:00"},
		{ID: 2, SiteType: model.SiteTypeWater, AsbestosRisk: 0, WaterRisk: 80, OverallRisk: 55, Priority: model.PriorityHigh, CreatedAt: "2024-03-04T10:00:00"},
		{ID: 3, SiteType: model.SiteTypeBoth, AsbestosRisk: 40, WaterRisk: 40, OverallRisk: 40, Priority: model.PriorityMedium, CreatedAt: "2024-03-02T10:00:00"},
		{ID: 4, SiteType: model.SiteTypeDebris, AsbestosRisk: 20, WaterRisk: 5, OverallRisk: 15, Priority: model.PriorityLow, CreatedAt: "2024-03-03T10:00:00"},
		{ID: 5, SiteType: model.SiteTypeWater, AsbestosRisk: 0, WaterRisk: 90, OverallRisk: 75, Priority: model.PriorityCritical, CreatedAt: ""},
	}
}

func TestAssessmentStats_BandsSumToTotal(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewPCG(3, 9))
	for range 100 {
		n := r.IntN(40)
		as := make([]model.Assessment, n)
		for i := range as {
			risk := r.IntN(101)
			as[i] = model.Assessment{ID: int64(i), OverallRisk: risk, Priority: model.PriorityForRisk(risk)}
		}
		got := AssessmentStats(as)
		assert.Equal(t, got.Total, got.Critical+got.High+got.Medium+got.Low)
		assert.Zero(t, got.Unbanded)
	}
}

func TestAssessmentStats_Unbanded(t *testing.T) {
	t.Parallel()

	got := AssessmentStats([]model.Assessment{{Priority: "URGENT"}, {Priority: model.PriorityHigh}})
	assert.Equal(t, 2, got.Total)
	assert.Equal(t, 1, got.Unbanded)
	assert.Equal(t, got.Total, got.Critical+got.High+got.Medium+got.Low+got.Unbanded)
}

func TestAssessmentStats_SiteTypes(t *testing.T) {
	t.Parallel()

	got := AssessmentStats(sampleAssessments())
	assert.Equal(t, 2, got.BySiteType[model.SiteTypeDebris])
	assert.Equal(t, 2, got.BySiteType[model.SiteTypeWater])
	assert.Equal(t, 1, got.BySiteType[model.SiteTypeBoth])
	assert.InDelta(t, 45.0, got.AverageRiskBySiteType[model.SiteTypeDebris], 1e-9)
	assert.InDelta(t, 65.0, got.AverageRiskBySiteType[model.SiteTypeWater], 1e-9)
	assert.InDelta(t, 30.0, got.AverageAsbestosRisk, 1e-9)
}

func TestAssessmentStats_OrderIndependent(t *testing.T) {
	t.Parallel()

	base := sampleAssessments()
	want := AssessmentStats(base)

	r := rand.New(rand.NewPCG(11, 13))
	for range 50 {
		shuffled := slices.Clone(base)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		assert.Equal(t, want, AssessmentStats(shuffled))
	}
}

func ids(as []model.Assessment) []int64 {
	out := make([]int64, len(as))
	for i, a := range as {
		out[i] = a.ID
	}
	return out
}

func TestFilterAssessments(t *testing.T) {
	t.Parallel()

	as := sampleAssessments()
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(FilterAssessments(as, AssessmentFilter{})))
	assert.Equal(t, []int64{1, 5}, ids(FilterAssessments(as, AssessmentFilter{Priorities: []model.Priority{model.PriorityCritical}})))
	assert.Equal(t, []int64{5}, ids(FilterAssessments(as, AssessmentFilter{
		Priorities: []model.Priority{model.PriorityCritical},
		SiteTypes:  []model.SiteType{model.SiteTypeWater},
	})))
	assert.Empty(t, FilterAssessments(nil, AssessmentFilter{}))
}

func TestSortAssessments(t *testing.T) {
	t.Parallel()

	as := sampleAssessments()

	assert.Equal(t, []int64{1, 5, 2, 3, 4}, ids(SortAssessments(as, SortRisk)), "ties keep input order")
	assert.Equal(t, []int64{1, 3, 4, 2, 5}, ids(SortAssessments(as, SortAsbestos)))
	assert.Equal(t, []int64{5, 2, 3, 1, 4}, ids(SortAssessments(as, SortWater)))
	assert.Equal(t, []int64{2, 4, 3, 1, 5}, ids(SortAssessments(as, SortDate)), "undated last")

	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(as), "input untouched")
}

func TestParseSortKey(t *testing.T) {
	t.Parallel()

	k, err := ParseSortKey("")
	require.NoError(t, err)
	assert.Equal(t, SortRisk, k)

	k, err = ParseSortKey(" Water ")
	require.NoError(t, err)
	assert.Equal(t, SortWater, k)

	_, err = ParseSortKey("name")
	assert.Error(t, err)
}

func TestFilterSignals(t *testing.T) {
	t.Parallel()

	s := sampleSignals()
	assert.Len(t, FilterSignals(s, LevelAll), 7)
	assert.Len(t, FilterSignals(s, LevelElevated), 3)
	assert.Len(t, FilterSignals(s, LevelNormal), 4)

	l, err := ParseLevelFilter("ELEVATED")
	require.NoError(t, err)
	assert.Equal(t, LevelElevated, l)

	_, err = ParseLevelFilter("critical")
	assert.Error(t, err)
}

func TestRecentSignals(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)
	signals := []model.HealthSignal{
		{ID: 1, SignalDate: "2024-05-10"},
		{ID: 2, SignalDate: "2024-05-03"},
		{ID: 3, SignalDate: "2024-05-02"},
		{ID: 4, CreatedAt: "2024-05-09T08:00:00"},
		{ID: 5},
	}

	got := RecentSignals(signals, 7, now)
	gotIDs := make([]int64, len(got))
	for i, s := range got {
		gotIDs[i] = s.ID
	}
	assert.Equal(t, []int64{1, 2, 4}, gotIDs)
}
