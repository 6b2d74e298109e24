package aggregate

import "github.com/sells-group/healthmap-cli/internal/model"

// SignalTotals counts signals by level and by type.
type SignalTotals struct {
	Total          int                      `json:"total" yaml:"total"`
	Elevated       int                      `json:"elevated" yaml:"elevated"`
	Normal         int                      `json:"normal" yaml:"normal"`
	ByType         map[model.SignalType]int `json:"byType" yaml:"by_type"`
	ElevatedByType map[model.SignalType]int `json:"elevatedByType" yaml:"elevated_by_type"`
}

// SignalCounts totals signals in one pass. Elevated and Normal count their
// exact level, so a signal with an unknown level only adds to Total and
// ByType.
func SignalCounts(signals []model.HealthSignal) SignalTotals {
	t := SignalTotals{
		ByType:         make(map[model.SignalType]int, len(model.SignalTypes)),
		ElevatedByType: make(map[model.SignalType]int, len(model.SignalTypes)),
	}
	for _, st := range model.SignalTypes {
		t.ByType[st] = 0
		t.ElevatedByType[st] = 0
	}
	for _, s := range signals {
		t.Total++
		t.ByType[s.SignalType]++
		switch s.SignalLevel {
		case model.LevelElevated:
			t.Elevated++
			t.ElevatedByType[s.SignalType]++
		case model.LevelNormal:
			t.Normal++
		}
	}
	return t
}
