package model

import "time"

// Priority is the backend-assigned urgency band of an assessment.
type Priority string

const (
	PriorityCritical Priority = "CRITICAL"
	PriorityHigh     Priority = "HIGH"
	PriorityMedium   Priority = "MEDIUM"
	PriorityLow      Priority = "LOW"
)

// Priorities lists the bands from most to least urgent.
var Priorities = []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}

// Band thresholds on the 0-100 overall risk score.
const (
	criticalThreshold = 70
	highThreshold     = 50
	mediumThreshold   = 30
)

// PriorityForRisk returns the band an overall risk score falls into.
// It is used to validate backend data, never to overwrite it.
func PriorityForRisk(overallRisk int) Priority {
	switch {
	case overallRisk >= criticalThreshold:
		return PriorityCritical
	case overallRisk >= highThreshold:
		return PriorityHigh
	case overallRisk >= mediumThreshold:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// Valid reports whether p is one of the four known bands.
func (p Priority) Valid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// SiteType classifies what kind of hazard a site presents.
type SiteType string

const (
	SiteTypeDebris SiteType = "DEBRIS"
	SiteTypeWater  SiteType = "WATER"
	SiteTypeBoth   SiteType = "BOTH"
)

// SiteTypes lists the known site types in display order.
var SiteTypes = []SiteType{SiteTypeDebris, SiteTypeWater, SiteTypeBoth}

// BuildingAge is the coarse age class of the structure at a site.
type BuildingAge string

const (
	BuildingAgeOld     BuildingAge = "OLD"
	BuildingAgeModern  BuildingAge = "MODERN"
	BuildingAgeUnknown BuildingAge = "UNKNOWN"
)

// Assessment is an environmental risk record for a physical site, as
// returned by the backend. Scores and priority are computed upstream.
type Assessment struct {
	ID             int64       `json:"id" yaml:"id"`
	Latitude       float64     `json:"latitude" yaml:"latitude"`
	Longitude      float64     `json:"longitude" yaml:"longitude"`
	ImagePath      string      `json:"imagePath,omitempty" yaml:"image_path,omitempty"`
	SiteType       SiteType    `json:"siteType" yaml:"site_type"`
	BuildingAge    BuildingAge `json:"buildingAge,omitempty" yaml:"building_age,omitempty"`
	MaterialType   string      `json:"materialType,omitempty" yaml:"material_type,omitempty"`
	DustPresent    bool        `json:"dustPresent" yaml:"dust_present"`
	OldMaterials   bool        `json:"oldMaterials" yaml:"old_materials"`
	NearPopulation bool        `json:"nearPopulation" yaml:"near_population"`
	SewageVisible  bool        `json:"sewageVisible" yaml:"sewage_visible"`
	StandingWater  bool        `json:"standingWater" yaml:"standing_water"`
	AsbestosRisk   int         `json:"asbestosRisk" yaml:"asbestos_risk"`
	WaterRisk      int         `json:"waterRisk" yaml:"water_risk"`
	OverallRisk    int         `json:"overallRisk" yaml:"overall_risk"`
	Priority       Priority    `json:"priority" yaml:"priority"`
	Recommendation string      `json:"recommendation,omitempty" yaml:"recommendation,omitempty"`
	Notes          string      `json:"notes,omitempty" yaml:"notes,omitempty"`
	CreatedBy      string      `json:"createdBy,omitempty" yaml:"created_by,omitempty"`
	CreatedAt      string      `json:"createdAt" yaml:"created_at"` // backend LocalDateTime, kept verbatim
	UpdatedAt      string      `json:"updatedAt,omitempty" yaml:"updated_at,omitempty"`
}

// Created parses CreatedAt. The zero time is returned when the value is
// missing or not in a recognized layout.
func (a Assessment) Created() time.Time {
	return ParseTimestamp(a.CreatedAt)
}

// Indicator is a named boolean risk observation on an assessment.
type Indicator struct {
	Label string `json:"label"`
	Value bool   `json:"value"`
}

// Indicators returns the five field observations in display order.
func (a Assessment) Indicators() []Indicator {
	return []Indicator{
		{Label: "Dust Present", Value: a.DustPresent},
		{Label: "Old Materials", Value: a.OldMaterials},
		{Label: "Near Population", Value: a.NearPopulation},
		{Label: "Sewage Visible", Value: a.SewageVisible},
		{Label: "Standing Water", Value: a.StandingWater},
	}
}

// AssessmentRequest is the payload for POST /api/assessments. It is
// forwarded verbatim; the backend computes scores and priority.
type AssessmentRequest struct {
	Latitude       float64     `json:"latitude"`
	Longitude      float64     `json:"longitude"`
	ImagePath      string      `json:"imagePath,omitempty"`
	SiteType       SiteType    `json:"siteType"`
	BuildingAge    BuildingAge `json:"buildingAge,omitempty"`
	DustPresent    bool        `json:"dustPresent"`
	OldMaterials   bool        `json:"oldMaterials"`
	NearPopulation bool        `json:"nearPopulation"`
	SewageVisible  bool        `json:"sewageVisible"`
	StandingWater  bool        `json:"standingWater"`
	Notes          string      `json:"notes,omitempty"`
	CreatedBy      string      `json:"createdBy,omitempty"`
}

// timestampLayouts are the representations the backend emits for
// LocalDateTime and LocalDate values.
var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	"2006-01-02",
}

// ParseTimestamp parses a backend timestamp or date string.
func ParseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
