package model

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// SignalType is the illness category a health signal reports on.
type SignalType string

const (
	SignalRespiratory      SignalType = "RESPIRATORY"
	SignalGastrointestinal SignalType = "GASTROINTESTINAL"
	SignalSkin             SignalType = "SKIN"
)

// SignalTypes lists the signal types in report order.
var SignalTypes = []SignalType{SignalRespiratory, SignalGastrointestinal, SignalSkin}

// RelatedFactors returns the environmental conditions usually linked to t.
func (t SignalType) RelatedFactors() string {
	switch t {
	case SignalRespiratory:
		return "Dust, debris, old materials"
	case SignalGastrointestinal:
		return "Contaminated water, sewage"
	case SignalSkin:
		return "Water contamination, hygiene conditions"
	}
	return ""
}

// SignalLevel compares observed cases against the normal baseline.
type SignalLevel string

const (
	LevelNormal   SignalLevel = "NORMAL"
	LevelElevated SignalLevel = "ELEVATED"
)

// SignalSource identifies who reported a signal.
type SignalSource string

const (
	SourceClinic       SignalSource = "CLINIC"
	SourceFieldTeam    SignalSource = "FIELD_TEAM"
	SourceMobileUnit   SignalSource = "MOBILE_UNIT"
	SourceOrganization SignalSource = "ORGANIZATION"
)

// HealthSignal is a community-reported indicator of illness patterns in an
// area. It is a signal, not a clinical diagnosis.
type HealthSignal struct {
	ID          int64        `json:"id" yaml:"id"`
	AreaID      string       `json:"areaId" yaml:"area_id"`
	AreaName    string       `json:"areaName,omitempty" yaml:"area_name,omitempty"`
	Latitude    *float64     `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude   *float64     `json:"longitude,omitempty" yaml:"longitude,omitempty"`
	SignalType  SignalType   `json:"signalType" yaml:"signal_type"`
	SignalLevel SignalLevel  `json:"signalLevel" yaml:"signal_level"`
	Source      SignalSource `json:"source,omitempty" yaml:"source,omitempty"`
	ReportedBy  string       `json:"reportedBy,omitempty" yaml:"reported_by,omitempty"`
	Notes       string       `json:"notes,omitempty" yaml:"notes,omitempty"`
	SignalDate  string       `json:"signalDate,omitempty" yaml:"signal_date,omitempty"`
	CreatedAt   string       `json:"createdAt" yaml:"created_at"`
	UpdatedAt   string       `json:"updatedAt,omitempty" yaml:"updated_at,omitempty"`

	SignalTypeDisplay  string `json:"signalTypeDisplay,omitempty" yaml:"-"`
	SignalLevelDisplay string `json:"signalLevelDisplay,omitempty" yaml:"-"`
	SourceDisplay      string `json:"sourceDisplay,omitempty" yaml:"-"`
}

// Located reports whether the signal carries both coordinates.
func (s HealthSignal) Located() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// Elevated reports whether the signal level is ELEVATED.
func (s HealthSignal) Elevated() bool {
	return s.SignalLevel == LevelElevated
}

// Date returns the parsed signal date, falling back to CreatedAt.
func (s HealthSignal) Date() time.Time {
	if t := ParseTimestamp(s.SignalDate); !t.IsZero() {
		return t
	}
	return ParseTimestamp(s.CreatedAt)
}

// HealthSignalRequest is the payload for POST /api/health-signals.
type HealthSignalRequest struct {
	AreaID      string       `json:"areaId" csv:"area_id"`
	AreaName    string       `json:"areaName" csv:"area_name"`
	SignalDate  string       `json:"signalDate" csv:"signal_date"`
	SignalType  SignalType   `json:"signalType" csv:"signal_type"`
	SignalLevel SignalLevel  `json:"signalLevel" csv:"signal_level"`
	Source      SignalSource `json:"source" csv:"source"`
	Notes       string       `json:"notes,omitempty" csv:"notes,omitempty"`
	Latitude    *float64     `json:"latitude,omitempty" csv:"latitude,omitempty"`
	Longitude   *float64     `json:"longitude,omitempty" csv:"longitude,omitempty"`
	ReportedBy  string       `json:"reportedBy,omitempty" csv:"reported_by,omitempty"`
}

// ErrMissingFields is returned when a signal request lacks the area name or
// either coordinate.
var ErrMissingFields = errors.New("Please fill in all required fields") //nolint:staticcheck

var (
	spaceRun   = regexp.MustCompile(`\s+`)
	nonSlugRun = regexp.MustCompile(`[^a-z0-9_]`)
)

// AreaSlug derives an area id from a display name: lowercased, whitespace
// runs become "_", anything outside [a-z0-9_] is dropped.
func AreaSlug(name string) string {
	s := spaceRun.ReplaceAllString(strings.ToLower(name), "_")
	return nonSlugRun.ReplaceAllString(s, "")
}

// Prepare fills the defaults a blank form would carry and checks the
// required fields. today is used for a missing signal date.
func (r *HealthSignalRequest) Prepare(today time.Time) error {
	r.AreaName = strings.TrimSpace(r.AreaName)
	if r.AreaName == "" || r.Latitude == nil || r.Longitude == nil {
		return ErrMissingFields
	}
	if r.AreaID == "" {
		r.AreaID = AreaSlug(r.AreaName)
	}
	if r.SignalDate == "" {
		r.SignalDate = today.Format("2006-01-02")
	}
	if r.SignalType == "" {
		r.SignalType = SignalRespiratory
	}
	if r.SignalLevel == "" {
		r.SignalLevel = LevelNormal
	}
	if r.Source == "" {
		r.Source = SourceClinic
	}
	return nil
}

// TypeCounts holds elevated and normal counts for one signal type.
type TypeCounts struct {
	Elevated int `json:"elevated" yaml:"elevated"`
	Normal   int `json:"normal" yaml:"normal"`
}

// AreaSummary aggregates the health signals reported for one area.
type AreaSummary struct {
	AreaID           string     `json:"areaId" yaml:"area_id"`
	AreaName         string     `json:"areaName" yaml:"area_name"`
	Respiratory      TypeCounts `json:"respiratory" yaml:"respiratory"`
	Gastrointestinal TypeCounts `json:"gastrointestinal" yaml:"gastrointestinal"`
	Skin             TypeCounts `json:"skin" yaml:"skin"`
	TotalSignals     int        `json:"totalSignals" yaml:"total_signals"`
	HasRisk          bool       `json:"hasRisk" yaml:"has_risk"`
}

// Counts returns the counts for signal type t.
func (a AreaSummary) Counts(t SignalType) TypeCounts {
	switch t {
	case SignalRespiratory:
		return a.Respiratory
	case SignalGastrointestinal:
		return a.Gastrointestinal
	case SignalSkin:
		return a.Skin
	}
	return TypeCounts{}
}
