package geo

import (
	"encoding/json"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/healthmap-cli/internal/model"
)

// AssessmentFeatures builds one Point feature per assessment, in input order.
func AssessmentFeatures(assessments []model.Assessment) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(assessments))}
	for _, a := range assessments {
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       "assessment-" + strconv.FormatInt(a.ID, 10),
			Geometry: point(a.Latitude, a.Longitude),
			Properties: map[string]any{
				"layer":        "assessment",
				"id":           a.ID,
				"siteType":     string(a.SiteType),
				"overallRisk":  a.OverallRisk,
				"asbestosRisk": a.AsbestosRisk,
				"waterRisk":    a.WaterRisk,
				"priority":     string(a.Priority),
				"materialType": a.MaterialType,
				"imagePath":    a.ImagePath,
			},
		})
	}
	return fc
}

// SignalFeatures builds Point features for located signals. Signals
// without both coordinates are skipped.
func SignalFeatures(signals []model.HealthSignal) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(signals))}
	for _, s := range signals {
		if !s.Located() {
			continue
		}
		fc.Features = append(fc.Features, signalFeature(s))
	}
	return fc
}

// MapLayers combines assessment and located-signal features into one
// collection, assessments first.
func MapLayers(assessments []model.Assessment, signals []model.HealthSignal) *geojson.FeatureCollection {
	fc := AssessmentFeatures(assessments)
	fc.Features = append(fc.Features, SignalFeatures(signals).Features...)
	return fc
}

// Marshal encodes a feature collection.
func Marshal(fc *geojson.FeatureCollection) ([]byte, error) {
	data, err := json.Marshal(fc)
	if err != nil {
		return nil, eris.Wrap(err, "geo: encode geojson")
	}
	return data, nil
}

func signalFeature(s model.HealthSignal) *geojson.Feature {
	return &geojson.Feature{
		ID:       "signal-" + strconv.FormatInt(s.ID, 10),
		Geometry: point(*s.Latitude, *s.Longitude),
		Properties: map[string]any{
			"layer":       "health_signal",
			"id":          s.ID,
			"areaId":      s.AreaID,
			"areaName":    s.AreaName,
			"signalType":  string(s.SignalType),
			"signalLevel": string(s.SignalLevel),
			"elevated":    s.Elevated(),
			"signalDate":  s.SignalDate,
		},
	}
}

// GeoJSON orders coordinates longitude first.
func point(lat, lon float64) *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{lon, lat}).SetSRID(4326)
}
