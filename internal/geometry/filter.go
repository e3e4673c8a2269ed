package geometry

import (
	"strconv"

	"github.com/paulmach/orb/geojson"
)

// CadnumProperty is the normalized quarter id key set on every retained
// feature.
const CadnumProperty = "cadnum"

// QuarterID extracts the cadastral quarter id from a feature's properties.
// Source files disagree on where the id lives, so the lookup order is:
// externalKey, then label, then options.cad_num. Returns "" when no id can
// be extracted.
func QuarterID(f *geojson.Feature) string {
	if f == nil || f.Properties == nil {
		return ""
	}
	if id := stringValue(f.Properties["externalKey"]); id != "" {
		return id
	}
	if id := stringValue(f.Properties["label"]); id != "" {
		return id
	}
	if opts, ok := f.Properties["options"].(map[string]interface{}); ok {
		return stringValue(opts["cad_num"])
	}
	return ""
}

// FilterByQuarters returns a new collection holding only features whose
// extracted quarter id is in allowed and that carry a geometry. Each
// retained feature gets a copied property set with the normalized "cadnum"
// key; the input collection is left untouched. Feature order is preserved,
// and filtering an already-filtered collection is a no-op.
func FilterByQuarters(fc *geojson.FeatureCollection, allowed map[string]struct{}) *geojson.FeatureCollection {
	filtered := geojson.NewFeatureCollection()
	for _, f := range fc.Features {
		id := QuarterID(f)
		if id == "" || f.Geometry == nil {
			continue
		}
		if _, ok := allowed[id]; !ok {
			continue
		}

		nf := geojson.NewFeature(f.Geometry)
		nf.Properties = make(geojson.Properties, len(f.Properties)+1)
		for k, v := range f.Properties {
			nf.Properties[k] = v
		}
		nf.Properties[CadnumProperty] = id
		filtered.Append(nf)
	}
	return filtered
}

func stringValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case int:
		return strconv.Itoa(val)
	default:
		return ""
	}
}
