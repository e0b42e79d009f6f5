// Package request validates loosely-typed caller payloads and turns
// them into fully-typed generation requests. Downstream stages never
// see raw payload fields.
package request

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tanachan3/looqn-all/internal/model"
)

// ErrInvalidPosition reports a missing or non-numeric coordinate. It is
// the only validation failure that aborts a whole request.
var ErrInvalidPosition = errors.New("position.latitude / position.longitude are required numbers")

const (
	// DefaultLanguage is the display form used when the caller omits a language.
	DefaultLanguage = "日本語"

	DefaultRadiusMeters = 500
	MinRadiusMeters     = 100
	MaxRadiusMeters     = 1500

	DefaultCount = 1
	MinCount     = 1
	MaxCount     = 5

	// MaxProperNouns caps how many caller-supplied landmark names are kept.
	MaxProperNouns = 10
)

// Payload is the wire shape of an incoming request. Field types are
// deliberately loose; Normalize does all coercion and clamping.
type Payload struct {
	Position     map[string]any `json:"position"`
	Language     string         `json:"language"`
	RadiusMeters any            `json:"radiusMeters"`
	Count        any            `json:"count"`
	PlaceHint    string         `json:"placeHint"`
	ProperNouns  []any          `json:"properNouns"`
	Personas     []any          `json:"personas"`
	Debug        bool           `json:"debug"`
}

// Normalize validates a payload and produces the typed request consumed
// by the pipeline. Caller personas are returned separately in their raw
// form; persona normalization has its own rules (see internal/persona).
func Normalize(p Payload) (*model.GenerationRequest, []any, error) {
	pos, ok := coercePosition(p.Position)
	if !ok {
		return nil, nil, fmt.Errorf("%w", ErrInvalidPosition)
	}

	language := strings.TrimSpace(p.Language)
	if language == "" {
		language = DefaultLanguage
	}

	radius := DefaultRadiusMeters
	if r, ok := toFloat(p.RadiusMeters); ok && r > 0 {
		radius = clampInt(int(math.Floor(r)), MinRadiusMeters, MaxRadiusMeters)
	}

	count := DefaultCount
	if c, ok := toFloat(p.Count); ok {
		count = clampInt(int(math.Floor(c)), MinCount, MaxCount)
	}

	var nouns []string
	seen := make(map[string]bool)
	for _, v := range p.ProperNouns {
		name := strings.TrimSpace(stringify(v))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		nouns = append(nouns, name)
		if len(nouns) == MaxProperNouns {
			break
		}
	}

	req := &model.GenerationRequest{
		Position:     pos,
		Language:     language,
		RadiusMeters: radius,
		Count:        count,
		PlaceHint:    strings.TrimSpace(p.PlaceHint),
		ProperNouns:  nouns,
		Debug:        p.Debug,
	}
	return req, p.Personas, nil
}

// coercePosition resolves coordinate fields through a case/alias
// tolerant lookup and coerces string-typed numbers. It reports false
// when either coordinate is absent or not finite.
func coercePosition(input map[string]any) (model.Coordinate, bool) {
	if input == nil {
		return model.Coordinate{}, false
	}

	lat, latOK := lookupNumber(input, "latitude", "lat", "Lat", "LAT", "Latitude", "LATITUDE")
	lng, lngOK := lookupNumber(input, "longitude", "lng", "lon", "long", "Longitude", "LONGITUDE")
	if !latOK || !lngOK {
		return model.Coordinate{}, false
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return model.Coordinate{}, false
	}
	return model.Coordinate{Latitude: lat, Longitude: lng}, true
}

// lookupNumber resolves the first key present in the map. Null values
// fall through to the next alias; a present non-null value that won't
// coerce fails the lookup outright.
func lookupNumber(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return toFloat(v)
		}
	}
	return 0, false
}

// toFloat coerces JSON-decoded values (float64, string, int) into a
// finite float64.
func toFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", x)
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
