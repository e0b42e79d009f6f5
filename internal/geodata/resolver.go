package geodata

import (
	"context"
	"sort"
	"strings"

	"github.com/tanachan3/looqn-all/internal/model"
	"go.uber.org/zap"
)

const (
	// maxLandmarks caps the resolved list.
	maxLandmarks = 10
	// distanceToleranceMeters allows a small overshoot for centroid
	// approximation on area/line features.
	distanceToleranceMeters = 5
)

// Resolver produces a deduplicated, distance-ranked landmark list for a
// coordinate. Caller-supplied names short-circuit the external query.
type Resolver struct {
	client *Client
	log    *zap.Logger
}

// NewResolver wires an Overpass client into a Resolver.
func NewResolver(client *Client, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{client: client, log: log}
}

// Resolve returns nearby public landmarks. When callerSupplied has any
// non-blank entries after trimming and deduplication, those are used
// as-is (max 10, distance zero) and no external call is made. Any
// Overpass failure yields an empty list, never an error.
func (r *Resolver) Resolve(ctx context.Context, coord model.Coordinate, radiusMeters int, language string, callerSupplied []string) []model.Landmark {
	if supplied := DedupeNames(callerSupplied); len(supplied) > 0 {
		out := make([]model.Landmark, 0, len(supplied))
		for _, name := range supplied {
			out = append(out, model.Landmark{Name: name})
		}
		return out
	}

	elements, err := r.client.fetch(ctx, coord.Latitude, coord.Longitude, radiusMeters)
	if err != nil {
		r.log.Warn("overpass fetch failed", zap.Error(err))
		return nil
	}

	seen := make(map[string]bool)
	var items []model.Landmark
	for _, e := range elements {
		name := strings.TrimSpace(pickNameForLanguage(e.Tags, language))
		if name == "" || seen[name] {
			continue
		}
		lat, lon, ok := e.representativePoint()
		if !ok {
			continue
		}
		d := Haversine(coord.Latitude, coord.Longitude, lat, lon)
		if d > float64(radiusMeters)+distanceToleranceMeters {
			continue
		}
		seen[name] = true
		items = append(items, model.Landmark{Name: name, DistanceMeters: d})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].DistanceMeters < items[j].DistanceMeters
	})
	if len(items) > maxLandmarks {
		items = items[:maxLandmarks]
	}
	return items
}

// DedupeNames trims entries, drops blanks and exact duplicates, and
// truncates to the landmark cap. First occurrence wins.
func DedupeNames(names []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
		if len(out) == maxLandmarks {
			break
		}
	}
	return out
}
