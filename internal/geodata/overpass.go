// Package geodata resolves named public places near a coordinate using
// the Overpass API. Failures always degrade to an empty result; the
// pipeline never depends on landmark data being present.
package geodata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// DefaultEndpoint is the public Overpass interpreter.
const DefaultEndpoint = "https://overpass-api.de/api/interpreter"

// jaLanguage matches language values that should prefer Japanese name tags.
var jaLanguage = regexp.MustCompile(`(?i)^(ja|日本語)`)

// Client issues Overpass QL queries.
type Client struct {
	Endpoint   string
	HTTPClient *http.Client
}

// NewClient creates an Overpass client for the given endpoint, falling
// back to the public interpreter when endpoint is empty.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		Endpoint:   endpoint,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// element is one feature returned by Overpass. Area and line features
// carry a precomputed centroid in Center.
type element struct {
	Lat    *float64          `json:"lat"`
	Lon    *float64          `json:"lon"`
	Center *struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"center"`
	Tags map[string]string `json:"tags"`
}

type overpassResponse struct {
	Elements []element `json:"elements"`
}

// buildQuery assembles the Overpass QL for public-feature categories
// within radius r of (lat, lon): stations, parks, museums, universities,
// libraries, shrines/temples, named primary/trunk roads, squares, and
// named rivers.
func buildQuery(lat, lon float64, r int) string {
	var b strings.Builder
	b.WriteString("[out:json][timeout:25];\n(\n")

	all := func(filter string) {
		for _, kind := range []string{"node", "way", "relation"} {
			fmt.Fprintf(&b, "  %s(around:%d,%g,%g)%s;\n", kind, r, lat, lon, filter)
		}
	}
	areas := func(filter string) {
		for _, kind := range []string{"way", "relation"} {
			fmt.Fprintf(&b, "  %s(around:%d,%g,%g)%s;\n", kind, r, lat, lon, filter)
		}
	}

	all(`["railway"="station"]`)
	all(`["public_transport"="station"]`)
	all(`["leisure"="park"]`)
	all(`["tourism"="museum"]`)
	all(`["amenity"="university"]`)
	all(`["amenity"="library"]`)
	all(`["historic"~"^(shrine|temple)$"]`)
	areas(`["highway"~"^(primary|trunk)$"]["name"]`)
	all(`["place"="square"]`)
	areas(`["waterway"="river"]["name"]`)

	b.WriteString(");\nout center tags;")
	return b.String()
}

// fetch runs one query and returns the raw elements.
func (c *Client) fetch(ctx context.Context, lat, lon float64, r int) ([]element, error) {
	q := buildQuery(lat, lon, r)
	body := "data=" + url.QueryEscape(q)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=UTF-8")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("overpass request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("overpass HTTP %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var parsed overpassResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parsing overpass response: %w", err)
	}
	return parsed.Elements, nil
}

// representativePoint returns the element's own coordinate, or the
// centroid for area/line features.
func (e element) representativePoint() (float64, float64, bool) {
	if e.Lat != nil && e.Lon != nil {
		return *e.Lat, *e.Lon, true
	}
	if e.Center != nil {
		return e.Center.Lat, e.Center.Lon, true
	}
	return 0, 0, false
}

// pickNameForLanguage chooses a display name from OSM tags. Japanese
// targets prefer name:ja, everything else prefers name:en, with name
// and official_name as fallbacks.
func pickNameForLanguage(tags map[string]string, language string) string {
	if tags == nil {
		return ""
	}
	isJa := jaLanguage.MatchString(language)

	var candidates []string
	if isJa {
		candidates = append(candidates, tags["name:ja"])
	} else {
		candidates = append(candidates, tags["name:en"])
	}
	candidates = append(candidates, tags["name"], tags["official_name"])

	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}
