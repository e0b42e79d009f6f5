package model

// Coordinate is a validated geographic point.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Hemisphere returns "north" for latitudes >= 0, otherwise "south".
func (c Coordinate) Hemisphere() string {
	if c.Latitude >= 0 {
		return "north"
	}
	return "south"
}

// GenerationRequest is a fully normalized message-generation request.
// Everything downstream of the input normalizer only ever sees this type.
type GenerationRequest struct {
	Position     Coordinate      `json:"position"`
	Language     string          `json:"language"`
	RadiusMeters int             `json:"radiusMeters"`
	Count        int             `json:"count"`
	PlaceHint    string          `json:"placeHint,omitempty"`
	ProperNouns  []string        `json:"properNouns,omitempty"`
	Personas     []PersonaDetail `json:"personas,omitempty"`
	Debug        bool            `json:"debug,omitempty"`
}

// Landmark is a named public place near the query coordinate. It is a
// transient entity that only exists within a single pipeline run.
type Landmark struct {
	Name           string  `json:"name"`
	DistanceMeters float64 `json:"distance_meters"`
}

// LocalizedTerm pairs a landmark name with its display form in the
// target language.
type LocalizedTerm struct {
	Original string `json:"orig"`
	Display  string `json:"display"`
}

// PersonaDetail is a synthetic author profile used to steer generation
// style. The label is internal only and never shown to end users.
type PersonaDetail struct {
	Label     string          `json:"label"`
	Age       AgeBracket      `json:"age"`
	Gender    GenderBucket    `json:"gender"`
	Education EducationBucket `json:"education"`
}

// GeneratedMessage is one validated output message with its provenance.
type GeneratedMessage struct {
	Text         string   `json:"text"`
	PersonaIndex int      `json:"persona_index"`
	Style        StyleTag `json:"style"`
}
