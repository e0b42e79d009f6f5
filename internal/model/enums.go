package model

import "strings"

// AgeBracket classifies a persona's age range.
type AgeBracket string

const (
	AgeTeen     AgeBracket = "teen"
	Age20s      AgeBracket = "20s"
	Age30s40s   AgeBracket = "30s-40s"
	Age50Plus   AgeBracket = "50+"
	DefaultAge             = Age20s
)

// GenderBucket classifies a persona's gender.
type GenderBucket string

const (
	GenderMale        GenderBucket = "male"
	GenderFemale      GenderBucket = "female"
	GenderNonbinary   GenderBucket = "nonbinary"
	GenderUnspecified GenderBucket = "unspecified"
	DefaultGender                  = GenderUnspecified
)

// EducationBucket classifies a persona's education level.
type EducationBucket string

const (
	EduSecondary     EducationBucket = "secondary"
	EduVocational    EducationBucket = "vocational"
	EduUndergraduate EducationBucket = "undergraduate"
	EduGraduate      EducationBucket = "graduate"
	EduSelfTaught    EducationBucket = "self-taught"
	EduUnspecified   EducationBucket = "unspecified"
	DefaultEducation                 = EduUnspecified
)

// StyleTag is a fixed tone label used to diversify phrasing across a
// generated batch.
type StyleTag string

const (
	StylePolite     StyleTag = "polite"
	StyleCasual     StyleTag = "casual"
	StylePlayful    StyleTag = "playful"
	StyleReflective StyleTag = "reflective"
	StyleBrisk      StyleTag = "brisk"
)

// StylePalette is the fixed rotation order for style assignment.
var StylePalette = []StyleTag{StylePolite, StyleCasual, StylePlayful, StyleReflective, StyleBrisk}

// NormalizeAge maps an arbitrary string to an AgeBracket, defaulting
// to "20s" for anything unrecognized.
func NormalizeAge(s string) AgeBracket {
	switch AgeBracket(strings.ToLower(strings.TrimSpace(s))) {
	case AgeTeen:
		return AgeTeen
	case Age20s:
		return Age20s
	case Age30s40s:
		return Age30s40s
	case Age50Plus:
		return Age50Plus
	default:
		return DefaultAge
	}
}

// NormalizeGender maps an arbitrary string to a GenderBucket,
// defaulting to "unspecified".
func NormalizeGender(s string) GenderBucket {
	switch GenderBucket(strings.ToLower(strings.TrimSpace(s))) {
	case GenderMale:
		return GenderMale
	case GenderFemale:
		return GenderFemale
	case GenderNonbinary:
		return GenderNonbinary
	case GenderUnspecified:
		return GenderUnspecified
	default:
		return DefaultGender
	}
}

// NormalizeEducation maps an arbitrary string to an EducationBucket.
// Matching is case-insensitive, ignores whitespace, and accepts common
// synonyms ("highschool" -> secondary, "phd" -> graduate, ...). Any
// unmapped input yields "unspecified".
func NormalizeEducation(s string) EducationBucket {
	t := strings.ToLower(s)
	t = strings.Join(strings.Fields(t), "")
	switch t {
	case "secondary", "highschool", "hs":
		return EduSecondary
	case "vocational", "technical", "tech", "trade":
		return EduVocational
	case "undergrad", "undergraduate", "college", "bachelor":
		return EduUndergraduate
	case "graduate", "postgrad", "postgraduate", "master", "phd", "doctor":
		return EduGraduate
	case "selftaught", "self-taught", "autodidact":
		return EduSelfTaught
	default:
		return EduUnspecified
	}
}
