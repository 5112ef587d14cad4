package definitions

import "regexp"

// definitionPattern is one recognizer in the extraction registry. ID and
// Confidence travel with every hit so extraction quality is auditable
// per pattern.
type definitionPattern struct {
	ID         string
	Re         *regexp.Regexp
	Confidence float64
}

// extractionPatterns recognize the definitional sentence forms used in
// QAP regulatory text. Ordered strongest-form first; the first pattern
// to match a sentence claims it. Capture group 1 is the term, group 2
// the definition body.
var extractionPatterns = []definitionPattern{
	{
		ID:         "quoted_means",
		Re:         regexp.MustCompile(`"([^"]{2,80})"\s+(?:shall\s+)?means?\s+(.{10,}?)(?:\.|$)`),
		Confidence: 0.95,
	},
	{
		ID:         "term_means",
		Re:         regexp.MustCompile(`\b([A-Z][A-Za-z0-9\-() ]{1,79}?)\s+means\s+(.{10,}?)(?:\.|$)`),
		Confidence: 0.85,
	},
	{
		ID:         "term_shall_mean",
		Re:         regexp.MustCompile(`\b([A-Z][A-Za-z0-9\-() ]{1,79}?)\s+shall\s+mean\s+(.{10,}?)(?:\.|$)`),
		Confidence: 0.9,
	},
	{
		ID:         "is_defined_as",
		Re:         regexp.MustCompile(`\b([A-Z][A-Za-z0-9\-() ]{1,79}?)\s+is\s+defined\s+as\s+(.{10,}?)(?:\.|$)`),
		Confidence: 0.9,
	},
	{
		ID:         "refers_to",
		Re:         regexp.MustCompile(`\b([A-Z][A-Za-z0-9\-() ]{1,79}?)\s+refers\s+to\s+(.{10,}?)(?:\.|$)`),
		Confidence: 0.7,
	},
}

// sectionRefRe pulls a section citation out of a definition body, for
// the SectionReference field.
var sectionRefRe = regexp.MustCompile(`(?:Section|§)\s*(\d{3,5}(?:\([a-z0-9]+\))*)`)

// crossRefRe finds citations to other sections inside a definition.
var crossRefRe = regexp.MustCompile(`(?:Section|§)\s*\d{3,5}(?:\([a-z]\))?`)
