package detect

import (
	"fmt"
	"log"
	"regexp"
	"strings"
)

// localeConfig holds the per-language tables the address scorer runs on.
type localeConfig struct {
	key          string
	classifierRe *regexp.Regexp
	unitRe       *regexp.Regexp
	postalCodes  []*regexp.Regexp
}

const fallbackLocale = "en"

var locales = map[string]*localeConfig{
	"en": newLocale("en",
		[]string{
			"street", "st",
			"avenue", "ave",
			"road", "rd",
			"boulevard", "blvd",
			"drive", "dr",
			"lane", "ln",
			"way", "court", "ct",
			"parkway", "pkwy",
		},
		[]string{"apt", "apartment", "suite", "ste", "unit", "#"},
		[]string{`\b\d{5}(-\d{4})?\b`}, // US ZIP
	),
	"es": newLocale("es",
		[]string{
			"calle", "c",
			"avenida", "av",
			"pasaje", "pje",
			"camino", "km",
		},
		[]string{"depto", "departamento", "piso", "oficina", "#"},
		[]string{`\b\d{7}\b`}, // Chile
	),
	"fr": newLocale("fr",
		[]string{"rue", "avenue", "boulevard"},
		[]string{"apt", "appartement"},
		[]string{`\b\d{5}\b`},
	),
}

var (
	houseNumberRe = regexp.MustCompile(`\b\d{1,5}\b`)
	// Capitalized multi-word span, works across Latin languages.
	placeNameRe = regexp.MustCompile(`\b[A-ZÁÉÍÓÚÑÄÖÜ][\wÁÉÍÓÚÑÄÖÜáéíóúñäöü]+(?:\s+[A-ZÁÉÍÓÚÑÄÖÜ][\wÁÉÍÓÚÑÄÖÜáéíóúñäöü]+)+\b`)
)

func newLocale(key string, classifiers, units, postals []string) *localeConfig {
	quote := func(words []string) string {
		quoted := make([]string, len(words))
		for i, w := range words {
			quoted[i] = regexp.QuoteMeta(w)
		}
		return strings.Join(quoted, "|")
	}

	lc := &localeConfig{
		key:          key,
		classifierRe: regexp.MustCompile(fmt.Sprintf(`(?i)\b(%s)\b`, quote(classifiers))),
		unitRe:       regexp.MustCompile(fmt.Sprintf(`(?i)(\b(%s)\b|#)`, quote(units))),
	}
	for _, p := range postals {
		lc.postalCodes = append(lc.postalCodes, regexp.MustCompile(p))
	}
	return lc
}

// localeFor resolves a locale key, falling back to "en" for unknown keys.
func localeFor(key string) *localeConfig {
	if lc, ok := locales[key]; ok {
		return lc
	}
	log.Printf("[detect] unsupported locale %q, falling back to %q", key, fallbackLocale)
	return locales[fallbackLocale]
}

// ScoreAddress scores how address-like a candidate span is under the given
// locale. Signals are additive and order-independent:
//
//	house-number-like token  +2
//	street classifier word   +3
//	postal code pattern      +3
//	unit marker              +1
//	capitalized place name   +1
//
// The accept threshold applied by the detector is 4, so a bare house number
// never passes on its own.
func ScoreAddress(candidate, localeKey string) int {
	lc := localeFor(localeKey)
	score := 0

	if houseNumberRe.MatchString(candidate) {
		score += 2
	}
	if lc.classifierRe.MatchString(candidate) {
		score += 3
	}
	for _, re := range lc.postalCodes {
		if re.MatchString(candidate) {
			score += 3
			break
		}
	}
	if lc.unitRe.MatchString(candidate) {
		score++
	}
	if placeNameRe.MatchString(candidate) {
		score++
	}

	return score
}
