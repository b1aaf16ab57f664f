package ocr

import (
	"regexp"
	"strings"

	"farmgate/internal/verification/models"
)

var (
	fullNameLabels = labelSet("name", "full name", "pangalan", "buong pangalan", "name of holder")
	lastNameLabels = labelSet("last name", "surname", "apelyido")
	givenLabels    = labelSet("given names", "given name", "first name", "mga pangalan")
	middleLabels   = labelSet("middle name", "gitnang apelyido")
	addressLabels  = labelSet("address", "tirahan", "home address", "permanent address")
	idNumberLabels = labelSet("id no", "id number", "license no", "crn", "pcn", "passport no", "precinct no", "prn")

	// Driver's license style header: the value line below is "LAST, FIRST MIDDLE".
	commaNameHeader = regexp.MustCompile(`(?i)last\s*name\s*,\s*first\s*name`)

	idNumberPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{4}-\d{4}-\d{4}-\d{4}\b`), // PhilSys PCN
		regexp.MustCompile(`\b[A-Z]\d{2}-\d{2}-\d{6}\b`),  // LTO license
		regexp.MustCompile(`\b\d{4}-\d{7}-\d\b`),          // UMID CRN
		regexp.MustCompile(`\b[A-Z]{1,2}\d{6,7}[A-Z]?\b`), // passport
	}

	positionalName = regexp.MustCompile(`^[A-ZÑ][A-ZÑ .,'-]+$`)

	headerWords = map[string]bool{
		"republic": true, "republika": true, "philippines": true, "pilipinas": true,
		"identification": true, "card": true, "department": true, "transportation": true,
		"license": true, "licence": true, "office": true, "authority": true, "national": true,
		"pambansang": true, "security": true, "system": true, "voter": true, "postal": true,
		"passport": true, "pasaporte": true, "unified": true, "multi": true, "purpose": true,
		"drivers": true, "driver": true, "land": true, "commission": true, "elections": true,
		"date": true, "birth": true, "sex": true, "nationality": true, "expiration": true,
		"signature": true, "address": true, "philsys": true, "social": true,
	}
)

type labels map[string]bool

func labelSet(names ...string) labels {
	l := make(labels, len(names))
	for _, n := range names {
		l[n] = true
	}
	return l
}

// matches accepts bilingual labels like "Apelyido/Last Name".
func (l labels) matches(label string) bool {
	for _, part := range strings.Split(label, "/") {
		if l[normalizeLabel(part)] {
			return true
		}
	}
	return false
}

func normalizeLabel(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || r == ' ' || r == 'ñ' {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Parse pulls name, ID number and address out of raw OCR text. It never
// fails; fields it cannot find stay nil.
func Parse(raw string) models.ExtractedIDData {
	data := models.ExtractedIDData{RawText: raw}
	lines := splitLines(raw)
	if len(lines) == 0 {
		return data
	}

	if name := extractName(lines); name != "" {
		data.FullName = &name
	}
	if addr := valueFor(lines, addressLabels); addr != "" {
		data.Address = &addr
	}
	if idNo := extractIDNumber(lines, raw); idNo != "" {
		data.IDNumber = &idNo
	}
	return data
}

func extractName(lines []string) string {
	if name := valueFor(lines, fullNameLabels); name != "" && !isLabel(name) {
		// "SURNAME, GIVEN" under a plain name label
		if strings.Contains(name, ",") {
			return reorderCommaName(name)
		}
		return name
	}

	// split-field layouts (PhilSys, UMID)
	last := valueFor(lines, lastNameLabels)
	given := valueFor(lines, givenLabels)
	if last != "" && given != "" {
		middle := valueFor(lines, middleLabels)
		return strings.Join(strings.Fields(given+" "+middle+" "+last), " ")
	}

	for i, line := range lines {
		if commaNameHeader.MatchString(line) && i+1 < len(lines) {
			if name := reorderCommaName(lines[i+1]); name != "" {
				return name
			}
		}
	}

	for _, line := range lines {
		if looksLikeName(line) {
			if strings.Contains(line, ",") {
				return reorderCommaName(line)
			}
			return strings.Join(strings.Fields(line), " ")
		}
	}
	return ""
}

// valueFor finds "Label: value" on one line, or a bare label line followed
// by its value.
func valueFor(lines []string, set labels) string {
	for i, line := range lines {
		if label, value, ok := strings.Cut(line, ":"); ok && set.matches(label) {
			if v := strings.TrimSpace(value); v != "" {
				return v
			}
			if i+1 < len(lines) && !isLabel(lines[i+1]) {
				return lines[i+1]
			}
			continue
		}
		if set.matches(line) && i+1 < len(lines) && !isLabel(lines[i+1]) {
			return lines[i+1]
		}
	}
	return ""
}

func isLabel(line string) bool {
	label, _, _ := strings.Cut(line, ":")
	for _, set := range []labels{fullNameLabels, lastNameLabels, givenLabels, middleLabels, addressLabels, idNumberLabels} {
		if set.matches(label) {
			return true
		}
	}
	return false
}

func reorderCommaName(line string) string {
	last, rest, ok := strings.Cut(line, ",")
	if !ok {
		return strings.Join(strings.Fields(line), " ")
	}
	return strings.Join(strings.Fields(rest+" "+last), " ")
}

func looksLikeName(line string) bool {
	if !positionalName.MatchString(line) {
		return false
	}
	words := strings.Fields(strings.NewReplacer(",", " ", ".", " ", "-", " ").Replace(line))
	if len(words) < 2 || len(words) > 6 {
		return false
	}
	for _, w := range words {
		if headerWords[strings.ToLower(w)] {
			return false
		}
	}
	return true
}

func extractIDNumber(lines []string, raw string) string {
	if v := valueFor(lines, idNumberLabels); v != "" {
		return strings.TrimSpace(v)
	}
	for _, re := range idNumberPatterns {
		if m := re.FindString(raw); m != "" {
			return m
		}
	}
	return ""
}

func splitLines(raw string) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
