// Package reconcile decides whether the name read off an ID belongs to the
// person who registered.
package reconcile

import (
	"fmt"
	"strings"
	"unicode"
)

// DefaultThreshold is the similarity a token pair must exceed to align.
const DefaultThreshold = 0.8

// Reconciler aligns registered name parts against OCR tokens in order.
type Reconciler struct {
	threshold float64
}

type Option func(*Reconciler)

// WithThreshold overrides the token similarity threshold.
func WithThreshold(t float64) Option {
	return func(r *Reconciler) {
		if t > 0 && t <= 1 {
			r.threshold = t
		}
	}
}

func New(opts ...Option) *Reconciler {
	r := &Reconciler{threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Matches reports whether every registered name token appears, in order, in
// the OCR name. Extra OCR tokens such as middle names and suffixes are
// skipped. An empty OCR name never matches.
func (r *Reconciler) Matches(ocrName, firstName, lastName string) bool {
	extracted := Tokenize(ocrName)
	if len(extracted) == 0 {
		return false
	}
	registered := Tokenize(firstName + " " + lastName)
	if len(registered) == 0 {
		return false
	}

	next := 0
	matched := 0
	for _, want := range registered {
		for i := next; i < len(extracted); i++ {
			if r.tokenMatches(extracted[i], want) {
				matched++
				next = i + 1
				break
			}
		}
	}
	return matched == len(registered)
}

func (r *Reconciler) tokenMatches(got, want string) bool {
	if strings.Contains(got, want) {
		return true
	}
	return Similarity(got, want) > r.threshold
}

// Explain renders the user-facing mismatch message.
func Explain(ocrName, firstName, lastName string) string {
	registered := strings.TrimSpace(firstName + " " + lastName)
	if strings.TrimSpace(ocrName) == "" {
		return fmt.Sprintf("We could not read a name on your ID. Please retake the photo so the name is clearly visible (registered name: %q).", registered)
	}
	return fmt.Sprintf("Name on ID (%q) does not match registered name (%q). Make sure the ID belongs to you and the photo is sharp.", ocrName, registered)
}

// Normalize lowercases s, drops everything except letters and spaces, and
// collapses runs of whitespace.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokenize normalizes s and splits it into words.
func Tokenize(s string) []string {
	return strings.Fields(Normalize(s))
}

// Similarity returns 1 - editDistance/maxLen. When one string contains the
// other the ratio of their lengths is returned instead.
func Similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)
	if la == 0 && lb == 0 {
		return 1
	}
	if la == 0 || lb == 0 {
		return 0
	}
	longest, shortest := max(la, lb), min(la, lb)
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return float64(shortest) / float64(longest)
	}
	return 1 - float64(levenshtein(ra, rb))/float64(longest)
}

// levenshtein uses a single rolling row.
func levenshtein(a, b []rune) int {
	row := make([]int, len(b)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(a); i++ {
		prev := row[0]
		row[0] = i
		for j := 1; j <= len(b); j++ {
			cur := row[j]
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			row[j] = min(row[j]+1, row[j-1]+1, prev+cost)
			prev = cur
		}
	}
	return row[len(b)]
}
