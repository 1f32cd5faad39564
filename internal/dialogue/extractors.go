package dialogue

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/kaidodd21-ctrl/kai-assistant/internal/business"
)

// Extractors are pure text-to-value functions. They read the service catalog
// and a clock reference but never touch session state; the controller decides
// what to do with their results.

// ---------- name extraction ----------

// explicitNamePatterns can only introduce a name.
var explicitNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)my name is\s+([A-Za-z]+)`),
	regexp.MustCompile(`(?i)\bcall me\s+([A-Za-z]+)`),
}

// casualNamePatterns also introduce plenty of non-name clauses ("I'm looking
// for...", "it's about..."), so outside the name question they only count
// when the captured token is capitalized in the raw message.
var casualNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bi'?m\s+([A-Za-z]+)`),
	regexp.MustCompile(`(?i)\bi am\s+([A-Za-z]+)`),
	regexp.MustCompile(`(?i)\bit'?s\s+([A-Za-z]+)`),
	regexp.MustCompile(`(?i)\bthis is\s+([A-Za-z]+)`),
	regexp.MustCompile(`(?i)^([A-Za-z]+)\s+here\b`),
}

var nameTextNormalizer = strings.NewReplacer(
	"’", "'",
	"‘", "'",
)

// reservedNameWords are tokens that look like a captured name but never are:
// calendar words, commands, and the verbs that follow "I'm ...".
var reservedNameWords = map[string]struct{}{
	"today": {}, "tomorrow": {}, "yes": {}, "no": {}, "ok": {}, "okay": {},
	"monday": {}, "tuesday": {}, "wednesday": {}, "thursday": {},
	"friday": {}, "saturday": {}, "sunday": {},
	"book": {}, "booking": {}, "cancel": {}, "pay": {},
	"looking": {}, "wondering": {}, "hoping": {}, "trying": {}, "thinking": {},
	"asking": {}, "going": {}, "getting": {}, "interested": {},
	"sure": {}, "sorry": {}, "afraid": {}, "just": {}, "not": {}, "here": {},
}

// ExtractName captures a person's name from phrase patterns ("my name is X",
// "I'm X", ...). nameAsked is true only while the name slot is the one being
// asked for; it unlocks the bare single-token answer and lowercase captures
// from the casual patterns. Candidates that equal a catalog service name are
// rejected so a service choice is never misread as a name.
func ExtractName(text string, biz *business.Config, nameAsked bool) string {
	text = nameTextNormalizer.Replace(strings.TrimSpace(text))

	for _, re := range explicitNamePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if name := acceptName(m[1], biz); name != "" {
				return name
			}
		}
	}

	for _, re := range casualNamePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if !nameAsked && !startsUpper(m[1]) {
				continue
			}
			if name := acceptName(m[1], biz); name != "" {
				return name
			}
		}
	}

	if nameAsked && isSingleAlphaToken(text) {
		return acceptName(text, biz)
	}
	return ""
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

func acceptName(candidate string, biz *business.Config) string {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return ""
	}
	if _, reserved := reservedNameWords[strings.ToLower(candidate)]; reserved {
		return ""
	}
	if biz != nil && biz.IsServiceName(candidate) {
		return ""
	}
	return titleCase(candidate)
}

func isSingleAlphaToken(text string) bool {
	if text == "" || strings.ContainsAny(text, " \t") {
		return false
	}
	for _, r := range text {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func titleCase(word string) string {
	if word == "" {
		return ""
	}
	lower := strings.ToLower(word)
	return strings.ToUpper(lower[:1]) + lower[1:]
}

// CanonicalizeName snaps a captured name to the closest known spelling when
// the similarity is at least 80%. Below the threshold the original is kept
// verbatim: the list is cosmetic and must never reject a new customer.
func CanonicalizeName(name string, known []string) string {
	if name == "" || len(known) == 0 {
		return name
	}
	best := ""
	bestScore := 0.0
	for _, k := range known {
		if score := similarity(strings.ToLower(name), strings.ToLower(k)); score > bestScore {
			best, bestScore = k, score
		}
	}
	if bestScore >= 0.8 {
		return titleCase(best)
	}
	return name
}

// similarity is 1 - normalized Levenshtein distance.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := len(a), len(b)
	if la == 0 || lb == 0 {
		return 0
	}
	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	dist := prev[lb]
	longest := la
	if lb > longest {
		longest = lb
	}
	return 1 - float64(dist)/float64(longest)
}

// ---------- contact extraction ----------

// ExtractContact accepts an email-shaped string (an "@" with a "." somewhere
// after it) or anything carrying at least 7 digits, returned verbatim.
// Anything else is absent.
func ExtractContact(text string) string {
	t := strings.TrimSpace(text)
	if t == "" {
		return ""
	}
	if at := strings.Index(t, "@"); at > 0 && strings.Contains(t[at:], ".") {
		return t
	}
	digits := 0
	for _, r := range t {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits >= 7 {
		return t
	}
	return ""
}
