package dialogue

import (
	"fmt"
	"strings"

	"github.com/kaidodd21-ctrl/kai-assistant/internal/session"
)

// OffTopicCategory classifies a message that failed to supply the slot
// currently being collected.
type OffTopicCategory string

const (
	OffTopicSilence       OffTopicCategory = "silence"
	OffTopicFun           OffTopicCategory = "fun"
	OffTopicClarification OffTopicCategory = "clarification"
	OffTopicIrrelevant    OffTopicCategory = "irrelevant"
)

var fillerTokens = map[string]struct{}{
	"ok": {}, "okay": {}, "k": {}, "hmm": {}, "hm": {}, "uh": {}, "um": {},
	"idk": {}, "dunno": {}, "...": {}, "erm": {}, "eh": {},
}

var funMarkers = []string{"joke", "haha", "lol", "lmao", "😂", "funny"}

var clarificationMarkers = []string{"why", "what for", "need that", "need my", "privacy", "security", "personal", "data"}

// ClassifyOffTopic buckets an unhelpful message so the deflection can speak
// to what the user actually said before re-asking.
func ClassifyOffTopic(message string) OffTopicCategory {
	m := strings.ToLower(strings.TrimSpace(message))
	if m == "" {
		return OffTopicSilence
	}
	if _, filler := fillerTokens[m]; filler {
		return OffTopicSilence
	}
	for _, marker := range funMarkers {
		if strings.Contains(m, marker) {
			return OffTopicFun
		}
	}
	for _, marker := range clarificationMarkers {
		if strings.Contains(m, marker) {
			return OffTopicClarification
		}
	}
	return OffTopicIrrelevant
}

// Deflection renders the category's reply, always ending with a re-request
// for the pending slot. Irrelevant input deliberately has no deflection and
// falls through to the plain re-ask instead: deflected turns never touch the
// retry counter, so the plain re-ask is the only path on which repeated
// misses can reach the pause ceiling.
func Deflection(cat OffTopicCategory, slot session.Slot) (string, bool) {
	label := session.Label(slot)
	switch cat {
	case OffTopicSilence:
		return fmt.Sprintf("No rush at all. Whenever you're ready, I just need your %s to carry on.", label), true
	case OffTopicFun:
		return fmt.Sprintf("Ha — I'll save the jokes for after we book you in. Could you tell me the %s?", label), true
	case OffTopicClarification:
		return fmt.Sprintf("Fair question! I only use your %s to confirm this booking, nothing else. Could you share it?", label), true
	}
	return "", false
}
