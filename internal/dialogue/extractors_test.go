package dialogue

import (
	"testing"

	"github.com/kaidodd21-ctrl/kai-assistant/internal/business"
)

func TestExtractName(t *testing.T) {
	biz := business.DefaultConfig()

	tests := []struct {
		name      string
		input     string
		nameAsked bool
		want      string
	}{
		{"phrase my name is", "my name is kai", false, "Kai"},
		{"phrase i'm capitalized", "I'm Sam", false, "Sam"},
		{"phrase i am asked", "i am dave", true, "Dave"},
		{"phrase call me", "call me JO", false, "Jo"},
		{"curly apostrophe", "it’s Maria", false, "Maria"},
		{"curly apostrophe asked", "it’s maria", true, "Maria"},
		{"trailing here", "Alex here", false, "Alex"},
		{"reserved word", "i am tomorrow", true, ""},
		{"service name rejected", "i'm haircut", true, ""},
		// Casual phrases mid-booking must not swallow ordinary clauses.
		{"gerund not a name", "I'm looking for a haircut", false, ""},
		{"gerund not a name 2", "I'm wondering about massage prices", false, ""},
		{"gerund even when asked", "i'm wondering if you have slots", true, ""},
		{"lowercase casual opportunistic", "i am dave", false, ""},
		{"bare token allowed", "Sam", true, "Sam"},
		{"bare token not allowed", "Sam", false, ""},
		{"bare reserved", "tomorrow", true, ""},
		{"bare multi word", "sam smith", true, ""},
		{"bare with digits", "s4m", true, ""},
		{"nothing", "book me in please", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractName(tt.input, biz, tt.nameAsked); got != tt.want {
				t.Errorf("ExtractName(%q, nameAsked=%v) = %q, want %q", tt.input, tt.nameAsked, got, tt.want)
			}
		})
	}
}

func TestCanonicalizeName(t *testing.T) {
	known := []string{"Jonathan", "Gabriella"}

	tests := []struct {
		input string
		want  string
	}{
		{"jonathon", "Jonathan"}, // one substitution, well above threshold
		{"Jonathan", "Jonathan"},
		{"gabriela", "Gabriella"},
		{"Zoe", "Zoe"}, // no close match, kept verbatim
		{"", ""},
	}
	for _, tt := range tests {
		if got := CanonicalizeName(tt.input, known); got != tt.want {
			t.Errorf("CanonicalizeName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}

	if got := CanonicalizeName("Kai", nil); got != "Kai" {
		t.Errorf("CanonicalizeName with no known names = %q, want Kai", got)
	}
}

func TestExtractContact(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"a@b.c", "a@b.c"},
		{"kai.dodd@example.co.uk", "kai.dodd@example.co.uk"},
		{"user@localhost", ""}, // no dot after the @
		{"@missing.local", ""}, // @ must not lead
		{"07123456789", "07123456789"},
		{"0712345", "0712345"},
		{"071234", ""}, // six digits is not a phone number
		{"call me on 07123 456789", "call me on 07123 456789"},
		{"abc", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ExtractContact(tt.input); got != tt.want {
			t.Errorf("ExtractContact(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
