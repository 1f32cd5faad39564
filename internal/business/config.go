// Package business provides the business profile and service catalog the
// assistant answers from: display details, opening hours, and the bookable
// services with their synonyms.
package business

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Service is a single bookable service.
type Service struct {
	Name     string   `json:"name"`
	Price    int      `json:"price"`    // whole pounds
	Duration string   `json:"duration"` // e.g. "30 mins"
	Synonyms []string `json:"synonyms,omitempty"`
}

// Business holds the customer-facing display fields.
type Business struct {
	Name         string `json:"name"`
	HoursText    string `json:"hours_text"`
	ContactPhone string `json:"contact_phone"`
	ContactEmail string `json:"contact_email"`
}

// Config is the full business configuration.
type Config struct {
	Business Business  `json:"business"`
	Services []Service `json:"services"`
	// KnownNames is an optional list of regular customers used to
	// canonicalize near-miss spellings of captured names.
	KnownNames []string `json:"known_names,omitempty"`
	// KnowledgeText is free-form business knowledge passed to the LLM planner.
	KnowledgeText string `json:"knowledge_text,omitempty"`
}

// DefaultConfig returns the built-in demo salon catalog.
func DefaultConfig() *Config {
	return &Config{
		Business: Business{
			Name:         "Kai Demo Salon",
			HoursText:    "Mon–Sat, 9am–6pm",
			ContactPhone: "01234 567890",
			ContactEmail: "hello@example.com",
		},
		Services: []Service{
			{Name: "Haircut", Price: 25, Duration: "30 mins", Synonyms: []string{"cut", "trim", "style"}},
			{Name: "Massage", Price: 40, Duration: "60 mins", Synonyms: []string{"relaxation", "therapy"}},
			{Name: "Nails", Price: 20, Duration: "30 mins", Synonyms: []string{"manicure", "pedicure"}},
		},
	}
}

// Load reads the business configuration from a JSON file. A missing or
// unparseable file is not an error: the built-in defaults are returned so the
// assistant always has a catalog to work from.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultConfig(), nil
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("business: invalid config %s: %w", path, err)
	}
	if cfg.Business.Name == "" || len(cfg.Services) == 0 {
		return DefaultConfig(), fmt.Errorf("business: incomplete config %s", path)
	}
	return &cfg, nil
}

// FindService matches free text against the catalog, checking canonical names
// before synonyms. Matching is case-insensitive substring; the first catalog
// entry that matches wins. Returns "" when nothing matches.
func (c *Config) FindService(text string) string {
	t := strings.ToLower(text)
	for _, s := range c.Services {
		if strings.Contains(t, strings.ToLower(s.Name)) {
			return s.Name
		}
	}
	for _, s := range c.Services {
		for _, syn := range s.Synonyms {
			if syn != "" && strings.Contains(t, strings.ToLower(syn)) {
				return s.Name
			}
		}
	}
	return ""
}

// IsServiceName reports whether the candidate exactly equals a catalog
// service name, ignoring case. Used to keep service words out of the name slot.
func (c *Config) IsServiceName(candidate string) bool {
	for _, s := range c.Services {
		if strings.EqualFold(s.Name, strings.TrimSpace(candidate)) {
			return true
		}
	}
	return false
}

// ServiceNames returns the catalog names in order, for suggestion chips.
func (c *Config) ServiceNames() []string {
	names := make([]string, len(c.Services))
	for i, s := range c.Services {
		names[i] = s.Name
	}
	return names
}

// ServiceList renders the catalog as a customer-facing list.
func (c *Config) ServiceList() string {
	var b strings.Builder
	b.WriteString("Here are the services:\n")
	for _, s := range c.Services {
		fmt.Fprintf(&b, "• %s — £%d (%s)\n", s.Name, s.Price, s.Duration)
	}
	return strings.TrimRight(b.String(), "\n")
}
