package bootstrap

import (
	"time"

	"github.com/kbukum/speechprep/logger"
)

// Entry is one key of the startup summary.
type Entry struct {
	Section string
	Key     string
	Value   any
}

// Summary collects what a command resolved during startup so it can be
// logged once before the task runs.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	entries         []Entry
}

// NewSummary creates an empty summary.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// Track adds a key to a section. Keys are logged in insertion order.
func (s *Summary) Track(section, key string, value any) {
	s.entries = append(s.entries, Entry{Section: section, Key: key, Value: value})
}

// Entries returns the tracked entries.
func (s *Summary) Entries() []Entry { return s.entries }

// Sections groups the tracked entries by section, preserving first-seen order.
func (s *Summary) Sections() ([]string, map[string]map[string]interface{}) {
	var order []string
	grouped := make(map[string]map[string]interface{})
	for _, e := range s.entries {
		fields, ok := grouped[e.Section]
		if !ok {
			fields = make(map[string]interface{})
			grouped[e.Section] = fields
			order = append(order, e.Section)
		}
		fields[e.Key] = e.Value
	}
	return order, grouped
}

// DisplaySummary logs one line for the service and one per section.
func (s *Summary) DisplaySummary(log *logger.Logger) {
	log.Info("startup complete", logger.Fields(
		"name", s.serviceName,
		"version", s.version,
		logger.FieldDuration, s.startupDuration.Milliseconds(),
	))
	order, grouped := s.Sections()
	for _, section := range order {
		log.Info(section, grouped[section])
	}
}
