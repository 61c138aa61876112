package alert

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Priority is the Falco severity ordinal, ascending. Comparisons always
// use the ordinal, never the string form.
type Priority int

const (
	PriorityDebug Priority = iota
	PriorityInformational
	PriorityNotice
	PriorityWarning
	PriorityError
	PriorityCritical
	PriorityAlert
	PriorityEmergency
)

var priorityNames = map[Priority]string{
	PriorityDebug:         "debug",
	PriorityInformational: "informational",
	PriorityNotice:        "notice",
	PriorityWarning:       "warning",
	PriorityError:         "error",
	PriorityCritical:      "critical",
	PriorityAlert:         "alert",
	PriorityEmergency:     "emergency",
}

var prioritiesByName = func() map[string]Priority {
	m := make(map[string]Priority, len(priorityNames))
	for p, name := range priorityNames {
		m[name] = p
	}
	return m
}()

func (p Priority) String() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return fmt.Sprintf("priority(%d)", int(p))
}

func (p Priority) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Priority) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParsePriority(name)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePriority is case-insensitive. An unrecognized name is an error;
// the ingestion path turns it into a client-error response.
func ParsePriority(name string) (Priority, error) {
	p, ok := prioritiesByName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return PriorityWarning, fmt.Errorf("unknown priority %q", name)
	}
	return p, nil
}

// AtLeast reports whether p is at or above min severity.
func (p Priority) AtLeast(min Priority) bool {
	return p >= min
}
