package audit

import (
	"fmt"
	"strings"
)

// ActivateEvent records an authentication chain swap. An empty module list
// means the chain was deactivated.
type ActivateEvent struct {
	Modules []string
}

func (e ActivateEvent) MessageID() string {
	return "activate"
}

func (e ActivateEvent) Message() string {
	if len(e.Modules) == 0 {
		return "authentication chain deactivated"
	}
	return fmt.Sprintf("authentication chain activated with modules %s", strings.Join(e.Modules, ", "))
}

func (e ActivateEvent) Severity() Severity {
	return SeverityNotice
}

func (e ActivateEvent) Facility() int {
	return FacilityAuth
}

func (e ActivateEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAction: {
			"operation": "activate",
			"modules":   strings.Join(e.Modules, ","),
			"count":     fmt.Sprintf("%d", len(e.Modules)),
		},
	}
}
