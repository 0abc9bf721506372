package registry

import (
	"fmt"
	"slices"
	"time"
)

// ActivityRegistry lists the inventory job types the workers subscribe to,
// with the JSON schema each job's variables must satisfy.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

// Schema is a JSON Schema document kept in its decoded form.
type Schema map[string]interface{}

// Activity binds a Zeebe task type to its contract. ErrorCodes are the
// apperrors codes the worker may raise as BPMN errors.
type Activity struct {
	ID           string   `json:"id"`
	DisplayName  string   `json:"displayName"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	Version      string   `json:"version"`
	TaskType     string   `json:"taskType"`
	InputSchema  Schema   `json:"inputSchema"`
	OutputSchema Schema   `json:"outputSchema,omitempty"`
	ErrorCodes   []string `json:"errorCodes"`
	Timeout      string   `json:"timeout,omitempty"`
	Retries      int      `json:"retries"`
	Tags         []string `json:"tags,omitempty"`
}

// JobTimeout parses Timeout. An empty value yields zero, meaning the worker
// config decides.
func (a Activity) JobTimeout() (time.Duration, error) {
	if a.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(a.Timeout)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("activity %s has invalid timeout %q", a.ID, a.Timeout)
	}
	return d, nil
}

func (a Activity) RaisesError(code string) bool {
	return slices.Contains(a.ErrorCodes, code)
}
