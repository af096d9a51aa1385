// pkg/registry/registry.go
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"itinerary-workers/internal/common/validation"
)

//go:embed activities.json
var embedded []byte

var (
	defaultOnce     sync.Once
	defaultRegistry *ActivityRegistry
)

// Default returns the registry compiled into the binary.
func Default() *ActivityRegistry {
	defaultOnce.Do(func() {
		reg, err := Parse(embedded)
		if err != nil {
			panic(fmt.Sprintf("registry: embedded activities are invalid: %v", err))
		}
		defaultRegistry = reg
	})
	return defaultRegistry
}

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and checks a registry document.
func Parse(data []byte) (*ActivityRegistry, error) {
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, err
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Validate enforces activity naming, parseable timeouts and unique task types.
func (r *ActivityRegistry) Validate() error {
	seen := make(map[string]bool, len(r.Activities))
	for _, a := range r.Activities {
		if err := validation.ValidateActivityNaming(a.ID); err != nil {
			return fmt.Errorf("activity %q: %w", a.ID, err)
		}
		if a.TaskType == "" {
			return fmt.Errorf("activity %q has no task type", a.ID)
		}
		if _, err := a.JobTimeout(); err != nil {
			return fmt.Errorf("activity %q: invalid timeout %q", a.ID, a.Timeout)
		}
		if seen[a.TaskType] {
			return fmt.Errorf("duplicate task type %q", a.TaskType)
		}
		seen[a.TaskType] = true
	}
	return nil
}

// Find returns the activity registered for a task type.
func (r *ActivityRegistry) Find(taskType string) (Activity, bool) {
	for _, a := range r.Activities {
		if a.TaskType == taskType {
			return a, true
		}
	}
	return Activity{}, false
}

// ValidateInput checks job variables against the task type's input schema.
func (r *ActivityRegistry) ValidateInput(taskType string, input interface{}) (*validation.ValidationResult, error) {
	a, ok := r.Find(taskType)
	if !ok {
		return nil, fmt.Errorf("unknown task type %q", taskType)
	}
	if len(a.InputSchema) == 0 {
		return &validation.ValidationResult{Valid: true}, nil
	}
	return validation.ValidateInput(input, a.InputSchema)
}
