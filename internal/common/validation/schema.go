// Package validation checks job variables against the input schemas of the
// activity registry.
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	apperrors "franchise-inventory/internal/common/errors"
	"franchise-inventory/pkg/registry"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator holds one compiled schema per task type.
type Validator struct {
	schemas map[string]*gojsonschema.Schema
}

// NewValidator compiles every non-empty input schema of reg.
func NewValidator(reg *registry.ActivityRegistry) (*Validator, error) {
	v := &Validator{schemas: make(map[string]*gojsonschema.Schema)}
	if reg == nil {
		return v, nil
	}
	for _, a := range reg.Activities {
		if len(a.InputSchema) == 0 {
			continue
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(a.InputSchema))
		if err != nil {
			return nil, fmt.Errorf("compile input schema of %s: %w", a.TaskType, err)
		}
		v.schemas[a.TaskType] = schema
	}
	return v, nil
}

// Check returns every schema violation of vars. Unknown task types pass.
func (v *Validator) Check(taskType string, vars map[string]interface{}) ([]ValidationError, error) {
	schema, ok := v.schemas[taskType]
	if !ok {
		return nil, nil
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(vars))
	if err != nil {
		return nil, fmt.Errorf("validate %s input: %w", taskType, err)
	}
	if result.Valid() {
		return nil, nil
	}

	errs := make([]ValidationError, len(result.Errors()))
	for i, desc := range result.Errors() {
		errs[i] = ValidationError{Field: desc.Field(), Message: desc.Description()}
	}
	return errs, nil
}

// Validate is Check folded into a single INVALID_INPUT error.
func (v *Validator) Validate(taskType string, vars map[string]interface{}) error {
	errs, err := v.Check(taskType, vars)
	if err != nil {
		return apperrors.NewInvalidInputError(err.Error())
	}
	if len(errs) == 0 {
		return nil
	}

	messages := make([]string, len(errs))
	for i, e := range errs {
		messages[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	stdErr := apperrors.NewInvalidInputError("job variables do not match the input schema")
	stdErr.Details = strings.Join(messages, "; ")
	return stdErr
}
