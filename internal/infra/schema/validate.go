// Package schema validates tool parameter schemas and call arguments.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"agentctl/internal/domain"
)

// CheckParameters rejects a tool parameter definition that is not a
// resolvable JSON Schema. An empty definition is allowed: the server
// treats it as a tool without arguments.
func CheckParameters(raw json.RawMessage) error {
	const op = "schema.CheckParameters"

	if len(raw) == 0 {
		return nil
	}

	if _, err := resolve(raw); err != nil {
		return &domain.Error{
			Code:    domain.CodeInvalidArgument,
			Op:      op,
			Message: fmt.Sprintf("invalid tool parameter schema: %v", err),
			Cause:   err,
		}
	}
	return nil
}

// CheckArguments validates execution input against a tool's parameter
// schema before the request leaves the client.
func CheckArguments(parameters json.RawMessage, arguments map[string]any) error {
	const op = "schema.CheckArguments"

	if len(parameters) == 0 {
		return nil
	}

	resolved, err := resolve(parameters)
	if err != nil {
		return &domain.Error{
			Code:    domain.CodeInvalidArgument,
			Op:      op,
			Message: fmt.Sprintf("invalid tool parameter schema: %v", err),
			Cause:   err,
		}
	}

	payload := any(arguments)
	if arguments == nil {
		payload = map[string]any{}
	}
	if err := resolved.Validate(payload); err != nil {
		return &domain.Error{
			Code:    domain.CodeInvalidArgument,
			Op:      op,
			Message: fmt.Sprintf("arguments do not match tool schema: %v", err),
			Cause:   err,
		}
	}
	return nil
}

func resolve(raw json.RawMessage) (*jsonschema.Resolved, error) {
	var s jsonschema.Schema
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return s.Resolve(nil)
}
