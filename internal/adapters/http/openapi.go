package httpadapter

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var openapiSpec []byte

const processRequestSchema = "ProcessDocumentRequest"

type requestValidator struct {
	doc *openapi3.T
}

func newRequestValidator(ctx context.Context) (*requestValidator, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openapiSpec)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	return &requestValidator{doc: doc}, nil
}

// validateJSON checks raw against a named component schema. Required-field
// checks are left to the domain so the caller gets one consistent message.
func (v *requestValidator) validateJSON(schemaName string, raw []byte) error {
	ref, ok := v.doc.Components.Schemas[schemaName]
	if !ok || ref.Value == nil {
		return fmt.Errorf("schema %q is not defined", schemaName)
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return errors.New("Request body must be valid JSON")
	}
	if err := ref.Value.VisitJSON(value, openapi3.MultiErrors()); err != nil {
		return schemaError(err)
	}
	return nil
}

func schemaError(err error) error {
	var multi openapi3.MultiError
	if errors.As(err, &multi) && len(multi) > 0 {
		err = multi[0]
	}
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		field := schemaErr.JSONPointer()
		if len(field) > 0 {
			return fmt.Errorf("Invalid field %s: %s", field[0], schemaErr.Reason)
		}
		return fmt.Errorf("Invalid request body: %s", schemaErr.Reason)
	}
	return fmt.Errorf("Invalid request body: %w", err)
}
