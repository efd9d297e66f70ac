// Package validation checks request bodies against JSON schemas before they are decoded.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"finwise-backend/models"

	"github.com/shopspring/decimal"
	"github.com/xeipuuv/gojsonschema"
)

var (
	ErrMalformedBody  = errors.New("request body is not valid JSON")
	ErrInvalidProfile = errors.New("invalid user finance profile")
)

// FieldError describes one schema violation
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error carries every violation found in a document
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		if f.Field == "" {
			parts[i] = f.Message
		} else {
			parts[i] = f.Field + ": " + f.Message
		}
	}
	return strings.Join(parts, "; ")
}

func (e *Error) Unwrap() error { return ErrInvalidProfile }

// Amount bounds match the NUMERIC(14,2) columns in user_profiles
const profileSchemaJSON = `{
	"type": "object",
	"required": ["income", "expenses", "goals", "risk_tolerance"],
	"properties": {
		"income": {"type": "number", "minimum": 0, "maximum": 999999999999.99},
		"expenses": {"type": "number", "minimum": 0, "maximum": 999999999999.99},
		"goals": {"type": "string"},
		"risk_tolerance": {"type": "string", "enum": ["Conservative", "Moderate", "Aggressive"]}
	}
}`

// rootField is how gojsonschema names the document itself
const rootField = "(root)"

var profileSchema = mustSchema(profileSchemaJSON)

func mustSchema(s string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic(fmt.Sprintf("invalid built-in schema: %v", err))
	}
	return schema
}

// DecodeProfile validates body against the profile schema and decodes it
func DecodeProfile(body []byte) (*models.UserFinanceProfile, error) {
	if !json.Valid(body) {
		return nil, ErrMalformedBody
	}

	result, err := profileSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}

	if !result.Valid() {
		verr := &Error{}
		for _, desc := range result.Errors() {
			field := desc.Field()
			if field == rootField {
				field = ""
			}
			verr.Fields = append(verr.Fields, FieldError{Field: field, Message: desc.Description()})
		}
		return nil, verr
	}

	// id and created_at are assigned by the store, so they are not read from the client
	var req struct {
		Income        decimal.Decimal      `json:"income"`
		Expenses      decimal.Decimal      `json:"expenses"`
		Goals         string               `json:"goals"`
		RiskTolerance models.RiskTolerance `json:"risk_tolerance"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}

	return &models.UserFinanceProfile{
		Income:        req.Income,
		Expenses:      req.Expenses,
		Goals:         req.Goals,
		RiskTolerance: req.RiskTolerance,
	}, nil
}
