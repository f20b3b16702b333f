package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/JonMunkholm/tabclean/internal/core"
	"github.com/go-playground/validator/v10"
)

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 1 << 20

type columnUpdate struct {
	Name    string `json:"name" validate:"required"`
	Include *bool  `json:"include" validate:"required"`
	Rename  string `json:"rename"`
}

type updateColumnsRequest struct {
	Updates []columnUpdate `json:"updates" validate:"required,dive"`
}

func (req updateColumnsRequest) edits() []core.ColumnEdit {
	edits := make([]core.ColumnEdit, len(req.Updates))
	for i, u := range req.Updates {
		edits[i] = core.ColumnEdit{Name: u.Name, Include: *u.Include, Rename: u.Rename}
	}
	return edits
}

// newColumn's value may be a JSON string, number or null.
type newColumn struct {
	Name  string     `json:"name" validate:"required"`
	Value core.Value `json:"value"`
}

type addColumnsRequest struct {
	Columns []newColumn `json:"columns" validate:"required,min=1,dive"`
}

func (req addColumnsRequest) fills() []core.ColumnFill {
	fills := make([]core.ColumnFill, len(req.Columns))
	for i, c := range req.Columns {
		fills[i] = core.ColumnFill{Name: c.Name, Value: c.Value}
	}
	return fills
}

type showDuplicatesRequest struct {
	Column     string `json:"column" validate:"required"`
	SortColumn string `json:"sort_column"`
	SortOrder  string `json:"sort_order" validate:"omitempty,oneof=asc desc"`
}

func (req showDuplicatesRequest) query() core.DuplicateQuery {
	return core.DuplicateQuery{
		Column:     req.Column,
		SortColumn: req.SortColumn,
		Descending: req.SortOrder == "desc",
	}
}

// processDuplicatesRequest leaves action and row checks to core so the
// client sees ACT001 and ROW001 rather than a generic validation error.
type processDuplicatesRequest struct {
	Action string `json:"action"`
	Rows   []int  `json:"rows"`
	Column string `json:"column" validate:"required"`
}

type selectPhoneRequest struct {
	PhoneColumn string `json:"phone_column" validate:"required"`
}

type processPhonesRequest struct {
	Column string `json:"column" validate:"required"`
}

// ValidationError is one rejected request field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// ValidationErrors is every rejected field of a request.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &requestValidator{validate: v}
}

// Validate checks req and returns ValidationErrors on failure.
func (v *requestValidator) Validate(req any) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var out ValidationErrors

	for _, err := range errs {
		field := strings.TrimPrefix(err.Namespace(), rootNamespace(err.Namespace()))
		if field == "" {
			field = err.Field()
		}

		var message string
		switch err.Tag() {
		case "required":
			message = "is required"
		case "min":
			message = fmt.Sprintf("must have at least %s item(s)", err.Param())
		case "oneof":
			message = fmt.Sprintf("must be one of: %s", err.Param())
		default:
			message = fmt.Sprintf("failed %s validation", err.Tag())
		}

		out = append(out, ValidationError{Field: field, Message: message})
	}

	return out
}

// rootNamespace returns the leading "Type." of a validator namespace.
func rootNamespace(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[:i+1]
	}
	return ""
}

// decodeJSON reads a bounded JSON body into dst and validates it.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return s.validate.Validate(dst)
}
