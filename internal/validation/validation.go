// Package validation enforces the structural contract of persisted documents.
// The rules live in the validate tags of the model documents; this package runs them
// and reports every violation by its stored field path.
// It never touches a store, so documents can be checked before any write is attempted.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mcoot/wallwars-go/internal/model"
)

// ErrInvalidDocument is matched by every *Error
var ErrInvalidDocument = errors.New("invalid document")

// tagTotals is reported by the player struct-level rule
const tagTotals = "totals"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their stored name rather than the Go field name
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(playerTotals, model.Player{})
	return v
}

func playerTotals(sl validator.StructLevel) {
	p := sl.Current().Interface().(model.Player)
	if p.WinCount+p.DrawCount > p.GameCount {
		sl.ReportError(p.WinCount+p.DrawCount, "winCount", "WinCount", tagTotals, fmt.Sprint(p.GameCount))
	}
}

// FieldError describes one violated rule
type FieldError struct {
	Field   string
	Message string
}

func (f FieldError) String() string {
	return f.Field + ": " + f.Message
}

// Result collects every violation found in a document
type Result struct {
	Errors []FieldError
}

// Valid reports whether no rule was violated
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// Err returns nil for a valid document and an *Error otherwise
func (r Result) Err() error {
	if r.Valid() {
		return nil
	}
	return &Error{Errors: slices.Clone(r.Errors)}
}

// Error is the structural validation failure surfaced to callers
type Error struct {
	Errors []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Errors))
	for i, f := range e.Errors {
		parts[i] = f.String()
	}
	return "invalid document: " + strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrInvalidDocument) hold
func (e *Error) Is(target error) bool {
	return target == ErrInvalidDocument
}

// ValidateGame checks a finished-game document before it is written
func ValidateGame(doc *model.GameDocument) Result {
	if doc == nil {
		return missing()
	}
	return check(doc)
}

// ValidatePlayer checks a player record before it is written
func ValidatePlayer(p *model.Player) Result {
	if p == nil {
		return missing()
	}
	return check(p)
}

func missing() Result {
	return Result{Errors: []FieldError{{Field: "document", Message: "is missing"}}}
}

func check(doc any) Result {
	var r Result
	err := validate.Struct(doc)
	if err == nil {
		return r
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		r.Errors = append(r.Errors, FieldError{Field: "document", Message: err.Error()})
		return r
	}
	for _, fe := range verrs {
		r.Errors = append(r.Errors, FieldError{Field: fieldPath(fe.Namespace()), Message: message(fe)})
	}
	return r
}

// fieldPath turns "GameDocument.boardSettings.startPos[1]" into "boardSettings.startPos.1"
func fieldPath(ns string) string {
	_, path, ok := strings.Cut(ns, ".")
	if !ok {
		path = ns
	}
	return strings.NewReplacer("[", ".", "]", "").Replace(path)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "len":
		return fmt.Sprintf("should have %s entries, got %d", fe.Param(), length(fe.Value()))
	case "min":
		return fmt.Sprintf("should have at least %s entries, got %d", fe.Param(), length(fe.Value()))
	case "max":
		return fmt.Sprintf("should have at most %s entries, got %d", fe.Param(), length(fe.Value()))
	case "gte":
		return fmt.Sprintf("must be at least %s, got %v", fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%q should be one of: %s", fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gtefield":
		return fmt.Sprintf("%v is below %s", fe.Value(), lowerFirst(fe.Param()))
	case tagTotals:
		return fmt.Sprintf("wins plus draws (%v) exceed games (%s)", fe.Value(), fe.Param())
	default:
		return fmt.Sprintf("failed %q", fe.Tag())
	}
}

func length(v any) int {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.String:
		return rv.Len()
	default:
		return 0
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
