package analyze

import (
	"fmt"
	"strings"

	"github.com/queryforce/soqlkit/pkg/parse"
	"github.com/queryforce/soqlkit/pkg/token"
)

// FunctionSignature describes the expected arguments for a built-in function.
type FunctionSignature struct {
	Name    string
	MinArgs int
	MaxArgs int
}

// builtinFunctions maps lowercase function names to their signatures.
// SOQL has a fixed function set with fixed arities; COUNT is the only
// one with a range (COUNT() and COUNT(field) are both valid).
var builtinFunctions = map[string]*FunctionSignature{
	"count":            {Name: "count", MinArgs: 0, MaxArgs: 1},
	"count_distinct":   {Name: "count_distinct", MinArgs: 1, MaxArgs: 1},
	"sum":              {Name: "sum", MinArgs: 1, MaxArgs: 1},
	"avg":              {Name: "avg", MinArgs: 1, MaxArgs: 1},
	"min":              {Name: "min", MinArgs: 1, MaxArgs: 1},
	"max":              {Name: "max", MinArgs: 1, MaxArgs: 1},
	"grouping":         {Name: "grouping", MinArgs: 1, MaxArgs: 1},
	"calendar_month":   {Name: "calendar_month", MinArgs: 1, MaxArgs: 1},
	"calendar_quarter": {Name: "calendar_quarter", MinArgs: 1, MaxArgs: 1},
	"calendar_year":    {Name: "calendar_year", MinArgs: 1, MaxArgs: 1},
	"day_in_month":     {Name: "day_in_month", MinArgs: 1, MaxArgs: 1},
	"day_in_week":      {Name: "day_in_week", MinArgs: 1, MaxArgs: 1},
	"day_in_year":      {Name: "day_in_year", MinArgs: 1, MaxArgs: 1},
	"day_only":         {Name: "day_only", MinArgs: 1, MaxArgs: 1},
	"fiscal_month":     {Name: "fiscal_month", MinArgs: 1, MaxArgs: 1},
	"fiscal_quarter":   {Name: "fiscal_quarter", MinArgs: 1, MaxArgs: 1},
	"fiscal_year":      {Name: "fiscal_year", MinArgs: 1, MaxArgs: 1},
	"hour_in_day":      {Name: "hour_in_day", MinArgs: 1, MaxArgs: 1},
	"week_in_month":    {Name: "week_in_month", MinArgs: 1, MaxArgs: 1},
	"week_in_year":     {Name: "week_in_year", MinArgs: 1, MaxArgs: 1},
	"format":           {Name: "format", MinArgs: 1, MaxArgs: 1},
	"tolabel":          {Name: "tolabel", MinArgs: 1, MaxArgs: 1},
	"convertcurrency":  {Name: "convertcurrency", MinArgs: 1, MaxArgs: 1},
	"converttimezone":  {Name: "converttimezone", MinArgs: 1, MaxArgs: 1},
	"distance":         {Name: "distance", MinArgs: 3, MaxArgs: 3},
	"geolocation":      {Name: "geolocation", MinArgs: 2, MaxArgs: 2},
	"fields":           {Name: "fields", MinArgs: 1, MaxArgs: 1},
}

// fieldsGroups are the valid arguments to FIELDS().
var fieldsGroups = map[string]bool{
	"ALL":      true,
	"STANDARD": true,
	"CUSTOM":   true,
}

// ValidateFunctionCalls validates function calls against known signatures.
// Returns errors for unknown functions and invalid argument counts.
func ValidateFunctionCalls(calls []*FunctionCall) []*SchemaError {
	var errors []*SchemaError

	for _, call := range calls {
		if err := validateFunctionCall(call); err != nil {
			errors = append(errors, err)
		}
	}

	return errors
}

// validateFunctionCall validates a single function call. Unlike SQL
// dialects with user defined functions, every SOQL function is built in,
// so an unknown name is always an error.
func validateFunctionCall(call *FunctionCall) *SchemaError {
	sig, ok := builtinFunctions[call.Name]
	if !ok {
		e := &SchemaError{
			Type:     ErrUnknownFunction,
			Message:  fmt.Sprintf("Unknown function '%s'", call.Name),
			Object:   call.Name,
			Position: call.Position,
		}
		if match := parse.ClosestMatch(call.Name, token.Functions(), 2); match != "" {
			e.Suggestion = fmt.Sprintf("Did you mean '%s'?", match)
		}
		return e
	}

	switch {
	case sig.MinArgs == sig.MaxArgs:
		if call.ArgCount != sig.MinArgs {
			return &SchemaError{
				Type:     ErrFunctionArgCount,
				Message:  fmt.Sprintf("%s() takes %d argument(s), got %d", call.Name, sig.MinArgs, call.ArgCount),
				Object:   call.Name,
				Position: call.Position,
			}
		}
	default:
		if call.ArgCount < sig.MinArgs || call.ArgCount > sig.MaxArgs {
			return &SchemaError{
				Type:     ErrFunctionArgCount,
				Message:  fmt.Sprintf("%s() takes %d-%d argument(s), got %d", call.Name, sig.MinArgs, sig.MaxArgs, call.ArgCount),
				Object:   call.Name,
				Position: call.Position,
			}
		}
	}

	if call.Name == "fields" && call.ArgCount == 1 {
		group := strings.ToUpper(strings.TrimSpace(call.Args))
		if !fieldsGroups[group] {
			return &SchemaError{
				Type:     ErrFunctionArgCount,
				Message:  fmt.Sprintf("FIELDS() takes ALL, STANDARD, or CUSTOM, got '%s'", strings.TrimSpace(call.Args)),
				Object:   call.Name,
				Position: call.Position,
			}
		}
	}

	return nil
}

// GetFunctionSignature returns the signature for a built-in function, or
// nil if unknown.
func GetFunctionSignature(name string) *FunctionSignature {
	return builtinFunctions[strings.ToLower(name)]
}
