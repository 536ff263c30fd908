package reminders

import (
	"fmt"
	"time"

	"github.com/google/cel-go/cel"

	"fleettrack/internal/core/apperror"
	"fleettrack/internal/domain/catalogs/vehicle"
	"fleettrack/internal/domain/status"
)

// NoDeadline is the value of days_to_* and km_to_revision facts when the
// underlying date or target is not on record, so proximity rules
// ("days_to_insurance < 15") never fire on unknowns. Rules that care about
// missing documents match on status instead.
const NoDeadline = 1_000_000

// NewEnv builds the CEL environment with the vehicle fact set. Every rule
// compiles against exactly these variables; anything else is a Validation
// error at rule creation.
func NewEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("plate", cel.StringType),
		cel.Variable("make", cel.StringType),
		cel.Variable("model", cel.StringType),
		cel.Variable("year", cel.IntType),
		cel.Variable("status", cel.StringType),
		cel.Variable("current_km", cel.IntType),
		cel.Variable("days_to_insurance", cel.IntType),
		cel.Variable("days_to_tachograph", cel.IntType),
		cel.Variable("days_to_copie_conforma", cel.IntType),
		cel.Variable("days_to_revision", cel.IntType),
		cel.Variable("km_to_revision", cel.IntType),
	)
}

// Compile checks a rule condition against the environment. Syntax errors,
// unknown variables and non-boolean expressions are Validation errors.
func Compile(env *cel.Env, condition string) (cel.Program, error) {
	ast, issues := env.Compile(condition)
	if issues != nil && issues.Err() != nil {
		return nil, apperror.NewValidation("rule condition does not compile").
			WithDetail("field", "condition").
			WithDetail("error", issues.Err().Error())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, apperror.NewValidation("rule condition must be a boolean expression").
			WithDetail("field", "condition").
			WithDetail("type", ast.OutputType().String())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build rule program: %w", err)
	}
	return prg, nil
}

// Activation maps one vehicle onto the rule fact set.
func Activation(v *vehicle.Vehicle, now time.Time) map[string]any {
	year := 0
	if v.Year != nil {
		year = *v.Year
	}

	kmToRevision := int64(NoDeadline)
	if v.RevisionDueKm != nil {
		kmToRevision = v.RevisionDueKm.Sub(v.CurrentKm).Int64()
	}

	return map[string]any{
		"plate":                  v.Plate(),
		"make":                   v.Make,
		"model":                  v.Model,
		"year":                   year,
		"status":                 string(v.Status),
		"current_km":             v.CurrentKm.Int64(),
		"days_to_insurance":      daysFact(v.InsuranceExpiry, now),
		"days_to_tachograph":     daysFact(v.TachographExpiry, now),
		"days_to_copie_conforma": daysFact(v.CopieConformaExpiry, now),
		"days_to_revision":       daysFact(v.RevisionDueDate, now),
		"km_to_revision":         kmToRevision,
	}
}

func daysFact(expiry *time.Time, now time.Time) int {
	if expiry == nil {
		return NoDeadline
	}
	return status.DaysUntil(*expiry, now)
}
