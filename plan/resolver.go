package plan

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/michaelfranz/springai-actions-go/action"
)

// Resolver binds a RawPlan against the registered actions, producing a
// validated Plan. A Resolver is stateless and safe for concurrent use once
// constructed.
type Resolver struct {
	actions *action.Registry
	types   *action.TypeHandlerRegistry
}

// NewResolver returns a Resolver that looks up actions in actions and
// coerces parameters via types.
func NewResolver(actions *action.Registry, types *action.TypeHandlerRegistry) *Resolver {
	return &Resolver{actions: actions, types: types}
}

// Resolve turns a RawPlan into a bound Plan, classifying every step in turn.
// It never returns an error itself: unresolvable steps become ErrorSteps
// inside the returned Plan, and Plan.Status reports the aggregate outcome.
func (r *Resolver) Resolve(raw RawPlan) Plan {
	steps := make([]Step, 0, len(raw.Steps))
	for _, rs := range raw.Steps {
		steps = append(steps, r.resolveStep(rs))
	}
	return Plan{AssistantMessage: raw.Message, Steps: steps}
}

func (r *Resolver) resolveStep(rs RawPlanStep) Step {
	switch {
	case rs.Error:
		return ErrorStep{Reason: rs.Reason}
	case rs.NoAction:
		return NoActionStep{Message: rs.Reason}
	case rs.IsPending():
		return r.resolvePending(rs)
	default:
		return r.resolveAction(rs)
	}
}

func (r *Resolver) resolvePending(rs RawPlanStep) Step {
	if rs.ActionID == "" || len(rs.PendingParams) == 0 {
		return ErrorStep{Reason: "pending step requires an actionId and at least one pending parameter"}
	}
	pending := make([]PendingParam, 0, len(rs.PendingParams))
	var overlap []string
	for _, p := range rs.PendingParams {
		pending = append(pending, PendingParam{Name: p.Name, Prompt: p.Prompt})
		if _, provided := rs.ProvidedParams[p.Name]; provided {
			overlap = append(overlap, p.Name)
		}
	}
	if len(overlap) > 0 {
		return ErrorStep{
			Reason:    fmt.Sprintf("pending step names %s as both pending and provided", joinQuoted(overlap)),
			RetryHint: RetryHintConstraintViolation,
		}
	}
	return PendingActionStep{
		ActionID:       rs.ActionID,
		Message:        rs.Description,
		PendingParams:  pending,
		ProvidedParams: rs.ProvidedParams,
	}
}

func (r *Resolver) resolveAction(rs RawPlanStep) Step {
	binding, ok := r.actions.Find(rs.ActionID)
	if !ok {
		return ErrorStep{
			Reason:    fmt.Sprintf("unknown action: %s", rs.ActionID),
			RetryHint: RetryHintUnknownAction,
		}
	}

	var missing []PendingParam
	var args []PlanArgument
	var issues []FieldIssue

	for _, p := range binding.Descriptor.Parameters {
		raw, present := rs.Parameters[p.Name]
		blank := !present || isBlankString(raw)

		if p.Required && blank {
			missing = append(missing, PendingParam{Name: p.Name, Prompt: fmt.Sprintf("please provide a value for %q", p.Name)})
			continue
		}
		if blank {
			continue
		}

		value, err := r.coerce(p, raw)
		if err != nil {
			issues = append(issues, FieldIssue{Param: p.Name, Detail: err.Error()})
			continue
		}
		if err := validateConstraints(p, value); err != nil {
			issues = append(issues, FieldIssue{Param: p.Name, Detail: err.Error()})
			continue
		}
		args = append(args, PlanArgument{Name: p.Name, Value: value, TargetType: p.TypeID})
	}

	if len(missing) > 0 {
		return PendingActionStep{
			ActionID:      rs.ActionID,
			Message:       rs.Description,
			PendingParams: missing,
			RetryHint:     RetryHintMissingField,
		}
	}
	if len(issues) > 0 {
		return ErrorStep{
			Reason:    constraintFailureMessage(issues),
			Issues:    issues,
			RetryHint: RetryHintConstraintViolation,
		}
	}

	return ActionStep{Binding: binding, Arguments: args}
}

func isBlankString(raw any) bool {
	s, ok := raw.(string)
	return ok && strings.TrimSpace(s) == ""
}

func (r *Resolver) coerce(p action.ParameterDescriptor, raw any) (any, error) {
	if strings.HasPrefix(p.TypeID, "list:") {
		elemType := strings.TrimPrefix(p.TypeID, "list:")
		items, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("parameter %q expects a list", p.Name)
		}
		handler, ok := r.types.Lookup(elemType)
		if !ok {
			return nil, fmt.Errorf("parameter %q: no type handler registered for %q", p.Name, elemType)
		}
		elemDescriptor := p
		elemDescriptor.TypeID = elemType
		out := make([]any, 0, len(items))
		for i, item := range items {
			v, err := handler.Coerce(elemDescriptor, item)
			if err != nil {
				return nil, fmt.Errorf("parameter %q[%d]: %w", p.Name, i, err)
			}
			out = append(out, v)
		}
		return out, nil
	}

	handler, ok := r.types.Lookup(p.TypeID)
	if !ok {
		return nil, fmt.Errorf("parameter %q: no type handler registered for %q", p.Name, p.TypeID)
	}
	return handler.Coerce(p, raw)
}

// validateConstraints checks value against the parameter's AllowedValues /
// AllowedRegex, if any. Enum membership and regex match both observe
// CaseInsensitive; string-representable values are matched via fmt.Sprint.
func validateConstraints(p action.ParameterDescriptor, value any) error {
	if len(p.AllowedValues) == 0 && p.AllowedRegex == "" {
		return nil
	}
	repr := fmt.Sprint(value)

	if len(p.AllowedValues) > 0 {
		for _, allowed := range p.AllowedValues {
			if repr == allowed {
				return nil
			}
			if p.CaseInsensitive && strings.EqualFold(repr, allowed) {
				return nil
			}
		}
		return fmt.Errorf("%s must be one of %s", p.Name, joinQuoted(p.AllowedValues))
	}

	matched, err := regexFullMatch(p.AllowedRegex, repr, p.CaseInsensitive)
	if err != nil {
		return fmt.Errorf("%s: invalid constraint pattern: %w", p.Name, err)
	}
	if !matched {
		return fmt.Errorf("%s must match /%s/", p.Name, p.AllowedRegex)
	}
	return nil
}

func joinQuoted(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = strconv.Quote(v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// regexFullMatch reports whether value matches pattern over its entire
// length (anchored both ends), optionally case-insensitively.
func regexFullMatch(pattern, value string, caseInsensitive bool) (bool, error) {
	if caseInsensitive {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return false, err
	}
	return re.MatchString(value), nil
}

func constraintFailureMessage(issues []FieldIssue) string {
	parts := make([]string, len(issues))
	for i, iss := range issues {
		parts[i] = iss.Detail
	}
	return strings.Join(parts, "; ")
}
