package plan

import "github.com/michaelfranz/springai-actions-go/action"

// Status summarizes a Plan's overall disposition once all steps have been
// classified.
type Status int

const (
	// StatusReady means every step is an ActionStep, ready to execute.
	StatusReady Status = iota
	// StatusPending means at least one step needs more information from the
	// user before any action can run.
	StatusPending
	// StatusError means at least one step failed validation, or the plan
	// carried no steps at all.
	StatusError
	// StatusNoAction means the plan consists solely of a single NoActionStep:
	// the model explicitly identified that nothing should be done.
	StatusNoAction
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "READY"
	case StatusPending:
		return "PENDING"
	case StatusError:
		return "ERROR"
	case StatusNoAction:
		return "NO_ACTION"
	default:
		return "UNKNOWN"
	}
}

// PlanArgument is one already-coerced argument bound to an action parameter.
type PlanArgument struct {
	Name       string
	Value      any
	TargetType string
}

// Step is the sealed union of bound step shapes a resolved Plan carries.
// Every Step is exactly one of ActionStep, PendingActionStep, NoActionStep
// or ErrorStep; callers distinguish them with a type switch.
type Step interface {
	isStep()
}

// ActionStep is a fully resolved, executable step.
type ActionStep struct {
	Binding   action.Binding
	Arguments []PlanArgument
}

func (ActionStep) isStep() {}

// PendingActionStep names an action the model selected but could not fully
// parameterize; the caller must elicit the missing values before retrying.
type PendingActionStep struct {
	ActionID       string
	Message        string
	PendingParams  []PendingParam
	ProvidedParams map[string]any
	// RetryHint classifies why the resolver produced this step, when the
	// cause is one the resolver can name precisely. Zero value
	// (RetryHintNone) for model-requested pending steps, which the resolver
	// merely passes through rather than diagnoses.
	RetryHint RetryHint
}

func (PendingActionStep) isStep() {}

// PendingParam names one parameter still needed plus a user-facing prompt.
type PendingParam struct {
	Name   string
	Prompt string
}

// NoActionStep records that the model explicitly determined no action was
// warranted this turn.
type NoActionStep struct {
	Message string
}

func (NoActionStep) isStep() {}

// ErrorStep records a resolution failure: an unknown action id, a
// constraint violation, an unknown step discriminator, or an explicit
// error step from the model.
type ErrorStep struct {
	Reason string
	// Issues optionally itemizes the field-level validation failures that
	// produced Reason, for callers that want structured detail beyond the
	// human-readable message.
	Issues []FieldIssue
	// RetryHint classifies why the resolver rejected this step, when the
	// cause is one the resolver can name precisely. Zero value
	// (RetryHintNone) for causes outside that classification (an explicit
	// pending step lacking an actionId or pending parameters, or an explicit
	// error step from the model). A pending step naming a parameter as both
	// pending and provided is classified RetryHintConstraintViolation.
	RetryHint RetryHint
}

func (ErrorStep) isStep() {}

// RetryHint classifies the specific, resolver-detected cause behind a
// PendingActionStep or ErrorStep, so a caller's retry/circuit-breaker layer
// can distinguish "ask the user for a value" from "the model picked a
// nonexistent action" from "the supplied value violates a constraint"
// without string-matching Reason.
type RetryHint string

const (
	// RetryHintNone means the resolver did not classify this step's cause
	// into one of the named categories below.
	RetryHintNone RetryHint = ""
	// RetryHintMissingField means a required parameter had no usable value.
	RetryHintMissingField RetryHint = "missing_field"
	// RetryHintConstraintViolation means a supplied value failed coercion or
	// an AllowedValues/AllowedRegex constraint.
	RetryHintConstraintViolation RetryHint = "constraint_violation"
	// RetryHintUnknownAction means the plan named an action id not present
	// in the registry.
	RetryHintUnknownAction RetryHint = "unknown_action"
)

// FieldIssue names one parameter-level validation failure contributing to
// an ErrorStep.
type FieldIssue struct {
	Param  string
	Detail string
}

// Plan is the bound, validated result of resolving a RawPlan against the
// registered actions. It is immutable once constructed.
type Plan struct {
	AssistantMessage string
	Steps            []Step
}

// PendingParameterNames collects the names of every parameter any
// PendingActionStep in the plan is still waiting on, in step order.
func (p Plan) PendingParameterNames() []string {
	var names []string
	for _, s := range p.Steps {
		ps, ok := s.(PendingActionStep)
		if !ok {
			continue
		}
		for _, pp := range ps.PendingParams {
			names = append(names, pp.Name)
		}
	}
	return names
}

// Status derives the plan's overall disposition from its steps:
//   - ERROR if Steps is empty or any step is an ErrorStep.
//   - NO_ACTION if Steps is a single NoActionStep.
//   - PENDING if any step is a PendingActionStep (and no error).
//   - READY if every step is an ActionStep.
func (p Plan) Status() Status {
	if len(p.Steps) == 0 {
		return StatusError
	}
	if len(p.Steps) == 1 {
		if _, ok := p.Steps[0].(NoActionStep); ok {
			return StatusNoAction
		}
	}
	hasPending := false
	for _, s := range p.Steps {
		switch s.(type) {
		case ErrorStep:
			return StatusError
		case PendingActionStep:
			hasPending = true
		}
	}
	if hasPending {
		return StatusPending
	}
	for _, s := range p.Steps {
		if _, ok := s.(ActionStep); !ok {
			// A lone NoActionStep is handled above; a NoActionStep mixed
			// with other non-error steps has no ActionStep-only status and
			// falls through as ERROR since it cannot be classified READY.
			return StatusError
		}
	}
	return StatusReady
}
