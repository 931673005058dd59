// Package events implements the invocation emitter: lifecycle notifications
// for action and tool invocations, fanned out to subscribers such as
// telemetry sinks.
package events

// Kind distinguishes an action invocation from a tool invocation.
type Kind string

const (
	KindAction Kind = "action"
	KindTool   Kind = "tool"
)

// Type is a point in an invocation's lifecycle.
type Type string

const (
	TypeRequested Type = "REQUESTED"
	TypeStarted   Type = "STARTED"
	TypeSucceeded Type = "SUCCEEDED"
	TypeFailed    Type = "FAILED"
)

// InvocationEvent reports one point in the lifecycle of a single action or
// tool invocation. For a given InvocationID, events are published in the
// sequence REQUESTED -> STARTED -> (SUCCEEDED | FAILED); callers rely on
// this ordering for span correlation. The event carries no timestamp of
// its own; DurationMs is set on the terminal event only.
type InvocationEvent struct {
	Kind               Kind
	Type               Type
	ID                 string
	InvocationID       string
	ParentInvocationID string
	DurationMs         int64
	Attributes         map[string]any
}
