// Package convo extracts the embedded conversation state from a ChatGPT
// share page and linearizes it into the selected root-to-leaf message path.
package convo

import "fmt"

// Kind classifies a parse failure.
type Kind string

const (
	KindMalformedPage Kind = "malformed_page"
	KindMissingState  Kind = "missing_conversation_state"
	KindUnsupported   Kind = "unsupported_schema"
)

// Error is a parse failure. Reason is the specific condition that tripped,
// Kind the coarse class callers branch on.
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("parse: %s: %s", e.Kind, e.Reason)
}

func errMalformed(reason string) *Error { return &Error{Kind: KindMalformedPage, Reason: reason} }
func errMissing(reason string) *Error   { return &Error{Kind: KindMissingState, Reason: reason} }
func errUnsupported(reason string) *Error {
	return &Error{Kind: KindUnsupported, Reason: reason}
}

// Thought is one internal reasoning segment of an assistant message.
type Thought struct {
	Summary string
	Content string
}

// Node is one message on the selected conversation path, in root-to-leaf
// order once returned by Parse.
type Node struct {
	ID          string
	ParentID    string
	Role        string // user | assistant | system | tool
	Recipient   string
	ContentType string
	CreateTime  float64 // unix seconds
	Text        string
	Uploads     []string
	Thoughts    []Thought
	// ReasoningDurationSec is set when the message carries reasoning
	// timing metadata; nil otherwise.
	ReasoningDurationSec *float64
	RecapText            string
}
