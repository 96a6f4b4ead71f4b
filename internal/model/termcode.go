package model

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// TermCode identifies a coded concept within a code system: a (system,
// code, display) triple with value equality.
type TermCode struct {
	System  string `json:"system"`
	Code    string `json:"code"`
	Display string `json:"display"`
}

func (t TermCode) String() string {
	return fmt.Sprintf("(system: `%s`, code: `%s`, display: `%s`)", t.System, t.Code, t.Display)
}

// key returns the NFC-normalized lookup key for the term code. Byte-wise
// different but canonically equal system/code strings map to the same key,
// so a catalog cannot hold two entries for the same code.
func (t TermCode) key() string {
	return norm.NFC.String(t.System) + "|" + norm.NFC.String(t.Code)
}

// ContextualTermCode is a term code scoped to a usage context such as
// Patient or Condition.
type ContextualTermCode struct {
	Context  string   `json:"context"`
	TermCode TermCode `json:"termCode"`
}

func (t ContextualTermCode) String() string {
	return fmt.Sprintf("(context: `%s`, %s)", t.Context, t.TermCode)
}

func (t ContextualTermCode) key() string {
	return norm.NFC.String(t.Context) + "|" + t.TermCode.key()
}

// ContextualConcept identifies a clinical concept to be expanded: one or
// more term codes within a usage context.
type ContextualConcept struct {
	Context   string     `json:"context"`
	TermCodes []TermCode `json:"termCodes"`
}

func (c ContextualConcept) String() string {
	return fmt.Sprintf("(context: `%s`, codes: %v)", c.Context, c.TermCodes)
}
