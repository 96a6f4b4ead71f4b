package model

import (
	"encoding/json"
	"fmt"
)

// Comparator is one of the comparison operators a structured query may use
// in quantity value filters. The wire form follows FHIR search prefixes
// (eq, ne, gt, ge, lt, le); CQL renders the symbolic operator.
type Comparator string

const (
	ComparatorEqual        Comparator = "eq"
	ComparatorNotEqual     Comparator = "ne"
	ComparatorGreater      Comparator = "gt"
	ComparatorGreaterEqual Comparator = "ge"
	ComparatorLess         Comparator = "lt"
	ComparatorLessEqual    Comparator = "le"
)

var comparatorSymbols = map[Comparator]string{
	ComparatorEqual:        "=",
	ComparatorNotEqual:     "!=",
	ComparatorGreater:      ">",
	ComparatorGreaterEqual: ">=",
	ComparatorLess:         "<",
	ComparatorLessEqual:    "<=",
}

// Symbol returns the CQL operator text.
func (c Comparator) Symbol() string {
	return comparatorSymbols[c]
}

// UnmarshalJSON validates the wire form against the known comparators.
func (c *Comparator) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	if _, ok := comparatorSymbols[Comparator(value)]; !ok {
		return fmt.Errorf("unknown comparator %q", value)
	}
	*c = Comparator(value)
	return nil
}
