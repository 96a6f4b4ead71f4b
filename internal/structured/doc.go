// Package structured provides the structured query model and its
// translation to CQL: criteria over contextual concepts with attribute
// filters, value filters and time restrictions, the per-resource-type
// translation of a criterion into a boolean expression container, and the
// translator that assembles whole structured queries into CQL libraries.
package structured
