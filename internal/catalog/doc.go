// Package catalog persists an imported ontology in a SQLite database and
// serves mapping-context lookups from it.
//
// Ontology files are validated against an embedded CUE schema before
// import. Reads are ordered deterministically, so repeated loads of the
// same catalog produce identical mapping contexts.
package catalog
