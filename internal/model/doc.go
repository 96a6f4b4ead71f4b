// Package model provides the terminology and mapping model consumed by the
// criterion translator: term codes, concepts, the resource-type mappings
// resolved per term code, and the MappingContext lookup interface together
// with an in-memory implementation backed by a concept closure tree.
package model
