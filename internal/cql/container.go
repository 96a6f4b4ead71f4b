package cql

import "sort"

// UnfilteredDefine is a named top-level query statement that has to live in
// the Unfiltered context because its query shape is not legal inline.
type UnfilteredDefine struct {
	Name  string
	Query QueryExpression
}

// Container threads auxiliary compile-time metadata alongside a translation
// result: the code system definitions the result depends on and the
// Unfiltered context defines it requires. Combining two containers unions
// the code systems and concatenates the defines, deduplicating by name.
//
// Container values are immutable; every operation returns a new container.
type Container[T any] struct {
	value       T
	codeSystems []CodeSystemDefinition
	defines     []UnfilteredDefine
}

// NewContainer creates a container holding value together with the code
// system definitions it uses.
func NewContainer[T any](value T, codeSystems ...CodeSystemDefinition) Container[T] {
	return Container[T]{value: value, codeSystems: sortedCodeSystems(codeSystems)}
}

// Empty returns the identity container: no value, no metadata. It is the
// neutral element of both And and Or.
func Empty[T any]() Container[T] {
	return Container[T]{}
}

// Value returns the contained value. For an empty container over an
// interface type this is nil.
func (c Container[T]) Value() T {
	return c.value
}

// CodeSystemDefinitions returns the accumulated code system definitions,
// sorted by alias.
func (c Container[T]) CodeSystemDefinitions() []CodeSystemDefinition {
	result := make([]CodeSystemDefinition, len(c.codeSystems))
	copy(result, c.codeSystems)
	return result
}

// UnfilteredDefines returns the accumulated Unfiltered context defines in
// registration order.
func (c Container[T]) UnfilteredDefines() []UnfilteredDefine {
	result := make([]UnfilteredDefine, len(c.defines))
	copy(result, c.defines)
	return result
}

// IsEmpty reports whether the container holds no value.
func (c Container[T]) IsEmpty() bool {
	return any(c.value) == nil
}

// Map transforms the contained value, preserving the accumulated metadata.
func Map[T, U any](c Container[T], f func(T) U) Container[U] {
	return Container[U]{
		value:       f(c.value),
		codeSystems: c.codeSystems,
		defines:     c.defines,
	}
}

// FlatMap applies f to the contained value and merges the metadata of both
// containers, the receiver's before f's result's.
func FlatMap[T, U any](c Container[T], f func(T) (Container[U], error)) (Container[U], error) {
	result, err := f(c.value)
	if err != nil {
		return Container[U]{}, err
	}
	return Container[U]{
		value:       result.value,
		codeSystems: unionCodeSystems(c.codeSystems, result.codeSystems),
		defines:     concatDefines(c.defines, result.defines),
	}, nil
}

// And combines two boolean containers with conjunction. An empty side
// short-circuits to the other side, so Empty is the identity.
func And(a, b Container[BooleanExpression]) Container[BooleanExpression] {
	return combine(a, b, func(x, y BooleanExpression) BooleanExpression {
		return NewAndExpression(x, y)
	})
}

// Or combines two boolean containers with disjunction. An empty side
// short-circuits to the other side, so Empty is the identity.
func Or(a, b Container[BooleanExpression]) Container[BooleanExpression] {
	return combine(a, b, func(x, y BooleanExpression) BooleanExpression {
		return NewOrExpression(x, y)
	})
}

func combine(a, b Container[BooleanExpression], op func(x, y BooleanExpression) BooleanExpression) Container[BooleanExpression] {
	if a.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return a
	}
	return Container[BooleanExpression]{
		value:       op(a.value, b.value),
		codeSystems: unionCodeSystems(a.codeSystems, b.codeSystems),
		defines:     concatDefines(a.defines, b.defines),
	}
}

// MoveToUnfilteredContext registers the contained query as an Unfiltered
// context define under name and returns a container whose value references
// that define by its quoted name. Code systems are preserved and the new
// define is appended after any defines already accumulated.
func MoveToUnfilteredContext(c Container[QueryExpression], name string) Container[IdentifierExpression] {
	return Container[IdentifierExpression]{
		value:       NewQuotedIdentifierExpression(name),
		codeSystems: c.codeSystems,
		defines:     concatDefines(c.defines, []UnfilteredDefine{{Name: name, Query: c.value}}),
	}
}

// MaxContainerSuffixes returns the maximum alias suffix per base name used
// anywhere in the container: its value and all of its defines.
func MaxContainerSuffixes[T Expression](c Container[T]) map[string]int {
	acc := map[string]int{}
	if !c.IsEmpty() {
		c.value.collectSuffixes(acc)
	}
	for _, define := range c.defines {
		define.Query.collectSuffixes(acc)
	}
	return acc
}

// IncrementContainerSuffixes applies an alias suffix increment uniformly to
// the container's value and all of its defines.
func IncrementContainerSuffixes[T Expression](c Container[T], increments map[string]int) Container[T] {
	if len(increments) == 0 {
		return c
	}
	result := Container[T]{codeSystems: c.codeSystems, value: c.value}
	if !c.IsEmpty() {
		result.value = WithIncrementedSuffixes(c.value, increments)
	}
	result.defines = make([]UnfilteredDefine, len(c.defines))
	for i, define := range c.defines {
		result.defines[i] = UnfilteredDefine{
			Name:  define.Name,
			Query: WithIncrementedSuffixes(define.Query, increments),
		}
	}
	return result
}

// CaptureAvoidingIncrements computes, for every base name occurring in both
// maps, the increment that lifts the incoming suffixes above the suffixes
// already in use. Names used on only one side need no increment.
func CaptureAvoidingIncrements(used, incoming map[string]int) map[string]int {
	increments := map[string]int{}
	for name, maxUsed := range used {
		if _, ok := incoming[name]; ok {
			increments[name] = maxUsed + 1
		}
	}
	return increments
}

func sortedCodeSystems(codeSystems []CodeSystemDefinition) []CodeSystemDefinition {
	if len(codeSystems) == 0 {
		return nil
	}
	result := make([]CodeSystemDefinition, len(codeSystems))
	copy(result, codeSystems)
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return dedupeCodeSystems(result)
}

func unionCodeSystems(a, b []CodeSystemDefinition) []CodeSystemDefinition {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	merged := make([]CodeSystemDefinition, 0, len(a)+len(b))
	merged = append(merged, a...)
	merged = append(merged, b...)
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Name < merged[j].Name
	})
	return dedupeCodeSystems(merged)
}

func dedupeCodeSystems(sorted []CodeSystemDefinition) []CodeSystemDefinition {
	result := sorted[:0]
	for _, definition := range sorted {
		if len(result) == 0 || result[len(result)-1] != definition {
			result = append(result, definition)
		}
	}
	return result
}

func concatDefines(a, b []UnfilteredDefine) []UnfilteredDefine {
	if len(b) == 0 {
		return a
	}
	seen := make(map[string]bool, len(a))
	result := make([]UnfilteredDefine, 0, len(a)+len(b))
	for _, define := range a {
		if !seen[define.Name] {
			seen[define.Name] = true
			result = append(result, define)
		}
	}
	for _, define := range b {
		if !seen[define.Name] {
			seen[define.Name] = true
			result = append(result, define)
		}
	}
	return result
}
