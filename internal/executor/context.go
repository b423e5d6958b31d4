package executor

import (
	language "github.com/weftql/weft/internal/language"
	schema "github.com/weftql/weft/internal/schema"
)

// sharedState is the per-field-group memo table. It is created once per
// logical field emitted by the Collector and shared by every sibling context
// of the group, for the whole execution.
type sharedState struct {
	fieldNodes  []*language.Field
	fieldName   string
	responseKey string
	arguments   language.ArgumentList

	// Derivations below are computed on the first execution of the group
	// against ifType and reused while the enclosing type matches.
	ifType     *schema.Type
	fieldDef   *schema.Field
	resolver   schema.ResolveFn
	returnType *schema.TypeRef
	args       map[string]any
	argsErr    *GraphQLError
	info       schema.ResolveInfo

	// childSelections is the concatenation of every selection set across
	// the merged field nodes, built lazily.
	childSelections      language.SelectionSet
	childSelectionsBuilt bool

	// childContexts caches the child context templates per concrete object
	// type. The collection callback runs at most once per type; subsequent
	// siblings clone the templates.
	childContexts map[*schema.Type][]*execContext
}

func newSharedState(nodes []*language.Field, fieldName, responseKey string, arguments language.ArgumentList) *sharedState {
	return &sharedState{
		fieldNodes:  nodes,
		fieldName:   fieldName,
		responseKey: responseKey,
		arguments:   arguments,
	}
}

// mergedChildSelections returns the merged child selection set, building and
// caching it on first use.
func (sh *sharedState) mergedChildSelections() language.SelectionSet {
	if !sh.childSelectionsBuilt {
		var merged language.SelectionSet
		for _, node := range sh.fieldNodes {
			merged = append(merged, node.SelectionSet...)
		}
		sh.childSelections = merged
		sh.childSelectionsBuilt = true
	}
	return sh.childSelections
}

// execContext is the per-field-occurrence execution state.
type execContext struct {
	// objectType is the enclosing concrete object type.
	objectType *schema.Type
	// source is the parent value the resolver receives.
	source any
	// result is the parent result container; the field writes under
	// shared.responseKey.
	result *ResultMap
	// path locates the field value in the response tree.
	path Path
	// nullFence is the path of the nearest enclosing nullable ancestor;
	// nil at the root.
	nullFence Path
	// shared is the group-wide memo table.
	shared *sharedState
}

// cloneFor reuses a template context for another parent of the same concrete
// type. Everything positional is reset; the shared handle is kept so key
// order and memoized derivations carry over.
func (ec *execContext) cloneFor(objectType *schema.Type, source any, result *ResultMap, path Path, fence Path) *execContext {
	return &execContext{
		objectType: objectType,
		source:     source,
		result:     result,
		path:       path,
		nullFence:  fence,
		shared:     ec.shared,
	}
}
