package executor

import (
	language "github.com/weftql/weft/internal/language"
	schema "github.com/weftql/weft/internal/schema"
)

// Runtime is the narrow surface the Collector needs from its host. The
// executor implements it; tests may substitute their own to drive the
// Collector standalone.
//
// Contract
//   - Evaluate coerces an AST value node against an input type, consulting
//     the coerced variable map for variable references. It must not fail:
//     unresolvable values evaluate to nil.
//   - AddError appends a located error to the execution error list. The
//     Collector reports and continues; it never aborts the walk.
type Runtime interface {
	Evaluate(value *language.Value, inputType *schema.TypeRef) any
	AddError(err *GraphQLError)
}

// FieldVisitor receives one callback per logical field in a merged selection
// set, in source order. fieldNodes holds every occurrence merged under the
// response key; arguments is the argument list of the first occurrence.
type FieldVisitor func(fieldNodes []*language.Field, fieldName, responseKey string, arguments language.ArgumentList)

// typenameMetaField is the distinguished field name the Collector emits for
// __typename selections. The Completer resolves it to the object type name
// without calling any resolver.
const typenameMetaField = "__typename"
