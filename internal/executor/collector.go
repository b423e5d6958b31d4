package executor

import (
	language "github.com/weftql/weft/internal/language"
	schema "github.com/weftql/weft/internal/schema"
)

// Collector resolves an operation against the schema and walks selection
// sets, emitting one callback per logical field of a concrete object type.
// It is decoupled from the executor through the Runtime interface.
type Collector struct {
	schema    *schema.Schema
	runtime   Runtime
	fragments map[string]*language.FragmentDefinition
}

// Operation is a resolved operation: its definition and root object type.
type Operation struct {
	Definition *language.OperationDefinition
	RootType   *schema.Type
}

func NewCollector(s *schema.Schema, rt Runtime) *Collector {
	return &Collector{schema: s, runtime: rt, fragments: map[string]*language.FragmentDefinition{}}
}

// Fragments returns the fragment table populated by Init.
func (c *Collector) Fragments() map[string]*language.FragmentDefinition { return c.fragments }

// Init locates the requested operation, populates the fragment table, and
// derives the root type. On failure an error is recorded and nil returned.
func (c *Collector) Init(doc *language.QueryDocument, operationName string) *Operation {
	for _, frag := range doc.Fragments {
		c.fragments[frag.Name] = frag
	}

	var op *language.OperationDefinition
	switch {
	case operationName != "":
		op = doc.Operations.ForName(operationName)
		if op == nil {
			c.runtime.AddError(newError("Unknown operation named %q.", operationName))
			return nil
		}
	case len(doc.Operations) == 1:
		op = doc.Operations[0]
	case len(doc.Operations) == 0:
		c.runtime.AddError(newError("Must provide an operation."))
		return nil
	default:
		c.runtime.AddError(newError("Must provide operation name if query contains multiple operations."))
		return nil
	}

	var rootType *schema.Type
	switch op.Operation {
	case language.Query:
		rootType = c.schema.GetQueryType()
		if rootType == nil {
			c.runtime.AddError(newError("Schema does not define a query root type."))
			return nil
		}
	case language.Mutation:
		rootType = c.schema.GetMutationType()
		if rootType == nil {
			c.runtime.AddError(newError("Schema is not configured for mutations."))
			return nil
		}
	default:
		c.runtime.AddError(newError("Unsupported operation type %q.", op.Operation))
		return nil
	}

	return &Operation{Definition: op, RootType: rootType}
}

// fieldGroup accumulates the field nodes merged under one response key.
type fieldGroup struct {
	responseKey string
	fieldName   string
	nodes       []*language.Field
	arguments   language.ArgumentList
}

// groupedFields preserves first-emission order of response keys.
type groupedFields struct {
	groups []*fieldGroup
	index  map[string]int
}

func newGroupedFields() *groupedFields {
	return &groupedFields{index: map[string]int{}}
}

func (g *groupedFields) add(field *language.Field) {
	key := field.Alias
	if key == "" {
		key = field.Name
	}
	if i, ok := g.index[key]; ok {
		g.groups[i].nodes = append(g.groups[i].nodes, field)
		return
	}
	g.index[key] = len(g.groups)
	g.groups = append(g.groups, &fieldGroup{
		responseKey: key,
		fieldName:   field.Name,
		nodes:       []*language.Field{field},
		// First occurrence provides the argument value map; later
		// occurrences are structurally identical (validated upstream).
		arguments: field.Arguments,
	})
}

// CollectFields walks the selection set against the given concrete object
// type and invokes visit once per merged logical field, in source order.
func (c *Collector) CollectFields(objectType *schema.Type, selectionSet language.SelectionSet, visit FieldVisitor) {
	grouped := newGroupedFields()
	c.walk(objectType, selectionSet, grouped, map[string]bool{})
	for _, group := range grouped.groups {
		visit(group.nodes, group.fieldName, group.responseKey, group.arguments)
	}
}

func (c *Collector) walk(objectType *schema.Type, selectionSet language.SelectionSet, grouped *groupedFields, visited map[string]bool) {
	for _, selection := range selectionSet {
		switch sel := selection.(type) {
		case *language.Field:
			if !c.shouldInclude(sel.Directives) {
				continue
			}
			if sel.Name == typenameMetaField {
				grouped.add(sel)
				continue
			}
			fieldDef := objectType.GetField(sel.Name)
			if fieldDef == nil {
				c.runtime.AddError(locatedError(
					newError("Cannot query field '%s' on type '%s'", sel.Name, objectType.Name),
					[]*language.Field{sel}, nil))
				continue
			}
			if len(sel.SelectionSet) > 0 {
				named := c.schema.GetType(fieldDef.Type.GetNamedType())
				if named != nil && named.IsLeaf() {
					c.runtime.AddError(locatedError(
						newError("Field '%s' of type '%s' is not composite - cannot query sub-fields", sel.Name, named.Name),
						[]*language.Field{sel}, nil))
					// The field itself still executes; its sub-selection
					// is discarded by leaf completion.
				}
			}
			grouped.add(sel)

		case *language.InlineFragment:
			if !c.shouldInclude(sel.Directives) {
				continue
			}
			if !c.typeConditionApplies(sel.TypeCondition, objectType) {
				continue
			}
			c.walk(objectType, sel.SelectionSet, grouped, visited)

		case *language.FragmentSpread:
			if !c.shouldInclude(sel.Directives) {
				continue
			}
			if visited[sel.Name] {
				continue
			}
			visited[sel.Name] = true
			frag := c.fragments[sel.Name]
			if frag == nil {
				c.runtime.AddError(newError("Unknown fragment %q.", sel.Name))
				continue
			}
			if !c.typeConditionApplies(frag.TypeCondition, objectType) {
				continue
			}
			c.walk(objectType, frag.SelectionSet, grouped, visited)
		}
	}
}

// typeConditionApplies reports whether a fragment with the given type
// condition selects fields of objectType: same object type, an abstract type
// with objectType among its possible types, or an interface objectType
// implements.
func (c *Collector) typeConditionApplies(condition string, objectType *schema.Type) bool {
	if condition == "" || condition == objectType.Name {
		return true
	}
	cond := c.schema.GetType(condition)
	if cond == nil {
		return false
	}
	if cond.IsAbstract() {
		return c.schema.IsPossibleType(cond, objectType)
	}
	return false
}

// executableDirectives is the table of directives that participate in
// execution. Each entry names the directive and the `if` value that causes
// the selection to be discarded.
var executableDirectives = []struct {
	name        string
	excludeWhen bool
}{
	{name: "skip", excludeWhen: true},
	{name: "include", excludeWhen: false},
}

var booleanInputRef = schema.NonNullType(schema.NamedType("Boolean"))

func (c *Collector) shouldInclude(directives language.DirectiveList) bool {
	for _, rule := range executableDirectives {
		d := directives.ForName(rule.name)
		if d == nil {
			continue
		}
		arg := d.Arguments.ForName("if")
		if arg == nil {
			continue
		}
		if v, ok := c.runtime.Evaluate(arg.Value, booleanInputRef).(bool); ok && v == rule.excludeWhen {
			return false
		}
	}
	return true
}
