// Package introspection extends an executable schema with the __schema and
// __type meta-fields and the introspection type set. The meta-fields are
// ordinary resolver-backed fields on the query root, so the executor needs
// no special handling beyond __typename.
package introspection

import (
	"context"

	schema "github.com/weftql/weft/internal/schema"
)

// ExtendSchema returns a copy of the schema with introspection types
// registered and __schema/__type fields added to the query root. The
// original schema is not modified; introspection resolvers answer from it.
func ExtendSchema(original *schema.Schema) *schema.Schema {
	extended := schema.NewSchema(original.Description).
		SetQueryType(original.QueryType).
		SetMutationType(original.MutationType).
		SetSubscriptionType(original.SubscriptionType).
		SetConfig(original.GetConfig())
	for _, name := range original.TypeNames() {
		extended.AddType(original.Types[name])
	}
	for _, d := range original.Directives {
		extended.AddDirective(d)
	}

	addIntrospectionTypes(extended, original)

	queryType := extended.GetQueryType()
	if queryType == nil {
		return extended
	}
	queryCopy := *queryType
	queryCopy.Fields = append(append([]*schema.Field{}, queryType.Fields...),
		schema.NewField("__schema", "Access the current type schema of this server.",
			schema.NonNullType(schema.NamedType("__Schema"))).
			SetResolve(func(ctx context.Context, source any, args map[string]any, info *schema.ResolveInfo) (any, error) {
				return original, nil
			}),
		schema.NewField("__type", "Request the type information of a single type.",
			schema.NamedType("__Type")).
			AddArgument(schema.NewInputValue("name", "The name of the type to look up.",
				schema.NonNullType(schema.NamedType("String")))).
			SetResolve(func(ctx context.Context, source any, args map[string]any, info *schema.ResolveInfo) (any, error) {
				name, _ := args["name"].(string)
				if t, ok := original.Types[name]; ok {
					return t, nil
				}
				return nil, nil
			}),
	)
	extended.AddType(&queryCopy)
	return extended
}

func addIntrospectionTypes(extended, original *schema.Schema) {
	extended.AddType(schemaType(original))
	extended.AddType(typeType(original))
	extended.AddType(fieldType(original))
	extended.AddType(inputValueType())
	extended.AddType(enumValueType())
	extended.AddType(directiveType())
	extended.AddType(typeKindEnum())
	extended.AddType(directiveLocationEnum())
}

// typeValue converts a TypeRef into the value backing a __Type selection:
// the registered named type for plain references, the wrapper itself for
// List and Non-Null.
func typeValue(s *schema.Schema, ref *schema.TypeRef) any {
	if ref == nil {
		return nil
	}
	if ref.Kind == schema.TypeRefKindNamed {
		if t := s.Types[ref.Named]; t != nil {
			return t
		}
		return nil
	}
	return ref
}

func schemaType(original *schema.Schema) *schema.Type {
	t := schema.NewType("__Schema", schema.TypeKindObject,
		"A GraphQL Schema defines the capabilities of a GraphQL server.")
	t.AddField(schema.NewField("description", "A description of the schema.", schema.NamedType("String")))
	t.AddField(schema.NewField("types", "A list of all types supported by this server.",
		schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("__Type"))))))
	t.AddField(schema.NewField("queryType", "The type that query operations will be rooted at.",
		schema.NonNullType(schema.NamedType("__Type"))))
	t.AddField(schema.NewField("mutationType", "If this server supports mutation, the type that mutation operations will be rooted at.",
		schema.NamedType("__Type")))
	t.AddField(schema.NewField("subscriptionType", "If this server supports subscription, the type that subscription operations will be rooted at.",
		schema.NamedType("__Type")))
	t.AddField(schema.NewField("directives", "A list of all directives supported by this server.",
		schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("__Directive"))))))
	t.SetResolveField(func(ctx context.Context, source any, args map[string]any, info *schema.ResolveInfo) (any, error) {
		s, ok := source.(*schema.Schema)
		if !ok {
			return nil, nil
		}
		switch info.FieldName {
		case "description":
			return nullableString(s.Description), nil
		case "types":
			out := make([]any, 0, len(s.Types))
			for _, name := range s.TypeNames() {
				out = append(out, s.Types[name])
			}
			return out, nil
		case "queryType":
			return s.GetQueryType(), nil
		case "mutationType":
			return nilable(s.GetMutationType()), nil
		case "subscriptionType":
			return nilable(s.GetSubscriptionType()), nil
		case "directives":
			out := make([]any, 0, len(s.Directives))
			for _, d := range s.Directives {
				out = append(out, d)
			}
			return out, nil
		}
		return nil, nil
	})
	return t
}

func typeType(original *schema.Schema) *schema.Type {
	t := schema.NewType("__Type", schema.TypeKindObject,
		"The fundamental unit of any GraphQL Schema is the type.")
	t.AddField(schema.NewField("kind", "", schema.NonNullType(schema.NamedType("__TypeKind"))))
	t.AddField(schema.NewField("name", "", schema.NamedType("String")))
	t.AddField(schema.NewField("description", "", schema.NamedType("String")))
	t.AddField(schema.NewField("fields", "", schema.ListType(schema.NonNullType(schema.NamedType("__Field")))).
		AddArgument(schema.NewInputValue("includeDeprecated", "", schema.NamedType("Boolean")).SetDefault(false)))
	t.AddField(schema.NewField("interfaces", "", schema.ListType(schema.NonNullType(schema.NamedType("__Type")))))
	t.AddField(schema.NewField("possibleTypes", "", schema.ListType(schema.NonNullType(schema.NamedType("__Type")))))
	t.AddField(schema.NewField("enumValues", "", schema.ListType(schema.NonNullType(schema.NamedType("__EnumValue")))).
		AddArgument(schema.NewInputValue("includeDeprecated", "", schema.NamedType("Boolean")).SetDefault(false)))
	t.AddField(schema.NewField("inputFields", "", schema.ListType(schema.NonNullType(schema.NamedType("__InputValue")))).
		AddArgument(schema.NewInputValue("includeDeprecated", "", schema.NamedType("Boolean")).SetDefault(false)))
	t.AddField(schema.NewField("ofType", "", schema.NamedType("__Type")))
	t.AddField(schema.NewField("specifiedByURL", "", schema.NamedType("String")))
	t.AddField(schema.NewField("isOneOf", "", schema.NamedType("Boolean")))
	t.SetResolveField(func(ctx context.Context, source any, args map[string]any, info *schema.ResolveInfo) (any, error) {
		switch src := source.(type) {
		case *schema.Type:
			return resolveNamedTypeField(original, src, info.FieldName, args), nil
		case *schema.TypeRef:
			return resolveWrapperField(original, src, info.FieldName), nil
		}
		return nil, nil
	})
	return t
}

func resolveNamedTypeField(s *schema.Schema, t *schema.Type, field string, args map[string]any) any {
	switch field {
	case "kind":
		return string(t.Kind)
	case "name":
		return t.Name
	case "description":
		return nullableString(t.Description)
	case "fields":
		if t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface {
			return nil
		}
		includeDeprecated, _ := args["includeDeprecated"].(bool)
		out := make([]any, 0, len(t.Fields))
		for _, f := range t.Fields {
			if !includeDeprecated && f.IsDeprecated {
				continue
			}
			out = append(out, f)
		}
		return out
	case "interfaces":
		if t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface {
			return nil
		}
		out := make([]any, 0, len(t.Interfaces))
		for _, name := range t.Interfaces {
			if iface := s.Types[name]; iface != nil {
				out = append(out, iface)
			}
		}
		return out
	case "possibleTypes":
		if !t.IsAbstract() {
			return nil
		}
		possible := s.GetPossibleTypes(t)
		out := make([]any, len(possible))
		for i, pt := range possible {
			out[i] = pt
		}
		return out
	case "enumValues":
		if t.Kind != schema.TypeKindEnum {
			return nil
		}
		includeDeprecated, _ := args["includeDeprecated"].(bool)
		out := make([]any, 0, len(t.EnumValues))
		for _, ev := range t.EnumValues {
			if !includeDeprecated && ev.IsDeprecated {
				continue
			}
			out = append(out, ev)
		}
		return out
	case "inputFields":
		if t.Kind != schema.TypeKindInputObject {
			return nil
		}
		out := make([]any, len(t.InputFields))
		for i, in := range t.InputFields {
			out[i] = in
		}
		return out
	case "ofType":
		return nil
	case "specifiedByURL":
		if t.SpecifiedByURL != nil {
			return *t.SpecifiedByURL
		}
		return nil
	case "isOneOf":
		if t.Kind != schema.TypeKindInputObject {
			return nil
		}
		return t.OneOf
	}
	return nil
}

func resolveWrapperField(s *schema.Schema, ref *schema.TypeRef, field string) any {
	switch field {
	case "kind":
		if ref.Kind == schema.TypeRefKindNonNull {
			return "NON_NULL"
		}
		return "LIST"
	case "ofType":
		return typeValue(s, ref.OfType)
	}
	return nil
}

func fieldType(original *schema.Schema) *schema.Type {
	t := schema.NewType("__Field", schema.TypeKindObject, "")
	t.AddField(schema.NewField("name", "", schema.NonNullType(schema.NamedType("String"))))
	t.AddField(schema.NewField("description", "", schema.NamedType("String")))
	t.AddField(schema.NewField("args", "", schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("__InputValue"))))).
		AddArgument(schema.NewInputValue("includeDeprecated", "", schema.NamedType("Boolean")).SetDefault(false)))
	t.AddField(schema.NewField("type", "", schema.NonNullType(schema.NamedType("__Type"))))
	t.AddField(schema.NewField("isDeprecated", "", schema.NonNullType(schema.NamedType("Boolean"))))
	t.AddField(schema.NewField("deprecationReason", "", schema.NamedType("String")))
	t.SetResolveField(func(ctx context.Context, source any, args map[string]any, info *schema.ResolveInfo) (any, error) {
		f, ok := source.(*schema.Field)
		if !ok {
			return nil, nil
		}
		switch info.FieldName {
		case "name":
			return f.Name, nil
		case "description":
			return nullableString(f.Description), nil
		case "args":
			includeDeprecated, _ := args["includeDeprecated"].(bool)
			out := make([]any, 0, len(f.Arguments))
			for _, a := range f.Arguments {
				if !includeDeprecated && a.IsDeprecated {
					continue
				}
				out = append(out, a)
			}
			return out, nil
		case "type":
			return typeValue(original, f.Type), nil
		case "isDeprecated":
			return f.IsDeprecated, nil
		case "deprecationReason":
			return nullableString(f.DeprecationReason), nil
		}
		return nil, nil
	})
	return t
}

func inputValueType() *schema.Type {
	t := schema.NewType("__InputValue", schema.TypeKindObject, "")
	t.AddField(schema.NewField("name", "", schema.NonNullType(schema.NamedType("String"))))
	t.AddField(schema.NewField("description", "", schema.NamedType("String")))
	t.AddField(schema.NewField("type", "", schema.NonNullType(schema.NamedType("__Type"))))
	t.AddField(schema.NewField("defaultValue", "", schema.NamedType("String")))
	t.AddField(schema.NewField("isDeprecated", "", schema.NonNullType(schema.NamedType("Boolean"))))
	t.AddField(schema.NewField("deprecationReason", "", schema.NamedType("String")))
	t.SetResolveField(func(ctx context.Context, source any, args map[string]any, info *schema.ResolveInfo) (any, error) {
		in, ok := source.(*schema.InputValue)
		if !ok {
			return nil, nil
		}
		switch info.FieldName {
		case "name":
			return in.Name, nil
		case "description":
			return nullableString(in.Description), nil
		case "type":
			return typeValue(info.Schema, in.Type), nil
		case "defaultValue":
			if !in.HasDefault {
				return nil, nil
			}
			return schema.FormatValue(in.DefaultValue), nil
		case "isDeprecated":
			return in.IsDeprecated, nil
		case "deprecationReason":
			return nullableString(in.DeprecationReason), nil
		}
		return nil, nil
	})
	return t
}

func enumValueType() *schema.Type {
	t := schema.NewType("__EnumValue", schema.TypeKindObject, "")
	t.AddField(schema.NewField("name", "", schema.NonNullType(schema.NamedType("String"))))
	t.AddField(schema.NewField("description", "", schema.NamedType("String")))
	t.AddField(schema.NewField("isDeprecated", "", schema.NonNullType(schema.NamedType("Boolean"))))
	t.AddField(schema.NewField("deprecationReason", "", schema.NamedType("String")))
	t.SetResolveField(func(ctx context.Context, source any, args map[string]any, info *schema.ResolveInfo) (any, error) {
		ev, ok := source.(*schema.EnumValue)
		if !ok {
			return nil, nil
		}
		switch info.FieldName {
		case "name":
			return ev.Name, nil
		case "description":
			return nullableString(ev.Description), nil
		case "isDeprecated":
			return ev.IsDeprecated, nil
		case "deprecationReason":
			return nullableString(ev.DeprecationReason), nil
		}
		return nil, nil
	})
	return t
}

func directiveType() *schema.Type {
	t := schema.NewType("__Directive", schema.TypeKindObject, "")
	t.AddField(schema.NewField("name", "", schema.NonNullType(schema.NamedType("String"))))
	t.AddField(schema.NewField("description", "", schema.NamedType("String")))
	t.AddField(schema.NewField("isRepeatable", "", schema.NonNullType(schema.NamedType("Boolean"))))
	t.AddField(schema.NewField("locations", "",
		schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("__DirectiveLocation"))))))
	t.AddField(schema.NewField("args", "", schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("__InputValue"))))).
		AddArgument(schema.NewInputValue("includeDeprecated", "", schema.NamedType("Boolean")).SetDefault(false)))
	t.SetResolveField(func(ctx context.Context, source any, args map[string]any, info *schema.ResolveInfo) (any, error) {
		d, ok := source.(*schema.Directive)
		if !ok {
			return nil, nil
		}
		switch info.FieldName {
		case "name":
			return d.Name, nil
		case "description":
			return nullableString(d.Description), nil
		case "isRepeatable":
			return d.IsRepeatable, nil
		case "locations":
			out := make([]any, len(d.Locations))
			for i, loc := range d.Locations {
				out[i] = loc
			}
			return out, nil
		case "args":
			includeDeprecated, _ := args["includeDeprecated"].(bool)
			out := make([]any, 0, len(d.Arguments))
			for _, a := range d.Arguments {
				if !includeDeprecated && a.IsDeprecated {
					continue
				}
				out = append(out, a)
			}
			return out, nil
		}
		return nil, nil
	})
	return t
}

func typeKindEnum() *schema.Type {
	t := schema.NewType("__TypeKind", schema.TypeKindEnum, "")
	for _, name := range []string{"SCALAR", "OBJECT", "INTERFACE", "UNION", "ENUM", "INPUT_OBJECT", "LIST", "NON_NULL"} {
		t.AddEnumValue(schema.NewEnumValue(name, ""))
	}
	return t
}

func directiveLocationEnum() *schema.Type {
	t := schema.NewType("__DirectiveLocation", schema.TypeKindEnum, "")
	for _, name := range []string{
		"QUERY", "MUTATION", "SUBSCRIPTION", "FIELD", "FRAGMENT_DEFINITION",
		"FRAGMENT_SPREAD", "INLINE_FRAGMENT", "VARIABLE_DEFINITION", "SCHEMA",
		"SCALAR", "OBJECT", "FIELD_DEFINITION", "ARGUMENT_DEFINITION",
		"INTERFACE", "UNION", "ENUM", "ENUM_VALUE", "INPUT_OBJECT",
		"INPUT_FIELD_DEFINITION",
	} {
		t.AddEnumValue(schema.NewEnumValue(name, ""))
	}
	return t
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nilable(t *schema.Type) any {
	if t == nil {
		return nil
	}
	return t
}
