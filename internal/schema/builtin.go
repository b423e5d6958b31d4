package schema

import (
	"fmt"
	"strconv"
)

var stringType = &Type{
	Name:        "String",
	Kind:        TypeKindScalar,
	Description: "The `String` scalar type represents textual data, represented as UTF-8 character sequences.",
	Serialize:   SerializeString,
}

var intType = &Type{
	Name:        "Int",
	Kind:        TypeKindScalar,
	Description: "The `Int` scalar type represents non-fractional signed whole numeric values.",
	Serialize:   SerializeInt,
}

var floatType = &Type{
	Name:        "Float",
	Kind:        TypeKindScalar,
	Description: "The `Float` scalar type represents signed double-precision fractional values.",
	Serialize:   SerializeFloat,
}

var booleanType = &Type{
	Name:        "Boolean",
	Kind:        TypeKindScalar,
	Description: "The `Boolean` scalar type represents `true` or `false`.",
	Serialize:   SerializeBoolean,
}

var idType = &Type{
	Name:        "ID",
	Kind:        TypeKindScalar,
	Description: "The `ID` scalar type represents a unique identifier, often used to refetch an object or as a key for caching.",
	Serialize:   SerializeID,
}

// Builtins returns the built-in scalar types. These are shared package-level
// instances, the same ones BuildFromSDL registers in every schema.
func Builtins() []*Type {
	return []*Type{stringType, intType, floatType, booleanType, idType}
}

func SerializeString(v any) (any, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case fmt.Stringer:
		return s.String(), nil
	case bool:
		return strconv.FormatBool(s), nil
	case int:
		return strconv.Itoa(s), nil
	case float64:
		return strconv.FormatFloat(s, 'g', -1, 64), nil
	}
	return nil, fmt.Errorf("String cannot represent value: %v (%T)", v, v)
}

func SerializeInt(v any) (any, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		if n == float64(int(n)) {
			return int(n), nil
		}
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	case string:
		if iv, err := strconv.Atoi(n); err == nil {
			return iv, nil
		}
	}
	return nil, fmt.Errorf("Int cannot represent non-integer value: %v (%T)", v, v)
}

func SerializeFloat(v any) (any, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		if fv, err := strconv.ParseFloat(n, 64); err == nil {
			return fv, nil
		}
	}
	return nil, fmt.Errorf("Float cannot represent non-numeric value: %v (%T)", v, v)
}

func SerializeBoolean(v any) (any, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case int:
		return b != 0, nil
	}
	return nil, fmt.Errorf("Boolean cannot represent value: %v (%T)", v, v)
}

func SerializeID(v any) (any, error) {
	switch id := v.(type) {
	case string:
		return id, nil
	case int:
		return strconv.Itoa(id), nil
	case int32:
		return strconv.FormatInt(int64(id), 10), nil
	case int64:
		return strconv.FormatInt(id, 10), nil
	case fmt.Stringer:
		return id.String(), nil
	}
	return nil, fmt.Errorf("ID cannot represent value: %v (%T)", v, v)
}

var includeDirective = &Directive{
	Name:        "include",
	Description: "Directs the executor to include this field or fragment only when the `if` argument is true.",
	Arguments: []*InputValue{
		{
			Name:        "if",
			Description: "Included when true.",
			Type:        NonNullType(NamedType("Boolean")),
		},
	},
	Locations: []string{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"},
}

var skipDirective = &Directive{
	Name:        "skip",
	Description: "Directs the executor to skip this field or fragment when the `if` argument is true.",
	Arguments: []*InputValue{
		{
			Name:        "if",
			Description: "Skipped when true.",
			Type:        NonNullType(NamedType("Boolean")),
		},
	},
	Locations: []string{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"},
}

var deprecatedDirective = &Directive{
	Name:        "deprecated",
	Description: "Marks an element of a GraphQL schema as no longer supported.",
	Arguments: []*InputValue{
		{
			Name:         "reason",
			Description:  "Explains why this element was deprecated.",
			Type:         NamedType("String"),
			DefaultValue: "No longer supported",
			HasDefault:   true,
		},
	},
	Locations: []string{"FIELD_DEFINITION", "ARGUMENT_DEFINITION", "INPUT_FIELD_DEFINITION", "ENUM_VALUE"},
}
