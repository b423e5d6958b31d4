package executor

import (
	"fmt"
	"strconv"

	language "github.com/weftql/weft/internal/language"
	schema "github.com/weftql/weft/internal/schema"
)

// CoerceVariableValues coerces raw variable values against the operation's
// variable definitions. On any failure it returns the errors and no values;
// execution must not start.
func CoerceVariableValues(s *schema.Schema, operation *language.OperationDefinition, raw map[string]any) (map[string]any, []*GraphQLError) {
	coerced := make(map[string]any, len(operation.VariableDefinitions))
	var errs []*GraphQLError
	for _, varDef := range operation.VariableDefinitions {
		name := varDef.Variable
		ref := schema.TypeRefFromAST(varDef.Type)

		val, provided := raw[name]
		if !provided {
			if varDef.DefaultValue != nil {
				coerced[name] = language.GoValue(varDef.DefaultValue, nil)
				continue
			}
			if ref.IsNonNull() {
				errs = append(errs, newError("Variable $%s of required type %s was not provided.", name, varDef.Type.String()))
			}
			continue
		}
		if val == nil && ref.IsNonNull() {
			errs = append(errs, newError("Variable $%s of non-null type %s must not be null.", name, varDef.Type.String()))
			continue
		}
		cv, err := coerceInputValue(s, val, ref)
		if err != nil {
			errs = append(errs, newError("Variable $%s got invalid value: %s", name, err.Error()))
			continue
		}
		coerced[name] = cv
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return coerced, nil
}

// CoerceArgumentValues computes the argument map for one field from its
// argument AST nodes and the coerced variables. Coercion is pure given
// (fieldDef, arguments, variables) and is memoized on SharedState.
func CoerceArgumentValues(s *schema.Schema, fieldDef *schema.Field, arguments language.ArgumentList, variables map[string]any) (map[string]any, error) {
	coerced := make(map[string]any, len(fieldDef.Arguments))
	for _, arg := range arguments {
		argDef := fieldDef.GetArgument(arg.Name)
		if argDef == nil {
			continue
		}
		if arg.Value != nil && arg.Value.Kind == language.Variable {
			// An unprovided variable leaves the argument unset so its
			// default can apply.
			if _, ok := variables[arg.Value.Raw]; !ok {
				continue
			}
		}
		val := language.GoValue(arg.Value, variables)
		cv, err := coerceInputValue(s, val, argDef.Type)
		if err != nil {
			return nil, fmt.Errorf("argument %q got invalid value: %s", arg.Name, err.Error())
		}
		coerced[arg.Name] = cv
	}
	for _, argDef := range fieldDef.Arguments {
		if _, ok := coerced[argDef.Name]; ok {
			continue
		}
		if argDef.HasDefault {
			coerced[argDef.Name] = argDef.DefaultValue
			continue
		}
		if argDef.Type.IsNonNull() {
			return nil, fmt.Errorf("argument %q of required type %s was not provided", argDef.Name, argDef.Type.String())
		}
	}
	return coerced, nil
}

// coerceInputValue coerces a Go value against an input type.
func coerceInputValue(s *schema.Schema, value any, ref *schema.TypeRef) (any, error) {
	if ref.IsNonNull() {
		if value == nil {
			return nil, fmt.Errorf("cannot provide null for non-null type %s", ref.String())
		}
		return coerceInputValue(s, value, ref.Unwrap())
	}
	if value == nil {
		return nil, nil
	}
	if ref.IsList() {
		inner := ref.Unwrap()
		items, ok := value.([]any)
		if !ok {
			// A single value coerces to a list of one.
			item, err := coerceInputValue(s, value, inner)
			if err != nil {
				return nil, err
			}
			return []any{item}, nil
		}
		out := make([]any, len(items))
		for i, item := range items {
			cv, err := coerceInputValue(s, item, inner)
			if err != nil {
				return nil, err
			}
			out[i] = cv
		}
		return out, nil
	}

	named := ref.GetNamedType()
	typ := s.GetType(named)
	if typ == nil {
		return nil, fmt.Errorf("unknown input type %s", named)
	}
	switch typ.Kind {
	case schema.TypeKindScalar:
		if typ.ParseValue != nil {
			return typ.ParseValue(value)
		}
		return coerceBuiltinScalar(named, value)
	case schema.TypeKindEnum:
		name, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("enum %s cannot represent non-string value %v", named, value)
		}
		for _, ev := range typ.EnumValues {
			if ev.Name == name {
				return name, nil
			}
		}
		return nil, fmt.Errorf("value %q does not exist in enum %s", name, named)
	case schema.TypeKindInputObject:
		fields, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected object for input type %s, got %T", named, value)
		}
		out := make(map[string]any, len(typ.InputFields))
		for _, in := range typ.InputFields {
			raw, provided := fields[in.Name]
			if !provided {
				if in.HasDefault {
					out[in.Name] = in.DefaultValue
				} else if in.Type.IsNonNull() {
					return nil, fmt.Errorf("field %s.%s of required type %s was not provided", named, in.Name, in.Type.String())
				}
				continue
			}
			cv, err := coerceInputValue(s, raw, in.Type)
			if err != nil {
				return nil, err
			}
			out[in.Name] = cv
		}
		for name := range fields {
			if inputFieldDef(typ, name) == nil {
				return nil, fmt.Errorf("field %q is not defined by input type %s", name, named)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("type %s is not an input type", named)
	}
}

func inputFieldDef(t *schema.Type, name string) *schema.InputValue {
	for _, in := range t.InputFields {
		if in.Name == name {
			return in
		}
	}
	return nil
}

func coerceBuiltinScalar(name string, value any) (any, error) {
	switch name {
	case "Int":
		switch v := value.(type) {
		case int:
			return v, nil
		case int32:
			return int(v), nil
		case int64:
			return int(v), nil
		case float64:
			if v == float64(int(v)) {
				return int(v), nil
			}
		}
		return nil, fmt.Errorf("cannot coerce %v (%T) to Int", value, value)
	case "Float":
		switch v := value.(type) {
		case float64:
			return v, nil
		case float32:
			return float64(v), nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		}
		return nil, fmt.Errorf("cannot coerce %v (%T) to Float", value, value)
	case "String":
		if v, ok := value.(string); ok {
			return v, nil
		}
		return nil, fmt.Errorf("cannot coerce %v (%T) to String", value, value)
	case "Boolean":
		if v, ok := value.(bool); ok {
			return v, nil
		}
		return nil, fmt.Errorf("cannot coerce %v (%T) to Boolean", value, value)
	case "ID":
		switch v := value.(type) {
		case string:
			return v, nil
		case int:
			return strconv.Itoa(v), nil
		case int64:
			return strconv.FormatInt(v, 10), nil
		case float64:
			if v == float64(int(v)) {
				return strconv.Itoa(int(v)), nil
			}
		}
		return nil, fmt.Errorf("cannot coerce %v (%T) to ID", value, value)
	default:
		// Custom scalars without a ParseValue hook pass through.
		return value, nil
	}
}
