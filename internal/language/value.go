package language

import "strconv"

// GoValue converts an AST value node into a plain Go value, substituting
// variables from vars. Unknown variables become nil.
func GoValue(v *Value, vars map[string]any) any {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case Variable:
		if vars == nil {
			return nil
		}
		return vars[v.Raw]
	case IntValue:
		iv, _ := strconv.Atoi(v.Raw)
		return iv
	case FloatValue:
		fv, _ := strconv.ParseFloat(v.Raw, 64)
		return fv
	case StringValue, BlockValue:
		return v.Raw
	case BooleanValue:
		return v.Raw == "true"
	case NullValue:
		return nil
	case EnumValue:
		return v.Raw
	case ListValue:
		out := make([]any, len(v.Children))
		for i, c := range v.Children {
			out[i] = GoValue(c.Value, vars)
		}
		return out
	case ObjectValue:
		m := make(map[string]any, len(v.Children))
		for _, f := range v.Children {
			m[f.Name] = GoValue(f.Value, vars)
		}
		return m
	default:
		return nil
	}
}
