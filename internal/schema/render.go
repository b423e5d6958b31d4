package schema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Render produces SDL from the schema. Type and directive names are ordered
// lexicographically so output is deterministic.
func Render(s *Schema) string {
	if s == nil {
		return ""
	}
	var b strings.Builder

	if s.QueryType != "Query" || (s.MutationType != "" && s.MutationType != "Mutation") ||
		(s.SubscriptionType != "" && s.SubscriptionType != "Subscription") {
		b.WriteString("schema {\n")
		b.WriteString("  query: " + s.QueryType + "\n")
		if s.MutationType != "" {
			b.WriteString("  mutation: " + s.MutationType + "\n")
		}
		if s.SubscriptionType != "" {
			b.WriteString("  subscription: " + s.SubscriptionType + "\n")
		}
		b.WriteString("}\n\n")
	}

	typeNames := make([]string, 0, len(s.Types))
	for name, typ := range s.Types {
		if isBuiltinType(typ) || strings.HasPrefix(name, "__") {
			continue
		}
		typeNames = append(typeNames, name)
	}
	sort.Strings(typeNames)

	for _, name := range typeNames {
		typ := s.Types[name]
		switch typ.Kind {
		case TypeKindScalar:
			renderScalar(&b, typ)
		case TypeKindEnum:
			renderEnum(&b, typ)
		case TypeKindInputObject:
			renderInputObject(&b, typ)
		case TypeKindObject:
			renderCompositeType(&b, "type", typ)
		case TypeKindInterface:
			renderCompositeType(&b, "interface", typ)
		case TypeKindUnion:
			renderUnion(&b, typ)
		}
	}

	directiveNames := make([]string, 0, len(s.Directives))
	for name, d := range s.Directives {
		if isBuiltinDirective(d) {
			continue
		}
		directiveNames = append(directiveNames, name)
	}
	sort.Strings(directiveNames)
	for _, name := range directiveNames {
		renderDirectiveDef(&b, s.Directives[name])
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func isBuiltinType(t *Type) bool {
	switch t {
	case stringType, intType, floatType, booleanType, idType:
		return true
	}
	return false
}

func isBuiltinDirective(d *Directive) bool {
	switch d {
	case includeDirective, skipDirective, deprecatedDirective:
		return true
	}
	return false
}

func renderDescription(b *strings.Builder, desc string) {
	if desc == "" {
		return
	}
	b.WriteString("\"\"\"\n")
	b.WriteString(strings.ReplaceAll(desc, "\"", "\\\""))
	b.WriteString("\n\"\"\"\n")
}

func renderScalar(b *strings.Builder, typ *Type) {
	renderDescription(b, typ.Description)
	b.WriteString("scalar " + typ.Name)
	if typ.SpecifiedByURL != nil {
		b.WriteString(" @specifiedBy(url: " + strconv.Quote(*typ.SpecifiedByURL) + ")")
	}
	b.WriteString("\n\n")
}

func renderEnum(b *strings.Builder, typ *Type) {
	renderDescription(b, typ.Description)
	b.WriteString("enum " + typ.Name + " {\n")
	for _, val := range typ.EnumValues {
		renderDescription(b, val.Description)
		b.WriteString("  " + val.Name)
		renderDeprecation(b, val.IsDeprecated, val.DeprecationReason)
		b.WriteString("\n")
	}
	b.WriteString("}\n\n")
}

func renderInputObject(b *strings.Builder, typ *Type) {
	renderDescription(b, typ.Description)
	b.WriteString("input " + typ.Name)
	if typ.OneOf {
		b.WriteString(" @oneOf")
	}
	b.WriteString(" {\n")
	for _, field := range typ.InputFields {
		renderDescription(b, field.Description)
		b.WriteString("  " + field.Name + ": " + field.Type.String())
		if field.HasDefault {
			b.WriteString(" = " + renderValue(field.DefaultValue))
		}
		renderDeprecation(b, field.IsDeprecated, field.DeprecationReason)
		b.WriteString("\n")
	}
	b.WriteString("}\n\n")
}

func renderCompositeType(b *strings.Builder, keyword string, typ *Type) {
	renderDescription(b, typ.Description)
	b.WriteString(keyword + " " + typ.Name)
	if len(typ.Interfaces) > 0 {
		b.WriteString(" implements " + strings.Join(typ.Interfaces, " & "))
	}
	b.WriteString(" {\n")
	for _, field := range typ.Fields {
		renderField(b, field)
	}
	b.WriteString("}\n\n")
}

func renderUnion(b *strings.Builder, typ *Type) {
	renderDescription(b, typ.Description)
	b.WriteString("union " + typ.Name + " = " + strings.Join(typ.PossibleTypes, " | "))
	b.WriteString("\n\n")
}

func renderField(b *strings.Builder, field *Field) {
	renderDescription(b, field.Description)
	b.WriteString("  " + field.Name)
	renderArguments(b, field.Arguments)
	b.WriteString(": " + field.Type.String())
	renderDeprecation(b, field.IsDeprecated, field.DeprecationReason)
	b.WriteString("\n")
}

func renderArguments(b *strings.Builder, args []*InputValue) {
	if len(args) == 0 {
		return
	}
	b.WriteString("(")
	for i, arg := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(arg.Name + ": " + arg.Type.String())
		if arg.HasDefault {
			b.WriteString(" = " + renderValue(arg.DefaultValue))
		}
	}
	b.WriteString(")")
}

func renderDeprecation(b *strings.Builder, deprecated bool, reason string) {
	if !deprecated {
		return
	}
	b.WriteString(" @deprecated")
	if reason != "" {
		b.WriteString("(reason: " + strconv.Quote(reason) + ")")
	}
}

func renderDirectiveDef(b *strings.Builder, d *Directive) {
	renderDescription(b, d.Description)
	b.WriteString("directive @" + d.Name)
	renderArguments(b, d.Arguments)
	if d.IsRepeatable {
		b.WriteString(" repeatable")
	}
	b.WriteString(" on " + strings.Join(d.Locations, " | "))
	b.WriteString("\n\n")
}

// FormatValue renders a Go value in GraphQL value notation, as used for
// default values in SDL and introspection output.
func FormatValue(value any) string { return renderValue(value) }

func renderValue(value any) string {
	if value == nil {
		return "null"
	}
	switch v := value.(type) {
	case string:
		return strconv.Quote(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = renderValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + renderValue(v[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprint(v)
	}
}
