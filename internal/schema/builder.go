package schema

import (
	"fmt"

	language "github.com/weftql/weft/internal/language"
)

// NewSchema creates an empty schema.
func NewSchema(description string) *Schema {
	return &Schema{
		Types:       map[string]*Type{},
		Directives:  map[string]*Directive{},
		Description: description,
	}
}

func (s *Schema) SetQueryType(name string) *Schema        { s.QueryType = name; return s }
func (s *Schema) SetMutationType(name string) *Schema     { s.MutationType = name; return s }
func (s *Schema) SetSubscriptionType(name string) *Schema { s.SubscriptionType = name; return s }

// AddType registers t, replacing any previous type of the same name.
func (s *Schema) AddType(t *Type) *Schema {
	if _, ok := s.Types[t.Name]; !ok {
		s.typeOrder = append(s.typeOrder, t.Name)
	}
	s.Types[t.Name] = t
	return s
}

func (s *Schema) AddDirective(d *Directive) *Schema {
	s.Directives[d.Name] = d
	return s
}

func NewType(name string, kind TypeKind, description string) *Type {
	return &Type{Name: name, Kind: kind, Description: description}
}

func (t *Type) AddField(f *Field) *Type            { t.Fields = append(t.Fields, f); return t }
func (t *Type) AddInterface(name string) *Type     { t.Interfaces = append(t.Interfaces, name); return t }
func (t *Type) AddPossibleType(name string) *Type  { t.PossibleTypes = append(t.PossibleTypes, name); return t }
func (t *Type) AddEnumValue(v *EnumValue) *Type    { t.EnumValues = append(t.EnumValues, v); return t }
func (t *Type) AddInputField(v *InputValue) *Type  { t.InputFields = append(t.InputFields, v); return t }
func (t *Type) SetOneOf(oneOf bool) *Type          { t.OneOf = oneOf; return t }
func (t *Type) SetResolveType(fn ResolveTypeFn) *Type { t.ResolveType = fn; return t }
func (t *Type) SetIsTypeOf(fn IsTypeOfFn) *Type       { t.IsTypeOf = fn; return t }
func (t *Type) SetSerialize(fn SerializeFn) *Type     { t.Serialize = fn; return t }
func (t *Type) SetParseValue(fn ParseValueFn) *Type   { t.ParseValue = fn; return t }
func (t *Type) SetResolveField(fn ResolveFn) *Type    { t.ResolveField = fn; return t }

func NewField(name, description string, ref *TypeRef) *Field {
	return &Field{Name: name, Description: description, Type: ref}
}

func (f *Field) AddArgument(v *InputValue) *Field { f.Arguments = append(f.Arguments, v); return f }
func (f *Field) SetResolve(fn ResolveFn) *Field   { f.Resolve = fn; return f }

func (f *Field) Deprecate(reason string) *Field {
	f.IsDeprecated = true
	f.DeprecationReason = reason
	return f
}

func NewInputValue(name, description string, ref *TypeRef) *InputValue {
	return &InputValue{Name: name, Description: description, Type: ref}
}

func (v *InputValue) SetDefault(value any) *InputValue {
	v.DefaultValue = value
	v.HasDefault = true
	return v
}

func (v *InputValue) Deprecate(reason string) *InputValue {
	v.IsDeprecated = true
	v.DeprecationReason = reason
	return v
}

func NewEnumValue(name, description string) *EnumValue {
	return &EnumValue{Name: name, Description: description}
}

func (v *EnumValue) Deprecate(reason string) *EnumValue {
	v.IsDeprecated = true
	v.DeprecationReason = reason
	return v
}

func NewDirective(name, description string) *Directive {
	return &Directive{Name: name, Description: description}
}

func (d *Directive) AddArgument(v *InputValue) *Directive {
	d.Arguments = append(d.Arguments, v)
	return d
}

func (d *Directive) SetRepeatable(r bool) *Directive { d.IsRepeatable = r; return d }

func (d *Directive) AddLocations(locs ...string) *Directive {
	d.Locations = append(d.Locations, locs...)
	return d
}

// Resolvers binds behavior to an SDL-built schema.
type Resolvers struct {
	// Fields maps "Type.field" to a resolver.
	Fields map[string]ResolveFn
	// Types maps a type name to its type-level hooks.
	Types map[string]TypeResolvers
}

// TypeResolvers holds the per-type hooks for BuildFromSDL.
type TypeResolvers struct {
	ResolveType  ResolveTypeFn
	IsTypeOf     IsTypeOfFn
	Serialize    SerializeFn
	ParseValue   ParseValueFn
	ResolveField ResolveFn
}

// BuildFromSDL parses an SDL document and returns the corresponding
// executable schema with builtins registered and resolvers attached.
func BuildFromSDL(sdl string, res Resolvers) (*Schema, error) {
	doc, err := language.ParseSchema("schema.graphql", sdl)
	if err != nil {
		return nil, fmt.Errorf("parse sdl: %w", err)
	}

	s := NewSchema("")
	s.AddType(stringType).
		AddType(intType).
		AddType(floatType).
		AddType(booleanType).
		AddType(idType)
	s.AddDirective(includeDirective).
		AddDirective(skipDirective).
		AddDirective(deprecatedDirective)

	defs := append(language.DefinitionList{}, doc.Definitions...)
	defs = append(defs, doc.Extensions...)
	for _, def := range defs {
		t, err := buildDefinition(def)
		if err != nil {
			return nil, err
		}
		if existing, ok := s.Types[t.Name]; ok && existing.Kind == t.Kind {
			mergeType(existing, t)
			continue
		}
		s.AddType(t)
	}

	s.SetQueryType("Query").SetMutationType("Mutation").SetSubscriptionType("Subscription")
	for _, sd := range doc.Schema {
		for _, ot := range sd.OperationTypes {
			switch ot.Operation {
			case language.Query:
				s.SetQueryType(ot.Type)
			case language.Mutation:
				s.SetMutationType(ot.Type)
			case language.Subscription:
				s.SetSubscriptionType(ot.Type)
			}
		}
	}
	if _, ok := s.Types[s.MutationType]; !ok {
		s.MutationType = ""
	}
	if _, ok := s.Types[s.SubscriptionType]; !ok {
		s.SubscriptionType = ""
	}

	for _, dd := range doc.Directives {
		d := NewDirective(dd.Name, dd.Description).SetRepeatable(dd.IsRepeatable)
		for _, loc := range dd.Locations {
			d.AddLocations(string(loc))
		}
		for _, arg := range dd.Arguments {
			d.AddArgument(buildSDLInputValue(arg.Name, arg.Description, arg.Type, arg.DefaultValue))
		}
		s.AddDirective(d)
	}

	if err := attachResolvers(s, res); err != nil {
		return nil, err
	}
	return s, nil
}

func buildDefinition(def *language.Definition) (*Type, error) {
	switch def.Kind {
	case language.Object, language.Interface:
		kind := TypeKindObject
		if def.Kind == language.Interface {
			kind = TypeKindInterface
		}
		t := NewType(def.Name, kind, def.Description)
		for _, iface := range def.Interfaces {
			t.AddInterface(iface)
		}
		for _, fd := range def.Fields {
			f := NewField(fd.Name, fd.Description, TypeRefFromAST(fd.Type))
			for _, arg := range fd.Arguments {
				f.AddArgument(buildSDLInputValue(arg.Name, arg.Description, arg.Type, arg.DefaultValue))
			}
			if reason, ok := deprecationReason(fd.Directives); ok {
				f.Deprecate(reason)
			}
			t.AddField(f)
		}
		return t, nil
	case language.Union:
		t := NewType(def.Name, TypeKindUnion, def.Description)
		for _, name := range def.Types {
			t.AddPossibleType(name)
		}
		return t, nil
	case language.Enum:
		t := NewType(def.Name, TypeKindEnum, def.Description)
		for _, ev := range def.EnumValues {
			v := NewEnumValue(ev.Name, ev.Description)
			if reason, ok := deprecationReason(ev.Directives); ok {
				v.Deprecate(reason)
			}
			t.AddEnumValue(v)
		}
		return t, nil
	case language.Scalar:
		return NewType(def.Name, TypeKindScalar, def.Description), nil
	case language.InputObject:
		t := NewType(def.Name, TypeKindInputObject, def.Description)
		for _, fd := range def.Fields {
			t.AddInputField(buildSDLInputValue(fd.Name, fd.Description, fd.Type, fd.DefaultValue))
		}
		return t, nil
	}
	return nil, fmt.Errorf("unsupported definition kind %q for %s", def.Kind, def.Name)
}

func mergeType(dst, src *Type) {
	dst.Fields = append(dst.Fields, src.Fields...)
	dst.Interfaces = append(dst.Interfaces, src.Interfaces...)
	dst.PossibleTypes = append(dst.PossibleTypes, src.PossibleTypes...)
	dst.EnumValues = append(dst.EnumValues, src.EnumValues...)
	dst.InputFields = append(dst.InputFields, src.InputFields...)
}

func buildSDLInputValue(name, description string, ref *language.Type, def *language.Value) *InputValue {
	v := NewInputValue(name, description, TypeRefFromAST(ref))
	if def != nil {
		v.SetDefault(language.GoValue(def, nil))
	}
	return v
}

func deprecationReason(directives language.DirectiveList) (string, bool) {
	d := directives.ForName("deprecated")
	if d == nil {
		return "", false
	}
	for _, arg := range d.Arguments {
		if arg.Name == "reason" {
			if s, ok := language.GoValue(arg.Value, nil).(string); ok {
				return s, true
			}
		}
	}
	return "No longer supported", true
}

// TypeRefFromAST converts a gqlparser type node into a TypeRef.
func TypeRefFromAST(t *language.Type) *TypeRef {
	if t == nil {
		return nil
	}
	if t.NonNull {
		inner := *t
		inner.NonNull = false
		return NonNullType(TypeRefFromAST(&inner))
	}
	if t.NamedType != "" {
		return NamedType(t.NamedType)
	}
	return ListType(TypeRefFromAST(t.Elem))
}

func attachResolvers(s *Schema, res Resolvers) error {
	for key, fn := range res.Fields {
		typeName, fieldName, ok := splitFieldKey(key)
		if !ok {
			return fmt.Errorf("invalid resolver key %q: want \"Type.field\"", key)
		}
		t := s.Types[typeName]
		if t == nil {
			return fmt.Errorf("resolver %q: unknown type %s", key, typeName)
		}
		f := t.GetField(fieldName)
		if f == nil {
			return fmt.Errorf("resolver %q: type %s has no field %s", key, typeName, fieldName)
		}
		f.SetResolve(fn)
	}
	for name, tr := range res.Types {
		t := s.Types[name]
		if t == nil {
			return fmt.Errorf("type resolvers for unknown type %s", name)
		}
		if tr.ResolveType != nil {
			t.SetResolveType(tr.ResolveType)
		}
		if tr.IsTypeOf != nil {
			t.SetIsTypeOf(tr.IsTypeOf)
		}
		if tr.Serialize != nil {
			t.SetSerialize(tr.Serialize)
		}
		if tr.ParseValue != nil {
			t.SetParseValue(tr.ParseValue)
		}
		if tr.ResolveField != nil {
			t.SetResolveField(tr.ResolveField)
		}
	}
	return nil
}

func splitFieldKey(key string) (string, string, bool) {
	for i := 0; i < len(key); i++ {
		if key[i] == '.' {
			if i == 0 || i == len(key)-1 {
				return "", "", false
			}
			return key[:i], key[i+1:], true
		}
	}
	return "", "", false
}
