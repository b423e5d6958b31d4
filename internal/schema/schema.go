package schema

import (
	"context"

	language "github.com/weftql/weft/internal/language"
)

// Path locates a value in a response tree. Elements are field result keys
// (string) or list indices (int).
type Path []any

// Append returns a new Path with elem added. The receiver is not modified.
func (p Path) Append(elem any) Path {
	next := make(Path, len(p)+1)
	copy(next, p)
	next[len(p)] = elem
	return next
}

// ResolveFn resolves a field value. The returned value may be a thenable
// recognized by the executor's promise adapter.
type ResolveFn func(ctx context.Context, source any, args map[string]any, info *ResolveInfo) (any, error)

// ResolveTypeFn resolves the concrete object type for a value of an abstract
// type. It may return a *Type, a type name string, or nil to fall back to
// isTypeOf probing.
type ResolveTypeFn func(ctx context.Context, value any, info *ResolveInfo) (any, error)

// IsTypeOfFn reports whether a value belongs to the object type it is
// attached to.
type IsTypeOfFn func(ctx context.Context, value any, info *ResolveInfo) bool

// SerializeFn converts a leaf value into its response representation.
type SerializeFn func(value any) (any, error)

// ParseValueFn coerces an input value for a scalar type.
type ParseValueFn func(value any) (any, error)

// ResolveInfo carries static information about the field being resolved.
type ResolveInfo struct {
	FieldName      string
	FieldNodes     []*language.Field
	ReturnType     *TypeRef
	ParentType     *Type
	Path           Path
	Schema         *Schema
	Fragments      map[string]*language.FragmentDefinition
	RootValue      any
	Operation      *language.OperationDefinition
	VariableValues map[string]any
}

// Schema is the complete executable GraphQL schema.
type Schema struct {
	QueryType        string
	MutationType     string
	SubscriptionType string
	Types            map[string]*Type
	Directives       map[string]*Directive
	Description      string

	// typeOrder preserves registration order so that possible-type iteration
	// is deterministic.
	typeOrder []string

	config Config
}

// Config holds optional schema-level hooks.
type Config struct {
	// TypeLoader is consulted by GetType for names not yet registered.
	// A loaded type is registered before being returned.
	TypeLoader func(name string) *Type
}

// GetConfig returns the schema configuration.
func (s *Schema) GetConfig() Config { return s.config }

// SetConfig replaces the schema configuration.
func (s *Schema) SetConfig(c Config) *Schema { s.config = c; return s }

// GetType returns the named type, consulting the configured TypeLoader for
// unknown names. Returns nil when the type cannot be found.
func (s *Schema) GetType(name string) *Type {
	if t, ok := s.Types[name]; ok {
		return t
	}
	if s.config.TypeLoader != nil {
		if t := s.config.TypeLoader(name); t != nil {
			s.AddType(t)
			return t
		}
	}
	return nil
}

// TypeNames returns all registered type names in registration order.
func (s *Schema) TypeNames() []string {
	return append([]string(nil), s.typeOrder...)
}

// GetQueryType returns the root query type (nil if absent).
func (s *Schema) GetQueryType() *Type { return s.Types[s.QueryType] }

// GetMutationType returns the root mutation type (nil if absent).
func (s *Schema) GetMutationType() *Type { return s.Types[s.MutationType] }

// GetSubscriptionType returns the root subscription type (nil if absent).
func (s *Schema) GetSubscriptionType() *Type { return s.Types[s.SubscriptionType] }

// GetPossibleTypes returns the concrete object types a value of the given
// abstract type may resolve to: for an interface, its implementing object
// types in schema registration order; for a union, its members in the
// order the union declares them.
func (s *Schema) GetPossibleTypes(abstract *Type) []*Type {
	if abstract == nil {
		return nil
	}
	switch abstract.Kind {
	case TypeKindUnion:
		out := make([]*Type, 0, len(abstract.PossibleTypes))
		for _, name := range abstract.PossibleTypes {
			if t := s.Types[name]; t != nil && t.Kind == TypeKindObject {
				out = append(out, t)
			}
		}
		return out
	case TypeKindInterface:
		var out []*Type
		for _, name := range s.typeOrder {
			t := s.Types[name]
			if t == nil || t.Kind != TypeKindObject {
				continue
			}
			if t.Implements(abstract.Name) {
				out = append(out, t)
			}
		}
		return out
	}
	return nil
}

// IsPossibleType reports whether object is a possible runtime type of the
// abstract type.
func (s *Schema) IsPossibleType(abstract, object *Type) bool {
	if abstract == nil || object == nil || object.Kind != TypeKindObject {
		return false
	}
	switch abstract.Kind {
	case TypeKindUnion:
		for _, name := range abstract.PossibleTypes {
			if name == object.Name {
				return true
			}
		}
		return false
	case TypeKindInterface:
		return object.Implements(abstract.Name)
	}
	return false
}

// Type is a named GraphQL type (object, interface, union, scalar, enum, input).
type Type struct {
	Name           string
	Kind           TypeKind
	Description    string
	Fields         []*Field      // For OBJECT and INTERFACE
	Interfaces     []string      // For OBJECT and INTERFACE
	PossibleTypes  []string      // For UNION
	EnumValues     []*EnumValue  // For ENUM
	InputFields    []*InputValue // For INPUT_OBJECT
	SpecifiedByURL *string
	OneOf          bool

	// ResolveType resolves concrete types for INTERFACE and UNION values.
	ResolveType ResolveTypeFn
	// IsTypeOf probes whether a value belongs to this OBJECT type.
	IsTypeOf IsTypeOfFn
	// Serialize converts SCALAR and ENUM values for the response.
	Serialize SerializeFn
	// ParseValue coerces SCALAR input values.
	ParseValue ParseValueFn
	// ResolveField is the type-wide default resolver for OBJECT fields
	// without their own Resolve.
	ResolveField ResolveFn
}

// GetField returns the named field definition, or nil.
func (t *Type) GetField(name string) *Field {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// HasField reports whether the type declares the named field.
func (t *Type) HasField(name string) bool { return t.GetField(name) != nil }

// Implements reports whether the type lists the named interface.
func (t *Type) Implements(iface string) bool {
	for _, name := range t.Interfaces {
		if name == iface {
			return true
		}
	}
	return false
}

// IsLeaf reports whether the type is a scalar or enum.
func (t *Type) IsLeaf() bool {
	return t.Kind == TypeKindScalar || t.Kind == TypeKindEnum
}

// IsAbstract reports whether the type is an interface or union.
func (t *Type) IsAbstract() bool {
	return t.Kind == TypeKindInterface || t.Kind == TypeKindUnion
}

// IsComposite reports whether selection sets may be applied to the type.
func (t *Type) IsComposite() bool {
	return t.Kind == TypeKindObject || t.IsAbstract()
}

// Field represents a field on an object or interface.
type Field struct {
	Name              string
	Description       string
	Type              *TypeRef
	Arguments         []*InputValue
	Resolve           ResolveFn
	IsDeprecated      bool
	DeprecationReason string
}

// GetArgument returns the named argument definition, or nil.
func (f *Field) GetArgument(name string) *InputValue {
	for _, a := range f.Arguments {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// TypeKind represents the kind of GraphQL type.
type TypeKind string

const (
	TypeKindScalar      TypeKind = "SCALAR"
	TypeKindObject      TypeKind = "OBJECT"
	TypeKindInterface   TypeKind = "INTERFACE"
	TypeKindUnion       TypeKind = "UNION"
	TypeKindEnum        TypeKind = "ENUM"
	TypeKindInputObject TypeKind = "INPUT_OBJECT"
)

// TypeRef references a type, possibly wrapped in List and Non-Null.
type TypeRef struct {
	Kind   TypeRefKind
	OfType *TypeRef // For LIST and NON_NULL
	Named  string   // For NAMED
}

type TypeRefKind string

const (
	TypeRefKindNamed   TypeRefKind = "NAMED"
	TypeRefKindList    TypeRefKind = "LIST"
	TypeRefKindNonNull TypeRefKind = "NON_NULL"
)

func (t *TypeRef) IsNonNull() bool {
	return t != nil && t.Kind == TypeRefKindNonNull
}

func (t *TypeRef) IsList() bool {
	return t != nil && t.Kind == TypeRefKindList
}

// Unwrap removes one layer of Non-Null or List wrapping.
func (t *TypeRef) Unwrap() *TypeRef {
	if t.Kind == TypeRefKindNonNull || t.Kind == TypeRefKindList {
		return t.OfType
	}
	return t
}

// GetNamedType returns the innermost named type.
func (t *TypeRef) GetNamedType() string {
	current := t
	for current != nil {
		if current.Named != "" {
			return current.Named
		}
		current = current.OfType
	}
	return ""
}

// String renders the reference in SDL notation.
func (t *TypeRef) String() string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case TypeRefKindNonNull:
		return t.OfType.String() + "!"
	case TypeRefKindList:
		return "[" + t.OfType.String() + "]"
	default:
		return t.Named
	}
}

type EnumValue struct {
	Name              string
	Description       string
	IsDeprecated      bool
	DeprecationReason string
}

type InputValue struct {
	Name              string
	Description       string
	Type              *TypeRef
	DefaultValue      any
	HasDefault        bool
	IsDeprecated      bool
	DeprecationReason string
}

type Directive struct {
	Name         string
	Description  string
	Locations    []string
	Arguments    []*InputValue
	IsRepeatable bool
}

func NonNullType(t *TypeRef) *TypeRef { return &TypeRef{Kind: TypeRefKindNonNull, OfType: t} }
func ListType(t *TypeRef) *TypeRef    { return &TypeRef{Kind: TypeRefKindList, OfType: t} }
func NamedType(name string) *TypeRef  { return &TypeRef{Kind: TypeRefKindNamed, Named: name} }

// IsNonNull reports whether the type is wrapped with Non-Null.
func IsNonNull(t *TypeRef) bool { return t != nil && t.IsNonNull() }

// IsList reports whether the type's outermost wrapper is a list.
func IsList(t *TypeRef) bool { return t != nil && t.IsList() }

// Unwrap removes one layer of Non-Null or List wrapping.
func Unwrap(t *TypeRef) *TypeRef { return t.Unwrap() }

// GetNamedType returns the innermost named type for the given reference.
func GetNamedType(t *TypeRef) string { return t.GetNamedType() }
