package introspection

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	executor "github.com/weftql/weft/internal/executor"
	language "github.com/weftql/weft/internal/language"
	schema "github.com/weftql/weft/internal/schema"
)

func newFixtureSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.BuildFromSDL(`
		interface Named { name: String! }

		type Human implements Named {
			name: String!
			height(unit: String = "METER"): Int @deprecated(reason: "use stature")
			stature: Int
		}

		type Droid implements Named { name: String! }

		union Actor = Human | Droid

		type Query {
			actor: Actor
			human: Human
		}
	`, schema.Resolvers{})
	require.NoError(t, err)
	return s
}

func execute(t *testing.T, s *schema.Schema, query string) *executor.ExecutionResult {
	t.Helper()
	doc, err := language.ParseQuery(query)
	require.NoError(t, err)
	return executor.New(s).Execute(context.Background(), executor.Request{Document: doc})
}

func dataOf(res *executor.ExecutionResult) any {
	if m, ok := res.Data.(*executor.ResultMap); ok {
		return m.ToMap()
	}
	return res.Data
}

func TestExtendSchema_SchemaField(t *testing.T) {
	s := ExtendSchema(newFixtureSchema(t))

	res := execute(t, s, `{
		__schema {
			queryType { name kind }
			mutationType { name }
		}
	}`)
	require.Empty(t, res.Errors)

	want := map[string]any{
		"__schema": map[string]any{
			"queryType":    map[string]any{"name": "Query", "kind": "OBJECT"},
			"mutationType": nil,
		},
	}
	if diff := cmp.Diff(want, dataOf(res)); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestExtendSchema_TypeLookup(t *testing.T) {
	s := ExtendSchema(newFixtureSchema(t))

	res := execute(t, s, `{
		human: __type(name: "Human") {
			kind
			name
			interfaces { name }
			fields { name }
			allFields: fields(includeDeprecated: true) { name deprecationReason }
		}
		actor: __type(name: "Actor") {
			kind
			possibleTypes { name }
		}
		missing: __type(name: "Nope") { name }
	}`)
	require.Empty(t, res.Errors)

	want := map[string]any{
		"human": map[string]any{
			"kind":       "OBJECT",
			"name":       "Human",
			"interfaces": []any{map[string]any{"name": "Named"}},
			"fields": []any{
				map[string]any{"name": "name"},
				map[string]any{"name": "stature"},
			},
			"allFields": []any{
				map[string]any{"name": "name", "deprecationReason": nil},
				map[string]any{"name": "height", "deprecationReason": "use stature"},
				map[string]any{"name": "stature", "deprecationReason": nil},
			},
		},
		"actor": map[string]any{
			"kind": "UNION",
			"possibleTypes": []any{
				map[string]any{"name": "Human"},
				map[string]any{"name": "Droid"},
			},
		},
		"missing": nil,
	}
	if diff := cmp.Diff(want, dataOf(res)); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestExtendSchema_WrappedTypeRefs(t *testing.T) {
	s := ExtendSchema(newFixtureSchema(t))

	res := execute(t, s, `{
		__type(name: "Named") {
			fields {
				name
				type { kind name ofType { kind name } }
			}
		}
	}`)
	require.Empty(t, res.Errors)

	want := map[string]any{
		"__type": map[string]any{
			"fields": []any{
				map[string]any{
					"name": "name",
					"type": map[string]any{
						"kind": "NON_NULL", "name": nil,
						"ofType": map[string]any{"kind": "SCALAR", "name": "String"},
					},
				},
			},
		},
	}
	if diff := cmp.Diff(want, dataOf(res)); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestExtendSchema_ArgumentDefaultsRendered(t *testing.T) {
	s := ExtendSchema(newFixtureSchema(t))

	res := execute(t, s, `{
		__type(name: "Human") {
			fields(includeDeprecated: true) {
				name
				args { name defaultValue }
			}
		}
	}`)
	require.Empty(t, res.Errors)

	fields := dataOf(res).(map[string]any)["__type"].(map[string]any)["fields"].([]any)
	var heightArgs any
	for _, f := range fields {
		if f.(map[string]any)["name"] == "height" {
			heightArgs = f.(map[string]any)["args"]
		}
	}
	want := []any{map[string]any{"name": "unit", "defaultValue": `"METER"`}}
	if diff := cmp.Diff(want, heightArgs); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestExtendSchema_DoesNotTouchOriginal(t *testing.T) {
	original := newFixtureSchema(t)
	before := len(original.Types)
	_ = ExtendSchema(original)
	require.Len(t, original.Types, before)
	require.False(t, original.GetQueryType().HasField("__schema"))
}

func TestExtendSchema_MetaFieldsOnlyOnQueryRoot(t *testing.T) {
	s := ExtendSchema(newFixtureSchema(t))

	doc, err := language.ParseQuery(`{ human { __schema { queryType { name } } } }`)
	require.NoError(t, err)
	res := executor.New(s).Execute(context.Background(), executor.Request{
		Document:  doc,
		RootValue: map[string]any{"human": map[string]any{"name": "someone"}},
	})
	require.NotEmpty(t, res.Errors)
	require.Equal(t, "Cannot query field '__schema' on type 'Human'", res.Errors[0].Message)
}
