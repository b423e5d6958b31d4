package executor

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	promise "github.com/weftql/weft/internal/promise"
	schema "github.com/weftql/weft/internal/schema"
)

func TestComplete_LeafSerialization(t *testing.T) {
	query := newObjectType("Query",
		schema.NewField("s", "", schema.NamedType("String")).SetResolve(valueResolver("str")),
		schema.NewField("n", "", schema.NamedType("Int")).SetResolve(valueResolver(41)),
		schema.NewField("b", "", schema.NamedType("Boolean")).SetResolve(valueResolver(true)),
		schema.NewField("bad", "", schema.NamedType("Int")).SetResolve(valueResolver("not a number")),
	)
	s := newQuerySchema(query, newScalarType("Int"), newScalarType("Boolean"))

	res := New(s).Execute(context.Background(), Request{Document: mustParseQuery(t, `{ s n b bad }`)})

	wantData := map[string]any{"s": "str", "n": 41, "b": true, "bad": nil}
	if diff := cmp.Diff(wantData, dataOf(res)); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
	wantErrs := []errInfo{
		{Message: "Int cannot represent non-integer value: not a number (string)", Path: "bad"},
	}
	if diff := cmp.Diff(wantErrs, errorsOf(res)); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestComplete_EnumValidation(t *testing.T) {
	color := schema.NewType("Color", schema.TypeKindEnum, "")
	color.AddEnumValue(schema.NewEnumValue("RED", ""))
	color.AddEnumValue(schema.NewEnumValue("GREEN", ""))
	query := newObjectType("Query",
		schema.NewField("ok", "", schema.NamedType("Color")).SetResolve(valueResolver("GREEN")),
		schema.NewField("bogus", "", schema.NamedType("Color")).SetResolve(valueResolver("MAGENTA")),
	)
	s := newQuerySchema(query, color)

	res := New(s).Execute(context.Background(), Request{Document: mustParseQuery(t, `{ ok bogus }`)})

	wantData := map[string]any{"ok": "GREEN", "bogus": nil}
	if diff := cmp.Diff(wantData, dataOf(res)); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
	wantErrs := []errInfo{
		{Message: `Enum Color cannot represent value: "MAGENTA".`, Path: "bogus"},
	}
	if diff := cmp.Diff(wantErrs, errorsOf(res)); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestComplete_ListOfLists(t *testing.T) {
	query := newObjectType("Query",
		schema.NewField("grid", "", schema.ListType(schema.ListType(schema.NamedType("Int")))).
			SetResolve(valueResolver([]any{[]any{1, 2}, nil, []any{3}})),
	)
	s := newQuerySchema(query, newScalarType("Int"))

	res := New(s).Execute(context.Background(), Request{Document: mustParseQuery(t, `{ grid }`)})

	wantData := map[string]any{"grid": []any{[]any{1, 2}, nil, []any{3}}}
	if diff := cmp.Diff(wantData, dataOf(res)); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestComplete_NonListValueForListType(t *testing.T) {
	query := newObjectType("Query",
		schema.NewField("xs", "", schema.ListType(schema.NamedType("Int"))).
			SetResolve(valueResolver(7)),
	)
	s := newQuerySchema(query, newScalarType("Int"))

	res := New(s).Execute(context.Background(), Request{Document: mustParseQuery(t, `{ xs }`)})

	wantData := map[string]any{"xs": nil}
	if diff := cmp.Diff(wantData, dataOf(res)); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
	wantErrs := []errInfo{
		{Message: "Expected a list for field Query.xs, got int.", Path: "xs"},
	}
	if diff := cmp.Diff(wantErrs, errorsOf(res)); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestComplete_NonNullListElement_StrikesWholeList(t *testing.T) {
	query := newObjectType("Query",
		schema.NewField("xs", "", schema.ListType(schema.NonNullType(schema.NamedType("Int")))).
			SetResolve(valueResolver([]any{1, nil, 3})),
	)
	s := newQuerySchema(query, newScalarType("Int"))

	res := New(s).Execute(context.Background(), Request{Document: mustParseQuery(t, `{ xs }`)})

	wantData := map[string]any{"xs": nil}
	if diff := cmp.Diff(wantData, dataOf(res)); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
	wantErrs := []errInfo{
		{Message: "Cannot return null for non-nullable field Query.xs.", Path: "xs[1]"},
	}
	if diff := cmp.Diff(wantErrs, errorsOf(res)); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestComplete_RootNonNullViolation_NullsData(t *testing.T) {
	query := newObjectType("Query",
		schema.NewField("must", "", schema.NonNullType(schema.NamedType("String"))).
			SetResolve(valueResolver(nil)),
	)
	s := newQuerySchema(query)

	res := New(s).Execute(context.Background(), Request{Document: mustParseQuery(t, `{ must }`)})

	if !res.HasData {
		t.Fatalf("execution reached the field; data key must be present")
	}
	if res.Data != nil {
		t.Fatalf("want nil data, got %v", dataOf(res))
	}
	wantErrs := []errInfo{
		{Message: "Cannot return null for non-nullable field Query.must.", Path: "must"},
	}
	if diff := cmp.Diff(wantErrs, errorsOf(res)); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestComplete_AbstractResolveTypeByName(t *testing.T) {
	res := New(newStarWarsSchema()).Execute(context.Background(), Request{
		Document: mustParseQuery(t, `{ hero { __typename name ... on Droid { primaryFunction } } }`),
	})

	wantData := map[string]any{
		"hero": map[string]any{
			"__typename":      "Droid",
			"name":            "R2-D2",
			"primaryFunction": "Astromech",
		},
	}
	if diff := cmp.Diff(wantData, dataOf(res)); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestComplete_AbstractSlowPath_CallsEveryIsTypeOf(t *testing.T) {
	log := &callLog{}
	pet := schema.NewType("Pet", schema.TypeKindInterface, "")
	pet.AddField(schema.NewField("name", "", schema.NamedType("String")))

	newPet := func(name string, matches bool) *schema.Type {
		t := newObjectType(name,
			schema.NewField("name", "", schema.NamedType("String")).SetResolve(valueResolver(name)),
		).AddInterface("Pet")
		t.SetIsTypeOf(func(ctx context.Context, value any, info *schema.ResolveInfo) bool {
			log.add(name)
			return matches
		})
		return t
	}
	// Cat and Dog both match; schema order must pick Cat, and Dog's probe
	// still runs.
	cat := newPet("Cat", true)
	dog := newPet("Dog", true)
	fish := newPet("Fish", false)

	query := newObjectType("Query",
		schema.NewField("pet", "", schema.NamedType("Pet")).SetResolve(valueResolver(struct{}{})),
	)
	s := newQuerySchema(query, pet, cat, dog, fish)

	res := New(s).Execute(context.Background(), Request{Document: mustParseQuery(t, `{ pet { name } }`)})

	wantData := map[string]any{"pet": map[string]any{"name": "Cat"}}
	if diff := cmp.Diff(wantData, dataOf(res)); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
	wantCalls := []string{"Cat", "Dog", "Fish"}
	if diff := cmp.Diff(wantCalls, log.get()); diff != "" {
		t.Fatalf("isTypeOf probes mismatch (-want +got):\n%s", diff)
	}
}

func TestComplete_AbstractResolvesToImpossibleType(t *testing.T) {
	iface := schema.NewType("Node", schema.TypeKindInterface, "")
	iface.AddField(schema.NewField("id", "", schema.NamedType("String")))
	iface.SetResolveType(func(ctx context.Context, value any, info *schema.ResolveInfo) (any, error) {
		return "Stranger", nil
	})
	stranger := newObjectType("Stranger",
		schema.NewField("id", "", schema.NamedType("String")),
	) // does not implement Node
	query := newObjectType("Query",
		schema.NewField("node", "", schema.NamedType("Node")).SetResolve(valueResolver(struct{}{})),
	)
	s := newQuerySchema(query, iface, stranger)

	res := New(s).Execute(context.Background(), Request{Document: mustParseQuery(t, `{ node { id } }`)})

	wantData := map[string]any{"node": nil}
	if diff := cmp.Diff(wantData, dataOf(res)); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
	wantErrs := []errInfo{
		{Message: `Runtime Object type "Stranger" is not a possible type for "Node".`, Path: "node"},
	}
	if diff := cmp.Diff(wantErrs, errorsOf(res)); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestComplete_IsTypeOfRejectsValue(t *testing.T) {
	thing := newObjectType("Thing",
		schema.NewField("id", "", schema.NamedType("String")).SetResolve(valueResolver("1")),
	)
	thing.SetIsTypeOf(func(ctx context.Context, value any, info *schema.ResolveInfo) bool {
		return false
	})
	query := newObjectType("Query",
		schema.NewField("thing", "", schema.NamedType("Thing")).SetResolve(valueResolver("wrong shape")),
	)
	s := newQuerySchema(query, thing)

	res := New(s).Execute(context.Background(), Request{Document: mustParseQuery(t, `{ thing { id } }`)})

	wantData := map[string]any{"thing": nil}
	if diff := cmp.Diff(wantData, dataOf(res)); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
	wantErrs := []errInfo{
		{Message: `Expected value of type "Thing" but received: wrong shape.`, Path: "thing"},
	}
	if diff := cmp.Diff(wantErrs, errorsOf(res)); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestComplete_ThenableValues(t *testing.T) {
	query := newObjectType("Query",
		schema.NewField("later", "", schema.NamedType("String")).
			SetResolve(valueResolver(promise.Go(func() (any, error) { return "done", nil }))),
		schema.NewField("failed", "", schema.NamedType("String")).
			SetResolve(valueResolver(promise.Go(func() (any, error) { return nil, errors.New("boom") }))),
	)
	s := newQuerySchema(query)

	res := New(s).Execute(context.Background(), Request{Document: mustParseQuery(t, `{ later failed }`)})

	wantData := map[string]any{"later": "done", "failed": nil}
	if diff := cmp.Diff(wantData, dataOf(res)); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
	wantErrs := []errInfo{{Message: "boom", Path: "failed"}}
	if diff := cmp.Diff(wantErrs, errorsOf(res)); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestComplete_ThenableListElements(t *testing.T) {
	query := newObjectType("Query",
		schema.NewField("xs", "", schema.ListType(schema.NamedType("Int"))).
			SetResolve(valueResolver([]any{
				promise.Go(func() (any, error) { return 1, nil }),
				2,
				promise.Go(func() (any, error) { return 3, nil }),
			})),
	)
	s := newQuerySchema(query, newScalarType("Int"))

	res := New(s).Execute(context.Background(), Request{Document: mustParseQuery(t, `{ xs }`)})

	wantData := map[string]any{"xs": []any{1, 2, 3}}
	if diff := cmp.Diff(wantData, dataOf(res)); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestComplete_ResolverPanicBecomesFieldError(t *testing.T) {
	query := newObjectType("Query",
		schema.NewField("kaboom", "", schema.NamedType("String")).
			SetResolve(func(ctx context.Context, source any, args map[string]any, info *schema.ResolveInfo) (any, error) {
				panic("unexpected")
			}),
	)
	s := newQuerySchema(query)

	res := New(s).Execute(context.Background(), Request{Document: mustParseQuery(t, `{ kaboom }`)})

	wantData := map[string]any{"kaboom": nil}
	if diff := cmp.Diff(wantData, dataOf(res)); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
	wantErrs := []errInfo{{Message: "resolver panic: unexpected", Path: "kaboom"}}
	if diff := cmp.Diff(wantErrs, errorsOf(res)); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestComplete_UnknownReturnType(t *testing.T) {
	query := newObjectType("Query",
		schema.NewField("ghost", "", schema.NamedType("Phantom")).SetResolve(valueResolver("x")),
	)
	s := newQuerySchema(query)

	res := New(s).Execute(context.Background(), Request{Document: mustParseQuery(t, `{ ghost }`)})

	wantData := map[string]any{"ghost": nil}
	if diff := cmp.Diff(wantData, dataOf(res)); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
	wantErrs := []errInfo{{Message: `Unknown type "Phantom".`, Path: "ghost"}}
	if diff := cmp.Diff(wantErrs, errorsOf(res)); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestComplete_TypenameInsideObjects(t *testing.T) {
	res := New(newStarWarsSchema()).Execute(context.Background(), Request{
		Document: mustParseQuery(t, `{ human(id: "1002") { __typename name } __typename }`),
	})

	wantData := map[string]any{
		"human":      map[string]any{"__typename": "Human", "name": "Han Solo"},
		"__typename": "Query",
	}
	if diff := cmp.Diff(wantData, dataOf(res)); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestComplete_FieldErrorWrapsCause(t *testing.T) {
	rootErr := fmt.Errorf("db: %w", errors.New("connection refused"))
	query := newObjectType("Query",
		schema.NewField("x", "", schema.NamedType("String")).SetResolve(errorResolver(rootErr)),
	)
	s := newQuerySchema(query)

	res := New(s).Execute(context.Background(), Request{Document: mustParseQuery(t, `{ x }`)})

	if len(res.Errors) != 1 {
		t.Fatalf("want one error, got %v", errorsOf(res))
	}
	if !errors.Is(res.Errors[0], rootErr) {
		t.Fatalf("located error must wrap the resolver error")
	}
}
