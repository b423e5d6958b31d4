package executor

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	schema "github.com/weftql/weft/internal/schema"
)

type account struct {
	Name    string
	Balance int
	hidden  string
}

func (a account) Greeting() string { return "hello " + a.Name }

func TestDefaultFieldResolver(t *testing.T) {
	info := func(name string) *schema.ResolveInfo { return &schema.ResolveInfo{FieldName: name} }
	ctx := context.Background()

	t.Run("map lookup", func(t *testing.T) {
		v, err := DefaultFieldResolver(ctx, map[string]any{"size": 3}, nil, info("size"))
		if err != nil || v != 3 {
			t.Fatalf("got %v %v", v, err)
		}
	})

	t.Run("map miss is null", func(t *testing.T) {
		v, err := DefaultFieldResolver(ctx, map[string]any{}, nil, info("size"))
		if err != nil || v != nil {
			t.Fatalf("got %v %v", v, err)
		}
	})

	t.Run("struct field case-insensitive", func(t *testing.T) {
		v, err := DefaultFieldResolver(ctx, account{Name: "ada"}, nil, info("name"))
		if err != nil || v != "ada" {
			t.Fatalf("got %v %v", v, err)
		}
	})

	t.Run("pointer to struct", func(t *testing.T) {
		v, err := DefaultFieldResolver(ctx, &account{Balance: 12}, nil, info("balance"))
		if err != nil || v != 12 {
			t.Fatalf("got %v %v", v, err)
		}
	})

	t.Run("method fallback", func(t *testing.T) {
		v, err := DefaultFieldResolver(ctx, account{Name: "ada"}, nil, info("greeting"))
		if err != nil || v != "hello ada" {
			t.Fatalf("got %v %v", v, err)
		}
	})

	t.Run("unexported field invisible", func(t *testing.T) {
		v, err := DefaultFieldResolver(ctx, account{hidden: "x"}, nil, info("hidden"))
		if err != nil || v != nil {
			t.Fatalf("got %v %v", v, err)
		}
	})

	t.Run("callable value invoked", func(t *testing.T) {
		src := map[string]any{
			"lazy":    func() any { return "computed" },
			"failing": func() (any, error) { return nil, errTest },
		}
		v, err := DefaultFieldResolver(ctx, src, nil, info("lazy"))
		if err != nil || v != "computed" {
			t.Fatalf("got %v %v", v, err)
		}
		if _, err := DefaultFieldResolver(ctx, src, nil, info("failing")); err != errTest {
			t.Fatalf("want errTest, got %v", err)
		}
	})

	t.Run("nil source", func(t *testing.T) {
		v, err := DefaultFieldResolver(ctx, nil, nil, info("anything"))
		if err != nil || v != nil {
			t.Fatalf("got %v %v", v, err)
		}
	})
}

// End to end over plain JSON-like data with no resolvers at all.
func TestDefaultFieldResolver_DrivesWholeQuery(t *testing.T) {
	person := newObjectType("Person",
		schema.NewField("name", "", schema.NamedType("String")),
		schema.NewField("friends", "", schema.ListType(schema.NamedType("Person"))),
	)
	query := newObjectType("Query",
		schema.NewField("me", "", schema.NamedType("Person")),
	)
	s := newQuerySchema(query, person)

	root := map[string]any{
		"me": map[string]any{
			"name": "ada",
			"friends": []any{
				map[string]any{"name": "grace"},
				map[string]any{"name": "alan"},
			},
		},
	}

	res := New(s).Execute(context.Background(), Request{
		Document:  mustParseQuery(t, `{ me { name friends { name } } }`),
		RootValue: root,
	})

	wantData := map[string]any{
		"me": map[string]any{
			"name": "ada",
			"friends": []any{
				map[string]any{"name": "grace"},
				map[string]any{"name": "alan"},
			},
		},
	}
	if diff := cmp.Diff(wantData, dataOf(res)); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}
