package executor

import (
	"context"
	"errors"
	"sync"
	"testing"

	language "github.com/weftql/weft/internal/language"
	schema "github.com/weftql/weft/internal/schema"
)

var errTest = errors.New("test error")

func mustParseQuery(t *testing.T, source string) *language.QueryDocument {
	t.Helper()
	doc, err := language.ParseQuery(source)
	if err != nil {
		t.Fatalf("parse query: %v", err)
	}
	return doc
}

// dataOf converts the result tree to plain maps for comparison.
func dataOf(res *ExecutionResult) any {
	if res.Data == nil {
		return nil
	}
	if m, ok := res.Data.(*ResultMap); ok {
		return m.ToMap()
	}
	return res.Data
}

// errInfo is the comparable projection of a GraphQLError.
type errInfo struct {
	Message string
	Path    string
}

func errorsOf(res *ExecutionResult) []errInfo {
	out := make([]errInfo, len(res.Errors))
	for i, e := range res.Errors {
		out[i] = errInfo{Message: e.Message, Path: pathToString(e.Path)}
	}
	return out
}

// keysOf returns the response keys of a nested result object.
func keysOf(t *testing.T, res *ExecutionResult, path ...any) []string {
	t.Helper()
	cur := res.Data
	for _, elem := range path {
		switch e := elem.(type) {
		case string:
			m, ok := cur.(*ResultMap)
			if !ok {
				t.Fatalf("keysOf: %v is not an object at %v", cur, e)
			}
			cur, _ = m.Get(e)
		case int:
			arr, ok := cur.([]any)
			if !ok {
				t.Fatalf("keysOf: %v is not a list at %v", cur, e)
			}
			cur = arr[e]
		}
	}
	m, ok := cur.(*ResultMap)
	if !ok {
		t.Fatalf("keysOf: value at %v is not an object", path)
	}
	return m.Keys()
}

// callLog records resolver invocations in order.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(name string) {
	l.mu.Lock()
	l.calls = append(l.calls, name)
	l.mu.Unlock()
}

func (l *callLog) get() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

// valueResolver returns v.
func valueResolver(v any) schema.ResolveFn {
	return func(ctx context.Context, source any, args map[string]any, info *schema.ResolveInfo) (any, error) {
		return v, nil
	}
}

// errorResolver fails with err.
func errorResolver(err error) schema.ResolveFn {
	return func(ctx context.Context, source any, args map[string]any, info *schema.ResolveInfo) (any, error) {
		return nil, err
	}
}

// loggedResolver records the field name before returning v.
func loggedResolver(log *callLog, name string, v any) schema.ResolveFn {
	return func(ctx context.Context, source any, args map[string]any, info *schema.ResolveInfo) (any, error) {
		log.add(name)
		return v, nil
	}
}

func newScalarType(name string) *schema.Type {
	switch name {
	case "String":
		return schema.NewType(name, schema.TypeKindScalar, "").SetSerialize(schema.SerializeString)
	case "Int":
		return schema.NewType(name, schema.TypeKindScalar, "").SetSerialize(schema.SerializeInt)
	case "Boolean":
		return schema.NewType(name, schema.TypeKindScalar, "").SetSerialize(schema.SerializeBoolean)
	case "ID":
		return schema.NewType(name, schema.TypeKindScalar, "").SetSerialize(schema.SerializeID)
	default:
		return schema.NewType(name, schema.TypeKindScalar, "")
	}
}

func newObjectType(name string, fields ...*schema.Field) *schema.Type {
	t := schema.NewType(name, schema.TypeKindObject, "")
	for _, f := range fields {
		t.AddField(f)
	}
	return t
}

// newQuerySchema builds a schema rooted at the given Query type plus the
// String scalar, which nearly every test needs.
func newQuerySchema(queryType *schema.Type, extra ...*schema.Type) *schema.Schema {
	s := schema.NewSchema("").SetQueryType("Query")
	s.AddType(queryType)
	s.AddType(newScalarType("String"))
	for _, t := range extra {
		s.AddType(t)
	}
	return s
}
