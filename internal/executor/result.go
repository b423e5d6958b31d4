package executor

import (
	"bytes"
	"encoding/json"
	"fmt"

	language "github.com/weftql/weft/internal/language"
	schema "github.com/weftql/weft/internal/schema"
)

// Path locates a value in the response tree. Alias of schema.Path so resolver
// infos and executor errors share one representation.
type Path = schema.Path

// Location is a position in the query source.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// GraphQLError is a located execution error.
type GraphQLError struct {
	Message    string         `json:"message"`
	Locations  []Location     `json:"locations,omitempty"`
	Path       Path           `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`

	cause error
}

func (e *GraphQLError) Error() string { return e.Message }

// Unwrap exposes the originating error, if any.
func (e *GraphQLError) Unwrap() error { return e.cause }

// newError creates an unlocated error.
func newError(format string, args ...any) *GraphQLError {
	return &GraphQLError{Message: fmt.Sprintf(format, args...)}
}

// locatedError wraps err with the positions of the field nodes and the
// response path. If err already is a *GraphQLError, that same error is
// returned, with its path and locations filled in only where they are unset.
func locatedError(err error, nodes []*language.Field, path Path) *GraphQLError {
	if ge, ok := err.(*GraphQLError); ok {
		if ge.Path == nil {
			ge.Path = path
		}
		if ge.Locations == nil {
			ge.Locations = nodeLocations(nodes)
		}
		return ge
	}
	return &GraphQLError{
		Message:   err.Error(),
		Locations: nodeLocations(nodes),
		Path:      path,
		cause:     err,
	}
}

func nodeLocations(nodes []*language.Field) []Location {
	var locs []Location
	for _, n := range nodes {
		if n == nil || n.Position == nil {
			continue
		}
		locs = append(locs, Location{Line: n.Position.Line, Column: n.Position.Column})
	}
	return locs
}

// ExecutionResult is the outcome of executing one operation.
type ExecutionResult struct {
	// Data is the response tree (*ResultMap at the root), nil when execution
	// nulled the root or did not start.
	Data any
	// Errors are the located errors in report order.
	Errors []*GraphQLError
	// HasData distinguishes `data: null` from an absent data key: it is
	// false only for request-level failures that prevented execution.
	HasData bool
}

// MarshalJSON renders the result per the GraphQL response format, omitting
// the data key for request-level failures.
func (r *ExecutionResult) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if r.HasData {
		buf.WriteString(`"data":`)
		data, err := json.Marshal(r.Data)
		if err != nil {
			return nil, err
		}
		buf.Write(data)
	}
	if len(r.Errors) > 0 {
		if r.HasData {
			buf.WriteByte(',')
		}
		buf.WriteString(`"errors":`)
		errs, err := json.Marshal(r.Errors)
		if err != nil {
			return nil, err
		}
		buf.Write(errs)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// undefined is the sentinel distinct from null that carries a non-null
// violation to the nearest null fence.
type undefinedValue struct{}

var undefined = undefinedValue{}

func isUndefined(v any) bool {
	_, ok := v.(undefinedValue)
	return ok
}

// ResultMap is a string-keyed map preserving key insertion order. The
// executor prefills each key with null in collector order before field
// strands run, which fixes the response key order.
type ResultMap struct {
	keys   []string
	index  map[string]int
	values []any
}

func NewResultMap() *ResultMap {
	return &ResultMap{index: map[string]int{}}
}

// Set inserts or overwrites key. A key keeps its original position.
func (m *ResultMap) Set(key string, v any) {
	if i, ok := m.index[key]; ok {
		m.values[i] = v
		return
	}
	m.index[key] = len(m.keys)
	m.keys = append(m.keys, key)
	m.values = append(m.values, v)
}

// Get returns the value stored under key.
func (m *ResultMap) Get(key string) (any, bool) {
	i, ok := m.index[key]
	if !ok {
		return nil, false
	}
	return m.values[i], true
}

// Keys returns the keys in insertion order.
func (m *ResultMap) Keys() []string { return m.keys }

// Len returns the number of keys.
func (m *ResultMap) Len() int { return len(m.keys) }

// ToMap converts the tree rooted at m into plain maps and slices.
func (m *ResultMap) ToMap() map[string]any {
	out := make(map[string]any, len(m.keys))
	for i, key := range m.keys {
		out[key] = toPlain(m.values[i])
	}
	return out
}

func toPlain(v any) any {
	switch t := v.(type) {
	case *ResultMap:
		return t.ToMap()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = toPlain(item)
		}
		return out
	default:
		return v
	}
}

// MarshalJSON renders the map as a JSON object in key insertion order.
func (m *ResultMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(m.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func pathToString(path Path) string {
	out := ""
	for i, elem := range path {
		switch v := elem.(type) {
		case string:
			if i > 0 {
				out += "."
			}
			out += v
		case int:
			out += fmt.Sprintf("[%d]", v)
		}
	}
	return out
}
