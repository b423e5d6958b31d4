package executor

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	eventbus "github.com/weftql/weft/internal/eventbus"
	events "github.com/weftql/weft/internal/events"
	schema "github.com/weftql/weft/internal/schema"
)

// DefaultFieldResolver resolves a field from its source value: a map entry
// under the field name, an exported struct field or method of that name, or
// — when the located value is callable — the call's result.
func DefaultFieldResolver(ctx context.Context, source any, args map[string]any, info *schema.ResolveInfo) (any, error) {
	if source == nil {
		return nil, nil
	}
	var value any
	switch src := source.(type) {
	case map[string]any:
		v, ok := src[info.FieldName]
		if !ok {
			return nil, nil
		}
		value = v
	default:
		v, ok := reflectField(source, info.FieldName)
		if !ok {
			return nil, nil
		}
		value = v
	}
	return callIfCallable(ctx, value)
}

func reflectField(source any, name string) (any, bool) {
	rv := reflect.ValueOf(source)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, false
	}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		if strings.EqualFold(f.Name, name) {
			return rv.Field(i).Interface(), true
		}
	}
	// Fall back to a no-argument method of the same name.
	mv := reflect.ValueOf(source)
	for i := 0; i < mv.NumMethod(); i++ {
		m := mv.Type().Method(i)
		if strings.EqualFold(m.Name, name) && m.Type.NumIn() == 1 {
			out := mv.Method(i).Call(nil)
			if len(out) > 0 {
				return out[0].Interface(), true
			}
			return nil, true
		}
	}
	return nil, false
}

func callIfCallable(ctx context.Context, value any) (any, error) {
	switch fn := value.(type) {
	case func() any:
		return fn(), nil
	case func() (any, error):
		return fn()
	case func(ctx context.Context) (any, error):
		return fn(ctx)
	default:
		return value, nil
	}
}

// prepare performs the group-wide derivations on the first execution of a
// field group against the enclosing type, caching them on the SharedState
// guarded by ifType. Returns false when the field cannot execute.
func (x *execution) prepare(ec *execContext) bool {
	sh := ec.shared
	if sh.ifType == ec.objectType {
		return sh.fieldDef != nil
	}
	sh.ifType = ec.objectType
	sh.fieldDef = ec.objectType.GetField(sh.fieldName)
	sh.resolver = nil
	sh.args = nil
	sh.argsErr = nil
	if sh.fieldDef == nil {
		// The Collector reports unknown fields; reaching here means the
		// concrete type changed under the group. Skip quietly.
		return false
	}
	sh.returnType = sh.fieldDef.Type

	resolver := sh.fieldDef.Resolve
	if resolver == nil {
		resolver = ec.objectType.ResolveField
	}
	if resolver == nil {
		resolver = x.fieldResolver
	}
	sh.resolver = resolver

	args, err := CoerceArgumentValues(x.schema, sh.fieldDef, sh.arguments, x.variables)
	if err != nil {
		sh.argsErr = locatedError(err, sh.fieldNodes, nil)
	}
	sh.args = args

	sh.info = schema.ResolveInfo{
		FieldName:      sh.fieldName,
		FieldNodes:     sh.fieldNodes,
		ReturnType:     sh.returnType,
		ParentType:     ec.objectType,
		Schema:         x.schema,
		Fragments:      x.collector.Fragments(),
		RootValue:      x.rootValue,
		Operation:      x.operation,
		VariableValues: x.variables,
	}
	return true
}

// infoFor returns the memoized ResolveInfo with the path rewritten for this
// occurrence.
func (x *execution) infoFor(ec *execContext) *schema.ResolveInfo {
	info := ec.shared.info
	info.Path = ec.path
	return &info
}

// resolveFieldValue invokes the field resolver, converting panics into
// errors. The returned value may be a thenable.
func (x *execution) resolveFieldValue(ec *execContext) (value any, err error) {
	sh := ec.shared
	start := time.Now()
	eventbus.Publish(x.ctx, events.ResolveStart{
		ObjectType: ec.objectType.Name,
		Field:      sh.fieldName,
		Path:       ec.path,
	})
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("resolver panic: %v", r)
		}
		eventbus.Publish(x.ctx, events.ResolveFinish{
			ObjectType: ec.objectType.Name,
			Field:      sh.fieldName,
			Path:       ec.path,
			Err:        err,
			Duration:   time.Since(start),
		})
	}()
	return sh.resolver(x.ctx, ec.source, sh.args, x.infoFor(ec))
}
