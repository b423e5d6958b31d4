package executor

import (
	"reflect"

	language "github.com/weftql/weft/internal/language"
	schema "github.com/weftql/weft/internal/schema"
)

// slot is a write target in the response tree. Containers are attached to
// their slot as soon as they exist so that null-fence writes can always
// reach them by walking from the root.
type slot interface{ set(v any) }

type mapSlot struct {
	m   *ResultMap
	key string
}

func (s mapSlot) set(v any) { s.m.Set(s.key, v) }

type listSlot struct {
	arr []any
	i   int
}

func (s listSlot) set(v any) { s.arr[s.i] = v }

// executeField is the body of a field strand: resolve the field value, then
// complete it against the declared type.
func (x *execution) executeField(st *strand, ec *execContext) {
	if x.isNullified(ec.path) {
		return
	}
	sh := ec.shared
	if sh.fieldName == typenameMetaField {
		ec.result.Set(sh.responseKey, ec.objectType.Name)
		return
	}
	if !x.prepare(ec) {
		return
	}
	if !x.checkArgs(ec) {
		return
	}
	v, err := x.resolveFieldValue(ec)
	x.finishField(st, ec, v, err)
}

// finishField completes an already-resolved value. Split from executeField
// so the leaf fast path can hand a pre-resolved thenable to a fresh strand.
func (x *execution) finishField(st *strand, ec *execContext, v any, err error) {
	sh := ec.shared
	x.completeValue(st, ec, sh.returnType, v, err, ec.path, ec.nullFence, mapSlot{m: ec.result, key: sh.responseKey})
}

// checkArgs surfaces a memoized argument-coercion failure as a located field
// error and nulls the field. Returns false when the field must not resolve.
func (x *execution) checkArgs(ec *execContext) bool {
	sh := ec.shared
	if sh.argsErr == nil {
		return true
	}
	err := *sh.argsErr
	err.Path = ec.path
	err.Locations = nodeLocations(sh.fieldNodes)
	x.AddError(&err)
	if sh.returnType.IsNonNull() {
		x.propagateNull(ec.nullFence)
	} else {
		ec.result.Set(sh.responseKey, nil)
	}
	return false
}

// completeValue is the type-directed completion state machine. It writes the
// completed value through sl and returns it; a non-null violation returns
// the undefined sentinel after propagating null to the fence.
func (x *execution) completeValue(st *strand, ec *execContext, t *schema.TypeRef, v any, verr error, path Path, fence Path, sl slot) any {
	nonNull := false
	if t.IsNonNull() {
		nonNull = true
		t = t.Unwrap()
	} else {
		// Any deeper non-null violation nulls this field.
		fence = path
	}

	if verr == nil && x.adapter.IsThenable(v) {
		v, verr = st.await(v)
		if x.isNullified(path) {
			return nil
		}
	}
	if verr != nil {
		x.AddError(locatedError(verr, ec.shared.fieldNodes, path))
		v = nil
	}

	if isNullish(v) {
		if nonNull {
			if verr == nil {
				x.AddError(locatedError(
					newError("Cannot return null for non-nullable field %s.%s.", ec.objectType.Name, ec.shared.fieldName),
					ec.shared.fieldNodes, path))
			}
			return x.propagateNull(fence)
		}
		sl.set(nil)
		return nil
	}

	if t.IsList() {
		return x.completeList(st, ec, t, v, path, fence, nonNull, sl)
	}

	named := t.GetNamedType()
	typ := x.schema.GetType(named)
	if typ == nil {
		x.AddError(locatedError(newError("Unknown type %q.", named), ec.shared.fieldNodes, path))
		return x.nullAfterError(nonNull, fence, sl)
	}

	if typ.IsLeaf() {
		out, err := serializeLeaf(typ, v)
		if err != nil {
			x.AddError(locatedError(err, ec.shared.fieldNodes, path))
			return x.nullAfterError(nonNull, fence, sl)
		}
		sl.set(out)
		return out
	}

	objectType := typ
	probed := false
	if typ.IsAbstract() {
		objectType, probed = x.resolveAbstractType(ec, typ, v, path)
		if objectType == nil {
			return x.nullAfterError(nonNull, fence, sl)
		}
	}
	// When the slow path already probed isTypeOf, the winner is not asked
	// again.
	if !probed && objectType.IsTypeOf != nil && !objectType.IsTypeOf(x.ctx, v, x.infoFor(ec)) {
		x.AddError(locatedError(
			newError("Expected value of type %q but received: %v.", objectType.Name, v),
			ec.shared.fieldNodes, path))
		return x.nullAfterError(nonNull, fence, sl)
	}

	result := NewResultMap()
	sl.set(result)
	x.spawnChildren(ec, objectType, v, path, fence, result)
	return result
}

// nullAfterError finishes a completion step whose error is already recorded:
// null for nullable positions, fence propagation otherwise.
func (x *execution) nullAfterError(nonNull bool, fence Path, sl slot) any {
	if nonNull {
		return x.propagateNull(fence)
	}
	sl.set(nil)
	return nil
}

func (x *execution) completeList(st *strand, ec *execContext, t *schema.TypeRef, v any, path Path, fence Path, nonNull bool, sl slot) any {
	items, ok := asList(v)
	if !ok {
		x.AddError(locatedError(
			newError("Expected a list for field %s.%s, got %T.", ec.objectType.Name, ec.shared.fieldName, v),
			ec.shared.fieldNodes, path))
		return x.nullAfterError(nonNull, fence, sl)
	}
	inner := t.Unwrap()
	arr := make([]any, len(items))
	sl.set(arr)
	for i, item := range items {
		res := x.completeValue(st, ec, inner, item, nil, path.Append(i), fence, listSlot{arr: arr, i: i})
		if isUndefined(res) {
			// The violation already nulled the fence; strike the list.
			return undefined
		}
	}
	return arr
}

func asList(v any) ([]any, bool) {
	if direct, ok := v.([]any); ok {
		return direct, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

func serializeLeaf(t *schema.Type, v any) (any, error) {
	if t.Serialize != nil {
		return t.Serialize(v)
	}
	if t.Kind == schema.TypeKindEnum {
		name, ok := v.(string)
		if !ok {
			return nil, newError("Enum %s cannot represent value: %v.", t.Name, v)
		}
		for _, ev := range t.EnumValues {
			if ev.Name == name {
				return name, nil
			}
		}
		return nil, newError("Enum %s cannot represent value: %q.", t.Name, name)
	}
	// Custom scalar without a serializer passes through.
	return v, nil
}

// resolveAbstractType determines the concrete object type for a value of an
// abstract type, recording an error and returning nil on failure. The second
// result reports whether the slow isTypeOf probe selected the type.
func (x *execution) resolveAbstractType(ec *execContext, abstract *schema.Type, v any, path Path) (*schema.Type, bool) {
	var resolved any
	probed := false
	if abstract.ResolveType != nil {
		r, err := abstract.ResolveType(x.ctx, v, x.infoFor(ec))
		if err != nil {
			x.AddError(locatedError(err, ec.shared.fieldNodes, path))
			return nil, false
		}
		resolved = r
	}
	if resolved == nil {
		resolved = x.probeTypeOf(ec, abstract, v)
		probed = true
	}

	var objectType *schema.Type
	switch r := resolved.(type) {
	case nil:
		x.AddError(locatedError(
			newError("Abstract type %s must resolve to an Object type at runtime for field %s.%s.", abstract.Name, ec.objectType.Name, ec.shared.fieldName),
			ec.shared.fieldNodes, path))
		return nil, false
	case string:
		objectType = x.schema.GetType(r)
		if objectType == nil {
			x.AddError(locatedError(
				newError("Abstract type %s resolved to unknown type %q.", abstract.Name, r),
				ec.shared.fieldNodes, path))
			return nil, false
		}
	case *schema.Type:
		objectType = r
		if x.schema.GetType(objectType.Name) != objectType {
			x.AddError(locatedError(
				newError("Schema must contain unique named types but got multiple types named %q.", objectType.Name),
				ec.shared.fieldNodes, path))
			return nil, false
		}
	default:
		x.AddError(locatedError(
			newError("Abstract type %s resolved to an unexpected value: %v.", abstract.Name, r),
			ec.shared.fieldNodes, path))
		return nil, false
	}

	if objectType.Kind != schema.TypeKindObject {
		x.AddError(locatedError(
			newError("Abstract type %s must resolve to an Object type at runtime, got %q.", abstract.Name, objectType.Name),
			ec.shared.fieldNodes, path))
		return nil, false
	}
	if !x.schema.IsPossibleType(abstract, objectType) {
		x.AddError(locatedError(
			newError("Runtime Object type %q is not a possible type for %q.", objectType.Name, abstract.Name),
			ec.shared.fieldNodes, path))
		return nil, false
	}
	return objectType, probed
}

// probeTypeOf is the slow resolution path: every possible type's isTypeOf
// runs — none is skipped — and the first true in schema order wins.
func (x *execution) probeTypeOf(ec *execContext, abstract *schema.Type, v any) any {
	possible := x.schema.GetPossibleTypes(abstract)
	matches := make([]bool, len(possible))
	for i, pt := range possible {
		if pt.IsTypeOf != nil {
			matches[i] = pt.IsTypeOf(x.ctx, v, x.infoFor(ec))
		}
	}
	for i, matched := range matches {
		if matched {
			return possible[i]
		}
	}
	return nil
}

// spawnChildren executes the merged child selection set of a composite value
// against its concrete object type. The first encounter of a concrete type
// collects fields and captures the resulting contexts as templates; later
// siblings clone the templates, preserving result-key order.
func (x *execution) spawnChildren(ec *execContext, objectType *schema.Type, source any, path Path, fence Path, result *ResultMap) {
	sh := ec.shared
	if sh.childContexts == nil {
		sh.childContexts = map[*schema.Type][]*execContext{}
	}
	if templates, ok := sh.childContexts[objectType]; ok {
		for _, tpl := range templates {
			child := tpl.cloneFor(objectType, source, result, path.Append(tpl.shared.responseKey), fence)
			result.Set(child.shared.responseKey, nil)
			x.startChild(child)
		}
		return
	}
	var templates []*execContext
	x.collector.CollectFields(objectType, sh.mergedChildSelections(), func(nodes []*language.Field, fieldName, responseKey string, arguments language.ArgumentList) {
		child := &execContext{
			objectType: objectType,
			source:     source,
			result:     result,
			path:       path.Append(responseKey),
			nullFence:  fence,
			shared:     newSharedState(nodes, fieldName, responseKey, arguments),
		}
		templates = append(templates, child)
		result.Set(responseKey, nil)
		x.startChild(child)
	})
	sh.childContexts[objectType] = templates
}

// startChild runs a child field, taking the inline fast path for plain leaf
// values and spawning a strand otherwise.
func (x *execution) startChild(ec *execContext) {
	sh := ec.shared
	if sh.fieldName == typenameMetaField {
		ec.result.Set(sh.responseKey, ec.objectType.Name)
		return
	}
	if !x.prepare(ec) {
		return
	}
	if sh.argsErr != nil {
		x.checkArgs(ec)
		return
	}
	t := sh.returnType
	if t.IsNonNull() {
		t = t.Unwrap()
	}
	if t.IsList() {
		x.enqueueField(ec)
		return
	}
	named := x.schema.GetType(t.GetNamedType())
	if named == nil || !named.IsLeaf() {
		x.enqueueField(ec)
		return
	}
	// Leaf fast path: resolve now; only a thenable needs the scheduler.
	v, err := x.resolveFieldValue(ec)
	if err == nil && x.adapter.IsThenable(v) {
		st := newStrand(func(st *strand) { x.finishField(st, ec, v, nil) })
		x.sched.enqueue(st)
		return
	}
	x.finishField(nil, ec, v, err)
}

func (x *execution) enqueueField(ec *execContext) {
	st := newStrand(func(st *strand) { x.executeField(st, ec) })
	x.sched.enqueue(st)
}

// propagateNull writes null at the fence in the root result, overwriting any
// descendants, and tombstones the prefix so later writes under it are
// discarded. A nil fence nulls the entire response data.
func (x *execution) propagateNull(fence Path) any {
	if len(fence) == 0 {
		x.dataNulled = true
		return undefined
	}
	setValueAtPath(x.data, fence, nil)
	x.markNullified(fence)
	return undefined
}

func (x *execution) markNullified(p Path) {
	key := pathToString(p)
	if key != "" {
		x.nullified[key] = struct{}{}
	}
}

// isNullified reports whether a tombstoned prefix covers p. A nulled root
// does not tombstone: remaining strands (and their side effects) still run,
// only the final data is replaced.
func (x *execution) isNullified(p Path) bool {
	if len(x.nullified) == 0 {
		return false
	}
	cur := Path{}
	for _, elem := range p {
		cur = append(cur, elem)
		if _, ok := x.nullified[pathToString(cur)]; ok {
			return true
		}
	}
	return false
}

// setValueAtPath walks the response tree from the root and writes value at
// path. Containers are attached eagerly during completion, so every step of
// the walk exists.
func setValueAtPath(root *ResultMap, path Path, value any) {
	var current any = root
	for _, elem := range path[:len(path)-1] {
		switch e := elem.(type) {
		case string:
			m, ok := current.(*ResultMap)
			if !ok {
				return
			}
			next, ok := m.Get(e)
			if !ok {
				return
			}
			current = next
		case int:
			arr, ok := current.([]any)
			if !ok || e >= len(arr) {
				return
			}
			current = arr[e]
		}
	}
	switch e := path[len(path)-1].(type) {
	case string:
		if m, ok := current.(*ResultMap); ok {
			m.Set(e, value)
		}
	case int:
		if arr, ok := current.([]any); ok && e < len(arr) {
			arr[e] = value
		}
	}
}

func isNullish(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
