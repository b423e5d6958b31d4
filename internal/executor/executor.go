package executor

import (
	"context"
	"time"

	"github.com/jensneuse/abstractlogger"

	eventbus "github.com/weftql/weft/internal/eventbus"
	events "github.com/weftql/weft/internal/events"
	language "github.com/weftql/weft/internal/language"
	promise "github.com/weftql/weft/internal/promise"
	schema "github.com/weftql/weft/internal/schema"
)

// Executor executes parsed GraphQL documents against an executable schema.
// It is safe for concurrent use; each Execute call gets its own scheduler
// and result tree.
type Executor struct {
	schema        *schema.Schema
	adapter       promise.Adapter
	logger        abstractlogger.Logger
	fieldResolver schema.ResolveFn
}

type Option func(*Executor)

// WithAdapter sets the promise adapter used to recognize thenable resolver
// results.
func WithAdapter(a promise.Adapter) Option {
	return func(e *Executor) { e.adapter = a }
}

// WithLogger sets the structured logger.
func WithLogger(l abstractlogger.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// WithFieldResolver replaces the default field resolver used for fields
// without their own resolver.
func WithFieldResolver(fn schema.ResolveFn) Option {
	return func(e *Executor) { e.fieldResolver = fn }
}

// New creates an executor for the given schema.
func New(s *schema.Schema, opts ...Option) *Executor {
	e := &Executor{
		schema:        s,
		adapter:       promise.Default,
		logger:        abstractlogger.Noop{},
		fieldResolver: DefaultFieldResolver,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Request is one execution request over an already-parsed document.
type Request struct {
	Document      *language.QueryDocument
	OperationName string
	Variables     map[string]any
	RootValue     any
}

// execution is the per-request state. It implements the Collector's Runtime
// surface.
type execution struct {
	schema        *schema.Schema
	adapter       promise.Adapter
	logger        abstractlogger.Logger
	fieldResolver schema.ResolveFn

	ctx       context.Context
	collector *Collector
	operation *language.OperationDefinition
	variables map[string]any
	rootValue any

	sched      *scheduler
	data       *ResultMap
	errors     []*GraphQLError
	nullified  map[string]struct{}
	dataNulled bool
}

// Evaluate coerces an AST value against an input type, consulting the
// coerced variable map. Collector callback surface.
func (x *execution) Evaluate(value *language.Value, inputType *schema.TypeRef) any {
	raw := language.GoValue(value, x.variables)
	cv, err := coerceInputValue(x.schema, raw, inputType)
	if err != nil {
		return nil
	}
	return cv
}

// AddError appends a located error to the execution error list. Collector
// callback surface.
func (x *execution) AddError(err *GraphQLError) {
	x.errors = append(x.errors, err)
	x.logger.Debug("executor: error recorded",
		abstractlogger.String("message", err.Message),
		abstractlogger.String("path", pathToString(err.Path)),
	)
}

// Execute runs one operation to completion and returns its result. The call
// blocks until every strand has finished and every thenable has settled; the
// engine never panics across this boundary.
func (e *Executor) Execute(ctx context.Context, req Request) *ExecutionResult {
	if ctx == nil {
		ctx = context.Background()
	}

	x := &execution{
		schema:        e.schema,
		adapter:       e.adapter,
		logger:        e.logger,
		fieldResolver: e.fieldResolver,
		ctx:           ctx,
		rootValue:     req.RootValue,
		sched:         newScheduler(e.adapter),
		data:          NewResultMap(),
		errors:        []*GraphQLError{},
		nullified:     map[string]struct{}{},
	}
	x.collector = NewCollector(e.schema, x)

	op := x.collector.Init(req.Document, req.OperationName)
	if op == nil {
		return &ExecutionResult{Errors: x.errors}
	}
	x.operation = op.Definition

	variables, verrs := CoerceVariableValues(e.schema, op.Definition, req.Variables)
	if len(verrs) > 0 {
		return &ExecutionResult{Errors: verrs}
	}
	x.variables = variables

	opType := string(op.Definition.Operation)
	start := time.Now()
	eventbus.Publish(ctx, events.ExecutionStart{
		OperationName: op.Definition.Name,
		OperationType: opType,
	})

	isMutation := op.Definition.Operation == language.Mutation
	started := false
	x.collector.CollectFields(op.RootType, op.Definition.SelectionSet, func(nodes []*language.Field, fieldName, responseKey string, arguments language.ArgumentList) {
		ec := &execContext{
			objectType: op.RootType,
			source:     req.RootValue,
			result:     x.data,
			path:       Path{responseKey},
			shared:     newSharedState(nodes, fieldName, responseKey, arguments),
		}
		x.data.Set(responseKey, nil)
		st := newStrand(func(st *strand) { x.executeField(st, ec) })
		if isMutation && started {
			x.sched.defer_(st)
		} else {
			x.sched.enqueue(st)
			started = true
		}
	})

	x.sched.run()

	eventbus.Publish(ctx, events.ExecutionFinish{
		OperationName: op.Definition.Name,
		OperationType: opType,
		ErrorCount:    len(x.errors),
		Duration:      time.Since(start),
	})

	res := &ExecutionResult{HasData: true, Errors: x.errors}
	if !x.dataNulled {
		res.Data = x.data
	}
	return res
}
