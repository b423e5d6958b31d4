// Package engine is the query-string entry point over the executor: it
// parses and caches documents, wires introspection, and logs execution
// outcomes.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru"
	"github.com/jensneuse/abstractlogger"

	executor "github.com/weftql/weft/internal/executor"
	introspection "github.com/weftql/weft/internal/introspection"
	language "github.com/weftql/weft/internal/language"
	promise "github.com/weftql/weft/internal/promise"
	reqid "github.com/weftql/weft/internal/reqid"
	schema "github.com/weftql/weft/internal/schema"
)

const defaultDocumentCacheSize = 1024

// Engine executes GraphQL query strings against a schema. Parsed documents
// are cached by a hash of the raw query.
type Engine struct {
	schema        *schema.Schema
	exec          *executor.Executor
	logger        abstractlogger.Logger
	documentCache *lru.Cache
}

type options struct {
	logger        abstractlogger.Logger
	adapter       promise.Adapter
	fieldResolver schema.ResolveFn
	introspection bool
	cacheSize     int
}

type Option func(*options)

// WithLogger sets the structured logger for the engine and its executor.
func WithLogger(l abstractlogger.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithAdapter sets the promise adapter passed to the executor.
func WithAdapter(a promise.Adapter) Option {
	return func(o *options) { o.adapter = a }
}

// WithFieldResolver sets the fallback field resolver.
func WithFieldResolver(fn schema.ResolveFn) Option {
	return func(o *options) { o.fieldResolver = fn }
}

// WithoutIntrospection disables the __schema and __type meta-fields.
func WithoutIntrospection() Option {
	return func(o *options) { o.introspection = false }
}

// WithDocumentCacheSize sets the parsed-document cache capacity.
func WithDocumentCacheSize(n int) Option {
	return func(o *options) { o.cacheSize = n }
}

// New creates an engine for the schema. Introspection is enabled unless
// disabled via WithoutIntrospection.
func New(s *schema.Schema, opts ...Option) (*Engine, error) {
	o := options{
		logger:        abstractlogger.Noop{},
		adapter:       promise.Default,
		introspection: true,
		cacheSize:     defaultDocumentCacheSize,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.introspection {
		s = introspection.ExtendSchema(s)
	}

	documentCache, err := lru.New(o.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("document cache: %w", err)
	}

	execOpts := []executor.Option{
		executor.WithAdapter(o.adapter),
		executor.WithLogger(o.logger),
	}
	if o.fieldResolver != nil {
		execOpts = append(execOpts, executor.WithFieldResolver(o.fieldResolver))
	}

	return &Engine{
		schema:        s,
		exec:          executor.New(s, execOpts...),
		logger:        o.logger,
		documentCache: documentCache,
	}, nil
}

// Request is a raw GraphQL request.
type Request struct {
	Query         string
	OperationName string
	Variables     map[string]any
	RootValue     any
}

// Execute parses (or reuses) the query document and executes it.
func (e *Engine) Execute(ctx context.Context, req Request) *executor.ExecutionResult {
	ctx, rid := reqid.NewContext(ctx)

	doc, parseErr := e.parseQuery(req.Query)
	if parseErr != nil {
		e.logger.Debug("engine: parse failed",
			abstractlogger.Any("request_id", rid),
			abstractlogger.Error(parseErr),
		)
		return &executor.ExecutionResult{Errors: []*executor.GraphQLError{syntaxError(parseErr)}}
	}

	start := time.Now()
	res := e.exec.Execute(ctx, executor.Request{
		Document:      doc,
		OperationName: req.OperationName,
		Variables:     req.Variables,
		RootValue:     req.RootValue,
	})
	e.logger.Debug("engine: execution finished",
		abstractlogger.Any("request_id", rid),
		abstractlogger.String("operation", req.OperationName),
		abstractlogger.Int("errors", len(res.Errors)),
		abstractlogger.String("duration", time.Since(start).String()),
	)
	return res
}

func (e *Engine) parseQuery(query string) (*language.QueryDocument, error) {
	cacheKey := xxhash.Sum64String(query)
	if cached, ok := e.documentCache.Get(cacheKey); ok {
		if doc, ok := cached.(*language.QueryDocument); ok {
			return doc, nil
		}
	}
	doc, err := language.ParseQuery(query)
	if err != nil {
		return nil, err
	}
	e.documentCache.Add(cacheKey, doc)
	return doc, nil
}

func syntaxError(err error) *executor.GraphQLError {
	var gqlErr *language.Error
	if errors.As(err, &gqlErr) {
		ge := &executor.GraphQLError{Message: gqlErr.Message}
		for _, loc := range gqlErr.Locations {
			ge.Locations = append(ge.Locations, executor.Location{Line: loc.Line, Column: loc.Column})
		}
		return ge
	}
	return &executor.GraphQLError{Message: err.Error()}
}
