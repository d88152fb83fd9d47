// Package graph holds the operation table served by the /graphql endpoint.
// Every operation declares its role requirement next to its resolver, and
// the registry evaluates that requirement before the resolver runs.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/ereignis/ereignis-api/internal/auth"
	"github.com/ereignis/ereignis-api/internal/observability"
	apperrors "github.com/ereignis/ereignis-api/pkg/util/errorutil"
)

// Kind distinguishes reads from writes.
type Kind string

const (
	Query    Kind = "query"
	Mutation Kind = "mutation"
)

// Resolver runs an operation with its raw variables.
type Resolver func(ctx context.Context, vars json.RawMessage) (any, error)

// Operation binds a name to its guard and resolver.
type Operation struct {
	Name     string
	Kind     Kind
	Requires auth.Requirement
	Resolve  Resolver
}

// fieldErrorCarrier is implemented by payloads that can hold business errors.
type fieldErrorCarrier interface {
	HasFieldErrors() bool
}

// Registry is composed once at startup and read concurrently afterwards.
type Registry struct {
	ops     map[string]Operation
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger, metrics *observability.Metrics) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{ops: make(map[string]Operation), logger: logger, metrics: metrics}
}

// Register adds op. Registering a name twice is a programming error.
func (r *Registry) Register(op Operation) {
	if op.Name == "" || op.Resolve == nil {
		panic("graph: operation needs a name and a resolver")
	}
	if _, dup := r.ops[op.Name]; dup {
		panic(fmt.Sprintf("graph: operation %q registered twice", op.Name))
	}
	r.ops[op.Name] = op
}

// Lookup returns the operation registered under name.
func (r *Registry) Lookup(name string) (Operation, bool) {
	op, ok := r.ops[name]
	return op, ok
}

// Names lists registered operations alphabetically.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute authorizes and runs the named operation. A denial is returned as a
// top-level error before the resolver, and therefore any validation, runs.
func (r *Registry) Execute(ctx context.Context, name string, vars json.RawMessage) (any, error) {
	op, ok := r.ops[name]
	if !ok {
		return nil, apperrors.NewDomainError("UNKNOWN_OPERATION", "unknown operation", http.StatusBadRequest,
			map[string]any{"operationName": name})
	}

	actor := auth.ActorFromContext(ctx)
	if err := op.Requires.Check(actor); err != nil {
		code := apperrors.ToDomainError(err).Code
		r.metrics.RecordDenial(op.Name, code)
		fields := []zap.Field{zap.String("operation", op.Name), zap.String("code", code)}
		if actor != nil {
			fields = append(fields, zap.Int64("actor_id", actor.ID))
		}
		r.logger.Info("operation denied", fields...)
		return nil, err
	}

	start := time.Now()
	result, err := op.Resolve(ctx, vars)
	elapsed := time.Since(start)

	switch {
	case err != nil:
		r.metrics.RecordOperation(op.Name, "failed", elapsed)
		if apperrors.ToDomainError(err).HTTPStatus >= http.StatusInternalServerError {
			r.logger.Error("operation failed", zap.String("operation", op.Name), zap.Error(err))
		}
		return nil, err
	case hasFieldErrors(result):
		r.metrics.RecordOperation(op.Name, "field_errors", elapsed)
	default:
		r.metrics.RecordOperation(op.Name, "ok", elapsed)
	}
	return result, nil
}

func hasFieldErrors(result any) bool {
	c, ok := result.(fieldErrorCarrier)
	return ok && c.HasFieldErrors()
}
