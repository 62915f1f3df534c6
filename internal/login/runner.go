// Package login drives one logical login request to a terminal outcome,
// acquiring resources from the pool, invoking the session runner, classifying
// each attempt, and deciding whether to retry.
package login

import (
	"context"

	"github.com/nmhoang23/rotauth/internal/core/domain"
)

// Request carries one logical login request.
type Request struct {
	TargetURL   string
	Credentials domain.Credentials
}

// Result is one attempt's classified outcome as reported by the runner.
type Result struct {
	Outcome domain.Outcome
	Token   string
	Detail  string
}

// Runner executes a single authentication attempt against the target through
// the given resource (nil = direct path). Implementations own the browser
// automation session and are opaque to this package; they must honor ctx.
type Runner interface {
	Run(ctx context.Context, req Request, res *domain.Resource) (Result, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, req Request, res *domain.Resource) (Result, error)

func (f RunnerFunc) Run(ctx context.Context, req Request, res *domain.Resource) (Result, error) {
	return f(ctx, req, res)
}
