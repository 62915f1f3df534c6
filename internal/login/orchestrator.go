package login

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nmhoang23/rotauth/internal/core/domain"
	"github.com/nmhoang23/rotauth/internal/metrics"
	"github.com/nmhoang23/rotauth/internal/pool"
)

// Config holds orchestrator tuning.
type Config struct {
	// MaxAttempts is the hard ceiling on tries per logical request.
	MaxAttempts int

	// AttemptTimeout bounds a single runner invocation. Total wall time is
	// bounded by MaxAttempts * AttemptTimeout.
	AttemptTimeout time.Duration

	// VindicateAccounts controls whether outcomes proving the target
	// evaluated the credentials (invalid password, banned/disabled account)
	// are reported to the pool as resource successes. When false those
	// attempts are left unreported.
	VindicateAccounts bool

	// AllowDirect permits an attempt without a resource when the pool is
	// exhausted instead of terminating with pool_exhausted.
	AllowDirect bool
}

// Normalize fills zero fields with defaults.
func (c Config) Normalize() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.AttemptTimeout <= 0 {
		c.AttemptTimeout = time.Minute
	}
	return c
}

// Session is the in-memory record of one logical login request.
type Session struct {
	ID        string           `json:"session_id"`
	TargetURL string           `json:"target_url"`
	Attempts  []domain.Attempt `json:"attempts"`

	Status domain.TerminalStatus `json:"status"`
	Token  string                `json:"token,omitempty"`
}

// Orchestrator runs the retry state machine. Many sessions may run
// concurrently; each one executes sequentially.
type Orchestrator struct {
	pool   *pool.Pool
	runner Runner
	cfg    Config
	log    *slog.Logger
}

// New creates an orchestrator over the given pool and session runner.
func New(p *pool.Pool, r Runner, cfg Config, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{pool: p, runner: r, cfg: cfg.Normalize(), log: log}
}

// RunWithRetry drives one request to a terminal status. The caller's ctx
// deadline abandons remaining retries; an attempt already in flight runs to
// its own bounded timeout. The returned session is never nil.
func (o *Orchestrator) RunWithRetry(ctx context.Context, req Request, preferred *domain.Resource) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		TargetURL: req.TargetURL,
		Status:    domain.StatusPoolExhausted,
	}
	log := o.log.With("session_id", s.ID)

	var lastPenalized string

	for attempt := 1; attempt <= o.cfg.MaxAttempts; attempt++ {
		res, err := o.selectResource(ctx, attempt, preferred, lastPenalized)
		if err != nil {
			// ctx expired while waiting on the pool; keep whatever terminal
			// status the previous attempt established.
			break
		}
		if res == nil && !o.cfg.AllowDirect {
			s.Status = domain.StatusPoolExhausted
			log.Warn("No resource available, terminating", "attempts", len(s.Attempts))
			break
		}

		started := time.Now()
		result := o.runAttempt(ctx, req, res)
		o.record(s, res, result, started, time.Since(started))

		if res != nil {
			if class, report := o.reportFor(result.Outcome); report {
				o.pool.ReportOutcome(res, class)
				if class == domain.ClassSoftFailure {
					lastPenalized = res.Key()
				}
			}
		}

		s.Status = domain.TerminalFor(result.Outcome)
		if result.Outcome == domain.OutcomeSuccess {
			s.Token = result.Token
		}

		log.Info("Attempt finished",
			"attempt", attempt,
			"outcome", result.Outcome.String(),
			"retryable", result.Outcome.Retryable())

		if !result.Outcome.Retryable() {
			break
		}
		if ctx.Err() != nil {
			log.Info("Caller deadline reached, abandoning remaining retries")
			break
		}
	}

	metrics.LoginsTotal.WithLabelValues(s.Status.String()).Inc()
	return s
}

// selectResource picks the resource for one attempt. A caller-preferred
// resource is honored for the first attempt only.
func (o *Orchestrator) selectResource(ctx context.Context, attempt int, preferred *domain.Resource, lastPenalized string) (*domain.Resource, error) {
	if attempt == 1 && preferred != nil {
		o.pool.Reserve(preferred)
		return preferred, nil
	}
	if lastPenalized != "" {
		return o.pool.AcquireExcluding(ctx, lastPenalized)
	}
	return o.pool.Acquire(ctx)
}

// runAttempt invokes the runner under the per-attempt timeout and folds
// transport errors into the outcome taxonomy.
func (o *Orchestrator) runAttempt(ctx context.Context, req Request, res *domain.Resource) Result {
	actx, cancel := context.WithTimeout(ctx, o.cfg.AttemptTimeout)
	defer cancel()

	result, err := o.runner.Run(actx, req, res)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Result{Outcome: domain.OutcomeNoResponse, Detail: err.Error()}
		}
		return Result{Outcome: domain.OutcomeUnclassified, Detail: err.Error()}
	}
	return result
}

func (o *Orchestrator) record(s *Session, res *domain.Resource, result Result, started time.Time, elapsed time.Duration) {
	key := ""
	if res != nil {
		key = res.Redacted()
	}
	s.Attempts = append(s.Attempts, domain.Attempt{
		SessionID:  s.ID,
		Resource:   key,
		Outcome:    result.Outcome,
		StartedAt:  started,
		DurationMs: elapsed.Milliseconds(),
	})

	metrics.AttemptsTotal.WithLabelValues(result.Outcome.String()).Inc()
	metrics.AttemptDuration.WithLabelValues(result.Outcome.String()).Observe(elapsed.Seconds())
}

// reportFor maps an attempt outcome to the pool-facing classification.
// Outcomes proving the target actually evaluated the credentials vindicate
// the resource: the network path worked even though the login failed.
func (o *Orchestrator) reportFor(out domain.Outcome) (domain.Classification, bool) {
	if out.TargetReached() {
		if out != domain.OutcomeSuccess && !o.cfg.VindicateAccounts {
			return 0, false
		}
		return domain.ClassSuccess, true
	}
	return domain.ClassSoftFailure, true
}
