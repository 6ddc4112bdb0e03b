// Package votes holds vote reconciliation and score aggregation.
//
// A user holds at most one vote per target. Voting resolves against the
// stored vote: a fresh direction creates a vote, repeating it retracts the
// vote, and the opposite direction flips it. Scores are never stored; they
// are recomputed from the full vote set on every read.
package votes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/emilythestrangee/reddit-clone/api/internal/apperrors"
	"github.com/emilythestrangee/reddit-clone/api/internal/auth"
)

var tracer = otel.Tracer("reddit.votes")

// DefaultMaxRetries bounds how often a reconciliation that lost a race is
// re-run before giving up with apperrors.ErrConflict.
const DefaultMaxRetries = 2

// Result describes a completed reconciliation.
type Result struct {
	Target    Target
	Previous  Direction
	Direction Direction
	Action    Action
	// Delta is the score change this call caused.
	Delta int
}

// Recorder observes reconciliation outcomes.
type Recorder interface {
	ObserveVote(kind Kind, action Action)
	ObserveConflict(kind Kind, resolved bool)
}

type Option func(*Reconciler)

func WithMaxRetries(n int) Option {
	return func(r *Reconciler) {
		if n >= 0 {
			r.maxRetries = n
		}
	}
}

func WithRecorder(rec Recorder) Option {
	return func(r *Reconciler) { r.recorder = rec }
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) { r.logger = logger }
}

// Reconciler applies vote requests against a Store.
type Reconciler struct {
	store      Store
	maxRetries int
	recorder   Recorder
	logger     *slog.Logger
}

func NewReconciler(store Store, opts ...Option) *Reconciler {
	r := &Reconciler{
		store:      store,
		maxRetries: DefaultMaxRetries,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile applies dir from actor to target and returns the resulting
// direction. The read of the existing vote and the single write it implies
// run in one transaction. When a concurrent request for the same
// (actor, target) wins the race, the whole read-then-write is re-run; once
// retries are exhausted the call fails with apperrors.ErrConflict and the
// stored vote is left as the winner wrote it.
func (r *Reconciler) Reconcile(ctx context.Context, actor *auth.Identity, target Target, dir Direction) (Result, error) {
	if !actor.Authenticated() {
		return Result{}, fmt.Errorf("voting requires a signed-in user: %w", apperrors.ErrUnauthorized)
	}
	if !dir.Valid() {
		return Result{}, fmt.Errorf("direction %q must be UP or DOWN: %w", dir, apperrors.ErrInvalidInput)
	}
	if err := target.Validate(); err != nil {
		return Result{}, err
	}

	ctx, span := tracer.Start(ctx, "votes.Reconcile",
		trace.WithAttributes(
			attribute.String("vote.target_kind", string(target.Kind)),
			attribute.Int64("vote.target_id", int64(target.ID)),
			attribute.String("vote.direction", string(dir)),
		),
	)
	defer span.End()

	for attempt := 0; ; attempt++ {
		res, err := r.apply(ctx, actor.UserID, target, dir)
		if err == nil {
			if attempt > 0 {
				r.observeConflict(target.Kind, true)
			}
			r.observeVote(target.Kind, res.Action)
			span.SetAttributes(
				attribute.String("vote.action", res.Action.String()),
				attribute.Int("vote.attempts", attempt+1),
			)
			span.SetStatus(codes.Ok, "")
			return res, nil
		}

		if !lostRace(err) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return Result{}, err
		}

		if attempt >= r.maxRetries {
			r.observeConflict(target.Kind, false)
			span.RecordError(err)
			span.SetStatus(codes.Error, "conflict")
			r.logger.Warn("vote conflict unresolved",
				"user_id", actor.UserID,
				"target", target.String(),
				"attempts", attempt+1,
			)
			return Result{}, fmt.Errorf("vote on %s kept racing: %w", target, apperrors.ErrConflict)
		}

		r.logger.Debug("vote raced, retrying",
			"user_id", actor.UserID,
			"target", target.String(),
			"attempt", attempt+1,
			"error", err,
		)
	}
}

func (r *Reconciler) apply(ctx context.Context, userID uint, target Target, dir Direction) (Result, error) {
	var res Result
	err := r.store.Transact(ctx, func(tx Store) error {
		exists, err := tx.TargetExists(ctx, target)
		if err != nil {
			return fmt.Errorf("looking up %s: %w", target, err)
		}
		if !exists {
			return fmt.Errorf("%s: %w", target, apperrors.ErrNotFound)
		}

		prev, err := tx.Find(ctx, userID, target)
		if err != nil {
			return fmt.Errorf("loading vote on %s: %w", target, err)
		}

		action, next := Transition(prev, dir)
		switch action {
		case ActionCreate:
			err = tx.Create(ctx, userID, target, next)
		case ActionDelete:
			err = tx.Delete(ctx, userID, target)
		case ActionFlip:
			err = tx.Update(ctx, userID, target, next)
		}
		if err != nil {
			return fmt.Errorf("%s vote on %s: %w", action, target, err)
		}

		res = Result{
			Target:    target,
			Previous:  prev,
			Direction: next,
			Action:    action,
			Delta:     Delta(prev, next),
		}
		return nil
	})
	return res, err
}

func lostRace(err error) bool {
	return errors.Is(err, ErrDuplicateVote) || errors.Is(err, ErrVoteMissing)
}

func (r *Reconciler) observeVote(kind Kind, action Action) {
	if r.recorder != nil {
		r.recorder.ObserveVote(kind, action)
	}
}

func (r *Reconciler) observeConflict(kind Kind, resolved bool) {
	if r.recorder != nil {
		r.recorder.ObserveConflict(kind, resolved)
	}
}
