package rpc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jjgarcianorway/anna-assistant-sub011/internal/consent"
	"github.com/jjgarcianorway/anna-assistant-sub011/internal/eventlog"
	"github.com/jjgarcianorway/anna-assistant-sub011/internal/health"
	"github.com/jjgarcianorway/anna-assistant-sub011/internal/mutation"
	"github.com/jjgarcianorway/anna-assistant-sub011/internal/pipeline"
	"github.com/jjgarcianorway/anna-assistant-sub011/internal/snapshot"
	"go.uber.org/zap"
)

// Service owns every collaborator a request might touch and exposes a
// single Handler entry point for Server. It is the only place the RPC
// transport and the domain packages meet.
type Service struct {
	pipeline  *pipeline.Pipeline
	executor  *mutation.Executor
	events    *eventlog.Log
	snapshot  *snapshot.Engine
	stats     *consent.Stats
	privilege consent.PrivilegeLevel
	log       *zap.SugaredLogger

	mu    sync.Mutex
	plans map[string]*mutation.MutationPlan
}

// NewService wires a Service around the already-constructed domain
// collaborators. privilege is the daemon's startup privilege probe
// result (§4.5); it gates whether a recipe that RequiresRoot may
// proceed straight to confirmation or must be blocked.
func NewService(p *pipeline.Pipeline, exec *mutation.Executor, events *eventlog.Log, snap *snapshot.Engine, privilege consent.PrivilegeLevel, log *zap.SugaredLogger) *Service {
	return &Service{
		pipeline:  p,
		executor:  exec,
		events:    events,
		snapshot:  snap,
		stats:     &consent.Stats{},
		privilege: privilege,
		log:       log,
		plans:     make(map[string]*mutation.MutationPlan),
	}
}

// Handle is the Handler passed to Server.New.
func (s *Service) Handle(ctx context.Context, req Request) Response {
	switch req.Method {
	case MethodQuery:
		return s.handleQuery(ctx, req)
	case MethodConfirm:
		return s.handleConfirm(ctx, req)
	case MethodRollback:
		return s.handleRollback(ctx, req)
	case MethodStatus:
		return s.handleStatus(ctx, req)
	case MethodHealth:
		return s.handleHealth(ctx, req)
	default:
		return errorResponse(req.ID, CodeUnknownMethod, fmt.Errorf("unknown method %q", req.Method))
	}
}

func (s *Service) handleQuery(ctx context.Context, req Request) Response {
	args, err := decodeArgs[QueryArgs](req.Args)
	if err != nil {
		return errorResponse(req.ID, CodeValidationFailed, err)
	}

	start := time.Now()
	answer, err := s.pipeline.Resolve(ctx, args.Text, args.Slots)
	if err != nil {
		return errorResponse(req.ID, CodeInternal, err)
	}

	rec := eventlog.NewRecord(req.ID, answer.Tier.String(), time.Now().Unix()).
		WithTeam(answer.Tier.String()).
		WithDuration(uint64(time.Since(start).Milliseconds()))

	switch {
	case answer.NeedsConfirm && answer.Recipe != nil:
		recipe := mutation.ChangeRecipe{
			Title:   answer.Recipe.Command,
			Summary: answer.Reason,
			Source:  answer.Tier.String(),
			Actions: []mutation.ChangeAction{{
				Kind:            mutation.RunReadOnly,
				Command:         answer.Recipe.Command,
				Args:            answer.Recipe.Args,
				Description:     answer.Recipe.Purpose,
				EstimatedImpact: answer.Recipe.ExpectedOutcome,
				Risk:            answer.Recipe.Risk,
			}},
			RollbackNotes: fmt.Sprintf(
				"no inverse action is recorded for %q; rerun the previous command manually or restore from the last snapshot if the result is unwanted",
				answer.Recipe.Command),
		}
		plan := mutation.NewPlan(uuid.NewString(), recipe)

		if answer.Recipe.RequiresRoot && s.privilege == consent.NoPrivilege {
			plan.State = mutation.BlockedPrivilege
			s.stats.Record(consent.OutcomeBlockedPrivilege)
			answer.Reason = fmt.Sprintf("this needs root and I don't have it; run it yourself: %s", consent.ManualCommandFor(answer.Cmdline))
			rec = rec.MarkFailed()
		} else {
			answer.Reason = fmt.Sprintf("plan %s awaiting confirmation (%s)", plan.ID, consent.ExpectedPhrase(plan.Risk))
			rec = rec.Verified(confidenceReliability(answer.Confidence))
		}

		s.mu.Lock()
		s.plans[plan.ID] = plan
		s.mu.Unlock()
	case answer.ClarifyRequired:
		rec.Outcome = eventlog.Clarification
	default:
		rec = rec.Verified(confidenceReliability(answer.Confidence))
	}

	if s.events != nil {
		_ = s.events.Append(rec)
	}

	return dataResponse(req.ID, answer)
}

// confidenceReliability maps a pipeline.Confidence band onto the
// event log's 0-100 reliability score.
func confidenceReliability(c pipeline.Confidence) uint8 {
	switch c {
	case pipeline.ConfidenceHigh:
		return 100
	case pipeline.ConfidenceMedium:
		return 80
	case pipeline.ConfidenceLow:
		return 40
	default:
		return 0
	}
}

func (s *Service) handleConfirm(ctx context.Context, req Request) Response {
	args, err := decodeArgs[ConfirmArgs](req.Args)
	if err != nil {
		return errorResponse(req.ID, CodeValidationFailed, err)
	}

	s.mu.Lock()
	plan, ok := s.plans[args.PlanID]
	s.mu.Unlock()
	if !ok {
		return errorResponse(req.ID, CodeInvalidRequest, fmt.Errorf("no such plan: %s", args.PlanID))
	}

	if plan.State == mutation.BlockedPrivilege {
		return errorResponse(req.ID, CodeInvalidRequest, fmt.Errorf("plan %s is blocked on privilege: run it manually instead", plan.ID))
	}

	expected := consent.ExpectedPhrase(plan.Risk)
	if !expected.Matches(args.Phrase) {
		s.stats.Record(consent.OutcomeCancelled)
		return errorResponse(req.ID, CodeValidationFailed, fmt.Errorf("expected confirmation phrase %q", expected))
	}

	plan.State = mutation.Confirmed
	if s.executor == nil {
		return errorResponse(req.ID, CodeInternal, fmt.Errorf("no executor configured"))
	}
	if err := s.executor.Execute(ctx, plan); err != nil {
		s.stats.Record(consent.OutcomeFailed)
		return errorResponse(req.ID, CodeInternal, err)
	}
	s.stats.Record(consent.OutcomeSuccess)
	return dataResponse(req.ID, plan)
}

func (s *Service) handleRollback(ctx context.Context, req Request) Response {
	args, err := decodeArgs[RollbackArgs](req.Args)
	if err != nil {
		return errorResponse(req.ID, CodeValidationFailed, err)
	}

	if !consent.ConfirmRollback.Matches(args.Phrase) {
		return errorResponse(req.ID, CodeValidationFailed, fmt.Errorf("expected confirmation phrase %q", consent.ConfirmRollback))
	}

	s.mu.Lock()
	plan, ok := s.plans[args.PlanID]
	s.mu.Unlock()
	if !ok {
		return errorResponse(req.ID, CodeInvalidRequest, fmt.Errorf("no such plan: %s", args.PlanID))
	}

	if s.executor == nil {
		return errorResponse(req.ID, CodeInternal, fmt.Errorf("no executor configured"))
	}
	if err := s.executor.Rollback(ctx, plan); err != nil {
		return errorResponse(req.ID, CodeInternal, err)
	}
	s.stats.Record(consent.OutcomeRolledBack)
	return dataResponse(req.ID, plan)
}

func (s *Service) handleStatus(ctx context.Context, req Request) Response {
	type statusResult struct {
		Stats consent.Stats       `json:"stats"`
		XP    eventlog.Aggregated `json:"xp"`
	}

	result := statusResult{Stats: *s.stats}
	if s.events != nil {
		agg, err := s.events.Aggregate()
		if err != nil {
			return errorResponse(req.ID, CodeInternal, err)
		}
		result.XP = agg
	}
	return dataResponse(req.ID, result)
}

func (s *Service) handleHealth(ctx context.Context, req Request) Response {
	if s.snapshot == nil {
		return errorResponse(req.ID, CodeInternal, fmt.Errorf("no snapshot engine configured"))
	}
	snap, err := s.snapshot.Capture(ctx)
	if err != nil {
		return errorResponse(req.ID, CodeInternal, err)
	}
	prev, _ := s.snapshot.LoadPrevious()
	summary := health.Build(snap, prev)
	_ = s.snapshot.Save(snap)

	if s.events != nil {
		rec := eventlog.NewRecord(uuid.NewString(), "get_health", time.Now().Unix())
		_ = s.events.Append(rec.Verified(100))
	}
	return dataResponse(req.ID, summary)
}
