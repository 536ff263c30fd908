package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/cel-go/cel"

	"fleettrack/internal/core/id"
	"fleettrack/internal/core/tx"
	"fleettrack/internal/domain/catalogs/vehicle"
	"fleettrack/pkg/logger"
)

// Vehicles is the fleet surface the evaluator needs.
type Vehicles interface {
	ListByOrg(ctx context.Context, orgID id.ID) ([]*vehicle.Vehicle, error)
}

// Service provides business logic for reminder rules.
type Service struct {
	repo      Repository
	vehicles  Vehicles
	env       *cel.Env
	txManager tx.Manager
}

// NewService creates a reminder service with a fresh CEL environment.
func NewService(repo Repository, vehicles Vehicles, txManager tx.Manager) (*Service, error) {
	env, err := NewEnv()
	if err != nil {
		return nil, fmt.Errorf("build reminder env: %w", err)
	}
	return &Service{
		repo:      repo,
		vehicles:  vehicles,
		env:       env,
		txManager: txManager,
	}, nil
}

// Create compiles the condition and persists the rule. A condition that
// does not compile, references an unknown variable or is not boolean
// fails here, never at evaluation time.
func (s *Service) Create(ctx context.Context, rule *Rule) error {
	if err := rule.Validate(ctx); err != nil {
		return err
	}
	if _, err := Compile(s.env, rule.Condition); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, rule)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "reminder rule created",
		"rule_id", rule.ID,
		"name", rule.Name,
	)
	return nil
}

// GetByID returns one rule.
func (s *Service) GetByID(ctx context.Context, orgID, ruleID id.ID) (*Rule, error) {
	return s.repo.GetByID(ctx, orgID, ruleID)
}

// List returns the org's rules.
func (s *Service) List(ctx context.Context, orgID id.ID) ([]Rule, error) {
	return s.repo.List(ctx, orgID, false)
}

// Delete removes a rule. Past triggerings stay on record.
func (s *Service) Delete(ctx context.Context, orgID, ruleID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Delete(ctx, orgID, ruleID)
	})
}

// Evaluate runs one rule against the org's fleet and returns the vehicles
// it fires for. Triggerings are recorded when record is true (worker
// sweeps record; the ad-hoc evaluate endpoint does not).
func (s *Service) Evaluate(ctx context.Context, orgID, ruleID id.ID, record bool) ([]Firing, error) {
	rule, err := s.repo.GetByID(ctx, orgID, ruleID)
	if err != nil {
		return nil, err
	}
	return s.evaluateRule(ctx, rule, record)
}

// Sweep evaluates every active rule of one org and records triggerings.
func (s *Service) Sweep(ctx context.Context, orgID id.ID) (int, error) {
	rules, err := s.repo.List(ctx, orgID, true)
	if err != nil {
		return 0, err
	}

	fired := 0
	for i := range rules {
		firings, err := s.evaluateRule(ctx, &rules[i], true)
		if err != nil {
			logger.Warn(ctx, "reminder sweep: rule evaluation failed",
				"rule_id", rules[i].ID,
				"error", err,
			)
			continue
		}
		fired += len(firings)
	}
	return fired, nil
}

func (s *Service) evaluateRule(ctx context.Context, rule *Rule, record bool) ([]Firing, error) {
	prg, err := Compile(s.env, rule.Condition)
	if err != nil {
		// Persisted rules compiled at creation; a failure here means the
		// fact set changed underneath them.
		return nil, fmt.Errorf("compile stored rule %s: %w", rule.ID, err)
	}

	fleet, err := s.vehicles.ListByOrg(ctx, rule.OrgID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var firings []Firing
	for _, v := range fleet {
		out, _, err := prg.Eval(Activation(v, now))
		if err != nil {
			return nil, fmt.Errorf("evaluate rule %s for vehicle %s: %w", rule.ID, v.ID, err)
		}
		hit, ok := out.Value().(bool)
		if !ok || !hit {
			continue
		}
		firings = append(firings, Firing{VehicleID: v.ID, Plate: v.Plate()})
	}

	if record && len(firings) > 0 {
		err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			for _, f := range firings {
				t := &Triggering{
					ID:        id.New(),
					OrgID:     rule.OrgID,
					RuleID:    rule.ID,
					VehicleID: f.VehicleID,
					FiredAt:   now,
				}
				if err := s.repo.InsertTriggering(ctx, t); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("record triggerings: %w", err)
		}
	}

	return firings, nil
}
