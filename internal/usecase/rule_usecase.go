package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fintally/claimcore/internal/domain"
	"github.com/fintally/claimcore/internal/infrastructure/metrics"
)

// RuleUseCase manages the approval rule catalog. Rules are append-and-retire:
// there is no in-place edit, a changed rule is a new rule plus a deactivation.
type RuleUseCase struct {
	ruleRepo RuleRepository
	idGen    IDGenerator
	metrics  *metrics.Metrics
	cache    Cache
}

// NewRuleUseCase creates a new RuleUseCase.
func NewRuleUseCase(ruleRepo RuleRepository, idGen IDGenerator, metrics *metrics.Metrics) *RuleUseCase {
	return &RuleUseCase{
		ruleRepo: ruleRepo,
		idGen:    idGen,
		metrics:  metrics,
	}
}

// WithCache enables read-path caching of the active-rule listing. The matcher
// never reads through this cache: rule snapshots used for routing come from
// the database inside the submission transaction.
func (uc *RuleUseCase) WithCache(cache Cache) *RuleUseCase {
	uc.cache = cache
	return uc
}

const (
	activeRulesCacheKey = "rules:active"
	activeRulesCacheTTL = 30 * time.Second
)

// CreateRuleInput represents input for creating an approval rule.
type CreateRuleInput struct {
	Name           string
	RuleType       domain.RuleType
	Conditions     domain.RuleConditions
	Action         domain.RuleAction
	ApprovalConfig domain.ApprovalConfig
	Priority       int
}

// CreateRule validates and stores a new active rule. Two active rules may not
// share a priority; the tie-break on creation time is for rules whose
// priorities were set equal while one of them was inactive.
func (uc *RuleUseCase) CreateRule(ctx context.Context, input CreateRuleInput) (*domain.ApprovalRule, error) {
	now := time.Now().UTC()
	rule := &domain.ApprovalRule{
		ID:             uc.idGen.Generate(),
		Name:           input.Name,
		Type:           input.RuleType,
		Conditions:     input.Conditions,
		Action:         input.Action,
		ApprovalConfig: input.ApprovalConfig,
		Priority:       input.Priority,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := rule.Validate(); err != nil {
		return nil, err
	}

	taken, err := uc.ruleRepo.ActivePriorityExists(ctx, input.Priority)
	if err != nil {
		return nil, err
	}

	if taken {
		return nil, domain.ErrDuplicatePriority
	}

	if err := uc.ruleRepo.Create(ctx, rule); err != nil {
		return nil, err
	}

	uc.invalidateActiveRules(ctx)

	if uc.metrics != nil {
		uc.metrics.ActiveRules.Inc()
	}

	return rule, nil
}

// GetRule retrieves a rule by ID.
func (uc *RuleUseCase) GetRule(ctx context.Context, id string) (*domain.ApprovalRule, error) {
	return uc.ruleRepo.GetByID(ctx, id)
}

// ListRules lists rules, active and inactive, in priority order.
func (uc *RuleUseCase) ListRules(ctx context.Context, limit, offset int) ([]*domain.ApprovalRule, error) {
	limit, offset = domain.ValidatePagination(limit, offset)

	return uc.ruleRepo.List(ctx, limit, offset)
}

// ListActiveRules lists the active-rule snapshot in evaluation order.
func (uc *RuleUseCase) ListActiveRules(ctx context.Context) ([]*domain.ApprovalRule, error) {
	if uc.cache != nil {
		if cached, err := uc.cache.Get(ctx, activeRulesCacheKey); err == nil {
			var rules []*domain.ApprovalRule
			if err := json.Unmarshal([]byte(cached), &rules); err == nil {
				return rules, nil
			}
		}
	}

	rules, err := uc.ruleRepo.ListActive(ctx, nil)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if data, err := json.Marshal(rules); err == nil {
			_ = uc.cache.Set(ctx, activeRulesCacheKey, string(data), activeRulesCacheTTL)
		}
	}

	return rules, nil
}

func (uc *RuleUseCase) invalidateActiveRules(ctx context.Context) {
	if uc.cache != nil {
		_ = uc.cache.Delete(ctx, activeRulesCacheKey)
	}
}

// DeactivateRule retires a rule. Claims already routed by it keep their
// approval plans; only future submissions see the change.
func (uc *RuleUseCase) DeactivateRule(ctx context.Context, id string) error {
	rule, err := uc.ruleRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !rule.IsActive {
		return nil
	}

	if err := uc.ruleRepo.Deactivate(ctx, id, time.Now().UTC()); err != nil {
		return err
	}

	uc.invalidateActiveRules(ctx)

	if uc.metrics != nil {
		uc.metrics.ActiveRules.Dec()
	}

	return nil
}
