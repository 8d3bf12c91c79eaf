package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/fintally/claimcore/internal/adapter/http/handler"
	apimiddleware "github.com/fintally/claimcore/internal/adapter/http/middleware"
	"github.com/fintally/claimcore/internal/domain"
	"github.com/fintally/claimcore/internal/usecase"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	rl := apimiddleware.NewRateLimiter(1, 1)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_IdempotencyMiddlewareInvokesStore(t *testing.T) {
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	body := `{"employee_id":"emp-1","department_id":"dep-1","currency":"USD"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/claims/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if !store.checkCalled {
		t.Fatalf("expected idempotency store to be used")
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"POST /api/v1/claims/",
		"GET /api/v1/claims/",
		"GET /api/v1/claims/{id}",
		"POST /api/v1/claims/{id}/items",
		"POST /api/v1/claims/{id}/submit",
		"POST /api/v1/claims/{id}/decisions",
		"POST /api/v1/claims/{id}/escalate",
		"POST /api/v1/claims/{id}/reimburse",
		"GET /api/v1/approvals/pending",
		"POST /api/v1/rules/",
		"POST /api/v1/rates/",
		"POST /api/v1/budgets",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	cfg := RouterConfig{
		ClaimHandler:         handler.NewClaimHandler(&stubClaimService{}),
		ApprovalHandler:      handler.NewApprovalHandler(&stubApprovalService{}),
		RuleHandler:          handler.NewRuleHandler(&stubRuleService{}),
		ReimbursementHandler: handler.NewReimbursementHandler(&stubReimbursementService{}),
		RateHandler:          handler.NewRateHandler(&stubRateService{}),
		BudgetHandler:        handler.NewBudgetHandler(&stubBudgetService{}),
		HealthHandler:        &handler.HealthHandler{},
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

type stubClaimService struct{}

func (stubClaimService) CreateClaim(ctx context.Context, input usecase.CreateClaimInput) (*domain.ExpenseClaim, error) {
	return &domain.ExpenseClaim{ID: "claim"}, nil
}

func (stubClaimService) AddItem(ctx context.Context, input usecase.AddItemInput) (*domain.ExpenseItem, error) {
	return &domain.ExpenseItem{ID: "item"}, nil
}

func (stubClaimService) RemoveItem(ctx context.Context, claimID, itemID, employeeID string) error {
	return nil
}

func (stubClaimService) SubmitClaim(ctx context.Context, claimID, submitterID string) (*usecase.SubmitResult, error) {
	return &usecase.SubmitResult{Claim: &domain.ExpenseClaim{ID: claimID}}, nil
}

func (stubClaimService) GetClaim(ctx context.Context, id string) (*domain.ExpenseClaim, error) {
	return &domain.ExpenseClaim{ID: id}, nil
}

func (stubClaimService) ListClaimsByEmployee(ctx context.Context, input usecase.ListClaimsByEmployeeInput) ([]*domain.ExpenseClaim, error) {
	return []*domain.ExpenseClaim{}, nil
}

func (stubClaimService) ClaimEvents(ctx context.Context, claimID string, limit, offset int) ([]*domain.OutboxEvent, error) {
	return []*domain.OutboxEvent{}, nil
}

func (stubClaimService) Stats(ctx context.Context) (*usecase.ClaimStats, error) {
	return &usecase.ClaimStats{ByStatus: map[domain.ClaimStatus]int64{}}, nil
}

type stubApprovalService struct{}

func (stubApprovalService) RecordDecision(ctx context.Context, input usecase.RecordDecisionInput) (*usecase.DecisionResult, error) {
	return &usecase.DecisionResult{
		Approval: &domain.Approval{ID: input.ApprovalID},
		Outcome:  domain.OutcomeStillPending,
		Claim:    &domain.ExpenseClaim{ID: input.ClaimID},
	}, nil
}

func (stubApprovalService) Escalate(ctx context.Context, input usecase.EscalateInput) (*domain.Approval, error) {
	return &domain.Approval{ID: "replacement"}, nil
}

func (stubApprovalService) ListPending(ctx context.Context, approverID string, limit, offset int) ([]*domain.Approval, error) {
	return []*domain.Approval{}, nil
}

func (stubApprovalService) GetPlan(ctx context.Context, claimID string) ([]*domain.Approval, domain.PlanOutcome, error) {
	return []*domain.Approval{}, domain.OutcomeStillPending, nil
}

type stubRuleService struct{}

func (stubRuleService) CreateRule(ctx context.Context, input usecase.CreateRuleInput) (*domain.ApprovalRule, error) {
	return &domain.ApprovalRule{ID: "rule"}, nil
}

func (stubRuleService) GetRule(ctx context.Context, id string) (*domain.ApprovalRule, error) {
	return &domain.ApprovalRule{ID: id}, nil
}

func (stubRuleService) ListRules(ctx context.Context, limit, offset int) ([]*domain.ApprovalRule, error) {
	return []*domain.ApprovalRule{}, nil
}

func (stubRuleService) ListActiveRules(ctx context.Context) ([]*domain.ApprovalRule, error) {
	return []*domain.ApprovalRule{}, nil
}

func (stubRuleService) DeactivateRule(ctx context.Context, id string) error {
	return nil
}

type stubReimbursementService struct{}

func (stubReimbursementService) Process(ctx context.Context, input usecase.ProcessInput) (*domain.Reimbursement, error) {
	return &domain.Reimbursement{ID: "reimb", ClaimID: input.ClaimID}, nil
}

func (stubReimbursementService) Get(ctx context.Context, id string) (*domain.Reimbursement, error) {
	return &domain.Reimbursement{ID: id}, nil
}

func (stubReimbursementService) GetByClaim(ctx context.Context, claimID string) ([]*domain.Reimbursement, error) {
	return []*domain.Reimbursement{}, nil
}

func (stubReimbursementService) AttachToBatch(ctx context.Context, id, batchID string) error {
	return nil
}

type stubRateService struct{}

func (stubRateService) IngestRate(ctx context.Context, input usecase.IngestRateInput) (*domain.ExchangeRate, error) {
	return &domain.ExchangeRate{ID: "rate"}, nil
}

func (stubRateService) Convert(ctx context.Context, amount decimal.Decimal, from, to string, asOf time.Time) (decimal.Decimal, error) {
	return amount, nil
}

type stubBudgetService struct{}

func (stubBudgetService) CreateBudget(ctx context.Context, input usecase.CreateBudgetInput) (*domain.Budget, error) {
	return &domain.Budget{ID: "budget"}, nil
}

type stubIdempotencyStore struct {
	checkCalled bool
}

func (s *stubIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.checkCalled = true
	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return nil
}
