package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintally/claimcore/internal/domain"
	"github.com/fintally/claimcore/internal/usecase"
)

// MockClaimRepository is a mock implementation of ClaimRepository.
type MockClaimRepository struct {
	mu     sync.RWMutex
	claims map[string]*domain.ExpenseClaim

	CreateFunc               func(ctx context.Context, claim *domain.ExpenseClaim) error
	GetByIDFunc              func(ctx context.Context, id string) (*domain.ExpenseClaim, error)
	GetByIDForUpdateFunc     func(ctx context.Context, tx usecase.Transaction, id string) (*domain.ExpenseClaim, error)
	UpdateStatusFunc         func(ctx context.Context, tx usecase.Transaction, id string, status domain.ClaimStatus, updatedAt time.Time) error
	MarkSubmittedFunc        func(ctx context.Context, tx usecase.Transaction, id string, total decimal.Decimal, submittedAt time.Time) error
	SetAutoApproveReasonFunc func(ctx context.Context, tx usecase.Transaction, id string, reason string, updatedAt time.Time) error
	ListByEmployeeFunc       func(ctx context.Context, employeeID string, limit, offset int) ([]*domain.ExpenseClaim, error)
	CountByStatusFunc        func(ctx context.Context) (map[domain.ClaimStatus]int64, error)
}

func NewMockClaimRepository() *MockClaimRepository {
	return &MockClaimRepository{
		claims: make(map[string]*domain.ExpenseClaim),
	}
}

func (m *MockClaimRepository) Create(ctx context.Context, claim *domain.ExpenseClaim) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, claim)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.claims[claim.ID] = claim
	return nil
}

func (m *MockClaimRepository) GetByID(ctx context.Context, id string) (*domain.ExpenseClaim, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.claims[id]; ok {
		return c, nil
	}
	return nil, domain.ErrClaimNotFound
}

func (m *MockClaimRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.ExpenseClaim, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockClaimRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.ClaimStatus, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.claims[id]
	if !ok {
		return domain.ErrClaimNotFound
	}
	c.Status = status
	c.UpdatedAt = updatedAt
	return nil
}

func (m *MockClaimRepository) MarkSubmitted(ctx context.Context, tx usecase.Transaction, id string, total decimal.Decimal, submittedAt time.Time) error {
	if m.MarkSubmittedFunc != nil {
		return m.MarkSubmittedFunc(ctx, tx, id, total, submittedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.claims[id]
	if !ok {
		return domain.ErrClaimNotFound
	}
	c.Status = domain.ClaimStatusSubmitted
	c.TotalAmount = total
	c.SubmittedAt = &submittedAt
	c.UpdatedAt = submittedAt
	return nil
}

func (m *MockClaimRepository) SetAutoApproveReason(ctx context.Context, tx usecase.Transaction, id string, reason string, updatedAt time.Time) error {
	if m.SetAutoApproveReasonFunc != nil {
		return m.SetAutoApproveReasonFunc(ctx, tx, id, reason, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.claims[id]
	if !ok {
		return domain.ErrClaimNotFound
	}
	c.AutoApproveReason = &reason
	c.UpdatedAt = updatedAt
	return nil
}

func (m *MockClaimRepository) ListByEmployee(ctx context.Context, employeeID string, limit, offset int) ([]*domain.ExpenseClaim, error) {
	if m.ListByEmployeeFunc != nil {
		return m.ListByEmployeeFunc(ctx, employeeID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.ExpenseClaim
	for _, c := range m.claims {
		if c.EmployeeID == employeeID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, limit, offset), nil
}

func (m *MockClaimRepository) CountByStatus(ctx context.Context) (map[domain.ClaimStatus]int64, error) {
	if m.CountByStatusFunc != nil {
		return m.CountByStatusFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[domain.ClaimStatus]int64)
	for _, c := range m.claims {
		counts[c.Status]++
	}
	return counts, nil
}

// MockItemRepository is a mock implementation of ItemRepository.
type MockItemRepository struct {
	mu    sync.RWMutex
	items map[string]*domain.ExpenseItem

	CreateFunc      func(ctx context.Context, tx usecase.Transaction, item *domain.ExpenseItem) error
	DeleteFunc      func(ctx context.Context, tx usecase.Transaction, id, claimID string) error
	ListByClaimFunc func(ctx context.Context, tx usecase.Transaction, claimID string) ([]*domain.ExpenseItem, error)
}

func NewMockItemRepository() *MockItemRepository {
	return &MockItemRepository{
		items: make(map[string]*domain.ExpenseItem),
	}
}

func (m *MockItemRepository) Create(ctx context.Context, tx usecase.Transaction, item *domain.ExpenseItem) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, item)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = item
	return nil
}

func (m *MockItemRepository) Delete(ctx context.Context, tx usecase.Transaction, id, claimID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, tx, id, claimID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok || item.ClaimID != claimID {
		return domain.ErrItemNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *MockItemRepository) ListByClaim(ctx context.Context, tx usecase.Transaction, claimID string) ([]*domain.ExpenseItem, error) {
	if m.ListByClaimFunc != nil {
		return m.ListByClaimFunc(ctx, tx, claimID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.ExpenseItem
	for _, item := range m.items {
		if item.ClaimID == claimID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MockRuleRepository is a mock implementation of RuleRepository.
type MockRuleRepository struct {
	mu    sync.RWMutex
	rules map[string]*domain.ApprovalRule

	CreateFunc               func(ctx context.Context, rule *domain.ApprovalRule) error
	GetByIDFunc              func(ctx context.Context, id string) (*domain.ApprovalRule, error)
	ListActiveFunc           func(ctx context.Context, tx usecase.Transaction) ([]*domain.ApprovalRule, error)
	ListFunc                 func(ctx context.Context, limit, offset int) ([]*domain.ApprovalRule, error)
	DeactivateFunc           func(ctx context.Context, id string, updatedAt time.Time) error
	ActivePriorityExistsFunc func(ctx context.Context, priority int) (bool, error)
}

func NewMockRuleRepository() *MockRuleRepository {
	return &MockRuleRepository{
		rules: make(map[string]*domain.ApprovalRule),
	}
}

func (m *MockRuleRepository) Create(ctx context.Context, rule *domain.ApprovalRule) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, rule)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules[rule.ID] = rule
	return nil
}

func (m *MockRuleRepository) GetByID(ctx context.Context, id string) (*domain.ApprovalRule, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.rules[id]; ok {
		return r, nil
	}
	return nil, domain.ErrRuleNotFound
}

func (m *MockRuleRepository) ListActive(ctx context.Context, tx usecase.Transaction) ([]*domain.ApprovalRule, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx, tx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.ApprovalRule
	for _, r := range m.rules {
		if r.IsActive {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MockRuleRepository) List(ctx context.Context, limit, offset int) ([]*domain.ApprovalRule, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.ApprovalRule
	for _, r := range m.rules {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return paginate(out, limit, offset), nil
}

func (m *MockRuleRepository) Deactivate(ctx context.Context, id string, updatedAt time.Time) error {
	if m.DeactivateFunc != nil {
		return m.DeactivateFunc(ctx, id, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rules[id]
	if !ok {
		return domain.ErrRuleNotFound
	}
	r.IsActive = false
	r.UpdatedAt = updatedAt
	return nil
}

func (m *MockRuleRepository) ActivePriorityExists(ctx context.Context, priority int) (bool, error) {
	if m.ActivePriorityExistsFunc != nil {
		return m.ActivePriorityExistsFunc(ctx, priority)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.rules {
		if r.IsActive && r.Priority == priority {
			return true, nil
		}
	}
	return false, nil
}

// MockApprovalRepository is a mock implementation of ApprovalRepository.
type MockApprovalRepository struct {
	mu        sync.RWMutex
	approvals map[string]*domain.Approval

	CreateFunc                func(ctx context.Context, tx usecase.Transaction, approval *domain.Approval) error
	CreateBatchFunc           func(ctx context.Context, tx usecase.Transaction, approvals []*domain.Approval) error
	GetByClaimForUpdateFunc   func(ctx context.Context, tx usecase.Transaction, claimID string) ([]*domain.Approval, error)
	GetByClaimFunc            func(ctx context.Context, claimID string) ([]*domain.Approval, error)
	UpdateDecisionFunc        func(ctx context.Context, tx usecase.Transaction, id string, status domain.ApprovalStatus, comment *string, decidedAt time.Time) error
	MarkSupersededFunc        func(ctx context.Context, tx usecase.Transaction, id, supersededBy string, updatedAt time.Time) error
	ListPendingByApproverFunc func(ctx context.Context, approverID string, limit, offset int) ([]*domain.Approval, error)
}

func NewMockApprovalRepository() *MockApprovalRepository {
	return &MockApprovalRepository{
		approvals: make(map[string]*domain.Approval),
	}
}

func (m *MockApprovalRepository) Create(ctx context.Context, tx usecase.Transaction, approval *domain.Approval) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, approval)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.approvals[approval.ID] = approval
	return nil
}

func (m *MockApprovalRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, approvals []*domain.Approval) error {
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, tx, approvals)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range approvals {
		m.approvals[a.ID] = a
	}
	return nil
}

func (m *MockApprovalRepository) GetByClaimForUpdate(ctx context.Context, tx usecase.Transaction, claimID string) ([]*domain.Approval, error) {
	if m.GetByClaimForUpdateFunc != nil {
		return m.GetByClaimForUpdateFunc(ctx, tx, claimID)
	}
	return m.GetByClaim(ctx, claimID)
}

func (m *MockApprovalRepository) GetByClaim(ctx context.Context, claimID string) ([]*domain.Approval, error) {
	if m.GetByClaimFunc != nil {
		return m.GetByClaimFunc(ctx, claimID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Approval
	for _, a := range m.approvals {
		if a.ClaimID == claimID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockApprovalRepository) UpdateDecision(ctx context.Context, tx usecase.Transaction, id string, status domain.ApprovalStatus, comment *string, decidedAt time.Time) error {
	if m.UpdateDecisionFunc != nil {
		return m.UpdateDecisionFunc(ctx, tx, id, status, comment, decidedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.approvals[id]
	if !ok {
		return domain.ErrApprovalNotFound
	}
	a.Status = status
	a.Comment = comment
	a.DecidedAt = &decidedAt
	a.UpdatedAt = decidedAt
	return nil
}

func (m *MockApprovalRepository) MarkSuperseded(ctx context.Context, tx usecase.Transaction, id, supersededBy string, updatedAt time.Time) error {
	if m.MarkSupersededFunc != nil {
		return m.MarkSupersededFunc(ctx, tx, id, supersededBy, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.approvals[id]
	if !ok {
		return domain.ErrApprovalNotFound
	}
	a.Superseded = true
	a.SupersededBy = &supersededBy
	a.UpdatedAt = updatedAt
	return nil
}

func (m *MockApprovalRepository) ListPendingByApprover(ctx context.Context, approverID string, limit, offset int) ([]*domain.Approval, error) {
	if m.ListPendingByApproverFunc != nil {
		return m.ListPendingByApproverFunc(ctx, approverID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Approval
	for _, a := range m.approvals {
		if a.ApproverID == approverID && a.Status == domain.ApprovalStatusPending && !a.Superseded {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, limit, offset), nil
}

// MockReimbursementRepository is a mock implementation of ReimbursementRepository.
type MockReimbursementRepository struct {
	mu             sync.RWMutex
	reimbursements map[string]*domain.Reimbursement

	CreateFunc              func(ctx context.Context, tx usecase.Transaction, r *domain.Reimbursement) error
	GetByIDFunc             func(ctx context.Context, id string) (*domain.Reimbursement, error)
	GetByClaimForUpdateFunc func(ctx context.Context, tx usecase.Transaction, claimID string) ([]*domain.Reimbursement, error)
	GetByClaimFunc          func(ctx context.Context, claimID string) ([]*domain.Reimbursement, error)
	UpdateStatusFunc        func(ctx context.Context, tx usecase.Transaction, id string, status domain.ReimbursementStatus, processedAt *time.Time, updatedAt time.Time) error
	AttachToBatchFunc       func(ctx context.Context, id, batchID string, updatedAt time.Time) error
}

func NewMockReimbursementRepository() *MockReimbursementRepository {
	return &MockReimbursementRepository{
		reimbursements: make(map[string]*domain.Reimbursement),
	}
}

func (m *MockReimbursementRepository) Create(ctx context.Context, tx usecase.Transaction, r *domain.Reimbursement) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, r)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reimbursements[r.ID] = r
	return nil
}

func (m *MockReimbursementRepository) GetByID(ctx context.Context, id string) (*domain.Reimbursement, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.reimbursements[id]; ok {
		return r, nil
	}
	return nil, domain.ErrReimbursementNotFound
}

func (m *MockReimbursementRepository) GetByClaimForUpdate(ctx context.Context, tx usecase.Transaction, claimID string) ([]*domain.Reimbursement, error) {
	if m.GetByClaimForUpdateFunc != nil {
		return m.GetByClaimForUpdateFunc(ctx, tx, claimID)
	}
	return m.GetByClaim(ctx, claimID)
}

func (m *MockReimbursementRepository) GetByClaim(ctx context.Context, claimID string) ([]*domain.Reimbursement, error) {
	if m.GetByClaimFunc != nil {
		return m.GetByClaimFunc(ctx, claimID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Reimbursement
	for _, r := range m.reimbursements {
		if r.ClaimID == claimID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockReimbursementRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.ReimbursementStatus, processedAt *time.Time, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status, processedAt, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reimbursements[id]
	if !ok {
		return domain.ErrReimbursementNotFound
	}
	r.Status = status
	r.ProcessedAt = processedAt
	r.UpdatedAt = updatedAt
	return nil
}

func (m *MockReimbursementRepository) AttachToBatch(ctx context.Context, id, batchID string, updatedAt time.Time) error {
	if m.AttachToBatchFunc != nil {
		return m.AttachToBatchFunc(ctx, id, batchID, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reimbursements[id]
	if !ok {
		return domain.ErrReimbursementNotFound
	}
	r.BatchID = &batchID
	r.UpdatedAt = updatedAt
	return nil
}

// MockRateRepository is a mock implementation of RateRepository.
type MockRateRepository struct {
	mu    sync.RWMutex
	rates []*domain.ExchangeRate

	CreateFunc    func(ctx context.Context, rate *domain.ExchangeRate) error
	GetLatestFunc func(ctx context.Context, fromCurrency, toCurrency string, asOf time.Time) (*domain.ExchangeRate, error)
}

func NewMockRateRepository() *MockRateRepository {
	return &MockRateRepository{}
}

func (m *MockRateRepository) Create(ctx context.Context, rate *domain.ExchangeRate) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, rate)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rates = append(m.rates, rate)
	return nil
}

func (m *MockRateRepository) GetLatest(ctx context.Context, fromCurrency, toCurrency string, asOf time.Time) (*domain.ExchangeRate, error) {
	if m.GetLatestFunc != nil {
		return m.GetLatestFunc(ctx, fromCurrency, toCurrency, asOf)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var best *domain.ExchangeRate
	for _, r := range m.rates {
		if r.FromCurrency != fromCurrency || r.ToCurrency != toCurrency || r.EffectiveDate.After(asOf) {
			continue
		}
		if best == nil || r.EffectiveDate.After(best.EffectiveDate) {
			best = r
		}
	}
	if best == nil {
		return nil, domain.ErrRateNotFound
	}
	return best, nil
}

// MockBudgetRepository is a mock implementation of BudgetRepository.
type MockBudgetRepository struct {
	mu      sync.RWMutex
	budgets []*domain.Budget

	CreateFunc                 func(ctx context.Context, budget *domain.Budget) error
	GetActiveForDepartmentFunc func(ctx context.Context, departmentID string, asOf time.Time) ([]*domain.Budget, error)
}

func NewMockBudgetRepository() *MockBudgetRepository {
	return &MockBudgetRepository{}
}

func (m *MockBudgetRepository) Create(ctx context.Context, budget *domain.Budget) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, budget)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.budgets = append(m.budgets, budget)
	return nil
}

func (m *MockBudgetRepository) GetActiveForDepartment(ctx context.Context, departmentID string, asOf time.Time) ([]*domain.Budget, error) {
	if m.GetActiveForDepartmentFunc != nil {
		return m.GetActiveForDepartmentFunc(ctx, departmentID, asOf)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Budget
	for _, b := range m.budgets {
		if !b.Covers(asOf) {
			continue
		}
		if b.DepartmentID == nil || *b.DepartmentID == departmentID {
			out = append(out, b)
		}
	}
	return out, nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc         func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
	GetUnpublishedFunc func(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublishedFunc  func(ctx context.Context, id string, publishedAt time.Time) error
	GetByAggregateFunc  func(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error)
	DeletePublishedFunc func(ctx context.Context, before time.Time) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if m.GetUnpublishedFunc != nil {
		return m.GetUnpublishedFunc(ctx, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published {
			out = append(out, e)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	if m.MarkPublishedFunc != nil {
		return m.MarkPublishedFunc(ctx, id, publishedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
			return nil
		}
	}
	return nil
}

func (m *MockOutboxRepository) GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error) {
	if m.GetByAggregateFunc != nil {
		return m.GetByAggregateFunc(ctx, aggregateType, aggregateID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.events {
		if e.AggregateType == aggregateType && e.AggregateID == aggregateID {
			out = append(out, e)
		}
	}
	return paginate(out, limit, offset), nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	if m.DeletePublishedFunc != nil {
		return m.DeletePublishedFunc(ctx, before)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.events[:0]
	for _, e := range m.events {
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			continue
		}
		kept = append(kept, e)
	}
	m.events = kept
	return nil
}

// Events returns every event written to the mock, for assertions.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.OutboxEvent, len(m.events))
	copy(out, m.events)
	return out
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	mu         sync.Mutex
	Committed  bool
	RolledBack bool

	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.Committed {
		m.RolledBack = true
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	mu      sync.Mutex
	counter int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%04d", m.counter)
}

// MockPaymentRail is a mock implementation of PaymentRail.
type MockPaymentRail struct {
	mu    sync.Mutex
	calls []*domain.Reimbursement

	PayFunc func(ctx context.Context, r *domain.Reimbursement) error
}

func NewMockPaymentRail() *MockPaymentRail {
	return &MockPaymentRail{}
}

func (m *MockPaymentRail) Pay(ctx context.Context, r *domain.Reimbursement) error {
	m.mu.Lock()
	m.calls = append(m.calls, r)
	m.mu.Unlock()
	if m.PayFunc != nil {
		return m.PayFunc(ctx, r)
	}
	return nil
}

// Calls returns the reimbursements the rail was asked to pay.
func (m *MockPaymentRail) Calls() []*domain.Reimbursement {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Reimbursement, len(m.calls))
	copy(out, m.calls)
	return out
}

func paginate[T any](in []T, limit, offset int) []T {
	if offset >= len(in) {
		return nil
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}
