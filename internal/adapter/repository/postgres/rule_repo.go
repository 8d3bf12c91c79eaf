package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fintally/claimcore/internal/domain"
	"github.com/fintally/claimcore/internal/usecase"
)

const ruleColumns = `id, name, rule_type, action, priority, is_active,
	conditions, approval_config, created_at, updated_at`

// RuleRepository implements usecase.RuleRepository. Conditions and the
// approval config are stored as jsonb; the typed condition schema is enforced
// in the domain before a rule ever reaches this layer.
type RuleRepository struct {
	pool *pgxpool.Pool
}

// NewRuleRepository creates a new RuleRepository.
func NewRuleRepository(pool *pgxpool.Pool) *RuleRepository {
	return &RuleRepository{pool: pool}
}

// Create inserts a new rule.
func (r *RuleRepository) Create(ctx context.Context, rule *domain.ApprovalRule) error {
	conditions, err := json.Marshal(rule.Conditions)
	if err != nil {
		return err
	}

	config, err := json.Marshal(rule.ApprovalConfig)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO approval_rules (`+ruleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rule.ID,
		rule.Name,
		string(rule.Type),
		string(rule.Action),
		rule.Priority,
		rule.IsActive,
		conditions,
		config,
		timeToPgTimestamptz(rule.CreatedAt),
		timeToPgTimestamptz(rule.UpdatedAt),
	)

	return err
}

// GetByID retrieves a rule by ID.
func (r *RuleRepository) GetByID(ctx context.Context, id string) (*domain.ApprovalRule, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+ruleColumns+` FROM approval_rules WHERE id = $1`, id)

	return scanRule(row)
}

// ListActive returns the active-rule snapshot in evaluation order. With a
// non-nil tx the snapshot is read inside that transaction, so a submission
// sees a consistent rule set even while rules are being edited.
func (r *RuleRepository) ListActive(ctx context.Context, tx usecase.Transaction) ([]*domain.ApprovalRule, error) {
	q := querier(r.pool)
	if tx != nil {
		q = tx.(*Tx).PgxTx()
	}

	rows, err := q.Query(ctx, `
		SELECT `+ruleColumns+` FROM approval_rules
		WHERE is_active
		ORDER BY priority, created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRules(rows)
}

// List lists rules with pagination, active and inactive.
func (r *RuleRepository) List(ctx context.Context, limit, offset int) ([]*domain.ApprovalRule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+ruleColumns+` FROM approval_rules
		ORDER BY priority, created_at
		LIMIT $1 OFFSET $2`,
		int32(limit), int32(offset),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRules(rows)
}

// Deactivate retires a rule.
func (r *RuleRepository) Deactivate(ctx context.Context, id string, updatedAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE approval_rules SET is_active = FALSE, updated_at = $2 WHERE id = $1`,
		id, timeToPgTimestamptz(updatedAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRuleNotFound
	}

	return nil
}

// ActivePriorityExists reports whether an active rule already uses the priority.
func (r *RuleRepository) ActivePriorityExists(ctx context.Context, priority int) (bool, error) {
	var exists bool

	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM approval_rules WHERE is_active AND priority = $1)`,
		priority,
	).Scan(&exists)

	return exists, err
}

func collectRules(rows pgx.Rows) ([]*domain.ApprovalRule, error) {
	var rules []*domain.ApprovalRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}

		rules = append(rules, rule)
	}

	return rules, rows.Err()
}

func scanRule(row pgx.Row) (*domain.ApprovalRule, error) {
	var (
		rule       domain.ApprovalRule
		ruleType   string
		action     string
		conditions []byte
		config     []byte
		createdAt  pgtype.Timestamptz
		updatedAt  pgtype.Timestamptz
	)

	err := row.Scan(
		&rule.ID,
		&rule.Name,
		&ruleType,
		&action,
		&rule.Priority,
		&rule.IsActive,
		&conditions,
		&config,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRuleNotFound
		}

		return nil, err
	}

	if err := json.Unmarshal(conditions, &rule.Conditions); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(config, &rule.ApprovalConfig); err != nil {
		return nil, err
	}

	rule.Type = domain.RuleType(ruleType)
	rule.Action = domain.RuleAction(action)
	rule.CreatedAt = createdAt.Time
	rule.UpdatedAt = updatedAt.Time

	return &rule, nil
}
