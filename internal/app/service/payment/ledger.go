package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/astrocashier/internal/models"
	"github.com/fatflowers/astrocashier/pkg/types"
)

// Ledger is the append/update store of payment intents.
// Storage "not found" is reported as nil, nil.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// WithTx returns a ledger whose statements run inside tx.
func (l *Ledger) WithTx(tx *gorm.DB) *Ledger {
	return &Ledger{db: tx}
}

// Create inserts a pending payment. A primary key clash surfaces as
// gorm.ErrDuplicatedKey.
func (l *Ledger) Create(ctx context.Context, p *models.Payment) error {
	if err := l.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (l *Ledger) FindByID(ctx context.Context, id types.InvoiceID) (*models.Payment, error) {
	var p models.Payment
	if err := l.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &p, nil
}

// FindPending returns the newest pending payment of the subscriber.
func (l *Ledger) FindPending(ctx context.Context, id types.SubscriberID) (*models.Payment, error) {
	return l.findLatest(ctx, id, types.PaymentStatusPending, "created_at")
}

// FindLatestPaid returns the most recently paid payment of the subscriber.
func (l *Ledger) FindLatestPaid(ctx context.Context, id types.SubscriberID) (*models.Payment, error) {
	return l.findLatest(ctx, id, types.PaymentStatusPaid, "paid_at")
}

func (l *Ledger) findLatest(ctx context.Context, id types.SubscriberID, status types.PaymentStatus, orderBy string) (*models.Payment, error) {
	var rows []*models.Payment
	err := l.db.WithContext(ctx).
		Where("subscriber_id = ? AND status = ?", id, status).
		Order(clause.OrderBy{Columns: []clause.OrderByColumn{
			{Column: clause.Column{Name: orderBy}, Desc: true},
			{Column: clause.Column{Name: "id"}, Desc: true},
		}}).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find %s payment: %w", status, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// MarkPaid moves a pending payment to paid. It returns false when the row
// was already paid (or absent), which is the idempotency gate for callbacks.
func (l *Ledger) MarkPaid(ctx context.Context, id types.InvoiceID, paidAt time.Time) (bool, error) {
	res := l.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, types.PaymentStatusPending).
		Updates(map[string]any{
			"status":  types.PaymentStatusPaid,
			"paid_at": paidAt,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark payment paid: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// Scan payment request/response.
type ScanPaymentsRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanPaymentsResponse struct {
	Items []*models.Payment `json:"items"`
	Total int64             `json:"total"`
}

var ErrUnknownField = errors.New("unknown field")

var scanFields = []string{"id", "subscriber_id", "amount", "status", "is_test", "paid_at", "created_at"}

// Scan implements paginated admin listing with filters.
func (l *Ledger) Scan(ctx context.Context, req *ScanPaymentsRequest) (*ScanPaymentsResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if req.Size <= 0 {
		req.Size = 10
	}
	if req.Size > 500 {
		req.Size = 500
	}
	if req.From < 0 {
		req.From = 0
	}
	for _, f := range req.Filters {
		if f == nil {
			return nil, fmt.Errorf("%w: nil filter", ErrUnknownField)
		}
		if !lo.Contains(scanFields, f.Field) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownField, f.Field)
		}
	}
	if req.SortBy != "" && !lo.Contains(scanFields, req.SortBy) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, req.SortBy)
	}

	tx := l.db.WithContext(ctx).Model(&models.Payment{})
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{types.FiltersAnd(req.Filters)}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count payments: %w", err)
	}

	var rows []*models.Payment
	q := tx.Limit(req.Size)
	if req.From > 0 {
		q = q.Offset(req.From)
	}
	sortBy := lo.Ternary(req.SortBy == "", "created_at", req.SortBy)
	q = q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: sortBy}, Desc: req.SortOrder != "asc"}}})
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	return &ScanPaymentsResponse{Items: rows, Total: total}, nil
}
