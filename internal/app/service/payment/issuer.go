package payment

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/astrocashier/internal/models"
	"github.com/fatflowers/astrocashier/internal/platform/robokassa"
	"github.com/fatflowers/astrocashier/pkg/clock"
	"github.com/fatflowers/astrocashier/pkg/config"
	"github.com/fatflowers/astrocashier/pkg/logctx"
	"github.com/fatflowers/astrocashier/pkg/metrics"
	"github.com/fatflowers/astrocashier/pkg/tool"
	"github.com/fatflowers/astrocashier/pkg/types"
)

// EntitlementChecker answers whether a subscriber currently has access.
type EntitlementChecker interface {
	IsEntitled(ctx context.Context, id types.SubscriberID) (bool, error)
}

// LinkBuilder signs payment links for the merchant account.
type LinkBuilder interface {
	Validate() error
	IsTest() bool
	PaymentURL(link robokassa.PaymentLink) (string, error)
}

type IssueOutcome string

const (
	IssueOutcomeCreated       IssueOutcome = "created"
	IssueOutcomeReused        IssueOutcome = "reused"
	IssueOutcomeBlocked       IssueOutcome = "blocked"
	IssueOutcomeMisconfigured IssueOutcome = "misconfigured"
)

type IssueResult struct {
	Outcome    IssueOutcome    `json:"outcome"`
	InvoiceID  types.InvoiceID `json:"invoice_id,string,omitempty"`
	PaymentURL string          `json:"payment_url,omitempty"`
}

// Issuer hands out payment links, keeping at most one pending payment per
// subscriber.
type Issuer struct {
	item        types.PaymentItem
	ledger      *Ledger
	links       LinkBuilder
	entitlement EntitlementChecker
	nextID      tool.InvoiceIDGenerator
	clock       clock.Clock
	log         *zap.SugaredLogger
}

func NewIssuer(
	cfg *config.Config,
	ledger *Ledger,
	links LinkBuilder,
	entitlement EntitlementChecker,
	nextID tool.InvoiceIDGenerator,
	clk clock.Clock,
	log *zap.SugaredLogger,
) *Issuer {
	return &Issuer{
		item:        cfg.PaymentItem,
		ledger:      ledger,
		links:       links,
		entitlement: entitlement,
		nextID:      nextID,
		clock:       clk,
		log:         log,
	}
}

// RequestPayment returns a link for the subscriber to pay. Blocked and
// misconfigured outcomes are not errors; no payment row is written for them.
func (s *Issuer) RequestPayment(ctx context.Context, id types.SubscriberID) (*IssueResult, error) {
	lg := logctx.FromCtx(ctx, s.log).With("subscriber_id", id.String())

	entitled, err := s.entitlement.IsEntitled(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to check entitlement: %w", err)
	}
	if entitled {
		lg.Infow("payment_issue_blocked", "reason", "already entitled")
		return s.done(&IssueResult{Outcome: IssueOutcomeBlocked}), nil
	}

	if err := s.links.Validate(); err != nil {
		lg.Errorw("payment_issue_misconfigured", "err", err)
		return s.done(&IssueResult{Outcome: IssueOutcomeMisconfigured}), nil
	}

	pending, err := s.ledger.FindPending(ctx, id)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		url, err := s.link(pending)
		if err != nil {
			return nil, err
		}
		lg.Infow("payment_issue_reused", "invoice_id", pending.ID.String())
		return s.done(&IssueResult{Outcome: IssueOutcomeReused, InvoiceID: pending.ID, PaymentURL: url}), nil
	}

	amount, err := s.item.CanonicalAmount()
	if err != nil {
		return nil, fmt.Errorf("failed to format amount: %w", err)
	}
	p := &models.Payment{
		ID:           s.nextID(),
		SubscriberID: id,
		Amount:       amount,
		Status:       types.PaymentStatusPending,
		Description:  s.item.Description,
		IsTest:       s.links.IsTest(),
		CreatedAt:    s.clock.Now(),
	}

	err = s.ledger.Create(ctx, p)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		lg.Warnw("payment_invoice_id_collision", "invoice_id", p.ID.String())
		p.ID = s.nextID()
		err = s.ledger.Create(ctx, p)
	}
	if err != nil {
		return nil, err
	}

	url, err := s.link(p)
	if err != nil {
		return nil, err
	}
	lg.Infow("payment_issued", "invoice_id", p.ID.String(), "amount", p.Amount)
	return s.done(&IssueResult{Outcome: IssueOutcomeCreated, InvoiceID: p.ID, PaymentURL: url}), nil
}

func (s *Issuer) link(p *models.Payment) (string, error) {
	url, err := s.links.PaymentURL(robokassa.PaymentLink{
		InvoiceID:   p.ID,
		OutSum:      p.Amount,
		Description: p.Description,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build payment url: %w", err)
	}
	return url, nil
}

func (s *Issuer) done(r *IssueResult) *IssueResult {
	metrics.MetricsPaymentIssue.Inc(string(r.Outcome))
	return r
}
