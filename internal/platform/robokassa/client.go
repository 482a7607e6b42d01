package robokassa

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/fatflowers/astrocashier/pkg/config"
	"github.com/fatflowers/astrocashier/pkg/types"
)

// Client builds signed payment links and authenticates callbacks for one
// merchant account.
type Client struct {
	cfg config.RobokassaConfig
}

func NewClient(cfg *config.Config) *Client {
	return &Client{cfg: cfg.Robokassa}
}

// Validate reports config.ErrMisconfigured when the merchant block is
// incomplete.
func (c *Client) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: client is nil", config.ErrMisconfigured)
	}
	return c.cfg.Validate()
}

func (c *Client) algorithm() HashAlgorithm {
	return HashAlgorithm(c.cfg.HashAlgorithm)
}

func (c *Client) IsTest() bool { return c.cfg.IsTest }

type PaymentLink struct {
	InvoiceID   types.InvoiceID
	OutSum      string
	Description string
}

// PaymentURL renders the redirect to the hosted payment page.
func (c *Client) PaymentURL(link PaymentLink) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	if link.InvoiceID <= 0 {
		return "", types.ErrInvalidInvoiceID
	}
	if link.OutSum == "" {
		return "", errors.New("out sum is empty")
	}
	base, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse base url: %w", err)
	}

	invID := link.InvoiceID.String()
	q := base.Query()
	q.Set("MerchantLogin", c.cfg.MerchantLogin)
	q.Set("OutSum", link.OutSum)
	q.Set("InvId", invID)
	q.Set("SignatureValue", Sign(c.algorithm(), c.cfg.MerchantLogin, link.OutSum, invID, c.cfg.Password1))
	if link.Description != "" {
		q.Set("Description", link.Description)
	}
	if c.cfg.Culture != "" {
		q.Set("Culture", c.cfg.Culture)
	}
	if c.cfg.Email != "" {
		q.Set("Email", c.cfg.Email)
	}
	if c.cfg.IsTest {
		q.Set("IsTest", "1")
	}
	base.RawQuery = q.Encode()
	return base.String(), nil
}

// VerifyResult authenticates a ResultURL callback with Password2.
func (c *Client) VerifyResult(n *ResultNotification) bool {
	if c == nil || n == nil || c.cfg.Password2 == "" {
		return false
	}
	return Verify(c.algorithm(), n.OutSum, n.RawInvID, c.cfg.Password2, n.SignatureValue)
}
