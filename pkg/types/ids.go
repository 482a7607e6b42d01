package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidSubscriberID = errors.New("invalid subscriber id")
	ErrInvalidInvoiceID    = errors.New("invalid invoice id")
)

// SubscriberID is the platform-issued identity of a chat subscriber, stored as
// the canonical base-10 rendering of the Telegram user id.
type SubscriberID string

func NewSubscriberID(telegramID int64) SubscriberID {
	return SubscriberID(strconv.FormatInt(telegramID, 10))
}

// ParseSubscriberID normalizes raw input ("  042" -> "42") and rejects
// anything that is not a positive integer.
func ParseSubscriberID(raw string) (SubscriberID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n <= 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidSubscriberID, raw)
	}
	return NewSubscriberID(n), nil
}

func (id SubscriberID) String() string { return string(id) }

// ChatID returns the numeric id used by the Telegram API.
func (id SubscriberID) ChatID() (int64, error) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSubscriberID, string(id))
	}
	return n, nil
}

// InvoiceID identifies a payment on both sides of the provider boundary
// (InvId). Its string form is the one that goes into signatures.
type InvoiceID int64

func ParseInvoiceID(raw string) (InvoiceID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidInvoiceID, raw)
	}
	return InvoiceID(n), nil
}

func (id InvoiceID) String() string { return strconv.FormatInt(int64(id), 10) }
