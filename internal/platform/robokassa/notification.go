package robokassa

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatflowers/astrocashier/pkg/types"
)

var ErrMissingParam = errors.New("missing required parameter")

const (
	ParamOutSum         = "OutSum"
	ParamInvID          = "InvId"
	ParamSignatureValue = "SignatureValue"
)

// ResultNotification is a parsed ResultURL callback. OutSum and RawInvID
// keep the exact text received so they can be fed back into the signature.
type ResultNotification struct {
	OutSum         string
	RawInvID       string
	InvoiceID      types.InvoiceID
	SignatureValue string
}

// ParseResultNotification extracts the callback fields from merged
// parameters. It returns ErrMissingParam or types.ErrInvalidInvoiceID.
func ParseResultNotification(params map[string]string) (*ResultNotification, error) {
	var missing []string
	get := func(key string) string {
		v := params[key]
		if strings.TrimSpace(v) == "" {
			missing = append(missing, key)
		}
		return v
	}
	n := &ResultNotification{
		OutSum:         get(ParamOutSum),
		RawInvID:       get(ParamInvID),
		SignatureValue: get(ParamSignatureValue),
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingParam, strings.Join(missing, ","))
	}
	id, err := types.ParseInvoiceID(n.RawInvID)
	if err != nil {
		return nil, err
	}
	n.InvoiceID = id
	return n, nil
}

// SuccessResponse is the body the provider expects to stop retrying.
func SuccessResponse(id types.InvoiceID) string {
	return "OK" + id.String()
}
