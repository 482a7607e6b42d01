package notification_handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"

	"github.com/fatflowers/astrocashier/internal/platform/robokassa"
	"github.com/fatflowers/astrocashier/pkg/types"
)

var ErrMalformedBody = errors.New("malformed callback body")

type NotificationParser interface {
	GetProvider(ctx context.Context) types.PaymentProvider
	GetNotificationTime(ctx context.Context) time.Time
	GetInvoiceID(ctx context.Context) string
	GetData(ctx context.Context) map[string]string
	GetNotification(ctx context.Context) (*robokassa.ResultNotification, error)
}

// ParseParams flattens a callback request into one parameter map. Query
// values are read first; body values (form or JSON) override them. JSON
// numbers keep their literal text so "149.000000" stays "149.000000".
func ParseParams(r *http.Request) (map[string]string, error) {
	params := map[string]string{}
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	if r.Body == nil || r.Method == http.MethodGet {
		return params, nil
	}

	ct := r.Header.Get("Content-Type")
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	switch strings.TrimSpace(strings.ToLower(ct)) {
	case binding.MIMEJSON:
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		var body map[string]any
		if err := dec.Decode(&body); err != nil {
			if errors.Is(err, io.EOF) {
				return params, nil
			}
			return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
		}
		for k, v := range body {
			switch val := v.(type) {
			case nil:
			case string:
				params[k] = val
			case json.Number:
				params[k] = val.String()
			default:
				params[k] = fmt.Sprint(val)
			}
		}
	case binding.MIMEPOSTForm, binding.MIMEMultipartPOSTForm:
		if err := r.ParseMultipartForm(1 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
		}
		for k, v := range r.PostForm {
			if len(v) > 0 {
				params[k] = v[0]
			}
		}
	}
	return params, nil
}
