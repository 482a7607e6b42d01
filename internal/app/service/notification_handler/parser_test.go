package notification_handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseParams_BodyOverridesQuery(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/cb?InvId=1&OutSum=1.00&Shp_x=q", strings.NewReader("InvId=1001&SignatureValue=abc"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")

	params, err := ParseParams(r)
	require.NoError(t, err)
	require.Equal(t, "1001", params["InvId"])
	require.Equal(t, "1.00", params["OutSum"])
	require.Equal(t, "abc", params["SignatureValue"])
	require.Equal(t, "q", params["Shp_x"])
}

func TestParseParams_JSONKeepsNumberText(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/cb", strings.NewReader(`{"OutSum":149.000000,"InvId":1001,"SignatureValue":"ABC","IsTest":null}`))
	r.Header.Set("Content-Type", "application/json")

	params, err := ParseParams(r)
	require.NoError(t, err)
	require.Equal(t, "149.000000", params["OutSum"])
	require.Equal(t, "1001", params["InvId"])
	require.NotContains(t, params, "IsTest")
}

func TestParseParams_GetUsesQuery(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/cb?OutSum=149.00&InvId=5&SignatureValue=x", nil)

	params, err := ParseParams(r)
	require.NoError(t, err)
	require.Equal(t, "5", params["InvId"])
}

func TestParseParams_MalformedJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/cb", strings.NewReader(`{"OutSum":`))
	r.Header.Set("Content-Type", "application/json")

	_, err := ParseParams(r)
	require.ErrorIs(t, err, ErrMalformedBody)
}

func TestParseParams_EmptyJSONBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/cb?InvId=3", strings.NewReader(""))
	r.Header.Set("Content-Type", "application/json")

	params, err := ParseParams(r)
	require.NoError(t, err)
	require.Equal(t, "3", params["InvId"])
}
