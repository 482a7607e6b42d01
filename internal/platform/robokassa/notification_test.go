package robokassa

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fatflowers/astrocashier/pkg/types"
)

func TestParseResultNotification(t *testing.T) {
	n, err := ParseResultNotification(map[string]string{
		"OutSum":         "149.000000",
		"InvId":          "1001",
		"SignatureValue": "ABC",
	})
	require.NoError(t, err)
	require.Equal(t, "149.000000", n.OutSum)
	require.Equal(t, types.InvoiceID(1001), n.InvoiceID)
	require.Equal(t, "ABC", n.SignatureValue)
}

func TestParseResultNotification_KeepsRawText(t *testing.T) {
	n, err := ParseResultNotification(map[string]string{
		"OutSum":         " 149.00 ",
		"InvId":          "1001 ",
		"SignatureValue": "abc",
	})
	require.NoError(t, err)
	require.Equal(t, " 149.00 ", n.OutSum)
	require.Equal(t, "1001 ", n.RawInvID)
	require.Equal(t, types.InvoiceID(1001), n.InvoiceID)

	// the signature covers the text as received
	sig := SignResult(HashMD5, " 149.00 ", "1001 ", "pw2")
	require.True(t, Verify(HashMD5, n.OutSum, n.RawInvID, "pw2", sig))
	require.False(t, Verify(HashMD5, "149.00", "1001", "pw2", sig))

	_, err = ParseResultNotification(map[string]string{"OutSum": "   ", "InvId": "1001", "SignatureValue": "x"})
	require.ErrorIs(t, err, ErrMissingParam)
}

func TestParseResultNotification_Errors(t *testing.T) {
	_, err := ParseResultNotification(map[string]string{"OutSum": "149.00", "InvId": "1001"})
	require.ErrorIs(t, err, ErrMissingParam)
	require.Contains(t, err.Error(), "SignatureValue")

	for _, inv := range []string{"abc", "0", "-5", "1.5"} {
		_, err = ParseResultNotification(map[string]string{"OutSum": "149.00", "InvId": inv, "SignatureValue": "x"})
		require.ErrorIs(t, err, types.ErrInvalidInvoiceID, inv)
	}
}

func TestSuccessResponse(t *testing.T) {
	require.Equal(t, "OK1001", SuccessResponse(1001))
}
