package tool

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestSnowflakeInvoiceIDs_Increasing(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	next := NewSnowflakeInvoiceIDs(node)

	prev := next()
	require.Positive(t, int64(prev))
	for i := 0; i < 1000; i++ {
		id := next()
		require.Greater(t, int64(id), int64(prev))
		prev = id
	}
}

func TestGenerateUUIDV7(t *testing.T) {
	id, err := uuid.Parse(GenerateUUIDV7())
	require.NoError(t, err)
	require.Equal(t, uuid.Version(7), id.Version())
}
