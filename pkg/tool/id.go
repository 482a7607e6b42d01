package tool

import (
	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"

	"github.com/fatflowers/astrocashier/pkg/types"
)

func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// InvoiceIDGenerator mints provider-facing invoice ids.
type InvoiceIDGenerator func() types.InvoiceID

// NewSnowflakeInvoiceIDs returns a time-ordered generator backed by node.
func NewSnowflakeInvoiceIDs(node *snowflake.Node) InvoiceIDGenerator {
	return func() types.InvoiceID {
		return types.InvoiceID(node.Generate().Int64())
	}
}
