package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"kardex/internal/core/entity"
	"kardex/internal/core/id"
	"kardex/internal/core/types"
)

type mockDoc struct {
	entity.Document
	SupplierID id.ID       `db:"supplier_id" json:"supplierId"`
	Total      types.Money `db:"total_amount" json:"totalAmount"`
	Skipped    string      `db:"-" json:"skipped"`
}

func TestExtractDBColumns_EmbeddedDocument(t *testing.T) {
	cols := ExtractDBColumns[mockDoc]()

	expectedCols := []string{
		"id", "version", "created_at", "updated_at", "created_by", "updated_by",
		"number", "date", "comment", "supplier_id", "total_amount",
	}

	for _, expected := range expectedCols {
		assert.Contains(t, cols, expected)
	}
	assert.NotContains(t, cols, "-")
}

func TestExtractDBColumns_StockBatch(t *testing.T) {
	cols := ExtractDBColumns[entity.StockBatch]()

	assert.Contains(t, cols, "id")
	assert.Contains(t, cols, "item_id")
	assert.Contains(t, cols, "quantity")
	assert.Contains(t, cols, "unit_cost")
	assert.Contains(t, cols, "created_at")
	// Holder is flattened into holder_type/holder_id by the repo, not tagged.
	assert.NotContains(t, cols, "holder_type")
}
