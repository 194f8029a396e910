package entity

import (
	"testing"

	"github.com/stretchr/testify/require"

	"kardex/internal/core/id"
)

func TestHolderValidate(t *testing.T) {
	branchID := id.New()

	require.NoError(t, BranchHolder(branchID).Validate())
	require.NoError(t, WarehouseHolder(branchID).Validate())

	require.Error(t, Holder{Type: "shop", ID: branchID}.Validate())
	require.Error(t, Holder{Type: "", ID: branchID}.Validate())
	require.Error(t, Holder{Type: HolderTypeBranch, ID: id.Nil()}.Validate())
}

func TestHolderEquality(t *testing.T) {
	sharedID := id.New()

	// Same id under different types is two distinct holders.
	require.NotEqual(t, BranchHolder(sharedID), WarehouseHolder(sharedID))
	require.Equal(t, BranchHolder(sharedID), BranchHolder(sharedID))
}

func TestHolderString(t *testing.T) {
	h := BranchHolder(id.New())
	require.Equal(t, "branch:"+h.ID.String(), h.String())
}
