package ledger_test

import (
	"context"
	"testing"

	"marketplace/internal/domain"
	"marketplace/internal/ledger"
	"marketplace/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndForUser(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.OpenDB(t)
	alice := testutil.SeedUser(t, gdb, "alice", 0)
	bob := testutil.SeedUser(t, gdb, "bob", 0)
	carol := testutil.SeedUser(t, gdb, "carol", 0)

	entries := []*domain.Transaction{
		{SenderID: alice.ID, ReceiverID: alice.ID, Amount: decimal.NewFromInt(100), Kind: domain.KindDeposit},
		{SenderID: alice.ID, ReceiverID: bob.ID, Amount: decimal.NewFromInt(30), Kind: domain.KindWithdraw},
		{SenderID: carol.ID, ReceiverID: bob.ID, Amount: decimal.NewFromInt(5), Kind: domain.KindWithdraw},
	}
	for _, e := range entries {
		require.NoError(t, ledger.Append(gdb, e))
		assert.NotEmpty(t, e.Reference)
	}

	txs, err := ledger.ForUser(ctx, gdb, bob.ID)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, entries[2].ID, txs[0].ID)
	assert.Equal(t, entries[1].ID, txs[1].ID)

	page, err := ledger.List(ctx, gdb, ledger.Filter{Kind: domain.KindWithdraw}, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Transactions, 1)
}

func TestAppendValidation(t *testing.T) {
	gdb := testutil.OpenDB(t)

	err := ledger.Append(gdb, &domain.Transaction{SenderID: 1, ReceiverID: 2, Amount: decimal.Zero, Kind: domain.KindWithdraw})
	assert.ErrorIs(t, err, domain.ErrValidation)

	err = ledger.Append(gdb, &domain.Transaction{SenderID: 1, ReceiverID: 2, Amount: decimal.NewFromInt(1), Kind: "refund"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestEntriesAreImmutable(t *testing.T) {
	gdb := testutil.OpenDB(t)
	alice := testutil.SeedUser(t, gdb, "alice", 0)
	bob := testutil.SeedUser(t, gdb, "bob", 0)

	entry := &domain.Transaction{SenderID: alice.ID, ReceiverID: bob.ID, Amount: decimal.NewFromInt(30), Kind: domain.KindWithdraw}
	require.NoError(t, ledger.Append(gdb, entry))

	err := gdb.Model(entry).Update("amount", decimal.NewFromInt(1)).Error
	assert.ErrorIs(t, err, domain.ErrLedgerImmutable)

	err = gdb.Delete(entry).Error
	assert.ErrorIs(t, err, domain.ErrLedgerImmutable)

	assert.ErrorIs(t, ledger.Append(gdb, entry), domain.ErrLedgerImmutable)

	var stored domain.Transaction
	require.NoError(t, gdb.First(&stored, entry.ID).Error)
	assert.True(t, stored.Amount.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, entry.Reference, stored.Reference)
}
