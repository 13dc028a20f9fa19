package purchase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"marketplace/internal/domain"
	"marketplace/internal/notify"
	"marketplace/internal/purchase"
	"marketplace/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newService(gdb *gorm.DB) *purchase.Service {
	return purchase.NewService(gdb, notify.NewOutbox(gdb, nil, time.Minute), nil, 5)
}

func TestPurchaseSucceeds(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.OpenDB(t)
	svc := newService(gdb)

	buyer := testutil.SeedUser(t, gdb, "buyer", 100)
	seller := testutil.SeedUser(t, gdb, "seller", 10)
	product := testutil.SeedProduct(t, gdb, seller.ID, 60)

	entry, err := svc.Purchase(ctx, buyer.ID, product.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.KindWithdraw, entry.Kind)
	assert.True(t, entry.Amount.Equal(decimal.NewFromInt(60)))
	assert.Equal(t, buyer.ID, entry.SenderID)
	assert.Equal(t, seller.ID, entry.ReceiverID)
	require.NotNil(t, entry.ProductID)
	assert.Equal(t, product.ID, *entry.ProductID)

	assert.True(t, testutil.Balance(t, gdb, buyer.ID).Equal(decimal.NewFromInt(40)))
	assert.True(t, testutil.Balance(t, gdb, seller.ID).Equal(decimal.NewFromInt(70)))
	assert.Equal(t, int64(1), testutil.Count(t, gdb, &domain.Transaction{}, "product_id = ?", product.ID))

	var notes []domain.Notification
	require.NoError(t, gdb.Where("to_user_id = ?", seller.ID).Find(&notes).Error)
	require.Len(t, notes, 1)
	assert.Equal(t, domain.StatusUnread, notes[0].Status)
	assert.Equal(t, domain.EventPurchased, notes[0].Event)
	assert.Equal(t, "buyer bought your product", notes[0].Message)
	assert.Equal(t, buyer.ID, notes[0].FromUserID)
}

func TestPurchaseFailuresHaveNoSideEffects(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.OpenDB(t)
	svc := newService(gdb)

	buyer := testutil.SeedUser(t, gdb, "buyer", 50)
	seller := testutil.SeedUser(t, gdb, "seller", 10)
	product := testutil.SeedProduct(t, gdb, seller.ID, 60)
	own := testutil.SeedProduct(t, gdb, buyer.ID, 1)

	tests := []struct {
		name      string
		buyerID   uint
		productID uint
		wantErr   error
	}{
		{"insufficient funds", buyer.ID, product.ID, domain.ErrInsufficientFunds},
		{"self purchase", buyer.ID, own.ID, domain.ErrSelfPurchase},
		{"missing product", buyer.ID, product.ID + own.ID + 1000, domain.ErrProductNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := svc.Purchase(ctx, tt.buyerID, tt.productID)
			assert.Nil(t, entry)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.True(t, testutil.Balance(t, gdb, buyer.ID).Equal(decimal.NewFromInt(50)))
	assert.True(t, testutil.Balance(t, gdb, seller.ID).Equal(decimal.NewFromInt(10)))
	assert.Zero(t, testutil.Count(t, gdb, &domain.Transaction{}, ""))
	assert.Zero(t, testutil.Count(t, gdb, &domain.Notification{}, ""))
}

func TestPurchaseCanRepeat(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.OpenDB(t)
	svc := newService(gdb)

	buyer := testutil.SeedUser(t, gdb, "buyer", 100)
	seller := testutil.SeedUser(t, gdb, "seller", 0)
	product := testutil.SeedProduct(t, gdb, seller.ID, 30)

	first, err := svc.Purchase(ctx, buyer.ID, product.ID)
	require.NoError(t, err)
	second, err := svc.Purchase(ctx, buyer.ID, product.ID)
	require.NoError(t, err)

	assert.NotEqual(t, first.Reference, second.Reference)
	assert.True(t, testutil.Balance(t, gdb, buyer.ID).Equal(decimal.NewFromInt(40)))
	assert.True(t, testutil.Balance(t, gdb, seller.ID).Equal(decimal.NewFromInt(60)))
}

func TestConcurrentPurchasesNeverOverdraw(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.OpenDB(t)
	svc := newService(gdb)

	buyer := testutil.SeedUser(t, gdb, "buyer", 100)
	sellerA := testutil.SeedUser(t, gdb, "sellera", 0)
	sellerB := testutil.SeedUser(t, gdb, "sellerb", 0)
	productA := testutil.SeedProduct(t, gdb, sellerA.ID, 100)
	productB := testutil.SeedProduct(t, gdb, sellerB.ID, 100)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, pid := range []uint{productA.ID, productB.ID} {
		wg.Add(1)
		go func(pid uint) {
			defer wg.Done()
			_, err := svc.Purchase(ctx, buyer.ID, pid)
			errs <- err
		}(pid)
	}
	wg.Wait()
	close(errs)

	succeeded, rejected := 0, 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
		rejected++
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)

	assert.True(t, testutil.Balance(t, gdb, buyer.ID).IsZero())
	total := testutil.Balance(t, gdb, sellerA.ID).Add(testutil.Balance(t, gdb, sellerB.ID))
	assert.True(t, total.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, int64(1), testutil.Count(t, gdb, &domain.Transaction{}, ""))
}

func TestConcurrentBuyersCreditSameSeller(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.OpenDB(t)
	svc := newService(gdb)

	seller := testutil.SeedUser(t, gdb, "seller", 0)
	product := testutil.SeedProduct(t, gdb, seller.ID, 10)

	const buyers = 8
	ids := make([]uint, buyers)
	for i := range ids {
		ids[i] = testutil.SeedUser(t, gdb, "buyer"+string(rune('a'+i)), 10).ID
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			_, err := svc.Purchase(ctx, id, product.ID)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	assert.True(t, testutil.Balance(t, gdb, seller.ID).Equal(decimal.NewFromInt(10*buyers)))
	assert.Equal(t, int64(buyers), testutil.Count(t, gdb, &domain.Notification{}, "to_user_id = ?", seller.ID))
}

func TestOppositeDirectionPurchasesDoNotDeadlock(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.OpenDB(t)
	svc := newService(gdb)

	alice := testutil.SeedUser(t, gdb, "alice", 1000)
	bob := testutil.SeedUser(t, gdb, "bob", 1000)
	aliceProduct := testutil.SeedProduct(t, gdb, alice.ID, 7)
	bobProduct := testutil.SeedProduct(t, gdb, bob.ID, 7)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.Purchase(ctx, alice.ID, bobProduct.ID)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := svc.Purchase(ctx, bob.ID, aliceProduct.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.True(t, testutil.Balance(t, gdb, alice.ID).Equal(decimal.NewFromInt(1000)))
	assert.True(t, testutil.Balance(t, gdb, bob.ID).Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, int64(20), testutil.Count(t, gdb, &domain.Transaction{}, ""))
}
