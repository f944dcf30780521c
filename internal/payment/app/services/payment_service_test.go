package services

import (
	"context"
	"sort"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ordermodels "pos-backoffice/internal/order/domain/models"
	"pos-backoffice/internal/payment/domain/dto"
	"pos-backoffice/internal/payment/domain/models"
	"pos-backoffice/internal/xpkg/apperr"
)

type fakeTxRunner struct{}

func (fakeTxRunner) WithinTx(ctx context.Context, fn func(pgx.Tx) error) error {
	return fn(nil)
}

type fakePaymentRepo struct {
	payments map[int64]models.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[int64]models.Payment)}
}

func (f *fakePaymentRepo) ExistsForOrder(_ context.Context, _ pgx.Tx, orderID int64) (bool, error) {
	_, ok := f.payments[orderID]
	return ok, nil
}

func (f *fakePaymentRepo) Insert(_ context.Context, _ pgx.Tx, p models.Payment) (models.Payment, error) {
	if _, ok := f.payments[p.OrderID]; ok {
		return models.Payment{}, apperr.Conflict("payment already exists for order %d", p.OrderID)
	}
	f.payments[p.OrderID] = p
	return p, nil
}

func (f *fakePaymentRepo) GetByOrderID(_ context.Context, _ pgx.Tx, orderID int64) (models.Payment, error) {
	p, ok := f.payments[orderID]
	if !ok {
		return models.Payment{}, apperr.NotFound("no payment for order %d", orderID)
	}
	return p, nil
}

func (f *fakePaymentRepo) List(_ context.Context, _ pgx.Tx) ([]models.Payment, error) {
	out := make([]models.Payment, 0, len(f.payments))
	for _, p := range f.payments {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID < out[j].OrderID })
	return out, nil
}

type fakeMembershipRepo struct {
	memberships map[int64]models.Membership
	tiers       map[int64]models.Tier
}

func newFakeMembershipRepo() *fakeMembershipRepo {
	return &fakeMembershipRepo{
		memberships: make(map[int64]models.Membership),
		tiers:       make(map[int64]models.Tier),
	}
}

func (f *fakeMembershipRepo) LockByID(_ context.Context, _ pgx.Tx, membershipID int64) (models.Membership, error) {
	m, ok := f.memberships[membershipID]
	if !ok {
		return models.Membership{}, apperr.NotFound("membership %d not found", membershipID)
	}
	return m, nil
}

func (f *fakeMembershipRepo) UpdatePoints(_ context.Context, _ pgx.Tx, membershipID int64, balance, cumulative int) error {
	m, ok := f.memberships[membershipID]
	if !ok {
		return apperr.NotFound("membership %d not found", membershipID)
	}
	m.PointsBalance = balance
	m.CumulativePoints = cumulative
	f.memberships[membershipID] = m
	return nil
}

func (f *fakeMembershipRepo) GetTier(_ context.Context, _ pgx.Tx, tierID int64) (models.Tier, error) {
	t, ok := f.tiers[tierID]
	if !ok {
		return models.Tier{}, apperr.NotFound("tier %d not found", tierID)
	}
	return t, nil
}

func (f *fakeMembershipRepo) HighestQualifyingTier(_ context.Context, _ pgx.Tx, cumulativePoints int) (models.Tier, bool, error) {
	var best models.Tier
	found := false
	for _, t := range f.tiers {
		if t.MinimumPointRequired <= cumulativePoints && (!found || t.Rank > best.Rank) {
			best = t
			found = true
		}
	}
	return best, found, nil
}

func (f *fakeMembershipRepo) UpdateTier(_ context.Context, _ pgx.Tx, membershipID, tierID int64) error {
	m, ok := f.memberships[membershipID]
	if !ok {
		return apperr.NotFound("membership %d not found", membershipID)
	}
	m.TierID = tierID
	f.memberships[membershipID] = m
	return nil
}

type fakeOrderStore struct {
	orders map[int64]ordermodels.Order
	items  map[int64][]ordermodels.OrderItem
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{
		orders: make(map[int64]ordermodels.Order),
		items:  make(map[int64][]ordermodels.OrderItem),
	}
}

func (f *fakeOrderStore) LockOrder(_ context.Context, _ pgx.Tx, orderID int64) (ordermodels.Order, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return ordermodels.Order{}, apperr.NotFound("order %d not found", orderID)
	}
	return o, nil
}

func (f *fakeOrderStore) ListItems(_ context.Context, _ pgx.Tx, orderID int64) ([]ordermodels.OrderItem, error) {
	return f.items[orderID], nil
}

func (f *fakeOrderStore) UpdateOrderStatus(_ context.Context, _ pgx.Tx, orderID int64, status ordermodels.OrderStatus) error {
	o, ok := f.orders[orderID]
	if !ok {
		return apperr.NotFound("order %d not found", orderID)
	}
	o.Status = status
	f.orders[orderID] = o
	return nil
}

type settleFixture struct {
	payments    *fakePaymentRepo
	memberships *fakeMembershipRepo
	orders      *fakeOrderStore
	svc         *SettlementService
}

func newSettleFixture() *settleFixture {
	payments := newFakePaymentRepo()
	memberships := newFakeMembershipRepo()
	orders := newFakeOrderStore()
	memberships.tiers[1] = models.Tier{TierID: 1, TierName: "Bronze", Rank: 1, DiscountPercentage: decimal.Zero, MinimumPointRequired: 0}
	memberships.tiers[2] = models.Tier{TierID: 2, TierName: "Silver", Rank: 2, DiscountPercentage: dec("5"), MinimumPointRequired: 500}
	memberships.tiers[3] = models.Tier{TierID: 3, TierName: "Gold", Rank: 3, DiscountPercentage: dec("10"), MinimumPointRequired: 2000}
	return &settleFixture{
		payments:    payments,
		memberships: memberships,
		orders:      orders,
		svc:         NewSettlementService(payments, memberships, orders, fakeTxRunner{}, zerolog.Nop()),
	}
}

// addOrder seeds an order whose single item is DONE, ready for payment.
func (fx *settleFixture) addOrder(orderID int64, total string, membershipID *int64) {
	fx.orders.orders[orderID] = ordermodels.Order{
		OrderID:      orderID,
		BranchID:     1,
		MembershipID: membershipID,
		EmployeeID:   3,
		TotalPrice:   dec(total),
		Status:       ordermodels.OrderUnpaid,
		OrderType:    ordermodels.TypeDineIn,
	}
	fx.orders.items[orderID] = []ordermodels.OrderItem{
		{OrderItemID: orderID * 10, OrderID: orderID, Status: ordermodels.ItemDone, Quantity: 1, LineTotal: dec(total)},
	}
}

func (fx *settleFixture) addMember(id int64, balance, cumulative int, tierID int64) {
	fx.memberships.memberships[id] = models.Membership{
		MembershipID:     id,
		PointsBalance:    balance,
		CumulativePoints: cumulative,
		TierID:           tierID,
	}
}

func ptr(v int64) *int64 { return &v }

func TestSettleCashNoMembership(t *testing.T) {
	fx := newSettleFixture()
	fx.addOrder(1, "120.00", nil)

	p, err := fx.svc.Settle(context.Background(), dto.SettleRequest{
		OrderID:       1,
		PaymentMethod: string(models.MethodCash),
	})
	require.NoError(t, err)

	assert.True(t, p.PaidPrice.Equal(dec("120.00")))
	assert.Equal(t, 0, p.PointsUsed)
	assert.Equal(t, ordermodels.OrderPaid, fx.orders.orders[1].Status)
}

func TestSettleWithPointsRedemption(t *testing.T) {
	fx := newSettleFixture()
	fx.addOrder(1, "150.00", ptr(9))
	fx.addMember(9, 500, 500, 1)

	p, err := fx.svc.Settle(context.Background(), dto.SettleRequest{
		OrderID:       1,
		PointsUsed:    100,
		PaymentMethod: string(models.MethodCash),
	})
	require.NoError(t, err)

	assert.True(t, p.PaidPrice.Equal(dec("149.00")))
	assert.Equal(t, 100, p.PointsUsed)

	// 500 - 100 redeemed + 14 earned on 149.00.
	m := fx.memberships.memberships[9]
	assert.Equal(t, 414, m.PointsBalance)
	assert.Equal(t, 514, m.CumulativePoints)
}

func TestSettleClampsPointsToBalance(t *testing.T) {
	fx := newSettleFixture()
	fx.addOrder(1, "500.00", ptr(9))
	fx.addMember(9, 50, 50, 1)

	p, err := fx.svc.Settle(context.Background(), dto.SettleRequest{
		OrderID:       1,
		PointsUsed:    200,
		PaymentMethod: string(models.MethodCash),
	})
	require.NoError(t, err)

	assert.Equal(t, 50, p.PointsUsed)
	assert.True(t, p.PaidPrice.Equal(dec("499.50")))
	// Balance emptied by redemption, then 49 earned.
	assert.Equal(t, 49, fx.memberships.memberships[9].PointsBalance)
}

func TestSettleAppliesTierDiscount(t *testing.T) {
	fx := newSettleFixture()
	fx.addOrder(1, "200.00", ptr(9))
	fx.addMember(9, 0, 600, 2)

	p, err := fx.svc.Settle(context.Background(), dto.SettleRequest{
		OrderID:       1,
		PaymentMethod: string(models.MethodCard),
		PaymentRef:    "txn-123",
	})
	require.NoError(t, err)

	assert.True(t, p.PaidPrice.Equal(dec("190.00")))
}

func TestSettleTierUpgrade(t *testing.T) {
	fx := newSettleFixture()
	fx.addOrder(1, "1000.00", ptr(9))
	fx.addMember(9, 0, 1950, 2)

	_, err := fx.svc.Settle(context.Background(), dto.SettleRequest{
		OrderID:       1,
		PaymentMethod: string(models.MethodCash),
	})
	require.NoError(t, err)

	// 1000 * 0.95 = 950.00 paid, 95 earned: cumulative 2045 crosses Gold.
	m := fx.memberships.memberships[9]
	assert.Equal(t, 2045, m.CumulativePoints)
	assert.Equal(t, int64(3), m.TierID)
}

func TestSettleNeverDowngradesTier(t *testing.T) {
	fx := newSettleFixture()
	fx.addOrder(1, "10.00", ptr(9))
	// Gold member whose cumulative somehow sits below the Gold threshold.
	fx.addMember(9, 0, 100, 3)

	_, err := fx.svc.Settle(context.Background(), dto.SettleRequest{
		OrderID:       1,
		PaymentMethod: string(models.MethodCash),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3), fx.memberships.memberships[9].TierID)
}

func TestSettleDuplicateIsConflict(t *testing.T) {
	fx := newSettleFixture()
	fx.addOrder(1, "100.00", nil)

	_, err := fx.svc.Settle(context.Background(), dto.SettleRequest{OrderID: 1, PaymentMethod: string(models.MethodCash)})
	require.NoError(t, err)

	// Reset the status to expose the payment-exists check on its own.
	fx.orders.orders[1] = ordermodels.Order{OrderID: 1, TotalPrice: dec("100.00"), Status: ordermodels.OrderUnpaid}

	_, err = fx.svc.Settle(context.Background(), dto.SettleRequest{OrderID: 1, PaymentMethod: string(models.MethodCash)})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestSettlePaidOrderRejected(t *testing.T) {
	fx := newSettleFixture()
	fx.addOrder(1, "100.00", nil)
	require.NoError(t, fx.orders.UpdateOrderStatus(context.Background(), nil, 1, ordermodels.OrderPaid))

	_, err := fx.svc.Settle(context.Background(), dto.SettleRequest{OrderID: 1, PaymentMethod: string(models.MethodCash)})
	assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))
}

func TestSettleListsEveryPendingItem(t *testing.T) {
	fx := newSettleFixture()
	fx.addOrder(1, "100.00", nil)
	fx.orders.items[1] = []ordermodels.OrderItem{
		{OrderItemID: 11, OrderID: 1, Status: ordermodels.ItemDone},
		{OrderItemID: 12, OrderID: 1, Status: ordermodels.ItemOrdered},
		{OrderItemID: 13, OrderID: 1, Status: ordermodels.ItemPreparing},
	}

	_, err := fx.svc.Settle(context.Background(), dto.SettleRequest{OrderID: 1, PaymentMethod: string(models.MethodCash)})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "item 12")
	assert.Contains(t, err.Error(), "item 13")
}

func TestSettleAllCancelledRejected(t *testing.T) {
	fx := newSettleFixture()
	fx.addOrder(1, "0.00", nil)
	fx.orders.items[1] = []ordermodels.OrderItem{
		{OrderItemID: 11, OrderID: 1, Status: ordermodels.ItemCancelled},
	}

	_, err := fx.svc.Settle(context.Background(), dto.SettleRequest{OrderID: 1, PaymentMethod: string(models.MethodCash)})
	assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))
}

func TestSettleEmptyOrderRejected(t *testing.T) {
	fx := newSettleFixture()
	fx.addOrder(1, "0.00", nil)
	fx.orders.items[1] = nil

	_, err := fx.svc.Settle(context.Background(), dto.SettleRequest{OrderID: 1, PaymentMethod: string(models.MethodCash)})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestSettlePointsWithoutMembership(t *testing.T) {
	fx := newSettleFixture()
	fx.addOrder(1, "100.00", nil)

	_, err := fx.svc.Settle(context.Background(), dto.SettleRequest{
		OrderID:       1,
		PointsUsed:    50,
		PaymentMethod: string(models.MethodCash),
	})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestSettleCardRequiresRef(t *testing.T) {
	fx := newSettleFixture()
	fx.addOrder(1, "100.00", nil)

	_, err := fx.svc.Settle(context.Background(), dto.SettleRequest{OrderID: 1, PaymentMethod: string(models.MethodCard)})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = fx.svc.Settle(context.Background(), dto.SettleRequest{OrderID: 1, PaymentMethod: string(models.MethodQR), PaymentRef: "   "})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestSettleUnknownMethod(t *testing.T) {
	fx := newSettleFixture()

	_, err := fx.svc.Settle(context.Background(), dto.SettleRequest{OrderID: 1, PaymentMethod: "CHEQUE"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestSettleNegativePoints(t *testing.T) {
	fx := newSettleFixture()

	_, err := fx.svc.Settle(context.Background(), dto.SettleRequest{
		OrderID: 1, PointsUsed: -1, PaymentMethod: string(models.MethodCash),
	})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestSettlePaidPriceMismatch(t *testing.T) {
	fx := newSettleFixture()
	fx.addOrder(1, "100.00", nil)

	wrong := dec("90.00")
	_, err := fx.svc.Settle(context.Background(), dto.SettleRequest{
		OrderID:       1,
		PaymentMethod: string(models.MethodCash),
		PaidPrice:     &wrong,
	})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestSettlePaidPriceWithinTolerance(t *testing.T) {
	fx := newSettleFixture()
	fx.addOrder(1, "100.00", nil)

	supplied := dec("100.01")
	_, err := fx.svc.Settle(context.Background(), dto.SettleRequest{
		OrderID:       1,
		PaymentMethod: string(models.MethodCash),
		PaidPrice:     &supplied,
	})
	assert.NoError(t, err)
}

func TestSettleUnknownOrder(t *testing.T) {
	fx := newSettleFixture()

	_, err := fx.svc.Settle(context.Background(), dto.SettleRequest{OrderID: 404, PaymentMethod: string(models.MethodCash)})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestGetAndList(t *testing.T) {
	fx := newSettleFixture()
	fx.addOrder(1, "100.00", nil)
	fx.addOrder(2, "50.00", nil)

	_, err := fx.svc.Settle(context.Background(), dto.SettleRequest{OrderID: 1, PaymentMethod: string(models.MethodCash)})
	require.NoError(t, err)
	_, err = fx.svc.Settle(context.Background(), dto.SettleRequest{OrderID: 2, PaymentMethod: string(models.MethodQR), PaymentRef: "qr-1"})
	require.NoError(t, err)

	p, err := fx.svc.Get(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, models.MethodQR, p.PaymentMethod)

	all, err := fx.svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = fx.svc.Get(context.Background(), 404)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
