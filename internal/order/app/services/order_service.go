package services

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"pos-backoffice/internal/order/app/core"
	"pos-backoffice/internal/order/domain/dto"
	"pos-backoffice/internal/order/domain/models"
	stockdto "pos-backoffice/internal/stock/domain/dto"
	"pos-backoffice/internal/xpkg/apperr"
	"pos-backoffice/internal/xpkg/db"
)

// OrderService owns the order aggregate and the order-item state machine.
// Every mutation locks the order row, applies the change, and recomputes the
// denormalized total inside the same transaction.
type OrderService struct {
	orderRepo core.IOrderRepo
	catalog   core.ICatalog
	ledger    core.IStockLedger
	txr       db.TxRunner
	log       zerolog.Logger
}

func NewOrderService(orderRepo core.IOrderRepo, catalog core.ICatalog, ledger core.IStockLedger, txr db.TxRunner, log zerolog.Logger) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		catalog:   catalog,
		ledger:    ledger,
		txr:       txr,
		log:       log,
	}
}

// Create opens a new UNPAID order, optionally with initial items. Item prices
// are snapshotted from the catalog; duplicate menu items in the payload merge
// into one line.
func (s *OrderService) Create(ctx context.Context, req dto.CreateOrderRequest) (models.Order, error) {
	orderType := models.OrderType(req.OrderType)
	if !orderType.Valid() {
		return models.Order{}, apperr.Validation("unknown order type %q", req.OrderType)
	}
	if req.BranchID <= 0 || req.EmployeeID <= 0 {
		return models.Order{}, apperr.Validation("branch_id and employee_id are required")
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return models.Order{}, apperr.Validation("quantity must be a positive integer")
		}
	}

	var order models.Order
	err := s.txr.WithinTx(ctx, func(tx pgx.Tx) error {
		var err error
		order, err = s.orderRepo.Insert(ctx, tx, models.Order{
			BranchID:     req.BranchID,
			MembershipID: req.MembershipID,
			EmployeeID:   req.EmployeeID,
			TotalPrice:   decimal.Zero,
			Status:       models.OrderUnpaid,
			OrderType:    orderType,
		})
		if err != nil {
			return err
		}

		for _, item := range req.Items {
			if _, err := s.addItem(ctx, tx, order.OrderID, item); err != nil {
				return err
			}
		}

		if err := s.recomputeTotal(ctx, tx, order.OrderID); err != nil {
			return err
		}

		order, err = s.orderRepo.GetOrder(ctx, tx, order.OrderID)
		if err != nil {
			return err
		}
		order.Items, err = s.orderRepo.ListItems(ctx, tx, order.OrderID)
		return err
	})
	if err != nil {
		return models.Order{}, err
	}

	s.log.Info().
		Str("action", "order_created").
		Int64("order_id", order.OrderID).
		Int64("branch_id", order.BranchID).
		Int("items", len(order.Items)).
		Msg("order created")
	return order, nil
}

// AddItem appends a line to an UNPAID order, merging into an existing ORDERED
// line for the same menu item instead of creating a duplicate row.
func (s *OrderService) AddItem(ctx context.Context, orderID int64, req dto.NewItem) (models.OrderItem, error) {
	if req.Quantity <= 0 {
		return models.OrderItem{}, apperr.Validation("quantity must be a positive integer")
	}

	var item models.OrderItem
	err := s.txr.WithinTx(ctx, func(tx pgx.Tx) error {
		order, err := s.orderRepo.LockOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order.Status != models.OrderUnpaid {
			return apperr.InvalidTransition("cannot modify order %d: status is %s", orderID, order.Status)
		}

		item, err = s.addItem(ctx, tx, orderID, req)
		if err != nil {
			return err
		}
		return s.recomputeTotal(ctx, tx, orderID)
	})
	if err != nil {
		return models.OrderItem{}, err
	}

	s.log.Info().
		Str("action", "item_added").
		Int64("order_id", orderID).
		Int64("order_item_id", item.OrderItemID).
		Int("quantity", item.Quantity).
		Msg("order item added")
	return item, nil
}

// addItem runs under a transaction that already holds the order lock.
func (s *OrderService) addItem(ctx context.Context, tx pgx.Tx, orderID int64, req dto.NewItem) (models.OrderItem, error) {
	menuItem, err := s.catalog.MenuItem(ctx, tx, req.MenuItemID)
	if err != nil {
		return models.OrderItem{}, err
	}
	if !menuItem.IsAvailable {
		return models.OrderItem{}, apperr.Validation("menu item %q is not available", menuItem.Name)
	}

	items, err := s.orderRepo.ListItems(ctx, tx, orderID)
	if err != nil {
		return models.OrderItem{}, err
	}

	// Merge-on-insert: an ORDERED line for the same menu item grows in place
	// and keeps its original price snapshot.
	for _, existing := range items {
		if existing.MenuItemID == req.MenuItemID && existing.Status == models.ItemOrdered {
			existing.Quantity += req.Quantity
			existing.LineTotal = existing.UnitPrice.Mul(decimal.NewFromInt(int64(existing.Quantity)))
			if err := s.orderRepo.UpdateItemQuantity(ctx, tx, existing.OrderItemID, existing.Quantity, existing.LineTotal); err != nil {
				return models.OrderItem{}, err
			}
			return existing, nil
		}
	}

	return s.orderRepo.InsertItem(ctx, tx, models.OrderItem{
		OrderID:    orderID,
		MenuItemID: req.MenuItemID,
		Status:     models.ItemOrdered,
		Quantity:   req.Quantity,
		UnitPrice:  menuItem.Price,
		LineTotal:  menuItem.Price.Mul(decimal.NewFromInt(int64(req.Quantity))),
	})
}

// UpdateItemQuantity edits the quantity of an item that is still ORDERED on an
// UNPAID order.
func (s *OrderService) UpdateItemQuantity(ctx context.Context, orderItemID int64, quantity int) (models.OrderItem, error) {
	if quantity <= 0 {
		return models.OrderItem{}, apperr.Validation("quantity must be a positive integer")
	}

	var item models.OrderItem
	err := s.txr.WithinTx(ctx, func(tx pgx.Tx) error {
		var err error
		item, err = s.orderRepo.GetItem(ctx, tx, orderItemID)
		if err != nil {
			return err
		}

		order, err := s.orderRepo.LockOrder(ctx, tx, item.OrderID)
		if err != nil {
			return err
		}
		// Re-read under the order lock; the pre-lock copy may be stale if a
		// concurrent transition committed while we waited.
		item, err = s.orderRepo.GetItem(ctx, tx, orderItemID)
		if err != nil {
			return err
		}
		if order.Status != models.OrderUnpaid {
			return apperr.InvalidTransition("cannot modify order %d: status is %s", order.OrderID, order.Status)
		}
		if item.Status != models.ItemOrdered {
			return apperr.InvalidTransition("only ORDERED items can be edited, item %d is %s", orderItemID, item.Status)
		}

		item.Quantity = quantity
		item.LineTotal = item.UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))
		if err := s.orderRepo.UpdateItemQuantity(ctx, tx, orderItemID, item.Quantity, item.LineTotal); err != nil {
			return err
		}
		return s.recomputeTotal(ctx, tx, item.OrderID)
	})
	if err != nil {
		return models.OrderItem{}, err
	}
	return item, nil
}

// UpdateItemStatus applies one transition of the item state machine. The
// ORDERED -> PREPARING transition consumes the item's recipe from stock; any
// shortfall aborts the whole transaction, leaving the item and stock
// untouched.
func (s *OrderService) UpdateItemStatus(ctx context.Context, orderItemID int64, statusRaw string) (models.OrderItem, error) {
	target := models.ItemStatus(statusRaw)
	if !target.Valid() {
		return models.OrderItem{}, apperr.Validation("unknown item status %q", statusRaw)
	}

	var item models.OrderItem
	err := s.txr.WithinTx(ctx, func(tx pgx.Tx) error {
		var err error
		item, err = s.orderRepo.GetItem(ctx, tx, orderItemID)
		if err != nil {
			return err
		}

		order, err := s.orderRepo.LockOrder(ctx, tx, item.OrderID)
		if err != nil {
			return err
		}
		// Re-read under the order lock; the pre-lock copy may be stale if a
		// concurrent transition committed while we waited.
		item, err = s.orderRepo.GetItem(ctx, tx, orderItemID)
		if err != nil {
			return err
		}
		if order.Status != models.OrderUnpaid {
			return apperr.InvalidTransition("order %d is %s, its items can no longer change", order.OrderID, order.Status)
		}
		if !item.Status.CanTransitionTo(target) {
			return apperr.InvalidTransition("cannot transition item %d from %s to %s", orderItemID, item.Status, target)
		}

		if item.Status == models.ItemOrdered && target == models.ItemPreparing {
			if err := s.consumeForItem(ctx, tx, order, item); err != nil {
				return err
			}
		}

		if err := s.orderRepo.UpdateItemStatus(ctx, tx, orderItemID, target); err != nil {
			return err
		}
		item.Status = target

		if target == models.ItemCancelled {
			return s.recomputeTotal(ctx, tx, item.OrderID)
		}
		return nil
	})
	if err != nil {
		return models.OrderItem{}, err
	}

	s.log.Info().
		Str("action", "item_status_changed").
		Int64("order_item_id", orderItemID).
		Str("status", string(target)).
		Msg("order item transitioned")
	return item, nil
}

func (s *OrderService) consumeForItem(ctx context.Context, tx pgx.Tx, order models.Order, item models.OrderItem) error {
	menuItem, err := s.catalog.MenuItem(ctx, tx, item.MenuItemID)
	if err != nil {
		return err
	}
	recipe, err := s.catalog.Recipe(ctx, tx, item.MenuItemID)
	if err != nil {
		return err
	}

	qty := decimal.NewFromInt(int64(item.Quantity))
	lines := make([]stockdto.ConsumeLine, 0, len(recipe))
	for _, line := range recipe {
		lines = append(lines, stockdto.ConsumeLine{
			IngredientID: line.IngredientID,
			Qty:          line.QtyPerUnit.Mul(qty),
		})
	}

	return s.ledger.Consume(ctx, tx, order.BranchID, lines, stockdto.ConsumeRef{
		OrderID:      order.OrderID,
		OrderItemID:  item.OrderItemID,
		EmployeeID:   order.EmployeeID,
		MenuItemName: menuItem.Name,
		Quantity:     item.Quantity,
	})
}

// Cancel cancels a whole order. Allowed only while the order is UNPAID and no
// item has progressed past ORDERED.
func (s *OrderService) Cancel(ctx context.Context, orderID int64) (models.Order, error) {
	var order models.Order
	err := s.txr.WithinTx(ctx, func(tx pgx.Tx) error {
		var err error
		order, err = s.orderRepo.LockOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order.Status != models.OrderUnpaid {
			return apperr.InvalidTransition("only UNPAID orders can be cancelled, order %d is %s", orderID, order.Status)
		}

		items, err := s.orderRepo.ListItems(ctx, tx, orderID)
		if err != nil {
			return err
		}
		for _, item := range items {
			if item.Status == models.ItemPreparing || item.Status == models.ItemDone {
				return apperr.InvalidTransition("order %d has item %d in %s, cancellation is not allowed", orderID, item.OrderItemID, item.Status)
			}
		}

		if err := s.orderRepo.CancelOrderedItems(ctx, tx, orderID); err != nil {
			return err
		}
		if err := s.orderRepo.UpdateOrderStatus(ctx, tx, orderID, models.OrderCancelled); err != nil {
			return err
		}
		if err := s.orderRepo.UpdateTotal(ctx, tx, orderID, decimal.Zero); err != nil {
			return err
		}

		order, err = s.orderRepo.GetOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		order.Items, err = s.orderRepo.ListItems(ctx, tx, orderID)
		return err
	})
	if err != nil {
		return models.Order{}, err
	}

	s.log.Info().
		Str("action", "order_cancelled").
		Int64("order_id", orderID).
		Msg("order cancelled")
	return order, nil
}

func (s *OrderService) Get(ctx context.Context, orderID int64) (models.Order, error) {
	var order models.Order
	err := s.txr.WithinTx(ctx, func(tx pgx.Tx) error {
		var err error
		order, err = s.orderRepo.GetOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		order.Items, err = s.orderRepo.ListItems(ctx, tx, orderID)
		return err
	})
	return order, err
}

func (s *OrderService) List(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.txr.WithinTx(ctx, func(tx pgx.Tx) error {
		var err error
		orders, err = s.orderRepo.List(ctx, tx)
		return err
	})
	return orders, err
}

func (s *OrderService) Items(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := s.txr.WithinTx(ctx, func(tx pgx.Tx) error {
		if _, err := s.orderRepo.GetOrder(ctx, tx, orderID); err != nil {
			return err
		}
		var err error
		items, err = s.orderRepo.ListItems(ctx, tx, orderID)
		return err
	})
	return items, err
}

func (s *OrderService) GetItem(ctx context.Context, orderItemID int64) (models.OrderItem, error) {
	var item models.OrderItem
	err := s.txr.WithinTx(ctx, func(tx pgx.Tx) error {
		var err error
		item, err = s.orderRepo.GetItem(ctx, tx, orderItemID)
		return err
	})
	return item, err
}

func (s *OrderService) recomputeTotal(ctx context.Context, tx pgx.Tx, orderID int64) error {
	items, err := s.orderRepo.ListItems(ctx, tx, orderID)
	if err != nil {
		return err
	}
	if err := s.orderRepo.UpdateTotal(ctx, tx, orderID, models.TotalOf(items)); err != nil {
		return fmt.Errorf("failed to recompute order total: %w", err)
	}
	return nil
}
