package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"pos-backoffice/internal/order/domain/models"
	"pos-backoffice/internal/xpkg/apperr"
)

type OrderRepo struct{}

func NewOrderRepo() *OrderRepo {
	return &OrderRepo{}
}

const orderColumns = `order_id, branch_id, membership_id, employee_id, created_at, total_price, status, order_type`

func (r *OrderRepo) Insert(ctx context.Context, tx pgx.Tx, order models.Order) (models.Order, error) {
	q := `
		INSERT INTO orders (branch_id, membership_id, employee_id, total_price, status, order_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING order_id, created_at`

	err := tx.QueryRow(ctx, q,
		order.BranchID, order.MembershipID, order.EmployeeID,
		order.TotalPrice, string(order.Status), string(order.OrderType),
	).Scan(&order.OrderID, &order.CreatedAt)
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}
	return order, nil
}

func (r *OrderRepo) LockOrder(ctx context.Context, tx pgx.Tx, orderID int64) (models.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE order_id = $1 FOR UPDATE`
	return r.scanOrder(tx.QueryRow(ctx, q, orderID), orderID)
}

func (r *OrderRepo) GetOrder(ctx context.Context, tx pgx.Tx, orderID int64) (models.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE order_id = $1`
	return r.scanOrder(tx.QueryRow(ctx, q, orderID), orderID)
}

func (r *OrderRepo) scanOrder(row pgx.Row, orderID int64) (models.Order, error) {
	var o models.Order
	var status, orderType string
	err := row.Scan(
		&o.OrderID, &o.BranchID, &o.MembershipID, &o.EmployeeID,
		&o.CreatedAt, &o.TotalPrice, &status, &orderType,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Order{}, apperr.NotFound("order %d not found", orderID)
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to query order: %w", err)
	}
	o.Status = models.OrderStatus(status)
	o.OrderType = models.OrderType(orderType)
	return o, nil
}

func (r *OrderRepo) List(ctx context.Context, tx pgx.Tx) ([]models.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders ORDER BY order_id`

	rows, err := tx.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var o models.Order
		var status, orderType string
		if err := rows.Scan(
			&o.OrderID, &o.BranchID, &o.MembershipID, &o.EmployeeID,
			&o.CreatedAt, &o.TotalPrice, &status, &orderType,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		o.Status = models.OrderStatus(status)
		o.OrderType = models.OrderType(orderType)
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *OrderRepo) UpdateOrderStatus(ctx context.Context, tx pgx.Tx, orderID int64, status models.OrderStatus) error {
	tag, err := tx.Exec(ctx, `UPDATE orders SET status = $2 WHERE order_id = $1`, orderID, string(status))
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("order %d not found", orderID)
	}
	return nil
}

func (r *OrderRepo) UpdateTotal(ctx context.Context, tx pgx.Tx, orderID int64, total decimal.Decimal) error {
	tag, err := tx.Exec(ctx, `UPDATE orders SET total_price = $2 WHERE order_id = $1`, orderID, total)
	if err != nil {
		return fmt.Errorf("failed to update order total: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("order %d not found", orderID)
	}
	return nil
}

func (r *OrderRepo) InsertItem(ctx context.Context, tx pgx.Tx, item models.OrderItem) (models.OrderItem, error) {
	q := `
		INSERT INTO order_items (order_id, menu_item_id, status, quantity, unit_price, line_total)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING order_item_id`

	err := tx.QueryRow(ctx, q,
		item.OrderID, item.MenuItemID, string(item.Status),
		item.Quantity, item.UnitPrice, item.LineTotal,
	).Scan(&item.OrderItemID)
	if err != nil {
		return models.OrderItem{}, fmt.Errorf("failed to insert order item: %w", err)
	}
	return item, nil
}

func (r *OrderRepo) GetItem(ctx context.Context, tx pgx.Tx, orderItemID int64) (models.OrderItem, error) {
	q := `
		SELECT order_item_id, order_id, menu_item_id, status, quantity, unit_price, line_total
		FROM order_items
		WHERE order_item_id = $1`

	var item models.OrderItem
	var status string
	err := tx.QueryRow(ctx, q, orderItemID).Scan(
		&item.OrderItemID, &item.OrderID, &item.MenuItemID,
		&status, &item.Quantity, &item.UnitPrice, &item.LineTotal,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.OrderItem{}, apperr.NotFound("order item %d not found", orderItemID)
	}
	if err != nil {
		return models.OrderItem{}, fmt.Errorf("failed to query order item: %w", err)
	}
	item.Status = models.ItemStatus(status)
	return item, nil
}

func (r *OrderRepo) ListItems(ctx context.Context, tx pgx.Tx, orderID int64) ([]models.OrderItem, error) {
	q := `
		SELECT order_item_id, order_id, menu_item_id, status, quantity, unit_price, line_total
		FROM order_items
		WHERE order_id = $1
		ORDER BY order_item_id`

	rows, err := tx.Query(ctx, q, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	items := []models.OrderItem{}
	for rows.Next() {
		var item models.OrderItem
		var status string
		if err := rows.Scan(
			&item.OrderItemID, &item.OrderID, &item.MenuItemID,
			&status, &item.Quantity, &item.UnitPrice, &item.LineTotal,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		item.Status = models.ItemStatus(status)
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *OrderRepo) UpdateItemQuantity(ctx context.Context, tx pgx.Tx, orderItemID int64, quantity int, lineTotal decimal.Decimal) error {
	tag, err := tx.Exec(ctx,
		`UPDATE order_items SET quantity = $2, line_total = $3 WHERE order_item_id = $1`,
		orderItemID, quantity, lineTotal,
	)
	if err != nil {
		return fmt.Errorf("failed to update order item quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("order item %d not found", orderItemID)
	}
	return nil
}

func (r *OrderRepo) UpdateItemStatus(ctx context.Context, tx pgx.Tx, orderItemID int64, status models.ItemStatus) error {
	tag, err := tx.Exec(ctx,
		`UPDATE order_items SET status = $2 WHERE order_item_id = $1`,
		orderItemID, string(status),
	)
	if err != nil {
		return fmt.Errorf("failed to update order item status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("order item %d not found", orderItemID)
	}
	return nil
}

func (r *OrderRepo) CancelOrderedItems(ctx context.Context, tx pgx.Tx, orderID int64) error {
	_, err := tx.Exec(ctx,
		`UPDATE order_items SET status = $2 WHERE order_id = $1 AND status = $3`,
		orderID, string(models.ItemCancelled), string(models.ItemOrdered),
	)
	if err != nil {
		return fmt.Errorf("failed to cancel ordered items: %w", err)
	}
	return nil
}
