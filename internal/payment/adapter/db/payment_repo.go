package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"pos-backoffice/internal/payment/domain/models"
	"pos-backoffice/internal/xpkg/apperr"
)

// uniqueViolation is the postgres error code for duplicate keys.
const uniqueViolation = "23505"

type PaymentRepo struct{}

func NewPaymentRepo() *PaymentRepo {
	return &PaymentRepo{}
}

func (r *PaymentRepo) ExistsForOrder(ctx context.Context, tx pgx.Tx, orderID int64) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM payments WHERE order_id = $1)`, orderID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check payment existence: %w", err)
	}
	return exists, nil
}

func (r *PaymentRepo) Insert(ctx context.Context, tx pgx.Tx, p models.Payment) (models.Payment, error) {
	q := `
		INSERT INTO payments (order_id, paid_price, points_used, payment_method, payment_ref)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		RETURNING paid_timestamp`

	err := tx.QueryRow(ctx, q,
		p.OrderID, p.PaidPrice, p.PointsUsed, string(p.PaymentMethod), p.PaymentRef,
	).Scan(&p.PaidTimestamp)
	if err != nil {
		// The primary key backstops the existence check against a concurrent
		// settlement of the same order.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return models.Payment{}, apperr.Conflict("payment already exists for order %d", p.OrderID)
		}
		return models.Payment{}, fmt.Errorf("failed to insert payment: %w", err)
	}
	return p, nil
}

func (r *PaymentRepo) GetByOrderID(ctx context.Context, tx pgx.Tx, orderID int64) (models.Payment, error) {
	q := `
		SELECT order_id, paid_price, points_used, payment_method, COALESCE(payment_ref, ''), paid_timestamp
		FROM payments
		WHERE order_id = $1`

	var p models.Payment
	var method string
	err := tx.QueryRow(ctx, q, orderID).Scan(
		&p.OrderID, &p.PaidPrice, &p.PointsUsed, &method, &p.PaymentRef, &p.PaidTimestamp,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Payment{}, apperr.NotFound("payment for order %d not found", orderID)
	}
	if err != nil {
		return models.Payment{}, fmt.Errorf("failed to query payment: %w", err)
	}
	p.PaymentMethod = models.PaymentMethod(method)
	return p, nil
}

func (r *PaymentRepo) List(ctx context.Context, tx pgx.Tx) ([]models.Payment, error) {
	q := `
		SELECT order_id, paid_price, points_used, payment_method, COALESCE(payment_ref, ''), paid_timestamp
		FROM payments
		ORDER BY paid_timestamp DESC`

	rows, err := tx.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		var p models.Payment
		var method string
		if err := rows.Scan(&p.OrderID, &p.PaidPrice, &p.PointsUsed, &method, &p.PaymentRef, &p.PaidTimestamp); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		p.PaymentMethod = models.PaymentMethod(method)
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
