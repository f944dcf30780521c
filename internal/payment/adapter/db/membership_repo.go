package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"pos-backoffice/internal/payment/domain/models"
	"pos-backoffice/internal/xpkg/apperr"
)

type MembershipRepo struct{}

func NewMembershipRepo() *MembershipRepo {
	return &MembershipRepo{}
}

func (r *MembershipRepo) LockByID(ctx context.Context, tx pgx.Tx, membershipID int64) (models.Membership, error) {
	q := `
		SELECT membership_id, points_balance, cumulative_points, tier_id
		FROM memberships
		WHERE membership_id = $1
		FOR UPDATE`

	var m models.Membership
	err := tx.QueryRow(ctx, q, membershipID).Scan(
		&m.MembershipID, &m.PointsBalance, &m.CumulativePoints, &m.TierID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Membership{}, apperr.NotFound("membership %d not found", membershipID)
	}
	if err != nil {
		return models.Membership{}, fmt.Errorf("failed to lock membership: %w", err)
	}
	return m, nil
}

func (r *MembershipRepo) UpdatePoints(ctx context.Context, tx pgx.Tx, membershipID int64, balance, cumulative int) error {
	tag, err := tx.Exec(ctx,
		`UPDATE memberships SET points_balance = $2, cumulative_points = $3 WHERE membership_id = $1`,
		membershipID, balance, cumulative,
	)
	if err != nil {
		return fmt.Errorf("failed to update membership points: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("membership %d not found", membershipID)
	}
	return nil
}

func (r *MembershipRepo) GetTier(ctx context.Context, tx pgx.Tx, tierID int64) (models.Tier, error) {
	q := `
		SELECT tier_id, tier_name, rank, discount_percentage, minimum_point_required
		FROM tiers
		WHERE tier_id = $1`

	var t models.Tier
	err := tx.QueryRow(ctx, q, tierID).Scan(
		&t.TierID, &t.TierName, &t.Rank, &t.DiscountPercentage, &t.MinimumPointRequired,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Tier{}, apperr.NotFound("tier %d not found", tierID)
	}
	if err != nil {
		return models.Tier{}, fmt.Errorf("failed to query tier: %w", err)
	}
	return t, nil
}

func (r *MembershipRepo) HighestQualifyingTier(ctx context.Context, tx pgx.Tx, cumulativePoints int) (models.Tier, bool, error) {
	q := `
		SELECT tier_id, tier_name, rank, discount_percentage, minimum_point_required
		FROM tiers
		WHERE minimum_point_required <= $1
		ORDER BY rank DESC
		LIMIT 1`

	var t models.Tier
	err := tx.QueryRow(ctx, q, cumulativePoints).Scan(
		&t.TierID, &t.TierName, &t.Rank, &t.DiscountPercentage, &t.MinimumPointRequired,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Tier{}, false, nil
	}
	if err != nil {
		return models.Tier{}, false, fmt.Errorf("failed to query qualifying tier: %w", err)
	}
	return t, true, nil
}

func (r *MembershipRepo) UpdateTier(ctx context.Context, tx pgx.Tx, membershipID, tierID int64) error {
	tag, err := tx.Exec(ctx,
		`UPDATE memberships SET tier_id = $2 WHERE membership_id = $1`,
		membershipID, tierID,
	)
	if err != nil {
		return fmt.Errorf("failed to update membership tier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("membership %d not found", membershipID)
	}
	return nil
}
