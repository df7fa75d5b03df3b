// internal/plan/plan.go
//
// Premium plan tiers.
//
// Context
// -------
// Plans are an ordinal ladder: basic < plus < pro.  Features gate on a
// minimum tier (custom colors need plus, personal domains need pro), so the
// package exposes the ladder as comparable Tier values rather than raw
// strings scattered through handlers.
//
// The `premium_plans` table holds one row per tier keyed by name; users
// reference it through `users.premium_plan_id`.  A user with a NULL plan is
// basic.
package plan

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Tier is an ordinal subscription level.  Higher values include the
// privileges of the tiers below.
type Tier int

const (
	Basic Tier = iota
	Plus
	Pro
)

// String returns the tier's plan key as stored in premium_plans.key.
func (t Tier) String() string {
	switch t {
	case Plus:
		return "plus"
	case Pro:
		return "pro"
	default:
		return "basic"
	}
}

// ParseTier maps a plan key to its Tier.  Unknown keys are Basic.
func ParseTier(key string) Tier {
	switch key {
	case "plus":
		return Plus
	case "pro":
		return Pro
	default:
		return Basic
	}
}

// ErrTierRequired reports a feature gated above the user's tier.
var ErrTierRequired = errors.New("plan: tier requirement not met")

// ByUser returns the tier for userID.  Users without a plan row are Basic.
func ByUser(ctx context.Context, db *sqlx.DB, userID int64) (Tier, error) {
	const q = `SELECT pp.key
                 FROM users u
                 JOIN premium_plans pp ON u.premium_plan_id = pp.id
                WHERE u.id = $1`

	var key string
	err := db.GetContext(ctx, &key, q, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return Basic, nil
	}
	if err != nil {
		return Basic, err
	}
	return ParseTier(key), nil
}

// Require verifies that userID holds at least min.  It returns a wrapped
// ErrTierRequired naming the missing tier so handlers can answer 403 with
// the plan to upgrade to.
func Require(ctx context.Context, db *sqlx.DB, userID int64, min Tier) error {
	have, err := ByUser(ctx, db, userID)
	if err != nil {
		return err
	}
	if have < min {
		return fmt.Errorf("%w: need %s, have %s", ErrTierRequired, min, have)
	}
	return nil
}
