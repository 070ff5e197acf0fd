package common

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"boxoffice/src/config"
	"boxoffice/src/lib"
	"boxoffice/src/types"

	"github.com/google/uuid"
)

// Carts stage selections before any hold exists, so they live in Redis, not
// the database: user-scoped, freely mutable, holding nothing locked. One hash
// per user keyed by item id.

const cartTTL = 24 * time.Hour

func cartKey(userID uint) string {
	return fmt.Sprintf("cart:%d", userID)
}

// UpsertCartItem adds or replaces a staged selection. The selector rules are
// the same as for holds: explicit seats or a quantity of at least one.
func UpsertCartItem(ctx context.Context, userID uint, body types.UpsertCartItemRequestBody) (*types.CartItem, error) {
	if len(body.SeatIDs) == 0 && body.Quantity < 1 {
		return nil, types.ErrSelectorRequired
	}
	if len(body.SeatIDs) > 0 && body.Quantity > 0 {
		return nil, types.ErrSelectorRequired
	}
	rd := lib.GetRedisClient()
	now := time.Now().UTC()
	item := types.CartItem{
		ID:        body.ItemID,
		PoolID:    body.PoolID,
		SeatIDs:   body.SeatIDs,
		Quantity:  body.Quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	} else {
		prev, err := rd.HGet(ctx, cartKey(userID), item.ID).Result()
		if err == nil {
			var existing types.CartItem
			if json.Unmarshal([]byte(prev), &existing) == nil {
				item.CreatedAt = existing.CreatedAt
			}
		}
	}
	raw, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}
	if err := rd.HSet(ctx, cartKey(userID), item.ID, string(raw)).Err(); err != nil {
		return nil, err
	}
	if err := rd.Expire(ctx, cartKey(userID), cartTTL).Err(); err != nil {
		log.Printf("[cart] Error refreshing TTL for user %d: %s\n", userID, err.Error())
	}
	return &item, nil
}

// ListCartItems returns the user's staged items, oldest first.
func ListCartItems(ctx context.Context, userID uint) ([]types.CartItem, error) {
	rd := lib.GetRedisClient()
	raw, err := rd.HGetAll(ctx, cartKey(userID)).Result()
	if err != nil {
		return nil, err
	}
	items := make([]types.CartItem, 0, len(raw))
	for id, v := range raw {
		var item types.CartItem
		if err := json.Unmarshal([]byte(v), &item); err != nil {
			log.Printf("[cart] Skipping malformed item %s for user %d: %s\n", id, userID, err.Error())
			continue
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func RemoveCartItem(ctx context.Context, userID uint, itemID string) error {
	rd := lib.GetRedisClient()
	return rd.HDel(ctx, cartKey(userID), itemID).Err()
}

func ClearCart(ctx context.Context, userID uint) error {
	rd := lib.GetRedisClient()
	return rd.Del(ctx, cartKey(userID)).Err()
}

// CheckoutCart converts the staged cart into holds, one per distinct pool.
// A conflict on one pool does not discard the rest of the cart: the failing
// pool's items stay staged with their conflicting seats reported, while each
// successful pool's items are removed and replaced by a live hold.
func CheckoutCart(ctx context.Context, userID uint) ([]types.CheckoutResult, error) {
	items, err := ListCartItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	groups := groupByPool(items)
	poolIDs := make([]uint, 0, len(groups))
	for poolID := range groups {
		poolIDs = append(poolIDs, poolID)
	}
	sort.Slice(poolIDs, func(i, j int) bool { return poolIDs[i] < poolIDs[j] })

	results := make([]types.CheckoutResult, 0, len(poolIDs))
	for _, poolID := range poolIDs {
		group := groups[poolID]
		hold, err := CreateHold(userID, poolID, group.selector, config.HoldTTL())
		if err != nil {
			results = append(results, checkoutFailure(poolID, err))
			continue
		}
		for _, itemID := range group.itemIDs {
			if err := RemoveCartItem(ctx, userID, itemID); err != nil {
				log.Printf("[cart] Error removing item %s after checkout: %s\n", itemID, err.Error())
			}
		}
		results = append(results, types.CheckoutResult{PoolID: poolID, HoldID: hold.ID.String()})
	}
	return results, nil
}

type cartGroup struct {
	selector types.SeatSelector
	itemIDs  []string
}

// groupByPool merges a pool's staged items into one selector. Explicit seat
// picks win over bare quantities when both forms were staged for the same
// pool: the specific seats are what the user actually chose.
func groupByPool(items []types.CartItem) map[uint]*cartGroup {
	groups := make(map[uint]*cartGroup)
	for _, item := range items {
		g, ok := groups[item.PoolID]
		if !ok {
			g = &cartGroup{}
			groups[item.PoolID] = g
		}
		g.itemIDs = append(g.itemIDs, item.ID)
		if len(item.SeatIDs) > 0 {
			g.selector.SeatIDs = appendUnique(g.selector.SeatIDs, item.SeatIDs)
		} else {
			g.selector.Quantity += item.Quantity
		}
	}
	for _, g := range groups {
		if len(g.selector.SeatIDs) > 0 {
			g.selector.Quantity = 0
		}
	}
	return groups
}

func checkoutFailure(poolID uint, err error) types.CheckoutResult {
	result := types.CheckoutResult{PoolID: poolID}
	var conflict *types.ConflictError
	if errors.As(err, &conflict) {
		result.ConflictSeats = conflict.Seats
		result.Error = conflict.Error()
		return result
	}
	result.Error = err.Error()
	return result
}

func appendUnique(dst []uint, src []uint) []uint {
	seen := make(map[uint]bool, len(dst))
	for _, id := range dst {
		seen[id] = true
	}
	for _, id := range src {
		if !seen[id] {
			dst = append(dst, id)
			seen[id] = true
		}
	}
	return dst
}
