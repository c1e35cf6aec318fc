package repositories_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"orderdesk/internal/config"
	"orderdesk/internal/database"
	"orderdesk/internal/models"
	"orderdesk/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var asOf = time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

type stores struct {
	users  repositories.UserRepository
	orders repositories.OrderRepository
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open(config.DriverSQLite, dsn, nil)
	require.NoError(t, err)
	return db
}

// forEachStore runs fn against the GORM store and the in-memory store.
func forEachStore(t *testing.T, fn func(t *testing.T, s stores)) {
	t.Run("gorm", func(t *testing.T) {
		db := openTestDB(t)
		fn(t, stores{
			users:  repositories.NewGORMUserRepository(db),
			orders: repositories.NewGORMOrderRepository(db),
		})
	})
	t.Run("memory", func(t *testing.T) {
		orders := repositories.NewMockOrderRepository()
		fn(t, stores{
			users:  repositories.NewMockUserRepository(orders),
			orders: orders,
		})
	})
}

func seedUser(t *testing.T, s stores, username string) {
	t.Helper()
	require.NoError(t, s.users.Create(context.Background(), &models.User{
		Username:      username,
		Name:          username,
		ContactNumber: models.ContactNumberUnavailable,
		Country:       models.CountryUnknown,
	}))
}

func seedOrder(t *testing.T, s stores, username string, offsetDays int) *models.Order {
	t.Helper()
	order := &models.Order{
		Username:         username,
		PurchaseDate:     asOf.AddDate(0, 0, offsetDays),
		DeliveryTime:     "10:00:00",
		DeliveryLocation: "Galle",
		ProductName:      "Bookshelf",
		Quantity:         1,
	}
	require.NoError(t, s.orders.Create(context.Background(), order))
	require.NotZero(t, order.ID)
	return order
}

func ids(orders []models.Order) []uint64 {
	out := make([]uint64, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.ID)
	}
	return out
}

func TestOrderRepository_CreateAssignsSequentialIDs(t *testing.T) {
	forEachStore(t, func(t *testing.T, s stores) {
		seedUser(t, s, "alice")
		first := seedOrder(t, s, "alice", 1)
		second := seedOrder(t, s, "alice", 2)
		assert.Greater(t, second.ID, first.ID)
	})
}

func TestOrderRepository_Orderings(t *testing.T) {
	forEachStore(t, func(t *testing.T, s stores) {
		ctx := context.Background()
		seedUser(t, s, "alice")

		past2 := seedOrder(t, s, "alice", -2)
		future3 := seedOrder(t, s, "alice", 3)
		today := seedOrder(t, s, "alice", 0)
		past1 := seedOrder(t, s, "alice", -1)
		future1 := seedOrder(t, s, "alice", 1)

		all, err := s.orders.ListByUser(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, []uint64{future3.ID, future1.ID, today.ID, past1.ID, past2.ID}, ids(all))

		upcoming, err := s.orders.ListUpcoming(ctx, "alice", asOf)
		require.NoError(t, err)
		assert.Equal(t, []uint64{today.ID, future1.ID, future3.ID}, ids(upcoming))

		past, err := s.orders.ListPast(ctx, "alice", asOf)
		require.NoError(t, err)
		assert.Equal(t, []uint64{past1.ID, past2.ID}, ids(past))
	})
}

func TestOrderRepository_UpcomingAndPastPartitionAll(t *testing.T) {
	forEachStore(t, func(t *testing.T, s stores) {
		ctx := context.Background()
		seedUser(t, s, "alice")
		for _, offset := range []int{-10, -3, -1, -1, 0, 0, 1, 4, 9} {
			seedOrder(t, s, "alice", offset)
		}

		all, err := s.orders.ListByUser(ctx, "alice")
		require.NoError(t, err)

		for day := -12; day <= 12; day++ {
			cut := asOf.AddDate(0, 0, day)
			upcoming, err := s.orders.ListUpcoming(ctx, "alice", cut)
			require.NoError(t, err)
			past, err := s.orders.ListPast(ctx, "alice", cut)
			require.NoError(t, err)

			seen := make(map[uint64]int)
			for _, id := range append(ids(upcoming), ids(past)...) {
				seen[id]++
			}
			assert.Len(t, seen, len(all), "cut %s", cut)
			for _, o := range all {
				assert.Equal(t, 1, seen[o.ID], "order %d at cut %s", o.ID, cut)
			}
		}
	})
}

func TestOrderRepository_ScopedToOwner(t *testing.T) {
	forEachStore(t, func(t *testing.T, s stores) {
		ctx := context.Background()
		seedUser(t, s, "alice")
		seedUser(t, s, "bob")
		alices := seedOrder(t, s, "alice", 1)
		seedOrder(t, s, "bob", 1)

		found, err := s.orders.FindByUserAndID(ctx, "alice", alices.ID)
		require.NoError(t, err)
		assert.Equal(t, alices.ID, found.ID)
		assert.Equal(t, "Galle", found.DeliveryLocation)
		assert.Equal(t, asOf.AddDate(0, 0, 1).Format(models.DateLayout), found.PurchaseDate.Format(models.DateLayout))

		_, err = s.orders.FindByUserAndID(ctx, "bob", alices.ID)
		assert.ErrorIs(t, err, repositories.ErrOrderNotFound)

		_, err = s.orders.FindByUserAndID(ctx, "alice", 9999)
		assert.ErrorIs(t, err, repositories.ErrOrderNotFound)

		bobs, err := s.orders.ListByUser(ctx, "bob")
		require.NoError(t, err)
		assert.Len(t, bobs, 1)

		count, err := s.orders.CountByUser(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		none, err := s.orders.ListByUser(ctx, "carol")
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

func TestOrderRepository_Delete(t *testing.T) {
	forEachStore(t, func(t *testing.T, s stores) {
		ctx := context.Background()
		seedUser(t, s, "alice")
		order := seedOrder(t, s, "alice", 1)

		require.NoError(t, s.orders.Delete(ctx, order))
		_, err := s.orders.FindByUserAndID(ctx, "alice", order.ID)
		assert.ErrorIs(t, err, repositories.ErrOrderNotFound)

		err = s.orders.Delete(ctx, order)
		assert.ErrorIs(t, err, repositories.ErrOrderNotFound)
	})
}
