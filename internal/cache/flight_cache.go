package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"flight-booking/internal/model"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss key 不存在
var ErrCacheMiss = redis.Nil

// FlightCache 航班讀取快取。航班資料讀多寫少，詳情頁跟搜尋結果都會打
// FindByID；available_seats 在訂票交易內變動，所以任何寫入後都要失效。
type FlightCache interface {
	// 讀取快取的航班
	GetFlight(ctx context.Context, flightID int) (*model.Flight, error)
	// 寫入航班快取
	SetFlight(ctx context.Context, flight *model.Flight) error
	// 失效：航班被更新、刪除、或座位數變動後呼叫
	InvalidateFlight(ctx context.Context, flightID int) error
}

type FlightCacheImpl struct {
	client *redis.Client
	ttl    time.Duration
}

func NewFlightCache(client *redis.Client, ttl time.Duration) FlightCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &FlightCacheImpl{
		client: client,
		ttl:    ttl,
	}
}

func (c *FlightCacheImpl) getFlightKey(flightID int) string {
	return fmt.Sprintf("flight:%d:info", flightID)
}

func (c *FlightCacheImpl) GetFlight(ctx context.Context, flightID int) (*model.Flight, error) {
	raw, err := c.client.Get(ctx, c.getFlightKey(flightID)).Result()
	if err != nil {
		return nil, err
	}

	var flight model.Flight
	if err := json.Unmarshal([]byte(raw), &flight); err != nil {
		// 壞掉的快取直接丟棄，讓呼叫端回源
		_ = c.client.Del(ctx, c.getFlightKey(flightID)).Err()
		return nil, ErrCacheMiss
	}

	return &flight, nil
}

func (c *FlightCacheImpl) SetFlight(ctx context.Context, flight *model.Flight) error {
	raw, err := json.Marshal(flight)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.getFlightKey(flight.ID), raw, c.ttl).Err()
}

func (c *FlightCacheImpl) InvalidateFlight(ctx context.Context, flightID int) error {
	return c.client.Del(ctx, c.getFlightKey(flightID)).Err()
}
