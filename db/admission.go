// db/admission.go
package db

import (
	"errors"
	"fmt"
	"time"

	"Gin_postgres_redis_booking_system/models"
)

// 准入失败都是业务结果，不是内部错误；controller 按哨兵映射状态码
var (
	ErrItemNotFound        = errors.New("item not found")
	ErrItemUnavailable     = errors.New("item not available")
	ErrCapacityExceeded    = errors.New("capacity exceeded")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrConflict            = errors.New("conflicting concurrent booking")
)

// ValidateRequest 检查日期/数量的静态合法性。
// today 取 UTC 当天零点；当天仍可预订，过去的日期拒绝。
func ValidateRequest(dates []time.Time, quantity int, today time.Time) error {
	if len(dates) == 0 {
		return fmt.Errorf("%w: no dates requested", ErrInvalidRequest)
	}
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidRequest)
	}
	today = models.NormalizeDate(today)
	seen := make(map[string]bool, len(dates))
	for _, d := range dates {
		key := models.DateKey(d)
		if seen[key] {
			return fmt.Errorf("%w: duplicate date %s", ErrInvalidRequest, key)
		}
		seen[key] = true
		if models.NormalizeDate(d).Before(today) {
			return fmt.Errorf("%w: date %s is in the past", ErrInvalidRequest, key)
		}
	}
	return nil
}

// CheckAdmission 判断一笔请求能否提交：物品必须 Available，
// 且每个请求日 已占用 - 自身旧占用 + 请求数量 <= capacity。
// 任意一天超量则整笔拒绝（多日请求不做部分提交）。
//
// existing 是各请求日当前已占用的数量和（key 为 YYYY-MM-DD），
// exclude 是更新场景下本预订自己的旧占用，新建时传 nil。
// 这个函数只做判定；真正的防并发靠调用方在事务里锁住 item 行。
func CheckAdmission(item *models.Item, existing, exclude map[string]int, dates []time.Time, quantity int) error {
	if item == nil {
		return ErrItemNotFound
	}
	if item.Status != models.ItemStatusAvailable {
		return fmt.Errorf("%w: status is %q", ErrItemUnavailable, item.Status)
	}
	for _, d := range dates {
		key := models.DateKey(d)
		taken := existing[key] - exclude[key]
		if taken < 0 {
			taken = 0
		}
		if taken+quantity > item.Capacity {
			return fmt.Errorf("%w: %s has %d of %d booked", ErrCapacityExceeded, key, taken, item.Capacity)
		}
	}
	return nil
}
