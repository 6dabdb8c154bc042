// db/repo_reservation.go
package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"Gin_postgres_redis_booking_system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreateReservationInput struct {
	ItemID         string
	Dates          []time.Time // 已归一化到 UTC 零点
	Quantity       int
	FullName       string
	UserEmail      string
	UserPhone      string
	SpecialRequest string
}

// CreateReservation 预订准入 + 落库，一个事务内完成。
// 先锁 item 行再查占用量，同一物品的 check-then-insert 串行化，
// 并发请求不可能同时通过容量检查。
// 多日请求共享一个 bookingRef，任何一天超量整笔回滚。
func (r *Repo) CreateReservation(ctx context.Context, in CreateReservationInput) ([]models.Reservation, error) {
	if err := ValidateRequest(in.Dates, in.Quantity, time.Now()); err != nil {
		return nil, err
	}

	var out []models.Reservation
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1) 锁住该物品；不存在 → ItemNotFound
		var it models.Item
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&it, "id = ?", in.ItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}

		// 2) 锁内重读占用量再判定，预检结果只是建议性的
		existing, err := sumByDateTx(tx, in.ItemID, in.Dates)
		if err != nil {
			return err
		}
		if err := CheckAdmission(&it, existing, nil, in.Dates, in.Quantity); err != nil {
			return err
		}

		// 3) 一天一条记录，共享 bookingRef
		ref := uuid.NewString()
		rows := make([]models.Reservation, 0, len(in.Dates))
		for _, d := range in.Dates {
			rows = append(rows, models.Reservation{
				ID:              uuid.NewString(),
				BookingRef:      ref,
				ItemID:          it.ID,
				ItemName:        it.Name,
				ReservationDate: models.NormalizeDate(d),
				Quantity:        in.Quantity,
				FullName:        in.FullName,
				UserEmail:       in.UserEmail,
				UserPhone:       in.UserPhone,
				SpecialRequest:  in.SpecialRequest,
			})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
		out = rows
		return nil
	})
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return out, nil
}

type UpdateReservationInput struct {
	ItemID          *string
	ReservationDate *time.Time
	Quantity        *int
	FullName        *string
	UserEmail       *string
	UserPhone       *string
	SpecialRequest  *string
}

// UpdateReservation 改日期/数量/物品时重新走准入，本预订的旧占用
// 通过 CheckAdmission 的 exclude 扣减（物品没换时才算自己的旧名额）。
// 旧日期的名额在同一事务内随 UPDATE 一起释放，不会出现两头都占着的窗口。
func (r *Repo) UpdateReservation(ctx context.Context, id string, in UpdateReservationInput) (*models.Reservation, error) {
	var out models.Reservation
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var res models.Reservation
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&res, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReservationNotFound
			}
			return err
		}

		targetItemID := res.ItemID
		if in.ItemID != nil {
			targetItemID = *in.ItemID
		}
		targetDate := models.NormalizeDate(res.ReservationDate)
		if in.ReservationDate != nil {
			targetDate = models.NormalizeDate(*in.ReservationDate)
		}
		targetQty := res.Quantity
		if in.Quantity != nil {
			targetQty = *in.Quantity
		}

		needsAdmission := in.ItemID != nil || in.ReservationDate != nil || in.Quantity != nil
		var it models.Item
		if needsAdmission {
			// 改了日期才重新卡“不能是过去”；只改数量不强迫用户挪日期
			checkDates := []time.Time{targetDate}
			if in.ReservationDate == nil {
				if targetQty <= 0 {
					return ErrInvalidRequest
				}
			} else if err := ValidateRequest(checkDates, targetQty, time.Now()); err != nil {
				return err
			}

			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&it, "id = ?", targetItemID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrItemNotFound
				}
				return err
			}

			// 含自己旧行求和，旧占用交给 exclude 扣减
			existing, err := sumByDateTx(tx, targetItemID, checkDates)
			if err != nil {
				return err
			}
			var exclude map[string]int
			if targetItemID == res.ItemID {
				exclude = map[string]int{models.DateKey(res.ReservationDate): res.Quantity}
			}
			if err := CheckAdmission(&it, existing, exclude, checkDates, targetQty); err != nil {
				return err
			}
		}

		patch := map[string]any{}
		if in.ItemID != nil {
			patch["item_id"] = it.ID
			patch["item_name"] = it.Name
		}
		if in.ReservationDate != nil {
			patch["reservation_date"] = targetDate
		}
		if in.Quantity != nil {
			patch["quantity"] = targetQty
		}
		if in.FullName != nil {
			patch["full_name"] = *in.FullName
		}
		if in.UserEmail != nil {
			patch["user_email"] = *in.UserEmail
		}
		if in.UserPhone != nil {
			patch["user_phone"] = *in.UserPhone
		}
		if in.SpecialRequest != nil {
			patch["special_request"] = *in.SpecialRequest
		}
		if len(patch) > 0 {
			if err := tx.Model(&models.Reservation{}).
				Where("id = ?", res.ID).
				Updates(patch).Error; err != nil {
				return err
			}
		}
		if err := tx.First(&out, "id = ?", res.ID).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return &out, nil
}

// DeleteReservation 取消即删除，名额随之释放；重复取消返回 NotFound
func (r *Repo) DeleteReservation(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Delete(&models.Reservation{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrReservationNotFound
	}
	return nil
}

func (r *Repo) FindReservationByID(ctx context.Context, id string) (*models.Reservation, error) {
	var res models.Reservation
	if err := r.DB.WithContext(ctx).First(&res, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &res, nil
}

// FindByBookingRef 取一笔多日预订的全部记录
func (r *Repo) FindByBookingRef(ctx context.Context, ref string) ([]models.Reservation, error) {
	var rows []models.Reservation
	err := r.DB.WithContext(ctx).
		Where("booking_ref = ?", ref).
		Order("reservation_date ASC").
		Find(&rows).Error
	return rows, err
}

type ReservationQuery struct {
	ItemID string
	Date   *time.Time
	Email  string
}

func (r *Repo) ListReservations(ctx context.Context, q ReservationQuery) ([]models.Reservation, error) {
	tx := r.DB.WithContext(ctx).Model(&models.Reservation{})
	if q.ItemID != "" {
		tx = tx.Where("item_id = ?", q.ItemID)
	}
	if q.Date != nil {
		tx = tx.Where("reservation_date = ?", models.NormalizeDate(*q.Date))
	}
	if q.Email != "" {
		tx = tx.Where("LOWER(user_email) = ?", strings.ToLower(q.Email))
	}
	var rows []models.Reservation
	err := tx.Order("created_at DESC").Find(&rows).Error
	return rows, err
}

// FindByItemAndDate 创建时间升序，先到先得的判定口径
func (r *Repo) FindByItemAndDate(ctx context.Context, itemID string, date time.Time) ([]models.Reservation, error) {
	var rows []models.Reservation
	err := r.DB.WithContext(ctx).
		Where("item_id = ? AND reservation_date = ?", itemID, models.NormalizeDate(date)).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repo) SumQuantity(ctx context.Context, itemID string, date time.Time) (int, error) {
	sums, err := sumByDateTx(r.DB.WithContext(ctx), itemID, []time.Time{date})
	if err != nil {
		return 0, err
	}
	return sums[models.DateKey(date)], nil
}

// ListBookedDates 某物品已订满的日期（sum(quantity) >= capacity），给前端日历置灰用
func (r *Repo) ListBookedDates(ctx context.Context, itemID string) ([]string, error) {
	var rows []struct {
		ReservationDate time.Time
	}
	err := r.DB.WithContext(ctx).Raw(`
		SELECT r.reservation_date
		FROM `+models.ReservationTable+` r
		JOIN `+models.ItemTable+` i ON i.id = r.item_id
		WHERE r.item_id = ?
		GROUP BY r.reservation_date, i.capacity
		HAVING SUM(r.quantity) >= i.capacity
		ORDER BY r.reservation_date ASC
	`, itemID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.DateKey(row.ReservationDate))
	}
	return out, nil
}

// 各请求日的占用量和
func sumByDateTx(tx *gorm.DB, itemID string, dates []time.Time) (map[string]int, error) {
	norm := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		norm = append(norm, models.NormalizeDate(d))
	}

	q := tx.Model(&models.Reservation{}).
		Select("reservation_date, COALESCE(SUM(quantity), 0) AS total").
		Where("item_id = ? AND reservation_date IN ?", itemID, norm).
		Group("reservation_date")

	var rows []struct {
		ReservationDate time.Time
		Total           int
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	sums := make(map[string]int, len(rows))
	for _, row := range rows {
		sums[models.DateKey(row.ReservationDate)] = row.Total
	}
	return sums, nil
}

// IsUniqueViolation Postgres 唯一约束冲突（SQLSTATE 23505）
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "SQLSTATE 23505") ||
		strings.Contains(err.Error(), "duplicate key")
}
