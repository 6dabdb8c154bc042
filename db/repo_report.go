// db/repo_report.go
package db

import (
	"context"
	"time"

	"Gin_postgres_redis_booking_system/models"
)

type DashboardData struct {
	TotalReservations int64                `json:"totalReservations"`
	TotalItems        int64                `json:"totalItems"`
	TotalUsers        int64                `json:"totalUsers"`
	Recent            []models.Reservation `json:"recent"`
}

// Dashboard 管理后台首页的汇总数字 + 最近动态
func (r *Repo) Dashboard(ctx context.Context, recentLimit int) (*DashboardData, error) {
	if recentLimit <= 0 || recentLimit > 50 {
		recentLimit = 5
	}
	db := r.DB.WithContext(ctx)

	var d DashboardData
	if err := db.Model(&models.Reservation{}).Count(&d.TotalReservations).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Item{}).Count(&d.TotalItems).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.User{}).Count(&d.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Reservation{}).
		Order("updated_at DESC").
		Limit(recentLimit).
		Find(&d.Recent).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

type UsageReportRow struct {
	ItemID              string     `json:"itemId"`
	ItemName            string     `json:"itemName"`
	TotalReservations   int64      `json:"totalReservations"`
	TotalQuantity       int64      `json:"totalQuantity"`
	LastReservationDate *time.Time `json:"lastReservationDate,omitempty"`
}

// UsageReport 每个物品的预订次数/总名额/最近预订日
func (r *Repo) UsageReport(ctx context.Context) ([]UsageReportRow, error) {
	var rows []UsageReportRow
	err := r.DB.WithContext(ctx).Raw(`
		SELECT
			i.id   AS item_id,
			i.name AS item_name,
			COUNT(r.id)                  AS total_reservations,
			COALESCE(SUM(r.quantity), 0) AS total_quantity,
			MAX(r.reservation_date)      AS last_reservation_date
		FROM ` + models.ItemTable + ` i
		LEFT JOIN ` + models.ReservationTable + ` r ON r.item_id = i.id
		GROUP BY i.id, i.name
		ORDER BY total_reservations DESC, i.name ASC
	`).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
