// models/reservation.go
package models

import "time"

const ReservationTable = "bk_reservations"

// 预订日期只取日粒度，统一 UTC 零点存储
const DateLayout = "2006-01-02"

// Reservation 一条记录 = 某物品某一天的 Quantity 个名额。
// 多日预订会产生多条记录，共享同一个 BookingRef。
type Reservation struct {
	ID         string `gorm:"type:uuid;primaryKey" json:"id"`
	BookingRef string `gorm:"type:uuid;index;not null" json:"bookingRef"`
	ItemID     string `gorm:"type:uuid;index;not null" json:"itemId"`
	ItemName   string `gorm:"size:200;not null" json:"itemName"` // 冗余列：物品删除后记录仍可读

	ReservationDate time.Time `gorm:"type:date;not null" json:"reservationDate"`
	Quantity        int       `gorm:"not null;default:1" json:"quantity"`

	FullName       string `gorm:"size:200;not null" json:"fullName"`
	UserEmail      string `gorm:"size:255;index;not null" json:"userEmail"`
	UserPhone      string `gorm:"size:45;not null" json:"userPhone"`
	SpecialRequest string `gorm:"size:500" json:"specialRequest,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Reservation) TableName() string { return ReservationTable }

// NormalizeDate 截断到 UTC 零点，作为 (item, date) 聚合的 key
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate 解析 YYYY-MM-DD
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return NormalizeDate(t), nil
}

func DateKey(t time.Time) string { return NormalizeDate(t).Format(DateLayout) }
