// models/item.go
package models

import "time"

const ItemTable = "bk_items"

// 物品状态由管理员维护，不从预订记录推导
const (
	ItemStatusAvailable   = "Available"
	ItemStatusUnavailable = "Unavailable"
	ItemStatusMaintenance = "Under Maintenance"
)

const (
	ItemConditionGood = "Good"
	ItemConditionFair = "Fair"
	ItemConditionPoor = "Poor"
)

// Item 可预订的物品：单件设备 Capacity=1，活动票务 Capacity>1
type Item struct {
	ID        string `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string `gorm:"size:200;not null" json:"name"`
	Category  string `gorm:"size:100;not null" json:"category"`
	Condition string `gorm:"size:20;not null;default:'Good'" json:"condition"`
	Status    string `gorm:"size:30;not null;default:'Available'" json:"status"`
	Capacity  int    `gorm:"not null;default:1" json:"capacity"` // 单日可预订上限，DB 侧 CHECK >= 1
	ImageURL  string `gorm:"size:500" json:"imageUrl,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Item) TableName() string { return ItemTable }

func ValidItemStatus(s string) bool {
	switch s {
	case ItemStatusAvailable, ItemStatusUnavailable, ItemStatusMaintenance:
		return true
	}
	return false
}

func ValidItemCondition(s string) bool {
	switch s {
	case ItemConditionGood, ItemConditionFair, ItemConditionPoor:
		return true
	}
	return false
}
