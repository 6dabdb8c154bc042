package models

import (
	"time"
)

// User 邮箱登录 + Redis 会话；密码只存 bcrypt 哈希
type User struct {
	ID           string `gorm:"primaryKey;type:uuid" json:"id"`
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	FullName     string `gorm:"size:255;not null" json:"fullName"`
	PasswordHash []byte `gorm:"not null" json:"-"`
	IsAdmin      bool   `gorm:"not null;default:false" json:"isAdmin"`

	LastLoginAt *time.Time `gorm:"index" json:"lastLoginAt,omitempty"`
	LastSeenAt  *time.Time `gorm:"index" json:"lastSeenAt,omitempty"`
	LoginCount  int64      `gorm:"not null;default:0" json:"loginCount"`
	LastLoginIP string     `gorm:"size:45" json:"-"`  // 可选，前端一般不直接展示
	LastLoginUA string     `gorm:"size:255" json:"-"` // 可选

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "bk_users"
}
