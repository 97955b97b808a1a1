package models

import "time"

// Invite 一次性注册邀请：管理员开票时就定好角色和部门
type Invite struct {
	ID         uint      `gorm:"primaryKey"`
	Email      string    `gorm:"index;size:255;not null"`
	Token      string    `gorm:"uniqueIndex;size:64;not null"`
	Role       string    `gorm:"size:20;not null;default:'staff'"`
	Department string    `gorm:"size:40;not null"`
	ExpiresAt  time.Time `gorm:"index;not null"`
	UsedAt     *time.Time
	CreatedBy  string `gorm:"size:255"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
