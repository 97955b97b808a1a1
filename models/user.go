package models

import (
	"time"
)

const UserTable = "inv_users"

// 角色：admin 跨部门，staff 限制在本部门
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

type User struct {
	ID           string `gorm:"primaryKey;type:uuid" json:"id"`
	Username     string `gorm:"uniqueIndex;size:255;not null" json:"username"` // 邮箱
	DisplayName  string `gorm:"size:255;not null" json:"displayName"`
	PasswordHash []byte `gorm:"not null" json:"-"`
	Role         string `gorm:"size:20;not null;default:'staff'" json:"role"`
	Department   string `gorm:"size:40;not null" json:"department"`

	LastLoginAt *time.Time `gorm:"index" json:"lastLoginAt,omitempty"`
	LastSeenAt  *time.Time `gorm:"index" json:"lastSeenAt,omitempty"`
	LoginCount  int64      `gorm:"not null;default:0" json:"loginCount"`
	LastLoginIP string     `gorm:"size:45" json:"-"`  // 可选，前端一般不直接展示
	LastLoginUA string     `gorm:"size:255" json:"-"` // 可选

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return UserTable
}

func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleStaff
}
