// models/request.go
package models

import "time"

const RequestTable = "inv_requests"

// Request.Status 的全部取值
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusDeclined  = "declined"
	StatusCompleted = "completed"
)

// 优先级（仅展示用，不参与审批逻辑）
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

type Request struct {
	ID         string `gorm:"type:uuid;primaryKey" json:"id"`
	ItemID     string `gorm:"type:uuid;index;not null" json:"itemId"`
	UserID     string `gorm:"type:uuid;index;not null" json:"userId"`
	Department string `gorm:"size:40;not null;index" json:"department"` // 创建时取 item 的部门
	Quantity   int    `gorm:"not null" json:"quantity"`                 // 创建后不可改
	Status     string `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Reason     string `gorm:"size:500;not null" json:"reason"`
	AdminNote  string `gorm:"size:500" json:"adminNote,omitempty"` // 审批备注
	Priority   string `gorm:"size:20;not null;default:'medium'" json:"priority"`

	RequestedAt time.Time  `gorm:"index;not null" json:"requestedAt"`
	DecidedAt   *time.Time `json:"decidedAt,omitempty"`
	DecidedBy   *string    `gorm:"type:uuid" json:"decidedBy,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Request) TableName() string { return RequestTable }

func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// 状态机：只允许前进，declined/completed 为终态
var requestTransitions = map[string][]string{
	StatusPending:  {StatusApproved, StatusDeclined},
	StatusApproved: {StatusCompleted},
}

// CanTransition 判断 from -> to 是否为合法状态迁移
func CanTransition(from, to string) bool {
	for _, next := range requestTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// terminal 报告该状态是否不再允许任何迁移
func terminal(status string) bool {
	return len(requestTransitions[status]) == 0
}
