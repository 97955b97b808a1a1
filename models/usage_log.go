// models/usage_log.go
package models

import "time"

const UsageLogTable = "inv_usage_logs"

// UsageLog 只追加：建了就不改不删，预测全靠它
type UsageLog struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	ItemID       string    `gorm:"type:uuid;index:idx_usage_item_date;not null" json:"itemId"`
	UserID       string    `gorm:"type:uuid;index;not null" json:"userId"`
	Department   string    `gorm:"size:40;not null;index" json:"department"`
	QuantityUsed int       `gorm:"not null" json:"quantityUsed"`
	UsedAt       time.Time `gorm:"index:idx_usage_item_date;not null" json:"usedAt"`
	Purpose      string    `gorm:"size:500" json:"purpose,omitempty"`
	RequestID    *string   `gorm:"type:uuid;index" json:"requestId,omitempty"` // 来源审批单（手工记录时为空）

	CreatedAt time.Time `json:"createdAt"`
}

func (UsageLog) TableName() string { return UsageLogTable }
