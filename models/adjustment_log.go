package models

import "time"

// AdjustmentLog 记录管理员直接调库存（补货/盘点修正）的审计信息
// 审批扣减不走这里，那部分的痕迹在 Request 本身。
type AdjustmentLog struct {
	ID            string  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ItemID        string  `gorm:"type:uuid;index;not null" json:"itemId"`
	ActorID       string  `gorm:"type:uuid" json:"actorId"`
	ActorUsername string  `json:"actorUsername"`
	Delta         int     `gorm:"not null" json:"delta"`
	NewQuantity   int     `gorm:"not null" json:"newQuantity"` // 调整后的库存快照
	Reason        *string `json:"reason,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

func (AdjustmentLog) TableName() string { return "inv_adjustment_log" }
