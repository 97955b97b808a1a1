// models/item.go
package models

import "time"

const ItemTable = "inv_items"

// 闭集：类目与部门，校验统一走 ValidCategory / ValidDepartment
var ItemCategories = []string{
	"electronics", "furniture", "books", "sports", "lab_equipment", "office_supplies", "other",
}

var Departments = []string{
	"lab", "library", "hostel", "sports", "admin", "general",
}

type Item struct {
	ID            string `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string `gorm:"size:200;not null;index" json:"name"`
	Category      string `gorm:"size:40;not null;index" json:"category"`
	Department    string `gorm:"size:40;not null;index" json:"department"` // 归属部门
	Quantity      int    `gorm:"not null;default:0" json:"quantity"`       // 当前库存，只能通过 AdjustQuantity 修改
	MinStockLevel int    `gorm:"not null;default:5" json:"minStockLevel"`
	MaxStockLevel *int   `json:"maxStockLevel,omitempty"`
	Unit          string `gorm:"size:40;not null;default:'pieces'" json:"unit"`
	Description   string `gorm:"size:500" json:"description,omitempty"`
	Location      string `gorm:"size:200" json:"location,omitempty"`

	IsActive bool `gorm:"not null;default:true;index" json:"isActive"` // 软删除标记

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Item) TableName() string { return ItemTable }

func ValidCategory(c string) bool {
	for _, v := range ItemCategories {
		if v == c {
			return true
		}
	}
	return false
}

func ValidDepartment(d string) bool {
	for _, v := range Departments {
		if v == d {
			return true
		}
	}
	return false
}

// StockStatus 汇总给前端列表用：out_of_stock / low_stock / in_stock
func (it *Item) StockStatus() string {
	switch {
	case it.Quantity == 0:
		return "out_of_stock"
	case it.Quantity <= it.MinStockLevel:
		return "low_stock"
	default:
		return "in_stock"
	}
}
