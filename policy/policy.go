// Package policy 把原本散在各 handler 里的角色/部门判断收拢成一个入口：
// Allow(actor, action, resource)。handler 只在入口处调一次。
package policy

import (
	"errors"

	"Gin_postgres_redis_inventory_tool/models"
)

var ErrForbidden = errors.New("forbidden")

// Actor 显式传递的调用者身份，由 auth 中间件从会话解析
type Actor struct {
	ID         string
	Username   string
	Role       string
	Department string
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

type Action string

const (
	ActionViewItem        Action = "item:view"
	ActionCreateItem      Action = "item:create"
	ActionUpdateItem      Action = "item:update"
	ActionDeleteItem      Action = "item:delete"
	ActionAdjustStock     Action = "item:adjust"
	ActionCreateRequest   Action = "request:create"
	ActionViewRequest     Action = "request:view"
	ActionDecideRequest   Action = "request:decide" // approve / decline
	ActionCompleteRequest Action = "request:complete"
	ActionRecordUsage     Action = "usage:record"
	ActionViewForecast    Action = "forecast:view"
	ActionViewReports     Action = "report:view"
	ActionManageUsers     Action = "user:manage"
)

// Resource 描述动作落在谁头上；零值表示与部门/归属无关
type Resource struct {
	Department string // 资源归属部门
	OwnerID    string // 资源创建人（如 Request.UserID）
}

// Allow 返回 nil 表示放行，否则 ErrForbidden。
func Allow(actor Actor, action Action, res Resource) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.Role != models.RoleStaff {
		return ErrForbidden
	}

	switch action {
	case ActionDeleteItem, ActionAdjustStock, ActionDecideRequest, ActionManageUsers:
		// 仅管理员
		return ErrForbidden

	case ActionCompleteRequest:
		// 申请人自己可以确认领用
		if res.OwnerID == actor.ID {
			return nil
		}
		return ErrForbidden

	case ActionViewRequest:
		// staff 只能看自己部门里自己的申请
		if res.Department != "" && res.Department != actor.Department {
			return ErrForbidden
		}
		if res.OwnerID != "" && res.OwnerID != actor.ID {
			return ErrForbidden
		}
		return nil

	case ActionViewItem, ActionCreateItem, ActionUpdateItem,
		ActionCreateRequest, ActionRecordUsage, ActionViewForecast, ActionViewReports:
		// 部门相关动作限制在本部门
		if res.Department != "" && res.Department != actor.Department {
			return ErrForbidden
		}
		return nil
	}

	return ErrForbidden
}

// Scope 给列表/预测类查询用：staff 固定看本部门，admin 可指定或看全部。
// 返回值为空串表示不过滤。
func Scope(actor Actor, requested string) string {
	if actor.IsAdmin() {
		return requested
	}
	return actor.Department
}
