package model

import "time"

type AuditAction string

const (
	AuditActionUpdateStock       AuditAction = "UPDATE_STOCK"
	AuditActionUpdateOrderStatus AuditAction = "UPDATE_ORDER_STATUS"
	AuditActionCreateProduct     AuditAction = "CREATE_PRODUCT"
	AuditActionUpdateProduct     AuditAction = "UPDATE_PRODUCT"
	AuditActionDeleteProduct     AuditAction = "DELETE_PRODUCT"
	AuditActionForceLogout       AuditAction = "FORCE_LOGOUT"
)

type AuditResourceType string

const (
	AuditResourceProduct AuditResourceType = "product"
	AuditResourceOrder   AuditResourceType = "order"
	AuditResourceUser    AuditResourceType = "user"
)

// 管理者操作ログ
// before / after はJSON文字列のまま保存する
type AuditLog struct {
	ID           int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorUserID  int64             `gorm:"not null;index" json:"actorUserId"`
	Action       AuditAction       `gorm:"type:varchar(50);not null;index" json:"action"`
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resourceType"`
	ResourceID   int64             `gorm:"not null;index" json:"resourceId"`
	BeforeJSON   string            `gorm:"type:text" json:"before"`
	AfterJSON    string            `gorm:"type:text" json:"after"`
	CreatedAt    time.Time         `gorm:"not null;index" json:"createdAt"`
}
