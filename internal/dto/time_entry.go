package dto

import "time"

// ── 打卡模块 DTO ──
// 请求字段一律使用指针，以区分“未传”与“传了零值”

// CreateTimeEntryRequest 创建打卡记录请求
type CreateTimeEntryRequest struct {
	EmployeeID *int       `json:"employeeId"`
	Date       *time.Time `json:"date"`
	Type       *int       `json:"type"`
}

// UpdateTimeEntryRequest 更新打卡记录请求（仅 date 生效，其余字段忽略）
type UpdateTimeEntryRequest struct {
	Date *time.Time `json:"date"`
}

// TimeEntryResponse 打卡记录响应
type TimeEntryResponse struct {
	ID             string    `json:"id"`
	PartitionKey   string    `json:"partitionKey"`
	EmployeeID     int       `json:"employeeId"`
	Date           time.Time `json:"date"`
	Type           int       `json:"type"`
	IsConsolidated bool      `json:"isConsolidated"`
	ETag           string    `json:"eTag"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
