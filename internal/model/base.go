package model

import "time"

// BaseModel 通用审计字段
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// VersionedModel 支持乐观锁的模型（物理删除，不带软删除字段）
// Version 即并发令牌：插入时为 1，每次成功写入 +1
type VersionedModel struct {
	BaseModel
	Version int `gorm:"not null;default:1" json:"version"`
}

// ETag 返回当前版本对应的严格并发令牌
func (m VersionedModel) ETag() ETag {
	return ETagOf(m.Version)
}
