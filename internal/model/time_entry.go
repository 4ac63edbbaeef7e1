package model

import "time"

// TimePartition 所有打卡记录所属的固定分区
const TimePartition = "TIME"

// EntryType 打卡事件类型
type EntryType int

const (
	EntryTypeClockIn  EntryType = 0 // 上班打卡
	EntryTypeClockOut EntryType = 1 // 下班打卡
)

// Valid 是否为已知的事件类型
func (t EntryType) Valid() bool {
	return t == EntryTypeClockIn || t == EntryTypeClockOut
}

func (t EntryType) String() string {
	switch t {
	case EntryTypeClockIn:
		return "clock-in"
	case EntryTypeClockOut:
		return "clock-out"
	default:
		return "unknown"
	}
}

// TimeEntry 打卡记录表 — 对应 time
// 主键为 (partition_key, row_key) 两级键，row_key 仅在分区内唯一
type TimeEntry struct {
	PartitionKey   string    `gorm:"type:varchar(32);primaryKey"     json:"partition_key"`
	ID             string    `gorm:"column:row_key;type:varchar(36);primaryKey" json:"id"`
	EmployeeID     int       `gorm:"not null"                        json:"employee_id"`
	Date           time.Time `gorm:"not null"                        json:"date"`
	Type           EntryType `gorm:"type:smallint;not null"          json:"type"`
	IsConsolidated bool      `gorm:"not null;default:false"          json:"is_consolidated"` // 由下游汇总流程维护
	VersionedModel
}

// TableName 指定表名
func (TimeEntry) TableName() string { return "time" }
