package service

import (
	"fmt"
	"time"

	"time-tracker/internal/dto"
	"time-tracker/internal/model"
)

// TimeEntryInput 通过校验的创建参数
type TimeEntryInput struct {
	EmployeeID int
	Date       time.Time
	Type       model.EntryType
}

// TimeEntryPatch 更新补丁，当前仅允许修改 date
type TimeEntryPatch struct {
	Date *time.Time
}

// IsEmpty 补丁是否不包含任何修改
func (p TimeEntryPatch) IsEmpty() bool {
	return p.Date == nil
}

// Apply 将补丁应用到记录上，其余字段保持不变
func (p TimeEntryPatch) Apply(entry *model.TimeEntry) {
	if p.Date != nil {
		entry.Date = *p.Date
	}
}

// ParseCreateRequest 校验创建请求
//
// employeeId、date、type 三者必须全部出现；employeeId 必须为正整数，
// date 不能是零值，type 必须是已知的打卡类型（0 = 上班，1 = 下班）。
func ParseCreateRequest(req *dto.CreateTimeEntryRequest) (*TimeEntryInput, error) {
	if req == nil || req.EmployeeID == nil || req.Date == nil || req.Type == nil {
		return nil, ErrInvalidTimeRequest
	}
	if *req.EmployeeID <= 0 {
		return nil, fmt.Errorf("%w: employeeId=%d", ErrInvalidTimeRequest, *req.EmployeeID)
	}
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date 为零值", ErrInvalidTimeRequest)
	}
	typ := model.EntryType(*req.Type)
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: type=%d", ErrInvalidTimeRequest, *req.Type)
	}

	return &TimeEntryInput{
		EmployeeID: *req.EmployeeID,
		Date:       req.Date.UTC(),
		Type:       typ,
	}, nil
}

// ParseUpdateRequest 解析更新请求，未传或零值 date 视为空补丁
func ParseUpdateRequest(req *dto.UpdateTimeEntryRequest) TimeEntryPatch {
	if req == nil || req.Date == nil || req.Date.IsZero() {
		return TimeEntryPatch{}
	}
	d := req.Date.UTC()
	return TimeEntryPatch{Date: &d}
}
