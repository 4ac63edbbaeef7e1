package handler

import "time-tracker/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	TimeEntry *TimeEntryHandler
	Export    *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		TimeEntry: NewTimeEntryHandler(svc.TimeEntry),
		Export:    NewExportHandler(svc.Export),
	}
}
