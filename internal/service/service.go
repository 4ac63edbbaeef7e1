package service

import (
	"go.uber.org/zap"

	"time-tracker/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	TimeEntry TimeEntryService
	Export    ExportService
}

// NewService 创建 Service 聚合
func NewService(repo *repository.Repository, logger *zap.Logger) *Service {
	return &Service{
		TimeEntry: NewTimeEntryService(repo, logger),
		Export:    NewExportService(repo, logger),
	}
}
