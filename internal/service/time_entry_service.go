package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"time-tracker/internal/dto"
	"time-tracker/internal/model"
	"time-tracker/internal/repository"
	pkgerrors "time-tracker/pkg/errors"
)

// ── 打卡模块业务错误 ──

var (
	ErrInvalidTimeRequest = errors.New("打卡请求必须包含员工、日期与类型")
	ErrTimeNotFound       = errors.New("打卡记录不存在")
	ErrTimeConflict       = errors.New("打卡记录已被其他操作修改，请刷新后重试")
	// ErrStoreUnavailable 存储故障，错误链中保留底层原因
	ErrStoreUnavailable = pkgerrors.ErrStoreUnavailable
)

// TimeEntryService 打卡记录业务接口
//
// Update 与 Delete 的 ifMatch 为零值时，使用本次读取到的版本作为并发令牌；
// 调用方显式提供时（含通配符）以调用方为准。冲突不做内部重试。
type TimeEntryService interface {
	Create(ctx context.Context, req *dto.CreateTimeEntryRequest) (*dto.TimeEntryResponse, error)
	List(ctx context.Context) ([]dto.TimeEntryResponse, error)
	GetByID(ctx context.Context, id string) (*dto.TimeEntryResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateTimeEntryRequest, ifMatch model.ETag) (*dto.TimeEntryResponse, error)
	Delete(ctx context.Context, id string, ifMatch model.ETag) (*dto.TimeEntryResponse, error)
}

type timeEntryService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTimeEntryService 创建 TimeEntryService 实例
func NewTimeEntryService(repo *repository.Repository, logger *zap.Logger) TimeEntryService {
	return &timeEntryService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *timeEntryService) Create(ctx context.Context, req *dto.CreateTimeEntryRequest) (*dto.TimeEntryResponse, error) {
	input, err := ParseCreateRequest(req)
	if err != nil {
		s.logger.Debug("打卡请求校验失败", zap.Error(err))
		return nil, err
	}

	// 不支持客户端幂等键，重复提交会生成多条记录
	entry := &model.TimeEntry{
		PartitionKey:   model.TimePartition,
		ID:             uuid.NewString(),
		EmployeeID:     input.EmployeeID,
		Date:           input.Date,
		Type:           input.Type,
		IsConsolidated: false,
	}

	if err := s.repo.TimeEntry.Insert(ctx, entry); err != nil {
		return nil, s.storeError("创建打卡记录失败", entry.ID, err)
	}

	s.logger.Info("新打卡记录已保存",
		zap.String("id", entry.ID),
		zap.Int("employee_id", entry.EmployeeID),
		zap.Stringer("type", entry.Type),
	)
	return toTimeEntryResponse(entry), nil
}

// ────────────────────── List ──────────────────────

func (s *timeEntryService) List(ctx context.Context) ([]dto.TimeEntryResponse, error) {
	result := make([]dto.TimeEntryResponse, 0)
	for entry, err := range s.repo.TimeEntry.ScanAll(ctx, model.TimePartition) {
		if err != nil {
			return nil, s.storeError("列出打卡记录失败", "", err)
		}
		result = append(result, *toTimeEntryResponse(&entry))
	}
	return result, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *timeEntryService) GetByID(ctx context.Context, id string) (*dto.TimeEntryResponse, error) {
	entry, err := s.repo.TimeEntry.GetByID(ctx, model.TimePartition, id)
	if err != nil {
		return nil, s.storeError("查询打卡记录失败", id, err)
	}
	return toTimeEntryResponse(entry), nil
}

// ────────────────────── Update ──────────────────────

func (s *timeEntryService) Update(ctx context.Context, id string, req *dto.UpdateTimeEntryRequest, ifMatch model.ETag) (*dto.TimeEntryResponse, error) {
	entry, err := s.repo.TimeEntry.GetByID(ctx, model.TimePartition, id)
	if err != nil {
		return nil, s.storeError("查询打卡记录失败", id, err)
	}

	expected := entry.ETag()
	if !ifMatch.IsZero() {
		expected = ifMatch
	}

	patch := ParseUpdateRequest(req)
	if patch.IsEmpty() {
		// 空补丁不写入，但仍需遵守调用方给出的令牌
		if !expected.Matches(entry.Version) {
			return nil, ErrTimeConflict
		}
		return toTimeEntryResponse(entry), nil
	}
	patch.Apply(entry)

	if err := s.repo.TimeEntry.Replace(ctx, entry, expected); err != nil {
		return nil, s.storeError("更新打卡记录失败", id, err)
	}

	s.logger.Info("打卡记录已更新", zap.String("id", id), zap.Int("version", entry.Version))
	return toTimeEntryResponse(entry), nil
}

// ────────────────────── Delete ──────────────────────

func (s *timeEntryService) Delete(ctx context.Context, id string, ifMatch model.ETag) (*dto.TimeEntryResponse, error) {
	entry, err := s.repo.TimeEntry.GetByID(ctx, model.TimePartition, id)
	if err != nil {
		return nil, s.storeError("查询打卡记录失败", id, err)
	}

	expected := entry.ETag()
	if !ifMatch.IsZero() {
		expected = ifMatch
	}

	if err := s.repo.TimeEntry.Delete(ctx, entry, expected); err != nil {
		return nil, s.storeError("删除打卡记录失败", id, err)
	}

	s.logger.Info("打卡记录已删除", zap.String("id", id))
	return toTimeEntryResponse(entry), nil
}

// ── 内部辅助方法 ──

// storeError 将存储层错误转换为业务错误；基础设施故障记录日志后原样返回
func (s *timeEntryService) storeError(msg, id string, err error) error {
	switch {
	case errors.Is(err, pkgerrors.ErrRecordNotFound):
		return ErrTimeNotFound
	case errors.Is(err, pkgerrors.ErrOptimisticLock), errors.Is(err, pkgerrors.ErrDuplicateKey):
		return ErrTimeConflict
	default:
		s.logger.Error(msg, zap.String("id", id), zap.Error(err))
		return err
	}
}

func toTimeEntryResponse(entry *model.TimeEntry) *dto.TimeEntryResponse {
	return &dto.TimeEntryResponse{
		ID:             entry.ID,
		PartitionKey:   entry.PartitionKey,
		EmployeeID:     entry.EmployeeID,
		Date:           entry.Date.UTC(),
		Type:           int(entry.Type),
		IsConsolidated: entry.IsConsolidated,
		ETag:           entry.ETag().String(),
		CreatedAt:      entry.CreatedAt.UTC(),
		UpdatedAt:      entry.UpdatedAt.UTC(),
	}
}
