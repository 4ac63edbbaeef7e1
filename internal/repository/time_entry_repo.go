package repository

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"time-tracker/internal/model"
	pkgerrors "time-tracker/pkg/errors"
	"time-tracker/pkg/metrics"
)

// TimeEntryRepository 打卡记录存储接口
//
// 未找到（ErrRecordNotFound）与令牌冲突（ErrOptimisticLock）是预期结果；
// 其余失败一律包装为 ErrStoreUnavailable。
type TimeEntryRepository interface {
	// Insert 插入新记录并将 Version 置为 1；(partition, id) 已存在时返回 ErrDuplicateKey
	Insert(ctx context.Context, entry *model.TimeEntry) error
	GetByID(ctx context.Context, partition, id string) (*model.TimeEntry, error)
	// ScanAll 按 date、id 顺序惰性遍历分区；partition 为空时遍历全部分区。
	// 每次 range 重新打开游标；遍历期间不要在同一连接上发起其他查询。
	ScanAll(ctx context.Context, partition string) iter.Seq2[model.TimeEntry, error]
	// Replace 条件替换可变字段，成功后 entry.Version 为新版本
	Replace(ctx context.Context, entry *model.TimeEntry, expected model.ETag) error
	Delete(ctx context.Context, entry *model.TimeEntry, expected model.ETag) error
}

// errMissingETag 调用方未显式选择严格令牌或通配符
var errMissingETag = errors.New("条件写入缺少并发令牌")

type timeEntryRepo struct {
	db  *gorm.DB
	obs StoreObserver
}

// NewTimeEntryRepo 创建 TimeEntryRepository 实例
func NewTimeEntryRepo(db *gorm.DB, obs StoreObserver) TimeEntryRepository {
	if obs == nil {
		obs = nopObserver{}
	}
	return &timeEntryRepo{db: db, obs: obs}
}

func (r *timeEntryRepo) Insert(ctx context.Context, entry *model.TimeEntry) error {
	entry.Version = 1
	err := r.db.WithContext(ctx).Create(entry).Error
	switch {
	case err == nil:
		r.obs.ObserveStoreOp("insert", metrics.OutcomeOK)
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		r.obs.ObserveStoreOp("insert", metrics.OutcomeConflict)
		return pkgerrors.ErrDuplicateKey
	default:
		r.obs.ObserveStoreOp("insert", metrics.OutcomeUnavailable)
		return storeError(err)
	}
}

func (r *timeEntryRepo) GetByID(ctx context.Context, partition, id string) (*model.TimeEntry, error) {
	var entry model.TimeEntry
	err := r.db.WithContext(ctx).
		Where("partition_key = ? AND row_key = ?", partition, id).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.obs.ObserveStoreOp("get", metrics.OutcomeNotFound)
			return nil, pkgerrors.ErrRecordNotFound
		}
		r.obs.ObserveStoreOp("get", metrics.OutcomeUnavailable)
		return nil, storeError(err)
	}
	r.obs.ObserveStoreOp("get", metrics.OutcomeOK)
	return &entry, nil
}

func (r *timeEntryRepo) ScanAll(ctx context.Context, partition string) iter.Seq2[model.TimeEntry, error] {
	return func(yield func(model.TimeEntry, error) bool) {
		db := r.db.WithContext(ctx).Model(&model.TimeEntry{})
		if partition != "" {
			db = db.Where("partition_key = ?", partition)
		}
		rows, err := db.Order(clause.OrderBy{Columns: []clause.OrderByColumn{
			{Column: clause.Column{Name: "date"}},
			{Column: clause.Column{Name: "row_key"}},
		}}).Rows()
		if err != nil {
			r.obs.ObserveStoreOp("scan", metrics.OutcomeUnavailable)
			yield(model.TimeEntry{}, storeError(err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var entry model.TimeEntry
			if err := r.db.ScanRows(rows, &entry); err != nil {
				r.obs.ObserveStoreOp("scan", metrics.OutcomeUnavailable)
				yield(model.TimeEntry{}, storeError(err))
				return
			}
			if !yield(entry, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			r.obs.ObserveStoreOp("scan", metrics.OutcomeUnavailable)
			yield(model.TimeEntry{}, storeError(err))
			return
		}
		r.obs.ObserveStoreOp("scan", metrics.OutcomeOK)
	}
}

func (r *timeEntryRepo) Replace(ctx context.Context, entry *model.TimeEntry, expected model.ETag) error {
	if expected.IsZero() {
		return errMissingETag
	}

	db := r.keyed(ctx, entry)
	now := r.db.NowFunc()
	updates := map[string]interface{}{
		"employee_id":     entry.EmployeeID,
		"date":            entry.Date,
		"type":            entry.Type,
		"is_consolidated": entry.IsConsolidated,
		"updated_at":      now,
	}
	if expected.IsAny() {
		updates["version"] = gorm.Expr("version + 1")
	} else {
		db = db.Where("version = ?", expected.Version())
		updates["version"] = expected.Version() + 1
	}

	result := db.Updates(updates)
	if result.Error != nil {
		r.obs.ObserveStoreOp("replace", metrics.OutcomeUnavailable)
		return storeError(result.Error)
	}
	if result.RowsAffected == 0 {
		return r.missOrConflict(ctx, "replace", entry)
	}

	if expected.IsAny() {
		// 通配写入不知道写入前的版本，回读一次
		var current model.TimeEntry
		if err := r.keyed(ctx, entry).Select("version", "updated_at").First(&current).Error; err != nil {
			r.obs.ObserveStoreOp("replace", metrics.OutcomeUnavailable)
			return storeError(err)
		}
		entry.Version = current.Version
		entry.UpdatedAt = current.UpdatedAt
	} else {
		entry.Version = expected.Version() + 1
		entry.UpdatedAt = now
	}

	r.obs.ObserveStoreOp("replace", metrics.OutcomeOK)
	return nil
}

func (r *timeEntryRepo) Delete(ctx context.Context, entry *model.TimeEntry, expected model.ETag) error {
	if expected.IsZero() {
		return errMissingETag
	}

	db := r.keyed(ctx, entry)
	if !expected.IsAny() {
		db = db.Where("version = ?", expected.Version())
	}

	result := db.Delete(&model.TimeEntry{})
	if result.Error != nil {
		r.obs.ObserveStoreOp("delete", metrics.OutcomeUnavailable)
		return storeError(result.Error)
	}
	if result.RowsAffected == 0 {
		return r.missOrConflict(ctx, "delete", entry)
	}

	r.obs.ObserveStoreOp("delete", metrics.OutcomeOK)
	return nil
}

// ── 内部辅助方法 ──

// keyed 返回按两级主键定位单行的查询
func (r *timeEntryRepo) keyed(ctx context.Context, entry *model.TimeEntry) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&model.TimeEntry{}).
		Where("partition_key = ? AND row_key = ?", entry.PartitionKey, entry.ID)
}

// missOrConflict 条件写入未命中时区分“记录不存在”与“版本不匹配”
func (r *timeEntryRepo) missOrConflict(ctx context.Context, op string, entry *model.TimeEntry) error {
	var n int64
	if err := r.keyed(ctx, entry).Count(&n).Error; err != nil {
		r.obs.ObserveStoreOp(op, metrics.OutcomeUnavailable)
		return storeError(err)
	}
	if n == 0 {
		r.obs.ObserveStoreOp(op, metrics.OutcomeNotFound)
		return pkgerrors.ErrRecordNotFound
	}
	r.obs.ObserveStoreOp(op, metrics.OutcomeConflict)
	return pkgerrors.ErrOptimisticLock
}

// storeError 将底层错误包装为 ErrStoreUnavailable，保留原始错误链（含 context.Canceled）
func storeError(err error) error {
	return fmt.Errorf("%w: %w", pkgerrors.ErrStoreUnavailable, err)
}
