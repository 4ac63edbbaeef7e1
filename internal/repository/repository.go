package repository

import "gorm.io/gorm"

// StoreObserver 存储操作观察者（Prometheus 指标实现该接口）
type StoreObserver interface {
	ObserveStoreOp(op, outcome string)
}

type nopObserver struct{}

func (nopObserver) ObserveStoreOp(string, string) {}

// Repository 所有 Repository 的聚合入口
type Repository struct {
	TimeEntry TimeEntryRepository
}

// NewRepository 创建 Repository 聚合；obs 可为 nil
func NewRepository(db *gorm.DB, obs StoreObserver) *Repository {
	return &Repository{
		TimeEntry: NewTimeEntryRepo(db, obs),
	}
}
