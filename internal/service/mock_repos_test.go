package service

import (
	"context"
	"iter"
	"sort"
	"sync"
	"time"

	"time-tracker/internal/model"
	pkgerrors "time-tracker/pkg/errors"
)

// ── Mock TimeEntryRepository ──
// 内存实现，条件写入语义与真实存储一致

type mockTimeEntryRepo struct {
	mu      sync.Mutex
	entries map[string]model.TimeEntry
	now     time.Time

	// err 非空时所有操作返回该错误（模拟存储故障）
	err error
	// afterGet 在 GetByID 读取完成、返回之前调用（用于构造并发读写交错）
	afterGet func()
}

func newMockTimeEntryRepo() *mockTimeEntryRepo {
	return &mockTimeEntryRepo{
		entries: make(map[string]model.TimeEntry),
		now:     time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC),
	}
}

func entryKey(partition, id string) string { return partition + "/" + id }

func (m *mockTimeEntryRepo) Insert(_ context.Context, entry *model.TimeEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	key := entryKey(entry.PartitionKey, entry.ID)
	if _, ok := m.entries[key]; ok {
		return pkgerrors.ErrDuplicateKey
	}
	entry.Version = 1
	entry.CreatedAt = m.now
	entry.UpdatedAt = m.now
	m.entries[key] = *entry
	return nil
}

func (m *mockTimeEntryRepo) GetByID(_ context.Context, partition, id string) (*model.TimeEntry, error) {
	m.mu.Lock()
	if m.err != nil {
		m.mu.Unlock()
		return nil, m.err
	}
	e, ok := m.entries[entryKey(partition, id)]
	m.mu.Unlock()

	if !ok {
		return nil, pkgerrors.ErrRecordNotFound
	}
	if m.afterGet != nil {
		m.afterGet()
	}
	return &e, nil
}

func (m *mockTimeEntryRepo) ScanAll(_ context.Context, partition string) iter.Seq2[model.TimeEntry, error] {
	return func(yield func(model.TimeEntry, error) bool) {
		m.mu.Lock()
		if m.err != nil {
			err := m.err
			m.mu.Unlock()
			yield(model.TimeEntry{}, err)
			return
		}
		var list []model.TimeEntry
		for _, e := range m.entries {
			if partition == "" || e.PartitionKey == partition {
				list = append(list, e)
			}
		}
		m.mu.Unlock()

		sort.Slice(list, func(i, j int) bool {
			if !list[i].Date.Equal(list[j].Date) {
				return list[i].Date.Before(list[j].Date)
			}
			return list[i].ID < list[j].ID
		})
		for _, e := range list {
			if !yield(e, nil) {
				return
			}
		}
	}
}

func (m *mockTimeEntryRepo) Replace(_ context.Context, entry *model.TimeEntry, expected model.ETag) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	key := entryKey(entry.PartitionKey, entry.ID)
	stored, ok := m.entries[key]
	if !ok {
		return pkgerrors.ErrRecordNotFound
	}
	if !expected.Matches(stored.Version) {
		return pkgerrors.ErrOptimisticLock
	}
	entry.Version = stored.Version + 1
	entry.UpdatedAt = m.now.Add(time.Minute)
	m.entries[key] = *entry
	return nil
}

func (m *mockTimeEntryRepo) Delete(_ context.Context, entry *model.TimeEntry, expected model.ETag) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	key := entryKey(entry.PartitionKey, entry.ID)
	stored, ok := m.entries[key]
	if !ok {
		return pkgerrors.ErrRecordNotFound
	}
	if !expected.Matches(stored.Version) {
		return pkgerrors.ErrOptimisticLock
	}
	delete(m.entries, key)
	return nil
}

// seed 直接写入一条记录（绕过 Insert 的版本初始化）
func (m *mockTimeEntryRepo) seed(e model.TimeEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.PartitionKey == "" {
		e.PartitionKey = model.TimePartition
	}
	if e.Version == 0 {
		e.Version = 1
	}
	m.entries[entryKey(e.PartitionKey, e.ID)] = e
}

func (m *mockTimeEntryRepo) stored(id string) (model.TimeEntry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[entryKey(model.TimePartition, id)]
	return e, ok
}
