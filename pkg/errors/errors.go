package errors

import "errors"

// ── 存储层哨兵错误 ──
// 未找到与冲突属于正常控制流，由 Service 层转换为业务错误；
// 其余存储故障统一包装为 ErrStoreUnavailable 向上传递。

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrRecordNotFound 记录不存在
var ErrRecordNotFound = errors.New("记录不存在")

// ErrDuplicateKey 相同 (partition, id) 的记录已存在
var ErrDuplicateKey = errors.New("记录已存在")

// ErrStoreUnavailable 存储不可用（连接、序列化等基础设施故障）
var ErrStoreUnavailable = errors.New("存储服务不可用")
