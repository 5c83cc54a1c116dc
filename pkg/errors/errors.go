package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
// 由各仓储的带版本更新返回，两个标签页同时编辑同一条记录时后提交方收到此错误
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")
