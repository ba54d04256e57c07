package errors

import "errors"

// ErrReservationOverlap 数据库排他约束拒绝了重叠的预约
// 由仓储层从 PostgreSQL 23P01 错误转换而来
var ErrReservationOverlap = errors.New("同一教室该时段已存在预约")
