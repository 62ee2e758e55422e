package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// isUniqueViolation 判断是否唯一索引冲突。
// sqlite 报 "UNIQUE constraint failed"，postgres 报 SQLSTATE 23505。
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "sqlstate 23505") ||
		strings.Contains(msg, "duplicate key")
}
