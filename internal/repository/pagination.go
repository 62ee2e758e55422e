package repository

import "gorm.io/gorm"

// maxPageSize 后台列表单页上限
const maxPageSize = 200

// applyPagination 应用分页参数，pageSize 为 0 时返回全部
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	if page < 1 {
		page = 1
	}
	return query.Limit(pageSize).Offset((page - 1) * pageSize)
}
