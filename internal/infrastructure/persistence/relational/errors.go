package relational

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// isDuplicateError 唯一索引冲突
// MySQL:      Error 1062: Duplicate entry 'xxx' for key 'yyy'
// PostgreSQL: SQLSTATE 23505
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "23505") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// violatedIndex 错误信息里是否带有该索引名或列名
func violatedIndex(err error, index string) bool {
	return err != nil && strings.Contains(err.Error(), index)
}
