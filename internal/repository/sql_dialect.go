package repository

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// dbDialectName 获取数据库方言名称，默认按 sqlite 处理。
func dbDialectName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	name := strings.ToLower(strings.TrimSpace(db.Dialector.Name()))
	if name == "" {
		return "sqlite"
	}
	return name
}

// jsonArrayContainsExpr 构建 JSON 字符串数组包含判断，兼容 sqlite 与 postgres。
// 返回的表达式带一个占位参数，参数由 jsonArrayContainsArg 生成。
func jsonArrayContainsExpr(db *gorm.DB, column string) string {
	return jsonArrayContainsExprByDialect(dbDialectName(db), column)
}

func jsonArrayContainsExprByDialect(dialect, column string) string {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "postgresql":
		return fmt.Sprintf("(%s::jsonb @> ?::jsonb)", column)
	default:
		return fmt.Sprintf("EXISTS (SELECT 1 FROM json_each(%s) WHERE json_each.value = ?)", column)
	}
}

// jsonArrayContainsArg 生成与 jsonArrayContainsExpr 对应的参数。
func jsonArrayContainsArg(db *gorm.DB, value string) interface{} {
	return jsonArrayContainsArgByDialect(dbDialectName(db), value)
}

func jsonArrayContainsArgByDialect(dialect, value string) interface{} {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "postgresql":
		return fmt.Sprintf("[%q]", value)
	default:
		return value
	}
}
