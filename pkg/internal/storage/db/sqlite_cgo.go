//go:build !no_sqlite && cgo

package db

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeisme/trackvault/pkg/configs"
)

func init() {
	RegisterDialectorFactory(configs.SQLite, sqliteDialector)
}

// sqliteDialector mattn/go-sqlite3 驱动，锁等待通过 _busy_timeout 设置.
func sqliteDialector(dsn string) gorm.Dialector {
	return sqlite.Open(withSQLiteParam(dsn, "_busy_timeout=5000"))
}
