//go:build !no_sqlite && !cgo

package db

import (
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/yeisme/trackvault/pkg/configs"
)

func init() {
	RegisterDialectorFactory(configs.SQLite, sqliteDialector)
}

// sqliteDialector 纯 Go 驱动（modernc），锁等待通过 _pragma 设置.
func sqliteDialector(dsn string) gorm.Dialector {
	return sqlite.Open(withSQLiteParam(dsn, "_pragma=busy_timeout(5000)"))
}
