//go:build !no_mysql

package db

import (
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/yeisme/trackvault/pkg/configs"
)

func init() {
	for _, t := range []configs.DBType{configs.MySQL, configs.MariaDB} {
		RegisterDialectorFactory(t, mysqlDialector)
	}
}

// mysqlDialector MariaDB 与 MySQL 共用驱动，字符串列默认 varchar(256).
func mysqlDialector(dsn string) gorm.Dialector {
	return mysql.New(mysql.Config{
		DSN:                       dsn,
		DefaultStringSize:         256,
		SkipInitializeWithVersion: false,
	})
}
