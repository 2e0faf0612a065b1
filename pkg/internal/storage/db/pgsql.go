//go:build !no_postgres

package db

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yeisme/trackvault/pkg/configs"
)

func init() {
	for _, t := range []configs.DBType{configs.PostgreSQL, configs.Postgres, configs.Pg} {
		RegisterDialectorFactory(t, pgDialector)
	}
}

func pgDialector(dsn string) gorm.Dialector {
	return postgres.New(postgres.Config{DSN: dsn})
}
