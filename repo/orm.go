package repo

import (
	"context"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"outreach/config"
)

func newOrm(_ context.Context, mysqlCfg config.MySQL) (*gorm.DB, error) {
	return gorm.Open(mysql.Open(mysqlCfg.ToDSN()), &gorm.Config{})
}

func closeOrm(orm *gorm.DB) error {
	if orm != nil {
		sqlDB, err := orm.DB()
		if err != nil {
			return err
		}

		err = sqlDB.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func getDb(ctx context.Context, orm *gorm.DB) *gorm.DB {
	return orm.WithContext(ctx)
}

type Pagination struct {
	Limit *uint32 `json:"limit,omitempty" schema:"limit"`
	Page  *uint32 `json:"page,omitempty" schema:"page"`
}

func (p *Pagination) GetLimit() uint32 {
	if p != nil && p.Limit != nil {
		return *p.Limit
	}
	return 0
}

func (p *Pagination) GetPage() uint32 {
	if p != nil && p.Page != nil {
		return *p.Page
	}
	return 0
}
