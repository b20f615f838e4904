package postgres

import (
	"github.com/jcall/wanderstay/internal/domain"
	"github.com/jcall/wanderstay/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Appended to the DSN so a down database fails startup quickly instead of
// hanging on the driver's no-timeout default.
const connectTimeoutParam = "connect_timeout=10"

func NewConnection(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(withConnectTimeout(databaseURL)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&domain.User{},
		&domain.Listing{},
		&domain.Review{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}

func withConnectTimeout(databaseURL string) string {
	if len(databaseURL) == 0 {
		return databaseURL
	}
	sep := "?"
	for i := 0; i < len(databaseURL); i++ {
		if databaseURL[i] == '?' {
			sep = "&"
			break
		}
	}
	return databaseURL + sep + connectTimeoutParam
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		User:    NewUserRepository(db),
		Listing: NewListingRepository(db),
		Review:  NewReviewRepository(db),
	}
}
