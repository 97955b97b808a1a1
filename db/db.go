package db

import (
	"Gin_postgres_redis_inventory_tool/models"
	"fmt"
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	err = Migrate(DB)
	if err != nil {
		log.Fatal("Failed to migrate models: ", err)
	}
	log.Println("Database connected")
	return DB
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{}, &models.Invite{}, &models.Item{},
		&models.Request{}, &models.UsageLog{}, &models.AdjustmentLog{},
	); err != nil {
		return err
	}

	// 库存永不为负：条件 UPDATE 本身保证，这里再加一道数据库约束兜底
	if err := db.Exec(fmt.Sprintf(`
	  ALTER TABLE %s DROP CONSTRAINT IF EXISTS %s_quantity_nonneg;
	`, models.ItemTable, models.ItemTable)).Error; err != nil {
		return err
	}
	if err := db.Exec(fmt.Sprintf(`
	  ALTER TABLE %s ADD CONSTRAINT %s_quantity_nonneg CHECK (quantity >= 0);
	`, models.ItemTable, models.ItemTable)).Error; err != nil {
		return err
	}

	// 待审批列表查询更快
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_pending_by_date
	  ON %s (requested_at DESC)
	  WHERE status = 'pending';
	`, models.RequestTable, models.RequestTable)).Error; err != nil {
		return err
	}

	// 预测按 item + 月份聚合
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_item_used_desc
	  ON %s (item_id, used_at DESC);
	`, models.UsageLogTable, models.UsageLogTable)).Error; err != nil {
		return err
	}

	return nil
}
