package db

import (
	"Gin_postgres_redis_booking_system/models"
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
	if err := db.AutoMigrate(&models.User{}, &models.Item{}, &models.Reservation{}); err != nil {
		return err
	}

	// 容量下限由 DB 兜底
	if err := db.Exec(fmt.Sprintf(`
	  ALTER TABLE %s DROP CONSTRAINT IF EXISTS %s_capacity_min;
	`, models.ItemTable, models.ItemTable)).Error; err != nil {
		return err
	}
	if err := db.Exec(fmt.Sprintf(`
	  ALTER TABLE %s ADD CONSTRAINT %s_capacity_min CHECK (capacity >= 1);
	`, models.ItemTable, models.ItemTable)).Error; err != nil {
		return err
	}

	// 数量下限
	if err := db.Exec(fmt.Sprintf(`
	  ALTER TABLE %s DROP CONSTRAINT IF EXISTS %s_quantity_min;
	`, models.ReservationTable, models.ReservationTable)).Error; err != nil {
		return err
	}
	if err := db.Exec(fmt.Sprintf(`
	  ALTER TABLE %s ADD CONSTRAINT %s_quantity_min CHECK (quantity >= 1);
	`, models.ReservationTable, models.ReservationTable)).Error; err != nil {
		return err
	}

	// 准入检查按 (item_id, reservation_date) 求和，必须走索引
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_item_date
	  ON %s (item_id, reservation_date);
	`, models.ReservationTable, models.ReservationTable)).Error; err != nil {
		return err
	}

	return nil
}
