package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"studentperf_backend/internals/configs"
	"studentperf_backend/internals/features/performance/model"
)

var DB *gorm.DB

func ConnectDB() {
	log.Println("🔌 Koneksi ke PostgreSQL...")

	// ✅ Gunakan URL/DSN lengkap + statement_timeout
	// Catatan: kalau pakai PgBouncer, ganti host/port ke port PgBouncer (mis. 6543) dan biarkan PreferSimpleProtocol=true
	sslmode := getenv("DB_SSLMODE", "require")
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=studentperf&options=-c statement_timeout=10000",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_NAME"),
		sslmode,
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // 👍 cocok untuk PgBouncer (transaction pooling)
	}), &gorm.Config{
		Logger: configs.NewGormLogger(),
	})
	if err != nil {
		log.Fatalf("❌ Gagal konek DB: %v", err)
	}
	DB = db
	log.Println("✅ DB connected.")
}

func TunePool() {
	sqlDB, err := DB.DB()
	if err != nil {
		log.Printf("pool tune err: %v", err)
		return
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

func Migrate() {
	if err := DB.AutoMigrate(
		&model.SubjectModel{},
		&model.StudentModel{},
		&model.AssessmentModel{},
		&model.PerformanceRecordModel{},
	); err != nil {
		log.Fatalf("❌ Gagal migrasi DB: %v", err)
	}
	log.Println("✅ Migrasi DB selesai.")
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
