package main

import (
	"log"
	"os"

	"openbook-be/internal/model"
	"openbook-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	// 3. Object table backing STORAGE_DRIVER=postgres
	log.Println("Running AutoMigrate for stored_objects...")
	if err := db.AutoMigrate(&model.StoredObject{}); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 4. Prefix listing uses LIKE 'prefix%'
	indexSQL := `CREATE INDEX IF NOT EXISTS idx_stored_objects_key_pattern ON stored_objects (key text_pattern_ops);`
	if err := db.Exec(indexSQL).Error; err != nil {
		log.Printf("Warn: Failed to create key pattern index: %v", err)
	}

	log.Println("✅ Success: Database migration completed.")
}
