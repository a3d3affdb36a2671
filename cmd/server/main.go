package main

import (
	"fmt"
	"log"
	"net/http"

	handler "couple-space-backend/api"
	"couple-space-backend/pkg/config"
	"couple-space-backend/pkg/database"
)

func main() {
	cfg := config.GetCached()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Configuration error: %v", err)
	}

	// 预热数据库连接，配置问题尽早暴露
	db := database.GetDatabase(database.DatabaseConfig{
		UseLocalDB:  cfg.UseLocalDB,
		PostgresDSN: cfg.PostgresDSN,
		SupabaseURL: cfg.SupabaseURL,
		SupabaseKey: cfg.SupabaseKey,
		Debug:       cfg.Debug,
	})

	router := handler.NewRouter(cfg, db)

	addr := ":" + cfg.Port
	fmt.Printf("🚀 Couple Space API listening on %s (%s)\n", addr, cfg.Environment)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}
