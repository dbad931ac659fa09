package main

import (
	"log"

	"github.com/seowliyuan/nutriadmin/config"
	"github.com/seowliyuan/nutriadmin/routes"
)

func main() {
	cfg := config.Load()

	db, err := config.OpenDB(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	r := routes.SetupRouter(cfg, db)
	log.Printf("admin API listening on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
