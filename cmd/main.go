package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"referral-server/internal/config"
	"referral-server/internal/handler"
	"referral-server/internal/model"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	migrate := flag.Bool("migrate", false, "run database migrations and exit")
	initAdmin := flag.Bool("init-admin", false, "seed the default roles and administrator account, then exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := model.InitDB(&cfg.Database); err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	log.Println("database connected")

	if err := model.AutoMigrate(); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	if *migrate {
		log.Println("migration complete")
		os.Exit(0)
	}

	if *initAdmin {
		seedDefaults()
		os.Exit(0)
	}

	r := gin.New()
	handler.SetupRouter(r)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("server listening on http://%s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// seedDefaults creates the built-in roles, a first organization and the
// administrator account inside one transaction.
func seedDefaults() {
	log.Println("seeding default roles and administrator account...")

	adminEmail := "admin@example.com"
	adminPassword := "admin123"

	var existing model.User
	if err := model.DB.Where("email = ?", adminEmail).First(&existing).Error; err == nil {
		log.Println("administrator account already exists")
		return
	}

	tx := model.DB.Begin()

	for _, name := range model.DefaultRoles {
		var role model.Role
		if err := tx.Where("name = ?", name).First(&role).Error; err != nil {
			role = model.Role{Name: name, CreatedBy: "system"}
			if err := tx.Create(&role).Error; err != nil {
				tx.Rollback()
				log.Fatalf("failed to seed role %q: %v", name, err)
			}
		}
	}

	org := model.Organization{
		Name:        "Head Office",
		Description: "Default organization created at setup",
		CreatedBy:   "system",
	}
	if err := tx.Create(&org).Error; err != nil {
		tx.Rollback()
		log.Fatalf("failed to seed organization: %v", err)
	}

	admin := model.User{
		Name:         "Administrator",
		Email:        adminEmail,
		Role:         model.RoleAdministrator,
		Organization: org.Name,
		Status:       model.UserStatusActive,
		CreatedBy:    "system",
	}
	if err := admin.SetPassword(adminPassword); err != nil {
		tx.Rollback()
		log.Fatalf("failed to hash administrator password: %v", err)
	}
	if err := tx.Create(&admin).Error; err != nil {
		tx.Rollback()
		log.Fatalf("failed to seed administrator: %v", err)
	}

	tx.Commit()

	log.Println("administrator account created")
	log.Printf("email: %s", adminEmail)
	log.Printf("password: %s", adminPassword)
	log.Println("change the default password after the first login")
}
