package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dibyendu2004/BrightPath/config"
	"github.com/dibyendu2004/BrightPath/database"
	"github.com/dibyendu2004/BrightPath/model"
	"github.com/dibyendu2004/BrightPath/utils/auth"
	"github.com/dibyendu2004/BrightPath/utils/logger"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "seed a throwaway in-memory database instead of DB_*")
	flag.Parse()

	if err := config.LoadENV(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env: %v\n", err)
	}

	cfg, err := config.Get()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LOG_MODE)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	var store *database.GORMStore
	if *dryRun {
		store, err = database.OpenInMemory(log)
	} else {
		store, err = database.StartGORM(cfg, log)
		if err == nil {
			err = store.Init()
		}
	}
	if err != nil {
		log.Fatal("Failed to open database", "error", err)
	}
	defer store.Close()

	separator := strings.Repeat("=", 60)
	fmt.Println(separator)
	fmt.Println("BrightPath - Database Seeding")
	fmt.Println(separator)

	if err := database.RunSeeds(store.GetDB(), log); err != nil {
		log.Fatal("Seeding failed", "error", err)
	}

	fmt.Println()
	fmt.Printf("Educator id: %s\n", database.DemoEducatorID)
	fmt.Printf("Student id:  %s\n", database.DemoStudentID)

	if cfg.AUTH_MODE != config.AuthModeJWT {
		fmt.Println("AUTH_MODE=header: send the id above in the userid header.")
		return
	}

	jwtManager, err := auth.NewJWTManager(auth.JWTConfig{Secret: cfg.JWT_SECRET, Issuer: cfg.JWT_ISSUER})
	if err != nil {
		log.Fatal("Cannot issue development tokens", "error", err)
	}
	for _, u := range []struct{ id, role string }{
		{database.DemoEducatorID, model.RoleEducator},
		{database.DemoStudentID, model.RoleStudent},
	} {
		token, _, err := jwtManager.GenerateAccessToken(u.id, u.role)
		if err != nil {
			log.Fatal("Cannot issue development token", "user_id", u.id, "error", err)
		}
		fmt.Printf("\n%s token:\n%s\n", u.role, token)
	}
}
