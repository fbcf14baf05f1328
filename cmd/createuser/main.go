// Command createuser adds an account from the command line. It is the only
// way to create staff accounts.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"storefront/internal/config"
	mmysql "storefront/internal/infra/mysql"
	mysqlrepo "storefront/internal/repository/mysql"
	"storefront/internal/services"

	log "github.com/sirupsen/logrus"
)

func main() {
	username := flag.String("username", "", "account username")
	password := flag.String("password", "", "account password (defaults to $STOREFRONT_PASSWORD)")
	staff := flag.Bool("staff", false, "grant staff permissions")
	flag.Parse()

	if *password == "" {
		*password = os.Getenv("STOREFRONT_PASSWORD")
	}
	if *username == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	config.SetupLogging(cfg)

	db, err := mmysql.NewMySQL(cfg.MySQL)
	if err != nil {
		log.Fatalf("db: connect: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	auth := services.NewAuthService(mysqlrepo.NewUserRepository(db), cfg.JWTSecret, cfg.TokenTTL)
	u, err := auth.Register(ctx, *username, *password, *staff)
	if err != nil {
		log.Fatalf("create user: %v", err)
	}
	log.WithFields(log.Fields{"user_id": u.ID, "staff": u.IsStaff}).Infof("Created user %s", u.Username)
}
