// Seeds a local database with a demo company, user and promos.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"promo-platform/internal/config"
	"promo-platform/internal/domain/model"
	"promo-platform/internal/domain/ports/repository"
	pg "promo-platform/internal/infra/db/postgres"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 2)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	companies := pg.NewPostgresCompanyRepo(pool)
	users := pg.NewPostgresUserRepo(pool)
	promos := pg.NewPostgresPromoRepo(pool)

	company, err := model.NewCompany("Demo Coffee", "demo@coffee.example", "Dem0!pass1")
	if err != nil {
		log.Fatalf("company: %v", err)
	}
	if err := companies.Save(ctx, repository.NoTX, company); err != nil {
		log.Fatalf("save company: %v", err)
	}

	user, err := model.NewUser("alice@example.com", "Al1ce!pass", "Alice")
	if err != nil {
		log.Fatalf("user: %v", err)
	}
	user.Age = 25
	user.Country = "DE"
	user.Interests = []string{"coffee"}
	if err := users.Save(ctx, repository.NoTX, user); err != nil {
		log.Fatalf("save user: %v", err)
	}

	common, err := model.NewPromo(company.ID, model.PromoModeCommon, "Free espresso shot with any order", &model.Promo{
		CommonCode: "ESPRESSO",
		MaxCount:   100,
		Targeting:  &model.Targeting{Countries: []string{"DE"}},
	})
	if err != nil {
		log.Fatalf("common promo: %v", err)
	}
	if err := promos.Save(ctx, repository.NoTX, common); err != nil {
		log.Fatalf("save common promo: %v", err)
	}

	unique, err := model.NewPromo(company.ID, model.PromoModeUnique, "One-time vouchers for loyal customers", &model.Promo{
		CodePool: []string{"VOUCHER-1", "VOUCHER-2", "VOUCHER-3"},
	})
	if err != nil {
		log.Fatalf("unique promo: %v", err)
	}
	if err := promos.Save(ctx, repository.NoTX, unique); err != nil {
		log.Fatalf("save unique promo: %v", err)
	}

	log.Printf("seeded company=%s user=%s common_promo=%s unique_promo=%s", company.ID, user.ID, common.ID, unique.ID)
}
