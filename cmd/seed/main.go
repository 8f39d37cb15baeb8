package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"ppob-settlement/internal/config"
	"ppob-settlement/internal/domain/model"
	pg "ppob-settlement/internal/infra/db/postgres"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	repo := pg.NewProductRepo(pool)

	// A small starter catalog for testing the order flow end to end.
	seed := []model.Product{
		{Code: "PLN20", Name: "PLN Token 20k", Type: model.ProductTypePrepaid, BasePrice: 20_000, TierTwoPrice: 20_500, AgentPrice: 20_200, RewardPoints: 2},
		{Code: "PLN50", Name: "PLN Token 50k", Type: model.ProductTypePrepaid, BasePrice: 50_000, TierTwoPrice: 50_800, AgentPrice: 50_400, RewardPoints: 5},
		{Code: "PULSA10", Name: "Pulsa 10k All Operator", Type: model.ProductTypePrepaid, BasePrice: 10_000, TierTwoPrice: 10_600, AgentPrice: 10_300, RewardPoints: 1},
		{Code: "BPJS", Name: "BPJS Kesehatan", Type: model.ProductTypePostpaid, BasePrice: 2_500},
	}

	for i := range seed {
		if _, err := repo.FindByCode(ctx, seed[i].Code); err == nil {
			fmt.Printf("  - %s already present, skipped\n", seed[i].Code)
			continue
		}
		if err := repo.Save(ctx, &seed[i]); err != nil {
			log.Fatalf("save product %s: %v", seed[i].Code, err)
		}
		fmt.Printf("  + %s (%s) base=%d\n", seed[i].Code, seed[i].Name, seed[i].BasePrice)
	}
	fmt.Println("catalog seeded.")
}
