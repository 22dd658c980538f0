package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"qrdine-billing/internal/config"
	"qrdine-billing/internal/domain/model"
	"qrdine-billing/internal/domain/ports/repository"
	pg "qrdine-billing/internal/infra/db/postgres"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, pg.Schema); err != nil {
		log.Fatalf("apply schema: %v", err)
	}
	fmt.Println("schema applied")

	planRepo := pg.NewPlanRepo(pool)

	// If plans already exist, do nothing
	plans, err := planRepo.ListAll(ctx, repository.NoTX)
	if err != nil {
		log.Fatalf("list plans: %v", err)
	}
	if len(plans) > 0 {
		fmt.Printf("%d plans already present. No changes.\n", len(plans))
		for _, p := range plans {
			fmt.Printf("  - %s (months=%d, price=%.2f INR)\n", p.Name, p.DurationMonths, p.PriceINR)
		}
		return
	}

	seedPlans := []struct {
		ID     string
		Name   string
		Months int
		Price  float64
	}{
		{"starter-monthly", "Starter", 1, 299},
		{"pro-monthly", "Pro", 1, 699},
		{"pro-yearly", "Pro Annual", 12, 6999},
	}
	for _, s := range seedPlans {
		p, err := model.NewPlan(s.ID, s.Name, s.Months, s.Price)
		if err != nil {
			log.Fatalf("plan %q: %v", s.Name, err)
		}
		if err := planRepo.Save(ctx, repository.NoTX, p); err != nil {
			log.Fatalf("save plan %q: %v", s.Name, err)
		}
		fmt.Printf("seeded plan: %s (months=%d, price=%.2f INR)\n", p.Name, p.DurationMonths, p.PriceINR)
	}

	couponRepo := pg.NewCouponRepo(pool)
	now := time.Now()
	launch := &model.Coupon{
		Code:      "LAUNCH50",
		Type:      model.CouponTypeFlat,
		Value:     50,
		IsActive:  true,
		StartDate: now,
		EndDate:   now.AddDate(0, 3, 0),
		MaxUsage:  500,
	}
	if err := couponRepo.Save(ctx, repository.NoTX, launch); err != nil {
		log.Fatalf("save coupon: %v", err)
	}
	fmt.Printf("seeded coupon: %s\n", launch.Code)

	if _, err := pool.Exec(ctx,
		`INSERT INTO billing_config (id, setup_fee) VALUES (1, $1) ON CONFLICT (id) DO NOTHING;`,
		cfg.Payment.SetupFee,
	); err != nil {
		log.Fatalf("billing config: %v", err)
	}

	fmt.Println("✅ Seeding complete.")
}
