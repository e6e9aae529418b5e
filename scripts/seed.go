//go:build ignore

package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/veritum/veritum-pro/internal/auth"
	"github.com/veritum/veritum-pro/internal/database"
	"github.com/veritum/veritum-pro/internal/database/models"
	"github.com/veritum/veritum-pro/pkg/config"
	"github.com/veritum/veritum-pro/pkg/util"
	"gorm.io/gorm"
)

type suiteSeed struct {
	key      string
	name     models.LocalizedText
	icon     string
	order    int
	features []string
}

var suiteSeeds = []suiteSeed{
	{
		key:      "nexus",
		name:     models.LocalizedText{"pt-BR": "Nexus", "en-US": "Nexus"},
		icon:     "layout-dashboard",
		order:    1,
		features: []string{"lawsuits", "clients", "deadlines"},
	},
	{
		key:      "scriptor",
		name:     models.LocalizedText{"pt-BR": "Scriptor", "en-US": "Scriptor"},
		icon:     "file-text",
		order:    2,
		features: []string{"drafting", "translation", "templates"},
	},
	{
		key:      "aurum",
		name:     models.LocalizedText{"pt-BR": "Aurum", "en-US": "Aurum"},
		icon:     "wallet",
		order:    3,
		features: []string{"billing", "invoices"},
	},
	{
		key:      "lumen",
		name:     models.LocalizedText{"pt-BR": "Lumen", "en-US": "Lumen"},
		icon:     "bar-chart",
		order:    4,
		features: []string{"prediction", "sentiment"},
	},
	{
		key:      "atrium",
		name:     models.LocalizedText{"pt-BR": "Atrium", "en-US": "Atrium"},
		icon:     "users",
		order:    5,
		features: []string{"portal", "messages"},
	},
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	featuresByKey, err := seedSuites(db)
	if err != nil {
		log.Fatalf("failed to seed suites: %v", err)
	}

	if err := seedPlans(db, featuresByKey); err != nil {
		log.Fatalf("failed to seed plans: %v", err)
	}

	seedOwner(db, cfg)
}

func seedSuites(db *gorm.DB) (map[string]models.Feature, error) {
	features := make(map[string]models.Feature)

	for _, seed := range suiteSeeds {
		var suite models.Suite
		err := db.Where("key = ?", seed.key).First(&suite).Error
		if err == gorm.ErrRecordNotFound {
			suite = models.Suite{
				Key:          seed.key,
				Name:         seed.name,
				Icon:         seed.icon,
				IsActive:     true,
				DisplayOrder: seed.order,
			}
			if err := db.Create(&suite).Error; err != nil {
				return nil, err
			}
			fmt.Printf("Created suite %s\n", seed.key)
		} else if err != nil {
			return nil, err
		}

		for _, featureKey := range seed.features {
			var feature models.Feature
			err := db.Where("suite_id = ? AND key = ?", suite.ID, featureKey).First(&feature).Error
			if err == gorm.ErrRecordNotFound {
				feature = models.Feature{
					SuiteID: suite.ID,
					Key:     featureKey,
					Name:    featureKey,
				}
				if err := db.Create(&feature).Error; err != nil {
					return nil, err
				}
			} else if err != nil {
				return nil, err
			}
			features[seed.key+"."+featureKey] = feature
		}
	}

	return features, nil
}

func seedPlans(db *gorm.DB, features map[string]models.Feature) error {
	plans := []struct {
		name     string
		monthly  float64
		yearly   float64
		order    int
		featured bool
		grants   []string
	}{
		{
			name:    "SOLO",
			monthly: 149, yearly: 1490,
			order:  1,
			grants: []string{"nexus.lawsuits", "nexus.clients", "scriptor.drafting"},
		},
		{
			name:    "GROWTH",
			monthly: 399, yearly: 3990,
			order: 2, featured: true,
			grants: []string{
				"nexus.lawsuits", "nexus.clients", "nexus.deadlines",
				"scriptor.drafting", "scriptor.translation", "scriptor.templates",
				"aurum.billing", "aurum.invoices",
				"lumen.prediction", "lumen.sentiment",
				"atrium.portal", "atrium.messages",
			},
		},
	}

	for _, p := range plans {
		var plan models.Plan
		err := db.Where("name = ?", p.name).First(&plan).Error
		if err == gorm.ErrRecordNotFound {
			plan = models.Plan{
				Name:         p.name,
				PriceMonthly: p.monthly,
				PriceYearly:  p.yearly,
				IsActive:     true,
				DisplayOrder: p.order,
				Recommended:  p.featured,
			}
			if err := db.Create(&plan).Error; err != nil {
				return err
			}
			fmt.Printf("Created plan %s\n", p.name)
		} else if err != nil {
			return err
		}

		for _, grant := range p.grants {
			feature, ok := features[grant]
			if !ok {
				return fmt.Errorf("unknown feature %q in plan %s", grant, p.name)
			}
			perm := models.PlanPermission{PlanID: plan.ID, FeatureID: feature.ID}
			if err := db.Where(&perm).FirstOrCreate(&perm).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func seedOwner(db *gorm.DB, cfg *config.Config) {
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	authService := auth.NewService(db, jwtService)

	email := os.Getenv("OWNER_EMAIL")
	password := os.Getenv("OWNER_PASSWORD")
	name := os.Getenv("OWNER_NAME")

	if email == "" {
		email = "owner@example.com"
	}
	if password == "" {
		password = "owner123!"
	}
	if name == "" {
		name = "Owner"
	}

	resp, err := authService.Register(context.Background(), auth.RegisterInput{
		Email:    email,
		Password: password,
		Name:     name,
	})
	if err != nil {
		if err == auth.ErrUserExists {
			fmt.Printf("Owner already exists: %s\n", email)
			return
		}
		log.Fatalf("failed to create owner: %v", err)
	}

	fmt.Printf("Owner created: %s\n", resp.User.Email)
	fmt.Printf("Token: %s\n", resp.Token)
}
