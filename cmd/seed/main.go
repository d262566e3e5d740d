package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"assembly-backend/internal/database"
	"assembly-backend/internal/model"
)

// Seed de développement: un tenant de démonstration avec un bureau complet
// et les deux politiques usuelles d'une assemblée de copropriété.
func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("ℹ️ No .env file found, using environment variables")
	}

	db, err := database.ConnectDB()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	log.Println("Database connected. Seeding demo tenant...")

	err = db.Transaction(func(tx *gorm.DB) error {
		tenant := model.Tenant{Name: "Résidence des Lilas"}
		if err := tx.Where("name = ?", tenant.Name).FirstOrCreate(&tenant).Error; err != nil {
			return err
		}

		members := []model.Member{
			{TenantID: tenant.ID, Email: "presidente@lilas.example", FullName: "Claire Besson", Role: "president"},
			{TenantID: tenant.ID, Email: "secretaire@lilas.example", FullName: "Marc Aubry", Role: "operator"},
			{TenantID: tenant.ID, Email: "verificateur@lilas.example", FullName: "Inès Rostand", Role: "auditor"},
			{TenantID: tenant.ID, Email: "syndic@lilas.example", FullName: "Cabinet Verdier", Role: "admin"},
			{TenantID: tenant.ID, Email: "membre1@lilas.example", FullName: "Paul Chastel", Role: "viewer"},
			{TenantID: tenant.ID, Email: "membre2@lilas.example", FullName: "Anna Keller", Role: "viewer"},
		}
		for i := range members {
			if err := tx.Where("tenant_id = ? AND email = ?", tenant.ID, members[i].Email).
				FirstOrCreate(&members[i]).Error; err != nil {
				return err
			}
		}

		half := decimal.RequireFromString("0.5")
		quarter := decimal.RequireFromString("0.25")
		twoThirds := decimal.RequireFromString("0.6667")

		quorum := model.QuorumPolicy{
			TenantID:   tenant.ID,
			Name:       "Quorum ordinaire",
			Basis:      model.BasisEligibleMembers,
			Mode:       model.QuorumModeSingle,
			Threshold1: half,
			Threshold2: &quarter,
		}
		if err := tx.Where("tenant_id = ? AND name = ?", tenant.ID, quorum.Name).
			FirstOrCreate(&quorum).Error; err != nil {
			return err
		}

		votePolicies := []model.VotePolicy{
			{TenantID: tenant.ID, Name: "Majorité simple", Base: model.VoteBaseExpressed, Threshold: half},
			{TenantID: tenant.ID, Name: "Majorité des deux tiers", Base: model.VoteBaseExpressed, Threshold: twoThirds},
		}
		for i := range votePolicies {
			if err := tx.Where("tenant_id = ? AND name = ?", tenant.ID, votePolicies[i].Name).
				FirstOrCreate(&votePolicies[i]).Error; err != nil {
				return err
			}
		}

		log.Printf("Seeded tenant %q (id=%d) with %d members", tenant.Name, tenant.ID, len(members))
		return nil
	})

	if err != nil {
		log.Fatalf("Failed to seed: %v", err)
	}

	log.Println("Seed completed.")
}
