package persistence

import (
	"time"

	"github.com/agrilink/marketplace/modules/catalog/domain"
	"github.com/agrilink/marketplace/modules/shared/types"
)

// Sample sellers used by the development catalog.
const (
	SunnyAcresSellerID   = "3b7f9a21-6c4d-4e8f-9a1b-2c3d4e5f6a7b"
	RiverbendSellerID    = "8e2c4b6a-1d3f-4a5b-8c7d-9e0f1a2b3c4d"
	HillsideHiveSellerID = "c5d6e7f8-9a0b-4c1d-8e2f-3a4b5c6d7e8f"
)

// SampleProducts returns the development catalog, priced in currency.
func SampleProducts(currency string) []domain.ProductSnapshot {
	created := time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC)
	product := func(id, seller, sellerName, name, desc string, cat domain.Category, unit string, cents int64, stock int) domain.ProductSnapshot {
		pid, _ := types.ParseProductID(id)
		sid, _ := types.ParseUserID(seller)
		return domain.ProductSnapshot{
			ID:          pid,
			SellerID:    sid,
			SellerName:  sellerName,
			Name:        name,
			Description: desc,
			Category:    cat,
			Unit:        unit,
			Price:       types.MustNewMoney(cents, currency),
			Stock:       stock,
			Active:      true,
			CreatedAt:   created,
		}
	}

	return []domain.ProductSnapshot{
		product("0f1e2d3c-4b5a-4968-8776-a5b4c3d2e1f0", SunnyAcresSellerID, "Sunny Acres",
			"Heirloom Tomatoes", "Mixed heirloom varieties, vine ripened.", domain.CategoryVegetables, "lb", 450, 40),
		product("1a2b3c4d-5e6f-4a7b-8c9d-0e1f2a3b4c5d", SunnyAcresSellerID, "Sunny Acres",
			"Sweet Corn", "Bi-colour sweet corn picked daily.", domain.CategoryVegetables, "ear", 75, 200),
		product("2b3c4d5e-6f7a-4b8c-9d0e-1f2a3b4c5d6e", SunnyAcresSellerID, "Sunny Acres",
			"Fresh Basil", "Genovese basil bunches.", domain.CategoryHerbs, "bunch", 300, 25),
		product("3c4d5e6f-7a8b-4c9d-8e1f-2a3b4c5d6e7f", RiverbendSellerID, "Riverbend Dairy",
			"Whole Milk", "Non-homogenized, glass bottle.", domain.CategoryDairy, "half gallon", 650, 30),
		product("4d5e6f7a-8b9c-4d0e-9f2a-3b4c5d6e7f8a", RiverbendSellerID, "Riverbend Dairy",
			"Aged Cheddar", "Twelve month cave-aged cheddar.", domain.CategoryDairy, "8 oz", 900, 18),
		product("5e6f7a8b-9c0d-4e1f-8a3b-4c5d6e7f8a9b", RiverbendSellerID, "Riverbend Dairy",
			"Pasture Eggs", "Free-range brown eggs.", domain.CategoryEggs, "dozen", 700, 50),
		product("6f7a8b9c-0d1e-4f2a-9b4c-5d6e7f8a9b0c", HillsideHiveSellerID, "Hillside Hive",
			"Wildflower Honey", "Raw, unfiltered spring honey.", domain.CategoryPantry, "16 oz jar", 1200, 24),
		product("7a8b9c0d-1e2f-4a3b-8c5d-6e7f8a9b0c1d", HillsideHiveSellerID, "Hillside Hive",
			"Honeycrisp Apples", "Crisp orchard apples.", domain.CategoryFruits, "lb", 325, 0),
	}
}
