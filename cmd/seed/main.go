// Seeds the remote backend with a starter menu so a fresh install has
// something to sell.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/pizzadesk/api/internal/backend"
	"github.com/pizzadesk/api/internal/enum"
	"github.com/shopspring/decimal"
)

func main() {
	// CLI flags
	backendURL := flag.String("backend", "", "Backend API base URL")
	flag.Parse()

	// Fall back to environment variables
	if *backendURL == "" {
		*backendURL = os.Getenv("BACKEND_URL")
	}

	// Fall back to defaults
	if *backendURL == "" {
		*backendURL = "http://localhost:8080/api"
	}

	client := backend.NewClient(*backendURL, 10*time.Second)
	ctx := context.Background()

	// Skip seeding if the menu already has items
	existing, err := client.ListItems(ctx)
	if err != nil {
		log.Fatalf("Unable to reach backend: %v", err)
	}
	if len(existing) > 0 {
		log.Printf("Menu already has %d items, nothing to do", len(existing))
		return
	}

	menu := []backend.Item{
		{Name: "Margherita", Description: "Tomato, mozzarella, basil", Category: enum.CategoryPizza, Price: decimal.NewFromFloat(10.00)},
		{Name: "Pepperoni", Description: "Tomato, mozzarella, pepperoni", Category: enum.CategoryPizza, Price: decimal.NewFromFloat(12.50)},
		{Name: "Quattro Formaggi", Description: "Four cheeses", Category: enum.CategoryPizza, Price: decimal.NewFromFloat(13.00)},
		{Name: "Extra Mozzarella", Description: "", Category: enum.CategoryTopping, Price: decimal.NewFromFloat(1.50)},
		{Name: "Mushrooms", Description: "", Category: enum.CategoryTopping, Price: decimal.NewFromFloat(1.00)},
		{Name: "Cola", Description: "330ml can", Category: enum.CategoryBeverage, Price: decimal.NewFromFloat(2.50)},
		{Name: "Sparkling Water", Description: "500ml bottle", Category: enum.CategoryBeverage, Price: decimal.NewFromFloat(2.00)},
	}

	for _, it := range menu {
		if err := client.CreateItem(ctx, it); err != nil {
			log.Fatalf("Failed to seed %q: %v", it.Name, err)
		}
		log.Printf("Seeded %s ($%s)", it.Name, it.Price.StringFixed(2))
	}
	log.Printf("Seeded %d menu items", len(menu))
}
