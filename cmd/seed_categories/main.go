package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/pageza/recipeshare/backend/config"
	"github.com/pageza/recipeshare/backend/internal/database"
	"github.com/pageza/recipeshare/backend/internal/models"
	"github.com/pageza/recipeshare/backend/internal/service"
)

type categoryData struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Emoji       string `json:"emoji"`
	Description string `json:"description"`
}

var defaultCategories = []categoryData{
	{Name: "Breakfast", Slug: "breakfast", Emoji: "🍳", Description: "Morning dishes"},
	{Name: "Lunch", Slug: "lunch", Emoji: "🥪", Description: "Midday meals"},
	{Name: "Dinner", Slug: "dinner", Emoji: "🍝", Description: "Evening mains"},
	{Name: "Desserts", Slug: "desserts", Emoji: "🍰", Description: "Sweet things"},
	{Name: "Snacks", Slug: "snacks", Emoji: "🥨", Description: "Small bites"},
	{Name: "Drinks", Slug: "drinks", Emoji: "🥤", Description: "Smoothies, cocktails and more"},
	{Name: "Vegetarian", Slug: "vegetarian", Emoji: "🥗", Description: "No meat or fish"},
	{Name: "Soups", Slug: "soups", Emoji: "🍲", Description: "Soups and stews"},
}

func main() {
	file := flag.String("file", "", "JSON file with categories (defaults to the built-in list)")
	flag.Parse()

	data := defaultCategories
	if *file != "" {
		raw, err := os.ReadFile(*file)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", *file, err)
		}
		if err := json.Unmarshal(raw, &data); err != nil {
			log.Fatalf("Failed to parse %s: %v", *file, err)
		}
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	categories := make([]models.Category, 0, len(data))
	for _, d := range data {
		categories = append(categories, models.Category{
			Name:        d.Name,
			Slug:        d.Slug,
			Emoji:       optional(d.Emoji),
			Description: optional(d.Description),
		})
	}

	n, err := service.NewCategoryService(db).SeedCategories(context.Background(), categories)
	if err != nil {
		log.Fatalf("Failed to seed categories: %v", err)
	}
	log.Printf("Seeded %d categories", n)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
