package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"ecommerce/internal/config"
	"ecommerce/internal/model"
	"ecommerce/internal/repository"
)

// Загружает сгенерированные seed-файлы напрямую в БД
// Вид записи определяется аргументом: users, products или orders
func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: go run scripts/loadtest/load_test_data.go <kind> <filename>")
		fmt.Println("Kinds: users, products, orders")
		fmt.Println("Example: go run scripts/loadtest/load_test_data.go orders test_data_orders.json")
		os.Exit(1)
	}

	kind := os.Args[1]
	filename := os.Args[2]

	cfg := config.Load()

	file, err := os.Open(filename)
	if err != nil {
		log.Fatalf("Failed to open file %s: %v", filename, err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var successCount, errorCount int

	switch kind {
	case "users":
		repo, err := repository.NewUsersRepo(cfg.DatabaseURL(), nil)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer repo.Close()

		for decoder.More() {
			var user model.User
			if err := decoder.Decode(&user); err != nil {
				log.Printf("Failed to decode user: %v", err)
				errorCount++
				continue
			}
			if err := repo.AddUser(ctx, &user); err != nil {
				log.Printf("Failed to insert user %s: %v", user.UserID, err)
				errorCount++
				continue
			}
			successCount++
		}

	case "products":
		repo, err := repository.NewProductsRepo(cfg.DatabaseURL(), nil)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer repo.Close()

		for decoder.More() {
			var product model.Product
			if err := decoder.Decode(&product); err != nil {
				log.Printf("Failed to decode product: %v", err)
				errorCount++
				continue
			}
			if err := repo.AddProduct(ctx, &product); err != nil {
				log.Printf("Failed to insert product %s: %v", product.ProductID, err)
				errorCount++
				continue
			}
			successCount++
		}

	case "orders":
		repo, err := repository.NewOrdersRepo(cfg.DatabaseURL(), nil)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer repo.Close()

		for decoder.More() {
			var order model.Order
			if err := decoder.Decode(&order); err != nil {
				log.Printf("Failed to decode order: %v", err)
				errorCount++
				continue
			}
			if order.OrderDate.IsZero() {
				order.OrderDate = time.Now()
			}
			if err := repo.AddOrder(ctx, &order); err != nil {
				log.Printf("Failed to insert order %s: %v", order.OrderID, err)
				errorCount++
				continue
			}
			successCount++
		}

	default:
		log.Fatalf("Unknown kind %q: expected users, products or orders", kind)
	}

	log.Printf("Done: %d inserted, %d failed", successCount, errorCount)
}
