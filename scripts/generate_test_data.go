package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"ecommerce/internal/model"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

const (
	maxUsersCount    = 10000
	maxItemsPerOrder = 5
	ordersPerUser    = 3
	productsCount    = 50
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run scripts/generate_test_data.go <users_count>")
		fmt.Println("Example: go run scripts/generate_test_data.go 10")
		os.Exit(1)
	}

	count, err := strconv.Atoi(os.Args[1])
	if err != nil || count <= 0 {
		log.Fatalf("Invalid count: must be a positive integer")
	}
	if count > maxUsersCount {
		log.Fatalf("Count too large: maximum %d users allowed", maxUsersCount)
	}

	// Инициализируем faker
	gofakeit.Seed(time.Now().UnixNano())

	users := generateUsers(count)
	products := generateProducts(productsCount)
	orders := generateOrders(users, products)

	writeFile("test_data_users.json", toAny(users))
	writeFile("test_data_products.json", toAny(products))
	writeFile("test_data_orders.json", toAny(orders))

	log.Printf("Generated %d users, %d products, %d orders", len(users), len(products), len(orders))
}

func generateUsers(count int) []*model.User {
	genders := []string{"Male", "Female", "Other"}
	users := make([]*model.User, count)
	for i := range users {
		users[i] = &model.User{
			UserID:     uuid.New(),
			Email:      gofakeit.Email(),
			PersonName: gofakeit.Name(),
			Gender:     genders[gofakeit.IntRange(0, len(genders)-1)],
		}
	}
	return users
}

func generateProducts(count int) []*model.Product {
	products := make([]*model.Product, count)
	for i := range products {
		products[i] = &model.Product{
			ProductID:       uuid.New(),
			ProductName:     gofakeit.ProductName(),
			Category:        gofakeit.ProductCategory(),
			UnitPrice:       gofakeit.Price(1, 5000),
			QuantityInStock: gofakeit.IntRange(0, 500),
		}
	}
	return products
}

func generateOrders(users []*model.User, products []*model.Product) []*model.Order {
	var orders []*model.Order
	for _, user := range users {
		for i := 0; i < ordersPerUser; i++ {
			order := &model.Order{
				OrderID:   uuid.New(),
				UserID:    user.UserID,
				OrderDate: gofakeit.DateRange(time.Now().AddDate(-1, 0, 0), time.Now()),
			}

			itemsCount := gofakeit.IntRange(1, maxItemsPerOrder)
			for j := 0; j < itemsCount; j++ {
				product := products[gofakeit.IntRange(0, len(products)-1)]
				order.Items = append(order.Items, model.OrderItem{
					ProductID: product.ProductID,
					UnitPrice: product.UnitPrice,
					Quantity:  gofakeit.IntRange(1, 10),
				})
			}

			order.RecalculateTotals()
			orders = append(orders, order)
		}
	}
	return orders
}

func toAny[T any](items []*T) []interface{} {
	out := make([]interface{}, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

func writeFile(filename string, items []interface{}) {
	file, err := os.Create(filename)
	if err != nil {
		log.Fatalf("Failed to create file %s: %v", filename, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	for _, item := range items {
		if err := encoder.Encode(item); err != nil {
			log.Printf("Failed to encode item: %v", err)
		}
	}

	log.Printf("Wrote %d records to %s", len(items), filename)
}
