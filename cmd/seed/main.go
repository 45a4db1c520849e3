package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"biteback/internal/config"
	"biteback/internal/db"
	"biteback/internal/model"
	"biteback/internal/repository"
)

type seedUser struct {
	Name     string
	Email    string
	Password string
	Role     model.Role
}

type seedProduct struct {
	Name        string
	Description string
	Price       string
	Stock       int
	VendorEmail string
	ImageURLs   []string
}

var seedUsers = []seedUser{
	{Name: "Panadería La Espiga", Email: "espiga@biteback.dev", Password: "espiga123", Role: model.RoleAdministrador},
	{Name: "Frutería Don Mario", Email: "donmario@biteback.dev", Password: "mario123", Role: model.RoleAdministrador},
	{Name: "Laura Gómez", Email: "laura@biteback.dev", Password: "laura123", Role: model.RoleCliente},
	{Name: "Carlos Pérez", Email: "carlos@biteback.dev", Password: "carlos123", Role: model.RoleCliente},
}

var seedProducts = []seedProduct{
	{
		Name:        "Pan campesino del día anterior",
		Description: "Lote de 5 panes, horneados ayer",
		Price:       "4500.00",
		Stock:       12,
		VendorEmail: "espiga@biteback.dev",
		ImageURLs:   []string{"https://images.biteback.dev/pan-campesino.jpg"},
	},
	{
		Name:        "Croissants surtidos",
		Description: "Caja de 6, maduración óptima para hoy",
		Price:       "8000.00",
		Stock:       8,
		VendorEmail: "espiga@biteback.dev",
	},
	{
		Name:        "Canasta de fruta madura",
		Description: "Mango, banano y papaya listos para consumir",
		Price:       "12000.00",
		Stock:       5,
		VendorEmail: "donmario@biteback.dev",
		ImageURLs:   []string{"https://images.biteback.dev/canasta-fruta.jpg"},
	},
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.ProductImage{},
		&model.Purchase{},
		&model.PurchaseLine{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()
	userRepo := repository.NewUserRepository(gormDB)
	productRepo := repository.NewProductRepository(gormDB)

	usersByEmail, created, err := seedDemoUsers(ctx, userRepo)
	if err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}
	log.Printf("Users seeded: %d new, %d total", created, len(usersByEmail))

	productsCreated, err := seedDemoProducts(ctx, productRepo, usersByEmail)
	if err != nil {
		log.Fatalf("Failed to seed products: %v", err)
	}
	log.Printf("Products seeded: %d new", productsCreated)

	log.Println("Seed completed successfully!")
}

// seedDemoUsers inserts the demo users, skipping emails that already exist.
func seedDemoUsers(ctx context.Context, repo repository.UserRepository) (map[string]*model.User, int, error) {
	usersByEmail := make(map[string]*model.User, len(seedUsers))
	created := 0
	for _, item := range seedUsers {
		existing, err := repo.FindByEmail(ctx, item.Email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, created, fmt.Errorf("error checking user %s: %w", item.Email, err)
		}
		if existing != nil {
			usersByEmail[item.Email] = existing
			continue
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(item.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, created, fmt.Errorf("error hashing password for %s: %w", item.Email, err)
		}
		user := &model.User{
			Name:         item.Name,
			Email:        item.Email,
			PasswordHash: string(hashed),
			Role:         item.Role,
		}
		if err := repo.Create(ctx, user); err != nil {
			return nil, created, fmt.Errorf("error creating user %s: %w", item.Email, err)
		}
		usersByEmail[item.Email] = user
		created++
	}
	return usersByEmail, created, nil
}

// seedDemoProducts inserts the demo products for sellers that already have
// none, so re-running the script does not duplicate listings.
func seedDemoProducts(ctx context.Context, repo repository.ProductRepository, usersByEmail map[string]*model.User) (int, error) {
	created := 0
	for _, item := range seedProducts {
		vendor, ok := usersByEmail[item.VendorEmail]
		if !ok {
			log.Printf("Skipping product %q: vendor %s not seeded", item.Name, item.VendorEmail)
			continue
		}

		existing, err := repo.ListByVendor(ctx, vendor.ID)
		if err != nil {
			return created, fmt.Errorf("error listing products for %s: %w", item.VendorEmail, err)
		}
		if hasProduct(existing, item.Name) {
			continue
		}

		price, err := decimal.NewFromString(item.Price)
		if err != nil {
			return created, fmt.Errorf("invalid price for %q: %w", item.Name, err)
		}
		product := &model.Product{
			Name:        item.Name,
			Description: item.Description,
			Price:       price,
			Stock:       item.Stock,
			VendorID:    vendor.ID,
		}
		for _, url := range item.ImageURLs {
			product.Images = append(product.Images, model.ProductImage{URL: url})
		}
		if err := repo.Create(ctx, product); err != nil {
			return created, fmt.Errorf("error creating product %q: %w", item.Name, err)
		}
		created++
	}
	return created, nil
}

func hasProduct(products []model.Product, name string) bool {
	for _, p := range products {
		if p.Name == name {
			return true
		}
	}
	return false
}
