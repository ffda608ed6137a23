package main

import (
	"database/sql"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/aurumstore/catalog-api/app/catalog"
	"github.com/aurumstore/catalog-api/app/categories"
	"github.com/aurumstore/catalog-api/app/filters"
	"github.com/aurumstore/catalog-api/models"
)

func main() {
	_ = godotenv.Load()

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal().Msg("DATABASE_URL is not set")
	}

	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize gorm")
	}

	if err := models.MigrateCatalog(db); err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}
	if err := models.SeedCategories(db); err != nil {
		logger.Fatal().Err(err).Msg("category seeding failed")
	}

	productsRepo := models.NewProductsRepository(db)
	categoriesRepo := models.NewCategoriesRepository(db)

	catalogHandler := catalog.NewCatalogHandler(productsRepo, logger)
	categoryHandler := categories.NewCategoryHandler(categoriesRepo, logger)
	filtersHandler := filters.NewFiltersHandler(productsRepo, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/products", catalogHandler.HandleList)
	mux.HandleFunc("GET /api/products/{id}", catalogHandler.HandleGetProduct)
	mux.HandleFunc("POST /api/products", catalogHandler.HandleCreate)
	mux.HandleFunc("PATCH /api/products/{id}", catalogHandler.HandleUpdate)
	mux.HandleFunc("DELETE /api/products/{id}", catalogHandler.HandleDelete)
	mux.HandleFunc("GET /api/categories", categoryHandler.HandleGetAll)
	mux.HandleFunc("GET /api/categories/{category}/filters", filtersHandler.HandleGetFacets)
	mux.HandleFunc("GET /api/tables/{table}", filtersHandler.HandleGetTable)

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	logger.Info().Str("addr", addr).Msg("catalog API listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
