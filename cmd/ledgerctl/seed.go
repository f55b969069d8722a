package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"ledger-service/internal/domain"
	"ledger-service/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var seedFile string

// catalogFile is the JSON layout read by seed
type catalogFile struct {
	TenantID string `json:"tenant_id"`
	Products []struct {
		ID    string          `json:"id"`
		SKU   string          `json:"sku"`
		Name  string          `json:"name"`
		Price decimal.Decimal `json:"price"`
	} `json:"products"`
	Warehouses []struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Capacity int    `json:"capacity"`
	} `json:"warehouses"`
}

func loadCatalog(r io.Reader) (*catalogFile, error) {
	var catalog catalogFile
	if err := json.NewDecoder(r).Decode(&catalog); err != nil {
		return nil, fmt.Errorf("invalid catalog file: %w", err)
	}
	if catalog.TenantID == "" {
		return nil, fmt.Errorf("invalid catalog file: tenant_id is required")
	}
	for i, p := range catalog.Products {
		if p.SKU == "" || p.Name == "" {
			return nil, fmt.Errorf("invalid catalog file: products[%d] needs sku and name", i)
		}
	}
	return &catalog, nil
}

// seedCatalog upserts the file's products and warehouses in one transaction.
// Entries without an id reuse the row with the same SKU (products) or name (warehouses),
// or get a new UUID, so seeding the same file twice updates in place.
func seedCatalog(ctx context.Context, scope repository.TransactionScope, catalog *catalogFile) (products, warehouses int, err error) {
	err = scope.Execute(ctx, func(repos repository.Repositories) error {
		for _, p := range catalog.Products {
			id, err := resolveID(p.ID, func() (string, error) {
				existing, err := repos.Catalog().FindProductBySKU(ctx, catalog.TenantID, p.SKU)
				if err != nil {
					return "", err
				}
				return existing.ID, nil
			})
			if err != nil {
				return err
			}
			product := &domain.Product{ID: id, TenantID: catalog.TenantID, SKU: p.SKU, Name: p.Name, Price: p.Price}
			if err := repos.Catalog().UpsertProduct(ctx, product); err != nil {
				return err
			}
			products++
		}
		for _, w := range catalog.Warehouses {
			id, err := resolveID(w.ID, func() (string, error) {
				existing, err := repos.Catalog().FindWarehouseByName(ctx, catalog.TenantID, w.Name)
				if err != nil {
					return "", err
				}
				return existing.ID, nil
			})
			if err != nil {
				return err
			}
			warehouse := &domain.Warehouse{ID: id, TenantID: catalog.TenantID, Name: w.Name, Capacity: w.Capacity}
			if err := repos.Catalog().UpsertWarehouse(ctx, warehouse); err != nil {
				return err
			}
			warehouses++
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return products, warehouses, nil
}

// resolveID keeps an explicit id, otherwise reuses the id lookup finds, otherwise mints one
func resolveID(id string, lookup func() (string, error)) (string, error) {
	if id != "" {
		return id, nil
	}
	existing, err := lookup()
	if err == nil {
		return existing, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return uuid.New().String(), nil
	}
	return "", err
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Upsert a tenant's products and warehouses from a JSON catalog file",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(seedFile)
		if err != nil {
			return fmt.Errorf("failed to open catalog: %w", err)
		}
		defer f.Close()

		catalog, err := loadCatalog(f)
		if err != nil {
			return err
		}

		_, db, log, err := openDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		products, warehouses, err := seedCatalog(cmd.Context(), repository.NewTransactionScope(db, log), catalog)
		if err != nil {
			return fmt.Errorf("seed failed: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Seeded tenant %s: %d products, %d warehouses\n", catalog.TenantID, products, warehouses)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "catalog.json", "Catalog JSON file")
	rootCmd.AddCommand(seedCmd)
}
