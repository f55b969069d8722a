package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"ledger-service/internal/auth"
	"ledger-service/internal/database"
	"ledger-service/internal/repository"
	"ledger-service/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const catalogJSON = `{
  "tenant_id": "tenant-1",
  "products": [
    {"id": "p1", "sku": "SKU-1", "name": "Widget", "price": "4.50"},
    {"sku": "SKU-2", "name": "Gadget", "price": 10}
  ],
  "warehouses": [
    {"id": "w1", "name": "North", "capacity": 500},
    {"name": "South", "capacity": 200}
  ]
}`

func TestLoadCatalog(t *testing.T) {
	catalog, err := loadCatalog(strings.NewReader(catalogJSON))
	require.NoError(t, err)
	assert.Equal(t, "tenant-1", catalog.TenantID)
	require.Len(t, catalog.Products, 2)
	assert.Equal(t, "4.5", catalog.Products[0].Price.String())

	_, err = loadCatalog(strings.NewReader(`{"products": []}`))
	assert.Error(t, err)

	_, err = loadCatalog(strings.NewReader(`{"tenant_id": "t", "products": [{"sku": "x"}]}`))
	assert.Error(t, err)

	_, err = loadCatalog(strings.NewReader(`not json`))
	assert.Error(t, err)
}

func TestSeedCatalog(t *testing.T) {
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "ledger.db"), zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	scope := repository.NewTransactionScope(db, zap.NewNop())
	catalog, err := loadCatalog(strings.NewReader(catalogJSON))
	require.NoError(t, err)

	products, warehouses, err := seedCatalog(context.Background(), scope, catalog)
	require.NoError(t, err)
	assert.Equal(t, 2, products)
	assert.Equal(t, 2, warehouses)

	var gadgetID string
	err = scope.Query(context.Background(), func(repos repository.Repositories) error {
		gadget, err := repos.Catalog().FindProductBySKU(context.Background(), "tenant-1", "SKU-2")
		if err != nil {
			return err
		}
		gadgetID = gadget.ID
		return nil
	})
	require.NoError(t, err)

	// Seeding twice updates in place, including entries without an id
	catalog.Products[1].Name = "Gadget v2"
	_, _, err = seedCatalog(context.Background(), scope, catalog)
	require.NoError(t, err)

	count, err := db.CountRows(context.Background(), "warehouses")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	count, err = db.CountRows(context.Background(), "products")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	err = scope.Query(context.Background(), func(repos repository.Repositories) error {
		product, err := repos.Catalog().FindProduct(context.Background(), "tenant-1", "p1")
		if err != nil {
			return err
		}
		assert.Equal(t, "Widget", product.Name)

		gadget, err := repos.Catalog().FindProductBySKU(context.Background(), "tenant-1", "SKU-2")
		if err != nil {
			return err
		}
		assert.Equal(t, gadgetID, gadget.ID)
		assert.Equal(t, "Gadget v2", gadget.Name)
		return nil
	})
	require.NoError(t, err)
}

func TestReportDrift(t *testing.T) {
	var out bytes.Buffer
	assert.NoError(t, reportDrift(&out, nil))
	assert.Contains(t, out.String(), "consistent")

	out.Reset()
	err := reportDrift(&out, []service.Drift{{RecordID: "r1", WarehouseID: "w1", ProductID: "p1", Quantity: 5, JournalSum: 3}})
	assert.ErrorIs(t, err, errDrift)
	assert.Contains(t, out.String(), "r1")
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "ledgerctl-secret")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"token", "--user", "u1", "--tenant", "tenant-1", "--role", "manager"})
	require.NoError(t, rootCmd.Execute())

	claims, err := auth.NewJWTManager("ledgerctl-secret", zap.NewNop()).ValidateToken(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "tenant-1", claims.TenantID)
	assert.Equal(t, auth.RoleManager, claims.Role)

	rootCmd.SetArgs([]string{"token", "--user", "u1", "--tenant", "tenant-1", "--role", "owner"})
	assert.Error(t, rootCmd.Execute())
}
