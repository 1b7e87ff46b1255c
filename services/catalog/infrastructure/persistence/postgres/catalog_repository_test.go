package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/emssupply/pkg/testutil"
	"github.com/ghuser/emssupply/services/catalog/domain"
	"github.com/ghuser/emssupply/services/catalog/domain/models"
)

func TestCatalogRepository_Integration(t *testing.T) {
	db := testutil.NewPostgres(t)
	repo := NewCatalogRepository(db)
	ctx := context.Background()

	agencyID := uuid.New()
	if _, err := db.DB().ExecContext(ctx, `INSERT INTO agencies (id, name) VALUES ($1, 'County EMS')`, agencyID); err != nil {
		t.Fatalf("seed agency: %v", err)
	}

	cat := &models.Category{ID: uuid.New(), AgencyID: agencyID, Name: "IV Supplies", Active: true}
	if err := repo.CreateCategory(ctx, cat); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	saline := &models.Supply{
		ID: uuid.New(), AgencyID: agencyID, CategoryID: &cat.ID, Name: "Normal Saline 1000mL", SKU: "NS-1000",
		UnitOfMeasure: "bag", UnitCost: decimal.RequireFromString("2.10"), DefaultParLevel: 6, TracksExpiration: true, Active: true,
	}
	tape := &models.Supply{ID: uuid.New(), AgencyID: agencyID, Name: "Silk Tape", Manufacturer: "3M", UnitOfMeasure: "roll", Active: true}
	for _, s := range []*models.Supply{saline, tape} {
		if err := repo.CreateSupply(ctx, s); err != nil {
			t.Fatalf("CreateSupply(%s): %v", s.Name, err)
		}
	}

	got, err := repo.GetSupply(ctx, agencyID, saline.ID)
	if err != nil {
		t.Fatalf("GetSupply: %v", err)
	}
	if got.CategoryName != "IV Supplies" || !got.UnitCost.Equal(saline.UnitCost) {
		t.Fatalf("GetSupply = %+v", got)
	}

	tape.Active = false
	if err := repo.UpdateSupply(ctx, tape); err != nil {
		t.Fatalf("UpdateSupply: %v", err)
	}

	active := true
	list, err := repo.ListSupplies(ctx, agencyID, models.Filter{Active: &active})
	if err != nil {
		t.Fatalf("ListSupplies: %v", err)
	}
	if len(list) != 1 || list[0].ID != saline.ID {
		t.Fatalf("active supplies = %+v", list)
	}

	list, err = repo.ListSupplies(ctx, agencyID, models.Filter{Search: "3m"})
	if err != nil {
		t.Fatalf("ListSupplies(search): %v", err)
	}
	if len(list) != 1 || list[0].ID != tape.ID {
		t.Fatalf("search results = %+v", list)
	}

	cats, err := repo.ListCategories(ctx, agencyID)
	if err != nil || len(cats) != 1 {
		t.Fatalf("ListCategories = %+v, %v", cats, err)
	}

	if _, err := repo.GetCategory(ctx, uuid.New(), cat.ID); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Fatalf("GetCategory(other agency) err = %v", err)
	}
	if _, err := repo.GetSupply(ctx, agencyID, uuid.New()); !errors.Is(err, domain.ErrSupplyNotFound) {
		t.Fatalf("GetSupply(missing) err = %v", err)
	}
}
