package dynamo

import (
	"time"

	"franchise-inventory/internal/models"
)

type franchiseItem struct {
	PK        string    `dynamodbav:"PK"`
	SK        string    `dynamodbav:"SK"`
	ID        string    `dynamodbav:"id"`
	Name      string    `dynamodbav:"name"`
	CreatedAt time.Time `dynamodbav:"createdAt"`
	UpdatedAt time.Time `dynamodbav:"updatedAt"`
}

// embeddedItem is an element of branches.products. It carries no branchId.
type embeddedItem struct {
	ID          string    `dynamodbav:"id"`
	FranchiseID string    `dynamodbav:"franchiseId,omitempty"`
	Name        string    `dynamodbav:"name"`
	Stock       int       `dynamodbav:"stock"`
	CreatedAt   time.Time `dynamodbav:"createdAt"`
	UpdatedAt   time.Time `dynamodbav:"updatedAt"`
}

type branchItem struct {
	PK              string         `dynamodbav:"PK"`
	SK              string         `dynamodbav:"SK"`
	ID              string         `dynamodbav:"id"`
	FranchiseID     string         `dynamodbav:"franchiseId"`
	Name            string         `dynamodbav:"name"`
	StorageStrategy string         `dynamodbav:"storageStrategy"`
	Products        []embeddedItem `dynamodbav:"products,omitempty"`
	CreatedAt       time.Time      `dynamodbav:"createdAt"`
	UpdatedAt       time.Time      `dynamodbav:"updatedAt"`
	GSI1PK          string         `dynamodbav:"GSI1PK"`
}

type productItem struct {
	PK          string    `dynamodbav:"PK"`
	SK          string    `dynamodbav:"SK"`
	ID          string    `dynamodbav:"id"`
	FranchiseID string    `dynamodbav:"franchiseId"`
	BranchID    string    `dynamodbav:"branchId"`
	Name        string    `dynamodbav:"name"`
	Stock       int       `dynamodbav:"stock"`
	CreatedAt   time.Time `dynamodbav:"createdAt"`
	UpdatedAt   time.Time `dynamodbav:"updatedAt"`
	GSI1PK      string    `dynamodbav:"GSI1PK"`
	GSI2PK      string    `dynamodbav:"GSI2PK"`
	GSI2SK      int       `dynamodbav:"GSI2SK"`
}

type locationItem struct {
	PK       string `dynamodbav:"PK"`
	SK       string `dynamodbav:"SK"`
	BranchID string `dynamodbav:"branchId"`
}

func toFranchiseItem(f models.Franchise) franchiseItem {
	return franchiseItem{
		PK:        franchisePrefix + f.ID,
		SK:        metadataSK,
		ID:        f.ID,
		Name:      f.Name,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

func (i franchiseItem) toModel() models.Franchise {
	return models.Franchise{ID: i.ID, Name: i.Name, CreatedAt: i.CreatedAt, UpdatedAt: i.UpdatedAt}
}

func toEmbeddedItem(p models.Product) embeddedItem {
	return embeddedItem{
		ID:          p.ID,
		FranchiseID: p.FranchiseID,
		Name:        p.Name,
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (i embeddedItem) toModel() models.Product {
	return models.Product{
		ID:          i.ID,
		FranchiseID: i.FranchiseID,
		Name:        i.Name,
		Stock:       i.Stock,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

// toBranchItem drops the embedded list of SEPARATED branches.
func toBranchItem(b models.Branch) branchItem {
	item := branchItem{
		PK:              branchPrefix + b.ID,
		SK:              metadataSK,
		ID:              b.ID,
		FranchiseID:     b.FranchiseID,
		Name:            b.Name,
		StorageStrategy: string(b.StorageStrategy),
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
		GSI1PK:          franchisePrefix + b.FranchiseID,
	}
	if b.StorageStrategy != models.StrategySeparated && len(b.Products) > 0 {
		item.Products = make([]embeddedItem, len(b.Products))
		for i, p := range b.Products {
			item.Products[i] = toEmbeddedItem(p)
		}
	}
	return item
}

func (i branchItem) toModel() models.Branch {
	b := models.Branch{
		ID:              i.ID,
		FranchiseID:     i.FranchiseID,
		Name:            i.Name,
		StorageStrategy: models.StorageStrategy(i.StorageStrategy),
		CreatedAt:       i.CreatedAt,
		UpdatedAt:       i.UpdatedAt,
	}
	if len(i.Products) > 0 {
		b.Products = make([]models.Product, len(i.Products))
		for n, p := range i.Products {
			b.Products[n] = p.toModel()
		}
	}
	return b
}

func toProductItem(p models.Product) productItem {
	return productItem{
		PK:          productPrefix + p.ID,
		SK:          metadataSK,
		ID:          p.ID,
		FranchiseID: p.FranchiseID,
		BranchID:    p.BranchID,
		Name:        p.Name,
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		GSI1PK:      branchPrefix + p.BranchID,
		GSI2PK:      franchisePrefix + p.FranchiseID,
		GSI2SK:      p.Stock,
	}
}

func (i productItem) toModel() models.Product {
	return models.Product{
		ID:          i.ID,
		FranchiseID: i.FranchiseID,
		BranchID:    i.BranchID,
		Name:        i.Name,
		Stock:       i.Stock,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}
