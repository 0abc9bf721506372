package inventory

import (
	"context"
	"errors"
	"time"

	apperrors "franchise-inventory/internal/common/errors"
	"franchise-inventory/internal/common/logger"
	"franchise-inventory/internal/common/metrics"
	"franchise-inventory/internal/events"
	"franchise-inventory/internal/models"
)

// Service exposes the franchise, branch and product use cases over the
// three repository gateways. It holds no mutable state of its own and is
// safe for concurrent use.
type Service struct {
	franchises FranchiseRepository
	branches   BranchRepository
	products   ProductRepository

	embeddedLimit  int
	topStockLimit  int
	candidateLimit int
	fanout         int

	now       func() time.Time
	newID     func() string
	logger    logger.Logger
	publisher events.Publisher
}

func NewService(franchises FranchiseRepository, branches BranchRepository, products ProductRepository, opts ...Option) *Service {
	s := &Service{
		franchises: franchises,
		branches:   branches,
		products:   products,
	}
	defaultOptions(s)
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// EmbeddedLimit reports the configured strategy threshold.
func (s *Service) EmbeddedLimit() int { return s.embeddedLimit }

// ==========================
// Franchises
// ==========================

func (s *Service) CreateFranchise(ctx context.Context, name string) (models.Franchise, error) {
	name, err := requireName("franchise name", name)
	if err != nil {
		return models.Franchise{}, err
	}

	saved, err := s.franchises.Save(ctx, models.NewFranchise(s.newID(), name, s.now()))
	if err != nil {
		return models.Franchise{}, storageErr("saveFranchise", err)
	}

	s.logger.Info("Franchise created", map[string]interface{}{"franchiseId": saved.ID})
	return saved, nil
}

func (s *Service) UpdateFranchiseName(ctx context.Context, id, name string) (models.Franchise, error) {
	if err := requireID("franchise id", id); err != nil {
		return models.Franchise{}, err
	}
	name, err := requireName("franchise name", name)
	if err != nil {
		return models.Franchise{}, err
	}

	franchise, err := s.franchises.FindByID(ctx, id)
	if err != nil {
		return models.Franchise{}, storageErr("findFranchise", err)
	}

	saved, err := s.franchises.Save(ctx, franchise.Rename(name, s.now()))
	if err != nil {
		return models.Franchise{}, storageErr("saveFranchise", err)
	}
	return saved, nil
}

func (s *Service) ListFranchises(ctx context.Context) ([]models.Franchise, error) {
	franchises, err := s.franchises.FindAll(ctx)
	if err != nil {
		return nil, storageErr("findAllFranchises", err)
	}
	if franchises == nil {
		franchises = []models.Franchise{}
	}
	return franchises, nil
}

// ==========================
// Branches
// ==========================

// CreateBranch attaches a new, empty branch to an existing franchise.
func (s *Service) CreateBranch(ctx context.Context, franchiseID, name string) (models.Branch, error) {
	if err := requireID("franchise id", franchiseID); err != nil {
		return models.Branch{}, err
	}
	name, err := requireName("branch name", name)
	if err != nil {
		return models.Branch{}, err
	}

	if _, err := s.franchises.FindByID(ctx, franchiseID); err != nil {
		return models.Branch{}, storageErr("findFranchise", err)
	}

	branch := models.NewBranch(s.newID(), franchiseID, name, DecideStrategy(0, s.embeddedLimit), s.now())
	saved, err := s.branches.Save(ctx, branch)
	if err != nil {
		return models.Branch{}, storageErr("saveBranch", err)
	}

	s.logger.Info("Branch created", map[string]interface{}{
		"franchiseId": franchiseID,
		"branchId":    saved.ID,
		"strategy":    saved.StorageStrategy,
	})
	return saved, nil
}

func (s *Service) UpdateBranchName(ctx context.Context, id, name string) (models.Branch, error) {
	if err := requireID("branch id", id); err != nil {
		return models.Branch{}, err
	}
	name, err := renameName("branch name", name)
	if err != nil {
		return models.Branch{}, err
	}

	branch, err := s.branches.FindByID(ctx, id)
	if err != nil {
		return models.Branch{}, storageErr("findBranch", err)
	}

	saved, err := s.branches.Save(ctx, branch.Rename(name, s.now()))
	if err != nil {
		return models.Branch{}, storageErr("saveBranch", err)
	}
	return saved, nil
}

// ==========================
// Products
// ==========================

// CreateProduct stores a new product in the embedded list of its branch while
// the list is below the limit, and as a separated record otherwise.
func (s *Service) CreateProduct(ctx context.Context, franchiseID, branchID, name string, stock int) (models.Product, models.ProductLocation, error) {
	if err := requireID("franchise id", franchiseID); err != nil {
		return models.Product{}, models.ProductLocation{}, err
	}
	if err := requireID("branch id", branchID); err != nil {
		return models.Product{}, models.ProductLocation{}, err
	}
	name, err := requireName("product name", name)
	if err != nil {
		return models.Product{}, models.ProductLocation{}, err
	}
	if err := requireStock(stock); err != nil {
		return models.Product{}, models.ProductLocation{}, err
	}

	branch, err := s.branches.FindByID(ctx, branchID)
	if err != nil {
		return models.Product{}, models.ProductLocation{}, storageErr("findBranch", err)
	}
	if branch.FranchiseID != franchiseID {
		return models.Product{}, models.ProductLocation{}, apperrors.NewNotFoundError("branch", branchID)
	}

	product := models.NewProduct(s.newID(), franchiseID, branchID, name, stock, s.now())
	loc, err := s.place(ctx, branch, product)
	if err != nil {
		return models.Product{}, models.ProductLocation{}, err
	}

	metrics.ProductsCreated.WithLabelValues(string(loc.Strategy())).Inc()
	s.logger.Info("Product created", map[string]interface{}{
		"productId": product.ID,
		"branchId":  branchID,
		"location":  loc.String(),
	})
	s.publish(ctx, events.NewProductEvent(events.ProductCreated, product, loc, s.now()))
	return product, loc, nil
}

// place writes p to the representation chosen for branch. The embedded
// append is conditional on the list size, so a create that loses a race for
// the last embedded slot lands in the separated store instead.
func (s *Service) place(ctx context.Context, branch models.Branch, p models.Product) (models.ProductLocation, error) {
	if branch.StorageStrategy != models.StrategySeparated &&
		DecideStrategy(branch.EmbeddedCount(), s.embeddedLimit) == models.StrategyEmbedded {
		// embedded products inherit the branch id from their parent record
		_, err := s.branches.AppendEmbeddedProduct(ctx, branch.ID, p.InBranch(""), s.embeddedLimit)
		switch {
		case err == nil:
			return models.EmbeddedIn(branch.ID), nil
		case errors.Is(err, ErrEmbeddedListFull):
			metrics.EmbeddedListFull.Inc()
			s.logger.Warn("Embedded list filled concurrently, storing product separated", map[string]interface{}{
				"branchId":  branch.ID,
				"productId": p.ID,
			})
		default:
			return models.ProductLocation{}, storageErr("appendEmbeddedProduct", err)
		}
	}

	if _, err := s.products.Save(ctx, p); err != nil {
		return models.ProductLocation{}, storageErr("saveProduct", err)
	}
	return models.Separated(branch.ID), nil
}

// GetProduct reads a product from whichever representation holds it.
func (s *Service) GetProduct(ctx context.Context, id string) (models.Product, models.ProductLocation, error) {
	if err := requireID("product id", id); err != nil {
		return models.Product{}, models.ProductLocation{}, err
	}

	p, err := s.products.FindByID(ctx, id)
	if err == nil {
		return p, models.Separated(p.BranchID), nil
	}
	if !apperrors.IsNotFound(err) {
		return models.Product{}, models.ProductLocation{}, storageErr("findProduct", err)
	}

	branch, p, err := s.locateEmbedded(ctx, id)
	if err != nil {
		return models.Product{}, models.ProductLocation{}, err
	}
	return p, models.EmbeddedIn(branch.ID), nil
}

func (s *Service) UpdateProductName(ctx context.Context, id, name string) (models.Product, error) {
	if err := requireID("product id", id); err != nil {
		return models.Product{}, err
	}
	name, err := renameName("product name", name)
	if err != nil {
		return models.Product{}, err
	}

	now := s.now()
	p, loc, err := s.mutate(ctx, "rename", id, func(p models.Product) models.Product {
		return p.Rename(name, now)
	})
	if err != nil {
		return models.Product{}, err
	}
	s.publish(ctx, events.NewProductEvent(events.ProductUpdated, p, loc, now))
	return p, nil
}

func (s *Service) UpdateProductStock(ctx context.Context, id string, stock int) (models.Product, error) {
	if err := requireID("product id", id); err != nil {
		return models.Product{}, err
	}
	if err := requireStock(stock); err != nil {
		return models.Product{}, err
	}

	now := s.now()
	p, loc, err := s.mutate(ctx, "updateStock", id, func(p models.Product) models.Product {
		return p.WithStock(stock, now)
	})
	if err != nil {
		return models.Product{}, err
	}
	s.publish(ctx, events.NewProductEvent(events.ProductUpdated, p, loc, now))
	return p, nil
}

// DeleteProduct removes the product from whichever representation holds it.
// Deleting an unknown product succeeds.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := requireID("product id", id); err != nil {
		return err
	}

	loc, removed, err := s.remove(ctx, id)
	if err != nil {
		return err
	}
	if removed.ID == "" {
		s.logger.Debug("Delete of unknown product ignored", map[string]interface{}{"productId": id})
		return nil
	}

	s.logger.Info("Product deleted", map[string]interface{}{"productId": id, "location": loc.String()})
	s.publish(ctx, events.NewProductEvent(events.ProductDeleted, removed, loc, s.now()))
	return nil
}

// publish is best effort: the mutation is already committed.
func (s *Service) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish product event", map[string]interface{}{
			"eventType": event.Type,
			"productId": event.ProductID,
			"error":     err,
		})
	}
}
