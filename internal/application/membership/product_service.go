package membership

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/membership"
	"github.com/rinkpass/backend/internal/domain/shared"
)

// ProductService handles membership product use cases
type ProductService struct {
	productRepo membership.ProductRepository
}

// NewProductService creates a new product service
func NewProductService(productRepo membership.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// CreateProduct creates a new membership product
func (s *ProductService) CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	product, err := membership.NewMembershipProduct(
		req.Name,
		req.Description,
		req.Price,
		req.Currency,
		req.AccountCode,
	)
	if err != nil {
		return nil, err
	}

	if req.MinAge != nil || req.MaxAge != nil {
		if err := product.SetAgeLimits(req.MinAge, req.MaxAge); err != nil {
			return nil, err
		}
	}
	if req.AllowInstallments {
		product.EnableInstallments()
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to save product: %w", err)
	}

	response := ToProductResponse(product)
	return &response, nil
}

// GetProduct retrieves a membership product by ID
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// ListProducts retrieves membership products with filtering and pagination
func (s *ProductService) ListProducts(ctx context.Context, filter ProductListFilter) (*shared.Paginated[ProductResponse], error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := membership.ProductFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
		},
		Active: filter.Active,
	}

	products, total, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	result := shared.NewPaginated(ToProductResponses(products), total, filter.Page, filter.PageSize)
	return &result, nil
}

// UpdateProduct updates a product's pricing or age limits
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Price != nil || req.AccountCode != nil {
		price := product.Price
		if req.Price != nil {
			price = *req.Price
		}
		accountCode := product.AccountCode
		if req.AccountCode != nil {
			accountCode = *req.AccountCode
		}
		if err := product.UpdatePricing(price, accountCode); err != nil {
			return nil, err
		}
	}
	if req.MinAge != nil || req.MaxAge != nil {
		minAge := product.MinAge
		if req.MinAge != nil {
			minAge = req.MinAge
		}
		maxAge := product.MaxAge
		if req.MaxAge != nil {
			maxAge = req.MaxAge
		}
		if err := product.SetAgeLimits(minAge, maxAge); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to save product: %w", err)
	}

	response := ToProductResponse(product)
	return &response, nil
}

// ActivateProduct makes a product available for registration
func (s *ProductService) ActivateProduct(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	product.Activate()
	return s.productRepo.Save(ctx, product)
}

// DeactivateProduct hides a product from new registrations
func (s *ProductService) DeactivateProduct(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	product.Deactivate()
	return s.productRepo.Save(ctx, product)
}
