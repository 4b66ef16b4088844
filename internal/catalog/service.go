package catalog

import "context"

// RepositoryPort abstracts catalog persistence for the service.
type RepositoryPort interface {
	Product(ctx context.Context, id int64) (Product, error)
	VariantIDs(ctx context.Context, productID int64) ([]int64, error)
	StockableProductIDs(ctx context.Context) ([]int64, error)
	Suppliers(ctx context.Context, productID int64) ([]SupplierInfo, error)
}

// Service exposes catalog reads to the forecasting and reorder modules.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Product fetches a variant by id.
func (s *Service) Product(ctx context.Context, id int64) (Product, error) {
	return s.repo.Product(ctx, id)
}

// VariantIDs expands a product to all variants of its template.
func (s *Service) VariantIDs(ctx context.Context, productID int64) ([]int64, error) {
	return s.repo.VariantIDs(ctx, productID)
}

// StockableProductIDs lists every stockable variant.
func (s *Service) StockableProductIDs(ctx context.Context) ([]int64, error) {
	return s.repo.StockableProductIDs(ctx)
}

// Suppliers returns the supplier price list, default supplier first.
func (s *Service) Suppliers(ctx context.Context, productID int64) ([]SupplierInfo, error) {
	return s.repo.Suppliers(ctx, productID)
}

// SupplierPrice resolves the unit price negotiated with the given supplier.
// Missing price list entries resolve to zero.
func (s *Service) SupplierPrice(ctx context.Context, productID, supplierID int64) (float64, error) {
	infos, err := s.repo.Suppliers(ctx, productID)
	if err != nil {
		return 0, err
	}
	for _, info := range infos {
		if info.SupplierID == supplierID {
			return info.Price, nil
		}
	}
	return 0, nil
}
