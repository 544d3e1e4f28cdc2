package products

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atlas-erp/atlas/internal/shared"
)

type memoryProductRepo struct {
	products map[int64]Product
	nextID   int64
}

func newMemoryProductRepo() *memoryProductRepo {
	return &memoryProductRepo{products: map[int64]Product{}, nextID: 1}
}

func (m *memoryProductRepo) Get(_ context.Context, id int64) (*Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &p, nil
}

func (m *memoryProductRepo) List(_ context.Context, req ListProductsRequest) ([]Product, int, error) {
	var out []Product
	for _, p := range m.products {
		if req.Category != nil && p.Category != *req.Category {
			continue
		}
		if req.LowStock && !p.IsLowStock() {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (m *memoryProductRepo) ListLowStock(_ context.Context) ([]Product, error) {
	var out []Product
	for _, p := range m.products {
		if p.IsLowStock() {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryProductRepo) Create(_ context.Context, product Product) (int64, error) {
	product.ID = m.nextID
	m.nextID++
	m.products[product.ID] = product
	return product.ID, nil
}

func (m *memoryProductRepo) Update(_ context.Context, product Product) error {
	if _, ok := m.products[product.ID]; !ok {
		return shared.ErrNotFound
	}
	m.products[product.ID] = product
	return nil
}

func (m *memoryProductRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.products[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func TestCreateProduct(t *testing.T) {
	repo := newMemoryProductRepo()
	service := NewService(repo)

	product, err := service.Create(context.Background(), CreateProductRequest{
		Name:              "Steel Bracket",
		Category:          "hardware",
		Price:             150,
		Stock:             40,
		LowStockThreshold: 10,
	}, 7)
	require.NoError(t, err)
	require.Equal(t, int64(1), product.ID)
	require.Equal(t, int64(7), product.CreatedBy)
	require.False(t, product.IsLowStock())
}

func TestCreateProductValidation(t *testing.T) {
	service := NewService(newMemoryProductRepo())

	cases := []struct {
		name string
		req  CreateProductRequest
	}{
		{"missing name", CreateProductRequest{Category: "hardware", Price: 10}},
		{"negative price", CreateProductRequest{Name: "Widget", Category: "hardware", Price: -1}},
		{"negative stock", CreateProductRequest{Name: "Widget", Category: "hardware", Stock: -5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Create(context.Background(), tc.req, 1)
			require.ErrorIs(t, err, shared.ErrValidation)
		})
	}
}

func TestUpdateProductPartial(t *testing.T) {
	repo := newMemoryProductRepo()
	service := NewService(repo)

	created, err := service.Create(context.Background(), CreateProductRequest{
		Name: "Oak Panel", Category: "lumber", Price: 85, Stock: 12, LowStockThreshold: 15,
	}, 1)
	require.NoError(t, err)

	price := 90.0
	updated, err := service.Update(context.Background(), created.ID, UpdateProductRequest{Price: &price})
	require.NoError(t, err)
	require.Equal(t, 90.0, updated.Price)
	require.Equal(t, "Oak Panel", updated.Name)
	require.Equal(t, 12, updated.Stock)
}

func TestUpdateUnknownProduct(t *testing.T) {
	service := NewService(newMemoryProductRepo())

	name := "Ghost"
	_, err := service.Update(context.Background(), 99, UpdateProductRequest{Name: &name})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestLowStockThresholdIsInclusive(t *testing.T) {
	repo := newMemoryProductRepo()
	service := NewService(repo)

	_, err := service.Create(context.Background(), CreateProductRequest{
		Name: "At Threshold", Category: "hardware", Price: 10, Stock: 15, LowStockThreshold: 15,
	}, 1)
	require.NoError(t, err)
	_, err = service.Create(context.Background(), CreateProductRequest{
		Name: "Above Threshold", Category: "hardware", Price: 10, Stock: 16, LowStockThreshold: 15,
	}, 1)
	require.NoError(t, err)

	low, err := service.ListLowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, low, 1)
	require.Equal(t, "At Threshold", low[0].Name)
}
