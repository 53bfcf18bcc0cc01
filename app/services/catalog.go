package services

import (
	"context"
	"net/http"
	"net/url"

	"github.com/sparkcrackers/storefront/app/api"
	"github.com/sparkcrackers/storefront/app/models"
)

// CatalogService reads products. It needs no session.
type CatalogService struct {
	client *api.Client
}

func NewCatalogService(client *api.Client) *CatalogService {
	return &CatalogService{client: client}
}

func (c *CatalogService) List(ctx context.Context, f models.ProductFilter) ([]models.Product, error) {
	var out []models.Product
	err := c.client.Do(ctx, api.Call{
		Method:   http.MethodGet,
		Path:     "/products",
		Query:    map[string]string{"category": f.Category, "search": f.Search},
		Endpoint: "products.list",
		Fallback: "Failed to fetch products",
	}, &out)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Product{}
	}
	return out, nil
}

func (c *CatalogService) Get(ctx context.Context, id string) (models.Product, error) {
	var p models.Product
	err := c.client.Get(ctx, "/products/"+url.PathEscape(id), "products.show", "Product not found", &p)
	return p, err
}
