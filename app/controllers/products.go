package controllers

import (
	"errors"

	"github.com/sparkcrackers/storefront/app/models"
	"github.com/sparkcrackers/storefront/app/repositories"
	"github.com/sparkcrackers/storefront/pkg/ctx"
	"github.com/sparkcrackers/storefront/pkg/orm"
)

type ProductController struct {
	products *repositories.ProductRepository
}

func NewProductController(products *repositories.ProductRepository) *ProductController {
	return &ProductController{products: products}
}

// Index handles GET /products?category=&search=.
func (p *ProductController) Index(c *ctx.Context) {
	list, err := p.products.List(c.Context(), models.ProductFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
	})
	if err != nil {
		c.ServerError(err)
		return
	}
	c.OK(list)
}

func (p *ProductController) Show(c *ctx.Context) {
	product, err := p.products.Find(c.Context(), c.Param("id"))
	if errors.Is(err, orm.ErrNotFound) {
		c.NotFound("Product not found")
		return
	}
	if err != nil {
		c.ServerError(err)
		return
	}
	c.OK(product)
}
