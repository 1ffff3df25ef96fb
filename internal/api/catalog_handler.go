package api

import (
	"github.com/labstack/echo/v4"

	"github.com/libreriarexy/libreriarexy/internal/entity"
	"github.com/libreriarexy/libreriarexy/internal/service"
)

type CatalogHandler struct {
	catalog *service.CatalogService
}

func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// redact hides what the principal may not see: prices need an approved
// account, cost is for admins only.
func redact(p entity.Product, cl *service.JwtCustomClaims) entity.Product {
	if cl == nil || !cl.Approved {
		p.Price = 0
	}
	if cl == nil || cl.Role != entity.RoleAdmin {
		p.Cost = 0
	}
	return p
}

// ListProducts serves the public catalog --> GET /products
func (h *CatalogHandler) ListProducts(c echo.Context) error {
	products, err := h.catalog.ListActive(c.Request().Context())
	if err != nil {
		return errorJSON(c, err)
	}
	cl := claims(c)
	out := make([]entity.Product, 0, len(products))
	for _, p := range products {
		out = append(out, redact(p, cl))
	}
	return c.JSON(200, out)
}

// GetProduct serves one product --> GET /products/:id
func (h *CatalogHandler) GetProduct(c echo.Context) error {
	p, err := h.catalog.GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errorJSON(c, err)
	}
	out := redact(*p, claims(c))
	return c.JSON(200, out)
}
