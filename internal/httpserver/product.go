package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nature-animaux/internal/domain"
)

type variationResponse struct {
	SKU    string `json:"sku"`
	Price  string `json:"price"`
	Weight string `json:"weight"`
	Stock  int    `json:"stock"`
}

type productResponse struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Price       string              `json:"price"`
	ImageURL    string              `json:"image_url,omitempty"`
	Variations  []variationResponse `json:"variations"`
}

func getProductHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := deps.Catalog.FindByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toProductResponse(product))
	}
}

func toProductResponse(p *domain.Product) productResponse {
	variations := make([]variationResponse, 0, len(p.Variations))
	for _, v := range p.Variations {
		variations = append(variations, variationResponse{
			SKU:    v.SKU,
			Price:  v.Price.StringFixed(2),
			Weight: v.Weight.StringFixed(2),
			Stock:  v.Stock,
		})
	}
	return productResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		ImageURL:    p.ImageURL,
		Variations:  variations,
	}
}
