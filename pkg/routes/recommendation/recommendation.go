package recommendation

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/vtagz/recommendations/pkg/models"
)

// Reader serves the tag recommendation read query.
type Reader interface {
	ProductRecommendationsByTag(ctx context.Context, productTagName string) ([]models.ProductRecommendation, error)
}

// Handler handles recommendation API endpoints
type Handler struct {
	reader Reader
	logger ectologger.Logger
}

// NewHandler creates a new recommendation handler
func NewHandler(reader Reader, logger ectologger.Logger) *Handler {
	return &Handler{
		reader: reader,
		logger: logger,
	}
}

// Register registers the recommendation routes
func (h *Handler) Register(g *echo.Group) {
	g.GET("/recommendations", h.GetByTag)
}

// Response is the recommendation list response body.
type Response struct {
	Products []models.ProductRecommendation `json:"products"`
}

// GetByTag returns the active products tagged with the given name.
func (h *Handler) GetByTag(c echo.Context) error {
	ctx := c.Request().Context()

	tag := c.QueryParam("tag")
	if tag == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "tag is required")
	}

	products, err := h.reader.ProductRecommendationsByTag(ctx, tag)
	if err != nil {
		h.logger.WithContext(ctx).WithError(err).WithField("tag", tag).Error("Failed to read recommendations")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to read recommendations")
	}

	return c.JSON(http.StatusOK, Response{Products: products})
}
