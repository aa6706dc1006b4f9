package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"storefront/internal/assistant"
	"storefront/internal/domain"
	"storefront/internal/logging"
	"storefront/internal/repository"
	"storefront/internal/service"
)

// Services are the collaborators a Server dispatches to.
type Services struct {
	Products  *service.ProductService
	Orders    *service.OrderService
	Cart      *service.Cart
	Session   *service.Session
	Assistant *assistant.Service
}

type Server struct {
	engine *gin.Engine
	Services
	log *zap.Logger
}

func NewServer(svc Services, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	r := gin.New()
	r.Use(logging.GinLogger(log), gin.Recovery())
	s := &Server{engine: r, Services: svc, log: log}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	// Swagger UI
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := s.engine.Group("/api/v1")
	{
		v1.GET("/categories", s.listCategories)

		products := v1.Group("/products")
		products.GET("", s.listProducts)
		products.GET(":id", s.getProduct)
		products.POST("", s.createProduct)
		products.PUT(":id", s.updateProduct)
		products.DELETE(":id", s.deleteProduct)

		v1.GET("/seller/products", s.sellerProducts)

		session := v1.Group("/session")
		session.GET("", s.getSession)
		session.POST("/login", s.login)
		session.POST("/logout", s.logout)

		cart := v1.Group("/cart")
		cart.GET("", s.getCart)
		cart.DELETE("", s.clearCart)
		cart.POST("/items", s.addCartItem)
		cart.PUT("/items/:id", s.updateCartItem)
		cart.DELETE("/items/:id", s.removeCartItem)

		v1.POST("/checkout", s.checkout)
		v1.GET("/orders", s.listOrders)

		ai := v1.Group("/assistant")
		ai.POST("/description", s.generateDescription)
		ai.POST("/chat", s.chat)
	}
}

// @Summary List categories
// @Tags products
// @Produce json
// @Success 200 {array} string
// @Router /categories [get]
func (s *Server) listCategories(c *gin.Context) {
	c.JSON(http.StatusOK, domain.Categories)
}

// Product handlers
type productReq struct {
	Title         string  `json:"title"`
	Price         float64 `json:"price"`
	OriginalPrice float64 `json:"originalPrice"`
	Description   string  `json:"description"`
	Category      string  `json:"category"`
	Image         string  `json:"image"`
}

// @Summary Create product
// @Tags products
// @Accept json
// @Produce json
// @Param input body productReq true "Product"
// @Success 201 {object} domain.Product
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /products [post]
func (s *Server) createProduct(c *gin.Context) {
	seller, err := s.Session.RequireRole(domain.RoleSeller)
	if err != nil {
		s.fail(c, err)
		return
	}
	var req productReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	p, err := s.Products.Create(c, seller, domain.Product{
		Title:         req.Title,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		Description:   req.Description,
		Category:      req.Category,
		Image:         req.Image,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// @Summary Get product by id
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} domain.Product
// @Failure 404 {object} map[string]string
// @Router /products/{id} [get]
func (s *Server) getProduct(c *gin.Context) {
	p, err := s.Products.GetByID(c, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Update product
// @Description Replaces the editable fields. Rating, reviews and seller are kept.
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param input body productReq true "Update"
// @Success 200 {object} domain.Product
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /products/{id} [put]
func (s *Server) updateProduct(c *gin.Context) {
	seller, err := s.Session.RequireRole(domain.RoleSeller)
	if err != nil {
		s.fail(c, err)
		return
	}
	var req productReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	existing, err := s.Products.GetByID(c, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if existing.SellerID != seller.ID {
		s.fail(c, service.ErrForbidden)
		return
	}
	next := *existing
	next.Title = req.Title
	next.Price = req.Price
	next.OriginalPrice = req.OriginalPrice
	next.Description = req.Description
	next.Category = req.Category
	if req.Image != "" {
		next.Image = req.Image
	}
	p, err := s.Products.Update(c, next)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Delete product
// @Tags products
// @Param id path string true "Product ID"
// @Success 204
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /products/{id} [delete]
func (s *Server) deleteProduct(c *gin.Context) {
	seller, err := s.Session.RequireRole(domain.RoleSeller)
	if err != nil {
		s.fail(c, err)
		return
	}
	id := c.Param("id")
	existing, err := s.Products.GetByID(c, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		// already gone
	case err != nil:
		s.fail(c, err)
		return
	case existing.SellerID != seller.ID:
		s.fail(c, service.ErrForbidden)
		return
	}
	if err := s.Products.Delete(c, id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary List products
// @Tags products
// @Produce json
// @Param q query string false "Title contains"
// @Param category query string false "Exact category"
// @Param seller_id query string false "Seller tag"
// @Success 200 {array} domain.Product
// @Router /products [get]
func (s *Server) listProducts(c *gin.Context) {
	f := repository.ProductFilter{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		SellerID: c.Query("seller_id"),
	}
	list, err := s.Products.List(c, f)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary List the current seller's products
// @Tags products
// @Produce json
// @Success 200 {array} domain.Product
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /seller/products [get]
func (s *Server) sellerProducts(c *gin.Context) {
	seller, err := s.Session.RequireRole(domain.RoleSeller)
	if err != nil {
		s.fail(c, err)
		return
	}
	list, err := s.Products.List(c, repository.ProductFilter{SellerID: seller.ID})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// fail writes err as a JSON error with the mapped status.
func (s *Server) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrCorrupt):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
