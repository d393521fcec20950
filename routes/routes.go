package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/storefront/controllers"
	"github.com/yashrajoria/storefront/middleware"
)

const LivenessMessage = "Storefront API is Running"

// Handlers bundles the controllers the router dispatches to.
type Handlers struct {
	Products *controllers.ProductController
	Upload   *controllers.UploadController
	Auth     *controllers.AuthController
	Cart     *controllers.CartController
}

// RegisterRoutes mounts every endpoint. authLimiter may be nil.
func RegisterRoutes(r *gin.Engine, h Handlers, tokens middleware.TokenValidator, authLimiter *middleware.RateLimiter) {
	controllers.RegisterValidators()

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, LivenessMessage)
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "service": controllers.ServiceName})
	})

	r.POST("/upload", h.Upload.Upload)

	r.POST("/addproduct", h.Products.AddProduct)
	r.POST("/removeproduct", h.Products.RemoveProduct)
	r.GET("/allproducts", h.Products.AllProducts)

	account := r.Group("/")
	if authLimiter != nil {
		account.Use(authLimiter.Middleware())
	}
	{
		account.POST("/signup", h.Auth.Signup)
		account.POST("/login", h.Auth.Login)
	}

	cart := r.Group("/", middleware.RequireAuth(tokens))
	{
		cart.POST("/addtocart", h.Cart.AddToCart)
		cart.POST("/removefromcart", h.Cart.RemoveFromCart)
		cart.POST("/getcart", h.Cart.GetCart)
	}
}
