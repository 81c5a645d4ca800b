package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sahilchouksey/mindmeld-api/database"
	"github.com/sahilchouksey/mindmeld-api/handlers"
	activity_handlers "github.com/sahilchouksey/mindmeld-api/handlers/activity"
	auth_handlers "github.com/sahilchouksey/mindmeld-api/handlers/auth"
	cart_handlers "github.com/sahilchouksey/mindmeld-api/handlers/cart"
	category_handlers "github.com/sahilchouksey/mindmeld-api/handlers/category"
	enrollment_handlers "github.com/sahilchouksey/mindmeld-api/handlers/enrollment"
	feedback_handlers "github.com/sahilchouksey/mindmeld-api/handlers/feedback"
	message_handlers "github.com/sahilchouksey/mindmeld-api/handlers/message"
	order_handlers "github.com/sahilchouksey/mindmeld-api/handlers/order"
	product_handlers "github.com/sahilchouksey/mindmeld-api/handlers/product"
	user_handlers "github.com/sahilchouksey/mindmeld-api/handlers/user"
	wishlist_handlers "github.com/sahilchouksey/mindmeld-api/handlers/wishlist"
	"github.com/sahilchouksey/mindmeld-api/services"
	"github.com/sahilchouksey/mindmeld-api/services/storage"
	"github.com/sahilchouksey/mindmeld-api/utils/auth"
	"github.com/sahilchouksey/mindmeld-api/utils/cache"
	"github.com/sahilchouksey/mindmeld-api/utils/middleware"
	"go.uber.org/zap"
)

// Dependencies are the shared components the services are built from
type Dependencies struct {
	Store       database.Storage
	JWT         *auth.JWTManager
	Cache       *cache.RedisCache // nil disables login throttling and the stats cache
	Files       storage.FileStore
	Mailer      services.ResetMailer
	ResetExpiry time.Duration
	Log         *zap.Logger
}

// Services bundles the application services used by routes and background jobs
type Services struct {
	Activities     *services.ActivityService
	Accounts       *services.AccountService
	PasswordResets *services.PasswordResetService
	Users          *services.UserService
	Categories     *services.CategoryService
	Products       *services.ProductService
	Enrollments    *services.EnrollmentService
	Carts          *services.CartService
	Wishlists      *services.WishlistService
	Orders         *services.OrderService
	Feedback       *services.FeedbackService
	Messages       *services.MessageService
	Blacklist      *auth.BlacklistService
}

// NewServices wires every service against the same database handle
func NewServices(d Dependencies) *Services {
	db := d.Store.DB()
	log := d.Log

	var statsCache services.JSONCache
	if d.Cache != nil {
		statsCache = d.Cache
	}

	activities := services.NewActivityService(db, log)
	enrollments := services.NewEnrollmentService(db, activities, log)

	return &Services{
		Activities:     activities,
		Accounts:       services.NewAccountService(db, d.JWT, d.Files, activities, log),
		PasswordResets: services.NewPasswordResetService(db, d.Mailer, activities, d.ResetExpiry, log),
		Users:          services.NewUserService(db, log),
		Categories:     services.NewCategoryService(db, log),
		Products:       services.NewProductService(db, log),
		Enrollments:    enrollments,
		Carts:          services.NewCartService(db, log),
		Wishlists:      services.NewWishlistService(db, log),
		Orders:         services.NewOrderService(db, enrollments, log),
		Feedback:       services.NewFeedbackService(db, activities, statsCache, log),
		Messages:       services.NewMessageService(db, activities, log),
		Blacklist:      auth.NewBlacklistService(db),
	}
}

func SetupRoutes(app *fiber.App, d Dependencies, svc *Services) {
	var bruteForceProtection *middleware.BruteForceProtection
	if d.Cache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(d.Cache)
	} else {
		d.Log.Warn("Redis unavailable, brute force protection disabled")
	}

	authMiddleware := middleware.NewAuthMiddleware(d.JWT, d.Store.DB())
	required := authMiddleware.Required()
	authorize := authMiddleware.Authorize

	authHandler := auth_handlers.NewAuthHandler(svc.Accounts, svc.PasswordResets, bruteForceProtection, d.Log)
	userHandler := user_handlers.NewUserHandler(svc.Users)
	categoryHandler := category_handlers.NewCategoryHandler(svc.Categories)
	productHandler := product_handlers.NewProductHandler(svc.Products)
	enrollmentHandler := enrollment_handlers.NewEnrollmentHandler(svc.Enrollments)
	cartHandler := cart_handlers.NewCartHandler(svc.Carts)
	wishlistHandler := wishlist_handlers.NewWishlistHandler(svc.Wishlists)
	orderHandler := order_handlers.NewOrderHandler(svc.Orders)
	feedbackHandler := feedback_handlers.NewFeedbackHandler(svc.Feedback)
	messageHandler := message_handlers.NewMessageHandler(svc.Messages)
	activityHandler := activity_handlers.NewActivityHandler(svc.Activities)

	// Public endpoints
	app.Get("/", handlers.HandleRoot)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	if local, ok := d.Files.(*storage.LocalFileStore); ok {
		app.Static("/uploads", local.Dir())
	}

	// a nil *RedisCache must not become a non-nil Pinger
	var cachePing handlers.Pinger
	if d.Cache != nil {
		cachePing = d.Cache
	}

	api := app.Group("/api/v1")
	api.Get("/health", handlers.HandleCheckHealth(d.Store, cachePing))

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	authGroup.Post("/refresh", authHandler.Refresh)
	authGroup.Post("/password/forgot", authHandler.ForgotPassword)
	authGroup.Post("/password/verify-otp", authHandler.VerifyOTP)
	authGroup.Post("/password/reset", authHandler.ResetPassword)

	authGroup.Post("/logout", required, authHandler.Logout)
	authGroup.Get("/me", required, authHandler.Me)
	authGroup.Put("/profile", required, authHandler.UpdateProfile)
	authGroup.Post("/change-password", required, authHandler.ChangePassword)
	authGroup.Post("/upload-avatar", required, authHandler.UploadAvatar)
	authGroup.Delete("/upload-avatar", required, authHandler.RemoveAvatar)

	// User administration
	users := api.Group("/users", required)
	users.Get("/", authorize(auth.ResourceUsers, auth.ActionReadAny), userHandler.ListUsers)
	users.Get("/:id", authorize(auth.ResourceUsers, auth.ActionReadAny), userHandler.GetUser)
	users.Put("/:id", authorize(auth.ResourceUsers, auth.ActionWriteAny), userHandler.UpdateUser)
	users.Patch("/:id/role", authorize(auth.ResourceUsers, auth.ActionWriteAny), userHandler.UpdateUserRole)
	users.Delete("/:id", authorize(auth.ResourceUsers, auth.ActionDeleteAny), userHandler.DeleteUser)

	// Catalog
	categories := api.Group("/categories")
	categories.Get("/", categoryHandler.ListCategories)
	categories.Post("/", required, authorize(auth.ResourceCategories, auth.ActionWrite), categoryHandler.CreateCategory)
	categories.Put("/:id", required, authorize(auth.ResourceCategories, auth.ActionWrite), categoryHandler.UpdateCategory)
	categories.Delete("/:id", required, authorize(auth.ResourceCategories, auth.ActionDelete), categoryHandler.DeleteCategory)

	products := api.Group("/products")
	products.Get("/", productHandler.ListProducts)
	products.Get("/:id", productHandler.GetProduct)
	products.Post("/", required, authorize(auth.ResourceProducts, auth.ActionWrite), productHandler.CreateProduct)
	products.Put("/:id", required, authorize(auth.ResourceProducts, auth.ActionWrite), productHandler.UpdateProduct)
	products.Delete("/:id", required, authorize(auth.ResourceProducts, auth.ActionDelete), productHandler.DeleteProduct)

	// Learning
	enrollments := api.Group("/enrollments", required)
	enrollments.Post("/", authorize(auth.ResourceEnrollments, auth.ActionWrite), enrollmentHandler.Enroll)
	enrollments.Get("/", enrollmentHandler.ListEnrollments)
	enrollments.Get("/completed", enrollmentHandler.ListCompleted)
	enrollments.Get("/product/:productId", enrollmentHandler.GetForProduct)
	enrollments.Get("/:id", enrollmentHandler.GetEnrollment)
	enrollments.Put("/:id", authorize(auth.ResourceEnrollments, auth.ActionWrite), enrollmentHandler.UpdateProgress)

	feedback := api.Group("/feedback", required)
	feedback.Post("/", authorize(auth.ResourceFeedback, auth.ActionWrite), feedbackHandler.Submit)
	feedback.Get("/my", feedbackHandler.ListMine)
	feedback.Get("/course/:courseId", feedbackHandler.ListForCourse)
	feedback.Get("/stats", feedbackHandler.Stats)
	feedback.Get("/all", authorize(auth.ResourceFeedback, auth.ActionReadAny), feedbackHandler.ListAll)
	feedback.Delete("/:id", authorize(auth.ResourceFeedback, auth.ActionDeleteAny), feedbackHandler.Delete)

	// Commerce
	cart := api.Group("/cart", required)
	cart.Get("/", cartHandler.GetCart)
	cart.Post("/", cartHandler.AddItem)
	cart.Put("/item", cartHandler.UpdateItem)
	cart.Delete("/item/:productId", cartHandler.RemoveItem)
	cart.Delete("/", cartHandler.ClearCart)

	wishlist := api.Group("/wishlist", required)
	wishlist.Get("/", wishlistHandler.GetWishlist)
	wishlist.Post("/", wishlistHandler.AddProduct)
	wishlist.Delete("/:productId", wishlistHandler.RemoveProduct)

	orders := api.Group("/orders", required)
	orders.Post("/", authorize(auth.ResourceOrders, auth.ActionWrite), orderHandler.CreateOrder)
	orders.Get("/", orderHandler.ListMyOrders)
	orders.Get("/admin", authorize(auth.ResourceOrders, auth.ActionReadAny), orderHandler.ListAllOrders)
	orders.Patch("/:id/status", authorize(auth.ResourceOrders, auth.ActionWriteAny), orderHandler.UpdateStatus)

	// Communication
	messages := api.Group("/messages", required)
	messages.Post("/", authorize(auth.ResourceMessages, auth.ActionWrite), messageHandler.Send)
	messages.Get("/received", messageHandler.ListReceived)
	messages.Get("/sent", messageHandler.ListSent)
	messages.Get("/users", messageHandler.ListRecipients)
	messages.Get("/:id", messageHandler.GetMessage)
	messages.Put("/:id/read", messageHandler.MarkRead)
	messages.Delete("/:id", authorize(auth.ResourceMessages, auth.ActionDelete), messageHandler.DeleteMessage)

	// Audit
	activities := api.Group("/activities", required, authorize(auth.ResourceActivities, auth.ActionReadAny))
	activities.Get("/", activityHandler.ListActivities)
	activities.Get("/stats", activityHandler.Stats)
	activities.Get("/user/:userId", activityHandler.ListUserActivities)
}
