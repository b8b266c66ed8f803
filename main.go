package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"cloud.google.com/go/storage"
	"github.com/go-playground/validator/v10"
	"github.com/ostapdev/go-shop/app/cmd"
	"github.com/ostapdev/go-shop/app/configs"
	"github.com/ostapdev/go-shop/app/handlers"
	"github.com/ostapdev/go-shop/app/middlewares"
	"github.com/ostapdev/go-shop/app/repositories"
	"github.com/ostapdev/go-shop/app/routes"
	"github.com/ostapdev/go-shop/app/services"
	"github.com/robfig/cron/v3"
	"github.com/unrolled/render"
)

func main() {
	if len(os.Args) > 1 {
		cmd.RunCli()
		return
	}

	env := configs.LoadEnv()

	db, err := configs.OpenConnection(env)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}
	log.Println("Database connected")

	redisClient, err := configs.OpenRedis(env)
	if err != nil {
		log.Fatal("Redis connection failed:", err)
	}
	log.Println("Redis connected")

	storageClient, err := storage.NewClient(context.Background())
	if err != nil {
		log.Fatal("Storage client failed:", err)
	}

	userRepo := repositories.NewUserRepository(db)
	productRepo := repositories.NewProductRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	orderItemRepo := repositories.NewOrderItemRepository(db)
	favouriteRepo := repositories.NewFavouriteRepository(db)
	commentRepo := repositories.NewCommentRepository(db)
	postRepo := repositories.NewPostRepository(db)

	cache := services.NewRedisCache(redisClient)
	bucket := services.NewBucketService(storageClient, env.BucketName)

	authService := services.NewAuthService(userRepo, []byte(env.JWTSecret))
	productService := services.NewProductService(productRepo, categoryRepo, favouriteRepo, bucket, cache)
	categoryService := services.NewCategoryService(categoryRepo, bucket, cache)
	orderService := services.NewOrderService(db, orderRepo, orderItemRepo, productRepo, userRepo, postRepo, cache)
	favouriteService := services.NewFavouriteService(favouriteRepo, productRepo, cache)
	commentService := services.NewCommentService(commentRepo, productRepo)
	postService := services.NewPostService(postRepo, cache)
	syncService := services.NewPostSyncService(
		services.NewPostClient(env.NPBaseURL, env.NPAPIKey), postRepo, cache)

	rnd := render.New()
	v := validator.New()

	router := routes.NewRouter(routes.Handlers{
		Auth:       handlers.NewAuthHandler(rnd, authService, v),
		Products:   handlers.NewProductHandler(rnd, productService, v),
		Categories: handlers.NewCategoryHandler(rnd, categoryService, v),
		Orders:     handlers.NewOrderHandler(rnd, orderService, v),
		Favourites: handlers.NewFavouriteHandler(rnd, favouriteService, v),
		Comments:   handlers.NewCommentHandler(rnd, commentService, v),
		Posts:      handlers.NewPostHandler(rnd, postService),
	}, middlewares.NewAuthMiddleware(rnd, authService))

	scheduler := cron.New()
	if _, err := scheduler.AddFunc("0 2 * * *", syncService.RunScheduled); err != nil {
		log.Fatal("Failed to schedule directory sync:", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	server := http.Server{
		Addr:    env.Port,
		Handler: router,
	}

	log.Printf("Server starting on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatal("Server stopped:", err)
	}
}
