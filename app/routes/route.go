package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/ostapdev/go-shop/app/handlers"
	"github.com/ostapdev/go-shop/app/middlewares"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Products   *handlers.ProductHandler
	Categories *handlers.CategoryHandler
	Orders     *handlers.OrderHandler
	Favourites *handlers.FavouriteHandler
	Comments   *handlers.CommentHandler
	Posts      *handlers.PostHandler
}

func NewRouter(h Handlers, auth *middlewares.AuthMiddleware) *mux.Router {
	router := mux.NewRouter()

	optional := func(fn http.HandlerFunc) http.Handler { return auth.Optional(fn) }
	required := func(fn http.HandlerFunc) http.Handler { return auth.Required(fn) }
	admin := func(fn http.HandlerFunc) http.Handler { return auth.AdminOnly(fn) }

	router.HandleFunc("/auth/register", h.Auth.Register).Methods("POST")
	router.HandleFunc("/auth/login", h.Auth.Login).Methods("POST")
	router.HandleFunc("/auth/google", h.Auth.LoginGoogle).Methods("POST")
	router.Handle("/user/me", required(h.Auth.Me)).Methods("GET")
	router.Handle("/user/me", required(h.Auth.UpdateMe)).Methods("PATCH")
	router.Handle("/user/password", required(h.Auth.ChangePassword)).Methods("PATCH")

	router.Handle("/product", optional(h.Products.List)).Methods("GET")
	router.Handle("/product", admin(h.Products.Create)).Methods("POST")
	router.Handle("/product/{id}", optional(h.Products.Get)).Methods("GET")
	router.Handle("/product/{id}", admin(h.Products.Update)).Methods("PATCH")
	router.Handle("/product/{id}/archive", admin(h.Products.Archive)).Methods("PATCH")
	router.Handle("/product/{id}/unarchive", admin(h.Products.Unarchive)).Methods("PATCH")

	router.HandleFunc("/category", h.Categories.List).Methods("GET")
	router.Handle("/category", admin(h.Categories.Create)).Methods("POST")
	router.Handle("/category/{id}", admin(h.Categories.Update)).Methods("PATCH")
	router.Handle("/category/{id}", admin(h.Categories.Delete)).Methods("DELETE")

	router.Handle("/order/current", required(h.Orders.Current)).Methods("GET")
	router.Handle("/order", required(h.Orders.List)).Methods("GET")
	router.Handle("/order/add-item", required(h.Orders.AddItem)).Methods("PATCH")
	router.Handle("/order/remove-item", required(h.Orders.RemoveItem)).Methods("PATCH")
	router.Handle("/order/clear", required(h.Orders.Clear)).Methods("PATCH")
	router.Handle("/order/send", required(h.Orders.Send)).Methods("PATCH")
	router.HandleFunc("/order/unauth", h.Orders.CreateUnauth).Methods("POST")
	router.Handle("/order/cancel/{id}", required(h.Orders.Cancel)).Methods("PATCH")
	router.Handle("/order/complete/{id}", admin(h.Orders.Complete)).Methods("PATCH")
	router.Handle("/order/{id}", required(h.Orders.Get)).Methods("GET")
	router.Handle("/order/{id}", required(h.Orders.Update)).Methods("PATCH")

	router.Handle("/favourite", required(h.Favourites.List)).Methods("GET")
	router.Handle("/favourite/add", required(h.Favourites.Add)).Methods("PATCH")
	router.Handle("/favourite/remove", required(h.Favourites.Remove)).Methods("PATCH")

	router.HandleFunc("/product/{productId}/comment", h.Comments.List).Methods("GET")
	router.Handle("/product/{productId}/comment", required(h.Comments.Create)).Methods("POST")
	router.Handle("/product/{productId}/comment/{commentId}", required(h.Comments.Delete)).Methods("DELETE")

	router.HandleFunc("/post/regions", h.Posts.Regions).Methods("GET")
	router.HandleFunc("/post/regions/{regionId}/settlements", h.Posts.Settlements).Methods("GET")
	router.HandleFunc("/post/settlements/{settlementId}/offices", h.Posts.Offices).Methods("GET")

	return router
}
