package handlers

import (
	"mercado/internal/repos"
	"mercado/internal/services"

	"go.mongodb.org/mongo-driver/mongo"
)

type Deps struct {
	AuthSvc *services.AuthService

	AuthHandler     *AuthHandler
	UserHandler     *UserHandler
	CategoryHandler *CategoryHandler
	ProductHandler  *ProductHandler
	CartHandler     *CartHandler
	OrderHandler    *OrderHandler
	ReviewHandler   *ReviewHandler
}

func NewDeps(db *mongo.Database) *Deps {
	userRepo := repos.NewUserRepo(db)
	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)
	cartRepo := repos.NewCartRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	reviewRepo := repos.NewReviewRepo(db)

	authSvc := &services.AuthService{Users: userRepo}
	cartSvc := services.NewCartService(cartRepo, prodRepo)
	orderSvc := services.NewOrderService(cartRepo, prodRepo, orderRepo)
	reviewSvc := services.NewReviewService(reviewRepo, orderRepo, prodRepo)

	return &Deps{
		AuthSvc:         authSvc,
		AuthHandler:     &AuthHandler{Auth: authSvc},
		UserHandler:     &UserHandler{Users: userRepo, Carts: cartRepo},
		CategoryHandler: &CategoryHandler{Categories: catRepo},
		ProductHandler:  &ProductHandler{Products: prodRepo, Categories: catRepo},
		CartHandler:     &CartHandler{Cart: cartSvc},
		OrderHandler:    &OrderHandler{Order: orderSvc, Orders: orderRepo, Products: prodRepo, Users: userRepo},
		ReviewHandler:   &ReviewHandler{Review: reviewSvc, Reviews: reviewRepo},
	}
}
