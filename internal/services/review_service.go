package services

import (
	"context"
	"math"

	"mercado/internal/domain"
	applog "mercado/internal/log"
	"mercado/internal/validate"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReviewStore interface {
	Insert(ctx context.Context, rv domain.Review) (domain.Review, error)
	Get(ctx context.Context, id primitive.ObjectID) (*domain.Review, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*domain.Review, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Summary(ctx context.Context, product primitive.ObjectID) (domain.RatingSummary, error)
}

// PurchaseChecker answers the review-eligibility question.
type PurchaseChecker interface {
	HasPurchase(ctx context.Context, user, product primitive.ObjectID) (bool, error)
}

// RatingWriter persists the denormalized (avg, count) summary on a product.
type RatingWriter interface {
	SetRating(ctx context.Context, id primitive.ObjectID, avg float64, count int) error
}

type ReviewService struct {
	Reviews ReviewStore
	Orders  PurchaseChecker
	Prods   RatingWriter
}

func NewReviewService(reviews ReviewStore, orders PurchaseChecker, prods RatingWriter) *ReviewService {
	return &ReviewService{Reviews: reviews, Orders: orders, Prods: prods}
}

// Create inserts a review if the author bought the product (any order of a
// status other than cancelled counts). One review per (user, product).
func (s *ReviewService) Create(ctx context.Context, user, product primitive.ObjectID, rating int, comment string) (domain.Review, error) {
	if !validate.Rating(rating) {
		return domain.Review{}, domain.ErrInvalidRating
	}
	bought, err := s.Orders.HasPurchase(ctx, user, product)
	if err != nil {
		return domain.Review{}, err
	}
	if !bought {
		return domain.Review{}, domain.ErrNotEligible
	}

	rv, err := s.Reviews.Insert(ctx, domain.Review{User: user, Product: product, Rating: rating, Comment: comment})
	if err != nil {
		return domain.Review{}, err
	}
	s.Recompute(ctx, product)
	return rv, nil
}

// Update edits rating and/or comment. Only the author or an admin may edit.
func (s *ReviewService) Update(ctx context.Context, id primitive.ObjectID, actor *domain.User, rating *int, comment *string) (*domain.Review, error) {
	rv, err := s.Reviews.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rv.User != actor.ID && actor.Role != "admin" {
		return nil, domain.ErrForbidden
	}

	set := bson.M{}
	if rating != nil {
		if !validate.Rating(*rating) {
			return nil, domain.ErrInvalidRating
		}
		set["rating"] = *rating
	}
	if comment != nil {
		set["comment"] = *comment
	}
	if len(set) == 0 {
		return rv, nil
	}

	updated, err := s.Reviews.Update(ctx, id, set)
	if err != nil {
		return nil, err
	}
	s.Recompute(ctx, rv.Product)
	return updated, nil
}

func (s *ReviewService) Delete(ctx context.Context, id primitive.ObjectID, actor *domain.User) error {
	rv, err := s.Reviews.Get(ctx, id)
	if err != nil {
		return err
	}
	if rv.User != actor.ID && actor.Role != "admin" {
		return domain.ErrForbidden
	}
	if err := s.Reviews.Delete(ctx, id); err != nil {
		return err
	}
	s.Recompute(ctx, rv.Product)
	return nil
}

// Recompute rebuilds the product's denormalized rating summary from the
// reviews collection: arithmetic mean rounded to two decimals, plus count.
// It is idempotent and best-effort: a failure is logged, never propagated,
// so the triggering review mutation still succeeds. The next successful
// mutation corrects the summary.
func (s *ReviewService) Recompute(ctx context.Context, product primitive.ObjectID) {
	sum, err := s.Reviews.Summary(ctx, product)
	if err == nil {
		err = s.Prods.SetRating(ctx, product, math.Round(sum.Avg*100)/100, sum.Count)
	}
	if err != nil {
		applog.Error(nil, "review.recompute_rating", err, map[string]any{"product": product.Hex()})
	}
}
