// products.go — операции CRUD над каталогом продуктов.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/bigkaa/foodcatalog/internal/domain/model"
	"github.com/bigkaa/foodcatalog/internal/repository"
)

// MaxPageLimit — верхняя граница limit для списков.
const MaxPageLimit = 1000

// ProductPage — страница списка продуктов.
type ProductPage struct {
	Items []*model.Product
	Total int
}

// ProductService — сервис каталога продуктов.
type ProductService struct {
	repo   repository.ProductRepository
	cache  *ProductCache
	logger *slog.Logger
}

// NewProductService создаёт сервис продуктов.
func NewProductService(repo repository.ProductRepository, cache *ProductCache, logger *slog.Logger) *ProductService {
	return &ProductService{
		repo:   repo,
		cache:  cache,
		logger: logger.With(slog.String("component", "product_service")),
	}
}

// List возвращает страницу продуктов в порядке вставки.
// page и limit начинаются с 1; limit больше MaxPageLimit обрезается.
func (s *ProductService) List(ctx context.Context, page, limit int, status *model.ProductStatus) (*ProductPage, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: page должен быть >= 1", ErrValidation)
	}
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit должен быть >= 1", ErrValidation)
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if status != nil && !status.Valid() {
		return nil, fmt.Errorf("%w: недопустимый status %q", ErrValidation, *status)
	}
	offset, err := pageOffset(page, limit)
	if err != nil {
		return nil, err
	}

	items, total, err := s.repo.List(ctx, repository.ListParams{
		Status: status,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("список продуктов: %w", err)
	}
	return &ProductPage{Items: items, Total: total}, nil
}

// Get возвращает продукт по code. Сначала кэш, при промахе — PostgreSQL.
func (s *ProductService) Get(ctx context.Context, code int64) (*model.Product, error) {
	if p, ok := s.cache.Get(code); ok {
		return p, nil
	}

	p, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, s.mapErr(err, "получение продукта")
	}
	s.cache.Set(p)
	return p, nil
}

// Update частично обновляет продукт. code не изменяется.
func (s *ProductService) Update(ctx context.Context, code int64, upd *model.ProductUpdate) (*model.Product, error) {
	if upd.Status != nil && !upd.Status.Valid() {
		return nil, fmt.Errorf("%w: недопустимый status %q", ErrValidation, *upd.Status)
	}

	p, err := s.repo.Update(ctx, code, upd)
	if err != nil {
		return nil, s.mapErr(err, "обновление продукта")
	}
	s.cache.Delete(code)

	s.logger.Info("Продукт обновлён", slog.Int64("code", code))
	return p, nil
}

// Trash переводит продукт в статус trash. Запись не удаляется.
func (s *ProductService) Trash(ctx context.Context, code int64) (*model.Product, error) {
	p, err := s.repo.SoftDelete(ctx, code)
	if err != nil {
		return nil, s.mapErr(err, "перемещение в корзину")
	}
	s.cache.Delete(code)

	s.logger.Info("Продукт перемещён в корзину", slog.Int64("code", code))
	return p, nil
}

func (s *ProductService) mapErr(err error, op string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// pageOffset вычисляет смещение страницы. Смещение, не помещающееся в int, — ошибка валидации.
func pageOffset(page, limit int) (int, error) {
	if page-1 > math.MaxInt/limit {
		return 0, fmt.Errorf("%w: page %d слишком велик", ErrValidation, page)
	}
	return (page - 1) * limit, nil
}
