package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/foodcatalog/internal/domain/model"
)

// productColumns — список столбцов таблицы products для SELECT/RETURNING.
const productColumns = `id, code, status, imported_t, url, creator, created_t, last_modified_t,
	product_name, quantity, brands, categories, labels, cities, purchase_places, stores,
	ingredients_text, traces, serving_size, serving_quantity, nutriscore_score,
	nutriscore_grade, main_category, image_url, created_at, updated_at`

// productInsertColumns — столбцы, заполняемые при вставке.
// id, created_at и updated_at берутся из DEFAULT.
var productInsertColumns = []string{
	"code", "status", "imported_t", "url", "creator", "created_t", "last_modified_t",
	"product_name", "quantity", "brands", "categories", "labels", "cities", "purchase_places", "stores",
	"ingredients_text", "traces", "serving_size", "serving_quantity", "nutriscore_score",
	"nutriscore_grade", "main_category", "image_url",
}

// ListParams — параметры постраничного списка продуктов.
type ListParams struct {
	// Status — фильтр по статусу (nil = все статусы)
	Status *model.ProductStatus
	// Limit — количество записей
	Limit int
	// Offset — смещение
	Offset int
}

// ProductRepository — интерфейс доступа к каталогу продуктов.
type ProductRepository interface {
	// GetByCode возвращает продукт по code или ErrNotFound.
	GetByCode(ctx context.Context, code int64) (*model.Product, error)
	// List возвращает страницу продуктов в порядке вставки и общее количество.
	List(ctx context.Context, params ListParams) ([]*model.Product, int, error)
	// Update частично обновляет продукт и возвращает новое состояние.
	Update(ctx context.Context, code int64, upd *model.ProductUpdate) (*model.Product, error)
	// SoftDelete переводит продукт в статус trash.
	SoftDelete(ctx context.Context, code int64) (*model.Product, error)
	// InsertMany вставляет пакет одной командой COPY: либо все записи, либо ни одной.
	InsertMany(ctx context.Context, products []*model.Product) (int64, error)
}

// productRepo — реализация ProductRepository через pgx.
type productRepo struct {
	db DBTX
}

// NewProductRepository создаёт репозиторий продуктов.
func NewProductRepository(db DBTX) ProductRepository {
	return &productRepo{db: db}
}

// Create вставляет продукт и заполняет ID, CreatedAt, UpdatedAt.
// Дубликат code — ErrConflict. Используется для подготовки данных в
// интеграционных тестах; импорт вставляет только через InsertMany.
func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	placeholders := make([]string, len(productInsertColumns))
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf(
		`INSERT INTO products (%s) VALUES (%s) RETURNING id, created_at, updated_at`,
		strings.Join(productInsertColumns, ", "), strings.Join(placeholders, ", "),
	)

	err := r.db.QueryRow(ctx, query, insertValues(p)...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: code %d", ErrConflict, p.Code)
		}
		return fmt.Errorf("ошибка создания продукта: %w", err)
	}
	return nil
}

// GetByCode возвращает продукт по code или ErrNotFound.
func (r *productRepo) GetByCode(ctx context.Context, code int64) (*model.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE code = $1`, productColumns)

	p, err := scanProduct(r.db.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения продукта: %w", err)
	}
	return p, nil
}

// List возвращает продукты в порядке вставки (ORDER BY id) с пагинацией.
func (r *productRepo) List(ctx context.Context, params ListParams) ([]*model.Product, int, error) {
	where, args := buildProductWhere(params, 1)
	argNum := len(args) + 1

	dataQuery := fmt.Sprintf(
		`SELECT %s FROM products %s ORDER BY id ASC LIMIT $%d OFFSET $%d`,
		productColumns, where, argNum, argNum+1,
	)
	dataArgs := append(append([]any{}, args...), params.Limit, params.Offset)

	rows, err := r.db.Query(ctx, dataQuery, dataArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка продуктов: %w", err)
	}
	defer rows.Close()

	result := make([]*model.Product, 0, params.Limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования продукта: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ошибка итерации результатов: %w", err)
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM products %s`, where)
	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта продуктов: %w", err)
	}

	return result, total, nil
}

// Update применяет частичное обновление. Пустое обновление возвращает текущее состояние.
func (r *productRepo) Update(ctx context.Context, code int64, upd *model.ProductUpdate) (*model.Product, error) {
	if upd == nil || upd.IsEmpty() {
		return r.GetByCode(ctx, code)
	}

	set, args := buildProductSet(upd, 1)
	query := fmt.Sprintf(
		`UPDATE products SET %s WHERE code = $%d RETURNING %s`,
		set, len(args)+1, productColumns,
	)
	args = append(args, code)

	p, err := scanProduct(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка обновления продукта: %w", err)
	}
	return p, nil
}

// SoftDelete переводит продукт в статус trash. Запись не удаляется.
func (r *productRepo) SoftDelete(ctx context.Context, code int64) (*model.Product, error) {
	query := fmt.Sprintf(`
		UPDATE products
		SET status = 'trash', updated_at = NOW()
		WHERE code = $1
		RETURNING %s`, productColumns)

	p, err := scanProduct(r.db.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка перемещения продукта в корзину: %w", err)
	}
	return p, nil
}

// InsertMany вставляет пакет через COPY. Нарушение уникальности code
// отменяет всю команду и возвращается как ErrConflict.
func (r *productRepo) InsertMany(ctx context.Context, products []*model.Product) (int64, error) {
	if len(products) == 0 {
		return 0, nil
	}

	n, err := r.db.CopyFrom(ctx,
		pgx.Identifier{"products"},
		productInsertColumns,
		pgx.CopyFromSlice(len(products), func(i int) ([]any, error) {
			return insertValues(products[i]), nil
		}),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return 0, fmt.Errorf("ошибка массовой вставки продуктов: %w", err)
	}
	return n, nil
}

// insertValues возвращает значения в порядке productInsertColumns.
func insertValues(p *model.Product) []any {
	status := p.Status
	if status == "" {
		status = model.ProductActive
	}
	return []any{
		p.Code, string(status), p.ImportedT, p.URL, p.Creator, p.CreatedT, p.LastModifiedT,
		p.ProductName, p.Quantity, p.Brands, p.Categories, p.Labels, p.Cities, p.PurchasePlaces, p.Stores,
		p.IngredientsText, p.Traces, p.ServingSize, p.ServingQuantity, p.NutriscoreScore,
		p.NutriscoreGrade, p.MainCategory, p.ImageURL,
	}
}

// scanProduct читает строку в порядке productColumns.
func scanProduct(row pgx.Row) (*model.Product, error) {
	p := &model.Product{}
	var status string
	err := row.Scan(
		&p.ID, &p.Code, &status, &p.ImportedT, &p.URL, &p.Creator, &p.CreatedT, &p.LastModifiedT,
		&p.ProductName, &p.Quantity, &p.Brands, &p.Categories, &p.Labels, &p.Cities, &p.PurchasePlaces, &p.Stores,
		&p.IngredientsText, &p.Traces, &p.ServingSize, &p.ServingQuantity, &p.NutriscoreScore,
		&p.NutriscoreGrade, &p.MainCategory, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Status = model.ProductStatus(status)
	return p, nil
}

// buildProductWhere строит WHERE-условие для списка продуктов.
// startArg — номер первого $-параметра.
func buildProductWhere(params ListParams, startArg int) (whereClause string, args []any) {
	if params.Status == nil {
		return "", nil
	}
	return fmt.Sprintf("WHERE status = $%d", startArg), []any{string(*params.Status)}
}

// buildProductSet строит SET-часть UPDATE из заданных полей обновления.
// Столбцы берутся только из фиксированного списка, updated_at обновляется всегда.
func buildProductSet(upd *model.ProductUpdate, startArg int) (setClause string, args []any) {
	var sets []string
	argNum := startArg

	add := func(column string, value any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argNum))
		args = append(args, value)
		argNum++
	}

	if upd.Status != nil {
		add("status", string(*upd.Status))
	}
	if upd.ImportedT != nil {
		add("imported_t", *upd.ImportedT)
	}
	addString := func(column string, value *string) {
		if value != nil {
			add(column, *value)
		}
	}
	addString("url", upd.URL)
	addString("creator", upd.Creator)
	if upd.CreatedT != nil {
		add("created_t", *upd.CreatedT)
	}
	if upd.LastModifiedT != nil {
		add("last_modified_t", *upd.LastModifiedT)
	}
	addString("product_name", upd.ProductName)
	addString("quantity", upd.Quantity)
	addString("brands", upd.Brands)
	addString("categories", upd.Categories)
	addString("labels", upd.Labels)
	addString("cities", upd.Cities)
	addString("purchase_places", upd.PurchasePlaces)
	addString("stores", upd.Stores)
	addString("ingredients_text", upd.IngredientsText)
	addString("traces", upd.Traces)
	addString("serving_size", upd.ServingSize)
	if upd.ServingQuantity != nil {
		add("serving_quantity", *upd.ServingQuantity)
	}
	if upd.NutriscoreScore != nil {
		add("nutriscore_score", *upd.NutriscoreScore)
	}
	addString("nutriscore_grade", upd.NutriscoreGrade)
	addString("main_category", upd.MainCategory)
	addString("image_url", upd.ImageURL)

	sets = append(sets, "updated_at = NOW()")
	return strings.Join(sets, ", "), args
}
