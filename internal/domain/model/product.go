// Пакет model — доменные модели food-catalog.
package model

import "time"

// ProductStatus — статус продукта.
type ProductStatus string

const (
	// ProductActive — продукт опубликован.
	ProductActive ProductStatus = "active"
	// ProductTrash — продукт перемещён в корзину (мягкое удаление).
	ProductTrash ProductStatus = "trash"
)

// Valid проверяет, что статус входит в допустимое множество.
func (s ProductStatus) Valid() bool {
	return s == ProductActive || s == ProductTrash
}

// Product — нормализованная запись продукта.
// Code — уникальный идентификатор, ID — порядок вставки.
type Product struct {
	ID              int64         `json:"-"`
	Code            int64         `json:"code"`
	Status          ProductStatus `json:"status"`
	ImportedT       time.Time     `json:"imported_t"`
	URL             string        `json:"url"`
	Creator         string        `json:"creator"`
	CreatedT        int64         `json:"created_t"`
	LastModifiedT   int64         `json:"last_modified_t"`
	ProductName     string        `json:"product_name"`
	Quantity        string        `json:"quantity"`
	Brands          string        `json:"brands"`
	Categories      string        `json:"categories"`
	Labels          string        `json:"labels"`
	Cities          string        `json:"cities"`
	PurchasePlaces  string        `json:"purchase_places"`
	Stores          string        `json:"stores"`
	IngredientsText string        `json:"ingredients_text"`
	Traces          string        `json:"traces"`
	ServingSize     string        `json:"serving_size"`
	ServingQuantity float64       `json:"serving_quantity"`
	NutriscoreScore float64       `json:"nutriscore_score"`
	NutriscoreGrade string        `json:"nutriscore_grade"`
	MainCategory    string        `json:"main_category"`
	ImageURL        string        `json:"image_url"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// ProductUpdate — частичное обновление продукта (PUT /products/{code}).
// nil-поле не изменяется. Code не обновляется никогда.
type ProductUpdate struct {
	Status          *ProductStatus `json:"status,omitempty"`
	ImportedT       *time.Time     `json:"imported_t,omitempty"`
	URL             *string        `json:"url,omitempty"`
	Creator         *string        `json:"creator,omitempty"`
	CreatedT        *int64         `json:"created_t,omitempty"`
	LastModifiedT   *int64         `json:"last_modified_t,omitempty"`
	ProductName     *string        `json:"product_name,omitempty"`
	Quantity        *string        `json:"quantity,omitempty"`
	Brands          *string        `json:"brands,omitempty"`
	Categories      *string        `json:"categories,omitempty"`
	Labels          *string        `json:"labels,omitempty"`
	Cities          *string        `json:"cities,omitempty"`
	PurchasePlaces  *string        `json:"purchase_places,omitempty"`
	Stores          *string        `json:"stores,omitempty"`
	IngredientsText *string        `json:"ingredients_text,omitempty"`
	Traces          *string        `json:"traces,omitempty"`
	ServingSize     *string        `json:"serving_size,omitempty"`
	ServingQuantity *float64       `json:"serving_quantity,omitempty"`
	NutriscoreScore *float64       `json:"nutriscore_score,omitempty"`
	NutriscoreGrade *string        `json:"nutriscore_grade,omitempty"`
	MainCategory    *string        `json:"main_category,omitempty"`
	ImageURL        *string        `json:"image_url,omitempty"`
}

// IsEmpty возвращает true, если обновление не меняет ни одного поля.
func (u *ProductUpdate) IsEmpty() bool {
	return u.Status == nil && u.ImportedT == nil && u.URL == nil && u.Creator == nil &&
		u.CreatedT == nil && u.LastModifiedT == nil && u.ProductName == nil &&
		u.Quantity == nil && u.Brands == nil && u.Categories == nil && u.Labels == nil &&
		u.Cities == nil && u.PurchasePlaces == nil && u.Stores == nil &&
		u.IngredientsText == nil && u.Traces == nil && u.ServingSize == nil &&
		u.ServingQuantity == nil && u.NutriscoreScore == nil && u.NutriscoreGrade == nil &&
		u.MainCategory == nil && u.ImageURL == nil
}
