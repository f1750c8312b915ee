package repository

import (
	"strings"
	"testing"
	"time"

	"github.com/bigkaa/foodcatalog/internal/domain/model"
)

// --- Тесты buildProductWhere ---

func TestBuildProductWhere_Empty(t *testing.T) {
	where, args := buildProductWhere(ListParams{Limit: 10}, 1)
	if where != "" {
		t.Errorf("where = %q, ожидалась пустая строка", where)
	}
	if len(args) != 0 {
		t.Errorf("args count = %d, ожидался 0", len(args))
	}
}

func TestBuildProductWhere_Status(t *testing.T) {
	status := model.ProductTrash
	where, args := buildProductWhere(ListParams{Status: &status}, 1)
	if where != "WHERE status = $1" {
		t.Errorf("where = %q, ожидалось 'WHERE status = $1'", where)
	}
	if len(args) != 1 || args[0] != "trash" {
		t.Errorf("args = %v, ожидался [trash]", args)
	}
}

// --- Тесты buildProductSet ---

func TestBuildProductSet_SingleField(t *testing.T) {
	name := "Milk"
	set, args := buildProductSet(&model.ProductUpdate{ProductName: &name}, 1)

	if set != "product_name = $1, updated_at = NOW()" {
		t.Errorf("set = %q", set)
	}
	if len(args) != 1 || args[0] != "Milk" {
		t.Errorf("args = %v, ожидался [Milk]", args)
	}
}

func TestBuildProductSet_Numbering(t *testing.T) {
	status := model.ProductTrash
	brands := "Acme"
	score := 4.5
	created := int64(1415302075)
	set, args := buildProductSet(&model.ProductUpdate{
		Status:          &status,
		Brands:          &brands,
		NutriscoreScore: &score,
		CreatedT:        &created,
	}, 3)

	for _, want := range []string{"status = $3", "created_t = $4", "brands = $5", "nutriscore_score = $6", "updated_at = NOW()"} {
		if !strings.Contains(set, want) {
			t.Errorf("set = %q, ожидалось содержание %q", set, want)
		}
	}
	if len(args) != 4 {
		t.Fatalf("args count = %d, ожидалось 4", len(args))
	}
	if args[0] != "trash" {
		t.Errorf("args[0] = %v, ожидался trash", args[0])
	}
}

func TestBuildProductSet_AllFields(t *testing.T) {
	s := "x"
	f := 1.0
	i := int64(1)
	st := model.ProductActive
	now := time.Now()
	upd := &model.ProductUpdate{
		Status: &st, ImportedT: &now, URL: &s, Creator: &s, CreatedT: &i, LastModifiedT: &i,
		ProductName: &s, Quantity: &s, Brands: &s, Categories: &s, Labels: &s, Cities: &s,
		PurchasePlaces: &s, Stores: &s, IngredientsText: &s, Traces: &s, ServingSize: &s,
		ServingQuantity: &f, NutriscoreScore: &f, NutriscoreGrade: &s, MainCategory: &s, ImageURL: &s,
	}

	set, args := buildProductSet(upd, 1)

	// Все изменяемые столбцы + updated_at
	if got := strings.Count(set, "="); got != len(productInsertColumns) {
		t.Errorf("количество присваиваний = %d, ожидалось %d", got, len(productInsertColumns))
	}
	if len(args) != len(productInsertColumns)-1 {
		t.Errorf("args count = %d, ожидалось %d", len(args), len(productInsertColumns)-1)
	}
	if strings.Contains(set, "code =") {
		t.Error("code не должен обновляться")
	}
}

func TestInsertValues_Order(t *testing.T) {
	p := &model.Product{Code: 123, ProductName: "Milk", ImageURL: "http://img"}
	vals := insertValues(p)

	if len(vals) != len(productInsertColumns) {
		t.Fatalf("len(values) = %d, ожидалось %d", len(vals), len(productInsertColumns))
	}
	idx := func(col string) int {
		for i, c := range productInsertColumns {
			if c == col {
				return i
			}
		}
		t.Fatalf("столбец %s не найден", col)
		return -1
	}
	if vals[idx("code")] != int64(123) {
		t.Errorf("code = %v", vals[idx("code")])
	}
	if vals[idx("status")] != "active" {
		t.Errorf("status = %v, ожидался active по умолчанию", vals[idx("status")])
	}
	if vals[idx("product_name")] != "Milk" {
		t.Errorf("product_name = %v", vals[idx("product_name")])
	}
	if vals[idx("image_url")] != "http://img" {
		t.Errorf("image_url = %v", vals[idx("image_url")])
	}
}
