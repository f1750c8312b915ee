package importer

import (
	"errors"
	"testing"
	"time"

	"github.com/bigkaa/foodcatalog/internal/domain/model"
)

var fixedTime = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func TestMapRecord_Scenario(t *testing.T) {
	p, err := MapRecord([]byte(`{"code": "000123abc", "product_name": "Milk"}`), fixedTime)
	if err != nil {
		t.Fatalf("MapRecord: %v", err)
	}

	if p.Code != 123 {
		t.Errorf("Code = %d, ожидался 123", p.Code)
	}
	if p.ProductName != "Milk" {
		t.Errorf("ProductName = %q, ожидался Milk", p.ProductName)
	}
	if p.ServingQuantity != 0 || p.NutriscoreScore != 0 {
		t.Errorf("числовые поля = %v/%v, ожидались 0", p.ServingQuantity, p.NutriscoreScore)
	}
	if p.Status != model.ProductActive {
		t.Errorf("Status = %q, ожидался active", p.Status)
	}
	if !p.ImportedT.Equal(fixedTime) {
		t.Errorf("ImportedT = %v, ожидалось %v", p.ImportedT, fixedTime)
	}
	if p.Brands != "" || p.ImageURL != "" || p.URL != "" {
		t.Error("отсутствующие строковые поля должны быть пустыми")
	}
	if p.CreatedT != 0 || p.LastModifiedT != 0 {
		t.Errorf("целые поля = %d/%d, ожидались 0", p.CreatedT, p.LastModifiedT)
	}
}

func TestMapRecord_FullRecord(t *testing.T) {
	raw := `{
		"code": "\"0000000000017\"",
		"url": "http://world-en.openfoodfacts.org/product/0000000000017",
		"creator": "kiliweb",
		"created_t": 1529059080,
		"last_modified_t": "1561463718",
		"product_name": "Vitória crackers",
		"quantity": "",
		"brands": null,
		"categories": "",
		"labels": "Sans gluten",
		"cities": "",
		"purchase_places": "",
		"stores": "",
		"ingredients_text": "farine de blé",
		"traces": "",
		"serving_size": "",
		"serving_quantity": "",
		"nutriscore_score": 14,
		"nutriscore_grade": "d",
		"main_category": "en:crackers",
		"image_url": "https://static.openfoodfacts.org/images/products/000/000/000/0017/front_fr.4.400.jpg"
	}`

	p, err := MapRecord([]byte(raw), fixedTime)
	if err != nil {
		t.Fatalf("MapRecord: %v", err)
	}
	if p.Code != 17 {
		t.Errorf("Code = %d, ожидался 17", p.Code)
	}
	if p.CreatedT != 1529059080 {
		t.Errorf("CreatedT = %d", p.CreatedT)
	}
	if p.LastModifiedT != 1561463718 {
		t.Errorf("LastModifiedT = %d (строковое значение)", p.LastModifiedT)
	}
	if p.Brands != "" {
		t.Errorf("Brands = %q, null должен стать пустой строкой", p.Brands)
	}
	if p.ProductName != "Vitória crackers" {
		t.Errorf("ProductName = %q", p.ProductName)
	}
	if p.ServingQuantity != 0 {
		t.Errorf("ServingQuantity = %v, пустая строка должна стать 0", p.ServingQuantity)
	}
	if p.NutriscoreScore != 14 {
		t.Errorf("NutriscoreScore = %v, ожидалось 14", p.NutriscoreScore)
	}
	if p.NutriscoreGrade != "d" || p.MainCategory != "en:crackers" || p.Creator != "kiliweb" {
		t.Errorf("строковые поля не перенесены: %+v", p)
	}
}

func TestMapRecord_InvalidCode(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"нет цифр", `{"code": "abc"}`},
		{"пустая строка", `{"code": ""}`},
		{"поле отсутствует", `{"product_name": "Milk"}`},
		{"null", `{"code": null}`},
		{"переполнение", `{"code": "99999999999999999999999"}`},
		{"дробное число", `{"code": 12.5}`},
		{"отрицательное число", `{"code": -1}`},
		{"объект", `{"code": {"x": "12"}}`},
		{"массив", `{"code": ["7", 8]}`},
		{"булево", `{"code": true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MapRecord([]byte(tt.raw), fixedTime)
			if !errors.Is(err, ErrInvalidCode) {
				t.Errorf("err = %v, ожидался ErrInvalidCode", err)
			}
		})
	}
}

func TestMapRecord_NumericCode(t *testing.T) {
	p, err := MapRecord([]byte(`{"code": 7891000100103}`), fixedTime)
	if err != nil {
		t.Fatalf("MapRecord: %v", err)
	}
	if p.Code != 7891000100103 {
		t.Errorf("Code = %d", p.Code)
	}
}

func TestMapRecord_Malformed(t *testing.T) {
	for _, raw := range []string{`{"code": "1"`, `not json`, `[1,2,3]`, `"string"`} {
		if _, err := MapRecord([]byte(raw), fixedTime); !errors.Is(err, ErrMalformedRecord) {
			t.Errorf("MapRecord(%q): err = %v, ожидался ErrMalformedRecord", raw, err)
		}
	}
}

func TestMapRecord_NumericCoercion(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantInt   int64
		wantFloat float64
	}{
		{"ведущие цифры", `{"code":"1","created_t":"123abc","serving_quantity":"12.5g"}`, 123, 12.5},
		{"пробелы", `{"code":"1","created_t":"  42","serving_quantity":"  .5"}`, 42, 0.5},
		{"нечисловые", `{"code":"1","created_t":"abc","serving_quantity":"abc"}`, 0, 0},
		{"дробное целое", `{"code":"1","created_t":1.9,"serving_quantity":3}`, 1, 3},
		{"экспонента", `{"code":"1","created_t":"-7","serving_quantity":"1e3"}`, -7, 1000},
		{"булево", `{"code":"1","created_t":true,"serving_quantity":false}`, 0, 0},
		{"объект", `{"code":"1","created_t":{},"serving_quantity":[]}`, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := MapRecord([]byte(tt.raw), fixedTime)
			if err != nil {
				t.Fatalf("MapRecord: %v", err)
			}
			if p.CreatedT != tt.wantInt {
				t.Errorf("CreatedT = %d, ожидалось %d", p.CreatedT, tt.wantInt)
			}
			if p.ServingQuantity != tt.wantFloat {
				t.Errorf("ServingQuantity = %v, ожидалось %v", p.ServingQuantity, tt.wantFloat)
			}
		})
	}
}
