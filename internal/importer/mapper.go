package importer

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/bigkaa/foodcatalog/internal/domain/model"
)

// Ошибки разбора и преобразования записи.
var (
	// ErrMalformedRecord — строка не является JSON-объектом.
	ErrMalformedRecord = errors.New("некорректная JSON-запись")
	// ErrInvalidCode — после удаления нецифровых символов code пуст или не помещается в int64.
	ErrInvalidCode = errors.New("некорректный code")
)

var (
	leadingInt   = regexp.MustCompile(`^[+-]?\d+`)
	leadingFloat = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

// MapRecord преобразует одну сырую JSON-запись в Product.
// importedAt передаётся явно и становится ImportedT.
func MapRecord(raw []byte, importedAt time.Time) (*model.Product, error) {
	if !gjson.ValidBytes(raw) {
		return nil, ErrMalformedRecord
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return nil, ErrMalformedRecord
	}

	code, err := parseCode(doc.Get("code"))
	if err != nil {
		return nil, err
	}

	str := func(field string) string {
		v := doc.Get(field)
		if !v.Exists() || v.Type == gjson.Null {
			return ""
		}
		return v.String()
	}

	return &model.Product{
		Code:            code,
		Status:          model.ProductActive,
		ImportedT:       importedAt,
		URL:             str("url"),
		Creator:         str("creator"),
		CreatedT:        parseInteger(doc.Get("created_t")),
		LastModifiedT:   parseInteger(doc.Get("last_modified_t")),
		ProductName:     str("product_name"),
		Quantity:        str("quantity"),
		Brands:          str("brands"),
		Categories:      str("categories"),
		Labels:          str("labels"),
		Cities:          str("cities"),
		PurchasePlaces:  str("purchase_places"),
		Stores:          str("stores"),
		IngredientsText: str("ingredients_text"),
		Traces:          str("traces"),
		ServingSize:     str("serving_size"),
		ServingQuantity: parseFloat(doc.Get("serving_quantity")),
		NutriscoreScore: parseFloat(doc.Get("nutriscore_score")),
		NutriscoreGrade: str("nutriscore_grade"),
		MainCategory:    str("main_category"),
		ImageURL:        str("image_url"),
	}, nil
}

// parseCode оставляет в значении только цифры и разбирает результат как int64.
func parseCode(v gjson.Result) (int64, error) {
	if !v.Exists() || v.Type == gjson.Null {
		return 0, fmt.Errorf("%w: поле отсутствует", ErrInvalidCode)
	}
	if v.Type == gjson.Number {
		f := v.Float()
		if f != math.Trunc(f) || f < 0 || f >= math.MaxInt64 {
			return 0, fmt.Errorf("%w: %s", ErrInvalidCode, v.Raw)
		}
		return int64(f), nil
	}
	if v.Type != gjson.String {
		return 0, fmt.Errorf("%w: недопустимый тип значения %s", ErrInvalidCode, v.Raw)
	}
	raw := v.Str
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
	if digits == "" {
		return 0, fmt.Errorf("%w: %q не содержит цифр", ErrInvalidCode, raw)
	}
	code, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidCode, raw, err)
	}
	return code, nil
}

// parseInteger разбирает ведущее целое (как parseInt): "1415302075abc" → 1415302075.
// Отсутствующее или нечисловое значение даёт 0.
func parseInteger(v gjson.Result) int64 {
	switch v.Type {
	case gjson.Number:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f <= math.MinInt64 {
			return 0
		}
		return int64(math.Trunc(f))
	case gjson.String:
		m := leadingInt.FindString(strings.TrimSpace(v.Str))
		if m == "" {
			return 0
		}
		n, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// parseFloat разбирает ведущее число с плавающей точкой (как parseFloat),
// при ошибке возвращает 0.
func parseFloat(v gjson.Result) float64 {
	var f float64
	switch v.Type {
	case gjson.Number:
		f = v.Float()
	case gjson.String:
		m := leadingFloat.FindString(strings.TrimSpace(v.Str))
		if m == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
