// params.go — разбор параметров запроса через oapi-codegen runtime.
package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// Значения пагинации по умолчанию.
const (
	defaultPage  = 1
	defaultLimit = 10
)

// bindPagination читает page и limit из query. Отсутствующие — по умолчанию.
func bindPagination(r *http.Request) (page, limit int, err error) {
	query := r.URL.Query()

	// Необязательные параметры связываются через двойной указатель
	var pagePtr, limitPtr *int
	if err := runtime.BindQueryParameter("form", true, false, "page", query, &pagePtr); err != nil {
		return 0, 0, fmt.Errorf("некорректный параметр page: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", query, &limitPtr); err != nil {
		return 0, 0, fmt.Errorf("некорректный параметр limit: %w", err)
	}

	page, limit = defaultPage, defaultLimit
	if pagePtr != nil {
		page = *pagePtr
	}
	if limitPtr != nil {
		limit = *limitPtr
	}
	return page, limit, nil
}

// bindCode читает {code} из пути.
func bindCode(r *http.Request) (int64, error) {
	var code int64
	err := runtime.BindStyledParameterWithOptions("simple", "code", chi.URLParam(r, "code"), &code,
		runtime.BindStyledParameterOptions{
			ParamLocation: runtime.ParamLocationPath,
			Explode:       false,
			Required:      true,
		})
	if err != nil {
		return 0, fmt.Errorf("некорректный code: %w", err)
	}
	if code < 0 {
		return 0, fmt.Errorf("некорректный code: %d", code)
	}
	return code, nil
}
