// products.go — обработчики /products.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/oapi-codegen/runtime"

	apierrors "github.com/bigkaa/foodcatalog/internal/api/errors"
	"github.com/bigkaa/foodcatalog/internal/domain/model"
	"github.com/bigkaa/foodcatalog/internal/service"
)

// Сообщения ответов.
const (
	msgProductNotFound = "Product não encontrado"
	msgProductTrashed  = "Product movido para lixeira"
)

// ListProducts — GET /products?page&limit&status.
// Тело — массив продуктов, общее количество в X-Total-Count.
func (h *APIHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, limit, err := bindPagination(r)
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	var rawStatus *string
	if err := runtime.BindQueryParameter("form", true, false, "status", r.URL.Query(), &rawStatus); err != nil {
		apierrors.ValidationError(w, "некорректный параметр status")
		return
	}
	var status *model.ProductStatus
	if rawStatus != nil {
		s := model.ProductStatus(*rawStatus)
		status = &s
	}

	result, err := h.products.List(r.Context(), page, limit, status)
	if err != nil {
		h.writeServiceError(w, err, "Ошибка получения списка продуктов")
		return
	}

	items := result.Items
	if items == nil {
		items = []*model.Product{}
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(result.Total))
	writeJSON(w, http.StatusOK, items)
}

// GetProduct — GET /products/{code}.
func (h *APIHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	code, err := bindCode(r)
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	p, err := h.products.Get(r.Context(), code)
	if err != nil {
		h.writeServiceError(w, err, "Ошибка получения продукта")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdateProduct — PUT /products/{code}. code в теле игнорируется.
func (h *APIHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	code, err := bindCode(r)
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	var upd model.ProductUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON в теле запроса")
		return
	}

	p, err := h.products.Update(r.Context(), code, &upd)
	if err != nil {
		h.writeServiceError(w, err, "Ошибка обновления продукта")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// TrashProduct — DELETE /products/{code}: перевод в status=trash.
func (h *APIHandler) TrashProduct(w http.ResponseWriter, r *http.Request) {
	code, err := bindCode(r)
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	if _, err := h.products.Trash(r.Context(), code); err != nil {
		h.writeServiceError(w, err, "Ошибка перемещения продукта в корзину")
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msgProductTrashed})
}

// writeServiceError отображает ошибку сервисного слоя в HTTP-ответ.
func (h *APIHandler) writeServiceError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		apierrors.NotFound(w, msgProductNotFound)
	case errors.Is(err, service.ErrValidation):
		apierrors.ValidationError(w, err.Error())
	default:
		h.logger.Error(logMsg, slog.String("error", err.Error()))
		apierrors.InternalError(w, err.Error())
	}
}
