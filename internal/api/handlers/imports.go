// imports.go — обработчики импорта и журнала импорта.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	apierrors "github.com/bigkaa/foodcatalog/internal/api/errors"
	"github.com/bigkaa/foodcatalog/internal/domain/model"
	"github.com/bigkaa/foodcatalog/internal/service"
)

const msgImportDone = "Teste de imortação realizado com sucesso!"

// importResponse — ответ успешного ручного запуска.
type importResponse struct {
	Message string            `json:"message"`
	Outcome *model.RunOutcome `json:"outcome"`
}

// RunImport — POST /products/import. Выполняет импорт синхронно.
// 200 — успех, 500 — запуск завершился ошибкой, 409 — импорт уже идёт.
func (h *APIHandler) RunImport(w http.ResponseWriter, r *http.Request) {
	out, err := h.imports.RunNow(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrImportInProgress) {
			apierrors.ImportInProgress(w, err.Error())
			return
		}
		h.logger.Error("Ошибка запуска импорта", slog.String("error", err.Error()))
		apierrors.InternalError(w, err.Error())
		return
	}

	if !out.Succeeded() {
		apierrors.ImportFailed(w, out.Detail)
		return
	}
	writeJSON(w, http.StatusOK, importResponse{Message: msgImportDone, Outcome: out})
}

// ListImports — GET /imports?page&limit, новые записи первыми.
func (h *APIHandler) ListImports(w http.ResponseWriter, r *http.Request) {
	page, limit, err := bindPagination(r)
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	result, err := h.imports.History(r.Context(), page, limit)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			apierrors.ValidationError(w, err.Error())
			return
		}
		h.logger.Error("Ошибка чтения журнала импорта", slog.String("error", err.Error()))
		apierrors.InternalError(w, err.Error())
		return
	}

	items := result.Items
	if items == nil {
		items = []*model.ImportHistoryEntry{}
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(result.Total))
	writeJSON(w, http.StatusOK, items)
}
