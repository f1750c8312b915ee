// handler.go — основной обработчик HTTP API: маршруты и общие помощники.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/foodcatalog/internal/domain/model"
	"github.com/bigkaa/foodcatalog/internal/service"
)

// ProductService — операции над каталогом продуктов.
type ProductService interface {
	List(ctx context.Context, page, limit int, status *model.ProductStatus) (*service.ProductPage, error)
	Get(ctx context.Context, code int64) (*model.Product, error)
	Update(ctx context.Context, code int64, upd *model.ProductUpdate) (*model.Product, error)
	Trash(ctx context.Context, code int64) (*model.Product, error)
}

// ImportService — запуск импорта и журнал.
type ImportService interface {
	RunNow(ctx context.Context) (*model.RunOutcome, error)
	History(ctx context.Context, page, limit int) (*service.HistoryPage, error)
}

// StatusService — сводное состояние сервиса.
type StatusService interface {
	Status(ctx context.Context) *service.StatusReport
}

// APIHandler — обработчик HTTP API Food Catalog.
type APIHandler struct {
	health   *HealthHandler
	products ProductService
	imports  ImportService
	status   StatusService
	openapi  []byte
	logger   *slog.Logger
}

// NewAPIHandler создаёт обработчик API.
// openapiJSON — документ, отдаваемый на GET /openapi.json.
func NewAPIHandler(
	health *HealthHandler,
	products ProductService,
	imports ImportService,
	status StatusService,
	openapiJSON []byte,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		health:   health,
		products: products,
		imports:  imports,
		status:   status,
		openapi:  openapiJSON,
		logger:   logger.With(slog.String("component", "api_handler")),
	}
}

// Mount регистрирует маршруты API в роутере.
func (h *APIHandler) Mount(r chi.Router) {
	r.Get("/", h.GetStatus)

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Post("/import", h.RunImport)
		r.Get("/{code}", h.GetProduct)
		r.Put("/{code}", h.UpdateProduct)
		r.Delete("/{code}", h.TrashProduct)
	})
	r.Get("/imports", h.ListImports)

	r.Get("/health/live", h.health.HealthLive)
	r.Get("/health/ready", h.health.HealthReady)
	r.Get("/metrics", h.health.GetMetrics)
	r.Get("/openapi.json", h.GetOpenAPI)
}

// GetOpenAPI — встроенный OpenAPI-документ.
func (h *APIHandler) GetOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.openapi)
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// messageResponse — ответ из одного сообщения.
type messageResponse struct {
	Message string `json:"message"`
}
