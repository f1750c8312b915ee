// Пакет errors — конструкторы ответов с ошибками HTTP API.
// Единый формат: {"message": "...", "code": "..."}.
package errors //nolint:revive // пакет errors, конфликт со stdlib

import (
	"encoding/json"
	"net/http"
)

// Машиночитаемые коды ошибок.
const (
	CodeValidationError  = "VALIDATION_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeImportInProgress = "IMPORT_IN_PROGRESS"
	CodeImportFailed     = "IMPORT_FAILED"
	CodeInternalError    = "INTERNAL_ERROR"
)

// errorBody — тело ответа ошибки.
type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// WriteError записывает ответ ошибки.
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorBody{Message: message, Code: code})
}

// ValidationError — 400 некорректные входные данные.
func ValidationError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeValidationError, message)
}

// NotFound — 404 ресурс не найден.
func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, CodeNotFound, message)
}

// ImportInProgress — 409 импорт уже выполняется.
func ImportInProgress(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, CodeImportInProgress, message)
}

// ImportFailed — 500 запуск импорта завершился ошибкой.
func ImportFailed(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, CodeImportFailed, message)
}

// InternalError — 500 внутренняя ошибка.
func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, CodeInternalError, message)
}
