// errors.go — ошибки бизнес-логики сервисного слоя.
package service

import "errors"

var (
	// ErrNotFound — продукт не найден.
	ErrNotFound = errors.New("Product não encontrado")
	// ErrValidation — ошибка валидации входных данных.
	ErrValidation = errors.New("ошибка валидации")
	// ErrImportInProgress — импорт уже выполняется.
	ErrImportInProgress = errors.New("importação já em andamento")
)
