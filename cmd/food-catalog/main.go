// Точка входа Food Catalog — каталог продуктов с ежедневным импортом
// из Open Food Facts.
//
// Команды:
//
//	food-catalog serve    — HTTP API, планировщик импорта, мониторинг зависимостей
//	food-catalog import   — один запуск импорта (код выхода 1 при неудаче)
//	food-catalog migrate  — применение миграций БД
//	food-catalog version  — версия
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
