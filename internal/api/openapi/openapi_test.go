package openapi

import (
	"context"
	"encoding/json"
	"testing"
)

func TestLoad(t *testing.T) {
	doc, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load ошибка: %v", err)
	}

	for _, path := range []string{"/", "/products", "/products/{code}", "/products/import", "/imports"} {
		if doc.Paths.Find(path) == nil {
			t.Errorf("путь %s отсутствует в документе", path)
		}
	}

	item := doc.Paths.Find("/products/{code}")
	if item.Get == nil || item.Put == nil || item.Delete == nil {
		t.Error("/products/{code} должен описывать GET, PUT и DELETE")
	}
}

func TestJSON(t *testing.T) {
	doc, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load ошибка: %v", err)
	}
	data, err := JSON(doc)
	if err != nil {
		t.Fatalf("JSON ошибка: %v", err)
	}

	var parsed map[string]any
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("документ не является JSON: %v", err)
	}
	if parsed["openapi"] != "3.0.3" {
		t.Errorf("openapi = %v", parsed["openapi"])
	}
}
