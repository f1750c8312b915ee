// Пакет service — бизнес-логика каталога продуктов.
// ProductCache — LRU-кэш продуктов по code с TTL.
package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/foodcatalog/internal/domain/model"
)

// Prometheus-метрики кэша.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fc_cache_hits_total",
		Help: "Общее количество попаданий в LRU-кэш продуктов.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fc_cache_misses_total",
		Help: "Общее количество промахов LRU-кэша продуктов.",
	})
)

// ProductCache — кэш GET /products/{code}. Импорт кэш не трогает:
// новые code в кэше отсутствуют по определению.
type ProductCache struct {
	cache *expirable.LRU[int64, *model.Product]
}

// NewProductCache создаёт кэш. maxSize <= 0 отключает кэширование.
func NewProductCache(maxSize int, ttl time.Duration) *ProductCache {
	if maxSize <= 0 {
		return &ProductCache{}
	}
	return &ProductCache{cache: expirable.NewLRU[int64, *model.Product](maxSize, nil, ttl)}
}

// Get возвращает продукт из кэша.
func (c *ProductCache) Get(code int64) (*model.Product, bool) {
	if c.cache == nil {
		return nil, false
	}
	p, ok := c.cache.Get(code)
	if ok {
		cacheHitsTotal.Inc()
		return p, true
	}
	cacheMissesTotal.Inc()
	return nil, false
}

// Set добавляет или обновляет запись.
func (c *ProductCache) Set(p *model.Product) {
	if c.cache == nil {
		return
	}
	c.cache.Add(p.Code, p)
}

// Delete инвалидирует запись после изменения продукта.
func (c *ProductCache) Delete(code int64) {
	if c.cache == nil {
		return
	}
	c.cache.Remove(code)
}

// Len — количество записей.
func (c *ProductCache) Len() int {
	if c.cache == nil {
		return 0
	}
	return c.cache.Len()
}
