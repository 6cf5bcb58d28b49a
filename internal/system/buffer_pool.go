package system

import (
	"image"
	"sync"
)

// ImagePool переиспользует *image.RGBA одинакового размера между кадрами,
// чтобы снизить нагрузку на GC при покадровой композиции.
type ImagePool struct {
	pools map[image.Rectangle]*sync.Pool
	mu    sync.RWMutex
}

// NewImagePool создает пустой пул.
func NewImagePool() *ImagePool {
	return &ImagePool{
		pools: make(map[image.Rectangle]*sync.Pool),
	}
}

// Get возвращает *image.RGBA нужного размера из пула или создает новый.
// Содержимое не очищается.
func (p *ImagePool) Get(rect image.Rectangle) *image.RGBA {
	p.mu.RLock()
	pool, exists := p.pools[rect]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		// Double check
		pool, exists = p.pools[rect]
		if !exists {
			pool = &sync.Pool{
				New: func() interface{} {
					return image.NewRGBA(rect)
				},
			}
			p.pools[rect] = pool
		}
		p.mu.Unlock()
	}

	return pool.Get().(*image.RGBA)
}

// Put возвращает изображение в пул. Изображения чужих размеров отбрасываются.
func (p *ImagePool) Put(img *image.RGBA) {
	if img == nil {
		return
	}
	p.mu.RLock()
	pool, exists := p.pools[img.Rect]
	p.mu.RUnlock()

	if exists {
		pool.Put(img)
	}
}
