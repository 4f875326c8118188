package cache

import (
	"context"

	"github.com/IPampurin/IpTracker/pkg/db"
)

type CacheMethods interface {
	// GetLink возвращает ссылку из кэша по её идентификатору
	GetLink(ctx context.Context, id string) (*db.Link, error)

	// SetLink сохраняет ссылку в кэш с предустановленным TTL
	SetLink(ctx context.Context, id string, link *db.Link) error

	// DeleteLink удаляет ссылку из кэша
	DeleteLink(ctx context.Context, id string) error

	// LoadDataToCache выполняет прогрев кэша, сохраняя переданный список ссылок
	LoadDataToCache(ctx context.Context, lastLinks []*db.Link) error
}
