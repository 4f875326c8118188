package db

import (
	"context"
	"time"
)

// методы по таблице tracking_links
type LinkMethods interface {
	// CreateLink сохраняет новую отслеживаемую ссылку
	CreateLink(ctx context.Context, link *Link) (*Link, error)

	// GetLinkByID возвращает ссылку по её идентификатору (nil, nil если ссылки нет)
	GetLinkByID(ctx context.Context, id string) (*Link, error)

	// GetLinksSummary возвращает все ссылки с агрегатами по посещениям, новые первыми
	GetLinksSummary(ctx context.Context) ([]*LinkSummary, error)

	// GetLinksOfPeriod возвращает ссылки, созданные за указанный период времени
	GetLinksOfPeriod(ctx context.Context, period time.Duration) ([]*Link, error)

	// DeleteLink удаляет ссылку вместе со всеми её посещениями,
	// возвращает число удалённых посещений и признак, что ссылка существовала
	DeleteLink(ctx context.Context, id string) (int, bool, error)
}

// методы по таблице link_visits
type VisitMethods interface {
	// CreateVisit сохраняет информацию о переходе и возвращает запись с присвоенным id
	CreateVisit(ctx context.Context, visit *Visit) (*Visit, error)

	// GetVisitByID возвращает посещение с пометкой ссылки (nil, nil если посещения нет)
	GetVisitByID(ctx context.Context, id int) (*VisitWithNote, error)

	// GetVisitsByLinkID возвращает все посещения конкретной ссылки, новые первыми
	GetVisitsByLinkID(ctx context.Context, linkID string) ([]*Visit, error)

	// GetAllVisits возвращает посещения по всем ссылкам, новые первыми, не более limit штук
	GetAllVisits(ctx context.Context, limit int) ([]*VisitWithNote, error)

	// SetVisitGeolocation записывает координаты в уже существующее посещение,
	// возвращает false если посещение не найдено
	SetVisitGeolocation(ctx context.Context, id int, latitude, longitude, accuracy float64) (bool, error)

	// DeleteVisit удаляет одно посещение, возвращает false если его не было
	DeleteVisit(ctx context.Context, id int) (bool, error)
}
