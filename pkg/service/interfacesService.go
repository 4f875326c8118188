package service

import (
	"context"

	"github.com/wb-go/wbf/logger"
)

type ServiceMethods interface {
	// CreateTrackingLink создаёт новую отслеживаемую ссылку
	CreateTrackingLink(ctx context.Context, log logger.Logger, targetURL, note, creatorIP, baseURL string) (*CreatedLink, error)

	// TrackVisit записывает переход по ссылке и возвращает данные для ответа посетителю
	// (nil, nil если ссылка не найдена - решение о fallback-редиректе принимает обработчик)
	TrackVisit(ctx context.Context, log logger.Logger, linkID, visitorIP, userAgent, referer string) (*TrackedVisit, error)

	// LinkStats возвращает агрегированную статистику и обогащённый список посещений
	LinkStats(ctx context.Context, log logger.Logger, linkID, baseURL string) (*LinkStats, error)

	// AllLinks возвращает все ссылки с лёгкими агрегатами, новые первыми
	AllLinks(ctx context.Context, log logger.Logger) ([]*LinkListItem, error)

	// AllVisits возвращает посещения по всем ссылкам, новые первыми, не более limit штук
	AllVisits(ctx context.Context, log logger.Logger, limit int) ([]*VisitInfo, error)

	// VisitDetail возвращает одно посещение с обогащением (nil, nil если не найдено)
	VisitDetail(ctx context.Context, log logger.Logger, visitID int) (*VisitInfo, error)

	// DeleteVisit удаляет одно посещение, false если его не было
	DeleteVisit(ctx context.Context, log logger.Logger, visitID int) (bool, error)

	// DeleteLink удаляет ссылку каскадом со всеми посещениями,
	// возвращает число удалённых посещений и признак существования ссылки
	DeleteLink(ctx context.Context, log logger.Logger, linkID string) (int, bool, error)

	// MergeGeolocation дописывает координаты браузера в уже записанное посещение,
	// best-effort: false без ошибки, если посещение не найдено
	MergeGeolocation(ctx context.Context, log logger.Logger, visitID int, latitude, longitude, accuracy float64) (bool, error)

	// IPInfo возвращает сведения об адресе через внешний geo-IP сервис
	// с деградацией до локальной классификации
	IPInfo(ctx context.Context, log logger.Logger, ip string) (*IPDetails, error)
}
