package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/IPampurin/IpTracker/pkg/db"
	"github.com/IPampurin/IpTracker/pkg/ipresolver"
	"github.com/IPampurin/IpTracker/pkg/metrics"
	"github.com/wb-go/wbf/logger"
)

// ErrEmptyTargetURL возвращается при попытке создать ссылку без целевого URL
var ErrEmptyTargetURL = errors.New("URL не может быть пустым")

const defaultVisitsLimit = 500 // сколько посещений отдаём в общем списке по умолчанию

// CreateTrackingLink создаёт новую отслеживаемую ссылку
func (s *Service) CreateTrackingLink(ctx context.Context, log logger.Logger, targetURL, note, creatorIP, baseURL string) (*CreatedLink, error) {

	targetURL = strings.TrimSpace(targetURL)
	if targetURL == "" {
		return nil, ErrEmptyTargetURL
	}

	// схему не спрашиваем у пользователя, при её отсутствии дописываем https://
	if !strings.HasPrefix(targetURL, "http://") && !strings.HasPrefix(targetURL, "https://") {
		targetURL = "https://" + targetURL
	}

	id, err := NewLinkID()
	if err != nil {
		return nil, err
	}

	link := &db.Link{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		CreatorIp: creatorIP,
		TargetURL: targetURL,
	}

	if note = strings.TrimSpace(note); note != "" {
		link.Note = &note
	}

	saved, err := s.link.CreateLink(ctx, link)
	if err != nil {
		return nil, fmt.Errorf("ошибка сохранения ссылки: %w", err)
	}

	// кэшируем сразу, чтобы первый же переход не ходил в базу
	if s.cache != nil {
		if err := s.cache.SetLink(ctx, saved.ID, saved); err != nil {
			log.Ctx(ctx).Warn("не удалось положить ссылку в кэш", "linkID", saved.ID, "error", err)
		}
	}

	log.Ctx(ctx).Info("создана отслеживаемая ссылка", "linkID", saved.ID, "targetURL", saved.TargetURL)

	return &CreatedLink{
		Success:     true,
		LinkID:      saved.ID,
		TrackingURL: baseURL + "/track/" + saved.ID,
		AdminURL:    baseURL + "/admin/" + saved.ID,
		TargetURL:   saved.TargetURL,
		CreatedAt:   saved.CreatedAt,
		Message:     "отслеживаемая ссылка создана",
	}, nil
}

// findLink ищет ссылку сначала в кэше, затем в базе (nil, nil если ссылки нет)
func (s *Service) findLink(ctx context.Context, log logger.Logger, linkID string) (*db.Link, error) {

	if s.cache != nil {
		link, err := s.cache.GetLink(ctx, linkID)
		if err != nil {
			log.Ctx(ctx).Warn("ошибка чтения ссылки из кэша", "linkID", linkID, "error", err)
		} else if link != nil {
			return link, nil
		}
	}

	link, err := s.link.GetLinkByID(ctx, linkID)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения ссылки из базы: %w", err)
	}

	if link != nil && s.cache != nil {
		if err := s.cache.SetLink(ctx, link.ID, link); err != nil {
			log.Ctx(ctx).Warn("не удалось положить ссылку в кэш", "linkID", link.ID, "error", err)
		}
	}

	return link, nil
}

// TrackVisit записывает переход по ссылке и возвращает данные для ответа посетителю
func (s *Service) TrackVisit(ctx context.Context, log logger.Logger, linkID, visitorIP, userAgent, referer string) (*TrackedVisit, error) {

	link, err := s.findLink(ctx, log, linkID)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, nil
	}

	visit := &db.Visit{
		LinkID:    link.ID,
		VisitorIp: visitorIP,
		UserAgent: userAgent,
		VisitedAt: time.Now().UTC(),
	}
	if referer != "" {
		visit.Referer = &referer
	}

	// запись синхронная: идентификатор посещения нужен странице захвата геолокации
	saved, err := s.visit.CreateVisit(ctx, visit)
	if err != nil {
		return nil, fmt.Errorf("ошибка записи посещения: %w", err)
	}

	metrics.VisitsRecorded.Inc()

	log.Ctx(ctx).Info("записан переход по ссылке", "linkID", link.ID, "visitID", saved.ID, "visitorIP", visitorIP)

	return &TrackedVisit{
		VisitID:   saved.ID,
		TargetURL: link.TargetURL,
	}, nil
}

// enrichVisit дополняет запись о посещении вычисляемыми на чтении полями
func enrichVisit(v *db.Visit, withLinkID bool) VisitInfo {

	info := VisitInfo{
		ID:        v.ID,
		VisitorIp: v.VisitorIp,
		UserAgent: v.UserAgent,
		Browser:   BrowserName(v.UserAgent),
		OS:        OSName(v.UserAgent),
		Device:    DeviceType(v.UserAgent),
		Referer:   v.Referer,
		VisitedAt: v.VisitedAt,
		IPType:    IPType(v.VisitorIp),
		Latitude:  v.Latitude,
		Longitude: v.Longitude,
		Accuracy:  v.Accuracy,
	}
	if withLinkID {
		info.LinkID = v.LinkID
	}

	return info
}

// LinkStats возвращает агрегированную статистику и обогащённый список посещений
func (s *Service) LinkStats(ctx context.Context, log logger.Logger, linkID, baseURL string) (*LinkStats, error) {

	link, err := s.findLink(ctx, log, linkID)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, nil
	}

	visits, err := s.visit.GetVisitsByLinkID(ctx, link.ID)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения посещений: %w", err)
	}

	// агрегаты считаем в один проход по уже отсортированному списку
	today := time.Now().UTC().Format("2006-01-02")
	uniq := make(map[string]struct{}, len(visits))
	stats := Statistics{TotalVisits: len(visits)}
	out := make([]VisitInfo, 0, len(visits))

	for _, v := range visits {
		uniq[v.VisitorIp] = struct{}{}
		if v.VisitedAt.UTC().Format("2006-01-02") == today {
			stats.VisitsToday++
		}
		if stats.LastVisit == nil || v.VisitedAt.After(*stats.LastVisit) {
			t := v.VisitedAt
			stats.LastVisit = &t
		}
		out = append(out, enrichVisit(v, false))
	}
	stats.UniqueVisitors = len(uniq)

	return &LinkStats{
		Success: true,
		Link: LinkInfo{
			ID:          link.ID,
			CreatedAt:   link.CreatedAt,
			CreatorIp:   link.CreatorIp,
			Note:        link.Note,
			TargetURL:   link.TargetURL,
			TrackingURL: baseURL + "/track/" + link.ID,
		},
		Statistics: stats,
		Visits:     out,
	}, nil
}

// AllLinks возвращает все ссылки с лёгкими агрегатами, новые первыми
func (s *Service) AllLinks(ctx context.Context, log logger.Logger) ([]*LinkListItem, error) {

	summary, err := s.link.GetLinksSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения списка ссылок: %w", err)
	}

	out := make([]*LinkListItem, 0, len(summary))
	for _, item := range summary {
		out = append(out, &LinkListItem{
			ID:             item.ID,
			CreatedAt:      item.CreatedAt,
			CreatorIp:      item.CreatorIp,
			Note:           item.Note,
			TargetURL:      item.TargetURL,
			VisitsCount:    item.VisitsCount,
			UniqueVisitors: item.UniqueVisitors,
			LastVisit:      item.LastVisit,
		})
	}

	return out, nil
}

// AllVisits возвращает посещения по всем ссылкам, новые первыми, не более limit штук
func (s *Service) AllVisits(ctx context.Context, log logger.Logger, limit int) ([]*VisitInfo, error) {

	if limit <= 0 {
		limit = defaultVisitsLimit
	}

	visits, err := s.visit.GetAllVisits(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения списка посещений: %w", err)
	}

	out := make([]*VisitInfo, 0, len(visits))
	for _, v := range visits {
		info := enrichVisit(&v.Visit, true)
		info.LinkNote = v.LinkNote
		out = append(out, &info)
	}

	return out, nil
}

// VisitDetail возвращает одно посещение с обогащением (nil, nil если не найдено)
func (s *Service) VisitDetail(ctx context.Context, log logger.Logger, visitID int) (*VisitInfo, error) {

	visit, err := s.visit.GetVisitByID(ctx, visitID)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения посещения: %w", err)
	}
	if visit == nil {
		return nil, nil
	}

	info := enrichVisit(&visit.Visit, true)
	info.LinkNote = visit.LinkNote

	return &info, nil
}

// DeleteVisit удаляет одно посещение, false если его не было
func (s *Service) DeleteVisit(ctx context.Context, log logger.Logger, visitID int) (bool, error) {

	deleted, err := s.visit.DeleteVisit(ctx, visitID)
	if err != nil {
		return false, fmt.Errorf("ошибка удаления посещения: %w", err)
	}

	if deleted {
		log.Ctx(ctx).Info("посещение удалено", "visitID", visitID)
	}

	return deleted, nil
}

// DeleteLink удаляет ссылку каскадом со всеми посещениями
func (s *Service) DeleteLink(ctx context.Context, log logger.Logger, linkID string) (int, bool, error) {

	deletedVisits, existed, err := s.link.DeleteLink(ctx, linkID)
	if err != nil {
		return 0, false, fmt.Errorf("ошибка удаления ссылки: %w", err)
	}
	if !existed {
		return 0, false, nil
	}

	if s.cache != nil {
		if err := s.cache.DeleteLink(ctx, linkID); err != nil {
			log.Ctx(ctx).Warn("не удалось убрать ссылку из кэша", "linkID", linkID, "error", err)
		}
	}

	log.Ctx(ctx).Info("ссылка удалена вместе с посещениями", "linkID", linkID, "deletedVisits", deletedVisits)

	return deletedVisits, true, nil
}

// MergeGeolocation дописывает координаты браузера в уже записанное посещение
func (s *Service) MergeGeolocation(ctx context.Context, log logger.Logger, visitID int, latitude, longitude, accuracy float64) (bool, error) {

	merged, err := s.visit.SetVisitGeolocation(ctx, visitID, latitude, longitude, accuracy)
	if err != nil {
		return false, fmt.Errorf("ошибка записи геолокации: %w", err)
	}

	if merged {
		metrics.GeoMerges.WithLabelValues("merged").Inc()
		log.Ctx(ctx).Info("геолокация дописана в посещение", "visitID", visitID)
	} else {
		metrics.GeoMerges.WithLabelValues("missing").Inc()
		log.Ctx(ctx).Warn("геолокация пришла для несуществующего посещения", "visitID", visitID)
	}

	return merged, nil
}

// IPInfo возвращает сведения об адресе через внешний geo-IP сервис
// с деградацией до локальной классификации
func (s *Service) IPInfo(ctx context.Context, log logger.Logger, ip string) (*IPDetails, error) {

	// пометку про публичный адрес отрезаем, внешнему сервису она не нужна
	clean := strings.TrimSpace(strings.TrimSuffix(ip, ipresolver.PublicIPSuffix))

	// для локальных адресов внешний сервис бесполезен
	if clean == "" || clean == ipresolver.Unknown || clean == "127.0.0.1" || clean == "::1" {
		return &IPDetails{
			IP:      ip,
			Type:    IPType(ip),
			Message: "локальный адрес, внешнее обогащение не выполняется",
		}, nil
	}

	info, err := s.geo.Lookup(ctx, clean)
	if err != nil {
		log.Ctx(ctx).Warn("geo-IP сервис недоступен, отдаём локальную классификацию", "ip", clean, "error", err)
		return &IPDetails{
			IP:      ip,
			Type:    IPType(ip),
			Message: "внешний geo-IP сервис недоступен",
		}, nil
	}

	lat, lon := info.Latitude, info.Longitude

	return &IPDetails{
		IP:        ip,
		Type:      IPType(ip),
		Country:   info.Country,
		Region:    info.Region,
		City:      info.City,
		ISP:       info.ISP,
		Org:       info.Org,
		Latitude:  &lat,
		Longitude: &lon,
		Timezone:  info.Timezone,
		Source:    "ipwho.is",
	}, nil
}
