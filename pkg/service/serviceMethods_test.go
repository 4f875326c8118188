package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/IPampurin/IpTracker/pkg/db"
	"github.com/IPampurin/IpTracker/pkg/geoip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/logger"
)

// newTestLogger возвращает логгер для тестов сервисного слоя
func newTestLogger(t *testing.T) logger.Logger {

	log, err := logger.InitLogger(
		logger.ZapEngine,
		"IpTracker-test",
		"",
		logger.WithLevel(logger.InfoLevel),
	)
	require.NoError(t, err)

	return log
}

// linkStoreMock - подмена хранилища ссылок
type linkStoreMock struct {
	links   map[string]*db.Link
	summary []*db.LinkSummary
	failAll bool
}

func newLinkStoreMock() *linkStoreMock {
	return &linkStoreMock{links: make(map[string]*db.Link)}
}

func (m *linkStoreMock) CreateLink(ctx context.Context, link *db.Link) (*db.Link, error) {
	if m.failAll {
		return nil, errors.New("хранилище недоступно")
	}
	saved := *link
	saved.CreatedAt = time.Now().UTC()
	m.links[saved.ID] = &saved
	return &saved, nil
}

func (m *linkStoreMock) GetLinkByID(ctx context.Context, id string) (*db.Link, error) {
	if m.failAll {
		return nil, errors.New("хранилище недоступно")
	}
	return m.links[id], nil
}

func (m *linkStoreMock) GetLinksSummary(ctx context.Context) ([]*db.LinkSummary, error) {
	return m.summary, nil
}

func (m *linkStoreMock) GetLinksOfPeriod(ctx context.Context, period time.Duration) ([]*db.Link, error) {
	return nil, nil
}

func (m *linkStoreMock) DeleteLink(ctx context.Context, id string) (int, bool, error) {
	if _, ok := m.links[id]; !ok {
		return 0, false, nil
	}
	delete(m.links, id)
	return 3, true, nil
}

// visitStoreMock - подмена хранилища посещений
type visitStoreMock struct {
	visits map[int]*db.Visit
	notes  map[int]*string
	nextID int
}

func newVisitStoreMock() *visitStoreMock {
	return &visitStoreMock{
		visits: make(map[int]*db.Visit),
		notes:  make(map[int]*string),
		nextID: 1,
	}
}

func (m *visitStoreMock) CreateVisit(ctx context.Context, visit *db.Visit) (*db.Visit, error) {
	saved := *visit
	saved.ID = m.nextID
	m.nextID++
	m.visits[saved.ID] = &saved
	return &saved, nil
}

func (m *visitStoreMock) GetVisitByID(ctx context.Context, id int) (*db.VisitWithNote, error) {
	visit, ok := m.visits[id]
	if !ok {
		return nil, nil
	}
	return &db.VisitWithNote{Visit: *visit, LinkNote: m.notes[id]}, nil
}

func (m *visitStoreMock) GetVisitsByLinkID(ctx context.Context, linkID string) ([]*db.Visit, error) {
	var out []*db.Visit
	for _, v := range m.visits {
		if v.LinkID == linkID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *visitStoreMock) GetAllVisits(ctx context.Context, limit int) ([]*db.VisitWithNote, error) {
	var out []*db.VisitWithNote
	for id, v := range m.visits {
		if len(out) == limit {
			break
		}
		out = append(out, &db.VisitWithNote{Visit: *v, LinkNote: m.notes[id]})
	}
	return out, nil
}

func (m *visitStoreMock) SetVisitGeolocation(ctx context.Context, id int, latitude, longitude, accuracy float64) (bool, error) {
	visit, ok := m.visits[id]
	if !ok {
		return false, nil
	}
	visit.Latitude = &latitude
	visit.Longitude = &longitude
	visit.Accuracy = &accuracy
	return true, nil
}

func (m *visitStoreMock) DeleteVisit(ctx context.Context, id int) (bool, error) {
	if _, ok := m.visits[id]; !ok {
		return false, nil
	}
	delete(m.visits, id)
	return true, nil
}

// newTestService собирает сервис на подменах без кэша
func newTestService(links *linkStoreMock, visits *visitStoreMock) *Service {
	return &Service{link: links, visit: visits}
}

// TestCreateTrackingLink тестирует создание отслеживаемой ссылки
func TestCreateTrackingLink(t *testing.T) {

	log := newTestLogger(t)
	links := newLinkStoreMock()
	svc := newTestService(links, newVisitStoreMock())

	created, err := svc.CreateTrackingLink(context.Background(), log, "example.com/page", "тест", "203.0.113.7", "http://localhost:8080")
	require.NoError(t, err)

	// схема дописана, адреса собраны от базового URL
	assert.Equal(t, "https://example.com/page", created.TargetURL)
	assert.Len(t, created.LinkID, 8)
	assert.Equal(t, "http://localhost:8080/track/"+created.LinkID, created.TrackingURL)
	assert.Equal(t, "http://localhost:8080/admin/"+created.LinkID, created.AdminURL)

	stored := links.links[created.LinkID]
	require.NotNil(t, stored)
	assert.Equal(t, "203.0.113.7", stored.CreatorIp)
	require.NotNil(t, stored.Note)
	assert.Equal(t, "тест", *stored.Note)
}

// TestCreateTrackingLinkEmptyURL тестирует отказ при пустом целевом URL
func TestCreateTrackingLinkEmptyURL(t *testing.T) {

	log := newTestLogger(t)
	svc := newTestService(newLinkStoreMock(), newVisitStoreMock())

	created, err := svc.CreateTrackingLink(context.Background(), log, "   ", "", "203.0.113.7", "http://localhost:8080")
	assert.ErrorIs(t, err, ErrEmptyTargetURL)
	assert.Nil(t, created)
}

// TestTrackVisit тестирует запись перехода по существующей ссылке
func TestTrackVisit(t *testing.T) {

	log := newTestLogger(t)
	links := newLinkStoreMock()
	visits := newVisitStoreMock()
	svc := newTestService(links, visits)

	links.links["abcd1234"] = &db.Link{ID: "abcd1234", TargetURL: "https://example.com"}

	tracked, err := svc.TrackVisit(context.Background(), log, "abcd1234", "198.51.100.3", uaChrome, "https://referrer.example")
	require.NoError(t, err)
	require.NotNil(t, tracked)

	assert.Equal(t, "https://example.com", tracked.TargetURL)

	stored := visits.visits[tracked.VisitID]
	require.NotNil(t, stored)
	assert.Equal(t, "198.51.100.3", stored.VisitorIp)
	require.NotNil(t, stored.Referer)
	assert.Equal(t, "https://referrer.example", *stored.Referer)
}

// TestTrackVisitUnknownLink тестирует переход по несуществующей ссылке:
// посещение не записывается, ошибки нет
func TestTrackVisitUnknownLink(t *testing.T) {

	log := newTestLogger(t)
	visits := newVisitStoreMock()
	svc := newTestService(newLinkStoreMock(), visits)

	tracked, err := svc.TrackVisit(context.Background(), log, "nope", "198.51.100.3", uaChrome, "")
	require.NoError(t, err)
	assert.Nil(t, tracked)
	assert.Empty(t, visits.visits)
}

// TestLinkStats тестирует агрегаты статистики по одной ссылке
func TestLinkStats(t *testing.T) {

	log := newTestLogger(t)
	links := newLinkStoreMock()
	visits := newVisitStoreMock()
	svc := newTestService(links, visits)

	links.links["abcd1234"] = &db.Link{ID: "abcd1234", TargetURL: "https://example.com"}

	now := time.Now().UTC()
	yesterday := now.Add(-24 * time.Hour)

	// два посетителя, три перехода, один из них сутки назад
	for _, v := range []*db.Visit{
		{LinkID: "abcd1234", VisitorIp: "198.51.100.3", UserAgent: uaChrome, VisitedAt: yesterday},
		{LinkID: "abcd1234", VisitorIp: "198.51.100.3", UserAgent: uaChrome, VisitedAt: now},
		{LinkID: "abcd1234", VisitorIp: "203.0.113.7", UserAgent: uaFirefox, VisitedAt: now},
	} {
		_, err := visits.CreateVisit(context.Background(), v)
		require.NoError(t, err)
	}

	stats, err := svc.LinkStats(context.Background(), log, "abcd1234", "http://localhost:8080")
	require.NoError(t, err)
	require.NotNil(t, stats)

	assert.Equal(t, 3, stats.Statistics.TotalVisits)
	assert.Equal(t, 2, stats.Statistics.UniqueVisitors)
	assert.Equal(t, 2, stats.Statistics.VisitsToday)
	require.NotNil(t, stats.Statistics.LastVisit)
	assert.WithinDuration(t, now, *stats.Statistics.LastVisit, time.Second)

	assert.Equal(t, "http://localhost:8080/track/abcd1234", stats.Link.TrackingURL)
	assert.Len(t, stats.Visits, 3)

	// посещения обогащены классификацией на чтении
	for _, v := range stats.Visits {
		assert.NotEmpty(t, v.Browser)
		assert.NotEmpty(t, v.IPType)
	}
}

// TestLinkStatsUnknownLink тестирует статистику по несуществующей ссылке
func TestLinkStatsUnknownLink(t *testing.T) {

	log := newTestLogger(t)
	svc := newTestService(newLinkStoreMock(), newVisitStoreMock())

	stats, err := svc.LinkStats(context.Background(), log, "nope", "http://localhost:8080")
	require.NoError(t, err)
	assert.Nil(t, stats)
}

// TestMergeGeolocation тестирует дозапись координат в посещение
func TestMergeGeolocation(t *testing.T) {

	log := newTestLogger(t)
	visits := newVisitStoreMock()
	svc := newTestService(newLinkStoreMock(), visits)

	saved, err := visits.CreateVisit(context.Background(), &db.Visit{LinkID: "abcd1234", VisitorIp: "198.51.100.3"})
	require.NoError(t, err)

	merged, err := svc.MergeGeolocation(context.Background(), log, saved.ID, 55.75, 37.61, 12.5)
	require.NoError(t, err)
	assert.True(t, merged)

	stored := visits.visits[saved.ID]
	require.NotNil(t, stored.Latitude)
	assert.InDelta(t, 55.75, *stored.Latitude, 0.001)

	// несуществующее посещение - false без ошибки
	merged, err = svc.MergeGeolocation(context.Background(), log, 9999, 55.75, 37.61, 12.5)
	require.NoError(t, err)
	assert.False(t, merged)
}

// TestDeleteLink тестирует каскадное удаление ссылки
func TestDeleteLink(t *testing.T) {

	log := newTestLogger(t)
	links := newLinkStoreMock()
	svc := newTestService(links, newVisitStoreMock())

	links.links["abcd1234"] = &db.Link{ID: "abcd1234", TargetURL: "https://example.com"}

	deletedVisits, existed, err := svc.DeleteLink(context.Background(), log, "abcd1234")
	require.NoError(t, err)
	assert.True(t, existed)
	assert.Equal(t, 3, deletedVisits)

	_, existed, err = svc.DeleteLink(context.Background(), log, "abcd1234")
	require.NoError(t, err)
	assert.False(t, existed)
}

// TestIPInfoLocal тестирует короткое замыкание для локальных адресов
func TestIPInfoLocal(t *testing.T) {

	log := newTestLogger(t)
	svc := newTestService(newLinkStoreMock(), newVisitStoreMock())
	svc.geo = geoip.New(time.Second, "http://127.0.0.1:1") // не должен вызываться

	details, err := svc.IPInfo(context.Background(), log, "127.0.0.1")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", details.IP)
	assert.Equal(t, IPTypeLocal, details.Type)
	assert.Empty(t, details.Country)
	assert.NotEmpty(t, details.Message)
}

// TestIPInfoExternal тестирует обогащение публичного адреса
func TestIPInfoExternal(t *testing.T) {

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/8.8.8.8", r.URL.Path)
		_, _ = w.Write([]byte(`{"success": true, "country": "United States", "city": "Mountain View", "connection": {"isp": "Google LLC"}}`))
	}))
	defer srv.Close()

	log := newTestLogger(t)
	svc := newTestService(newLinkStoreMock(), newVisitStoreMock())
	svc.geo = geoip.New(time.Second, srv.URL)

	details, err := svc.IPInfo(context.Background(), log, "8.8.8.8")
	require.NoError(t, err)

	assert.Equal(t, "United States", details.Country)
	assert.Equal(t, "Google LLC", details.ISP)
	assert.Equal(t, "ipwho.is", details.Source)
	assert.Equal(t, IPTypePublic, details.Type)
}

// TestIPInfoDegradation тестирует деградацию до локальной классификации
// при недоступности внешнего сервиса
func TestIPInfoDegradation(t *testing.T) {

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	log := newTestLogger(t)
	svc := newTestService(newLinkStoreMock(), newVisitStoreMock())
	svc.geo = geoip.New(time.Second, srv.URL)

	details, err := svc.IPInfo(context.Background(), log, "8.8.8.8")
	require.NoError(t, err)

	assert.Equal(t, IPTypePublic, details.Type)
	assert.Empty(t, details.Country)
	assert.NotEmpty(t, details.Message)
}

// TestIPInfoStripsPublicSuffix тестирует срез пометки внешнего адреса
// перед обращением к geo-IP сервису
func TestIPInfoStripsPublicSuffix(t *testing.T) {

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/203.0.113.7", r.URL.Path)
		_, _ = w.Write([]byte(`{"success": true, "country": "Testland"}`))
	}))
	defer srv.Close()

	log := newTestLogger(t)
	svc := newTestService(newLinkStoreMock(), newVisitStoreMock())
	svc.geo = geoip.New(time.Second, srv.URL)

	details, err := svc.IPInfo(context.Background(), log, "203.0.113.7 (your public IP)")
	require.NoError(t, err)

	assert.Equal(t, "Testland", details.Country)
	assert.Equal(t, "203.0.113.7 (your public IP)", details.IP)
}
