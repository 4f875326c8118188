package service

import "time"

// CreatedLink - ответ на успешное создание ссылки (POST /api/tracker/generate выход)
type CreatedLink struct {
	Success     bool      `json:"success"`
	LinkID      string    `json:"linkId"`
	TrackingURL string    `json:"trackingUrl"`
	AdminURL    string    `json:"adminUrl"`
	TargetURL   string    `json:"targetUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	Message     string    `json:"message"`
}

// TrackedVisit - результат записи перехода (нужен странице захвата геолокации)
type TrackedVisit struct {
	VisitID   int
	TargetURL string
}

// LinkInfo - сведения о ссылке в ответе статистики
type LinkInfo struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	CreatorIp   string    `json:"creatorIp"`
	Note        *string   `json:"note"`
	TargetURL   string    `json:"targetUrl"`
	TrackingURL string    `json:"trackingUrl"`
}

// Statistics - агрегаты по одной ссылке
type Statistics struct {
	TotalVisits    int        `json:"totalVisits"`
	UniqueVisitors int        `json:"uniqueVisitors"`
	VisitsToday    int        `json:"visitsToday"`
	LastVisit      *time.Time `json:"lastVisit"`
}

// VisitInfo - одно посещение с вычисляемым на чтении обогащением
type VisitInfo struct {
	ID        int       `json:"id"`
	LinkID    string    `json:"linkId,omitempty"`
	VisitorIp string    `json:"visitorIp"`
	UserAgent string    `json:"userAgent"`
	Browser   string    `json:"browser"`
	OS        string    `json:"os"`
	Device    string    `json:"device"`
	Referer   *string   `json:"referer"`
	VisitedAt time.Time `json:"visitedAt"`
	IPType    string    `json:"ipType"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	Accuracy  *float64  `json:"accuracy,omitempty"`
	LinkNote  *string   `json:"linkNote,omitempty"`
}

// LinkStats - полный ответ для GET /api/tracker/stats/:id
type LinkStats struct {
	Success    bool        `json:"success"`
	Link       LinkInfo    `json:"link"`
	Statistics Statistics  `json:"statistics"`
	Visits     []VisitInfo `json:"visits"`
}

// LinkListItem - элемент списка всех ссылок с лёгкими агрегатами
type LinkListItem struct {
	ID             string     `json:"id"`
	CreatedAt      time.Time  `json:"createdAt"`
	CreatorIp      string     `json:"creatorIp"`
	Note           *string    `json:"note"`
	TargetURL      string     `json:"targetUrl"`
	VisitsCount    int        `json:"visitsCount"`
	UniqueVisitors int        `json:"uniqueVisitors"`
	LastVisit      *time.Time `json:"lastVisit"`
}

// IPDetails - ответ обогащения по адресу (GET /api/tracker/ipinfo/:ip),
// при недоступности внешнего сервиса заполнена только локальная классификация
type IPDetails struct {
	IP        string   `json:"ip"`
	Type      string   `json:"type,omitempty"`
	Country   string   `json:"country,omitempty"`
	Region    string   `json:"region,omitempty"`
	City      string   `json:"city,omitempty"`
	ISP       string   `json:"isp,omitempty"`
	Org       string   `json:"org,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Timezone  string   `json:"timezone,omitempty"`
	Source    string   `json:"source,omitempty"`
	Message   string   `json:"message,omitempty"`
}
