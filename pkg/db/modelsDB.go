package db

import (
	"time"
)

// Link представляет запись в таблице tracking_links
type Link struct {
	ID        string    // короткий идентификатор ссылки (8 hex-символов), первичный ключ
	CreatedAt time.Time // дата и время создания записи (UTC)
	CreatorIp string    // определённый адрес создателя на момент создания
	Note      *string   // необязательная пометка оператора
	TargetURL string    // целевой URL, всегда со схемой http:// или https://
}

// Visit представляет запись о переходе по отслеживаемой ссылке
type Visit struct {
	ID        int       // идентификатор посещения (автоинкремент)
	LinkID    string    // идентификатор ссылки, по которой совершён переход
	VisitorIp string    // определённый адрес посетителя (может содержать пометку "(your public IP)")
	UserAgent string    // строка User-Agent браузера или клиента
	Referer   *string   // источник перехода, nil если заголовок пуст
	VisitedAt time.Time // момент перехода (UTC)
	Latitude  *float64  // широта из браузера посетителя, если тот её сообщил
	Longitude *float64  // долгота из браузера посетителя
	Accuracy  *float64  // точность координат в метрах
}

// LinkSummary - агрегат по одной ссылке для списка всех ссылок
type LinkSummary struct {
	Link
	VisitsCount    int        // всего переходов
	UniqueVisitors int        // число различных адресов посетителей
	LastVisit      *time.Time // время последнего перехода, nil если переходов не было
}

// VisitWithNote - посещение вместе с пометкой владеющей ссылки (для списков и деталей)
type VisitWithNote struct {
	Visit
	LinkNote *string
}
