package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// CreateVisit записывает каждый переход по отслеживаемой ссылке
func (d *DataBase) CreateVisit(ctx context.Context, visit *Visit) (*Visit, error) {

	query := `   INSERT INTO link_visits (link_id, visitor_ip, user_agent, referer, visited_at)
                 VALUES ($1, $2, $3, $4, $5)
			  RETURNING id`

	err := d.Pool.QueryRow(ctx, query, visit.LinkID, visit.VisitorIp, visit.UserAgent, visit.Referer, visit.VisitedAt).
		Scan(&visit.ID)
	if err != nil {
		return nil, fmt.Errorf("ошибка добавления записи о переходе в CreateVisit: %w", err)
	}

	return visit, nil
}

// GetVisitByID получает одно посещение вместе с пометкой владеющей ссылки
func (d *DataBase) GetVisitByID(ctx context.Context, id int) (*VisitWithNote, error) {

	query := `   SELECT v.id, v.link_id, v.visitor_ip, v.user_agent, v.referer, v.visited_at,
	                    v.latitude, v.longitude, v.accuracy,
	                    l.note
	               FROM link_visits v
	               JOIN tracking_links l ON l.id = v.link_id
	              WHERE v.id = $1`

	visit := &VisitWithNote{}

	err := d.Pool.QueryRow(ctx, query, id).
		Scan(&visit.ID,
			&visit.LinkID,
			&visit.VisitorIp,
			&visit.UserAgent,
			&visit.Referer,
			&visit.VisitedAt,
			&visit.Latitude,
			&visit.Longitude,
			&visit.Accuracy,
			&visit.LinkNote)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка получения записи о переходе в GetVisitByID: %w", err)
	}

	return visit, nil
}

// GetVisitsByLinkID получение всех записей для конкретной ссылки, новые первыми
func (d *DataBase) GetVisitsByLinkID(ctx context.Context, linkID string) ([]*Visit, error) {

	query := `SELECT id, link_id, visitor_ip, user_agent, referer, visited_at,
	                 latitude, longitude, accuracy
	            FROM link_visits
			   WHERE link_id = $1
			   ORDER BY visited_at DESC`

	rows, err := d.Pool.Query(ctx, query, linkID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении списка записей в GetVisitsByLinkID: %w", err)
	}
	defer rows.Close()

	var visits []*Visit
	for rows.Next() {
		var v Visit
		err := rows.Scan(
			&v.ID,
			&v.LinkID,
			&v.VisitorIp,
			&v.UserAgent,
			&v.Referer,
			&v.VisitedAt,
			&v.Latitude,
			&v.Longitude,
			&v.Accuracy,
		)
		if err != nil {
			return nil, fmt.Errorf("ошибка при сканировании строки списка записей в GetVisitsByLinkID: %w", err)
		}

		visits = append(visits, &v)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по списку записей в GetVisitsByLinkID: %w", err)
	}

	return visits, nil
}

// GetAllVisits получение посещений по всем ссылкам, новые первыми, не более limit штук
func (d *DataBase) GetAllVisits(ctx context.Context, limit int) ([]*VisitWithNote, error) {

	query := `   SELECT v.id, v.link_id, v.visitor_ip, v.user_agent, v.referer, v.visited_at,
	                    v.latitude, v.longitude, v.accuracy,
	                    l.note
	               FROM link_visits v
	               JOIN tracking_links l ON l.id = v.link_id
	           ORDER BY v.visited_at DESC
	              LIMIT $1`

	rows, err := d.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении списка записей в GetAllVisits: %w", err)
	}
	defer rows.Close()

	var visits []*VisitWithNote
	for rows.Next() {
		var v VisitWithNote
		err := rows.Scan(
			&v.ID,
			&v.LinkID,
			&v.VisitorIp,
			&v.UserAgent,
			&v.Referer,
			&v.VisitedAt,
			&v.Latitude,
			&v.Longitude,
			&v.Accuracy,
			&v.LinkNote,
		)
		if err != nil {
			return nil, fmt.Errorf("ошибка при сканировании строки списка записей в GetAllVisits: %w", err)
		}

		visits = append(visits, &v)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по списку записей в GetAllVisits: %w", err)
	}

	return visits, nil
}

// SetVisitGeolocation дописывает координаты в уже существующее посещение
// (вызывается максимум один раз, когда браузер посетителя сообщил геолокацию)
func (d *DataBase) SetVisitGeolocation(ctx context.Context, id int, latitude, longitude, accuracy float64) (bool, error) {

	query := `UPDATE link_visits
	             SET latitude = $2, longitude = $3, accuracy = $4
			   WHERE id = $1`

	tag, err := d.Pool.Exec(ctx, query, id, latitude, longitude, accuracy)
	if err != nil {
		return false, fmt.Errorf("ошибка записи координат в SetVisitGeolocation: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// DeleteVisit удаляет одно посещение
func (d *DataBase) DeleteVisit(ctx context.Context, id int) (bool, error) {

	query := `DELETE FROM link_visits WHERE id = $1`

	tag, err := d.Pool.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("ошибка удаления посещения в DeleteVisit: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
