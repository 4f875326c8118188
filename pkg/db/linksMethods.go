package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// CreateLink добавляет новую запись в таблицу tracking_links БД
func (d *DataBase) CreateLink(ctx context.Context, link *Link) (*Link, error) {

	query := `   INSERT INTO tracking_links (id, created_at, creator_ip, note, target_url)
                 VALUES ($1, $2, $3, $4, $5)
			  RETURNING created_at`

	err := d.Pool.QueryRow(ctx, query, link.ID, link.CreatedAt, link.CreatorIp, link.Note, link.TargetURL).
		Scan(&link.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("ошибка добавления записи о ссылке в CreateLink: %w", err)
	}

	return link, nil
}

// GetLinkByID получает из таблицы tracking_links БД запись по идентификатору
func (d *DataBase) GetLinkByID(ctx context.Context, id string) (*Link, error) {

	query := `SELECT id, created_at, creator_ip, note, target_url
	            FROM tracking_links
			   WHERE id = $1`

	link := &Link{}

	err := d.Pool.QueryRow(ctx, query, id).
		Scan(&link.ID,
			&link.CreatedAt,
			&link.CreatorIp,
			&link.Note,
			&link.TargetURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка получения записи о ссылке в GetLinkByID: %w", err)
	}

	return link, nil
}

// GetLinksSummary получает все ссылки с лёгкими агрегатами по их посещениям, новые первыми
func (d *DataBase) GetLinksSummary(ctx context.Context) ([]*LinkSummary, error) {

	query := `   SELECT l.id, l.created_at, l.creator_ip, l.note, l.target_url,
	                    COUNT(v.id) AS visits_count,
	                    COUNT(DISTINCT v.visitor_ip) AS unique_visitors,
	                    MAX(v.visited_at) AS last_visit
	               FROM tracking_links l
	          LEFT JOIN link_visits v ON v.link_id = l.id
	           GROUP BY l.id
	           ORDER BY l.created_at DESC`

	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении списка ссылок в GetLinksSummary: %w", err)
	}
	defer rows.Close()

	var links []*LinkSummary
	for rows.Next() {
		var s LinkSummary
		err := rows.Scan(
			&s.ID,
			&s.CreatedAt,
			&s.CreatorIp,
			&s.Note,
			&s.TargetURL,
			&s.VisitsCount,
			&s.UniqueVisitors,
			&s.LastVisit,
		)
		if err != nil {
			return nil, fmt.Errorf("ошибка при сканировании строки списка ссылок в GetLinksSummary: %w", err)
		}

		links = append(links, &s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по списку ссылок в GetLinksSummary: %w", err)
	}

	return links, nil
}

// GetLinksOfPeriod возвращает записи за крайний period времени
func (d *DataBase) GetLinksOfPeriod(ctx context.Context, period time.Duration) ([]*Link, error) {

	threshold := time.Now().UTC().Add(-period)

	query := `SELECT id, created_at, creator_ip, note, target_url
	            FROM tracking_links
			   WHERE created_at >= $1`

	rows, err := d.Pool.Query(ctx, query, threshold)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении списка ссылок в GetLinksOfPeriod: %w", err)
	}
	defer rows.Close()

	var links []*Link
	for rows.Next() {
		var link Link
		err := rows.Scan(
			&link.ID,
			&link.CreatedAt,
			&link.CreatorIp,
			&link.Note,
			&link.TargetURL,
		)
		if err != nil {
			return nil, fmt.Errorf("ошибка при сканировании строки списка ссылок в GetLinksOfPeriod: %w", err)
		}

		links = append(links, &link)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по списку ссылок в GetLinksOfPeriod: %w", err)
	}

	return links, nil
}

// DeleteLink удаляет ссылку и каскадом все её посещения в одной транзакции,
// чтобы не оставить осиротевших записей о переходах
func (d *DataBase) DeleteLink(ctx context.Context, id string) (int, bool, error) {

	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("ошибка открытия транзакции в DeleteLink: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// сперва зависимые посещения, их число возвращаем наружу
	tag, err := tx.Exec(ctx, `DELETE FROM link_visits WHERE link_id = $1`, id)
	if err != nil {
		return 0, false, fmt.Errorf("ошибка удаления посещений в DeleteLink: %w", err)
	}
	visitsDeleted := int(tag.RowsAffected())

	tag, err = tx.Exec(ctx, `DELETE FROM tracking_links WHERE id = $1`, id)
	if err != nil {
		return 0, false, fmt.Errorf("ошибка удаления ссылки в DeleteLink: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// ссылки не было, откатываемся без изменений
		return 0, false, nil
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, false, fmt.Errorf("ошибка фиксации транзакции в DeleteLink: %w", err)
	}

	return visitsDeleted, true, nil
}
