package db

import (
	"context"
	"fmt"
)

const (
	linksSchema = `CREATE TABLE IF NOT EXISTS tracking_links (
			           id VARCHAR(16) PRIMARY KEY,
			   created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			   creator_ip TEXT NOT NULL DEFAULT '',
			         note TEXT,
			   target_url TEXT NOT NULL);

			 CREATE INDEX IF NOT EXISTS idx_tracking_links_created_at ON tracking_links(created_at);`

	// visitor_ip хранится как TEXT, а не INET: определённый адрес может нести
	// человекочитаемую пометку "(your public IP)"
	visitsSchema = `CREATE TABLE IF NOT EXISTS link_visits (
			            id SERIAL PRIMARY KEY,
			       link_id VARCHAR(16) NOT NULL REFERENCES tracking_links(id) ON DELETE CASCADE,
			    visitor_ip TEXT NOT NULL DEFAULT '',
			    user_agent TEXT NOT NULL DEFAULT '',
			       referer TEXT,
			    visited_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			      latitude DOUBLE PRECISION,
			     longitude DOUBLE PRECISION,
			      accuracy DOUBLE PRECISION);

				 CREATE INDEX IF NOT EXISTS idx_link_visits_link_id_visited_at ON link_visits(link_id, visited_at);
			     CREATE INDEX IF NOT EXISTS idx_link_visits_visited_at ON link_visits(visited_at);`
)

// Migration создаёт таблицы tracking_links и link_visits, если они ещё не существуют, добавляет индексы
func (d *DataBase) Migration(ctx context.Context) error {

	// создаём таблицу tracking_links с индексами
	query := linksSchema
	_, err := d.Pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("ошибка создания таблицы tracking_links: %w", err)
	}

	// создаём таблицу link_visits с индексами
	query = visitsSchema
	_, err = d.Pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("ошибка создания таблицы link_visits: %w", err)
	}

	return nil
}
