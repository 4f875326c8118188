package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "http://ipwho.is"
	defaultTimeout = 3 * time.Second
)

// Info - сведения о публичном адресе из внешнего geo-IP сервиса
type Info struct {
	Country   string  `json:"country"`
	Region    string  `json:"region"`
	City      string  `json:"city"`
	ISP       string  `json:"isp"`
	Org       string  `json:"org"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
}

// ответ ipwho.is в той части, которая нам нужна
type ipwhoResponse struct {
	Success   bool    `json:"success"`
	Country   string  `json:"country"`
	Region    string  `json:"region"`
	City      string  `json:"city"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  struct {
		ID string `json:"id"`
	} `json:"timezone"`
	Connection struct {
		ISP string `json:"isp"`
		Org string `json:"org"`
	} `json:"connection"`
}

// Client - клиент сервиса ipwho.is с коротким таймаутом
type Client struct {
	client  *http.Client
	baseURL string
}

// New возвращает клиент geo-IP сервиса. baseURL нужен тестам, в бою передаётся пустым.
func New(timeout time.Duration, baseURL string) *Client {

	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// Lookup запрашивает сведения об адресе у внешнего сервиса.
// Любая ошибка означает "обогащение недоступно" - вызывающая сторона
// деградирует до локальной классификации.
func (c *Client) Lookup(ctx context.Context, ip string) (*Info, error) {

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+ip, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка обращения к geo-IP сервису: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geo-IP сервис ответил статусом %d", resp.StatusCode)
	}

	var parsed ipwhoResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("ошибка разбора ответа geo-IP сервиса: %w", err)
	}

	if !parsed.Success {
		return nil, fmt.Errorf("geo-IP сервис не нашёл информацию об адресе %s", ip)
	}

	return &Info{
		Country:   parsed.Country,
		Region:    parsed.Region,
		City:      parsed.City,
		ISP:       parsed.Connection.ISP,
		Org:       parsed.Connection.Org,
		Latitude:  parsed.Latitude,
		Longitude: parsed.Longitude,
		Timezone:  parsed.Timezone.ID,
	}, nil
}
