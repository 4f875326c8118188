package api

// GenerateRequest - запрос на создание отслеживаемой ссылки (POST /api/tracker/generate вход)
type GenerateRequest struct {
	TargetURL string `json:"targetUrl" binding:"required"`
	Note      string `json:"note" binding:"omitempty,max=500"`
}

// GeolocationRequest - координаты из браузера посетителя (POST /api/tracker/geolocation вход)
type GeolocationRequest struct {
	VisitID   int     `json:"visitId" binding:"required"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
}

// ErrorResponse - стандартный ответ с ошибкой
type ErrorResponse struct {
	Error string `json:"error"`
}
