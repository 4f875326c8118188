package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/IPampurin/IpTracker/pkg/configuration"
	"github.com/IPampurin/IpTracker/pkg/ipresolver"
	"github.com/IPampurin/IpTracker/pkg/metrics"
	"github.com/IPampurin/IpTracker/pkg/service"
	"github.com/gin-gonic/gin"
	"github.com/wb-go/wbf/logger"
)

// baseURL восстанавливает адрес, по которому к нам пришёл клиент,
// чтобы выдаваемые ссылки вели на тот же хост
func baseURL(c *gin.Context) string {

	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}

	return scheme + "://" + c.Request.Host
}

// GenerateLink обрабатывает POST /api/tracker/generate
func GenerateLink(svc service.ServiceMethods, resolver *ipresolver.Resolver, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {

		var req GenerateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Ctx(c.Request.Context()).Error("неверный формат запроса", "error", err)
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "неверный формат запроса"})
			return
		}

		// при создании ссылки принудительно обновляем кэш внешнего адреса,
		// чтобы создатель увидел актуальный свой IP
		creatorIP := resolver.Resolve(c.Request, true)

		link, err := svc.CreateTrackingLink(c.Request.Context(), log, req.TargetURL, req.Note, creatorIP, baseURL(c))
		if err != nil {
			if errors.Is(err, service.ErrEmptyTargetURL) {
				c.JSON(http.StatusBadRequest, ErrorResponse{Error: "URL не может быть пустым"})
				return
			}
			log.Ctx(c.Request.Context()).Error("ошибка создания ссылки", "error", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "внутренняя ошибка сервера"})
			return
		}

		c.JSON(http.StatusCreated, link)
	}
}

// TrackRedirect обрабатывает GET /track/:id.
// Посетитель никогда не видит ошибку: при любой неудаче уводим его
// на запасной адрес, как будто ссылка просто ведёт туда.
func TrackRedirect(svc service.ServiceMethods, resolver *ipresolver.Resolver, cfg *configuration.ConfTracker, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {

		linkID := c.Param("id")
		visitorIP := resolver.Resolve(c.Request, false)

		visit, err := svc.TrackVisit(c.Request.Context(), log, linkID, visitorIP, c.GetHeader("User-Agent"), c.GetHeader("Referer"))
		if err != nil {
			log.Ctx(c.Request.Context()).Error("ошибка записи перехода", "linkID", linkID, "error", err)
			metrics.Redirects.WithLabelValues("fallback").Inc()
			c.Redirect(http.StatusFound, cfg.FallbackURL)
			return
		}
		if visit == nil {
			// несуществующий идентификатор не выдаём посетителю
			metrics.Redirects.WithLabelValues("fallback").Inc()
			c.Redirect(http.StatusFound, cfg.FallbackURL)
			return
		}

		if cfg.CapturePage {
			metrics.Redirects.WithLabelValues("capture_page").Inc()
			renderCapturePage(c, visit.VisitID, visit.TargetURL)
			return
		}

		metrics.Redirects.WithLabelValues("redirect").Inc()
		c.Redirect(http.StatusFound, visit.TargetURL)
	}
}

// ReceiveGeolocation обрабатывает POST /api/tracker/geolocation.
// Браузер шлёт координаты со страницы захвата, посещение к этому моменту уже записано.
func ReceiveGeolocation(svc service.ServiceMethods, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {

		var req GeolocationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Ctx(c.Request.Context()).Error("неверный формат запроса", "error", err)
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "неверный формат запроса"})
			return
		}

		merged, err := svc.MergeGeolocation(c.Request.Context(), log, req.VisitID, req.Latitude, req.Longitude, req.Accuracy)
		if err != nil {
			log.Ctx(c.Request.Context()).Error("ошибка записи геолокации", "visitID", req.VisitID, "error", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "внутренняя ошибка сервера"})
			return
		}

		// несуществующее посещение не считаем ошибкой - браузер мог прислать
		// координаты уже после удаления записи
		c.JSON(http.StatusOK, gin.H{"success": merged})
	}
}

// GetLinkStats обрабатывает GET /api/tracker/stats/:id
func GetLinkStats(svc service.ServiceMethods, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {

		stats, err := svc.LinkStats(c.Request.Context(), log, c.Param("id"), baseURL(c))
		if err != nil {
			log.Ctx(c.Request.Context()).Error("ошибка получения статистики", "error", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "внутренняя ошибка"})
			return
		}
		if stats == nil {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "ссылка не найдена"})
			return
		}

		c.JSON(http.StatusOK, stats)
	}
}

// GetLinks обрабатывает GET /api/tracker/links
func GetLinks(svc service.ServiceMethods, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {

		links, err := svc.AllLinks(c.Request.Context(), log)
		if err != nil {
			log.Ctx(c.Request.Context()).Error("ошибка получения списка ссылок", "error", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "внутренняя ошибка"})
			return
		}

		c.JSON(http.StatusOK, links)
	}
}

// GetVisits обрабатывает GET /api/tracker/visits?limit=N
func GetVisits(svc service.ServiceMethods, cfg *configuration.ConfTracker, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {

		limit := cfg.VisitsLimit
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				c.JSON(http.StatusBadRequest, ErrorResponse{Error: "параметр limit должен быть положительным числом"})
				return
			}
			limit = parsed
		}

		visits, err := svc.AllVisits(c.Request.Context(), log, limit)
		if err != nil {
			log.Ctx(c.Request.Context()).Error("ошибка получения списка посещений", "error", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "внутренняя ошибка"})
			return
		}

		c.JSON(http.StatusOK, visits)
	}
}

// GetVisit обрабатывает GET /api/tracker/visit/:id
func GetVisit(svc service.ServiceMethods, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {

		visitID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "идентификатор посещения должен быть числом"})
			return
		}

		visit, err := svc.VisitDetail(c.Request.Context(), log, visitID)
		if err != nil {
			log.Ctx(c.Request.Context()).Error("ошибка получения посещения", "error", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "внутренняя ошибка"})
			return
		}
		if visit == nil {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "посещение не найдено"})
			return
		}

		c.JSON(http.StatusOK, visit)
	}
}

// DeleteVisit обрабатывает DELETE /api/tracker/visit/:id
func DeleteVisit(svc service.ServiceMethods, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {

		visitID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "идентификатор посещения должен быть числом"})
			return
		}

		deleted, err := svc.DeleteVisit(c.Request.Context(), log, visitID)
		if err != nil {
			log.Ctx(c.Request.Context()).Error("ошибка удаления посещения", "error", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "внутренняя ошибка"})
			return
		}
		if !deleted {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "посещение не найдено"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// DeleteLink обрабатывает DELETE /api/tracker/delete/:id
func DeleteLink(svc service.ServiceMethods, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {

		deletedVisits, existed, err := svc.DeleteLink(c.Request.Context(), log, c.Param("id"))
		if err != nil {
			log.Ctx(c.Request.Context()).Error("ошибка удаления ссылки", "error", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "внутренняя ошибка"})
			return
		}
		if !existed {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "ссылка не найдена"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "deletedVisits": deletedVisits})
	}
}

// GetIPInfo обрабатывает GET /api/tracker/ipinfo/:ip
func GetIPInfo(svc service.ServiceMethods, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {

		details, err := svc.IPInfo(c.Request.Context(), log, c.Param("ip"))
		if err != nil {
			log.Ctx(c.Request.Context()).Error("ошибка обогащения адреса", "error", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "внутренняя ошибка"})
			return
		}

		c.JSON(http.StatusOK, details)
	}
}
