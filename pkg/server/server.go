package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/IPampurin/IpTracker/pkg/api"
	"github.com/IPampurin/IpTracker/pkg/configuration"
	"github.com/IPampurin/IpTracker/pkg/ipresolver"
	"github.com/IPampurin/IpTracker/pkg/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/logger"
)

func Run(ctx context.Context, cfg *configuration.Config, service *service.Service, resolver *ipresolver.Resolver, log logger.Logger) error {

	// создаём движок Gin через обёртку ginext
	engine := ginext.New(cfg.Server.GinMode)

	// добавляем middleware (логгер и восстановление)
	engine.Use(ginext.Logger(), ginext.Recovery())

	// добавляем свой middleware для структурного логирования запросов
	engine.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		// используем переданный логгер для записи информации о запросе
		log.LogRequest(c.Request.Context(), c.Request.Method, c.Request.URL.Path, c.Writer.Status(), duration)
	})

	// переход по отслеживаемой ссылке - единственный эндпоинт, который видят посетители
	engine.GET("/track/:id", api.TrackRedirect(service, resolver, &cfg.Tracker, log))

	// приём координат со страницы захвата геолокации
	engine.POST("/api/tracker/geolocation", api.ReceiveGeolocation(service, log))

	// операторский API
	engine.POST("/api/tracker/generate", api.GenerateLink(service, resolver, log)) // создание отслеживаемой ссылки
	engine.GET("/api/tracker/stats/:id", api.GetLinkStats(service, log))           // статистика и посещения одной ссылки
	engine.GET("/api/tracker/links", api.GetLinks(service, log))                   // список всех ссылок с агрегатами
	engine.GET("/api/tracker/visits", api.GetVisits(service, &cfg.Tracker, log))   // посещения по всем ссылкам
	engine.GET("/api/tracker/visit/:id", api.GetVisit(service, log))               // детали одного посещения
	engine.DELETE("/api/tracker/visit/:id", api.DeleteVisit(service, log))         // удаление одного посещения
	engine.DELETE("/api/tracker/delete/:id", api.DeleteLink(service, log))         // удаление ссылки со всеми посещениями
	engine.GET("/api/tracker/ipinfo/:ip", api.GetIPInfo(service, log))             // обогащение адреса через geo-IP сервис

	// метрики Prometheus
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// раздаём статические файлы из папки ./web
	engine.Static("/static", "./web")

	// для корневого пути отдаём index.html
	engine.GET("/", func(c *ginext.Context) {
		c.File("./web/index.html")
	})

	// формируем адрес запуска
	addr := fmt.Sprintf("%s:%d", cfg.Server.HostName, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: engine, // engine реализует http.Handler
	}

	// канал для ошибок от сервера
	errCh := make(chan error, 1)

	// запускаем сервер в горутине
	go func() {
		log.Info("запуск HTTP-сервера", "address", addr)
		err := srv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// ожидаем либо сигнала от контекста, либо ошибки запуска
	select {
	case <-ctx.Done():
		log.Info("получен сигнал завершения, останавливаем сервер...")
		// даём время на завершение текущих запросов (например, 5 секунд)
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("ошибка при graceful shutdown", "error", err)
			return err
		}
		log.Info("сервер корректно остановлен")
		return nil

	case err := <-errCh:
		log.Error("сервер завершился с ошибкой", "error", err)
		return err
	}
}
