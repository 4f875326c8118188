package ipresolver

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/wb-go/wbf/logger"
)

const (
	// Unknown - литерал, возвращаемый когда адрес определить не удалось совсем
	Unknown = "Unknown"

	// PublicIPSuffix - пометка к внешнему адресу, подставляемому вместо loopback
	PublicIPSuffix = " (your public IP)"

	// probeFailed - сентинел в кэше внешнего адреса: все сервисы опроса недоступны,
	// повторный опрос только по принудительному обновлению
	probeFailed = "could not determine"

	defaultProbeTimeout = 3 * time.Second
)

// defaultServices - сервисы определения внешнего адреса, опрашиваются по порядку
var defaultServices = []string{
	"https://api.ipify.org",
	"https://icanhazip.com",
	"https://checkip.amazonaws.com",
}

// Resolver определяет наиболее вероятный публичный адрес HTTP-запроса.
// Внешний адрес самого процесса кэшируется в единственной ячейке на всё время жизни,
// запись атомарная, гонка конкурентных обновлений допустима (результат идемпотентен).
type Resolver struct {
	client   *http.Client
	services []string
	external atomic.Value // string
	log      logger.Logger
}

// New возвращает резолвер с заданным таймаутом опроса внешних сервисов.
// Если список сервисов не передан, используется стандартный набор.
func New(probeTimeout time.Duration, log logger.Logger, services ...string) *Resolver {

	if probeTimeout <= 0 {
		probeTimeout = defaultProbeTimeout
	}
	if len(services) == 0 {
		services = defaultServices
	}

	return &Resolver{
		client:   &http.Client{Timeout: probeTimeout},
		services: services,
		log:      log,
	}
}

// Resolve возвращает адрес, с которого по мнению системы пришёл запрос.
// Заголовки прокси доверяются как есть (см. GetIpType в статистике - границу
// подделки осознанно не укрепляем). forceRefresh принудительно обновляет
// кэш внешнего адреса и используется только при создании ссылки.
func (rs *Resolver) Resolve(r *http.Request, forceRefresh bool) string {

	// 1. первый адрес из X-Forwarded-For
	if xff := r.Header.Get("X-Forwarded-For"); strings.TrimSpace(xff) != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}

	// 2. X-Real-IP
	if xrip := strings.TrimSpace(r.Header.Get("X-Real-IP")); xrip != "" {
		return xrip
	}

	// 3. транспортный адрес, IPv6 loopback приводим к IPv4
	ip := remoteHost(r.RemoteAddr)
	if ip == "::1" {
		ip = "127.0.0.1"
	}

	// 4. loopback означает, что запрос пришёл с хоста самого сервера -
	// подставляем внешний адрес процесса
	if ip == "127.0.0.1" || ip == "" {
		external := rs.externalIP(r.Context(), forceRefresh)
		if ip == "127.0.0.1" && external != "" && external != probeFailed {
			return external + PublicIPSuffix
		}
	}

	// 5. срезаем хвост :port - наивно по первому двоеточию; чистый IPv6 сюда
	// не попадает, потому что ::1 нормализован выше (порядок проверок не менять)
	if strings.Contains(ip, ":") {
		ip = strings.Split(ip, ":")[0]
	}

	if ip == "" {
		return Unknown
	}

	return ip
}

// externalIP возвращает кэшированный внешний адрес процесса,
// при пустом кэше или force опрашивает внешние сервисы по порядку
func (rs *Resolver) externalIP(ctx context.Context, force bool) string {

	if cached, ok := rs.external.Load().(string); ok && cached != "" && !force {
		return cached
	}

	for _, service := range rs.services {
		ip, err := rs.probe(ctx, service)
		if err != nil || ip == "" {
			// сервис недоступен - молча пробуем следующий
			continue
		}

		rs.external.Store(ip)

		if rs.log != nil {
			rs.log.Ctx(ctx).Info("определён публичный IP процесса", "ip", ip, "service", service)
		}

		return ip
	}

	if rs.log != nil {
		rs.log.Ctx(ctx).Warn("не удалось определить публичный IP, все сервисы недоступны")
	}

	rs.external.Store(probeFailed)

	return probeFailed
}

// maxProbeBody ограничивает чтение ответа сервиса: адрес занимает десятки байт,
// всё сверх лимита - мусор от неисправного сервиса
const maxProbeBody = 256

// probe делает один запрос к сервису вида "что у меня за IP"
func (rs *Resolver) probe(ctx context.Context, service string) (string, error) {

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, service, nil)
	if err != nil {
		return "", err
	}

	resp, err := rs.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	// тело с ошибочным статусом не читаем: это не адрес, кэшировать его нельзя
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("сервис %s ответил статусом %d", service, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProbeBody))
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(body)), nil
}

// remoteHost выделяет хост из транспортного адреса ("1.2.3.4:5678", "[::1]:5678")
func remoteHost(remoteAddr string) string {

	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}

	return host
}
