package service

import (
	"strconv"
	"strings"
)

// категории адресов для статистики
const (
	IPTypeLocal   = "Локальный/Ваш"
	IPTypePrivate = "Локальная сеть"
	IPTypeIPv6    = "IPv6"
	IPTypePublic  = "Публичный IP"
	IPTypeUnknown = "Неизвестно"
)

/*
классификация по подстрокам раскрытого User-Agent - сознательное упрощение,
порядок проверок значим и менять его нельзя (например, Chrome раньше Safari,
потому что агент Chrome содержит и "Safari")
*/

// BrowserName определяет браузер по строке User-Agent
func BrowserName(userAgent string) string {

	switch {
	case strings.Contains(userAgent, "Chrome"):
		return "Chrome"
	case strings.Contains(userAgent, "Firefox"):
		return "Firefox"
	case strings.Contains(userAgent, "Safari"): // Chrome отсечён выше
		return "Safari"
	case strings.Contains(userAgent, "Edge"):
		return "Edge"
	case strings.Contains(userAgent, "Opera"):
		return "Opera"
	default:
		return "Other"
	}
}

// OSName определяет операционную систему по строке User-Agent
func OSName(userAgent string) string {

	switch {
	case strings.Contains(userAgent, "Windows"):
		return "Windows"
	case strings.Contains(userAgent, "Mac OS"):
		return "macOS"
	case strings.Contains(userAgent, "Linux"):
		return "Linux"
	case strings.Contains(userAgent, "Android"):
		return "Android"
	case strings.Contains(userAgent, "iOS"), strings.Contains(userAgent, "iPhone"):
		return "iOS"
	default:
		return "Unknown OS"
	}
}

// DeviceType определяет тип устройства по строке User-Agent
func DeviceType(userAgent string) string {

	switch {
	case strings.Contains(userAgent, "Mobile"):
		return "Mobile"
	case strings.Contains(userAgent, "Tablet"):
		return "Tablet"
	default:
		return "Desktop"
	}
}

// IPType классифицирует определённый адрес посетителя:
// loopback/свой, частная сеть (RFC1918), IPv6 или публичный
func IPType(ip string) string {

	if ip == "" {
		return IPTypeUnknown
	}

	if ip == "127.0.0.1" || strings.Contains(ip, "your public IP") {
		return IPTypeLocal
	}

	if strings.HasPrefix(ip, "192.168.") || strings.HasPrefix(ip, "10.") {
		return IPTypePrivate
	}

	// 172.16.0.0/12 проверяем разбором второго октета
	if strings.HasPrefix(ip, "172.") {
		parts := strings.Split(ip, ".")
		if len(parts) > 1 {
			if second, err := strconv.Atoi(parts[1]); err == nil && second >= 16 && second <= 31 {
				return IPTypePrivate
			}
		}
	}

	if strings.Contains(ip, ":") {
		return IPTypeIPv6
	}

	return IPTypePublic
}
