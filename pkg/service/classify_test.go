package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	uaChrome  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	uaFirefox = "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"
	uaSafari  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
)

// TestBrowserName тестирует определение браузера по User-Agent
func TestBrowserName(t *testing.T) {

	tests := []struct {
		name      string
		userAgent string
		expected  string
	}{
		{
			name:      "Chrome определяется раньше Safari",
			userAgent: uaChrome,
			expected:  "Chrome",
		},
		{
			name:      "Firefox",
			userAgent: uaFirefox,
			expected:  "Firefox",
		},
		{
			name:      "Safari без Chrome в строке",
			userAgent: uaSafari,
			expected:  "Safari",
		},
		{
			name:      "неизвестный агент",
			userAgent: "curl/8.4.0",
			expected:  "Other",
		},
		{
			name:      "пустая строка",
			userAgent: "",
			expected:  "Other",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BrowserName(tt.userAgent))
		})
	}
}

// TestOSName тестирует определение операционной системы по User-Agent
func TestOSName(t *testing.T) {

	tests := []struct {
		name      string
		userAgent string
		expected  string
	}{
		{
			name:      "Windows",
			userAgent: uaChrome,
			expected:  "Windows",
		},
		{
			name:      "Linux",
			userAgent: uaFirefox,
			expected:  "Linux",
		},
		{
			name:      "iPhone распознаётся как iOS",
			userAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0)",
			expected:  "iOS",
		},
		{
			name:      "неизвестная система",
			userAgent: "curl/8.4.0",
			expected:  "Unknown OS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, OSName(tt.userAgent))
		})
	}
}

// TestOSNameMacBeforeiOS проверяет, что агент Safari на iPhone содержит
// "Mac OS" и потому классифицируется как macOS - порядок проверок значим
func TestOSNameMacBeforeiOS(t *testing.T) {
	assert.Equal(t, "macOS", OSName(uaSafari))
}

// TestDeviceType тестирует определение типа устройства по User-Agent
func TestDeviceType(t *testing.T) {

	tests := []struct {
		name      string
		userAgent string
		expected  string
	}{
		{
			name:      "мобильное устройство",
			userAgent: uaSafari,
			expected:  "Mobile",
		},
		{
			name:      "планшет",
			userAgent: "Mozilla/5.0 (Tablet; rv:68.0) Gecko/68.0 Firefox/68.0",
			expected:  "Tablet",
		},
		{
			name:      "десктоп по умолчанию",
			userAgent: uaChrome,
			expected:  "Desktop",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DeviceType(tt.userAgent))
		})
	}
}

// TestIPType тестирует классификацию адресов посетителей
func TestIPType(t *testing.T) {

	tests := []struct {
		name     string
		ip       string
		expected string
	}{
		{
			name:     "пустой адрес",
			ip:       "",
			expected: IPTypeUnknown,
		},
		{
			name:     "loopback",
			ip:       "127.0.0.1",
			expected: IPTypeLocal,
		},
		{
			name:     "внешний адрес с пометкой",
			ip:       "203.0.113.7 (your public IP)",
			expected: IPTypeLocal,
		},
		{
			name:     "частная сеть 192.168",
			ip:       "192.168.1.42",
			expected: IPTypePrivate,
		},
		{
			name:     "частная сеть 10",
			ip:       "10.0.0.5",
			expected: IPTypePrivate,
		},
		{
			name:     "частная сеть 172.16/12 внутри диапазона",
			ip:       "172.20.10.1",
			expected: IPTypePrivate,
		},
		{
			name:     "172 вне диапазона частной сети",
			ip:       "172.32.0.1",
			expected: IPTypePublic,
		},
		{
			name:     "IPv6",
			ip:       "2001:db8::1",
			expected: IPTypeIPv6,
		},
		{
			name:     "публичный IPv4",
			ip:       "8.8.8.8",
			expected: IPTypePublic,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IPType(tt.ip))
		})
	}
}
