package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const sizeLinkID = 8 // длина идентификатора отслеживаемой ссылки в hex-символах

// NewLinkID возвращает короткий идентификатор ссылки:
// первые 8 hex-символов случайного 128-битного значения.
// Глобальная уникальность при создании обеспечивается первичным ключом,
// вероятность коллизии пренебрежимо мала и отдельно не обрабатывается.
func NewLinkID() (string, error) {

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("ошибка генерации идентификатора ссылки: %w", err)
	}

	return hex.EncodeToString(buf)[:sizeLinkID], nil
}
