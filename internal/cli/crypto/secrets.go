package crypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

const (
	// SecretLength — длина «половины» аккаунт-секрета в байтах. Первая половина
	// зарезервирована под легаси-вывод MAC-ключа, вторая используется для вывода
	// симметричных ключей документов.
	SecretLength = 64

	// secretFileLength — размер секрета, который генерирует клиент (обе половины
	// плюс запас, как в исходной схеме).
	secretFileLength = 96

	// KeyLength — длина ключа для AES‑256 (в байтах).
	KeyLength = 32
)

// logger используется для предупреждений криптослоя (фиксированный IV,
// легаси-преамбула). По умолчанию — noop, main может передать свой.
var logger = zap.NewNop().Sugar()

// SetLogger передаёт логгер в пакет crypto.
func SetLogger(l *zap.SugaredLogger) {
	if l != nil {
		logger = l
	}
}

// DocInfo — неизменяемая идентичность зашифрованного документа.
// Задаётся вызывающим кодом и никогда не выводится из шифртекста.
type DocInfo struct {
	DocID string
	Rev   string
}

// DeriveSymKey выводит 32-байтовый симметричный ключ документа:
// HMAC-SHA256(secret[SecretLength:], docID). Чистая функция.
func DeriveSymKey(secret []byte, docID string) ([]byte, error) {
	if len(secret) < SecretLength {
		return nil, fmt.Errorf("%w: secret is missing or shorter than %d bytes", ErrConfiguration, SecretLength)
	}
	return hmacSHA256(secret[SecretLength:], []byte(docID)), nil
}

// DeriveMACKey выводит MAC-ключ документа из первой половины секрета.
// Используется только легаси-схемой; GCM-путь в нём не нуждается.
func DeriveMACKey(secret []byte, docID string) ([]byte, error) {
	if len(secret) < SecretLength {
		return nil, fmt.Errorf("%w: secret is missing or shorter than %d bytes", ErrConfiguration, SecretLength)
	}
	return hmacSHA256(secret[:SecretLength], []byte(docID)), nil
}

func hmacSHA256(key, data []byte) []byte {
	m := hmac.New(sha256.New, key)
	m.Write(data)
	return m.Sum(nil)
}

// secretFilePath возвращает путь к файлу аккаунт-секрета рядом с БД SQLite
// (используется та же логика базового каталога, что и у локального стора).
func secretFilePath(login string) (string, error) {
	if login == "" {
		return "", errors.New("empty login for secret path")
	}
	base := os.Getenv("CLIENT_DB_PATH")
	if base == "" {
		cfgDir, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(cfgDir, "DocVault", "users")
	}
	dir := filepath.Join(base, login)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "secret.bin"), nil
}

// LoadOrCreateSecret загружает существующий аккаунт-секрет пользователя или
// создаёт новый случайный длиной secretFileLength байт.
func LoadOrCreateSecret(login string) ([]byte, error) {
	path, err := secretFilePath(login)
	if err != nil {
		return nil, err
	}
	if b, err := os.ReadFile(path); err == nil {
		if len(b) < SecretLength {
			return nil, fmt.Errorf("%w: stored secret is too short", ErrConfiguration)
		}
		return b, nil
	}
	secret := make([]byte, secretFileLength)
	if _, err := io.ReadFull(rand.Reader, secret); err != nil {
		return nil, err
	}
	// записываем с ограниченными правами доступа
	if err := os.WriteFile(path, secret, 0o600); err != nil {
		return nil, err
	}
	return secret, nil
}
