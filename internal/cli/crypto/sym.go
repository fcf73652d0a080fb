package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"io"
	"strings"
)

// Одноразовые символьные хелперы: нестриминговое шифрование небольших
// буферов (секреты второго класса). Преамбулы и associated data нет,
// получатель сам хранит IV. GCM — путь по умолчанию; CTR оставлен для
// легаси-данных и целостности не даёт.

// EncryptSym шифрует data ключом key. Возвращает base64(iv) и
// ciphertext‖tag (для CTR — просто ciphertext).
func EncryptSym(data, key []byte, method Method) (string, []byte, error) {
	iv := make([]byte, IVLength)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", nil, err
	}
	c, err := NewStreamCipher(key, iv, method)
	if err != nil {
		return "", nil, err
	}
	if err := c.Authenticate(nil); err != nil {
		return "", nil, err
	}
	if _, err := c.Write(data); err != nil {
		return "", nil, err
	}
	out, err := c.Finalize()
	if err != nil {
		return "", nil, err
	}
	if method == MethodAES256GCM {
		out = append(out, c.Tag()...)
	}
	return base64.StdEncoding.EncodeToString(iv), out, nil
}

// DecryptSym расшифровывает выход EncryptSym.
func DecryptSym(data, key []byte, ivB64 string, method Method) ([]byte, error) {
	iv, err := base64.StdEncoding.DecodeString(ivB64)
	if err != nil {
		return nil, invalidBlob("malformed base64 iv", "", "")
	}
	var tag []byte
	if method == MethodAES256GCM {
		if len(data) < TagLength {
			return nil, invalidBlob("payload shorter than tag", "", "")
		}
		tag = data[len(data)-TagLength:]
		data = data[:len(data)-TagLength]
	}
	c, err := NewStreamVerifier(key, iv, method, tag)
	if err != nil {
		return nil, err
	}
	if err := c.Authenticate(nil); err != nil {
		return nil, err
	}
	if _, err := c.Write(data); err != nil {
		return nil, err
	}
	return c.Finalize()
}

// rawPrefix — внешняя JSON-обёртка, под которой документ несёт armored-блоб.
const rawPrefix = `{"raw": "`

// IsSymmetricallyEncrypted — дешёвая проверка префикса: отличает зашифрованный
// документ от легаси-плейнтекста без полного разбора. Декодируются первые
// 4 символа base64 (3 байта: magic и scheme).
func IsSymmetricallyEncrypted(content string) bool {
	if !strings.HasPrefix(content, rawPrefix) {
		return false
	}
	b64 := content[len(rawPrefix):]
	if len(b64) < 4 {
		return false
	}
	head, err := base64.URLEncoding.DecodeString(b64[:4])
	if err != nil || len(head) < 3 {
		return false
	}
	return head[0] == blobSignatureMagic[0] &&
		head[1] == blobSignatureMagic[1] &&
		Scheme(head[2]) == SchemeSymKey
}
