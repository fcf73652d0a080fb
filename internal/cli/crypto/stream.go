package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
)

// ChunkSize — единица потокового ввода/вывода. Параметр производительности,
// а не криптографический инвариант: корректность шифра от границ чанков
// не зависит.
const ChunkSize = 64 * 1024

type cipherState int

const (
	stateNew cipherState = iota
	stateAuthenticated
	stateStreaming
	stateFinalized
)

// StreamCipher — чанковый AEAD-движок: машина состояний
// NEW → AUTHENTICATED → STREAMING → FINALIZED.
//
// В режиме GCM входные чанки накапливаются, а само преобразование выполняется
// на Finalize одним вызовом Seal/Open (AEAD стандартной библиотеки одношаговый);
// чанковый Write сохраняет точки приостановки и отмены на границах чанков.
// В режиме CTR поток шифруется по мере записи и тега не имеет.
type StreamCipher struct {
	method  Method
	state   cipherState
	decrypt bool

	aead   cipher.AEAD   // GCM
	stream cipher.Stream // CTR

	iv  []byte
	ad  []byte
	buf bytes.Buffer
	tag []byte // ожидаемый тег (decrypt) либо вычисленный (encrypt)
}

// NewStreamCipher создаёт шифрующий экземпляр.
func NewStreamCipher(key, iv []byte, method Method) (*StreamCipher, error) {
	return newStreamCipher(key, iv, method, false, nil)
}

// NewStreamVerifier создаёт расшифровывающий экземпляр. Для GCM tag обязателен
// и проверяется на Finalize; для легаси CTR тега нет и tag должен быть пустым.
func NewStreamVerifier(key, iv []byte, method Method, tag []byte) (*StreamCipher, error) {
	if method == MethodAES256GCM && len(tag) != TagLength {
		return nil, invalidBlob("bad tag length", "", "")
	}
	if method == MethodAES256CTR && len(tag) != 0 {
		return nil, fmt.Errorf("%w: ctr mode carries no tag", ErrConfiguration)
	}
	return newStreamCipher(key, iv, method, true, tag)
}

func newStreamCipher(key, iv []byte, method Method, decrypt bool, tag []byte) (*StreamCipher, error) {
	if len(key) != KeyLength {
		return nil, ErrKeyLength
	}
	if len(iv) != IVLength {
		return nil, fmt.Errorf("%w: iv is not 128 bits", ErrKeyLength)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	c := &StreamCipher{
		method:  method,
		decrypt: decrypt,
		iv:      bytes.Clone(iv),
		tag:     bytes.Clone(tag),
	}
	switch method {
	case MethodAES256GCM:
		// 16-байтовый nonce сохранён для совместимости формата.
		aead, err := cipher.NewGCMWithNonceSize(block, IVLength)
		if err != nil {
			return nil, err
		}
		c.aead = aead
	case MethodAES256CTR:
		c.stream = cipher.NewCTR(block, iv)
	default:
		return nil, fmt.Errorf("%w: unknown cipher method %d", ErrConfiguration, method)
	}
	return c, nil
}

// Authenticate привязывает байты (преамбулу) как associated data AEAD.
// Вызывается ровно один раз, до любой записи. Для CTR-режима данных нет
// и вызов допустим только с пустым аргументом.
func (c *StreamCipher) Authenticate(ad []byte) error {
	if c.state != stateNew {
		return errors.New("crypto: associated data must be set once, before writes")
	}
	if c.method == MethodAES256CTR && len(ad) > 0 {
		return fmt.Errorf("%w: ctr mode cannot authenticate data", ErrConfiguration)
	}
	c.ad = bytes.Clone(ad)
	c.state = stateAuthenticated
	return nil
}

// Write подаёт очередной чанк открытого текста (encrypt) или шифртекста
// (decrypt). Чанки должны приходить строго в исходном порядке.
func (c *StreamCipher) Write(chunk []byte) (int, error) {
	switch c.state {
	case stateFinalized:
		return 0, errors.New("crypto: write after finalize")
	case stateNew:
		return 0, errors.New("crypto: write before associated data")
	}
	c.state = stateStreaming

	if c.method == MethodAES256CTR {
		out := make([]byte, len(chunk))
		c.stream.XORKeyStream(out, chunk)
		c.buf.Write(out)
		return len(chunk), nil
	}
	c.buf.Write(chunk)
	return len(chunk), nil
}

// Finalize завершает шифр и возвращает накопленный выход (без тега).
// В режиме шифрования вычисленный тег доступен через Tag; в режиме
// расшифровки здесь проверяется подлинность, провал — ErrTagVerification.
func (c *StreamCipher) Finalize() ([]byte, error) {
	if c.state == stateFinalized {
		return nil, errors.New("crypto: already finalized")
	}
	c.state = stateFinalized

	if c.method == MethodAES256CTR {
		return c.buf.Bytes(), nil
	}

	if c.decrypt {
		sealed := append(c.buf.Bytes(), c.tag...)
		plain, err := c.aead.Open(nil, c.iv, sealed, c.ad)
		if err != nil {
			return nil, ErrTagVerification
		}
		return plain, nil
	}

	sealed := c.aead.Seal(nil, c.iv, c.buf.Bytes(), c.ad)
	n := len(sealed) - TagLength
	c.tag = sealed[n:]
	return sealed[:n], nil
}

// Tag возвращает аутентификационный тег: вычисленный после Finalize при
// шифровании либо ожидаемый, переданный при создании verifier-а.
func (c *StreamCipher) Tag() []byte {
	return c.tag
}
