package crypto

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

// Separator — единственный байт, разделяющий base64(preamble) и
// base64(ciphertext‖tag) в armored-представлении.
const Separator = ' '

// BlobEncryptor превращает (метаданные документа, поток открытого текста)
// в зашифрованный блоб: preamble ‖ ciphertext ‖ tag, при armor=true — обе
// части в base64url через Separator.
type BlobEncryptor struct {
	info   DocInfo
	source io.ReadSeeker
	armor  bool

	key []byte
	iv  []byte
	tag []byte
}

// EncryptorOption настраивает BlobEncryptor.
type EncryptorOption func(*BlobEncryptor)

// WithFixedIV задаёт фиксированный IV. Только для детерминированных тестов.
func WithFixedIV(iv []byte) EncryptorOption {
	return func(e *BlobEncryptor) { e.iv = bytes.Clone(iv) }
}

// NewBlobEncryptor подготавливает шифрование документа: выводит ключ и
// генерирует случайный IV. Источник должен поддерживать Seek — полная длина
// открытого текста замеряется заранее и попадает в преамбулу.
func NewBlobEncryptor(info DocInfo, source io.ReadSeeker, secret []byte, armor bool, opts ...EncryptorOption) (*BlobEncryptor, error) {
	key, err := DeriveSymKey(secret, info.DocID)
	if err != nil {
		return nil, err
	}
	e := &BlobEncryptor{info: info, source: source, armor: armor, key: key}
	for _, opt := range opts {
		opt(e)
	}
	if e.iv == nil {
		e.iv = make([]byte, IVLength)
		if _, err := io.ReadFull(rand.Reader, e.iv); err != nil {
			return nil, err
		}
	} else {
		logger.Warnw("Using a fixed IV. Use only for testing!", "doc_id", info.DocID)
	}
	return e, nil
}

// Encrypt прогоняет открытый текст через шифр чанками по ChunkSize и собирает
// итоговый блоб. Отмена контекста проверяется на границах чанков; частичный
// результат при этом не фиксируется.
func (e *BlobEncryptor) Encrypt(ctx context.Context) (*bytes.Buffer, error) {
	size, err := e.source.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	if _, err := e.source.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	preamble, err := NewPreamble(e.info, MethodAES256GCM, e.iv, size).Encode()
	if err != nil {
		return nil, err
	}

	c, err := NewStreamCipher(e.key, e.iv, MethodAES256GCM)
	if err != nil {
		return nil, err
	}
	if err := c.Authenticate(preamble); err != nil {
		return nil, err
	}
	if err := pump(ctx, c, e.source); err != nil {
		return nil, err
	}
	ciphertext, err := c.Finalize()
	if err != nil {
		return nil, err
	}
	e.tag = c.Tag()

	result := &bytes.Buffer{}
	if e.armor {
		enc := base64.URLEncoding
		result.WriteString(enc.EncodeToString(preamble))
		result.WriteByte(Separator)
		result.WriteString(enc.EncodeToString(append(ciphertext, e.tag...)))
	} else {
		result.Write(preamble)
		result.Write(ciphertext)
		result.Write(e.tag)
	}
	return result, nil
}

// Tag возвращает аутентификационный тег последнего Encrypt.
func (e *BlobEncryptor) Tag() []byte {
	return e.tag
}

// BlobDecryptor — обратная операция: разбор и проверка преамбулы, вывод
// ключа, прогон шифртекста через verifier и проверка тега. Непроверенный
// открытый текст наружу не отдаётся.
type BlobDecryptor struct {
	info   DocInfo
	source io.Reader
	armor  bool
	method Method

	secret []byte
}

// NewBlobDecryptor подготавливает расшифровку документа. Ожидаемые doc_id и
// rev сверяются с преамбулой; метод по умолчанию — AES-256-GCM.
func NewBlobDecryptor(info DocInfo, source io.Reader, secret []byte, armor bool) (*BlobDecryptor, error) {
	if len(secret) < SecretLength {
		return nil, fmt.Errorf("%w: secret is missing or shorter than %d bytes", ErrConfiguration, SecretLength)
	}
	return &BlobDecryptor{
		info:   info,
		source: source,
		armor:  armor,
		method: MethodAES256GCM,
		secret: secret,
	}, nil
}

// Decrypt возвращает открытый текст и заявленный в преамбуле размер
// (-1 для легаси-раскладки без поля size).
func (d *BlobDecryptor) Decrypt(ctx context.Context) (*bytes.Buffer, int64, error) {
	data, err := io.ReadAll(d.source)
	if err != nil {
		return nil, 0, err
	}

	rawPreamble, payload, err := d.split(data)
	if err != nil {
		return nil, 0, err
	}

	preamble, err := DecodePreamble(rawPreamble)
	if err != nil {
		return nil, 0, err
	}
	if err := preamble.Validate(d.info, d.method); err != nil {
		return nil, 0, err
	}

	if len(payload) < TagLength {
		return nil, 0, invalidBlob("payload shorter than tag", d.info.DocID, d.info.Rev)
	}
	ciphertext := payload[:len(payload)-TagLength]
	tag := payload[len(payload)-TagLength:]

	key, err := DeriveSymKey(d.secret, d.info.DocID)
	if err != nil {
		return nil, 0, err
	}
	c, err := NewStreamVerifier(key, preamble.IV, d.method, tag)
	if err != nil {
		return nil, 0, err
	}
	if err := c.Authenticate(rawPreamble); err != nil {
		return nil, 0, err
	}
	if err := pump(ctx, c, bytes.NewReader(ciphertext)); err != nil {
		return nil, 0, err
	}
	cleartext, err := c.Finalize()
	if err != nil {
		return nil, 0, fmt.Errorf("%w (doc_id=%s rev=%s)", err, d.info.DocID, d.info.Rev)
	}
	return bytes.NewBuffer(cleartext), preamble.Size, nil
}

// split отделяет байты преамбулы от ciphertext‖tag. Armored-вход режется по
// Separator и декодируется из base64url; сырой вход пробуется сначала как
// текущая раскладка, затем как легаси (итоговую ошибку разбиения всё равно
// поймает проверка тега — associated data не совпадёт).
func (d *BlobDecryptor) split(data []byte) (rawPreamble, payload []byte, err error) {
	if d.armor {
		idx := bytes.IndexByte(data, Separator)
		if idx < 0 {
			return nil, nil, invalidBlob("missing separator", d.info.DocID, d.info.Rev)
		}
		enc := base64.URLEncoding
		rawPreamble, err = enc.DecodeString(string(data[:idx]))
		if err != nil {
			return nil, nil, invalidBlob("malformed base64 preamble", d.info.DocID, d.info.Rev)
		}
		payload, err = enc.DecodeString(string(data[idx+1:]))
		if err != nil {
			return nil, nil, invalidBlob("malformed base64 payload", d.info.DocID, d.info.Rev)
		}
		return rawPreamble, payload, nil
	}

	if len(data) >= PreambleCurrentSize+TagLength {
		head := data[:PreambleCurrentSize]
		if p, decErr := DecodePreamble(head); decErr == nil {
			// size должен сходиться с фактической длиной шифртекста,
			// иначе это легаси-блоб, захвативший 8 байт шифртекста.
			if p.Size == int64(len(data)-PreambleCurrentSize-TagLength) {
				return head, data[PreambleCurrentSize:], nil
			}
		}
	}
	if len(data) >= PreambleLegacySize+TagLength {
		return data[:PreambleLegacySize], data[PreambleLegacySize:], nil
	}
	return nil, nil, invalidBlob("bad preamble size", d.info.DocID, d.info.Rev)
}

// pump гонит байты источника в шифр чанками по ChunkSize, останавливаясь
// между чанками при отмене контекста.
func pump(ctx context.Context, c *StreamCipher, src io.Reader) error {
	buf := make([]byte, ChunkSize)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := c.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
