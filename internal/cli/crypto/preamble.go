package crypto

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"
)

// Scheme — схема шифрования, записанная в преамбуле.
type Scheme byte

// SchemeSymKey — единственная действующая схема (симметричный ключ).
const SchemeSymKey Scheme = 1

// Method идентифицирует шифр, которым зашифрован полезный груз.
type Method byte

const (
	// MethodAES256CTR — легаси-метод без аутентификации.
	MethodAES256CTR Method = 1
	// MethodAES256GCM — текущий AEAD-метод.
	MethodAES256GCM Method = 2
)

const (
	// IVLength — длина вектора инициализации.
	IVLength = 16
	// TagLength — длина аутентификационного тега GCM.
	TagLength = 16

	// идентификатор и ревизия хранятся pascal-строками фиксированной ширины:
	// 1 байт длины + до 254 байт содержимого.
	idFieldLength = 255

	// PreambleLegacySize — точный размер легаси-преамбулы (без поля size).
	PreambleLegacySize = 2 + 1 + 1 + 8 + IVLength + idFieldLength + idFieldLength
	// PreambleCurrentSize — точный размер текущей преамбулы (+ size u64).
	PreambleCurrentSize = PreambleLegacySize + 8
)

// blobSignatureMagic — фиксированная двухбайтовая сигнатура преамбулы.
var blobSignatureMagic = [2]byte{0x13, 0x37}

// Preamble — аутентифицируемый (но не шифруемый) заголовок блоба.
// Legacy=true означает, что байты пришли в старой раскладке без поля Size;
// Size в этом случае равен -1.
type Preamble struct {
	Scheme    Scheme
	Method    Method
	Timestamp int64
	IV        []byte
	DocID     string
	Rev       string
	Size      int64
	Legacy    bool

	magic [2]byte
}

// NewPreamble собирает преамбулу текущей раскладки для данного документа.
func NewPreamble(info DocInfo, method Method, iv []byte, size int64) *Preamble {
	return &Preamble{
		Scheme:    SchemeSymKey,
		Method:    method,
		Timestamp: time.Now().Unix(),
		IV:        iv,
		DocID:     info.DocID,
		Rev:       info.Rev,
		Size:      size,
		magic:     blobSignatureMagic,
	}
}

// Encode сериализует преамбулу. Кодируется всегда текущая раскладка
// (с полем size), big-endian.
func (p *Preamble) Encode() ([]byte, error) {
	if len(p.IV) != IVLength {
		return nil, fmt.Errorf("%w: iv is not 128 bits", ErrKeyLength)
	}
	if len(p.DocID) > idFieldLength-1 {
		return nil, fmt.Errorf("%w: document id longer than %d bytes", ErrConfiguration, idFieldLength-1)
	}
	if len(p.Rev) > idFieldLength-1 {
		return nil, fmt.Errorf("%w: revision longer than %d bytes", ErrConfiguration, idFieldLength-1)
	}

	out := make([]byte, PreambleCurrentSize)
	off := 0
	off += copy(out[off:], blobSignatureMagic[:])
	out[off] = byte(p.Scheme)
	off++
	out[off] = byte(p.Method)
	off++
	binary.BigEndian.PutUint64(out[off:], uint64(p.Timestamp))
	off += 8
	off += copy(out[off:], p.IV)
	off += putPascal(out[off:], p.DocID)
	off += putPascal(out[off:], p.Rev)
	binary.BigEndian.PutUint64(out[off:], uint64(p.Size))
	return out, nil
}

// DecodePreamble разбирает байты преамбулы, выбирая раскладку по точной длине.
// Любая другая длина — ошибка формата.
func DecodePreamble(raw []byte) (*Preamble, error) {
	var legacy bool
	switch len(raw) {
	case PreambleCurrentSize:
	case PreambleLegacySize:
		legacy = true
	default:
		return nil, invalidBlob("bad preamble size", "", "")
	}

	p := &Preamble{Legacy: legacy, Size: -1}
	off := 0
	off += copy(p.magic[:], raw[:2])
	p.Scheme = Scheme(raw[off])
	off++
	p.Method = Method(raw[off])
	off++
	p.Timestamp = int64(binary.BigEndian.Uint64(raw[off:]))
	off += 8
	p.IV = bytes.Clone(raw[off : off+IVLength])
	off += IVLength

	docID, err := getPascal(raw[off:])
	if err != nil {
		return nil, err
	}
	p.DocID = docID
	off += idFieldLength

	rev, err := getPascal(raw[off:])
	if err != nil {
		return nil, err
	}
	p.Rev = rev
	off += idFieldLength

	if !legacy {
		p.Size = int64(binary.BigEndian.Uint64(raw[off:]))
	} else {
		logger.Warnw("Decoded legacy preamble without size field", "doc_id", p.DocID)
	}
	return p, nil
}

// Validate сверяет преамбулу с ожиданиями вызывающего кода. Порядок проверок
// фиксирован: magic, scheme, method, ревизия, идентификатор.
func (p *Preamble) Validate(expect DocInfo, method Method) error {
	if p.magic != blobSignatureMagic {
		return invalidBlob("bad magic", expect.DocID, expect.Rev)
	}
	if p.Scheme != SchemeSymKey {
		return invalidBlob("bad scheme", expect.DocID, expect.Rev)
	}
	if p.Method != method {
		return invalidBlob("bad method", expect.DocID, expect.Rev)
	}
	if p.Rev != expect.Rev {
		return invalidBlob("revision mismatch", expect.DocID, expect.Rev)
	}
	if p.DocID != expect.DocID {
		return invalidBlob("id mismatch", expect.DocID, expect.Rev)
	}
	return nil
}

func putPascal(dst []byte, s string) int {
	dst[0] = byte(len(s))
	copy(dst[1:idFieldLength], s)
	return idFieldLength
}

func getPascal(src []byte) (string, error) {
	n := int(src[0])
	if n > idFieldLength-1 {
		return "", invalidBlob("bad field length", "", "")
	}
	return string(src[1 : 1+n]), nil
}
