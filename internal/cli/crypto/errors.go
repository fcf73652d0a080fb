package crypto

import (
	"errors"
	"fmt"
)

// Ошибки криптослоя. Все ошибки формата/подлинности блоба заворачиваются в
// ErrInvalidBlob, чтобы вызывающий код мог отличить «битые данные» от ошибок
// программирования (ErrConfiguration, ErrKeyLength).
var (
	// ErrConfiguration — отсутствующий или слишком короткий секрет/параметр.
	ErrConfiguration = errors.New("crypto: configuration error")

	// ErrKeyLength — ключ или IV неправильного размера при создании шифра.
	ErrKeyLength = errors.New("crypto: key is not 256 bits")

	// ErrInvalidBlob — повреждённый или несовместимый зашифрованный блоб.
	ErrInvalidBlob = errors.New("crypto: invalid blob")

	// ErrTagVerification — провал проверки аутентификационного тега.
	// Является ErrInvalidBlob, но различим через errors.Is.
	ErrTagVerification = fmt.Errorf("%w: tag verification failed", ErrInvalidBlob)
)

// invalidBlob строит ошибку формата с тегом причины и контекстом документа.
func invalidBlob(reason, docID, rev string) error {
	if docID == "" && rev == "" {
		return fmt.Errorf("%w: %s", ErrInvalidBlob, reason)
	}
	return fmt.Errorf("%w: %s (doc_id=%s rev=%s)", ErrInvalidBlob, reason, docID, rev)
}
