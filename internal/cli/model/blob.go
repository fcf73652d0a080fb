package model

// CachedBlob — расшифрованный блоб в локальной клиентской БД.
// Кэш локально доверенный: содержимое хранится в открытом виде,
// шифрование выполняется только перед отправкой на сервер.
type CachedBlob struct {
	BlobID    string
	Payload   []byte // в списках не заполняется
	Size      int64
	CreatedAt int64
	UpdatedAt int64
}
