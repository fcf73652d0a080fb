package view

// BlobEntry — DTO для отображения блоба в выводе CLI.
type BlobEntry struct {
	BlobID string
	Size   int64
	Local  bool // есть в локальном кэше
	Remote bool // числится на сервере
}
