package model

import "time"

// Document — серверная модель документа. Содержимое приходит от клиента уже
// зашифрованным: поле Raw несёт armored-блоб как есть, сервер его не
// интерпретирует.
type Document struct {
	ID     string `gorm:"primaryKey;type:uuid"`
	UserID int64  `gorm:"not null;index:idx_documents_user_doc,unique"`

	// Связи
	User *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	DocID string `gorm:"not null;index:idx_documents_user_doc,unique"`
	Rev   string `gorm:"not null"`
	Raw   string // armored EncryptedBlob под ключом "raw"

	Version int64 `gorm:"not null;default:1"`
	Deleted bool  `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// SyncLog — журнал синхронизации: по записи на каждое принятое изменение.
type SyncLog struct {
	ID     int64  `gorm:"primaryKey;autoIncrement"`
	UserID int64  `gorm:"not null;index"`
	DocID  string `gorm:"not null;index"`
	Rev    string `gorm:"not null"`
	Action string `gorm:"not null"` // put | delete

	CreatedAt time.Time `gorm:"autoCreateTime"`
}
