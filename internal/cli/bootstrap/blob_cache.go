package bootstrap

import (
	"fmt"

	"DocVault/internal/cli/repo"
	fsrepo "DocVault/internal/cli/repo/fs"
	reposqlite "DocVault/internal/cli/repo/sqlite"
)

// OpenBlobCache открывает локальный кэш блобов для текущего пользователя,
// выполняет миграции и возвращает (cache, cleanup, error).
// cleanup необходимо вызвать после окончания работы, чтобы закрыть соединение с БД.
func OpenBlobCache() (repo.BlobCache, func() error, error) {
	login, err := (fsrepo.AuthFSStore{}).LoadLogin()
	if err != nil {
		return nil, nil, fmt.Errorf("нет активного пользователя: выполните login/register: %w", err)
	}
	c, _, err := reposqlite.OpenForUser(login)
	if err != nil {
		return nil, nil, fmt.Errorf("open user db: %w", err)
	}
	if err := c.Migrate(); err != nil {
		_ = c.Close()
		return nil, nil, fmt.Errorf("migrate user db: %w", err)
	}
	cleanup := func() error { return c.Close() }
	return c, cleanup, nil
}
