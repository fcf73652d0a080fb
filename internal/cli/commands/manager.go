package commands

import (
	"fmt"

	"DocVault/internal/cli/bootstrap"
	"DocVault/internal/cli/crypto"
	fsrepo "DocVault/internal/cli/repo/fs"
	"DocVault/internal/cli/service"
	"DocVault/internal/config"
)

// openManager собирает BlobManager для текущего пользователя:
// локальный кэш, токен и секрет шифрования.
func openManager(cfg *config.Config) (*service.BlobManager, func() error, error) {
	st := fsrepo.AuthFSStore{}
	login, err := st.LoadLogin()
	if err != nil {
		return nil, nil, fmt.Errorf("нет активного пользователя: выполните login/register: %w", err)
	}
	token, err := st.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("нет auth-токена: выполните login/register: %w", err)
	}
	secret, err := crypto.LoadOrCreateSecret(login)
	if err != nil {
		return nil, nil, fmt.Errorf("loading secret: %w", err)
	}
	cache, cleanup, err := bootstrap.OpenBlobCache()
	if err != nil {
		return nil, nil, err
	}
	return service.NewBlobManager(cache, cfg.ServerURL, login, token, secret), cleanup, nil
}
