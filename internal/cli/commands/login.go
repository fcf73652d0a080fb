package commands

import (
	"DocVault/internal/config"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"DocVault/internal/cli/api"
	"DocVault/internal/cli/crypto"
	fsrepo "DocVault/internal/cli/repo/fs"
	reposqlite "DocVault/internal/cli/repo/sqlite"
)

type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginCmd struct{}

func (loginCmd) Name() string        { return "login" }
func (loginCmd) Description() string { return "Login and store auth cookie" }
func (loginCmd) Usage() string       { return "login <login> <password>" }

func (loginCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return ErrUsage
	}
	login := args[0]
	password := args[1]
	baseURL := cfg.ServerURL
	endpoint := strings.TrimRight(baseURL, "/") + "/api/user/login"
	req := LoginRequest{Login: login, Password: password}
	resp, body, err := api.PostJSON(endpoint, req, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
		// дальше — локальная инициализация пользователя
	case http.StatusUnauthorized:
		return errors.New("invalid login or password")
	default:
		return fmt.Errorf("server error: %s", strings.TrimSpace(string(body)))
	}

	if err := api.PersistAuthFromResponse(resp); err != nil {
		return fmt.Errorf("saving auth: %w", err)
	}
	if err := initLocalUser(login); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Logged in successfully")
	return nil
}

// initLocalUser сохраняет контекст пользователя и готовит локальные артефакты:
// секрет шифрования и файл кэш-БД.
func initLocalUser(login string) error {
	if err := (fsrepo.AuthFSStore{}).SaveLogin(login); err != nil {
		return fmt.Errorf("saving login: %w", err)
	}
	if _, err := crypto.LoadOrCreateSecret(login); err != nil {
		return fmt.Errorf("preparing secret: %w", err)
	}
	cache, _, err := reposqlite.OpenForUser(login)
	if err != nil {
		return fmt.Errorf("open user db: %w", err)
	}
	defer cache.Close()
	if err := cache.Migrate(); err != nil {
		return fmt.Errorf("migrate user db: %w", err)
	}
	return nil
}

func init() { RegisterCmd(loginCmd{}) }
