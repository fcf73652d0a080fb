package commands

import (
	"DocVault/internal/config"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"DocVault/internal/cli/api"
	"DocVault/internal/cli/auth"
	fsrepo "DocVault/internal/cli/repo/fs"
)

type dataResponse struct {
	Result string `json:"result"`
}

type statusCmd struct{}

func (statusCmd) Name() string        { return "status" }
func (statusCmd) Description() string { return "Show auth status and last sync time" }
func (statusCmd) Usage() string       { return "status" }

func (statusCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	endpoint := strings.TrimRight(cfg.ServerURL, "/") + "/api/user/test"
	token, _ := auth.LoadToken()
	resp, body, err := api.PostJSON(endpoint, struct{}{}, token)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var dr dataResponse
	if err := json.Unmarshal(body, &dr); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	fmt.Fprintln(Out, "Status:", dr.Result)

	if login, err := auth.LoadLastLogin(); err == nil {
		fmt.Fprintln(Out, "User:", login)
		if ts, err := fsrepo.LoadLastSyncAt(login); err == nil {
			fmt.Fprintln(Out, "Last sync:", ts)
		}
	}
	return nil
}

func init() { RegisterCmd(statusCmd{}) }
