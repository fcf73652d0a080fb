package commands

import (
	"context"
	"fmt"

	"DocVault/internal/config"
)

type deleteCmd struct{}

func (deleteCmd) Name() string { return "delete" }
func (deleteCmd) Description() string {
	return "Удалить блоб на сервере и в локальном кэше"
}
func (deleteCmd) Usage() string { return "delete <blob-id>" }

func (deleteCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	m, done, err := openManager(cfg)
	if err != nil {
		return err
	}
	defer done()

	if err := m.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Deleted %s\n", args[0])
	return nil
}

func init() { RegisterCmd(deleteCmd{}) }
