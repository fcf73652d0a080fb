package commands

import (
	"context"
	"fmt"
	"os"

	"DocVault/internal/config"
)

type getCmd struct{}

func (getCmd) Name() string { return "get" }
func (getCmd) Description() string {
	return "Получить блоб (локальный кэш, иначе скачать и расшифровать)"
}
func (getCmd) Usage() string { return "get <blob-id> [-o <file>]" }

func (getCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 && len(args) != 3 {
		return ErrUsage
	}
	blobID := args[0]
	outPath := ""
	if len(args) == 3 {
		if args[1] != "-o" {
			return ErrUsage
		}
		outPath = args[2]
	}

	m, done, err := openManager(cfg)
	if err != nil {
		return err
	}
	defer done()

	payload, err := m.Get(ctx, blobID)
	if err != nil {
		return err
	}

	if outPath != "" {
		if err := os.WriteFile(outPath, payload, 0o600); err != nil {
			return fmt.Errorf("write %s: %w", outPath, err)
		}
		fmt.Fprintf(Out, "Saved %s to %s (%d bytes)\n", blobID, outPath, len(payload))
		return nil
	}
	_, err = Out.Write(payload)
	return err
}

func init() { RegisterCmd(getCmd{}) }
