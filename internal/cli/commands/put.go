package commands

import (
	"context"
	"fmt"
	"os"

	"DocVault/internal/config"

	"github.com/google/uuid"
)

type putCmd struct{}

func (putCmd) Name() string { return "put" }
func (putCmd) Description() string {
	return "Зашифровать файл и загрузить на сервер"
}
func (putCmd) Usage() string { return "put <file> [blob-id]" }

func (putCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return ErrUsage
	}
	path := args[0]
	blobID := ""
	if len(args) == 2 {
		blobID = args[1]
	} else {
		blobID = uuid.NewString()
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	m, done, err := openManager(cfg)
	if err != nil {
		return err
	}
	defer done()

	if err := m.Put(ctx, blobID, payload); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Uploaded %s as %s (%d bytes)\n", path, blobID, len(payload))
	return nil
}

func init() { RegisterCmd(putCmd{}) }
