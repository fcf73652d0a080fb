package commands

import (
	"context"
	"fmt"
	"sort"

	"DocVault/internal/cli/model/view"
	"DocVault/internal/config"
)

type listCmd struct{}

func (listCmd) Name() string { return "list" }
func (listCmd) Description() string {
	return "Показать блобы: локальный кэш и сервер"
}
func (listCmd) Usage() string { return "list" }

func (listCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	m, done, err := openManager(cfg)
	if err != nil {
		return err
	}
	defer done()

	entries := map[string]*view.BlobEntry{}

	local, err := m.LocalList()
	if err != nil {
		return err
	}
	for _, b := range local {
		entries[b.BlobID] = &view.BlobEntry{BlobID: b.BlobID, Size: b.Size, Local: true}
	}

	// сервер может быть недоступен: в этом случае показываем только кэш
	remote, err := m.RemoteList(ctx)
	if err != nil {
		fmt.Fprintln(Out, "warning: server unreachable, showing local cache only")
	} else {
		for _, id := range remote {
			if e, ok := entries[id]; ok {
				e.Remote = true
				continue
			}
			entries[id] = &view.BlobEntry{BlobID: id, Remote: true}
		}
	}

	if len(entries) == 0 {
		fmt.Fprintln(Out, "Нет блобов")
		return nil
	}

	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		e := entries[id]
		where := ""
		switch {
		case e.Local && e.Remote:
			where = "local+remote"
		case e.Local:
			where = "local"
		default:
			where = "remote"
		}
		if e.Local {
			fmt.Fprintf(Out, "- %s  %s  %d bytes\n", e.BlobID, where, e.Size)
		} else {
			fmt.Fprintf(Out, "- %s  %s\n", e.BlobID, where)
		}
	}
	fmt.Fprintf(Out, "Всего: %d\n", len(entries))
	return nil
}

func init() { RegisterCmd(listCmd{}) }
