package commands

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	fsrepo "DocVault/internal/cli/repo/fs"
	"DocVault/internal/config"
	srvrepo "DocVault/internal/repo"
)

// setupUser имитирует выполненный login: сохраняет токен, логин и секрет.
func setupUser(t *testing.T) {
	t.Helper()
	withTempConfig(t)
	st := fsrepo.AuthFSStore{}
	if err := st.Save("tok-test"); err != nil {
		t.Fatalf("save token: %v", err)
	}
	if err := st.SaveLogin("carol"); err != nil {
		t.Fatalf("save login: %v", err)
	}
}

// blobAPIServer — минимальный сервер блобов поверх файлового бэкенда.
func blobAPIServer(t *testing.T) (*httptest.Server, srvrepo.BlobsBackend) {
	t.Helper()
	backend, err := srvrepo.NewFilesystemBlobsBackend(t.TempDir(), 1<<20)
	if err != nil {
		t.Fatalf("backend: %v", err)
	}
	const user = "1"
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/blobs/")
		switch {
		case r.Method == http.MethodPut:
			if err := backend.WriteBlob(user, id, r.Body); err != nil {
				if errors.Is(err, srvrepo.ErrBlobExists) {
					http.Error(w, "conflict", http.StatusConflict)
					return
				}
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodGet && id == "":
			ids, _ := backend.ListBlobs(user)
			out := "["
			for i, v := range ids {
				if i > 0 {
					out += ","
				}
				out += `"` + v + `"`
			}
			_, _ = io.WriteString(w, out+"]")
		case r.Method == http.MethodGet:
			tag, err := backend.TagHeader(user, id)
			if err != nil {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			w.Header().Set("Tag", tag)
			_ = backend.ReadBlob(user, id, w)
		case r.Method == http.MethodDelete:
			if err := backend.DeleteBlob(user, id); err != nil {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			w.WriteHeader(http.StatusOK)
		}
	}))
	t.Cleanup(ts.Close)
	return ts, backend
}

func TestPutGetListDelete_EndToEnd(t *testing.T) {
	setupUser(t)
	ts, backend := blobAPIServer(t)
	cfg := &config.Config{ServerURL: ts.URL}
	ctx := context.Background()

	// файл для загрузки
	src := filepath.Join(t.TempDir(), "note.txt")
	content := []byte("very secret note")
	if err := os.WriteFile(src, content, 0o600); err != nil {
		t.Fatalf("write src: %v", err)
	}

	// put
	if err := (putCmd{}).Run(ctx, cfg, []string{src, "B-NOTE"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	// сервер хранит шифртекст, не плейнтекст
	var remote bytes.Buffer
	if err := backend.ReadBlob("1", "B-NOTE", &remote); err != nil {
		t.Fatalf("remote read: %v", err)
	}
	if bytes.Contains(remote.Bytes(), content) {
		t.Fatalf("plaintext leaked to server")
	}

	// get в файл
	dst := filepath.Join(t.TempDir(), "note-out.txt")
	if err := (getCmd{}).Run(ctx, cfg, []string{"B-NOTE", "-o", dst}); err != nil {
		t.Fatalf("get: %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil || !bytes.Equal(got, content) {
		t.Fatalf("round trip mismatch: %v %q", err, got)
	}

	// list
	out := withStdoutCapture(t, func() {
		if err := (listCmd{}).Run(ctx, cfg, nil); err != nil {
			t.Fatalf("list: %v", err)
		}
	})
	if !strings.Contains(out, "B-NOTE") || !strings.Contains(out, "local+remote") {
		t.Fatalf("list output: %s", out)
	}

	// delete
	if err := (deleteCmd{}).Run(ctx, cfg, []string{"B-NOTE"}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	out = withStdoutCapture(t, func() {
		if err := (listCmd{}).Run(ctx, cfg, nil); err != nil {
			t.Fatalf("list after delete: %v", err)
		}
	})
	if strings.Contains(out, "B-NOTE") {
		t.Fatalf("blob still listed after delete: %s", out)
	}
}

func TestPut_DuplicateRejected(t *testing.T) {
	setupUser(t)
	ts, _ := blobAPIServer(t)
	cfg := &config.Config{ServerURL: ts.URL}
	ctx := context.Background()

	src := filepath.Join(t.TempDir(), "a.bin")
	_ = os.WriteFile(src, []byte("payload one"), 0o600)
	if err := (putCmd{}).Run(ctx, cfg, []string{src, "B-DUP"}); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if err := (putCmd{}).Run(ctx, cfg, []string{src, "B-DUP"}); err == nil {
		t.Fatalf("expected conflict on duplicate put")
	}
}

func TestBlobCommands_Usage(t *testing.T) {
	setupUser(t)
	cfg := &config.Config{}
	ctx := context.Background()

	if err := (putCmd{}).Run(ctx, cfg, nil); err != ErrUsage {
		t.Fatalf("put usage: %v", err)
	}
	if err := (getCmd{}).Run(ctx, cfg, []string{"id", "-x", "f"}); err != ErrUsage {
		t.Fatalf("get usage: %v", err)
	}
	if err := (listCmd{}).Run(ctx, cfg, []string{"extra"}); err != ErrUsage {
		t.Fatalf("list usage: %v", err)
	}
	if err := (deleteCmd{}).Run(ctx, cfg, nil); err != ErrUsage {
		t.Fatalf("delete usage: %v", err)
	}
}

func TestGet_WithoutLoginFails(t *testing.T) {
	withTempConfig(t)
	if err := (getCmd{}).Run(context.Background(), &config.Config{}, []string{"B-1"}); err == nil {
		t.Fatalf("expected error without login")
	}
}
