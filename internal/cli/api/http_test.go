package api

import (
	fsrepo "DocVault/internal/cli/repo/fs"
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// helper: перенастройка конфиг‑каталога в temp
func setTempCfg(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if runtime.GOOS == "windows" {
		t.Setenv("APPDATA", dir)
	} else {
		t.Setenv("XDG_CONFIG_HOME", dir)
	}
	// и для совместимости с путями клиента
	t.Setenv("CLIENT_DB_PATH", filepath.Join(dir, "db"))
	_ = os.MkdirAll(filepath.Join(dir, "db"), 0o700)
	return dir
}

func TestPostJSON_SendsToken_And_ParsesBody(t *testing.T) {
	setTempCfg(t)
	// test server проверяет cookie и JSON
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c := r.Header.Get("Cookie"); !strings.Contains(c, "auth_token=tok123") {
			t.Fatalf("Cookie header missing token, got: %q", c)
		}
		var m map[string]any
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			t.Fatalf("bad json: %v", err)
		}
		if m["x"] != float64(1) { // JSON number → float64
			t.Fatalf("unexpected payload: %#v", m)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	resp, body, err := PostJSON(ts.URL+"/api", map[string]any{"x": 1}, "tok123")
	if err != nil {
		t.Fatalf("PostJSON err: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	if strings.TrimSpace(string(body)) != `{"ok":true}` {
		t.Fatalf("body: %s", string(body))
	}
}

func TestPostJSON_JSONMarshalError(t *testing.T) {
	// chan в payload вызовет ошибку json.Marshal
	_, _, err := PostJSON("http://example.invalid", map[string]any{"c": make(chan int)}, "")
	if err == nil {
		t.Fatalf("expected marshal error")
	}
}

func TestPersistAuthFromResponse_SaveAndNoCookie(t *testing.T) {
	setTempCfg(t)
	// success: есть Set-Cookie с auth_token
	{
		resp := &http.Response{Header: http.Header{}}
		// Добавим Set-Cookie вручную (http.SetCookie ожидает ResponseWriter)
		resp.Header.Add("Set-Cookie", (&http.Cookie{Name: "auth_token", Value: "tok-abc"}).String())
		if err := PersistAuthFromResponse(resp); err != nil {
			t.Fatalf("persist: %v", err)
		}
		// проверим, что токен читается из FS
		tok, err := (fsrepo.AuthFSStore{}).Load()
		if err != nil || tok != "tok-abc" {
			t.Fatalf("token not saved, got %q err=%v", tok, err)
		}
	}
	// error: нет cookie
	{
		resp := &http.Response{Header: http.Header{}}
		if err := PersistAuthFromResponse(resp); err == nil {
			t.Fatalf("expected error when no auth cookie")
		}
	}
}

func TestPutBlob_StatusMapping(t *testing.T) {
	setTempCfg(t)
	var status int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Fatalf("method: %s", r.Method)
		}
		if !strings.HasPrefix(r.URL.Path, "/api/blobs/") {
			t.Fatalf("path: %s", r.URL.Path)
		}
		if !strings.Contains(r.Header.Get("Cookie"), "auth_token=tok") {
			t.Fatalf("missing auth cookie")
		}
		w.WriteHeader(status)
	}))
	defer ts.Close()

	status = http.StatusOK
	if err := PutBlob(ts.URL, "B1", bytes.NewReader([]byte{1, 2}), "tok"); err != nil {
		t.Fatalf("put 200: %v", err)
	}

	status = http.StatusConflict
	if err := PutBlob(ts.URL, "B1", bytes.NewReader([]byte{1}), "tok"); !errors.Is(err, ErrBlobExists) {
		t.Fatalf("want ErrBlobExists, got %v", err)
	}

	status = http.StatusInsufficientStorage
	if err := PutBlob(ts.URL, "B1", bytes.NewReader([]byte{1}), "tok"); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("want ErrQuotaExceeded, got %v", err)
	}

	status = http.StatusInternalServerError
	if err := PutBlob(ts.URL, "B1", bytes.NewReader([]byte{1}), "tok"); err == nil {
		t.Fatalf("expected error for 500")
	}

	// валидация
	if err := PutBlob(ts.URL, "", bytes.NewReader([]byte{1}), "tok"); err == nil {
		t.Fatalf("empty id should fail")
	}
}

func TestGetBlob_BodyAndTagHeader(t *testing.T) {
	payload := []byte("opaque ciphertext")
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/blobs/B1" {
			t.Fatalf("path: %s", r.URL.Path)
		}
		w.Header().Set("Tag", "dGFn")
		_, _ = w.Write(payload)
	}))
	defer ts.Close()

	body, tag, err := GetBlob(ts.URL, "B1", "tok")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(body, payload) || tag != "dGFn" {
		t.Fatalf("unexpected body/tag: %q %q", body, tag)
	}
}

func TestGetBlob_NotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blob not found", http.StatusNotFound)
	}))
	defer ts.Close()
	if _, _, err := GetBlob(ts.URL, "B-GONE", ""); !errors.Is(err, ErrBlobNotFound) {
		t.Fatalf("want ErrBlobNotFound, got %v", err)
	}
}

func TestListBlobs_And_DeleteBlob(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/blobs/":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`["B-A","B-B"]`))
		case r.Method == http.MethodDelete && r.URL.Path == "/api/blobs/B-A":
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodDelete:
			http.Error(w, "blob not found", http.StatusNotFound)
		default:
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer ts.Close()

	ids, err := ListBlobs(ts.URL, "tok")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 2 || ids[0] != "B-A" {
		t.Fatalf("unexpected ids: %v", ids)
	}

	if err := DeleteBlob(ts.URL, "B-A", "tok"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := DeleteBlob(ts.URL, "B-GONE", "tok"); !errors.Is(err, ErrBlobNotFound) {
		t.Fatalf("want ErrBlobNotFound, got %v", err)
	}
}
