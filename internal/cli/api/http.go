package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	fsrepo "DocVault/internal/cli/repo/fs"
)

var (
	// ErrBlobExists — сервер уже хранит блоб с таким id (HTTP 409).
	ErrBlobExists = errors.New("blob already exists on server")
	// ErrBlobNotFound — блоб отсутствует на сервере (HTTP 404).
	ErrBlobNotFound = errors.New("blob not found on server")
	// ErrQuotaExceeded — квота хранилища исчерпана (HTTP 507).
	ErrQuotaExceeded = errors.New("server storage quota exceeded")
)

// PostJSON sends a JSON POST request. If token is non-empty, it is passed as auth cookie.
func PostJSON(url string, payload any, token string) (*http.Response, []byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Cookie", "auth_token="+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	body, _ := io.ReadAll(resp.Body)
	return resp, body, nil
}

// PersistAuthFromResponse извлекает auth cookie из ответа и сохраняет его через файловое хранилище.
func PersistAuthFromResponse(resp *http.Response) error {
	store := fsrepo.AuthFSStore{}
	for _, c := range resp.Cookies() {
		if c.Name == "auth_token" && c.Value != "" {
			return store.Save(c.Value)
		}
	}
	return fmt.Errorf("no auth cookie in response")
}

func blobURL(baseURL, blobID string) string {
	return strings.TrimRight(baseURL, "/") + "/api/blobs/" + url.PathEscape(blobID)
}

// PutBlob загружает тело блоба на сервер. 409 → ErrBlobExists, 507 → ErrQuotaExceeded.
func PutBlob(baseURL, blobID string, body io.Reader, token string) error {
	if blobID == "" {
		return errors.New("empty blob id")
	}
	req, err := http.NewRequest(http.MethodPut, blobURL(baseURL, blobID), body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	if token != "" {
		req.Header.Set("Cookie", "auth_token="+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	msg, _ := io.ReadAll(resp.Body)
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		return nil
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrBlobExists, blobID)
	case http.StatusInsufficientStorage:
		return ErrQuotaExceeded
	default:
		return fmt.Errorf("server status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
}

// GetBlob скачивает блоб. Вторым значением возвращается заголовок Tag
// (base64url последних 16 байт объекта на сервере).
func GetBlob(baseURL, blobID, token string) ([]byte, string, error) {
	if blobID == "" {
		return nil, "", errors.New("empty blob id")
	}
	req, err := http.NewRequest(http.MethodGet, blobURL(baseURL, blobID), nil)
	if err != nil {
		return nil, "", err
	}
	if token != "" {
		req.Header.Set("Cookie", "auth_token="+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	switch resp.StatusCode {
	case http.StatusOK:
		return body, resp.Header.Get("Tag"), nil
	case http.StatusNotFound:
		return nil, "", fmt.Errorf("%w: %s", ErrBlobNotFound, blobID)
	default:
		return nil, "", fmt.Errorf("server status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
}

// ListBlobs возвращает список id блобов пользователя на сервере.
func ListBlobs(baseURL, token string) ([]string, error) {
	req, err := http.NewRequest(http.MethodGet, strings.TrimRight(baseURL, "/")+"/api/blobs/", nil)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Cookie", "auth_token="+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var ids []string
	if err := json.Unmarshal(body, &ids); err != nil {
		return nil, fmt.Errorf("decode blob list: %w", err)
	}
	return ids, nil
}

// DeleteBlob удаляет блоб на сервере. 404 → ErrBlobNotFound.
func DeleteBlob(baseURL, blobID, token string) error {
	if blobID == "" {
		return errors.New("empty blob id")
	}
	req, err := http.NewRequest(http.MethodDelete, blobURL(baseURL, blobID), nil)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Cookie", "auth_token="+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	msg, _ := io.ReadAll(resp.Body)
	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrBlobNotFound, blobID)
	default:
		return fmt.Errorf("server status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
}
