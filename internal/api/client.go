// Package api HTTP транспорт к API отчётов о происшествиях.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/report-accident/internal/logger"
	"github.com/ignatzorin/report-accident/internal/models"
	"github.com/ignatzorin/report-accident/internal/pkg/apperror"
)

// maxResponseBytes ограничивает чтение тела ответа.
const maxResponseBytes = 10 << 20

// Client клиент фиксированного API. Базовый адрес задаётся один раз.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт экземпляр клиента.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL возвращает базовый адрес API.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ResolveURL превращает относительную ссылку сервера (логотип, фото) в абсолютную.
func (c *Client) ResolveURL(ref string) string {
	if ref == "" {
		return ""
	}
	if u, err := url.Parse(ref); err == nil && u.IsAbs() {
		return ref
	}
	return c.baseURL + "/" + strings.TrimLeft(ref, "/")
}

// WebSocketURL адрес ленты изменений для токена.
func (c *Client) WebSocketURL(token string) string {
	wsBase := c.baseURL
	switch {
	case strings.HasPrefix(wsBase, "https://"):
		wsBase = "wss://" + strings.TrimPrefix(wsBase, "https://")
	case strings.HasPrefix(wsBase, "http://"):
		wsBase = "ws://" + strings.TrimPrefix(wsBase, "http://")
	}
	return wsBase + "/api/ws?token=" + url.QueryEscape(token)
}

// Login выполняет POST /api/login.
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	var out models.LoginResponse
	payload := map[string]string{"email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/login", payload, "", &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, apperror.UnexpectedResponse("login response without access_token")
	}
	return &out, nil
}

// Register выполняет POST /api/register.
func (c *Client) Register(ctx context.Context, name, email, password string) (*models.RegistrationResponse, error) {
	var out models.RegistrationResponse
	payload := map[string]string{"name": name, "email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/register", payload, "", &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, apperror.UnexpectedResponse("register response without access_token")
	}
	return &out, nil
}

// SubmitReport отправляет готовое multipart тело на POST /api/reports/new
// и возвращает поле message из ответа. token может быть пустым.
func (c *Client) SubmitReport(ctx context.Context, contentType string, body io.Reader, token string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/reports/new", body, token)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)

	status, raw, err := c.do(req)
	if err != nil {
		return "", err
	}

	if status < 200 || status > 299 {
		var e errorWire
		_ = json.Unmarshal(raw, &e)
		return "", apperror.ServerError(status, e.text())
	}

	var msg messageWire
	if err := json.Unmarshal(raw, &msg); err != nil || msg.Message == nil {
		return "", apperror.UnexpectedResponse("response without message field")
	}
	return *msg.Message, nil
}

// ListUserReports выполняет GET /api/reports/{userID} с bearer токеном.
func (c *Client) ListUserReports(ctx context.Context, userID int64, token string) ([]models.Report, error) {
	return c.listReports(ctx, "/api/reports/"+strconv.FormatInt(userID, 10), token)
}

// ListAllReports выполняет GET /api/reports/all.
func (c *Client) ListAllReports(ctx context.Context) ([]models.Report, error) {
	return c.listReports(ctx, "/api/reports/all", "")
}

// MarkSolved выполняет PUT /api/reports/solved/{uuid}.
func (c *Client) MarkSolved(ctx context.Context, reportID string) error {
	return c.doJSON(ctx, http.MethodPut, "/api/reports/solved/"+url.PathEscape(reportID), nil, "", nil)
}

// DeleteReport выполняет DELETE /api/reports/delete/{uuid}.
func (c *Client) DeleteReport(ctx context.Context, reportID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/reports/delete/"+url.PathEscape(reportID), nil, "", nil)
}

// ListCompanies выполняет GET /api/companies/all.
func (c *Client) ListCompanies(ctx context.Context) ([]models.Provider, error) {
	var out []models.Provider
	if err := c.doJSON(ctx, http.MethodGet, "/api/companies/all", nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListBreakdowns выполняет GET /api/breakdowns/all.
func (c *Client) ListBreakdowns(ctx context.Context) ([]models.Provider, error) {
	var out []models.Provider
	if err := c.doJSON(ctx, http.MethodGet, "/api/breakdowns/all", nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) listReports(ctx context.Context, path, token string) ([]models.Report, error) {
	var wire []reportWire
	if err := c.doJSON(ctx, http.MethodGet, path, nil, token, &wire); err != nil {
		return nil, err
	}

	reports := make([]models.Report, 0, len(wire))
	for _, w := range wire {
		reports = append(reports, w.toModel(c.ResolveURL))
	}
	return reports, nil
}

// doJSON отправляет JSON запрос и декодирует JSON ответ в out (если out != nil).
func (c *Client) doJSON(ctx context.Context, method, path string, payload any, token string, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("api: не удалось сериализовать запрос: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := c.newRequest(ctx, method, path, body, token)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}

	status, raw, err := c.do(req)
	if err != nil {
		return err
	}

	if status < 200 || status > 299 {
		var e errorWire
		_ = json.Unmarshal(raw, &e)
		return apperror.ServerError(status, e.text())
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperror.DecodeFailure(err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, token string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("api: некорректный запрос %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// do выполняет запрос и читает тело. Ошибка транспорта становится NetworkFailure.
func (c *Client) do(req *http.Request) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{
			"method": req.Method,
			"path":   req.URL.Path,
			"error":  err.Error(),
		}).Warn("api: запрос не выполнен")
		return 0, nil, apperror.NetworkFailure(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, apperror.NetworkFailure(err)
	}

	logger.Log.WithFields(logrus.Fields{
		"method": req.Method,
		"path":   req.URL.Path,
		"status": resp.StatusCode,
	}).Debug("api: ответ получен")

	return resp.StatusCode, raw, nil
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
