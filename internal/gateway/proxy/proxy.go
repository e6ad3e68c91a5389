package proxy

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"archiviz/internal/common/apperr"
	"archiviz/internal/common/response"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Proxy Handler
// ============================================================

// Proxy пересылает запросы шлюза в сервис конфигуратора.
type Proxy struct {
	client  *http.Client
	baseURL string
	prefix  string
	timeout time.Duration
	logger  *slog.Logger
}

// New создаёт прокси: путь запроса без prefix дописывается к baseURL.
func New(baseURL, prefix string, client *http.Client, logger *slog.Logger) *Proxy {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Proxy{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		prefix:  prefix,
		logger:  logger.With("component", "proxy"),
	}
}

// WithTimeout ограничивает обычные запросы к upstream. Запросы с
// Accept: text/event-stream не ограничиваются.
func (p *Proxy) WithTimeout(d time.Duration) *Proxy {
	p.timeout = d
	return p
}

// Handler проксирует любой метод с учетом multipart/raw.
func (p *Proxy) Handler() fiber.Handler {
	return func(c fiber.Ctx) error {
		return p.forward(c, p.target(c))
	}
}

func (p *Proxy) target(c fiber.Ctx) string {
	path := strings.TrimPrefix(c.Path(), p.prefix)
	if path == "" {
		path = "/"
	}
	target := p.baseURL + path
	if qs := string(c.Request().URI().QueryString()); qs != "" {
		target += "?" + qs
	}
	return target
}

func (p *Proxy) forward(c fiber.Ctx, targetURL string) error {
	contentType := c.Get("Content-Type")
	p.logger.Debug("forwarding request",
		"method", c.Method(),
		"path", c.Path(),
		"content_type", contentType,
		"content_length", len(c.Body()),
		"target", targetURL,
	)

	var req *http.Request
	var err error
	if strings.HasPrefix(contentType, "multipart/form-data") {
		req, err = p.multipartRequest(c, targetURL)
	} else {
		req, err = p.rawRequest(c, targetURL, contentType)
	}
	if err != nil {
		return response.Error(c, p.logger, err)
	}
	if accept := c.Get("Accept"); accept != "" {
		req.Header.Set("Accept", accept)
	}
	if auth := c.Get("Authorization"); auth != "" {
		req.Header.Set("Authorization", auth)
	}

	ctx, cancel := context.Background(), context.CancelFunc(func() {})
	if p.timeout > 0 && !wantsEventStream(c) {
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
	}

	resp, err := p.client.Do(req.WithContext(ctx))
	if err != nil {
		cancel()
		return response.ErrorWithMessage(c, p.logger, apperr.WrapExternal("upstream request", err), "failed to reach upstream service")
	}

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream") {
		return p.stream(c, resp, cancel)
	}
	defer cancel()
	defer resp.Body.Close()
	return p.copyResponse(c, resp)
}

func wantsEventStream(c fiber.Ctx) bool {
	return strings.Contains(c.Get("Accept"), "text/event-stream")
}

func (p *Proxy) rawRequest(c fiber.Ctx, targetURL, contentType string) (*http.Request, error) {
	req, err := http.NewRequest(c.Method(), targetURL, bytes.NewReader(c.Body()))
	if err != nil {
		return nil, apperr.WrapInternal("build request", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

func (p *Proxy) multipartRequest(c fiber.Ctx, targetURL string) (*http.Request, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, apperr.WrapValidation("invalid multipart data", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for key, files := range form.File {
		for _, fileHeader := range files {
			if err := copyPart(writer, key, fileHeader); err != nil {
				return nil, apperr.WrapInternal("copy multipart file", err)
			}
		}
	}

	for key, values := range form.Value {
		for _, value := range values {
			if err := writer.WriteField(key, value); err != nil {
				return nil, apperr.WrapInternal("copy multipart field", err)
			}
		}
	}

	if err := writer.Close(); err != nil {
		return nil, apperr.WrapInternal("close multipart body", err)
	}

	req, err := http.NewRequest(c.Method(), targetURL, bytes.NewReader(body.Bytes()))
	if err != nil {
		return nil, apperr.WrapInternal("build multipart request", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req, nil
}

func copyPart(writer *multipart.Writer, key string, fileHeader *multipart.FileHeader) error {
	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, key, fileHeader.Filename))
	if ct := fileHeader.Header.Get("Content-Type"); ct != "" {
		h.Set("Content-Type", ct)
	}

	part, err := writer.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, file)
	return err
}

func (p *Proxy) copyResponse(c fiber.Ctx, resp *http.Response) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return response.ErrorWithMessage(c, p.logger, apperr.WrapExternal("read upstream response", err), "invalid upstream response")
	}

	copyHeaders(c, resp)
	c.Status(resp.StatusCode)
	return c.Send(data)
}

// stream пробрасывает поток событий без буферизации.
func (p *Proxy) stream(c fiber.Ctx, resp *http.Response, cancel context.CancelFunc) error {
	copyHeaders(c, resp)
	c.Status(resp.StatusCode)

	return c.SendStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		defer resp.Body.Close()

		buf := make([]byte, 4096)
		for {
			n, err := resp.Body.Read(buf)
			if n > 0 {
				if _, werr := w.Write(buf[:n]); werr != nil {
					return
				}
				if ferr := w.Flush(); ferr != nil {
					return
				}
			}
			if err != nil {
				return
			}
		}
	})
}

func copyHeaders(c fiber.Ctx, resp *http.Response) {
	for key, values := range resp.Header {
		switch http.CanonicalHeaderKey(key) {
		case "Content-Length", "Transfer-Encoding", "Connection":
			continue
		}
		if len(values) > 0 {
			c.Set(key, values[0])
		}
	}
}
