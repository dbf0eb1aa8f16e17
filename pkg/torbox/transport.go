package torbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/sirrobot01/torbox/internal/request"
)

// formPart is one field of a multipart body. FileName marks it as a file upload.
type formPart struct {
	Name        string
	FileName    string
	ContentType string
	Value       []byte
}

func field(name, value string) formPart {
	return formPart{Name: name, Value: []byte(value)}
}

type transport struct {
	client  *request.Client
	baseURL string
	token   string
	logger  zerolog.Logger
}

func (t *transport) endpoint(path string, query url.Values) (string, error) {
	u, err := request.JoinURL(t.baseURL, path)
	if err != nil {
		return "", fmt.Errorf("building url for %s: %w", path, err)
	}
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u, nil
}

func (t *transport) newRequest(ctx context.Context, method, path string, query url.Values, body []byte, contentType string) (*http.Request, error) {
	u, err := t.endpoint(path, query)
	if err != nil {
		return nil, err
	}
	var req *http.Request
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, u, bytes.NewReader(body))
	} else {
		req, err = http.NewRequestWithContext(ctx, method, u, nil)
	}
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do sends req and returns the raw body. Error statuses whose body is still an
// envelope are handed back as bodies so the envelope decides success.
func (t *transport) do(req *http.Request, auth bool) ([]byte, error) {
	if auth {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}

	t.logger.Trace().Str("method", req.Method).Str("path", req.URL.Path).Msg("TorBox request")
	body, err := t.client.MakeRequest(req)
	if err == nil {
		return body, nil
	}
	if ctxErr := req.Context().Err(); ctxErr != nil {
		return nil, ctxErr
	}

	var httpErr *request.HTTPError
	if errors.As(err, &httpErr) {
		if isEnvelope(httpErr.Body) {
			return httpErr.Body, nil
		}
		return nil, &TransportError{StatusCode: httpErr.StatusCode, Body: string(httpErr.Body), Err: err}
	}
	return nil, &TransportError{Err: err}
}

func (t *transport) get(ctx context.Context, path string, query url.Values, auth bool) ([]byte, error) {
	req, err := t.newRequest(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return nil, err
	}
	return t.do(req, auth)
}

func (t *transport) postForm(ctx context.Context, path string, form url.Values, auth bool) ([]byte, error) {
	req, err := t.newRequest(ctx, http.MethodPost, path, nil, []byte(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return nil, err
	}
	return t.do(req, auth)
}

func (t *transport) postMultipart(ctx context.Context, path string, parts []formPart, auth bool) ([]byte, error) {
	payload := &bytes.Buffer{}
	writer := multipart.NewWriter(payload)
	for _, p := range parts {
		if p.FileName == "" {
			if err := writer.WriteField(p.Name, string(p.Value)); err != nil {
				return nil, err
			}
			continue
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(p.Name), escapeQuotes(p.FileName)))
		if p.ContentType != "" {
			h.Set("Content-Type", p.ContentType)
		}
		w, err := writer.CreatePart(h)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(p.Value); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := t.newRequest(ctx, http.MethodPost, path, nil, payload.Bytes(), writer.FormDataContentType())
	if err != nil {
		return nil, err
	}
	return t.do(req, auth)
}

func (t *transport) postJSON(ctx context.Context, path string, payload any, auth bool) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s payload: %w", path, err)
	}
	req, err := t.newRequest(ctx, http.MethodPost, path, nil, body, "application/json")
	if err != nil {
		return nil, err
	}
	return t.do(req, auth)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
