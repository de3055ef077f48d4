package moysklad

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jhoicas/Catalogo-api/internal/application/catalogsync"
	"github.com/jhoicas/Catalogo-api/internal/application/dto"
	"github.com/jhoicas/Catalogo-api/internal/infrastructure/metrics"
)

// Verificar en tiempo de compilación que Client implementa RemoteCatalog.
var _ catalogsync.RemoteCatalog = (*Client)(nil)

// Etiquetas de endpoint para logs y métricas.
const (
	endpointFolders  = "productfolder"
	endpointProducts = "product"
	endpointImages   = "images"
)

// maxBodyBytes límite de lectura por respuesta (una página de 100 productos ronda los cientos de KB).
const maxBodyBytes = 32 << 20

// APIError respuesta no exitosa de MoySklad. Aborta la sincronización; no se reintenta.
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("MoySklad %s: HTTP %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("MoySklad %s: HTTP %d", e.Endpoint, e.StatusCode)
}

// Options configuración del cliente.
type Options struct {
	BaseURL   string
	Token     string
	Timeout   time.Duration
	RateLimit float64 // peticiones por segundo; <= 0 desactiva el limitador
	Burst     int
	// HTTPClient opcional; si es nil se crea uno con Timeout.
	HTTPClient *http.Client
}

// Client adaptador REST de la API JSON 1.2 de MoySklad. Todas las llamadas son bloqueantes y secuenciales.
type Client struct {
	baseURL    *url.URL
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        zerolog.Logger
}

// NewClient construye el cliente. BaseURL debe ser absoluta (ej. https://api.moysklad.ru/api/remap/1.2).
func NewClient(opts Options, log zerolog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("moysklad: base URL inválida %q", opts.BaseURL)
	}
	if opts.Token == "" {
		return nil, fmt.Errorf("moysklad: token vacío")
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return &Client{
		baseURL:    base,
		token:      opts.Token,
		httpClient: hc,
		limiter:    limiter,
		log:        log.With().Str("component", "moysklad").Logger(),
	}, nil
}

// ListFolders obtiene todas las carpetas de productos en una sola llamada.
func (c *Client) ListFolders(ctx context.Context) ([]dto.MSFolder, error) {
	var out dto.MSList[dto.MSFolder]
	if err := c.getJSON(ctx, endpointFolders, c.entityURL(endpointFolders, nil), &out); err != nil {
		return nil, err
	}
	return out.Rows, nil
}

// ListProducts obtiene una página de productos con los stocks expandidos.
func (c *Client) ListProducts(ctx context.Context, offset, limit int) (*dto.MSProductPage, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	q.Set("expand", "stock")

	var out dto.MSList[dto.MSProduct]
	if err := c.getJSON(ctx, endpointProducts, c.entityURL(endpointProducts, q), &out); err != nil {
		return nil, err
	}
	return &dto.MSProductPage{Rows: out.Rows, Total: out.Meta.Size}, nil
}

// FirstImageURL sigue el enlace images.meta.href y devuelve la miniatura de la primera imagen.
// Devuelve nil si la colección llega vacía o sin miniatura.
func (c *Client) FirstImageURL(ctx context.Context, imagesHref string) (*string, error) {
	u, err := c.sameHostURL(imagesHref)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("limit", "1")
	u.RawQuery = q.Encode()

	var out dto.MSList[dto.MSImage]
	if err := c.getJSON(ctx, endpointImages, u.String(), &out); err != nil {
		return nil, err
	}
	if len(out.Rows) == 0 || out.Rows[0].Miniature.Href == "" {
		return nil, nil
	}
	href := out.Rows[0].Miniature.Href
	return &href, nil
}

func (c *Client) entityURL(entity string, q url.Values) string {
	u := *c.baseURL
	u.Path = u.Path + "/entity/" + entity
	if q != nil {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// sameHostURL rechaza enlaces fuera del host configurado: el token Bearer viaja en cada petición.
func (c *Client) sameHostURL(href string) (*url.URL, error) {
	u, err := url.Parse(href)
	if err != nil {
		return nil, fmt.Errorf("moysklad: href inválido %q: %w", href, err)
	}
	if !u.IsAbs() {
		return c.baseURL.ResolveReference(u), nil
	}
	if !strings.EqualFold(u.Host, c.baseURL.Host) {
		return nil, fmt.Errorf("moysklad: href fuera del host de la API: %s", u.Host)
	}
	return u, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint, rawURL string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("moysklad %s: esperar limitador: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("moysklad %s: crear request: %w", endpoint, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("Accept", "application/json;charset=utf-8")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordRemoteRequest(endpoint, 0)
		if ctx.Err() != nil {
			return fmt.Errorf("moysklad %s: timeout o cancelación: %w", endpoint, ctx.Err())
		}
		return fmt.Errorf("moysklad %s: llamada HTTP fallida: %w", endpoint, err)
	}
	defer resp.Body.Close()
	metrics.RecordRemoteRequest(endpoint, resp.StatusCode)

	c.log.Debug().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("respuesta MoySklad")

	body, err := readBody(resp)
	if err != nil {
		return fmt.Errorf("moysklad %s: leer respuesta: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("moysklad %s: deserializar respuesta: %w", endpoint, err)
	}
	return nil
}

// readBody descomprime gzip a mano: al fijar Accept-Encoding, net/http ya no lo hace por nosotros.
func readBody(resp *http.Response) ([]byte, error) {
	var r io.Reader = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, nil
			}
			return nil, err
		}
		defer gz.Close()
		r = gz
	}
	return io.ReadAll(io.LimitReader(r, maxBodyBytes))
}

func errorMessage(body []byte) string {
	var e dto.MSError
	if err := json.Unmarshal(body, &e); err == nil && len(e.Errors) > 0 {
		msgs := make([]string, 0, len(e.Errors))
		for _, item := range e.Errors {
			msgs = append(msgs, item.Error)
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
