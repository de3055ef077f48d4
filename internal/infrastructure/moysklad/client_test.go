package moysklad_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Catalogo-api/internal/infrastructure/moysklad"
)

const testToken = "test-token"

func newClient(t *testing.T, srv *httptest.Server) *moysklad.Client {
	t.Helper()
	c, err := moysklad.NewClient(moysklad.Options{
		BaseURL: srv.URL,
		Token:   testToken,
		Timeout: 5 * time.Second,
	}, zerolog.Nop())
	require.NoError(t, err)
	return c
}

func requireAuth(t *testing.T, r *http.Request) {
	t.Helper()
	assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
	assert.Equal(t, "gzip", r.Header.Get("Accept-Encoding"))
}

func TestListFolders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requireAuth(t, r)
		assert.Equal(t, "/entity/productfolder", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"meta":{"size":2},"rows":[{"id":"f1","name":"Hats"},{"id":"f2","name":"Shirts"}]}`)
	}))
	defer srv.Close()

	folders, err := newClient(t, srv).ListFolders(context.Background())
	require.NoError(t, err)
	require.Len(t, folders, 2)
	assert.Equal(t, "f1", folders[0].ID)
	assert.Equal(t, "Shirts", folders[1].Name)
}

func TestListProducts_ParametrosYGzip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requireAuth(t, r)
		assert.Equal(t, "/entity/product", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		assert.Equal(t, "200", r.URL.Query().Get("offset"))
		assert.Equal(t, "stock", r.URL.Query().Get("expand"))

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		defer gz.Close()
		fmt.Fprint(gz, `{"meta":{"size":250,"limit":100,"offset":200},"rows":[
			{"id":"p1","name":"Cap","salePrices":[{"value":15000.0}],"stock":0,"quantity":7,
			 "productFolder":{"meta":{"href":"https://x/entity/productfolder/abc123"}},
			 "images":{"meta":{"href":"https://x/img","size":1}},
			 "barcodes":[{"ean13":"4600000000001"}]}]}`)
	}))
	defer srv.Close()

	page, err := newClient(t, srv).ListProducts(context.Background(), 200, 100)
	require.NoError(t, err)
	assert.Equal(t, 250, page.Total)
	require.Len(t, page.Rows, 1)
	p := page.Rows[0]
	assert.True(t, decimal.NewFromInt(15000).Equal(p.SalePrices[0].Value))
	require.NotNil(t, p.Stock)
	assert.Zero(t, *p.Stock)
	require.NotNil(t, p.Quantity)
	assert.EqualValues(t, 7, *p.Quantity)
	assert.Equal(t, 1, p.Images.Meta.Size)
	assert.Equal(t, "4600000000001", p.Barcodes[0].EAN13)
}

func TestFirstImageURL(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requireAuth(t, r)
		assert.Equal(t, "/entity/product/p1/images", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		fmt.Fprintf(w, `{"meta":{"size":3},"rows":[{"filename":"a.png","miniature":{"href":"%s/download/mini-a"}}]}`, srv.URL)
	}))
	defer srv.Close()

	u, err := newClient(t, srv).FirstImageURL(context.Background(), srv.URL+"/entity/product/p1/images")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, srv.URL+"/download/mini-a", *u)
}

func TestFirstImageURL_ColeccionVacia(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"meta":{"size":0},"rows":[]}`)
	}))
	defer srv.Close()

	u, err := newClient(t, srv).FirstImageURL(context.Background(), srv.URL+"/entity/product/p1/images")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestFirstImageURL_RechazaOtroHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no debe llamarse")
	}))
	defer srv.Close()

	_, err := newClient(t, srv).FirstImageURL(context.Background(), "https://evil.example.com/images")
	assert.Error(t, err)
}

func TestErrorHTTPAbortaConAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"errors":[{"error":"Ошибка аутентификации","code":1056}]}`)
	}))
	defer srv.Close()

	_, err := newClient(t, srv).ListFolders(context.Background())
	require.Error(t, err)

	var apiErr *moysklad.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "productfolder", apiErr.Endpoint)
	assert.Contains(t, apiErr.Error(), "Ошибка аутентификации")
}

func TestSinReintentos(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newClient(t, srv).ListProducts(context.Background(), 0, 100)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Contains(t, err.Error(), strconv.Itoa(http.StatusServiceUnavailable))
}

func TestLimitadorRespetaContexto(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"rows":[]}`)
	}))
	defer srv.Close()

	c, err := moysklad.NewClient(moysklad.Options{
		BaseURL: srv.URL, Token: testToken, Timeout: time.Second, RateLimit: 0.001, Burst: 1,
	}, zerolog.Nop())
	require.NoError(t, err)

	_, err = c.ListFolders(context.Background())
	require.NoError(t, err, "el primer token del burst no espera")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.ListFolders(ctx)
	assert.Error(t, err, "el segundo debe esperar ~1000s y cortar por contexto")
}

func TestNewClient_Validacion(t *testing.T) {
	_, err := moysklad.NewClient(moysklad.Options{BaseURL: "not a url", Token: "x"}, zerolog.Nop())
	assert.Error(t, err)
	_, err = moysklad.NewClient(moysklad.Options{BaseURL: "https://api.moysklad.ru/api/remap/1.2"}, zerolog.Nop())
	assert.Error(t, err)
}
