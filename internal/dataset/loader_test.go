package dataset

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecomdash/internal/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixtureServer serves every fixture at /<table>.csv and counts requests.
func fixtureServer(t *testing.T, override map[Name]string) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		name := Name(strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/"), ".csv"))
		body, ok := override[name]
		if !ok {
			body, ok = fixtureCSV[name]
		}
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func serverSources(srv *httptest.Server) map[Name]string {
	sources := make(map[Name]string, len(Names))
	for _, name := range Names {
		sources[name] = srv.URL + "/" + string(name) + ".csv"
	}
	return sources
}

func TestNewLoader_MissingSource(t *testing.T) {
	sources := writeFixtures(t, t.TempDir())
	delete(sources, Reviews)

	_, err := NewLoader(sources)
	assert.ErrorContains(t, err, "reviews")
}

func TestLoader_LoadFromFiles(t *testing.T) {
	loader, err := NewLoader(writeFixtures(t, t.TempDir()), WithLogger(quietLogger()))
	require.NoError(t, err)

	_, ok := loader.Snapshot()
	assert.False(t, ok)

	snap, err := loader.Load(context.Background())
	require.NoError(t, err)

	for _, name := range Names {
		tbl, err := snap.Table(name)
		require.NoError(t, err, name)
		assert.Equal(t, 2, tbl.Len(), name)
	}

	cached, ok := loader.Snapshot()
	assert.True(t, ok)
	assert.Same(t, snap, cached)
}

func TestLoader_FileURL(t *testing.T) {
	sources := writeFixtures(t, t.TempDir())
	sources[Orders] = "file://" + filepath.ToSlash(sources[Orders])

	loader, err := NewLoader(sources, WithLogger(quietLogger()))
	require.NoError(t, err)

	_, err = loader.Load(context.Background())
	assert.NoError(t, err)
}

func TestLoader_LoadOverHTTP(t *testing.T) {
	srv, hits := fixtureServer(t, nil)

	loader, err := NewLoader(serverSources(srv), WithLogger(quietLogger()), WithUserAgent("test-agent"))
	require.NoError(t, err)

	first, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(len(Names)), hits.Load())

	second, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, int64(len(Names)), hits.Load(), "second load must not refetch")
}

func TestLoader_ConcurrentFirstLoadFetchesOnce(t *testing.T) {
	srv, hits := fixtureServer(t, nil)

	loader, err := NewLoader(serverSources(srv), WithLogger(quietLogger()))
	require.NoError(t, err)

	const callers = 8
	snaps := make([]*Snapshot, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snap, err := loader.Load(context.Background())
			assert.NoError(t, err)
			snaps[i] = snap
		}(i)
	}
	wg.Wait()

	for _, snap := range snaps[1:] {
		assert.Same(t, snaps[0], snap)
	}
	assert.Equal(t, int64(len(Names)), hits.Load())
}

func TestLoader_RetrievalErrors(t *testing.T) {
	tests := []struct {
		name      string
		override  map[Name]string
		sources   func(map[Name]string, *httptest.Server)
		wantTable Name
		wantCol   string
	}{
		{
			name:      "missing required column",
			override:  map[Name]string{Sellers: "seller_id,seller_city\ns1,campinas\n"},
			wantTable: Sellers,
			wantCol:   ColSellerState,
		},
		{
			name:      "malformed csv",
			override:  map[Name]string{Payments: "order_id,payment_type,payment_value\no1,boleto\n"},
			wantTable: Payments,
		},
		{
			name: "not found",
			sources: func(s map[Name]string, srv *httptest.Server) {
				s[Reviews] = srv.URL + "/missing.csv"
			},
			wantTable: Reviews,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := fixtureServer(t, tt.override)
			sources := serverSources(srv)
			if tt.sources != nil {
				tt.sources(sources, srv)
			}

			loader, err := NewLoader(sources, WithLogger(quietLogger()))
			require.NoError(t, err)

			snap, err := loader.Load(context.Background())
			require.Error(t, err)
			assert.Nil(t, snap)

			var re *RetrievalError
			require.True(t, errors.As(err, &re), "got %T", err)
			assert.Equal(t, tt.wantTable, re.Table)
			assert.Equal(t, sources[tt.wantTable], re.Source)
			assert.True(t, IsRetrievalError(err))

			if tt.wantCol != "" {
				var colErr *ColumnError
				require.True(t, errors.As(err, &colErr))
				assert.Equal(t, tt.wantCol, colErr.Column)
			}

			_, cached := loader.Snapshot()
			assert.False(t, cached, "failed loads are not cached")
		})
	}
}

func TestLoader_XLSXSource(t *testing.T) {
	dir := t.TempDir()
	sources := writeFixtures(t, dir)
	sources[Products] = writeProductsWorkbook(t, dir)

	loader, err := NewLoader(sources, WithLogger(quietLogger()))
	require.NoError(t, err)

	snap, err := loader.Load(context.Background())
	require.NoError(t, err)

	products, err := snap.Table(Products)
	require.NoError(t, err)
	assert.Equal(t, 3, products.Len())
}

func TestNewLoaderFromConfig(t *testing.T) {
	srv, _ := fixtureServer(t, nil)

	cfg := config.Default().Datasets
	cfg.Customers = srv.URL + "/customers.csv"
	cfg.Items = srv.URL + "/items.csv"
	cfg.Payments = srv.URL + "/payments.csv"
	cfg.Orders = srv.URL + "/orders.csv"
	cfg.Products = srv.URL + "/products.csv"
	cfg.Reviews = srv.URL + "/reviews.csv"
	cfg.Sellers = srv.URL + "/sellers.csv"
	cfg.FetchTimeout = 5 * time.Second

	loader, err := NewLoaderFromConfig(cfg, WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.Equal(t, cfg.Sellers, loader.Sources()[Sellers])

	_, err = loader.Load(context.Background())
	assert.NoError(t, err)
}

func TestIsWorkbook(t *testing.T) {
	assert.True(t, isWorkbook("data/products.XLSX"))
	assert.True(t, isWorkbook("https://example.com/p.xlsx?raw=1"))
	assert.False(t, isWorkbook("https://example.com/p.csv"))
}
