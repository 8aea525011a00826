package collection

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/fieldsales/internal/db"
	"github.com/vbonduro/fieldsales/internal/kvstore"
	kvsqlite "github.com/vbonduro/fieldsales/internal/kvstore/sqlite"
	"github.com/vbonduro/fieldsales/internal/logging"
	"github.com/vbonduro/fieldsales/internal/remote"
)

type summary struct {
	Total int `json:"total"`
}

func newTestDocument(t *testing.T, h http.HandlerFunc) (*Document[summary], kvstore.Store, *httptest.Server) {
	t.Helper()
	d, err := db.OpenInMemory(strings.ReplaceAll(t.Name(), "/", "_"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	kv := kvsqlite.NewStore(d)
	client := remote.NewClient(srv.URL, 2*time.Second)
	return NewDocument[summary]("summary", "/api/summary/", client, staticToken(""), kv, logging.Discard()), kv, srv
}

func TestDocumentFreshThenCached(t *testing.T) {
	doc, kv, srv := newTestDocument(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"total":42}`))
	})
	ctx := context.Background()

	res := doc.Refresh(ctx)
	require.NotNil(t, res.Value)
	assert.Equal(t, Fresh, res.Source)
	assert.Equal(t, 42, res.Value.Total)
	assert.JSONEq(t, `{"total":42}`, cached(t, kv, "summary"))

	srv.Close()
	res = doc.Refresh(ctx)
	require.NotNil(t, res.Value)
	assert.Equal(t, Cached, res.Source)
	assert.Equal(t, 42, res.Value.Total)
}

func TestDocumentFailureWithoutCache(t *testing.T) {
	doc, kv, _ := newTestDocument(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[1,2]`))
	})

	res := doc.Refresh(context.Background())

	assert.Nil(t, res.Value)
	assert.Equal(t, Cached, res.Source)
	assert.Empty(t, cached(t, kv, "summary"))
	require.NoError(t, doc.Clear(context.Background()))
}
