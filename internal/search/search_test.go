package search

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/medical_shop/internal/transport"
	"github.com/Skotchmaster/medical_shop/pkg/events"
)

type fakeES struct {
	mu       sync.Mutex
	docs     map[string]map[string]any
	lastBody map[string]any
	hits     []string
}

func newFakeES(t *testing.T) (*fakeES, *elasticsearch.Client) {
	t.Helper()
	f := &fakeES{docs: map[string]map[string]any{}}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)

	es, err := NewClient(context.Background(), Config{URL: srv.URL, Index: "products"})
	require.NoError(t, err)
	return f, es
}

func (f *fakeES) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case r.URL.Path == "/":
		_, _ = io.WriteString(w, `{"version":{"number":"9.0.0"},"tagline":"You Know, for Search"}`)
	case len(parts) == 2 && parts[1] == "_search":
		body := map[string]any{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.lastBody = body
		hits := make([]map[string]any, 0, len(f.hits))
		for _, id := range f.hits {
			hits = append(hits, map[string]any{"_id": id, "_score": 1.0})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"hits": map[string]any{"total": map[string]any{"value": len(f.hits), "relation": "eq"}, "hits": hits},
		})
	case len(parts) == 3 && parts[1] == "_doc" && (r.Method == http.MethodPut || r.Method == http.MethodPost):
		doc := map[string]any{}
		_ = json.NewDecoder(r.Body).Decode(&doc)
		f.docs[parts[2]] = doc
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"result":"created"}`)
	case len(parts) == 3 && parts[1] == "_doc" && r.Method == http.MethodDelete:
		if _, ok := f.docs[parts[2]]; !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"result":"not_found"}`)
			return
		}
		delete(f.docs, parts[2])
		_, _ = io.WriteString(w, `{"result":"deleted"}`)
	default:
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"unexpected request"}`)
	}
}

func TestSearcher_BuildsQueryAndReturnsIDs(t *testing.T) {
	f, es := newFakeES(t)
	a, b := uuid.New(), uuid.New()
	f.hits = []string{a.String(), "not-a-uuid", b.String()}

	total, ids, err := NewSearcher(es, "products").Search(context.Background(), "stetoscope", 10, 5)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Equal(t, []uuid.UUID{a, b}, ids)

	mm := f.lastBody["query"].(map[string]any)["multi_match"].(map[string]any)
	assert.Equal(t, "stetoscope", mm["query"])
	assert.Equal(t, "AUTO", mm["fuzziness"])
	assert.Equal(t, []any{"name^2", "description"}, mm["fields"])
	assert.EqualValues(t, 10, f.lastBody["from"])
	assert.EqualValues(t, 5, f.lastBody["size"])
}

func TestIndexer_AppliesProductEvents(t *testing.T) {
	f, es := newFakeES(t)
	ix := NewIndexer(es, "products")
	ctx := context.Background()
	id := uuid.New()

	created, err := json.Marshal(events.New(transport.EventProductCreated, transport.ProductEvent{
		ID: id, Name: "Infusion pump", Description: "Volumetric", Price: decimal.NewFromInt(2100), Stock: 3,
	}))
	require.NoError(t, err)
	require.NoError(t, ix.Apply(ctx, created))
	require.Contains(t, f.docs, id.String())
	assert.Equal(t, "Infusion pump", f.docs[id.String()]["name"])

	deleted, err := json.Marshal(events.New(transport.EventProductDeleted, transport.ProductEvent{ID: id}))
	require.NoError(t, err)
	require.NoError(t, ix.Apply(ctx, deleted))
	assert.NotContains(t, f.docs, id.String())

	require.NoError(t, ix.Apply(ctx, deleted))
	require.NoError(t, ix.Apply(ctx, []byte(`{"type":"something_else"}`)))
	assert.Error(t, ix.Apply(ctx, []byte(`not json`)))
}

type fakeReader struct {
	msgs      []kafka.Message
	committed []int64
	cancel    context.CancelFunc
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.msgs) == 0 {
		r.cancel()
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

type recordingApplier struct {
	seen []string
}

func (a *recordingApplier) Apply(_ context.Context, v []byte) error {
	a.seen = append(a.seen, string(v))
	if string(v) == "bad" {
		return errors.New("cannot apply")
	}
	return nil
}

func TestConsume_CommitsEveryMessage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := &fakeReader{
		msgs:   []kafka.Message{{Offset: 1, Value: []byte("a")}, {Offset: 2, Value: []byte("bad")}, {Offset: 3, Value: []byte("c")}},
		cancel: cancel,
	}
	a := &recordingApplier{}

	require.NoError(t, Consume(ctx, r, a))
	assert.Equal(t, []string{"a", "bad", "c"}, a.seen)
	assert.Equal(t, []int64{1, 2, 3}, r.committed)
}
