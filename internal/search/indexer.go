package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/medical_shop/internal/transport"
)

type Document struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	CategoryID  string          `json:"category_id,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
}

type Indexer struct {
	ES    *elasticsearch.Client
	Index string
}

func NewIndexer(es *elasticsearch.Client, index string) *Indexer {
	return &Indexer{ES: es, Index: index}
}

type productMessage struct {
	Type string                 `json:"type"`
	Data transport.ProductEvent `json:"data"`
}

// Apply mirrors one product event into the index. Unknown event types are ignored.
func (ix *Indexer) Apply(ctx context.Context, value []byte) error {
	var msg productMessage
	if err := json.Unmarshal(value, &msg); err != nil {
		return fmt.Errorf("indexer: decode event: %w", err)
	}

	switch msg.Type {
	case transport.EventProductCreated, transport.EventProductUpdated:
		return ix.Put(ctx, msg.Data)
	case transport.EventProductDeleted:
		return ix.Delete(ctx, msg.Data.ID.String())
	default:
		return nil
	}
}

func (ix *Indexer) Put(ctx context.Context, p transport.ProductEvent) error {
	doc := Document{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
	}
	if p.CategoryID != nil {
		doc.CategoryID = p.CategoryID.String()
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return fmt.Errorf("indexer: encode doc: %w", err)
	}

	res, err := ix.ES.Index(ix.Index, &buf,
		ix.ES.Index.WithContext(ctx),
		ix.ES.Index.WithDocumentID(p.ID.String()),
	)
	if err != nil {
		return fmt.Errorf("indexer: index %s: %w", p.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return fmt.Errorf("indexer: index %s: %s: %s", p.ID, res.Status(), msg)
	}
	return nil
}

// Delete removes a document; a missing document is not an error.
func (ix *Indexer) Delete(ctx context.Context, id string) error {
	res, err := ix.ES.Delete(ix.Index, id, ix.ES.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("indexer: delete %s: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		msg, _ := io.ReadAll(res.Body)
		return fmt.Errorf("indexer: delete %s: %s: %s", id, res.Status(), msg)
	}
	return nil
}
