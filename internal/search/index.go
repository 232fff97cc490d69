package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8"

	"carbonmarket/ledger-backend/internal/core"
)

// ListingDoc is the indexed shape of a marketplace listing.
type ListingDoc struct {
	ID          uint64 `json:"id"`
	CreditID    uint64 `json:"credit_id"`
	ProjectID   uint64 `json:"project_id"`
	Category    string `json:"category"`
	Location    string `json:"location"`
	Seller      string `json:"seller"`
	PricePerTon uint64 `json:"price_per_ton"`
	Amount      uint64 `json:"amount"`
	Active      bool   `json:"active"`
}

// Index keeps the marketplace browse index in Elasticsearch.
type Index struct {
	client *elasticsearch.Client
	index  string
	engine *core.Engine
}

func NewIndex(client *elasticsearch.Client, index string, engine *core.Engine) *Index {
	return &Index{client: client, index: index, engine: engine}
}

func (i *Index) Name() string { return "search" }

// Handle reindexes a listing whenever it is created, filled or cancelled.
func (i *Index) Handle(ctx context.Context, ev core.Event) error {
	switch ev.Type {
	case core.EventListingCreated, core.EventListingFilled, core.EventListingCancelled:
	default:
		return nil
	}

	listing, err := i.engine.GetListing(ev.ListingID)
	if err != nil {
		return err
	}
	credit, err := i.engine.GetCredit(listing.CreditID)
	if err != nil {
		return err
	}
	project, err := i.engine.GetProject(credit.ProjectID)
	if err != nil {
		return err
	}

	return i.indexListing(ctx, ListingDoc{
		ID:          listing.ID,
		CreditID:    listing.CreditID,
		ProjectID:   project.ID,
		Category:    project.Category,
		Location:    project.Location,
		Seller:      listing.Seller.String(),
		PricePerTon: listing.PricePerTon,
		Amount:      listing.Amount,
		Active:      listing.Active,
	})
}

func (i *Index) indexListing(ctx context.Context, doc ListingDoc) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal listing doc: %w", err)
	}

	res, err := i.client.Index(
		i.index,
		bytes.NewReader(body),
		i.client.Index.WithDocumentID(strconv.FormatUint(doc.ID, 10)),
		i.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to index listing: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index request failed: %s", res.String())
	}
	return nil
}

// SearchListings runs a match query over category and location, filtered
// to active listings.
func (i *Index) SearchListings(ctx context.Context, query string, size int) ([]ListingDoc, error) {
	var buf bytes.Buffer
	body := map[string]interface{}{
		"size": size,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":  query,
						"fields": []string{"category", "location"},
					},
				},
				"filter": map[string]interface{}{
					"term": map[string]interface{}{"active": true},
				},
			},
		},
	}
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("failed to encode search query: %w", err)
	}

	res, err := i.client.Search(
		i.client.Search.WithContext(ctx),
		i.client.Search.WithIndex(i.index),
		i.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search request failed: %s", res.String())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source ListingDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	docs := make([]ListingDoc, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		docs = append(docs, hit.Source)
	}
	return docs, nil
}
