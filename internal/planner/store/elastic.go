// internal/planner/store/elastic.go
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/elastic/go-elasticsearch/v8"

	"itinerary-workers/internal/models"
)

// PlanIndexMapping is the index body for plan documents. The rendered document is stored but
// not indexed; search runs over the extracted text.
const PlanIndexMapping = `{
  "mappings": {
    "properties": {
      "id":          {"type": "keyword"},
      "destination": {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "startDate":   {"type": "date", "format": "yyyy-MM-dd"},
      "endDate":     {"type": "date", "format": "yyyy-MM-dd"},
      "mode":        {"type": "keyword"},
      "provenance":  {"type": "keyword"},
      "text":        {"type": "text"},
      "document":    {"type": "text", "index": false},
      "createdAt":   {"type": "date"}
    }
  }
}`

// ElasticStore indexes plans for full-text search over their visible text.
type ElasticStore struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticStore(client *elasticsearch.Client, index string) *ElasticStore {
	return &ElasticStore{client: client, index: index}
}

func (s *ElasticStore) Name() string {
	return "elasticsearch"
}

type planDocument struct {
	ID          string    `json:"id"`
	Destination string    `json:"destination"`
	StartDate   string    `json:"startDate"`
	EndDate     string    `json:"endDate"`
	Mode        string    `json:"mode"`
	Provenance  string    `json:"provenance"`
	Text        string    `json:"text"`
	Document    string    `json:"document"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (s *ElasticStore) Save(ctx context.Context, rec models.PlanRecord) error {
	body, err := json.Marshal(planDocument{
		ID:          rec.ID,
		Destination: rec.Request.Destination,
		StartDate:   rec.Request.StartDate,
		EndDate:     rec.Request.EndDate,
		Mode:        string(rec.Mode),
		Provenance:  string(rec.Provenance),
		Text:        plainText(rec.Document),
		Document:    rec.Document,
		CreatedAt:   rec.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal plan document: %w", err)
	}

	res, err := s.client.Index(
		s.index,
		bytes.NewReader(body),
		s.client.Index.WithDocumentID(rec.ID),
		s.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("elasticsearch index error: %s: %s", res.Status(), strings.TrimSpace(string(msg)))
	}
	return nil
}

func plainText(doc string) string {
	gq, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return ""
	}
	gq.Find("script, style, .trip-widget").Remove()
	// separate adjacent blocks so their words do not run together
	gq.Find("body *").AppendHtml(" ")
	return strings.Join(strings.Fields(gq.Text()), " ")
}
