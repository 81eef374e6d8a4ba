// Package reportindex keeps a searchable summary of every generated report in
// Elasticsearch.
package reportindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"rcm-benchmark/internal/common/logger"
)

const indexMapping = `{
	"mappings": {
		"properties": {
			"report_id":             {"type": "keyword"},
			"hospital_name":         {"type": "text", "fields": {"raw": {"type": "keyword"}}},
			"hospital_beds":         {"type": "integer"},
			"state":                 {"type": "keyword"},
			"size_category":         {"type": "keyword"},
			"origin":                {"type": "keyword"},
			"estimated_rcm_staff":   {"type": "integer"},
			"current_turnover_cost": {"type": "long"},
			"potential_savings":     {"type": "long"},
			"break_even_months":     {"type": "integer"},
			"report_url":            {"type": "keyword", "index": false},
			"created_at":            {"type": "date"}
		}
	}
}`

// Summary is the indexed view of a report.
type Summary struct {
	ReportID            string    `json:"report_id"`
	HospitalName        string    `json:"hospital_name"`
	HospitalBeds        int       `json:"hospital_beds"`
	State               string    `json:"state"`
	SizeCategory        string    `json:"size_category"`
	Origin              string    `json:"origin"`
	EstimatedRCMStaff   int       `json:"estimated_rcm_staff"`
	CurrentTurnoverCost int       `json:"current_turnover_cost"`
	PotentialSavings    int       `json:"potential_savings"`
	BreakEvenMonths     int       `json:"break_even_months"`
	ReportURL           string    `json:"report_url"`
	CreatedAt           time.Time `json:"created_at"`
}

// Query filters a search. Zero values are ignored.
type Query struct {
	State    string
	Hospital string
	MinBeds  int
	Size     int
}

type SearchResult struct {
	Total   int       `json:"total"`
	Took    int       `json:"took"`
	Reports []Summary `json:"reports"`
}

type Index struct {
	client *elasticsearch.Client
	name   string
	logger logger.Logger
}

func New(client *elasticsearch.Client, indexName string, log logger.Logger) *Index {
	return &Index{
		client: client,
		name:   indexName,
		logger: log.WithFields(map[string]interface{}{"component": "reportindex", "index": indexName}),
	}
}

// EnsureIndex creates the index with its mapping when it does not exist.
func (ix *Index) EnsureIndex(ctx context.Context) error {
	res, err := ix.client.Indices.Exists([]string{ix.name}, ix.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = ix.client.Indices.Create(ix.name,
		ix.client.Indices.Create.WithContext(ctx),
		ix.client.Indices.Create.WithBody(strings.NewReader(indexMapping)),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index: %s", res.String())
	}
	ix.logger.Info("report index created", nil)
	return nil
}

// Put indexes s under its report id, replacing any earlier version.
func (ix *Index) Put(ctx context.Context, s Summary) error {
	body, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	res, err := ix.client.Index(ix.name, bytes.NewReader(body),
		ix.client.Index.WithContext(ctx),
		ix.client.Index.WithDocumentID(s.ReportID),
	)
	if err != nil {
		return fmt.Errorf("index report: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index report: %s", res.String())
	}
	return nil
}

func (ix *Index) Search(ctx context.Context, q Query) (*SearchResult, error) {
	body, err := json.Marshal(buildSearchQuery(q))
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	res, err := ix.client.Search(
		ix.client.Search.WithContext(ctx),
		ix.client.Search.WithIndex(ix.name),
		ix.client.Search.WithBody(bytes.NewReader(body)),
		ix.client.Search.WithSize(searchSize(q.Size)),
		ix.client.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, fmt.Errorf("search reports: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search reports: %s", res.String())
	}
	return decodeSearch(res.Body)
}

func searchSize(size int) int {
	if size <= 0 || size > 100 {
		return 20
	}
	return size
}

func buildSearchQuery(q Query) map[string]interface{} {
	must := []interface{}{}
	filter := []interface{}{}

	if q.Hospital != "" {
		must = append(must, map[string]interface{}{
			"match": map[string]interface{}{
				"hospital_name": map[string]interface{}{"query": q.Hospital, "operator": "and"},
			},
		})
	}
	if q.State != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"state": strings.ToUpper(q.State)},
		})
	}
	if q.MinBeds > 0 {
		filter = append(filter, map[string]interface{}{
			"range": map[string]interface{}{"hospital_beds": map[string]interface{}{"gte": q.MinBeds}},
		})
	}
	if len(must) == 0 {
		must = append(must, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	boolQuery := map[string]interface{}{"must": must}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}
	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"sort":  []interface{}{map[string]interface{}{"created_at": map[string]interface{}{"order": "desc"}}},
	}
}

type searchResponse struct {
	Took int `json:"took"`
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source Summary `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func decodeSearch(r io.Reader) (*SearchResult, error) {
	var resp searchResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	out := &SearchResult{
		Total:   resp.Hits.Total.Value,
		Took:    resp.Took,
		Reports: make([]Summary, 0, len(resp.Hits.Hits)),
	}
	for _, h := range resp.Hits.Hits {
		out.Reports = append(out.Reports, h.Source)
	}
	return out, nil
}
