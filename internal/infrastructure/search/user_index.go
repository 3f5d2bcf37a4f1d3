// Package search maintains the Elasticsearch user directory.
package search

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
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/jobify/internal/domain/service"
)

const (
	defaultSize = 10
	maxSize     = 50
	callTimeout = 3 * time.Second
)

type UserIndex struct {
	es   *elasticsearch.Client
	Name string
}

func NewUserIndex(es *elasticsearch.Client, index string) *UserIndex {
	return &UserIndex{es: es, Name: index}
}

// userMapping keeps id, role and an email keyword exact-matchable next to the
// analyzed text fields used by Search.
func userMapping() map[string]any {
	text := map[string]any{"type": "text"}
	return map[string]any{
		"mappings": map[string]any{
			"properties": map[string]any{
				"id": map[string]any{"type": "keyword"},
				"email": map[string]any{
					"type":   "text",
					"fields": map[string]any{"raw": map[string]any{"type": "keyword"}},
				},
				"name":      text,
				"lastName":  text,
				"location":  text,
				"role":      map[string]any{"type": "keyword"},
				"createdAt": map[string]any{"type": "date"},
			},
		},
	}
}

// EnsureIndex creates the index with its mapping unless it already exists.
func (x *UserIndex) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	res, err := esapi.IndicesExistsRequest{Index: []string{x.Name}}.Do(c, x.es)
	if err != nil {
		return err
	}
	_ = res.Body.Close()
	switch res.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
	default:
		return fmt.Errorf("check index %s: %s", x.Name, res.Status())
	}

	body, err := json.Marshal(userMapping())
	if err != nil {
		return err
	}
	res, err = esapi.IndicesCreateRequest{Index: x.Name, Body: bytes.NewReader(body)}.Do(c, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		// another instance won the race
		if strings.Contains(string(msg), "resource_already_exists_exception") {
			return nil
		}
		return fmt.Errorf("create index %s: %s", x.Name, res.Status())
	}
	return nil
}

func (x *UserIndex) Index(ctx context.Context, doc service.UserDocument) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	c, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	req := esapi.IndexRequest{Index: x.Name, DocumentID: doc.ID, Body: bytes.NewReader(b), Refresh: "false"}
	res, err := req.Do(c, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("index user %s: %s", doc.ID, res.Status())
	}
	return nil
}

// Search runs a multi_match over email, name, last name and location.
func (x *UserIndex) Search(ctx context.Context, q string, size int) ([]service.UserDocument, error) {
	body, err := json.Marshal(searchQuery(q, size))
	if err != nil {
		return nil, err
	}
	c, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	res, err := x.es.Search(
		x.es.Search.WithContext(c),
		x.es.Search.WithIndex(x.Name),
		x.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("search users: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source service.UserDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]service.UserDocument, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

func clampSize(size int) int {
	if size <= 0 || size > maxSize {
		return defaultSize
	}
	return size
}

func searchQuery(q string, size int) map[string]any {
	query := map[string]any{"match_all": map[string]any{}}
	if q != "" {
		query = map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"email^2", "name", "lastName", "location"},
				"fuzziness": "AUTO",
			},
		}
	}
	return map[string]any{"query": query, "size": clampSize(size)}
}

var _ service.UserIndex = (*UserIndex)(nil)
