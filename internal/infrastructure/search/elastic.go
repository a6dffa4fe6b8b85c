// Package search indexes profiles and specimens in Elasticsearch.
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

	"github.com/oksasatya/bonsai-buddy/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// Index implements the application search port on two Elasticsearch indices.
type Index struct {
	ES        *elasticsearch.Client
	Profiles  string
	Specimens string
}

func NewIndex(es *elasticsearch.Client, profilesIndex, specimensIndex string) *Index {
	return &Index{ES: es, Profiles: profilesIndex, Specimens: specimensIndex}
}

type profileDoc struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsPrivate bool   `json:"is_private"`
	CreatedAt string `json:"created_at"`
}

type specimenDoc struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Species   string `json:"species"`
	Health    string `json:"health"`
	CreatedAt string `json:"created_at"`
}

var mappings = map[string]string{
	"profile": `{"mappings":{"properties":{
		"id":{"type":"keyword"},"name":{"type":"text"},
		"is_private":{"type":"boolean"},"created_at":{"type":"date"}}}}`,
	"specimen": `{"mappings":{"properties":{
		"id":{"type":"keyword"},"user_id":{"type":"keyword"},
		"name":{"type":"text"},"species":{"type":"text"},
		"health":{"type":"keyword"},"created_at":{"type":"date"}}}}`,
}

// EnsureIndices creates both indices with their mappings if they are missing.
func (x *Index) EnsureIndices(ctx context.Context) error {
	for index, body := range map[string]string{x.Profiles: mappings["profile"], x.Specimens: mappings["specimen"]} {
		c, cancel := context.WithTimeout(ctx, requestTimeout)
		res, err := esapi.IndicesCreateRequest{Index: index, Body: strings.NewReader(body)}.Do(c, x.ES)
		cancel()
		if err != nil {
			return err
		}
		status, raw := res.StatusCode, drain(res)
		if status >= 300 && !strings.Contains(raw, "resource_already_exists_exception") {
			return fmt.Errorf("create index %s: %d %s", index, status, raw)
		}
	}
	return nil
}

func (x *Index) IndexProfile(ctx context.Context, p entity.Profile) error {
	return x.put(ctx, x.Profiles, p.ID, profileDoc{
		ID:        p.ID,
		Name:      p.Name,
		IsPrivate: p.IsPrivate,
		CreatedAt: p.CreatedAt.Format(time.RFC3339Nano),
	})
}

func (x *Index) IndexSpecimen(ctx context.Context, s entity.Specimen) error {
	return x.put(ctx, x.Specimens, s.ID, specimenDoc{
		ID:        s.ID,
		UserID:    s.UserID,
		Name:      s.Name,
		Species:   s.Species,
		Health:    string(s.Health),
		CreatedAt: s.CreatedAt.Format(time.RFC3339Nano),
	})
}

func (x *Index) DeleteSpecimen(ctx context.Context, id string) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := esapi.DeleteRequest{Index: x.Specimens, DocumentID: id}.Do(c, x.ES)
	if err != nil {
		return err
	}
	status, raw := res.StatusCode, drain(res)
	if status >= 300 && status != http.StatusNotFound {
		return fmt.Errorf("delete %s/%s: %d %s", x.Specimens, id, status, raw)
	}
	return nil
}

// SearchProfiles matches public profiles by name.
func (x *Index) SearchProfiles(ctx context.Context, query string, limit int) ([]string, error) {
	return x.search(ctx, x.Profiles, map[string]any{
		"bool": map[string]any{
			"must": map[string]any{
				"multi_match": map[string]any{
					"query":     query,
					"type":      "bool_prefix",
					"fields":    []string{"name"},
					"operator":  "and",
					"fuzziness": "AUTO",
				},
			},
			"filter": []any{map[string]any{"term": map[string]any{"is_private": false}}},
		},
	}, limit)
}

// SearchSpecimens matches specimens by name or species. Privacy of the
// owner is not known to the index and is applied by the caller.
func (x *Index) SearchSpecimens(ctx context.Context, query string, limit int) ([]string, error) {
	return x.search(ctx, x.Specimens, map[string]any{
		"multi_match": map[string]any{
			"query":     query,
			"type":      "bool_prefix",
			"fields":    []string{"name^2", "species"},
			"fuzziness": "AUTO",
		},
	}, limit)
}

func (x *Index) put(ctx context.Context, index, id string, doc any) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := esapi.IndexRequest{Index: index, DocumentID: id, Body: bytes.NewReader(b), Refresh: "false"}.Do(c, x.ES)
	if err != nil {
		return err
	}
	if status, raw := res.StatusCode, drain(res); status >= 300 {
		return fmt.Errorf("index %s/%s: %d %s", index, id, status, raw)
	}
	return nil
}

func (x *Index) search(ctx context.Context, index string, query map[string]any, limit int) ([]string, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	b, err := json.Marshal(map[string]any{"query": query, "size": limit, "_source": false})
	if err != nil {
		return nil, err
	}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := x.ES.Search(
		x.ES.Search.WithContext(c),
		x.ES.Search.WithIndex(index),
		x.ES.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("search %s: %s", index, res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

func drain(res *esapi.Response) string {
	defer func() { _ = res.Body.Close() }()
	b, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
	return string(b)
}
