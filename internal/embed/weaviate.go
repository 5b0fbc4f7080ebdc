package embed

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate/entities/models"
)

// DefaultWeaviateClass is the class embeddings are stored under.
const DefaultWeaviateClass = "PatternSample"

// WeaviateSink stores one object per file and model, with the model's
// vector and the file's label.
type WeaviateSink struct {
	client *weaviate.Client
	class  string
}

// NewWeaviateSink connects to the Weaviate instance at rawURL.
func NewWeaviateSink(rawURL, class string) (*WeaviateSink, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid weaviate url %q", rawURL)
	}
	scheme := u.Scheme
	if scheme == "" {
		scheme = "http"
	}
	client, err := weaviate.NewClient(weaviate.Config{Host: u.Host, Scheme: scheme})
	if err != nil {
		return nil, fmt.Errorf("create weaviate client: %w", err)
	}
	if class == "" {
		class = DefaultWeaviateClass
	}
	return &WeaviateSink{client: client, class: class}, nil
}

// Store implements Sink with a single batch import.
func (s *WeaviateSink) Store(ctx context.Context, records []Record) error {
	objects := Objects(s.class, records)
	if len(objects) == 0 {
		return nil
	}
	resp, err := s.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return fmt.Errorf("weaviate batch import: %w", err)
	}
	failed := 0
	var first error
	for _, item := range resp {
		if item.Result == nil || item.Result.Errors == nil || len(item.Result.Errors.Error) == 0 {
			continue
		}
		failed++
		if first == nil {
			first = errors.New(item.Result.Errors.Error[0].Message)
		}
	}
	if failed > 0 {
		return fmt.Errorf("weaviate batch import: %d of %d objects failed: %w", failed, len(objects), first)
	}
	return nil
}

// Objects converts records to Weaviate objects, one per record and model.
// IDs derive from label, filename and model, so re-imports overwrite.
func Objects(class string, records []Record) []*models.Object {
	var out []*models.Object
	for _, r := range records {
		names := make([]string, 0, len(r.Embeddings))
		for m := range r.Embeddings {
			names = append(names, m)
		}
		sort.Strings(names)
		for _, m := range names {
			id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(r.Label+"/"+r.Filename+"#"+m))
			out = append(out, &models.Object{
				Class:  class,
				ID:     strfmt.UUID(id.String()),
				Vector: r.Embeddings[m],
				Properties: map[string]any{
					"filename": r.Filename,
					"label":    r.Label,
					"model":    m,
				},
			})
		}
	}
	return out
}
