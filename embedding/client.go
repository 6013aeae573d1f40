package embedding

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/hupe1980/roomsearch"
)

// DefaultModelID is the Bedrock model used when none is configured.
const DefaultModelID = "cohere.embed-multilingual-v3"

// BedrockAPI is the subset of the Bedrock runtime client used by Client.
type BedrockAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Client invokes a multimodal embedding model through Bedrock.
type Client struct {
	api       BedrockAPI
	modelID   string
	dimension int
	resolver  *ImageResolver
}

// Option configures a Client.
type Option func(*Client)

// WithDimension enables a length check on returned vectors.
// Zero disables the check.
func WithDimension(d int) Option {
	return func(c *Client) {
		c.dimension = d
	}
}

// WithImageResolver overrides the resolver used to turn image references
// into data URIs. The default resolver handles local files and http(s) URLs
// but has no S3 client.
func WithImageResolver(r *ImageResolver) Option {
	return func(c *Client) {
		if r != nil {
			c.resolver = r
		}
	}
}

// NewClient creates an embedding client for the given model.
// If modelID is empty, DefaultModelID is used.
func NewClient(api BedrockAPI, modelID string, opts ...Option) *Client {
	if modelID == "" {
		modelID = DefaultModelID
	}
	c := &Client{
		api:      api,
		modelID:  modelID,
		resolver: NewImageResolver(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// invokeRequest is the Cohere Embed request body. Exactly one of Texts and
// Images is populated per call.
type invokeRequest struct {
	InputType string   `json:"input_type"`
	Texts     []string `json:"texts,omitempty"`
	Images    []string `json:"images,omitempty"`
}

type invokeResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed computes one embedding for the given query.
// Text queries are embedded under the given role; image queries always go
// out as input type "image". Exactly one network call is made; there is no
// internal retry.
func (c *Client) Embed(ctx context.Context, q Query, role Role) ([]float32, error) {
	req, err := c.buildRequest(ctx, q, role)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, &roomsearch.EmbeddingError{Input: inputLabel(q), Reason: "encoding request", Err: err}
	}

	out, err := c.api.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, &roomsearch.EmbeddingError{Input: inputLabel(q), Reason: "model invocation failed", Err: err}
	}

	var resp invokeResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return nil, &roomsearch.EmbeddingError{Input: inputLabel(q), Reason: "malformed model response", Err: err}
	}
	if len(resp.Embeddings) != 1 {
		return nil, &roomsearch.EmbeddingError{
			Input:  inputLabel(q),
			Reason: fmt.Sprintf("malformed model response: expected 1 embedding, got %d", len(resp.Embeddings)),
		}
	}

	vec := resp.Embeddings[0]
	if c.dimension > 0 && len(vec) != c.dimension {
		return nil, &roomsearch.EmbeddingError{
			Input:  inputLabel(q),
			Reason: fmt.Sprintf("dimension mismatch: expected %d, got %d", c.dimension, len(vec)),
		}
	}

	return vec, nil
}

func (c *Client) buildRequest(ctx context.Context, q Query, role Role) (*invokeRequest, error) {
	switch v := q.(type) {
	case TextQuery:
		if v == "" {
			return nil, &roomsearch.EmbeddingError{Reason: "empty text query"}
		}
		if role != RoleDocument && role != RoleQuery {
			return nil, &roomsearch.EmbeddingError{Input: inputLabel(q), Reason: fmt.Sprintf("invalid role %q", role)}
		}
		return &invokeRequest{
			InputType: string(role),
			Texts:     []string{string(v)},
		}, nil

	case ImageRef:
		if v == "" {
			return nil, &roomsearch.EmbeddingError{Reason: "empty image reference"}
		}
		uri, err := c.resolver.DataURI(ctx, string(v))
		if err != nil {
			return nil, &roomsearch.EmbeddingError{Input: string(v), Reason: "resolving image", Err: err}
		}
		return &invokeRequest{
			InputType: inputTypeImage,
			Images:    []string{uri},
		}, nil

	case nil:
		return nil, &roomsearch.EmbeddingError{Reason: "no input supplied: provide either text or an image"}

	default:
		return nil, &roomsearch.EmbeddingError{Reason: fmt.Sprintf("unsupported query type %T", q)}
	}
}
