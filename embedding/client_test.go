package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/hupe1980/roomsearch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBedrockClient struct {
	mock.Mock
}

func (m *MockBedrockClient) InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*bedrockruntime.InvokeModelOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func invokeOutput(t *testing.T, embeddings [][]float32) *bedrockruntime.InvokeModelOutput {
	t.Helper()
	body, err := json.Marshal(map[string]any{"embeddings": embeddings})
	require.NoError(t, err)
	return &bedrockruntime.InvokeModelOutput{Body: body}
}

func decodeRequest(t *testing.T, input *bedrockruntime.InvokeModelInput) map[string]any {
	t.Helper()
	var req map[string]any
	require.NoError(t, json.Unmarshal(input.Body, &req))
	return req
}

func TestClient_Embed_Text(t *testing.T) {
	mockClient := new(MockBedrockClient)
	client := NewClient(mockClient, "")

	var captured *bedrockruntime.InvokeModelInput
	mockClient.On("InvokeModel", mock.Anything, mock.MatchedBy(func(input *bedrockruntime.InvokeModelInput) bool {
		captured = input
		return *input.ModelId == DefaultModelID && *input.ContentType == "application/json"
	})).Return(invokeOutput(t, [][]float32{{0.1, 0.2, 0.3}}), nil).Once()

	vec, err := client.Embed(context.Background(), TextQuery("cozy bedroom"), RoleDocument)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)

	req := decodeRequest(t, captured)
	assert.Equal(t, "search_document", req["input_type"])
	assert.Equal(t, []any{"cozy bedroom"}, req["texts"])
	assert.NotContains(t, req, "images")
}

func TestClient_Embed_TextQueryRole(t *testing.T) {
	mockClient := new(MockBedrockClient)
	client := NewClient(mockClient, "my-model")

	var captured *bedrockruntime.InvokeModelInput
	mockClient.On("InvokeModel", mock.Anything, mock.MatchedBy(func(input *bedrockruntime.InvokeModelInput) bool {
		captured = input
		return *input.ModelId == "my-model"
	})).Return(invokeOutput(t, [][]float32{{1}}), nil).Once()

	_, err := client.Embed(context.Background(), TextQuery("modern kitchen"), RoleQuery)
	require.NoError(t, err)

	req := decodeRequest(t, captured)
	assert.Equal(t, "search_query", req["input_type"])
}

func TestClient_Embed_Image(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "room.png")
	pngMagic := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0x00}
	require.NoError(t, os.WriteFile(path, pngMagic, 0o644))

	mockClient := new(MockBedrockClient)
	client := NewClient(mockClient, "")

	var captured *bedrockruntime.InvokeModelInput
	mockClient.On("InvokeModel", mock.Anything, mock.MatchedBy(func(input *bedrockruntime.InvokeModelInput) bool {
		captured = input
		return true
	})).Return(invokeOutput(t, [][]float32{{0.5}}), nil).Once()

	_, err := client.Embed(context.Background(), ImageRef(path), RoleDocument)
	require.NoError(t, err)

	req := decodeRequest(t, captured)
	assert.Equal(t, "image", req["input_type"])
	assert.NotContains(t, req, "texts")

	images, ok := req["images"].([]any)
	require.True(t, ok)
	require.Len(t, images, 1)
	assert.True(t, strings.HasPrefix(images[0].(string), "data:image/png;base64,"))
}

func TestClient_Embed_InvalidInput(t *testing.T) {
	client := NewClient(new(MockBedrockClient), "")

	tests := []struct {
		name string
		q    Query
		role Role
	}{
		{name: "nil query", q: nil, role: RoleDocument},
		{name: "empty text", q: TextQuery(""), role: RoleDocument},
		{name: "empty image ref", q: ImageRef(""), role: RoleDocument},
		{name: "invalid role", q: TextQuery("x"), role: Role("classification")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Embed(context.Background(), tt.q, tt.role)
			var embErr *roomsearch.EmbeddingError
			assert.ErrorAs(t, err, &embErr)
		})
	}
}

func TestClient_Embed_InvocationError(t *testing.T) {
	mockClient := new(MockBedrockClient)
	client := NewClient(mockClient, "")

	cause := errors.New("throttled")
	mockClient.On("InvokeModel", mock.Anything, mock.Anything).Return(nil, cause).Once()

	_, err := client.Embed(context.Background(), TextQuery("sofa"), RoleQuery)
	var embErr *roomsearch.EmbeddingError
	require.ErrorAs(t, err, &embErr)
	assert.ErrorIs(t, err, cause)
}

func TestClient_Embed_MalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body []byte
	}{
		{name: "not json", body: []byte("oops")},
		{name: "no embeddings", body: []byte(`{"embeddings":[]}`)},
		{name: "too many embeddings", body: []byte(`{"embeddings":[[1],[2]]}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockClient := new(MockBedrockClient)
			client := NewClient(mockClient, "")
			mockClient.On("InvokeModel", mock.Anything, mock.Anything).
				Return(&bedrockruntime.InvokeModelOutput{Body: tt.body}, nil).Once()

			_, err := client.Embed(context.Background(), TextQuery("x"), RoleQuery)
			var embErr *roomsearch.EmbeddingError
			assert.ErrorAs(t, err, &embErr)
		})
	}
}

func TestClient_Embed_DimensionCheck(t *testing.T) {
	mockClient := new(MockBedrockClient)
	client := NewClient(mockClient, "", WithDimension(4))

	mockClient.On("InvokeModel", mock.Anything, mock.Anything).
		Return(invokeOutput(t, [][]float32{{1, 2}}), nil).Once()

	_, err := client.Embed(context.Background(), TextQuery("x"), RoleQuery)
	var embErr *roomsearch.EmbeddingError
	require.ErrorAs(t, err, &embErr)
	assert.Contains(t, embErr.Reason, "dimension mismatch")
}
