package openlibrary

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetWorkDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/works/OL45883W.json", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"title": "Fantastic Mr Fox",
			"description": {"type": "/type/text", "value": "A cunning fox."},
			"covers": [6498519, 8904777]
		}`))
	}))
	defer server.Close()

	res := testClient(server.URL).GetWorkDetails(context.Background(), "OL45883W")
	require.True(t, res.IsOk())

	details := res.Value()
	assert.Equal(t, "Fantastic Mr Fox", details.Title)
	require.NotNil(t, details.Description.Value)
	assert.Equal(t, "A cunning fox.", *details.Description.Value)
	assert.Equal(t, []int64{6498519, 8904777}, details.Covers)
}

func TestDescriptionDecodesBothShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want *string
	}{
		{"bare string", `{"description": "Plain text."}`, ptr("Plain text.")},
		{"typed object", `{"description": {"type": "/type/text", "value": "Wrapped text."}}`, ptr("Wrapped text.")},
		{"missing", `{"title": "No description"}`, nil},
		{"null", `{"description": null}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var details WorkDetails
			require.NoError(t, json.Unmarshal([]byte(tt.body), &details))

			if tt.want == nil {
				assert.Nil(t, details.Description.Value)
			} else {
				require.NotNil(t, details.Description.Value)
				assert.Equal(t, *tt.want, *details.Description.Value)
			}
		})
	}
}

func TestDescriptionRejectsUnknownShape(t *testing.T) {
	var details WorkDetails
	err := json.Unmarshal([]byte(`{"description": 42}`), &details)
	require.Error(t, err)
}

func TestDescriptionMarshalsAsString(t *testing.T) {
	data, err := json.Marshal(Description{Value: ptr("hello")})
	require.NoError(t, err)
	assert.Equal(t, `"hello"`, string(data))

	data, err = json.Marshal(Description{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func ptr(s string) *string { return &s }
