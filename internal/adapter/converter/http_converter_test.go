package converter_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarag/internal/adapter/converter"
	"scholarag/internal/domain"
)

func writeSource(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "paper.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))
	return path
}

func TestHTTPConverter_Convert(t *testing.T) {
	sourcePath := writeSource(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/convert", r.URL.Path)
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, sourcePath, req["source_path"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"markdown":         "# Title\n\nBody.",
			"title":            "Attention Is All You Need",
			"authors":          []string{"Ashish Vaswani"},
			"publication_date": "2017-06-12",
		})
	}))
	defer server.Close()

	c := converter.NewHTTPConverter(converter.BackendDocling, server.URL, server.Client())

	doc, err := c.Convert(context.Background(), sourcePath)

	require.NoError(t, err)
	assert.Equal(t, "# Title\n\nBody.", doc.Text)
	assert.Equal(t, "Attention Is All You Need", doc.Title)
	assert.Equal(t, []string{"Ashish Vaswani"}, doc.Authors)
	assert.Equal(t, "2017-06-12", doc.PublicationDate)
}

func TestHTTPConverter_Convert_MissingSource(t *testing.T) {
	c := converter.NewHTTPConverter(converter.BackendDocling, "http://unreachable.invalid", http.DefaultClient)

	_, err := c.Convert(context.Background(), "/nonexistent/paper.pdf")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHTTPConverter_Convert_BackendError(t *testing.T) {
	sourcePath := writeSource(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "parse failure", http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	c := converter.NewHTTPConverter(converter.BackendFastText, server.URL, server.Client())

	_, err := c.Convert(context.Background(), sourcePath)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	assert.Contains(t, err.Error(), "parse failure")
}

func TestRegistry(t *testing.T) {
	registry := converter.NewRegistry()
	registry.Register(converter.BackendDocling, func() domain.DocumentConverter {
		return converter.NewHTTPConverter(converter.BackendDocling, "http://docling:9030", http.DefaultClient)
	})

	factory, err := registry.Factory(converter.BackendDocling)
	require.NoError(t, err)
	assert.Equal(t, converter.BackendDocling, factory().Name())

	_, err = registry.Factory("pandoc")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	assert.Equal(t, []string{converter.BackendDocling}, registry.Names())
}
