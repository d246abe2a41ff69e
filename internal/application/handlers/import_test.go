package handlers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/datacatalog/internal/domain/services"
)

func writeManifest(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const manifestYAML = `- id: air
  name: Air quality
  description: Hourly readings
  owner: alice
  keywords: [air]
- id: water
  name: Water quality
  description: Daily samples
  owner: bob
- id: broken
  name: Missing owner
  description: No owner given
`

func TestImportHandler_Handle(t *testing.T) {
	f := newFixture(t)
	h := NewImportHandler(services.NewImportService(f.reconciler))

	result, err := h.Handle(t.Context(), writeManifest(t, "products.yaml", manifestYAML), ImportOptions{})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	assert.Len(t, result.Registered, 2)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "broken", result.Errors[0].ID)
	assert.Equal(t, 10, result.Errors[0].Line)
}

func TestImportHandler_Handle_SkipsExisting(t *testing.T) {
	f := newFixture(t)
	_, err := f.reconciler.Register(t.Context(), registration("air"))
	require.NoError(t, err)

	h := NewImportHandler(services.NewImportService(f.reconciler))
	result, err := h.Handle(t.Context(), writeManifest(t, "products.yaml", manifestYAML), ImportOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"air"}, result.Skipped)
	assert.Len(t, result.Registered, 1)
}

func TestImportHandler_Handle_DryRun(t *testing.T) {
	f := newFixture(t)
	h := NewImportHandler(services.NewImportService(f.reconciler))

	result, err := h.Handle(t.Context(), writeManifest(t, "products.yaml", manifestYAML), ImportOptions{DryRun: true})
	require.NoError(t, err)

	assert.Empty(t, result.Registered)
	assert.Len(t, result.Errors, 1)
	assert.False(t, f.registry.Has(f.reconciler.Identifiers().DataProduct("air")))
}

func TestImportHandler_Handle_ExplicitFormat(t *testing.T) {
	f := newFixture(t)
	h := NewImportHandler(services.NewImportService(f.reconciler))

	csv := "id,name,description,owner,keywords\nair,Air quality,Hourly readings,alice,air;sensors\n"
	result, err := h.Handle(t.Context(), writeManifest(t, "products.txt", csv), ImportOptions{Format: "csv"})
	require.NoError(t, err)
	assert.Len(t, result.Registered, 1)
}

func TestImportHandler_Handle_Errors(t *testing.T) {
	f := newFixture(t)
	h := NewImportHandler(services.NewImportService(f.reconciler))

	t.Run("unsupported format", func(t *testing.T) {
		_, err := h.Handle(t.Context(), writeManifest(t, "products.txt", ""), ImportOptions{})
		assert.ErrorContains(t, err, "unsupported format")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := h.Handle(t.Context(), filepath.Join(t.TempDir(), "none.json"), ImportOptions{})
		assert.ErrorContains(t, err, "opening file")
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := h.Handle(t.Context(), writeManifest(t, "products.json", "{"), ImportOptions{})
		assert.ErrorContains(t, err, "parsing file")
	})

	t.Run("empty", func(t *testing.T) {
		result, err := h.Handle(t.Context(), writeManifest(t, "products.json", "[]"), ImportOptions{})
		require.NoError(t, err)
		assert.Zero(t, result.Total)
	})
}
