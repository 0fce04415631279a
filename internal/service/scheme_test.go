package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScheme(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schemes", name), []byte(content), 0644))
}

func TestSchemeServiceLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "schemes"), 0755))

	writeScheme(t, dir, "pmjay.md", "---\ntitle: Ayushman Bharat PMJAY\norder: 2\nurl: https://pmjay.gov.in\nlinkLabel: Visit PMJAY\n---\nUp to 5 lakh per family.\n")
	writeScheme(t, dir, "pmndp.md", "---\ntitle: PMNDP\norder: 1\n---\nFree dialysis.\n")
	writeScheme(t, dir, "state-dialysis_schemes.md", "Varies by state.\n")

	svc := NewSchemeService(dir)
	require.NoError(t, svc.Load())

	schemes := svc.Schemes()
	require.Len(t, schemes, 3)
	assert.Equal(t, "state-dialysis_schemes", schemes[0].Slug)
	assert.Equal(t, "State Dialysis Schemes", schemes[0].Title)
	assert.Equal(t, "pmndp", schemes[1].Slug)
	assert.Equal(t, "pmjay", schemes[2].Slug)

	pmjay, err := svc.Scheme("pmjay")
	require.NoError(t, err)
	assert.Equal(t, "https://pmjay.gov.in", pmjay.URL)
	assert.Equal(t, "Visit PMJAY", pmjay.LinkLabel)
	assert.Contains(t, pmjay.HTMLContent, "5 lakh")

	_, err = svc.Scheme("missing")
	assert.ErrorIs(t, err, ErrSchemeNotFound)
}

func TestSchemeServiceShippedContent(t *testing.T) {
	svc := NewSchemeService(filepath.Join("..", "..", "content"))
	require.NoError(t, svc.Load())

	schemes := svc.Schemes()
	require.NotEmpty(t, schemes)
	assert.Equal(t, "pmndp", schemes[0].Slug)
}
