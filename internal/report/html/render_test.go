package html

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderCover(t *testing.T) {
	out, err := RenderCover(CoverData{
		Title:       "Partnership Intelligence Report",
		BrandName:   "Acme",
		TenantID:    "tenant-1",
		GeneratedAt: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		DateRange:   "2026-01-01 - 2026-01-31",
	})
	require.NoError(t, err)

	assert.Contains(t, out, "Partnership Intelligence Report")
	assert.Contains(t, out, "Acme")
	assert.Contains(t, out, "2026-01-01 - 2026-01-31")
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "<!DOCTYPE html>"))
}

func TestRenderCoverEscapesTitle(t *testing.T) {
	out, err := RenderCover(CoverData{Title: `<script>alert("x")</script>`})
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>alert")
}

func TestRenderContent(t *testing.T) {
	out, err := RenderContent(ContentData{
		Title:     "Domain Influence Report",
		BrandName: "Acme",
		ItemCount: 42,
		Sections: []Section{
			{Heading: "Domain Visibility", Body: "Coverage summary."},
			{Heading: "Top Queries", Body: "Citation ranking."},
		},
	})
	require.NoError(t, err)

	assert.Contains(t, out, "Domain Visibility")
	assert.Contains(t, out, "Top Queries")
	assert.Contains(t, out, "42")
}
