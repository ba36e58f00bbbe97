package proposal

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/mailcraft/internal/models"
)

var previewNow = time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)

func TestRenderPreviewEmptyState(t *testing.T) {
	for _, sess := range []models.ProposalSession{
		{},
		{Messages: []models.Message{{ID: "1", Role: models.RoleUser, Content: "hi"}}},
	} {
		out, err := RenderPreview(sess, previewNow)
		require.NoError(t, err)
		assert.Contains(t, out, "Your proposal preview will appear here.")
		assert.NotContains(t, out, "Executive Summary")
	}
}

func TestRenderPreviewSections(t *testing.T) {
	sess := models.ProposalSession{Messages: []models.Message{
		{ID: "1", Role: models.RoleUser, Content: "hi"},
		{ID: "2", Role: models.RoleAssistant, Content: "decorative reply text"},
	}}
	out, err := RenderPreview(sess, previewNow)
	require.NoError(t, err)

	order := []string{
		"<h1>Project Proposal</h1>",
		"Prepared by Your Company",
		"October 16, 2026",
		"Executive Summary",
		"Project Scope",
		"Timeline &amp; Milestones",
		"Investment",
		"Next Steps",
		"We look forward to working with you",
	}
	last := -1
	for _, s := range order {
		i := strings.Index(out, s)
		require.NotEqual(t, -1, i, "missing %q", s)
		assert.Greater(t, i, last, "%q out of order", s)
		last = i
	}
	assert.Equal(t, 9, strings.Count(out, "<li>"))
	assert.Contains(t, out, "Weeks 4-7")
	assert.Contains(t, out, "$XX,XXX")
	assert.NotContains(t, out, "decorative reply text")
}

func TestRenderPreviewUsesDetailsEscaped(t *testing.T) {
	sess := models.ProposalSession{
		Title:    "Site <novo>",
		Company:  "Acme & Co",
		Messages: []models.Message{{ID: "2", Role: models.RoleAssistant}},
	}
	out, err := RenderPreview(sess, previewNow)
	require.NoError(t, err)

	assert.Contains(t, out, "<h1>Site &lt;novo&gt;</h1>")
	assert.Equal(t, 2, strings.Count(out, "Acme &amp; Co"))
}
