package proposal

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/starford/mailcraft/internal/models"
)

// Preview fallbacks.
const (
	DefaultTitle   = "Project Proposal"
	DefaultCompany = "Your Company"
)

var previewTemplate = template.Must(template.New("proposal").Parse(`<div class="preview-container" style="max-width:8.5in;margin:0 auto;padding:32px;background:#ffffff;">
{{- if .Ready}}
  <div style="text-align:center;margin-bottom:32px;">
    <h1>{{.Title}}</h1>
    <p>Prepared by {{.Company}}</p>
    <p>{{.Date}}</p>
  </div>
  <section>
    <h2>Executive Summary</h2>
    <p>This proposal outlines our approach to delivering high-quality solutions tailored to your specific needs. Based on our understanding of your requirements, we've developed a comprehensive plan to ensure success.</p>
  </section>
  <section>
    <h2>Project Scope</h2>
    <p>Our team will work closely with you to deliver the following:</p>
    <ul>
{{- range .Scope}}
      <li>{{.}}</li>
{{- end}}
    </ul>
  </section>
  <section>
    <h2>Timeline &amp; Milestones</h2>
{{- range .Timeline}}
    <div><span>{{.Name}}</span> <span>{{.When}}</span></div>
{{- end}}
  </section>
  <section>
    <h2>Investment</h2>
    <p>Our pricing is structured to provide maximum value while maintaining the highest standards of quality.</p>
    <table style="width:100%;border-collapse:collapse;">
      <thead><tr><th style="text-align:left;">Item</th><th style="text-align:right;">Cost</th></tr></thead>
      <tbody>
{{- range .Investment}}
        <tr><td>{{.Name}}</td><td style="text-align:right;">{{.When}}</td></tr>
{{- end}}
        <tr style="font-weight:bold;"><td>Total Investment</td><td style="text-align:right;">$XX,XXX</td></tr>
      </tbody>
    </table>
  </section>
  <section>
    <h2>Next Steps</h2>
    <ol>
{{- range .NextSteps}}
      <li>{{.}}</li>
{{- end}}
    </ol>
  </section>
  <section style="margin-top:40px;border-top:1px solid #e5e7eb;padding-top:16px;text-align:center;">
    <p>We look forward to working with you to bring this project to life.</p>
    <p style="font-weight:bold;">{{.Company}}</p>
  </section>
{{- else}}
  <p class="empty-state" style="text-align:center;color:#6b7280;">Your proposal preview will appear here.<br>Start a conversation to generate content.</p>
{{- end}}
</div>
`))

type row struct {
	Name string
	When string
}

type previewData struct {
	Ready      bool
	Title      string
	Company    string
	Date       string
	Scope      []string
	Timeline   []row
	Investment []row
	NextSteps  []string
}

var (
	scope = []string{
		"Initial consultation and requirements gathering",
		"Custom development based on specified needs",
		"Regular progress updates and milestone reviews",
		"Thorough testing and quality assurance",
		"Final delivery with comprehensive documentation",
	}
	timeline = []row{
		{"Project Kickoff", "Week 1"},
		{"Design Phase", "Weeks 2-3"},
		{"Development", "Weeks 4-7"},
		{"Testing & QA", "Week 8"},
		{"Delivery", "Week 9"},
	}
	investment = []row{
		{"Discovery & Planning", "$X,XXX"},
		{"Development", "$XX,XXX"},
		{"Testing & QA", "$X,XXX"},
	}
	nextSteps = []string{
		"Review this proposal and provide feedback",
		"Schedule a follow-up call to discuss details",
		"Sign agreement and submit initial payment",
		"Begin project kickoff process",
	}
)

// RenderPreview renders the proposal document for sess. The layout is
// fixed; it appears once the conversation holds an assistant reply and is
// otherwise replaced by an empty-state placeholder.
func RenderPreview(sess models.ProposalSession, now time.Time) (string, error) {
	_, ready := sess.LastAssistant()
	data := previewData{
		Ready:      ready,
		Title:      fallback(sess.Title, DefaultTitle),
		Company:    fallback(sess.Company, DefaultCompany),
		Date:       now.Format("January 2, 2006"),
		Scope:      scope,
		Timeline:   timeline,
		Investment: investment,
		NextSteps:  nextSteps,
	}
	var buf bytes.Buffer
	if err := previewTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("proposal: render preview: %w", err)
	}
	return buf.String(), nil
}

func fallback(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
