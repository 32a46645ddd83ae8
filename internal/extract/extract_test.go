package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobwatch-automation/internal/monitor"
)

const origin = "https://apply.example.co.uk"

const listingHTML = `<!DOCTYPE html>
<html>
<head><title>Careers | Search Jobs</title></head>
<body>
  <nav>
    <a href="/">Home</a>
    <a href="/UKCareers/SearchJobs/">Jobs</a>
  </nav>
  <main>
    <a href="/UKCareers/Job/Details/audit-manager-12345">Audit Manager</a>
    <a href="https://apply.example.co.uk/UKCareers/Job/Details/tax-analyst-67890">Tax  Analyst,   Edinburgh</a>
    <a href="UKCareers/Job/Details/consulting-lead-555">Consulting Lead</a>
    <a href="/UKCareers/Job/Details/icon-999">🔍</a>
    <a href="/about-us">About our firm and everything else</a>
  </main>
</body>
</html>`

func TestFromHTML(t *testing.T) {
	jobs, pageTitle, err := FromHTML(listingHTML, origin)
	require.NoError(t, err)

	assert.Equal(t, "Careers | Search Jobs", pageTitle)

	//document order; the nav links (short text), the icon link and the
	//non-job page must all be filtered out
	assert.Equal(t, []monitor.Job{
		{Title: "Audit Manager", URL: origin + "/UKCareers/Job/Details/audit-manager-12345"},
		{Title: "Tax  Analyst,   Edinburgh", URL: origin + "/UKCareers/Job/Details/tax-analyst-67890"},
		{Title: "Consulting Lead", URL: origin + "/UKCareers/Job/Details/consulting-lead-555"},
	}, jobs)
}

func TestFromHTML_ZeroJobs(t *testing.T) {
	jobs, pageTitle, err := FromHTML(`<html><head><title>Empty</title></head><body><a href="/contact">Contact page</a></body></html>`, origin)
	require.NoError(t, err)

	assert.Equal(t, "Empty", pageTitle)
	assert.Empty(t, jobs)
	assert.NotNil(t, jobs)
}

func TestFromHTML_TitleBounds(t *testing.T) {
	tooLong := strings.Repeat("x", 161)
	html := `<html><body>
		<a href="/job/1">short</a>
		<a href="/job/2">` + tooLong + `</a>
		<a href="/job/3">Exactly valid title</a>
	</body></html>`

	jobs, _, err := FromHTML(html, origin)
	require.NoError(t, err)

	require.Len(t, jobs, 1)
	assert.Equal(t, "Exactly valid title", jobs[0].Title)
}

func TestFromHTML_ClassifierSubstrings(t *testing.T) {
	tests := []struct {
		name string
		href string
		want bool
	}{
		{"vacancy page", "/vacancy/123", true},
		{"requisition id", "/careers?requisition=9", true},
		{"posting path", "/posting/dev", true},
		{"uppercase JOB", "/JOBID=4", true},
		{"news article", "/news/office-opening", false},
		{"plain page", "/contact", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := `<html><body><a href="` + tt.href + `">A perfectly sized title</a></body></html>`
			jobs, _, err := FromHTML(html, origin)
			require.NoError(t, err)
			if tt.want {
				assert.Len(t, jobs, 1)
			} else {
				assert.Empty(t, jobs)
			}
		})
	}
}

func TestResolveHref(t *testing.T) {
	tests := []struct {
		name     string
		href     string
		expected string
	}{
		{"rooted path", "/UKCareers/Job/1", origin + "/UKCareers/Job/1"},
		{"absolute http", "http://other.example/job/2", "http://other.example/job/2"},
		{"absolute https", "https://other.example/job/2", "https://other.example/job/2"},
		{"bare relative", "UKCareers/Job/3", origin + "/UKCareers/Job/3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolveHref(origin, tt.href))
		})
	}
}
