package report

import (
	"html"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/powermfg/order-reporter/internal/bigcommerce"
)

func namedOrder(id int, first, last, method string) bigcommerce.Order {
	return bigcommerce.Order{
		ID:             id,
		ShippingMethod: method,
		BillingAddress: bigcommerce.Address{FirstName: first, LastName: last},
	}
}

var (
	tagRe       = regexp.MustCompile(`<[^>]*>`)
	orderLineRe = regexp.MustCompile(`^.+ - Order #\d+$`)
)

// extractOrderLines strips markup, unescapes entities, normalizes
// whitespace, and returns every "<name> - Order #<id>" line in sequence.
func extractOrderLines(t *testing.T, s string) []string {
	t.Helper()

	var lines []string
	stripped := tagRe.ReplaceAllString(strings.ReplaceAll(s, "<br>", "\n"), "")
	for _, raw := range strings.Split(stripped, "\n") {
		line := strings.Join(strings.Fields(html.UnescapeString(raw)), " ")
		if orderLineRe.MatchString(line) {
			lines = append(lines, line)
		}
	}
	return lines
}

func sampleReport(now time.Time) ClassifiedReport {
	return Classify([]bigcommerce.Order{
		namedOrder(101, "Jane", "Smith", "UPS Next Day Air"),
		namedOrder(102, "Bob", "Lee", "Ground"),
		namedOrder(103, "", "", "Ground"),
		namedOrder(104, "Ann", "Wu", "Freight"),
		namedOrder(105, "Sam", "Ortiz", "FedEx 2nd Day Air"),
	}, now)
}

func TestRenderCrossFormatLineEquivalence(t *testing.T) {
	now := time.Date(2024, 8, 20, 16, 0, 0, 0, time.UTC)

	htmlOut, textOut, err := Render(sampleReport(now))
	require.NoError(t, err)

	htmlLines := extractOrderLines(t, htmlOut)
	textLines := extractOrderLines(t, textOut)

	require.NotEmpty(t, htmlLines)
	assert.Equal(t, textLines, htmlLines)

	// Urgent orders first, then groups in first-seen order
	assert.Equal(t, []string{
		"Jane Smith - Order #101",
		"Sam Ortiz - Order #105",
		"Bob Lee - Order #102",
		"N/A - Order #103",
		"Ann Wu - Order #104",
	}, textLines)
}

func TestRenderHeaderBlock(t *testing.T) {
	now := time.Date(2024, 8, 20, 16, 0, 0, 0, time.UTC)

	htmlOut, textOut, err := Render(sampleReport(now))
	require.NoError(t, err)

	for _, out := range []string{htmlOut, textOut} {
		assert.Contains(t, out, "Power Manufacturing - Daily Orders Report")
		assert.Contains(t, out, "August 20, 2024")
		assert.Contains(t, out, "Total Orders:")
		assert.Contains(t, out, "5")
		assert.Contains(t, out, "Urgent Orders:")
	}

	assert.Contains(t, textOut, "Total Orders: 5")
	assert.Contains(t, textOut, "Urgent Orders: 2")
}

func TestRenderGroupSectionOrder(t *testing.T) {
	now := time.Now()
	htmlOut, textOut, err := Render(sampleReport(now))
	require.NoError(t, err)

	// Section headings appear in first-seen order in both formats
	for _, out := range []string{htmlOut, textOut} {
		ground := strings.Index(out, "Ground")
		na := strings.Index(out, "N/A - Order")
		freight := strings.Index(out, "Freight")
		require.Greater(t, ground, 0)
		assert.Less(t, ground, na)
		assert.Less(t, na, freight)
	}
}

func TestRenderNoUrgentPlaceholder(t *testing.T) {
	report := Classify([]bigcommerce.Order{
		namedOrder(1, "Bob", "Lee", "Ground"),
	}, time.Now())

	htmlOut, textOut, err := Render(report)
	require.NoError(t, err)

	assert.Contains(t, htmlOut, "No urgent shipping items")
	assert.Contains(t, textOut, "No urgent shipping items")
}

func TestRenderEmptyReport(t *testing.T) {
	now := time.Date(2024, 8, 20, 16, 0, 0, 0, time.UTC)
	report := Classify(nil, now)

	htmlOut, textOut, err := Render(report)
	require.NoError(t, err)

	for _, out := range []string{htmlOut, textOut} {
		assert.Contains(t, out, "No orders found for August 20, 2024")
		assert.NotContains(t, out, "URGENT")
		assert.NotContains(t, out, "Total Orders")
	}
	assert.Empty(t, extractOrderLines(t, htmlOut))
	assert.Empty(t, extractOrderLines(t, textOut))
}

func TestRenderMissingNameFallsBackToNA(t *testing.T) {
	report := Classify([]bigcommerce.Order{
		namedOrder(7, "", "", "Ground"),
	}, time.Now())

	_, textOut, err := Render(report)
	require.NoError(t, err)
	assert.Contains(t, textOut, "N/A - Order #7")
}

func TestRenderEscapesHTMLInNamesAndMethods(t *testing.T) {
	report := Classify([]bigcommerce.Order{
		namedOrder(8, "Olivia <script>", "O'Brien", `Ground & "Special"`),
	}, time.Now())

	htmlOut, textOut, err := Render(report)
	require.NoError(t, err)

	assert.NotContains(t, htmlOut, "<script>")
	assert.Contains(t, htmlOut, "&lt;script&gt;")

	// The invariant survives escaping
	assert.Equal(t, extractOrderLines(t, textOut), extractOrderLines(t, htmlOut))
}
