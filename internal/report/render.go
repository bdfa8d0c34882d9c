package report

import (
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/osteele/liquid"

	"github.com/powermfg/order-reporter/internal/bigcommerce"
)

const (
	reportTitle   = "Power Manufacturing - Daily Orders Report"
	urgentHeading = "🚨 URGENT - 1 Day or 2 Day Shipping"
	noUrgentLine  = "No urgent shipping items"
	footerLine    = "This is an automated report from Power Manufacturing's order management system."

	dateFormat = "January 2, 2006"
)

// htmlShell is the Liquid layout for the HTML report. Section bodies are
// rendered in Go and injected pre-escaped, so the shell only handles
// document structure. Table markup keeps email clients happy.
const htmlShell = `<table width="100%" cellpadding="0" cellspacing="0" border="0" style="font-family: Arial, sans-serif; max-width: 800px; margin: 0 auto;">
  <tr>
    <td>
      <h2 style="color: #333; margin: 0; font-family: Arial, sans-serif;">{{ title }}</h2>
{% if empty %}
      <p style="color: #333; margin: 15px 0; font-family: Arial, sans-serif;">No orders found for {{ date }}.</p>
{% else %}
      <p style="color: #333; margin: 15px 0; font-family: Arial, sans-serif;">
        <strong>Date:</strong> {{ date }}<br>
        <strong>Total Orders:</strong> {{ total }}<br>
        <strong>Urgent Orders:</strong> {{ urgent_count }}
      </p>
{{ urgent_html }}
{{ sections_html }}
      <p style="margin: 40px 0 0 0; font-size: 14px; color: #999; font-family: Arial, sans-serif;">{{ footer }}</p>
{% endif %}
    </td>
  </tr>
</table>`

var (
	shellOnce sync.Once
	shell     *liquid.Template
	shellErr  error
)

func shellTemplate() (*liquid.Template, error) {
	shellOnce.Do(func() {
		shell, shellErr = liquid.NewEngine().ParseString(htmlShell)
	})
	return shell, shellErr
}

// orderLine formats one order the way both report variants list it.
func orderLine(order bigcommerce.Order) string {
	return fmt.Sprintf("%s - Order #%d", order.CustomerName(), order.ID)
}

// Render produces the HTML and plain-text representations of a
// classified report. Both variants list identical order lines in
// identical sequence; that equivalence is the renderer's contract.
func Render(report ClassifiedReport) (htmlOut, textOut string, err error) {
	tmpl, err := shellTemplate()
	if err != nil {
		return "", "", fmt.Errorf("parsing report layout: %w", err)
	}

	date := report.GeneratedAt.Format(dateFormat)

	bindings := map[string]interface{}{
		"title":        reportTitle,
		"date":         date,
		"total":        report.TotalCount,
		"urgent_count": report.UrgentCount,
		"footer":       footerLine,
		"empty":        report.TotalCount == 0,
	}
	if report.TotalCount > 0 {
		bindings["urgent_html"] = renderUrgentHTML(report.Urgent)
		bindings["sections_html"] = renderGroupsHTML(report.Groups)
	}

	rendered, err := tmpl.RenderString(bindings)
	if err != nil {
		return "", "", fmt.Errorf("rendering report layout: %w", err)
	}

	return rendered, renderText(report, date), nil
}

func renderUrgentHTML(urgent []bigcommerce.Order) string {
	var b strings.Builder

	// Urgent section gets the warning palette only when it has entries
	boxStyle := "background-color: #f8f9fa; border: 1px solid #dee2e6;"
	if len(urgent) > 0 {
		boxStyle = "background-color: #fff3cd; border: 2px solid #ffc107;"
	}

	b.WriteString(`      <table width="100%" cellpadding="20" cellspacing="0" border="0" style="margin: 20px 0; ` + boxStyle + `">
        <tr>
          <td>
            <h3 style="color: #333; margin: 0; font-size: 20px; font-family: Arial, sans-serif;">` + urgentHeading + `</h3>
          </td>
        </tr>
        <tr>
          <td style="padding-top: 10px; color: #333; font-family: Arial, sans-serif;">
`)
	if len(urgent) == 0 {
		b.WriteString("            " + noUrgentLine + "\n")
	} else {
		lines := make([]string, len(urgent))
		for i, order := range urgent {
			lines[i] = html.EscapeString(orderLine(order))
		}
		b.WriteString("            " + strings.Join(lines, "<br>\n            ") + "\n")
	}
	b.WriteString(`          </td>
        </tr>
      </table>
`)
	return b.String()
}

func renderGroupsHTML(groups []Group) string {
	var b strings.Builder
	for _, group := range groups {
		b.WriteString(`      <table width="100%" cellpadding="0" cellspacing="0" border="0" style="margin: 30px 0;">
        <tr>
          <td>
            <h4 style="color: #333; margin: 0; font-size: 16px; font-family: Arial, sans-serif;">` + html.EscapeString(group.Method) + `</h4>
          </td>
        </tr>
        <tr>
          <td style="padding: 10px 0 0 0; color: #333; font-family: Arial, sans-serif;">
`)
		lines := make([]string, len(group.Orders))
		for i, order := range group.Orders {
			lines[i] = html.EscapeString(orderLine(order))
		}
		b.WriteString("            " + strings.Join(lines, "<br>\n            ") + "\n")
		b.WriteString(`          </td>
        </tr>
      </table>
`)
	}
	return b.String()
}

func renderText(report ClassifiedReport, date string) string {
	var b strings.Builder

	b.WriteString(reportTitle + "\n\n")

	if report.TotalCount == 0 {
		b.WriteString("No orders found for " + date + ".\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Date: %s\n", date)
	fmt.Fprintf(&b, "Total Orders: %d\n", report.TotalCount)
	fmt.Fprintf(&b, "Urgent Orders: %d\n\n", report.UrgentCount)

	b.WriteString(urgentHeading + "\n")
	if len(report.Urgent) == 0 {
		b.WriteString("  " + noUrgentLine + "\n")
	} else {
		for _, order := range report.Urgent {
			b.WriteString("  " + orderLine(order) + "\n")
		}
	}
	b.WriteString("\n")

	for _, group := range report.Groups {
		b.WriteString(group.Method + "\n")
		for _, order := range group.Orders {
			b.WriteString("  " + orderLine(order) + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(footerLine + "\n")
	return b.String()
}
