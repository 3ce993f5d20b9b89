package reporter

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/samber/lo"

	"github.com/ethanolivertroy/dep-usage/internal/models"
)

// TerminalReporter outputs results in a human-readable terminal format,
// one table per searched dependency
type TerminalReporter struct{}

// Report generates terminal output for the given results
func (r *TerminalReporter) Report(results *models.ResultSet) ([]byte, error) {
	var sb strings.Builder

	for _, spec := range results.Specs {
		matches := results.Matches[spec]

		sb.WriteString("\n" + strings.Repeat("=", 60) + "\n")
		sb.WriteString(fmt.Sprintf("SEARCH RESULTS for %s\n", spec))
		sb.WriteString(strings.Repeat("=", 60) + "\n")

		if len(matches) == 0 {
			sb.WriteString("No projects found using this dependency.\n")
			continue
		}

		namespaces := lo.Uniq(lo.Map(matches, func(m models.DependencyMatch, _ int) string {
			return m.Namespace
		}))
		sb.WriteString(fmt.Sprintf("Found %d usage(s) across %d namespace(s)\n\n", len(matches), len(namespaces)))

		tw := table.NewWriter()
		tw.SetStyle(table.StyleLight)
		tw.AppendHeader(table.Row{"Namespace", "Project", "Git URL", "Scope", "Parent"})
		for _, m := range matches {
			tw.AppendRow(table.Row{
				m.Namespace,
				lo.Ternary(m.ProjectName == "", "Unknown Project", m.ProjectName),
				m.ProjectGitURL,
				string(m.Scope),
				parentLabel(m),
			})
		}
		sb.WriteString(tw.Render())
		sb.WriteString("\n")
	}

	if skipped := results.SkippedNamespaces(); len(skipped) > 0 {
		sb.WriteString(fmt.Sprintf("\n⚠️  %d namespace(s) skipped after query failures:\n", len(skipped)))
		for _, e := range results.Skipped {
			sb.WriteString(fmt.Sprintf("   - %s (%s): %s\n", e.Namespace, e.Dependency, failureReason(e)))
		}
	}

	sb.WriteString("\n" + strings.Repeat("=", 60) + "\n")
	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("=", 60) + "\n")
	sb.WriteString(fmt.Sprintf("Dependencies searched: %d\n", len(results.Specs)))
	sb.WriteString(fmt.Sprintf("Total usages found: %d\n", results.Len()))

	return []byte(sb.String()), nil
}

func parentLabel(m models.DependencyMatch) string {
	if m.Scope != models.ScopeTransitive {
		return ""
	}
	return m.ParentName + "@" + m.ParentVersion
}

func failureReason(e models.NamespaceQueryError) string {
	if e.Status != 0 {
		body := e.Body
		if utf8.RuneCountInString(body) > 100 {
			body = text.Trim(body, 97) + "..."
		}
		return fmt.Sprintf("status %d %s", e.Status, body)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}
