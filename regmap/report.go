package regmap

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// refTypeLabels order and label the per-type breakdown in the report.
var refTypeLabels = []struct{ Type, Label string }{
	{RefIRC, "IRC"},
	{RefCFR, "CFR"},
	{RefPublicLaw, "Public Law"},
	{RefHealthSafe, "Health & Safety Code"},
	{RefRevTax, "Revenue & Taxation Code"},
	{RefInternal, "Internal"},
}

// WriteMarkdownReport renders the architecture analysis as a
// human-readable markdown file.
func WriteMarkdownReport(path string, rep *Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s Regulatory Architecture\n\n", rep.Jurisdiction)
	fmt.Fprintf(&b, "**Agency:** %s\n\n", rep.Agency)
	fmt.Fprintf(&b, "Generated: %s\n\n", time.Now().Format("2006-01-02 15:04"))

	fmt.Fprintf(&b, "## Summary\n\n")
	fmt.Fprintf(&b, "| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Sections configured | %d |\n", len(rep.Sections))
	fmt.Fprintf(&b, "| Sections with content | %d |\n", rep.FoundCount)
	fmt.Fprintf(&b, "| Sections with NO CONTENT | %d |\n", len(rep.Missing))
	fmt.Fprintf(&b, "| Total characters | %d |\n", rep.TotalChars)
	fmt.Fprintf(&b, "| Total legal references | %d |\n", rep.TotalRefs)
	fmt.Fprintf(&b, "| Total cross-references | %d |\n", rep.TotalCrossRefs)
	if rep.DensestSection != "" {
		fmt.Fprintf(&b, "| Most legally dense section | %s |\n", rep.DensestSection)
	}
	if rep.LargestSection != "" {
		fmt.Fprintf(&b, "| Largest section | %s |\n", rep.LargestSection)
	}
	b.WriteString("\n")

	for _, sec := range rep.Sections {
		fmt.Fprintf(&b, "## Section %s. %s\n\n", sec.Number, sec.Title)
		if sec.LIHTCCategory != "" {
			fmt.Fprintf(&b, "*Category: %s*\n\n", sec.LIHTCCategory)
		}
		if !sec.Found {
			b.WriteString("**NO CONTENT** — no extracted content matched this section.\n\n")
			continue
		}

		fmt.Fprintf(&b, "- Characters: %d\n", sec.CharCount)
		counts := sec.RefCounts()
		for _, tl := range refTypeLabels {
			n := counts[tl.Type]
			if n == 0 {
				continue
			}
			fmt.Fprintf(&b, "- %s references: %d (e.g., `%s`)\n", tl.Label, n, firstCitation(sec.References, tl.Type))
		}
		if len(sec.CrossRefs) > 0 {
			fmt.Fprintf(&b, "- Cross-references: %s\n", strings.Join(sec.CrossRefs, ", "))
		}
		b.WriteString("\n")
	}

	if len(rep.Missing) > 0 {
		b.WriteString("## Missing Sections\n\n")
		missing := append([]string(nil), rep.Missing...)
		sort.Strings(missing)
		for _, num := range missing {
			fmt.Fprintf(&b, "- %s\n", num)
		}
		b.WriteString("\n")
	}

	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func firstCitation(refs []LegalReference, typ string) string {
	for _, r := range refs {
		if r.Type == typ {
			return r.Citation
		}
	}
	return ""
}
