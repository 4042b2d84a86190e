package pipeline

import (
	"fmt"
	"strings"

	"github.com/dgallion1/gridintel/internal/snapshot"
)

const reportItemLimit = 10

// intelligenceReport renders the markdown findings summary from one
// analysis snapshot.
func intelligenceReport(snap *snapshot.Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Grid Intelligence Analysis Report\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", snap.GeneratedAt.Format("2006-01-02 15:04:05"))

	fmt.Fprintf(&b, "## Summary\n")
	fmt.Fprintf(&b, "- Documents Analyzed: %d\n", snap.DocumentsAnalyzed)
	fmt.Fprintf(&b, "- Capacity Data Points: %d\n", len(snap.Capacity))
	fmt.Fprintf(&b, "- Connection Data Points: %d\n", len(snap.Connections))
	fmt.Fprintf(&b, "- Constraint Data Points: %d\n", len(snap.Constraints))
	fmt.Fprintf(&b, "- Investment Data Points: %d\n\n", len(snap.Investments))

	fmt.Fprintf(&b, "## Key Findings\n\n")

	fmt.Fprintf(&b, "### Grid Capacity Information\n")
	for i, rec := range snap.Capacity {
		if i >= reportItemLimit {
			break
		}
		if rec.ValueMW == nil {
			continue
		}
		fmt.Fprintf(&b, "- **%.0f %s**: %s\n", *rec.ValueMW, rec.Unit, clip(rec.Description, 100))
	}

	fmt.Fprintf(&b, "\n### Connection Requirements\n")
	for i, rec := range snap.Connections {
		if i >= reportItemLimit {
			break
		}
		fmt.Fprintf(&b, "- %s\n", clip(rec.Description, 100))
	}

	fmt.Fprintf(&b, "\n### Grid Constraints\n")
	for i, rec := range snap.Constraints {
		if i >= reportItemLimit {
			break
		}
		fmt.Fprintf(&b, "- %s\n", clip(rec.Description, 100))
	}

	fmt.Fprintf(&b, "\n### Investment Plans\n")
	for i, rec := range snap.Investments {
		if i >= reportItemLimit {
			break
		}
		fmt.Fprintf(&b, "- %s\n", clip(rec.Description, 100))
	}

	return b.String()
}

func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
