package cohesion

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
)

// Markdown renders the human-readable audit summary.
func (r *Report) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# End-to-End Cohesion Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", r.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "## Overall Cohesion Score: %.1f/100\n\n", r.Score)

	fmt.Fprintf(&b, "### Component Scores\n\n")
	fmt.Fprintf(&b, "- **Data Flow**: %.1f/100\n", r.DataFlowScore)
	fmt.Fprintf(&b, "- **Integration Points**: %.1f/100\n", r.IntegrationScore)
	fmt.Fprintf(&b, "- **Output Consistency**: %.1f/100\n\n", r.OutputScore)

	fmt.Fprintf(&b, "## Data Flow Stages\n\n")
	for i, stage := range r.Stages {
		fmt.Fprintf(&b, "### Stage %d: %s\n\n", i+1, titleCase(stage.Name))
		fmt.Fprintf(&b, "- **Status**: %s\n", strings.ToUpper(string(stage.Status)))
		fmt.Fprintf(&b, "- **Score**: %.0f/100\n", stage.Score)
		for _, key := range sortedIntKeys(stage.Counts) {
			fmt.Fprintf(&b, "- **%s**: %d\n", titleCase(key), stage.Counts[key])
		}
		for _, key := range sortedKeys(stage.Flags) {
			fmt.Fprintf(&b, "- **%s**: %s\n", titleCase(key), yesNo(stage.Flags[key]))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Integration Points\n\n")
	for _, check := range r.Integrations {
		fmt.Fprintf(&b, "### %s\n\n", titleCase(check.Name))
		fmt.Fprintf(&b, "- **Score**: %.1f/100\n", check.Score)
		for _, key := range sortedKeys(check.Checks) {
			fmt.Fprintf(&b, "- **%s**: %s\n", titleCase(key), yesNo(check.Checks[key]))
		}
		b.WriteString("\n")
	}

	if len(r.Gaps) > 0 {
		fmt.Fprintf(&b, "## Identified Gaps (%d)\n\n", len(r.Gaps))
		for _, gap := range r.Gaps {
			fmt.Fprintf(&b, "- %s\n", gap)
		}
		b.WriteString("\n")
	} else {
		fmt.Fprintf(&b, "## Identified Gaps\n\nNo significant gaps identified.\n\n")
	}

	fmt.Fprintf(&b, "## Assessment\n\n")
	switch {
	case r.Score >= 90:
		b.WriteString("Pipeline artifacts are fully consistent end to end.\n")
	case r.Score >= 80:
		b.WriteString("Pipeline artifacts are largely consistent; review the gaps above.\n")
	default:
		b.WriteString("Pipeline has integration issues; address the gaps above before relying on the outputs.\n")
	}

	return b.String()
}

// HTML renders the markdown summary to HTML.
func (r *Report) HTML() ([]byte, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(r.Markdown()), &buf); err != nil {
		return nil, fmt.Errorf("render report html: %w", err)
	}
	return buf.Bytes(), nil
}

func titleCase(key string) string {
	words := strings.Split(strings.ReplaceAll(key, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func yesNo(ok bool) string {
	if ok {
		return "yes"
	}
	return "no"
}

func sortedIntKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
