package mcp

import (
	"fmt"
	"strings"
	"time"
)

// BuildResearchPrompt renders the research request template for the given
// config version, date and categories. Pure function, no I/O; the caller
// supplies the current document version.
func BuildResearchPrompt(version string, date time.Time, categories string) string {
	if strings.TrimSpace(categories) == "" {
		categories = "all"
	}

	var b strings.Builder
	b.WriteString("# Research Request\n")
	fmt.Fprintf(&b, "Version: %s\n", version)
	fmt.Fprintf(&b, "Date: %s\n", date.Format("2006-01-02"))
	fmt.Fprintf(&b, "Categories: %s\n", categories)
	b.WriteString(`
Research needed:
- GPU pricing (H100, H200, B200, B300)
- New AI models (Llama, Mistral, DeepSeek)
- Storage pricing updates
- NVLink configurations

Return JSON with version_increment, gpuTypes_updates, modelArchitectures_updates, notes.`)

	return b.String()
}
