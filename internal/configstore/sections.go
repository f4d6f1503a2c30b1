package configstore

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// metadataSection is synthesized from the document rather than stored.
const metadataSection = "metadata"

// sectionAliases maps the short names tools use to the keys actually stored
// in the document.
var sectionAliases = map[string]string{
	"models":  "modelArchitectures",
	"storage": "storageOptions",
}

// resolveSectionName maps a caller-facing section name to the stored key.
func resolveSectionName(name string) string {
	if stored, ok := sectionAliases[name]; ok {
		return stored
	}
	return name
}

// ValidateSectionName rejects section names that could reference anything
// beyond a single top-level key: path separators, traversal sequences, and
// gjson path metacharacters (".", "*", "?", "#", "@", "|") all fail with
// ErrPathViolation.
func ValidateSectionName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty section name", ErrPathViolation)
	}

	if strings.Contains(name, "..") {
		return fmt.Errorf("%w: %q", ErrPathViolation, name)
	}

	if strings.ContainsAny(name, `/\.*?#@|"[]{}()`) {
		return fmt.Errorf("%w: %q", ErrPathViolation, name)
	}

	return nil
}

// escapeGJSONPath escapes gjson path special characters in a key so the key
// is always treated as a literal top-level lookup. Section name validation
// already rejects these characters; the escape is kept as a second layer.
func escapeGJSONPath(key string) string {
	replacer := strings.NewReplacer(
		".", `\.`,
		"*", `\*`,
		"?", `\?`,
		"|", `\|`,
		"#", `\#`,
		"@", `\@`,
	)
	return replacer.Replace(key)
}

// synthesizeMetadata assembles the virtual metadata section from the
// document's version and lastUpdated fields.
func synthesizeMetadata(doc []byte) ([]byte, error) {
	out := []byte(`{}`)

	var err error
	if v := gjson.GetBytes(doc, "version"); v.Exists() {
		out, err = sjson.SetRawBytes(out, "version", []byte(v.Raw))
		if err != nil {
			return nil, fmt.Errorf("failed to build metadata section: %w", err)
		}
	}
	if v := gjson.GetBytes(doc, "lastUpdated"); v.Exists() {
		out, err = sjson.SetRawBytes(out, "lastUpdated", []byte(v.Raw))
		if err != nil {
			return nil, fmt.Errorf("failed to build metadata section: %w", err)
		}
	}

	return out, nil
}
