package configstore

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const updatesSuffix = "_updates"

// MergeUpdates applies a section-level update payload to the current
// document and returns the merged bytes plus a human-readable change list.
//
// The payload is a JSON object with:
//   - "version_increment": "minor" or "patch", bumping the document's
//     semver "version" field
//   - "<section>_updates": an object of entries to patch inside that
//     section; only entries that already exist in the document are touched,
//     unknown entries and unknown sections are skipped
//
// Section names in update keys go through the same alias resolution as
// reads, so "models_updates" patches "modelArchitectures". The document's
// "lastUpdated" field is stamped with now on every merge.
func MergeUpdates(current, updates []byte, now time.Time) ([]byte, []string, error) {
	if !gjson.ValidBytes(updates) || !gjson.ParseBytes(updates).IsObject() {
		return nil, nil, fmt.Errorf("%w: updates payload", ErrInvalidDocument)
	}

	merged := append([]byte(nil), current...)
	var changes []string
	var mergeErr error

	if inc := gjson.GetBytes(updates, "version_increment"); inc.Exists() {
		oldVersion := gjson.GetBytes(current, "version").String()
		if oldVersion == "" {
			oldVersion = "1.0.0"
		}

		newVersion, err := bumpVersion(oldVersion, inc.String())
		if err != nil {
			return nil, nil, err
		}

		merged, err = sjson.SetBytes(merged, "version", newVersion)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to set version: %w", err)
		}
		changes = append(changes, fmt.Sprintf("version: %s -> %s", oldVersion, newVersion))
	}

	gjson.ParseBytes(updates).ForEach(func(key, sectionUpdates gjson.Result) bool {
		name := key.String()
		if !strings.HasSuffix(name, updatesSuffix) {
			return true
		}

		alias := strings.TrimSuffix(name, updatesSuffix)
		if err := ValidateSectionName(alias); err != nil {
			mergeErr = err
			return false
		}
		section := resolveSectionName(alias)

		// Unknown sections are skipped, not created
		if !gjson.GetBytes(merged, escapeGJSONPath(section)).Exists() {
			return true
		}

		sectionUpdates.ForEach(func(entryKey, fields gjson.Result) bool {
			entry := entryKey.String()
			entryPath := escapeGJSONPath(section) + "." + escapeGJSONPath(entry)

			// Only entries already present in the document are patched
			if !gjson.GetBytes(merged, entryPath).Exists() {
				return true
			}

			fields.ForEach(func(fieldKey, value gjson.Result) bool {
				fieldPath := entryPath + "." + escapeGJSONPath(fieldKey.String())

				out, err := sjson.SetRawBytes(merged, fieldPath, []byte(value.Raw))
				if err != nil {
					mergeErr = fmt.Errorf("failed to apply update %s: %w", fieldPath, err)
					return false
				}
				merged = out
				changes = append(changes, fmt.Sprintf("%s.%s.%s: %s", alias, entry, fieldKey.String(), value.Raw))
				return true
			})
			return mergeErr == nil
		})
		return mergeErr == nil
	})
	if mergeErr != nil {
		return nil, nil, mergeErr
	}

	merged, err := sjson.SetBytes(merged, "lastUpdated", now.UTC().Format("2006-01-02T15:04:05Z"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stamp lastUpdated: %w", err)
	}

	return merged, changes, nil
}

// bumpVersion increments a "major.minor.patch" version string. A minor
// increment resets patch to zero.
func bumpVersion(version, increment string) (string, error) {
	parts := strings.Split(version, ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("cannot increment malformed version %q", version)
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return "", fmt.Errorf("cannot increment malformed version %q", version)
		}
		nums[i] = n
	}

	switch increment {
	case "minor":
		nums[1]++
		nums[2] = 0
	case "patch":
		nums[2]++
	default:
		return "", fmt.Errorf("unknown version increment %q (want minor or patch)", increment)
	}

	return fmt.Sprintf("%d.%d.%d", nums[0], nums[1], nums[2]), nil
}
