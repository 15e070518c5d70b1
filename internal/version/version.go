// Package version holds the binary version and the schema stamps carried by
// the config file and export documents.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is overridden at build time with -ldflags "-X ...version.Version=v1.2.3".
var Version = "dev"

// Current schema versions. Bump when making breaking changes, and add the
// new schema to MinFortsVersion.
const (
	CurrentConfigVersion = 1
	CurrentExportVersion = 1
)

// Schema type prefixes.
const (
	ConfigSchemaPrefix = "config/"
	ExportSchemaPrefix = "export/"
)

// MinFortsVersion maps schema identifiers to the first release that wrote them.
// Used to tell users which upgrade they need when a file is newer than the binary.
var MinFortsVersion = map[string]string{
	"config/1": "0.1.0",
	"export/1": "0.1.0",
}

// FormatConfigSchema returns e.g. "config/1".
func FormatConfigSchema(v int) string {
	return fmt.Sprintf("%s%d", ConfigSchemaPrefix, v)
}

// FormatExportSchema returns e.g. "export/1".
func FormatExportSchema(v int) string {
	return fmt.Sprintf("%s%d", ExportSchemaPrefix, v)
}

// CurrentConfigSchema returns the schema stamp new config files carry.
func CurrentConfigSchema() string {
	return FormatConfigSchema(CurrentConfigVersion)
}

// CurrentExportSchema returns the schema stamp of export documents.
func CurrentExportSchema() string {
	return FormatExportSchema(CurrentExportVersion)
}

// ParseConfigVersion extracts the version number from a config schema string.
func ParseConfigVersion(schema string) (int, error) {
	return parseSchemaVersion(schema, ConfigSchemaPrefix, "config")
}

// ParseExportVersion extracts the version number from an export schema string.
func ParseExportVersion(schema string) (int, error) {
	return parseSchemaVersion(schema, ExportSchemaPrefix, "export")
}

func parseSchemaVersion(schema, prefix, schemaType string) (int, error) {
	if !strings.HasPrefix(schema, prefix) {
		return 0, fmt.Errorf("invalid %s schema format: %q (expected %sN)", schemaType, schema, prefix)
	}
	versionStr := strings.TrimPrefix(schema, prefix)
	v, err := strconv.Atoi(versionStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s schema version: %q", schemaType, versionStr)
	}
	if v < 1 {
		return 0, fmt.Errorf("invalid %s schema version: %d (must be >= 1)", schemaType, v)
	}
	return v, nil
}
