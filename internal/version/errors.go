package version

import (
	"fmt"
)

// SchemaVersionError indicates a file whose schema stamp this binary cannot read.
type SchemaVersionError struct {
	FileType    string // "config", "export"
	FilePath    string
	Found       string // "missing" or the stamp that was found
	Expected    string
	MinRequired string // release needed to read Found, when it is newer
}

func (e *SchemaVersionError) Error() string {
	if e.MinRequired != "" {
		return fmt.Sprintf(
			"%s schema %s requires forts >= %s (file: %s, supports up to: %s)",
			e.FileType, e.Found, e.MinRequired, e.FilePath, e.Expected,
		)
	}
	if e.Found == "missing" {
		return fmt.Sprintf(
			"%s has no forts_schema (file: %s). Add forts_schema = %q.",
			e.FileType, e.FilePath, e.Expected,
		)
	}
	return fmt.Sprintf(
		"%s has invalid schema: found %s, expected %s (file: %s)",
		e.FileType, e.Found, e.Expected, e.FilePath,
	)
}

// MissingConfigSchema reports a config file without forts_schema.
func MissingConfigSchema(path string) error {
	return &SchemaVersionError{
		FileType: "config",
		FilePath: path,
		Found:    "missing",
		Expected: CurrentConfigSchema(),
	}
}

// InvalidConfigSchema reports a config file with an unsupported schema.
func InvalidConfigSchema(path, found string) error {
	e := &SchemaVersionError{
		FileType: "config",
		FilePath: path,
		Found:    found,
		Expected: CurrentConfigSchema(),
	}
	if v, err := ParseConfigVersion(found); err == nil && v > CurrentConfigVersion {
		if minVer, ok := MinFortsVersion[found]; ok {
			e.MinRequired = minVer
		} else {
			e.MinRequired = "a newer version"
		}
	}
	return e
}

// CheckConfigSchema validates a config file's stamp.
func CheckConfigSchema(path, found string) error {
	if found == "" {
		return MissingConfigSchema(path)
	}
	if found != CurrentConfigSchema() {
		return InvalidConfigSchema(path, found)
	}
	return nil
}
