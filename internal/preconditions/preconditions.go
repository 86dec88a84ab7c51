package preconditions

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefinitionExtensions are the accepted extensions of YAML inputs
var DefinitionExtensions = []string{".yaml", ".yml"}

// ValidateFiles checks if input files exist, are readable and carry one of
// the given extensions
func ValidateFiles(paths []string, extensions ...string) error {
	if len(paths) == 0 {
		return fmt.Errorf("no input files given")
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("cannot access file %s: %w", path, err)
		}

		if info.IsDir() {
			return fmt.Errorf("%s is a directory, not a file", path)
		}

		if len(extensions) > 0 && !hasExtension(path, extensions) {
			return fmt.Errorf("%s is not a supported file (must end in %s)", path, strings.Join(extensions, " or "))
		}

		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("cannot read file %s: %w", path, err)
		}
		file.Close()
	}

	return nil
}

func hasExtension(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ValidateOutputPath checks if the output path can be written: its directory
// must exist and be writable, and the path itself must not be a directory
func ValidateOutputPath(path string) error {
	if path == "" {
		return fmt.Errorf("output path must not be empty")
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("output %s is a directory", path)
	}

	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("output directory %s does not exist: %w", dir, err)
	}
	if !info.IsDir() || (info.Mode()&0200) == 0 {
		return fmt.Errorf("output directory %s is not writable", dir)
	}

	return nil
}
