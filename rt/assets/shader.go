package assets

import (
	"strings"

	"github.com/gogpu/naga"
	"github.com/pkg/errors"
)

// ValidateShader compiles WGSL source to SPIR-V and discards the result.
// Entry points listed in entries must be declared in the source.
func ValidateShader(name, source string, entries ...string) error {
	for _, entry := range entries {
		if !strings.Contains(source, "fn "+entry+"(") {
			return errors.Errorf("validate shader %s: entry point %s not declared", name, entry)
		}
	}
	if _, err := naga.Compile(source); err != nil {
		return errors.Wrapf(err, "validate shader %s", name)
	}
	return nil
}
