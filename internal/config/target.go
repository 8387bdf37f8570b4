// Package config loads the target/ABI configuration the lowering engine
// needs but the AST never carries: pointer width, endianness, the
// integer ranks `size_t` and `ptrdiff_t` resolve to, and whether structs
// default to packed layout. This is ambient configuration in the sense
// sunholo-data-ailang's internal/eval_harness reads YAML for model and
// benchmark configuration — same library, same "struct tags +
// yaml.Unmarshal" shape, new domain.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Target describes the machine the generated IR targets.
type Target struct {
	Name            string `yaml:"name"`
	PointerBits     int    `yaml:"pointer_bits"`
	LittleEndian    bool   `yaml:"little_endian"`
	SizeTUnsigned   bool   `yaml:"size_t_unsigned"`
	SizeTBits       int    `yaml:"size_t_bits"`
	PtrdiffTBits    int    `yaml:"ptrdiff_t_bits"`
	PackedByDefault bool   `yaml:"packed_structs_by_default"`
}

// Default is the target used when no config file is given: a generic
// 64-bit little-endian LP64 target, matching the IR builder's own
// hardcoded assumptions (8-byte pointers, §6).
func Default() *Target {
	return &Target{
		Name:          "lp64",
		PointerBits:   64,
		LittleEndian:  true,
		SizeTUnsigned: true,
		SizeTBits:     64,
		PtrdiffTBits:  64,
	}
}

// Load reads a YAML target description from path.
func Load(path string) (*Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read target file: %w", err)
	}
	t := Default()
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("config: parse target YAML: %w", err)
	}
	return t, nil
}
