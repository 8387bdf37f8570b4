package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "target.yml")
	yamlSrc := "name: ilp32\npointer_bits: 32\nlittle_endian: true\nsize_t_bits: 32\nptrdiff_t_bits: 32\n"
	if err := os.WriteFile(path, []byte(yamlSrc), 0o644); err != nil {
		t.Fatal(err)
	}

	tgt, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tgt.Name != "ilp32" || tgt.PointerBits != 32 || tgt.SizeTBits != 32 {
		t.Errorf("Load did not apply overrides: %+v", tgt)
	}
	if !tgt.SizeTUnsigned {
		t.Errorf("unset fields should keep Default()'s values, got SizeTUnsigned=false")
	}
}

func TestDefaultIsLP64(t *testing.T) {
	d := Default()
	if d.PointerBits != 64 || !d.LittleEndian || d.SizeTBits != 64 {
		t.Errorf("Default() = %+v, want lp64", d)
	}
}
