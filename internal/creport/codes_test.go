package creport

import "testing"

func TestErrorCodeTaxonomy(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		phase    string
		category string
	}{
		{"TYP001", TYP001, "types", "redefinition"},
		{"TYP003", TYP003, "types", "scope"},
		{"DCL001", DCL001, "declarator", "specifier"},
		{"DCL004", DCL004, "declarator", "redeclaration"},
		{"CST001", CST001, "constexpr", "value"},
		{"INI002", INI002, "initializer", "count"},
		{"EXP001", EXP001, "expr", "scope"},
		{"EXP007", EXP007, "expr", "field"},
		{"STM001", STM001, "stmt", "control"},
		{"STM003", STM003, "stmt", "switch"},
		{"LNK001", LNK001, "driver", "goto"},
		{"BUG003", BUG003, "*", "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, ok := GetInfo(tt.code)
			if !ok {
				t.Fatalf("code %s not found in registry", tt.code)
			}
			if info.Code != tt.code {
				t.Errorf("Code mismatch: got %s, want %s", info.Code, tt.code)
			}
			if info.Phase != tt.phase {
				t.Errorf("Phase mismatch for %s: got %s, want %s", tt.code, info.Phase, tt.phase)
			}
			if info.Category != tt.category {
				t.Errorf("Category mismatch for %s: got %s, want %s", tt.code, info.Category, tt.category)
			}
		})
	}
}

func TestAllCodesInRegistry(t *testing.T) {
	allCodes := []string{
		TYP001, TYP002, TYP003, TYP004, TYP005,
		DCL001, DCL002, DCL003, DCL004,
		CST001, CST002,
		INI001, INI002, INI003,
		EXP001, EXP002, EXP003, EXP004, EXP005, EXP006, EXP007,
		STM001, STM002, STM003, STM004,
		LNK001, LNK002, LNK003,
		UNIMPL,
		BUG001, BUG002, BUG003,
	}
	for _, code := range allCodes {
		t.Run(code, func(t *testing.T) {
			if _, ok := GetInfo(code); !ok {
				t.Errorf("code %s is defined but not registered", code)
			}
		})
	}
	if len(Registry) < len(allCodes) {
		t.Errorf("registry has %d codes, expected at least %d", len(Registry), len(allCodes))
	}
}

func TestRegistryConsistency(t *testing.T) {
	for code, info := range Registry {
		if info.Code != code {
			t.Errorf("registry key %s maps to Info.Code %s", code, info.Code)
		}
		if info.Description == "" {
			t.Errorf("code %s has an empty description", code)
		}
		if info.Phase == "" {
			t.Errorf("code %s has an empty phase", code)
		}
	}
}

func TestIsUnimplementedAndIsBug(t *testing.T) {
	if !IsUnimplemented(UNIMPL) {
		t.Error("IsUnimplemented(UNIMPL) should be true")
	}
	if IsUnimplemented(CST001) {
		t.Error("IsUnimplemented(CST001) should be false")
	}
	if !IsBug(BUG001) {
		t.Error("IsBug(BUG001) should be true")
	}
	if IsBug(STM001) {
		t.Error("IsBug(STM001) should be false")
	}
}
