package node

import (
	"testing"
)

func TestFormatOrdinalPrefix(t *testing.T) {
	tests := []struct {
		name    string
		ordinal int64
		in      string
		want    string
	}{
		{"plain name", 3, "notes.md", "0003_notes.md"},
		{"replaces existing prefix", 12, "0003_notes.md", "0012_notes.md"},
		{"zero ordinal", 0, "readme.md", "0000_readme.md"},
		{"wide ordinal keeps all digits", 123456, "a.md", "123456_a.md"},
		{"negative ordinal strips prefix", -1, "0003_notes.md", "notes.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatOrdinalPrefix(tt.ordinal, tt.in); got != tt.want {
				t.Errorf("FormatOrdinalPrefix(%d, %q) = %q, want %q", tt.ordinal, tt.in, got, tt.want)
			}
		})
	}
}

func TestSplitOrdinalPrefix(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantOrd  int64
		wantBase string
	}{
		{"prefixed", "0003_notes.md", 3, "notes.md"},
		{"unprefixed", "notes.md", -1, "notes.md"},
		{"underscore only", "_trailing", -1, "_trailing"},
		{"non-numeric prefix", "abc_notes.md", -1, "abc_notes.md"},
		{"prefix with extra underscores", "0010_my_notes.md", 10, "my_notes.md"},
		{"bare number", "0042", -1, "0042"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ord, base := SplitOrdinalPrefix(tt.in)
			if ord != tt.wantOrd || base != tt.wantBase {
				t.Errorf("SplitOrdinalPrefix(%q) = (%d, %q), want (%d, %q)",
					tt.in, ord, base, tt.wantOrd, tt.wantBase)
			}
		})
	}
}

func TestIsPullup(t *testing.T) {
	if !IsPullup("attachments_") {
		t.Error("IsPullup(attachments_) = false, want true")
	}
	if IsPullup("attachments") {
		t.Error("IsPullup(attachments) = true, want false")
	}
}

func TestJoinSplitPath(t *testing.T) {
	tests := []struct {
		folder string
		name   string
		path   string
	}{
		{"/", "docs", "/docs"},
		{"/docs", "notes.md", "/docs/notes.md"},
		{"/docs/archive", "old.md", "/docs/archive/old.md"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := JoinPath(tt.folder, tt.name); got != tt.path {
				t.Errorf("JoinPath(%q, %q) = %q, want %q", tt.folder, tt.name, got, tt.path)
			}
			folder, name := SplitPath(tt.path)
			if folder != tt.folder || name != tt.name {
				t.Errorf("SplitPath(%q) = (%q, %q), want (%q, %q)", tt.path, folder, name, tt.folder, tt.name)
			}
		})
	}

	if folder, name := SplitPath("/"); folder != "/" || name != "" {
		t.Errorf("SplitPath(/) = (%q, %q), want (/, \"\")", folder, name)
	}
}

func TestIsPathUnder(t *testing.T) {
	tests := []struct {
		path     string
		ancestor string
		want     bool
	}{
		{"/docs/a", "/docs", true},
		{"/docs", "/docs", true},
		{"/docs2", "/docs", false},
		{"/docs/a/b", "/docs/a", true},
		{"/other", "/", true},
	}

	for _, tt := range tests {
		if got := IsPathUnder(tt.path, tt.ancestor); got != tt.want {
			t.Errorf("IsPathUnder(%q, %q) = %v, want %v", tt.path, tt.ancestor, got, tt.want)
		}
	}
}
