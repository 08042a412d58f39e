package router

import (
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		wantKind ReplyKind
		wantName string
	}{
		{
			name:     "general",
			reply:    "GENERAL",
			wantKind: KindGeneral,
		},
		{
			name:     "general lowercase with whitespace",
			reply:    "  general\n",
			wantKind: KindGeneral,
		},
		{
			name:     "detailed",
			reply:    "DETAILED:poly-ratings-llm",
			wantKind: KindDetailed,
			wantName: "poly-ratings-llm",
		},
		{
			name:     "detailed mixed case with padded name",
			reply:    "Detailed:  OpenBook ",
			wantKind: KindDetailed,
			wantName: "OpenBook",
		},
		{
			name:     "detailed without name",
			reply:    "DETAILED:   ",
			wantKind: KindUnparseable,
		},
		{
			name:     "chatty reply",
			reply:    "I think this is GENERAL",
			wantKind: KindUnparseable,
		},
		{
			name:     "empty",
			reply:    "",
			wantKind: KindUnparseable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.reply)

			if got.Kind != tt.wantKind {
				t.Errorf("Parse(%q) kind = %v, want %v", tt.reply, got.Kind, tt.wantKind)
			}
			if got.Name != tt.wantName {
				t.Errorf("Parse(%q) name = %q, want %q", tt.reply, got.Name, tt.wantName)
			}
			if got.Raw != tt.reply {
				t.Errorf("Parse(%q) raw = %q", tt.reply, got.Raw)
			}
		})
	}
}

func TestMatchName(t *testing.T) {
	known := []string{"OpenBook", "tool"}

	if got, ok := matchName("openbook", known); !ok || got != "OpenBook" {
		t.Errorf("matchName(openbook) = %q, %v", got, ok)
	}
	if _, ok := matchName("unknown", known); ok {
		t.Errorf("matchName(unknown) matched")
	}
}
