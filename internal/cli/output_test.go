package cli

import (
	"bytes"
	"testing"
)

func TestFormatSize(t *testing.T) {
	cases := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{52428800, "50.0 MB"},
		{3 << 30, "3.0 GB"},
	}
	for _, tc := range cases {
		if got := formatSize(tc.n); got != tc.want {
			t.Errorf("formatSize(%d) = %q, expected %q", tc.n, got, tc.want)
		}
	}
}

func TestPrintJSON_NoHTMLEscaping(t *testing.T) {
	var buf bytes.Buffer
	err := printJSON(&buf, map[string]any{"name": "سارة <مسؤول>"})
	if err != nil {
		t.Fatalf("printJSON failed: %v", err)
	}

	got := buf.String()
	if want := "{\n  \"name\": \"سارة <مسؤول>\"\n}\n"; got != want {
		t.Errorf("printJSON output = %q, expected %q", got, want)
	}
}
