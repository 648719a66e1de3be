package cli

import (
	"strings"
	"testing"
)

func TestKeyValueAlignsKeys(t *testing.T) {
	short, long := keyValue("id", "abc"), keyValue("created", "abc")
	for _, line := range []string{short, long} {
		if !strings.Contains(line, "abc") {
			t.Errorf("keyValue() = %q, missing value", line)
		}
	}
	if strings.Index(short, "abc") != strings.Index(long, "abc") {
		t.Errorf("values not aligned:\n%q\n%q", short, long)
	}
}
