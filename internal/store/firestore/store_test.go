package firestore

import (
	"strings"
	"testing"
)

func TestDocumentID(t *testing.T) {
	cases := []struct {
		key  string
		want string
	}{
		{"lagoa nova | natal, rn, brasil", "lagoa nova | natal, rn, brasil"},
		{"cj. 1/2 | natal", "cj. 1_2 | natal"},
		{"", "k"},
		{"..", "k.."},
		{"__nome__", "k__nome__"},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			if got := DocumentID(tc.key); got != tc.want {
				t.Errorf("DocumentID(%q) = %q, esperava %q", tc.key, got, tc.want)
			}
		})
	}

	longo := strings.Repeat("a", 2000)
	if got := DocumentID(longo); len(got) != maxDocumentIDBytes {
		t.Errorf("ID deveria ser truncado, tem %d bytes", len(got))
	}
}
