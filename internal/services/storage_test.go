package services

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKey(t *testing.T) {
	pattern := regexp.MustCompile(`^applications/12/[0-9a-f-]{36}-(.+)$`)

	cases := map[string]string{
		"passport.pdf":              "passport.pdf",
		"../../etc/passwd":          "passwd",
		`C:\Users\me\CV final.docx`: "CV_final.docx",
		"":                          "file",
	}

	for in, want := range cases {
		key := ObjectKey(12, in)
		m := pattern.FindStringSubmatch(key)
		if assert.NotNil(t, m, key) {
			assert.Equal(t, want, m[1], in)
		}
	}

	assert.NotEqual(t, ObjectKey(1, "a.pdf"), ObjectKey(1, "a.pdf"))
}
