package metrics

import (
	"bytes"

	"github.com/yuin/goldmark"
)

// ReferenceHTML renders ReferenceMarkdown for the in-app help page.
func ReferenceHTML() (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(ReferenceMarkdown()), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
