package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "  hello world  ", "hello world"},
		{"tags stripped", "<b>bold</b> text", "bold text"},
		{"script dropped", "hello <script>x()</script>world", "hello world"},
		{"entity encoded script", "&lt;script&gt;alert(1)&lt;/script&gt;", ""},
		{"entity encoded tag", "&lt;b&gt;bold&lt;/b&gt;", "bold"},
		{"double encoded tag", "&amp;lt;i&amp;gt;x&amp;lt;/i&amp;gt;", "x"},
		{"ampersand kept", "Tom & Jerry", "Tom & Jerry"},
		{"less than kept", "a < b", "a < b"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := sanitize(c.in)
			assert.Equal(t, c.want, got)
			assert.NotContains(t, got, "<script")
		})
	}
}
