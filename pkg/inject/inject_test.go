package inject

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScript(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantSrc string
	}{
		{
			name:    "defaults to page protocol and host",
			opts:    Options{InstanceID: "abc", Port: 35729},
			wantSrc: `el.src = "//" + location.hostname + ":35729/livereload.js";`,
		},
		{
			name:    "explicit protocol and hostname",
			opts:    Options{InstanceID: "abc", Protocol: "https", Hostname: "dev.local", Port: 4000},
			wantSrc: `el.src = "https://dev.local:4000/livereload.js";`,
		},
		{
			name:    "protocol with trailing colon",
			opts:    Options{InstanceID: "abc", Protocol: "http:", Hostname: "localhost", Port: 1},
			wantSrc: `el.src = "http://localhost:1/livereload.js";`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script := Script(tt.opts)
			assert.Contains(t, script, tt.wantSrc)
			assert.Contains(t, script, `var id = "livereload-script-abc";`)
			assert.True(t, strings.HasSuffix(script, "}());\n"))
		})
	}
}

func TestScriptInstanceScoped(t *testing.T) {
	a := Script(Options{InstanceID: "one", Port: 35729})
	b := Script(Options{InstanceID: "two", Port: 35729})

	assert.NotEqual(t, a, b)
	assert.Contains(t, a, ElementID("one"))
	assert.NotContains(t, a, ElementID("two"))
}

func TestScriptEscapesValues(t *testing.T) {
	script := Script(Options{
		InstanceID: `a"b`,
		Hostname:   `evil"host\`,
		Port:       35729,
	})

	assert.Contains(t, script, `var id = "livereload-script-a\"b";`)
	assert.Contains(t, script, `el.src = "//evil\"host\\:35729/livereload.js";`)

	script = Script(Options{InstanceID: "</script><script>alert(1)", Port: 1})
	assert.NotContains(t, script, "</script>")
	assert.Contains(t, script, `\u003c/script\u003e`)
}
