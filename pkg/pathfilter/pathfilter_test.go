package pathfilter

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		fallback Kind
		wantKind Kind
		match    string
		noMatch  string
	}{
		{"fallback regexp", `\.css$`, KindRegexp, KindRegexp, "c.css", "c.css.map"},
		{"fallback glob", "*.map", KindGlob, KindGlob, "a.js.map", "maps/a.js.map"},
		{"re prefix", "re:^static/", KindGlob, KindRegexp, "static/a.js", "app/static/a.js"},
		{"regexp prefix", "regexp:json", KindGlob, KindRegexp, "d.json", "d.js"},
		{"glob prefix", "glob:**/*.css", KindRegexp, KindGlob, "a/b/c.css", "c.js"},
		{"slash delimited", "/.map/", KindGlob, KindRegexp, "c.map", "c.js"},
		{"slash delimited case insensitive", "/\\.CSS$/i", KindGlob, KindRegexp, "c.css", "c.js"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(tt.input, tt.fallback)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, p.Kind())
			assert.True(t, p.Match(tt.match), "expected %q to match %s", tt.match, p)
			assert.False(t, p.Match(tt.noMatch), "expected %q not to match %s", tt.noMatch, p)
		})
	}
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("re:(", KindRegexp)
	assert.True(t, errors.Is(err, ErrInvalidPattern))

	_, err = Parse("glob:[", KindRegexp)
	assert.True(t, errors.Is(err, ErrInvalidPattern))

	_, err = Parse("", KindGlob)
	assert.True(t, errors.Is(err, ErrEmptyPattern))
}

func TestPatternStringRoundTrip(t *testing.T) {
	for _, p := range []Pattern{MustRegexp(`\.css$`), MustGlob("**/*.map")} {
		back, err := Parse(p.String(), KindRegexp)
		require.NoError(t, err)
		assert.Equal(t, p.Kind(), back.Kind())
		assert.Equal(t, p.String(), back.String())
	}
}

func TestZeroPatternMatchesNothing(t *testing.T) {
	var p Pattern
	assert.False(t, p.Match("a.js"))
	assert.False(t, p.Match(""))
}

func TestIsRelevantNeverForUnemitted(t *testing.T) {
	specs := map[string]IgnoreSpec{
		"none":   None(),
		"single": Single(MustRegexp(`\.css$`)),
		"list":   List(MustGlob("*.map"), MustGlob("*.json")),
		"empty":  List(),
	}

	for name, spec := range specs {
		t.Run(name, func(t *testing.T) {
			for _, path := range []string{"a.js", "c.css", "c.map", "d.json"} {
				assert.False(t, IsRelevant(path, false, spec), path)
			}
		})
	}
}

func TestIsRelevant(t *testing.T) {
	tests := []struct {
		name string
		spec IgnoreSpec
		path string
		want bool
	}{
		{"no spec keeps js", None(), "a.js", true},
		{"no spec keeps css", None(), "c.css", true},
		{"single regexp excludes match", Single(MustRegexp(`\.css$`)), "c.css", false},
		{"single regexp keeps others", Single(MustRegexp(`\.css$`)), "a.js", true},
		{"single glob excludes match", Single(MustGlob("*.css")), "c.css", false},
		{"list excludes first", List(MustGlob("*.map"), MustGlob("*.json")), "c.map", false},
		{"list excludes second", List(MustGlob("*.map"), MustGlob("*.json")), "d.json", false},
		{"list keeps others", List(MustGlob("*.map"), MustGlob("*.json")), "a.js", true},
		{"mixed list", List(MustRegexp(`.map`), MustGlob("*.json")), "a.js.map", false},
		{"empty list keeps all", List(), "a.js", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRelevant(tt.path, true, tt.spec))
		})
	}
}

func TestParseIgnore(t *testing.T) {
	spec, err := ParseIgnore(nil)
	require.NoError(t, err)
	assert.True(t, spec.IsZero())

	spec, err = ParseIgnore([]string{`\.css$`})
	require.NoError(t, err)
	require.Len(t, spec.Patterns(), 1)
	assert.Equal(t, KindRegexp, spec.Patterns()[0].Kind())

	spec, err = ParseIgnore([]string{"*.map", "re:json"})
	require.NoError(t, err)
	require.Len(t, spec.Patterns(), 2)
	assert.Equal(t, KindGlob, spec.Patterns()[0].Kind())
	assert.Equal(t, KindRegexp, spec.Patterns()[1].Kind())

	_, err = ParseIgnore([]string{"a", "glob:["})
	assert.Error(t, err)
}

func TestIgnoreSpecYAML(t *testing.T) {
	type wrapper struct {
		Ignore IgnoreSpec `yaml:"ignore"`
	}

	t.Run("scalar is a single regexp", func(t *testing.T) {
		var w wrapper
		require.NoError(t, yaml.Unmarshal([]byte(`ignore: '\.css$'`), &w))
		require.Len(t, w.Ignore.Patterns(), 1)
		assert.Equal(t, KindRegexp, w.Ignore.Patterns()[0].Kind())
		assert.True(t, w.Ignore.Excludes("c.css"))
		assert.False(t, w.Ignore.Excludes("a.js"))
	})

	t.Run("sequence is a glob list", func(t *testing.T) {
		var w wrapper
		require.NoError(t, yaml.Unmarshal([]byte("ignore:\n  - '*.map'\n  - '*.json'\n"), &w))
		assert.Len(t, w.Ignore.Patterns(), 2)
		assert.True(t, w.Ignore.Excludes("c.map"))
		assert.True(t, w.Ignore.Excludes("d.json"))
		assert.False(t, w.Ignore.Excludes("a.js"))
	})

	t.Run("null is absent", func(t *testing.T) {
		var w wrapper
		require.NoError(t, yaml.Unmarshal([]byte("ignore: null\n"), &w))
		assert.True(t, w.Ignore.IsZero())
	})

	t.Run("mapping is rejected", func(t *testing.T) {
		var w wrapper
		err := yaml.Unmarshal([]byte("ignore:\n  a: b\n"), &w)
		assert.True(t, errors.Is(err, ErrInvalidIgnore))
	})

	t.Run("invalid pattern is rejected", func(t *testing.T) {
		var w wrapper
		err := yaml.Unmarshal([]byte("ignore: 're:('\n"), &w)
		assert.True(t, errors.Is(err, ErrInvalidPattern))
	})

	t.Run("marshal round trip", func(t *testing.T) {
		in := wrapper{Ignore: List(MustGlob("*.map"), MustRegexp("json"))}
		data, err := yaml.Marshal(in)
		require.NoError(t, err)

		var out wrapper
		require.NoError(t, yaml.Unmarshal(data, &out))
		assert.Equal(t, in.Ignore.Patterns()[0].String(), out.Ignore.Patterns()[0].String())
		assert.Equal(t, in.Ignore.Patterns()[1].String(), out.Ignore.Patterns()[1].String())
	})
}

func TestIgnoreSpecJSON(t *testing.T) {
	data, err := json.Marshal(Single(MustRegexp(`\.css$`)))
	require.NoError(t, err)
	assert.JSONEq(t, `"re:\\.css$"`, string(data))

	data, err = json.Marshal(None())
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestIgnoreSpecUnmarshalJSON(t *testing.T) {
	var spec IgnoreSpec
	require.NoError(t, json.Unmarshal([]byte(`"\\.css$"`), &spec))
	require.Len(t, spec.Patterns(), 1)
	assert.Equal(t, KindRegexp, spec.Patterns()[0].Kind())
	assert.False(t, IsRelevant("c.css", true, spec))

	require.NoError(t, json.Unmarshal([]byte(`["*.map", "re:json$"]`), &spec))
	require.Len(t, spec.Patterns(), 2)
	assert.Equal(t, KindGlob, spec.Patterns()[0].Kind())
	assert.Equal(t, KindRegexp, spec.Patterns()[1].Kind())

	require.NoError(t, json.Unmarshal([]byte(`null`), &spec))
	assert.True(t, spec.IsZero())

	assert.ErrorIs(t, json.Unmarshal([]byte(`[1]`), &spec), ErrInvalidIgnore)
	assert.ErrorIs(t, json.Unmarshal([]byte(`{}`), &spec), ErrInvalidIgnore)
}
