// Package inject renders the snippet that makes a page load the LiveReload
// client from the notification server.
package inject

import (
	"encoding/json"
	"strconv"
	"strings"
)

// pageHostname is the expression the browser evaluates when no hostname is
// configured.
const pageHostname = "location.hostname"

// Options describes where the client script is served from.
type Options struct {
	// InstanceID scopes the script element so that two plugin instances
	// on one page each load their own client exactly once.
	InstanceID string

	// Protocol is "http" or "https". Empty means the page's own protocol.
	Protocol string

	// Hostname of the notification server. Empty means the page's host.
	Hostname string

	// Port of the notification server.
	Port int
}

// ElementID returns the DOM id of the injected script element.
func ElementID(instanceID string) string {
	return "livereload-script-" + instanceID
}

// Script returns a self-contained JavaScript snippet that appends a
// <script> element pointing at the server's /livereload.js, once per
// instance.
func Script(opts Options) string {
	protocol := ""
	if opts.Protocol != "" {
		protocol = strings.TrimSuffix(opts.Protocol, ":") + ":"
	}

	tail := ":" + strconv.Itoa(opts.Port) + "/livereload.js"

	var src string
	if opts.Hostname == "" {
		src = jsString(protocol+"//") + " + " + pageHostname + " + " + jsString(tail)
	} else {
		src = jsString(protocol + "//" + opts.Hostname + tail)
	}

	lines := []string{
		"// livereload",
		"(function() {",
		`  if (typeof window === "undefined") { return };`,
		"  var id = " + jsString(ElementID(opts.InstanceID)) + ";",
		"  if (document.getElementById(id)) { return; }",
		`  var el = document.createElement("script");`,
		"  el.id = id;",
		"  el.async = true;",
		"  el.src = " + src + ";",
		`  document.getElementsByTagName("head")[0].appendChild(el);`,
		"}());",
		"",
	}
	return strings.Join(lines, "\n")
}

// jsString returns s as a JavaScript string literal. Quotes, backslashes,
// control characters and "<" are escaped, so the result is also safe
// inside an inline <script> element.
func jsString(s string) string {
	b, _ := json.Marshal(s) // nolint:errchkjson
	return string(b)
}
