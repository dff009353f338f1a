// Package server implements a LiveReload notification sink.
//
// Browsers connect to /livereload over a websocket and perform the
// official-7 hello handshake. NotifyClients sends one reload command per
// changed file to every connected browser.
//
// Routes:
//
//	GET  /               status as JSON
//	GET  /livereload     websocket endpoint
//	GET  /livereload.js  browser client
//	GET  /changed        ?files=a.js,b.css triggers a reload
//	POST /changed        {"files": [...]} triggers a reload
package server

import "time"

const (
	protocolOfficial7 = "http://livereload.com/protocols/official-7"
	codeAddrInUse     = "EADDRINUSE"
)

// Config contains server settings.
type Config struct {
	// Host is the interface to bind. Empty means all interfaces.
	Host string

	// ServerName is announced in the hello handshake.
	// Default: "livereload".
	ServerName string

	// SendBuffer is the number of pending messages per client before new
	// messages are dropped.
	// Default: 64.
	SendBuffer int

	// WriteTimeout bounds a single websocket write.
	// Default: 10s.
	WriteTimeout time.Duration
}

// message is a LiveReload protocol command.
type message struct {
	Command    string   `json:"command"`
	Protocols  []string `json:"protocols,omitempty"`
	ServerName string   `json:"serverName,omitempty"`
	Path       string   `json:"path,omitempty"`
	LiveCSS    bool     `json:"liveCSS,omitempty"`
	LiveImg    bool     `json:"liveImg,omitempty"`
	URL        string   `json:"url,omitempty"`
}

// Status is the JSON document served at /.
type Status struct {
	Server  string `json:"server"`
	Port    int    `json:"port"`
	Clients int    `json:"clients"`
}
