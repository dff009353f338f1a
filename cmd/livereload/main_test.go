package main

import (
	"flag"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/0xmhha/livereload/pkg/config"
	"github.com/0xmhha/livereload/pkg/fingerprint"
	"github.com/0xmhha/livereload/pkg/inject"
	"github.com/0xmhha/livereload/pkg/logger"
	"github.com/0xmhha/livereload/pkg/pathfilter"
	"github.com/0xmhha/livereload/pkg/watcher"
)

// TestParseWatchFlags tests watch command flag parsing.
func TestParseWatchFlags(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantCmd   watchCommand
		wantError bool
	}{
		{
			name: "default flags",
			args: []string{},
			wantCmd: watchCommand{
				port:       -1,
				delay:      -1,
				configPath: "/test/config.yaml",
			},
		},
		{
			name: "dir and port",
			args: []string{"-dir", "build", "-port", "35730"},
			wantCmd: watchCommand{
				dir:        "build",
				port:       35730,
				delay:      -1,
				configPath: "/test/config.yaml",
			},
		},
		{
			name: "explicit port zero",
			args: []string{"-port", "0"},
			wantCmd: watchCommand{
				port:       0,
				delay:      -1,
				configPath: "/test/config.yaml",
			},
		},
		{
			name: "repeated targets",
			args: []string{"-target", "client", "-target", "server", "-delay", "200"},
			wantCmd: watchCommand{
				port:       -1,
				delay:      200,
				targets:    []string{"client", "server"},
				configPath: "/test/config.yaml",
			},
		},
		{
			name: "failure marker",
			args: []string{"-marker", ".build-failed"},
			wantCmd: watchCommand{
				port:       -1,
				delay:      -1,
				marker:     ".build-failed",
				configPath: "/test/config.yaml",
			},
		},
		{
			name: "repeated ignore",
			args: []string{"-ignore", "*.map", "-ignore", "re:json$"},
			wantCmd: watchCommand{
				port:       -1,
				delay:      -1,
				ignore:     []string{"*.map", "re:json$"},
				configPath: "/test/config.yaml",
			},
		},
		{
			name:      "invalid port",
			args:      []string{"-port", "abc"},
			wantError: true,
		},
		{
			name:      "unknown flag",
			args:      []string{"-refresh", "1s"},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseWatchFlags("/test/config.yaml", tt.args, flag.ContinueOnError)
			if tt.wantError {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got.dir != tt.wantCmd.dir {
				t.Errorf("dir = %q, want %q", got.dir, tt.wantCmd.dir)
			}
			if got.port != tt.wantCmd.port {
				t.Errorf("port = %d, want %d", got.port, tt.wantCmd.port)
			}
			if got.delay != tt.wantCmd.delay {
				t.Errorf("delay = %d, want %d", got.delay, tt.wantCmd.delay)
			}
			if got.marker != tt.wantCmd.marker {
				t.Errorf("marker = %q, want %q", got.marker, tt.wantCmd.marker)
			}
			if got.configPath != tt.wantCmd.configPath {
				t.Errorf("configPath = %q, want %q", got.configPath, tt.wantCmd.configPath)
			}
			if len(got.targets) != len(tt.wantCmd.targets) {
				t.Fatalf("targets = %v, want %v", got.targets, tt.wantCmd.targets)
			}
			for i := range got.targets {
				if got.targets[i] != tt.wantCmd.targets[i] {
					t.Errorf("targets[%d] = %q, want %q", i, got.targets[i], tt.wantCmd.targets[i])
				}
			}
			if !reflect.DeepEqual([]string(got.ignore), []string(tt.wantCmd.ignore)) {
				t.Errorf("ignore = %v, want %v", got.ignore, tt.wantCmd.ignore)
			}
		})
	}
}

// TestParseScriptFlags tests script command flag parsing.
func TestParseScriptFlags(t *testing.T) {
	got, err := parseScriptFlags("", []string{"-port", "4000", "-hostname", "localhost", "-protocol", "https", "-id", "abc"}, flag.ContinueOnError)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := &scriptCommand{
		port:       4000,
		hostname:   "localhost",
		protocol:   "https",
		instanceID: "abc",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseScriptFlags() = %+v, want %+v", got, want)
	}
}

func TestWatchCommandApply(t *testing.T) {
	tests := []struct {
		name    string
		cmd     watchCommand
		wantDir string
		port    int
		delay   int
		targets []string
		marker  string
	}{
		{
			name:    "no flags keep config",
			cmd:     watchCommand{port: -1, delay: -1},
			wantDir: "dist",
			port:    0,
			delay:   0,
		},
		{
			name:    "all flags override",
			cmd:     watchCommand{dir: "out", port: 9000, delay: 50, targets: []string{"a"}, marker: "FAILED"},
			wantDir: "out",
			port:    9000,
			delay:   50,
			targets: []string{"a"},
			marker:  "FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			if err := tt.cmd.apply(cfg); err != nil {
				t.Fatalf("apply() error = %v", err)
			}

			if cfg.Watch.Dir != tt.wantDir {
				t.Errorf("Dir = %q, want %q", cfg.Watch.Dir, tt.wantDir)
			}
			if cfg.Plugin.Port != tt.port {
				t.Errorf("Port = %d, want %d", cfg.Plugin.Port, tt.port)
			}
			if cfg.Plugin.Delay != tt.delay {
				t.Errorf("Delay = %d, want %d", cfg.Plugin.Delay, tt.delay)
			}
			if !reflect.DeepEqual(cfg.Watch.Targets, tt.targets) {
				t.Errorf("Targets = %v, want %v", cfg.Watch.Targets, tt.targets)
			}
			if cfg.Watch.FailureMarker != tt.marker {
				t.Errorf("FailureMarker = %q, want %q", cfg.Watch.FailureMarker, tt.marker)
			}
		})
	}
}

func TestWatchCommandApplyIgnore(t *testing.T) {
	tests := []struct {
		name     string
		ignore   []string
		relevant map[string]bool
	}{
		{
			name:     "single flag is a regexp",
			ignore:   []string{`\.css$`},
			relevant: map[string]bool{"a.js": true, "c.css": false},
		},
		{
			name:     "repeated flags are globs",
			ignore:   []string{"*.map", "*.json"},
			relevant: map[string]bool{"a.js": true, "a.js.map": false, "data.json": false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cmd := watchCommand{port: -1, delay: -1, ignore: tt.ignore}
			if err := cmd.apply(cfg); err != nil {
				t.Fatalf("apply() error = %v", err)
			}

			for path, want := range tt.relevant {
				if got := pathfilter.IsRelevant(path, true, cfg.Plugin.Ignore); got != want {
					t.Errorf("IsRelevant(%q) = %v, want %v", path, got, want)
				}
			}
		})
	}
}

func TestWatchCommandApplyInvalidIgnore(t *testing.T) {
	cmd := watchCommand{port: -1, delay: -1, ignore: []string{"re:("}}
	if err := cmd.apply(config.Default()); err == nil {
		t.Error("expected error for invalid -ignore pattern")
	}
}

func TestWatchIgnore(t *testing.T) {
	cfg := config.Default()
	cfg.Watch.Ignore = nil
	if got := watchIgnore(cfg); !reflect.DeepEqual(got, watcher.DefaultIgnore) {
		t.Errorf("watchIgnore() = %v, want defaults", got)
	}

	cfg.Watch.Ignore = []string{"tmp/**"}
	if got := watchIgnore(cfg); !reflect.DeepEqual(got, []string{"tmp/**"}) {
		t.Errorf("watchIgnore() = %v", got)
	}
}

func TestPluginConfig(t *testing.T) {
	pc := config.PluginConfig{
		InstanceID:    "abc",
		Port:          35729,
		Hostname:      "localhost",
		Protocol:      "http",
		Quiet:         true,
		AppendScript:  true,
		Delay:         250,
		UseSourceHash: true,
	}

	got := pluginConfig(pc)

	if got.Delay != 250*time.Millisecond {
		t.Errorf("Delay = %v, want 250ms", got.Delay)
	}
	if got.InstanceID != "abc" || got.Port != 35729 || got.Hostname != "localhost" || got.Protocol != "http" {
		t.Errorf("pluginConfig() = %+v", got)
	}
	if !got.Quiet || !got.AppendScript || !got.UseSourceHash {
		t.Errorf("flags not carried over: %+v", got)
	}
}

func TestScriptOptions(t *testing.T) {
	tests := []struct {
		name string
		cmd  scriptCommand
		pc   config.PluginConfig
		want inject.Options
	}{
		{
			name: "unassigned port uses default",
			cmd:  scriptCommand{port: -1},
			want: inject.Options{Port: 35729},
		},
		{
			name: "config values",
			cmd:  scriptCommand{port: -1},
			pc:   config.PluginConfig{InstanceID: "x", Port: 4000, Hostname: "dev.local", Protocol: "https"},
			want: inject.Options{InstanceID: "x", Port: 4000, Hostname: "dev.local", Protocol: "https"},
		},
		{
			name: "flags win over config",
			cmd:  scriptCommand{port: 5000, hostname: "localhost", protocol: "http", instanceID: "y"},
			pc:   config.PluginConfig{InstanceID: "x", Port: 4000, Hostname: "dev.local", Protocol: "https"},
			want: inject.Options{InstanceID: "y", Port: 5000, Hostname: "localhost", Protocol: "http"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cmd.options(tt.pc); got != tt.want {
				t.Errorf("options() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestHistoryFuncInMemory(t *testing.T) {
	cfg := config.Default()

	open, closeHistory, err := historyFunc(cfg, logger.Noop())
	if err != nil {
		t.Fatalf("historyFunc() error = %v", err)
	}
	defer closeHistory()

	if open != nil {
		t.Error("historyFunc() without a database should leave the plugin default")
	}
}

func TestHistoryFuncBolt(t *testing.T) {
	cfg := config.Default()
	cfg.Plugin.InstanceID = "site"
	cfg.Storage.DBPath = filepath.Join(t.TempDir(), "history.db")

	open, closeHistory, err := historyFunc(cfg, logger.Noop())
	if err != nil {
		t.Fatalf("historyFunc() error = %v", err)
	}
	defer closeHistory()

	store, err := open("site")
	if err != nil {
		t.Fatalf("open() error = %v", err)
	}

	digest := fingerprint.Sum([]byte("body"))
	if err := store.Set("index.html", digest); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, ok, err := store.Get("index.html")
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v, %v", got, ok, err)
	}
	if got != digest {
		t.Errorf("Get() = %v, want %v", got, digest)
	}
}

func TestStringList(t *testing.T) {
	var s stringList
	_ = s.Set("a")
	_ = s.Set("b")

	if s.String() != "a,b" {
		t.Errorf("String() = %q, want %q", s.String(), "a,b")
	}
}
