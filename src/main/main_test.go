package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"instant-desktop/src/config"
	"instant-desktop/src/connection"
	"instant-desktop/src/monitor"
	"instant-desktop/src/picker"
)

func TestNewRootCmdParsesFlags(t *testing.T) {
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{"--tui", "--fullscreen=false", "--base", "C:/base.rdp", "-v"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if !opts.useTUI || opts.fullscreen || !opts.verbose {
		t.Fatalf("Unexpected options %+v", opts)
	}
	if opts.basePath != "C:/base.rdp" {
		t.Fatalf("Expected basePath=C:/base.rdp, got %q", opts.basePath)
	}
	if !opts.edit {
		t.Fatal("Expected edit to default to true")
	}
}

func TestSubcommandsRegistered(t *testing.T) {
	cmd := newRootCmd(&mainOptions{})
	for _, name := range []string{"list", "patch"} {
		if sub, _, err := cmd.Find([]string{name}); err != nil || sub.Name() != name {
			t.Errorf("Expected %s subcommand, got %v (%v)", name, sub, err)
		}
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"BASE_CONFIG_PATH", "FULLSCREEN", "EDIT_CONNECTION", "COMMIT_KEYS", "CANCEL_KEYS", "PRIMARY_WINDOW", "ENABLE_FILE_LOGGING", config.EnvPathEnvVar} {
		t.Setenv(k, "")
	}
}

func TestPatchCommand(t *testing.T) {
	clearConfigEnv(t)
	dir := t.TempDir()
	base := filepath.Join(dir, "Default.rdp")
	if err := os.WriteFile(base, []byte("username:s:alice\r\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout bytes.Buffer
	opts := &mainOptions{stdout: &stdout}
	cmd := newRootCmd(opts)
	cmd.SetArgs([]string{"patch", base, "--monitors", "2,0", "--config-dir", dir})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("patch failed: %v", err)
	}

	out := filepath.Join(dir, config.DerivedProfileFile)
	if strings.TrimSpace(stdout.String()) != out {
		t.Errorf("Expected derived path on stdout, got %q", stdout.String())
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("Derived profile missing: %v", err)
	}
	want := "username:s:alice\r\nuse multimon:i:1\r\nselectedmonitors:s:0,2\r\n"
	if string(data) != want {
		t.Errorf("Derived profile = %q, want %q", data, want)
	}
}

func TestPatchCommandErrors(t *testing.T) {
	clearConfigEnv(t)
	dir := t.TempDir()

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"missing base", []string{"patch", filepath.Join(dir, "missing.rdp"), "-m", "0", "--config-dir", dir}, connection.ErrConfigRead},
		{"out equals base", []string{"patch", filepath.Join(dir, "config.yaml"), "-m", "0", "-o", filepath.Join(dir, "config.yaml"), "--config-dir", dir}, connection.ErrConfigWrite},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newRootCmd(&mainOptions{stdout: &bytes.Buffer{}})
			cmd.SetArgs(tt.args)
			if err := cmd.Execute(); !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}

	cmd := newRootCmd(&mainOptions{stdout: &bytes.Buffer{}})
	cmd.SetArgs([]string{"patch", "x.rdp", "-m", "a,b", "--config-dir", dir})
	if err := cmd.Execute(); err == nil {
		t.Error("Expected error for invalid monitor list")
	}
}

func TestWriteListing(t *testing.T) {
	set, err := monitor.NewMonitorSet([]monitor.Monitor{
		{ID: 0, Device: `\\.\DISPLAY1`, Bounds: monitor.Rect{Right: 1920, Bottom: 1080}, Work: monitor.Rect{Right: 1920, Bottom: 1040}},
		{ID: 2, Device: `\\.\DISPLAY3`, Bounds: monitor.Rect{Left: 1920, Right: 3840, Bottom: 1080}, Work: monitor.Rect{Left: 1920, Right: 3840, Bottom: 1080}},
	})
	if err != nil {
		t.Fatal(err)
	}

	var text bytes.Buffer
	if err := writeListing(mainOptions{stdout: &text}, set); err != nil {
		t.Fatalf("writeListing failed: %v", err)
	}
	want := "0: 1920 x 1080; (0, 0, 1919, 1079)\n2: 1920 x 1080; (1920, 0, 3839, 1079)\n"
	if text.String() != want {
		t.Errorf("Listing = %q, want %q", text.String(), want)
	}

	var js bytes.Buffer
	if err := writeListing(mainOptions{stdout: &js, jsonList: true}, set); err != nil {
		t.Fatalf("writeListing json failed: %v", err)
	}
	var decoded []monitorJSON
	if err := json.Unmarshal(js.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(decoded) != 2 || decoded[1].ID != 2 || decoded[0].WorkH != 1040 {
		t.Errorf("Unexpected JSON listing %+v", decoded)
	}
}

func TestFailureMessage(t *testing.T) {
	cfg := &config.Config{BaseConfigPath: "C:/base.rdp", PreferencesPath: "C:/config.yaml", DerivedConfigPath: "C:/custom.rdp"}
	tests := []struct {
		err  error
		want string
	}{
		{picker.ErrNoMonitors, "Could not enumerate displays"},
		{connection.ErrConfigRead, "C:/base.rdp"},
		{connection.ErrConfigWrite, "C:/custom.rdp"},
		{errors.New("boom"), "boom"},
	}
	for _, tt := range tests {
		if got := failureMessage(tt.err, cfg); !strings.Contains(got, tt.want) {
			t.Errorf("failureMessage(%v) = %q, expected it to contain %q", tt.err, got, tt.want)
		}
	}
}
