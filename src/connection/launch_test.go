package connection

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type recordingLauncher struct {
	calls []string
	edit  bool
	err   error
}

func (l *recordingLauncher) Start(path string, edit bool) error {
	l.calls = append(l.calls, path)
	l.edit = edit
	return l.err
}

func TestLaunchEndToEnd(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "Default.rdp")
	derived := filepath.Join(dir, "data", "custom.rdp")
	if err := os.WriteFile(base, []byte("username:s:alice"), 0o644); err != nil {
		t.Fatal(err)
	}

	l := &recordingLauncher{}
	err := Launch(Request{BasePath: base, DerivedPath: derived, Selected: []uint32{1}, Edit: true}, l)
	if err != nil {
		t.Fatalf("Launch failed: %v", err)
	}

	if len(l.calls) != 1 || l.calls[0] != derived || !l.edit {
		t.Errorf("Expected one edit launch of %s, got %v (edit=%v)", derived, l.calls, l.edit)
	}

	data, err := os.ReadFile(derived)
	if err != nil {
		t.Fatalf("Derived file missing: %v", err)
	}
	out := string(data)
	for _, line := range []string{"username:s:alice", "use multimon:i:1", "selectedmonitors:s:1"} {
		if n := strings.Count(out, line); n != 1 {
			t.Errorf("Expected %q exactly once, found %d in %q", line, n, out)
		}
	}
	if !strings.HasPrefix(out, "username:s:alice\n") {
		t.Errorf("Expected username line first, got %q", out)
	}

	baseData, _ := os.ReadFile(base)
	if string(baseData) != "username:s:alice" {
		t.Errorf("Base file was modified: %q", baseData)
	}
}

func TestLaunchKeepsUTF16(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.rdp")
	derived := filepath.Join(dir, "custom.rdp")
	raw, _ := EncodeProfile("username:s:alice\r\n", EncodingUTF16LE)
	if err := os.WriteFile(base, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Launch(Request{BasePath: base, DerivedPath: derived, Selected: []uint32{0, 2}}, &recordingLauncher{}); err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	data, _ := os.ReadFile(derived)
	text, enc, err := DecodeProfile(data)
	if err != nil || enc != EncodingUTF16LE {
		t.Fatalf("Expected UTF-16LE output, got %s (%v)", enc, err)
	}
	if text != "username:s:alice\r\nuse multimon:i:1\r\nselectedmonitors:s:0,2\r\n" {
		t.Errorf("Unexpected derived text %q", text)
	}
}

func TestLaunchErrors(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.rdp")
	if err := os.WriteFile(base, []byte("username:s:alice\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{"missing base", Request{BasePath: filepath.Join(dir, "nope.rdp"), DerivedPath: filepath.Join(dir, "out.rdp")}, ErrConfigRead},
		{"derived is base", Request{BasePath: base, DerivedPath: base}, ErrConfigWrite},
		{"derived is base via relative path", Request{BasePath: base, DerivedPath: filepath.Join(dir, ".", "base.rdp")}, ErrConfigWrite},
		{"unwritable derived", Request{BasePath: base, DerivedPath: filepath.Join(blocker, "out.rdp")}, ErrConfigWrite},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &recordingLauncher{}
			err := Launch(tt.req, l)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
			if len(l.calls) != 0 {
				t.Errorf("Expected no launch, got %v", l.calls)
			}
		})
	}

	data, _ := os.ReadFile(base)
	if string(data) != "username:s:alice\n" {
		t.Errorf("Base file was modified: %q", data)
	}
}

func TestLaunchPropagatesLauncherError(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.rdp")
	os.WriteFile(base, []byte(""), 0o644)

	l := &recordingLauncher{err: ErrClientStart}
	err := Launch(Request{BasePath: base, DerivedPath: filepath.Join(dir, "custom.rdp")}, l)
	if !errors.Is(err, ErrClientStart) {
		t.Errorf("Expected ErrClientStart, got %v", err)
	}
}

func TestClientLauncherMissingExecutable(t *testing.T) {
	l := ClientLauncher{Executable: filepath.Join(t.TempDir(), "no-such-client")}
	if err := l.Start("custom.rdp", false); !errors.Is(err, ErrClientStart) {
		t.Errorf("Expected ErrClientStart, got %v", err)
	}
}
