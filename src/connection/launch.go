package connection

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
)

var (
	// ErrConfigRead means the base profile could not be read or decoded.
	ErrConfigRead = errors.New("failed to read base connection profile")
	// ErrConfigWrite means the derived profile could not be written.
	ErrConfigWrite = errors.New("failed to write derived connection profile")
	// ErrClientStart means the remote desktop client could not be started.
	ErrClientStart = errors.New("failed to start remote desktop client")
)

// Request describes one launch.
type Request struct {
	BasePath    string
	DerivedPath string
	Selected    []uint32
	// Edit opens the client's connection dialog instead of connecting
	// straight away.
	Edit bool
}

// Launcher starts the remote desktop client on a profile. Implementations
// must not wait for the client to exit.
type Launcher interface {
	Start(path string, edit bool) error
}

// ClientLauncher runs the Windows Remote Desktop client.
type ClientLauncher struct {
	// Executable defaults to "mstsc".
	Executable string
}

func (l ClientLauncher) Start(path string, edit bool) error {
	exe := l.Executable
	if exe == "" {
		exe = "mstsc"
	}
	var args []string
	if edit {
		args = append(args, "/edit")
	}
	args = append(args, path)

	cmd := exec.Command(exe, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrClientStart, exe, err)
	}
	log.Printf("LAUNCH: started %s %v (pid %d)", exe, args, cmd.Process.Pid)
	return cmd.Process.Release()
}

// WriteDerived reads the base profile, patches it for ids and writes the
// result to derivedPath in the base file's encoding. The base file is never
// written.
func WriteDerived(basePath, derivedPath string, ids []uint32) error {
	same, err := samePath(basePath, derivedPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfigWrite, err)
	}
	if same {
		return fmt.Errorf("%w: derived path %s is the base profile", ErrConfigWrite, derivedPath)
	}

	raw, err := os.ReadFile(basePath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfigRead, err)
	}
	text, enc, err := DecodeProfile(raw)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrConfigRead, basePath, err)
	}

	out, err := EncodeProfile(Patch(text, ids), enc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfigWrite, err)
	}
	if err := os.MkdirAll(filepath.Dir(derivedPath), 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigWrite, err)
	}
	if err := os.WriteFile(derivedPath, out, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigWrite, err)
	}
	log.Printf("LAUNCH: wrote %s (%s) with monitors [%s]", derivedPath, enc, FormatMonitorList(ids))
	return nil
}

// Launch writes the derived profile and hands it to l. Nothing is started
// when the profile cannot be read or written.
func Launch(req Request, l Launcher) error {
	if err := WriteDerived(req.BasePath, req.DerivedPath, req.Selected); err != nil {
		return err
	}
	return l.Start(req.DerivedPath, req.Edit)
}

func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	if absA == absB {
		return true, nil
	}
	infoA, errA := os.Stat(absA)
	infoB, errB := os.Stat(absB)
	if errA == nil && errB == nil {
		return os.SameFile(infoA, infoB), nil
	}
	return false, nil
}
