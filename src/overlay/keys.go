package overlay

import (
	"fmt"
	"strconv"
	"strings"
)

// Default key bindings.
var (
	DefaultCommitKeys = []string{"enter"}
	DefaultCancelKeys = []string{"escape", "backspace", "delete"}
)

// KeyMap resolves key names to Windows virtual-key codes. The terminal
// presenter reuses the same codes so both presenters share one mapping.
type KeyMap struct {
	commit map[uint16]bool
	cancel map[uint16]bool
}

// NewKeyMap builds a key map from key names such as "enter", "esc" or "f5".
// A key may not be bound to both actions.
func NewKeyMap(commit, cancel []string) (KeyMap, error) {
	km := KeyMap{commit: map[uint16]bool{}, cancel: map[uint16]bool{}}
	for _, name := range commit {
		codes := keyNameToVK(name)
		if len(codes) == 0 {
			return KeyMap{}, fmt.Errorf("unknown commit key %q", name)
		}
		for _, c := range codes {
			km.commit[c] = true
		}
	}
	for _, name := range cancel {
		codes := keyNameToVK(name)
		if len(codes) == 0 {
			return KeyMap{}, fmt.Errorf("unknown cancel key %q", name)
		}
		for _, c := range codes {
			if km.commit[c] {
				return KeyMap{}, fmt.Errorf("key %q bound to both commit and cancel", name)
			}
			km.cancel[c] = true
		}
	}
	if len(km.commit) == 0 || len(km.cancel) == 0 {
		return KeyMap{}, fmt.Errorf("commit and cancel keys are both required")
	}
	return km, nil
}

// DefaultKeyMap binds Enter to commit and Escape, Backspace, Delete to cancel.
func DefaultKeyMap() KeyMap {
	km, _ := NewKeyMap(DefaultCommitKeys, DefaultCancelKeys)
	return km
}

func (k KeyMap) IsCommit(vk uint16) bool { return k.commit[vk] }
func (k KeyMap) IsCancel(vk uint16) bool { return k.cancel[vk] }

// VK resolves a single key name, returning the first code (the generic one
// for modifiers).
func VK(name string) (uint16, bool) {
	codes := keyNameToVK(name)
	if len(codes) == 0 {
		return 0, false
	}
	return codes[0], true
}

// ParseKeyList splits a comma separated list of key names.
func ParseKeyList(s string) []string {
	var keys []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			keys = append(keys, p)
		}
	}
	return keys
}

var namedKeys = map[string][]uint16{
	// WM_KEYDOWN reports the generic code for ctrl, alt and shift, so it
	// comes first.
	"ctrl":  {17, 162, 163}, // VK_CONTROL, VK_LCONTROL, VK_RCONTROL
	"alt":   {18, 164, 165}, // VK_MENU, VK_LMENU, VK_RMENU
	"shift": {16, 160, 161}, // VK_SHIFT, VK_LSHIFT, VK_RSHIFT
	"win":   {91, 92},       // VK_LWIN, VK_RWIN

	"space":     {32},
	"enter":     {13},
	"escape":    {27},
	"tab":       {9},
	"backspace": {8},
	"delete":    {46},
	"insert":    {45},
	"home":      {36},
	"end":       {35},
	"pageup":    {33},
	"pagedown":  {34},
	"left":      {37},
	"up":        {38},
	"right":     {39},
	"down":      {40},
}

var keyAliases = map[string]string{
	"return": "enter",
	"esc":    "escape",
	"del":    "delete",
	"ins":    "insert",
	"pgup":   "pageup",
	"pgdn":   "pagedown",
	"pgdown": "pagedown",
	"cmd":    "win",
	"super":  "win",
}

// keyNameToVK maps a key name to its virtual-key codes.
func keyNameToVK(name string) []uint16 {
	name = strings.ToLower(strings.TrimSpace(name))
	if alias, ok := keyAliases[name]; ok {
		name = alias
	}
	if codes, ok := namedKeys[name]; ok {
		return codes
	}

	if len(name) == 1 {
		c := name[0]
		switch {
		case c >= 'a' && c <= 'z':
			return []uint16{uint16(c-'a') + 0x41}
		case c >= '0' && c <= '9':
			return []uint16{uint16(c-'0') + 0x30}
		}
	}

	// F1-F24
	if len(name) >= 2 && name[0] == 'f' {
		if n, err := strconv.Atoi(name[1:]); err == nil && n >= 1 && n <= 24 && name[1] >= '1' && name[1] <= '9' {
			return []uint16{uint16(111 + n)}
		}
	}
	return nil
}
