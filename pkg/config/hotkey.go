package config

import (
	"fmt"
	"strings"
)

// Hotkey is a parsed combination like "ctrl+shift+f12": zero or more
// modifiers followed by exactly one key. The engine never registers
// hotkeys itself; the front-end reads these back over IPC.
type Hotkey struct {
	Modifiers []string
	Key       string
}

var validModifiers = map[string]bool{
	"ctrl":  true,
	"alt":   true,
	"shift": true,
	"win":   true,
	"cmd":   true,
}

// ParseHotkey validates a combination string. Invalid syntax is an
// unrecoverable configuration error: callers should exit.
func ParseHotkey(combination string) (Hotkey, error) {
	if strings.TrimSpace(combination) == "" {
		return Hotkey{}, fmt.Errorf("hotkey combination is empty")
	}

	parts := strings.Split(strings.ToLower(combination), "+")
	var hk Hotkey
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return Hotkey{}, fmt.Errorf("invalid hotkey %q: empty token", combination)
		}
		if i < len(parts)-1 {
			if !validModifiers[part] {
				return Hotkey{}, fmt.Errorf("invalid hotkey %q: unknown modifier %q", combination, part)
			}
			hk.Modifiers = append(hk.Modifiers, part)
			continue
		}
		if validModifiers[part] {
			return Hotkey{}, fmt.Errorf("invalid hotkey %q: missing key after modifiers", combination)
		}
		hk.Key = part
	}
	return hk, nil
}

// String reassembles the canonical lowercase form.
func (h Hotkey) String() string {
	if len(h.Modifiers) == 0 {
		return h.Key
	}
	return strings.Join(h.Modifiers, "+") + "+" + h.Key
}
