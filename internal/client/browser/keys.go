package browser

import (
	"strings"

	"github.com/chromedp/cdproto/input"

	"scape-bot/internal/dispatch"
)

const wheelDelta = 120

type keyDef struct {
	key  string
	code string
	vk   int64
	text string
}

var namedKeys = map[string]keyDef{
	dispatch.KeySpace:  {key: " ", code: "Space", vk: 32, text: " "},
	dispatch.KeyShift:  {key: "Shift", code: "ShiftLeft", vk: 16},
	dispatch.KeyEscape: {key: "Escape", code: "Escape", vk: 27},
	dispatch.KeyEnter:  {key: "Enter", code: "Enter", vk: 13, text: "\r"},
	dispatch.KeyUp:     {key: "ArrowUp", code: "ArrowUp", vk: 38},
	dispatch.KeyDown:   {key: "ArrowDown", code: "ArrowDown", vk: 40},
	dispatch.KeyLeft:   {key: "ArrowLeft", code: "ArrowLeft", vk: 37},
	dispatch.KeyRight:  {key: "ArrowRight", code: "ArrowRight", vk: 39},
	"ctrl":             {key: "Control", code: "ControlLeft", vk: 17},
	"tab":              {key: "Tab", code: "Tab", vk: 9},
}

// lookupKey maps a key name onto its DOM key, code and virtual key code.
// Single letters and digits map directly; F1-F12 are supported.
func lookupKey(name string) keyDef {
	if k, ok := namedKeys[strings.ToLower(name)]; ok {
		return k
	}
	if len(name) == 1 {
		ch := name[0]
		switch {
		case ch >= 'a' && ch <= 'z':
			return keyDef{key: name, code: "Key" + strings.ToUpper(name), vk: int64(ch - 'a' + 'A'), text: name}
		case ch >= 'A' && ch <= 'Z':
			return keyDef{key: name, code: "Key" + name, vk: int64(ch), text: name}
		case ch >= '0' && ch <= '9':
			return keyDef{key: name, code: "Digit" + name, vk: int64(ch), text: name}
		}
	}
	upper := strings.ToUpper(name)
	if strings.HasPrefix(upper, "F") && len(upper) <= 3 {
		var n int64
		for _, d := range upper[1:] {
			if d < '0' || d > '9' {
				n = 0
				break
			}
			n = n*10 + int64(d-'0')
		}
		if n >= 1 && n <= 12 {
			return keyDef{key: upper, code: upper, vk: 111 + n}
		}
	}
	return keyDef{key: name, code: name}
}

func mouseButton(b dispatch.Button) input.MouseButton {
	if b == dispatch.Right {
		return input.Right
	}
	return input.Left
}
