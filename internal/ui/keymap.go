package ui

import (
	"github.com/hajimehoshi/ebiten/v2"

	"to8emu/internal/machine"
)

// keymap translates host keys to TO8 matrix scancodes. Letters use the
// machine's alphabetic codes (the ones the capslock latch recognizes);
// modifiers map onto the dedicated contacts.
var keymap = map[ebiten.Key]byte{
	ebiten.KeyA: 0x02,
	ebiten.KeyB: 0x03,
	ebiten.KeyC: 0x07,
	ebiten.KeyD: 0x0A,
	ebiten.KeyE: 0x0B,
	ebiten.KeyF: 0x0F,
	ebiten.KeyG: 0x12,
	ebiten.KeyH: 0x13,
	ebiten.KeyI: 0x17,
	ebiten.KeyJ: 0x1A,
	ebiten.KeyK: 0x1B,
	ebiten.KeyL: 0x1F,
	ebiten.KeyM: 0x22,
	ebiten.KeyN: 0x23,
	ebiten.KeyO: 0x27,
	ebiten.KeyP: 0x2A,
	ebiten.KeyQ: 0x2B,
	ebiten.KeyR: 0x2F,
	ebiten.KeyS: 0x32,
	ebiten.KeyT: 0x33,
	ebiten.KeyU: 0x3A,
	ebiten.KeyV: 0x3B,
	ebiten.KeyW: 0x42,
	ebiten.KeyX: 0x43,
	ebiten.KeyY: 0x4A,
	ebiten.KeyZ: 0x4B,

	ebiten.KeyDigit1: 0x04,
	ebiten.KeyDigit2: 0x05,
	ebiten.KeyDigit3: 0x06,
	ebiten.KeyDigit4: 0x08,
	ebiten.KeyDigit5: 0x09,
	ebiten.KeyDigit6: 0x0C,
	ebiten.KeyDigit7: 0x0D,
	ebiten.KeyDigit8: 0x0E,
	ebiten.KeyDigit9: 0x10,
	ebiten.KeyDigit0: 0x11,

	ebiten.KeyEnter:      0x14,
	ebiten.KeySpace:      0x15,
	ebiten.KeyBackspace:  0x16,
	ebiten.KeyTab:        0x18,
	ebiten.KeyEscape:     0x19,
	ebiten.KeyArrowUp:    0x1C,
	ebiten.KeyArrowDown:  0x1D,
	ebiten.KeyArrowLeft:  0x1E,
	ebiten.KeyArrowRight: 0x21,
	ebiten.KeyComma:      0x24,
	ebiten.KeyPeriod:     0x25,
	ebiten.KeyMinus:      0x26,
	ebiten.KeySlash:      0x28,

	ebiten.KeyCapsLock:     machine.ScancodeCapsLock,
	ebiten.KeyShiftLeft:    machine.ScancodeShiftLeft,
	ebiten.KeyShiftRight:   machine.ScancodeShiftRight,
	ebiten.KeyControlLeft:  machine.ScancodeCtrl,
	ebiten.KeyControlRight: machine.ScancodeCtrl,
}

// joymap drives stick 1 from the numeric pad.
var joymap = map[ebiten.Key]int{
	ebiten.KeyNumpad8:     machine.Joy1Up,
	ebiten.KeyNumpad2:     machine.Joy1Down,
	ebiten.KeyNumpad4:     machine.Joy1Left,
	ebiten.KeyNumpad6:     machine.Joy1Right,
	ebiten.KeyNumpad0:     machine.Joy1Fire,
	ebiten.KeyNumpadEnter: machine.Joy2Fire,
}
