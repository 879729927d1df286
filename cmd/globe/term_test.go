//go:build !js

package main

import (
	"testing"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/globe/pkg/scene"
)

func TestTerminalPointer(t *testing.T) {
	tests := []struct {
		name string
		ev   uv.Event
		want scene.Event
		ok   bool
	}{
		{"click", uv.MouseClickEvent{X: 3, Y: 4, Button: uv.MouseLeft}, scene.PointerDownEvent{X: 3.5, Y: 9}, true},
		{"right click", uv.MouseClickEvent{X: 3, Y: 4, Button: uv.MouseRight}, nil, false},
		{"release", uv.MouseReleaseEvent{X: 0, Y: 0}, scene.PointerUpEvent{X: 0.5, Y: 1}, true},
		{"motion", uv.MouseMotionEvent{X: 10, Y: 2}, scene.PointerMoveEvent{X: 10.5, Y: 5}, true},
		{"wheel up", uv.MouseWheelEvent{Button: uv.MouseWheelUp}, scene.WheelEvent{Delta: 1}, true},
		{"wheel down", uv.MouseWheelEvent{Button: uv.MouseWheelDown}, scene.WheelEvent{Delta: -1}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := terminalPointer(tc.ev)
			if ok != tc.ok || got != tc.want {
				t.Errorf("terminalPointer = %v, %v; want %v, %v", got, ok, tc.want, tc.ok)
			}
		})
	}
}
