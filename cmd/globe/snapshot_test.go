package main

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/taigrr/globe/pkg/config"
)

func TestSnapshot(t *testing.T) {
	dir := t.TempDir()
	texPath := filepath.Join(dir, "map.png")
	tex := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for y := range 2 {
		for x := range 4 {
			tex.Set(x, y, color.RGBA{200, 30, 30, 255})
		}
	}
	f, err := os.Create(texPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, tex); err != nil {
		t.Fatal(err)
	}
	f.Close()

	cfg = config.Defaults()
	cfg.Texture = texPath
	out := filepath.Join(dir, "globe.png")
	snapshotOpts.out = out
	snapshotOpts.width, snapshotOpts.height = 80, 60
	snapshotOpts.ratio = 0
	snapshotOpts.frames = 3
	snapshotOpts.wait = true
	snapshotOpts.timeout = 5e9

	if err := runSnapshot(context.Background()); err != nil {
		t.Fatalf("runSnapshot: %v", err)
	}

	r, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	img, err := png.Decode(r)
	if err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 80 || b.Dy() != 60 {
		t.Fatalf("snapshot size = %v", b.Size())
	}
	if got := color.RGBAModel.Convert(img.At(40, 30)).(color.RGBA); got != (color.RGBA{200, 30, 30, 255}) {
		t.Errorf("center = %v, want texture color", got)
	}
	if got := color.RGBAModel.Convert(img.At(1, 1)).(color.RGBA); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("corner = %v, want background", got)
	}
}
