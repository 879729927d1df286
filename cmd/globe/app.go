package main

import (
	"context"
	"fmt"
	"image"
	"time"

	"fortio.org/log"

	"github.com/taigrr/globe/pkg/assets"
	"github.com/taigrr/globe/pkg/config"
	"github.com/taigrr/globe/pkg/models"
	"github.com/taigrr/globe/pkg/render"
	"github.com/taigrr/globe/pkg/scene"
)

// newSession builds the scene for a width x height framebuffer and starts
// loading the texture. The returned channel closes once the texture has
// been applied or abandoned.
func newSession(ctx context.Context, c config.Config, width, height int, ratio float64) (*scene.Session, <-chan struct{}, error) {
	globe, embedded, err := loadGlobe(c.Model)
	if err != nil {
		return nil, nil, err
	}

	opts := scene.DefaultOptions()
	opts.Width, opts.Height = width, height
	opts.PixelRatio = ratio
	opts.Globe = globe
	opts.Interaction = c.InteractionConfig()
	opts.RotationSpeed = c.RotationSpeed
	opts.Orbit = c.Orbit
	opts.FPS = c.FPS
	opts.Overlay = c.Overlay
	opts.OverlayLabel = c.OverlayLabel
	opts.Background = c.BackgroundColor()
	s := scene.NewSession(opts)

	log.Infof("Globe: %d vertices, %d triangles, policy %v, cooldown %d frames",
		globe.Mesh().VertexCount(), globe.Mesh().TriangleCount(), c.Policy, c.CooldownFrames)

	loader := assets.NewLoader()
	loader.MaxSize = c.MaxTextureSize

	var ready <-chan struct{}
	switch {
	case c.Texture != "":
		ready = globe.Attach(ctx, loader.Load(ctx, c.Texture))
		if c.Watch {
			watchTexture(ctx, loader, globe, c.Texture)
		}
	case embedded != nil:
		tex := render.TextureFromImage(assets.Fit(embedded, loader.MaxSize))
		ready = globe.Attach(ctx, assets.Resolved(tex, nil))
	default:
		ready = globe.Attach(ctx, assets.Resolved(nil, fmt.Errorf("no texture configured")))
	}
	return s, ready, nil
}

// loadGlobe returns the generated sphere, or the glTF model at path scaled
// to the globe radius together with its embedded base color image.
func loadGlobe(path string) (*scene.Globe, image.Image, error) {
	if path == "" {
		return scene.NewDefaultGlobe(), nil, nil
	}
	start := time.Now()
	mesh, img, err := models.NewGLTFLoader().Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load model: %w", err)
	}
	log.Infof("Loaded model %s in %v", path, time.Since(start).Round(time.Millisecond))
	return scene.NewGlobe(mesh, false), img, nil
}

func watchTexture(ctx context.Context, loader *assets.Loader, globe *scene.Globe, path string) {
	err := assets.Watch(ctx, path, func(changed string) {
		log.Infof("Texture %s changed, reloading", changed)
		globe.Attach(ctx, loader.Load(ctx, changed))
	})
	if err != nil {
		log.Warnf("Not watching texture: %v", err)
	}
}
