// Package render turns chart configurations into encoded images.
//
// A Service is built once from Options and then renders any number of
// charts, concurrently if needed. Construction loads a private copy of the
// canvas backend and chart library through the module loader, loads the
// configured plugin groups into that library, runs the chart callback and
// registers the background fill. Two services never share registered
// plugins, library defaults or fonts.
//
// Each render creates a fresh surface, draws the chart on it with animation
// disabled, encodes it and destroys the chart:
//
//	svc, err := render.New(render.Options{Width: 800, Height: 600, BackgroundColour: "white"})
//	if err != nil {
//		return err
//	}
//	png, err := svc.RenderToBuffer(ctx, cfg, canvas.MimePNG)
//
// AnimatedService renders the same charts with their animation running and
// returns one encoded image per frame of the virtual animation clock.
package render
