// Package imaging loads the images charts draw and inspects the images
// charts produce.
//
// The loading side is ImageCache, which decodes file paths and data URLs
// once per source. It backs the canvas package's image loader, so a chart
// that references a logo on every frame decodes it a single time.
//
// The inspection side decodes rendered buffers and reads colors back out of
// them. It is used by the chart_sample_color tool and by the render tests to
// assert on actual pixels rather than byte lengths.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with the origin at the top-left corner:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive and (x2,y2) is exclusive
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The decoding and sampling functions
// are stateless.
package imaging
