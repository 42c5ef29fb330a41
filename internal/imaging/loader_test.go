package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// solidPNG encodes a width x height image filled with c.
func solidPNG(t *testing.T, width, height int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return buf.Bytes()
}

// writeTestImage writes a solid PNG into the test's temp dir and returns its
// path.
func writeTestImage(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logo.png")
	if err := os.WriteFile(path, solidPNG(t, width, height, c), 0o644); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}
	return path
}

func dataURL(data []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
}

func TestImageCache_LoadPath(t *testing.T) {
	cache := NewImageCache()
	path := writeTestImage(t, 40, 20, color.NRGBA{255, 0, 0, 255})

	img1, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if b := img1.Bounds(); b.Dx() != 40 || b.Dy() != 20 {
		t.Errorf("unexpected dimensions: got %dx%d, want 40x20", b.Dx(), b.Dy())
	}

	img2, err := cache.Load(path)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if img1 != img2 {
		t.Error("second Load did not return cached image")
	}
	if cache.Len() != 1 {
		t.Errorf("Len: got %d, want 1", cache.Len())
	}
}

func TestImageCache_LoadDataURL(t *testing.T) {
	cache := NewImageCache()
	src := dataURL(solidPNG(t, 8, 8, color.NRGBA{0, 0, 255, 255}))

	img, err := cache.Load(src)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	c, err := SampleColor(img, 4, 4)
	if err != nil {
		t.Fatalf("SampleColor failed: %v", err)
	}
	if c.Hex != "#0000FF" {
		t.Errorf("Hex: got %s, want #0000FF", c.Hex)
	}
}

func TestImageCache_LoadErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing file", "/nonexistent/path/to/image.png"},
		{"no comma", "data:image/png;base64"},
		{"bad base64", "data:image/png;base64,!!!"},
		{"not an image", "data:text/plain,hello"},
	}

	cache := NewImageCache()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := cache.Load(tt.src); err == nil {
				t.Errorf("Load(%q) should fail", tt.src)
			}
		})
	}
	if cache.Len() != 0 {
		t.Errorf("failed loads were cached: Len = %d", cache.Len())
	}
}

func TestImageCache_EvictAndClear(t *testing.T) {
	cache := NewImageCache()
	a := dataURL(solidPNG(t, 2, 2, color.White))
	b := dataURL(solidPNG(t, 3, 3, color.Black))

	for _, src := range []string{a, b} {
		if _, err := cache.Load(src); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
	}

	cache.Evict(a)
	cache.Evict("never-loaded")
	if cache.Len() != 1 {
		t.Errorf("after Evict: Len = %d, want 1", cache.Len())
	}

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("after Clear: Len = %d, want 0", cache.Len())
	}
}

func TestImageCache_Concurrent(t *testing.T) {
	cache := NewImageCache()
	src := dataURL(solidPNG(t, 16, 16, color.NRGBA{10, 20, 30, 255}))

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(src); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Load failed: %v", err)
	}
	if cache.Len() != 1 {
		t.Errorf("Len: got %d, want 1", cache.Len())
	}
}

func TestDecodeDataURL(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantData  string
		wantMedia string
		wantErr   bool
	}{
		{"base64", "data:text/plain;base64,aGk=", "hi", "text/plain", false},
		{"percent", "data:text/plain,a%20b", "a b", "text/plain", false},
		{"no media type", "data:,x", "x", "", false},
		{"not data", "http://example.com", "", "", true},
		{"missing comma", "data:text/plain", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, media, err := DecodeDataURL(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("DecodeDataURL(%q) should fail", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeDataURL failed: %v", err)
			}
			if string(data) != tt.wantData || media != tt.wantMedia {
				t.Errorf("got (%q, %q), want (%q, %q)", data, media, tt.wantData, tt.wantMedia)
			}
		})
	}
}

func TestInspect(t *testing.T) {
	data := solidPNG(t, 30, 10, color.NRGBA{0, 255, 0, 128})

	info, img, err := Inspect(data)
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if info.Width != 30 || info.Height != 10 {
		t.Errorf("dimensions: got %dx%d, want 30x10", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("Format: got %q, want png", info.Format)
	}
	if !info.HasAlpha {
		t.Error("HasAlpha should be true for an NRGBA PNG")
	}
	if info.SizeBytes != len(data) {
		t.Errorf("SizeBytes: got %d, want %d", info.SizeBytes, len(data))
	}
	if img == nil {
		t.Fatal("Inspect returned nil image")
	}

	if _, _, err := Inspect([]byte("not an image")); err == nil {
		t.Error("Inspect should fail for garbage input")
	}
}
