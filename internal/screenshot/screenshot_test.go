package screenshot

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/vizedit/vizedit/internal/store"
)

// pngDataURL renders a solid-color PNG of the given size as a data URL.
func pngDataURL(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestThumbnailFixedCanvas(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"wide source", 800, 200},
		{"tall source", 200, 800},
		{"square source", 500, 500},
		{"smaller than box", 60, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Thumbnail(pngDataURL(t, tt.w, tt.h), ThumbWidth, ThumbHeight)
			if err != nil {
				t.Fatalf("Thumbnail failed: %v", err)
			}
			if !strings.HasPrefix(out, "data:image/png;base64,") {
				t.Fatalf("output is not a PNG data URL: %.40s", out)
			}
			raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(out, "data:image/png;base64,"))
			if err != nil {
				t.Fatalf("decode output: %v", err)
			}
			img, err := png.Decode(bytes.NewReader(raw))
			if err != nil {
				t.Fatalf("decode output PNG: %v", err)
			}
			if img.Bounds().Dx() != ThumbWidth || img.Bounds().Dy() != ThumbHeight {
				t.Errorf("canvas = %dx%d; want %dx%d",
					img.Bounds().Dx(), img.Bounds().Dy(), ThumbWidth, ThumbHeight)
			}
		})
	}
}

func TestThumbnailBadInput(t *testing.T) {
	tests := []string{
		"",
		"not a data url",
		"data:text/plain;base64,aGVsbG8=",
		"data:image/png;base64,%%%",
		"data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("not a png")),
	}

	for _, input := range tests {
		if _, err := Thumbnail(input, ThumbWidth, ThumbHeight); !errors.Is(err, ErrBadDataURL) {
			t.Errorf("Thumbnail(%.30q) err = %v; want ErrBadDataURL", input, err)
		}
	}
}

func TestStoreSaveAndGet(t *testing.T) {
	s := NewStore(store.Open(t.TempDir(), "screenshots"))

	id, err := s.Save("data:image/png;base64,xx", "make it red", TypeBefore, "change-1")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	rec, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if rec.Metadata.Type != TypeBefore || rec.Metadata.ChangeID != "change-1" {
		t.Errorf("metadata = %+v", rec.Metadata)
	}
	if rec.Metadata.Timestamp == 0 {
		t.Error("timestamp not set")
	}
}

func TestStoreEvictionByTimestamp(t *testing.T) {
	s := NewStore(store.Open(t.TempDir(), "screenshots"))

	// Write timestamps out of insertion order so eviction must scan them.
	for i := 0; i < MaxRecords+1; i++ {
		ts := int64(1000 + (i*37)%(MaxRecords+1))
		rec := Record{
			ID:      fmt.Sprintf("shot-%d", i),
			DataURL: "data:image/png;base64,xx",
			Metadata: Metadata{
				ID:        fmt.Sprintf("shot-%d", i),
				Timestamp: ts,
				Type:      TypeAfter,
			},
		}
		if err := s.Put(rec); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	recs, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != MaxRecords {
		t.Fatalf("retained %d records; want %d", len(recs), MaxRecords)
	}
	for _, rec := range recs {
		if rec.Metadata.Timestamp == 1000 {
			t.Errorf("earliest-timestamped record %s survived eviction", rec.ID)
		}
	}
}

func TestStoreListNewestFirst(t *testing.T) {
	s := NewStore(store.Open(t.TempDir(), "screenshots"))

	for i := 1; i <= 3; i++ {
		rec := Record{
			ID:       fmt.Sprintf("shot-%d", i),
			DataURL:  "data:image/png;base64,xx",
			Metadata: Metadata{ID: fmt.Sprintf("shot-%d", i), Timestamp: int64(i * 100), Type: TypeAfter},
		}
		if err := s.Put(rec); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	recs, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if recs[0].ID != "shot-3" || recs[2].ID != "shot-1" {
		t.Errorf("order = [%s %s %s]; want newest first", recs[0].ID, recs[1].ID, recs[2].ID)
	}
}

func TestStoreRemoveMissing(t *testing.T) {
	s := NewStore(store.Open(t.TempDir(), "screenshots"))
	if err := s.Remove("nope"); err != nil {
		t.Errorf("Remove of missing id = %v; want nil", err)
	}
}
