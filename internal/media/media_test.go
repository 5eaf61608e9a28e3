package media

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"sync/atomic"
	"testing"
)

func pngBytes(t *testing.T, w, h int, alpha uint8) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 90, A: alpha})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// failingStore fails every Put after the first ok calls.
type failingStore struct {
	*MemoryStore
	ok    int32
	calls atomic.Int32
}

func (f *failingStore) Put(ctx context.Context, key string, body []byte, ct string) error {
	if f.calls.Add(1) > f.ok {
		return errors.New("bucket unavailable")
	}
	return f.MemoryStore.Put(ctx, key, body, ct)
}

func TestSniffImage(t *testing.T) {
	if ct, err := SniffImage(pngBytes(t, 2, 2, 255)); err != nil || ct != "image/png" {
		t.Fatalf("png sniff = %q, %v", ct, err)
	}
	if _, err := SniffImage([]byte("%PDF-1.7 not an image")); !errors.Is(err, ErrUnsupportedImage) {
		t.Fatalf("pdf sniff err = %v", err)
	}
}

func TestOptimizer_OpaqueBecomesJPEGAndIsScaled(t *testing.T) {
	o := Optimizer{MaxDimension: 40, Quality: 80}
	out, ct, err := o.Optimize(pngBytes(t, 120, 60, 255))
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	if ct != "image/jpeg" {
		t.Fatalf("content type = %q; want image/jpeg", ct)
	}
	img, err := jpeg.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 20 {
		t.Fatalf("scaled to %dx%d; want 40x20", b.Dx(), b.Dy())
	}
}

func TestOptimizer_TransparentStaysPNG(t *testing.T) {
	o := Optimizer{MaxDimension: 100, Quality: 80}
	out, ct, err := o.Optimize(pngBytes(t, 10, 10, 128))
	if err != nil || ct != "image/png" {
		t.Fatalf("optimize = %q, %v", ct, err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil || img.Bounds().Dx() != 10 {
		t.Fatalf("output not a 10px png: %v", err)
	}
}

func TestOptimizer_RejectsGarbage(t *testing.T) {
	o := Optimizer{MaxDimension: 100}
	if _, _, err := o.Optimize([]byte("hello world")); !errors.Is(err, ErrUnsupportedImage) {
		t.Fatalf("err = %v; want ErrUnsupportedImage", err)
	}
	// A valid PNG signature with a corrupt body fails decoding.
	bad := append(pngBytes(t, 4, 4, 255)[:20], 0, 1, 2, 3)
	if _, _, err := o.Optimize(bad); !errors.Is(err, ErrUnsupportedImage) {
		t.Fatalf("corrupt png err = %v; want ErrUnsupportedImage", err)
	}
}

func TestUploader_UploadAndDelete(t *testing.T) {
	store := NewMemoryStore("https://cdn.test")
	u := NewUploader(store, Optimizer{MaxDimension: 100, Quality: 80})

	a, err := u.Upload(context.Background(), pngBytes(t, 8, 8, 255), FolderSermons)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasPrefix(a.PublicID, FolderSermons+"/") || a.URL != "https://cdn.test/"+a.PublicID {
		t.Fatalf("unexpected asset: %+v", a)
	}
	if obj, ok := store.Get(a.PublicID); !ok || obj.ContentType != "image/jpeg" {
		t.Fatalf("object not stored: %+v", obj)
	}

	if err := u.Delete(context.Background(), a.PublicID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := u.Delete(context.Background(), a.PublicID); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
	// Quiet deletes never fail.
	u.DeleteQuietly(context.Background(), a.PublicID, "")
}

func TestUploader_UploadManyKeepsOrder(t *testing.T) {
	store := NewMemoryStore("")
	u := NewUploader(store, Optimizer{MaxDimension: 100, Quality: 80})

	files := [][]byte{pngBytes(t, 3, 3, 255), pngBytes(t, 5, 5, 255), pngBytes(t, 7, 7, 255)}
	assets, err := u.UploadMany(context.Background(), files, FolderGallery)
	if err != nil {
		t.Fatalf("upload many: %v", err)
	}
	if len(assets) != 3 || store.Len() != 3 {
		t.Fatalf("assets=%d stored=%d", len(assets), store.Len())
	}
	for i, a := range assets {
		obj, _ := store.Get(a.PublicID)
		img, err := jpeg.Decode(bytes.NewReader(obj.Body))
		if err != nil {
			t.Fatalf("decode %d: %v", i, err)
		}
		if want := 3 + 2*i; img.Bounds().Dx() != want {
			t.Fatalf("asset %d has width %d; want %d", i, img.Bounds().Dx(), want)
		}
	}
}

func TestUploader_UploadManyRollsBackOnFailure(t *testing.T) {
	store := &failingStore{MemoryStore: NewMemoryStore(""), ok: 1}
	u := NewUploader(store, Optimizer{MaxDimension: 100, Quality: 80})

	files := [][]byte{pngBytes(t, 3, 3, 255), pngBytes(t, 4, 4, 255), pngBytes(t, 5, 5, 255)}
	if _, err := u.UploadMany(context.Background(), files, FolderGallery); err == nil {
		t.Fatalf("expected error")
	}
	if store.Len() != 0 {
		t.Fatalf("partial uploads left behind: %d", store.Len())
	}
}

func TestBreakerStore_OpensAfterRepeatedFailures(t *testing.T) {
	store := &failingStore{MemoryStore: NewMemoryStore("")}
	b := NewBreakerStore("test-images", store)

	for i := 0; i < 10; i++ {
		if err := b.Put(context.Background(), "k", []byte("x"), "image/jpeg"); err == nil {
			t.Fatalf("call %d should fail", i)
		}
	}
	err := b.Put(context.Background(), "k", []byte("x"), "image/jpeg")
	if !IsUnavailable(err) {
		t.Fatalf("err = %v; want open breaker", err)
	}
	if got := store.calls.Load(); got != 10 {
		t.Fatalf("open breaker still reached the store: %d calls", got)
	}
}

func TestBreakerStore_MissingObjectsDoNotTrip(t *testing.T) {
	b := NewBreakerStore("test-missing", NewMemoryStore(""))
	for i := 0; i < 20; i++ {
		if err := b.Delete(context.Background(), "missing"); !errors.Is(err, ErrObjectNotFound) {
			t.Fatalf("call %d err = %v", i, err)
		}
	}
	if b.URL("k") != "memory://images/k" {
		t.Fatalf("URL = %q", b.URL("k"))
	}
}
