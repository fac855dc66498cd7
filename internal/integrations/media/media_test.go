package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/chai2010/webp"
)

type fakeS3 struct {
	in   *s3.PutObjectInput
	body []byte
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func pngOf(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return &buf
}

func TestFit(t *testing.T) {
	tests := []struct {
		w, h         int
		wantW, wantH int
	}{
		{1600, 800, 800, 400},
		{600, 1200, 400, 800},
		{300, 200, 300, 200},
	}

	for _, tt := range tests {
		got := Fit(image.NewRGBA(image.Rect(0, 0, tt.w, tt.h)), MaxSide).Bounds()
		if got.Dx() != tt.wantW || got.Dy() != tt.wantH {
			t.Errorf("Fit(%dx%d) = %dx%d, want %dx%d", tt.w, tt.h, got.Dx(), got.Dy(), tt.wantW, tt.wantH)
		}
	}
}

func TestUploadBarberPhoto(t *testing.T) {
	fake := &fakeS3{}
	store := NewWithClient(fake, "photos", "https://cdn.example.com/")

	url, err := store.UploadBarberPhoto(context.Background(), 3, pngOf(t, 1600, 800))
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(url, "https://cdn.example.com/barbers/3/") || !strings.HasSuffix(url, ".webp") {
		t.Fatalf("url = %s", url)
	}
	if *fake.in.Bucket != "photos" || *fake.in.ContentType != "image/webp" {
		t.Fatalf("put input = %+v", fake.in)
	}

	img, err := webp.Decode(bytes.NewReader(fake.body))
	if err != nil {
		t.Fatalf("uploaded body is not webp: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 800 || b.Dy() != 400 {
		t.Fatalf("uploaded size = %dx%d", b.Dx(), b.Dy())
	}
}

func TestToWebP_RejectsGarbage(t *testing.T) {
	if _, err := ToWebP(strings.NewReader("not an image")); err == nil {
		t.Fatal("expected decode error")
	}
}
