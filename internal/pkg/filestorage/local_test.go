package filestorage

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"testing"
)

// A 1x1 transparent PNG
var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("cover", name)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(content)
	w.Close()

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatal(err)
	}
	return req.MultipartForm.File["cover"][0]
}

func TestSaveAndDeleteImage(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "http://localhost:8080", 1<<20)
	if err != nil {
		t.Fatal(err)
	}

	url, err := ls.SaveImage(fileHeader(t, "cover.exe", pngBytes), "covers")
	if err != nil {
		t.Fatalf("SaveImage() error = %v", err)
	}
	if len(url) < len("http://localhost:8080/uploads/covers/") || url[len(url)-4:] != ".png" {
		t.Errorf("unexpected url %q", url)
	}

	full := ls.GetFullPath(url)
	data, err := os.ReadFile(full)
	if err != nil || !bytes.Equal(data, pngBytes) {
		t.Fatalf("stored file mismatch: %v", err)
	}

	if err := ls.DeleteFile(url); err != nil {
		t.Fatalf("DeleteFile() error = %v", err)
	}
	if _, err := os.Stat(full); !os.IsNotExist(err) {
		t.Error("file should be gone")
	}
	if err := ls.DeleteFile(url); err != nil {
		t.Errorf("second delete should be a no-op, got %v", err)
	}
}

func TestSaveImageRejects(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "", 32)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := ls.SaveImage(nil, "covers"); !errors.Is(err, ErrNoFile) {
		t.Errorf("nil header: %v", err)
	}
	if _, err := ls.SaveImage(fileHeader(t, "a.png", pngBytes), "covers"); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("large file: %v", err)
	}
	if _, err := ls.SaveImage(fileHeader(t, "a.png", []byte("plain text")), "covers"); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("text file: %v", err)
	}
}

func TestGetFullPathRejectsForeignURLs(t *testing.T) {
	ls := &LocalStorage{basePath: "/srv/data"}
	for _, u := range []string{"", "/etc/passwd", "/uploads/../secret", "https://other/uploads/x.png"} {
		if got := ls.GetFullPath(u); got != "" {
			t.Errorf("GetFullPath(%q) = %q", u, got)
		}
	}
}
