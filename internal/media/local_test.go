package media

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
)

func TestLocalStorePutAndOpen(t *testing.T) {
	st, err := NewLocalStore(t.TempDir(), "http://localhost:8080/api/v1/media")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ref, err := st.Put(context.Background(), "../../etc/clip.MP4", "", strings.NewReader("frames"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if strings.Contains(ref.Key, "/") || !strings.HasSuffix(ref.Key, ".mp4") {
		t.Fatalf("unsafe key %q", ref.Key)
	}
	if ref.URL != "http://localhost:8080/api/v1/media/"+ref.Key {
		t.Fatalf("url=%q", ref.URL)
	}
	if ref.MimeType != "video/mp4" || ref.SizeBytes != 6 {
		t.Fatalf("ref=%+v", ref)
	}

	rc, mimeType, err := st.Open(context.Background(), ref.Key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	if string(body) != "frames" || mimeType != "video/mp4" {
		t.Fatalf("body=%q mime=%q", body, mimeType)
	}
}

func TestLocalStoreRejectsTraversalOnOpen(t *testing.T) {
	st, err := NewLocalStore(t.TempDir(), "")
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"", "..", "../x", "a/b", ".hidden"} {
		if _, _, err := st.Open(context.Background(), key); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("key %q: expected ErrInvalidKey, got %v", key, err)
		}
	}
	if _, _, err := st.Open(context.Background(), "missing.mp4"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLocalStorePreserveNames(t *testing.T) {
	dir := t.TempDir()
	st, err := NewLocalStore(dir, "")
	if err != nil {
		t.Fatal(err)
	}
	st.PreserveNames = true
	ref, err := st.Put(context.Background(), "soulsound-prod-1700000000000.webm", "video/webm", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if ref.Key != "soulsound-prod-1700000000000.webm" {
		t.Fatalf("key=%q", ref.Key)
	}
	if _, err := os.Stat(st.Path(ref.Key)); err != nil {
		t.Fatalf("file missing: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("leftover temp files: %d entries", len(entries))
	}
}

func TestExtensionFor(t *testing.T) {
	cases := map[string]string{
		"video/mp4":               ".mp4",
		"video/webm;codecs=vp9":   ".webm",
		"audio/wav":               ".wav",
		"application/x-something": ".bin",
	}
	for in, want := range cases {
		if got := ExtensionFor(in); got != want {
			t.Errorf("ExtensionFor(%q)=%q want %q", in, got, want)
		}
	}
}
