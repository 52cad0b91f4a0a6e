package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Timmoth/doodles/internal/crop"
	"github.com/Timmoth/doodles/internal/filesystem"
	"github.com/Timmoth/doodles/internal/gallery"
	"github.com/Timmoth/doodles/internal/media"
)

type testDirs struct {
	raw string
	out string
}

func newTestDirs(t *testing.T) testDirs {
	t.Helper()
	root := t.TempDir()
	d := testDirs{
		raw: filepath.Join(root, "raw_doodles"),
		out: filepath.Join(root, "doodles"),
	}
	if err := os.Mkdir(d.raw, 0o755); err != nil {
		t.Fatal(err)
	}
	return d
}

func newTestPipeline(d testDirs) *Pipeline {
	retry := filesystem.DefaultRetryConfig()
	retry.InitialBackoff = time.Millisecond
	retry.MaxBackoff = time.Millisecond
	return New(Options{
		RawDir:    d.raw,
		OutputDir: d.out,
		Decode:    media.DecodeOptions{},
		Retry:     retry,
	})
}

// writeScan writes a white page with an optional black rectangle. PNG
// content is used for exact pixels; the decoder ignores the .jpg name.
func writeScan(t *testing.T, path string, width, height int, ink image.Rectangle, format string) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	if !ink.Empty() {
		draw.Draw(img, ink, image.NewUniform(color.Black), image.Point{}, draw.Src)
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	switch format {
	case "png":
		err = png.Encode(f, img)
	default:
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 100})
	}
	if err != nil {
		t.Fatal(err)
	}
}

func jpegSize(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decoding %s: %v", path, err)
	}
	if format != "jpeg" {
		t.Errorf("%s is %s, want jpeg", path, format)
	}
	return cfg.Width, cfg.Height
}

func readManifest(t *testing.T, dir string) []map[string]string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, gallery.ManifestName))
	if err != nil {
		t.Fatalf("reading manifest: %v", err)
	}
	var entries []map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("parsing manifest: %v\n%s", err, data)
	}
	return entries
}

func TestPlan(t *testing.T) {
	d := newTestDirs(t)
	if err := os.MkdirAll(d.out, 0o755); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"b.jpg", "a.jpeg", "c.png", "d.JPG", ".e.jpg"} {
		if err := os.WriteFile(filepath.Join(d.raw, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(d.out, "b.jpg"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	jobs, err := newTestPipeline(d).Plan()
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	want := []Job{
		{Input: filepath.Join(d.raw, ".e.jpg"), Output: filepath.Join(d.out, ".e.jpg")},
		{Input: filepath.Join(d.raw, "a.jpeg"), Output: filepath.Join(d.out, "a.jpeg")},
		{Input: filepath.Join(d.raw, "b.jpg"), Output: filepath.Join(d.out, "b.jpg"), Exists: true},
	}
	if len(jobs) != len(want) {
		t.Fatalf("Plan() = %+v, want %+v", jobs, want)
	}
	for i := range want {
		if jobs[i] != want[i] {
			t.Errorf("job %d = %+v, want %+v", i, jobs[i], want[i])
		}
	}
}

func TestPlanMissingRawDir(t *testing.T) {
	d := newTestDirs(t)
	d.raw = filepath.Join(d.raw, "missing")

	if _, err := newTestPipeline(d).Plan(); err == nil {
		t.Error("Plan() with a missing raw directory should fail")
	}
}

func TestProcessFile(t *testing.T) {
	d := newTestDirs(t)
	if err := os.MkdirAll(d.out, 0o755); err != nil {
		t.Fatal(err)
	}

	in := filepath.Join(d.raw, "24_03_15_My_Doodle.jpg")
	writeScan(t, in, 400, 300, image.Rect(160, 120, 240, 200), "png")

	out := filepath.Join(d.out, "24_03_15_My_Doodle.jpg")
	if err := newTestPipeline(d).ProcessFile(in, out); err != nil {
		t.Fatalf("ProcessFile() error = %v", err)
	}

	// 80x80 content plus 16px margins, written at native size
	if w, h := jpegSize(t, out); w != 112 || h != 112 {
		t.Errorf("full-size = %dx%d, want 112x112", w, h)
	}

	thumb := filepath.Join(d.out, "24_03_15_My_Doodle_thumbnail.jpg")
	if w, h := jpegSize(t, thumb); w != 256 || h != 256 {
		t.Errorf("thumbnail = %dx%d, want 256x256", w, h)
	}
}

func TestProcessFileBlank(t *testing.T) {
	d := newTestDirs(t)
	if err := os.MkdirAll(d.out, 0o755); err != nil {
		t.Fatal(err)
	}

	in := filepath.Join(d.raw, "blank.jpg")
	writeScan(t, in, 64, 64, image.Rectangle{}, "jpeg")

	out := filepath.Join(d.out, "blank.jpg")
	err := newTestPipeline(d).ProcessFile(in, out)
	if !errors.Is(err, crop.ErrBlank) {
		t.Fatalf("ProcessFile() error = %v, want ErrBlank", err)
	}

	entries, err := os.ReadDir(d.out)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("blank scan produced %d output files", len(entries))
	}
}

func TestRun(t *testing.T) {
	d := newTestDirs(t)

	writeScan(t, filepath.Join(d.raw, "24_03_15_My_Doodle.jpg"), 400, 300, image.Rect(160, 120, 240, 200), "png")
	writeScan(t, filepath.Join(d.raw, "sketch.jpg"), 256, 256, image.Rect(64, 64, 128, 192), "jpeg")
	writeScan(t, filepath.Join(d.raw, "blank.jpg"), 64, 64, image.Rectangle{}, "jpeg")
	if err := os.WriteFile(filepath.Join(d.raw, "corrupt.jpg"), []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(d.raw, "notes.txt"), []byte("ignore me"), 0o644); err != nil {
		t.Fatal(err)
	}

	report, err := newTestPipeline(d).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Processed != 2 || report.Blank != 1 || report.Failed != 1 || report.Skipped != 0 {
		t.Errorf("report = %+v, want 2 processed, 1 blank, 1 failed", report)
	}
	if len(report.Failures) != 1 || filepath.Base(report.Failures[0].Path) != "corrupt.jpg" {
		t.Errorf("failures = %+v, want corrupt.jpg", report.Failures)
	}

	for _, name := range []string{"blank.jpg", "blank_thumbnail.jpg", "corrupt.jpg", "corrupt_thumbnail.jpg"} {
		if _, err := os.Stat(filepath.Join(d.out, name)); !os.IsNotExist(err) {
			t.Errorf("%s should not exist (err = %v)", name, err)
		}
	}

	manifest := readManifest(t, d.out)
	if len(manifest) != 2 {
		t.Fatalf("manifest has %d entries, want 2: %v", len(manifest), manifest)
	}

	// sketch.jpg is dated by its fresh mtime, so it sorts before 2024
	if manifest[0]["fullsize"] != "sketch.jpg" || manifest[0]["thumbnail"] != "sketch_thumbnail.jpg" {
		t.Errorf("first entry = %v, want sketch.jpg", manifest[0])
	}
	want := map[string]string{
		"name":      "My Doodle",
		"thumbnail": "24_03_15_My_Doodle_thumbnail.jpg",
		"fullsize":  "24_03_15_My_Doodle.jpg",
		"timestamp": "2024-03-15T00:00:00",
	}
	for k, v := range want {
		if manifest[1][k] != v {
			t.Errorf("second entry %s = %q, want %q", k, manifest[1][k], v)
		}
	}

	for _, e := range manifest {
		for _, key := range []string{"fullsize", "thumbnail"} {
			if _, err := os.Stat(filepath.Join(d.out, e[key])); err != nil {
				t.Errorf("manifest references missing %s %s", key, e[key])
			}
		}
	}
}

func TestRunIsolatesUncheckableOutput(t *testing.T) {
	d := newTestDirs(t)
	if err := os.MkdirAll(d.out, 0o755); err != nil {
		t.Fatal(err)
	}

	writeScan(t, filepath.Join(d.raw, "a.jpg"), 100, 100, image.Rect(40, 40, 60, 60), "png")
	writeScan(t, filepath.Join(d.raw, "b.jpg"), 100, 100, image.Rect(40, 40, 60, 60), "png")

	// The existence check on b.jpg's output fails with ELOOP
	if err := os.Symlink("b.jpg", filepath.Join(d.out, "b.jpg")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	p := newTestPipeline(d)
	jobs, err := p.Plan()
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if len(jobs) != 2 || jobs[0].Err != nil || jobs[1].Err == nil {
		t.Fatalf("Plan() = %+v, want only b.jpg to carry an error", jobs)
	}

	report, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Processed != 1 || report.Failed != 1 {
		t.Errorf("report = %+v, want 1 processed, 1 failed", report)
	}
	if len(report.Failures) != 1 || filepath.Base(report.Failures[0].Path) != "b.jpg" {
		t.Errorf("failures = %+v, want b.jpg", report.Failures)
	}

	manifest := readManifest(t, d.out)
	if len(manifest) != 1 || manifest[0]["fullsize"] != "a.jpg" {
		t.Errorf("manifest = %v, want only a.jpg", manifest)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	d := newTestDirs(t)

	writeScan(t, filepath.Join(d.raw, "24_03_15_My_Doodle.jpg"), 400, 300, image.Rect(160, 120, 240, 200), "png")
	writeScan(t, filepath.Join(d.raw, "23_01_02_Other.jpg"), 200, 200, image.Rect(40, 40, 80, 160), "png")

	p := newTestPipeline(d)
	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}

	snapshot := func() map[string][]byte {
		files := make(map[string][]byte)
		entries, err := os.ReadDir(d.out)
		if err != nil {
			t.Fatal(err)
		}
		for _, e := range entries {
			data, err := os.ReadFile(filepath.Join(d.out, e.Name()))
			if err != nil {
				t.Fatal(err)
			}
			files[e.Name()] = data
		}
		return files
	}
	before := snapshot()

	report, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if report.Processed != 0 || report.Skipped != 2 {
		t.Errorf("second run report = %+v, want 0 processed, 2 skipped", report)
	}

	after := snapshot()
	if len(after) != len(before) {
		t.Fatalf("output has %d files after re-run, had %d", len(after), len(before))
	}
	for name, data := range before {
		if !bytes.Equal(after[name], data) {
			t.Errorf("%s changed on re-run", name)
		}
	}

	manifest := readManifest(t, d.out)
	if len(manifest) != 2 || manifest[0]["name"] != "My Doodle" || manifest[1]["name"] != "Other" {
		t.Errorf("manifest after re-run = %v", manifest)
	}
}

func TestRunSkipsExistingOutputs(t *testing.T) {
	d := newTestDirs(t)
	if err := os.MkdirAll(d.out, 0o755); err != nil {
		t.Fatal(err)
	}

	writeScan(t, filepath.Join(d.raw, "kept.jpg"), 100, 100, image.Rect(10, 10, 90, 90), "png")
	placeholder := []byte("already here")
	if err := os.WriteFile(filepath.Join(d.out, "kept.jpg"), placeholder, 0o644); err != nil {
		t.Fatal(err)
	}

	report, err := newTestPipeline(d).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Skipped != 1 || report.Processed != 0 {
		t.Errorf("report = %+v, want 1 skipped", report)
	}

	data, err := os.ReadFile(filepath.Join(d.out, "kept.jpg"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, placeholder) {
		t.Error("existing output was overwritten")
	}
	// The thumbnail is not regenerated for skipped scans
	if _, err := os.Stat(filepath.Join(d.out, "kept_thumbnail.jpg")); !os.IsNotExist(err) {
		t.Errorf("thumbnail should not be created for a skipped scan (err = %v)", err)
	}

	if entries := readManifest(t, d.out); len(entries) != 1 {
		t.Errorf("manifest = %v, want the existing output listed", entries)
	}
}

func TestRunEmptyRawDir(t *testing.T) {
	d := newTestDirs(t)

	report, err := newTestPipeline(d).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Processed+report.Skipped+report.Blank+report.Failed != 0 {
		t.Errorf("report = %+v, want all zero", report)
	}

	data, err := os.ReadFile(filepath.Join(d.out, gallery.ManifestName))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[]" {
		t.Errorf("manifest = %q, want []", data)
	}
}

func TestRunCanceled(t *testing.T) {
	d := newTestDirs(t)
	writeScan(t, filepath.Join(d.raw, "a.jpg"), 50, 50, image.Rect(10, 10, 20, 20), "png")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := newTestPipeline(d).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if report.Processed != 0 {
		t.Errorf("report = %+v, want nothing processed", report)
	}
	if _, err := os.Stat(filepath.Join(d.out, "a.jpg")); !os.IsNotExist(err) {
		t.Error("canceled run should not write outputs")
	}
}
