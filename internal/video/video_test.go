package video

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFFmpegArgs(t *testing.T) {
	tests := []struct {
		encoder string
		quality int
		want    []string
	}{
		{"libx264", 23, []string{"-crf", "23", "-preset", "medium"}},
		{"h264_nvenc", 28, []string{"-cq", "28"}},
		{"h264_videotoolbox", 75, []string{"-b:v", "7500k"}},
	}
	for _, tt := range tests {
		t.Run(tt.encoder, func(t *testing.T) {
			args := buildFFmpegArgs(640, 360, 25, "out.mp4", tt.encoder, tt.quality)
			joined := strings.Join(args, " ")
			assert.Contains(t, joined, "-f rawvideo -pixel_format rgba -video_size 640x360 -framerate 25 -i -")
			assert.Contains(t, joined, "-pix_fmt yuv420p -c:v "+tt.encoder)
			assert.Contains(t, joined, strings.Join(tt.want, " "))
			assert.Equal(t, "out.mp4", args[len(args)-1])
		})
	}

	args := buildFFmpegArgs(10, 10, 29.97, "x.mp4", "libx264", 20)
	assert.Contains(t, strings.Join(args, " "), "-framerate 29.97")
}

func TestWriteRawRGBA(t *testing.T) {
	s := &FFmpegStream{width: 2, height: 2}

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(1, 1, color.RGBA{1, 2, 3, 4})
	var buf bytes.Buffer
	require.NoError(t, s.writeRawRGBA(&buf, img))
	assert.Equal(t, img.Pix, buf.Bytes())

	// A sub-image is copied into a tightly packed buffer first
	big := image.NewRGBA(image.Rect(0, 0, 4, 4))
	big.Set(2, 2, color.RGBA{9, 8, 7, 255})
	sub := big.SubImage(image.Rect(1, 1, 3, 3))
	buf.Reset()
	require.NoError(t, s.writeRawRGBA(&buf, sub))
	require.Len(t, buf.Bytes(), 16)
	assert.Equal(t, []byte{9, 8, 7, 255}, buf.Bytes()[12:16])
}

func TestPNGSequence(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	seq, err := NewPNGSequence(dir, "splash")
	require.NoError(t, err)

	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	for i := 0; i < 3; i++ {
		require.NoError(t, seq.WriteFrame(img))
	}
	require.NoError(t, seq.Close())
	assert.Equal(t, 3, seq.Frames())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "splash_00000.png", entries[0].Name())
	assert.Equal(t, "splash_00002.png", entries[2].Name())

	f, err := os.Open(seq.Path(1))
	require.NoError(t, err)
	defer f.Close()
	decoded, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())
	r, _, _, a := decoded.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), a)
}

func TestNewSink(t *testing.T) {
	sink, err := NewSink(context.Background(), "PNG", t.TempDir(), 4, 4, 25, "libx264", 23)
	require.NoError(t, err)
	assert.IsType(t, &PNGSequence{}, sink)

	_, err = NewSink(context.Background(), "gif", t.TempDir(), 4, 4, 25, "libx264", 23)
	assert.Error(t, err)

	_, err = NewSink(context.Background(), FormatMP4, filepath.Join(t.TempDir(), "a.mp4"), 0, 4, 25, "libx264", 23)
	assert.Error(t, err)
}

func TestConcatList(t *testing.T) {
	list := concatList([]string{"/tmp/a.mp4", "/tmp/it's.mp4"})
	assert.Equal(t, "file '/tmp/a.mp4'\nfile '/tmp/it'\\''s.mp4'\n", list)

	assert.Error(t, Concatenate(context.Background(), nil, "out.mp4", t.TempDir()))
}

func TestLogBufferConcurrentReads(t *testing.T) {
	var b logBuffer
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			b.Write([]byte("x"))
		}
	}()
	for i := 0; i < 1000; i++ {
		_ = b.String()
	}
	wg.Wait()
	assert.Len(t, b.String(), 1000)
}
