package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// FrameSink receives composed frames in order
type FrameSink interface {
	WriteFrame(img image.Image) error
	Close() error
}

// Output formats accepted by NewSink
const (
	FormatPNG = "png"
	FormatMP4 = "mp4"
)

// NewSink opens a sink for format. For png, path is a directory that gets
// one numbered file per frame; for mp4 it is the video file.
func NewSink(ctx context.Context, format, path string, width, height int, fps float64, encoder string, quality int) (FrameSink, error) {
	switch strings.ToLower(format) {
	case FormatPNG:
		return NewPNGSequence(path, "frame")
	case FormatMP4:
		return NewFFmpegStream(ctx, path, width, height, fps, encoder, quality)
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// FFmpegStream pipes raw RGBA frames into an ffmpeg process
type FFmpegStream struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr logBuffer
	width  int
	height int
	frames int
	buf    *image.RGBA
}

// NewFFmpegStream starts ffmpeg encoding width x height frames at fps into path
func NewFFmpegStream(ctx context.Context, path string, width, height int, fps float64, encoder string, quality int) (*FFmpegStream, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", width, height)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	s := &FFmpegStream{width: width, height: height}
	s.cmd = exec.CommandContext(ctx, "ffmpeg", buildFFmpegArgs(width, height, fps, path, encoder, quality)...)
	s.cmd.Stderr = &s.stderr

	stdin, err := s.cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe error: %w", err)
	}
	s.stdin = stdin

	if err := s.cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}
	return s, nil
}

// logBuffer collects process output. exec copies into it from its own
// goroutine while frames are still being written.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func buildFFmpegArgs(width, height int, fps float64, path, encoder string, quality int) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", width, height),
		"-framerate", strconv.FormatFloat(fps, 'f', -1, 64),
		"-i", "-",
		"-pix_fmt", "yuv420p",
		"-c:v", encoder,
	}

	// Качество в зависимости от энкодера
	switch encoder {
	case "h264_videotoolbox":
		bitrate := quality * 100
		args = append(args, "-b:v", fmt.Sprintf("%dk", bitrate))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", quality))
	default: // libx264
		args = append(args, "-crf", fmt.Sprintf("%d", quality), "-preset", "medium")
	}

	args = append(args, path)
	return args
}

// WriteFrame sends one frame. Its size must match the stream.
func (s *FFmpegStream) WriteFrame(img image.Image) error {
	b := img.Bounds()
	if b.Dx() != s.width || b.Dy() != s.height {
		return fmt.Errorf("frame is %dx%d, stream is %dx%d", b.Dx(), b.Dy(), s.width, s.height)
	}
	if err := s.writeRawRGBA(s.stdin, img); err != nil {
		return fmt.Errorf("write raw error: %w (%s)", err, strings.TrimSpace(s.stderr.String()))
	}
	s.frames++
	return nil
}

// Frames returns how many frames were written
func (s *FFmpegStream) Frames() int {
	return s.frames
}

// Close finishes the stream and waits for ffmpeg to exit
func (s *FFmpegStream) Close() error {
	s.stdin.Close()
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w, output: %s", err, strings.TrimSpace(s.stderr.String()))
	}
	return nil
}

func (s *FFmpegStream) writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		if s.buf == nil {
			s.buf = image.NewRGBA(image.Rect(0, 0, s.width, s.height))
		}
		draw.Draw(s.buf, s.buf.Rect, img, bounds.Min, draw.Src)
		rgba = s.buf
	}
	_, err := w.Write(rgba.Pix)
	return err
}

// Concatenate joins videos encoded with identical settings into finalPath
// without re-encoding
func Concatenate(ctx context.Context, paths []string, finalPath string, tmpDir string) error {
	if len(paths) == 0 {
		return fmt.Errorf("nothing to concatenate")
	}

	concatFilePath := filepath.Join(tmpDir, "inputs.txt")
	if err := os.WriteFile(concatFilePath, []byte(concatList(paths)), 0644); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-f", "concat", "-safe", "0", "-i", concatFilePath,
		"-c", "copy", finalPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg concat error: %v, output: %s", err, string(out))
	}
	return nil
}

func concatList(paths []string) string {
	var sb strings.Builder
	for _, p := range paths {
		absPath, err := filepath.Abs(p)
		if err != nil {
			absPath = p
		}
		fmt.Fprintf(&sb, "file '%s'\n", strings.ReplaceAll(absPath, "'", `'\''`))
	}
	return sb.String()
}
