package video

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// PNGSequence writes every frame to its own numbered PNG file
type PNGSequence struct {
	dir     string
	prefix  string
	next    int
	encoder png.Encoder
}

// NewPNGSequence creates dir if needed. Files are named prefix_00000.png, ...
func NewPNGSequence(dir, prefix string) (*PNGSequence, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &PNGSequence{
		dir:     dir,
		prefix:  prefix,
		encoder: png.Encoder{CompressionLevel: png.BestSpeed},
	}, nil
}

// Path returns the file name of frame i
func (s *PNGSequence) Path(i int) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%05d.png", s.prefix, i))
}

// Frames returns how many frames were written
func (s *PNGSequence) Frames() int {
	return s.next
}

// WriteFrame encodes img as the next file in the sequence
func (s *PNGSequence) WriteFrame(img image.Image) error {
	path := s.Path(s.next)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := s.encoder.Encode(w, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	s.next++
	return nil
}

// Close is a no-op, every frame is already on disk
func (s *PNGSequence) Close() error {
	return nil
}
