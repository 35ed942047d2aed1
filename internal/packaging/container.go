package packaging

import (
	"archive/tar"
	"archive/zip"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/klauspost/compress/zstd"
)

// Container formats.
const (
	FormatZip  = "zip"
	FormatTzst = "tzst"
)

// Writer adds files to an archive under construction. Entry names use forward
// slashes. Close finalizes the container; a Writer is single-use.
type Writer interface {
	Add(name, srcPath string) error
	AddBytes(name string, data []byte) error
	Close() error
}

// Extension returns the filename extension for a container format, including
// the dot.
func Extension(format string) string {
	if format == FormatTzst {
		return ".tar.zst"
	}
	return ".zip"
}

// NewWriter creates an archive at path in the given format.
func NewWriter(format, path string) (Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}
	switch format {
	case FormatZip:
		return &zipContainer{file: f, zw: zip.NewWriter(f)}, nil
	case FormatTzst:
		zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("init zstd writer: %w", err)
		}
		return &tzstContainer{file: f, zw: zw, tw: tar.NewWriter(zw)}, nil
	default:
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("unknown archive format %q", format)
	}
}

type zipContainer struct {
	file *os.File
	zw   *zip.Writer
}

func (c *zipContainer) Add(name, srcPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", srcPath, err)
	}
	defer src.Close()
	w, err := c.entry(name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("write entry %s: %w", name, err)
	}
	return nil
}

func (c *zipContainer) AddBytes(name string, data []byte) error {
	w, err := c.entry(name)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write entry %s: %w", name, err)
	}
	return nil
}

func (c *zipContainer) entry(name string) (io.Writer, error) {
	// Store without recompressing: the payload is already-compressed image
	// data and deflate only burns time on it.
	w, err := c.zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Store,
		Modified: time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("create entry %s: %w", name, err)
	}
	return w, nil
}

func (c *zipContainer) Close() error {
	if err := c.zw.Close(); err != nil {
		c.file.Close()
		return fmt.Errorf("finalize zip: %w", err)
	}
	return c.file.Close()
}

type tzstContainer struct {
	file *os.File
	zw   *zstd.Encoder
	tw   *tar.Writer
}

func (c *tzstContainer) Add(name, srcPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", srcPath, err)
	}
	defer src.Close()
	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", srcPath, err)
	}
	if err := c.header(name, info.Size()); err != nil {
		return err
	}
	if _, err := io.Copy(c.tw, src); err != nil {
		return fmt.Errorf("write entry %s: %w", name, err)
	}
	return nil
}

func (c *tzstContainer) AddBytes(name string, data []byte) error {
	if err := c.header(name, int64(len(data))); err != nil {
		return err
	}
	if _, err := c.tw.Write(data); err != nil {
		return fmt.Errorf("write entry %s: %w", name, err)
	}
	return nil
}

func (c *tzstContainer) header(name string, size int64) error {
	err := c.tw.WriteHeader(&tar.Header{
		Name:    name,
		Mode:    0o644,
		Size:    size,
		ModTime: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("create entry %s: %w", name, err)
	}
	return nil
}

func (c *tzstContainer) Close() error {
	if err := c.tw.Close(); err != nil {
		c.file.Close()
		return fmt.Errorf("finalize tar: %w", err)
	}
	if err := c.zw.Close(); err != nil {
		c.file.Close()
		return fmt.Errorf("finalize zstd stream: %w", err)
	}
	return c.file.Close()
}
