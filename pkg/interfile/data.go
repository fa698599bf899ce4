package interfile

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Data keys shared by volume and projection headers.
const (
	keyDataFile    = "name of data file"
	keyNumFormat   = "number format"
	keyBytesPerPix = "number of bytes per pixel"
	keyByteOrder   = "imagedata byte order"
	keyCompression = "data compression"
)

const compressionZstd = "zstd"

// readChunk is the number of values decoded per step from a compressed
// stream.
const readChunk = 1 << 16

// decoderMemoryFloor keeps the zstd window limit above what our own writer
// uses for small data sets.
const decoderMemoryFloor = 1 << 27

// valueCount multiplies the dimensions of a data set, failing when the
// product is not positive or its byte size overflows an int.
func valueCount(dims ...int) (int, error) {
	n := 1
	for _, d := range dims {
		if d <= 0 {
			return 0, fmt.Errorf("invalid data dimensions %v", dims)
		}
		if n > math.MaxInt/4/d {
			return 0, fmt.Errorf("data dimensions %v are too large", dims)
		}
		n *= d
	}
	return n, nil
}

// WriteOption configures how data files are written.
type WriteOption func(*writeOptions)

type writeOptions struct {
	compress bool
	level    zstd.EncoderLevel
}

// WithZstd compresses the data file at the given zstd level (1 to 22).
func WithZstd(level int) WriteOption {
	return func(o *writeOptions) {
		o.compress = true
		o.level = zstd.EncoderLevelFromZstd(level)
	}
}

func applyWriteOptions(opts []WriteOption) writeOptions {
	o := writeOptions{level: zstd.SpeedDefault}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func setDataKeys(h *Header, dataFile string, o writeOptions) {
	h.Set(keyDataFile, dataFile)
	h.Set(keyNumFormat, "float")
	h.Set(keyBytesPerPix, 4)
	h.Set(keyByteOrder, "LITTLEENDIAN")
	if o.compress {
		h.Set(keyCompression, compressionZstd)
	}
}

// writeFiles writes the header at headerPath and the values next to it
// under dataName.
func writeFiles(headerPath, dataName string, h *Header, values []float32, o writeOptions) error {
	dir := filepath.Dir(headerPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}
	if err := writeData(filepath.Join(dir, dataName), values, o); err != nil {
		return err
	}

	f, err := os.Create(headerPath)
	if err != nil {
		return fmt.Errorf("error creating header: %w", err)
	}
	if _, err := h.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("error writing header: %w", err)
	}
	return f.Close()
}

func writeData(path string, values []float32, o writeOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating data file: %w", err)
	}
	defer f.Close()

	var w io.Writer = f
	var enc *zstd.Encoder
	if o.compress {
		enc, err = zstd.NewWriter(f, zstd.WithEncoderLevel(o.level))
		if err != nil {
			return fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		w = enc
	}
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, values); err != nil {
		return fmt.Errorf("error writing data file: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("error writing data file: %w", err)
	}
	if enc != nil {
		if err := enc.Close(); err != nil {
			return fmt.Errorf("error finishing zstd stream: %w", err)
		}
	}
	return f.Close()
}

func readHeader(path string) (*Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening header: %w", err)
	}
	defer f.Close()
	h, err := ParseHeader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return h, nil
}

// readData reads n float32 values from the data file named in h, resolved
// relative to the header directory. A raw file must hold exactly n values.
// Compressed data is decoded in chunks, so a header claiming more values
// than the stream holds fails before the full buffer is allocated.
func readData(headerPath string, h *Header, n int) ([]float32, error) {
	if _, err := valueCount(n); err != nil {
		return nil, err
	}
	if v, ok := h.Get(keyNumFormat); ok && !strings.EqualFold(v, "float") {
		return nil, fmt.Errorf("unsupported number format %q", v)
	}
	if v, ok := h.Get(keyBytesPerPix); ok && v != "4" {
		return nil, fmt.Errorf("unsupported number of bytes per pixel %s", v)
	}
	order := binary.ByteOrder(binary.LittleEndian)
	if v, ok := h.Get(keyByteOrder); ok && strings.EqualFold(v, "BIGENDIAN") {
		order = binary.BigEndian
	}

	name, err := h.String(keyDataFile)
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(name) {
		name = filepath.Join(filepath.Dir(headerPath), name)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("error opening data file: %w", err)
	}
	defer f.Close()

	c, ok := h.Get(keyCompression)
	if !ok || c == "" || strings.EqualFold(c, "none") {
		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("error reading data file: %w", err)
		}
		if info.Size() != int64(n)*4 {
			return nil, fmt.Errorf("data file %s holds %d bytes, header describes %d values (%d bytes)",
				name, info.Size(), n, int64(n)*4)
		}
		values := make([]float32, n)
		if err := binary.Read(bufio.NewReader(f), order, values); err != nil {
			return nil, fmt.Errorf("error reading %d values from %s: %w", n, name, err)
		}
		return values, nil
	}
	if !strings.EqualFold(c, compressionZstd) {
		return nil, fmt.Errorf("unsupported data compression %q", c)
	}

	dec, err := zstd.NewReader(bufio.NewReader(f), zstd.WithDecoderMaxMemory(max(uint64(n)*4, decoderMemoryFloor)))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer dec.Close()
	values, err := readChunked(dec, order, n)
	if err != nil {
		return nil, fmt.Errorf("error reading %d values from %s: %w", n, name, err)
	}
	return values, nil
}

// readChunked decodes n values from r, growing the result only as data
// arrives.
func readChunked(r io.Reader, order binary.ByteOrder, n int) ([]float32, error) {
	values := make([]float32, 0, min(n, readChunk))
	chunk := make([]float32, min(n, readChunk))
	for len(values) < n {
		c := chunk[:min(n-len(values), readChunk)]
		if err := binary.Read(r, order, c); err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return nil, fmt.Errorf("stream ended after %d values: %w", len(values), err)
		}
		values = append(values, c...)
	}
	return values, nil
}

func dataName(headerPath, ext string) string {
	base := filepath.Base(headerPath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ext
}
