// Package interfile reads and writes volumes and projection data as a text
// header of "key := value" lines next to a raw little-endian float32 data
// file, optionally zstd compressed.
package interfile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	beginMarker = "!INTERFILE"
	endMarker   = "!END OF INTERFILE"
)

// Header is an ordered set of interfile keys. Lookups ignore case, a
// leading '!' and surrounding whitespace.
type Header struct {
	keys   []string
	values map[string]string
}

// NewHeader returns an empty header.
func NewHeader() *Header {
	return &Header{values: make(map[string]string)}
}

func normalize(key string) string {
	key = strings.TrimSpace(key)
	key = strings.TrimPrefix(key, "!")
	return strings.ToLower(strings.Join(strings.Fields(key), " "))
}

// Set adds or replaces key.
func (h *Header) Set(key string, value any) {
	n := normalize(key)
	if _, ok := h.values[n]; !ok {
		h.keys = append(h.keys, key)
	}
	h.values[n] = strings.TrimSpace(fmt.Sprint(value))
}

func (h *Header) Get(key string) (string, bool) {
	v, ok := h.values[normalize(key)]
	return v, ok
}

// String returns the value of a required key.
func (h *Header) String(key string) (string, error) {
	v, ok := h.Get(key)
	if !ok {
		return "", fmt.Errorf("missing header key %q", key)
	}
	return v, nil
}

func (h *Header) Int(key string) (int, error) {
	v, err := h.String(key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("header key %q: %w", key, err)
	}
	return n, nil
}

func (h *Header) Float(key string) (float64, error) {
	v, err := h.String(key)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("header key %q: %w", key, err)
	}
	return f, nil
}

// Bool accepts true/false, yes/no and 1/0. A missing key is false.
func (h *Header) Bool(key string) (bool, error) {
	v, ok := h.Get(key)
	if !ok {
		return false, nil
	}
	switch strings.ToLower(v) {
	case "true", "yes", "1":
		return true, nil
	case "false", "no", "0", "":
		return false, nil
	}
	return false, fmt.Errorf("header key %q: %q is not a boolean", key, v)
}

// ParseHeader reads the keys between the begin and end markers.
func ParseHeader(r io.Reader) (*Header, error) {
	h := NewHeader()
	sc := bufio.NewScanner(r)
	started, ended := false, false
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, ";") {
			continue
		}
		key, value, ok := strings.Cut(text, ":=")
		if !ok {
			return nil, fmt.Errorf("line %d: expected \"key := value\", got %q", line, text)
		}
		switch normalize(key) {
		case normalize(beginMarker):
			started = true
			continue
		case normalize(endMarker):
			ended = true
		}
		if ended {
			break
		}
		if !started {
			return nil, fmt.Errorf("line %d: key %q before %s", line, strings.TrimSpace(key), beginMarker)
		}
		h.Set(strings.TrimSpace(key), value)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("error reading header: %w", err)
	}
	if !started || !ended {
		return nil, fmt.Errorf("header is not delimited by %s and %s", beginMarker, endMarker)
	}
	return h, nil
}

// WriteTo writes the header with its markers.
func (h *Header) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	b.WriteString(beginMarker + " :=\n")
	for _, k := range h.keys {
		fmt.Fprintf(&b, "%s := %s\n", k, h.values[normalize(k)])
	}
	b.WriteString(endMarker + " :=\n")
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}
