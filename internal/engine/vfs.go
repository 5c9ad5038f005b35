package engine

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Bridge capability interfaces. An engine may expose its working
// filesystem directly, a higher-level read/write helper, or both. The
// bridge prefers the low-level filesystem call and falls back to the
// helper, mirroring the optional-interface upgrades used elsewhere in
// net/http (e.g. http.Flusher).
type (
	// VirtualFileWriter is implemented by engines that expose a direct
	// filesystem write.
	VirtualFileWriter interface {
		WriteVirtualFile(name string, data []byte) error
	}

	// WriteHelper is implemented by engines that expose a higher-level
	// write helper.
	WriteHelper interface {
		WriteFile(name string, data []byte) error
	}

	// VirtualFileReader is implemented by engines that expose a direct
	// filesystem read. The returned buffer may be engine-owned and
	// reused across reads; it must never escape the bridge.
	VirtualFileReader interface {
		ReadVirtualFile(name string) ([]byte, error)
	}

	// ReadHelper is implemented by engines that expose a higher-level
	// read helper.
	ReadHelper interface {
		ReadFile(name string) ([]byte, error)
	}

	// BufferReleaser is implemented by engines that recycle read
	// buffers after the bridge has copied out of them.
	BufferReleaser interface {
		Release(buf []byte)
	}
)

// ErrNoFileSupport indicates the engine exposes neither a filesystem
// call nor a helper for the requested operation.
var ErrNoFileSupport = errors.New("engine exposes no virtual file support")

// WriteInput copies data into the engine's working filesystem under
// name. The low-level filesystem call is preferred; the write helper is
// used as a fallback when the low-level path is unavailable or fails.
func WriteInput(eng any, name string, data []byte) error {
	writer, hasWriter := eng.(VirtualFileWriter)
	helper, hasHelper := eng.(WriteHelper)

	if hasWriter {
		err := writer.WriteVirtualFile(name, data)
		if err == nil {
			return nil
		}
		if !hasHelper {
			return fmt.Errorf("write input %q: %w", name, err)
		}
		if err := helper.WriteFile(name, data); err != nil {
			return fmt.Errorf("write input %q: %w", name, err)
		}
		return nil
	}

	if hasHelper {
		if err := helper.WriteFile(name, data); err != nil {
			return fmt.Errorf("write input %q: %w", name, err)
		}
		return nil
	}

	return fmt.Errorf("write input %q: %w", name, ErrNoFileSupport)
}

// ReadOutput retrieves the produced file's bytes from the engine's
// working filesystem. The returned slice is always a fresh allocation:
// the engine's own buffer may be backed by recycled memory that cannot
// safely outlive the call, so the copy is a non-negotiable step, never
// an optimization to skip.
func ReadOutput(eng any, name string) ([]byte, error) {
	raw, err := readRaw(eng, name)
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(raw))
	copy(out, raw)

	if releaser, ok := eng.(BufferReleaser); ok {
		releaser.Release(raw)
	}

	return out, nil
}

func readRaw(eng any, name string) ([]byte, error) {
	if reader, ok := eng.(VirtualFileReader); ok {
		raw, err := reader.ReadVirtualFile(name)
		if err != nil {
			return nil, fmt.Errorf("read output %q: %w", name, err)
		}
		return raw, nil
	}

	if helper, ok := eng.(ReadHelper); ok {
		raw, err := helper.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read output %q: %w", name, err)
		}
		return raw, nil
	}

	return nil, fmt.Errorf("read output %q: %w", name, ErrNoFileSupport)
}

// WriteVirtualFile implements VirtualFileWriter against the handle's
// working filesystem.
func (h *Handle) WriteVirtualFile(name string, data []byte) error {
	if err := os.WriteFile(h.path(name), data, 0o644); err != nil {
		return fmt.Errorf("engine filesystem write: %w", err)
	}
	return nil
}

// ReadVirtualFile implements VirtualFileReader. The returned slice is
// backed by a pooled buffer that is reused once released; callers must
// copy before the buffer is handed back via Release.
func (h *Handle) ReadVirtualFile(name string) ([]byte, error) {
	f, err := os.Open(h.path(name))
	if err != nil {
		return nil, fmt.Errorf("engine filesystem read: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("engine filesystem stat: %w", err)
	}
	size := int(info.Size())

	var buf []byte
	if pooled, ok := h.buffers.Get().(*[]byte); ok && cap(*pooled) >= size {
		buf = (*pooled)[:size]
	} else {
		buf = make([]byte, size)
	}

	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, fmt.Errorf("engine filesystem read: %w", err)
	}

	return buf, nil
}

// Release returns a buffer obtained from ReadVirtualFile to the pool.
func (h *Handle) Release(buf []byte) {
	if cap(buf) == 0 {
		return
	}
	b := buf[:0]
	h.buffers.Put(&b)
}

// RemoveVirtualFile deletes a file from the working filesystem. Missing
// files are not an error.
func (h *Handle) RemoveVirtualFile(name string) error {
	err := os.Remove(h.path(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("engine filesystem remove: %w", err)
	}
	return nil
}
