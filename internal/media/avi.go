package media

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// aviWriter writes a Motion-JPEG AVI file frame by frame. It is the
// deterministic video container used whenever the external encoding
// tool is unavailable: every frame is a self-contained JPEG, so no
// codec work is needed to produce a playable file.
type aviWriter struct {
	f      *os.File
	width  int
	height int
	fps    int

	frames []aviIndexEntry
	err    error

	riffSizePos   int64
	frameCountPos int64
	strhLengthPos int64
	moviSizePos   int64
	moviStart     int64
}

type aviIndexEntry struct {
	offset uint32
	size   uint32
}

func newAVIWriter(path string, width, height, fps int) (*aviWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create avi file: %w", err)
	}

	w := &aviWriter{f: f, width: width, height: height, fps: fps}
	if err := w.writeHeaders(); err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	return w, nil
}

func (w *aviWriter) writeHeaders() error {
	// RIFF sizes and frame counts are unknown until Close; remember
	// their positions and backpatch.
	w.put([]byte("RIFF"))
	w.riffSizePos = w.pos()
	w.putU32(0)
	w.put([]byte("AVI "))

	// hdrl list: avih + one video stream (strh/strf), fixed layout.
	w.put([]byte("LIST"))
	w.putU32(4 + 64 + 124)
	w.put([]byte("hdrl"))

	w.put([]byte("avih"))
	w.putU32(56)
	w.putU32(uint32(1000000 / w.fps)) // microseconds per frame
	w.putU32(0)                       // max bytes per second
	w.putU32(0)                       // padding granularity
	w.putU32(0x10)                    // AVIF_HASINDEX
	w.frameCountPos = w.pos()
	w.putU32(0) // total frames, patched on Close
	w.putU32(0) // initial frames
	w.putU32(1) // stream count
	w.putU32(0) // suggested buffer size
	w.putU32(uint32(w.width))
	w.putU32(uint32(w.height))
	w.putU32(0)
	w.putU32(0)
	w.putU32(0)
	w.putU32(0)

	w.put([]byte("LIST"))
	w.putU32(4 + 64 + 48)
	w.put([]byte("strl"))

	w.put([]byte("strh"))
	w.putU32(56)
	w.put([]byte("vids"))
	w.put([]byte("MJPG"))
	w.putU32(0)              // flags
	w.putU32(0)              // priority + language
	w.putU32(0)              // initial frames
	w.putU32(1)              // scale
	w.putU32(uint32(w.fps))  // rate
	w.putU32(0)              // start
	w.strhLengthPos = w.pos()
	w.putU32(0)              // length in frames, patched on Close
	w.putU32(0)              // suggested buffer size
	w.putU32(^uint32(0))     // quality: default
	w.putU32(0)              // sample size
	w.putU16(0)              // rcFrame
	w.putU16(0)
	w.putU16(uint16(w.width))
	w.putU16(uint16(w.height))

	// strf: BITMAPINFOHEADER
	w.put([]byte("strf"))
	w.putU32(40)
	w.putU32(40)
	w.putU32(uint32(w.width))
	w.putU32(uint32(w.height))
	w.putU16(1)  // planes
	w.putU16(24) // bit count
	w.put([]byte("MJPG"))
	w.putU32(uint32(w.width * w.height * 3))
	w.putU32(0)
	w.putU32(0)
	w.putU32(0)
	w.putU32(0)

	w.put([]byte("LIST"))
	w.moviSizePos = w.pos()
	w.putU32(0) // movi size, patched on Close
	w.moviStart = w.pos()
	w.put([]byte("movi"))

	return w.err
}

// AddFrame appends one JPEG-encoded frame.
func (w *aviWriter) AddFrame(jpegData []byte) error {
	offset := uint32(w.pos() - w.moviStart)

	w.put([]byte("00dc"))
	w.putU32(uint32(len(jpegData)))
	w.put(jpegData)
	if len(jpegData)%2 != 0 {
		w.put([]byte{0})
	}
	if w.err != nil {
		return fmt.Errorf("write avi frame: %w", w.err)
	}

	w.frames = append(w.frames, aviIndexEntry{offset: offset, size: uint32(len(jpegData))})
	return nil
}

// Close writes the frame index, patches the deferred sizes and closes
// the file.
func (w *aviWriter) Close() error {
	moviEnd := w.pos()

	w.put([]byte("idx1"))
	w.putU32(uint32(16 * len(w.frames)))
	for _, fr := range w.frames {
		w.put([]byte("00dc"))
		w.putU32(0x10) // AVIIF_KEYFRAME
		w.putU32(fr.offset)
		w.putU32(fr.size)
	}
	fileEnd := w.pos()

	w.patchU32(w.riffSizePos, uint32(fileEnd-8))
	w.patchU32(w.frameCountPos, uint32(len(w.frames)))
	w.patchU32(w.strhLengthPos, uint32(len(w.frames)))
	w.patchU32(w.moviSizePos, uint32(moviEnd-w.moviStart))

	if w.err != nil {
		w.f.Close()
		return fmt.Errorf("finalize avi: %w", w.err)
	}
	return w.f.Close()
}

// Little-endian write helpers; the first error sticks.

func (w *aviWriter) pos() int64 {
	p, err := w.f.Seek(0, io.SeekCurrent)
	if err != nil && w.err == nil {
		w.err = err
	}
	return p
}

func (w *aviWriter) put(b []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.f.Write(b)
}

func (w *aviWriter) putU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.put(b[:])
}

func (w *aviWriter) putU16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.put(b[:])
}

func (w *aviWriter) patchU32(pos int64, v uint32) {
	if w.err != nil {
		return
	}
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, w.err = w.f.WriteAt(b[:], pos)
}
