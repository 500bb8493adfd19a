package stream

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/baditaflorin/go_tm_similarity/internal/ports"
)

const (
	// DefaultChunkSize defines the default size of each chunk for reading
	DefaultChunkSize = 64 * 1024 // 64KB

	CR = '\r'
	LF = '\n'
)

// ReaderConfig defines configuration for segment reading
type ReaderConfig struct {
	ChunkSize int
	// SkipBlank drops lines that contain only whitespace
	SkipBlank bool
}

// SegmentReader splits a translation memory export into one segment per line.
// LF, CRLF and lone CR all terminate a line.
type SegmentReader struct {
	logger    ports.Logger
	chunks    sync.Pool
	chunkSize int
	skipBlank bool
}

// NewSegmentReader creates a reader with pooled chunk buffers
func NewSegmentReader(logger ports.Logger, config ReaderConfig) *SegmentReader {
	if config.ChunkSize <= 0 {
		config.ChunkSize = DefaultChunkSize
	}
	r := &SegmentReader{
		logger:    logger,
		chunkSize: config.ChunkSize,
		skipBlank: config.SkipBlank,
	}
	r.chunks.New = func() interface{} {
		buf := make([]byte, r.chunkSize)
		return &buf
	}
	return r
}

// ReadSegments reads every line of reader. Invalid UTF-8 is replaced with
// U+FFFD so downstream rune counts stay meaningful.
func (r *SegmentReader) ReadSegments(ctx context.Context, reader io.Reader) ([]string, error) {
	startTime := time.Now()

	bufPtr := r.chunks.Get().(*[]byte)
	defer r.chunks.Put(bufPtr)
	chunk := *bufPtr

	var (
		segments       []string
		partial        []byte
		skipLF         bool
		bytesProcessed int64
	)

	emit := func(line []byte) {
		if r.skipBlank && len(bytes.TrimSpace(line)) == 0 {
			return
		}
		if !utf8.Valid(line) {
			line = bytes.ToValidUTF8(line, []byte("\uFFFD"))
		}
		segments = append(segments, string(line))
	}

	for {
		select {
		case <-ctx.Done():
			r.logger.Warn("Segment reading cancelled by context", "error", ctx.Err())
			return nil, ctx.Err()
		default:
		}

		n, err := reader.Read(chunk)
		if n > 0 {
			bytesProcessed += int64(n)
			data := chunk[:n]
			lineStart := 0

			for i := 0; i < n; i++ {
				b := data[i]
				if skipLF {
					// LF completing a CRLF, possibly split across chunks
					skipLF = false
					if b == LF {
						lineStart = i + 1
						continue
					}
				}
				if b != LF && b != CR {
					continue
				}

				line := data[lineStart:i]
				if len(partial) > 0 {
					partial = append(partial, line...)
					line = partial
				}
				emit(line)
				partial = partial[:0]
				lineStart = i + 1
				skipLF = b == CR
			}

			partial = append(partial, data[lineStart:]...)
		}

		if err != nil {
			if err != io.EOF {
				r.logger.Warn("Error reading segments", "error", err)
				return nil, err
			}
			if len(partial) > 0 {
				emit(partial)
			}
			break
		}
	}

	r.logger.Debug("Segment reading completed",
		"segments", len(segments),
		"bytes_processed", bytesProcessed,
		"duration", time.Since(startTime),
	)
	return segments, nil
}
