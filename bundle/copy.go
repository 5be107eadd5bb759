package bundle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"os"

	"go.uber.org/zap"
)

// CopyOptions tunes Copy.
type CopyOptions struct {
	ChunkSize int
	Logger    *zap.Logger
	// Progress, when set, is called after every chunk with the bytes moved so
	// far and the size advertised by the source.
	Progress func(done, total int64)
}

// CopyResult summarizes a completed Copy.
type CopyResult struct {
	Bytes    int64
	Checksum string // hex SHA-256 of the bytes moved
}

// Copy streams src into dst through the Item contract. Both items are opened
// here and always closed before returning. Cancellation is observed between
// chunks; a cancelled copy leaves dst partially written.
//
// When both items are file backed and dst already names the same file as
// src, Copy fails with ErrSameFile before opening either of them.
func Copy(ctx context.Context, dst, src Item, opts CopyOptions) (result CopyResult, err error) {
	if err := checkDistinct(dst, src); err != nil {
		return CopyResult{}, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	props := src.Properties()
	logger = logger.With(zap.String("item", props.Name), zap.Int64("size", props.Size))

	if err := src.Open(ModeRead); err != nil {
		return CopyResult{}, err
	}
	defer func() {
		err = errors.Join(err, src.Close())
	}()

	if err := dst.Open(ModeWrite); err != nil {
		return CopyResult{}, err
	}
	defer func() {
		err = errors.Join(err, dst.Close())
	}()

	logger.Debug("item copy started")

	hasher := sha256.New()
	chunks := NewChunkReader(src, opts.ChunkSize)
	result, err = pump(ctx, dst, chunks, hasher, props.Size, opts.Progress)
	if err != nil {
		logger.Warn("item copy failed", zap.Int64("bytes", result.Bytes), zap.Error(err))
		return result, err
	}

	result.Checksum = hex.EncodeToString(hasher.Sum(nil))
	logger.Info("item copied", zap.Int64("bytes", result.Bytes), zap.String("sha256", result.Checksum))
	return result, nil
}

func pump(ctx context.Context, dst Item, chunks *ChunkReader, hasher hash.Hash, total int64, progress func(done, total int64)) (CopyResult, error) {
	var result CopyResult
	for {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("copy interrupted: %w", err)
		}

		chunk, ok, err := chunks.Next()
		if err != nil {
			return result, err
		}
		if !ok {
			return result, nil
		}

		if err := dst.Write(chunk); err != nil {
			return result, err
		}
		_, _ = hasher.Write(chunk)
		result.Bytes += int64(len(chunk))

		if progress != nil {
			progress(result.Bytes, total)
		}
	}
}

type pathItem interface {
	Path() string
}

func checkDistinct(dst, src Item) error {
	dstFile, ok := dst.(pathItem)
	if !ok {
		return nil
	}
	srcFile, ok := src.(pathItem)
	if !ok {
		return nil
	}
	return SameFileCheck(dstFile.Path(), srcFile.Path())
}

// SameFileCheck returns an ErrSameFile item error when dst exists and is the
// same file as src. A missing dst or src is not an error here.
func SameFileCheck(dst, src string) error {
	dstInfo, err := os.Stat(dst)
	if err != nil {
		return nil
	}
	srcInfo, err := os.Stat(src)
	if err != nil {
		return nil
	}
	if os.SameFile(dstInfo, srcInfo) {
		return &ItemError{Op: "copy", Name: dst, Kind: ErrResourceUnavailable, Err: ErrSameFile}
	}
	return nil
}
