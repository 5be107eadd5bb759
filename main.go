package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"nitroshare/bundle"
	"nitroshare/config"
	"nitroshare/logging"
	"nitroshare/storage"
)

const usage = `usage:
  nitroshare describe FILE...      print the wire property record of each file
  nitroshare copy [-n] SRC [DIR]   copy SRC into DIR (default: download directory)
  nitroshare history [-limit N]    list recorded transfer items`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, cfgPath, err := config.LoadOrCreate()
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup failed while loading config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup failed while building logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()
	logger = logger.With(zap.String("device_id", cfg.DeviceID))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{cfg: cfg, dataDir: filepath.Dir(cfgPath), logger: logger, out: os.Stdout}
	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		logger.Error("command failed", zap.String("command", os.Args[1]), zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

type app struct {
	cfg     *config.Config
	dataDir string
	logger  *zap.Logger
	out     io.Writer
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "describe":
		return a.describe(args)
	case "copy":
		return a.copy(ctx, args)
	case "history":
		return a.history(args)
	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}
}

func (a *app) describe(paths []string) error {
	if len(paths) == 0 {
		return errors.New("describe: at least one file is required")
	}

	enc := json.NewEncoder(a.out)
	for _, path := range paths {
		item, err := bundle.NewFileItem(path)
		if err != nil {
			return err
		}
		if err := enc.Encode(item.Properties()); err != nil {
			return fmt.Errorf("encode properties for %q: %w", path, err)
		}
	}
	return nil
}

func (a *app) copy(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("copy", flag.ContinueOnError)
	noRecord := fs.Bool("n", false, "do not record the transfer in the history database")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 || fs.NArg() > 2 {
		return errors.New("copy: expected SRC [DIR]")
	}

	destDir := a.cfg.DownloadDirectory
	if fs.NArg() == 2 {
		destDir = fs.Arg(1)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}

	src, err := bundle.NewFileItem(fs.Arg(0))
	if err != nil {
		return err
	}

	// The receiving side only ever sees the wire record, so round-trip it.
	wire, err := json.Marshal(src.Properties())
	if err != nil {
		return fmt.Errorf("encode properties: %w", err)
	}
	var received bundle.Properties
	if err := json.Unmarshal(wire, &received); err != nil {
		return err
	}
	name, err := bundle.SafeName(received.Name)
	if err != nil {
		return err
	}
	if err := bundle.SameFileCheck(filepath.Join(destDir, name), src.Path()); err != nil {
		return err
	}

	finalPath, err := bundle.UniquePath(destDir, name)
	if err != nil {
		return err
	}
	tempPath := finalPath + ".part"
	dst := bundle.NewReceivingFileItem(tempPath, received)

	var (
		store    *storage.Store
		sendRow  storage.ItemRecord
		recvRow  storage.ItemRecord
		recorded bool
	)
	if !*noRecord {
		store, _, err = storage.Open(a.dataDir)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				a.logger.Warn("database close error", zap.Error(err))
			}
		}()

		if sendRow, err = store.RecordItem(storage.DirectionSend, src.Path(), src.Properties()); err != nil {
			return err
		}
		if recvRow, err = store.RecordItem(storage.DirectionReceive, finalPath, received); err != nil {
			return err
		}
		recorded = true
	}

	result, copyErr := a.receive(ctx, dst, src, finalPath, received)

	if recorded {
		status := storage.StatusComplete
		if copyErr != nil {
			status = storage.StatusFailed
		}
		for _, id := range []string{sendRow.ItemID, recvRow.ItemID} {
			if err := store.UpdateItemStatus(id, status, result.Checksum); err != nil {
				a.logger.Warn("record transfer status failed", zap.String("item_id", id), zap.Error(err))
			}
		}
	}
	if copyErr != nil {
		return copyErr
	}

	fmt.Fprintf(a.out, "%s  %s (%d bytes)\n", result.Checksum, finalPath, result.Bytes)
	return nil
}

// receive copies src into the temp item dst and moves it to finalPath once
// the bytes and attributes are in place. The temp file is removed on failure.
func (a *app) receive(ctx context.Context, dst *bundle.FileItem, src bundle.Item, finalPath string, props bundle.Properties) (bundle.CopyResult, error) {
	result, err := bundle.Copy(ctx, dst, src, bundle.CopyOptions{
		ChunkSize: a.cfg.ChunkSize,
		Logger:    a.logger,
	})
	if err == nil && a.cfg.ShouldApplyAttributes() {
		err = bundle.ApplyAttributes(dst.Path(), props)
	}
	if err == nil {
		if renameErr := os.Rename(dst.Path(), finalPath); renameErr != nil {
			err = fmt.Errorf("finalize received file: %w", renameErr)
		}
	}
	if err != nil {
		if removeErr := os.Remove(dst.Path()); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			a.logger.Warn("remove partial file failed", zap.String("path", dst.Path()), zap.Error(removeErr))
		}
		return result, err
	}
	return result, nil
}

func (a *app) history(args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "maximum number of rows")
	direction := fs.String("direction", "", "send or receive; empty for both")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, _, err := storage.Open(a.dataDir)
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()

	items, err := store.ListItems(*direction, *limit)
	if err != nil {
		return err
	}
	for _, item := range items {
		fmt.Fprintf(a.out, "%s  %-7s  %-8s  %10d  %s\n", item.ItemID, item.Direction, item.TransferStatus, item.Size, item.StoredPath)
	}
	return nil
}
