package adapters

import (
	"archive/tar"
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"

	"variant-packager/internal/ports"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// TarArchiveAdapter extracts tar archives, optionally gzip, zstd or lz4
// compressed. The compression is detected from the leading bytes, not the
// file name.
type TarArchiveAdapter struct{}

func NewTarArchiveAdapter() TarArchiveAdapter {
	return TarArchiveAdapter{}
}

func (a TarArchiveAdapter) Extract(ctx context.Context, archivePath string, destDir string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		code := errbuilder.CodeInternal
		if errors.Is(err, os.ErrNotExist) {
			code = errbuilder.CodeNotFound
		}
		return errbuilder.New().
			WithCode(code).
			WithMsg(fmt.Sprintf("failed to open source archive %s", archivePath)).
			WithCause(err)
	}
	defer file.Close()

	reader, closeReader, err := decompress(bufio.NewReader(file))
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unreadable source archive %s", archivePath)).
			WithCause(err)
	}
	defer closeReader()

	count, err := extractStripped(ctx, tar.NewReader(reader), destDir)
	if err != nil {
		return err
	}
	log.Ctx(ctx).Debug().Str("archive", archivePath).Int("entries", count).Msg("archive extracted")
	return nil
}

func decompress(reader *bufio.Reader) (io.Reader, func(), error) {
	header, err := reader.Peek(4)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, err
	}
	switch {
	case bytes.HasPrefix(header, gzipMagic):
		gz, err := gzip.NewReader(reader)
		if err != nil {
			return nil, nil, err
		}
		return gz, func() { _ = gz.Close() }, nil
	case bytes.HasPrefix(header, zstdMagic):
		zr, err := zstd.NewReader(reader)
		if err != nil {
			return nil, nil, err
		}
		return zr, zr.Close, nil
	case bytes.HasPrefix(header, lz4Magic):
		return lz4.NewReader(reader), func() {}, nil
	default:
		return reader, func() {}, nil
	}
}

// extractStripped writes every entry below destDir with its first path
// component removed. All entries must share that component.
func extractStripped(ctx context.Context, reader *tar.Reader, destDir string) (int, error) {
	var top string
	count := 0
	for {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		header, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return count, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to read source archive").
				WithCause(err)
		}
		if header.Typeflag == tar.TypeXGlobalHeader {
			continue
		}
		first, rest, err := splitTopLevel(header.Name)
		if err != nil {
			return count, err
		}
		if top == "" {
			top = first
		} else if first != top {
			return count, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("archive has more than one top-level entry: %s and %s", top, first))
		}
		if rest == "" {
			if header.Typeflag != tar.TypeDir {
				return count, errbuilder.New().
					WithCode(errbuilder.CodeInvalidArgument).
					WithMsg(fmt.Sprintf("archive entry %s has no top-level directory to strip", header.Name))
			}
			continue
		}
		target := filepath.Join(destDir, filepath.FromSlash(rest))
		if err := writeEntry(reader, header, destDir, target, top); err != nil {
			return count, err
		}
		count++
	}
	if top == "" {
		return 0, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("source archive is empty")
	}
	return count, nil
}

func splitTopLevel(name string) (string, string, error) {
	cleaned := path.Clean(strings.TrimPrefix(name, "./"))
	if cleaned == "." || path.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unsafe archive entry %q", name))
	}
	first, rest, _ := strings.Cut(cleaned, "/")
	return first, rest, nil
}

func writeEntry(reader *tar.Reader, header *tar.Header, destDir string, target string, top string) error {
	if err := checkNoSymlinks(destDir, target, header.Name); err != nil {
		return err
	}
	mode := os.FileMode(header.Mode).Perm()
	switch header.Typeflag {
	case tar.TypeDir:
		if err := os.MkdirAll(target, mode|0o700); err != nil {
			return extractionWriteError(target, err)
		}
	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return extractionWriteError(target, err)
		}
		out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC|unix.O_NOFOLLOW, mode)
		if err != nil {
			return extractionWriteError(target, err)
		}
		if _, err := io.Copy(out, reader); err != nil {
			out.Close()
			return extractionWriteError(target, err)
		}
		if err := out.Close(); err != nil {
			return extractionWriteError(target, err)
		}
	case tar.TypeSymlink:
		if err := checkLinkTarget(destDir, target, header); err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return extractionWriteError(target, err)
		}
		if err := os.Symlink(header.Linkname, target); err != nil {
			return extractionWriteError(target, err)
		}
		return nil
	case tar.TypeLink:
		first, rest, err := splitTopLevel(header.Linkname)
		if err != nil {
			return err
		}
		if first != top || rest == "" {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("hard link %s points outside the source tree", header.Name))
		}
		source := filepath.Join(destDir, filepath.FromSlash(rest))
		if err := checkNoSymlinks(destDir, source, header.Linkname); err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return extractionWriteError(target, err)
		}
		if err := os.Link(source, target); err != nil {
			return extractionWriteError(target, err)
		}
		return nil
	default:
		return nil
	}
	if !header.ModTime.IsZero() {
		_ = os.Chtimes(target, header.ModTime, header.ModTime)
	}
	return nil
}

// checkNoSymlinks fails when any existing component of target below destDir,
// target included, is a symlink. Writing through one could land outside
// destDir.
func checkNoSymlinks(destDir string, target string, name string) error {
	rel, err := filepath.Rel(destDir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unsafe archive entry %q", name))
	}
	current := destDir
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		current = filepath.Join(current, part)
		info, err := os.Lstat(current)
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		if err != nil {
			return extractionWriteError(current, err)
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("unsafe archive entry %q: path goes through symlink %s", name, current))
		}
	}
	return nil
}

// checkLinkTarget rejects symlinks that are absolute or resolve above
// destDir.
func checkLinkTarget(destDir string, target string, header *tar.Header) error {
	link := header.Linkname
	unsafe := link == "" || path.IsAbs(link) || filepath.IsAbs(link)
	if !unsafe {
		rel, err := filepath.Rel(destDir, filepath.Join(filepath.Dir(target), filepath.FromSlash(link)))
		unsafe = err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
	}
	if unsafe {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unsafe symlink %q -> %q leaves the source tree", header.Name, link))
	}
	return nil
}

func extractionWriteError(target string, err error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(fmt.Sprintf("failed to write %s", target)).
		WithCause(err)
}

var _ ports.ArchiveExtractorPort = TarArchiveAdapter{}
