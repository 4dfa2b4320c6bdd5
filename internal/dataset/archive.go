package dataset

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/facepk/internal/domain"
)

// MaxExtractBytes caps the total uncompressed size of an imported archive
const MaxExtractBytes int64 = 512 << 20

// ImportArchive unpacks a ZIP of <member_key>/* folders into a fresh
// directory under parent and returns the photo root to train from. The
// archive layout is not validated beyond keeping entries inside that
// directory.
func ImportArchive(data []byte, parent string, registry *domain.Registry) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", domain.ErrInvalidArchive.WithError(err)
	}

	dest := filepath.Join(parent, "import-"+uuid.NewString())
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return "", fmt.Errorf("create import root: %w", err)
	}

	if err := extract(zr, dest); err != nil {
		_ = os.RemoveAll(dest)
		return "", err
	}

	return resolveRoot(dest, registry), nil
}

func extract(zr *zip.Reader, dest string) error {
	var written int64

	for _, f := range zr.File {
		target, err := safeJoin(dest, f.Name)
		if err != nil {
			return domain.ErrInvalidArchive.WithError(err)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", target, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", filepath.Dir(target), err)
		}

		n, err := extractFile(f, target, MaxExtractBytes-written)
		if err != nil {
			return err
		}
		written += n
	}

	return nil
}

func extractFile(f *zip.File, target string, budget int64) (int64, error) {
	rc, err := f.Open()
	if err != nil {
		return 0, domain.ErrInvalidArchive.WithError(fmt.Errorf("open %s: %w", f.Name, err))
	}
	defer func() {
		_ = rc.Close()
	}()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", target, err)
	}
	defer func() {
		_ = out.Close()
	}()

	n, err := io.Copy(out, io.LimitReader(rc, budget+1))
	if err != nil {
		return n, domain.ErrInvalidArchive.WithError(fmt.Errorf("extract %s: %w", f.Name, err))
	}
	if n > budget {
		return n, domain.ErrInvalidArchive.WithError(fmt.Errorf("archive expands beyond %d bytes", MaxExtractBytes))
	}

	return n, nil
}

// safeJoin rejects entries that would land outside dest
func safeJoin(dest, name string) (string, error) {
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("absolute path %q in archive", name)
	}
	target := filepath.Join(dest, filepath.FromSlash(name))
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("entry %q escapes the import root", name)
	}
	return target, nil
}

// resolveRoot descends into a single wrapping directory when no member
// folder sits at the top of the archive.
func resolveRoot(dest string, registry *domain.Registry) string {
	if hasMemberFolder(dest, registry) {
		return dest
	}

	entries, err := os.ReadDir(dest)
	if err != nil {
		return dest
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), "__MACOSX") && !strings.HasPrefix(e.Name(), ".") {
			dirs = append(dirs, e.Name())
		}
	}
	if len(dirs) == 1 {
		inner := filepath.Join(dest, dirs[0])
		if hasMemberFolder(inner, registry) {
			return inner
		}
	}

	return dest
}

func hasMemberFolder(root string, registry *domain.Registry) bool {
	for _, key := range registry.Keys() {
		if info, err := os.Stat(filepath.Join(root, key)); err == nil && info.IsDir() {
			return true
		}
	}
	return false
}
