package store

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

const (
	csvExt     = ".csv"
	archiveExt = ".zst"
)

// Archiver compresses and extracts the state space file of one solution.
type Archiver interface {
	// Compress archives dir/name.csv into dir/name.zst and removes the csv.
	Compress(dir, name string) error
	// Decompress extracts dir/name.csv from dir/name.zst. A missing archive
	// is reported as fs.ErrNotExist.
	Decompress(dir, name string) error
}

// Nop keeps state spaces as plain csv files.
type Nop struct{}

func (Nop) Compress(dir, name string) error { return nil }

func (Nop) Decompress(dir, name string) error {
	_, err := os.Stat(filepath.Join(dir, name+csvExt))
	return err
}

// TarZstd writes a tar stream holding name.csv compressed with zstd, the same
// layout `tar -I zstd` produces, without leaving the process.
type TarZstd struct {
	Level zstd.EncoderLevel
}

func (a TarZstd) Compress(dir, name string) error {
	src := filepath.Join(dir, name+csvExt)
	dst := filepath.Join(dir, name+archiveExt)

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open state space: %w", err)
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat state space: %w", err)
	}

	tmp := dst + ".tmp"
	if err := writeArchive(tmp, in, info, a.level()); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename archive: %w", err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("remove state space: %w", err)
	}
	return nil
}

func (a TarZstd) level() zstd.EncoderLevel {
	if a.Level == 0 {
		return zstd.SpeedBetterCompression
	}
	return a.Level
}

func writeArchive(path string, in io.Reader, info fs.FileInfo, level zstd.EncoderLevel) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer f.Close()

	zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(level))
	if err != nil {
		return fmt.Errorf("zstd writer: %w", err)
	}
	tw := tar.NewWriter(zw)

	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("tar header: %w", err)
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("tar header: %w", err)
	}
	if _, err := io.Copy(tw, in); err != nil {
		return fmt.Errorf("tar body: %w", err)
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("close tar: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close zstd: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync archive: %w", err)
	}
	return f.Close()
}

func (TarZstd) Decompress(dir, name string) error {
	f, err := os.Open(filepath.Join(dir, name+archiveExt))
	if err != nil {
		return err
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return fmt.Errorf("zstd reader: %w", err)
	}
	defer zr.Close()

	want := name + csvExt
	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("archive has no %s", want)
		}
		if err != nil {
			return fmt.Errorf("read archive: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg || filepath.Base(hdr.Name) != want {
			continue
		}
		return extract(filepath.Join(dir, want), tr)
	}
}

func extract(path string, r io.Reader) error {
	tmp := path + ".tmp"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create state space: %w", err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("extract state space: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close state space: %w", err)
	}
	return os.Rename(tmp, path)
}

// ExecTar runs an external tar with zstd support, e.g. GNU tar.
type ExecTar struct {
	Bin string
}

func (a ExecTar) bin() string {
	if a.Bin == "" {
		return "tar"
	}
	return a.Bin
}

func (a ExecTar) Compress(dir, name string) error {
	archive := filepath.Join(dir, name+archiveExt)
	cmd := exec.Command(a.bin(), "-c", "-I", "zstd", "-f", archive, "-C", dir, name+csvExt)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", cmd, err, out)
	}
	if err := os.Remove(filepath.Join(dir, name+csvExt)); err != nil {
		return fmt.Errorf("remove state space: %w", err)
	}
	return nil
}

func (a ExecTar) Decompress(dir, name string) error {
	archive := filepath.Join(dir, name+archiveExt)
	if _, err := os.Stat(archive); err != nil {
		return err
	}
	cmd := exec.Command(a.bin(), "-x", "-I", "zstd", "-f", archive, "-C", dir)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", cmd, err, out)
	}
	return nil
}
