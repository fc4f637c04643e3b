package commands

import (
	"context"
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/spf13/cobra"

	"github.com/jzebedee/bz2portable/pkg/cli"
	"github.com/jzebedee/bz2portable/pkg/codec"
	"github.com/jzebedee/bz2portable/pkg/manifest"
	"github.com/jzebedee/bz2portable/pkg/storage"
)

// ErrChecksum is returned when restored data does not match the manifest.
var ErrChecksum = errors.New("checksum mismatch")

var (
	decompressAlgorithm string
	decompressCapacity  int
	decompressDir       string
	decompressStore     string
	decompressStdout    bool
)

var decompressCmd = &cobra.Command{
	Use:   "decompress ARCHIVE...",
	Short: "Restore archives from the store",
	Long: `Restore archives from the store into a local directory.

ARCHIVE is a manifest ID, an archive name recorded in the manifest, or a
plain object name in the store. When the manifest knows the archive, its
algorithm is used and the restored data is checked against the recorded
CRC-32; --algorithm overrides the algorithm but keeps the check. Otherwise
the algorithm comes from --algorithm or the name's extension.

With a single "-" argument, stdin is decompressed to stdout.

Examples:
  bz2p decompress notes.txt.bz2 -d ./restored
  bz2p decompress 0b6f0a3e-5c1e-4bb8-9a51-1d2c1f6b0f7e -c
  curl -s https://example.com/data.zst | bz2p decompress - -a zstd`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDecompress,
}

func init() {
	f := decompressCmd.Flags()
	f.StringVarP(&decompressAlgorithm, "algorithm", "a", "", "codec, overriding the manifest record and the extension")
	f.IntVar(&decompressCapacity, "capacity", 0, "buffer channel capacity in bytes (default from config)")
	f.StringVarP(&decompressDir, "dir", "d", ".", "directory to restore into")
	f.StringVar(&decompressStore, "store", "", "store URL overriding the config")
	f.BoolVarP(&decompressStdout, "stdout", "c", false, "write restored data to stdout")

	rootCmd.AddCommand(decompressCmd)
}

func runDecompress(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if len(args) == 1 && args[0] == "-" {
		opts, err := stageOptions(cmd, decompressAlgorithm, 0, decompressCapacity)
		if err != nil {
			return err
		}
		return pipe(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), codec.Decode, opts)
	}

	store, err := openStore(ctx, decompressStore)
	if err != nil {
		return err
	}
	var out storage.FileStore
	if !decompressStdout {
		if out, err = storage.NewLocal(decompressDir); err != nil {
			return err
		}
	}
	m, closeManifest, err := openManifest()
	if err != nil {
		return err
	}
	defer closeManifest()

	for _, arg := range args {
		a, err := resolveArchive(ctx, m, arg)
		if err != nil {
			return err
		}
		opts, err := stageOptions(cmd, string(a.algorithm), 0, decompressCapacity)
		if err != nil {
			return err
		}

		target := codec.TrimExtension(a.name, opts.Algorithm)
		if target == a.name {
			target += ".out"
		}
		n, err := restore(ctx, store, out, cmd.OutOrStdout(), a, target, opts)
		if err != nil {
			return fmt.Errorf("decompress %s: %w", a.name, err)
		}
		if out != nil {
			cli.PrintSuccess(cmd.ErrOrStderr(), "%s -> %s (%s)", a.name, target, cli.FormatBytes(n))
		}
	}
	return nil
}

type archive struct {
	name      string
	algorithm codec.Algorithm
	crc       *uint32
}

// resolveArchive finds arg in the manifest. --algorithm replaces only the
// recorded algorithm, so the recorded CRC-32 is still checked.
func resolveArchive(ctx context.Context, m *manifest.Manifest, arg string) (archive, error) {
	a := archive{name: arg}
	rec, err := m.Lookup(ctx, arg)
	switch {
	case err == nil:
		a = archive{name: rec.Name, algorithm: codec.Algorithm(rec.Algorithm), crc: &rec.CRC32}
	case !errors.Is(err, manifest.ErrNotFound):
		return archive{}, err
	}
	if decompressAlgorithm != "" {
		a.algorithm = codec.Algorithm(decompressAlgorithm)
		return a, nil
	}
	if a.crc != nil {
		return a, nil
	}
	a.algorithm = codec.DetectAlgorithm(arg)
	if a.algorithm == codec.None {
		return archive{}, fmt.Errorf("cannot detect algorithm of %q, use --algorithm", arg)
	}
	return a, nil
}

// restore decodes a from store into out (or w when out is nil) and verifies
// the CRC-32 when known.
func restore(ctx context.Context, store, out storage.FileStore, w io.Writer, a archive, target string, opts codec.Options) (int64, error) {
	rc, err := store.Read(ctx, a.name)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	stage, err := codec.Decode(ctx, rc, opts)
	if err != nil {
		return 0, err
	}
	defer stage.Close()

	crc := crc32.NewIEEE()
	if out == nil {
		if _, err := io.Copy(io.MultiWriter(w, crc), stage); err != nil {
			return 0, err
		}
	} else {
		if err := copyToStore(ctx, out, target, io.TeeReader(stage, crc)); err != nil {
			return 0, err
		}
	}

	if a.crc != nil && crc.Sum32() != *a.crc {
		err := fmt.Errorf("%w: got %08x, want %08x", ErrChecksum, crc.Sum32(), *a.crc)
		if out != nil {
			if derr := out.Delete(ctx, target); derr != nil {
				err = errors.Join(err, derr)
			}
		}
		return 0, err
	}
	return stage.Stats().Out, nil
}
