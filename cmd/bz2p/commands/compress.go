package commands

import (
	"context"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jzebedee/bz2portable/pkg/cli"
	"github.com/jzebedee/bz2portable/pkg/codec"
	"github.com/jzebedee/bz2portable/pkg/manifest"
	"github.com/jzebedee/bz2portable/pkg/namefilter"
	"github.com/jzebedee/bz2portable/pkg/storage"
)

var (
	compressAlgorithm  string
	compressLevel      int
	compressCapacity   int
	compressInclude    string
	compressIgnoreCase bool
	compressStore      string
	compressNoManifest bool
)

var compressCmd = &cobra.Command{
	Use:   "compress PATH...",
	Short: "Compress files into the store",
	Long: `Compress files, or every regular file below a directory, into the store.

Each archive is named after the file's path relative to the directory it was
found in, plus the algorithm's extension. Files found by walking a directory
are matched against --include, a filter expression of ';'-separated regular
expressions where a leading '-' excludes. Files named explicitly are always
compressed.

With a single "-" argument, stdin is compressed to stdout and nothing is
stored or recorded.

Examples:
  bz2p compress notes.txt
  bz2p compress ./logs --include '\.log$;-^old/' -a zstd -l 6
  tar c src | bz2p compress - > src.tar.bz2`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCompress,
}

func init() {
	f := compressCmd.Flags()
	f.StringVarP(&compressAlgorithm, "algorithm", "a", "", "codec: bzip2, gzip, zstd, lz4, none (default from config)")
	f.IntVarP(&compressLevel, "level", "l", 0, "compression level 1..9, 0 for the codec default")
	f.IntVar(&compressCapacity, "capacity", 0, "buffer channel capacity in bytes (default from config)")
	f.StringVar(&compressInclude, "include", "", "filter expression applied to files found in directories")
	f.BoolVarP(&compressIgnoreCase, "ignore-case", "i", false, "match --include case-insensitively")
	f.StringVar(&compressStore, "store", "", "store URL overriding the config (directory or s3://bucket/prefix)")
	f.BoolVar(&compressNoManifest, "no-manifest", false, "do not record archives in the manifest")

	rootCmd.AddCommand(compressCmd)
}

// stageOptions merges flags over the config.
func stageOptions(cmd *cobra.Command, algorithm string, level, capacity int) (codec.Options, error) {
	opts := codec.Options{
		Algorithm: codec.Algorithm(globalConfig.Algorithm),
		Level:     globalConfig.Level,
		Capacity:  globalConfig.Capacity,
		Logger:    logger,
	}
	if algorithm != "" {
		opts.Algorithm = codec.Algorithm(algorithm)
	}
	if cmd.Flags().Changed("level") {
		opts.Level = level
	}
	if capacity != 0 {
		opts.Capacity = capacity
	}
	alg, err := codec.ParseAlgorithm(string(opts.Algorithm))
	if err != nil {
		return codec.Options{}, err
	}
	opts.Algorithm = alg
	return opts, nil
}

func runCompress(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	opts, err := stageOptions(cmd, compressAlgorithm, compressLevel, compressCapacity)
	if err != nil {
		return err
	}

	if len(args) == 1 && args[0] == "-" {
		return pipe(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), codec.Encode, opts)
	}

	var filterOpts []namefilter.Option
	if compressIgnoreCase {
		filterOpts = append(filterOpts, namefilter.WithIgnoreCase())
	}
	filter, err := namefilter.Parse(compressInclude, filterOpts...)
	if err != nil {
		return err
	}

	var sources []sourceFile
	for _, arg := range args {
		found, err := collectFiles(arg, filter)
		if err != nil {
			return err
		}
		sources = append(sources, found...)
	}
	if err := checkNames(sources); err != nil {
		return err
	}

	store, err := openStore(ctx, compressStore)
	if err != nil {
		return err
	}

	var m *manifest.Manifest
	if !compressNoManifest {
		var closeManifest func() error
		m, closeManifest, err = openManifest()
		if err != nil {
			return err
		}
		defer closeManifest()
	}

	records := make([]manifest.Record, 0, len(sources))
	for _, src := range sources {
		rec, err := compressFile(ctx, store, src, opts)
		if err != nil {
			return err
		}
		if m != nil {
			if rec, err = m.Put(ctx, rec); err != nil {
				return err
			}
		}
		records = append(records, rec)
		cli.PrintSuccess(cmd.ErrOrStderr(), "%s  %s -> %s (%s)",
			rec.Name, cli.FormatBytes(rec.RawSize), cli.FormatBytes(rec.PackedSize), cli.FormatRatio(rec.RawSize, rec.PackedSize))
	}
	return output(cmd, records)
}

type sourceFile struct {
	path string
	name string
}

// collectFiles expands root into the files to compress. Names are
// slash-separated and relative to root when root is a directory.
func collectFiles(root string, filter *namefilter.Filter) ([]sourceFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []sourceFile{{path: root, name: filepath.Base(root)}}, nil
	}

	var files []sourceFile
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !filter.Match(rel) {
			logger.Debug("skipped by filter", "name", rel)
			return nil
		}
		files = append(files, sourceFile{path: path, name: rel})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		logger.Warn("no files matched", "dir", root, "include", filter.String())
	}
	return files, nil
}

// checkNames rejects sources that would be stored under the same archive
// name, such as a/x.txt and b/x.txt named on one command line.
func checkNames(sources []sourceFile) error {
	seen := make(map[string]string, len(sources))
	for _, src := range sources {
		if prev, ok := seen[src.name]; ok {
			return fmt.Errorf("%s and %s would both be archived as %q", prev, src.path, src.name)
		}
		seen[src.name] = src.path
	}
	return nil
}

func compressFile(ctx context.Context, store storage.FileStore, src sourceFile, opts codec.Options) (manifest.Record, error) {
	f, err := os.Open(src.path)
	if err != nil {
		return manifest.Record{}, err
	}
	defer f.Close()

	crc := crc32.NewIEEE()
	stage, err := codec.Encode(ctx, io.TeeReader(f, crc), opts)
	if err != nil {
		return manifest.Record{}, err
	}
	defer stage.Close()

	name := src.name + opts.Algorithm.Extension()
	if err := copyToStore(ctx, store, name, stage); err != nil {
		return manifest.Record{}, fmt.Errorf("compress %s: %w", src.path, err)
	}

	stats := stage.Stats()
	logger.Debug("compressed", "name", name, "in", stats.In, "out", stats.Out)
	return manifest.Record{
		Name:       name,
		Source:     src.path,
		Algorithm:  string(opts.Algorithm),
		Level:      opts.Level,
		RawSize:    stats.In,
		PackedSize: stats.Out,
		CRC32:      crc.Sum32(),
	}, nil
}

// copyToStore writes r to name in store. On failure the partial file is
// removed.
func copyToStore(ctx context.Context, store storage.FileStore, name string, r io.Reader) error {
	w, err := store.Write(ctx, name)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, r)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		if derr := store.Delete(ctx, name); derr != nil {
			err = errors.Join(err, derr)
		}
		return err
	}
	return nil
}

type stageFunc func(context.Context, io.Reader, codec.Options) (*codec.Stage, error)

// pipe runs one stage from in to out.
func pipe(ctx context.Context, in io.Reader, out io.Writer, start stageFunc, opts codec.Options) error {
	stage, err := start(ctx, in, opts)
	if err != nil {
		return err
	}
	_, err = io.Copy(out, stage)
	if cerr := stage.Close(); err == nil {
		err = cerr
	}
	return err
}
