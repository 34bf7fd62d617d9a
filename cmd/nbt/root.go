package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vberlier/nbtlib/nbt"
	"github.com/vberlier/nbtlib/nbterr"
	"github.com/vberlier/nbtlib/nbtfile"
	"github.com/vberlier/nbtlib/nbtpath"
	"github.com/vberlier/nbtlib/snbt"
)

// maxScanDepth is the default stack-machine nesting budget for the
// CLI's own reads; library callers choose their own.
const maxScanDepth = 512

type options struct {
	readBinary string // -r
	readSNBT   string // -s

	writeBinary string // -w
	mergeInto   string // -m

	plain   bool
	little  bool
	compact bool
	pretty  bool
	unpack  bool
	json    bool
	path    string
	find    string
}

func newRootCmd() *cobra.Command {
	var o options

	cmd := &cobra.Command{
		Use:   "nbt",
		Short: "Inspect and edit NBT/SNBT data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, &o)
		},
		SilenceUsage: true,
	}

	flags := cmd.Flags()
	flags.StringVarP(&o.readBinary, "read-binary", "r", "", "read a binary (optionally gzip-compressed) NBT file")
	flags.StringVarP(&o.readSNBT, "read-snbt", "s", "", "read an SNBT text file")
	flags.StringVarP(&o.writeBinary, "write-binary", "w", "", "write the result as binary NBT to this path")
	flags.StringVarP(&o.mergeInto, "merge", "m", "", "merge the result as a patch into the existing NBT file at this path")

	flags.BoolVar(&o.plain, "plain", false, "write binary output uncompressed")
	flags.BoolVar(&o.little, "little", false, "use little-endian byte order")
	flags.BoolVar(&o.compact, "compact", false, "serialize SNBT with no insignificant whitespace")
	flags.BoolVar(&o.pretty, "pretty", false, "serialize SNBT with indentation")
	flags.BoolVar(&o.unpack, "unpack", false, "decompress gzip framing without re-compressing on write")
	flags.BoolVar(&o.json, "json", false, "print the result as JSON instead of SNBT")
	flags.StringVar(&o.path, "path", "", "narrow to the tags matched by this NBT Path expression before acting")
	flags.StringVar(&o.find, "find", "", "print only the first tag matched by this NBT Path expression")

	cmd.MarkFlagsMutuallyExclusive("read-binary", "read-snbt")
	cmd.MarkFlagsMutuallyExclusive("write-binary", "merge")
	cmd.MarkFlagsMutuallyExclusive("compact", "pretty")
	cmd.MarkFlagsMutuallyExclusive("path", "find")

	return cmd
}

func newLogger() *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		// Fall back to a no-op logger rather than failing the whole
		// command over a logging misconfiguration.
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}

func run(cmd *cobra.Command, o *options) error {
	log := newLogger()
	defer log.Sync()

	order := nbt.BigEndian
	if o.little {
		order = nbt.LittleEndian
	}

	name, root, sourcePath, sourceCompressed, err := load(o, order, log)
	if err != nil {
		log.Errorw("load failed", "error", err)
		return err
	}
	log.Infow("loaded document", "source", sourcePath, "outerName", name)

	var target nbt.Tag = root
	if o.path != "" || o.find != "" {
		expr := o.path
		if expr == "" {
			expr = o.find
		}
		p, err := nbtpath.Parse(expr)
		if err != nil {
			return err
		}
		if o.find != "" {
			t, ok := nbtpath.Find(&target, p)
			if !ok {
				return fmt.Errorf("nbt: path %q matched nothing", expr)
			}
			target = t
		} else {
			matches := nbtpath.GetAll(&target, p)
			if len(matches) == 1 {
				target = matches[0]
			} else {
				list := nbt.NewList(nbt.TagEnd, matches...)
				target = list
			}
		}
	}

	return write(cmd, o, log, name, target, sourceCompressed, order)
}

func load(o *options, order nbt.Endianness, log *zap.SugaredLogger) (name string, root nbt.Tag, sourcePath string, compressed bool, err error) {
	switch {
	case o.readBinary != "":
		f, err := os.Open(o.readBinary)
		if err != nil {
			return "", nil, "", false, err
		}
		defer f.Close()
		file, err := nbtfile.Load(f, order, maxScanDepth)
		if err != nil {
			return "", nil, "", false, err
		}
		return file.OuterName, file.Root, o.readBinary, file.Compressed, nil

	case o.readSNBT != "":
		data, err := os.ReadFile(o.readSNBT)
		if err != nil {
			return "", nil, "", false, err
		}
		tag, err := snbt.Parse(string(data))
		if err != nil {
			return "", nil, "", false, err
		}
		return "", tag, o.readSNBT, false, nil

	default:
		return "", nil, "", false, errors.New("nbt: one of -r/-s is required")
	}
}

func write(cmd *cobra.Command, o *options, log *zap.SugaredLogger, name string, tag nbt.Tag, sourceCompressed bool, order nbt.Endianness) error {
	out := cmd.OutOrStdout()

	switch {
	case o.writeBinary != "":
		return writeBinary(o, log, o.writeBinary, name, tag, sourceCompressed, order)

	case o.mergeInto != "":
		return mergeInto(o, log, name, tag, order)

	case o.json:
		data, err := nbt.MarshalJSON(tag)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err

	default:
		mode := snbt.Default
		switch {
		case o.compact:
			mode = snbt.Compact
		case o.pretty:
			mode = snbt.Pretty
		}
		_, err := io.WriteString(out, snbt.Serialize(tag, mode)+"\n")
		return err
	}
}

func writeBinary(o *options, log *zap.SugaredLogger, destPath string, name string, tag nbt.Tag, sourceCompressed bool, order nbt.Endianness) error {
	root, ok := tag.(*nbt.Compound)
	if !ok {
		return nbterr.ErrNotCompound
	}
	f, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer f.Close()
	file := &nbtfile.File{
		Root:       root,
		OuterName:  name,
		Compressed: sourceCompressed && !o.plain && !o.unpack,
		Order:      order,
	}
	log.Infow("writing document", "dest", destPath, "compressed", file.Compressed)
	return nbtfile.Save(f, file)
}

// mergeInto implements "-m NBT": the currently loaded document becomes
// the patch, recursively merged onto the existing file at o.mergeInto
// per the File container's merge semantics, then written back to the
// same path.
func mergeInto(o *options, log *zap.SugaredLogger, name string, tag nbt.Tag, order nbt.Endianness) error {
	patchRoot, ok := tag.(*nbt.Compound)
	if !ok {
		return nbterr.ErrNotCompound
	}

	existing, err := os.Open(o.mergeInto)
	if err != nil {
		return err
	}
	target, err := nbtfile.Load(existing, order, maxScanDepth)
	existing.Close()
	if err != nil {
		return err
	}

	patch := &nbtfile.File{Root: patchRoot, OuterName: name, Order: order}
	n := nbtfile.Merge(target, patch)
	log.Infow("merged document", "dest", o.mergeInto, "keysChanged", n)

	target.Compressed = target.Compressed && !o.plain && !o.unpack
	f, err := os.Create(o.mergeInto)
	if err != nil {
		return err
	}
	defer f.Close()
	return nbtfile.Save(f, target)
}

func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, nbterr.ErrUnexpectedEOF), errors.Is(err, nbterr.ErrInvalidType):
		return 2
	case errors.Is(err, nbterr.ErrPathSyntax):
		return 3
	case errors.Is(err, nbterr.ErrNotCompound):
		return 4
	default:
		return 1
	}
}
