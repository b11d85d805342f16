// Package runconfig defines the run files used by xlarun, and the encoding of the results it dumps.
//
// A run file is a TOML file with the client options and the list of HLO modules to run, each with
// its input values. Example:
//
//	platform = "cpu"
//
//	[[module]]
//	path = "add_one.hlo"
//
//	[[module.input]]
//	dtype = "F32"
//	dims = [3]
//	values = [1, 2, 3]
package runconfig

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// File is the contents of a run file.
type File struct {
	// Platform to run on: "cpu", "gpu" or "tpu". If empty, the default platform is used.
	Platform string     `toml:"platform"`
	GPU      GPUOptions `toml:"gpu"`
	TPU      TPUOptions `toml:"tpu"`
	Modules  []Module   `toml:"module"`
}

// GPUOptions configures GPU clients.
type GPUOptions struct {
	// MemoryFraction of the GPU memory the client may use. If 0 the library default is used.
	MemoryFraction float64 `toml:"memory_fraction"`
	Preallocate    bool    `toml:"preallocate"`
}

// TPUOptions configures TPU clients.
type TPUOptions struct {
	// MaxInflightComputations enqueued at once. If 0 the library default is used.
	MaxInflightComputations int `toml:"max_inflight_computations"`
}

// Format of an HLO module file.
type Format string

const (
	// FormatText is the HLO text format, usually with the extension ".hlo" or ".txt".
	FormatText Format = "text"

	// FormatProto is a binary serialized HloModuleProto, usually with the extension ".pb".
	FormatProto Format = "proto"

	// FormatProtoText is an HloModuleProto in the protobuf text format, usually with the extension ".pbtxt".
	FormatProtoText Format = "pbtxt"
)

// FormatFromPath guesses the format of an HLO module file from its extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hlo", ".txt":
		return FormatText, nil
	case ".pb":
		return FormatProto, nil
	case ".pbtxt":
		return FormatProtoText, nil
	}
	return "", errors.Errorf("can't guess the format of HLO module file %q, set it explicitly", path)
}

// Module is an HLO module to compile and execute, with the values of its parameters.
type Module struct {
	Path string `toml:"path"`

	// Format of the file. If empty, it is guessed from the file extension.
	Format Format `toml:"format"`

	Inputs []Input `toml:"input"`
}

// ResolvedFormat returns the Format of the module, guessing it from the path if not set.
func (m *Module) ResolvedFormat() (Format, error) {
	switch m.Format {
	case FormatText, FormatProto, FormatProtoText:
		return m.Format, nil
	case "":
		return FormatFromPath(m.Path)
	}
	return "", errors.Errorf("module %q: unknown format %q, valid values are %q, %q and %q",
		m.Path, m.Format, FormatText, FormatProto, FormatProtoText)
}

// Load reads and validates a run file. Relative module paths are resolved against the directory
// of the run file.
func Load(path string) (*File, error) {
	f := &File{}
	meta, err := toml.DecodeFile(path, f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse run file %q", path)
	}
	if err := checkUndecoded(meta); err != nil {
		return nil, errors.WithMessagef(err, "run file %q", path)
	}
	dir := filepath.Dir(path)
	for ii := range f.Modules {
		if p := f.Modules[ii].Path; p != "" && !filepath.IsAbs(p) {
			f.Modules[ii].Path = filepath.Join(dir, p)
		}
	}
	if err := f.Validate(); err != nil {
		return nil, errors.WithMessagef(err, "run file %q", path)
	}
	return f, nil
}

// Parse decodes and validates the contents of a run file. Module paths are kept as given.
func Parse(data string) (*File, error) {
	f := &File{}
	meta, err := toml.Decode(data, f)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse run file")
	}
	if err := checkUndecoded(meta); err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// checkUndecoded reports keys in the run file that don't correspond to any option, usually typos.
func checkUndecoded(meta toml.MetaData) error {
	undecoded := meta.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}
	keys := make([]string, len(undecoded))
	for ii, key := range undecoded {
		keys[ii] = key.String()
	}
	return errors.Errorf("unknown keys %s", strings.Join(keys, ", "))
}

// Validate checks the options and the inputs of every module.
func (f *File) Validate() error {
	switch strings.ToLower(f.Platform) {
	case "", "cpu", "host", "gpu", "cuda", "tpu":
	default:
		return errors.Errorf("unknown platform %q", f.Platform)
	}
	if f.GPU.MemoryFraction < 0 || f.GPU.MemoryFraction > 1 {
		return errors.Errorf("gpu.memory_fraction must be in [0, 1], got %g", f.GPU.MemoryFraction)
	}
	if f.TPU.MaxInflightComputations < 0 {
		return errors.Errorf("tpu.max_inflight_computations must be >= 0, got %d", f.TPU.MaxInflightComputations)
	}
	if len(f.Modules) == 0 {
		return errors.New("no [[module]] given")
	}
	for ii := range f.Modules {
		m := &f.Modules[ii]
		if m.Path == "" {
			return errors.Errorf("module #%d: missing path", ii)
		}
		if _, err := m.ResolvedFormat(); err != nil {
			return err
		}
		for inputIdx := range m.Inputs {
			if err := m.Inputs[inputIdx].Validate(); err != nil {
				return errors.WithMessagef(err, "module %q, input #%d", m.Path, inputIdx)
			}
		}
	}
	return nil
}

// ReadFile is a shortcut to os.ReadFile with a more informative error.
func (m *Module) ReadFile() ([]byte, error) {
	data, err := os.ReadFile(m.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read HLO module %q", m.Path)
	}
	return data, nil
}
