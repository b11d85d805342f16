package runconfig

import (
	"io"
	"os"
	"path/filepath"

	"github.com/gomlx/goxla/dtypes"
	"github.com/gomlx/goxla/shapes"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// Result holds the outputs of the execution of one module.
type Result struct {
	Module  string   `msgpack:"module"`
	Outputs []Output `msgpack:"outputs"`
}

// Output is one array output of an execution.
type Output struct {
	// Device (replica) index that produced the output.
	Device int `msgpack:"device"`

	// DType is the name of the element type, e.g. "F32".
	DType string  `msgpack:"dtype"`
	Dims  []int64 `msgpack:"dims"`

	// Data is the raw contents of the array in row-major order, in the host's byte order.
	Data []byte `msgpack:"data"`
}

// Validate checks that the size of Data matches the element type and dimensions.
func (o *Output) Validate() error {
	et, err := dtypes.ElementTypeFromName(o.DType)
	if err != nil {
		return err
	}
	for _, dim := range o.Dims {
		if dim < 0 {
			return errors.Errorf("output with dynamic dims %v", o.Dims)
		}
	}
	size, err := shapes.MakeArrayShape(et, o.Dims...).SizeInBytes()
	if err != nil {
		return err
	}
	if size != int64(len(o.Data)) {
		return errors.Errorf("output %s%v requires %d bytes of data, got %d", o.DType, o.Dims, size, len(o.Data))
	}
	return nil
}

// EncodeResults writes the results in msgpack format to w.
func EncodeResults(w io.Writer, results []Result) error {
	if err := msgpack.NewEncoder(w).Encode(results); err != nil {
		return errors.Wrap(err, "failed to encode results")
	}
	return nil
}

// DecodeResults reads results written by EncodeResults.
func DecodeResults(r io.Reader) ([]Result, error) {
	var results []Result
	if err := msgpack.NewDecoder(r).Decode(&results); err != nil {
		return nil, errors.Wrap(err, "failed to decode results")
	}
	for _, result := range results {
		for ii := range result.Outputs {
			if err := result.Outputs[ii].Validate(); err != nil {
				return nil, errors.WithMessagef(err, "module %q, output #%d", result.Module, ii)
			}
		}
	}
	return results, nil
}

// WriteResults writes the results to path, replacing it atomically.
func WriteResults(path string, results []Result) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrapf(err, "failed to create results file for %q", path)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()
	if err = EncodeResults(f, results); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return errors.Wrapf(err, "failed to write results to %q", f.Name())
	}
	if err = os.Rename(f.Name(), path); err != nil {
		return errors.Wrapf(err, "failed to move results to %q", path)
	}
	return nil
}

// ReadResults reads a results file written with WriteResults.
func ReadResults(path string) ([]Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open results file %q", path)
	}
	defer func() { _ = f.Close() }()
	results, err := DecodeResults(f)
	if err != nil {
		return nil, errors.WithMessagef(err, "results file %q", path)
	}
	return results, nil
}
