// xlarun loads HLO modules, describes them and optionally compiles and executes them.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/gomlx/goxla/internal/runconfig"
	"github.com/gomlx/goxla/xla"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

var (
	flagRunFile     = flag.String("run", "", "TOML run file with the modules to run and their inputs.")
	flagHloFile     = flag.String("hlo", "", "HLO module file (.hlo, .pb or .pbtxt) to run with float32 scalar inputs given as arguments. Ignored if -run is given.")
	flagPlatform    = flag.String("platform", "", "Platform to use: cpu, gpu or tpu. It overrides the run file, and defaults to $"+xla.PlatformEnvVar+" or cpu.")
	flagDescribe    = flag.Bool("describe", false, "Only describe the modules, don't compile or execute them.")
	flagOutput      = flag.String("out", "", "If set, the outputs are saved to this file in msgpack format.")
	flagParallelism = flag.Int("parallelism", 4, "Maximum number of module files loaded and parsed concurrently.")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `xlarun loads HLO modules (text, binary or text protos), prints a summary of each, and
compiles and executes them with the given inputs.

$ xlarun -run=<run_file.toml>
$ xlarun -hlo=<module_file> <x0> <x1> ...

With -hlo the inputs are float32 scalars. See internal/runconfig for the format of the run files.

Usage:
`)
		flag.PrintDefaults()
	}
	klog.InitFlags(flag.CommandLine)
	flag.Parse()

	runFile, err := loadRunFile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n\n", err)
		flag.Usage()
		os.Exit(1)
	}

	modules := must.M1(loadModules(runFile.Modules, *flagParallelism))
	defer func() {
		for _, m := range modules {
			m.proto.Destroy()
		}
	}()
	for _, m := range modules {
		fmt.Printf("Module %q:\n", m.config.Path)
		must.M(m.summary.Format(os.Stdout))
		fmt.Println()
	}
	if *flagDescribe {
		return
	}

	client := must.M1(xla.NewClient(must.M1(clientConfig(runFile))))
	defer client.Destroy()
	klog.V(1).Infof("using %s", client)
	results := make([]runconfig.Result, 0, len(modules))
	for _, m := range modules {
		result := must.M1(runModule(client, m))
		results = append(results, result)
	}
	if *flagOutput != "" {
		must.M(runconfig.WriteResults(*flagOutput, results))
		fmt.Printf("Results saved to %q\n", *flagOutput)
	}
}

// loadRunFile loads the run file given with -run, or creates one from -hlo and the arguments.
func loadRunFile() (*runconfig.File, error) {
	if *flagRunFile != "" {
		return runconfig.Load(*flagRunFile)
	}
	if *flagHloFile == "" {
		return nil, errors.New("either -run or -hlo must be given")
	}
	module := runconfig.Module{Path: *flagHloFile}
	for ii, arg := range flag.Args() {
		value, err := strconv.ParseFloat(arg, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid input #%d %q", ii, arg)
		}
		module.Inputs = append(module.Inputs, runconfig.Input{DType: "F32", Values: []float64{value}})
	}
	runFile := &runconfig.File{Modules: []runconfig.Module{module}}
	if err := runFile.Validate(); err != nil {
		return nil, err
	}
	return runFile, nil
}

// clientConfig combines the defaults, the run file options and the -platform flag.
func clientConfig(runFile *runconfig.File) (xla.ClientConfig, error) {
	// An invalid $GOXLA_PLATFORM is only an error if nothing overrides it.
	cfg, defaultErr := xla.DefaultClientConfig()
	platformName := runFile.Platform
	if *flagPlatform != "" {
		platformName = *flagPlatform
	}
	if platformName == "" && defaultErr != nil {
		return cfg, defaultErr
	}
	if platformName != "" {
		platform, err := xla.ParsePlatform(platformName)
		if err != nil {
			return cfg, err
		}
		cfg = cfg.WithPlatform(platform)
	}
	if runFile.GPU.MemoryFraction > 0 {
		cfg = cfg.WithGPUMemory(runFile.GPU.MemoryFraction, runFile.GPU.Preallocate)
	} else if runFile.GPU.Preallocate {
		cfg = cfg.WithGPUMemory(cfg.MemoryFraction, true)
	}
	if runFile.TPU.MaxInflightComputations > 0 {
		cfg = cfg.WithMaxInflightComputations(runFile.TPU.MaxInflightComputations)
	}
	return cfg, cfg.Validate()
}
