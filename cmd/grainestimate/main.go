package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/avpicture/filmgrain"
	"github.com/xaionaro-go/avpicture/imageio"
	"github.com/xaionaro-go/avpicture/plane"
	"github.com/xaionaro-go/observability"
)

type result struct {
	Path       string           `json:"path"`
	Model      *filmgrain.Model `json:"model,omitempty"`
	SEI        string           `json:"sei,omitempty"`
	Skipped    []string         `json:"skipped,omitempty"`
	Error      string           `json:"error,omitempty"`
	payloadLen int
}

type options struct {
	Components         string
	BlockSize          int
	WindowSize         int
	LowIntensityRatio  float64
	DilationIterations int
	ErosionIterations  int
	PaddingWidth       int
	PaddingHeight      int
	MaskPath           string
	DenoisedPath       string
}

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "syntax: %s [options] <image> [<image> ...]\n", os.Args[0])
		pflag.PrintDefaults()
	}

	loggerLevel := logger.LevelWarning
	pflag.Var(&loggerLevel, "log-level", "Log level")
	defaults := filmgrain.DefaultConfig(0, 0)
	var opts options
	pflag.StringVar(&opts.Components, "components", "y,u,v", "comma separated components to analyze")
	pflag.IntVar(&opts.BlockSize, "block-size", defaults.BlockSize, "size of the blocks used to estimate the cutoff frequencies")
	pflag.IntVar(&opts.WindowSize, "window-size", defaults.WindowSize, "size of the windows used to measure the grain strength")
	pflag.Float64Var(&opts.LowIntensityRatio, "low-intensity-ratio", defaults.LowIntensityRatio, "samples darker than this share of the maximum value are not analyzed")
	pflag.IntVar(&opts.DilationIterations, "dilations", defaults.DilationIterations, "dilations of the edge mask")
	pflag.IntVar(&opts.ErosionIterations, "erosions", defaults.ErosionIterations, "erosions of the edge mask")
	pflag.IntVar(&opts.PaddingWidth, "padding-width", 0, "luma columns on the right edge excluded from the analysis")
	pflag.IntVar(&opts.PaddingHeight, "padding-height", 0, "luma rows on the bottom edge excluded from the analysis")
	pflag.StringVar(&opts.MaskPath, "mask", "", "image whose non-zero samples are excluded from the analysis")
	pflag.StringVar(&opts.DenoisedPath, "denoised", "", "denoised version of the images")
	pflag.Parse()
	if len(pflag.Args()) == 0 {
		pflag.Usage()
		os.Exit(1)
	}

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	paths := pflag.Args()
	results := make([]result, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		i, path := i, path
		wg.Add(1)
		observability.Go(ctx, func(ctx context.Context) {
			defer wg.Done()
			results[i] = analyze(ctx, opts, path)
		})
	}
	wg.Wait()

	failed := false
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	for _, r := range results {
		if r.Error != "" {
			failed = true
			l.Errorf("%s: %s", r.Path, r.Error)
		} else {
			l.Infof("%s: %s, SEI payload of %s", r.Path, r.Model, humanize.Bytes(uint64(r.payloadLen)))
		}
		if err := enc.Encode(r); err != nil {
			l.Fatal(err)
		}
	}
	if failed {
		belt.Flush(ctx)
		os.Exit(2)
	}
}

func analyze(
	ctx context.Context,
	opts options,
	path string,
) result {
	r := result{Path: path}
	model, err := estimate(ctx, opts, path)
	if err != nil {
		r.Error = err.Error()
		return r
	}
	r.Model = model
	for c, cm := range model.Components {
		if cm.SkipReason != nil {
			r.Skipped = append(r.Skipped, fmt.Sprintf("%s: %v", plane.Component(c), cm.SkipReason))
		}
	}
	payload, err := model.SEIPayload()
	if err != nil {
		r.Error = fmt.Sprintf("unable to serialize the model: %v", err)
		return r
	}
	r.SEI = hex.EncodeToString(payload)
	r.payloadLen = len(payload)
	return r
}

func estimate(
	ctx context.Context,
	opts options,
	path string,
) (*filmgrain.Model, error) {
	pic, err := imageio.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	w, h := pic.Size()
	cfg := filmgrain.DefaultConfig(w, h)
	cfg.ChromaFormat = pic.ChromaFormat
	cfg.BitDepths.Luma = pic.Planes[plane.ComponentY].BitDepth
	cfg.BitDepths.Chroma = cfg.BitDepths.Luma
	if u := pic.Planes[plane.ComponentU]; u != nil {
		cfg.BitDepths.Chroma = u.BitDepth
	}
	cfg.DoAnalysis = [3]bool{}
	for _, name := range strings.Split(opts.Components, ",") {
		c, err := parseComponent(name)
		if err != nil {
			return nil, err
		}
		cfg.DoAnalysis[c] = int(c) < pic.ChromaFormat.NumComponents()
	}
	cfg.BlockSize = opts.BlockSize
	cfg.WindowSize = opts.WindowSize
	cfg.LowIntensityRatio = opts.LowIntensityRatio
	cfg.DilationIterations = opts.DilationIterations
	cfg.ErosionIterations = opts.ErosionIterations
	cfg.PaddingWidth = opts.PaddingWidth
	cfg.PaddingHeight = opts.PaddingHeight
	if opts.MaskPath != "" {
		cfg.ExternalMask = imageio.FilePlaneSource{Path: opts.MaskPath}
	}
	if opts.DenoisedPath != "" {
		cfg.ExternalDenoised = imageio.FilePlaneSource{Path: opts.DenoisedPath}
	}

	analyzer, err := filmgrain.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return analyzer.Estimate(ctx, pic)
}

func parseComponent(s string) (plane.Component, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y":
		return plane.ComponentY, nil
	case "u", "cb":
		return plane.ComponentU, nil
	case "v", "cr":
		return plane.ComponentV, nil
	default:
		return 0, fmt.Errorf("unknown component '%s'", s)
	}
}
