// SPDX-License-Identifier: MIT
// Package main is the opi CLI: a streaming OPI 1.3/2.0 image
// substitution engine, modeled on cmd/rv's flag/logging conventions.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/utils/logging"

	"github.com/opiproc/opi/opi/config"
	"github.com/opiproc/opi/opi/engine"
)

// Current software version, logged in the startup banner.
const version = "v0.1.0"

// Logging configuration, matching cmd/rv's rotation sizes.
const (
	logMaxSize   = 50 // MB
	logMaxBackup = 5
	logMaxAge    = 28 // days
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "opi:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, logPath, verbose, help, err := parseFlags(args)
	if help {
		printUsage()
		return nil
	}
	if err != nil {
		return err
	}

	level := int8(logging.Info)
	if verbose {
		level = logging.Debug
	}
	log := setupLogging(logPath, level)
	log.Log(logging.Info, "opi starting", "version", version, "hires", cfg.HiresPath, "lores", cfg.LoresPath)

	in, closeIn, err := openInput(cfg.In)
	if err != nil {
		return err
	}
	defer closeIn()

	out, closeOut, truncate, err := openOutput(cfg.Out)
	if err != nil {
		return err
	}
	defer closeOut()

	eng := engine.New(cfg, log, nil)
	if err := eng.Run(context.Background(), in, out, truncate); err != nil {
		log.Log(logging.Error, "run failed", "error", err.Error())
		return err
	}
	return nil
}

func setupLogging(path string, level int8) logging.Logger {
	if path == "" {
		return logging.New(level, os.Stderr, false)
	}
	isNew := engine.LogFileIsNew(path)
	lj := &lumberjack.Logger{Filename: path, MaxSize: logMaxSize, MaxBackups: logMaxBackup, MaxAge: logMaxAge}
	var w io.Writer = engine.NewBOMWriter(lj, isNew)
	return logging.New(level, w, false)
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "" || path == "stdin" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

func openOutput(path string) (io.Writer, func(), func() error, error) {
	if path == "" || path == "stdout" {
		return os.Stdout, func() {}, nil, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, nil, err
	}
	truncate := func() error { return f.Truncate(0) }
	return f, func() { f.Close() }, truncate, nil
}

// parseFlags normalizes flag names to lowercase before delegating to
// flag.FlagSet, implementing spec §6's case-insensitive flag names
// without a bespoke parser.
func parseFlags(args []string) (cfg *config.Config, logPath string, verbose, help bool, err error) {
	for _, a := range args {
		trimmed := strings.TrimLeft(a, "-/")
		if trimmed == "?" || strings.EqualFold(trimmed, "help") {
			return nil, "", false, true, nil
		}
	}

	normalized := make([]string, len(args))
	for i, a := range args {
		normalized[i] = normalizeFlag(a)
	}

	fs := flag.NewFlagSet("opi", flag.ContinueOnError)
	cfg = config.Default()

	hires := fs.String("hires", "", "hi-res image root")
	lores := fs.String("lores", "", "lo-res layout root")
	in := fs.String("in", "stdin", "input path")
	out := fs.String("out", "stdout", "output path")

	cacheMegs := fs.Float64("cachemegs", cfg.CacheMegs, "memory cache budget in MB")
	useCache := fs.Bool("usecache", cfg.UseCache, "enable in-memory cache")
	useDiskCache := fs.Bool("usediskcache", cfg.UseDiskCache, "enable disk cache")
	abortOnError := fs.Bool("abortonerror", cfg.AbortOnError, "abort on unsupported mode/profile")
	abortOnFNF := fs.Bool("abortonfilenotfound", cfg.AbortOnFileNotFound, "abort when a hi-res file is missing")

	convertCMYK := fs.Bool("convertcmykimages", cfg.ConvertCMYKImages, "convert CMYK images")
	convertGray := fs.Bool("convertgrayimages", cfg.ConvertGrayImages, "convert gray images")
	detectCMYKGray := fs.Bool("detectcmykgrayimages", cfg.DetectCMYKGrayImages, "detect CMYK images with empty CMY")
	stripCMY := fs.Bool("cmykgrayimages_stripcmy", cfg.CMYKGrayStripCMY, "strip CMY from detected CMYK-gray images")

	mono := classFlags(fs, "mono", cfg.Mono)
	gray := classFlags(fs, "gray", cfg.Gray)
	color := classFlags(fs, "color", cfg.Color)

	intent := fs.String("intent", "p", "rendering intent")
	proofIntent := fs.String("proofintent", "p", "proof rendering intent")
	preserveBlack := fs.Bool("preserveblack", cfg.PreserveBlack, "preserve pure black")
	bpc := fs.Bool("blackpointcompensation", cfg.BlackPointCompensation, "black point compensation")
	softproof := fs.Bool("softproofing", cfg.Softproofing, "soft proofing flag (not read by the engine; the proof stage runs whenever -proofprofile is set)")

	outProfile := fs.String("outprofile", "", "output CMYK ICC profile")
	outGrayProfile := fs.String("outgrayprofile", "", "output gray ICC profile")
	outRGBGrayProfile := fs.String("outrgbgrayprofile", "", "output RGB-as-gray ICC profile")
	proofProfile := fs.String("proofprofile", "", "soft proof CMYK ICC profile")
	proofGrayProfile := fs.String("proofgrayprofile", "", "soft proof gray ICC profile")
	proofRGBGrayProfile := fs.String("proofrgbgrayprofile", "", "soft proof RGB-as-gray ICC profile")
	workingCMYK := fs.String("workingcmykprofile", "", "working CMYK ICC profile")
	workingGray := fs.String("workinggrayprofile", "", "working gray ICC profile")
	workingRGB := fs.String("workingrgbprofile", "", "working RGB ICC profile")
	sameProfiles := fs.String("sameprofiles", "", "comma-separated profile descriptions/MD5s treated as identical")

	mode := fs.String("mode", "b", "image data encoding (a=ASCII hex, b=binary)")
	newline := fs.String("newline", "\\n", "line terminator to emit")
	cropThreshold := fs.Float64("imagecropthreshold", cfg.ImageCropThreshold, "minimum area ratio before cropping")

	logPathFlag := fs.String("log", "", "log file path")
	verboseFlag := fs.Bool("verbose", false, "verbose logging")
	detectQXP := fs.Bool("detectqxpbackground", cfg.DetectQXPBackground, "detect QuarkXPress background colour")

	disableJPEG := fs.Bool("jpeg", true, "enable JPEG decoding (false to disable)")
	disablePNG := fs.Bool("png", true, "enable PNG decoding (false to disable)")
	disablePSD := fs.Bool("psd", true, "enable PSD decoding (false to disable)")
	disableTIFF := fs.Bool("tiff", true, "enable TIFF decoding (false to disable)")
	disableEPSF := fs.Bool("epsf", true, "enable EPSF decoding (false to disable)")

	if err := fs.Parse(normalized); err != nil {
		return nil, "", false, false, err
	}

	if *hires == "" || *lores == "" || *in == "" || *out == "" {
		return nil, "", false, false, fmt.Errorf("opi: -hires, -lores, -in and -out are required")
	}

	cfg.HiresPath, cfg.LoresPath = *hires, *lores
	cfg.In, cfg.Out = resolveStdio(*in), resolveStdio(*out)
	cfg.CacheMegs = *cacheMegs
	cfg.UseCache, cfg.UseDiskCache = *useCache, *useDiskCache
	cfg.AbortOnError, cfg.AbortOnFileNotFound = *abortOnError, *abortOnFNF
	cfg.ConvertCMYKImages, cfg.ConvertGrayImages = *convertCMYK, *convertGray
	cfg.DetectCMYKGrayImages, cfg.CMYKGrayStripCMY = *detectCMYKGray, *stripCMY
	cfg.Mono, cfg.Gray, cfg.Color = mono(), gray(), color()
	cfg.DetectQXPBackground = *detectQXP

	for format, enabled := range map[string]*bool{
		"jpeg": disableJPEG, "png": disablePNG, "psd": disablePSD,
		"tiff": disableTIFF, "epsf": disableEPSF,
	} {
		cfg.DisabledFormats[format] = !*enabled
	}

	if v, ok := config.ParseIntent(*intent); ok {
		cfg.Intent = v
	} else {
		config.LogInvalidField(nil, "intent", cfg.Intent)
	}
	if v, ok := config.ParseIntent(*proofIntent); ok {
		cfg.ProofIntent = v
	}
	cfg.PreserveBlack, cfg.BlackPointCompensation, cfg.Softproofing = *preserveBlack, *bpc, *softproof

	cfg.Profiles = config.ProfilePaths{
		Out: *outProfile, OutGray: *outGrayProfile, OutRGBGray: *outRGBGrayProfile,
		Proof: *proofProfile, ProofGray: *proofGrayProfile, ProofRGBGray: *proofRGBGrayProfile,
		WorkingCMYK: *workingCMYK, WorkingGray: *workingGray, WorkingRGB: *workingRGB,
	}
	if *sameProfiles != "" {
		cfg.SameProfileSets = append(cfg.SameProfileSets, strings.Split(*sameProfiles, ","))
	}

	if *mode == "a" {
		cfg.DataMode = config.DataASCIIHex
	} else {
		cfg.DataMode = config.DataBinary
	}
	cfg.Newline = unescapeNewline(*newline)
	cfg.ImageCropThreshold = *cropThreshold

	return cfg, *logPathFlag, *verboseFlag, false, nil
}

// classFlags registers the per-category flags for prefix ("mono",
// "gray", "color") and returns a closure building the resolved
// ImageClassConfig after fs.Parse.
func classFlags(fs *flag.FlagSet, prefix string, def config.ImageClassConfig) func() config.ImageClassConfig {
	res := fs.Float64(prefix+"imageresolution", def.Resolution, prefix+" target resolution")
	minRes := fs.Float64(prefix+"imageminresolution", def.MinResolution, prefix+" minimum resolution")
	threshold := fs.Float64(prefix+"imagedownsamplethreshold", def.DownsampleThreshold, prefix+" downsample threshold")
	filterKind := fs.String(prefix+"imagedownsampletype", "antialias", prefix+" downsample filter")
	useEmbedded := fs.Bool(prefix+"imageuseembeddedresolution", def.UseEmbeddedResolution, prefix+" prefer embedded dpi")
	downsample := fs.Bool("downsample"+prefix+"images", def.Downsample, "downsample "+prefix+" images")

	return func() config.ImageClassConfig {
		filter, ok := config.ParseDownsampleFilter(*filterKind)
		if !ok {
			config.LogInvalidField(nil, prefix+"imagedownsampletype", filter)
		}
		return config.ImageClassConfig{
			Downsample: *downsample, MinResolution: *minRes, Resolution: *res,
			DownsampleThreshold: *threshold, UseEmbeddedResolution: *useEmbedded,
			DownsampleFilterKind: filter,
		}
	}
}

func resolveStdio(v string) string {
	if v == "stdin" || v == "stdout" {
		return ""
	}
	return v
}

func unescapeNewline(s string) string {
	switch s {
	case `\n`:
		return "\n"
	case `\r`:
		return "\r"
	case `\r\n`:
		return "\r\n"
	default:
		return s
	}
}

// normalizeFlag lowercases a "-Flag=Value" or "-Flag" argument's name
// portion so flag.FlagSet (case-sensitive) accepts spec §6's
// case-insensitive flag names.
func normalizeFlag(a string) string {
	if !strings.HasPrefix(a, "-") {
		return a
	}
	dashes := "-"
	rest := strings.TrimPrefix(a, "-")
	if strings.HasPrefix(rest, "-") {
		dashes = "--"
		rest = strings.TrimPrefix(rest, "-")
	}
	if i := strings.Index(rest, "="); i >= 0 {
		return dashes + strings.ToLower(rest[:i]) + "=" + rest[i+1:]
	}
	return dashes + strings.ToLower(rest)
}

func printUsage() {
	fmt.Println("opi", version)
	fmt.Println("usage: opi -hires=<dir> -lores=<dir> -in=<path|stdin> -out=<path|stdout> [flags]")
}
