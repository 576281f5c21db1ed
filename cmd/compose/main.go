// Command compose renders an editor document to an image file.
//
// Usage:
//
//	compose [flags] document.{json,yaml,toml}
//
// The document is the saved editor state. Image URLs in it may be data:
// URLs, http(s) URLs or file paths relative to the document. With -watch
// the output is rewritten every time the document changes.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/gogpu/compose"
	"github.com/gogpu/compose/fonts"
	"github.com/gogpu/compose/imagecache"
)

func main() {
	var (
		configPath  = flag.String("config", "", "config file (default ./"+defaultConfigFile+" if present)")
		output      = flag.String("output", "", "output file (default: document name with the format extension)")
		format      = flag.String("format", "", "output format: png or jpeg")
		quality     = flag.Int("quality", 0, "JPEG quality 1-100")
		fontDirs    = flag.String("fonts", "", "comma-separated font directories")
		systemFonts = flag.Bool("system-fonts", false, "look up installed system fonts")
		watch       = flag.Bool("watch", false, "re-render whenever the document changes")
		verbose     = flag.Bool("v", false, "verbose logging")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: compose [flags] document\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	input := flag.Arg(0)

	cfgFile, required := *configPath, true
	if cfgFile == "" {
		cfgFile, required = defaultConfigFile, false
	}
	cfg, err := loadConfig(cfgFile, required)
	if err != nil {
		log.Fatalf("compose: %v", err)
	}

	// Flags given explicitly override the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "format":
			cfg.Output.Format = *format
		case "quality":
			cfg.Output.Quality = *quality
		case "fonts":
			cfg.Fonts.Dirs = append(cfg.Fonts.Dirs, splitList(*fontDirs)...)
		case "system-fonts":
			cfg.Fonts.System = *systemFonts
		case "v":
			if *verbose {
				cfg.Log.Level = "debug"
			}
		}
	})
	if err := cfg.validate(); err != nil {
		log.Fatalf("compose: %v", err)
	}

	level, _ := parseLevel(cfg.Log.Level)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	compose.SetLogger(logger)

	job, err := newJob(input, *output, &cfg)
	if err != nil {
		log.Fatalf("compose: %v", err)
	}

	comp := compose.New(
		compose.WithLogger(logger),
		compose.WithImageCacheOptions(imagecache.WithLoader(&imagecache.SourceLoader{
			Client: &http.Client{Timeout: cfg.timeout()},
			Dir:    imageDir(&cfg, input),
		})),
		compose.WithFontOptions(fontOptions(&cfg)...),
	)
	defer comp.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *watch {
		err = watchDocument(ctx, comp, job, logger)
	} else {
		err = job.run(ctx, comp)
	}
	if err != nil {
		log.Fatalf("compose: %v", err)
	}
	if !*watch {
		log.Printf("Rendered %s to %s\n", input, job.output)
	}
}

func fontOptions(cfg *Config) []fonts.Option {
	var opts []fonts.Option
	if len(cfg.Fonts.Dirs) > 0 {
		opts = append(opts, fonts.WithFontDirs(cfg.Fonts.Dirs...))
	}
	if cfg.Fonts.System {
		opts = append(opts, fonts.WithSystemFonts(cfg.Fonts.CacheDir))
	}
	return opts
}

func imageDir(cfg *Config, input string) string {
	if cfg.Images.Dir != "" {
		return cfg.Images.Dir
	}
	return filepath.Dir(input)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
