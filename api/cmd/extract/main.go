// Command extract распознаёт текст на изображениях из командной строки.
//
//	extract [-lang eng+ben] [-engine tesseract] [-out dir] image.png ...
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"ocrapp/api/internal/config"
	"ocrapp/api/internal/engines"
	"ocrapp/api/internal/ocr"
	"ocrapp/api/internal/util"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("extract: ")

	cfg := config.Load()
	lang := flag.String("lang", cfg.Languages, "languages, e.g. eng, ben or eng+ben")
	engine := flag.String("engine", "", "OCR engine (default from OCR_ENGINE)")
	out := flag.String("out", "", "write <name>.txt files to this directory instead of stdout")
	jobs := flag.Int("j", runtime.NumCPU(), "files processed in parallel")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: extract [flags] image...\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	reg, err := engines.Build(cfg)
	if err != nil {
		log.Fatal(err)
	}
	eng, err := reg.GetEngine(*engine)
	if err != nil {
		log.Fatal(err)
	}
	langs, err := ocr.ParseLanguages(*lang)
	if err != nil {
		log.Fatal(err)
	}

	r := &runner{svc: ocr.NewService(eng), langs: langs, outDir: *out, stdout: os.Stdout, stderr: os.Stderr}
	if err := r.run(context.Background(), flag.Args(), *jobs); err != nil {
		os.Exit(1)
	}
}

type runner struct {
	svc    *ocr.Service
	langs  ocr.LanguageSet
	outDir string
	stdout io.Writer
	stderr io.Writer
}

// run обрабатывает все файлы, даже если часть упала, и возвращает первую ошибку.
func (r *runner) run(ctx context.Context, files []string, jobs int) error {
	if r.outDir != "" {
		if err := os.MkdirAll(r.outDir, 0o755); err != nil {
			return err
		}
	}
	texts := make([]string, len(files))
	var g errgroup.Group
	g.SetLimit(max(jobs, 1))
	for i, path := range files {
		g.Go(func() error {
			text, err := r.extract(ctx, path)
			if err != nil {
				fmt.Fprintf(r.stderr, "%s: %v\n", path, err)
				return err
			}
			texts[i] = text
			return nil
		})
	}
	err := g.Wait()

	if r.outDir != "" {
		return err
	}
	for i, path := range files {
		if texts[i] == "" && len(files) > 1 {
			continue
		}
		if len(files) > 1 {
			fmt.Fprintf(r.stdout, "==> %s <==\n", path)
		}
		fmt.Fprint(r.stdout, texts[i])
		if len(files) > 1 && !strings.HasSuffix(texts[i], "\n") {
			fmt.Fprintln(r.stdout)
		}
	}
	return err
}

func (r *runner) extract(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	img := ocr.NewImage(data, util.SniffImageMIME(data))
	name := filepath.Base(path)
	res, err := r.svc.ExtractText(ctx, img, r.langs, func(p ocr.Progress) {
		fmt.Fprintf(r.stderr, "%s: %s %d%%\n", name, p.Status, p.Percent())
	})
	if err != nil {
		return "", err
	}
	if r.outDir != "" {
		dst := filepath.Join(r.outDir, strings.TrimSuffix(name, filepath.Ext(name))+".txt")
		if err := os.WriteFile(dst, []byte(res.Text), 0o644); err != nil {
			return "", err
		}
	}
	return res.Text, nil
}
