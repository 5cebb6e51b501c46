// Package convert implements the WebP conversion pipeline: single images,
// image folders packaged as CBZ, and CBZ-to-CBZ re-encoding.
package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"webpcbz/internal/cbz"
	"webpcbz/internal/resolver"
)

// Level indicates the severity of a progress message.
type Level int

const (
	LevelInfo Level = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// Event is one progress update emitted during a batch run.
type Event struct {
	Message string
	Level   Level
}

// Result is the outcome of one conversion or packaging operation.
type Result struct {
	Input  string
	Output string
	Err    error
}

func (r Result) OK() bool { return r.Err == nil }

// PipelineConfig carries the per-run behavior knobs.
type PipelineConfig struct {
	Options   Options
	Workers   int
	SaveAsCBZ bool
	Recursive bool
	OutputDir string
}

// Pipeline runs one batch. Options are fixed for the lifetime of the run;
// progress counters may be polled concurrently via Progress.
type Pipeline struct {
	cfg        PipelineConfig
	onProgress func(Event)

	done      atomic.Int64
	total     atomic.Int64
	origBytes atomic.Int64
	convBytes atomic.Int64
}

// NewPipeline validates the configuration and builds a pipeline. Out-of-range
// quality or effort is rejected here, before any file is touched.
func NewPipeline(cfg PipelineConfig, onProgress func(Event)) (*Pipeline, error) {
	if err := cfg.Options.Validate(); err != nil {
		return nil, err
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Pipeline{cfg: cfg, onProgress: onProgress}, nil
}

// Progress returns the number of images converted so far and the
// pre-counted total.
func (p *Pipeline) Progress() (done, total int64) {
	return p.done.Load(), p.total.Load()
}

// Totals returns accumulated source and converted byte counts.
func (p *Pipeline) Totals() (original, converted int64) {
	return p.origBytes.Load(), p.convBytes.Load()
}

func (p *Pipeline) progress(ev Event) {
	if p.onProgress != nil {
		p.onProgress(ev)
	}
}

// CountImages pre-counts the images behind the given items so progress has
// a stable denominator. Unreadable inputs count as zero; they surface as
// failures during the run.
func (p *Pipeline) CountImages(items []resolver.Item) int64 {
	var total int64
	for _, item := range items {
		switch item.Kind {
		case resolver.KindImage:
			total++
		case resolver.KindFolder:
			total += int64(len(p.listImages(item.Path)))
		case resolver.KindCBZ:
			if n, err := cbz.CountImages(item.Path); err == nil {
				total += int64(n)
			}
		}
	}
	return total
}

// Run processes all items in order. Per-item failures are recorded and the
// batch continues; the context is checked between images, never mid-encode.
func (p *Pipeline) Run(ctx context.Context, items []resolver.Item) []Result {
	p.total.Store(p.CountImages(items))

	var results []Result
	for _, item := range items {
		if ctx.Err() != nil {
			p.progress(Event{Message: "Conversion cancelled", Level: LevelWarning})
			break
		}

		switch item.Kind {
		case resolver.KindMissing:
			err := fmt.Errorf("path not found: %s", item.Path)
			p.progress(Event{Message: err.Error(), Level: LevelError})
			results = append(results, Result{Input: item.Path, Err: err})
		case resolver.KindImage:
			results = append(results, p.convertImageFile(item.Path))
		case resolver.KindFolder:
			results = append(results, p.convertFolder(ctx, item.Path)...)
		case resolver.KindCBZ:
			results = append(results, p.convertArchive(ctx, item.Path)...)
		}
	}
	return results
}

// convertImageFile converts one loose image, writing <name>.webp next to the
// source or into the configured output directory. The encode goes to a temp
// file that is renamed into place only on success.
func (p *Pipeline) convertImageFile(path string) Result {
	fail := func(err error) Result {
		p.progress(Event{Message: fmt.Sprintf("Error: %s: %v", filepath.Base(path), err), Level: LevelError})
		p.done.Add(1)
		return Result{Input: path, Err: err}
	}

	outDir := filepath.Dir(path)
	if p.cfg.OutputDir != "" {
		outDir = p.cfg.OutputDir
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return fail(fmt.Errorf("creating output directory: %w", err))
		}
	}
	outPath := filepath.Join(outDir, SwapExt(filepath.Base(path)))

	src, err := os.Open(path)
	if err != nil {
		return fail(err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(outDir, "*.webp")
	if err != nil {
		return fail(fmt.Errorf("creating temporary file: %w", err))
	}
	tmpPath := tmp.Name()

	info, err := Convert(src, tmp, p.cfg.Options)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpPath)
		return fail(err)
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		os.Remove(tmpPath)
		return fail(err)
	}

	p.recordImage(path, outPath)
	p.progress(Event{
		Message: fmt.Sprintf("Converted: %s (%s)", filepath.Base(path), info),
		Level:   LevelSuccess,
	})
	return Result{Input: path, Output: outPath}
}

// convertFolder converts every image in a folder and packages the output as
// <folder>_webp.cbz, or as a loose <folder>_webp directory when SaveAsCBZ is
// off.
func (p *Pipeline) convertFolder(ctx context.Context, dir string) []Result {
	files := p.listImages(dir)
	if len(files) == 0 {
		err := fmt.Errorf("no supported images in folder: %s", dir)
		p.progress(Event{Message: err.Error(), Level: LevelWarning})
		return []Result{{Input: dir, Err: err}}
	}

	names := make([]string, len(files))
	pages := make([][]byte, len(files))

	var mu sync.Mutex
	var results []Result

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			src, err := os.Open(file)
			if err == nil {
				var buf bytes.Buffer
				var info Info
				info, err = Convert(src, &buf, p.cfg.Options)
				src.Close()
				if err == nil {
					names[i] = SwapExt(filepath.Base(file))
					pages[i] = buf.Bytes()
					p.origBytes.Add(fileSize(file))
					p.convBytes.Add(int64(buf.Len()))
					p.done.Add(1)
					p.progress(Event{
						Message: fmt.Sprintf("Converted: %s (%s)", filepath.Base(file), info),
						Level:   LevelVerbose,
					})
					return nil
				}
			}

			mu.Lock()
			results = append(results, Result{Input: file, Err: err})
			mu.Unlock()
			p.progress(Event{Message: fmt.Sprintf("Error: %s: %v", filepath.Base(file), err), Level: LevelError})
			p.done.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		p.progress(Event{Message: "Conversion cancelled", Level: LevelWarning})
		return append(results, Result{Input: dir, Err: err})
	}

	base := filepath.Base(dir)
	parent := filepath.Dir(dir)
	if p.cfg.OutputDir != "" {
		parent = p.cfg.OutputDir
		if err := os.MkdirAll(parent, 0755); err != nil {
			return append(results, Result{Input: dir, Err: err})
		}
	}

	if p.cfg.SaveAsCBZ {
		outPath := filepath.Join(parent, base+"_webp.cbz")
		if err := writeArchive(outPath, names, pages); err != nil {
			p.progress(Event{Message: fmt.Sprintf("CBZ creation error: %v", err), Level: LevelError})
			return append(results, Result{Input: dir, Err: err})
		}
		p.progress(Event{Message: "CBZ created: " + filepath.Base(outPath), Level: LevelSuccess})
		return append(results, Result{Input: dir, Output: outPath})
	}

	outDir := filepath.Join(parent, base+"_webp")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return append(results, Result{Input: dir, Err: err})
	}
	for i, data := range pages {
		if data == nil {
			continue
		}
		if err := os.WriteFile(filepath.Join(outDir, names[i]), data, 0644); err != nil {
			p.progress(Event{Message: fmt.Sprintf("Error writing %s: %v", names[i], err), Level: LevelError})
			return append(results, Result{Input: dir, Err: err})
		}
	}
	p.progress(Event{Message: "Folder saved: " + filepath.Base(outDir), Level: LevelSuccess})
	return append(results, Result{Input: dir, Output: outDir})
}

// convertArchive re-encodes a CBZ into <name>_webp.cbz. Entry order and
// count are preserved: non-image entries are copied through unchanged, and
// an image entry that fails to convert is copied through under its original
// name while the failure is still recorded.
func (p *Pipeline) convertArchive(ctx context.Context, path string) []Result {
	r, err := cbz.OpenReader(path)
	if err != nil {
		p.progress(Event{Message: fmt.Sprintf("CBZ error: %v", err), Level: LevelError})
		return []Result{{Input: path, Err: err}}
	}
	defer r.Close()

	entries := r.Entries()
	names := make([]string, len(entries))
	data := make([][]byte, len(entries))

	var mu sync.Mutex
	var results []Result

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			raw, err := cbz.ReadEntry(entry)
			if err != nil {
				mu.Lock()
				results = append(results, Result{Input: entryRef(path, entry.Name), Err: err})
				mu.Unlock()
				p.progress(Event{Message: fmt.Sprintf("Error reading %s: %v", entry.Name, err), Level: LevelError})
				return nil
			}

			names[i], data[i] = entry.Name, raw
			if !cbz.IsImageEntry(entry.Name) {
				return nil
			}

			var buf bytes.Buffer
			info, err := Convert(bytes.NewReader(raw), &buf, p.cfg.Options)
			if err != nil {
				mu.Lock()
				results = append(results, Result{Input: entryRef(path, entry.Name), Err: err})
				mu.Unlock()
				p.progress(Event{Message: fmt.Sprintf("Error: %s: %v", entry.Name, err), Level: LevelError})
				p.done.Add(1)
				return nil
			}

			names[i], data[i] = SwapExt(entry.Name), buf.Bytes()
			p.origBytes.Add(int64(len(raw)))
			p.convBytes.Add(int64(buf.Len()))
			p.done.Add(1)
			p.progress(Event{
				Message: fmt.Sprintf("Converted: %s (%s)", entry.Name, info),
				Level:   LevelVerbose,
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		p.progress(Event{Message: "Conversion cancelled", Level: LevelWarning})
		return append(results, Result{Input: path, Err: err})
	}

	outPath := archivePath(path, p.cfg.OutputDir)
	if err := writeArchive(outPath, names, data); err != nil {
		p.progress(Event{Message: fmt.Sprintf("CBZ creation error: %v", err), Level: LevelError})
		return append(results, Result{Input: path, Err: err})
	}

	p.progress(Event{Message: "New CBZ: " + filepath.Base(outPath), Level: LevelSuccess})
	return append(results, Result{Input: path, Output: outPath})
}

// listImages enumerates the image files of a folder in name order,
// optionally walking subdirectories.
func (p *Pipeline) listImages(dir string) []string {
	var files []string
	if p.cfg.Recursive {
		filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if !d.IsDir() && IsImageFile(path) {
				files = append(files, path)
			}
			return nil
		})
		sort.Strings(files)
		return files
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	for _, entry := range entries {
		if !entry.IsDir() && IsImageFile(entry.Name()) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files
}

func (p *Pipeline) recordImage(srcPath, outPath string) {
	p.origBytes.Add(fileSize(srcPath))
	p.convBytes.Add(fileSize(outPath))
	p.done.Add(1)
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

func entryRef(archive, entry string) string {
	return archive + "!" + entry
}

func archivePath(src, outputDir string) string {
	base := filepath.Base(src)
	base = base[:len(base)-len(filepath.Ext(base))] + "_webp.cbz"
	if outputDir != "" {
		return filepath.Join(outputDir, base)
	}
	return filepath.Join(filepath.Dir(src), base)
}

func writeArchive(path string, names []string, data [][]byte) error {
	w, err := cbz.Create(path)
	if err != nil {
		return err
	}
	for i := range names {
		if data[i] == nil {
			continue
		}
		if err := w.Add(names[i], data[i]); err != nil {
			w.Close()
			os.Remove(path)
			return err
		}
	}
	return w.Close()
}
