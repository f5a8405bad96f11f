package grafx2

import (
	"context"
	"crypto/sha1"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	scanWorkers = 10

	// Larger files are not pictures in any supported format.
	maxScanSize = 16 << (10 * 2)
)

var errNoCatalog = errors.New("grafx2: no catalog")

func (e *Engine) findFiles(ctx context.Context, base string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories
			if info.Name()[0] == '.' && file != base {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			// Ignore anything that isn't a normal file
			if !info.Mode().IsRegular() || info.Size() > maxScanSize {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

// inspect loads file and describes it. A nil entry means the file is not
// in a supported format.
func (e *Engine) inspect(file string) (*Entry, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	p, format, err := e.load(file, b)
	switch {
	case errors.Is(err, errNoMatch):
		e.logger.Printf("No match for \"%s\"\n", file)
		return nil, nil
	case err != nil:
		e.logger.Printf("Unable to load \"%s\" as %v: %v\n", file, format, err)
		return nil, nil
	}
	return NewEntry(file, fmt.Sprintf("%X", sha1.Sum(b)), format, p), nil
}

func (e *Engine) fileWorker(ctx context.Context, in <-chan string) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for file := range in {
			entry, err := e.inspect(file)
			if err != nil {
				errc <- err
				return
			}
			if entry == nil {
				continue
			}
			if err := e.catalog.Add(entry); err != nil {
				errc <- err
				return
			}
			e.logger.Printf("%s: %v %dx%d\n", file, entry.Format, entry.Width, entry.Height)
		}
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Scan walks the directory tree at path and records every picture it can
// load in the catalog. Hidden files and directories are skipped.
func (e *Engine) Scan(path string) error {
	if e.catalog == nil {
		return errNoCatalog
	}

	dir, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	files, errc, err := e.findFiles(ctx, dir)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < scanWorkers; i++ {
		errc, err := e.fileWorker(ctx, files)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(errcList...)
}
