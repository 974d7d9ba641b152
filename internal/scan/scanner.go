// Package scan walks a pip cache, runs every candidate file through the
// decode/classify/extract/name pipeline and hands selected wheels to the
// output: the canonical name on stdout and, when a destination is configured,
// the archive bytes on disk.
//
// Files are independent. Workers process them concurrently; console output
// and destination writes are serialized, with no ordering guarantee between
// files. Per-file failures are counted and logged, never fatal. Only a missing
// or unreadable cache root, a cancelled context or a destination write
// failure stops the run.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/any-hub/wheelhouse/internal/export"
	"github.com/any-hub/wheelhouse/internal/httpcache"
	"github.com/any-hub/wheelhouse/internal/logging"
	"github.com/any-hub/wheelhouse/internal/pypi"
	"github.com/any-hub/wheelhouse/internal/selector"
	"github.com/any-hub/wheelhouse/internal/wheel"
)

// ErrCacheRoot 表示缓存根目录不存在或不可读，整个扫描中止。
var ErrCacheRoot = errors.New("cache root unavailable")

// CacheSubdirs 是缓存根目录下存放 HTTP 响应的子目录。
var CacheSubdirs = []string{"http", "http-v2"}

// Options 配置一次扫描。
type Options struct {
	CacheDir string
	Selector selector.Selector
	// Workers <= 0 时按 CPU 数。
	Workers int
	Writer  export.Writer
	Out     io.Writer
	Logger  logrus.FieldLogger
}

// Scanner 执行扫描；每个实例只应 Run 一次。
type Scanner struct {
	opts Options

	mu    sync.Mutex
	stats Stats
}

// New 构造扫描器并填充默认值。
func New(opts Options) *Scanner {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		opts.Logger = discard
	}
	return &Scanner{opts: opts, stats: newStats()}
}

// Run 遍历缓存并处理全部候选文件，返回统计结果。
func (s *Scanner) Run(ctx context.Context) (Stats, error) {
	if err := checkRoot(s.opts.CacheDir); err != nil {
		return s.snapshot(), err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)

	walkErr := s.walk(gctx, func(path string) {
		g.Go(func() error {
			return s.handle(gctx, path)
		})
	})
	if err := g.Wait(); err != nil {
		return s.snapshot(), err
	}
	if walkErr != nil {
		return s.snapshot(), walkErr
	}
	if err := ctx.Err(); err != nil {
		return s.snapshot(), err
	}
	return s.snapshot(), nil
}

func checkRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCacheRoot, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrCacheRoot, root)
	}
	if _, err := os.ReadDir(root); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheRoot, err)
	}
	return nil
}

// walk 枚举候选缓存文件；缺失的子目录被忽略，子树读取失败只记录日志。
func (s *Scanner) walk(ctx context.Context, visit func(path string)) error {
	for _, sub := range CacheSubdirs {
		dir := filepath.Join(s.opts.CacheDir, sub)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		skipBodies := sub == "http-v2"

		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil {
				s.opts.Logger.WithFields(logging.FileFields(path, "", "")).WithError(err).Warn("无法读取缓存路径，已跳过")
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if !isRegularFile(path, d) {
				return nil
			}
			if skipBodies && httpcache.IsBodyFile(path) {
				return nil
			}
			visit(path)
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// isRegularFile 判断候选是否为普通文件；指向普通文件的符号链接同样计入，
// 指向目录的符号链接不展开。
func isRegularFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (s *Scanner) handle(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.count(func(st *Stats) { st.Scanned++ })

	w, err := Process(path)
	if err != nil {
		s.recordFailure(path, err)
		return nil
	}

	log := s.opts.Logger.WithFields(logging.FileFields(path, w.Origin.Project(), w.Origin.Version()))
	if w.Name.Synthesized {
		log.WithField("tag_source", "python-version").Warnf("Synthesizing tag for %s==%s", w.Origin.Project(), w.Origin.Version())
	}
	if len(w.Metadata.ExtraMembers) > 0 {
		log.WithFields(logrus.Fields{
			"member":        w.Metadata.Member,
			"extra_members": w.Metadata.ExtraMembers,
		}).Warn("存在多个 .dist-info/WHEEL 成员，使用第一个")
	}

	s.count(func(st *Stats) {
		st.Accepted++
		if w.Name.Synthesized {
			st.Synthesized++
		}
	})

	if !s.opts.Selector.Match(w.Name.Filename) {
		log.WithField("wheel", w.Name.Filename).Debug("未匹配选择条件")
		return nil
	}
	return s.emit(ctx, w, log)
}

// emit 串行化控制台输出与落盘，每个文件写完后才处理下一个。
func (s *Scanner) emit(ctx context.Context, w *Wheel, log logrus.FieldLogger) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.Selected++
	fmt.Fprintln(s.opts.Out, w.Name.Filename)

	if !s.opts.Writer.Enabled() {
		return nil
	}
	entry, err := s.opts.Writer.WriteWheel(ctx, w.Name.Filename, w.Body)
	if err != nil {
		return fmt.Errorf("write %s: %w", w.Name.Filename, err)
	}
	s.stats.Written++
	s.stats.BytesWritten += entry.SizeBytes
	fmt.Fprintln(s.opts.Out, "=>", entry.FilePath)

	log.WithFields(logrus.Fields{
		"wheel":  entry.Name,
		"dest":   entry.FilePath,
		"size":   entry.SizeBytes,
		"digest": entry.Digest.String(),
	}).Debug("wheel 已写入")
	return nil
}

func (s *Scanner) recordFailure(path string, err error) {
	log := s.opts.Logger.WithFields(logging.FileFields(path, "", "")).WithError(err)

	var (
		decodeErr *httpcache.DecodeError
		rejectErr *pypi.RejectError
	)
	switch {
	case errors.As(err, &decodeErr):
		s.count(func(st *Stats) { st.DecodeErrors++ })
		log.Debug("无法解码缓存文件，已跳过")
	case errors.As(err, &rejectErr):
		reason := pypi.ReasonName(rejectErr)
		s.count(func(st *Stats) { st.Rejected[reason]++ })
		log.WithField("reason", reason).Debug("非 wheel 响应，已跳过")
	case errors.Is(err, wheel.ErrCorruptArchive):
		s.count(func(st *Stats) { st.Corrupt++ })
		log.Warn("wheel 正文损坏，已跳过")
	case errors.Is(err, wheel.ErrNoTag):
		s.count(func(st *Stats) { st.Unnamed++ })
		log.Warn("无法确定兼容性 tag，已跳过")
	default:
		s.count(func(st *Stats) { st.ReadErrors++ })
		log.Warn("读取缓存文件失败，已跳过")
	}
}

func (s *Scanner) count(fn func(*Stats)) {
	s.mu.Lock()
	fn(&s.stats)
	s.mu.Unlock()
}

func (s *Scanner) snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.stats
	out.Rejected = make(map[string]int, len(s.stats.Rejected))
	for k, v := range s.stats.Rejected {
		out.Rejected[k] = v
	}
	return out
}
