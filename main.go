package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/any-hub/wheelhouse/internal/config"
	"github.com/any-hub/wheelhouse/internal/export"
	"github.com/any-hub/wheelhouse/internal/logging"
	"github.com/any-hub/wheelhouse/internal/scan"
	"github.com/any-hub/wheelhouse/internal/selector"
	"github.com/any-hub/wheelhouse/internal/version"
)

// cliOptions 汇总 CLI 标志解析后的结果，便于在测试中注入。
type cliOptions struct {
	configPath     string
	configRequired bool
	checkOnly      bool
	showVersion    bool
	showHelp       bool
	usage          string
	flags          *pflag.FlagSet
	patterns       []string
}

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

func main() {
	opts, err := parseCLIFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(stdErr, err.Error())
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, opts)
	stop()
	os.Exit(code)
}

// run 根据解析到的 CLI 选项执行扫描，并返回退出码，方便测试。
// 退出码只反映扫描是否完成，不反映是否每个缓存文件都能识别。
func run(ctx context.Context, opts cliOptions) int {
	if opts.showHelp {
		fmt.Fprintf(stdOut, "用法: wheelhouse [flags] [select-pattern ...]\n\n%s", opts.usage)
		return 0
	}
	if opts.showVersion {
		printVersion()
		return 0
	}

	cfg, err := config.Load(config.LoadOptions{
		Path:        opts.configPath,
		Required:    opts.configRequired,
		Flags:       opts.flags,
		ExtraSelect: opts.patterns,
	})
	if err != nil {
		fmt.Fprintf(stdErr, "加载配置失败: %v\n", err)
		return 1
	}

	logging.DefaultOutput = stdErr
	logger, err := logging.InitLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化日志失败: %v\n", err)
		return 1
	}

	runID := logging.NewRunID()
	if opts.checkOnly {
		fields := logging.BaseFields("check_config", opts.configPath, runID)
		fields["cache_dir"] = cfg.CacheDir
		fields["dest_dir"] = cfg.DestDir
		fields["select"] = cfg.SelectMode()
		fields["result"] = "ok"
		logger.WithFields(fields).Info("配置校验通过")
		return 0
	}

	sel, err := selector.New(cfg.Select)
	if err != nil {
		fmt.Fprintf(stdErr, "解析选择条件失败: %v\n", err)
		return 1
	}

	// 目标目录在扫描开始前创建，保证写入失败只可能来自单个文件。
	var writer export.Writer
	if cfg.ExportEnabled() {
		store, err := export.NewStore(cfg.DestDir)
		if err != nil {
			fmt.Fprintf(stdErr, "初始化目标目录失败: %v\n", err)
			return 1
		}
		writer = export.NewWriter(store)
	}

	fields := logging.BaseFields("scan", opts.configPath, runID)
	fields["cache_dir"] = cfg.CacheDir
	fields["dest_dir"] = writer.Dir()
	fields["select"] = cfg.SelectMode()
	fields["version"] = version.Full()
	runLog := logger.WithFields(fields)
	runLog.Debug("开始扫描 pip 缓存")

	scanner := scan.New(scan.Options{
		CacheDir: cfg.CacheDir,
		Selector: sel,
		Workers:  cfg.Workers,
		Writer:   writer,
		Out:      stdOut,
		Logger:   runLog,
	})
	stats, err := scanner.Run(ctx)
	runLog.WithFields(stats.Fields()).Info("扫描结束")
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(stdErr, "扫描已中断")
		} else {
			fmt.Fprintf(stdErr, "扫描失败: %v\n", err)
		}
		return 1
	}
	return 0
}

// parseCLIFlags 解析 CLI 参数，并结合环境变量计算最终的配置路径。
func parseCLIFlags(args []string) (cliOptions, error) {
	fs := pflag.NewFlagSet("wheelhouse", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false

	var (
		configFlag string
		checkOnly  bool
		showVer    bool
	)

	fs.StringVar(&configFlag, "config", "", "配置文件路径（默认 ./wheelhouse.toml，可被 WHEELHOUSE_CONFIG 覆盖）")
	config.RegisterFlags(fs)
	fs.BoolVar(&checkOnly, "check-config", false, "仅校验配置后退出")
	fs.BoolVar(&showVer, "version", false, "显示版本信息")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return cliOptions{showHelp: true, usage: fs.FlagUsages()}, nil
		}
		return cliOptions{}, fmt.Errorf("解析参数失败: %w", err)
	}

	path := os.Getenv("WHEELHOUSE_CONFIG")
	if configFlag != "" {
		path = configFlag
	}

	return cliOptions{
		configPath:     path,
		configRequired: path != "",
		checkOnly:      checkOnly,
		showVersion:    showVer,
		flags:          fs,
		patterns:       fs.Args(),
	}, nil
}

// printVersion 输出注入的版本 + 提交信息。
func printVersion() {
	fmt.Fprintln(stdOut, version.Full())
}
