package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"auction-factory-sol/internal/config"
	"auction-factory-sol/internal/svc"
	"auction-factory-sol/internal/types"
	"auction-factory-sol/pkg/logger"
)

var configFile = flag.String("f", "etc/auction.yaml", "the config file")

func main() {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("panic: %+v\nstack: %s", r, debug.Stack())
			logger.Sync()
			os.Exit(2)
		}
	}()

	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	c := config.MustLoad(*configFile)
	if err := logger.Init(c.LogConf.ToLogOption()); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	cmd, ok := commands[flag.Arg(0)]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", flag.Arg(0))
		usage()
		os.Exit(2)
	}
	args := flag.Args()[1:]
	if len(args) < cmd.minArgs {
		fmt.Fprintf(os.Stderr, "usage: auctionctl %s %s\n", flag.Arg(0), cmd.usage)
		os.Exit(2)
	}

	sc, err := svc.NewServiceContext(c)
	if err != nil {
		logger.Errorf("服务上下文初始化失败: %v", err)
		os.Exit(1)
	}
	defer sc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.run(ctx, sc, args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", flag.Arg(0), err)
		if types.IsRetryable(err) {
			fmt.Fprintln(os.Stderr, "节点不可达或拒绝了请求，可稍后重试")
		}
		sc.Close()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: auctionctl [-f config] <command> [args]\n\ncommands:\n")
	for _, name := range commandOrder {
		fmt.Fprintf(os.Stderr, "  %-13s %s\n", name, commands[name].usage)
	}
}
