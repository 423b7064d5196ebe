// Package main 提供 IPFS 地址服务客户端
//
// 连接引导节点，周期性地注册 IPFS.multiaddr 服务，
// 并以本地 IPFS 节点地址应答服务调用。
//
// 使用方法:
//
//	janus-ipfs -bootstrap /ip4/127.0.0.1/tcp/9999 -ipfs /ip4/127.0.0.1/tcp/5001
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-janus/config"
	"github.com/dep2p/go-janus/internal/client"
	"github.com/dep2p/go-janus/internal/ipfs"
	"github.com/dep2p/go-janus/internal/util/logger"
	"github.com/dep2p/go-janus/pkg/lib/crypto"
	"github.com/dep2p/go-janus/pkg/lib/log"
)

var clog = log.Logger("cmd/janus-ipfs")

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	defaults := config.DefaultIPFSConfig()
	configFile := flag.String("config", "", "JSON 配置文件")
	bootstrap := flag.String("bootstrap", defaults.Bootstrap, "引导节点地址")
	ipfsAddr := flag.String("ipfs", defaults.Multiaddr, "公布的 IPFS 节点地址")
	keyFile := flag.String("key", "", "身份密钥文件，为空时使用临时身份")
	flag.Parse()

	closer := logger.Setup(logger.ConfigFromEnv())
	defer closer.Close()

	cfg := config.NewConfig()
	if *configFile != "" {
		loaded, err := config.LoadFile(*configFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "bootstrap":
			cfg.IPFS.Bootstrap = *bootstrap
		case "ipfs":
			cfg.IPFS.Multiaddr = *ipfsAddr
		case "key":
			cfg.Identity.KeyFile = *keyFile
		}
	})

	icfg, err := ipfs.ConfigFrom(cfg.IPFS)
	if err != nil {
		return err
	}

	var password []byte
	if cfg.Identity.Password != "" {
		password = []byte(cfg.Identity.Password)
	}
	key, err := crypto.LoadOrGenerateIdentity(cfg.Identity.KeyFile, password)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	c, err := client.Connect(ctx, icfg.Bootstrap, key,
		client.WithDialTimeout(cfg.PeerService.SocketTimeout.Duration()),
		client.WithYamuxConfig(cfg.Yamux),
	)
	if err != nil {
		return err
	}
	clog.Info("客户端已启动", "peer", c.PeerID(), "bootstrap", icfg.Bootstrap)

	stop := make(chan struct{})
	g, gctx := errgroup.WithContext(context.Background())

	// 信号转为停止请求
	g.Go(func() error {
		select {
		case <-ctx.Done():
			clog.Info("收到信号，正在退出")
		case <-gctx.Done():
		}
		close(stop)
		return nil
	})

	g.Go(func() error {
		defer cancel()
		reason, err := ipfs.Run(gctx, icfg, c, stop)
		clog.Info("编排循环退出", "reason", reason)
		return err
	})

	return g.Wait()
}
