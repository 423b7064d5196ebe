// Package main 提供 janus 中继节点
//
// 使用方法:
//
//	janus-node -listen /ip4/0.0.0.0/tcp/9999 -key node.key
//	janus-node -config janus.json
//
// 日志通过 JANUS_LOG_LEVEL / JANUS_LOG_FORMAT / JANUS_LOG_FILE 配置。
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dep2p/go-janus/config"
	"github.com/dep2p/go-janus/internal/app"
	"github.com/dep2p/go-janus/internal/util/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configFile := flag.String("config", "", "JSON 配置文件")
	listen := flag.String("listen", "", "监听地址（multiaddr），覆盖配置文件")
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
	if *listen != "" {
		cfg.PeerService.ListenAddr = *listen
	}
	if *keyFile != "" {
		cfg.Identity.KeyFile = *keyFile
	}

	a, err := app.RunApp(context.Background(), app.NewBootstrap(cfg))
	if err != nil {
		return err
	}

	rt := a.Runtime()
	fmt.Printf("节点 ID: %s\n", rt.PeerID)
	fmt.Printf("监听地址: %s\n", rt.ListenAddr)
	fmt.Println("按 Ctrl+C 停止节点")

	return a.Wait()
}
