package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// App 运行中的节点应用
type App struct {
	runtime  *Runtime
	stopOnce sync.Once
	stopped  chan struct{}
	err      error
}

// RunApp 启动节点并返回 App，调用方通过 Wait 等待退出信号
//
//	a, err := app.RunApp(ctx, app.NewBootstrap(cfg))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	a.Wait()
func RunApp(ctx context.Context, b *Bootstrap) (*App, error) {
	rt, err := b.Start(ctx)
	if err != nil {
		return nil, err
	}
	return &App{runtime: rt, stopped: make(chan struct{})}, nil
}

// Runtime 返回运行时
func (a *App) Runtime() *Runtime {
	return a.runtime
}

// Wait 等待 SIGINT/SIGTERM、节点服务自行退出或 Stop，然后停止应用
func (a *App) Wait() error {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	select {
	case sig := <-signals:
		logger.Info("收到信号，正在退出", "signal", sig)
	case <-a.runtime.Descriptor.Done():
		logger.Warn("节点服务已退出")
	case <-a.stopped:
	}
	return a.Stop()
}

// Stop 停止应用，重复调用返回首次的结果
func (a *App) Stop() error {
	a.stopOnce.Do(func() {
		close(a.stopped)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := a.runtime.Stop(ctx); err != nil {
			a.err = fmt.Errorf("停止应用失败: %w", err)
		}
	})
	return a.err
}
