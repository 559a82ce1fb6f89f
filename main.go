package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"git.fiblab.net/sim/fare/fare"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	easy "github.com/t-tomalak/logrus-easy-formatter"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

var (
	// 配置信息
	mongoURI       = flag.String("mongo_uri", "", "mongo db uri (default $MONGO_URI)")
	recordsPathStr = flag.String("records", "", "route distance records [format: {csv path} or sqlite:{path} or {db}.{col}]")
	configPath     = flag.String("config", "", "tariff and network yaml config, empty means built-in Opal tariff")
	listenAddr     = flag.String("listen", "localhost:52201", "HTTP listening address")
	corsOrigins    = flag.String("cors", "", "comma separated CORS allowed origins (empty means disable CORS)")
	cacheSize      = flag.Int("cache-size", 4096, "fare result LRU cache size (0 means disable cache)")
	logLevel       = flag.String("log-level", "info", "log level [debug, info, warn, error, fatal, panic]")

	// 性能测试
	benchmark = flag.Bool("benchmark", false, "benchmark mode")
	pprofAddr = flag.String("pprof", "localhost:52202", "pprof listening address")

	LOG_LEVELS = map[string]logrus.Level{
		"debug": logrus.DebugLevel,
		"info":  logrus.InfoLevel,
		"warn":  logrus.WarnLevel,
		"error": logrus.ErrorLevel,
		"fatal": logrus.FatalLevel,
		"panic": logrus.PanicLevel,
	}
)

func main() {
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	// .env中的变量不覆盖已有环境变量
	_ = godotenv.Load()
	flag.Parse()
	if level, ok := LOG_LEVELS[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		logrus.Fatalf("invalid log level: %s", *logLevel)
	}
	if *mongoURI == "" {
		*mongoURI = os.Getenv("MONGO_URI")
	}
	if *recordsPathStr == "" {
		*recordsPathStr = os.Getenv("FARE_RECORDS")
	}

	recordsPath, err := NewPath(*recordsPathStr)
	if err != nil {
		log.Fatalf("invalid records path: %s", err)
	}
	if recordsPath == nil {
		log.Fatalf("records path is required")
	}
	cfg, err := fare.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("invalid config: %s", err)
	}
	// 启动计费服务
	server, err := NewFareServer(
		context.Background(),
		func(ctx context.Context) ([]fare.RouteRecord, error) {
			return recordsPath.Load(ctx, *mongoURI)
		},
		cfg, *cacheSize,
	)
	if err != nil {
		log.Fatalf("failed to start fare server from %s: %v", recordsPath, err)
	}

	if *pprofAddr != "" {
		// 启动pprof
		startHTTPDebugger(*pprofAddr)
	}

	if *benchmark {
		// 性能测试
		runBenchmark(server)
		return
	}

	var origins []string
	if *corsOrigins != "" {
		origins = strings.Split(*corsOrigins, ",")
	}
	// 使用HTTP/2 w.o. TLS
	s := &http.Server{
		Addr:              *listenAddr,
		Handler:           h2c.NewHandler(NewRouter(server, origins), &http2.Server{}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// 优雅退出
	// 创建监听退出chan
	signalCh := make(chan os.Signal, 1)
	//监听指定信号 ctrl+c kill
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signalCh
		log.Info("stopping...")
		go func() {
			<-signalCh
			os.Exit(1) // 强制结束
		}()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		// 退出http服务
		s.Shutdown(ctx)
		// 退出计费服务
		server.Close()
	}()

	log.Infof("server listening at %v", s.Addr)
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("failed to serve: %v", err)
	}
	time.Sleep(1 * time.Second) // 延迟等待"优雅退出"
	log.Info("fare server closes")
}
