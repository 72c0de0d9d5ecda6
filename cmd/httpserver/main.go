package main

import (
	"crypto/tls"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/darrenkoch/httpstack/internal/headers"
	"github.com/darrenkoch/httpstack/internal/message"
	"github.com/darrenkoch/httpstack/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	addr := flag.String("addr", ":42069", "listen address")
	root := flag.String("root", ".", "static file root")
	handlerThreads := flag.Int("handler-threads", 16, "bounded handler worker pool size")
	readTimeout := flag.Duration("read-timeout", 0, "per-connection read timeout (0 disables)")
	tlsCert := flag.String("tls-cert", "", "TLS certificate file (enables TLS with -tls-key)")
	tlsKey := flag.String("tls-key", "", "TLS key file")
	metricsAddr := flag.String("metrics", "", "if set, serve Prometheus /metrics on this address")
	flag.Parse()

	router := server.New()
	router.Handle("/yourproblem", func(req *message.Request) server.Result {
		return server.Respond(htmlResponse(message.StatusBadRequest, badRequestBody))
	})
	router.Handle("/myproblem", func(req *message.Request) server.Result {
		return server.Respond(htmlResponse(message.StatusInternalServerError, internalErrorBody))
	})
	router.Handle("/", fileHandler(*root))

	cfg := server.Config{
		Addr:                     *addr,
		ConnectionHandlerThreads: *handlerThreads,
		ReadTimeout:              *readTimeout,
		Router:                   router,
		AccessLogOutput:          os.Stdout,
	}

	if *tlsCert != "" && *tlsKey != "" {
		cert, err := tls.LoadX509KeyPair(*tlsCert, *tlsKey)
		if err != nil {
			log.Fatalf("httpstack: loading TLS key pair: %v", err)
		}
		cfg.TLSConfig = &tls.Config{Certificates: []tls.Certificate{cert}}
	}

	srv, err := server.Serve(cfg)
	if err != nil {
		log.Fatalf("httpstack: starting server: %v", err)
	}
	defer srv.Close()
	log.Printf("httpstack: listening on %s", *addr)

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{}))
			log.Printf("httpstack: metrics on %s/metrics", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.Printf("httpstack: metrics server stopped: %v", err)
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Println("httpstack: server gracefully stopped")
}

const badRequestBody = `<html>
  <head><title>400 Bad Request</title></head>
  <body><h1>Bad Request</h1><p>Your request honestly kinda sucked.</p></body>
</html>`

const internalErrorBody = `<html>
  <head><title>500 Internal Server Error</title></head>
  <body><h1>Internal Server Error</h1><p>Okay, you know what? This one is on me.</p></body>
</html>`

func htmlResponse(status message.Status, body string) *message.Response {
	h := message.ContentLengthHeaders([]byte(body))
	h.Add(headers.NewName([]byte("content-type")), "text/html")
	return &message.Response{Status: status, Headers: h, Body: []byte(body)}
}

// fileHandler serves files under root, the way spec.md §6's "static file
// root" CLI flag implies a default handler beyond the teacher's three
// hardcoded routes.
func fileHandler(root string) server.HandlerFunc {
	return func(req *message.Request) server.Result {
		target := req.Target
		if target == "" || target == "/" {
			target = "/index.html"
		}
		path := filepath.Join(root, filepath.Clean("/"+target))
		data, err := os.ReadFile(path)
		if err != nil {
			return server.Next
		}
		h := message.ContentLengthHeaders(data)
		h.Add(headers.NewName([]byte("content-type")), contentTypeFor(path))
		return server.Respond(&message.Response{Status: message.StatusOK, Headers: h, Body: data})
	}
}

func contentTypeFor(path string) string {
	switch filepath.Ext(path) {
	case ".html", ".htm":
		return "text/html"
	case ".css":
		return "text/css"
	case ".js":
		return "application/javascript"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

