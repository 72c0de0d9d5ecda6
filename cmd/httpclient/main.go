package main

import (
	"flag"
	"log"
	"time"

	"github.com/darrenkoch/httpstack/internal/client"
)

func main() {
	addr := flag.String("addr", "localhost:42069", "server address")
	numConns := flag.Int("n", 4, "pooled connection count")
	method := flag.String("method", "GET", "request method")
	target := flag.String("target", "/", "request target")
	body := flag.String("body", "", "request body")
	readTimeout := flag.Duration("read-timeout", 5*time.Second, "per-request read timeout")
	flag.Parse()

	c := client.New(client.Config{
		Addr:           *addr,
		NumConnections: *numConns,
		ReadTimeout:    *readTimeout,
	})
	defer c.Close()

	req := client.NewRequest(*addr, *method, *target, []byte(*body))
	resp, err := c.Do(req)
	if err != nil {
		log.Fatalf("httpstack: request failed: %v", err)
	}

	log.Printf("%d %s", resp.Status.Code, resp.Status.Reason)
	log.Printf("body (%d bytes): %s", len(resp.Body), string(resp.Body))
}
