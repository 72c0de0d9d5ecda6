// tcplistener is a small diagnostic tool: it accepts one connection at a
// time and prints the parsed request line, headers and body, adapted from
// the teacher's raw request.RequestFromReader dump into the resumable
// message.RequestParser this stack now uses.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/darrenkoch/httpstack/internal/headers"
	"github.com/darrenkoch/httpstack/internal/message"
)

func main() {
	addr := flag.String("addr", ":42069", "listen address")
	flag.Parse()

	l, err := net.Listen("tcp", *addr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR: failed to open:", err)
		os.Exit(1)
	}
	defer l.Close()

	fmt.Println("Listening for TCP traffic on", *addr)
	for {
		conn, err := l.Accept()
		if err != nil {
			fmt.Fprintln(os.Stderr, "ERROR: failed to accept:", err)
			continue
		}
		handleConn(conn)
	}
}

func handleConn(conn net.Conn) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))

	parser := message.NewRequestParser(conn)
	var req *message.Request
	for {
		r, err := parser.Parse()
		if err == nil {
			req = r
			break
		}
		if message.IsBlocked(err) {
			continue
		}
		fmt.Println("ERROR: failed to parse request:", err)
		return
	}

	fmt.Printf("Request line:\n- Method: %s\n- Target: %s\n", req.Method, req.Target)
	fmt.Println("Headers:")
	if req.Headers.Len() == 0 {
		fmt.Println("- (none)")
	} else {
		req.Headers.Range(func(name headers.Name, value string) {
			fmt.Printf("- %s: %s\n", name.String(), value)
		})
	}

	fmt.Println("Body:")
	if len(req.Body) == 0 {
		fmt.Println("- (none)")
	} else {
		fmt.Println(string(req.Body))
	}

	resp := "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 2\r\nConnection: close\r\n\r\nOK"
	_, _ = conn.Write([]byte(resp))
}
