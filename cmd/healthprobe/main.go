// healthprobe is a lean fasthttp sidecar that answers liveness checks
// on behalf of a synapse server: it forwards /healthz and /readyz to
// the target and mirrors the status, so orchestration probes never hit
// the main listener's middleware stack.
package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
)

func main() {
	addr := flag.String("addr", ":8081", "listen address for the probe")
	target := flag.String("target", "http://127.0.0.1:8080", "base URL of the synapse server")
	timeout := flag.Duration("timeout", 2*time.Second, "upstream probe timeout")
	flag.Parse()

	client := &fasthttp.Client{
		ReadTimeout:  *timeout,
		WriteTimeout: *timeout,
	}

	h := func(ctx *fasthttp.RequestCtx) {
		path := string(ctx.Path())
		switch path {
		case "/healthz", "/readyz":
		default:
			ctx.SetStatusCode(fasthttp.StatusNotFound)
			return
		}
		status, body, err := client.GetTimeout(nil, *target+path, *timeout)
		ctx.Response.Header.Set("Content-Type", "application/json")
		if err != nil {
			ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
			_, _ = ctx.WriteString(`{"status":"unreachable"}`)
			return
		}
		ctx.SetStatusCode(status)
		_, _ = ctx.Write(body)
	}

	fmt.Printf("healthprobe listening on %s -> %s\n", *addr, *target)
	srv := &fasthttp.Server{
		Handler:            h,
		Name:               "synapse-healthprobe",
		ReadTimeout:        5 * time.Second,
		WriteTimeout:       5 * time.Second,
		MaxRequestBodySize: 1 << 20,
	}
	if err := srv.ListenAndServe(*addr); err != nil {
		fmt.Printf("healthprobe exit: %v\n", err)
	}
}
