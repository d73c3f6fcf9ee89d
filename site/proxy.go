package site

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strconv"

	socks5 "github.com/armon/go-socks5"
	"github.com/golang/glog"
)

// Proxy is a SOCKS5 server that sends every connection to one address, no
// matter which host the client asked for. A browser configured to use it
// reaches a replica served by Handler under the real site's host name.
type Proxy struct {
	l    net.Listener
	done chan struct{}
	errc chan error
}

// ServeProxy starts a Proxy listening on listenAddr ("host:port"; port 0
// picks one) that forwards to target ("host:port").
func ServeProxy(listenAddr, target string) (*Proxy, error) {
	host, portStr, err := net.SplitHostPort(target)
	if err != nil {
		return nil, fmt.Errorf("proxy target %q: %w", target, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("proxy target %q: bad port: %w", target, err)
	}
	dest := &socks5.AddrSpec{Port: port}
	if ip := net.ParseIP(host); ip != nil {
		dest.IP = ip
	} else {
		dest.FQDN = host
	}

	srv, err := socks5.New(&socks5.Config{
		Rewriter: rewriter{dest},
		Resolver: anyResolver{},
		Logger:   log.New(glogWriter{}, "socks5: ", 0),
	})
	if err != nil {
		return nil, fmt.Errorf("creating SOCKS5 server: %w", err)
	}
	l, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return nil, err
	}

	p := &Proxy{l: l, done: make(chan struct{}), errc: make(chan error, 1)}
	go func() {
		err := srv.Serve(l)
		select {
		case <-p.done:
			err = nil
		default:
		}
		p.errc <- err
	}()
	glog.V(1).Infof("site: SOCKS5 proxy on %s forwarding to %s", l.Addr(), target)
	return p, nil
}

// Addr returns the address the proxy listens on.
func (p *Proxy) Addr() string {
	return p.l.Addr().String()
}

// Close stops the proxy and returns the error that stopped it early, if
// any.
func (p *Proxy) Close() error {
	close(p.done)
	if err := p.l.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return <-p.errc
}

type rewriter struct{ dest *socks5.AddrSpec }

func (r rewriter) Rewrite(ctx context.Context, req *socks5.Request) (context.Context, *socks5.AddrSpec) {
	glog.V(2).Infof("site: proxying %s to %s", req.DestAddr, r.dest)
	return ctx, r.dest
}

// anyResolver skips DNS: the destination is rewritten anyway, and the real
// host name may not resolve where the suite runs.
type anyResolver struct{}

func (anyResolver) Resolve(ctx context.Context, name string) (context.Context, net.IP, error) {
	return ctx, net.IPv4zero, nil
}

type glogWriter struct{}

func (glogWriter) Write(p []byte) (int, error) {
	glog.Warning(string(p))
	return len(p), nil
}
