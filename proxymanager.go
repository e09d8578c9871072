package main

import (
	"bufio"
	"net/url"
	"os"
	"strings"
	"sync"
)

// ProxyManager rotates outbound proxies read from a line file. The runner
// is sequential, so rotation is a plain round-robin with no leasing.
type ProxyManager struct {
	mu      sync.Mutex
	index   int
	proxies []*Proxy
}

type Proxy struct {
	host     string
	port     string
	username string
	password string
}

func NewProxyManager() *ProxyManager {
	return &ProxyManager{proxies: []*Proxy{}}
}

// Read loads host:port[:user:pass] lines. A missing file is not an error;
// the runner simply goes direct.
func (pm *ProxyManager) Read(filename string) error {
	file, err := os.Open(filename)

	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Split(bufio.ScanLines)

	for scanner.Scan() {
		pm.Add(scanner.Text())
	}

	return scanner.Err()
}

// Add parses one proxy line. Blank and malformed lines are skipped.
func (pm *ProxyManager) Add(line string) *Proxy {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	line = strings.TrimSpace(line)

	if line == "" {
		return nil
	}

	parts := strings.Split(line, ":")

	if len(parts) < 2 {
		return nil
	}

	p := &Proxy{host: parts[0], port: parts[1]}

	if len(parts) > 3 {
		p.username = parts[2]
		p.password = parts[3]
	}

	pm.proxies = append(pm.proxies, p)

	return p
}

func (pm *ProxyManager) Count() int {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	return len(pm.proxies)
}

// Next returns the next proxy in rotation, nil when none are loaded.
func (pm *ProxyManager) Next() *Proxy {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if len(pm.proxies) == 0 {
		return nil
	}

	p := pm.proxies[pm.index]
	pm.index = (pm.index + 1) % len(pm.proxies)

	return p
}

// URL renders the proxy as an http proxy URL for the transport.
func (p *Proxy) URL() *url.URL {
	u := &url.URL{
		Scheme: "http",
		Host:   p.host + ":" + p.port,
	}

	if p.username != "" {
		u.User = url.UserPassword(p.username, p.password)
	}

	return u
}
