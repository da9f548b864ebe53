package main

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/debug-agent/console/internal/app"
	"github.com/debug-agent/console/internal/bus"
	"github.com/debug-agent/console/internal/client"
	"github.com/debug-agent/console/internal/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	wsURL := flag.String("url", "", "WebSocket URL of the Debug Agent backend (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *wsURL != "" {
		cfg.Backend.WSURL = *wsURL
	}

	b := bus.New()
	tr := client.NewTransport(cfg.Backend.WSURL, b)
	tr.SetReconnectDelay(cfg.Backend.ReconnectDelay)
	api := client.NewAPI(deriveHTTPBase(cfg.Backend.WSURL))

	m := app.New(tr, api, b, cfg)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// deriveHTTPBase converts ws://host:port/ws → http://host:port
func deriveHTTPBase(wsURL string) string {
	u, err := url.Parse(wsURL)
	if err != nil {
		return "http://127.0.0.1:5174"
	}
	scheme := "http"
	if strings.HasPrefix(u.Scheme, "wss") {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, u.Host)
}
