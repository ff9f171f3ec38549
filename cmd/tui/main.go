package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rxtech-lab/stockview/internal/config"
	"github.com/rxtech-lab/stockview/internal/logger"
	"github.com/rxtech-lab/stockview/pkg/marketdata"
	"github.com/rxtech-lab/stockview/pkg/marketdata/provider"
)

func main() {
	cfg, err := config.Load(os.Getenv("STOCKVIEW_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI; logs would corrupt it.
	log := logger.NewNop()

	newProvider := func(name marketdata.ProviderType) (provider.Provider, error) {
		clientConfig := cfg.ClientConfig()
		clientConfig.ProviderType = name

		client, err := marketdata.NewClient(clientConfig, log)
		if err != nil {
			return nil, err
		}

		return client.Provider(), nil
	}

	p := tea.NewProgram(NewModel(newProvider, log), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
