package main

import (
	"os"

	"github.com/imrishuroy/go-pagamentocerto/internal/gateway"
)

// Config is the worker configuration, read from the environment.
type Config struct {
	TransactionsTable string
	MetricsNamespace  string
	Gateway           gateway.Config
}

func loadConfig() Config {
	return Config{
		TransactionsTable: os.Getenv("TRANSACTIONS_TABLE"),
		MetricsNamespace:  os.Getenv("METRICS_NAMESPACE"),
		Gateway:           gateway.LoadConfig(),
	}
}
