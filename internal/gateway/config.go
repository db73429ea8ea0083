package gateway

import (
	"os"
	"time"
)

const (
	DefaultWebserviceURL = "https://www.pagamentocerto.com.br/vendedor/vendedor.asmx"
	DefaultPaymentURL    = "https://www.pagamentocerto.com.br/pagamento/pagamento.aspx"
	DefaultSOAPNamespace = "https://www.pagamentocerto.com.br/"
	DefaultTimeout       = 15 * time.Second
)

// Config holds the seller credentials and gateway endpoints.
type Config struct {
	SellerAPIKey  string
	ReturnURL     string        // store page the buyer comes back to after paying
	WebserviceURL string        // seller SOAP endpoint
	PaymentURL    string        // page the buyer is redirected to
	SOAPNamespace string        // target namespace used for SOAPAction and body elements
	Timeout       time.Duration // per call
}

// LoadConfig reads the gateway configuration from the environment, falling
// back to the production endpoints.
func LoadConfig() Config {
	cfg := Config{
		SellerAPIKey:  os.Getenv("SELLER_API_KEY"),
		ReturnURL:     os.Getenv("STORE_RETURN_URL"),
		WebserviceURL: envOr("SELLER_WEBSERVICE_URL", DefaultWebserviceURL),
		PaymentURL:    envOr("PAYMENT_GATEWAY_URL", DefaultPaymentURL),
		SOAPNamespace: envOr("GATEWAY_SOAP_NAMESPACE", DefaultSOAPNamespace),
		Timeout:       DefaultTimeout,
	}
	if v := os.Getenv("GATEWAY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
