package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/go-pagamentocerto/internal/aws"
	"github.com/imrishuroy/go-pagamentocerto/internal/gateway"
	"github.com/imrishuroy/go-pagamentocerto/internal/handlers"
)

func setupRouter(cfg handlers.HandlerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterTransactionsRoutes(r, cfg)

	return r
}

// refreshDelay reads STATUS_REFRESH_DELAY as a Go duration ("30s"). Invalid
// values disable the delay.
func refreshDelay() time.Duration {
	v := os.Getenv("STATUS_REFRESH_DELAY")
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[api] ignoring invalid STATUS_REFRESH_DELAY %q: %v", v, err)
		return 0
	}
	return d
}

func main() {
	clients, err := aws.NewAWSClients(context.Background())
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	gwCfg := gateway.LoadConfig()
	if gwCfg.SellerAPIKey == "" {
		log.Printf("[api] SELLER_API_KEY is not set, the gateway will reject every transaction")
	}

	cfg := handlers.HandlerConfig{
		DynamoDBClient:    clients.DynamoDB,
		SQSClient:         clients.SQS,
		CloudWatchClient:  clients.CloudWatch,
		Transport:         gateway.NewSOAPTransport(gwCfg),
		Gateway:           gwCfg,
		IdempotencyTable:  os.Getenv("IDEMPOTENCY_TABLE"),
		TransactionsTable: os.Getenv("TRANSACTIONS_TABLE"),
		QueueURL:          os.Getenv("STATUS_QUEUE_URL"),
		MetricsNamespace:  os.Getenv("METRICS_NAMESPACE"),
		TTLWindow:         48 * time.Hour,
		RefreshDelay:      refreshDelay(),
	}

	r := setupRouter(cfg)

	// if environment variable RUN_LOCAL is set to "true", run local HTTP server for development.
	if os.Getenv("RUN_LOCAL") == "true" {
		addr := ":8080"
		log.Printf("[api] running local server on %s", addr)
		if err := r.Run(addr); err != nil {
			log.Fatalf("failed to run local server: %v", err)
		}
		return
	}

	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
