package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/imrishuroy/go-pagamentocerto/internal/aws"
	"github.com/imrishuroy/go-pagamentocerto/internal/gateway"
	"github.com/imrishuroy/go-pagamentocerto/internal/idempotency"
	"github.com/imrishuroy/go-pagamentocerto/internal/payerr"
	"github.com/imrishuroy/go-pagamentocerto/internal/transaction"
	"github.com/imrishuroy/go-pagamentocerto/internal/transactions"
	"github.com/imrishuroy/go-pagamentocerto/internal/validation"
)

// HandlerConfig groups dependencies for the transactions handler.
type HandlerConfig struct {
	DynamoDBClient    aws.DynamoDBAPI
	SQSClient         aws.SQSAPI
	CloudWatchClient  aws.CloudWatchAPI // nil disables metrics
	Transport         gateway.Transport
	Gateway           gateway.Config
	IdempotencyTable  string
	TransactionsTable string
	QueueURL          string
	MetricsNamespace  string
	TTLWindow         time.Duration
	RefreshDelay      time.Duration
}

type transactionsHandler struct {
	validate   *validatorv10.Validate
	transport  gateway.Transport
	gatewayCfg gateway.Config
	idempStore *idempotency.Store
	txStore    *transactions.Store
	publisher  *aws.Publisher
	metrics    *aws.Metrics
}

// startResponse is returned by POST /transactions and replayed for
// requests repeating the same Idempotency-Key.
type startResponse struct {
	TransactionID string `json:"transaction_id"`
	RedirectURL   string `json:"redirect_url"`
	OrderID       int    `json:"order_id"`
}

type buyerResponse struct {
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty"`
	TaxID        string `json:"cpf,omitempty"`
	CompanyTaxID string `json:"cnpj,omitempty"`
}

type transactionResponse struct {
	TransactionID string        `json:"transaction_id"`
	OrderID       int           `json:"order_id"`
	StatusCode    int           `json:"status_code"`
	Status        string        `json:"status"`
	StatusMessage string        `json:"status_message,omitempty"`
	BuyerType     string        `json:"buyer_type"`
	Buyer         buyerResponse `json:"buyer"`
	PaymentType   string        `json:"payment_type"`
	TotalAmount   string        `json:"total_amount"`
	Timestamp     *time.Time    `json:"timestamp,omitempty"`
}

func toResponse(tx transaction.Transaction) transactionResponse {
	resp := transactionResponse{
		TransactionID: tx.ID,
		OrderID:       tx.OrderID,
		StatusCode:    int(tx.StatusCode),
		Status:        tx.StatusCode.String(),
		StatusMessage: tx.StatusMessage,
		BuyerType:     tx.BuyerType.String(),
		Buyer: buyerResponse{
			Name:         tx.Buyer.Name,
			Email:        tx.Buyer.Email,
			TaxID:        tx.Buyer.TaxID,
			CompanyTaxID: tx.Buyer.CompanyTaxID,
		},
		PaymentType: tx.PaymentType.String(),
		TotalAmount: tx.TotalAmount.StringFixed(2),
	}
	if !tx.Timestamp.IsZero() {
		ts := tx.Timestamp
		resp.Timestamp = &ts
	}
	return resp
}

// RegisterTransactionsRoutes registers routes for the payment API.
func RegisterTransactionsRoutes(r *gin.Engine, cfg HandlerConfig) {
	publisher := aws.NewPublisher(cfg.SQSClient, cfg.QueueURL)
	publisher.Delay = cfg.RefreshDelay

	h := &transactionsHandler{
		validate:   validation.New(),
		transport:  cfg.Transport,
		gatewayCfg: cfg.Gateway,
		idempStore: idempotency.NewStore(cfg.DynamoDBClient, cfg.IdempotencyTable, cfg.TTLWindow),
		txStore:    transactions.NewStore(cfg.DynamoDBClient, cfg.TransactionsTable),
		publisher:  publisher,
		metrics:    aws.NewMetrics(cfg.CloudWatchClient, cfg.MetricsNamespace),
	}

	r.POST("/transactions", h.start)
	r.GET("/transactions/:tid", h.info)
	r.GET("/transactions/:tid/snapshot", h.snapshot)
	r.GET("/return", h.postback)
}

// start builds the order from the checkout body, starts the gateway
// transaction and answers with the payment page the buyer must visit.
func (h *transactionsHandler) start(c *gin.Context) {
	ctx := c.Request.Context()

	var req validation.CheckoutRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		// BindAndValidate already wrote a 400
		return
	}

	idempKey := c.GetHeader("Idempotency-Key")
	if idempKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_idempotency_key"})
		return
	}

	// the order is built before claiming the key, so invalid carts never
	// burn an idempotency key
	o, err := buildOrder(req)
	if err != nil {
		writeError(c, err, http.StatusBadRequest)
		return
	}

	sum := sha256.Sum256(validation.BodyBytes(c))
	requestHash := hex.EncodeToString(sum[:])

	created, err := h.idempStore.CreateIfNotExists(ctx, idempKey, requestHash)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "idempotency_check_failed", "detail": err.Error()})
		return
	}
	if !created {
		h.replay(c, idempKey, requestHash)
		return
	}

	client := gateway.NewClient(h.transport, h.gatewayCfg)
	tid, err := client.StartTransaction(ctx, o)
	if err != nil {
		if markErr := h.idempStore.MarkFailed(ctx, idempKey, err.Error()); markErr != nil {
			log.Printf("[api] mark failed key=%s: %v", idempKey, markErr)
		}
		var pe *payerr.Error
		if errors.As(err, &pe) && pe.Kind == payerr.KindGatewayRejected {
			h.count(c, aws.MetricTransactionRejected, map[string]string{"ReturnCode": strconv.Itoa(pe.Code)})
		}
		log.Printf("[api] start transaction order=%d key=%s: %v", o.OrderID(), idempKey, err)
		writeError(c, err, http.StatusBadGateway)
		return
	}

	redirect, err := client.RedirectURL(tid)
	if err != nil {
		// misconfigured PAYMENT_GATEWAY_URL; the transaction exists, keep the key
		log.Printf("[api] redirect url tid=%s: %v", tid, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "redirect_url_failed", "transaction_id": tid})
		return
	}

	resp := startResponse{TransactionID: tid, RedirectURL: redirect, OrderID: o.OrderID()}
	body, err := json.Marshal(resp)
	if err != nil {
		log.Printf("[api] marshal response tid=%s: %v", tid, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "transaction_id": tid})
		return
	}
	if err := h.idempStore.MarkDone(ctx, idempKey, tid, string(body), http.StatusCreated); err != nil {
		log.Printf("[api] mark done key=%s tid=%s: %v", idempKey, tid, err)
	}
	h.count(c, aws.MetricTransactionStarted, map[string]string{"PaymentType": o.PaymentMethod().String()})
	log.Printf("[api] started transaction tid=%s order=%d", tid, o.OrderID())

	c.Header("Location", redirect)
	c.Data(http.StatusCreated, "application/json; charset=utf-8", body)
}

// replay answers a request whose Idempotency-Key was already claimed.
func (h *transactionsHandler) replay(c *gin.Context, key, requestHash string) {
	rec, err := h.idempStore.Get(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "idempotency_check_failed", "detail": err.Error()})
		return
	}
	if rec == nil {
		// expired between the claim and the read
		c.JSON(http.StatusConflict, gin.H{"error": "idempotency_record_missing"})
		return
	}
	if !rec.Matches(requestHash) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "idempotency_key_reused"})
		return
	}

	switch rec.Status {
	case idempotency.StatusDone:
		var prev startResponse
		if err := json.Unmarshal([]byte(rec.ResponseBody), &prev); err == nil && prev.RedirectURL != "" {
			c.Header("Location", prev.RedirectURL)
		}
		c.Data(rec.ResponseStatus, "application/json; charset=utf-8", []byte(rec.ResponseBody))
	case idempotency.StatusInProgress:
		c.JSON(http.StatusAccepted, gin.H{"message": "request already in progress"})
	default:
		// a failed attempt is claimable again; reaching here means another retry won the claim
		c.JSON(http.StatusConflict, gin.H{"error": "previous_attempt_failed"})
	}
}

// info queries the gateway for the current status and records it.
func (h *transactionsHandler) info(c *gin.Context) {
	ctx := c.Request.Context()
	tid := c.Param("tid")

	tx, err := gateway.NewClient(h.transport, h.gatewayCfg).TransactionInfo(ctx, tid)
	if err != nil {
		log.Printf("[api] transaction info tid=%s: %v", tid, err)
		writeError(c, err, http.StatusBadGateway)
		return
	}
	if tx.ID == "" {
		// not every status document echoes the id
		tx.ID = tid
	}

	if err := h.txStore.Save(ctx, tx); err != nil {
		log.Printf("[api] save snapshot tid=%s: %v", tid, err)
	}
	h.count(c, aws.MetricStatusRefreshed, map[string]string{"Status": tx.StatusCode.String()})

	c.JSON(http.StatusOK, toResponse(tx))
}

// snapshot returns the last stored status without calling the gateway.
func (h *transactionsHandler) snapshot(c *gin.Context) {
	tid := c.Param("tid")

	rec, err := h.txStore.Get(c.Request.Context(), tid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "snapshot_read_failed", "detail": err.Error()})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "transaction_not_found", "transaction_id": tid})
		return
	}
	tx, err := rec.Transaction()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "snapshot_corrupt", "detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toResponse(tx))
}

// postback is where the gateway sends the buyer back to the store. The status
// is refreshed asynchronously by the worker.
func (h *transactionsHandler) postback(c *gin.Context) {
	tid := c.Query("tid")
	if tid == "" {
		writeError(c, payerr.NoTransactionID("transaction id not specified"), http.StatusBadRequest)
		return
	}

	correlationID := c.GetHeader("X-Request-Id")
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	msg := transactions.RefreshMessage{
		TransactionID: tid,
		CorrelationID: correlationID,
		RequestedAt:   time.Now().UTC(),
	}

	attrs := map[string]string{
		"transaction_id": tid,
		"correlation_id": correlationID,
	}
	if err := h.publisher.SendStatusRefresh(c.Request.Context(), msg, attrs); err != nil {
		log.Printf("[api] enqueue refresh tid=%s: %v", tid, err)
		writeError(c, fmt.Errorf("enqueue refresh: %w", err), http.StatusServiceUnavailable)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"transaction_id": tid, "correlation_id": correlationID})
}

func (h *transactionsHandler) count(c *gin.Context, metric string, dims map[string]string) {
	if err := h.metrics.Count(c.Request.Context(), metric, dims); err != nil {
		log.Printf("[api] metric %s: %v", metric, err)
	}
}
