package gateway

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
)

const soapEnvelopeNS = "http://schemas.xmlsoap.org/soap/envelope/"

// SOAPTransport implements Transport against the seller web service using
// SOAP 1.1 over HTTP.
type SOAPTransport struct {
	client    *resty.Client
	endpoint  string
	namespace string
}

// NewSOAPTransport builds a transport from cfg. No retries are configured.
func NewSOAPTransport(cfg Config) *SOAPTransport {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "text/xml; charset=utf-8").
		SetHeader("Accept", "text/xml")
	return &SOAPTransport{
		client:    client,
		endpoint:  cfg.WebserviceURL,
		namespace: cfg.SOAPNamespace,
	}
}

type requestEnvelope struct {
	XMLName xml.Name    `xml:"soap:Envelope"`
	SoapNS  string      `xml:"xmlns:soap,attr"`
	Body    requestBody `xml:"soap:Body"`
}

type requestBody struct {
	Content any
}

type startRequest struct {
	XMLName   xml.Name `xml:"IniciaTransacao"`
	NS        string   `xml:"xmlns,attr"`
	SellerKey string   `xml:"chaveVendedor"`
	ReturnURL string   `xml:"urlRetorno"`
	XML       string   `xml:"xml"`
}

type queryRequest struct {
	XMLName       xml.Name `xml:"ConsultaTransacao"`
	NS            string   `xml:"xmlns,attr"`
	SellerKey     string   `xml:"chaveVendedor"`
	TransactionID string   `xml:"idTransacao"`
}

type responseEnvelope struct {
	Body struct {
		Fault *struct {
			Code   string `xml:"faultcode"`
			String string `xml:"faultstring"`
		} `xml:"Fault"`
		Response struct {
			XMLName xml.Name
			Result  struct {
				XMLName xml.Name
				Value   string `xml:",chardata"`
			} `xml:",any"`
		} `xml:",any"`
	} `xml:"Body"`
}

// StartTransaction calls IniciaTransacao and returns IniciaTransacaoResult.
func (t *SOAPTransport) StartTransaction(ctx context.Context, requestXML, sellerKey, returnURL string) (string, error) {
	return t.call(ctx, "IniciaTransacao", startRequest{
		NS:        t.namespace,
		SellerKey: sellerKey,
		ReturnURL: returnURL,
		XML:       requestXML,
	})
}

// QueryTransaction calls ConsultaTransacao and returns ConsultaTransacaoResult.
func (t *SOAPTransport) QueryTransaction(ctx context.Context, sellerKey, transactionID string) (string, error) {
	return t.call(ctx, "ConsultaTransacao", queryRequest{
		NS:            t.namespace,
		SellerKey:     sellerKey,
		TransactionID: transactionID,
	})
}

func (t *SOAPTransport) call(ctx context.Context, operation string, content any) (string, error) {
	payload, err := xml.Marshal(requestEnvelope{
		SoapNS: soapEnvelopeNS,
		Body:   requestBody{Content: content},
	})
	if err != nil {
		return "", fmt.Errorf("marshal %s envelope: %w", operation, err)
	}

	resp, err := t.client.R().
		SetContext(ctx).
		SetHeader("SOAPAction", `"`+t.namespace+operation+`"`).
		SetBody(append([]byte(xml.Header), payload...)).
		Post(t.endpoint)
	if err != nil {
		return "", fmt.Errorf("%s: %w", operation, err)
	}

	var env responseEnvelope
	if err := xml.Unmarshal(resp.Body(), &env); err != nil {
		if resp.IsError() {
			return "", fmt.Errorf("%s: http status %d", operation, resp.StatusCode())
		}
		return "", fmt.Errorf("%s: decode envelope: %w", operation, err)
	}
	if f := env.Body.Fault; f != nil {
		return "", fmt.Errorf("%s: soap fault %s: %s", operation, f.Code, strings.TrimSpace(f.String))
	}
	if resp.IsError() {
		return "", fmt.Errorf("%s: http status %d", operation, resp.StatusCode())
	}

	result := env.Body.Response.Result
	if result.XMLName.Local != operation+"Result" {
		return "", fmt.Errorf("%s: missing %sResult in response", operation, operation)
	}
	return result.Value, nil
}
