package mercadopago

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Payment statuses reported by Mercado Pago.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Payment is a freshly created Pix charge.
type Payment struct {
	ID                int64
	QRCodeImage       []byte // decoded PNG of the QR code
	QRCodeText        string // copy-and-paste Pix code
	ExternalReference string
}

// PaymentStatus is the polled state of an existing payment.
type PaymentStatus struct {
	ID                int64
	Status            string
	ExternalReference string
}

// Client talks to the Mercado Pago payments API.
type Client struct {
	token           string
	baseURL         string
	notificationURL string
	httpClient      *http.Client
}

func NewClient(token, notificationURL string) *Client {
	return &Client{
		token:           token,
		baseURL:         "https://api.mercadopago.com",
		notificationURL: notificationURL,
		httpClient:      &http.Client{Timeout: 30 * time.Second},
	}
}

// CreatePayment creates a Pix charge for the given amount. The external
// reference carries the subscriber identity so the webhook can attribute an
// approved payment without extra state.
func (c *Client) CreatePayment(ctx context.Context, amount float64, description, externalReference string) (*Payment, error) {
	body := map[string]any{
		"transaction_amount": amount,
		"description":        description,
		"payment_method_id":  "pix",
		"payer": map[string]any{
			"email": fmt.Sprintf("user_%s@example.com", uuid.NewString()),
		},
		"external_reference": externalReference,
	}
	if c.notificationURL != "" {
		body["notification_url"] = c.notificationURL
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/payments", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	// Mercado Pago requires an idempotency key on payment creation.
	req.Header.Set("X-Idempotency-Key", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, errors.New("mercadopago: unexpected status " + resp.Status)
	}

	var respBody struct {
		ID                 int64  `json:"id"`
		ExternalReference  string `json:"external_reference"`
		PointOfInteraction struct {
			TransactionData struct {
				QRCode       string `json:"qr_code"`
				QRCodeBase64 string `json:"qr_code_base64"`
			} `json:"transaction_data"`
		} `json:"point_of_interaction"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return nil, fmt.Errorf("mercadopago: decode payment: %w", err)
	}
	if respBody.PointOfInteraction.TransactionData.QRCode == "" {
		return nil, errors.New("mercadopago: payment response without pix transaction data")
	}

	img, err := base64.StdEncoding.DecodeString(respBody.PointOfInteraction.TransactionData.QRCodeBase64)
	if err != nil {
		return nil, fmt.Errorf("mercadopago: decode qr image: %w", err)
	}
	return &Payment{
		ID:                respBody.ID,
		QRCodeImage:       img,
		QRCodeText:        respBody.PointOfInteraction.TransactionData.QRCode,
		ExternalReference: respBody.ExternalReference,
	}, nil
}

// GetPaymentStatus polls the state of a payment.
func (c *Client) GetPaymentStatus(ctx context.Context, paymentID int64) (*PaymentStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/v1/payments/%d", c.baseURL, paymentID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("mercadopago: unexpected status " + resp.Status)
	}

	var respBody struct {
		ID                int64  `json:"id"`
		Status            string `json:"status"`
		ExternalReference string `json:"external_reference"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return nil, fmt.Errorf("mercadopago: decode payment status: %w", err)
	}
	return &PaymentStatus{
		ID:                respBody.ID,
		Status:            respBody.Status,
		ExternalReference: respBody.ExternalReference,
	}, nil
}
