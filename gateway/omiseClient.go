package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"

	"github.com/go-resty/resty/v2"
)

const defaultBaseURL = "https://api.omise.co"

// ScannableCode carries the QR image the gateway renders for a promptpay
// source.
type ScannableCode struct {
	Image struct {
		DownloadURI string `json:"download_uri"`
	} `json:"image"`
}

type Source struct {
	ID            string         `json:"id"`
	Type          string         `json:"type"`
	Amount        int64          `json:"amount"`
	Currency      string         `json:"currency"`
	ScannableCode *ScannableCode `json:"scannable_code"`
}

// QRCodeURL returns the downloadable QR image URL, or "" when the gateway
// omitted the scannable code (seen in test mode).
func (s *Source) QRCodeURL() string {
	if s.ScannableCode == nil || s.ScannableCode.Image.DownloadURI == "" {
		return ""
	}
	return s.ScannableCode.Image.DownloadURI
}

type Charge struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description"`

	// Snapshot is the charge payload exactly as the gateway returned it,
	// kept alongside the typed fields so the stored payment record can hold
	// the full document.
	Snapshot map[string]interface{} `json:"-"`
}

// FallbackQRCodeURL builds the documents/qrcode URL used when a source came
// back without a scannable code.
func FallbackQRCodeURL(chargeID string) string {
	return defaultBaseURL + "/charges/" + chargeID + "/documents/qrcode"
}

type apiError struct {
	Object  string `json:"object"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("omise: %s (%s)", e.Message, e.Code)
}

// Client talks to the Omise REST API with the account's secret key.
type Client struct {
	http *resty.Client
}

func NewClient(secretKey string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(defaultBaseURL).
			SetBasicAuth(secretKey, ""),
	}
}

// CreateSource creates a promptpay source for the given amount in satang.
func (c *Client) CreateSource(ctx context.Context, amountSatang int64) (*Source, error) {
	log.Printf("omise: creating promptpay source for %d satang", amountSatang)

	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"amount":   strconv.FormatInt(amountSatang, 10),
			"currency": "thb",
			"type":     "promptpay",
		}).
		Post("/sources")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, decodeAPIError(resp.Body())
	}

	var source Source
	if err := json.Unmarshal(resp.Body(), &source); err != nil {
		return nil, err
	}
	log.Printf("omise: source created: %s", source.ID)
	return &source, nil
}

// CreateCharge creates a charge against a previously created source. Amount
// is in satang; metadata keys are passed through to the gateway.
func (c *Client) CreateCharge(ctx context.Context, amountSatang int64, sourceID, description string, metadata map[string]string, returnURI string) (*Charge, error) {
	log.Printf("omise: creating charge from source %s for %d satang", sourceID, amountSatang)

	form := map[string]string{
		"amount":      strconv.FormatInt(amountSatang, 10),
		"currency":    "thb",
		"source":      sourceID,
		"description": description,
	}
	if returnURI != "" {
		form["return_uri"] = returnURI
	}
	for k, v := range metadata {
		form["metadata["+k+"]"] = v
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(form).
		Post("/charges")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, decodeAPIError(resp.Body())
	}

	charge, err := decodeCharge(resp.Body())
	if err != nil {
		return nil, err
	}
	log.Printf("omise: charge created: %s, status: %s", charge.ID, charge.Status)
	return charge, nil
}

func (c *Client) RetrieveCharge(ctx context.Context, chargeID string) (*Charge, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get("/charges/" + chargeID)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, decodeAPIError(resp.Body())
	}
	return decodeCharge(resp.Body())
}

func decodeCharge(body []byte) (*Charge, error) {
	var charge Charge
	if err := json.Unmarshal(body, &charge); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, &charge.Snapshot); err != nil {
		return nil, err
	}
	return &charge, nil
}

func decodeAPIError(body []byte) error {
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Message == "" {
		return fmt.Errorf("omise: unexpected response: %s", string(body))
	}
	return &apiErr
}
