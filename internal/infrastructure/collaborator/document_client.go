package collaborator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPDocumentClient asks the document storage service whether an order
// has all its required attachments.
type HTTPDocumentClient struct {
	Address string
	client  *http.Client
}

func NewHTTPDocumentClient(address string) *HTTPDocumentClient {
	return &HTTPDocumentClient{
		Address: address,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

type documentsResponse struct {
	Complete bool `json:"complete"`
}

func (c *HTTPDocumentClient) HasRequiredDocuments(ctx context.Context, orderID string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/orders/%s/documents/complete", c.Address, orderID), nil)
	if err != nil {
		return false, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("document service returned %s", resp.Status)
	}

	var body documentsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, err
	}
	return body.Complete, nil
}
