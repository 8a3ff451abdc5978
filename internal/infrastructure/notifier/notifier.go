package notifier

import (
	"log"
	"net/http"
	"net/url"
	"time"
)

// SendCallback notifies an interested party that an order reached a
// terminal state. Fire-and-forget: failures are logged, never surfaced.
func SendCallback(callbackUrl, reference, status string) {
	go func() {
		parsedURL, err := url.Parse(callbackUrl)
		if err != nil {
			log.Printf("callback error: invalid URL '%s': %v", callbackUrl, err)
			return
		}

		query := parsedURL.Query()
		query.Set("reference", reference)
		query.Set("status", status)
		parsedURL.RawQuery = query.Encode()

		client := &http.Client{
			Timeout: 5 * time.Second,
		}

		resp, err := client.Get(parsedURL.String())
		if err != nil {
			log.Printf("callback error: request failed for %s: %v", parsedURL.String(), err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			log.Printf("callback warning: non-2xx response from %s: %s", parsedURL.String(), resp.Status)
		}
	}()
}
