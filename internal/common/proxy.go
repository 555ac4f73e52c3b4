package common

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

var messages = map[int]string{
	http.StatusOK:                   "OK",
	http.StatusBadRequest:           "Bad request",
	http.StatusUnauthorized:         "Unauthorized",
	http.StatusForbidden:            "Forbidden",
	http.StatusNotFound:             "Data not found",
	http.StatusMethodNotAllowed:     "Method not allowed",
	http.StatusUnsupportedMediaType: "Unsupported media type",
	http.StatusTooManyRequests:      "Rate limit exceeded",
	http.StatusInternalServerError:  "Internal server error",
	http.StatusBadGateway:           "Bad gateway",
	http.StatusServiceUnavailable:   "Service unavailable",
	http.StatusGatewayTimeout:       "Gateway timeout",
}

// StatusError is returned when the remote end answers with something other than 200
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed with status %d (%s)", e.Code, e.Message)
}

type Proxy struct {
	header  map[string]string
	client  *http.Client
	limiter *rate.Limiter
}

func NewProxy(header map[string]string, restriction Restriction, client *http.Client) *Proxy {
	if client == nil {
		client = &http.Client{}
	}
	return &Proxy{header: header, client: client, limiter: restriction.Limiter()}
}

// Make a GET request to the provided url and return the body.
// The call waits for the rate limiter first, so it honours the context deadline
func (proxy *Proxy) Request(ctx context.Context, url string) ([]byte, error) {

	// ask for permission to execute the request
	// and wait if necessary
	if err := proxy.limiter.Wait(ctx); err != nil {
		log.Warn().Msg("Rate limiter is not allowing the request")
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	// Create the request and add the header
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request for url %s: %w", url, err)
	}
	for key, value := range proxy.header {
		request.Header.Set(key, value)
	}

	// Perform the request
	res, err := proxy.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("could not perform request: %w", err)
	}
	defer res.Body.Close()

	message, ok := messages[res.StatusCode]
	if !ok {
		message = http.StatusText(res.StatusCode)
	}
	log.Debug().Msg(fmt.Sprintf("%d %s", res.StatusCode, message))

	if res.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: res.StatusCode, Message: message}
	}

	stream, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read the response for url %s: %w", url, err)
	}
	return stream, nil
}
