// Package postal resolves Brazilian postal codes (CEP) to street addresses
// through the ViaCEP service.
package postal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrInvalidCEP  = errors.New("postal: cep must have 8 digits")
	ErrNotFound    = errors.New("postal: cep not found")
	ErrUnavailable = errors.New("postal: lookup service unavailable")
	ErrDecode      = errors.New("postal: unreadable lookup response")
)

// Address is the lookup result as served to clients.
type Address struct {
	CEP          string `json:"cep"`
	Street       string `json:"logradouro"`
	Neighborhood string `json:"bairro"`
	City         string `json:"cidade"`
	State        string `json:"estado"`
}

// viacepResponse is the upstream body. Unknown codes come back as 200
// with "erro" set, as a bool or as the string "true".
type viacepResponse struct {
	CEP        string          `json:"cep"`
	Logradouro string          `json:"logradouro"`
	Bairro     string          `json:"bairro"`
	Localidade string          `json:"localidade"`
	UF         string          `json:"uf"`
	Erro       json.RawMessage `json:"erro"`
}

func (r viacepResponse) notFound() bool {
	switch strings.Trim(string(r.Erro), `"`) {
	case "true":
		return true
	default:
		return false
	}
}

// Normalize strips separators and checks for exactly eight digits.
func Normalize(cep string) (string, error) {
	cleaned := strings.NewReplacer("-", "", ".", "", " ", "").Replace(strings.TrimSpace(cep))
	if len(cleaned) != 8 {
		return "", ErrInvalidCEP
	}
	for _, c := range cleaned {
		if c < '0' || c > '9' {
			return "", ErrInvalidCEP
		}
	}
	return cleaned, nil
}

// Client calls ViaCEP behind a circuit breaker.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *Breaker
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		breaker: NewBreaker(5, 30*time.Second),
	}
}

// Lookup resolves cep. Malformed input fails with ErrInvalidCEP before any
// upstream call.
func (c *Client) Lookup(ctx context.Context, cep string) (*Address, error) {
	normalized, err := Normalize(cep)
	if err != nil {
		return nil, err
	}

	var body []byte
	status := 0
	err = c.breaker.Call(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/ws/"+normalized+"/json/", nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		status = resp.StatusCode
		if status >= http.StatusInternalServerError {
			return fmt.Errorf("upstream status %d", status)
		}
		body, err = io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("postal.Client.Lookup: %w: %w", ErrUnavailable, err)
	}

	if status == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if status == http.StatusBadRequest {
		return nil, ErrInvalidCEP
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("postal.Client.Lookup: upstream status %d: %w", status, ErrUnavailable)
	}

	var r viacepResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("postal.Client.Lookup: %w: %w", ErrDecode, err)
	}
	if r.notFound() {
		return nil, ErrNotFound
	}

	return &Address{
		CEP:          normalized,
		Street:       r.Logradouro,
		Neighborhood: r.Bairro,
		City:         r.Localidade,
		State:        r.UF,
	}, nil
}
