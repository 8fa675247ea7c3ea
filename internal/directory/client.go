// Package directory is the HTTP client for the cadastro service, which
// resolves patient and doctor display data by identifier.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/MedSync-Fiap/notificacao-api/internal/config"
)

// Person is the cadastro service's user representation.
type Person struct {
	ID        string     `json:"id"`
	Nome      string     `json:"nome"`
	CPF       string     `json:"cpf"`
	Email     string     `json:"email"`
	Ativo     bool       `json:"ativo"`
	Telefones []Telefone `json:"telefones"`
}

type Telefone struct {
	Numero string `json:"numero"`
	Tipo   string `json:"tipo"`
}

// PrimaryPhone returns the first registered phone number, or "" when the
// person has none.
func (p *Person) PrimaryPhone() string {
	if len(p.Telefones) == 0 {
		return ""
	}
	return p.Telefones[0].Numero
}

// Client fetches person records from the cadastro service. Every failure
// mode (transport error, timeout, non-2xx status, undecodable body)
// converges on an absent result; callers never see a transport error.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewClient(cfg *config.DirectoryConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		logger: logger,
	}
}

// FindPerson looks up a person by id. The second return value reports
// whether a record was found; absence is an expected outcome and is only
// logged at warn level.
func (c *Client) FindPerson(ctx context.Context, id string) (*Person, bool) {
	if id == "" {
		return nil, false
	}

	url := fmt.Sprintf("%s/usuarios/%s", c.baseURL, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.logger.Warn("Failed to build cadastro request",
			zap.String("user_id", id),
			zap.Error(err),
		)
		return nil, false
	}

	// Identifies the calling service to the cadastro API.
	req.Header.Set("X-Service-Source", "notificacao-api")
	req.Header.Set("X-Service-Port", "8082")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("Cadastro service request failed",
			zap.String("user_id", id),
			zap.Error(err),
		)
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Cadastro service returned non-success status",
			zap.String("user_id", id),
			zap.Int("status", resp.StatusCode),
		)
		return nil, false
	}

	var person Person
	if err := json.NewDecoder(resp.Body).Decode(&person); err != nil {
		c.logger.Warn("Failed to decode cadastro response",
			zap.String("user_id", id),
			zap.Error(err),
		)
		return nil, false
	}

	c.logger.Debug("Cadastro lookup succeeded",
		zap.String("user_id", id),
		zap.String("nome", person.Nome),
	)
	return &person, true
}
